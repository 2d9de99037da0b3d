package parser

import "github.com/alecthomas/participle/v2/lexer"

// dlLexer is DL's stateful token-rule table, grounded on
// kanso/grammar/lexer.go: regex rules in priority order, with keywords
// recognized later as literal matches against Ident (the same convention
// kanso's grammar relies on for "module", "struct", "fn", etc.).
var dlLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*`},
	{Name: "Real", Pattern: `[0-9]+\.[0-9]+`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Assign", Pattern: `:=`},
	{Name: "Operator", Pattern: `==|!=|<=|>=|[<>+\-*/%^]`},
	{Name: "Punct", Pattern: `[(),;:]`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
})
