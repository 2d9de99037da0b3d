// Package parser builds and drives the participle parser that turns DL
// source text into an internal/ast.Program, grounded on
// kanso/internal/parser/parser.go (participle.Build[grammar.AST],
// ParseFile/ParseSource) and kanso/cmd/kanso-cli/main.go's caret-style
// participle.Error reporting.
package parser

import (
	"os"

	"github.com/alecthomas/participle/v2"
	"github.com/pkg/errors"

	"github.com/efrenlopes/dl-compiler/internal/ast"
)

var dlParser = buildParser()

func buildParser() *participle.Parser[ast.Program] {
	p, err := participle.Build[ast.Program](
		participle.Lexer(dlLexer),
		participle.Elide("Whitespace", "Comment"),
		participle.UseLookahead(2),
	)
	if err != nil {
		panic(errors.Wrap(err, "failed to build DL parser"))
	}
	return p
}

// ParseFile reads path and parses it as a DL program.
func ParseFile(path string) (*ast.Program, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return ParseSource(path, string(source))
}

// ParseSource parses source, attributing positions to sourceName.
func ParseSource(sourceName, source string) (*ast.Program, error) {
	return dlParser.ParseString(sourceName, source)
}

// IsParticipleError reports whether err carries a participle.Error
// (source position + message), as opposed to some other failure (I/O,
// internal panic wrapped upstream).
func IsParticipleError(err error) (participle.Error, bool) {
	pe, ok := err.(participle.Error)
	return pe, ok
}
