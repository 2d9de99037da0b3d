// Package ast defines the typed syntax tree that internal/ir consumes.
// spec.md §4.1 treats the lexer, parser, and semantic checker that produce
// this tree as external collaborators ("the AST is well-typed" is a
// builder precondition, not something internal/ir verifies). This package
// and internal/parser / internal/sema supply those collaborators in the
// teacher's own idiom (participle struct-tag grammars, Pos/EndPos
// auto-population) so the module is runnable end to end.
package ast

import "github.com/alecthomas/participle/v2/lexer"

// Program is "program p var x: int; begin ... end" (the program name is
// optional; DL's canonical examples use it inconsistently).
type Program struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Name  string     `("program" @Ident)?`
	Decls []*VarDecl `@@*`
	Body  *Block     `@@`
}

// VarDecl is "var x, y: int;".
type VarDecl struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Names    []string `"var" @Ident ("," @Ident)*`
	TypeName string   `":" @("int" | "real" | "bool") ";"`

	// ResolvedType is not set by internal/sema, which records declared
	// types in its typesys.Scope instead; it stays nil.
	ResolvedType interface{} `parser:"-"`
}

// Block is "begin stmt ; stmt ; ... end".
type Block struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Stmts []*Stmt `"begin" @@ (";" @@)* "end"`
}

// Stmt is a tagged union of DL's five statement kinds plus a nested block,
// modeled the way kanso/grammar/grammar.go models SourceElement: one
// pointer field per alternative, exactly one non-nil per parse.
type Stmt struct {
	Pos    lexer.Position
	EndPos lexer.Position

	If     *IfStmt     `  @@`
	While  *WhileStmt  `| @@`
	Read   *ReadStmt   `| @@`
	Write  *WriteStmt  `| @@`
	Assign *AssignStmt `| @@`
	Block  *Block      `| @@`
}

// IfStmt is "if (cond) then stmt [else stmt]".
type IfStmt struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Cond *Expr `"if" "(" @@ ")"`
	Then *Stmt `"then" @@`
	Else *Stmt `("else" @@)?`
}

// WhileStmt is "while (cond) do stmt".
type WhileStmt struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Cond *Expr `"while" "(" @@ ")"`
	Body *Stmt `"do" @@`
}

// ReadStmt is "read name".
type ReadStmt struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Name string `"read" @Ident`

	// internal/ir's builder resolves Name to the variable's address temp
	// by lookup; nothing is cached on the node.
}

// WriteStmt is "write expr".
type WriteStmt struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Value *Expr `"write" @@`
}

// AssignStmt is "name := expr".
type AssignStmt struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Name  string `@Ident ":="`
	Value *Expr  `@@`
}

// Expr is the top of the precedence chain: logical OR.
type Expr struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Left *AndExpr   `@@`
	Ops  []*OrRHS    `@@*`
}

type OrRHS struct {
	Op    string   `@"or"`
	Right *AndExpr `@@`
}

// AndExpr is logical AND, binding tighter than OR.
type AndExpr struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Left *NotExpr `@@`
	Ops  []*AndRHS `@@*`
}

type AndRHS struct {
	Op    string   `@"and"`
	Right *NotExpr `@@`
}

// NotExpr is an optional unary logical NOT, binding tighter than AND/OR.
type NotExpr struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Not bool     `@"not"?`
	Rel *RelExpr `@@`
}

// RelExpr is a single (non-chaining) relational comparison.
type RelExpr struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Left  *AddExpr `@@`
	Op    string   `( @("==" | "!=" | "<=" | ">=" | "<" | ">")`
	Right *AddExpr `  @@ )?`
}

// AddExpr is left-associative + / -.
type AddExpr struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Left *MulExpr  `@@`
	Ops  []*AddRHS `@@*`
}

type AddRHS struct {
	Op    string   `@("+" | "-")`
	Right *MulExpr `@@`
}

// MulExpr is left-associative * / %.
type MulExpr struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Left *PowExpr  `@@`
	Ops  []*MulRHS `@@*`
}

type MulRHS struct {
	Op    string   `@("*" | "/" | "%")`
	Right *PowExpr `@@`
}

// PowExpr is right-associative exponentiation.
type PowExpr struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Left  *UnaryExpr `@@`
	Op    string     `( @"^"`
	Right *PowExpr   `  @@ )?`
}

// UnaryExpr is an optional unary +/-.
type UnaryExpr struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Op      string       `@("+" | "-")?`
	Operand *PrimaryExpr `@@`
}

// PrimaryExpr is a literal, identifier, or parenthesized sub-expression.
type PrimaryExpr struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Paren   *Expr    `  "(" @@ ")"`
	Real    *float64 `| @Real`
	Int     *int64   `| @Int`
	Bool    *string  `| @("true" | "false")`
	Ident   *string  `| @Ident`
}
