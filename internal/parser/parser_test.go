package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efrenlopes/dl-compiler/internal/parser"
)

func TestParseProgramWithDeclsAndName(t *testing.T) {
	src := `program p var x, y: int; var b: bool; begin x := 1; write x end`
	prog, err := parser.ParseSource("t.dl", src)
	require.NoError(t, err)

	assert.Equal(t, "p", prog.Name)
	require.Len(t, prog.Decls, 2)
	assert.Equal(t, []string{"x", "y"}, prog.Decls[0].Names)
	assert.Equal(t, "int", prog.Decls[0].TypeName)
	assert.Equal(t, []string{"b"}, prog.Decls[1].Names)
	assert.Equal(t, "bool", prog.Decls[1].TypeName)
	require.Len(t, prog.Body.Stmts, 2)
}

func TestParseProgramWithoutName(t *testing.T) {
	src := `begin write 1 end`
	prog, err := parser.ParseSource("t.dl", src)
	require.NoError(t, err)
	assert.Equal(t, "", prog.Name)
	require.Len(t, prog.Body.Stmts, 1)
	require.NotNil(t, prog.Body.Stmts[0].Write)
}

func TestParseIfWithoutElse(t *testing.T) {
	src := `begin if (1 < 2) then write 1 end`
	prog, err := parser.ParseSource("t.dl", src)
	require.NoError(t, err)
	ifStmt := prog.Body.Stmts[0].If
	require.NotNil(t, ifStmt)
	assert.Nil(t, ifStmt.Else)
}

func TestParseOperatorPrecedence(t *testing.T) {
	src := `begin write 1 + 2 * 3 ^ 2 end`
	prog, err := parser.ParseSource("t.dl", src)
	require.NoError(t, err)

	expr := prog.Body.Stmts[0].Write.Value
	// "1 + 2 * 3 ^ 2" parses as a single AddExpr with one MulExpr RHS term,
	// whose own right side is a PowExpr carrying the "^": the whole point
	// of the precedence chain is that + never sees the * or ^ directly.
	addExpr := expr.Left.Left.Rel.Left
	require.Len(t, addExpr.Ops, 1)
	mulExpr := addExpr.Ops[0].Right
	require.Len(t, mulExpr.Ops, 1)
	assert.Equal(t, "*", mulExpr.Ops[0].Op)
	assert.Equal(t, "^", mulExpr.Ops[0].Right.Op)
}

func TestParseSyntaxErrorReportsPosition(t *testing.T) {
	src := `begin write end`
	_, err := parser.ParseSource("t.dl", src)
	require.Error(t, err)

	pe, ok := parser.IsParticipleError(err)
	require.True(t, ok)
	assert.Equal(t, 1, pe.Position().Line)
}

func TestParseWhileAndNestedBlock(t *testing.T) {
	src := `var i: int; begin i := 0; while (i < 10) do begin i := i + 1; write i end end`
	prog, err := parser.ParseSource("t.dl", src)
	require.NoError(t, err)

	stmt := prog.Body.Stmts[1]
	require.NotNil(t, stmt.While)
	require.NotNil(t, stmt.While.Body.Block)
	assert.Len(t, stmt.While.Body.Block.Stmts, 2)
}
