package ir_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efrenlopes/dl-compiler/internal/ir"
	"github.com/efrenlopes/dl-compiler/internal/parser"
	"github.com/efrenlopes/dl-compiler/internal/sema"
)

// compileAndRun takes source through the full pipeline (parse, check,
// build, SSA construction, optimization, interpretation) and returns
// everything PRINT wrote, the way cmd/dlc does it for a non-interactive
// run. input is fed to any READ statements, one line per read.
func compileAndRun(t *testing.T, source, input string) string {
	t.Helper()
	prog, err := parser.ParseSource("test.dl", source)
	require.NoError(t, err)

	checked, err := sema.Check(prog)
	require.NoError(t, err)

	cfg := ir.BuildProgram(checked)
	ir.ConstructSSA(cfg)
	ir.Optimize(cfg)

	var out bytes.Buffer
	interp := ir.NewInterp(cfg, strings.NewReader(input), &out)
	err = interp.Run()
	require.NoError(t, err)
	return out.String()
}

func TestStraightLineConstantFolding(t *testing.T) {
	src := `program p var x: int; begin x := 2 + 3 * 4; write x end`
	out := compileAndRun(t, src, "")
	assert.Equal(t, "output: 14\n", out)
}

func TestIfElseBranchFolding(t *testing.T) {
	src := `begin if (1 < 2) then write 1 else write 0 end`
	out := compileAndRun(t, src, "")
	assert.Equal(t, "output: 1\n", out)
}

func TestWhileCounting(t *testing.T) {
	src := `var i: int; begin i := 0; while (i < 3) do i := i + 1; write i end`
	out := compileAndRun(t, src, "")
	assert.Equal(t, "output: 3\n", out)
}

func TestShortCircuitOr(t *testing.T) {
	src := `var a, b: bool; begin a := true; b := false; if (a or b) then write 1 end`
	out := compileAndRun(t, src, "")
	assert.Equal(t, "output: 1\n", out)
}

func TestDeadStoreRemoval(t *testing.T) {
	src := `var x: int; begin x := 5; x := 7; write x end`

	prog, err := parser.ParseSource("test.dl", src)
	require.NoError(t, err)
	checked, err := sema.Check(prog)
	require.NoError(t, err)
	cfg := ir.BuildProgram(checked)
	ir.ConstructSSA(cfg)
	ir.Optimize(cfg)

	printed := ir.Print(cfg)
	assert.NotContains(t, printed, "5", "the dead definition of x should not survive DCE")

	out := compileAndRun(t, src, "")
	assert.Equal(t, "output: 7\n", out)
}

func TestReadThenCompute(t *testing.T) {
	src := `var n: int; begin read n; write n * n end`

	out := compileAndRun(t, src, "3\n")
	assert.Equal(t, "input: output: 9\n", out)

	out = compileAndRun(t, src, "-4\n")
	assert.Equal(t, "input: output: 16\n", out)
}

func TestInvalidReadHalts(t *testing.T) {
	src := `var n: int; begin read n; write n end`
	prog, err := parser.ParseSource("test.dl", src)
	require.NoError(t, err)
	checked, err := sema.Check(prog)
	require.NoError(t, err)
	cfg := ir.BuildProgram(checked)
	ir.ConstructSSA(cfg)
	ir.Optimize(cfg)

	var out bytes.Buffer
	err = ir.NewInterp(cfg, strings.NewReader("not-a-number\n"), &out).Run()
	var rerr *ir.RuntimeError
	require.ErrorAs(t, err, &rerr, "invalid input halts interpretation with a RuntimeError")
	assert.Contains(t, out.String(), "Entrada de dados inválida! Interpretação encerrada.")
}

// TestOptimizationIsIdempotent checks the §7 law that running the
// optimizer twice produces the same printed IR as running it once.
func TestOptimizationIsIdempotent(t *testing.T) {
	src := `var i, acc: int; begin i := 0; acc := 0; while (i < 5) do begin acc := acc + i; i := i + 1 end; write acc end`
	prog, err := parser.ParseSource("test.dl", src)
	require.NoError(t, err)
	checked, err := sema.Check(prog)
	require.NoError(t, err)

	cfg := ir.BuildProgram(checked)
	ir.ConstructSSA(cfg)
	ir.Optimize(cfg)
	once := ir.Print(cfg)

	ir.Optimize(cfg)
	twice := ir.Print(cfg)

	assert.Equal(t, once, twice)
}
