package ir_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efrenlopes/dl-compiler/internal/ir"
)

func TestInterpRealPrintFormatting(t *testing.T) {
	cfg := ir.NewCFG()
	b := cfg.NewBlock()
	b.AddInstruction(ir.NewInstruction(ir.OpPrint, ir.RealConst(3.5), nil, nil))

	var out bytes.Buffer
	interp := ir.NewInterp(cfg, strings.NewReader(""), &out)
	require.NoError(t, interp.Run())
	assert.Equal(t, "output: 3.5000\n", out.String())
}

func TestInterpDivisionByZeroRuntimeFailure(t *testing.T) {
	cfg := ir.NewCFG()
	b := cfg.NewBlock()
	result := &ir.TempVersion{Origin: &ir.Temp{Num: 0, Typ: ir.Int}, Version: 0}
	b.AddInstruction(ir.NewInstruction(ir.OpDiv, ir.IntConst(1), ir.IntConst(0), result))
	b.AddInstruction(ir.NewInstruction(ir.OpPrint, result, nil, nil))

	var out bytes.Buffer
	interp := ir.NewInterp(cfg, strings.NewReader(""), &out)
	err := interp.Run()
	require.Error(t, err)
	var rerr *ir.RuntimeError
	require.ErrorAs(t, err, &rerr)
	assert.NotContains(t, out.String(), "output:", "the interpreter must halt before reaching the print")
}

func TestInterpPhiSelectsValueFromPredecessor(t *testing.T) {
	cfg := ir.NewCFG()
	entry := cfg.NewBlock()
	left := cfg.NewBlock()
	right := cfg.NewBlock()
	join := cfg.NewBlock()

	leftLabel := &ir.Label{Num: 0}
	rightLabel := &ir.Label{Num: 1}
	cfg.BindLabel(leftLabel, left)
	cfg.BindLabel(rightLabel, right)

	entry.AddInstruction(ir.NewInstruction(ir.OpIf, ir.BoolConst(false), leftLabel, rightLabel))
	entry.AddSuccessor(left)
	entry.AddSuccessor(right)

	left.AddInstruction(ir.NewInstruction(ir.OpLabel, nil, nil, leftLabel))
	left.AddSuccessor(join)
	right.AddInstruction(ir.NewInstruction(ir.OpLabel, nil, nil, rightLabel))
	right.AddSuccessor(join)

	origin := &ir.Temp{Num: 0, Typ: ir.Int}
	phi := &ir.Phi{}
	phi.Set(left, ir.IntConst(11))
	phi.Set(right, ir.IntConst(22))
	phiResult := &ir.TempVersion{Origin: origin, Version: 0}
	join.AddInstruction(&ir.Instruction{Op: ir.OpPhi, Arg1: phi, Arg2: ir.TheEmpty, Result: phiResult})
	join.AddInstruction(ir.NewInstruction(ir.OpPrint, phiResult, nil, nil))

	var out bytes.Buffer
	interp := ir.NewInterp(cfg, strings.NewReader(""), &out)
	require.NoError(t, interp.Run())
	assert.Equal(t, "output: 22\n", out.String(), "control arrived via right, so phi must select 22")
}

func TestInterpUninitializedReadIsTypeZero(t *testing.T) {
	cfg := ir.NewCFG()
	b := cfg.NewBlock()
	unset := &ir.TempVersion{Origin: &ir.Temp{Num: 0, Typ: ir.Real}, Version: -1}
	b.AddInstruction(ir.NewInstruction(ir.OpPrint, unset, nil, nil))

	var out bytes.Buffer
	interp := ir.NewInterp(cfg, strings.NewReader(""), &out)
	require.NoError(t, interp.Run())
	assert.Equal(t, "output: 0.0000\n", out.String())
}
