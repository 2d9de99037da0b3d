package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/efrenlopes/dl-compiler/internal/ir"
)

func TestPrintInstructionForms(t *testing.T) {
	label := &ir.Label{Num: 3}
	r := &ir.TempVersion{Origin: &ir.Temp{Num: 0, Typ: ir.Int}, Version: 0}

	cases := []struct {
		name string
		inst *ir.Instruction
		want string
	}{
		{"label", ir.NewInstruction(ir.OpLabel, nil, nil, label), "L3:"},
		{"goto", ir.NewInstruction(ir.OpGoto, nil, nil, label), "goto L3"},
		{"move", ir.NewInstruction(ir.OpMove, ir.IntConst(5), nil, r), "t0.0 = 5"},
		{"print", ir.NewInstruction(ir.OpPrint, ir.IntConst(9), nil, nil), "print 9"},
		{"read", ir.NewInstruction(ir.OpRead, nil, nil, r), "read t0.0"},
		{"unary", ir.NewInstruction(ir.OpMinus, ir.IntConst(1), nil, r), "t0.0 = MINUS 1"},
		{"binary", ir.NewInstruction(ir.OpSum, ir.IntConst(1), ir.IntConst(2), r), "t0.0 = 1 SUM 2"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, ir.PrintInstruction(c.inst))
		})
	}
}

func TestPrintInstructionIf(t *testing.T) {
	ltrue := &ir.Label{Num: 0}
	lfalse := &ir.Label{Num: 1}
	instr := ir.NewInstruction(ir.OpIf, ir.BoolConst(true), ltrue, lfalse)
	assert.Equal(t, "if 1 goto L0 else L1", ir.PrintInstruction(instr))
}

func TestPrintPhi(t *testing.T) {
	origin := &ir.Temp{Num: 2, Typ: ir.Int}
	pred := &ir.BasicBlock{}
	phi := &ir.Phi{}
	phi.Set(pred, &ir.TempVersion{Origin: origin, Version: 0})
	result := &ir.TempVersion{Origin: origin, Version: 1}
	instr := &ir.Instruction{Op: ir.OpPhi, Arg1: phi, Arg2: ir.TheEmpty, Result: result}

	out := ir.PrintInstruction(instr)
	assert.Contains(t, out, "t2.1 =")
	assert.Contains(t, out, "phi")
	assert.Contains(t, out, "t2.0")
}
