package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efrenlopes/dl-compiler/internal/ir"
)

func TestFoldConstantsArithmeticAndWraparound(t *testing.T) {
	cfg := ir.NewCFG()
	b := cfg.NewBlock()
	result := &ir.Temp{Num: 0, Typ: ir.Int}
	instr := ir.NewInstruction(ir.OpSum, ir.IntConst(2147483647), ir.IntConst(1), result)
	b.AddInstruction(instr)

	ir.Optimize(cfg)

	require.Equal(t, ir.OpMove, instr.Op)
	c, ok := instr.Arg1.(*ir.Const)
	require.True(t, ok)
	assert.Equal(t, int32(-2147483648), c.Value, "int32 addition wraps on overflow")
}

func TestFoldConstantsDivisionByZeroNotFolded(t *testing.T) {
	cfg := ir.NewCFG()
	b := cfg.NewBlock()
	result := &ir.Temp{Num: 0, Typ: ir.Int}
	instr := ir.NewInstruction(ir.OpDiv, ir.IntConst(1), ir.IntConst(0), result)
	instr.Result = &ir.TempVersion{Origin: result, Version: 0}
	printInstr := ir.NewInstruction(ir.OpPrint, instr.Result, nil, nil)
	b.AddInstruction(instr)
	b.AddInstruction(printInstr)

	ir.Optimize(cfg)

	assert.Equal(t, ir.OpDiv, instr.Op, "division by a zero constant must not be folded")
}

func TestBranchFoldingDropsDeadArm(t *testing.T) {
	cfg := ir.NewCFG()
	entry := cfg.NewBlock()
	ltrue := cfg.NewBlock()
	lfalse := cfg.NewBlock()

	trueLabel := &ir.Label{Num: 0}
	falseLabel := &ir.Label{Num: 1}
	cfg.BindLabel(trueLabel, ltrue)
	cfg.BindLabel(falseLabel, lfalse)
	ltrue.AddInstruction(ir.NewInstruction(ir.OpLabel, nil, nil, trueLabel))
	lfalse.AddInstruction(ir.NewInstruction(ir.OpLabel, nil, nil, falseLabel))

	entry.AddInstruction(ir.NewInstruction(ir.OpIf, ir.BoolConst(true), trueLabel, falseLabel))
	entry.AddSuccessor(ltrue)
	entry.AddSuccessor(lfalse)

	ltrue.AddInstruction(ir.NewInstruction(ir.OpPrint, ir.IntConst(1), nil, nil))
	lfalse.AddInstruction(ir.NewInstruction(ir.OpPrint, ir.IntConst(0), nil, nil))

	ir.Optimize(cfg)

	assert.False(t, lfalse.HasPredecessor(entry))
	for _, b := range cfg.Blocks {
		assert.NotEqual(t, lfalse, b, "the unreachable false arm must be removed entirely")
	}
}

func TestPhiSimplificationSingleValue(t *testing.T) {
	cfg := ir.NewCFG()
	entry := cfg.NewBlock()
	join := cfg.NewBlock()
	entry.AddSuccessor(join)

	origin := &ir.Temp{Num: 0, Typ: ir.Int}
	v := &ir.TempVersion{Origin: origin, Version: 0}
	phiOperand := &ir.Phi{}
	phiOperand.Set(entry, v)
	phiResult := &ir.TempVersion{Origin: origin, Version: 1}
	phiInstr := &ir.Instruction{Op: ir.OpPhi, Arg1: phiOperand, Arg2: ir.TheEmpty, Result: phiResult}
	join.AddInstruction(phiInstr)
	join.AddInstruction(ir.NewInstruction(ir.OpPrint, phiResult, nil, nil))

	ir.Optimize(cfg)

	assert.Equal(t, ir.OpMove, phiInstr.Op)
	assert.Equal(t, v, phiInstr.Arg1)
}

func TestDeadCodeEliminationRemovesUnusedPureInstruction(t *testing.T) {
	cfg := ir.NewCFG()
	b := cfg.NewBlock()
	deadResult := &ir.TempVersion{Origin: &ir.Temp{Num: 0, Typ: ir.Int}, Version: 0}
	dead := ir.NewInstruction(ir.OpSum, ir.IntConst(1), ir.IntConst(2), deadResult)
	live := ir.NewInstruction(ir.OpPrint, ir.IntConst(9), nil, nil)
	b.AddInstruction(dead)
	b.AddInstruction(live)

	ir.Optimize(cfg)

	assert.Equal(t, []*ir.Instruction{live}, b.Instructions)
}

func TestBlockMergingFoldsFallthroughChain(t *testing.T) {
	cfg := ir.NewCFG()
	a := cfg.NewBlock()
	b := cfg.NewBlock()
	a.AddInstruction(ir.NewInstruction(ir.OpPrint, ir.IntConst(1), nil, nil))
	b.AddInstruction(ir.NewInstruction(ir.OpPrint, ir.IntConst(2), nil, nil))
	a.AddSuccessor(b)

	ir.Optimize(cfg)

	require.Len(t, cfg.Blocks, 1)
	assert.Len(t, cfg.Blocks[0].Instructions, 2)
}
