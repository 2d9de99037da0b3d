package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efrenlopes/dl-compiler/internal/ir"
)

// buildFiveLiveInts builds five simultaneously-live int values in one
// block, one more than NumIntRegs, forcing at least one spill.
func buildFiveLiveInts() *ir.CFG {
	cfg := ir.NewCFG()
	b := cfg.NewBlock()
	origin := &ir.Temp{Num: 0, Typ: ir.Int}
	var vals []*ir.TempVersion
	for i := 0; i < 5; i++ {
		v := &ir.TempVersion{Origin: origin, Version: i}
		b.AddInstruction(ir.NewInstruction(ir.OpMove, ir.IntConst(int32(i)), nil, v))
		vals = append(vals, v)
	}
	// The sum uses the first two values and the prints use the other
	// three, so all five ranges are live together at the last move.
	sum := ir.NewInstruction(ir.OpSum, vals[0], vals[1], &ir.TempVersion{Origin: origin, Version: 10})
	b.AddInstruction(sum)
	for _, v := range vals[2:] {
		b.AddInstruction(ir.NewInstruction(ir.OpPrint, v, nil, nil))
	}
	return cfg
}

func TestLivenessAndRegallocSpillsBeyondPoolSize(t *testing.T) {
	cfg := buildFiveLiveInts()
	ranges := ir.ComputeLiveness(cfg)
	require.Len(t, ranges, 6) // 5 moves + 1 sum

	allocs := ir.AllocateRegisters(ranges)
	spilled := 0
	registers := 0
	for _, a := range allocs {
		if a.Spilled {
			spilled++
		} else {
			registers++
		}
	}
	assert.GreaterOrEqual(t, spilled, 1, "more simultaneously-live int values than registers must force a spill")
}

func TestRegallocFloatsUseSeparatePool(t *testing.T) {
	cfg := ir.NewCFG()
	b := cfg.NewBlock()
	origin := &ir.Temp{Num: 0, Typ: ir.Real}
	v := &ir.TempVersion{Origin: origin, Version: 0}
	b.AddInstruction(ir.NewInstruction(ir.OpMove, ir.RealConst(1.0), nil, v))
	b.AddInstruction(ir.NewInstruction(ir.OpPrint, v, nil, nil))

	ranges := ir.ComputeLiveness(cfg)
	allocs := ir.AllocateRegisters(ranges)
	alloc := allocs[v]
	require.NotNil(t, alloc)
	assert.False(t, alloc.Spilled)
	assert.Equal(t, "f0", alloc.Register)
}
