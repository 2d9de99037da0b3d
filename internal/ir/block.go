package ir

import "fmt"

// BasicBlock is a maximal straight-line instruction sequence with a single
// entry and, after the builder finishes, a single control-transfer at its
// end (spec.md §3). Predecessors/Successors are insertion-order slices
// rather than sets, since their order is load-bearing: it keys φ paths
// (spec.md §9 "φ path maps and insertion order").
type BasicBlock struct {
	id           int
	LabelOp      *Label
	Instructions []*Instruction
	Predecessors []*BasicBlock
	Successors   []*BasicBlock
}

// Name returns a stable, human-readable identifier for diagnostics and
// printing ("Bk:" per spec.md §6).
func (b *BasicBlock) Name() string {
	return fmt.Sprintf("B%d", b.id)
}

// ID returns the block's arena-assigned identity.
func (b *BasicBlock) ID() int { return b.id }

// AddInstruction appends instr to the block and sets its owning Block.
func (b *BasicBlock) AddInstruction(instr *Instruction) {
	instr.Block = b
	b.Instructions = append(b.Instructions, instr)
}

// Terminator returns the block's last instruction if it is a control
// transfer (IF/GOTO), else nil.
func (b *BasicBlock) Terminator() *Instruction {
	if len(b.Instructions) == 0 {
		return nil
	}
	last := b.Instructions[len(b.Instructions)-1]
	if last.Op == OpIf || last.Op == OpGoto {
		return last
	}
	return nil
}

// AddSuccessor links b -> s and the reciprocal s.Predecessors entry,
// maintaining the spec.md §3 predecessor/successor reciprocity invariant.
// It is idempotent: linking the same edge twice is a no-op.
func (b *BasicBlock) AddSuccessor(s *BasicBlock) {
	for _, existing := range b.Successors {
		if existing == s {
			return
		}
	}
	b.Successors = append(b.Successors, s)
	s.Predecessors = append(s.Predecessors, b)
}

// RemoveSuccessor unlinks b -> s on both sides.
func (b *BasicBlock) RemoveSuccessor(s *BasicBlock) {
	b.Successors = removeBlock(b.Successors, s)
	s.Predecessors = removeBlock(s.Predecessors, b)
}

func removeBlock(list []*BasicBlock, target *BasicBlock) []*BasicBlock {
	out := list[:0]
	for _, bb := range list {
		if bb != target {
			out = append(out, bb)
		}
	}
	return out
}

// Phis returns the leading run of PHI instructions, which spec.md §3
// requires to immediately follow the leading LABEL with no non-phi
// instruction preceding any phi in the same block.
func (b *BasicBlock) Phis() []*Instruction {
	var phis []*Instruction
	for _, instr := range b.Instructions {
		if instr.Op == OpLabel {
			continue
		}
		if instr.Op != OpPhi {
			break
		}
		phis = append(phis, instr)
	}
	return phis
}

// InsertPhiFront inserts instr immediately after the leading LABEL and any
// already-present phis, preserving the invariant that phis immediately
// follow the block's label with no non-phi instruction before them
// (spec.md §3).
func (b *BasicBlock) InsertPhiFront(instr *Instruction) {
	idx := 0
	if len(b.Instructions) > 0 && b.Instructions[0].Op == OpLabel {
		idx = 1
	}
	for idx < len(b.Instructions) && b.Instructions[idx].Op == OpPhi {
		idx++
	}
	b.Instructions = append(b.Instructions, nil)
	copy(b.Instructions[idx+1:], b.Instructions[idx:])
	b.Instructions[idx] = instr
	instr.Block = b
}

// HasPredecessor reports whether p is currently a predecessor of b.
func (b *BasicBlock) HasPredecessor(p *BasicBlock) bool {
	for _, pred := range b.Predecessors {
		if pred == p {
			return true
		}
	}
	return false
}
