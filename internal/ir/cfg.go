package ir

// CFG is spec.md's "SSA_IC": an ordered sequence of basic blocks whose
// first element is the entry block, plus a label-to-block map so jump
// targets can be materialized lazily during building. The name CFG is
// used in this module's Go code; spec.md §3 calls the same structure
// SSA_IC regardless of whether it currently holds the pre-SSA or SSA
// dialect.
type CFG struct {
	Blocks   []*BasicBlock
	labelMap map[int]*BasicBlock
	nextBlk  int
}

// NewCFG creates an empty CFG.
func NewCFG() *CFG {
	return &CFG{labelMap: make(map[int]*BasicBlock)}
}

// Entry returns bb_sequence[0], or nil for an empty CFG.
func (c *CFG) Entry() *BasicBlock {
	if len(c.Blocks) == 0 {
		return nil
	}
	return c.Blocks[0]
}

// NewBlock creates, registers, and returns a fresh block at the end of the
// sequence.
func (c *CFG) NewBlock() *BasicBlock {
	b := &BasicBlock{id: c.nextBlk}
	c.nextBlk++
	c.Blocks = append(c.Blocks, b)
	return b
}

// BlockFor returns the block owning label, creating it lazily if this is
// the first reference (spec.md §4.1 "Block stitching contract").
func (c *CFG) BlockFor(label *Label) *BasicBlock {
	if b, ok := c.labelMap[label.Num]; ok {
		return b
	}
	b := c.NewBlock()
	b.LabelOp = label
	c.labelMap[label.Num] = b
	return b
}

// BindLabel records that label names b, without creating a new block. Used
// when a block is created first (e.g. the entry block) and labeled after.
func (c *CFG) BindLabel(label *Label, b *BasicBlock) {
	b.LabelOp = label
	c.labelMap[label.Num] = b
}

// RemoveBlock drops b from the sequence and its label mapping. Callers are
// responsible for first unlinking every predecessor/successor edge to b
// (spec.md §5: "passes that delete blocks/instructions must also remove
// every dangling predecessor/successor/φ-path entry to them in the same
// pass").
func (c *CFG) RemoveBlock(b *BasicBlock) {
	out := c.Blocks[:0]
	for _, bb := range c.Blocks {
		if bb != b {
			out = append(out, bb)
		}
	}
	c.Blocks = out
	if b.LabelOp != nil {
		delete(c.labelMap, b.LabelOp.Num)
	}
}

// Reachable computes the forward-reachable closure from the entry block by
// successor edges (spec.md §4.4 unreachable-block elimination).
func (c *CFG) Reachable() map[*BasicBlock]bool {
	seen := make(map[*BasicBlock]bool)
	entry := c.Entry()
	if entry == nil {
		return seen
	}
	stack := []*BasicBlock{entry}
	seen[entry] = true
	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, s := range b.Successors {
			if !seen[s] {
				seen[s] = true
				stack = append(stack, s)
			}
		}
	}
	return seen
}

// AllInstructions returns every instruction across every block, in block
// order then intra-block order. Used by passes that need a flat view (DCE
// use-counting, liveness's flattened list).
func (c *CFG) AllInstructions() []*Instruction {
	var all []*Instruction
	for _, b := range c.Blocks {
		all = append(all, b.Instructions...)
	}
	return all
}
