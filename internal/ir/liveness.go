package ir

import "sort"

// LiveRange is the [Start, End] instruction-position interval over which a
// single SSA value is live, the unit linear-scan register allocation
// consumes (spec.md §4.6).
type LiveRange struct {
	Value *TempVersion
	Start int
	End   int
}

// ComputeLiveness numbers every instruction in block order and derives one
// LiveRange per SSA value. A φ operand flowing in along a predecessor edge
// counts as a use at the end of that predecessor block, not inside the φ's
// own block, since that is where the value must still be live for the
// control transfer to carry it correctly. Loop-carried values get their
// range extended across the loop's back edge so linear scan never assigns
// their register to something else mid-loop-body — the "back-edge
// extension" heuristic Poletto & Sarkar describe for values live across
// natural loops.
func ComputeLiveness(cfg *CFG) []*LiveRange {
	pos := make(map[*Instruction]int)
	blockStart := make(map[*BasicBlock]int)
	blockEnd := make(map[*BasicBlock]int)
	blockIndex := make(map[*BasicBlock]int)

	n := 0
	for bi, b := range cfg.Blocks {
		blockIndex[b] = bi
		blockStart[b] = n
		for _, instr := range b.Instructions {
			pos[instr] = n
			n++
		}
		blockEnd[b] = n - 1
	}

	defPos := make(map[*TempVersion]int)
	endPos := make(map[*TempVersion]int)

	touch := func(v *TempVersion, p int) {
		if cur, ok := endPos[v]; !ok || p > cur {
			endPos[v] = p
		}
	}

	for _, b := range cfg.Blocks {
		for _, instr := range b.Instructions {
			p := pos[instr]
			if tv, ok := instr.Result.(*TempVersion); ok {
				defPos[tv] = p
				touch(tv, p)
			}
			if instr.Op == OpPhi {
				continue
			}
			if tv, ok := instr.Arg1.(*TempVersion); ok {
				touch(tv, p)
			}
			if tv, ok := instr.Arg2.(*TempVersion); ok {
				touch(tv, p)
			}
		}
		for _, instr := range b.Phis() {
			phi := instr.Arg1.(*Phi)
			for _, path := range phi.Paths {
				if tv, ok := path.Value.(*TempVersion); ok {
					touch(tv, blockEnd[path.Pred])
				}
			}
		}
	}

	// Back-edge extension: an edge b -> header is a back edge when header
	// does not come after b in block order (the builder always emits a
	// loop header before its body and closes the loop with an explicit
	// goto back to it, per spec.md §4.1's while-loop skeleton). Any value
	// whose range already straddles the header must keep covering the
	// whole loop body, so stretch it to the back edge's source.
	for _, b := range cfg.Blocks {
		for _, s := range b.Successors {
			if blockIndex[s] > blockIndex[b] {
				continue
			}
			header := s
			for v, end := range endPos {
				if defPos[v] <= blockEnd[header] && end >= blockStart[header] {
					touch(v, blockEnd[b])
				}
			}
		}
	}

	ranges := make([]*LiveRange, 0, len(defPos))
	for v, d := range defPos {
		ranges = append(ranges, &LiveRange{Value: v, Start: d, End: endPos[v]})
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].Start < ranges[j].Start })
	return ranges
}
