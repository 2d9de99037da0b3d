package ir

// ConstructSSA lowers a builder-produced CFG (ALLOCA/STORE/LOAD dialect) into
// pruned SSA form (spec.md §4.3): mem2reg collapses stack slots into plain
// values, φ nodes are placed at dominance-frontier join points only where a
// variable actually has more than one reaching definition, and stack-based
// renaming over a pre-order walk of the dominator tree assigns every
// definition a fresh TempVersion. Modeled on the three-pass shape of
// tmc-mirror-go.tools/ssa/lift.go (liftable alloc rewriting, newPhis,
// rename), adapted from its index-keyed "Block.Index" bookkeeping to this
// package's pointer-based BasicBlock graph.
func ConstructSSA(cfg *CFG) {
	addrTemps := collectAddrTemps(cfg)
	mem2Reg(cfg)
	dom := ComputeDominance(cfg)
	origin := placePhis(cfg, dom)
	renameCFG(cfg, dom, origin, addrTemps)
	removeDeadPhis(cfg)
}

// collectAddrTemps gathers every address-backed Temp (one per declared
// variable, plus the synthetic ones short-circuit lowering allocates) before
// mem2Reg strips their ALLOCA instructions. A variable that is declared but
// never assigned (legal per sema, which has no definite-assignment check —
// internal/typesys/typesys.go) has zero defsites and so would otherwise
// never be seeded for renaming.
func collectAddrTemps(cfg *CFG) []*Temp {
	var temps []*Temp
	for _, b := range cfg.Blocks {
		for _, instr := range b.Instructions {
			if instr.Op != OpAlloca {
				continue
			}
			if t, ok := instr.Result.(*Temp); ok {
				temps = append(temps, t)
			}
		}
	}
	return temps
}

// mem2Reg strips ALLOCA (a variable's stack slot has no SSA meaning of its
// own) and rewrites STORE/LOAD into MOVE against the same Temp, so that
// every variable becomes an ordinary multiply-defined value ready for
// renaming. Instruction pointer identity is preserved: operators are
// mutated in place rather than replaced, matching the "instructions may be
// mutated in place" note of spec.md §9.
func mem2Reg(cfg *CFG) {
	for _, b := range cfg.Blocks {
		kept := b.Instructions[:0]
		for _, instr := range b.Instructions {
			switch instr.Op {
			case OpAlloca:
				continue
			case OpStore:
				instr.Op = OpMove
			case OpLoad:
				instr.Op = OpMove
			}
			kept = append(kept, instr)
		}
		b.Instructions = kept
	}
}

// placePhis runs the classical Cytron/Ferrante/Rosen/Wegman/Zadeck
// iterated dominance-frontier worklist (spec.md §4.2, §4.3(a)) for every
// variable with more than one definition site, inserting an empty φ
// (no paths yet; those are filled in during renaming) at each block it
// reaches. It returns the variable each inserted φ instruction belongs to,
// since a φ's own Result is not yet a usable marker: renaming overwrites it
// with a fresh TempVersion.
func placePhis(cfg *CFG, dom *Dominance) map[*Instruction]*Temp {
	origin := make(map[*Instruction]*Temp)
	defsites := computeDefsites(cfg)

	for v, sites := range defsites {
		if len(sites) <= 1 {
			continue
		}
		hasAlready := make(map[*BasicBlock]bool)
		everOnWorklist := make(map[*BasicBlock]bool)
		var worklist []*BasicBlock
		for _, s := range sites {
			everOnWorklist[s] = true
			worklist = append(worklist, s)
		}
		for len(worklist) > 0 {
			b := worklist[0]
			worklist = worklist[1:]
			for _, d := range dom.Frontier(b) {
				if hasAlready[d] {
					continue
				}
				phi := &Instruction{Op: OpPhi, Arg1: &Phi{}, Arg2: TheEmpty, Result: TheEmpty}
				d.InsertPhiFront(phi)
				origin[phi] = v
				hasAlready[d] = true
				if !everOnWorklist[d] {
					everOnWorklist[d] = true
					worklist = append(worklist, d)
				}
			}
		}
	}
	return origin
}

// computeDefsites maps every Temp that is ever a definition (an
// instruction's Result, before renaming) to the set of blocks defining it.
// A Temp with a single definition site is already in SSA form and never
// needs a φ; after mem2Reg that leaves exactly the address-backed variables
// that are assigned in more than one block as φ candidates.
func computeDefsites(cfg *CFG) map[*Temp][]*BasicBlock {
	sites := make(map[*Temp][]*BasicBlock)
	seen := make(map[*Temp]map[*BasicBlock]bool)
	for _, b := range cfg.Blocks {
		for _, instr := range b.Instructions {
			t, ok := instr.Result.(*Temp)
			if !ok {
				continue
			}
			if seen[t] == nil {
				seen[t] = make(map[*BasicBlock]bool)
			}
			if !seen[t][b] {
				seen[t][b] = true
				sites[t] = append(sites[t], b)
			}
		}
	}
	return sites
}

// renamer holds the per-variable definition stacks driving the stack-based
// renaming of spec.md §4.3(b).
type renamer struct {
	stacks   map[*Temp][]*TempVersion
	counters map[*Temp]int
}

func (r *renamer) fresh(v *Temp) *TempVersion {
	tv := &TempVersion{Origin: v, Version: r.counters[v]}
	r.counters[v]++
	r.stacks[v] = append(r.stacks[v], tv)
	return tv
}

func (r *renamer) top(v *Temp) (*TempVersion, bool) {
	s := r.stacks[v]
	if len(s) == 0 {
		return nil, false
	}
	return s[len(s)-1], true
}

func (r *renamer) pop(v *Temp) {
	s := r.stacks[v]
	r.stacks[v] = s[:len(s)-1]
}

func (r *renamer) substitute(op Operand) Operand {
	t, ok := op.(*Temp)
	if !ok {
		return op
	}
	if tv, ok := r.top(t); ok {
		return tv
	}
	return op
}

// renameCFG performs the pre-order dominator-tree walk of spec.md §4.3(b):
// each φ in a block claims a fresh version for its variable, each ordinary
// instruction's uses are substituted with the current top-of-stack version
// before its own result (if any) claims a fresh version, every successor's
// φ nodes record the block's current version of their variable along this
// edge, children are visited recursively, and every version this block
// pushed is popped on the way back out.
func renameCFG(cfg *CFG, dom *Dominance, origin map[*Instruction]*Temp, addrTemps []*Temp) {
	if len(cfg.Blocks) == 0 {
		return
	}
	r := &renamer{stacks: make(map[*Temp][]*TempVersion), counters: make(map[*Temp]int)}

	// Pre-seed every address-backed variable with a sentinel version (-1) so
	// a use reached along a path with no preceding definition (an
	// uninitialized read, which sema does not reject, or a variable that is
	// declared but never assigned at all and so has zero defsites) resolves
	// to a well-formed TempVersion rather than an empty stack or a bare
	// *Temp. The interpreter treats an unseen TempVersion as that type's
	// zero value.
	for _, v := range addrTemps {
		r.stacks[v] = []*TempVersion{{Origin: v, Version: -1}}
	}

	var walk func(b *BasicBlock)
	walk = func(b *BasicBlock) {
		var pushed []*Temp

		for _, instr := range b.Phis() {
			v := origin[instr]
			tv := r.fresh(v)
			pushed = append(pushed, v)
			instr.Result = tv
		}

		for _, instr := range b.Instructions {
			if instr.Op == OpPhi {
				continue
			}
			instr.Arg1 = r.substitute(instr.Arg1)
			instr.Arg2 = r.substitute(instr.Arg2)
			if v, ok := instr.Result.(*Temp); ok {
				tv := r.fresh(v)
				pushed = append(pushed, v)
				instr.Result = tv
			}
		}

		for _, s := range b.Successors {
			for _, instr := range s.Phis() {
				v := origin[instr]
				phi := instr.Arg1.(*Phi)
				if tv, ok := r.top(v); ok {
					phi.Set(b, tv)
				}
			}
		}

		for _, c := range dom.Children(b) {
			walk(c)
		}

		for i := len(pushed) - 1; i >= 0; i-- {
			r.pop(pushed[i])
		}
	}
	walk(cfg.Entry())
}

// removeDeadPhis drops φ instructions that ended up with zero paths (a
// placed-but-unreached join, which can only happen at the entry block of a
// degenerate CFG). φs with exactly one distinct value are left for the
// optimizer's phi-simplification pass (spec.md §4.3(c), §4.4) since
// rewriting their uses here would duplicate that pass's work.
func removeDeadPhis(cfg *CFG) {
	for _, b := range cfg.Blocks {
		kept := b.Instructions[:0]
		for _, instr := range b.Instructions {
			if instr.Op == OpPhi {
				if phi, ok := instr.Arg1.(*Phi); ok && len(phi.Paths) == 0 {
					continue
				}
			}
			kept = append(kept, instr)
		}
		b.Instructions = kept
	}
}
