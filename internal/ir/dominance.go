package ir

// Dominance implements the classical iterative dataflow of spec.md §4.2:
// Dom(entry) = {entry}; Dom(b) = {b} ∪ ⋂_{p ∈ pred(b)} Dom(p), iterated to
// a fixed point over bb_sequence in its natural order. The dominance
// frontier construction follows the Cytron et al. upward walk, matching
// tmc-mirror-go.tools/ssa/lift.go's domFrontier.build.
type Dominance struct {
	cfg *CFG

	dom   map[*BasicBlock]map[*BasicBlock]bool
	idom  map[*BasicBlock]*BasicBlock
	order []*BasicBlock // bb_sequence order, cached for iteration

	children map[*BasicBlock][]*BasicBlock // dominator tree
	frontier map[*BasicBlock][]*BasicBlock
}

// ComputeDominance runs dominator-set computation, idom extraction, and
// dominance-frontier construction for cfg.
func ComputeDominance(cfg *CFG) *Dominance {
	d := &Dominance{
		cfg:      cfg,
		dom:      make(map[*BasicBlock]map[*BasicBlock]bool),
		idom:     make(map[*BasicBlock]*BasicBlock),
		order:    append([]*BasicBlock{}, cfg.Blocks...),
		children: make(map[*BasicBlock][]*BasicBlock),
		frontier: make(map[*BasicBlock][]*BasicBlock),
	}
	if len(d.order) == 0 {
		return d
	}
	d.computeDomSets()
	d.computeIdom()
	d.computeFrontier()
	return d
}

func (d *Dominance) allBlocksSet() map[*BasicBlock]bool {
	all := make(map[*BasicBlock]bool, len(d.order))
	for _, b := range d.order {
		all[b] = true
	}
	return all
}

func (d *Dominance) computeDomSets() {
	entry := d.order[0]
	all := d.allBlocksSet()

	d.dom[entry] = map[*BasicBlock]bool{entry: true}
	for _, b := range d.order[1:] {
		d.dom[b] = all
	}

	changed := true
	for changed {
		changed = false
		for _, b := range d.order {
			if b == entry {
				continue
			}
			var newSet map[*BasicBlock]bool
			for _, p := range b.Predecessors {
				if newSet == nil {
					newSet = copySet(d.dom[p])
					continue
				}
				intersect(newSet, d.dom[p])
			}
			if newSet == nil {
				newSet = map[*BasicBlock]bool{}
			}
			newSet[b] = true
			if !setsEqual(newSet, d.dom[b]) {
				d.dom[b] = newSet
				changed = true
			}
		}
	}
}

func copySet(s map[*BasicBlock]bool) map[*BasicBlock]bool {
	out := make(map[*BasicBlock]bool, len(s))
	for k := range s {
		out[k] = true
	}
	return out
}

func intersect(a, b map[*BasicBlock]bool) {
	for k := range a {
		if !b[k] {
			delete(a, k)
		}
	}
}

func setsEqual(a, b map[*BasicBlock]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

// Dominates reports whether a dominates b (a == b counts as dominating).
func (d *Dominance) Dominates(a, b *BasicBlock) bool {
	set := d.dom[b]
	return set != nil && set[a]
}

func (d *Dominance) computeIdom() {
	entry := d.order[0]
	for _, b := range d.order {
		if b == entry {
			continue
		}
		var idom *BasicBlock
		for cand := range d.dom[b] {
			if cand == b {
				continue
			}
			if idom == nil {
				idom = cand
				continue
			}
			// idom is the strict dominator not strictly dominated by any
			// other strict dominator of b: prefer the candidate that the
			// current choice dominates (i.e. the closer one).
			if d.Dominates(idom, cand) {
				idom = cand
			}
		}
		d.idom[b] = idom
		if idom != nil {
			d.children[idom] = append(d.children[idom], b)
		}
	}
}

// Idom returns b's immediate dominator, or nil for the entry block.
func (d *Dominance) Idom(b *BasicBlock) *BasicBlock { return d.idom[b] }

// Children returns b's children in the dominator tree, in discovery order.
func (d *Dominance) Children(b *BasicBlock) []*BasicBlock { return d.children[b] }

func (d *Dominance) computeFrontier() {
	for _, b := range d.order {
		if len(b.Predecessors) < 2 {
			continue
		}
		for _, p := range b.Predecessors {
			runner := p
			for runner != nil && runner != d.idom[b] {
				d.frontier[runner] = appendUnique(d.frontier[runner], b)
				runner = d.idom[runner]
			}
		}
	}
}

func appendUnique(list []*BasicBlock, b *BasicBlock) []*BasicBlock {
	for _, existing := range list {
		if existing == b {
			return list
		}
	}
	return append(list, b)
}

// Frontier returns the dominance frontier of b.
func (d *Dominance) Frontier(b *BasicBlock) []*BasicBlock { return d.frontier[b] }

// PreorderDomTree returns every block reachable from root in pre-order over
// the dominator tree, used by SSA renaming (spec.md §4.3(b): "Renaming is a
// pre-order DFS over the dominator tree").
func (d *Dominance) PreorderDomTree(root *BasicBlock) []*BasicBlock {
	var order []*BasicBlock
	var visit func(*BasicBlock)
	visit = func(b *BasicBlock) {
		order = append(order, b)
		for _, c := range d.children[b] {
			visit(c)
		}
	}
	visit(root)
	return order
}
