package ir

import "math"

// Optimize runs the fixed-point SSA optimizer of spec.md §4.4: copy
// propagation, constant folding, branch folding, unreachable-block
// elimination, φ-simplification, dead-code elimination, and block merging,
// repeated until a full round makes no change. Each sub-pass is
// conservative about what it rewrites and reports whether it changed
// anything, the same "keep re-running until nothing moves" shape as
// tmc-mirror-go.tools/ssa's own lifting+simplification passes.
func Optimize(cfg *CFG) {
	for {
		changed := false
		changed = copyPropagate(cfg) || changed
		changed = foldConstants(cfg) || changed
		changed = foldBranches(cfg) || changed
		changed = eliminateUnreachable(cfg) || changed
		changed = simplifyPhis(cfg) || changed
		changed = eliminateDeadCode(cfg) || changed
		changed = mergeBlocks(cfg) || changed
		if !changed {
			return
		}
	}
}

// --- copy propagation -------------------------------------------------

// copyPropagate replaces every use of a TempVersion defined by a trivial
// MOVE (r = a, where a is itself a TempVersion or Const) with the moved
// value, following chains of copies to their ultimate source.
func copyPropagate(cfg *CFG) bool {
	copyOf := make(map[*TempVersion]Operand)
	for _, instr := range cfg.AllInstructions() {
		if instr.Op != OpMove {
			continue
		}
		tv, ok := instr.Result.(*TempVersion)
		if !ok {
			continue
		}
		switch instr.Arg1.(type) {
		case *TempVersion, *Const:
			copyOf[tv] = instr.Arg1
		}
	}
	if len(copyOf) == 0 {
		return false
	}

	resolve := func(op Operand) Operand {
		for {
			tv, ok := op.(*TempVersion)
			if !ok {
				return op
			}
			src, ok := copyOf[tv]
			if !ok || src == op {
				return op
			}
			op = src
		}
	}

	changed := false
	for _, instr := range cfg.AllInstructions() {
		if instr.Op == OpPhi {
			phi := instr.Arg1.(*Phi)
			for i := range phi.Paths {
				if r := resolve(phi.Paths[i].Value); r != phi.Paths[i].Value {
					phi.Paths[i].Value = r
					changed = true
				}
			}
			continue
		}
		if r := resolve(instr.Arg1); r != instr.Arg1 {
			instr.Arg1 = r
			changed = true
		}
		if r := resolve(instr.Arg2); r != instr.Arg2 {
			instr.Arg2 = r
			changed = true
		}
	}
	return changed
}

// --- constant folding ---------------------------------------------------

// foldConstants evaluates binary/unary instructions whose operands are all
// Const, rewriting them to a MOVE of the computed constant. Integer
// arithmetic uses Go's native int32 wraparound semantics; real arithmetic
// uses IEEE-754 float64. Division and modulus by a zero constant are left
// unfolded so the interpreter reports the runtime failure (spec.md §4.4).
func foldConstants(cfg *CFG) bool {
	changed := false
	for _, instr := range cfg.AllInstructions() {
		switch {
		case instr.Op.IsBinary():
			a, aok := instr.Arg1.(*Const)
			b, bok := instr.Arg2.(*Const)
			if !aok || !bok {
				continue
			}
			if (instr.Op == OpDiv || instr.Op == OpMod) && isZero(b) {
				continue
			}
			result, ok := evalBinary(instr.Op, a, b)
			if !ok {
				continue
			}
			instr.Op = OpMove
			instr.Arg1 = result
			instr.Arg2 = TheEmpty
			changed = true
		case instr.Op.IsUnary():
			a, aok := instr.Arg1.(*Const)
			if !aok {
				continue
			}
			result, ok := evalUnary(instr.Op, a, instr)
			if !ok {
				continue
			}
			instr.Op = OpMove
			instr.Arg1 = result
			instr.Arg2 = TheEmpty
			changed = true
		}
	}
	return changed
}

func isZero(c *Const) bool {
	switch v := c.Value.(type) {
	case int32:
		return v == 0
	case float64:
		return v == 0
	default:
		return false
	}
}

func evalBinary(op Operator, a, b *Const) (*Const, bool) {
	if a.Typ == Real || b.Typ == Real {
		x, xok := numericFloat(a)
		y, yok := numericFloat(b)
		if !xok || !yok {
			return evalCompare(op, a, b)
		}
		switch op {
		case OpSum:
			return RealConst(x + y), true
		case OpSub:
			return RealConst(x - y), true
		case OpMul:
			return RealConst(x * y), true
		case OpDiv:
			return RealConst(x / y), true
		case OpMod:
			return RealConst(math.Mod(x, y)), true
		case OpPow:
			return RealConst(math.Pow(x, y)), true
		}
		return evalCompare(op, a, b)
	}

	if a.Typ == Int && b.Typ == Int {
		x := a.Value.(int32)
		y := b.Value.(int32)
		switch op {
		case OpSum:
			return IntConst(x + y), true
		case OpSub:
			return IntConst(x - y), true
		case OpMul:
			return IntConst(x * y), true
		case OpDiv:
			return IntConst(x / y), true
		case OpMod:
			return IntConst(x % y), true
		case OpPow:
			return IntConst(intPow(x, y)), true
		}
	}
	return evalCompare(op, a, b)
}

func evalCompare(op Operator, a, b *Const) (*Const, bool) {
	switch op {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
	default:
		return nil, false
	}
	if a.Typ == Bool && b.Typ == Bool {
		x, y := a.Value.(bool), b.Value.(bool)
		switch op {
		case OpEq:
			return BoolConst(x == y), true
		case OpNe:
			return BoolConst(x != y), true
		}
		return nil, false
	}
	x, xok := numericFloat(a)
	y, yok := numericFloat(b)
	if !xok || !yok {
		return nil, false
	}
	switch op {
	case OpEq:
		return BoolConst(x == y), true
	case OpNe:
		return BoolConst(x != y), true
	case OpLt:
		return BoolConst(x < y), true
	case OpLe:
		return BoolConst(x <= y), true
	case OpGt:
		return BoolConst(x > y), true
	case OpGe:
		return BoolConst(x >= y), true
	}
	return nil, false
}

func numericFloat(c *Const) (float64, bool) {
	switch v := c.Value.(type) {
	case int32:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

func intPow(base, exp int32) int32 {
	if exp < 0 {
		return 0
	}
	var result int32 = 1
	for i := int32(0); i < exp; i++ {
		result *= base
	}
	return result
}

func evalUnary(op Operator, a *Const, instr *Instruction) (*Const, bool) {
	switch op {
	case OpPlus:
		return a, true
	case OpMinus:
		switch v := a.Value.(type) {
		case int32:
			return IntConst(-v), true
		case float64:
			return RealConst(-v), true
		}
	case OpNot:
		if v, ok := a.Value.(bool); ok {
			return BoolConst(!v), true
		}
	case OpConvert:
		if v, ok := a.Value.(int32); ok && OperandType(instr.Result) == Real {
			return RealConst(float64(v)), true
		}
	}
	return nil, false
}

// --- branch folding -------------------------------------------------

// foldBranches rewrites an IF whose condition is a Const into a GOTO to the
// statically-known target, dropping the edge to the side that can no
// longer be reached (spec.md §4.4).
func foldBranches(cfg *CFG) bool {
	changed := false
	for _, b := range cfg.Blocks {
		instr := b.Terminator()
		if instr == nil || instr.Op != OpIf {
			continue
		}
		c, ok := instr.Arg1.(*Const)
		if !ok {
			continue
		}
		trueTarget := instr.IfTrueTarget()
		falseTarget := instr.IfFalseTarget()
		trueBlock := cfg.BlockFor(trueTarget)
		falseBlock := cfg.BlockFor(falseTarget)

		var keep *BasicBlock
		var keepLabel *Label
		var drop *BasicBlock
		if c.Truthy() {
			keep, keepLabel, drop = trueBlock, trueTarget, falseBlock
		} else {
			keep, keepLabel, drop = falseBlock, falseTarget, trueBlock
		}

		instr.Op = OpGoto
		instr.Arg1 = TheEmpty
		instr.Arg2 = TheEmpty
		instr.Result = keepLabel
		if drop != keep {
			unlinkEdge(b, drop)
		}
		changed = true
	}
	return changed
}

// unlinkEdge removes the from->to control edge and drops any φ path in to
// that named from as the source of a value (spec.md §5's dangling-edge
// cleanup obligation).
func unlinkEdge(from, to *BasicBlock) {
	from.RemoveSuccessor(to)
	for _, instr := range to.Phis() {
		if phi, ok := instr.Arg1.(*Phi); ok {
			phi.Remove(from)
		}
	}
}

// --- unreachable-block elimination -------------------------------------

func eliminateUnreachable(cfg *CFG) bool {
	reachable := cfg.Reachable()
	var dead []*BasicBlock
	for _, b := range cfg.Blocks {
		if !reachable[b] {
			dead = append(dead, b)
		}
	}
	if len(dead) == 0 {
		return false
	}
	for _, b := range dead {
		for _, s := range append([]*BasicBlock{}, b.Successors...) {
			unlinkEdge(b, s)
		}
		for _, p := range append([]*BasicBlock{}, b.Predecessors...) {
			unlinkEdge(p, b)
		}
		cfg.RemoveBlock(b)
	}
	return true
}

// --- phi simplification -------------------------------------------------

// simplifyPhis rewrites a φ with at most one distinct incoming value
// (ignoring self-references along back edges) into a MOVE of that value,
// or of its own zero value if it has no incoming paths at all (spec.md
// §4.3(c), §4.4).
func simplifyPhis(cfg *CFG) bool {
	changed := false
	for _, b := range cfg.Blocks {
		for _, instr := range b.Phis() {
			phi := instr.Arg1.(*Phi)
			distinct := distinctExcludingSelf(phi, instr.Result)
			if len(distinct) > 1 {
				continue
			}
			if len(distinct) == 0 {
				tv, ok := instr.Result.(*TempVersion)
				if !ok {
					continue
				}
				instr.Op = OpMove
				instr.Arg1 = &Const{Typ: tv.Type(), Value: zeroFor(tv.Type())}
				instr.Arg2 = TheEmpty
				changed = true
				continue
			}
			instr.Op = OpMove
			instr.Arg1 = distinct[0]
			instr.Arg2 = TheEmpty
			changed = true
		}
	}
	return changed
}

func distinctExcludingSelf(phi *Phi, self Operand) []Operand {
	var distinct []Operand
	for _, path := range phi.Paths {
		if sameOperand(path.Value, self) {
			continue
		}
		found := false
		for _, d := range distinct {
			if sameOperand(d, path.Value) {
				found = true
				break
			}
		}
		if !found {
			distinct = append(distinct, path.Value)
		}
	}
	return distinct
}

// --- dead code elimination -----------------------------------------------

// eliminateDeadCode removes instructions whose result is never used,
// excluding operators with side effects (PRINT, READ, IF, GOTO, LABEL,
// STORE — spec.md §4.4), iterating to a fixed point since removing one
// instruction can strand the definition feeding it.
func eliminateDeadCode(cfg *CFG) bool {
	anyChanged := false
	for {
		used := make(map[*TempVersion]bool)
		for _, instr := range cfg.AllInstructions() {
			markUse(used, instr.Arg1)
			markUse(used, instr.Arg2)
			if instr.Op == OpPhi {
				if phi, ok := instr.Arg1.(*Phi); ok {
					for _, path := range phi.Paths {
						markUse(used, path.Value)
					}
				}
			}
		}

		roundChanged := false
		for _, b := range cfg.Blocks {
			kept := b.Instructions[:0]
			for _, instr := range b.Instructions {
				if instr.Op.HasSideEffects() {
					kept = append(kept, instr)
					continue
				}
				tv, ok := instr.Result.(*TempVersion)
				if ok && !used[tv] {
					roundChanged = true
					continue
				}
				kept = append(kept, instr)
			}
			b.Instructions = kept
		}
		if !roundChanged {
			return anyChanged
		}
		anyChanged = true
	}
}

func markUse(used map[*TempVersion]bool, op Operand) {
	if tv, ok := op.(*TempVersion); ok {
		used[tv] = true
	}
}

// --- block merging -----------------------------------------------------

// mergeBlocks folds a block's single successor into that block when the
// successor has no other predecessor and no φ, splicing instruction lists
// and retargeting the successor's own successors (spec.md §4.4).
func mergeBlocks(cfg *CFG) bool {
	changed := false
	for {
		merged := false
		for _, a := range cfg.Blocks {
			if len(a.Successors) != 1 {
				continue
			}
			b := a.Successors[0]
			if b == a || len(b.Predecessors) != 1 {
				continue
			}
			if len(b.Phis()) > 0 {
				continue
			}

			if term := a.Terminator(); term != nil {
				a.Instructions = a.Instructions[:len(a.Instructions)-1]
			}
			for _, instr := range b.Instructions {
				if instr.Op == OpLabel {
					continue
				}
				instr.Block = a
				a.Instructions = append(a.Instructions, instr)
			}

			a.Successors = a.Successors[:0]
			for _, s := range b.Successors {
				b.RemoveSuccessor(s)
				a.AddSuccessor(s)
				for _, instr := range s.Phis() {
					if phi, ok := instr.Arg1.(*Phi); ok {
						if v, ok := phi.Get(b); ok {
							phi.Remove(b)
							phi.Set(a, v)
						}
					}
				}
			}
			cfg.RemoveBlock(b)
			merged = true
			changed = true
			break
		}
		if !merged {
			break
		}
	}
	return changed
}
