package ir

// Builder converts a type-checked AST into a pre-SSA CFG of three-address
// instructions (spec.md §4.1), grounded on the counter/currentBlock shape
// of kanso/internal/ir/builder.go's Builder, adapted from kanso's EVM IR
// to DL's ALLOCA/STORE/LOAD + short-circuit-diamond dialect.

import (
	"github.com/efrenlopes/dl-compiler/internal/ast"
	"github.com/efrenlopes/dl-compiler/internal/sema"
	"github.com/efrenlopes/dl-compiler/internal/typesys"
)

// Builder holds the monotonic counters and current-position state used
// while walking the AST. spec.md §9 requires these counters to be
// per-builder rather than global so tests can construct isolated CFGs.
type Builder struct {
	cfg          *CFG
	current      *BasicBlock
	tempCounter  int
	labelCounter int

	addrTemps map[string]*Temp
}

// NewBuilder creates a Builder with fresh counters.
func NewBuilder() *Builder {
	return &Builder{addrTemps: make(map[string]*Temp)}
}

// BuildProgram converts a sema-checked program into its pre-SSA CFG. This
// is the entry point cmd/dlc calls, mirroring kanso/internal/ir/ir.go's
// BuildProgram.
func BuildProgram(cp *sema.CheckedProgram) *CFG {
	b := NewBuilder()
	return b.Build(cp)
}

// Build performs the full AST -> CFG translation.
func (b *Builder) Build(cp *sema.CheckedProgram) *CFG {
	b.cfg = NewCFG()
	b.current = b.cfg.NewBlock()

	for _, decl := range cp.Program.Decls {
		t := fromSemaType(typeOfDecl(cp.Scope, decl))
		for _, name := range decl.Names {
			addr := b.freshTemp(t)
			addr.Address = true
			b.emit(OpAlloca, nil, nil, addr)
			b.addrTemps[name] = addr
		}
	}

	b.buildBlock(cp.Program.Body)
	return b.cfg
}

func typeOfDecl(scope *typesys.Scope, decl *ast.VarDecl) typesys.Type {
	if len(decl.Names) == 0 {
		return typesys.Invalid
	}
	t, _ := scope.Lookup(decl.Names[0])
	return t
}

func fromSemaType(t typesys.Type) Type {
	switch t {
	case typesys.Int:
		return Int
	case typesys.Real:
		return Real
	case typesys.Bool:
		return Bool
	default:
		return Int
	}
}

// --- counters & emission -----------------------------------------------

func (b *Builder) freshTemp(t Type) *Temp {
	temp := &Temp{Num: b.tempCounter, Typ: t}
	b.tempCounter++
	return temp
}

func (b *Builder) emit(op Operator, arg1, arg2, result Operand) *Instruction {
	instr := NewInstruction(op, arg1, arg2, result)
	b.current.AddInstruction(instr)
	return instr
}

// newLabeledBlock creates a block and immediately binds a fresh label to
// it, inserting the leading LABEL instruction (spec.md §3: "the first [...]
// is LABEL").
func (b *Builder) newLabeledBlock() *BasicBlock {
	blk := b.cfg.NewBlock()
	label := &Label{Num: b.labelCounter}
	b.labelCounter++
	b.cfg.BindLabel(label, blk)
	blk.AddInstruction(NewInstruction(OpLabel, nil, nil, label))
	return blk
}

// switchTo moves the cursor to blk, adding a fallthrough successor edge
// from the current block if it is not already terminated (spec.md §4.1
// "Block stitching contract").
func (b *Builder) switchTo(blk *BasicBlock) {
	if b.current != blk && b.current.Terminator() == nil {
		b.current.AddSuccessor(blk)
	}
	b.current = blk
}

// --- statements -----------------------------------------------------------

func (b *Builder) buildBlock(blk *ast.Block) {
	for _, s := range blk.Stmts {
		b.buildStmt(s)
	}
}

func (b *Builder) buildStmt(s *ast.Stmt) {
	switch {
	case s.Assign != nil:
		b.buildAssign(s.Assign)
	case s.Read != nil:
		addr := b.addrTemps[s.Read.Name]
		b.emit(OpRead, nil, nil, addr)
	case s.Write != nil:
		val := b.lowerExpr(s.Write.Value)
		b.emit(OpPrint, val, nil, nil)
	case s.If != nil:
		b.buildIf(s.If)
	case s.While != nil:
		b.buildWhile(s.While)
	case s.Block != nil:
		b.buildBlock(s.Block)
	}
}

func (b *Builder) buildAssign(a *ast.AssignStmt) {
	val := b.lowerExpr(a.Value)
	addr := b.addrTemps[a.Name]
	if OperandType(val) != addr.Typ {
		val = b.convert(val, addr.Typ)
	}
	b.emit(OpStore, val, nil, addr)
}

func (b *Builder) buildIf(s *ast.IfStmt) {
	ltrue := b.newLabeledBlock()
	lout := b.newLabeledBlock()

	if s.Else == nil {
		cond := b.lowerExpr(s.Cond)
		b.emit(OpIf, cond, ltrue.LabelOp, lout.LabelOp)
		b.current.AddSuccessor(ltrue)
		b.current.AddSuccessor(lout)

		b.switchTo(ltrue)
		b.buildStmt(s.Then)
		b.emit(OpGoto, nil, nil, lout.LabelOp)
		b.current.AddSuccessor(lout)

		b.switchTo(lout)
		return
	}

	lfalse := b.newLabeledBlock()
	cond := b.lowerExpr(s.Cond)
	b.emit(OpIf, cond, ltrue.LabelOp, lfalse.LabelOp)
	b.current.AddSuccessor(ltrue)
	b.current.AddSuccessor(lfalse)

	b.switchTo(ltrue)
	b.buildStmt(s.Then)
	b.emit(OpGoto, nil, nil, lout.LabelOp)
	b.current.AddSuccessor(lout)

	b.switchTo(lfalse)
	b.buildStmt(s.Else)
	b.emit(OpGoto, nil, nil, lout.LabelOp)
	b.current.AddSuccessor(lout)

	b.switchTo(lout)
}

// buildWhile lowers "while (cond) do body" as spec.md §4.1 prescribes: an
// explicit goto into the header forces the header to have two
// predecessors (preheader and back edge), required for correct phi
// placement.
func (b *Builder) buildWhile(s *ast.WhileStmt) {
	lentry := b.newLabeledBlock()
	lbody := b.newLabeledBlock()
	lexit := b.newLabeledBlock()

	b.emit(OpGoto, nil, nil, lentry.LabelOp)
	b.current.AddSuccessor(lentry)

	b.switchTo(lentry)
	cond := b.lowerExpr(s.Cond)
	b.emit(OpIf, cond, lbody.LabelOp, lexit.LabelOp)
	b.current.AddSuccessor(lbody)
	b.current.AddSuccessor(lexit)

	b.switchTo(lbody)
	b.buildStmt(s.Body)
	b.emit(OpGoto, nil, nil, lentry.LabelOp)
	b.current.AddSuccessor(lentry)

	b.switchTo(lexit)
}

// --- expressions ------------------------------------------------------

func (b *Builder) lowerExpr(e *ast.Expr) Operand {
	val := b.lowerAndExpr(e.Left)
	for _, rhs := range e.Ops {
		val = b.lowerShortCircuit(val, b.lowerAndExpr, rhs.Right, true)
	}
	return val
}

func (b *Builder) lowerAndExpr(e *ast.AndExpr) Operand {
	val := b.lowerNotExpr(e.Left)
	for _, rhs := range e.Ops {
		val = b.lowerShortCircuit(val, b.lowerNotExpr, rhs.Right, false)
	}
	return val
}

// lowerShortCircuit emits the OR/AND diamond of spec.md §4.1 for a single
// binary step: left is already-evaluated (possibly itself the result of a
// prior short-circuit step), right is lowered lazily inside the diamond's
// test block so it is never evaluated unless needed.
func (b *Builder) lowerShortCircuit(left Operand, lowerRight func(*ast.NotExpr) Operand, rightAST *ast.NotExpr, isOr bool) Operand {
	ltest := b.newLabeledBlock()
	ltrue := b.newLabeledBlock()
	lfalse := b.newLabeledBlock()
	lout := b.newLabeledBlock()

	addr := b.freshTemp(Bool)
	addr.Address = true
	b.emit(OpAlloca, nil, nil, addr)

	if isOr {
		// IF left -> Ltrue | Ltest
		b.emit(OpIf, left, ltrue.LabelOp, ltest.LabelOp)
		b.current.AddSuccessor(ltrue)
		b.current.AddSuccessor(ltest)
	} else {
		// AND: inverted first branch - IF left -> Ltest | Lfalse
		b.emit(OpIf, left, ltest.LabelOp, lfalse.LabelOp)
		b.current.AddSuccessor(ltest)
		b.current.AddSuccessor(lfalse)
	}

	b.switchTo(ltest)
	right := lowerRight(rightAST)
	b.emit(OpIf, right, ltrue.LabelOp, lfalse.LabelOp)
	b.current.AddSuccessor(ltrue)
	b.current.AddSuccessor(lfalse)

	b.switchTo(ltrue)
	b.emit(OpStore, BoolConst(true), nil, addr)
	b.emit(OpGoto, nil, nil, lout.LabelOp)
	b.current.AddSuccessor(lout)

	b.switchTo(lfalse)
	b.emit(OpStore, BoolConst(false), nil, addr)
	b.emit(OpGoto, nil, nil, lout.LabelOp)
	b.current.AddSuccessor(lout)

	b.switchTo(lout)
	result := b.freshTemp(Bool)
	b.emit(OpLoad, addr, nil, result)
	return result
}

func (b *Builder) lowerNotExpr(e *ast.NotExpr) Operand {
	val := b.lowerRelExpr(e.Rel)
	if !e.Not {
		return val
	}
	result := b.freshTemp(Bool)
	b.emit(OpNot, val, nil, result)
	return result
}

func (b *Builder) lowerRelExpr(e *ast.RelExpr) Operand {
	left := b.lowerAddExpr(e.Left)
	if e.Op == "" {
		return left
	}
	right := b.lowerAddExpr(e.Right)
	left, right, _ = b.promote(left, right)
	result := b.freshTemp(Bool)
	b.emit(relOperator(e.Op), left, right, result)
	return result
}

func relOperator(op string) Operator {
	switch op {
	case "==":
		return OpEq
	case "!=":
		return OpNe
	case "<":
		return OpLt
	case "<=":
		return OpLe
	case ">":
		return OpGt
	case ">=":
		return OpGe
	default:
		panic("unknown relational operator " + op)
	}
}

func (b *Builder) lowerAddExpr(e *ast.AddExpr) Operand {
	val := b.lowerMulExpr(e.Left)
	for _, rhs := range e.Ops {
		right := b.lowerMulExpr(rhs.Right)
		val, right, _ = b.promote(val, right)
		op := OpSum
		if rhs.Op == "-" {
			op = OpSub
		}
		result := b.freshTemp(OperandType(val))
		b.emit(op, val, right, result)
		val = result
	}
	return val
}

func (b *Builder) lowerMulExpr(e *ast.MulExpr) Operand {
	val := b.lowerPowExpr(e.Left)
	for _, rhs := range e.Ops {
		right := b.lowerPowExpr(rhs.Right)
		val, right, _ = b.promote(val, right)
		var op Operator
		switch rhs.Op {
		case "*":
			op = OpMul
		case "/":
			op = OpDiv
		case "%":
			op = OpMod
		}
		result := b.freshTemp(OperandType(val))
		b.emit(op, val, right, result)
		val = result
	}
	return val
}

func (b *Builder) lowerPowExpr(e *ast.PowExpr) Operand {
	left := b.lowerUnaryExpr(e.Left)
	if e.Op == "" {
		return left
	}
	right := b.lowerPowExpr(e.Right)
	left, right, _ = b.promote(left, right)
	result := b.freshTemp(OperandType(left))
	b.emit(OpPow, left, right, result)
	return result
}

func (b *Builder) lowerUnaryExpr(e *ast.UnaryExpr) Operand {
	val := b.lowerPrimaryExpr(e.Operand)
	if e.Op == "" {
		return val
	}
	op := OpPlus
	if e.Op == "-" {
		op = OpMinus
	}
	result := b.freshTemp(OperandType(val))
	b.emit(op, val, nil, result)
	return result
}

func (b *Builder) lowerPrimaryExpr(e *ast.PrimaryExpr) Operand {
	switch {
	case e.Paren != nil:
		return b.lowerExpr(e.Paren)
	case e.Real != nil:
		return RealConst(*e.Real)
	case e.Int != nil:
		return IntConst(int32(*e.Int))
	case e.Bool != nil:
		return BoolConst(*e.Bool == "true")
	case e.Ident != nil:
		addr := b.addrTemps[*e.Ident]
		result := b.freshTemp(addr.Typ)
		b.emit(OpLoad, addr, nil, result)
		return result
	default:
		panic("malformed primary expression")
	}
}

// promote widens whichever of a, b is Int when the other is Real,
// inserting an explicit CONVERT (spec.md §3: "CONVERT (int->real)").
func (b *Builder) promote(a, b2 Operand) (Operand, Operand, Type) {
	at, bt := OperandType(a), OperandType(b2)
	if at == bt {
		return a, b2, at
	}
	if at == Int && bt == Real {
		return b.convert(a, Real), b2, Real
	}
	if bt == Int && at == Real {
		return a, b.convert(b2, Real), Real
	}
	return a, b2, at
}

func (b *Builder) convert(v Operand, to Type) Operand {
	result := b.freshTemp(to)
	b.emit(OpConvert, v, nil, result)
	return result
}
