package ir

import "fmt"

// Operator is the tagged operator enumeration of spec.md §3. Two IR
// dialects share one Operator type: the pre-SSA dialect uses
// Alloca/Store/Load; the SSA dialect replaces them with Move plus Phi.
type Operator int

const (
	OpLabel Operator = iota
	OpGoto
	OpIf
	OpPrint
	OpRead
	OpConvert
	OpMove
	OpSum
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpPlus  // unary +
	OpMinus // unary -
	OpNot
	OpPhi
	OpAlloca
	OpStore
	OpLoad
)

func (op Operator) String() string {
	names := [...]string{
		"LABEL", "GOTO", "IF", "PRINT", "READ", "CONVERT", "MOVE",
		"SUM", "SUB", "MUL", "DIV", "MOD", "POW",
		"EQ", "NE", "LT", "LE", "GT", "GE",
		"PLUS", "MINUS", "NOT", "PHI", "ALLOCA", "STORE", "LOAD",
	}
	if int(op) < 0 || int(op) >= len(names) {
		return "?"
	}
	return names[op]
}

// IsBinary reports whether op takes two value operands and produces a
// result (the "otherwise: r = a op b" row of spec.md §6).
func (op Operator) IsBinary() bool {
	switch op {
	case OpSum, OpSub, OpMul, OpDiv, OpMod, OpPow,
		OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return true
	default:
		return false
	}
}

// IsUnary reports whether op is a unary value operator (spec.md §6).
func (op Operator) IsUnary() bool {
	switch op {
	case OpConvert, OpPlus, OpMinus, OpNot:
		return true
	default:
		return false
	}
}

// HasSideEffects reports whether the operator has side effects relevant to
// dead code elimination. PRINT, READ, IF, GOTO, LABEL, STORE are preserved
// unconditionally regardless of use count (spec.md §4.4 DCE).
func (op Operator) HasSideEffects() bool {
	switch op {
	case OpPrint, OpRead, OpIf, OpGoto, OpLabel, OpStore:
		return true
	default:
		return false
	}
}

// Instruction is the 4-tuple (op, arg1, arg2, result) of spec.md §3. It is
// a value object owned by exactly one BasicBlock; its pointer identity is
// used as a key (e.g. for optimizer bookkeeping), so instructions are
// always held and passed by *Instruction.
type Instruction struct {
	Op     Operator
	Arg1   Operand
	Arg2   Operand
	Result Operand

	// Block is the owning block, maintained by the builder and by any pass
	// that moves instructions between blocks.
	Block *BasicBlock
}

// NewInstruction builds an instruction with Empty operands substituted for
// any nil argument, maintaining the "every slot is non-null" invariant.
func NewInstruction(op Operator, arg1, arg2, result Operand) *Instruction {
	if arg1 == nil {
		arg1 = TheEmpty
	}
	if arg2 == nil {
		arg2 = TheEmpty
	}
	if result == nil {
		result = TheEmpty
	}
	return &Instruction{Op: op, Arg1: arg1, Arg2: arg2, Result: result}
}

// ResultTempVersion returns Result as a *TempVersion, or nil if Result is
// not a TempVersion (e.g. before SSA renaming, or for side-effect-only ops).
func (i *Instruction) ResultTempVersion() *TempVersion {
	tv, _ := i.Result.(*TempVersion)
	return tv
}

// ResultTemp returns Result as a *Temp (pre-SSA dialect).
func (i *Instruction) ResultTemp() *Temp {
	t, _ := i.Result.(*Temp)
	return t
}

// IfTrueTarget / IfFalseTarget interpret the fixed IF slot assignment of
// spec.md §3: "arg2 = true target, result = false target".
func (i *Instruction) IfTrueTarget() *Label  { l, _ := i.Arg2.(*Label); return l }
func (i *Instruction) IfFalseTarget() *Label { l, _ := i.Result.(*Label); return l }

// GotoTarget interprets GOTO's single target, carried in Result.
func (i *Instruction) GotoTarget() *Label { l, _ := i.Result.(*Label); return l }

func (i *Instruction) String() string {
	return fmt.Sprintf("%s %s %s -> %s", i.Op, i.Arg1, i.Arg2, i.Result)
}
