package ir

import "fmt"

// Type is DL's small value-type enumeration (spec.md §3). Each carries the
// size in bytes the allocator uses for spill slots.
type Type int

const (
	Int Type = iota
	Real
	Bool
)

func (t Type) String() string {
	switch t {
	case Int:
		return "int"
	case Real:
		return "real"
	case Bool:
		return "bool"
	default:
		return "?"
	}
}

// Size returns the spill-slot size in bytes for the type.
func (t Type) Size() int {
	switch t {
	case Int, Bool:
		return 4
	case Real:
		return 8
	default:
		return 4
	}
}

// Operand is the sum type described in spec.md §3: Temp, TempVersion,
// Const, Label, Phi, or Empty. Go has no native sum type, so this is
// modeled as an interface with an unexported marker, the way
// tmc-mirror-go.tools/ssa models ssa.Value.
type Operand interface {
	isOperand()
	String() string
}

// Temp is a source-level temporary: a type plus a globally unique number,
// optionally flagged as an address (the result of ALLOCA).
type Temp struct {
	Num     int
	Typ     Type
	Address bool
}

func (*Temp) isOperand() {}
func (t *Temp) String() string {
	if t == nil {
		return "<nil-temp>"
	}
	return fmt.Sprintf("t%d", t.Num)
}

// TempVersion is (origin Temp, version N), produced only by SSA renaming.
type TempVersion struct {
	Origin  *Temp
	Version int
}

func (*TempVersion) isOperand() {}
func (v *TempVersion) String() string {
	return fmt.Sprintf("%s.%d", v.Origin.String(), v.Version)
}

// Type returns the underlying temp's type.
func (v *TempVersion) Type() Type { return v.Origin.Typ }

// Const is a (type, value) compile-time constant. Value holds an int32,
// float64, or bool depending on Typ.
type Const struct {
	Typ   Type
	Value interface{}
}

func (*Const) isOperand() {}
func (c *Const) String() string {
	switch v := c.Value.(type) {
	case bool:
		if v {
			return "1"
		}
		return "0"
	case float64:
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// IntConst is a convenience constructor for an Int32 constant.
func IntConst(v int32) *Const { return &Const{Typ: Int, Value: v} }

// RealConst is a convenience constructor for a Real constant.
func RealConst(v float64) *Const { return &Const{Typ: Real, Value: v} }

// BoolConst is a convenience constructor for a Bool constant.
func BoolConst(v bool) *Const { return &Const{Typ: Bool, Value: v} }

// Truthy reports whether a Bool/Int constant is non-zero.
func (c *Const) Truthy() bool {
	switch v := c.Value.(type) {
	case bool:
		return v
	case int32:
		return v != 0
	default:
		return false
	}
}

// Label is a unique numbered jump target.
type Label struct {
	Num int
}

func (*Label) isOperand() {}
func (l *Label) String() string { return fmt.Sprintf("L%d", l.Num) }

// PhiPath is one (predecessor, value) entry of a Phi operand. Stored as a
// slice rather than a map so insertion order is preserved, matching
// spec.md's requirement that paths iterate "in a stable order matching
// predecessors" (§9).
type PhiPath struct {
	Pred  *BasicBlock
	Value Operand
}

// Phi is the insertion-order predecessor→value mapping carried in the arg1
// slot of a PHI instruction (spec.md §3: "Phi: insertion-order mapping
// from predecessor block to the TempVersion supplying the value along that
// edge").
type Phi struct {
	Paths []PhiPath
}

func (*Phi) isOperand() {}

func (p *Phi) String() string {
	s := "[phi "
	for i, path := range p.Paths {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s: %s", path.Pred.Name(), path.Value.String())
	}
	return s + "]"
}

// Get returns the value flowing from pred, if any.
func (p *Phi) Get(pred *BasicBlock) (Operand, bool) {
	for _, path := range p.Paths {
		if path.Pred == pred {
			return path.Value, true
		}
	}
	return nil, false
}

// Set overwrites or appends the entry for pred, preserving first-seen order.
func (p *Phi) Set(pred *BasicBlock, v Operand) {
	for i := range p.Paths {
		if p.Paths[i].Pred == pred {
			p.Paths[i].Value = v
			return
		}
	}
	p.Paths = append(p.Paths, PhiPath{Pred: pred, Value: v})
}

// Remove drops the entry for pred, if present.
func (p *Phi) Remove(pred *BasicBlock) {
	out := p.Paths[:0]
	for _, path := range p.Paths {
		if path.Pred != pred {
			out = append(out, path)
		}
	}
	p.Paths = out
}

// DistinctValues returns the syntactically distinct values across
// all paths, used by trivial-phi detection (spec.md §4.3(c), §4.4).
func (p *Phi) DistinctValues() []Operand {
	var distinct []Operand
	seen := func(v Operand) bool {
		for _, d := range distinct {
			if sameOperand(d, v) {
				return true
			}
		}
		return false
	}
	for _, path := range p.Paths {
		if !seen(path.Value) {
			distinct = append(distinct, path.Value)
		}
	}
	return distinct
}

func sameOperand(a, b Operand) bool {
	switch av := a.(type) {
	case *TempVersion:
		bv, ok := b.(*TempVersion)
		return ok && av == bv
	case *Temp:
		bv, ok := b.(*Temp)
		return ok && av == bv
	case *Const:
		bv, ok := b.(*Const)
		return ok && av.Typ == bv.Typ && av.Value == bv.Value
	case *Label:
		bv, ok := b.(*Label)
		return ok && av == bv
	default:
		return a == b
	}
}

// OperandType returns the DL value type carried by a Temp, TempVersion, or
// Const operand. Labels, Phis, and Empty have no value type (builder/
// optimizer code never calls this on them).
func OperandType(op Operand) Type {
	switch o := op.(type) {
	case *Temp:
		return o.Typ
	case *TempVersion:
		return o.Type()
	case *Const:
		return o.Typ
	default:
		panic(fmt.Sprintf("OperandType: %T has no value type", op))
	}
}

// Empty is the unit placeholder so every instruction slot is non-nil.
type Empty struct{}

func (Empty) isOperand()      {}
func (Empty) String() string  { return "" }

// TheEmpty is the single shared Empty value.
var TheEmpty Operand = Empty{}
