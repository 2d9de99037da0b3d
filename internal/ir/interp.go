package ir

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// RuntimeError is a DL program failure detected during interpretation
// (invalid input, division/modulus by zero) rather than at build or
// optimization time. Interpretation halts as soon as one is produced
// (spec.md §4.5, §6).
type RuntimeError struct {
	Message string
}

func (e *RuntimeError) Error() string { return e.Message }

// invalidInputMessage is printed verbatim, in Portuguese, matching the
// exact wording of spec.md §6's I/O contract.
const invalidInputMessage = "Entrada de dados inválida! Interpretação encerrada."

// Interp is a tree-walking interpreter over a CFG already in SSA form
// (spec.md §4.5). It tracks the previously executed block so that φ
// instructions can resolve "which edge did control arrive on", the same
// "prev block" trick a switch/goto interpreter needs for φ nodes since SSA
// has no other record of control-flow history.
type Interp struct {
	cfg *CFG
	mem map[*TempVersion]interface{}

	out *bufio.Writer
	in  *bufio.Reader
}

// NewInterp constructs an interpreter reading READ input from in and
// writing PRINT/prompt output to out.
func NewInterp(cfg *CFG, in io.Reader, out io.Writer) *Interp {
	return &Interp{
		cfg: cfg,
		mem: make(map[*TempVersion]interface{}),
		out: bufio.NewWriter(out),
		in:  bufio.NewReader(in),
	}
}

// Run executes the program to completion (falling off the end of the CFG)
// or until a RuntimeError halts it.
func (ip *Interp) Run() error {
	defer ip.out.Flush()

	cur := ip.cfg.Entry()
	var prev *BasicBlock
	for cur != nil {
		var next *BasicBlock
		jumped := false

		for _, instr := range cur.Instructions {
			switch instr.Op {
			case OpLabel:
				continue

			case OpPhi:
				phi := instr.Arg1.(*Phi)
				v, ok := phi.Get(prev)
				if !ok {
					// The φ-path invariant (spec.md §8) guarantees every φ
					// carries an entry for each of its block's actual
					// predecessors; reaching this means an earlier pass
					// left a dangling path, not a valid program state to
					// paper over with a zero value (spec.md §9).
					panic(fmt.Sprintf("phi %s has no path for predecessor %s", PrintInstruction(instr), prev.Name()))
				}
				ip.set(instr.Result, ip.eval(v))

			case OpMove:
				ip.set(instr.Result, ip.eval(instr.Arg1))

			case OpConvert:
				v := ip.eval(instr.Arg1)
				if n, ok := v.(int32); ok {
					ip.set(instr.Result, float64(n))
				} else {
					ip.set(instr.Result, v)
				}

			case OpPlus:
				ip.set(instr.Result, ip.eval(instr.Arg1))

			case OpMinus:
				switch v := ip.eval(instr.Arg1).(type) {
				case int32:
					ip.set(instr.Result, -v)
				case float64:
					ip.set(instr.Result, -v)
				}

			case OpNot:
				ip.set(instr.Result, !ip.eval(instr.Arg1).(bool))

			case OpSum, OpSub, OpMul, OpDiv, OpMod, OpPow,
				OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
				v, err := ip.evalBinary(instr)
				if err != nil {
					ip.out.WriteString(err.Error())
					ip.out.WriteByte('\n')
					return err
				}
				ip.set(instr.Result, v)

			case OpPrint:
				fmt.Fprintf(ip.out, "output: %s\n", formatValue(ip.eval(instr.Arg1)))

			case OpRead:
				ip.out.WriteString("input: ")
				ip.out.Flush()
				val, err := ip.readValue(OperandType(instr.Result))
				if err != nil {
					ip.out.WriteString(invalidInputMessage)
					ip.out.WriteByte('\n')
					return &RuntimeError{Message: invalidInputMessage}
				}
				ip.set(instr.Result, val)

			case OpGoto:
				next = ip.cfg.BlockFor(instr.GotoTarget())
				jumped = true

			case OpIf:
				if ip.eval(instr.Arg1).(bool) {
					next = ip.cfg.BlockFor(instr.IfTrueTarget())
				} else {
					next = ip.cfg.BlockFor(instr.IfFalseTarget())
				}
				jumped = true
			}
		}

		if !jumped && len(cur.Successors) == 1 {
			next = cur.Successors[0]
		}
		prev = cur
		cur = next
	}
	return nil
}

func (ip *Interp) evalBinary(instr *Instruction) (interface{}, error) {
	a := ip.eval(instr.Arg1)
	b := ip.eval(instr.Arg2)

	if ai, aok := a.(int32); aok {
		if bi, bok := b.(int32); bok {
			switch instr.Op {
			case OpSum:
				return ai + bi, nil
			case OpSub:
				return ai - bi, nil
			case OpMul:
				return ai * bi, nil
			case OpDiv:
				if bi == 0 {
					return nil, &RuntimeError{Message: "divisão por zero! Interpretação encerrada."}
				}
				return ai / bi, nil
			case OpMod:
				if bi == 0 {
					return nil, &RuntimeError{Message: "divisão por zero! Interpretação encerrada."}
				}
				return ai % bi, nil
			case OpPow:
				return intPow(ai, bi), nil
			case OpEq:
				return ai == bi, nil
			case OpNe:
				return ai != bi, nil
			case OpLt:
				return ai < bi, nil
			case OpLe:
				return ai <= bi, nil
			case OpGt:
				return ai > bi, nil
			case OpGe:
				return ai >= bi, nil
			}
		}
	}

	if ab, aok := a.(bool); aok {
		if bb, bok := b.(bool); bok {
			switch instr.Op {
			case OpEq:
				return ab == bb, nil
			case OpNe:
				return ab != bb, nil
			}
		}
	}

	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		switch instr.Op {
		case OpSum:
			return af + bf, nil
		case OpSub:
			return af - bf, nil
		case OpMul:
			return af * bf, nil
		case OpDiv:
			if bf == 0 {
				return nil, &RuntimeError{Message: "divisão por zero! Interpretação encerrada."}
			}
			return af / bf, nil
		case OpMod:
			if bf == 0 {
				return nil, &RuntimeError{Message: "divisão por zero! Interpretação encerrada."}
			}
			return math.Mod(af, bf), nil
		case OpPow:
			return math.Pow(af, bf), nil
		case OpEq:
			return af == bf, nil
		case OpNe:
			return af != bf, nil
		case OpLt:
			return af < bf, nil
		case OpLe:
			return af <= bf, nil
		case OpGt:
			return af > bf, nil
		case OpGe:
			return af >= bf, nil
		}
	}
	return nil, &RuntimeError{Message: "invalid operand types at runtime"}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func (ip *Interp) eval(op Operand) interface{} {
	switch o := op.(type) {
	case *Const:
		return o.Value
	case *TempVersion:
		if o.Version == -1 {
			return zeroFor(o.Type())
		}
		if v, ok := ip.mem[o]; ok {
			return v
		}
		return zeroFor(o.Type())
	default:
		return nil
	}
}

func (ip *Interp) set(result Operand, val interface{}) {
	tv, ok := result.(*TempVersion)
	if !ok {
		return
	}
	ip.mem[tv] = val
}

func zeroFor(t Type) interface{} {
	switch t {
	case Int:
		return int32(0)
	case Real:
		return float64(0)
	case Bool:
		return false
	default:
		return nil
	}
}

func (ip *Interp) readValue(t Type) (interface{}, error) {
	line, err := ip.in.ReadString('\n')
	if err != nil && line == "" {
		return nil, err
	}
	line = strings.TrimSpace(line)
	switch t {
	case Int:
		n, err := strconv.ParseInt(line, 10, 32)
		if err != nil {
			return nil, err
		}
		return int32(n), nil
	case Real:
		f, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return nil, err
		}
		return f, nil
	case Bool:
		switch line {
		case "1", "true", "verdadeiro":
			return true, nil
		case "0", "false", "falso":
			return false, nil
		default:
			return nil, fmt.Errorf("not a bool: %q", line)
		}
	default:
		return nil, fmt.Errorf("unsupported read type")
	}
}

func formatValue(v interface{}) string {
	switch n := v.(type) {
	case int32:
		return strconv.FormatInt(int64(n), 10)
	case float64:
		return strconv.FormatFloat(n, 'f', 4, 64)
	case bool:
		if n {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprintf("%v", v)
	}
}
