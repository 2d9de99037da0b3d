// Package typesys is the type-inference core used by internal/sema (to
// validate a program before it reaches the IR builder). internal/ir's
// builder reads declared variable types from its Scope; the builder's own
// CONVERT insertion is decided from ir operand types, not from this
// package. Keeping these types here avoids an import cycle: sema would
// otherwise need ir.Type and ir would need sema's checked annotations.
package typesys

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/efrenlopes/dl-compiler/internal/ast"
)

// Type mirrors the three DL value types named in spec.md §3. It is
// intentionally a separate enum from ir.Type — see the package doc comment.
type Type int

const (
	Invalid Type = iota
	Int
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
		return "<invalid>"
	}
}

// Scope is DL's single flat variable scope: the grammar has no nested
// blocks that introduce new bindings, only begin/end statement grouping.
type Scope struct {
	types    map[string]Type
	declOrder []string
}

// NewScope creates an empty scope.
func NewScope() *Scope {
	return &Scope{types: make(map[string]Type)}
}

// Declare binds name to t, or returns an error if name was already
// declared (spec.md has no shadowing rule to fall back on).
func (s *Scope) Declare(name string, t Type) error {
	if _, exists := s.types[name]; exists {
		return fmt.Errorf("variable %q already declared", name)
	}
	s.types[name] = t
	s.declOrder = append(s.declOrder, name)
	return nil
}

// Lookup returns the declared type of name.
func (s *Scope) Lookup(name string) (Type, bool) {
	t, ok := s.types[name]
	return t, ok
}

// Error is a positioned type error.
type Error struct {
	Pos     lexer.Position
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename, e.Pos.Line, e.Pos.Column, e.Message)
}

func errf(pos lexer.Position, format string, args ...interface{}) error {
	return &Error{Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// NumericResult computes the type of a numeric binary operation: matching
// types pass through; int widens to real when paired with real; bool is
// never a valid numeric operand (spec.md §3 CONVERT is "int->real" only —
// see DESIGN.md's Open Question on the exact promotion rule).
func NumericResult(a, b Type) (Type, bool) {
	if a == Bool || b == Bool || a == Invalid || b == Invalid {
		return Invalid, false
	}
	if a == b {
		return a, true
	}
	return Real, true
}

// NeedsConvert reports whether a value of type from must be widened to
// type to via CONVERT before use.
func NeedsConvert(from, to Type) bool {
	return from == Int && to == Real
}

func typeFromName(name string) Type {
	switch name {
	case "int":
		return Int
	case "real":
		return Real
	case "bool":
		return Bool
	default:
		return Invalid
	}
}

// BuildScope declares every VarDecl's names, collecting duplicate-
// declaration errors.
func BuildScope(prog *ast.Program) (*Scope, []error) {
	scope := NewScope()
	var errs []error
	for _, decl := range prog.Decls {
		t := typeFromName(decl.TypeName)
		for _, name := range decl.Names {
			if err := scope.Declare(name, t); err != nil {
				errs = append(errs, errf(decl.Pos, "%s", err))
			}
		}
	}
	return scope, errs
}

// Check validates every statement and expression in prog against scope,
// returning every error found (nil slice if the program is well-typed).
// spec.md §4.1 requires the AST the builder receives to already satisfy
// this; internal/sema.Check calls this and refuses to hand the program to
// the builder if it returns any errors.
func Check(scope *Scope, prog *ast.Program) []error {
	var errs []error
	checkBlock(scope, prog.Body, &errs)
	return errs
}

func checkBlock(scope *Scope, b *ast.Block, errs *[]error) {
	for _, stmt := range b.Stmts {
		checkStmt(scope, stmt, errs)
	}
}

func checkStmt(scope *Scope, s *ast.Stmt, errs *[]error) {
	switch {
	case s.If != nil:
		t, err := InferExpr(scope, s.If.Cond)
		reportCond(t, err, s.If.Cond.Pos, errs)
		checkStmt(scope, s.If.Then, errs)
		if s.If.Else != nil {
			checkStmt(scope, s.If.Else, errs)
		}
	case s.While != nil:
		t, err := InferExpr(scope, s.While.Cond)
		reportCond(t, err, s.While.Cond.Pos, errs)
		checkStmt(scope, s.While.Body, errs)
	case s.Read != nil:
		if _, ok := scope.Lookup(s.Read.Name); !ok {
			*errs = append(*errs, errf(s.Pos, "read of undeclared variable %q", s.Read.Name))
		}
	case s.Write != nil:
		if _, err := InferExpr(scope, s.Write.Value); err != nil {
			*errs = append(*errs, err)
		}
	case s.Assign != nil:
		declared, ok := scope.Lookup(s.Assign.Name)
		if !ok {
			*errs = append(*errs, errf(s.Pos, "assignment to undeclared variable %q", s.Assign.Name))
			break
		}
		rhs, err := InferExpr(scope, s.Assign.Value)
		if err != nil {
			*errs = append(*errs, err)
			break
		}
		if rhs != declared && !NeedsConvert(rhs, declared) {
			*errs = append(*errs, errf(s.Pos, "cannot assign %s to variable %q of type %s", rhs, s.Assign.Name, declared))
		}
	case s.Block != nil:
		checkBlock(scope, s.Block, errs)
	}
}

func reportCond(t Type, err error, pos lexer.Position, errs *[]error) {
	if err != nil {
		*errs = append(*errs, err)
		return
	}
	if t != Bool {
		*errs = append(*errs, errf(pos, "condition must be bool, got %s", t))
	}
}

// InferExpr is the entry point of the precedence chain.
func InferExpr(scope *Scope, e *ast.Expr) (Type, error) {
	t, err := inferAnd(scope, e.Left)
	if err != nil {
		return Invalid, err
	}
	for _, rhs := range e.Ops {
		if t != Bool {
			return Invalid, errf(e.Pos, "operand of 'or' must be bool, got %s", t)
		}
		rt, err := inferAnd(scope, rhs.Right)
		if err != nil {
			return Invalid, err
		}
		if rt != Bool {
			return Invalid, errf(e.Pos, "operand of 'or' must be bool, got %s", rt)
		}
	}
	return t, nil
}

func inferAnd(scope *Scope, e *ast.AndExpr) (Type, error) {
	t, err := inferNot(scope, e.Left)
	if err != nil {
		return Invalid, err
	}
	for _, rhs := range e.Ops {
		if t != Bool {
			return Invalid, errf(e.Pos, "operand of 'and' must be bool, got %s", t)
		}
		rt, err := inferNot(scope, rhs.Right)
		if err != nil {
			return Invalid, err
		}
		if rt != Bool {
			return Invalid, errf(e.Pos, "operand of 'and' must be bool, got %s", rt)
		}
	}
	return t, nil
}

func inferNot(scope *Scope, e *ast.NotExpr) (Type, error) {
	t, err := inferRel(scope, e.Rel)
	if err != nil {
		return Invalid, err
	}
	if e.Not {
		if t != Bool {
			return Invalid, errf(e.Pos, "operand of 'not' must be bool, got %s", t)
		}
	}
	return t, nil
}

func inferRel(scope *Scope, e *ast.RelExpr) (Type, error) {
	lt, err := inferAdd(scope, e.Left)
	if err != nil {
		return Invalid, err
	}
	if e.Op == "" {
		return lt, nil
	}
	rt, err := inferAdd(scope, e.Right)
	if err != nil {
		return Invalid, err
	}
	if _, ok := NumericResult(lt, rt); !ok && lt != rt {
		return Invalid, errf(e.Pos, "cannot compare %s and %s", lt, rt)
	}
	return Bool, nil
}

func inferAdd(scope *Scope, e *ast.AddExpr) (Type, error) {
	t, err := inferMul(scope, e.Left)
	if err != nil {
		return Invalid, err
	}
	for _, rhs := range e.Ops {
		rt, err := inferMul(scope, rhs.Right)
		if err != nil {
			return Invalid, err
		}
		result, ok := NumericResult(t, rt)
		if !ok {
			return Invalid, errf(e.Pos, "invalid operand types %s, %s for '%s'", t, rt, rhs.Op)
		}
		t = result
	}
	return t, nil
}

func inferMul(scope *Scope, e *ast.MulExpr) (Type, error) {
	t, err := inferPow(scope, e.Left)
	if err != nil {
		return Invalid, err
	}
	for _, rhs := range e.Ops {
		rt, err := inferPow(scope, rhs.Right)
		if err != nil {
			return Invalid, err
		}
		result, ok := NumericResult(t, rt)
		if !ok {
			return Invalid, errf(e.Pos, "invalid operand types %s, %s for '%s'", t, rt, rhs.Op)
		}
		t = result
	}
	return t, nil
}

func inferPow(scope *Scope, e *ast.PowExpr) (Type, error) {
	t, err := inferUnary(scope, e.Left)
	if err != nil {
		return Invalid, err
	}
	if e.Op == "" {
		return t, nil
	}
	rt, err := inferPow(scope, e.Right)
	if err != nil {
		return Invalid, err
	}
	result, ok := NumericResult(t, rt)
	if !ok {
		return Invalid, errf(e.Pos, "invalid operand types %s, %s for '^'", t, rt)
	}
	return result, nil
}

func inferUnary(scope *Scope, e *ast.UnaryExpr) (Type, error) {
	t, err := inferPrimary(scope, e.Operand)
	if err != nil {
		return Invalid, err
	}
	if e.Op == "" {
		return t, nil
	}
	if t == Bool || t == Invalid {
		return Invalid, errf(e.Pos, "invalid operand type %s for unary '%s'", t, e.Op)
	}
	return t, nil
}

func inferPrimary(scope *Scope, e *ast.PrimaryExpr) (Type, error) {
	switch {
	case e.Paren != nil:
		return InferExpr(scope, e.Paren)
	case e.Real != nil:
		return Real, nil
	case e.Int != nil:
		return Int, nil
	case e.Bool != nil:
		return Bool, nil
	case e.Ident != nil:
		t, ok := scope.Lookup(*e.Ident)
		if !ok {
			return Invalid, errf(e.Pos, "use of undeclared variable %q", *e.Ident)
		}
		return t, nil
	default:
		return Invalid, errf(e.Pos, "malformed expression")
	}
}
