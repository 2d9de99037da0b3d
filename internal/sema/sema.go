// Package sema is DL's semantic checker: declared-before-use, duplicate
// declaration, operator/operand type compatibility, condition-must-be-bool,
// and read/write variable existence. It hands internal/ir's builder an AST
// that satisfies the "already type-checked" precondition of spec.md §4.1.
//
// Modeled at DL's scale on the split kanso/internal/semantic uses
// (analyzer.go driving symbols.go + the per-construct checks), rather than
// a single monolithic pass.
package sema

import (
	"fmt"
	"strings"

	"github.com/efrenlopes/dl-compiler/internal/ast"
	"github.com/efrenlopes/dl-compiler/internal/typesys"
)

// CheckedProgram is an ast.Program accompanied by its resolved variable
// scope, the form internal/ir's builder expects.
type CheckedProgram struct {
	Program *ast.Program
	Scope   *typesys.Scope
}

// Errors aggregates every semantic error found in one program.
type Errors struct {
	Errs []error
}

func (e *Errors) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d semantic error(s):\n%s", len(e.Errs), strings.Join(msgs, "\n"))
}

// Check validates prog and returns a CheckedProgram, or an *Errors
// describing every problem found.
func Check(prog *ast.Program) (*CheckedProgram, error) {
	scope, declErrs := typesys.BuildScope(prog)
	errs := append([]error{}, declErrs...)
	errs = append(errs, typesys.Check(scope, prog)...)

	if len(errs) > 0 {
		return nil, &Errors{Errs: errs}
	}
	return &CheckedProgram{Program: prog, Scope: scope}, nil
}
