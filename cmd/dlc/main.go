// Package main is dlc, the DL compiler/interpreter driver: parse, check,
// build, optimize, then either print the IR or interpret it. Flag and
// pipeline shape follow kanso/cmd/kanso-cli/main.go, extended from
// "parse and print the AST" to the full pipeline this repo implements.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/pkg/errors"

	"github.com/efrenlopes/dl-compiler/internal/diag"
	"github.com/efrenlopes/dl-compiler/internal/ir"
	"github.com/efrenlopes/dl-compiler/internal/parser"
	"github.com/efrenlopes/dl-compiler/internal/sema"
	"github.com/efrenlopes/dl-compiler/internal/typesys"
)

func main() {
	printIR := flag.Bool("print-ir", false, "print the optimized SSA IR instead of interpreting it")
	noOptimize := flag.Bool("no-optimize", false, "skip the SSA optimizer")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: dlc [-print-ir] [-no-optimize] <file.dl>")
		os.Exit(1)
	}
	path := flag.Arg(0)

	if err := run(path, *printIR, *noOptimize); err != nil {
		os.Exit(1)
	}
}

func run(path string, printIR, noOptimize bool) error {
	source, err := os.ReadFile(path)
	if err != nil {
		color.Red("dlc: %s", err)
		return err
	}

	reporter := diag.NewReporter(path, string(source))

	prog, err := parser.ParseSource(path, string(source))
	if err != nil {
		reportParseError(reporter, err)
		return err
	}

	checked, err := sema.Check(prog)
	if err != nil {
		reportSemaError(reporter, err)
		return err
	}

	cfg := ir.BuildProgram(checked)
	ir.ConstructSSA(cfg)
	if !noOptimize {
		ir.Optimize(cfg)
	}

	if printIR {
		fmt.Print(ir.Print(cfg))
		return nil
	}

	interp := ir.NewInterp(cfg, os.Stdin, os.Stdout)
	if err := interp.Run(); err != nil {
		var rerr *ir.RuntimeError
		if errors.As(err, &rerr) {
			// Message is already written to stdout by the interpreter
			// itself, matching the exact wording the I/O contract
			// requires; nothing further to report here.
			return err
		}
		color.Red("dlc: %s", err)
		return err
	}
	return nil
}

// reportParseError renders a participle syntax error caret-style, the way
// kanso/cmd/kanso-cli/main.go's reportParseError does.
func reportParseError(r *diag.Reporter, err error) {
	pe, ok := parser.IsParticipleError(err)
	if !ok {
		color.Red("dlc: %s", err)
		return
	}
	d := diag.Diagnostic{Level: diag.Error, Code: "E0001", Message: pe.Message(), Pos: pe.Position()}
	fmt.Fprint(os.Stderr, d.String(r))
}

func reportSemaError(r *diag.Reporter, err error) {
	serr, ok := err.(*sema.Errors)
	if !ok {
		color.Red("dlc: %s", err)
		return
	}
	for _, e := range serr.Errs {
		if terr, ok := e.(*typesys.Error); ok {
			d := diag.Diagnostic{Level: diag.Error, Code: "E0002", Message: terr.Message, Pos: terr.Pos}
			fmt.Fprint(os.Stderr, d.String(r))
			continue
		}
		color.Red("dlc: %s", e)
	}
}
