// Package diag formats compiler and interpreter diagnostics with
// Rust-style caret styling, grounded on kanso/internal/errors/reporter.go
// and codes.go.
package diag

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/fatih/color"
)

// Level is the severity of a diagnostic.
type Level string

const (
	Error   Level = "error"
	Warning Level = "warning"
	Note    Level = "note"
)

// Diagnostic is a single structured message with source position.
type Diagnostic struct {
	Level   Level
	Code    string // e.g. "E0001"
	Message string
	Pos     lexer.Position
}

// Reporter formats Diagnostics against a known source file.
type Reporter struct {
	filename string
	lines    []string
}

// NewReporter creates a Reporter for filename/source.
func NewReporter(filename, source string) *Reporter {
	return &Reporter{filename: filename, lines: strings.Split(source, "\n")}
}

// Format renders d with a caret under the offending column, the way
// kanso's ErrorReporter.FormatError does.
func (r *Reporter) Format(d Diagnostic) string {
	var out strings.Builder

	levelColor := r.colorFor(d.Level)
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	if d.Code != "" {
		out.WriteString(fmt.Sprintf("%s[%s]: %s\n", levelColor(string(d.Level)), d.Code, bold(d.Message)))
	} else {
		out.WriteString(fmt.Sprintf("%s: %s\n", levelColor(string(d.Level)), bold(d.Message)))
	}

	out.WriteString(fmt.Sprintf("  %s %s:%d:%d\n", dim("-->"), r.filename, d.Pos.Line, d.Pos.Column))
	out.WriteString(fmt.Sprintf("   %s\n", dim("|")))

	if d.Pos.Line >= 1 && d.Pos.Line <= len(r.lines) {
		line := r.lines[d.Pos.Line-1]
		out.WriteString(fmt.Sprintf("%3d%s %s\n", d.Pos.Line, dim(" |"), line))
		col := d.Pos.Column
		if col < 1 {
			col = 1
		}
		caret := strings.Repeat(" ", col-1) + "^"
		out.WriteString(fmt.Sprintf("   %s %s\n", dim("|"), color.RedString(caret)))
	}

	return out.String()
}

func (r *Reporter) colorFor(level Level) func(a ...interface{}) string {
	switch level {
	case Error:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	case Warning:
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	default:
		return color.New(color.FgCyan, color.Bold).SprintFunc()
	}
}

// String returns the formatted diagnostic as a plain string (callers choose
// where it goes — cmd/dlc writes it to stderr).
func (d Diagnostic) String(r *Reporter) string {
	return r.Format(d)
}
