// Package diag formats diagnostics (lex, parse, and binder errors) with
// source context and a caret pointing at the offending column, the way
// the teacher's internal/errors package formats CompilerError.
package diag

import (
	"fmt"
	"strings"

	"github.com/aspid-lang/aspid/internal/token"
)

// Severity classifies a Diagnostic. The base language only ever produces
// errors; the field is kept distinct from Message so a future warning pass
// (unused variables, say) has somewhere to attach without a breaking change.
type Severity int

const (
	SeverityError Severity = iota
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "unknown"
}

// Diagnostic is a single lex, parse, or binder failure.
type Diagnostic struct {
	Message  string
	Pos      token.Position
	Severity Severity
}

// New creates an error-severity Diagnostic.
func New(pos token.Position, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Message:  fmt.Sprintf(format, args...),
		Pos:      pos,
		Severity: SeverityError,
	}
}

// Error implements the error interface with an uncoloured rendering.
func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%d:%d: %s", d.Pos.Line, d.Pos.Column, d.Message)
}

// Format renders the diagnostic against source, optionally with ANSI
// colour, mirroring errors.CompilerError.Format in the teacher repo.
func (d *Diagnostic) Format(source string, color bool) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Error at line %d:%d\n", d.Pos.Line, d.Pos.Column)

	if line := sourceLine(source, d.Pos.Line); line != "" {
		prefix := fmt.Sprintf("%4d | ", d.Pos.Line)
		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteString("\n")

		sb.WriteString(strings.Repeat(" ", len(prefix)+d.Pos.Column-1))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m")
		}
		sb.WriteString("\n")
	}

	if color {
		sb.WriteString("\033[1;31m")
	}
	sb.WriteString(d.Message)
	if color {
		sb.WriteString("\033[0m")
	}

	return sb.String()
}

func sourceLine(source string, line int) string {
	if source == "" || line < 1 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return ""
	}
	return lines[line-1]
}

// FormatAll renders a slice of diagnostics, one per paragraph, in red when
// color is requested. Used by the CLI after the parser and the binder.
func FormatAll(diags []*Diagnostic, source string, color bool) string {
	var sb strings.Builder
	for i, d := range diags {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(d.Format(source, color))
	}
	return sb.String()
}
