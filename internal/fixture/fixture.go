// Package fixture runs whole Aspid programs end-to-end — lex, parse, bind,
// evaluate — and captures their stdout, grounded on the teacher's
// internal/interp/fixture_test.go golden-file harness. Aspid's fixtures are
// plain .aspid source files under testdata/fixtures/<Category>, one program
// per test, compared against a go-snaps snapshot rather than the teacher's
// parallel .pas/.txt expected-output files (Aspid has no legacy expected-
// output corpus to match against).
package fixture

import (
	"bytes"
	"math/rand/v2"

	"github.com/aspid-lang/aspid/internal/binder"
	"github.com/aspid-lang/aspid/internal/builtins"
	"github.com/aspid-lang/aspid/internal/diag"
	"github.com/aspid-lang/aspid/internal/evaluator"
	"github.com/aspid-lang/aspid/internal/parser"
)

// Result is the outcome of running one fixture program.
type Result struct {
	// Output is everything the program printed (via the print built-in).
	Output string
	// Diagnostics holds lex/parse or binder errors, formatted one per
	// line, in source order. Empty when the program parsed and bound
	// cleanly.
	Diagnostics []string
	// RuntimeError is the first runtime error encountered, if any.
	RuntimeError string
}

// Run lexes, parses, binds, and evaluates source, feeding input to the
// input() built-in and seeding random() with seed for reproducibility.
// Lex/parse errors short-circuit the run; binder diagnostics and runtime
// errors are collected per top-level statement and execution continues
// past them, matching the CLI's run/repl resume-at-next-statement policy.
func Run(source string, input string, seed uint64) *Result {
	res := &Result{}

	prog, diags := parser.Parse(source)
	if len(diags) > 0 {
		res.Diagnostics = formatDiagnostics(diags)
		return res
	}

	var out bytes.Buffer
	eval := evaluator.New()
	bi := evaluator.NewBuiltins()
	builtins.Install(bi, bytes.NewBufferString(input), &out, rngFor(seed))

	b := binder.New()
	for _, stmt := range prog.Statements {
		b.ResetDiagnostics()
		bound := b.BindStatement(stmt)
		if len(b.Diagnostics()) > 0 {
			res.Diagnostics = append(res.Diagnostics, formatDiagnostics(b.Diagnostics())...)
			continue
		}

		if _, err := eval.Run(bi, bound); err != nil && res.RuntimeError == "" {
			res.RuntimeError = err.Error()
		}
	}

	res.Output = out.String()
	return res
}

func formatDiagnostics(diags []*diag.Diagnostic) []string {
	lines := make([]string, len(diags))
	for i, d := range diags {
		lines[i] = d.Error()
	}
	return lines
}

func rngFor(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}
