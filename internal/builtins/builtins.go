// Package builtins wires Aspid's three host-provided functions — print,
// input, random — to the evaluator's Builtins table, keeping the
// evaluator package itself free of I/O and randomness concerns (following
// the teacher's internal/interp/builtins_io.go /
// internal/interp/builtins_math*.go split between the interpreter core
// and its built-in function surface).
package builtins

import (
	"bufio"
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/aspid-lang/aspid/internal/evaluator"
)

// Install registers print, input, and random against b, reading from r,
// writing to w, and drawing randomness from rng. A nil rng uses the
// default unseeded source (math/rand/v2's top-level functions reseed
// automatically); pass rand.New(rand.NewPCG(seed, seed)) for a
// reproducible --seed run.
func Install(b *evaluator.Builtins, r io.Reader, w io.Writer, rng *rand.Rand) {
	reader := bufio.NewReader(r)

	b.Register("print", evaluator.BuiltinFunc(func(args []evaluator.Value) (evaluator.Value, error) {
		if len(args) != 1 {
			return evaluator.Void(), fmt.Errorf("print expects 1 argument, got %d", len(args))
		}
		fmt.Fprintln(w, args[0].Render())
		return evaluator.Void(), nil
	}))

	b.Register("input", evaluator.BuiltinFunc(func(args []evaluator.Value) (evaluator.Value, error) {
		if len(args) != 0 {
			return evaluator.Void(), fmt.Errorf("input expects 0 arguments, got %d", len(args))
		}
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return evaluator.String(""), nil
		}
		return evaluator.String(trimNewline(line)), nil
	}))

	b.Register("random", evaluator.BuiltinFunc(func(args []evaluator.Value) (evaluator.Value, error) {
		if len(args) != 2 {
			return evaluator.Void(), fmt.Errorf("random expects 2 arguments, got %d", len(args))
		}
		min, max := args[0].Int, args[1].Int
		if max <= min {
			return evaluator.Void(), fmt.Errorf("random(min, max) requires max > min, got %d, %d", min, max)
		}
		span := max - min
		var n int64
		if rng != nil {
			n = rng.Int64N(span)
		} else {
			n = rand.Int64N(span)
		}
		return evaluator.Int(min + n), nil
	}))
}

func trimNewline(s string) string {
	if n := len(s); n > 0 && s[n-1] == '\n' {
		s = s[:n-1]
	}
	if n := len(s); n > 0 && s[n-1] == '\r' {
		s = s[:n-1]
	}
	return s
}
