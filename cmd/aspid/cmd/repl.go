package cmd

import (
	"bufio"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/aspid-lang/aspid/internal/binder"
	"github.com/aspid-lang/aspid/internal/builtins"
	"github.com/aspid-lang/aspid/internal/diag"
	"github.com/aspid-lang/aspid/internal/evaluator"
	"github.com/aspid-lang/aspid/internal/parser"
	"github.com/spf13/cobra"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive Aspid session",
	Args:  cobra.NoArgs,
	RunE:  func(cmd *cobra.Command, args []string) error { runRepl(); return nil },
}

func init() {
	rootCmd.AddCommand(replCmd)
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error { runRepl(); return nil }
}

// runRepl reads one logical line at a time, binds it against scope
// accumulated by earlier lines, and evaluates it against a persistent
// Evaluator, per §6's REPL contract. A line whose trimmed text ends with
// ':' opens a multi-line continuation: subsequent lines are read (each
// expected to be indented) until a blank line closes the block — the
// supplemented multi-line input feature (source-text line buffering, not
// new block syntax).
func runRepl() {
	in := bufio.NewReader(os.Stdin)
	b := binder.New()
	eval := evaluator.New()
	bi := evaluator.NewBuiltins()
	builtins.Install(bi, os.Stdin, os.Stdout, rand.New(rand.NewPCG(randSeed(), randSeed())))

	for {
		fmt.Print(">>> ")
		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}

		buf := line
		if strings.HasSuffix(strings.TrimRight(line, " \t"), ":") {
			for {
				fmt.Print("... ")
				next, err := in.ReadString('\n')
				next = strings.TrimRight(next, "\r\n")
				if err != nil || strings.TrimSpace(next) == "" {
					break
				}
				buf += "\n" + next
			}
		}

		evalLine(b, eval, bi, buf)
	}
}

func evalLine(b *binder.Binder, eval *evaluator.Evaluator, bi *evaluator.Builtins, source string) {
	prog, diags := parser.Parse(source)
	if len(diags) > 0 {
		fmt.Fprintln(os.Stderr, diag.FormatAll(diags, source, !noColor))
		return
	}

	for _, stmt := range prog.Statements {
		b.ResetDiagnostics()
		bound := b.BindStatement(stmt)
		if len(b.Diagnostics()) > 0 {
			fmt.Fprintln(os.Stderr, diag.FormatAll(b.Diagnostics(), source, !noColor))
			continue
		}

		result, err := eval.Run(bi, bound)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Runtime Error: %s\n", err)
			continue
		}
		printResult(result)
	}
}

func printResult(v evaluator.Value) {
	if v.Kind == evaluator.KindVoid {
		return
	}
	fmt.Println(colorize(v.Render(), !noColor, "32"))
}

// colorize wraps s in an ANSI color code when enabled is true; the caller
// passes !noColor so the function reads the same way at every call site.
func colorize(s string, enabled bool, code string) string {
	if !enabled {
		return s
	}
	return "\033[" + code + "m" + s + "\033[0m"
}

func randSeed() uint64 {
	if seedSet {
		return uint64(seed)
	}
	return uint64(os.Getpid())
}
