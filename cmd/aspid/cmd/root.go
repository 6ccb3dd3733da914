// Package cmd implements Aspid's command-line surface: a cobra root
// command with `run` and `repl` subcommands, grounded on the teacher's
// cmd/dwscript/cmd package (cobra.Command with PersistentFlags for
// cross-cutting options).
package cmd

import (
	"github.com/spf13/cobra"
)

var noColor bool

var rootCmd = &cobra.Command{
	Use:   "aspid",
	Short: "Aspid language interpreter",
	Long: `aspid runs programs written in Aspid, a small statically-hinted,
dynamically-dispatched scripting language with indentation-sensitive
blocks, string interpolation, arrays, and first-class functions.

With no subcommand and no file argument, aspid starts a REPL.`,
}

// Execute runs the root command; its return value is the process exit
// code set by the CLI entry point.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return exitCode
}

// exitCode lets a subcommand report a nonzero status without os.Exit,
// keeping deferred cleanup (flushed output, closed files) intact.
var exitCode int

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable ANSI colour in diagnostic output")
}
