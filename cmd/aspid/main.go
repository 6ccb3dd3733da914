// Command aspid runs the Aspid language interpreter: `aspid run file.aspid`
// executes a script, `aspid repl` starts an interactive session, and a bare
// `aspid` invocation with no subcommand also starts the REPL.
package main

import (
	"os"

	"github.com/aspid-lang/aspid/cmd/aspid/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
