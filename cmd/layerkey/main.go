// Command layerkey derives a mnemonic or password from a master secret and
// an ordered list of layers. Nothing is stored: the same inputs always
// produce the same output.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/awnumar/memguard"
)

func main() {
	// Wipe locked buffers if the process is interrupted mid-derivation.
	memguard.CatchInterrupt()

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Fatal error: %v\n", r)
			if verboseRequested(os.Args[1:]) {
				fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			} else {
				fmt.Fprintln(os.Stderr, "Run with --verbose for stack trace")
			}
			memguard.SafeExit(ExitError)
		}
	}()

	cmd := newRootCmd()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		memguard.SafeExit(HandleError(cmd, err))
	}
	memguard.SafeExit(ExitSuccess)
}

func verboseRequested(args []string) bool {
	for _, a := range args {
		if a == "--verbose" || a == "-v" {
			return true
		}
	}
	return false
}
