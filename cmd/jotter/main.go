package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/jotter/pkg/core"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fatal(err)
	}
}

// fatal prints err and exits with its exitCode.
func fatal(err error) {
	fmt.Fprintf(os.Stderr, "jotter: %v\n", err)
	os.Exit(exitCode(err))
}

// exitCode is 2 when a command named a note that does not exist, 1 otherwise.
func exitCode(err error) int {
	if errors.Is(err, core.ErrNotFound) {
		return 2
	}
	return 1
}
