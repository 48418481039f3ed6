// Package main is the entry point for the trainloop CLI.
// Trainloop runs an AI coding agent against benchmark suites in a loop,
// recording results and feeding failure reflections back into each
// subsequent attempt.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/OpenAgentsInc/openagents-sub011/internal/cli"
)

// Version information (set by goreleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := cli.Execute(version, commit, date); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			if !exitErr.Printed {
				fmt.Fprintf(os.Stderr, "Error: %v\n", exitErr.Err)
			}
			os.Exit(exitErr.Code)
		}

		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
