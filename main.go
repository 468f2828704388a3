// Package main is the entry point for the issuebridge service.
package main

import (
	"fmt"
	"os"

	"github.com/issuebridge/issuebridge/cmd"
	"github.com/issuebridge/issuebridge/internal/logging"
)

func main() {
	if err := cmd.Execute(); err != nil {
		logging.Error("command execution failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
