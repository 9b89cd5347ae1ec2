// Package main provides the entry point for the scoredash dashboard.
package main

import (
	"fmt"
	"os"

	"github.com/Sumatoshi-tech/scoredash/cmd/scoredash/commands"
	"github.com/Sumatoshi-tech/scoredash/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	err := commands.NewRootCommand().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
