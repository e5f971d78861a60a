// Command codex drives the mirror ritual codex: content dispatch, access
// unlocks, reflections and scenario runs.
package main

import (
	"fmt"
	"os"

	"github.com/OBLIVION-PROTOCOL/mirror-ritual-site/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
