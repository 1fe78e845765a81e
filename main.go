// Command trackline is the CLI entry point.
package main

import (
	"github.com/trackline/trackline/cmd"
	"github.com/trackline/trackline/internal/contract"
	"github.com/trackline/trackline/internal/metricstore"
)

func main() {
	err := cmd.Execute()

	// Close store connections before reporting the outcome. Subcommand
	// bodies exit directly on failure; this path covers parse and setup
	// errors plus clean runs.
	metricstore.CloseStores()

	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("stopping profiler", stopErr)
	}

	if err != nil {
		contract.LogFatal("Command failed", err)
	}
}
