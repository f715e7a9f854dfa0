// main is the entry point for the githours CLI.
package main

import (
	"context"
	"os"

	"github.com/huangsam/githours/cmd"
	"github.com/huangsam/githours/internal/contract"
)

func main() {
	err := cmd.Execute()
	if shutdownErr := cmd.Shutdown(context.Background()); shutdownErr != nil {
		contract.LogWarn("Cleanup failed", shutdownErr)
	}
	if err != nil {
		contract.LogWarn("Command failed", err)
		os.Exit(1)
	}
}
