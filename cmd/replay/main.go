// Command replay runs a JSON-lines log of pool callbacks through the reward
// engine and prints the resulting state root.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "replay",
	Short: "Offline tools for the loyalty hook reward engine",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
