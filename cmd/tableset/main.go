package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tableset",
	Short: "Inspect and slice multi-table experiment containers",
	Long: `tableset manages containers of related experiment tables: build them from
CSV manifests or live databases, inspect the inferred relation network, and
extract consistent sub-selections driven by the cardinal table.`,
	SilenceUsage: true,
}

func main() {
	addCommands(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
