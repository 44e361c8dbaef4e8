// Package cmd contains the difficulty simulation app.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	testMode          bool
	initialDifficulty uint64
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&testMode, "test-mode", "t", false, "Use the test chain parameters.")
	rootCmd.PersistentFlags().Uint64VarP(&initialDifficulty, "initial-difficulty", "i", 0, "Override the initial difficulty.")
}

var rootCmd = &cobra.Command{
	Use:   "diffsim",
	Short: "Simulate difficulty adjustment across epochs.",
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
