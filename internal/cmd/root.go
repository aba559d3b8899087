// Package cmd provides the loom command-line interface.
package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "loom",
	Short: "loom drives and inspects discrete-event actor simulations.",
	Long: `loom is the command-line companion to the loom simulation kernel.

It can replay a recorded action trace against a live simulation, serving a
live introspection endpoint while the replay runs, and it can list the
history of past runs recorded to a SQLite database.`,
}

func init() {
	_ = godotenv.Load() // a missing .env is not an error; flags/env vars still work.
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
