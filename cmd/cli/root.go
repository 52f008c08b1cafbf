// Package cli implements the accunode command-line client. Every command
// builds the same store graph the sync daemon uses and drives it for a single
// invocation.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/accunode/accunode-go/internal/app"
)

// rootCmd is the base command when the `accunode` binary is called without
// any subcommands.
var rootCmd = &cobra.Command{
	Use:   "accunode",
	Short: "Command-line client for the AccuNode default-risk platform",
	Long: `accunode talks to the AccuNode platform API: sign in, score companies
against the annual and quarterly default-risk models, upload spreadsheets for
bulk scoring, follow the resulting jobs, and read the dashboard summary.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point for the CLI application. It parses the
// command-line arguments and runs the selected command; on error it prints
// the error and exits non-zero.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newApp assembles the client graph for one command invocation.
func newApp() (*app.App, error) {
	return app.New()
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
