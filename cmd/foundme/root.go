// Package main provides the entry point for the foundme CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for foundme.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "foundme",
		Short: "Find and assess the public exposure of an identity",
		Long: `foundme searches public sources for traces of an identity: platform
accounts registered under a username, email addresses in breach corpora,
phone number listings, and metadata embedded in published documents.

Findings are stored locally, correlated across categories, and summarized
into a risk assessment with concrete remediation steps.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("json-log", false, "Emit logs as JSON for aggregation")

	// Add subcommands
	cmd.AddCommand(NewInvestigateCmd())
	cmd.AddCommand(NewReportCmd())
	cmd.AddCommand(NewSessionsCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
