package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for vtprecheck.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vtprecheck",
		Short: "Precondition checks for version tracking sessions",
		Long: `vtprecheck validates that a source and a destination program are
consistent enough to be correlated by a version tracking session.

Programs are read from analysis export files (YAML or JSON) or from the local
program store populated with 'vtprecheck import'.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewImportCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
// Warnings surfaced with --fail-on-warning exit with status 2 so scripts can
// tell them apart from errors.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, errWarningsFound) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
