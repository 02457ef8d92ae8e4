// Package cli implements offerctl, a command-line front end to the
// reconciliation engine that works from a JSON snapshot of wallet state.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

// NewRootCmd builds the offerctl command tree.
func NewRootCmd() *cobra.Command {
	var debug bool

	root := &cobra.Command{
		Use:           "offerctl",
		Short:         "Reconcile trade offers against wallet balances",
		Long:          `offerctl checks whether a trade offer can be funded from a wallet state snapshot and reports which pending offers stand in the way.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelWarn
			if debug {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	root.AddCommand(newReconcileCmd())
	root.AddCommand(newNFTCmd())
	return root
}

// Execute runs offerctl. This is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
