// Package main provides the entry point for the patchrag CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version           = "0.1.0-dev"
	globalVerbose     bool
	globalSnapshotDir string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	rootCmd := &cobra.Command{
		Use:   "patchrag",
		Short: "Ask questions about Dota 2 patch notes",
		Long: `Fetches Dota 2 patch notes, stores them in a vector index and answers
questions about them. Without a subcommand it optionally inserts a patch
(--insert --patch-version V) and then starts an interactive prompt.`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, opts)
		},
	}

	rootCmd.Flags().BoolVar(&opts.insert, "insert", false, "Insert the patch given by --patch-version before prompting")
	rootCmd.Flags().StringVar(&opts.patchVersion, "patch-version", "", "Patch version to insert, e.g. 7.38c (required with --insert)")
	rootCmd.PersistentFlags().BoolVarP(&globalVerbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&globalSnapshotDir, "snapshot-dir", "", "Read patch data from a saved snapshot instead of the datafeed")

	rootCmd.AddCommand(
		newAskCmd(),
		newHistoryCmd(),
		newInitCmd(),
		newPreviewCmd(),
		newResetCmd(),
		newSnapshotCmd(),
	)

	return rootCmd
}
