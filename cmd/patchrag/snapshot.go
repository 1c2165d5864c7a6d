package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ersonp/patchrag/internal/infrastructure/fetcher/datafeed"
	"github.com/ersonp/patchrag/internal/infrastructure/fetcher/snapshot"
)

func newSnapshotCmd() *cobra.Command {
	var (
		patchVersion string
		dir          string
	)

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save a patch from the datafeed to disk",
		Long: `Downloads the patch notes and reference lists for one patch into a directory.
Pass the directory to --snapshot-dir to insert or preview without network access.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			return withLogger(func(log *zap.Logger) error {
				client := datafeed.NewClient(cfg.Datafeed.BaseURL, cfg.Datafeed.Language, cfg.FetchTimeout(), log)

				written, err := snapshot.Write(cmd.Context(), dir, patchVersion, client)
				if err != nil {
					return fmt.Errorf("saving snapshot: %w", err)
				}

				out := cmd.OutOrStdout()
				for _, path := range written {
					fmt.Fprintf(out, "Wrote %s\n", path)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&patchVersion, "patch-version", "", "Patch version to save, e.g. 7.38c")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Directory to write the snapshot to")
	_ = cmd.MarkFlagRequired("patch-version")
	_ = cmd.MarkFlagRequired("dir")

	return cmd
}
