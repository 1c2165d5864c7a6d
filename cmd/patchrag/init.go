package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ersonp/patchrag/internal/application/handlers"
)

func newInitCmd() *cobra.Command {
	var skipIndex bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a patchrag workspace",
		Long:  "Creates a .patchrag directory with default configuration and sets up the vector index.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("getting current directory: %w", err)
			}

			return withLogger(func(log *zap.Logger) error {
				var connect handlers.IndexConnector
				if !skipIndex {
					connect = connectIndex(log)
				}

				result, err := handlers.NewInitHandler(connect).Handle(cmd.Context(), cwd)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Created %s\n", result.ConfigPath)
				if result.IndexCreated {
					fmt.Fprintf(out, "Created vector index: %s\n", result.Index)
				}
				fmt.Fprintln(out, "patchrag initialized successfully!")
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&skipIndex, "skip-index", false, "Only write the config, do not create the vector index")

	return cmd
}
