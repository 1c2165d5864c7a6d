package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ersonp/patchrag/internal/application/handlers"
)

type resetFlags struct {
	force    bool
	recreate bool
}

func newResetCmd() *cobra.Command {
	var flags resetFlags

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete the vector index",
		Long:  "Deletes the configured vector index and every document in it. Use --recreate to create an empty index afterwards.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !flags.force {
				prompt := fmt.Sprintf("Delete index %s (%s)?", cfg.VectorStore.Index, cfg.VectorStore.Provider)
				if !confirmAction(cmd.InOrStdin(), out, prompt) {
					fmt.Fprintln(out, "Cancelled.")
					return nil
				}
			}

			return withLogger(func(log *zap.Logger) error {
				result, err := handlers.NewResetHandler(connectIndex(log)).Handle(cmd.Context(), cfg, flags.recreate)
				if err != nil {
					return err
				}
				printReset(out, result)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Skip confirmation prompt")
	cmd.Flags().BoolVar(&flags.recreate, "recreate", false, "Create an empty index after deleting")

	return cmd
}

func printReset(out io.Writer, result *handlers.ResetResult) {
	if result.Deleted {
		fmt.Fprintf(out, "Deleted vector index: %s\n", result.Index)
	} else {
		fmt.Fprintf(out, "Vector index %s did not exist\n", result.Index)
	}
	if result.Recreated {
		fmt.Fprintf(out, "Created vector index: %s\n", result.Index)
	}
}

// confirmAction asks a yes/no question. EOF or a read error counts as no.
func confirmAction(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	response, _ := bufio.NewReader(in).ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
