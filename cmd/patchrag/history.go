package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ersonp/patchrag/internal/application/handlers"
	"github.com/ersonp/patchrag/internal/domain/entities"
	"github.com/ersonp/patchrag/internal/infrastructure/relationaldb/sqlite"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List inserted patches",
		Long:  "Shows the patches inserted into the vector index from this workspace, newest first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			return withHistory(cmd.Context(), cfg, func(repo *sqlite.Repository) error {
				runs, err := handlers.NewHistoryHandler(repo).Handle(cmd.Context(), limit)
				if err != nil {
					return err
				}
				return printRuns(cmd.OutOrStdout(), runs)
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", DefaultHistoryLimit, "Maximum number of runs to show (0 for all)")

	return cmd
}

func printRuns(out io.Writer, runs []entities.IngestionRun) error {
	if len(runs) == 0 {
		fmt.Fprintln(out, "No patches inserted yet.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PATCH\tINDEX\tNAMESPACE\tGENERAL\tITEMS\tNEUTRAL\tHEROES\tDROPPED\tINSERTED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
			run.Patch.PatchName,
			run.Index,
			run.Namespace,
			run.Counts.General,
			run.Counts.Items,
			run.Counts.NeutralItems,
			run.Counts.Heroes,
			run.Dropped,
			run.CreatedAt.Local().Format("2006-01-02 15:04"),
		)
	}
	return w.Flush()
}
