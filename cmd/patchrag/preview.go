package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ersonp/patchrag/internal/application/handlers"
	"github.com/ersonp/patchrag/internal/domain/entities"
)

func newPreviewCmd() *cobra.Command {
	var (
		patchVersion string
		category     string
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show the documents a patch would produce",
		Long:  "Fetches and assembles a patch into documents without embedding or storing them.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if category != "" && !handlers.IsCategory(category) {
				return fmt.Errorf("invalid category %q, valid categories: %s", category, strings.Join(handlers.Categories(), ", "))
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			return withLogger(func(log *zap.Logger) error {
				h := handlers.NewPreviewHandler(newCorpusService(cfg, log))
				result, err := h.Handle(cmd.Context(), patchVersion, category)
				if err != nil {
					return err
				}
				if asJSON {
					return writeDocumentsJSON(cmd.OutOrStdout(), result)
				}
				printPreview(cmd.OutOrStdout(), result)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&patchVersion, "patch-version", "", "Patch version to preview, e.g. 7.38c")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Only show one category (general, items, neutral_items, heroes)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print documents as JSON")
	_ = cmd.MarkFlagRequired("patch-version")

	return cmd
}

func printPreview(out io.Writer, result *handlers.PreviewResult) {
	fmt.Fprintf(out, "Patch %s (%s): general %d, items %d, neutral items %d, heroes %d, dropped %d\n\n",
		result.Patch.PatchName,
		result.Patch.PatchNumber,
		result.Counts.General,
		result.Counts.Items,
		result.Counts.NeutralItems,
		result.Counts.Heroes,
		result.Dropped,
	)

	for i, doc := range result.Documents {
		fmt.Fprintf(out, "%d. %s\n", i+1, truncate(doc.PageContent, MaxPreviewContent))
	}
}

func writeDocumentsJSON(out io.Writer, result *handlers.PreviewResult) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	docs := result.Documents
	if docs == nil {
		docs = []entities.Document{}
	}
	return enc.Encode(docs)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
