package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ersonp/patchrag/internal/application/handlers"
	"github.com/ersonp/patchrag/internal/domain/entities"
	"github.com/ersonp/patchrag/internal/domain/services"
)

type filterFlags struct {
	patch   string
	typ     string
	subtype string
	title   string
	skill   string
}

// filter validates the flags and builds the metadata filter.
func (f filterFlags) filter() (entities.Filter, error) {
	if f.typ != "" && !entities.IsChangeType(f.typ) {
		return entities.Filter{}, fmt.Errorf("invalid type %q, valid types: generic, items, heroes", f.typ)
	}
	if f.subtype != "" && !entities.IsSubtype(f.subtype) {
		return entities.Filter{}, fmt.Errorf("invalid subtype %q, valid subtypes: hero_items, neutral_items, abilities, facets", f.subtype)
	}
	if f.typ != "" && f.subtype != "" && !entities.ValidBucket(entities.ChangeType(f.typ), entities.Subtype(f.subtype)) {
		return entities.Filter{}, fmt.Errorf("subtype %q does not belong to type %q", f.subtype, f.typ)
	}

	return entities.Filter{
		PatchNumber: f.patch,
		Type:        f.typ,
		Subtype:     f.subtype,
		Title:       f.title,
		SkillName:   f.skill,
	}, nil
}

func newAskCmd() *cobra.Command {
	var (
		k           int
		noSelfQuery bool
		flags       filterFlags
	)

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a single question",
		Long: `Retrieves the most relevant patch notes and answers the question from them.
Any filter flag replaces the filter that would otherwise be inferred from the question.`,
		Example: `  patchrag ask "What changed for Axe in 7.38c?"
  patchrag ask "Blink Dagger cooldown" --type items --patch 7.38c`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := flags.filter()
			if err != nil {
				return err
			}
			opts := handlers.QueryOptions{K: k, Filter: filter, NoSelfQuery: noSelfQuery}

			return withDeps(cmd.Context(), func(d *Deps) error {
				answer, err := d.QueryHandler.Handle(cmd.Context(), args[0], opts)
				if err != nil {
					return err
				}
				printAnswer(cmd.OutOrStdout(), answer)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&k, "k", services.DefaultK, "Number of documents to retrieve")
	cmd.Flags().StringVar(&flags.patch, "patch", "", "Filter by patch number")
	cmd.Flags().StringVarP(&flags.typ, "type", "t", "", "Filter by change type (generic, items, heroes)")
	cmd.Flags().StringVar(&flags.subtype, "subtype", "", "Filter by subtype (hero_items, neutral_items, abilities, facets)")
	cmd.Flags().StringVar(&flags.title, "title", "", "Filter by hero, item or section title")
	cmd.Flags().StringVar(&flags.skill, "skill", "", "Filter by ability or facet name")
	cmd.Flags().BoolVar(&noSelfQuery, "no-self-query", false, "Do not infer a filter from the question")

	return cmd
}
