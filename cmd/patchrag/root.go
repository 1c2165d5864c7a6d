package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ersonp/patchrag/internal/application/handlers"
	"github.com/ersonp/patchrag/internal/domain/services"
)

var errMissingPatchVersion = errors.New("must include patch version (--patch-version) when using --insert")

type rootOptions struct {
	insert       bool
	patchVersion string
}

func (o rootOptions) validate() error {
	if o.insert && o.patchVersion == "" {
		return errMissingPatchVersion
	}
	return nil
}

func runRoot(cmd *cobra.Command, opts rootOptions) error {
	if err := opts.validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	return withDeps(ctx, func(d *Deps) error {
		if opts.insert {
			if err := runInsert(ctx, out, d.IngestHandler, opts.patchVersion); err != nil {
				return err
			}
		}

		return chatLoop(ctx, d.QueryHandler, cmd.InOrStdin(), out, handlers.QueryOptions{K: services.DefaultK})
	})
}

type patchInserter interface {
	Handle(ctx context.Context, version string, progressFn func(handlers.IngestProgress)) (*handlers.IngestResult, error)
}

func runInsert(ctx context.Context, out io.Writer, h patchInserter, patchVersion string) error {
	fmt.Fprintf(out, "Inserting patch %s...\n", patchVersion)

	result, err := h.Handle(ctx, patchVersion, func(p handlers.IngestProgress) {
		fmt.Fprintf(out, "  %-14s %d documents\n", p.Category+":", p.Saved)
	})
	if err != nil {
		return fmt.Errorf("inserting patch %s: %w", patchVersion, err)
	}

	fmt.Fprintf(out, "Inserted %d documents for patch %s", result.Counts.Total(), result.Patch.PatchName)
	if result.Dropped > 0 {
		fmt.Fprintf(out, " (%d empty records dropped)", result.Dropped)
	}
	fmt.Fprintln(out)

	if result.Stored != nil {
		fmt.Fprintf(out, "Namespace now holds %d documents\n", *result.Stored)
	}

	return nil
}
