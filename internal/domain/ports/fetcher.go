// Package ports defines interfaces for external service communication.
package ports

import (
	"context"
	"errors"

	"github.com/ersonp/patchrag/internal/domain/entities"
)

// ErrFetch marks transport, status and decoding failures of the patch feed.
var ErrFetch = errors.New("fetch failed")

// PatchFetcher retrieves raw patch notes and the reference datasets used to
// resolve ids to display names.
type PatchFetcher interface {
	// PatchNotes fetches the notes for one patch version.
	PatchNotes(ctx context.Context, version string) (*entities.PatchNotes, error)

	// HeroList fetches the hero id to name reference data.
	HeroList(ctx context.Context) (*entities.HeroList, error)

	// AbilityList fetches the ability id to name reference data.
	AbilityList(ctx context.Context) (*entities.AbilityList, error)

	// ItemList fetches the item id to name reference data.
	ItemList(ctx context.Context) (*entities.AbilityList, error)
}
