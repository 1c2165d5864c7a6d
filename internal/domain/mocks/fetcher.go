package mocks

import (
	"context"

	"github.com/ersonp/patchrag/internal/domain/entities"
)

// PatchFetcher is a mock implementation of ports.PatchFetcher.
type PatchFetcher struct {
	Notes     *entities.PatchNotes
	Heroes    *entities.HeroList
	Abilities *entities.AbilityList
	Items     *entities.AbilityList

	NotesErr     error
	HeroesErr    error
	AbilitiesErr error
	ItemsErr     error

	// Call tracking
	RequestedVersions []string
}

// PatchNotes returns the configured notes or error.
func (m *PatchFetcher) PatchNotes(ctx context.Context, version string) (*entities.PatchNotes, error) {
	m.RequestedVersions = append(m.RequestedVersions, version)
	if m.NotesErr != nil {
		return nil, m.NotesErr
	}
	return m.Notes, nil
}

// HeroList returns the configured hero list or error.
func (m *PatchFetcher) HeroList(ctx context.Context) (*entities.HeroList, error) {
	if m.HeroesErr != nil {
		return nil, m.HeroesErr
	}
	return m.Heroes, nil
}

// AbilityList returns the configured ability list or error.
func (m *PatchFetcher) AbilityList(ctx context.Context) (*entities.AbilityList, error) {
	if m.AbilitiesErr != nil {
		return nil, m.AbilitiesErr
	}
	return m.Abilities, nil
}

// ItemList returns the configured item list or error.
func (m *PatchFetcher) ItemList(ctx context.Context) (*entities.AbilityList, error) {
	if m.ItemsErr != nil {
		return nil, m.ItemsErr
	}
	return m.Items, nil
}
