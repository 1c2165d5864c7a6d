// Package snapshot stores datafeed payloads on disk and serves them back as
// a ports.PatchFetcher.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ersonp/patchrag/internal/domain/entities"
	"github.com/ersonp/patchrag/internal/domain/ports"
)

// File names inside a snapshot directory.
const (
	HeroListFile    = "herolist.json"
	AbilityListFile = "abilitylist.json"
	ItemListFile    = "itemlist.json"
)

// ErrInvalidVersion is returned for versions that cannot name a file.
var ErrInvalidVersion = errors.New("invalid patch version")

// PatchNotesFile returns the file name holding the notes for version.
func PatchNotesFile(version string) (string, error) {
	if version == "" || strings.ContainsAny(version, `/\`) || strings.Contains(version, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidVersion, version)
	}
	return "patchnotes_" + version + ".json", nil
}

// Fetcher reads payloads from a snapshot directory.
type Fetcher struct {
	dir string
}

// Ensure Fetcher implements ports.PatchFetcher.
var _ ports.PatchFetcher = (*Fetcher)(nil)

// NewFetcher creates a fetcher over dir.
func NewFetcher(dir string) *Fetcher {
	return &Fetcher{dir: dir}
}

// PatchNotes reads the notes for one patch version.
func (f *Fetcher) PatchNotes(ctx context.Context, version string) (*entities.PatchNotes, error) {
	name, err := PatchNotesFile(version)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrFetch, err)
	}
	var notes entities.PatchNotes
	if err := f.read(name, &notes); err != nil {
		return nil, err
	}
	return &notes, nil
}

// HeroList reads the hero reference data.
func (f *Fetcher) HeroList(ctx context.Context) (*entities.HeroList, error) {
	var list entities.HeroList
	if err := f.read(HeroListFile, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// AbilityList reads the ability reference data.
func (f *Fetcher) AbilityList(ctx context.Context) (*entities.AbilityList, error) {
	var list entities.AbilityList
	if err := f.read(AbilityListFile, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// ItemList reads the item reference data.
func (f *Fetcher) ItemList(ctx context.Context) (*entities.AbilityList, error) {
	var list entities.AbilityList
	if err := f.read(ItemListFile, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (f *Fetcher) read(name string, dst any) error {
	path := filepath.Join(f.dir, name)

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %v", ports.ErrFetch, path, err)
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(dst); err != nil {
		return fmt.Errorf("%w: parsing %s: %v", ports.ErrFetch, path, err)
	}
	return nil
}

// Write fetches one patch and its reference data from src and saves them
// under dir. It returns the paths written.
func Write(ctx context.Context, dir, version string, src ports.PatchFetcher) ([]string, error) {
	notesFile, err := PatchNotesFile(version)
	if err != nil {
		return nil, err
	}

	heroes, err := src.HeroList(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching hero list: %w", err)
	}
	abilities, err := src.AbilityList(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching ability list: %w", err)
	}
	items, err := src.ItemList(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching item list: %w", err)
	}
	notes, err := src.PatchNotes(ctx, version)
	if err != nil {
		return nil, fmt.Errorf("fetching patch notes %s: %w", version, err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating snapshot directory: %w", err)
	}

	payloads := []struct {
		name string
		v    any
	}{
		{HeroListFile, heroes},
		{AbilityListFile, abilities},
		{ItemListFile, items},
		{notesFile, notes},
	}

	written := make([]string, 0, len(payloads))
	for _, p := range payloads {
		path := filepath.Join(dir, p.name)
		if err := writeJSON(path, p.v); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
