package entities

import "time"

// CategoryCounts holds per-category document counts for one ingestion.
type CategoryCounts struct {
	General      int `json:"general"`
	Items        int `json:"items"`
	NeutralItems int `json:"neutral_items"`
	Heroes       int `json:"heroes"`
}

// Total returns the sum over all categories.
func (c CategoryCounts) Total() int {
	return c.General + c.Items + c.NeutralItems + c.Heroes
}

// IngestionRun records one completed insert of a patch into the index.
type IngestionRun struct {
	ID        string         `json:"id"`
	Patch     PatchIdentity  `json:"patch"`
	Index     string         `json:"index"`
	Namespace string         `json:"namespace"`
	Counts    CategoryCounts `json:"counts"`
	Dropped   int            `json:"dropped"`
	CreatedAt time.Time      `json:"created_at"`
}
