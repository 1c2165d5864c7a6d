// Package sqlite provides a SQLite implementation of the ingestion ledger.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/ersonp/patchrag/internal/domain/entities"
	"github.com/ersonp/patchrag/internal/domain/ports"
	"github.com/ersonp/patchrag/internal/infrastructure/config"
)

// memoryPath opens a private in-memory database.
const memoryPath = ":memory:"

// timeNow returns the current time (can be mocked in tests).
var timeNow = time.Now

// Repository implements ports.IngestionHistory using SQLite.
type Repository struct {
	db   *sql.DB
	path string
}

// Ensure Repository implements ports.IngestionHistory.
var _ ports.IngestionHistory = (*Repository)(nil)

// NewRepository creates a new SQLite repository, creating the parent
// directory of the database file when needed.
func NewRepository(cfg config.HistoryConfig) (*Repository, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}

	if cfg.Path != memoryPath {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// An in-memory database exists per connection.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent read/write performance
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Set busy timeout to avoid "database is locked" errors
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	return &Repository{
		db:   db,
		path: cfg.Path,
	}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Path returns the database file path.
func (r *Repository) Path() string {
	return r.path
}

// EnsureSchema creates the database schema if it doesn't exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	schema := `
	-- One row per completed patch insert
	CREATE TABLE IF NOT EXISTS ingestions (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		patch_number TEXT NOT NULL,
		patch_name TEXT NOT NULL,
		index_name TEXT NOT NULL,
		namespace TEXT NOT NULL,
		general INTEGER NOT NULL DEFAULT 0,
		items INTEGER NOT NULL DEFAULT 0,
		neutral_items INTEGER NOT NULL DEFAULT 0,
		heroes INTEGER NOT NULL DEFAULT 0,
		dropped INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_ingestions_patch ON ingestions(patch_number);
	`

	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// SaveIngestion records a run, filling in its id and timestamp when unset.
func (r *Repository) SaveIngestion(ctx context.Context, run *entities.IngestionRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = timeNow().UTC()
	}

	query := `
		INSERT INTO ingestions (id, patch_number, patch_name, index_name, namespace,
			general, items, neutral_items, heroes, dropped, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.Patch.PatchNumber,
		run.Patch.PatchName,
		run.Index,
		run.Namespace,
		run.Counts.General,
		run.Counts.Items,
		run.Counts.NeutralItems,
		run.Counts.Heroes,
		run.Dropped,
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving ingestion: %w", err)
	}
	return nil
}

// ListIngestions returns up to limit runs, newest first. A non-positive
// limit returns every run.
func (r *Repository) ListIngestions(ctx context.Context, limit int) ([]entities.IngestionRun, error) {
	if limit <= 0 {
		limit = -1
	}

	query := `
		SELECT id, patch_number, patch_name, index_name, namespace,
			general, items, neutral_items, heroes, dropped, created_at
		FROM ingestions
		ORDER BY seq DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying ingestions: %w", err)
	}
	defer rows.Close()

	var runs []entities.IngestionRun
	if limit > 0 {
		runs = make([]entities.IngestionRun, 0, limit)
	}

	for rows.Next() {
		var run entities.IngestionRun
		if err := rows.Scan(
			&run.ID,
			&run.Patch.PatchNumber,
			&run.Patch.PatchName,
			&run.Index,
			&run.Namespace,
			&run.Counts.General,
			&run.Counts.Items,
			&run.Counts.NeutralItems,
			&run.Counts.Heroes,
			&run.Dropped,
			&run.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning ingestion: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
