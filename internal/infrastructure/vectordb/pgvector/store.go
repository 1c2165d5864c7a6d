// Package pgvector provides a DocumentStore implementation on Postgres with
// the pgvector extension.
package pgvector

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"github.com/ersonp/patchrag/internal/domain/entities"
	"github.com/ersonp/patchrag/internal/domain/ports"
	"github.com/ersonp/patchrag/internal/infrastructure/config"
	"github.com/ersonp/patchrag/internal/infrastructure/vectordb"
)

// pgUndefinedTable is the SQLSTATE for a missing relation.
const pgUndefinedTable = "42P01"

var reNonIdent = regexp.MustCompile(`[^a-z0-9_]+`)

// Store implements the DocumentStore and IndexManager interfaces using one
// table per index. Rows are scoped by a namespace column.
type Store struct {
	pool      *pgxpool.Pool
	table     string
	namespace string
	logger    *zap.Logger
}

// Ensure Store implements the store ports.
var (
	_ ports.DocumentStore = (*Store)(nil)
	_ ports.IndexManager  = (*Store)(nil)
)

// NewStore connects to Postgres and verifies the connection.
func NewStore(ctx context.Context, cfg config.PGVectorConfig, store config.VectorStoreConfig, logger *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: pinging postgres: %v", ports.ErrStoreUnavailable, err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Store{
		pool:      pool,
		table:     TableName(store.Index),
		namespace: store.Namespace,
		logger:    logger,
	}, nil
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// TableName turns an index name into a safe table identifier.
func TableName(index string) string {
	name := reNonIdent.ReplaceAllString(strings.ToLower(index), "_")
	name = strings.Trim(name, "_")
	if name == "" {
		name = "documents"
	}
	return pgx.Identifier{name}.Sanitize()
}

// EnsureIndex creates the extension, table and indexes if missing. Postgres
// DDL is synchronous, so the table is ready once this returns.
func (s *Store) EnsureIndex(ctx context.Context, dimensions uint64) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id uuid PRIMARY KEY,
			namespace text NOT NULL,
			page_content text NOT NULL,
			metadata jsonb NOT NULL,
			embedding vector(%d) NOT NULL
		)`, s.table, dimensions),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (namespace)`, s.indexName("namespace_idx"), s.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s USING gin (metadata jsonb_path_ops)`, s.indexName("metadata_idx"), s.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s USING hnsw (embedding vector_cosine_ops)`, s.indexName("embedding_idx"), s.table),
	}

	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return mapError("ensuring index", err)
		}
	}

	s.logger.Debug("pgvector table ready", zap.String("table", s.table), zap.Uint64("dimensions", dimensions))
	return nil
}

// indexName derives a sanitized index identifier from the table name.
func (s *Store) indexName(suffix string) string {
	return pgx.Identifier{strings.Trim(s.table, `"`) + "_" + suffix}.Sanitize()
}

// DeleteIndex drops the table.
func (s *Store) DeleteIndex(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, fmt.Sprintf(`DROP TABLE %s`, s.table)); err != nil {
		return mapError("dropping table", err)
	}
	return nil
}

// SaveBatch upserts documents in one transaction.
func (s *Store) SaveBatch(ctx context.Context, docs []entities.EmbeddedDocument) error {
	if len(docs) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return mapError("beginning transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := fmt.Sprintf(`
		INSERT INTO %s (id, namespace, page_content, metadata, embedding)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			page_content = EXCLUDED.page_content,
			metadata = EXCLUDED.metadata,
			embedding = EXCLUDED.embedding`, s.table)

	batch := &pgx.Batch{}
	for _, doc := range docs {
		batch.Queue(query,
			vectordb.PointID(s.namespace, doc.PageContent),
			s.namespace,
			doc.PageContent,
			doc.Metadata.Fields(),
			pgvector.NewVector(doc.Embedding),
		)
	}

	br := tx.SendBatch(ctx, batch)
	for i := range docs {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return mapError(fmt.Sprintf("inserting document %d", i), err)
		}
	}

	if err := br.Close(); err != nil {
		return mapError("closing batch", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return mapError("committing transaction", err)
	}

	return nil
}

// Search returns the nearest documents by cosine distance whose metadata
// contains every filter condition.
func (s *Store) Search(ctx context.Context, embedding []float32, filter entities.Filter, limit int) ([]entities.RetrievedDocument, error) {
	rows, err := s.pool.Query(ctx, s.searchQuery(),
		pgvector.NewVector(embedding),
		s.namespace,
		filter.Conditions(),
		limit,
	)
	if err != nil {
		return nil, mapError("searching documents", err)
	}
	defer rows.Close()

	var docs []entities.RetrievedDocument
	for rows.Next() {
		var (
			content string
			fields  map[string]string
			score   float64
		)
		if err := rows.Scan(&content, &fields, &score); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, entities.RetrievedDocument{
			Document: entities.Document{
				PageContent: content,
				Metadata:    entities.MetadataFromFields(fields),
			},
			Score: float32(score),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("reading search results", err)
	}

	return docs, nil
}

func (s *Store) searchQuery() string {
	return fmt.Sprintf(`
		SELECT page_content, metadata, 1 - (embedding <=> $1) AS score
		FROM %s
		WHERE namespace = $2 AND metadata @> $3
		ORDER BY embedding <=> $1
		LIMIT $4`, s.table)
}

// Count returns the number of documents in the namespace.
func (s *Store) Count(ctx context.Context) (uint64, error) {
	var count int64
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE namespace = $1`, s.table)
	if err := s.pool.QueryRow(ctx, query, s.namespace).Scan(&count); err != nil {
		return 0, mapError("counting documents", err)
	}
	return uint64(count), nil
}

// mapError translates Postgres errors into the store sentinel errors.
func mapError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable {
		return fmt.Errorf("%w: %s: %v", ports.ErrIndexNotFound, op, err)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || pgconn.Timeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %v", ports.ErrStoreUnavailable, op, err)
	}

	return fmt.Errorf("%s: %w", op, err)
}
