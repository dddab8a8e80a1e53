package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/opsdigest/opsdigest/internal/cache"
)

// postgresStore implements the cache.Store interface for PostgreSQL.
// A shared Postgres cache lets several report hosts reuse each other's
// upstream responses.
type postgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL cache store
func NewPostgresStore(url string) (cache.Store, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	s := &postgresStore{db: db}
	if err := s.Migrate(context.Background()); err != nil {
		return nil, err
	}

	return s, nil
}

// Migrate creates the cache schema
func (s *postgresStore) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS responses (
		key TEXT PRIMARY KEY,
		status INTEGER NOT NULL,
		header TEXT NOT NULL,
		body BYTEA NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_responses_created_at ON responses(created_at);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create cache schema: %w", err)
	}
	return nil
}

// Get returns the cached entry for a key, or nil when absent
func (s *postgresStore) Get(ctx context.Context, key string) (*cache.Entry, error) {
	var (
		entry     cache.Entry
		headerRaw string
		createdAt time.Time
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT key, status, header, body, created_at FROM responses WHERE key = $1
	`, key).Scan(&entry.Key, &entry.StatusCode, &headerRaw, &entry.Body, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}
	if err := json.Unmarshal([]byte(headerRaw), &entry.Header); err != nil {
		return nil, fmt.Errorf("failed to decode cached header: %w", err)
	}
	entry.CreatedAt = createdAt
	return &entry, nil
}

// Put stores an entry, replacing any previous value for the key
func (s *postgresStore) Put(ctx context.Context, entry *cache.Entry) error {
	headerRaw, err := json.Marshal(entry.Header)
	if err != nil {
		return fmt.Errorf("failed to encode header: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO responses (key, status, header, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (key) DO UPDATE SET
			status = EXCLUDED.status,
			header = EXCLUDED.header,
			body = EXCLUDED.body,
			created_at = EXCLUDED.created_at
	`, entry.Key, entry.StatusCode, string(headerRaw), entry.Body, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *postgresStore) Close() error {
	return s.db.Close()
}
