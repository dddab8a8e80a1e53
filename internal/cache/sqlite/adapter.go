package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/opsdigest/opsdigest/internal/cache"
)

// sqliteStore implements the cache.Store interface for SQLite
type sqliteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite cache store
func NewSQLiteStore(dbPath string) (cache.Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	s := &sqliteStore{db: db}
	if err := s.Migrate(context.Background()); err != nil {
		return nil, err
	}

	return s, nil
}

// Migrate creates the cache schema
func (s *sqliteStore) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS responses (
		key TEXT PRIMARY KEY,
		status INTEGER NOT NULL,
		header TEXT NOT NULL,
		body BLOB NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_responses_created_at ON responses(created_at);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create cache schema: %w", err)
	}
	return nil
}

// Get returns the cached entry for a key, or nil when absent
func (s *sqliteStore) Get(ctx context.Context, key string) (*cache.Entry, error) {
	var (
		entry     cache.Entry
		headerRaw string
		createdAt time.Time
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT key, status, header, body, created_at FROM responses WHERE key = ?
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
func (s *sqliteStore) Put(ctx context.Context, entry *cache.Entry) error {
	headerRaw, err := json.Marshal(entry.Header)
	if err != nil {
		return fmt.Errorf("failed to encode header: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO responses (key, status, header, body, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, entry.Key, entry.StatusCode, string(headerRaw), entry.Body, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}
