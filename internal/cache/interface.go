package cache

import (
	"context"
	"time"
)

// Entry is a cached HTTP response keyed by the exact request signature.
type Entry struct {
	Key        string
	StatusCode int
	Header     map[string][]string
	Body       []byte
	CreatedAt  time.Time
}

// Store is the abstract interface for the response cache backend.
// The cache is read-through and additive-only: entries are written once
// per key per TTL period and never invalidated by the report core.
type Store interface {
	// Get returns the entry for a key, or nil when absent.
	Get(ctx context.Context, key string) (*Entry, error)

	// Put stores an entry. Writing the same key twice is idempotent.
	Put(ctx context.Context, entry *Entry) error

	// Migrate creates the cache schema
	Migrate(ctx context.Context) error

	// Close releases the underlying connection
	Close() error
}
