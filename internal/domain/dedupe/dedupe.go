// Package dedupe defines the interface for idempotency tracking.
package dedupe

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Default deduper configuration constants.
const (
	defaultTTL             = 7 * 24 * time.Hour
	defaultCleanupInterval = time.Hour
)

// Deduper records seen job keys to ensure at-most-once processing.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord removes a key so the job can be retried. Used when a job was
	// marked as seen but could not be queued or failed to persist.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// inMemoryDeduper implements Deduper on top of go-cache, whose Add is an
// atomic insert-if-absent.
type inMemoryDeduper struct {
	seen            *gocache.Cache
	ttl             time.Duration
	cleanupInterval time.Duration
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		ttl:             defaultTTL,
		cleanupInterval: defaultCleanupInterval,
	}
	for _, opt := range opts {
		opt(d)
	}

	expiration := d.ttl
	if expiration <= 0 {
		expiration = gocache.NoExpiration
	}
	d.seen = gocache.New(expiration, d.cleanupInterval)
	return d
}

// SeenAndRecord atomically checks if key was seen and records it if not.
func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	return d.seen.Add(key, struct{}{}, gocache.DefaultExpiration) != nil
}

// Unrecord removes a key from the seen set.
func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.seen.Delete(key)
}

// Size returns the number of remembered keys, including expired ones not yet purged.
func (d *inMemoryDeduper) Size() int64 {
	return int64(d.seen.ItemCount())
}
