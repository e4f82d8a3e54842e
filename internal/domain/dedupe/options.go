// Package dedupe defines the interface for idempotency tracking.
package dedupe

import "time"

// Option applies a configuration option to the in-memory deduper.
type Option func(*inMemoryDeduper)

// WithTTL sets how long a recorded key is remembered.
// A ttl <= 0 keeps keys until they are unrecorded.
func WithTTL(ttl time.Duration) Option {
	return func(d *inMemoryDeduper) {
		d.ttl = ttl
	}
}

// WithCleanupInterval sets how often expired keys are purged.
func WithCleanupInterval(interval time.Duration) Option {
	return func(d *inMemoryDeduper) {
		if interval > 0 {
			d.cleanupInterval = interval
		}
	}
}
