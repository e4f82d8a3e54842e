// Package cache stores computed league reports between requests.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrEncode is returned when a value cannot be serialised.
var ErrEncode = errors.New("cache encode failed")

// Cache is a JSON value cache with per-entry TTL.
type Cache interface {
	// Get decodes the value at key into dst and reports whether it was found.
	Get(ctx context.Context, key string, dst any) (bool, error)
	// Set stores v under key. A ttl <= 0 uses the cache default.
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// CompetitiveIndexKey is the cache key of a league's competitive-index report.
func CompetitiveIndexKey(leagueID string) string {
	return "league:" + leagueID + ":competitive-index"
}

// HallOfFameKey is the cache key of a league's Hall-of-Fame ranking.
func HallOfFameKey(leagueID string) string {
	return "league:" + leagueID + ":hall-of-fame"
}

// LeagueKeys lists every report key for a league.
func LeagueKeys(leagueID string) []string {
	return []string{CompetitiveIndexKey(leagueID), HallOfFameKey(leagueID)}
}
