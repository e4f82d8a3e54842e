// Package repository provides access to league data held by the database.
package repository

import (
	"context"

	"github.com/okian/fantaleague/internal/domain/model"
)

// Store reads league rows and invokes the stored procedures that own
// writes. Lookups of unknown rows return ErrNotFound.
type Store interface {
	League(ctx context.Context, leagueID string) (model.League, error)
	Leagues(ctx context.Context) ([]model.League, error)

	// UserIDForSubject maps an identity-provider subject to a user id.
	UserIDForSubject(ctx context.Context, subject string) (string, error)

	Teams(ctx context.Context, leagueID string) ([]model.Team, error)
	Team(ctx context.Context, leagueID, teamID string) (model.Team, error)

	// Squad returns a team's players ordered by rating desc.
	Squad(ctx context.Context, leagueID, teamID string) ([]model.Player, error)

	HallOfFame(ctx context.Context, leagueID string) ([]model.HallOfFameRecord, error)

	// Youngsters returns youngster players with their stats for a season.
	Youngsters(ctx context.Context, leagueID string, season int) ([]model.YoungsterStat, error)

	// ApplyYoungsterUpgrade adds delta to the player's rating and returns
	// the rating the database settled on.
	ApplyYoungsterUpgrade(ctx context.Context, leagueID, playerID string, delta int) (int, error)

	Ping(ctx context.Context) error
	Close() error
}
