package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // postgres driver

	"github.com/okian/fantaleague/internal/domain/model"
	"github.com/okian/fantaleague/pkg/metrics"
)

// PostgresStore reads league rows from PostgreSQL. Writes go through
// stored procedures so rating caps and audit rows stay in the database.
type PostgresStore struct {
	db *sql.DB

	maxOpenConns    int
	maxIdleConns    int
	connMaxLifetime time.Duration
	pingTimeout     time.Duration
}

// NewPostgresStore opens a pooled connection and verifies it with a ping.
func NewPostgresStore(ctx context.Context, dsn string, opts ...PostgresOption) (*PostgresStore, error) {
	s := &PostgresStore{
		maxOpenConns:    25,
		maxIdleConns:    5,
		connMaxLifetime: 5 * time.Minute,
		pingTimeout:     5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(s.maxOpenConns)
	db.SetMaxIdleConns(s.maxIdleConns)
	db.SetConnMaxLifetime(s.connMaxLifetime)
	s.db = db

	pingCtx, cancel := context.WithTimeout(ctx, s.pingTimeout)
	defer cancel()
	if err := s.Ping(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// observe records latency and failures for one store call.
func observe(op string, start time.Time, err error) {
	metrics.RecordStoreQueryLatency(op, float64(time.Since(start).Microseconds())/1000)
	if err != nil && !errors.Is(err, ErrNotFound) {
		metrics.RecordStoreError(op)
	}
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, err)
}

// League implements Store.
func (s *PostgresStore) League(ctx context.Context, leagueID string) (l model.League, err error) {
	defer func(start time.Time) { observe("league", start, err) }(time.Now())

	err = s.db.QueryRowContext(ctx, `
		SELECT id, name, host_user_id, season
		FROM leagues
		WHERE id = $1`, leagueID).Scan(&l.ID, &l.Name, &l.HostUserID, &l.Season)
	if err != nil {
		return model.League{}, notFound(err, "league "+leagueID)
	}
	return l, nil
}

// Leagues implements Store.
func (s *PostgresStore) Leagues(ctx context.Context) (out []model.League, err error) {
	defer func(start time.Time) { observe("leagues", start, err) }(time.Now())

	rows, err := s.db.QueryContext(ctx, `SELECT id, name, host_user_id, season FROM leagues ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query leagues: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l model.League
		if err = rows.Scan(&l.ID, &l.Name, &l.HostUserID, &l.Season); err != nil {
			return nil, fmt.Errorf("scan league: %w", err)
		}
		out = append(out, l)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leagues: %w", err)
	}
	return out, nil
}

// UserIDForSubject implements Store.
func (s *PostgresStore) UserIDForSubject(ctx context.Context, subject string) (id string, err error) {
	defer func(start time.Time) { observe("user_for_subject", start, err) }(time.Now())

	err = s.db.QueryRowContext(ctx, `SELECT id FROM users WHERE auth_subject = $1`, subject).Scan(&id)
	if err != nil {
		return "", notFound(err, "user")
	}
	return id, nil
}

const teamColumns = `id, league_id, name, acronym, merch_pct, stadium_capacity,
	COALESCE(visitor_focus, ''), COALESCE(seasonal_performance, ''), COALESCE(comp_index, 0)`

func scanTeam(sc interface{ Scan(...any) error }) (model.Team, error) {
	var t model.Team
	err := sc.Scan(&t.ID, &t.LeagueID, &t.Name, &t.Acronym, &t.MerchPct, &t.StadiumCapacity,
		&t.VisitorFocus, &t.SeasonalPerformance, &t.CompIndex)
	return t, err
}

// Teams implements Store.
func (s *PostgresStore) Teams(ctx context.Context, leagueID string) (out []model.Team, err error) {
	defer func(start time.Time) { observe("teams", start, err) }(time.Now())

	rows, err := s.db.QueryContext(ctx, `SELECT `+teamColumns+` FROM teams WHERE league_id = $1 ORDER BY name`, leagueID)
	if err != nil {
		return nil, fmt.Errorf("query teams: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		t, scanErr := scanTeam(rows)
		if scanErr != nil {
			err = fmt.Errorf("scan team: %w", scanErr)
			return nil, err
		}
		out = append(out, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate teams: %w", err)
	}
	return out, nil
}

// Team implements Store.
func (s *PostgresStore) Team(ctx context.Context, leagueID, teamID string) (t model.Team, err error) {
	defer func(start time.Time) { observe("team", start, err) }(time.Now())

	t, err = scanTeam(s.db.QueryRowContext(ctx,
		`SELECT `+teamColumns+` FROM teams WHERE league_id = $1 AND id = $2`, leagueID, teamID))
	if err != nil {
		return model.Team{}, notFound(err, "team "+teamID)
	}
	return t, nil
}

// Squad implements Store.
func (s *PostgresStore) Squad(ctx context.Context, leagueID, teamID string) (out []model.Player, err error) {
	defer func(start time.Time) { observe("squad", start, err) }(time.Now())

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, league_id, team_id, name, rating, positions, international_reputation, is_youngster
		FROM players
		WHERE league_id = $1 AND team_id = $2
		ORDER BY rating DESC, name ASC`, leagueID, teamID)
	if err != nil {
		return nil, fmt.Errorf("query squad: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p model.Player
		if err = rows.Scan(&p.ID, &p.LeagueID, &p.TeamID, &p.Name, &p.Rating, &p.Positions,
			&p.InternationalReputation, &p.Youngster); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		out = append(out, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate squad: %w", err)
	}
	return out, nil
}

// HallOfFame implements Store.
func (s *PostgresStore) HallOfFame(ctx context.Context, leagueID string) (out []model.HallOfFameRecord, err error) {
	defer func(start time.Time) { observe("hall_of_fame", start, err) }(time.Now())

	rows, err := s.db.QueryContext(ctx, `
		SELECT h.team_id, h.season, h.position, h.points
		FROM hall_of_fame h
		JOIN teams t ON t.id = h.team_id
		WHERE t.league_id = $1
		ORDER BY h.season ASC`, leagueID)
	if err != nil {
		return nil, fmt.Errorf("query hall of fame: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r model.HallOfFameRecord
		if err = rows.Scan(&r.TeamID, &r.Season, &r.Position, &r.Points); err != nil {
			return nil, fmt.Errorf("scan hall of fame: %w", err)
		}
		out = append(out, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hall of fame: %w", err)
	}
	return out, nil
}

// Youngsters implements Store.
func (s *PostgresStore) Youngsters(ctx context.Context, leagueID string, season int) (out []model.YoungsterStat, err error) {
	defer func(start time.Time) { observe("youngsters", start, err) }(time.Now())

	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.league_id, COALESCE(p.team_id, ''), p.name, p.rating, p.positions,
		       p.international_reputation, ys.games_played, ys.adjusted_average
		FROM players p
		JOIN youngster_stats ys ON ys.player_id = p.id AND ys.season = $2
		WHERE p.league_id = $1 AND p.is_youngster
		ORDER BY p.id`, leagueID, season)
	if err != nil {
		return nil, fmt.Errorf("query youngsters: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ys model.YoungsterStat
		p := &ys.Player
		if err = rows.Scan(&p.ID, &p.LeagueID, &p.TeamID, &p.Name, &p.Rating, &p.Positions,
			&p.InternationalReputation, &ys.GamesPlayed, &ys.AdjustedAverage); err != nil {
			return nil, fmt.Errorf("scan youngster: %w", err)
		}
		p.Youngster = true
		out = append(out, ys)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate youngsters: %w", err)
	}
	return out, nil
}

// ApplyYoungsterUpgrade calls apply_youngster_upgrade, which clamps the
// rating and writes the audit row in one transaction.
func (s *PostgresStore) ApplyYoungsterUpgrade(ctx context.Context, leagueID, playerID string, delta int) (rating int, err error) {
	defer func(start time.Time) { observe("apply_youngster_upgrade", start, err) }(time.Now())

	err = s.db.QueryRowContext(ctx, `SELECT apply_youngster_upgrade($1, $2, $3)`, leagueID, playerID, delta).Scan(&rating)
	if err != nil {
		return 0, notFound(err, "player "+playerID)
	}
	return rating, nil
}

// Ping implements Store.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
