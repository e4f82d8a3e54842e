package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/fantaleague/internal/adapters/cache"
	"github.com/okian/fantaleague/internal/domain/bidding"
	"github.com/okian/fantaleague/internal/domain/finance"
	"github.com/okian/fantaleague/internal/domain/model"
	"github.com/okian/fantaleague/internal/domain/standings"
	"github.com/okian/fantaleague/internal/domain/types"
	"github.com/okian/fantaleague/pkg/logger"
	"github.com/okian/fantaleague/pkg/metrics"
)

// FullSeason asks TeamFinances to use the configured season length.
const FullSeason = -1

const refreshConcurrency = 4

// TeamFinances is a team's season money summary.
type TeamFinances struct {
	TeamID         string  `json:"team_id"`
	TeamName       string  `json:"name"`
	GamesPlayed    int     `json:"games_played"`
	SquadSize      int     `json:"squad_size"`
	WageBill       int64   `json:"wage_bill"`
	MerchRevenue   int64   `json:"merch_revenue"`
	Attendance     int     `json:"attendance"`
	StadiumRevenue int64   `json:"stadium_revenue"`
	Net            int64   `json:"net"`
	MerchPct       float64 `json:"merch_pct"`
}

// leagueRows loads the league, its teams and its Hall-of-Fame ledger
// concurrently. An unknown league fails with repository.ErrNotFound.
func (s *Service) leagueRows(ctx context.Context, leagueID string) ([]model.Team, []model.HallOfFameRecord, error) {
	var (
		teams   []model.Team
		records []model.HallOfFameRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.store.League(gctx, leagueID)
		return err
	})
	g.Go(func() (err error) {
		teams, err = s.store.Teams(gctx, leagueID)
		return err
	})
	g.Go(func() (err error) {
		records, err = s.store.HallOfFame(gctx, leagueID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return teams, records, nil
}

// cached serves key from the cache or computes and stores it.
func cached[T any](ctx context.Context, s *Service, report, key string, compute func() (T, error)) (T, error) {
	var out T
	found, err := s.cache.Get(ctx, key, &out)
	if err != nil {
		s.logger.Warn(ctx, "cache read failed", logger.String("key", key), logger.Error(err))
	}
	if found {
		metrics.RecordCacheHit(report)
		return out, nil
	}
	metrics.RecordCacheMiss(report)

	out, err = compute()
	if err != nil {
		return out, err
	}
	if err := s.cache.Set(ctx, key, out, s.cacheTTL); err != nil {
		s.logger.Warn(ctx, "cache write failed", logger.String("key", key), logger.Error(err))
	}
	return out, nil
}

// CompetitiveIndex returns the league's competitive-index report.
func (s *Service) CompetitiveIndex(ctx context.Context, leagueID string) (standings.Report, error) {
	return cached(ctx, s, "competitive_index", cache.CompetitiveIndexKey(leagueID), func() (standings.Report, error) {
		teams, records, err := s.leagueRows(ctx, leagueID)
		if err != nil {
			return standings.Report{}, err
		}
		return standings.BuildReport(teams, records), nil
	})
}

// HallOfFame returns the league's all-time Hall-of-Fame ranking.
func (s *Service) HallOfFame(ctx context.Context, leagueID string) ([]types.Entry, error) {
	return cached(ctx, s, "hall_of_fame", cache.HallOfFameKey(leagueID), func() ([]types.Entry, error) {
		teams, records, err := s.leagueRows(ctx, leagueID)
		if err != nil {
			return nil, err
		}
		return standings.HallOfFameRanking(teams, records), nil
	})
}

// TeamFinances computes wage bill, merchandise and stadium figures for a
// team after gamesPlayed games. FullSeason uses the configured length.
func (s *Service) TeamFinances(ctx context.Context, leagueID, teamID string, gamesPlayed int) (TeamFinances, error) {
	if gamesPlayed == FullSeason {
		gamesPlayed = s.seasonGames
	}
	if gamesPlayed < 0 {
		return TeamFinances{}, fmt.Errorf("%w: games_played must not be negative", ErrInvalidArgument)
	}

	var (
		team  model.Team
		squad []model.Player
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		team, err = s.store.Team(gctx, leagueID, teamID)
		return err
	})
	g.Go(func() (err error) {
		squad, err = s.store.Squad(gctx, leagueID, teamID)
		return err
	})
	if err := g.Wait(); err != nil {
		return TeamFinances{}, err
	}

	focus := finance.ParseVisitorFocus(team.VisitorFocus)
	attendance := finance.Attendance(team.StadiumCapacity, focus, finance.ParseSeasonalPerformance(team.SeasonalPerformance))

	f := TeamFinances{
		TeamID:         team.ID,
		TeamName:       team.Name,
		GamesPlayed:    gamesPlayed,
		SquadSize:      len(squad),
		WageBill:       finance.WageBill(squad),
		MerchRevenue:   finance.TeamMerchRevenue(squad, team.MerchPct),
		Attendance:     int(math.Round(attendance)),
		StadiumRevenue: finance.Revenue(attendance, focus, gamesPlayed),
		MerchPct:       team.MerchPct,
	}
	f.Net = f.MerchRevenue + f.StadiumRevenue - f.WageBill
	return f, nil
}

// RankBids values and ranks free-agent bids in a league. Bids without an
// id get one; bids from teams outside the league are rejected.
func (s *Service) RankBids(ctx context.Context, leagueID string, bids []model.Bid) ([]model.RankedBid, error) {
	if _, err := s.store.League(ctx, leagueID); err != nil {
		return nil, err
	}
	teams, err := s.store.Teams(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	known := make(map[string]struct{}, len(teams))
	for _, t := range teams {
		known[t.ID] = struct{}{}
	}

	for i := range bids {
		if _, ok := known[bids[i].TeamID]; !ok {
			return nil, fmt.Errorf("%w: team %q is not in league %s", ErrInvalidArgument, bids[i].TeamID, leagueID)
		}
		if bids[i].ID == "" {
			bids[i].ID = uuid.NewString()
		}
	}

	ranked := bidding.Rank(bids)
	metrics.RecordBidsRanked(len(ranked))
	return ranked, nil
}

// RefreshLeagues drops and recomputes the cached reports of every league.
// It returns how many leagues were refreshed.
func (s *Service) RefreshLeagues(ctx context.Context) (int, error) {
	start := time.Now()
	leagues, err := s.store.Leagues(ctx)
	if err != nil {
		return 0, fmt.Errorf("list leagues: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(refreshConcurrency)
	for _, l := range leagues {
		g.Go(func() error {
			s.invalidate(gctx, l.ID)
			if _, err := s.CompetitiveIndex(gctx, l.ID); err != nil {
				return fmt.Errorf("league %s: %w", l.ID, err)
			}
			if _, err := s.HallOfFame(gctx, l.ID); err != nil {
				return fmt.Errorf("league %s: %w", l.ID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	metrics.UpdateLeaguesRefreshed(len(leagues))
	s.logger.Debug(ctx, "leagues refreshed",
		logger.Int("leagues", len(leagues)),
		logger.Duration("took", time.Since(start)))
	return len(leagues), nil
}

// invalidate drops a league's cached reports.
func (s *Service) invalidate(ctx context.Context, leagueID string) {
	if err := s.cache.Delete(ctx, cache.LeagueKeys(leagueID)...); err != nil {
		s.logger.Warn(ctx, "cache invalidation failed", logger.String("league_id", leagueID), logger.Error(err))
	}
}
