package smoke

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/fantaleague/pkg/logger"
)

// Run defaults.
const (
	DefaultBatchSize = 100
	DefaultPollEvery = 250 * time.Millisecond
	batchStatusDone  = "completed"
)

// Run exercises every read endpoint of one league, ranks generated bids and
// optionally runs youngster progression, verifying each response.
func Run(ctx context.Context, cfg Config) (Stats, error) {
	stats := Stats{StartTime: time.Now()}
	log := logger.Get().Named("smoke")
	c := newClient(cfg.BaseURL, cfg.HostSubject, cfg.Timeout)
	league := "/api/v1/leagues/" + url.PathEscape(cfg.LeagueID)

	log.Info(ctx, "starting smoke run",
		logger.String("baseURL", cfg.BaseURL),
		logger.String("league", cfg.LeagueID),
		logger.Int("bids", cfg.NumBids),
		logger.Int("workers", cfg.Workers),
		logger.Bool("progression", cfg.Progression))

	if err := c.getJSON(ctx, "/healthz", http.StatusOK, nil); err != nil {
		return stats, fmt.Errorf("health check: %w", err)
	}

	var ci competitiveIndex
	if err := c.getJSON(ctx, league+"/competitive-index", http.StatusOK, &ci); err != nil {
		return stats, fmt.Errorf("competitive index: %w", err)
	}
	if err := verifyCompetitiveIndex(ci); err != nil {
		return stats, err
	}
	teamIDs := make([]string, len(ci.Teams))
	for i, t := range ci.Teams {
		teamIDs[i] = t.TeamID
	}

	var hof hallOfFame
	if err := c.getJSON(ctx, league+"/hall-of-fame", http.StatusOK, &hof); err != nil {
		return stats, fmt.Errorf("hall of fame: %w", err)
	}
	if err := verifyHallOfFame(hof.Entries); err != nil {
		return stats, err
	}
	stats.HallOfFameEntries = len(hof.Entries)

	n, err := fetchFinances(ctx, c, league, teamIDs, cfg.Workers)
	stats.FinanceReports = n
	if err != nil {
		return stats, err
	}

	if err := rankBids(ctx, c, league, teamIDs, cfg, &stats); err != nil {
		return stats, err
	}

	if cfg.Progression {
		if err := runProgression(ctx, c, league, cfg.PollEvery, &stats); err != nil {
			return stats, err
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	log.Info(ctx, "smoke run completed",
		logger.Int("bidsGenerated", stats.BidsGenerated),
		logger.Int("rankRequests", stats.RankRequests),
		logger.Int("rankFailures", stats.RankFailures),
		logger.Int("financeReports", stats.FinanceReports),
		logger.Int("hallOfFameEntries", stats.HallOfFameEntries),
		logger.String("progressionBatch", stats.ProgressionBatch),
		logger.Int("progressed", stats.Progressed),
		logger.Int("duplicates", stats.Duplicates),
		logger.Duration("duration", stats.Duration))
	return stats, nil
}

func fetchFinances(ctx context.Context, c *client, league string, teamIDs []string, workers int) (int, error) {
	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for _, id := range teamIDs {
		g.Go(func() error {
			var f finances
			if err := c.getJSON(gctx, league+"/teams/"+url.PathEscape(id)+"/finances", http.StatusOK, &f); err != nil {
				return fmt.Errorf("finances for %s: %w", id, err)
			}
			if err := verifyFinances(f); err != nil {
				return err
			}
			done.Add(1)
			return nil
		})
	}
	err := g.Wait()
	return int(done.Load()), err
}

// rankBids posts generated bids in chunks. Transport failures are counted;
// an inconsistent ranking aborts the run.
func rankBids(ctx context.Context, c *client, league string, teamIDs []string, cfg Config, stats *Stats) error {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	bids := GenerateBids(cfg.NumBids, teamIDs, seed, time.Now())
	stats.BidsGenerated = len(bids)
	size := cfg.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}

	var requests, failures atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))
	for _, part := range chunk(bids, size) {
		g.Go(func() error {
			requests.Add(1)
			var resp rankResponse
			if err := c.postJSON(gctx, league+"/free-agents/bids/rank", map[string]any{"bids": part}, http.StatusOK, &resp); err != nil {
				failures.Add(1)
				logger.Get().Warn(gctx, "rank request failed", logger.Error(err))
				return nil
			}
			return verifyRanked(part, resp.Bids)
		})
	}
	err := g.Wait()
	stats.RankRequests = int(requests.Load())
	stats.RankFailures = int(failures.Load())
	return err
}

func runProgression(ctx context.Context, c *client, league string, every time.Duration, stats *Stats) error {
	var started startResponse
	if err := c.postJSON(ctx, league+"/progression", struct{}{}, http.StatusAccepted, &started); err != nil {
		return fmt.Errorf("start progression: %w", err)
	}
	stats.ProgressionBatch = started.BatchID
	if every <= 0 {
		every = DefaultPollEvery
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		var b batch
		if err := c.getJSON(ctx, started.StatusURL, http.StatusOK, &b); err != nil {
			return fmt.Errorf("progression status: %w", err)
		}
		if b.Status == batchStatusDone {
			stats.Progressed = b.Completed
			stats.Duplicates = b.Duplicates
			return verifyBatch(b)
		}
		select {
		case <-ctx.Done():
			return errors.Join(errors.New("progression did not finish"), ctx.Err())
		case <-ticker.C:
		}
	}
}
