// Package service runs league data through the formula packages and
// drives the asynchronous progression pipeline.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/fantaleague/internal/adapters/cache"
	"github.com/okian/fantaleague/internal/adapters/mq/queue"
	"github.com/okian/fantaleague/internal/adapters/mq/worker"
	"github.com/okian/fantaleague/internal/adapters/repository"
	"github.com/okian/fantaleague/internal/domain/dedupe"
	"github.com/okian/fantaleague/pkg/logger"
	"github.com/okian/fantaleague/pkg/metrics"
)

// Service implements the dependencies of the HTTP API.
type Service struct {
	mu sync.RWMutex

	store   repository.Store
	cache   cache.Cache
	deduper dedupe.Deduper
	queue   *queue.InMemoryQueue
	pool    *worker.Pool
	batches *batchTracker

	workerCount int
	queueSize   int
	dedupeTTL   time.Duration
	cacheTTL    time.Duration
	seasonGames int

	started bool
	cancel  context.CancelFunc

	logger logger.Logger
}

// New constructs a Service over store.
func New(store repository.Store, opts ...Option) *Service {
	s := &Service{
		store:       store,
		workerCount: runtime.NumCPU() * 2,
		queueSize:   10_000,
		dedupeTTL:   7 * 24 * time.Hour,
		cacheTTL:    5 * time.Minute,
		seasonGames: 38,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.cache == nil {
		s.cache = cache.NewMemoryCache(s.cacheTTL)
	}
	s.batches = newBatchTracker(s)
	return s
}

// Start creates the queue and worker pool. Workers outlive ctx's
// deadline; they stop on Stop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithTTL(s.dedupeTTL))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s.store, s.batches)

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "league service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.Duration("dedupe_ttl", s.dedupeTTL))
	return nil
}

// Stop drains queued progression jobs and stops the workers.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping league service")

	err := s.pool.Shutdown(ctx)
	s.cancel()
	s.started = false
	if err != nil {
		return fmt.Errorf("stop workers: %w", err)
	}
	s.logger.Info(ctx, "league service stopped")
	return nil
}

// Ping checks the store.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// IsLeagueHost reports whether the identity-provider subject belongs to
// the league's host. Unknown subjects are not hosts; unknown leagues are
// an error.
func (s *Service) IsLeagueHost(ctx context.Context, leagueID, subject string) (bool, error) {
	if subject == "" {
		return false, nil
	}
	userID, err := s.store.UserIDForSubject(ctx, subject)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("resolve subject: %w", err)
	}
	league, err := s.store.League(ctx, leagueID)
	if err != nil {
		return false, err
	}
	return league.HostUserID == userID, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":      s.started,
		"worker_count": s.workerCount,
		"queue_size":   s.queueSize,
		"season_games": s.seasonGames,
	}
	active, total := s.batches.counts()
	stats["batches_active"] = active
	stats["batches_total"] = total

	if s.started {
		stats["queue_length"] = s.queue.Len()
		stats["dedupe_size"] = s.deduper.Size()
		metrics.UpdateQueueSize(s.queue.Len())
	}
	return stats
}
