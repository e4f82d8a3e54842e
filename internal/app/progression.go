package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/fantaleague/internal/adapters/mq/queue"
	"github.com/okian/fantaleague/internal/domain/model"
	"github.com/okian/fantaleague/pkg/logger"
	"github.com/okian/fantaleague/pkg/metrics"
)

// Batch states.
const (
	BatchRunning   = "running"
	BatchCompleted = "completed"
)

const maxRetainedBatches = 256

// Batch is the progress of one league-wide progression run.
type Batch struct {
	ID         string                    `json:"batch_id"`
	LeagueID   string                    `json:"league_id"`
	Season     int                       `json:"season"`
	Status     string                    `json:"status"`
	Queued     int                       `json:"queued"`
	Duplicates int                       `json:"duplicates"`
	Completed  int                       `json:"completed"`
	Failed     int                       `json:"failed"`
	StartedAt  time.Time                 `json:"started_at"`
	FinishedAt *time.Time                `json:"finished_at,omitempty"`
	Results    []model.ProgressionResult `json:"results"`
}

// StartProgression queues one job per youngster of the league's season
// and returns the batch id. A season of 0 means the league's current
// season. Players already progressed for that season are skipped.
func (s *Service) StartProgression(ctx context.Context, leagueID string, season int) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return "", ErrNotStarted
	}
	if season < 0 {
		return "", fmt.Errorf("%w: season must not be negative", ErrInvalidArgument)
	}

	league, err := s.store.League(ctx, leagueID)
	if err != nil {
		return "", err
	}
	if season == 0 {
		season = league.Season
	}
	youngsters, err := s.store.Youngsters(ctx, leagueID, season)
	if err != nil {
		return "", fmt.Errorf("load youngsters: %w", err)
	}

	batchID := uuid.NewString()
	var jobs []model.ProgressionJob
	duplicates := 0
	for _, ys := range youngsters {
		j := model.ProgressionJob{
			BatchID:         batchID,
			LeagueID:        leagueID,
			Season:          season,
			PlayerID:        ys.Player.ID,
			BaseRating:      ys.Player.Rating,
			GamesPlayed:     ys.GamesPlayed,
			AdjustedAverage: ys.AdjustedAverage,
		}
		if s.deduper.SeenAndRecord(ctx, j.Key()) {
			metrics.RecordProgressionJob("duplicate")
			duplicates++
			continue
		}
		jobs = append(jobs, j)
	}

	if free := s.queue.Cap() - s.queue.Len(); len(jobs) > free {
		for _, j := range jobs {
			s.deduper.Unrecord(ctx, j.Key())
		}
		return "", fmt.Errorf("%w: %d jobs, %d free slots", ErrBackpressure, len(jobs), free)
	}

	s.batches.open(batchID, leagueID, season, len(jobs), duplicates)
	for _, j := range jobs {
		if err := s.queue.Enqueue(ctx, j); err != nil {
			res := model.ProgressionResult{BatchID: batchID, PlayerID: j.PlayerID, NewRating: j.BaseRating, Error: err.Error()}
			s.batches.Record(ctx, j, res)
			if errors.Is(err, queue.ErrClosed) {
				s.logger.Warn(ctx, "queue closed during progression", logger.String("batch_id", batchID))
			}
		}
	}

	s.logger.Info(ctx, "progression started",
		logger.String("batch_id", batchID),
		logger.String("league_id", leagueID),
		logger.Int("season", season),
		logger.Int("queued", len(jobs)),
		logger.Int("duplicates", duplicates))
	return batchID, nil
}

// ProgressionBatch returns a snapshot of a batch with results ranked by
// delta desc, new rating desc, then player id.
func (s *Service) ProgressionBatch(_ context.Context, batchID string) (Batch, error) {
	b, ok := s.batches.get(batchID)
	if !ok {
		return Batch{}, fmt.Errorf("%w: %s", ErrBatchNotFound, batchID)
	}
	return b, nil
}

// batchTracker records worker outcomes per batch. It implements
// worker.Recorder.
type batchTracker struct {
	svc   *Service
	mu    sync.Mutex
	byID  map[string]*Batch
	order []string
}

func newBatchTracker(svc *Service) *batchTracker {
	return &batchTracker{svc: svc, byID: make(map[string]*Batch)}
}

func (t *batchTracker) open(id, leagueID string, season, queued, duplicates int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	b := &Batch{
		ID:         id,
		LeagueID:   leagueID,
		Season:     season,
		Status:     BatchRunning,
		Queued:     queued,
		Duplicates: duplicates,
		StartedAt:  time.Now().UTC(),
		Results:    make([]model.ProgressionResult, 0, queued),
	}
	if queued == 0 {
		b.Status = BatchCompleted
		b.FinishedAt = &b.StartedAt
	}
	t.byID[id] = b
	t.order = append(t.order, id)
	t.evict()
}

// evict drops the oldest finished batches beyond maxRetainedBatches.
func (t *batchTracker) evict() {
	for i := 0; len(t.byID) > maxRetainedBatches && i < len(t.order); {
		id := t.order[i]
		if b := t.byID[id]; b != nil && b.Status == BatchCompleted {
			delete(t.byID, id)
			t.order = slices.Delete(t.order, i, i+1)
			continue
		}
		i++
	}
}

// Record implements worker.Recorder. Failed jobs are forgotten by the
// deduper so a later run retries them. The league's cached reports are
// dropped once the batch completes.
func (t *batchTracker) Record(ctx context.Context, job model.ProgressionJob, res model.ProgressionResult) {
	if res.Error != "" {
		t.svc.deduper.Unrecord(ctx, job.Key())
	}

	t.mu.Lock()
	b, ok := t.byID[res.BatchID]
	if !ok {
		t.mu.Unlock()
		return
	}
	b.Results = append(b.Results, res)
	if res.Error != "" {
		b.Failed++
	} else {
		b.Completed++
	}
	done := b.Status == BatchRunning && b.Completed+b.Failed == b.Queued
	t.mu.Unlock()

	if !done {
		return
	}
	// Drop reports before the batch reads as completed.
	t.svc.invalidate(ctx, b.LeagueID)

	t.mu.Lock()
	now := time.Now().UTC()
	b.Status = BatchCompleted
	b.FinishedAt = &now
	completed, failed := b.Completed, b.Failed
	t.mu.Unlock()

	t.svc.logger.Info(ctx, "progression completed",
		logger.String("batch_id", res.BatchID),
		logger.Int("completed", completed),
		logger.Int("failed", failed))
}

func (t *batchTracker) get(id string) (Batch, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	b, ok := t.byID[id]
	if !ok {
		return Batch{}, false
	}
	out := *b
	out.Results = slices.Clone(b.Results)
	if out.FinishedAt != nil {
		f := *out.FinishedAt
		out.FinishedAt = &f
	}
	slices.SortFunc(out.Results, func(a, b model.ProgressionResult) int {
		if c := cmp.Compare(b.Delta, a.Delta); c != 0 {
			return c
		}
		if c := cmp.Compare(b.NewRating, a.NewRating); c != 0 {
			return c
		}
		return cmp.Compare(a.PlayerID, b.PlayerID)
	})
	for i := range out.Results {
		out.Results[i].Rank = i + 1
	}
	return out, true
}

func (t *batchTracker) counts() (active, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, b := range t.byID {
		if b.Status == BatchRunning {
			active++
		}
	}
	return active, len(t.byID)
}
