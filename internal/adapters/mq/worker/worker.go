// Package worker runs progression jobs off the queue.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/okian/fantaleague/internal/domain/model"
	"github.com/okian/fantaleague/internal/domain/progression"
	"github.com/okian/fantaleague/pkg/logger"
	"github.com/okian/fantaleague/pkg/metrics"
)

const defaultPoolShutdownTimeout = 30 * time.Second

// Job is what workers read off the queue.
type Job = model.ProgressionJob

// Upgrader persists a rating delta and returns the stored rating.
type Upgrader interface {
	ApplyYoungsterUpgrade(ctx context.Context, leagueID, playerID string, delta int) (int, error)
}

// Recorder receives the outcome of every job.
type Recorder interface {
	Record(ctx context.Context, job Job, res model.ProgressionResult)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes jobs until its queue closes.
type Worker interface {
	Run(ctx context.Context)
	Shutdown(ctx context.Context) error
}

// InMemoryWorker evaluates progression jobs and persists the deltas.
type InMemoryWorker struct {
	queue    Queue
	upgrader Upgrader
	recorder Recorder
	name     string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, upgrader Upgrader, recorder Recorder, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		upgrader: upgrader,
		recorder: recorder,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run consumes jobs until the queue channel closes, ctx is done, or
// Shutdown is called.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.process(ctx, j); err != nil {
				w.logger.Error(ctx, "progression job failed",
					logger.String("batch_id", j.BatchID),
					logger.String("player_id", j.PlayerID),
					logger.Error(err))
			}
		}
	}
}

// Shutdown stops the worker without draining the queue.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process evaluates one job. Zero deltas are recorded without a write.
func (w *InMemoryWorker) process(ctx context.Context, j Job) error {
	start := time.Now()
	defer func() {
		metrics.RecordProgressionLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	delta := progression.Upgrade(j.BaseRating, j.GamesPlayed, j.AdjustedAverage)
	res := model.ProgressionResult{
		BatchID:   j.BatchID,
		PlayerID:  j.PlayerID,
		Delta:     delta,
		NewRating: j.BaseRating,
	}

	if delta != 0 {
		rating, err := w.upgrader.ApplyYoungsterUpgrade(ctx, j.LeagueID, j.PlayerID, delta)
		if err != nil {
			metrics.RecordProgressionJob("failed")
			metrics.RecordErrorByComponent("worker", "store_error")
			metrics.RecordErrorByType("store_error", "high")
			res.Error = err.Error()
			w.recorder.Record(ctx, j, res)
			return fmt.Errorf("apply upgrade for %s: %w", j.PlayerID, err)
		}
		res.NewRating = rating
	}

	metrics.RecordProgressionJob("applied")
	metrics.RecordProgressionDelta(delta)
	w.recorder.Record(ctx, j, res)
	w.logger.Debug(ctx, "progression applied",
		logger.String("player_id", j.PlayerID),
		logger.Int("delta", delta),
		logger.Int("new_rating", res.NewRating))
	return nil
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates workerCount workers. A count below 1 means one worker.
func NewPool(workerCount int, q Queue, upgrader Upgrader, recorder Recorder) *Pool {
	workerCount = max(workerCount, 1)
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		p.workers[i] = NewInMemoryWorker(q, upgrader, recorder, WithName("worker-"+strconv.Itoa(i)))
	}
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and waits for workers to drain it. Workers
// still busy when ctx ends are stopped.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, defaultPoolShutdownTimeout)
	defer cancel()

	var timedOut int
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			w.shutdownOnce.Do(func() { close(w.shutdown) })
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			timedOut++
		}
	}
	metrics.UpdateWorkerCount(0)
	if timedOut > 0 {
		return fmt.Errorf("%d workers did not drain: %w", timedOut, shutdownCtx.Err())
	}
	return nil
}
