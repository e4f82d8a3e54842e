// Package scheduler runs the periodic league report refresh.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"github.com/okian/fantaleague/pkg/logger"
	"github.com/okian/fantaleague/pkg/metrics"
)

// RefreshJobName names the report refresh job.
const RefreshJobName = "refresh_leagues"

// ErrNotInitialized is returned when the scheduler was never created.
var ErrNotInitialized = errors.New("scheduler not initialized")

// Refresher recomputes cached league reports.
type Refresher interface {
	RefreshLeagues(ctx context.Context) (int, error)
}

// Scheduler wraps a gocron scheduler running the refresh job.
type Scheduler struct {
	sched    gocron.Scheduler
	interval time.Duration
	timeout  time.Duration

	stopOnce sync.Once
	stopErr  error
	logger   logger.Logger
}

// Option applies a configuration option to the Scheduler.
type Option func(*Scheduler)

// WithRunTimeout bounds a single refresh run.
func WithRunTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New registers the refresh job every interval. An interval of zero
// yields a scheduler with no jobs.
func New(interval time.Duration, r Refresher, opts ...Option) (*Scheduler, error) {
	s := &Scheduler{
		interval: interval,
		timeout:  time.Minute,
		logger:   logger.Get().Named("scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}

	sched, err := gocron.NewScheduler(
		gocron.WithGlobalJobOptions(
			gocron.WithEventListeners(
				gocron.AfterJobRunsWithPanic(func(jobID uuid.UUID, jobName string, recoverData any) {
					metrics.RecordSchedulerRun(jobName, "panic")
					s.logger.Error(context.Background(), "scheduler job panicked",
						logger.String("job_id", jobID.String()),
						logger.String("job_name", jobName),
						logger.Any("panic", recoverData))
				}),
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	s.sched = sched

	if interval <= 0 {
		s.logger.Info(context.Background(), "league refresh disabled")
		return s, nil
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.refresh, r),
		gocron.WithName(RefreshJobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("add %s job: %w", RefreshJobName, err)
	}
	return s, nil
}

func (s *Scheduler) refresh(r Refresher) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	n, err := r.RefreshLeagues(ctx)
	if err != nil {
		metrics.RecordSchedulerRun(RefreshJobName, "error")
		metrics.RecordErrorByComponent("scheduler", "refresh_failed")
		s.logger.Error(ctx, "league refresh failed", logger.Error(err))
		return
	}
	metrics.RecordSchedulerRun(RefreshJobName, "ok")
	s.logger.Debug(ctx, "league refresh done", logger.Int("leagues", n))
}

// Jobs returns the number of registered jobs.
func (s *Scheduler) Jobs() int {
	if s == nil || s.sched == nil {
		return 0
	}
	return len(s.sched.Jobs())
}

// Start begins running scheduled jobs.
func (s *Scheduler) Start(ctx context.Context) {
	if s == nil || s.sched == nil {
		return
	}
	s.logger.Info(ctx, "scheduler starting", logger.Duration("interval", s.interval))
	s.sched.Start()
}

// Stop shuts down the scheduler and waits for running jobs.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s == nil || s.sched == nil {
		return ErrNotInitialized
	}
	s.stopOnce.Do(func() {
		s.logger.Info(ctx, "scheduler stopping")
		s.stopErr = s.sched.Shutdown()
	})
	return s.stopErr
}
