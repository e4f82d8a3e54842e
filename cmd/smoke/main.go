package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/fantaleague/internal/adapters/repository"
	"github.com/okian/fantaleague/internal/smoke"
	"github.com/okian/fantaleague/pkg/logger"
)

// Default configuration constants.
const (
	defaultNumBids    = 2000
	defaultWorkers    = 2 // multiplier for runtime.NumCPU()
	defaultTimeout    = 30 * time.Second
	defaultRunTimeout = 5 * time.Minute
)

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:9080", "Base URL of the service")
		league      = flag.String("league", repository.DemoLeagueID, "League to exercise")
		subject     = flag.String("subject", repository.DemoHostSubject, "Host subject used to start progression")
		numBids     = flag.Int("bids", defaultNumBids, "Number of free-agent bids to rank")
		batchSize   = flag.Int("batch", smoke.DefaultBatchSize, "Bids per rank request")
		workers     = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent requests")
		timeout     = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		progression = flag.Bool("progression", false, "Also run youngster progression")
		seed        = flag.Int64("seed", 0, "Bid generator seed (0 uses the clock)")
		format      = flag.String("log-format", "text", "Log format: text or json")
	)
	flag.Parse()

	if err := logger.Init(logger.WithFormat(*format)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	_, err := smoke.Run(ctx, smoke.Config{
		BaseURL:     *baseURL,
		LeagueID:    *league,
		HostSubject: *subject,
		NumBids:     *numBids,
		BatchSize:   *batchSize,
		Workers:     *workers,
		Timeout:     *timeout,
		Progression: *progression,
		Seed:        *seed,
	})
	if err != nil {
		logger.Get().Error(ctx, "smoke run failed", logger.Error(err))
		cancel()
		os.Exit(1)
	}
}
