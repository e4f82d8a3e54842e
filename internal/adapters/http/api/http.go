// Package api exposes the league service over HTTP/JSON.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	service "github.com/okian/fantaleague/internal/app"
	"github.com/okian/fantaleague/internal/domain/model"
	"github.com/okian/fantaleague/internal/domain/standings"
	"github.com/okian/fantaleague/internal/domain/types"
	"github.com/okian/fantaleague/pkg/logger"
)

// SubjectHeader carries the identity-provider subject set by the edge.
const SubjectHeader = "X-User-ID"

// LeagueReader serves computed league reports.
type LeagueReader interface {
	CompetitiveIndex(ctx context.Context, leagueID string) (standings.Report, error)
	HallOfFame(ctx context.Context, leagueID string) ([]types.Entry, error)
	TeamFinances(ctx context.Context, leagueID, teamID string, gamesPlayed int) (service.TeamFinances, error)
	RankBids(ctx context.Context, leagueID string, bids []model.Bid) ([]model.RankedBid, error)
}

// ProgressionRunner starts and reports youngster progression batches.
type ProgressionRunner interface {
	IsLeagueHost(ctx context.Context, leagueID, subject string) (bool, error)
	StartProgression(ctx context.Context, leagueID string, season int) (string, error)
	ProgressionBatch(ctx context.Context, batchID string) (service.Batch, error)
}

// Dependencies required by HTTP handlers.
type Dependencies interface {
	LeagueReader
	ProgressionRunner
	StatsProvider
	Pinger
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	calcHandler        *CalcHandler
	leagueHandler      *LeagueHandler
	progressionHandler *ProgressionHandler

	corsOrigins    []string
	requestTimeout time.Duration
	logger         logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithCORSOrigins sets the allowed browser origins.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.corsOrigins = origins
		}
	}
}

// WithRequestTimeout bounds handler execution.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.requestTimeout = d
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		healthHandler:      NewHealthHandler(deps),
		statsHandler:       NewStatsHandler(deps),
		calcHandler:        NewCalcHandler(),
		leagueHandler:      NewLeagueHandler(deps),
		progressionHandler: NewProgressionHandler(deps),
		corsOrigins:        []string{"*"},
		requestTimeout:     30 * time.Second,
		logger:             logger.Get().Named("http"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the chi router with middleware and every API route.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(RequestLogger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(s.requestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", SubjectHeader},
		ExposedHeaders: []string{"Location"},
		MaxAge:         300,
	}))
	s.Register(r)
	return r
}

// Register attaches all API routes to r.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/metrics", s.healthHandler.HandleMetrics)
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/calc/wage", MetricsMiddleware(s.calcHandler.HandleWage, "calc_wage"))
		r.Get("/calc/merch", MetricsMiddleware(s.calcHandler.HandleMerch, "calc_merch"))

		r.Route("/leagues/{leagueID}", func(r chi.Router) {
			r.Get("/competitive-index", MetricsMiddleware(s.leagueHandler.HandleCompetitiveIndex, "competitive_index"))
			r.Get("/hall-of-fame", MetricsMiddleware(s.leagueHandler.HandleHallOfFame, "hall_of_fame"))
			r.Get("/teams/{teamID}/finances", MetricsMiddleware(s.leagueHandler.HandleTeamFinances, "team_finances"))
			r.Post("/free-agents/bids/rank", MetricsMiddleware(s.leagueHandler.HandleRankBids, "rank_bids"))
			r.Post("/progression", MetricsMiddleware(s.progressionHandler.HandleStart, "progression_start"))
			r.Get("/progression/{batchID}", MetricsMiddleware(s.progressionHandler.HandleGet, "progression_get"))
		})
	})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// fail classifies err and writes it. Internal errors are logged and
// reported without detail.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		logger.Get().Error(r.Context(), "request failed",
			logger.String("path", r.URL.Path),
			logger.String("request_id", chimiddleware.GetReqID(r.Context())),
			logger.Error(err))
		writeError(w, status, code, nil)
		return
	}
	writeError(w, status, code, err)
}
