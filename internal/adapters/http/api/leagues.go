package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	service "github.com/okian/fantaleague/internal/app"
	"github.com/okian/fantaleague/internal/domain/model"
	"github.com/okian/fantaleague/internal/domain/types"
)

const maxBidsPerRequest = 500

// LeagueHandler serves league reports and bid ranking.
type LeagueHandler struct {
	deps LeagueReader
}

// NewLeagueHandler creates a new league handler.
func NewLeagueHandler(deps LeagueReader) *LeagueHandler {
	return &LeagueHandler{deps: deps}
}

// HandleCompetitiveIndex handles GET /api/v1/leagues/{leagueID}/competitive-index.
func (h *LeagueHandler) HandleCompetitiveIndex(w http.ResponseWriter, r *http.Request) {
	report, err := h.deps.CompetitiveIndex(r.Context(), chi.URLParam(r, "leagueID"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type hallOfFameResponse struct {
	LeagueID string `json:"league_id"`
	Entries  []types.Entry `json:"entries"`
}

// HandleHallOfFame handles GET /api/v1/leagues/{leagueID}/hall-of-fame.
func (h *LeagueHandler) HandleHallOfFame(w http.ResponseWriter, r *http.Request) {
	leagueID := chi.URLParam(r, "leagueID")
	entries, err := h.deps.HallOfFame(r.Context(), leagueID)
	if err != nil {
		fail(w, r, err)
		return
	}
	if entries == nil {
		entries = []types.Entry{}
	}
	writeJSON(w, http.StatusOK, hallOfFameResponse{LeagueID: leagueID, Entries: entries})
}

// HandleTeamFinances handles GET /api/v1/leagues/{leagueID}/teams/{teamID}/finances.
// Without games_played the full season is used.
func (h *LeagueHandler) HandleTeamFinances(w http.ResponseWriter, r *http.Request) {
	const op = "api.team_finances"
	games := service.FullSeason
	if raw := strings.TrimSpace(r.URL.Query().Get("games_played")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			fail(w, r, WrapKind(op, ErrBadRequest, errors.New("invalid games_played; must be a non-negative integer")))
			return
		}
		games = n
	}
	f, err := h.deps.TeamFinances(r.Context(), chi.URLParam(r, "leagueID"), chi.URLParam(r, "teamID"), games)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// bidRequest is one free-agent bid. GuaranteedPct is a percentage 0-100.
type bidRequest struct {
	ID            string  `json:"id"`
	TeamID        string  `json:"team_id"`
	Value         int64   `json:"value"`
	GuaranteedPct float64 `json:"guaranteed_pct"`
	LengthYears   int     `json:"length_years"`
	NoTradeClause bool    `json:"no_trade_clause"`
	SubmittedAt   string  `json:"submitted_at"`
}

type rankBidsRequest struct {
	Bids []bidRequest `json:"bids"`
}

func (b bidRequest) toModel(i int) (model.Bid, error) {
	switch {
	case strings.TrimSpace(b.TeamID) == "":
		return model.Bid{}, fmt.Errorf("bids[%d]: missing team_id", i)
	case b.Value <= 0:
		return model.Bid{}, fmt.Errorf("bids[%d]: value must be positive", i)
	case b.GuaranteedPct < 0 || b.GuaranteedPct > 100:
		return model.Bid{}, fmt.Errorf("bids[%d]: guaranteed_pct must be within 0-100", i)
	case b.LengthYears < 1:
		return model.Bid{}, fmt.Errorf("bids[%d]: length_years must be at least 1", i)
	}
	bid := model.Bid{
		ID:     b.ID,
		TeamID: b.TeamID,
		Offer: model.ContractOffer{
			Value:         b.Value,
			GuaranteedPct: b.GuaranteedPct / 100,
			LengthYears:   b.LengthYears,
			NoTradeClause: b.NoTradeClause,
		},
	}
	if b.SubmittedAt != "" {
		ts, err := time.Parse(time.RFC3339, b.SubmittedAt)
		if err != nil {
			return model.Bid{}, fmt.Errorf("bids[%d]: invalid submitted_at; must be RFC3339", i)
		}
		bid.SubmittedAt = ts
	}
	return bid, nil
}

type rankedBidResponse struct {
	Rank          int     `json:"rank"`
	ID            string  `json:"id"`
	TeamID        string  `json:"team_id"`
	Points        float64 `json:"points"`
	Value         int64   `json:"value"`
	GuaranteedPct float64 `json:"guaranteed_pct"`
	LengthYears   int     `json:"length_years"`
	NoTradeClause bool    `json:"no_trade_clause"`
}

type rankBidsResponse struct {
	Bids []rankedBidResponse `json:"bids"`
}

// HandleRankBids handles POST /api/v1/leagues/{leagueID}/free-agents/bids/rank.
func (h *LeagueHandler) HandleRankBids(w http.ResponseWriter, r *http.Request) {
	const op = "api.rank_bids"
	var req rankBidsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	if len(req.Bids) == 0 {
		fail(w, r, WrapKind(op, ErrBadRequest, errors.New("missing bids")))
		return
	}
	if len(req.Bids) > maxBidsPerRequest {
		fail(w, r, WrapKind(op, ErrBadRequest, fmt.Errorf("at most %d bids per request", maxBidsPerRequest)))
		return
	}

	bids := make([]model.Bid, len(req.Bids))
	for i, b := range req.Bids {
		bid, err := b.toModel(i)
		if err != nil {
			fail(w, r, WrapKind(op, ErrBadRequest, err))
			return
		}
		bids[i] = bid
	}

	ranked, err := h.deps.RankBids(r.Context(), chi.URLParam(r, "leagueID"), bids)
	if err != nil {
		fail(w, r, err)
		return
	}
	out := rankBidsResponse{Bids: make([]rankedBidResponse, len(ranked))}
	for i, rb := range ranked {
		out.Bids[i] = rankedBidResponse{
			Rank:          rb.Rank,
			ID:            rb.ID,
			TeamID:        rb.TeamID,
			Points:        rb.Points,
			Value:         rb.Offer.Value,
			GuaranteedPct: rb.Offer.GuaranteedPct * 100,
			LengthYears:   rb.Offer.LengthYears,
			NoTradeClause: rb.Offer.NoTradeClause,
		}
	}
	writeJSON(w, http.StatusOK, out)
}
