package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ProgressionHandler starts and reports youngster progression batches.
type ProgressionHandler struct {
	deps ProgressionRunner
}

// NewProgressionHandler creates a new progression handler.
func NewProgressionHandler(deps ProgressionRunner) *ProgressionHandler {
	return &ProgressionHandler{deps: deps}
}

type startProgressionRequest struct {
	Season int `json:"season"`
}

type startProgressionResponse struct {
	BatchID   string `json:"batch_id"`
	StatusURL string `json:"status_url"`
}

// HandleStart handles POST /api/v1/leagues/{leagueID}/progression. Only the
// league host may start a run. The body is optional.
func (h *ProgressionHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	const op = "api.progression_start"
	leagueID := chi.URLParam(r, "leagueID")

	subject := r.Header.Get(SubjectHeader)
	if subject == "" {
		fail(w, r, NewKind(op, ErrForbidden))
		return
	}
	host, err := h.deps.IsLeagueHost(r.Context(), leagueID, subject)
	if err != nil {
		fail(w, r, err)
		return
	}
	if !host {
		fail(w, r, WrapKind(op, ErrForbidden, errors.New("only the league host may run progression")))
		return
	}

	var req startProgressionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.Season < 0 {
		fail(w, r, WrapKind(op, ErrBadRequest, errors.New("season must not be negative")))
		return
	}

	batchID, err := h.deps.StartProgression(r.Context(), leagueID, req.Season)
	if err != nil {
		fail(w, r, err)
		return
	}
	statusURL := "/api/v1/leagues/" + leagueID + "/progression/" + batchID
	w.Header().Set("Location", statusURL)
	writeJSON(w, http.StatusAccepted, startProgressionResponse{BatchID: batchID, StatusURL: statusURL})
}

// HandleGet handles GET /api/v1/leagues/{leagueID}/progression/{batchID}.
func (h *ProgressionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.progression_get"
	batchID := chi.URLParam(r, "batchID")
	b, err := h.deps.ProgressionBatch(r.Context(), batchID)
	if err != nil {
		fail(w, r, err)
		return
	}
	if b.LeagueID != chi.URLParam(r, "leagueID") {
		fail(w, r, NewKind(op, ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, b)
}
