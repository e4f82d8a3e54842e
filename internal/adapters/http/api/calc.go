package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/fantaleague/internal/domain/finance"
)

// CalcHandler exposes the stateless finance formulas.
type CalcHandler struct{}

// NewCalcHandler creates a new calculator handler.
func NewCalcHandler() *CalcHandler {
	return &CalcHandler{}
}

type wageResponse struct {
	Rating     int    `json:"rating"`
	Position   string `json:"position"`
	Defender   bool   `json:"defender"`
	AnnualWage int64  `json:"annual_wage"`
}

type merchResponse struct {
	Reputation int    `json:"reputation"`
	Position   string `json:"position"`
	MerchValue int64  `json:"merch_value"`
}

// HandleWage handles GET /api/v1/calc/wage?rating=&position=.
func (h *CalcHandler) HandleWage(w http.ResponseWriter, r *http.Request) {
	const op = "api.calc_wage"
	rating, position, err := intAndPosition(r, "rating")
	if err != nil {
		fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, wageResponse{
		Rating:     rating,
		Position:   finance.PrimaryPosition(position),
		Defender:   finance.IsDefender(position),
		AnnualWage: finance.AnnualWage(rating, position),
	})
}

// HandleMerch handles GET /api/v1/calc/merch?reputation=&position=.
func (h *CalcHandler) HandleMerch(w http.ResponseWriter, r *http.Request) {
	const op = "api.calc_merch"
	rep, position, err := intAndPosition(r, "reputation")
	if err != nil {
		fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, merchResponse{
		Reputation: rep,
		Position:   finance.PrimaryPosition(position),
		MerchValue: finance.PlayerMerchValue(rep, position),
	})
}

func intAndPosition(r *http.Request, name string) (int, string, error) {
	q := r.URL.Query()
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return 0, "", fmt.Errorf("missing %s", name)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, "", fmt.Errorf("invalid %s; must be an integer", name)
	}
	position := strings.TrimSpace(q.Get("position"))
	if position == "" {
		return 0, "", errors.New("missing position")
	}
	return v, position, nil
}
