package smoke

import (
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// Bid generator ranges.
const (
	minBidValue  = 500_000
	maxBidValue  = 20_000_000
	bidValueStep = 50_000
	maxLength    = 5
	pctStep      = 5
	ntcOneIn     = 5
)

// GenerateBids builds n bids spread over teamIDs. The same seed yields the
// same values; ids are always fresh.
func GenerateBids(n int, teamIDs []string, seed int64, base time.Time) []Bid {
	if n <= 0 || len(teamIDs) == 0 {
		return nil
	}
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
	steps := (maxBidValue - minBidValue) / bidValueStep

	bids := make([]Bid, n)
	for i := range bids {
		bids[i] = Bid{
			ID:            uuid.NewString(),
			TeamID:        teamIDs[rng.IntN(len(teamIDs))],
			Value:         int64(minBidValue + rng.IntN(steps+1)*bidValueStep),
			GuaranteedPct: float64(rng.IntN(100/pctStep+1) * pctStep),
			LengthYears:   1 + rng.IntN(maxLength),
			NoTradeClause: rng.IntN(ntcOneIn) == 0,
			SubmittedAt:   base.Add(time.Duration(i) * time.Second).UTC().Format(time.RFC3339),
		}
	}
	return bids
}

// chunk splits bids into consecutive groups of at most size.
func chunk(bids []Bid, size int) [][]Bid {
	if size <= 0 {
		size = len(bids)
	}
	var out [][]Bid
	for len(bids) > 0 {
		n := min(size, len(bids))
		out = append(out, bids[:n])
		bids = bids[n:]
	}
	return out
}
