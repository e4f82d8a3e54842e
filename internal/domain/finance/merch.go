package finance

import (
	"math"

	"github.com/okian/fantaleague/internal/domain/model"
)

// Merchandise formula constants.
const (
	merchBase           = 1_000_000
	merchExponent       = 1.7
	merchRounding       = 100_000
	defenderMerchFactor = 0.6
	minReputation       = 1
	maxReputation       = 5

	// MerchContributors is how many players count towards team merchandise.
	MerchContributors = 14
)

// PlayerMerchValue returns a player's merchandising value from international
// reputation (clamped to 1-5) and position, rounded to the nearest 100,000.
func PlayerMerchValue(reputation int, positions string) int64 {
	rep := clampInt(reputation, minReputation, maxReputation)
	multiplier := 1.0
	if IsDefender(positions) {
		multiplier = defenderMerchFactor
	}
	raw := math.Pow(float64(rep), merchExponent) * merchBase * multiplier
	return int64(math.Round(raw/merchRounding) * merchRounding)
}

// TeamMerchRevenue sums the merchandise value of the first MerchContributors
// players and scales it by merchPct (clamped to 0-100). Callers pass the
// squad ordered by rating descending.
func TeamMerchRevenue(players []model.Player, merchPct float64) int64 {
	if len(players) > MerchContributors {
		players = players[:MerchContributors]
	}
	var total int64
	for _, p := range players {
		total += PlayerMerchValue(p.InternationalReputation, p.Positions)
	}
	share := clampFloat(merchPct, 0, 100) / 100
	return int64(math.Round(float64(total) * share))
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

func clampFloat(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
