// Package progression computes end-of-season rating changes for youngsters.
package progression

import "math"

// Progression formula constants.
const (
	minGames        = 5    // fewer appearances never move the rating
	fullSeasonGames = 38   // participation saturates here
	neutralAverage  = 6.5  // match-rating average that neither helps nor hurts
	averageWeight   = 4.0  // rating points per point of average over a full season
	maxRating       = 99.0 // headroom is measured against this
	headroomSpan    = 30.0
	minHeadroom     = 0.2
	maxHeadroom     = 1.5

	// MaxGain and MaxLoss bound a single season's delta.
	MaxGain = 6
	MaxLoss = -3
)

// Upgrade returns the signed rating delta for a youngster given the base
// rating, games played and adjusted match-rating average. Caps on the
// resulting rating are enforced where the delta is persisted.
func Upgrade(baseRating, gamesPlayed int, adjustedAverage float64) int {
	if gamesPlayed < minGames || math.IsNaN(adjustedAverage) || math.IsInf(adjustedAverage, 0) {
		return 0
	}
	participation := float64(min(gamesPlayed, fullSeasonGames)) / fullSeasonGames
	headroom := (maxRating - float64(baseRating)) / headroomSpan
	headroom = math.Max(minHeadroom, math.Min(maxHeadroom, headroom))

	raw := (adjustedAverage - neutralAverage) * averageWeight * participation * headroom
	delta := int(math.Round(raw))
	return max(MaxLoss, min(MaxGain, delta))
}
