package finance

import (
	"math"
	"strings"
)

// VisitorFocus is a club's stadium marketing strategy.
type VisitorFocus string

// Visitor focus strategies.
const (
	FocusCoreFanbase  VisitorFocus = "core_fanbase"
	FocusLocalCasuals VisitorFocus = "local_casuals"
	FocusTourists     VisitorFocus = "tourists"
	FocusHospitality  VisitorFocus = "hospitality"
)

// SeasonalPerformance is the previous season's competition outcome.
type SeasonalPerformance string

// Seasonal performance tiers, best first.
const (
	PerformanceContinentalWinner       SeasonalPerformance = "continental_winner"
	PerformanceContinentalFinalist     SeasonalPerformance = "continental_finalist"
	PerformanceContinentalSemiFinal    SeasonalPerformance = "continental_semi_final"
	PerformanceContinentalQuarterFinal SeasonalPerformance = "continental_quarter_final"
	PerformanceContinentalKnockout     SeasonalPerformance = "continental_knockout"
	PerformanceContinentalGroupStage   SeasonalPerformance = "continental_group_stage"
	PerformanceSecondaryWinner         SeasonalPerformance = "secondary_winner"
	PerformanceSecondaryFinalist       SeasonalPerformance = "secondary_finalist"
	PerformanceSecondaryKnockout       SeasonalPerformance = "secondary_knockout"
	PerformanceSecondaryGroupStage     SeasonalPerformance = "secondary_group_stage"
	PerformanceDomesticOnly            SeasonalPerformance = "domestic_only"
	PerformanceRelegationBattle        SeasonalPerformance = "relegation_battle"
)

// Attendance model constants.
const (
	maxPerformanceScore = 10.0
	coreFanbaseFloor    = 36_000
	casualsBase         = 0.45
	casualsPerPoint     = 0.055
	touristsBase        = 0.30
	touristsPerPoint    = 0.07
	revenueRounding     = 100_000
	gamesPerHomeGame    = 2 // half of the games are played at home
)

// performanceScores maps each tier to a 0-10 score.
var performanceScores = map[SeasonalPerformance]float64{
	PerformanceContinentalWinner:       10,
	PerformanceContinentalFinalist:     9,
	PerformanceContinentalSemiFinal:    8,
	PerformanceContinentalQuarterFinal: 7,
	PerformanceContinentalKnockout:     6,
	PerformanceContinentalGroupStage:   5,
	PerformanceSecondaryWinner:         5,
	PerformanceSecondaryFinalist:       4,
	PerformanceSecondaryKnockout:       3,
	PerformanceSecondaryGroupStage:     2,
	PerformanceDomesticOnly:            1,
	PerformanceRelegationBattle:        0,
}

// ticketPrices is the average ticket price per visitor focus.
var ticketPrices = map[VisitorFocus]float64{
	FocusCoreFanbase:  45,
	FocusLocalCasuals: 60,
	FocusTourists:     85,
	FocusHospitality:  220,
}

// ParseVisitorFocus normalises a stored focus string ("Core Fanbase",
// "core-fanbase", "VIP") to a VisitorFocus. Unknown values yield "".
func ParseVisitorFocus(s string) VisitorFocus {
	switch normalise(s) {
	case "core_fanbase", "core", "fanbase":
		return FocusCoreFanbase
	case "local_casuals", "casuals", "locals":
		return FocusLocalCasuals
	case "tourists", "tourist":
		return FocusTourists
	case "hospitality", "vip", "hospitality_vip":
		return FocusHospitality
	}
	return ""
}

// ParseSeasonalPerformance normalises a stored tier string. Unknown values yield "".
func ParseSeasonalPerformance(s string) SeasonalPerformance {
	p := SeasonalPerformance(normalise(s))
	if _, ok := performanceScores[p]; !ok {
		return ""
	}
	return p
}

// PerformanceScore returns the 0-10 score of a tier and whether it is known.
func PerformanceScore(p SeasonalPerformance) (float64, bool) {
	score, ok := performanceScores[p]
	return score, ok
}

// Attendance estimates the average home attendance. It returns 0 when the
// performance tier is missing or unknown.
func Attendance(capacity int, focus VisitorFocus, performance SeasonalPerformance) float64 {
	score, ok := performanceScores[performance]
	if !ok || capacity <= 0 {
		return 0
	}
	c := float64(capacity)
	switch focus {
	case FocusCoreFanbase:
		// Loyal support: falls linearly from full capacity towards the floor.
		floor := math.Min(c, coreFanbaseFloor)
		return floor + (c-floor)*score/maxPerformanceScore
	case FocusLocalCasuals:
		return c * (casualsBase + casualsPerPoint*score)
	case FocusTourists:
		return c * (touristsBase + touristsPerPoint*score)
	case FocusHospitality:
		return c * hospitalityShare(score)
	}
	return 0
}

func hospitalityShare(score float64) float64 {
	switch {
	case score >= 10:
		return 1
	case score >= 8:
		return 0.85
	case score >= 5:
		return 0.7
	case score >= 2:
		return 0.55
	default:
		return 0.4
	}
}

// TicketPrice returns the ticket price for a visitor focus, 0 if unknown.
func TicketPrice(focus VisitorFocus) float64 {
	return ticketPrices[focus]
}

// Revenue converts attendance into season ticket revenue, rounded to the
// nearest 100,000. Half of gamesPlayed are home games.
func Revenue(attendance float64, focus VisitorFocus, gamesPlayed int) int64 {
	if gamesPlayed <= 0 || attendance <= 0 {
		return 0
	}
	raw := attendance * TicketPrice(focus) * float64(gamesPlayed) / gamesPerHomeGame
	return int64(math.Round(raw/revenueRounding) * revenueRounding)
}

func normalise(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", "_", " ", "_", "/", "_").Replace(s)
	return s
}
