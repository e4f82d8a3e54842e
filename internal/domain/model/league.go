// Package model contains domain models passed between layers.
package model

import (
	"strconv"
	"time"
)

// League groups teams under a single host.
type League struct {
	ID         string
	Name       string
	HostUserID string // user id of the league host
	Season     int    // current season number
}

// Team is a league-scoped club. Rows are owned by the database; the
// formula layer only reads them.
type Team struct {
	ID                  string
	LeagueID            string
	Name                string
	Acronym             string
	MerchPct            float64 // share of merchandise value realised, 0-100
	StadiumCapacity     int
	VisitorFocus        string // stored visitor-focus strategy
	SeasonalPerformance string // previous season's competition outcome
	CompIndex           float64
}

// Player is a league-scoped player.
type Player struct {
	ID                      string
	LeagueID                string
	TeamID                  string
	Name                    string
	Rating                  int
	Positions               string // comma-separated, primary position first
	InternationalReputation int    // 1-5
	Youngster               bool
}

// YoungsterStat pairs a youngster with the season numbers that drive
// progression.
type YoungsterStat struct {
	Player          Player
	GamesPlayed     int
	AdjustedAverage float64
}

// HallOfFameRecord is one row of the append-only Hall-of-Fame ledger.
type HallOfFameRecord struct {
	TeamID   string
	Season   int
	Position int // finishing position
	Points   int
}

// ContractOffer is a free-agent contract proposal. GuaranteedPct is a
// fraction in [0,1].
type ContractOffer struct {
	Value         int64
	GuaranteedPct float64
	LengthYears   int
	NoTradeClause bool
}

// Bid is a team's offer for a free agent.
type Bid struct {
	ID          string
	TeamID      string
	Offer       ContractOffer
	SubmittedAt time.Time
}

// RankedBid is a bid with its computed points value and position.
type RankedBid struct {
	Bid
	Rank   int
	Points float64
}

// ProgressionJob asks a worker to evaluate and persist one youngster's
// end-of-season rating change.
type ProgressionJob struct {
	BatchID         string
	LeagueID        string
	Season          int
	PlayerID        string
	BaseRating      int
	GamesPlayed     int
	AdjustedAverage float64
}

// Key identifies the job for deduplication: a player progresses at most
// once per league season.
func (j ProgressionJob) Key() string {
	return j.LeagueID + ":" + strconv.Itoa(j.Season) + ":" + j.PlayerID
}

// ProgressionResult is the persisted outcome of a ProgressionJob.
type ProgressionResult struct {
	BatchID   string `json:"-"`
	PlayerID  string `json:"player_id"`
	Rank      int    `json:"rank"`
	Delta     int    `json:"delta"`
	NewRating int    `json:"new_rating"`
	Error     string `json:"error,omitempty"`
}
