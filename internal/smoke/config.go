// Package smoke drives a running fantaleague service end to end and checks
// the ordering guarantees of its reports.
package smoke

import "time"

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL     string        // Base URL of the service
	LeagueID    string        // League to exercise
	HostSubject string        // Subject sent when starting progression
	NumBids     int           // Number of bids to generate
	BatchSize   int           // Bids per rank request
	Workers     int           // Concurrent requests
	Timeout     time.Duration // HTTP request timeout
	Progression bool          // Also run youngster progression
	PollEvery   time.Duration // Batch status poll interval
	Seed        int64         // Bid generator seed; 0 picks one from the clock
}

// Stats holds run statistics.
type Stats struct {
	BidsGenerated     int
	RankRequests      int
	RankFailures      int
	FinanceReports    int
	HallOfFameEntries int
	ProgressionBatch  string
	Progressed        int
	Duplicates        int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}

type teamStanding struct {
	TeamID    string  `json:"team_id"`
	CompIndex float64 `json:"comp_index"`
	Situation string  `json:"situation"`
}

type competitiveIndex struct {
	LeagueAverage float64        `json:"league_average"`
	Teams         []teamStanding `json:"teams"`
}

type hallOfFameEntry struct {
	Rank    int    `json:"rank"`
	TeamID  string `json:"team_id"`
	Overall int    `json:"hof_overall"`
	Last3   int    `json:"hof_last_3"`
}

type hallOfFame struct {
	Entries []hallOfFameEntry `json:"entries"`
}

type finances struct {
	TeamID       string `json:"team_id"`
	WageBill     int64  `json:"wage_bill"`
	MerchRevenue int64  `json:"merch_revenue"`
	Stadium      int64  `json:"stadium_revenue"`
	Net          int64  `json:"net"`
}

// Bid is the wire form of a free-agent bid.
type Bid struct {
	ID            string  `json:"id"`
	TeamID        string  `json:"team_id"`
	Value         int64   `json:"value"`
	GuaranteedPct float64 `json:"guaranteed_pct"`
	LengthYears   int     `json:"length_years"`
	NoTradeClause bool    `json:"no_trade_clause"`
	SubmittedAt   string  `json:"submitted_at"`
}

type rankedBid struct {
	Rank   int     `json:"rank"`
	ID     string  `json:"id"`
	Points float64 `json:"points"`
}

type rankResponse struct {
	Bids []rankedBid `json:"bids"`
}

type startResponse struct {
	BatchID   string `json:"batch_id"`
	StatusURL string `json:"status_url"`
}

type progressionResult struct {
	PlayerID  string `json:"player_id"`
	Rank      int    `json:"rank"`
	Delta     int    `json:"delta"`
	NewRating int    `json:"new_rating"`
	Error     string `json:"error"`
}

type batch struct {
	Status     string              `json:"status"`
	Queued     int                 `json:"queued"`
	Duplicates int                 `json:"duplicates"`
	Completed  int                 `json:"completed"`
	Failed     int                 `json:"failed"`
	Results    []progressionResult `json:"results"`
}
