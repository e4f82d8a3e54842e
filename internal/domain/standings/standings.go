// Package standings aggregates Hall-of-Fame points and classifies each
// team's competitive index against the league average.
package standings

import (
	"cmp"
	"slices"

	"github.com/okian/fantaleague/internal/domain/model"
	"github.com/okian/fantaleague/internal/domain/types"
)

// Situation describes where a team's competitive index sits relative to the league.
type Situation string

// Situations reported per team.
const (
	SituationAbove    Situation = "Above average"
	SituationInside   Situation = "Inside average"
	SituationBelow    Situation = "Below average"
	SituationCritical Situation = "Critical"
	SituationNA       Situation = "N/A"
)

// Classification thresholds and windows.
const (
	averageBand   = 1.0
	criticalGap   = -2.0
	recentSeasons = 3
)

// HallOfFameTotals are a team's trailing Hall-of-Fame points.
type HallOfFameTotals struct {
	Overall   int
	LastThree int
}

// TeamStanding is one row of the competitive index report.
type TeamStanding struct {
	TeamID    string    `json:"team_id"`
	Name      string    `json:"name"`
	Acronym   string    `json:"acronym"`
	CompIndex float64   `json:"comp_index"`
	Gap       float64   `json:"gap"`
	Overall   int       `json:"hof_overall"`
	LastThree int       `json:"hof_last_3"`
	Situation Situation `json:"situation"`
}

// Report is the competitive index view of a league.
type Report struct {
	LeagueAverage float64        `json:"league_average"`
	Teams         []TeamStanding `json:"teams"`
}

// AggregateHallOfFame totals each team's points overall and over its three
// most recent seasons.
func AggregateHallOfFame(records []model.HallOfFameRecord) map[string]HallOfFameTotals {
	byTeam := make(map[string][]model.HallOfFameRecord)
	for _, r := range records {
		byTeam[r.TeamID] = append(byTeam[r.TeamID], r)
	}

	totals := make(map[string]HallOfFameTotals, len(byTeam))
	for teamID, rows := range byTeam {
		slices.SortStableFunc(rows, func(a, b model.HallOfFameRecord) int {
			return cmp.Compare(a.Season, b.Season)
		})
		var t HallOfFameTotals
		for i, r := range rows {
			t.Overall += r.Points
			if i >= len(rows)-recentSeasons {
				t.LastThree += r.Points
			}
		}
		totals[teamID] = t
	}
	return totals
}

// LeagueAverage is the mean of all non-zero competitive indices, 0 if none.
func LeagueAverage(teams []model.Team) float64 {
	var sum float64
	var n int
	for _, t := range teams {
		if t.CompIndex != 0 {
			sum += t.CompIndex
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Classify maps a competitive index to a Situation. A gap between -1 and -2
// falls through to "Below average"; only gaps under -2 are critical.
func Classify(compIndex, leagueAverage float64) Situation {
	if compIndex == 0 {
		return SituationNA
	}
	gap := compIndex - leagueAverage
	switch {
	case gap > averageBand:
		return SituationAbove
	case gap >= -averageBand:
		return SituationInside
	case gap < criticalGap:
		return SituationCritical
	default:
		return SituationBelow
	}
}

// BuildReport assembles the competitive index report. Teams keep the order
// they were given in.
func BuildReport(teams []model.Team, records []model.HallOfFameRecord) Report {
	avg := LeagueAverage(teams)
	totals := AggregateHallOfFame(records)

	rows := make([]TeamStanding, len(teams))
	for i, t := range teams {
		hof := totals[t.ID]
		rows[i] = TeamStanding{
			TeamID:    t.ID,
			Name:      t.Name,
			Acronym:   t.Acronym,
			CompIndex: t.CompIndex,
			Gap:       t.CompIndex - avg,
			Overall:   hof.Overall,
			LastThree: hof.LastThree,
			Situation: Classify(t.CompIndex, avg),
		}
	}
	return Report{LeagueAverage: avg, Teams: rows}
}

// HallOfFameRanking ranks teams by overall points, then recent points, then name.
func HallOfFameRanking(teams []model.Team, records []model.HallOfFameRecord) []types.Entry {
	totals := AggregateHallOfFame(records)
	entries := make([]types.Entry, len(teams))
	for i, t := range teams {
		hof := totals[t.ID]
		entries[i] = types.Entry{
			TeamID:    t.ID,
			TeamName:  t.Name,
			Acronym:   t.Acronym,
			Points:    hof.Overall,
			LastThree: hof.LastThree,
		}
	}
	slices.SortStableFunc(entries, func(a, b types.Entry) int {
		if c := cmp.Compare(b.Points, a.Points); c != 0 {
			return c
		}
		if c := cmp.Compare(b.LastThree, a.LastThree); c != 0 {
			return c
		}
		return cmp.Compare(a.TeamName, b.TeamName)
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
