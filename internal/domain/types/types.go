// Package types contains common types used across the application
package types

// Entry represents a Hall-of-Fame ranking row
type Entry struct {
	Rank      int    `json:"rank"`
	TeamID    string `json:"team_id"`
	TeamName  string `json:"team_name"`
	Acronym   string `json:"acronym"`
	Points    int    `json:"hof_overall"`
	LastThree int    `json:"hof_last_3"`
}
