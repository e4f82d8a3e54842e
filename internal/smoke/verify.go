package smoke

import (
	"errors"
	"fmt"
	"math"
)

// ErrInconsistent is returned when a response breaks an ordering guarantee.
var ErrInconsistent = errors.New("inconsistent response")

const floatTolerance = 1e-9

// verifyRanked checks that got is a permutation of sent, ranked 1..n by
// non-increasing points.
func verifyRanked(sent []Bid, got []rankedBid) error {
	if len(got) != len(sent) {
		return fmt.Errorf("%w: sent %d bids, ranked %d", ErrInconsistent, len(sent), len(got))
	}
	ids := make(map[string]struct{}, len(sent))
	for _, b := range sent {
		ids[b.ID] = struct{}{}
	}
	for i, rb := range got {
		if rb.Rank != i+1 {
			return fmt.Errorf("%w: bid %s at position %d has rank %d", ErrInconsistent, rb.ID, i+1, rb.Rank)
		}
		if i > 0 && rb.Points > got[i-1].Points+floatTolerance {
			return fmt.Errorf("%w: bid %s outranks a lower-scored bid", ErrInconsistent, rb.ID)
		}
		if _, ok := ids[rb.ID]; !ok {
			return fmt.Errorf("%w: unknown bid %s in ranking", ErrInconsistent, rb.ID)
		}
		delete(ids, rb.ID)
	}
	return nil
}

// verifyCompetitiveIndex recomputes the league average from the rows.
func verifyCompetitiveIndex(r competitiveIndex) error {
	var sum float64
	var n int
	for _, t := range r.Teams {
		if t.Situation == "" {
			return fmt.Errorf("%w: team %s has no situation", ErrInconsistent, t.TeamID)
		}
		if t.CompIndex != 0 {
			sum += t.CompIndex
			n++
		}
	}
	want := 0.0
	if n > 0 {
		want = sum / float64(n)
	}
	if math.Abs(want-r.LeagueAverage) > 1e-6 {
		return fmt.Errorf("%w: league average %.4f, rows give %.4f", ErrInconsistent, r.LeagueAverage, want)
	}
	return nil
}

// verifyHallOfFame checks ranks are contiguous and overall points never rise.
func verifyHallOfFame(entries []hallOfFameEntry) error {
	for i, e := range entries {
		if e.Rank != i+1 {
			return fmt.Errorf("%w: team %s at position %d has rank %d", ErrInconsistent, e.TeamID, i+1, e.Rank)
		}
		if i > 0 && e.Overall > entries[i-1].Overall {
			return fmt.Errorf("%w: team %s outranks a team with fewer points", ErrInconsistent, e.TeamID)
		}
	}
	return nil
}

// verifyFinances checks the net figure adds up.
func verifyFinances(f finances) error {
	if want := f.MerchRevenue + f.Stadium - f.WageBill; f.Net != want {
		return fmt.Errorf("%w: team %s net %d, components give %d", ErrInconsistent, f.TeamID, f.Net, want)
	}
	return nil
}

// verifyBatch checks a completed progression batch.
func verifyBatch(b batch) error {
	if b.Completed+b.Failed != b.Queued {
		return fmt.Errorf("%w: %d queued but %d completed and %d failed", ErrInconsistent, b.Queued, b.Completed, b.Failed)
	}
	for i, r := range b.Results {
		if r.Rank != i+1 {
			return fmt.Errorf("%w: player %s at position %d has rank %d", ErrInconsistent, r.PlayerID, i+1, r.Rank)
		}
		if i > 0 && r.Delta > b.Results[i-1].Delta {
			return fmt.Errorf("%w: player %s outranks a larger upgrade", ErrInconsistent, r.PlayerID)
		}
	}
	return nil
}
