// Package bidding values free-agent contract offers so competing bids can be ranked.
package bidding

import (
	"cmp"
	"math"
	"slices"

	"github.com/okian/fantaleague/internal/domain/model"
)

// Valuation constants.
const (
	valueUnit          = 100_000
	neutralGuaranteed  = 0.25
	guaranteedScale    = 0.3
	guaranteedExponent = 0.75
	lowGuaranteedMark  = 0.20
	lowGuaranteedScale = 2.5
	noTradeBonus       = 1.04
)

// lengthModifiers is indexed by contract length in years; longer deals are worth less.
var lengthModifiers = [...]float64{1: 1.0, 2: 0.95, 3: 0.9, 4: 0.85, 5: 0.8}

// GuaranteedModifier scores the guaranteed share g (fraction, clamped to 0-1).
// It is a signed power curve around g = 0.25 with an extra quadratic penalty
// below 20% guaranteed.
func GuaranteedModifier(g float64) float64 {
	if math.IsNaN(g) {
		g = 0
	}
	g = math.Max(0, math.Min(1, g))
	d := g - neutralGuaranteed
	mod := 1 + math.Copysign(guaranteedScale*math.Pow(math.Abs(d), guaranteedExponent), d)
	if g < lowGuaranteedMark {
		gap := lowGuaranteedMark - g
		mod -= lowGuaranteedScale * gap * gap
	}
	return mod
}

// LengthModifier returns the multiplier for a contract length. Lengths under
// one year count as one, five or more share the last entry.
func LengthModifier(years int) float64 {
	years = max(1, min(len(lengthModifiers)-1, years))
	return lengthModifiers[years]
}

// PointsValue returns the comparable value of an offer. One-year deals are
// always fully guaranteed.
func PointsValue(offer model.ContractOffer) float64 {
	g := offer.GuaranteedPct
	if offer.LengthYears <= 1 {
		g = 1
	}
	v := float64(offer.Value) / valueUnit * GuaranteedModifier(g) * LengthModifier(offer.LengthYears)
	if offer.NoTradeClause {
		v *= noTradeBonus
	}
	return v
}

// Rank orders bids by descending points value. Equal values go to the
// earlier submission, then to the lower bid id.
func Rank(bids []model.Bid) []model.RankedBid {
	ranked := make([]model.RankedBid, len(bids))
	for i, b := range bids {
		ranked[i] = model.RankedBid{Bid: b, Points: PointsValue(b.Offer)}
	}
	slices.SortStableFunc(ranked, func(a, b model.RankedBid) int {
		if c := cmp.Compare(b.Points, a.Points); c != 0 {
			return c
		}
		if c := a.SubmittedAt.Compare(b.SubmittedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}
