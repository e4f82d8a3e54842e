// Package finance holds the club revenue and wage formulas: the wage
// table, merchandise value and the stadium attendance model.
package finance

import (
	"strings"

	"github.com/okian/fantaleague/internal/domain/model"
)

// Wage table bounds.
const (
	minTableRating   = 53
	maxTableRating   = 95
	floorWageRating  = 60 // ratings below the table reuse this row
	positionSplitter = ","
)

// defenderPositions are the primary positions paid and merchandised as defenders.
var defenderPositions = map[string]struct{}{
	"GK":  {},
	"CB":  {},
	"LB":  {},
	"RB":  {},
	"LWB": {},
	"RWB": {},
	"CDM": {},
}

type wageRow struct {
	defender int64
	attacker int64
}

// wageTable maps overall rating to annual wage. Rows 53-60 share the floor wage.
var wageTable = map[int]wageRow{
	53: {defender: 500_000, attacker: 600_000},
	54: {defender: 500_000, attacker: 600_000},
	55: {defender: 500_000, attacker: 600_000},
	56: {defender: 500_000, attacker: 600_000},
	57: {defender: 500_000, attacker: 600_000},
	58: {defender: 500_000, attacker: 600_000},
	59: {defender: 500_000, attacker: 600_000},
	60: {defender: 500_000, attacker: 600_000},
	61: {defender: 560_000, attacker: 670_000},
	62: {defender: 620_000, attacker: 750_000},
	63: {defender: 690_000, attacker: 830_000},
	64: {defender: 770_000, attacker: 930_000},
	65: {defender: 860_000, attacker: 1_030_000},
	66: {defender: 960_000, attacker: 1_150_000},
	67: {defender: 1_070_000, attacker: 1_290_000},
	68: {defender: 1_190_000, attacker: 1_430_000},
	69: {defender: 1_330_000, attacker: 1_600_000},
	70: {defender: 1_480_000, attacker: 1_780_000},
	71: {defender: 1_660_000, attacker: 1_990_000},
	72: {defender: 1_850_000, attacker: 2_220_000},
	73: {defender: 2_060_000, attacker: 2_470_000},
	74: {defender: 2_300_000, attacker: 2_750_000},
	75: {defender: 2_560_000, attacker: 3_070_000},
	76: {defender: 2_850_000, attacker: 3_420_000},
	77: {defender: 3_180_000, attacker: 3_820_000},
	78: {defender: 3_550_000, attacker: 4_260_000},
	79: {defender: 3_960_000, attacker: 4_750_000},
	80: {defender: 4_410_000, attacker: 5_290_000},
	81: {defender: 4_920_000, attacker: 5_900_000},
	82: {defender: 5_480_000, attacker: 6_580_000},
	83: {defender: 6_110_000, attacker: 7_340_000},
	84: {defender: 6_820_000, attacker: 8_180_000},
	85: {defender: 7_600_000, attacker: 9_120_000},
	86: {defender: 8_470_000, attacker: 10_170_000},
	87: {defender: 9_450_000, attacker: 11_340_000},
	88: {defender: 10_540_000, attacker: 12_640_000},
	89: {defender: 11_750_000, attacker: 14_100_000},
	90: {defender: 13_100_000, attacker: 15_720_000},
	91: {defender: 14_600_000, attacker: 17_530_000},
	92: {defender: 16_280_000, attacker: 19_540_000},
	93: {defender: 18_160_000, attacker: 21_790_000},
	94: {defender: 20_240_000, attacker: 24_290_000},
	95: {defender: 22_570_000, attacker: 27_090_000},
}

// PrimaryPosition returns the first position token, trimmed and upper-cased.
func PrimaryPosition(positions string) string {
	primary, _, _ := strings.Cut(positions, positionSplitter)
	return strings.ToUpper(strings.TrimSpace(primary))
}

// IsDefender reports whether the player's primary position is a defensive one.
func IsDefender(positions string) bool {
	_, ok := defenderPositions[PrimaryPosition(positions)]
	return ok
}

// AnnualWage returns the annual wage for a rating and position string.
// Ratings below the table use the rating-60 row, ratings above use the top row.
func AnnualWage(rating int, positions string) int64 {
	switch {
	case rating < minTableRating:
		rating = floorWageRating
	case rating > maxTableRating:
		rating = maxTableRating
	}
	row := wageTable[rating]
	if IsDefender(positions) {
		return row.defender
	}
	return row.attacker
}

// WageBill sums the annual wages of a squad.
func WageBill(players []model.Player) int64 {
	var total int64
	for _, p := range players {
		total += AnnualWage(p.Rating, p.Positions)
	}
	return total
}
