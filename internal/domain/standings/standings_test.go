package standings_test

import (
	"testing"

	"github.com/okian/fantaleague/internal/domain/model"
	"github.com/okian/fantaleague/internal/domain/standings"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAggregateHallOfFame(t *testing.T) {
	Convey("Given one team's Hall-of-Fame history", t, func() {
		records := []model.HallOfFameRecord{
			{TeamID: "t1", Season: 3, Points: 5},
			{TeamID: "t1", Season: 1, Points: 10},
			{TeamID: "t1", Season: 4, Points: 15},
			{TeamID: "t1", Season: 2, Points: 20},
		}

		totals := standings.AggregateHallOfFame(records)

		Convey("Then overall sums every season", func() {
			So(totals["t1"].Overall, ShouldEqual, 50)
		})

		Convey("And last three sums seasons 2, 3 and 4", func() {
			So(totals["t1"].LastThree, ShouldEqual, 40)
		})
	})

	Convey("Given teams with short histories", t, func() {
		records := []model.HallOfFameRecord{
			{TeamID: "a", Season: 1, Points: 7},
			{TeamID: "b", Season: 1, Points: 3},
			{TeamID: "b", Season: 2, Points: 4},
		}
		totals := standings.AggregateHallOfFame(records)

		Convey("Then every season counts as recent", func() {
			So(totals["a"], ShouldResemble, standings.HallOfFameTotals{Overall: 7, LastThree: 7})
			So(totals["b"], ShouldResemble, standings.HallOfFameTotals{Overall: 7, LastThree: 7})
		})

		Convey("And unknown teams have no totals", func() {
			_, ok := totals["c"]
			So(ok, ShouldBeFalse)
		})
	})
}

func TestLeagueAverage(t *testing.T) {
	Convey("Given teams with competitive indices", t, func() {
		teams := []model.Team{{CompIndex: 10}, {CompIndex: 0}, {CompIndex: 14}}

		Convey("Then zero indices are ignored", func() {
			So(standings.LeagueAverage(teams), ShouldEqual, 12)
		})

		Convey("And a league without indices averages 0", func() {
			So(standings.LeagueAverage([]model.Team{{}, {}}), ShouldEqual, 0)
			So(standings.LeagueAverage(nil), ShouldEqual, 0)
		})
	})
}

func TestClassify(t *testing.T) {
	Convey("Given a league average of 50", t, func() {
		const avg = 50.0

		Convey("Then a zero index is always N/A", func() {
			So(standings.Classify(0, avg), ShouldEqual, standings.SituationNA)
			So(standings.Classify(0, 0), ShouldEqual, standings.SituationNA)
			So(standings.Classify(0, -3), ShouldEqual, standings.SituationNA)
		})

		Convey("Then matching the average is inside", func() {
			So(standings.Classify(avg, avg), ShouldEqual, standings.SituationInside)
			So(standings.Classify(avg+1, avg), ShouldEqual, standings.SituationInside)
			So(standings.Classify(avg-1, avg), ShouldEqual, standings.SituationInside)
		})

		Convey("Then more than one point above is above average", func() {
			So(standings.Classify(avg+1.5, avg), ShouldEqual, standings.SituationAbove)
		})

		Convey("Then the band is asymmetric below the average", func() {
			// -1 to -2 is below average, not critical.
			So(standings.Classify(avg-1.5, avg), ShouldEqual, standings.SituationBelow)
			So(standings.Classify(avg-2, avg), ShouldEqual, standings.SituationBelow)
			So(standings.Classify(avg-2.5, avg), ShouldEqual, standings.SituationCritical)
		})
	})
}

func TestBuildReport(t *testing.T) {
	Convey("Given a league", t, func() {
		teams := []model.Team{
			{ID: "t1", Name: "Rovers", Acronym: "ROV", CompIndex: 12},
			{ID: "t2", Name: "United", Acronym: "UTD", CompIndex: 8},
			{ID: "t3", Name: "Athletic", Acronym: "ATH"},
		}
		records := []model.HallOfFameRecord{
			{TeamID: "t1", Season: 1, Points: 10},
			{TeamID: "t2", Season: 1, Points: 6},
			{TeamID: "t2", Season: 2, Points: 9},
		}

		report := standings.BuildReport(teams, records)

		Convey("Then the average covers rated teams only", func() {
			So(report.LeagueAverage, ShouldEqual, 10)
		})

		Convey("And each team is classified in input order", func() {
			So(report.Teams, ShouldHaveLength, 3)
			So(report.Teams[0].Situation, ShouldEqual, standings.SituationAbove)
			So(report.Teams[0].Gap, ShouldEqual, 2)
			So(report.Teams[1].Situation, ShouldEqual, standings.SituationBelow)
			So(report.Teams[2].Situation, ShouldEqual, standings.SituationNA)
		})

		Convey("And Hall-of-Fame totals are attached", func() {
			So(report.Teams[1].Overall, ShouldEqual, 15)
			So(report.Teams[1].LastThree, ShouldEqual, 15)
			So(report.Teams[2].Overall, ShouldEqual, 0)
		})
	})
}

func TestHallOfFameRanking(t *testing.T) {
	Convey("Given teams with Hall-of-Fame points", t, func() {
		teams := []model.Team{
			{ID: "t1", Name: "Rovers"},
			{ID: "t2", Name: "Albion"},
			{ID: "t3", Name: "City"},
			{ID: "t4", Name: "Borough"},
		}
		records := []model.HallOfFameRecord{
			{TeamID: "t1", Season: 1, Points: 20},
			{TeamID: "t2", Season: 1, Points: 5},
			{TeamID: "t2", Season: 5, Points: 15},
			{TeamID: "t3", Season: 1, Points: 30},
		}

		ranking := standings.HallOfFameRanking(teams, records)

		Convey("Then teams are ordered by overall points", func() {
			So(ranking[0].TeamID, ShouldEqual, "t3")
			So(ranking[0].Rank, ShouldEqual, 1)
		})

		Convey("And equal totals fall back to recent points then name", func() {
			So(ranking[1].TeamID, ShouldEqual, "t2")
			So(ranking[2].TeamID, ShouldEqual, "t1")
			So(ranking[3].TeamID, ShouldEqual, "t4")
			So(ranking[3].Points, ShouldEqual, 0)
		})
	})
}
