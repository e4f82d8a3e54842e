package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/fantaleague/internal/adapters/cache"
	"github.com/okian/fantaleague/internal/adapters/repository"
	service "github.com/okian/fantaleague/internal/app"
	"github.com/okian/fantaleague/internal/domain/model"
	"github.com/okian/fantaleague/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func fixture() repository.Fixture {
	return repository.Fixture{
		Leagues:  []model.League{{ID: "l1", Name: "One", HostUserID: "u-host", Season: 2}},
		Subjects: map[string]string{"sub-host": "u-host", "sub-guest": "u-guest"},
		Teams: []model.Team{
			{ID: "t1", LeagueID: "l1", Name: "Alpha", Acronym: "ALP", MerchPct: 50, StadiumCapacity: 40000,
				VisitorFocus: "local_casuals", SeasonalPerformance: "continental_winner", CompIndex: 80},
			{ID: "t2", LeagueID: "l1", Name: "Bravo", Acronym: "BRA", CompIndex: 76},
			{ID: "t3", LeagueID: "l1", Name: "Charlie", Acronym: "CHA", CompIndex: 0},
		},
		Players: []model.Player{
			{ID: "p1", LeagueID: "l1", TeamID: "t1", Name: "Keeper", Rating: 75, Positions: "GK", InternationalReputation: 2},
			{ID: "p2", LeagueID: "l1", TeamID: "t1", Name: "Striker", Rating: 75, Positions: "ST", InternationalReputation: 3},
			{ID: "y1", LeagueID: "l1", TeamID: "t2", Name: "Kid One", Rating: 65, Positions: "CM", InternationalReputation: 1, Youngster: true},
			{ID: "y2", LeagueID: "l1", TeamID: "t2", Name: "Kid Two", Rating: 70, Positions: "CB", InternationalReputation: 1, Youngster: true},
		},
		HallOfFame: []model.HallOfFameRecord{
			{TeamID: "t1", Season: 1, Points: 30},
			{TeamID: "t2", Season: 1, Points: 40},
		},
		Stats: map[int][]model.YoungsterStat{
			2: {
				{Player: model.Player{ID: "y1"}, GamesPlayed: 38, AdjustedAverage: 7.5},
				{Player: model.Player{ID: "y2"}, GamesPlayed: 38, AdjustedAverage: 5.5},
			},
		},
	}
}

func waitBatch(svc *service.Service, id string) service.Batch {
	deadline := time.Now().Add(2 * time.Second)
	for {
		b, err := svc.ProgressionBatch(context.Background(), id)
		if err == nil && (b.Status == service.BatchCompleted || time.Now().After(deadline)) {
			return b
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		ctx := context.Background()
		svc := service.New(repository.NewMemoryStore(fixture()), service.WithWorkerCount(2), service.WithQueueSize(10))

		Convey("Progression is refused before Start", func() {
			_, err := svc.StartProgression(ctx, "l1", 0)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})

		Convey("Start and Stop are idempotent", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, true)
			So(stats["worker_count"], ShouldEqual, 2)
			So(svc.Stop(ctx), ShouldBeNil)
			So(svc.Stop(ctx), ShouldBeNil)
			So(svc.GetStats()["started"], ShouldEqual, false)
		})
	})
}

func TestService_IsLeagueHost(t *testing.T) {
	Convey("Given a service over a league", t, func() {
		ctx := context.Background()
		svc := service.New(repository.NewMemoryStore(fixture()))

		Convey("The host subject is recognised", func() {
			ok, err := svc.IsLeagueHost(ctx, "l1", "sub-host")
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
		})

		Convey("Other and unknown subjects are not hosts", func() {
			ok, err := svc.IsLeagueHost(ctx, "l1", "sub-guest")
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
			ok, err = svc.IsLeagueHost(ctx, "l1", "nobody")
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
			ok, err = svc.IsLeagueHost(ctx, "l1", "")
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})

		Convey("An unknown league is not found", func() {
			_, err := svc.IsLeagueHost(ctx, "nope", "sub-host")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestService_Reports(t *testing.T) {
	Convey("Given a service with a memory cache", t, func() {
		ctx := context.Background()
		c := cache.NewMemoryCache(time.Minute)
		svc := service.New(repository.NewMemoryStore(fixture()), service.WithCache(c))

		Convey("The competitive index classifies against the non-zero average", func() {
			r, err := svc.CompetitiveIndex(ctx, "l1")
			So(err, ShouldBeNil)
			So(r.LeagueAverage, ShouldEqual, 78)
			So(len(r.Teams), ShouldEqual, 3)
			So(c.Len(), ShouldEqual, 1)

			again, err := svc.CompetitiveIndex(ctx, "l1")
			So(err, ShouldBeNil)
			So(again, ShouldResemble, r)
		})

		Convey("The Hall of Fame ranks by overall points", func() {
			entries, err := svc.HallOfFame(ctx, "l1")
			So(err, ShouldBeNil)
			So(entries[0].TeamID, ShouldEqual, "t2")
			So(entries[0].Rank, ShouldEqual, 1)
			So(entries[1].TeamID, ShouldEqual, "t1")
		})

		Convey("Unknown leagues are not found and not cached", func() {
			_, err := svc.CompetitiveIndex(ctx, "nope")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			So(c.Len(), ShouldEqual, 0)
		})

		Convey("RefreshLeagues repopulates both reports", func() {
			n, err := svc.RefreshLeagues(ctx)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 1)
			So(c.Len(), ShouldEqual, 2)
		})
	})
}

func TestService_TeamFinances(t *testing.T) {
	Convey("Given a team with two players", t, func() {
		ctx := context.Background()
		svc := service.New(repository.NewMemoryStore(fixture()), service.WithSeasonGames(38))

		Convey("A full season uses the configured length", func() {
			f, err := svc.TeamFinances(ctx, "l1", "t1", service.FullSeason)
			So(err, ShouldBeNil)
			So(f.GamesPlayed, ShouldEqual, 38)
			So(f.SquadSize, ShouldEqual, 2)
			So(f.WageBill, ShouldEqual, 2_560_000+3_070_000)
			So(f.Attendance, ShouldEqual, 40000)
			So(f.StadiumRevenue, ShouldEqual, 45_600_000)
			So(f.Net, ShouldEqual, f.MerchRevenue+f.StadiumRevenue-f.WageBill)
		})

		Convey("Zero games means no stadium revenue", func() {
			f, err := svc.TeamFinances(ctx, "l1", "t1", 0)
			So(err, ShouldBeNil)
			So(f.StadiumRevenue, ShouldEqual, 0)
		})

		Convey("Negative games are rejected", func() {
			_, err := svc.TeamFinances(ctx, "l1", "t1", -5)
			So(errors.Is(err, service.ErrInvalidArgument), ShouldBeTrue)
		})

		Convey("A team from another league is not found", func() {
			_, err := svc.TeamFinances(ctx, "l2", "t1", 10)
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestService_RankBids(t *testing.T) {
	Convey("Given bids from league teams", t, func() {
		ctx := context.Background()
		svc := service.New(repository.NewMemoryStore(fixture()))
		at := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

		Convey("They are ranked by points and missing ids are filled", func() {
			ranked, err := svc.RankBids(ctx, "l1", []model.Bid{
				{TeamID: "t1", Offer: model.ContractOffer{Value: 1_000_000, GuaranteedPct: 0.25, LengthYears: 2}, SubmittedAt: at},
				{ID: "b2", TeamID: "t2", Offer: model.ContractOffer{Value: 2_000_000, GuaranteedPct: 0.25, LengthYears: 2}, SubmittedAt: at},
			})
			So(err, ShouldBeNil)
			So(len(ranked), ShouldEqual, 2)
			So(ranked[0].ID, ShouldEqual, "b2")
			So(ranked[0].Rank, ShouldEqual, 1)
			So(ranked[1].ID, ShouldNotBeEmpty)
		})

		Convey("A bid from an outside team is rejected", func() {
			_, err := svc.RankBids(ctx, "l1", []model.Bid{{TeamID: "zz"}})
			So(errors.Is(err, service.ErrInvalidArgument), ShouldBeTrue)
		})
	})
}

func TestService_Progression(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore(fixture())
		c := cache.NewMemoryCache(time.Minute)
		svc := service.New(store, service.WithCache(c), service.WithWorkerCount(2), service.WithQueueSize(10))
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		_, err := svc.CompetitiveIndex(ctx, "l1")
		So(err, ShouldBeNil)

		Convey("When progression runs for the current season", func() {
			id, err := svc.StartProgression(ctx, "l1", 0)
			So(err, ShouldBeNil)
			b := waitBatch(svc, id)

			Convey("Then every youngster is ranked by delta", func() {
				So(b.Status, ShouldEqual, service.BatchCompleted)
				So(b.Season, ShouldEqual, 2)
				So(b.Queued, ShouldEqual, 2)
				So(b.Completed, ShouldEqual, 2)
				So(b.Results[0].PlayerID, ShouldEqual, "y1")
				So(b.Results[0].Rank, ShouldEqual, 1)
				So(b.Results[0].Delta, ShouldEqual, 5)
				So(b.Results[0].NewRating, ShouldEqual, 70)
				So(b.Results[1].Delta, ShouldEqual, -3)
				So(b.Results[1].NewRating, ShouldEqual, 67)
			})

			Convey("Then the league's cached reports are dropped", func() {
				So(c.Len(), ShouldEqual, 0)
			})

			Convey("Then a second run for the same season is all duplicates", func() {
				id2, err := svc.StartProgression(ctx, "l1", 2)
				So(err, ShouldBeNil)
				b2 := waitBatch(svc, id2)
				So(b2.Queued, ShouldEqual, 0)
				So(b2.Duplicates, ShouldEqual, 2)
				So(b2.Status, ShouldEqual, service.BatchCompleted)

				sq, err := store.Squad(ctx, "l1", "t2")
				So(err, ShouldBeNil)
				So(sq[0].Rating, ShouldEqual, 70)
			})
		})

		Convey("An unknown batch is not found", func() {
			_, err := svc.ProgressionBatch(ctx, "missing")
			So(errors.Is(err, service.ErrBatchNotFound), ShouldBeTrue)
		})

		Convey("An unknown league is not found", func() {
			_, err := svc.StartProgression(ctx, "nope", 0)
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestService_Backpressure(t *testing.T) {
	Convey("Given a queue too small for the league's youngsters", t, func() {
		ctx := context.Background()
		svc := service.New(repository.NewMemoryStore(fixture()), service.WithWorkerCount(1), service.WithQueueSize(1))
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		Convey("Then the run is refused and can be retried later", func() {
			_, err := svc.StartProgression(ctx, "l1", 0)
			So(errors.Is(err, service.ErrBackpressure), ShouldBeTrue)
			So(svc.GetStats()["dedupe_size"], ShouldEqual, int64(0))
		})
	})
}
