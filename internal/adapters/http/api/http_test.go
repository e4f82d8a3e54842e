package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/fantaleague/internal/adapters/http/api"
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
		},
		Players: []model.Player{
			{ID: "p1", LeagueID: "l1", TeamID: "t1", Name: "Keeper", Rating: 75, Positions: "GK", InternationalReputation: 2},
			{ID: "y1", LeagueID: "l1", TeamID: "t2", Name: "Kid One", Rating: 65, Positions: "CM", InternationalReputation: 1, Youngster: true},
		},
		HallOfFame: []model.HallOfFameRecord{
			{TeamID: "t1", Season: 1, Points: 30},
			{TeamID: "t2", Season: 1, Points: 40},
		},
		Stats: map[int][]model.YoungsterStat{
			2: {{Player: model.Player{ID: "y1"}, GamesPlayed: 38, AdjustedAverage: 7.5}},
		},
	}
}

func newTestServer(t *testing.T, started bool) (*service.Service, http.Handler) {
	t.Helper()
	svc := service.New(repository.NewMemoryStore(fixture()), service.WithWorkerCount(1), service.WithQueueSize(10))
	if started {
		if err := svc.Start(context.Background()); err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { _ = svc.Stop(context.Background()) })
	}
	return svc, api.NewServer(svc).Router()
}

func do(h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(rec *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return out
}

func TestHealthAndStats(t *testing.T) {
	Convey("Given a server over a memory store", t, func() {
		_, h := newTestServer(t, false)

		Convey("healthz reports the store", func() {
			rec := do(h, http.MethodGet, "/healthz", "", nil)
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(decode(rec)["status"], ShouldEqual, "ok")
		})

		Convey("stats returns the service snapshot", func() {
			rec := do(h, http.MethodGet, "/stats", "", nil)
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(decode(rec)["started"], ShouldEqual, false)
		})

		Convey("metrics exposes the registry", func() {
			do(h, http.MethodGet, "/healthz", "", nil)
			rec := do(h, http.MethodGet, "/metrics", "", nil)
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "fantaleague_api_")
		})
	})
}

func TestCalc(t *testing.T) {
	Convey("Given the calculator endpoints", t, func() {
		_, h := newTestServer(t, false)

		Convey("wage uses the defender column for goalkeepers", func() {
			rec := do(h, http.MethodGet, "/api/v1/calc/wage?rating=75&position=gk,cb", "", nil)
			So(rec.Code, ShouldEqual, http.StatusOK)
			body := decode(rec)
			So(body["position"], ShouldEqual, "GK")
			So(body["defender"], ShouldEqual, true)
			So(body["annual_wage"], ShouldEqual, float64(2_560_000))
		})

		Convey("merch is rounded to the nearest hundred thousand", func() {
			rec := do(h, http.MethodGet, "/api/v1/calc/merch?reputation=1&position=ST", "", nil)
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(decode(rec)["merch_value"], ShouldEqual, float64(1_000_000))
		})

		Convey("bad input is a 400", func() {
			So(do(h, http.MethodGet, "/api/v1/calc/wage?rating=abc&position=ST", "", nil).Code, ShouldEqual, http.StatusBadRequest)
			So(do(h, http.MethodGet, "/api/v1/calc/wage?rating=70", "", nil).Code, ShouldEqual, http.StatusBadRequest)
			rec := do(h, http.MethodGet, "/api/v1/calc/merch?position=ST", "", nil)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
			So(decode(rec)["code"], ShouldEqual, "bad_request")
		})
	})
}

func TestLeagueReports(t *testing.T) {
	Convey("Given a league", t, func() {
		_, h := newTestServer(t, false)

		Convey("the competitive index is served", func() {
			rec := do(h, http.MethodGet, "/api/v1/leagues/l1/competitive-index", "", nil)
			So(rec.Code, ShouldEqual, http.StatusOK)
			body := decode(rec)
			So(body["league_average"], ShouldEqual, float64(78))
			So(len(body["teams"].([]any)), ShouldEqual, 2)
		})

		Convey("the hall of fame is ranked", func() {
			rec := do(h, http.MethodGet, "/api/v1/leagues/l1/hall-of-fame", "", nil)
			So(rec.Code, ShouldEqual, http.StatusOK)
			entries := decode(rec)["entries"].([]any)
			So(entries[0].(map[string]any)["team_id"], ShouldEqual, "t2")
		})

		Convey("an unknown league is a 404", func() {
			rec := do(h, http.MethodGet, "/api/v1/leagues/nope/competitive-index", "", nil)
			So(rec.Code, ShouldEqual, http.StatusNotFound)
			So(decode(rec)["code"], ShouldEqual, "not_found")
		})

		Convey("team finances default to a full season", func() {
			rec := do(h, http.MethodGet, "/api/v1/leagues/l1/teams/t1/finances", "", nil)
			So(rec.Code, ShouldEqual, http.StatusOK)
			body := decode(rec)
			So(body["games_played"], ShouldEqual, float64(38))
			So(body["wage_bill"], ShouldEqual, float64(2_560_000))
		})

		Convey("team finances reject bad games_played", func() {
			So(do(h, http.MethodGet, "/api/v1/leagues/l1/teams/t1/finances?games_played=-1", "", nil).Code, ShouldEqual, http.StatusBadRequest)
			So(do(h, http.MethodGet, "/api/v1/leagues/l1/teams/t1/finances?games_played=x", "", nil).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("a team outside the league is a 404", func() {
			So(do(h, http.MethodGet, "/api/v1/leagues/l1/teams/zz/finances", "", nil).Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestRankBids(t *testing.T) {
	Convey("Given bids posted for ranking", t, func() {
		_, h := newTestServer(t, false)
		path := "/api/v1/leagues/l1/free-agents/bids/rank"

		Convey("they are returned best first with percentages", func() {
			body := `{"bids":[
				{"id":"b1","team_id":"t1","value":1000000,"guaranteed_pct":25,"length_years":2,"submitted_at":"2026-01-01T12:00:00Z"},
				{"id":"b2","team_id":"t2","value":2000000,"guaranteed_pct":25,"length_years":2,"submitted_at":"2026-01-01T12:00:00Z"}
			]}`
			rec := do(h, http.MethodPost, path, body, nil)
			So(rec.Code, ShouldEqual, http.StatusOK)
			bids := decode(rec)["bids"].([]any)
			So(len(bids), ShouldEqual, 2)
			first := bids[0].(map[string]any)
			So(first["id"], ShouldEqual, "b2")
			So(first["rank"], ShouldEqual, float64(1))
			So(first["guaranteed_pct"], ShouldEqual, float64(25))
		})

		Convey("invalid bids are a 400", func() {
			So(do(h, http.MethodPost, path, `{"bids":[]}`, nil).Code, ShouldEqual, http.StatusBadRequest)
			So(do(h, http.MethodPost, path, `not json`, nil).Code, ShouldEqual, http.StatusBadRequest)
			So(do(h, http.MethodPost, path, `{"bids":[{"team_id":"t1","value":1,"guaranteed_pct":120,"length_years":1}]}`, nil).Code,
				ShouldEqual, http.StatusBadRequest)
			So(do(h, http.MethodPost, path, `{"bids":[{"team_id":"zz","value":1,"guaranteed_pct":10,"length_years":1}]}`, nil).Code,
				ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestProgression(t *testing.T) {
	host := map[string]string{api.SubjectHeader: "sub-host"}

	Convey("Given a started service", t, func() {
		_, h := newTestServer(t, true)
		path := "/api/v1/leagues/l1/progression"

		Convey("only the host may start a run", func() {
			So(do(h, http.MethodPost, path, "", nil).Code, ShouldEqual, http.StatusForbidden)
			So(do(h, http.MethodPost, path, "", map[string]string{api.SubjectHeader: "sub-guest"}).Code, ShouldEqual, http.StatusForbidden)
		})

		Convey("a negative season is rejected", func() {
			So(do(h, http.MethodPost, path, `{"season":-1}`, host).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("the host's run completes and is readable", func() {
			rec := do(h, http.MethodPost, path, "", host)
			So(rec.Code, ShouldEqual, http.StatusAccepted)
			started := decode(rec)
			statusURL := started["status_url"].(string)
			So(rec.Header().Get("Location"), ShouldEqual, statusURL)

			var body map[string]any
			deadline := time.Now().Add(2 * time.Second)
			for {
				res := do(h, http.MethodGet, statusURL, "", nil)
				So(res.Code, ShouldEqual, http.StatusOK)
				body = decode(res)
				if body["status"] == string(service.BatchCompleted) || time.Now().After(deadline) {
					break
				}
				time.Sleep(5 * time.Millisecond)
			}
			So(body["status"], ShouldEqual, string(service.BatchCompleted))
			So(body["completed"], ShouldEqual, float64(1))
			result := body["results"].([]any)[0].(map[string]any)
			So(result["player_id"], ShouldEqual, "y1")
			So(result["new_rating"], ShouldEqual, float64(70))

			Convey("but not under another league", func() {
				other := strings.Replace(statusURL, "/l1/", "/l2/", 1)
				So(do(h, http.MethodGet, other, "", nil).Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("an unknown batch is a 404", func() {
			So(do(h, http.MethodGet, path+"/missing", "", nil).Code, ShouldEqual, http.StatusNotFound)
		})
	})

	Convey("Given a service that was never started", t, func() {
		_, h := newTestServer(t, false)
		rec := do(h, http.MethodPost, "/api/v1/leagues/l1/progression", `{"season":2}`, host)
		So(rec.Code, ShouldEqual, http.StatusServiceUnavailable)
	})
}
