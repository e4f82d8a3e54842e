package repository

import (
	"fmt"

	"github.com/okian/fantaleague/internal/domain/model"
)

// Demo identifiers, exported for local smoke tests against the memory store.
const (
	DemoLeagueID    = "demo"
	DemoHostSubject = "demo-host-subject"
	DemoHostUserID  = "u-host"
)

var demoPositions = []string{"GK", "CB", "CB", "LB", "RB", "CDM", "CM", "CM", "CAM", "LW", "RW", "ST", "ST", "CB,RB", "CM,CDM", "ST,LW"}

// DemoFixture returns a small deterministic league for development mode.
func DemoFixture() Fixture {
	const season = 3
	f := Fixture{
		Leagues: []model.League{{ID: DemoLeagueID, Name: "Demo League", HostUserID: DemoHostUserID, Season: season}},
		Subjects: map[string]string{
			DemoHostSubject: DemoHostUserID,
			"demo-guest":    "u-guest",
		},
		Stats: map[int][]model.YoungsterStat{},
	}

	clubs := []struct {
		id, name, acronym, focus, perf string
		merch                          float64
		capacity                       int
		comp                           float64
		strength                       int
	}{
		{"t-ars", "Arsenal Rovers", "ARS", "core_fanbase", "continental_semi_final", 45, 60000, 78.4, 82},
		{"t-bri", "Brighton Albion", "BRI", "local_casuals", "domestic_only", 30, 32000, 74.1, 74},
		{"t-cel", "Celtic Harbour", "CEL", "tourists", "secondary_knockout", 35, 55000, 76.0, 77},
		{"t-der", "Derby Rangers", "DER", "hospitality", "relegation_battle", 20, 28000, 71.2, 69},
	}

	for ci, c := range clubs {
		f.Teams = append(f.Teams, model.Team{
			ID: c.id, LeagueID: DemoLeagueID, Name: c.name, Acronym: c.acronym,
			MerchPct: c.merch, StadiumCapacity: c.capacity,
			VisitorFocus: c.focus, SeasonalPerformance: c.perf, CompIndex: c.comp,
		})
		for i, pos := range demoPositions {
			p := model.Player{
				ID:                      fmt.Sprintf("%s-p%02d", c.id, i+1),
				LeagueID:                DemoLeagueID,
				TeamID:                  c.id,
				Name:                    fmt.Sprintf("%s Player %d", c.acronym, i+1),
				Rating:                  c.strength + 6 - (i*7)%13,
				Positions:               pos,
				InternationalReputation: 1 + (c.strength-60+i*3)%5,
				Youngster:               i >= len(demoPositions)-3,
			}
			f.Players = append(f.Players, p)
			if p.Youngster {
				f.Stats[season] = append(f.Stats[season], model.YoungsterStat{
					Player:          p,
					GamesPlayed:     10 + (i*5+ci*7)%29,
					AdjustedAverage: 6.0 + float64((i+ci*3)%8)*0.25,
				})
			}
		}
		for s := 1; s <= season; s++ {
			pos := (ci+s)%len(clubs) + 1
			f.HallOfFame = append(f.HallOfFame, model.HallOfFameRecord{
				TeamID: c.id, Season: s, Position: pos, Points: (len(clubs) - pos + 1) * 10,
			})
		}
	}
	return f
}
