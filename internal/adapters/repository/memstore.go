package repository

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/okian/fantaleague/internal/domain/model"
)

// Rating bounds enforced by apply_youngster_upgrade.
const (
	MinRating = 40
	MaxRating = 99
)

// Fixture is a snapshot of league rows used to seed a MemoryStore.
type Fixture struct {
	Leagues []model.League
	// Subjects maps identity-provider subjects to user ids.
	Subjects   map[string]string
	Teams      []model.Team
	Players    []model.Player
	HallOfFame []model.HallOfFameRecord
	// Stats holds youngster season stats keyed by season.
	Stats map[int][]model.YoungsterStat
}

// MemoryStore is a Store held in process memory. It backs development
// mode and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	closed   bool
	leagues  map[string]model.League
	subjects map[string]string
	teams    map[string]model.Team   // by team id
	players  map[string]model.Player // by player id
	hof      []model.HallOfFameRecord
	stats    map[int]map[string]model.YoungsterStat // season -> player id
}

// NewMemoryStore returns a store seeded with the fixture.
func NewMemoryStore(f Fixture) *MemoryStore {
	s := &MemoryStore{
		leagues:  make(map[string]model.League, len(f.Leagues)),
		subjects: make(map[string]string, len(f.Subjects)),
		teams:    make(map[string]model.Team, len(f.Teams)),
		players:  make(map[string]model.Player, len(f.Players)),
		hof:      slices.Clone(f.HallOfFame),
		stats:    make(map[int]map[string]model.YoungsterStat, len(f.Stats)),
	}
	for _, l := range f.Leagues {
		s.leagues[l.ID] = l
	}
	for sub, id := range f.Subjects {
		s.subjects[sub] = id
	}
	for _, t := range f.Teams {
		s.teams[t.ID] = t
	}
	for _, p := range f.Players {
		p.Rating = min(max(p.Rating, MinRating), MaxRating)
		s.players[p.ID] = p
	}
	for season, list := range f.Stats {
		bySeason := make(map[string]model.YoungsterStat, len(list))
		for _, ys := range list {
			bySeason[ys.Player.ID] = ys
		}
		s.stats[season] = bySeason
	}
	return s
}

func (s *MemoryStore) check() error {
	if s.closed {
		return ErrClosed
	}
	return nil
}

// League implements Store.
func (s *MemoryStore) League(_ context.Context, leagueID string) (model.League, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return model.League{}, err
	}
	l, ok := s.leagues[leagueID]
	if !ok {
		return model.League{}, fmt.Errorf("league %s: %w", leagueID, ErrNotFound)
	}
	return l, nil
}

// Leagues implements Store.
func (s *MemoryStore) Leagues(_ context.Context) ([]model.League, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return nil, err
	}
	out := make([]model.League, 0, len(s.leagues))
	for _, l := range s.leagues {
		out = append(out, l)
	}
	slices.SortFunc(out, func(a, b model.League) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

// UserIDForSubject implements Store.
func (s *MemoryStore) UserIDForSubject(_ context.Context, subject string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return "", err
	}
	id, ok := s.subjects[subject]
	if !ok {
		return "", fmt.Errorf("user: %w", ErrNotFound)
	}
	return id, nil
}

// Teams implements Store.
func (s *MemoryStore) Teams(_ context.Context, leagueID string) ([]model.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return nil, err
	}
	var out []model.Team
	for _, t := range s.teams {
		if t.LeagueID == leagueID {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b model.Team) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

// Team implements Store.
func (s *MemoryStore) Team(_ context.Context, leagueID, teamID string) (model.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return model.Team{}, err
	}
	t, ok := s.teams[teamID]
	if !ok || t.LeagueID != leagueID {
		return model.Team{}, fmt.Errorf("team %s: %w", teamID, ErrNotFound)
	}
	return t, nil
}

// Squad implements Store.
func (s *MemoryStore) Squad(_ context.Context, leagueID, teamID string) ([]model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return nil, err
	}
	var out []model.Player
	for _, p := range s.players {
		if p.LeagueID == leagueID && p.TeamID == teamID {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b model.Player) int {
		if c := cmp.Compare(b.Rating, a.Rating); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out, nil
}

// HallOfFame implements Store.
func (s *MemoryStore) HallOfFame(_ context.Context, leagueID string) ([]model.HallOfFameRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return nil, err
	}
	var out []model.HallOfFameRecord
	for _, r := range s.hof {
		if t, ok := s.teams[r.TeamID]; ok && t.LeagueID == leagueID {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(a, b model.HallOfFameRecord) int { return cmp.Compare(a.Season, b.Season) })
	return out, nil
}

// Youngsters implements Store. Player fields reflect the current rating.
func (s *MemoryStore) Youngsters(_ context.Context, leagueID string, season int) ([]model.YoungsterStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return nil, err
	}
	var out []model.YoungsterStat
	for id, ys := range s.stats[season] {
		p, ok := s.players[id]
		if !ok || p.LeagueID != leagueID || !p.Youngster {
			continue
		}
		ys.Player = p
		out = append(out, ys)
	}
	slices.SortFunc(out, func(a, b model.YoungsterStat) int { return cmp.Compare(a.Player.ID, b.Player.ID) })
	return out, nil
}

// ApplyYoungsterUpgrade implements Store, clamping to [MinRating, MaxRating].
func (s *MemoryStore) ApplyYoungsterUpgrade(_ context.Context, leagueID, playerID string, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return 0, err
	}
	p, ok := s.players[playerID]
	if !ok || p.LeagueID != leagueID {
		return 0, fmt.Errorf("player %s: %w", playerID, ErrNotFound)
	}
	p.Rating = min(max(p.Rating+delta, MinRating), MaxRating)
	s.players[playerID] = p
	return p.Rating, nil
}

// Ping implements Store.
func (s *MemoryStore) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.check()
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
