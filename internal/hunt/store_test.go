package hunt

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// memStore is an in-memory Store guarded by a single mutex.
type memStore struct {
	mu         sync.Mutex
	teams      map[string]Team
	game       Game
	clues      []Clue
	activities []Activity
}

func newMemStore(caps [NumRounds]int, now time.Time) *memStore {
	n := 0
	return &memStore{
		teams: make(map[string]Team),
		game:  NewGame(caps, now),
		clues: DefaultChallenges().Links.Catalog(func() string {
			n++
			return "clue-" + strconv.Itoa(n)
		}),
	}
}

func (s *memStore) add(t Team) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams[t.ID] = t
}

func (s *memStore) answerID() string {
	for _, c := range s.clues {
		if c.IsAnswer {
			return c.ID
		}
	}
	return ""
}

func (s *memStore) GetTeam(_ context.Context, id string) (Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.teams[id]
	if !ok {
		return Team{}, ErrTeamNotFound
	}
	return t, nil
}

func (s *memStore) Game(_ context.Context) (Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game, nil
}

func (s *memStore) ListClues(_ context.Context, round Round) ([]Clue, error) {
	var out []Clue
	for _, c := range s.clues {
		if c.Round == round {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *memStore) ModifyProgress(_ context.Context, teamID string, fn func(*Team, *Game) ([]Activity, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.teams[teamID]
	if !ok {
		return ErrTeamNotFound
	}
	g := s.game
	acts, err := fn(&t, &g)
	if err != nil {
		return err
	}
	s.teams[teamID] = t
	s.game = g
	s.activities = append(s.activities, acts...)
	return nil
}
