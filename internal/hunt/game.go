package hunt

import "time"

// RoundConfig is the global state of one round.
type RoundConfig struct {
	Active             bool       `json:"active"`
	StartTime          *time.Time `json:"startTime,omitempty"`
	EndTime            *time.Time `json:"endTime,omitempty"`
	MaxQualifyingTeams int        `json:"maxQualifyingTeams"`
	QualifiedTeams     int        `json:"qualifiedTeams"`
}

// Game is the singleton hunt state: which round is open and how many teams
// have qualified out of each round.
type Game struct {
	CurrentRound Round                  `json:"currentRound"`
	Rounds       [NumRounds]RoundConfig `json:"rounds"`
}

// DefaultRoundCaps are the qualification caps used when none are configured.
var DefaultRoundCaps = [NumRounds]int{50, 30, 10}

// NewGame returns a game with round 1 open and the given caps.
func NewGame(caps [NumRounds]int, now time.Time) Game {
	var g Game
	for i := range g.Rounds {
		c := caps[i]
		if c <= 0 {
			c = DefaultRoundCaps[i]
		}
		g.Rounds[i].MaxQualifyingTeams = c
	}
	g.open(RoundLinks, now)
	return g
}

type RoundState int

const (
	RoundLockedState RoundState = iota
	RoundOpenState
	RoundClosedState
)

func (s RoundState) String() string {
	switch s {
	case RoundOpenState:
		return "open"
	case RoundClosedState:
		return "closed"
	default:
		return "locked"
	}
}

func (g Game) Config(r Round) RoundConfig { return g.Rounds[r.idx()] }

func (g Game) State(r Round) RoundState {
	rc := g.Rounds[r.idx()]
	switch {
	case rc.Active:
		return RoundOpenState
	case rc.EndTime != nil:
		return RoundClosedState
	default:
		return RoundLockedState
	}
}

// OpenRound returns the currently open round, if any.
func (g Game) OpenRound() (Round, bool) {
	for r := Round(1); r <= NumRounds; r++ {
		if g.State(r) == RoundOpenState {
			return r, true
		}
	}
	return 0, false
}

// Qualify records one more qualified team for r. When the cap is reached the
// round closes and the next one opens in the same step. It reports whether
// the round closed.
func (g *Game) Qualify(r Round, now time.Time) (bool, error) {
	if !r.Valid() {
		return false, ErrInvalidRound
	}
	rc := &g.Rounds[r.idx()]
	if !rc.Active || rc.QualifiedTeams >= rc.MaxQualifyingTeams {
		return false, ErrRoundNotActive
	}
	rc.QualifiedTeams++
	if rc.QualifiedTeams < rc.MaxQualifyingTeams {
		return false, nil
	}
	g.closeAndAdvance(r, now)
	return true, nil
}

// Advance manually closes the open round and opens the next one.
func (g *Game) Advance(now time.Time) (Round, error) {
	r, ok := g.OpenRound()
	if !ok {
		return 0, ErrNoOpenRound
	}
	g.closeAndAdvance(r, now)
	return g.CurrentRound, nil
}

// SetCap changes the qualification cap of r. Lowering an open round's cap
// to its qualified count closes it.
func (g *Game) SetCap(r Round, limit int, now time.Time) error {
	if !r.Valid() {
		return ErrInvalidRound
	}
	rc := &g.Rounds[r.idx()]
	if limit < 1 || limit < rc.QualifiedTeams {
		return ErrInvalidCap
	}
	rc.MaxQualifyingTeams = limit
	if rc.Active && rc.QualifiedTeams >= limit {
		g.closeAndAdvance(r, now)
	}
	return nil
}

func (g *Game) closeAndAdvance(r Round, now time.Time) {
	rc := &g.Rounds[r.idx()]
	rc.Active = false
	end := now
	rc.EndTime = &end
	if r < NumRounds {
		g.open(r+1, now)
	}
}

func (g *Game) open(r Round, now time.Time) {
	rc := &g.Rounds[r.idx()]
	rc.Active = true
	start := now
	rc.StartTime = &start
	rc.EndTime = nil
	g.CurrentRound = r
}
