// Package hunt defines the treasure hunt domain: teams and their per-round
// progress, the round qualification tracker, scoring, and the submission
// evaluator. Storage is abstracted behind Store; nothing here talks to a
// database or to HTTP.
package hunt

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NumRounds is the number of sequential rounds in a hunt.
const NumRounds = 3

// Round identifies one of the rounds, starting at 1.
type Round int

const (
	RoundLinks  Round = 1
	RoundCode   Round = 2
	RoundCipher Round = 3
)

func (r Round) Valid() bool { return r >= 1 && r <= NumRounds }

func (r Round) idx() int { return int(r) - 1 }

func (r Round) String() string { return "round" + strconv.Itoa(int(r)) }

// ParseRound parses "1".."3" (or "round1".."round3").
func ParseRound(s string) (Round, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(s), "round"))
	if err != nil || !Round(n).Valid() {
		return 0, ErrInvalidRound
	}
	return Round(n), nil
}

// RoundDetail is a team's record for a single round. Attempts counts
// evaluated submissions; on completion it includes the accepted one.
type RoundDetail struct {
	Completed   bool       `json:"completed"`
	Score       int        `json:"score"`
	Attempts    int        `json:"attempts"`
	TimeSpent   int        `json:"timeSpent"`
	HintUsed    bool       `json:"hintUsed"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// CompletedRounds is the flat completion view of a team.
type CompletedRounds struct {
	Round1 bool `json:"round1"`
	Round2 bool `json:"round2"`
	Round3 bool `json:"round3"`
}

func (c CompletedRounds) slice() [NumRounds]bool {
	return [NumRounds]bool{c.Round1, c.Round2, c.Round3}
}

// Valid reports whether every completed round follows a completed one.
func (c CompletedRounds) Valid() bool {
	s := c.slice()
	for i := 1; i < NumRounds; i++ {
		if s[i] && !s[i-1] {
			return false
		}
	}
	return true
}

type Team struct {
	ID         string                 `json:"id"`
	Name       string                 `json:"name"`
	Members    []string               `json:"members"`
	Rounds     [NumRounds]RoundDetail `json:"rounds"`
	Score      int                    `json:"score"`
	CreatedAt  time.Time              `json:"createdAt"`
	LastActive time.Time              `json:"lastActive"`
}

func (t *Team) Detail(r Round) *RoundDetail { return &t.Rounds[r.idx()] }

func (t Team) Completed(r Round) bool { return t.Rounds[r.idx()].Completed }

func (t Team) CompletedRounds() CompletedRounds {
	return CompletedRounds{
		Round1: t.Rounds[0].Completed,
		Round2: t.Rounds[1].Completed,
		Round3: t.Rounds[2].Completed,
	}
}

// AwardedScore is the sum of scores of completed rounds.
func (t Team) AwardedScore() int {
	total := 0
	for _, d := range t.Rounds {
		if d.Completed {
			total += d.Score
		}
	}
	return total
}

// NewTeam validates name and members and returns a team with no progress.
func NewTeam(id, name string, members []string, now time.Time) (Team, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return Team{}, err
	}
	members, err = NormalizeMembers(members)
	if err != nil {
		return Team{}, err
	}
	return Team{
		ID:         id,
		Name:       name,
		Members:    members,
		CreatedAt:  now,
		LastActive: now,
	}, nil
}

// TeamPatch is the admin full-replace of a team's editable fields.
type TeamPatch struct {
	Name            string          `json:"name"`
	Members         []string        `json:"members"`
	CompletedRounds CompletedRounds `json:"completedRounds"`
	Score           int             `json:"score"`
}

// Apply replaces the editable fields of t. Rounds switched off lose their
// detail; rounds switched on keep any detail they already had.
func (t *Team) Apply(p TeamPatch, now time.Time) error {
	name, err := NormalizeName(p.Name)
	if err != nil {
		return err
	}
	members, err := NormalizeMembers(p.Members)
	if err != nil {
		return err
	}
	if !p.CompletedRounds.Valid() {
		return ErrRoundOrder
	}
	if p.Score < 0 {
		return ErrInvalidScore
	}

	t.Name = name
	t.Members = members
	for i, done := range p.CompletedRounds.slice() {
		d := &t.Rounds[i]
		switch {
		case !done:
			*d = RoundDetail{}
		case !d.Completed:
			d.Completed = true
			at := now
			d.CompletedAt = &at
		}
	}
	t.Score = p.Score
	t.LastActive = now
	return nil
}

// NormalizeName trims the team name and rejects blank names.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidName
	}
	return name, nil
}

// NameKey is the case-insensitive uniqueness key for team names.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NormalizeMembers trims member names, drops blanks and requires at least
// two names that are pairwise distinct ignoring case.
func NormalizeMembers(members []string) ([]string, error) {
	out := make([]string, 0, len(members))
	seen := make(map[string]bool, len(members))
	for _, m := range members {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		key := strings.ToLower(m)
		if seen[key] {
			return nil, fmt.Errorf("%w (duplicate member %q)", ErrInvalidMembers, m)
		}
		seen[key] = true
		out = append(out, m)
	}
	if len(out) < 2 {
		return nil, ErrInvalidMembers
	}
	return out, nil
}

type Action string

const (
	ActionStart    Action = "start"
	ActionAttempt  Action = "attempt"
	ActionHint     Action = "hint"
	ActionComplete Action = "complete"
)

// Activity is an append-only audit entry for a team's timeline.
type Activity struct {
	ID        string    `json:"id"`
	TeamID    string    `json:"teamId"`
	Round     Round     `json:"round"`
	Action    Action    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
	Details   string    `json:"details,omitempty"`
	Score     int       `json:"score,omitempty"`
}

// Clue is one link in the round 1 catalog. Exactly one clue is the answer.
type Clue struct {
	ID       string `json:"id"`
	Round    Round  `json:"round"`
	Order    int    `json:"order"`
	Title    string `json:"title"`
	IsAnswer bool   `json:"isAnswer"`
}
