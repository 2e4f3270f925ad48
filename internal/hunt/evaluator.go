package hunt

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Store is the persistence the evaluator needs. ModifyProgress loads the
// team and the game, applies fn and saves both together with the returned
// activities in one transaction; when fn fails nothing is saved. It returns
// ErrTeamNotFound when the team does not exist.
type Store interface {
	GetTeam(ctx context.Context, id string) (Team, error)
	Game(ctx context.Context) (Game, error)
	ListClues(ctx context.Context, round Round) ([]Clue, error)
	ModifyProgress(ctx context.Context, teamID string, fn func(*Team, *Game) ([]Activity, error)) error
}

// Submission carries the answer for one round; only the field for that
// round is read.
type Submission struct {
	LinkID    string `json:"linkId,omitempty"`
	Code      string `json:"code,omitempty"`
	Plaintext string `json:"plaintext,omitempty"`
}

// Result is the outcome of a submission. NextRound is set when the team is
// now eligible for another round.
type Result struct {
	Accepted    bool         `json:"accepted"`
	Round       Round        `json:"round"`
	Score       int          `json:"score,omitempty"`
	TotalScore  int          `json:"totalScore"`
	Attempts    int          `json:"attempts"`
	TimeSpent   int          `json:"timeSpent,omitempty"`
	HintUsed    bool         `json:"hintUsed"`
	Message     string       `json:"message"`
	NextRound   Round        `json:"nextRound,omitempty"`
	RoundClosed bool         `json:"roundClosed,omitempty"`
	TestResults []TestResult `json:"testResults,omitempty"`
}

type Evaluator struct {
	store      Store
	challenges Challenges
	rules      [NumRounds]ScoreRule
	now        func() time.Time
}

type Option func(*Evaluator)

func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) { e.now = now }
}

func WithScoreRules(rules [NumRounds]ScoreRule) Option {
	return func(e *Evaluator) { e.rules = rules }
}

func NewEvaluator(store Store, challenges Challenges, opts ...Option) *Evaluator {
	e := &Evaluator{
		store:      store,
		challenges: challenges,
		rules:      DefaultScoreRules,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Evaluator) Challenges() Challenges { return e.challenges }

// CheckEligible reports why a team may not play round r, in precondition
// order: round open, previous round completed, round not yet completed.
func CheckEligible(t *Team, g *Game, r Round) error {
	if !r.Valid() {
		return ErrInvalidRound
	}
	if g.State(r) != RoundOpenState {
		return ErrRoundNotActive
	}
	if r > 1 && !t.Completed(r-1) {
		return ErrRoundLocked
	}
	if t.Completed(r) {
		return ErrAlreadyCompleted
	}
	return nil
}

// Submit evaluates an answer for round r and, when it is correct, applies
// the whole accept transition atomically: completion, score, qualification
// and, if the cap is reached, the switch to the next round.
func (e *Evaluator) Submit(ctx context.Context, teamID string, r Round, sub Submission) (Result, error) {
	if !r.Valid() {
		return Result{}, ErrInvalidRound
	}

	correct, res, err := e.evaluate(ctx, teamID, r, sub)
	if err != nil {
		return Result{}, err
	}
	if !correct && r == RoundCode {
		return res, nil
	}

	err = e.store.ModifyProgress(ctx, teamID, func(t *Team, g *Game) ([]Activity, error) {
		if err := CheckEligible(t, g, r); err != nil {
			return nil, err
		}
		now := e.now()
		d := t.Detail(r)
		d.Attempts++
		t.LastActive = now

		if !correct {
			res = Result{
				Round:      r,
				TotalScore: t.Score,
				Attempts:   d.Attempts,
				HintUsed:   d.HintUsed,
				Message:    wrongMessage(r),
			}
			return []Activity{{
				TeamID:    t.ID,
				Round:     r,
				Action:    ActionAttempt,
				Timestamp: now,
				Details:   fmt.Sprintf("Incorrect answer (attempt %d)", d.Attempts),
			}}, nil
		}

		closed, err := g.Qualify(r, now)
		if err != nil {
			return nil, err
		}

		d.TimeSpent = max(0, int(now.Sub(clockStart(t, g, r))/time.Second))
		d.Score = e.rules[r.idx()].Score(d.Attempts, d.TimeSpent, d.HintUsed)
		d.Completed = true
		at := now
		d.CompletedAt = &at
		t.Score += d.Score

		res = Result{
			Accepted:    true,
			Round:       r,
			Score:       d.Score,
			TotalScore:  t.Score,
			Attempts:    d.Attempts,
			TimeSpent:   d.TimeSpent,
			HintUsed:    d.HintUsed,
			Message:     acceptMessage(r),
			RoundClosed: closed,
			TestResults: res.TestResults,
		}
		if r < NumRounds {
			res.NextRound = r + 1
		}
		return []Activity{{
			TeamID:    t.ID,
			Round:     r,
			Action:    ActionComplete,
			Timestamp: now,
			Details:   fmt.Sprintf("Round %d completed successfully", r),
			Score:     d.Score,
		}}, nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

// evaluate checks the answer after a read-only eligibility check, so a
// blank answer to a round the team cannot play reports the precondition.
// Round 2 runs the submitted code outside the storage transaction.
func (e *Evaluator) evaluate(ctx context.Context, teamID string, r Round, sub Submission) (bool, Result, error) {
	t, err := e.store.GetTeam(ctx, teamID)
	if err != nil {
		return false, Result{}, err
	}
	g, err := e.store.Game(ctx)
	if err != nil {
		return false, Result{}, fmt.Errorf("loading game: %w", err)
	}
	if err := CheckEligible(&t, &g, r); err != nil {
		return false, Result{}, err
	}

	switch r {
	case RoundLinks:
		id := strings.TrimSpace(sub.LinkID)
		if id == "" {
			return false, Result{}, ErrEmptyAnswer
		}
		clues, err := e.store.ListClues(ctx, RoundLinks)
		if err != nil {
			return false, Result{}, fmt.Errorf("listing clues: %w", err)
		}
		for _, c := range clues {
			if c.IsAnswer && c.ID == id {
				return true, Result{}, nil
			}
		}
		return false, Result{}, nil

	case RoundCode:
		if strings.TrimSpace(sub.Code) == "" {
			return false, Result{}, ErrEmptyAnswer
		}
		tests, ok, err := e.challenges.Code.Run(ctx, sub.Code)
		if err != nil {
			return false, Result{}, err
		}
		res := Result{TestResults: tests}
		if !ok {
			res = Result{
				Round:       r,
				TotalScore:  t.Score,
				Attempts:    t.Detail(r).Attempts,
				HintUsed:    t.Detail(r).HintUsed,
				Message:     wrongMessage(r),
				TestResults: tests,
			}
		}
		return ok, res, nil

	default:
		if strings.TrimSpace(sub.Plaintext) == "" {
			return false, Result{}, ErrEmptyAnswer
		}
		return e.challenges.Cipher.Check(sub.Plaintext), Result{}, nil
	}
}

// RevealHint marks the hint as used for round r and returns its text. The
// hint penalty applies once however often it is requested.
func (e *Evaluator) RevealHint(ctx context.Context, teamID string, r Round) ([]string, error) {
	if !r.Valid() {
		return nil, ErrInvalidRound
	}
	err := e.store.ModifyProgress(ctx, teamID, func(t *Team, g *Game) ([]Activity, error) {
		if err := CheckEligible(t, g, r); err != nil {
			return nil, err
		}
		d := t.Detail(r)
		if d.HintUsed {
			return nil, nil
		}
		now := e.now()
		d.HintUsed = true
		t.LastActive = now
		return []Activity{{
			TeamID:    t.ID,
			Round:     r,
			Action:    ActionHint,
			Timestamp: now,
			Details:   "Used hint for challenge",
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	return e.challenges.Hints(r), nil
}

// StartRound records the first time a team opens the challenge of round r.
func (e *Evaluator) StartRound(ctx context.Context, teamID string, r Round) error {
	if !r.Valid() {
		return ErrInvalidRound
	}
	return e.store.ModifyProgress(ctx, teamID, func(t *Team, g *Game) ([]Activity, error) {
		if err := CheckEligible(t, g, r); err != nil {
			return nil, err
		}
		d := t.Detail(r)
		if d.StartedAt != nil {
			return nil, nil
		}
		now := e.now()
		d.StartedAt = &now
		t.LastActive = now
		return []Activity{{
			TeamID:    t.ID,
			Round:     r,
			Action:    ActionStart,
			Timestamp: now,
			Details:   fmt.Sprintf("Round %d started", r),
		}}, nil
	})
}

// clockStart is when the team's clock for r began: the later of the round
// opening and the team becoming eligible for it.
func clockStart(t *Team, g *Game, r Round) time.Time {
	start := t.CreatedAt
	if r > 1 {
		if prev := t.Detail(r - 1).CompletedAt; prev != nil {
			start = *prev
		}
	}
	if opened := g.Config(r).StartTime; opened != nil && opened.After(start) {
		start = *opened
	}
	return start
}

func wrongMessage(r Round) string {
	switch r {
	case RoundLinks:
		return "Incorrect link. Try again!"
	case RoundCode:
		return "Your solution doesn't pass all test cases."
	default:
		return "Incorrect decryption. Try again!"
	}
}

func acceptMessage(r Round) string {
	if r < NumRounds {
		return fmt.Sprintf("Congratulations! You have qualified for Round %d!", r+1)
	}
	return "Congratulations! You have completed the hunt!"
}
