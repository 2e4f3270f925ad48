package server

import (
	"cmp"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/playperu/treasurehunt/internal/hunt"
)

const (
	gameDocID           = "current"
	defaultActivityPage = 50
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DocStore implements Store using per-model tables with JSONB data columns.
// The database handle must be limited to a single connection: every
// read-modify-write runs in a transaction on it, which serializes them.
// Code holding a transaction must never touch s.db.
type DocStore struct {
	db         *sql.DB
	caps       [hunt.NumRounds]int
	challenges hunt.Challenges
	now        func() time.Time
}

type StoreOption func(*DocStore)

func WithRoundCaps(caps [hunt.NumRounds]int) StoreOption {
	return func(s *DocStore) { s.caps = caps }
}

func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *DocStore) { s.now = now }
}

func WithChallenges(c hunt.Challenges) StoreOption {
	return func(s *DocStore) { s.challenges = c }
}

// NewDocStore expects a migrated database. It creates the game document and
// the round 1 clue catalog when they are missing.
func NewDocStore(ctx context.Context, db *sql.DB, opts ...StoreOption) (*DocStore, error) {
	s := &DocStore{
		db:         db,
		caps:       hunt.DefaultRoundCaps,
		challenges: hunt.DefaultChallenges(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.ensureGame(ctx); err != nil {
		return nil, fmt.Errorf("initializing game: %w", err)
	}
	if err := s.ensureClues(ctx); err != nil {
		return nil, fmt.Errorf("seeding clues: %w", err)
	}
	return s, nil
}

func newID() string {
	return uuid.NewString()
}

func (s *DocStore) ensureGame(ctx context.Context) error {
	g := hunt.NewGame(s.caps, s.now().UTC())
	data, err := json.Marshal(g)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO game (id, data) VALUES (?, jsonb(?)) ON CONFLICT(id) DO NOTHING`,
		gameDocID, string(data),
	)
	return err
}

func (s *DocStore) ensureClues(ctx context.Context) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM clues`).Scan(&count); err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		for _, c := range s.challenges.Links.Catalog(newID) {
			if err := putClue(ctx, tx, c); err != nil {
				return err
			}
		}
		return nil
	})
}

// Generic helpers.

func get(ctx context.Context, q queryer, table, id string, dest any) error {
	var data string
	err := q.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT json(data) FROM %s WHERE id = ?`, table), id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

func scanDocs[T any](rows *sql.Rows) ([]T, error) {
	defer rows.Close()

	var out []T
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal([]byte(data), &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *DocStore) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// Per-table put helpers.

func putTeam(ctx context.Context, q queryer, t hunt.Team) error {
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO teams (id, name_key, data) VALUES (?, ?, jsonb(?))
		 ON CONFLICT(id) DO UPDATE SET name_key = excluded.name_key, data = excluded.data`,
		t.ID, hunt.NameKey(t.Name), string(data),
	)
	if isUniqueViolation(err) {
		return hunt.ErrDuplicateName
	}
	return err
}

func putGame(ctx context.Context, q queryer, g hunt.Game) error {
	data, err := json.Marshal(g)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO game (id, data) VALUES (?, jsonb(?))
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data`,
		gameDocID, string(data),
	)
	return err
}

func putClue(ctx context.Context, q queryer, c hunt.Clue) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO clues (id, round, data) VALUES (?, ?, jsonb(?))`,
		c.ID, int(c.Round), string(data),
	)
	return err
}

func appendActivity(ctx context.Context, q queryer, a hunt.Activity) error {
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO activities (id, team_id, created_at, data) VALUES (?, ?, ?, jsonb(?))`,
		a.ID, a.TeamID, a.Timestamp.UTC().Format(time.RFC3339Nano), string(data),
	)
	return err
}

func nameTaken(ctx context.Context, q queryer, name, exceptID string) (bool, error) {
	var id string
	err := q.QueryRowContext(ctx,
		`SELECT id FROM teams WHERE name_key = ? AND id <> ?`, hunt.NameKey(name), exceptID,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func getTeam(ctx context.Context, q queryer, id string) (hunt.Team, error) {
	var t hunt.Team
	err := get(ctx, q, "teams", id, &t)
	if errors.Is(err, ErrNotFound) {
		return hunt.Team{}, hunt.ErrTeamNotFound
	}
	return t, err
}

func getGame(ctx context.Context, q queryer) (hunt.Game, error) {
	var g hunt.Game
	if err := get(ctx, q, "game", gameDocID, &g); err != nil {
		return hunt.Game{}, fmt.Errorf("loading game: %w", err)
	}
	return g, nil
}

// Team records

func (s *DocStore) CreateTeam(ctx context.Context, name string, members []string) (hunt.Team, error) {
	t, err := hunt.NewTeam(newID(), name, members, s.now().UTC())
	if err != nil {
		return hunt.Team{}, err
	}
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		taken, err := nameTaken(ctx, tx, t.Name, t.ID)
		if err != nil {
			return err
		}
		if taken {
			return hunt.ErrDuplicateName
		}
		return putTeam(ctx, tx, t)
	})
	if err != nil {
		return hunt.Team{}, err
	}
	return t, nil
}

func (s *DocStore) GetTeam(ctx context.Context, id string) (hunt.Team, error) {
	return getTeam(ctx, s.db, id)
}

// ListTeams returns every team, oldest registration first.
func (s *DocStore) ListTeams(ctx context.Context) ([]hunt.Team, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT json(data) FROM teams`)
	if err != nil {
		return nil, err
	}
	teams, err := scanDocs[hunt.Team](rows)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(teams, func(a, b hunt.Team) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return teams, nil
}

func (s *DocStore) UpdateTeam(ctx context.Context, id string, patch hunt.TeamPatch) (hunt.Team, error) {
	var result hunt.Team
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		t, err := getTeam(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := t.Apply(patch, s.now().UTC()); err != nil {
			return err
		}
		taken, err := nameTaken(ctx, tx, t.Name, t.ID)
		if err != nil {
			return err
		}
		if taken {
			return hunt.ErrDuplicateName
		}
		if err := putTeam(ctx, tx, t); err != nil {
			return err
		}
		result = t
		return nil
	})
	return result, err
}

// DeleteTeam removes the team and its activity log.
func (s *DocStore) DeleteTeam(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM teams WHERE id = ?`, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return hunt.ErrTeamNotFound
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM activities WHERE team_id = ?`, id)
		return err
	})
}

func (s *DocStore) ListActivities(ctx context.Context, teamID string, limit int) ([]hunt.Activity, error) {
	if limit <= 0 {
		limit = defaultActivityPage
	}
	var (
		rows *sql.Rows
		err  error
	)
	if teamID == "" {
		rows, err = s.db.QueryContext(ctx,
			`SELECT json(data) FROM activities ORDER BY seq DESC LIMIT ?`, limit)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT json(data) FROM activities WHERE team_id = ? ORDER BY seq DESC LIMIT ?`, teamID, limit)
	}
	if err != nil {
		return nil, err
	}
	acts, err := scanDocs[hunt.Activity](rows)
	if err != nil {
		return nil, err
	}
	if acts == nil {
		acts = []hunt.Activity{}
	}
	return acts, nil
}

func (s *DocStore) ListClues(ctx context.Context, round hunt.Round) ([]hunt.Clue, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT json(data) FROM clues WHERE round = ?`, int(round))
	if err != nil {
		return nil, err
	}
	clues, err := scanDocs[hunt.Clue](rows)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(clues, func(a, b hunt.Clue) int { return cmp.Compare(a.Order, b.Order) })
	return clues, nil
}

// Game tracker

func (s *DocStore) Game(ctx context.Context) (hunt.Game, error) {
	return getGame(ctx, s.db)
}

// ModifyProgress loads a team and the game, applies fn, and saves both with
// the returned activities in one transaction.
func (s *DocStore) ModifyProgress(ctx context.Context, teamID string, fn func(*hunt.Team, *hunt.Game) ([]hunt.Activity, error)) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		t, err := getTeam(ctx, tx, teamID)
		if err != nil {
			return err
		}
		g, err := getGame(ctx, tx)
		if err != nil {
			return err
		}

		acts, err := fn(&t, &g)
		if err != nil {
			return err
		}

		if err := putTeam(ctx, tx, t); err != nil {
			return err
		}
		if err := putGame(ctx, tx, g); err != nil {
			return err
		}
		for _, a := range acts {
			if a.ID == "" {
				a.ID = newID()
			}
			if a.Timestamp.IsZero() {
				a.Timestamp = s.now().UTC()
			}
			if err := appendActivity(ctx, tx, a); err != nil {
				return err
			}
		}
		return nil
	})
}

// modifyGame loads the game, applies fn, and saves it in a transaction.
func (s *DocStore) modifyGame(ctx context.Context, fn func(*hunt.Game) error) (hunt.Game, error) {
	var result hunt.Game
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		g, err := getGame(ctx, tx)
		if err != nil {
			return err
		}
		if err := fn(&g); err != nil {
			return err
		}
		if err := putGame(ctx, tx, g); err != nil {
			return err
		}
		result = g
		return nil
	})
	return result, err
}

func (s *DocStore) AdvanceRound(ctx context.Context) (hunt.Game, error) {
	return s.modifyGame(ctx, func(g *hunt.Game) error {
		_, err := g.Advance(s.now().UTC())
		return err
	})
}

func (s *DocStore) SetRoundCap(ctx context.Context, round hunt.Round, limit int) (hunt.Game, error) {
	return s.modifyGame(ctx, func(g *hunt.Game) error {
		return g.SetCap(round, limit, s.now().UTC())
	})
}

// ResetGame restarts the hunt: the game returns to its initial state with
// the configured caps, every team loses its progress and score, and the
// activity log is cleared. Team names and members are kept.
func (s *DocStore) ResetGame(ctx context.Context) (hunt.Game, error) {
	now := s.now().UTC()
	g := hunt.NewGame(s.caps, now)
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := putGame(ctx, tx, g); err != nil {
			return err
		}

		rows, err := tx.QueryContext(ctx, `SELECT json(data) FROM teams`)
		if err != nil {
			return err
		}
		teams, err := scanDocs[hunt.Team](rows)
		if err != nil {
			return err
		}
		for _, t := range teams {
			t.Rounds = [hunt.NumRounds]hunt.RoundDetail{}
			t.Score = 0
			t.LastActive = now
			if err := putTeam(ctx, tx, t); err != nil {
				return err
			}
		}

		_, err = tx.ExecContext(ctx, `DELETE FROM activities`)
		return err
	})
	if err != nil {
		return hunt.Game{}, err
	}
	return g, nil
}

// Ensure DocStore implements Store at compile time.
var _ Store = (*DocStore)(nil)
