package server

import (
	"context"
	"errors"

	"github.com/playperu/treasurehunt/internal/hunt"
)

var ErrNotFound = errors.New("not found")

// Store is the team record store plus the game tracker. The embedded
// hunt.Store is the transactional surface the evaluator needs.
type Store interface {
	hunt.Store

	CreateTeam(ctx context.Context, name string, members []string) (hunt.Team, error)
	ListTeams(ctx context.Context) ([]hunt.Team, error)
	UpdateTeam(ctx context.Context, id string, patch hunt.TeamPatch) (hunt.Team, error)
	DeleteTeam(ctx context.Context, id string) error

	// ListActivities returns the newest activities first. An empty teamID
	// lists every team.
	ListActivities(ctx context.Context, teamID string, limit int) ([]hunt.Activity, error)

	AdvanceRound(ctx context.Context) (hunt.Game, error)
	SetRoundCap(ctx context.Context, round hunt.Round, limit int) (hunt.Game, error)
	ResetGame(ctx context.Context) (hunt.Game, error)
}
