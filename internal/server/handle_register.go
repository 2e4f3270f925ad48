package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/playperu/treasurehunt/internal/hunt"
)

// RegisterRequest is the request body for POST /api/auth/register.
type RegisterRequest struct {
	TeamName string   `json:"teamName"`
	Members  []string `json:"members"`
}

// RegisterResponse is the response for POST /api/auth/register.
type RegisterResponse struct {
	Token string       `json:"token"`
	Team  TeamResponse `json:"team"`
}

func handleRegister(logger *slog.Logger, store Store, tokens *TokenIssuer, events Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		team, err := store.CreateTeam(r.Context(), req.TeamName, req.Members)
		if err != nil {
			writeDomainError(w, logger, r, err)
			return
		}

		token, err := tokens.Issue(team)
		if err != nil {
			writeDomainError(w, logger, r, err)
			return
		}

		logger.Info("team registered", "team_id", team.ID, "team", team.Name)
		notify(events, Event{
			Type:     EventTeamRegistered,
			TeamID:   team.ID,
			TeamName: team.Name,
		})

		writeJSON(w, http.StatusCreated, RegisterResponse{
			Token: token,
			Team:  newTeamResponse(team),
		})
	}
}

// TeamResponse is the team snapshot returned to players and admins.
type TeamResponse struct {
	ID              string                    `json:"id"`
	Name            string                    `json:"name"`
	Members         []string                  `json:"members"`
	Score           int                       `json:"score"`
	CompletedRounds hunt.CompletedRounds      `json:"completedRounds"`
	Rounds          [hunt.NumRounds]TeamRound `json:"rounds"`
	Progress        string                    `json:"progress"`
	CreatedAt       time.Time                 `json:"createdAt"`
	LastActive      time.Time                 `json:"lastActive"`
}

// TeamRound is one round of a TeamResponse.
type TeamRound struct {
	Round hunt.Round `json:"round"`
	hunt.RoundDetail
	Status string `json:"status"`
}

func newTeamResponse(t hunt.Team) TeamResponse {
	resp := TeamResponse{
		ID:              t.ID,
		Name:            t.Name,
		Members:         t.Members,
		Score:           t.Score,
		CompletedRounds: t.CompletedRounds(),
		Progress:        t.Progress(),
		CreatedAt:       t.CreatedAt,
		LastActive:      t.LastActive,
	}
	for i := range resp.Rounds {
		r := hunt.Round(i + 1)
		resp.Rounds[i] = TeamRound{
			Round:       r,
			RoundDetail: t.Rounds[i],
			Status:      t.RoundProgress(r),
		}
	}
	if resp.Members == nil {
		resp.Members = []string{}
	}
	return resp
}
