package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/playperu/treasurehunt/internal/hunt"
)

// GameResponse is the public game state.
type GameResponse struct {
	CurrentRound hunt.Round      `json:"currentRound"`
	Rounds       []RoundResponse `json:"rounds"`
}

// RoundResponse is one round of a GameResponse.
type RoundResponse struct {
	Round              hunt.Round `json:"round"`
	Status             string     `json:"status"`
	StartTime          *time.Time `json:"startTime,omitempty"`
	EndTime            *time.Time `json:"endTime,omitempty"`
	MaxQualifyingTeams int        `json:"maxQualifyingTeams"`
	QualifiedTeams     int        `json:"qualifiedTeams"`
	RemainingSlots     int        `json:"remainingSlots"`
}

func newGameResponse(g hunt.Game) GameResponse {
	resp := GameResponse{
		CurrentRound: g.CurrentRound,
		Rounds:       make([]RoundResponse, 0, hunt.NumRounds),
	}
	for r := hunt.Round(1); r <= hunt.NumRounds; r++ {
		rc := g.Config(r)
		resp.Rounds = append(resp.Rounds, RoundResponse{
			Round:              r,
			Status:             g.State(r).String(),
			StartTime:          rc.StartTime,
			EndTime:            rc.EndTime,
			MaxQualifyingTeams: rc.MaxQualifyingTeams,
			QualifiedTeams:     rc.QualifiedTeams,
			RemainingSlots:     max(0, rc.MaxQualifyingTeams-rc.QualifiedTeams),
		})
	}
	return resp
}

func handleGame(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, err := store.Game(r.Context())
		if err != nil {
			writeDomainError(w, logger, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newGameResponse(g))
	}
}

// LeaderboardEntry is one row of GET /api/leaderboard.
type LeaderboardEntry struct {
	Rank            int                  `json:"rank"`
	TeamID          string               `json:"teamId"`
	TeamName        string               `json:"teamName"`
	Score           int                  `json:"score"`
	CompletedRounds hunt.CompletedRounds `json:"completedRounds"`
}

func handleLeaderboard(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teams, err := store.ListTeams(r.Context())
		if err != nil {
			writeDomainError(w, logger, r, err)
			return
		}

		ranked := hunt.Ranked(teams)
		entries := make([]LeaderboardEntry, 0, len(ranked))
		for i, t := range ranked {
			entries = append(entries, LeaderboardEntry{
				Rank:            i + 1,
				TeamID:          t.ID,
				TeamName:        t.Name,
				Score:           t.Score,
				CompletedRounds: t.CompletedRounds(),
			})
		}
		writeJSON(w, http.StatusOK, entries)
	}
}
