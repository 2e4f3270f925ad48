package server

import (
	"log/slog"
	"net/http"

	"github.com/playperu/treasurehunt/internal/hunt"
)

// AdminStatsResponse is the response for GET /api/admin/stats.
type AdminStatsResponse struct {
	TotalTeams   int                 `json:"totalTeams"`
	CompletedAll int                 `json:"completedAll"`
	InProgress   int                 `json:"inProgress"`
	NotStarted   int                 `json:"notStarted"`
	HighestScore int                 `json:"highestScore"`
	AverageScore int                 `json:"averageScore"`
	Qualified    [hunt.NumRounds]int `json:"qualified"`
	CurrentRound hunt.Round          `json:"currentRound"`
}

func handleAdminStats(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teams, err := store.ListTeams(r.Context())
		if err != nil {
			writeDomainError(w, logger, r, err)
			return
		}
		g, err := store.Game(r.Context())
		if err != nil {
			writeDomainError(w, logger, r, err)
			return
		}
		writeJSON(w, http.StatusOK, computeStats(teams, g))
	}
}

func computeStats(teams []hunt.Team, g hunt.Game) AdminStatsResponse {
	stats := AdminStatsResponse{
		TotalTeams:   len(teams),
		CurrentRound: g.CurrentRound,
	}
	total := 0
	for _, t := range teams {
		switch t.Progress() {
		case hunt.ProgressCompleted:
			stats.CompletedAll++
		case hunt.ProgressInProgress:
			stats.InProgress++
		default:
			stats.NotStarted++
		}
		stats.HighestScore = max(stats.HighestScore, t.Score)
		total += t.Score
	}
	if len(teams) > 0 {
		stats.AverageScore = total / len(teams)
	}
	for i := range stats.Qualified {
		stats.Qualified[i] = g.Rounds[i].QualifiedTeams
	}
	return stats
}
