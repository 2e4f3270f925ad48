package server

import (
	"log/slog"
	"net/http"

	"github.com/playperu/treasurehunt/internal/hunt"
)

// AdminRoundCapRequest is the request body for PUT /api/admin/game/rounds/{round}.
type AdminRoundCapRequest struct {
	MaxQualifyingTeams int `json:"maxQualifyingTeams"`
}

func handleAdminGame(logger *slog.Logger, store Store) http.HandlerFunc {
	return handleGame(logger, store)
}

func handleAdminAdvance(logger *slog.Logger, store Store, events Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, err := store.AdvanceRound(r.Context())
		if err != nil {
			writeDomainError(w, logger, r, err)
			return
		}

		logger.Info("round advanced", "current_round", int(g.CurrentRound), "admin", adminFrom(r).Email)
		gameUpdated(events, g)
		writeJSON(w, http.StatusOK, newGameResponse(g))
	}
}

func handleAdminSetRoundCap(logger *slog.Logger, store Store, events Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		round, err := roundParam(r)
		if err != nil {
			writeDomainError(w, logger, r, err)
			return
		}

		var req AdminRoundCapRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		g, err := store.SetRoundCap(r.Context(), round, req.MaxQualifyingTeams)
		if err != nil {
			writeDomainError(w, logger, r, err)
			return
		}

		logger.Info("round cap changed",
			"round", int(round),
			"max_qualifying_teams", req.MaxQualifyingTeams,
			"admin", adminFrom(r).Email,
		)
		gameUpdated(events, g)
		writeJSON(w, http.StatusOK, newGameResponse(g))
	}
}

func handleAdminReset(logger *slog.Logger, store Store, events Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, err := store.ResetGame(r.Context())
		if err != nil {
			writeDomainError(w, logger, r, err)
			return
		}

		logger.Warn("game reset", "admin", adminFrom(r).Email)
		gameUpdated(events, g)
		writeJSON(w, http.StatusOK, newGameResponse(g))
	}
}

func gameUpdated(events Publisher, g hunt.Game) {
	notify(events, Event{Type: EventGameUpdated, CurrentRound: g.CurrentRound})
}
