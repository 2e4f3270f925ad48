package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/playperu/treasurehunt/internal/hunt"
)

// AdminTeamRequest is the request body for POST /api/admin/teams.
type AdminTeamRequest struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// AdminTeamUpdateRequest is the request body for PUT /api/admin/teams/{id}.
// It replaces every editable field.
type AdminTeamUpdateRequest = hunt.TeamPatch

// AdminActivityResponse is the response for GET /api/admin/teams/{id}/activity.
type AdminActivityResponse struct {
	Team       TeamResponse    `json:"team"`
	Rounds     []TeamRound     `json:"rounds"`
	Activities []hunt.Activity `json:"activities"`
}

const activityLimit = 50

func handleAdminListTeams(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := r.URL.Query().Get("status")
		switch status {
		case "", "all", hunt.ProgressCompleted, hunt.ProgressInProgress, hunt.ProgressNotStarted:
		default:
			writeError(w, http.StatusBadRequest, "status must be completed, in-progress or not-started")
			return
		}
		query := r.URL.Query().Get("q")

		teams, err := store.ListTeams(r.Context())
		if err != nil {
			writeDomainError(w, logger, r, err)
			return
		}

		items := make([]TeamResponse, 0, len(teams))
		for _, t := range teams {
			if status != "" && status != "all" && t.Progress() != status {
				continue
			}
			if !t.Matches(query) {
				continue
			}
			items = append(items, newTeamResponse(t))
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func handleAdminCreateTeam(logger *slog.Logger, store Store, events Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminTeamRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		team, err := store.CreateTeam(r.Context(), req.Name, req.Members)
		if err != nil {
			writeDomainError(w, logger, r, err)
			return
		}

		notify(events, Event{Type: EventTeamRegistered, TeamID: team.ID, TeamName: team.Name})
		writeJSON(w, http.StatusCreated, newTeamResponse(team))
	}
}

func handleAdminGetTeam(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		team, err := store.GetTeam(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeDomainError(w, logger, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newTeamResponse(team))
	}
}

func handleAdminUpdateTeam(logger *slog.Logger, store Store, events Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminTeamUpdateRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		team, err := store.UpdateTeam(r.Context(), chi.URLParam(r, "id"), req)
		if err != nil {
			writeDomainError(w, logger, r, err)
			return
		}

		logger.Info("team updated by admin", "team_id", team.ID, "admin", adminFrom(r).Email)
		notify(events, Event{
			Type:       EventTeamUpdated,
			TeamID:     team.ID,
			TeamName:   team.Name,
			TotalScore: team.Score,
		})
		writeJSON(w, http.StatusOK, newTeamResponse(team))
	}
}

func handleAdminDeleteTeam(logger *slog.Logger, store Store, events Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := store.DeleteTeam(r.Context(), id); err != nil {
			writeDomainError(w, logger, r, err)
			return
		}

		logger.Info("team deleted by admin", "team_id", id, "admin", adminFrom(r).Email)
		notify(events, Event{Type: EventTeamDeleted, TeamID: id})
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func handleAdminTeamActivity(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		team, err := store.GetTeam(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeDomainError(w, logger, r, err)
			return
		}

		activities, err := store.ListActivities(r.Context(), team.ID, activityLimit)
		if err != nil {
			writeDomainError(w, logger, r, err)
			return
		}

		resp := newTeamResponse(team)
		writeJSON(w, http.StatusOK, AdminActivityResponse{
			Team:       resp,
			Rounds:     resp.Rounds[:],
			Activities: activities,
		})
	}
}
