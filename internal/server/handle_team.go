package server

import (
	"net/http"
)

func handleTeam() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, newTeamResponse(teamFrom(r)))
	}
}
