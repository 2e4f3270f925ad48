package server

import (
	"net/http"
)

func handleAdminLogout(admin AdminStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sessionID, ok := adminCookie(r); ok {
			admin.DeleteAdminSession(r.Context(), sessionID)
		}
		clearAdminCookie(w)

		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
