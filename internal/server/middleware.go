package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/playperu/treasurehunt/internal/hunt"
)

type ctxKey int

const (
	ctxKeyTeam ctxKey = iota
	ctxKeyAdmin
)

// teamAuthMiddleware requires a valid bearer token for an existing team.
func teamAuthMiddleware(logger *slog.Logger, tokens *TokenIssuer, store Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, hunt.ErrInvalidToken.Error())
				return
			}

			team, err := teamFromToken(r, tokens, store, token)
			if err != nil {
				writeDomainError(w, logger, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyTeam, team)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func adminAuthMiddleware(admin AdminStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID, ok := adminCookie(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			sess, err := admin.AdminFromSession(r.Context(), sessionID)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyAdmin, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// teamFrom returns the team loaded by teamAuthMiddleware.
func teamFrom(r *http.Request) hunt.Team {
	return r.Context().Value(ctxKeyTeam).(hunt.Team)
}

func adminFrom(r *http.Request) adminSession {
	return r.Context().Value(ctxKeyAdmin).(adminSession)
}
