package server

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
)

func addRoutes(r chi.Router, logger *slog.Logger, d Deps) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", handleSwaggerUI())

	// Public.
	r.Post("/api/auth/register", handleRegister(logger, d.Store, d.Tokens, d.Events))
	r.Get("/api/game", handleGame(logger, d.Store))
	r.Get("/api/leaderboard", handleLeaderboard(logger, d.Store))
	r.Get("/api/events", handleEvents(logger, d.Broker, d.Tokens, d.Store))

	// Team routes, Bearer token.
	r.Group(func(r chi.Router) {
		r.Use(teamAuthMiddleware(logger, d.Tokens, d.Store))
		r.Get("/api/team", handleTeam())
		r.Get("/api/rounds/1/links", handleLinks(logger, d.Store, d.Evaluator))
		r.Get("/api/rounds/{round}/challenge", handleChallenge(logger, d.Evaluator))
		r.Post("/api/rounds/{round}/hint", handleHint(logger, d.Evaluator, d.Events))
		r.Post("/api/rounds/{round}/submit", handleSubmit(logger, d.Evaluator, d.Events))
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Post("/login", handleAdminLogin(logger, d.Admin))
		r.Post("/logout", handleAdminLogout(d.Admin))

		r.Group(func(r chi.Router) {
			r.Use(adminAuthMiddleware(d.Admin))
			r.Get("/me", handleAdminMe())

			r.Get("/teams", handleAdminListTeams(logger, d.Store))
			r.Post("/teams", handleAdminCreateTeam(logger, d.Store, d.Events))
			r.Get("/teams/{id}", handleAdminGetTeam(logger, d.Store))
			r.Put("/teams/{id}", handleAdminUpdateTeam(logger, d.Store, d.Events))
			r.Delete("/teams/{id}", handleAdminDeleteTeam(logger, d.Store, d.Events))
			r.Get("/teams/{id}/activity", handleAdminTeamActivity(logger, d.Store))

			r.Get("/game", handleAdminGame(logger, d.Store))
			r.Post("/game/advance", handleAdminAdvance(logger, d.Store, d.Events))
			r.Put("/game/rounds/{round}", handleAdminSetRoundCap(logger, d.Store, d.Events))
			r.Post("/game/reset", handleAdminReset(logger, d.Store, d.Events))

			r.Get("/stats", handleAdminStats(logger, d.Store))
		})
	})

	if d.Feed != nil {
		r.Route("/ws/admin", func(r chi.Router) {
			r.Use(adminAuthMiddleware(d.Admin))
			r.Mount("/", d.Feed)
		})
	}

	if d.WebDir != "" {
		if info, err := os.Stat(d.WebDir); err == nil && info.IsDir() {
			logger.Info("serving frontend", "dir", d.WebDir)
			r.NotFound(handleSPA(d.WebDir))
		}
	}
}
