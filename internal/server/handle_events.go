package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// handleEvents streams the team's events and game-wide changes as SSE.
// EventSource cannot set headers, so the token comes as a query parameter.
func handleEvents(logger *slog.Logger, broker *Broker, tokens *TokenIssuer, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			writeError(w, http.StatusUnauthorized, "token query parameter required")
			return
		}

		team, err := teamFromToken(r, tokens, store, token)
		if err != nil {
			writeDomainError(w, logger, r, err)
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming not supported")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		flusher.Flush()

		teamCh := broker.Subscribe(team.ID)
		defer broker.Unsubscribe(team.ID, teamCh)
		gameCh := broker.Subscribe(TopicGame)
		defer broker.Unsubscribe(TopicGame, gameCh)

		ping := time.NewTicker(30 * time.Second)
		defer ping.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case data := <-teamCh:
				fmt.Fprintf(w, "event: team\ndata: %s\n\n", data)
				flusher.Flush()
			case data := <-gameCh:
				fmt.Fprintf(w, "event: game\ndata: %s\n\n", data)
				flusher.Flush()
			case <-ping.C:
				fmt.Fprintf(w, ": ping\n\n")
				flusher.Flush()
			}
		}
	}
}
