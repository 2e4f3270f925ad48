// Package feed streams live hunt events to admin dashboards over a
// websocket.
package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	writeTimeout = 5 * time.Second
	pingInterval = 30 * time.Second
)

// Subscriber is the subset of the event broker the feed needs.
type Subscriber interface {
	Subscribe(topic string) chan []byte
	Unsubscribe(topic string, ch chan []byte)
}

type Handler struct {
	logger  *slog.Logger
	subs    Subscriber
	topic   string
	origins []string
}

// NewHandler streams topic to admins. Connections from another origin are
// refused unless its host matches one of origins.
func NewHandler(logger *slog.Logger, subs Subscriber, topic string, origins []string) *Handler {
	return &Handler{logger: logger, subs: subs, topic: topic, origins: origins}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/feed", h.feed)
	return r
}

type hello struct {
	Type  string `json:"type"`
	Topic string `json:"topic"`
}

func (h *Handler) feed(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.origins,
	})
	if err != nil {
		h.logger.Error("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	ch := h.subs.Subscribe(h.topic)
	defer h.subs.Unsubscribe(h.topic, ch)

	// The feed is one-way; CloseRead handles control frames and cancels ctx
	// when the client goes away.
	ctx := conn.CloseRead(r.Context())

	if err := write(ctx, conn, hello{Type: "connected", Topic: h.topic}); err != nil {
		h.logger.Debug("websocket write failed", "error", err)
		return
	}

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("websocket feed ended", "error", ctx.Err())
			return
		case data := <-ch:
			if err := write(ctx, conn, json.RawMessage(data)); err != nil {
				h.logger.Debug("websocket write failed", "error", err)
				return
			}
		case <-ping.C:
			pctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Ping(pctx)
			cancel()
			if err != nil {
				h.logger.Debug("websocket ping failed", "error", err)
				return
			}
		}
	}
}

func write(ctx context.Context, conn *websocket.Conn, v any) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, v)
}
