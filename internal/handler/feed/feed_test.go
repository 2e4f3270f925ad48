package feed_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/playperu/treasurehunt/internal/handler/feed"
)

type fakeBroker struct {
	mu   sync.Mutex
	subs map[string][]chan []byte
}

func (b *fakeBroker) Subscribe(topic string) chan []byte {
	ch := make(chan []byte, 4)
	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], ch)
	b.mu.Unlock()
	return ch
}

func (b *fakeBroker) Unsubscribe(topic string, ch chan []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[topic]
	for i, c := range subs {
		if c == ch {
			b.subs[topic] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

func (b *fakeBroker) publish(topic string, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs[topic] {
		ch <- data
	}
}

func (b *fakeBroker) count(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[topic])
}

func TestFeed(t *testing.T) {
	broker := &fakeBroker{subs: make(map[string][]chan []byte)}
	h := feed.NewHandler(slog.Default(), broker, "admin", nil)
	srv := httptest.NewServer(h.Routes())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + srv.URL[len("http"):] + "/feed"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	var hello map[string]string
	if err := wsjson.Read(ctx, conn, &hello); err != nil {
		t.Fatalf("read hello: %v", err)
	}
	if hello["type"] != "connected" || hello["topic"] != "admin" {
		t.Fatalf("hello = %v", hello)
	}

	broker.publish("admin", []byte(`{"type":"submission","teamName":"Code Breakers"}`))
	broker.publish("team-1", []byte(`{"type":"ignored"}`))

	var ev map[string]any
	if err := wsjson.Read(ctx, conn, &ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if ev["type"] != "submission" || ev["teamName"] != "Code Breakers" {
		t.Errorf("event = %v", ev)
	}

	conn.Close(websocket.StatusNormalClosure, "done")

	deadline := time.Now().Add(2 * time.Second)
	for broker.count("admin") != 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscription not released after close")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestFeedOrigin(t *testing.T) {
	broker := &fakeBroker{subs: make(map[string][]chan []byte)}
	h := feed.NewHandler(slog.Default(), broker, "admin", []string{"dashboard.example"})
	srv := httptest.NewServer(h.Routes())
	defer srv.Close()
	wsURL := "ws" + srv.URL[len("http"):] + "/feed"

	tests := []struct {
		name   string
		origin string
		ok     bool
	}{
		{"same host", srv.URL, true},
		{"allowed pattern", "https://dashboard.example", true},
		{"other site", "https://evil.example", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			conn, resp, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
				HTTPHeader: http.Header{"Origin": {tt.origin}},
			})
			if !tt.ok {
				if err == nil {
					conn.CloseNow()
					t.Fatal("expected handshake to be refused")
				}
				if resp == nil || resp.StatusCode != http.StatusForbidden {
					t.Errorf("expected 403, got %v", resp)
				}
				return
			}
			if err != nil {
				t.Fatalf("dial: %v", err)
			}
			defer conn.CloseNow()

			var hello map[string]string
			if err := wsjson.Read(ctx, conn, &hello); err != nil {
				t.Fatalf("read hello: %v", err)
			}
			if hello["type"] != "connected" {
				t.Errorf("hello = %v", hello)
			}
		})
	}
}
