package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const relayChannel = "treasurehunt:events"

type relayEnvelope struct {
	Topic string          `json:"topic"`
	Event json.RawMessage `json:"event"`
}

// RedisRelay fans events out across server instances: Publish sends them to
// a Redis channel and Run delivers everything received on it to the local
// broker. When Redis is unreachable, events are delivered locally only.
type RedisRelay struct {
	rdb    *redis.Client
	local  *Broker
	logger *slog.Logger
}

func NewRedisRelay(rdb *redis.Client, local *Broker, logger *slog.Logger) *RedisRelay {
	return &RedisRelay{rdb: rdb, local: local, logger: logger}
}

func (rr *RedisRelay) Publish(topic string, ev Event) {
	event, err := json.Marshal(ev)
	if err != nil {
		rr.logger.Error("encoding event", "error", err)
		return
	}
	data, _ := json.Marshal(relayEnvelope{Topic: topic, Event: event})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rr.rdb.Publish(ctx, relayChannel, data).Err(); err != nil {
		rr.logger.Warn("redis publish failed, delivering locally", "topic", topic, "error", err)
		rr.local.deliver(topic, event)
	}
}

// Run forwards relayed events to the local broker until ctx is done.
func (rr *RedisRelay) Run(ctx context.Context) error {
	sub := rr.rdb.Subscribe(ctx, relayChannel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribing to %s: %w", relayChannel, err)
	}

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			var env relayEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				rr.logger.Warn("dropping malformed relay message", "error", err)
				continue
			}
			rr.local.deliver(env.Topic, env.Event)
		}
	}
}
