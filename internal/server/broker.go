package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/playperu/treasurehunt/internal/hunt"
)

// Topics other than team IDs.
const (
	TopicAdmin = "admin"
	TopicGame  = "game"
)

// Event types.
const (
	EventTeamRegistered = "team_registered"
	EventSubmission     = "submission"
	EventRoundCompleted = "round_completed"
	EventHintUsed       = "hint_used"
	EventGameUpdated    = "game_updated"
	EventTeamUpdated    = "team_updated"
	EventTeamDeleted    = "team_deleted"
)

// Event is the payload delivered to SSE and websocket subscribers.
type Event struct {
	Type         string     `json:"type"`
	TeamID       string     `json:"teamId,omitempty"`
	TeamName     string     `json:"teamName,omitempty"`
	Round        hunt.Round `json:"round,omitempty"`
	Accepted     bool       `json:"accepted,omitempty"`
	Score        int        `json:"score,omitempty"`
	TotalScore   int        `json:"totalScore,omitempty"`
	CurrentRound hunt.Round `json:"currentRound,omitempty"`
	RoundClosed  bool       `json:"roundClosed,omitempty"`
	Timestamp    time.Time  `json:"timestamp"`
}

// Publisher delivers events to the subscribers of a topic.
type Publisher interface {
	Publish(topic string, ev Event)
}

// Broker is an in-process pub/sub keyed by topic: a team ID, TopicAdmin or
// TopicGame.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel that receives JSON-encoded events for topic.
func (b *Broker) Subscribe(topic string) chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[chan []byte]struct{})
	}
	b.subs[topic][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel from the topic's subscribers.
func (b *Broker) Unsubscribe(topic string, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[topic], ch)
	if len(b.subs[topic]) == 0 {
		delete(b.subs, topic)
	}
	b.mu.Unlock()
}

// Publish sends an event to all subscribers of topic.
func (b *Broker) Publish(topic string, ev Event) {
	data, _ := json.Marshal(ev)
	b.deliver(topic, data)
}

func (b *Broker) deliver(topic string, data []byte) {
	b.mu.RLock()
	for ch := range b.subs[topic] {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}

// Subscribers reports how many channels listen on topic.
func (b *Broker) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

// notify fans an event out to the team, to admins, and for game-wide
// changes to every team.
func notify(pub Publisher, ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	if ev.TeamID != "" {
		pub.Publish(ev.TeamID, ev)
	}
	if ev.Type == EventGameUpdated || ev.RoundClosed {
		pub.Publish(TopicGame, ev)
	}
	pub.Publish(TopicAdmin, ev)
}
