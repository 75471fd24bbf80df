// Package stream broadcasts utterances to websocket subscribers so a browser
// (or any websocket client) can watch conversations live. It implements the
// sink contract; dropped or slow subscribers never block the simulation.
package stream

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"

	"github.com/hupe1980/simmesh/logging"
)

// Message is the JSON frame pushed to every subscriber per utterance.
type Message struct {
	AgentID   string    `json:"agent_id"`
	AgentName string    `json:"agent_name"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Broadcaster fans utterances out to websocket subscribers. Subscribers with
// a full send buffer are dropped rather than awaited.
type Broadcaster struct {
	logger logging.Logger

	mu   sync.Mutex
	subs map[chan []byte]struct{}
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster(logger logging.Logger) *Broadcaster {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Broadcaster{logger: logger, subs: make(map[chan []byte]struct{})}
}

// ShowText implements the sink contract by broadcasting a JSON frame.
func (b *Broadcaster) ShowText(agentID, agentName, text string) {
	frame, err := json.Marshal(Message{
		AgentID:   agentID,
		AgentName: agentName,
		Text:      text,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- frame:
		default:
			// Subscriber is not keeping up; skip this frame for it.
			b.logger.Debug("stream subscriber lagging, frame dropped")
		}
	}
}

// SubscriberCount returns the number of connected subscribers.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Broadcaster) subscribe() chan []byte {
	ch := make(chan []byte, 64)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[ch] = struct{}{}
	return ch
}

func (b *Broadcaster) unsubscribe(ch chan []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, ch)
}

// Router returns an http.Handler exposing the live stream at GET /ws.
func (b *Broadcaster) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/ws", b.serveWS)
	return r
}

// serveWS upgrades the connection and pumps broadcast frames until the client
// disconnects.
func (b *Broadcaster) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		b.logger.Warn("websocket accept failed", "error", err)
		return
	}
	defer func() { _ = conn.CloseNow() }()

	ch := b.subscribe()
	defer b.unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "server shutting down")
			return
		case frame := <-ch:
			if err := conn.Write(ctx, websocket.MessageText, frame); err != nil {
				b.logger.Debug("stream write failed, dropping subscriber", "error", err)
				return
			}
		}
	}
}
