package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"giftshop/internal/domain"
	"giftshop/internal/infra"

	"github.com/gorilla/websocket"
)

const (
	pingInterval    = 30 * time.Second
	readTimeout     = 60 * time.Second
	writeTimeout    = 10 * time.Second
	subscriberQueue = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type subscriber struct {
	send chan []byte
}

// LiveHub fans cart changes out to the websocket clients of each session.
// Publish never blocks: a client with a full queue misses that update.
type LiveHub struct {
	mu      sync.RWMutex
	subs    map[string]map[*subscriber]struct{}
	closed  chan struct{}
	once    sync.Once
	metrics *infra.Metrics
}

// NewLiveHub creates an empty hub.
func NewLiveHub(metrics *infra.Metrics) *LiveHub {
	if metrics == nil {
		metrics = &infra.Metrics{}
	}
	return &LiveHub{
		subs:    make(map[string]map[*subscriber]struct{}),
		closed:  make(chan struct{}),
		metrics: metrics,
	}
}

// subscribe registers a client for a session.
func (h *LiveHub) subscribe(sessionID string) *subscriber {
	sub := &subscriber{send: make(chan []byte, subscriberQueue)}

	h.mu.Lock()
	set, ok := h.subs[sessionID]
	if !ok {
		set = make(map[*subscriber]struct{})
		h.subs[sessionID] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()

	h.metrics.IncrementSubscribers()
	return sub
}

// unsubscribe removes a client.
func (h *LiveHub) unsubscribe(sessionID string, sub *subscriber) {
	h.mu.Lock()
	set, ok := h.subs[sessionID]
	if ok {
		if _, found := set[sub]; found {
			delete(set, sub)
			h.metrics.DecrementSubscribers()
		}
		if len(set) == 0 {
			delete(h.subs, sessionID)
		}
	}
	h.mu.Unlock()
}

// Subscribers returns the number of clients of a session.
func (h *LiveHub) Subscribers(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[sessionID])
}

// Publish pushes the session cart to its clients. It is the sequencer's
// state-update hook and runs on the sequencer goroutine.
func (h *LiveHub) Publish(state domain.Storefront) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	set := h.subs[state.SessionID]
	if len(set) == 0 {
		return
	}

	msg, err := json.Marshal(domain.NewCartView(state.Cart))
	if err != nil {
		slog.Error("Failed to marshal cart update", slog.Any("error", err))
		return
	}
	for sub := range set {
		select {
		case sub.send <- msg:
		default: // DROP
			slog.Debug("Live cart update dropped", slog.String("session", state.SessionID))
		}
	}
}

// Close disconnects every client.
func (h *LiveHub) Close() {
	h.once.Do(func() { close(h.closed) })
}

func (s *Server) handleLiveCart(w http.ResponseWriter, r *http.Request) {
	sid := SessionID(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied
		slog.Debug("Websocket upgrade failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	sub := s.hub.subscribe(sid)
	defer s.hub.unsubscribe(sid, sub)

	initial, err := json.Marshal(s.carts.View(sid))
	if err != nil {
		return
	}
	if err := writeMessage(conn, websocket.TextMessage, initial); err != nil {
		return
	}

	// Reader: keeps deadlines fresh and notices the client leaving
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(readTimeout))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-s.hub.closed:
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
				time.Now().Add(writeTimeout))
			return
		case msg := <-sub.send:
			if err := writeMessage(conn, websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}

func writeMessage(conn *websocket.Conn, msgType int, data []byte) error {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(msgType, data)
}
