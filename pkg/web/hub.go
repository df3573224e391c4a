package web

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gofiber/contrib/websocket"

	"github.com/mKenfenheuer/pi-assistant/internal/log"
)

// eventHub fans pipeline events out to WebSocket subscribers. Slow
// subscribers are dropped rather than allowed to stall the rest.
type eventHub struct {
	mu   sync.RWMutex
	subs map[*subscriber]struct{}
	log  *slog.Logger
}

type subscriber struct {
	send chan []byte
}

func newEventHub() *eventHub {
	return &eventHub{
		subs: make(map[*subscriber]struct{}),
		log:  log.Component("event-hub"),
	}
}

// BroadcastJSON encodes v and queues it for every subscriber.
func (h *eventHub) BroadcastJSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		h.log.Warn("broadcast marshal failed", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		select {
		case sub.send <- data:
		default:
			delete(h.subs, sub)
			close(sub.send)
			h.log.Warn("dropped slow subscriber")
		}
	}
}

// Serve pumps broadcast messages to one WebSocket connection until the
// peer disconnects.
func (h *eventHub) Serve(conn *websocket.Conn) {
	sub := &subscriber{send: make(chan []byte, 64)}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	count := len(h.subs)
	h.mu.Unlock()
	h.log.Debug("subscriber connected", "total", count)

	// Reader: only used to detect disconnects.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	defer func() {
		h.mu.Lock()
		if _, ok := h.subs[sub]; ok {
			delete(h.subs, sub)
			close(sub.send)
		}
		remaining := len(h.subs)
		h.mu.Unlock()
		h.log.Debug("subscriber disconnected", "remaining", remaining)
	}()

	for {
		select {
		case <-done:
			return
		case data, ok := <-sub.send:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}
}

// SubscriberCount returns the number of connected subscribers.
func (h *eventHub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
