// server/internal/socket/hub.go
package socket

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Hub fans volunteer location events out to requester clients watching a
// request. Pull tracking stays the authoritative read path; this is a push
// optimization for live maps.
type Hub struct {
	// subscribers maps a requestID to the connections watching it.
	subscribers map[string]map[*websocket.Conn]struct{}
	mu          sync.RWMutex
	log         zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		subscribers: make(map[string]map[*websocket.Conn]struct{}),
		log:         log,
	}
}

// Subscribe registers a connection for a request's events.
func (h *Hub) Subscribe(requestID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subscribers[requestID] == nil {
		h.subscribers[requestID] = make(map[*websocket.Conn]struct{})
	}
	h.subscribers[requestID][conn] = struct{}{}
	h.log.Info().Str("request", requestID).Msg("tracking client subscribed")
}

// Unsubscribe removes a connection.
func (h *Hub) Unsubscribe(requestID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.subscribers[requestID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.subscribers, requestID)
		}
		h.log.Info().Str("request", requestID).Msg("tracking client unsubscribed")
	}
}

// LocationEvent is pushed when a volunteer reports a new position.
type LocationEvent struct {
	Type       string  `json:"type"` // "location"
	RequestID  string  `json:"request_id"`
	DispatchID string  `json:"dispatch_id"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	UpdatedAt  string  `json:"updated_at"`
}

// Publish sends an event to every subscriber of the request. A client that is
// offline or slow is not an error; its write failure is logged and ignored.
//
// The write lock is held across the writes: gorilla connections allow only one
// concurrent writer, and concurrent publishes for the same request are valid.
func (h *Hub) Publish(requestID string, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to marshal tracking event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.subscribers[requestID] {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.log.Warn().Str("request", requestID).Err(err).Msg("tracking push failed")
		}
	}
}
