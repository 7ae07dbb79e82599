package server

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/sathwikreddyshamakuri/credit-card-fraud-detector/internal/metrics"
	"github.com/sathwikreddyshamakuri/credit-card-fraud-detector/internal/scoring"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub fans scoring results out to connected WebSocket clients. The
// connection set is guarded by a mutex; a client that fails a write is
// dropped rather than allowed to block the broadcast.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	met     *metrics.Metrics
}

func NewHub(met *metrics.Metrics) *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]struct{}),
		met:     met,
	}
}

// ServeHTTP upgrades the request and registers the client. The read loop
// exists only to detect the peer closing.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	h.register(conn)
	defer h.unregister(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast sends a scoring result to every connected client.
func (h *Hub) Broadcast(result scoring.ScoreResult) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		if err := conn.WriteJSON(result); err != nil {
			log.Debug().Err(err).Msg("dropping slow websocket client")
			conn.Close()
			delete(h.clients, conn)
			if h.met != nil {
				h.met.WSClients.Add(-1)
			}
		}
	}
}

// Close disconnects all clients.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
		if h.met != nil {
			h.met.WSClients.Add(-1)
		}
	}
}

func (h *Hub) register(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()
	if h.met != nil {
		h.met.WSClients.Add(1)
	}
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	_, present := h.clients[conn]
	if present {
		delete(h.clients, conn)
	}
	h.mu.Unlock()

	conn.Close()
	if present && h.met != nil {
		h.met.WSClients.Add(-1)
	}
}

func (h *Hub) clientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
