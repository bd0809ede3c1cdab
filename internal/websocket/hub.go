package websocket

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/vikasavnish/mandacarubroker/internal/models"
)

const broadcastBuffer = 256

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	mu sync.RWMutex

	// Registered clients
	connections map[*websocket.Conn]bool

	// Messages to be broadcast to all connected clients
	broadcast chan models.Message

	// Upgrader for HTTP connections to WebSocket
	upgrader websocket.Upgrader

	done chan struct{}
	once sync.Once
}

// NewHub creates a new hub for managing WebSocket connections
func NewHub() *Hub {
	upgrader := websocket.Upgrader{
		// Allow all origins for WebSocket connections
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	return &Hub{
		connections: make(map[*websocket.Conn]bool),
		broadcast:   make(chan models.Message, broadcastBuffer),
		upgrader:    upgrader,
		done:        make(chan struct{}),
	}
}

// Run delivers broadcast messages until Stop is called
func (h *Hub) Run() {
	for {
		select {
		case msg := <-h.broadcast:
			h.send(msg)
		case <-h.done:
			return
		}
	}
}

// Stop ends Run and closes every client connection
func (h *Hub) Stop() {
	h.once.Do(func() {
		close(h.done)
		h.closeAll()
	})
}

// HandleWebSocket upgrades an HTTP connection to WebSocket
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Error upgrading to WebSocket")
		return
	}

	if !h.register(ws) {
		ws.Close()
		return
	}

	// Read messages from the client (to keep the connection alive)
	go func() {
		defer h.remove(ws)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast queues a message for every connected client. It never blocks; when
// the queue is full the message is dropped.
func (h *Hub) Broadcast(msg models.Message) {
	select {
	case h.broadcast <- msg:
	default:
		log.Warn().Str("type", msg.Type).Msg("WebSocket broadcast queue full, dropping message")
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

func (h *Hub) send(msg models.Message) {
	h.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(h.connections))
	for client := range h.connections {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		if err := client.WriteJSON(msg); err != nil {
			log.Debug().Err(err).Msg("Error sending message to client")
			h.remove(client)
		}
	}
}

// register adds ws unless the hub has been stopped
func (h *Hub) register(ws *websocket.Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	select {
	case <-h.done:
		return false
	default:
	}
	h.connections[ws] = true
	return true
}

func (h *Hub) remove(ws *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.connections[ws] {
		delete(h.connections, ws)
		ws.Close()
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ws := range h.connections {
		ws.Close()
		delete(h.connections, ws)
	}
}
