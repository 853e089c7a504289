package ssr

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// MessageType is the type of a live message.
type MessageType string

const (
	// MessageMarkup carries the new markup of the mount point.
	MessageMarkup MessageType = "markup"

	// MessageEvent is sent by clients when an element is clicked.
	MessageEvent MessageType = "event"
)

// Message is exchanged with browsers over the live websocket.
type Message struct {
	Type  MessageType `json:"type"`
	HTML  string      `json:"html,omitempty"`
	ID    string      `json:"id,omitempty"`
	Event string      `json:"event,omitempty"`
	Value string      `json:"value,omitempty"`
}

// LiveHub manages websocket connections of live pages.
type LiveHub struct {
	clients  map[*websocket.Conn]bool
	mu       sync.RWMutex
	sendMu   sync.Mutex
	upgrader websocket.Upgrader
	logger   *slog.Logger

	// snapshot returns the markup sent to a client right after it connects.
	snapshot func() string

	// onEvent handles event messages received from clients.
	onEvent func(Message)
}

// NewLiveHub creates a new hub.
func NewLiveHub(logger *slog.Logger) *LiveHub {
	if logger == nil {
		logger = slog.Default().With("component", "ssr")
	}
	return &LiveHub{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger,
	}
}

// ServeHTTP upgrades the request and keeps the connection until the client
// goes away.
func (h *LiveHub) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	conn, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	if h.snapshot != nil {
		h.send(conn, Message{Type: MessageMarkup, HTML: h.snapshot()})
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			h.logger.Debug("bad live message", "error", err)
			continue
		}
		if msg.Type == MessageEvent && h.onEvent != nil {
			h.onEvent(msg)
		}
	}

	h.drop(conn)
}

// Broadcast sends markup to every connected client.
func (h *LiveHub) Broadcast(markup string) {
	h.broadcast(Message{Type: MessageMarkup, HTML: markup})
}

func (h *LiveHub) broadcast(msg Message) {
	h.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		h.send(client, msg)
	}
}

// send writes msg to conn, dropping the client on failure. Writes are
// serialized because a websocket connection allows one writer at a time.
func (h *LiveHub) send(conn *websocket.Conn, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	h.sendMu.Lock()
	err = conn.WriteMessage(websocket.TextMessage, data)
	h.sendMu.Unlock()
	if err != nil {
		h.drop(conn)
	}
}

func (h *LiveHub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

// ClientCount returns the number of connected clients.
func (h *LiveHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close closes all client connections.
func (h *LiveHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		client.Close()
		delete(h.clients, client)
	}
}
