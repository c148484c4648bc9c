package ws

import (
	"log/slog"
	"sync"

	"github.com/tunequiz/tunequiz/internal/model"
	"github.com/tunequiz/tunequiz/internal/protocol"
	"github.com/tunequiz/tunequiz/internal/services/session"
)

// pendingLimit bounds messages buffered for a player between the moment
// the session addresses them and the moment their connection is bound
const pendingLimit = 16

// Hub fans session messages out to the websocket clients of one session.
// Direct messages for a player whose connection is not yet bound are
// buffered briefly; the bind happens right after the join is accepted.
type Hub struct {
	logger *slog.Logger

	mu       sync.Mutex
	clients  map[*Client]bool
	byPlayer map[model.PlayerID]*Client
	pending  map[model.PlayerID][]protocol.Message
}

var _ session.Emitter = (*Hub)(nil)

// NewHub creates an empty hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:   logger.With(slog.String("component", "ws-hub")),
		clients:  make(map[*Client]bool),
		byPlayer: make(map[model.PlayerID]*Client),
		pending:  make(map[model.PlayerID][]protocol.Message),
	}
}

// Broadcast queues a message for every connected client.
// Clients whose send buffer is full are dropped; their read pump notices
// the closed connection and reports the disconnect.
func (h *Hub) Broadcast(msg protocol.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
			h.dropLocked(client)
		}
	}
}

// Send queues a message for one player
func (h *Hub) Send(id model.PlayerID, msg protocol.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.byPlayer[id]
	if !ok {
		if len(h.pending[id]) < pendingLimit {
			h.pending[id] = append(h.pending[id], msg)
		}
		return
	}

	select {
	case client.send <- msg:
	default:
		h.dropLocked(client)
	}
}

// Bind associates a connection with a player and flushes any messages
// addressed to the player before the bind
func (h *Hub) Bind(client *Client, id model.PlayerID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.clients[client] {
		return
	}

	client.playerID = id
	h.byPlayer[id] = client

	for _, msg := range h.pending[id] {
		select {
		case client.send <- msg:
		default:
			h.dropLocked(client)
			delete(h.pending, id)
			return
		}
	}
	delete(h.pending, id)
}

// sendClient queues a message for one connection, bound or not
func (h *Hub) sendClient(client *Client, msg protocol.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.clients[client] {
		return
	}

	select {
	case client.send <- msg:
	default:
		h.dropLocked(client)
	}
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = true
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client] {
		h.dropLocked(client)
	}
}

// CloseAll disconnects every client, for session teardown
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		h.dropLocked(client)
	}
}

// dropLocked removes a client and closes its send channel, which stops
// the write pump. Callers must hold the hub mutex.
func (h *Hub) dropLocked(client *Client) {
	delete(h.clients, client)
	if client.playerID != "" && h.byPlayer[client.playerID] == client {
		delete(h.byPlayer, client.playerID)
	}
	close(client.send)
	_ = client.conn.Close()
}
