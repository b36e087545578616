package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// GameRoom is the room every client watching a game joins.
func GameRoom(gameID string) string { return "game:" + gameID }

// Message is the envelope of every server-to-client frame.
type Message struct {
	Type      string `json:"type"`
	Payload   any    `json:"payload"`
	Timestamp string `json:"timestamp"`
}

// Hub manages websocket clients and room-based broadcasts. All room state is
// owned by the Run goroutine.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcast
	direct     chan direct
	done       chan struct{}

	rooms  map[string]map[*Client]bool
	logger *log.Logger
	clock  quartz.Clock
}

type broadcast struct {
	Room    string
	Type    string
	Payload any
}

type direct struct {
	Client  *Client
	Type    string
	Payload any
}

func NewHub(logger *log.Logger, clock quartz.Clock) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcast, 256),
		direct:     make(chan direct, 256),
		done:       make(chan struct{}),
		rooms:      map[string]map[*Client]bool{},
		logger:     logger,
		clock:      clock,
	}
}

// Run serves the hub until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) error {
	defer func() {
		close(h.done)
		for _, clients := range h.rooms {
			for c := range clients {
				c.closeSend()
			}
		}
		h.rooms = map[string]map[*Client]bool{}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c := <-h.register:
			if h.rooms[c.Room] == nil {
				h.rooms[c.Room] = map[*Client]bool{}
			}
			h.rooms[c.Room][c] = true
		case c := <-h.unregister:
			h.removeClient(c)
		case b := <-h.broadcast:
			h.broadcastToRoom(b.Room, b.Type, b.Payload)
		case d := <-h.direct:
			h.sendToClient(d.Client, d.Type, d.Payload)
		}
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} { return h.done }

// Register adds c to its room. It reports false when the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast queues payload for every client in room. Messages to a stopped hub are dropped.
func (h *Hub) Broadcast(room, typ string, payload any) {
	select {
	case h.broadcast <- broadcast{Room: room, Type: typ, Payload: payload}:
	case <-h.done:
	}
}

// SendTo queues payload for c alone. Clients that already left are skipped.
func (h *Hub) SendTo(c *Client, typ string, payload any) {
	select {
	case h.direct <- direct{Client: c, Type: typ, Payload: payload}:
	case <-h.done:
	}
}

// Encode wraps payload in the message envelope.
func (h *Hub) Encode(typ string, payload any) ([]byte, error) {
	return json.Marshal(Message{
		Type:      typ,
		Payload:   payload,
		Timestamp: h.clock.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (h *Hub) removeClient(c *Client) {
	if c == nil {
		return
	}
	if clients := h.rooms[c.Room]; clients != nil {
		if !clients[c] {
			return
		}
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.rooms, c.Room)
		}
	}
	c.closeSend()
}

func (h *Hub) sendToClient(c *Client, typ string, payload any) {
	if c == nil || !h.rooms[c.Room][c] {
		return
	}
	data, err := h.Encode(typ, payload)
	if err != nil {
		h.logger.Error("ws direct marshal failed", "type", typ, "err", err)
		return
	}
	select {
	case c.Send <- data:
	default:
		h.logger.Warn("ws client too slow; dropping", "room", c.Room, "user_id", c.UserID)
		h.removeClient(c)
	}
}

func (h *Hub) broadcastToRoom(room, typ string, payload any) {
	clients := h.rooms[room]
	if len(clients) == 0 {
		return
	}

	data, err := h.Encode(typ, payload)
	if err != nil {
		h.logger.Error("ws broadcast marshal failed", "room", room, "type", typ, "err", err)
		return
	}

	for c := range clients {
		select {
		case c.Send <- data:
		default:
			h.logger.Warn("ws client too slow; dropping", "room", room, "user_id", c.UserID)
			h.removeClient(c)
		}
	}
}
