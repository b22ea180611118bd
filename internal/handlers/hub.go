// internal/handlers/hub.go
package handlers

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"
)

// wsClient is one subscribed connection inside a game room.
type wsClient struct {
	conn   *websocket.Conn
	player string
}

// Hub fans domain events out to the WebSocket connections subscribed to each
// game room. It satisfies the engine's Notifier interface; writes happen
// asynchronously so event emission never blocks turn processing.
type Hub struct {
	logger *logrus.Logger

	mu    sync.Mutex
	rooms map[string]map[*wsClient]struct{}
}

// NewHub returns an empty hub.
func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		logger: logger,
		rooms:  make(map[string]map[*wsClient]struct{}),
	}
}

// Subscribe registers a connection under a game room and returns the handle
// needed to unsubscribe it.
func (h *Hub) Subscribe(room, player string, conn *websocket.Conn) *wsClient {
	c := &wsClient{conn: conn, player: player}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*wsClient]struct{})
	}
	h.rooms[room][c] = struct{}{}
	return c
}

// Unsubscribe removes a connection from a room, dropping the room when it
// empties.
func (h *Hub) Unsubscribe(room string, c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.rooms[room]; ok {
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.rooms, room)
		}
	}
}

// EmitToRoom sends an event to every connection in the room.
func (h *Hub) EmitToRoom(room, event string, payload map[string]interface{}) {
	h.mu.Lock()
	targets := make([]*wsClient, 0, len(h.rooms[room]))
	for c := range h.rooms[room] {
		targets = append(targets, c)
	}
	h.mu.Unlock()

	if len(targets) == 0 {
		return
	}
	data, err := h.encode(room, event, payload)
	if err != nil {
		return
	}
	go h.write(room, targets, data)
}

// Emit broadcasts an event to every connection in every room.
func (h *Hub) Emit(event string, payload map[string]interface{}) {
	h.mu.Lock()
	var targets []*wsClient
	for _, clients := range h.rooms {
		for c := range clients {
			targets = append(targets, c)
		}
	}
	h.mu.Unlock()

	if len(targets) == 0 {
		return
	}
	data, err := h.encode("*", event, payload)
	if err != nil {
		return
	}
	go h.write("*", targets, data)
}

// EmitToPlayer sends an event to one named player in the room.
func (h *Hub) EmitToPlayer(room, player, event string, payload map[string]interface{}) {
	h.mu.Lock()
	var targets []*wsClient
	for c := range h.rooms[room] {
		if c.player == player {
			targets = append(targets, c)
		}
	}
	h.mu.Unlock()

	if len(targets) == 0 {
		return
	}
	data, err := h.encode(room, event, payload)
	if err != nil {
		return
	}
	go h.write(room, targets, data)
}

func (h *Hub) encode(room, event string, payload map[string]interface{}) ([]byte, error) {
	msg := map[string]interface{}{"type": event}
	for k, v := range payload {
		if k == "type" {
			continue
		}
		msg[k] = v
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Errorf("failed to marshal event %s for room %s: %v", event, room, err)
		return nil, err
	}
	return data, nil
}

func (h *Hub) write(room string, targets []*wsClient, data []byte) {
	for _, c := range targets {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := c.conn.Write(ctx, websocket.MessageText, data)
		cancel()
		if err != nil {
			h.logger.Warnf("failed to write to player %s in room %s: %v", c.player, room, err)
		}
	}
}
