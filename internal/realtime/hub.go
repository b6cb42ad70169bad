// Package realtime provides the WebSocket broadcast surface. Each
// connected client joins a per-user room; the notification broadcast
// channel emits into those rooms.
package realtime

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"workdesk.io/workdesk/internal/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients are authenticated by JWT before the upgrade; origin
	// policy is enforced by the CORS layer in front.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Event is the wire envelope pushed to clients.
type Event struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

type client struct {
	hub  *Hub
	room string
	conn *websocket.Conn
	send chan Event
}

// Hub tracks connected clients grouped into rooms and fans events out
// to them. A slow client gets dropped rather than blocking the emitter.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*client]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*client]struct{})}
}

// UserRoom names the room a user's devices join.
func UserRoom(userID int64) string {
	return fmt.Sprintf("user:%d", userID)
}

// Emit delivers an event to every client in room. Non-blocking: clients
// whose buffers are full are disconnected.
func (h *Hub) Emit(room, event string, payload any) {
	h.mu.RLock()
	members := h.rooms[room]
	stale := make([]*client, 0)
	for c := range members {
		select {
		case c.send <- Event{Event: event, Payload: payload}:
		default:
			stale = append(stale, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range stale {
		h.remove(c)
	}
}

// RoomSize returns the number of clients currently in room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[c.room] == nil {
		h.rooms[c.room] = make(map[*client]struct{})
	}
	h.rooms[c.room][c] = struct{}{}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	members, ok := h.rooms[c.room]
	if ok {
		if _, present := members[c]; present {
			delete(members, c)
			close(c.send)
			if len(members) == 0 {
				delete(h.rooms, c.room)
			}
		}
	}
	h.mu.Unlock()
	c.conn.Close()
}

// Serve upgrades an HTTP request to a WebSocket connection and joins the
// user's room until the connection closes.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID int64) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("websocket upgrade: %w", err)
	}

	c := &client{
		hub:  h,
		room: UserRoom(userID),
		conn: conn,
		send: make(chan Event, sendBufferSize),
	}
	h.add(c)
	logger.Debug("websocket client connected", zap.String("room", c.room))

	go c.writeLoop()
	go c.readLoop()
	return nil
}

// readLoop drains inbound frames so control messages are processed; the
// protocol is push-only, client payloads are discarded.
func (c *client) readLoop() {
	defer c.hub.remove(c)
	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case ev, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
