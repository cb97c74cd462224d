// Package scoreboard streams the lobby leaderboard to browsers over websockets.
package scoreboard

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/tomz197/invaders/internal/loop/server"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The leaderboard is public and read-only.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Entry is one leaderboard row.
type Entry struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
	Level    int    `json:"level"`
	High     int    `json:"high"`
}

// Board is the JSON document sent to browsers.
type Board struct {
	Players int     `json:"players"`
	Top     []Entry `json:"top"`
}

// FromSnapshot converts a lobby snapshot into a board.
func FromSnapshot(snap *server.Snapshot) Board {
	b := Board{Top: make([]Entry, 0, len(snap.TopScores))}
	b.Players = snap.Players
	for _, e := range snap.TopScores {
		b.Top = append(b.Top, Entry{
			Username: e.Username,
			Score:    e.Score.Score,
			Level:    e.Level,
			High:     e.High,
		})
	}
	return b
}

// client is one websocket viewer.
type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub maintains the set of active viewers and sends each the newest board.
type Hub struct {
	clients    map[*client]bool
	changed    chan struct{} // Holds at most one pending broadcast
	register   chan *client
	unregister chan *client
	done       chan struct{} // Closed when Run returns

	mu     sync.RWMutex
	latest []byte // Last published board, sent to new viewers
	logger *log.Logger
}

// NewHub creates a hub holding an empty board. A nil logger discards output.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	h := &Hub{
		clients:    make(map[*client]bool),
		changed:    make(chan struct{}, 1),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		logger:     logger,
	}
	h.latest, _ = json.Marshal(Board{Top: []Entry{}})
	return h
}

// Run starts the hub's event loop. Blocks until the context is cancelled,
// then closes all viewer connections.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.unregisterClient(c)
			}
			return
		case c := <-h.register:
			h.clients[c] = true
			c.offer(h.Latest())
			h.logger.Debug("viewer connected", "viewers", len(h.clients))
		case c := <-h.unregister:
			h.unregisterClient(c)
		case <-h.changed:
			msg := h.Latest()
			for c := range h.clients {
				c.offer(msg)
			}
		}
	}
}

// Publish stores b as the latest board and wakes the hub to send it to every
// viewer. Boards published faster than the hub sends them coalesce, so
// viewers may skip intermediate boards but always end on the newest.
// Safe to call from any goroutine.
func (h *Hub) Publish(b Board) {
	data, err := json.Marshal(b)
	if err != nil {
		h.logger.Error("failed to marshal board", "err", err)
		return
	}
	h.mu.Lock()
	h.latest = data
	h.mu.Unlock()

	select {
	case h.changed <- struct{}{}:
	default:
		// A broadcast is already pending and will pick up this board
	}
}

// Latest returns the last published board as JSON.
func (h *Hub) Latest() []byte {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latest
}

// ServeJSON answers with the latest board.
func (h *Hub) ServeJSON(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(h.Latest()); err != nil {
		h.logger.Debug("leaderboard write failed", "err", err)
	}
}

// ServeWS upgrades the request and streams boards until the viewer leaves.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "err", err)
		return
	}

	c := &client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 1),
	}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// Handler routes /ws and /leaderboard to the hub.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.ServeWS)
	mux.HandleFunc("/leaderboard", h.ServeJSON)
	return mux
}

// unregisterClient removes a viewer and closes its send channel.
func (h *Hub) unregisterClient(c *client) {
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		h.logger.Debug("viewer disconnected", "viewers", len(h.clients))
	}
}

// offer queues msg for the viewer, replacing a board it has not sent yet.
// Only the hub goroutine sends on c.send.
func (c *client) offer(msg []byte) {
	select {
	case c.send <- msg:
		return
	default:
	}
	select {
	case <-c.send:
	default:
	}
	c.send <- msg
}

// readPump discards viewer messages and notices disconnects.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("websocket error", "err", err)
			}
			return
		}
	}
}

// writePump sends boards and pings to the viewer.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
