// Package realtime pushes song-board updates to open invitation pages over
// WebSocket. Connections subscribe to the single event their token belongs
// to; every accepted suggestion or vote fans a refresh notice out to them.
package realtime

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/festivo/festivo/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Guests never send payloads; anything longer than a control frame is bogus.
	maxMessageSize = 512

	sendBufferSize = 16
)

// Notice is the JSON payload delivered to subscribers.
type Notice struct {
	Type    string `json:"type"`
	EventID string `json:"event_id"`
	Data    any    `json:"data,omitempty"`
}

// NoticeSongBoardChanged tells the page to re-fetch the song list.
const NoticeSongBoardChanged = "song_board_changed"

// Hub tracks open invitation pages grouped by event.
type Hub struct {
	mu       sync.RWMutex
	byEvent  map[string]map[*connection]struct{}
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewHub constructs an empty hub.
func NewHub() *Hub {
	return &Hub{
		byEvent: make(map[string]map[*connection]struct{}),
		log:     logger.WithModule("realtime"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				originHost := hostWithoutPort(origin)
				return originHost == hostWithoutPort(r.Host) || isLoopback(originHost)
			},
		},
	}
}

// Serve upgrades the request and keeps the connection subscribed to the
// event until the page closes it.
func (h *Hub) Serve(eventID string, w http.ResponseWriter, r *http.Request) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		http.Error(w, "event required", http.StatusBadRequest)
		return
	}

	socket, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	conn := &connection{
		hub:     h,
		socket:  socket,
		eventID: eventID,
		send:    make(chan Notice, sendBufferSize),
	}
	h.register(conn)

	go conn.writeLoop()
	conn.readLoop()
}

// BroadcastSongBoard notifies every open page for the event that the board
// changed.
func (h *Hub) BroadcastSongBoard(eventID string) {
	h.Broadcast(eventID, Notice{Type: NoticeSongBoardChanged, EventID: eventID})
}

// Broadcast delivers a notice to every connection subscribed to the event.
// Slow consumers are dropped rather than allowed to stall the rest.
func (h *Hub) Broadcast(eventID string, notice Notice) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn := range h.byEvent[eventID] {
		select {
		case conn.send <- notice:
		default:
			h.log.Warn("dropping backpressured subscriber", zap.String("event_id", eventID))
			go conn.close()
		}
	}
}

// Subscribers reports how many connections an event currently has.
func (h *Hub) Subscribers(eventID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byEvent[eventID])
}

func (h *Hub) register(conn *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.byEvent[conn.eventID] == nil {
		h.byEvent[conn.eventID] = make(map[*connection]struct{})
	}
	h.byEvent[conn.eventID][conn] = struct{}{}
}

func (h *Hub) unregister(conn *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	peers := h.byEvent[conn.eventID]
	delete(peers, conn)
	if len(peers) == 0 {
		delete(h.byEvent, conn.eventID)
	}
}

type connection struct {
	hub     *Hub
	socket  *websocket.Conn
	eventID string
	send    chan Notice
	once    sync.Once
}

func (c *connection) readLoop() {
	defer c.close()

	c.socket.SetReadLimit(maxMessageSize)
	_ = c.socket.SetReadDeadline(time.Now().Add(pongWait))
	c.socket.SetPongHandler(func(string) error {
		_ = c.socket.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// Inbound frames are ignored; the loop exists to notice disconnects.
	for {
		if _, _, err := c.socket.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *connection) writeLoop() {
	defer c.close()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case notice, ok := <-c.send:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.socket.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.socket.WriteJSON(notice); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *connection) close() {
	c.once.Do(func() {
		c.hub.unregister(c)
		close(c.send)
		_ = c.socket.Close()
	})
}

func hostWithoutPort(host string) string {
	host = strings.TrimSpace(host)
	host = strings.TrimPrefix(host, "http://")
	host = strings.TrimPrefix(host, "https://")
	if i := strings.IndexByte(host, '/'); i >= 0 {
		host = host[:i]
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

func isLoopback(host string) bool {
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback()
	}
	return strings.EqualFold(host, "localhost")
}
