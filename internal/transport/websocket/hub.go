// Package websocket pushes game snapshots to clients watching a game.
package websocket

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

const sendBufferSize = 16

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(*http.Request) bool {
		return true
	},
}

// Hub - the set of connected clients, grouped by game id.
type Hub struct {
	logger *slog.Logger

	mu       sync.RWMutex
	sessions map[string]map[*client]struct{}
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:   logger.With("component", "websocket_hub"),
		sessions: make(map[string]map[*client]struct{}),
	}
}

// ServeWS - upgrades the request and subscribes the connection to the game, starting with its current snapshot.
func (that *Hub) ServeWS(w http.ResponseWriter, r *http.Request, session *entity.Session) {
	log := that.logger.With("method", "ServeWS", "game_id", session.ID)

	snapshot, err := encodeMessage(EventSnapshot, session)
	if err != nil {
		log.Error("failed to encode snapshot", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		hub:       that,
		conn:      conn,
		send:      make(chan []byte, sendBufferSize),
		sessionID: session.ID,
	}

	c.send <- snapshot
	that.register(c)

	go c.writePump()
	go c.readPump()
}

// Publish - fans a persisted snapshot out to the game's subscribers. Slow clients are dropped.
func (that *Hub) Publish(session *entity.Session) {
	if session == nil {
		return
	}

	that.mu.RLock()
	_, watched := that.sessions[session.ID]
	that.mu.RUnlock()

	if !watched {
		return
	}

	data, err := encodeMessage(EventStateUpdate, session)
	if err != nil {
		that.logger.Error("failed to encode state update", "game_id", session.ID, "error", err)
		return
	}

	var slow []*client

	that.mu.RLock()
	for c := range that.sessions[session.ID] {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	that.mu.RUnlock()

	for _, c := range slow {
		that.logger.Warn("dropping slow websocket client", "game_id", session.ID)
		that.unregister(c)
	}
}

// Subscribers - number of clients watching the game.
func (that *Hub) Subscribers(sessionID string) int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.sessions[sessionID])
}

// Close - disconnects every client.
func (that *Hub) Close() {
	that.mu.Lock()
	defer that.mu.Unlock()

	for id, clients := range that.sessions {
		for c := range clients {
			close(c.send)
		}
		delete(that.sessions, id)
	}
}

func (that *Hub) register(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.sessions[c.sessionID] == nil {
		that.sessions[c.sessionID] = make(map[*client]struct{})
	}
	that.sessions[c.sessionID][c] = struct{}{}

	that.logger.Info("client subscribed", "game_id", c.sessionID, "clients", len(that.sessions[c.sessionID]))
}

func (that *Hub) unregister(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	clients, ok := that.sessions[c.sessionID]
	if !ok {
		return
	}

	if _, ok = clients[c]; !ok {
		return
	}

	delete(clients, c)
	close(c.send)

	if len(clients) == 0 {
		delete(that.sessions, c.sessionID)
	}

	that.logger.Info("client unsubscribed", "game_id", c.sessionID, "clients", len(clients))
}
