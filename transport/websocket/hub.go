package websocket

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/wricardo/pairchat/chat/config"
	"github.com/wricardo/pairchat/chat/registry"
)

// ErrRoomFull is returned by Join when the room already holds the maximum
// number of participants.
var ErrRoomFull = errors.New("room is full")

// Hub tracks live connections and room membership. Membership here is the
// authoritative presence view; the registry only knows which rooms exist.
type Hub struct {
	// Connected clients grouped by roomKey.
	rooms map[string]map[*Client]bool

	// All connected clients by connection ID, joined or not.
	conns map[string]*Client

	// Register requests from new connections.
	register chan *Client

	// Unregister requests from closing connections.
	unregister chan *Client

	registry        *registry.Registry
	maxParticipants int
	sendQueueSize   int
	maxMessageBytes int64
	upgrader        websocket.Upgrader

	mu sync.RWMutex
}

// NewHub creates a hub backed by the given registry. Settings control room
// capacity, per-connection limits, and the origin allowlist.
func NewHub(reg *registry.Registry, settings *config.Settings) *Hub {
	return &Hub{
		rooms:           make(map[string]map[*Client]bool),
		conns:           make(map[string]*Client),
		register:        make(chan *Client),
		unregister:      make(chan *Client),
		registry:        reg,
		maxParticipants: settings.MaxParticipants,
		sendQueueSize:   settings.SendQueueSize,
		maxMessageBytes: settings.MaxMessageBytes,
		upgrader:        newUpgrader(settings.AllowedOrigins),
	}
}

func newUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			// No Origin header means a non-browser client; an empty
			// allowlist means any origin is accepted.
			if origin == "" || len(allowedOrigins) == 0 {
				return true
			}
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// Run starts the hub's connection lifecycle loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)
		}
	}
}

// ServeWS upgrades an HTTP request to a WebSocket connection and starts the
// client's pumps.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	client := newClient(h, conn)
	h.register <- client

	go client.writePump()
	go client.readPump()
}

// Join adds a client to a room's connection group. Joining a room the client
// is already a member of succeeds without effect. The capacity check and the
// insert happen under one lock, so two racing joiners cannot both take the
// last seat.
func (h *Hub) Join(roomKey string, c *Client) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	members := h.rooms[roomKey]
	if members[c] {
		return nil
	}
	if len(members) >= h.maxParticipants {
		return ErrRoomFull
	}
	if members == nil {
		members = make(map[*Client]bool)
		h.rooms[roomKey] = members
	}
	members[c] = true

	logrus.WithFields(logrus.Fields{
		"room_key":     roomKey,
		"connection":   c.id,
		"participants": len(members),
	}).Info("Client joined room")
	return nil
}

// Leave removes a client from its room's connection group and clears the
// client's session. Empty groups are removed from the map.
func (h *Hub) Leave(c *Client) {
	roomKey := c.detach()
	if roomKey == "" {
		return
	}

	h.mu.Lock()
	if members, ok := h.rooms[roomKey]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, roomKey)
		}
	}
	h.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"room_key":   roomKey,
		"connection": c.id,
	}).Info("Client left room")
}

// ExpireRoom notifies a room's participants that it expired, then detaches
// them. Detached clients keep their connection and may create or join another
// room. Called by the registry's expiry timer after the room is already gone
// from the registry.
func (h *Hub) ExpireRoom(roomKey string) {
	h.mu.Lock()
	members := h.rooms[roomKey]
	delete(h.rooms, roomKey)
	clients := make([]*Client, 0, len(members))
	for client := range members {
		clients = append(clients, client)
	}
	h.mu.Unlock()

	data, err := json.Marshal(ServerEvent{Event: EventSystemMessage, Payload: msgRoomExpired})
	if err != nil {
		logrus.WithError(err).Error("Failed to marshal expiry notice")
		return
	}
	for _, client := range clients {
		client.enqueue(data)
		client.detach()
	}

	logrus.WithFields(logrus.Fields{
		"room_key":     roomKey,
		"participants": len(clients),
	}).Info("Room expired, participants notified")
}

// MembersOf returns the connection IDs currently in a room.
func (h *Hub) MembersOf(roomKey string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members := h.rooms[roomKey]
	ids := make([]string, 0, len(members))
	for client := range members {
		ids = append(ids, client.id)
	}
	return ids
}

// ConnectionCount returns the number of open connections, joined or not.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// emitToRoom sends an event to every member of a room except one, typically
// the sender.
func (h *Hub) emitToRoom(roomKey string, ev ServerEvent, except *Client) {
	data, err := json.Marshal(ev)
	if err != nil {
		logrus.WithError(err).Error("Failed to marshal room event")
		return
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.rooms[roomKey]))
	for client := range h.rooms[roomKey] {
		if client != except {
			targets = append(targets, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range targets {
		client.enqueue(data)
	}
}

func (h *Hub) registerClient(c *Client) {
	h.mu.Lock()
	h.conns[c.id] = c
	total := len(h.conns)
	h.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"connection": c.id,
		"total":      total,
	}).Debug("Client connected")
}

// unregisterClient tears down a closing connection. If the client was still
// in a room, the other participant is told about the disconnect.
func (h *Hub) unregisterClient(c *Client) {
	roomKey, name, left := c.session()
	c.detach()

	h.mu.Lock()
	if _, ok := h.conns[c.id]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.conns, c.id)

	var peers []*Client
	if roomKey != "" {
		if members, ok := h.rooms[roomKey]; ok {
			delete(members, c)
			if len(members) == 0 {
				delete(h.rooms, roomKey)
			} else {
				for peer := range members {
					peers = append(peers, peer)
				}
			}
		}
	}
	h.mu.Unlock()

	c.close()

	if roomKey != "" && !left {
		who := name
		if who == "" {
			who = "User"
		}
		data, err := json.Marshal(ServerEvent{Event: EventSystemMessage, Payload: who + " disconnected."})
		if err == nil {
			for _, peer := range peers {
				peer.enqueue(data)
			}
		}
	}

	logrus.WithFields(logrus.Fields{
		"connection": c.id,
		"room_key":   roomKey,
	}).Debug("Client disconnected")
}
