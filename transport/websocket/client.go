package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
)

// Client is one WebSocket connection and its session state. A connection
// starts unjoined, may join at most one room, and once it quits it stays
// inert until the socket closes.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	mu      sync.Mutex
	roomKey string
	name    string
	left    bool
	closed  bool
}

func newClient(h *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:   uuid.NewString(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, h.sendQueueSize),
	}
}

// session returns a snapshot of the client's room membership.
func (c *Client) session() (roomKey, name string, left bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomKey, c.name, c.left
}

func (c *Client) setSession(roomKey, name string) {
	c.mu.Lock()
	c.roomKey = roomKey
	c.name = name
	c.mu.Unlock()
}

// detach clears the client's room membership and returns the roomKey it had.
func (c *Client) detach() string {
	c.mu.Lock()
	roomKey := c.roomKey
	c.roomKey = ""
	c.name = ""
	c.mu.Unlock()
	return roomKey
}

// markLeft makes the session terminal. Further inbound events are ignored.
func (c *Client) markLeft() {
	c.mu.Lock()
	c.left = true
	c.mu.Unlock()
}

func (c *Client) isLeft() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.left
}

// sendEvent marshals and queues an event for this connection.
func (c *Client) sendEvent(ev ServerEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		logrus.WithError(err).Error("Failed to marshal server event")
		return
	}
	c.enqueue(data)
}

// enqueue puts a pre-marshaled frame on the send queue. A full queue drops
// the frame rather than blocking the caller. The send happens under c.mu so
// it cannot race close, which takes the same lock; frames for a closed
// connection are dropped.
func (c *Client) enqueue(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		logrus.WithField("connection", c.id).Warn("Send queue full, dropping frame")
	}
}

// close closes the send queue exactly once. Only the hub's unregister path
// calls this; broadcasters that lost the race see the closed flag in enqueue
// instead of a closed channel.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// readPump pumps inbound frames from the WebSocket connection into the event
// handler. It runs until the connection errors or closes.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.hub.maxMessageBytes)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				logrus.WithError(err).WithField("connection", c.id).Debug("WebSocket read error")
			}
			break
		}
		c.handleEvent(raw)
	}
}

// writePump pumps queued frames to the WebSocket connection and keeps it
// alive with periodic pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
