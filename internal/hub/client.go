package hub

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Satyam216/todo-collab/internal/metrics"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 16
)

// Client is one websocket connection watching a room.
type Client struct {
	conn      *websocket.Conn
	roomID    string
	sessionID string
	send      chan Event

	closeOnce sync.Once
}

// NewClient wraps an upgraded connection. The caller is expected to
// invoke Serve, which registers the client and pumps until disconnect.
func NewClient(conn *websocket.Conn, roomID, sessionID string) *Client {
	return &Client{
		conn:      conn,
		roomID:    roomID,
		sessionID: sessionID,
		send:      make(chan Event, sendBuffer),
	}
}

// Serve registers the client with the hub and blocks until the
// connection dies or the hub removes it.
func (c *Client) Serve(h *Hub) {
	metrics.WSConnections.Inc()
	defer metrics.WSConnections.Dec()

	h.register <- c

	go c.writePump()
	c.readPump(h)
}

// readPump consumes (and discards) client frames. Clients only listen;
// its real job is detecting disconnects and answering pings.
func (c *Client) readPump(h *Hub) {
	defer func() {
		h.unregister <- c
	}()

	c.conn.SetReadLimit(512)
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

// writePump pushes events to the peer and keeps the connection alive.
func (c *Client) writePump() {
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

// close shuts the send channel, which ends writePump and closes the
// connection. Safe to call more than once.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}
