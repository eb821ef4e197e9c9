package spectate

import (
	"time"

	"github.com/gorilla/websocket"
)

// client is one viewer connection with its own send queue.
type client struct {
	ws     *websocket.Conn
	send   chan []byte
	closed bool // guarded by the hub lock

	readTimeout time.Duration
}

func newClient(ws *websocket.Conn, readTimeout time.Duration) *client {
	return &client{
		ws:          ws,
		send:        make(chan []byte, sendQueue),
		readTimeout: readTimeout,
	}
}

// enqueue must be called with the hub lock held.
func (c *client) enqueue(b []byte) {
	if c.closed {
		return
	}
	select {
	case c.send <- b:
	default:
	}
}

// close must be called with the hub lock held.
func (c *client) close() {
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// writePump sends queued frames and keeps the connection alive with pings.
func (c *client) writePump() {
	ping := time.NewTicker(c.readTimeout * 9 / 10)
	defer func() {
		ping.Stop()
		c.ws.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.ws.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(writeTimeout))
				return
			}
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ping.C:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}

// readPump drains viewer messages until the connection fails. Viewers are
// read-only, so payloads are discarded.
func (c *client) readPump() {
	c.ws.SetReadLimit(1 << 10)
	_ = c.ws.SetReadDeadline(time.Now().Add(c.readTimeout))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(c.readTimeout))
	})
	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			return
		}
	}
}
