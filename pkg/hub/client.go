package hub

import (
	"time"

	"github.com/gofiber/websocket/v2"
)

// Keepalive timing for subscriber connections.
const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = pongWait * 9 / 10

	// Subscribers never send payloads, only control frames.
	readLimit = 1024

	queueLen = 64
)

// Conn is the part of *websocket.Conn a subscriber uses.
type Conn interface {
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

var _ Conn = (*websocket.Conn)(nil)

// Client is one websocket subscriber to a topic.
type Client struct {
	hub   *Hub
	conn  Conn
	topic string
	queue chan []byte
}

// NewClient subscribes conn to topic. If the hub has stopped the client is
// returned already closed and Serve exits immediately.
func NewClient(h *Hub, conn Conn, topic string) *Client {
	c := &Client{
		hub:   h,
		conn:  conn,
		topic: topic,
		queue: make(chan []byte, queueLen),
	}
	select {
	case h.register <- c:
	case <-h.done:
		close(c.queue)
	}
	return c
}

// Serve writes queued updates until the connection drops or the hub stops.
// It blocks; call it from the websocket handler.
func (c *Client) Serve() {
	go c.write()
	c.watch()
}

// watch consumes control frames so pongs extend the deadline, and
// unsubscribes once the peer goes away.
func (c *Client) watch() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(readLimit)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// write is the only goroutine that writes to conn.
func (c *Client) write() {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()
	defer c.conn.Close()

	for {
		kind := websocket.PingMessage
		var data []byte
		select {
		case msg, ok := <-c.queue:
			if !ok {
				c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			kind, data = websocket.TextMessage, msg
		case <-ping.C:
		}

		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(kind, data); err != nil {
			return
		}
	}
}
