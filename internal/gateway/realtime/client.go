package realtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/syntrixbase/wordlog/internal/record"
)

// Maximum message size allowed from peer.
const maxMessageSize = 512

// Client is one websocket subscriber of a single area.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	area string

	// Buffered channel of outbound messages.
	send chan Message

	ctx    context.Context
	cancel context.CancelFunc

	pingPeriod time.Duration
	pongWait   time.Duration
	writeWait  time.Duration

	mu     sync.Mutex
	closed bool
}

func newClient(ctx context.Context, hub *Hub, conn *websocket.Conn, area string, s *Server) *Client {
	ctx, cancel := context.WithCancel(ctx)
	return &Client{
		hub:        hub,
		conn:       conn,
		area:       area,
		send:       make(chan Message, s.cfg.SendBuffer),
		ctx:        ctx,
		cancel:     cancel,
		pingPeriod: s.cfg.PingInterval,
		pongWait:   s.cfg.PingInterval * 10 / 9,
		writeWait:  s.cfg.WriteTimeout,
	}
}

// enqueue queues msg for the write pump. A client whose buffer is full is
// disconnected rather than allowed to stall the change feed.
func (c *Client) enqueue(msg Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- msg:
	default:
		slog.Warn("Realtime client too slow, disconnecting", "area", c.area)
		c.closeLocked()
	}
}

func (c *Client) onEvent(ev record.Event) {
	c.enqueue(messageFromEvent(ev))
}

// stop closes the outbound queue; the write pump then sends a close frame
// and tears down the connection.
func (c *Client) stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Client) closeLocked() {
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	c.cancel()
}

// readPump only services control frames. Its exit means the peer is gone.
func (c *Client) readPump() {
	defer func() {
		c.stop()
		c.hub.unregister(c)
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("Realtime connection lost", "area", c.area, "error", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				slog.Debug("Realtime write failed", "area", c.area, "error", err)
				c.stop()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.stop()
				return
			}
		}
	}
}
