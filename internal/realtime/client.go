package realtime

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

var ErrClientDisconnected = errors.New("client disconnected")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		return strings.Contains(origin, "localhost") || strings.Contains(origin, "127.0.0.1")
	},
}

// Client is one live WebSocket connection. Its user identity is empty until
// the client sends an explicit register event.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	userID string

	// Connection state management
	closed int32         // atomic flag to track if client is closed
	done   chan struct{} // closed exactly once when the client goes away
}

func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:   uuid.New().String(),
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
		done: make(chan struct{}),
	}
}

func (c *Client) ID() string {
	return c.id
}

func (c *Client) UserID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID
}

func (c *Client) setUserID(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userID = userID
}

func (c *Client) isClosed() bool {
	return atomic.LoadInt32(&c.closed) == 1
}

// close marks the client dead and releases writePump via the done channel.
// The send channel itself is never closed: a push racing a disconnect lands
// in the buffer and is discarded with the client, so a stale handle can
// never panic the relay.
func (c *Client) close() {
	if atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		close(c.done)
		slog.Debug("Client marked as closed", "clientID", c.id, "userID", c.UserID())
	}
}

func (c *Client) readPump() {
	defer func() {
		c.close()
		c.hub.HandleDisconnect(c)
		if err := c.conn.Close(); err != nil {
			slog.Debug("Error closing connection", "clientID", c.id, "error", err)
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		if c.isClosed() {
			return websocket.ErrCloseSent
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("WebSocket error", "clientID", c.id, "userID", c.UserID(), "error", err)
			} else {
				slog.Debug("WebSocket connection closed", "clientID", c.id, "userID", c.UserID(), "error", err)
			}
			return
		}

		var event Event
		if err := json.Unmarshal(raw, &event); err != nil {
			slog.Debug("Failed to unmarshal event", "clientID", c.id, "error", err)
			c.sendError(ErrCodeInvalidEvent, "invalid event format")
			continue
		}

		// Events are handled to completion here, in this connection's own
		// goroutine, so a single connection's messages are relayed in the
		// order they arrived.
		c.hub.HandleEvent(c, &event)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				slog.Debug("Error writing message", "clientID", c.id, "error", err)
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				slog.Debug("Error sending ping", "clientID", c.id, "error", err)
				return
			}
		}
	}
}

// SendEvent enqueues an event for delivery to this connection. Pushing to a
// connection that has already dropped is a no-op from the caller's point of
// view; the relay never fails a send because of a stale handle.
func (c *Client) SendEvent(eventType EventType, data interface{}) error {
	if c.isClosed() {
		return ErrClientDisconnected
	}

	event, err := NewEvent(eventType, data)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(event)
	if err != nil {
		return err
	}

	select {
	case c.send <- raw:
		return nil
	default:
		// Send buffer is full, drop the connection
		slog.Warn("Send buffer full, closing client", "clientID", c.id, "userID", c.UserID())
		c.close()
		return ErrClientDisconnected
	}
}

func (c *Client) sendError(code, message string) {
	if err := c.SendEvent(EventError, ErrorData{Code: code, Message: message}); err != nil {
		slog.Debug("Failed to send error event", "clientID", c.id, "error", err)
	}
}

// ServeWS upgrades an HTTP request to a WebSocket connection and starts the
// read and write pumps. No presence side effect happens until the client
// sends a register event.
func ServeWS(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade WebSocket connection", "error", err)
		return
	}

	client := NewClient(hub, conn)
	slog.Info("New WebSocket connection established", "clientID", client.id)

	go client.writePump()
	go client.readPump()
}
