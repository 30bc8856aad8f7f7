package push

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/99minutos/invoice-system/internal/core/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

// Client actions accepted on the socket.
const (
	ActionJoinAdminGroup  = "JoinAdminGroup"
	ActionLeaveAdminGroup = "LeaveAdminGroup"

	eventError = "Error"
)

type clientAction struct {
	Action string `json:"action"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// Client is one WebSocket connection of an authenticated principal.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	principal domain.Principal

	send chan []byte
	done chan struct{}
	once sync.Once

	// groups is guarded by hub.mu.
	groups map[string]bool
}

func newClient(h *Hub, conn *websocket.Conn, p domain.Principal) *Client {
	return &Client{
		hub:       h,
		conn:      conn,
		principal: p,
		send:      make(chan []byte, sendBuffer),
		done:      make(chan struct{}),
		groups:    make(map[string]bool),
	}
}

// enqueue hands data to the write pump without blocking.
func (c *Client) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return true
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// close signals the write pump to send a close frame and drop the connection.
func (c *Client) close() {
	c.once.Do(func() { close(c.done) })
}

// readPump handles client actions and pong frames until the connection drops.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn().Err(err).Str("user_id", c.principal.ID).Msg("websocket read failed")
			}
			return
		}

		var action clientAction
		if err := json.Unmarshal(raw, &action); err != nil {
			c.reply(eventError, errorPayload{Message: "malformed message"})
			continue
		}
		c.handle(action.Action)
	}
}

func (c *Client) handle(action string) {
	switch action {
	case ActionJoinAdminGroup:
		if !c.principal.IsAdmin() {
			c.reply(eventError, errorPayload{Message: domain.ErrForbidden.Error()})
			return
		}
		c.hub.join(c, domain.AdminsGroup)
	case ActionLeaveAdminGroup:
		c.hub.leave(c, domain.AdminsGroup)
	default:
		c.reply(eventError, errorPayload{Message: "unknown action"})
	}
}

func (c *Client) reply(event string, payload any) {
	data, err := json.Marshal(Frame{Event: event, Data: payload})
	if err != nil {
		return
	}
	c.enqueue(data)
}

// writePump serialises writes to the connection and keeps it alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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
