package push

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/99minutos/invoice-system/internal/core/domain"
	"github.com/99minutos/invoice-system/internal/core/ports"
	"github.com/99minutos/invoice-system/internal/pkg/metrics"
)

// Frame is the JSON envelope written to every socket.
type Frame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type clientSet map[*Client]struct{}

// Hub tracks the live connections of this instance, indexed by user and by
// group. It implements ports.Pusher for in-process delivery.
type Hub struct {
	mu     sync.RWMutex
	users  map[string]clientSet
	groups map[string]clientSet

	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		users:  make(map[string]clientSet),
		groups: make(map[string]clientSet),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Connections are authenticated by access token, not by origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger.With().Str("component", "push_hub").Logger(),
	}
}

// ServeWS upgrades the request and serves the connection until it closes.
// Admins join AdminsGroup on connect.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, principal domain.Principal) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("websocket upgrade: %w", err)
	}

	c := newClient(h, conn, principal)
	h.register(c)

	go c.writePump()
	c.readPump()
	return nil
}

// Push writes msg to every connection of its target. A target with no live
// connection is not an error.
func (h *Hub) Push(_ context.Context, msg ports.PushMessage) error {
	data, err := json.Marshal(Frame{Event: msg.Event, Data: msg.Payload})
	if err != nil {
		return fmt.Errorf("%w: encode frame: %v", domain.ErrDeliveryFailed, err)
	}

	for _, c := range h.targets(msg.Target) {
		if !c.enqueue(data) {
			h.logger.Warn().
				Str("user_id", c.principal.ID).
				Str("event", msg.Event).
				Msg("client send buffer full, closing connection")
			c.close()
		}
	}
	return nil
}

// Connections returns the number of live connections of userID.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

// Close disconnects every client. Used on shutdown.
func (h *Hub) Close() {
	h.mu.RLock()
	all := make([]*Client, 0)
	for _, set := range h.users {
		for c := range set {
			all = append(all, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range all {
		c.close()
	}
}

func (h *Hub) targets(t ports.PushTarget) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	set := h.users[t.UserID]
	if t.Group != "" {
		set = h.groups[t.Group]
	}
	out := make([]*Client, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	add(h.users, c.principal.ID, c)
	if c.principal.IsAdmin() {
		add(h.groups, domain.AdminsGroup, c)
		c.groups[domain.AdminsGroup] = true
	}
	h.mu.Unlock()

	metrics.WebSocketConnections.Inc()
	h.logger.Debug().Str("user_id", c.principal.ID).Msg("client connected")
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	remove(h.users, c.principal.ID, c)
	for group := range c.groups {
		remove(h.groups, group, c)
	}
	c.groups = nil
	h.mu.Unlock()

	metrics.WebSocketConnections.Dec()
	h.logger.Debug().Str("user_id", c.principal.ID).Msg("client disconnected")
}

func (h *Hub) join(c *Client, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.groups == nil {
		return
	}
	add(h.groups, group, c)
	c.groups[group] = true
}

func (h *Hub) leave(c *Client, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	remove(h.groups, group, c)
	delete(c.groups, group)
}

func add(index map[string]clientSet, key string, c *Client) {
	set, ok := index[key]
	if !ok {
		set = make(clientSet)
		index[key] = set
	}
	set[c] = struct{}{}
}

func remove(index map[string]clientSet, key string, c *Client) {
	set, ok := index[key]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(index, key)
	}
}
