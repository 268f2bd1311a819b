package ws

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"littlelemon/events"
	"littlelemon/logger"
	"littlelemon/pkg/apperr"
	"littlelemon/pkg/resp"
	"littlelemon/policy"
	"littlelemon/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// Subscription is one websocket connection of one user.
type Subscription struct {
	Conn     *websocket.Conn
	Identity policy.Identity
}

// IdentityLookup returns a user's identity as of now.
type IdentityLookup interface {
	Lookup(ctx context.Context, userID uint) (policy.Identity, error)
}

// OrderHub pushes order events to the users allowed to see them: the order's
// owner, its assigned delivery crew, and every manager.
type OrderHub struct {
	clients    map[*websocket.Conn]policy.Identity
	broadcast  chan events.Event
	register   chan Subscription
	unregister chan *websocket.Conn
	done       chan struct{}
	mu         sync.Mutex
	lookup     IdentityLookup
	log        *slog.Logger
}

var _ events.Publisher = (*OrderHub)(nil)

// NewOrderHub builds a hub. With a nil lookup subscribers keep the identity
// they connected with.
func NewOrderHub(log *slog.Logger, lookup IdentityLookup) *OrderHub {
	return &OrderHub{
		clients:    make(map[*websocket.Conn]policy.Identity),
		broadcast:  make(chan events.Event, 64),
		register:   make(chan Subscription),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		lookup:     lookup,
		log:        log,
	}
}

// Run serves register, unregister and broadcast until ctx ends, then closes
// every connection.
func (h *OrderHub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for conn := range h.clients {
				conn.Close()
				delete(h.clients, conn)
			}
			h.mu.Unlock()
			return

		case sub := <-h.register:
			h.mu.Lock()
			h.clients[sub.Conn] = sub.Identity
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mu.Unlock()

		case ev := <-h.broadcast:
			h.deliver(ctx, ev)
		}
	}
}

// deliver writes ev to every subscriber allowed to see it. Roles are looked
// up again for each event so group changes reach open connections; a
// subscriber whose user is gone is disconnected.
func (h *OrderHub) deliver(ctx context.Context, ev events.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	seen := make(map[uint]policy.Identity)
	for conn, id := range h.clients {
		cur, err := h.current(ctx, id, seen)
		if errors.Is(err, apperr.ErrNotFound) {
			conn.Close()
			delete(h.clients, conn)
			continue
		}
		if err != nil {
			h.log.Warn("ws identity lookup failed, skipping event", "user_id", id.UserID, logger.Err(err))
			continue
		}
		h.clients[conn] = cur
		if !canSee(cur, ev) {
			continue
		}
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(ev); err != nil {
			h.log.Debug("ws write failed, dropping client", "user_id", cur.UserID, logger.Err(err))
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

func (h *OrderHub) current(ctx context.Context, id policy.Identity, seen map[uint]policy.Identity) (policy.Identity, error) {
	if h.lookup == nil {
		return id, nil
	}
	if cur, ok := seen[id.UserID]; ok {
		return cur, nil
	}
	cur, err := h.lookup.Lookup(ctx, id.UserID)
	if err != nil {
		return id, err
	}
	seen[id.UserID] = cur
	return cur, nil
}

// Publish queues ev for delivery. It gives up when ctx ends or the hub has
// stopped.
func (h *OrderHub) Publish(ctx context.Context, ev events.Event) error {
	select {
	case h.broadcast <- ev:
		return nil
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribers reports how many connections are registered.
func (h *OrderHub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func canSee(id policy.Identity, ev events.Event) bool {
	switch policy.OrderScope(id) {
	case policy.ScopeAll:
		return true
	case policy.ScopeAssigned:
		return ev.DeliveryCrewID != nil && *ev.DeliveryCrewID == id.UserID
	case policy.ScopeOwned:
		return ev.UserID == id.UserID
	default:
		return false
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// HandleWebSocket upgrades GET /ws/orders for any signed-in user.
func (h *OrderHub) HandleWebSocket(c *gin.Context) {
	id := utils.CurrentIdentity(c)
	if err := policy.Decide(id, policy.OrderList); err != nil {
		resp.Error(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", logger.Err(err))
		return
	}

	select {
	case h.register <- Subscription{Conn: conn, Identity: id}:
	case <-h.done:
		conn.Close()
		return
	}
	go h.readPump(conn)
}

// readPump discards client frames and unregisters the connection once the
// client goes away.
func (h *OrderHub) readPump(conn *websocket.Conn) {
	defer func() {
		select {
		case h.unregister <- conn:
		case <-h.done:
		}
	}()
	conn.SetReadLimit(512)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
