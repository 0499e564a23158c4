package websocket

import (
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event is pushed to connected clients as JSON.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type Client struct {
	UserID uuid.UUID
	Conn   *websocket.Conn
}

type delivery struct {
	userID uuid.UUID
	event  Event
}

// Hub keeps one connection per user and fans events out to them.
type Hub struct {
	clients    map[uuid.UUID]*websocket.Conn
	clientsMu  sync.RWMutex
	register   chan *Client
	unregister chan *Client
	deliveries chan delivery
	log        *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]*websocket.Conn),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliveries: make(chan delivery, 256),
		log:        log.Named("ws"),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clientsMu.Lock()
			h.clients[client.UserID] = client.Conn
			h.clientsMu.Unlock()
			h.log.Debug("client registered", zap.String("user_id", client.UserID.String()))
		case client := <-h.unregister:
			h.clientsMu.Lock()
			if conn, ok := h.clients[client.UserID]; ok && conn == client.Conn {
				delete(h.clients, client.UserID)
			}
			h.clientsMu.Unlock()
			h.log.Debug("client unregistered", zap.String("user_id", client.UserID.String()))
		case d := <-h.deliveries:
			h.clientsMu.RLock()
			conn, ok := h.clients[d.userID]
			h.clientsMu.RUnlock()
			if !ok {
				continue
			}
			if err := conn.WriteJSON(d.event); err != nil {
				h.log.Warn("failed to push event", zap.String("user_id", d.userID.String()), zap.Error(err))
				conn.Close()
				h.clientsMu.Lock()
				if current, ok := h.clients[d.userID]; ok && current == conn {
					delete(h.clients, d.userID)
				}
				h.clientsMu.Unlock()
			}
		}
	}
}

// Publish queues an event for a user. Events for users without a connection
// are dropped, as are events that arrive while the queue is full.
func (h *Hub) Publish(userID uuid.UUID, event Event) {
	select {
	case h.deliveries <- delivery{userID: userID, event: event}:
	default:
		h.log.Warn("event queue full, dropping event", zap.String("type", event.Type))
	}
}

func (h *Hub) Connected(userID uuid.UUID) bool {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

// Upgrade only lets authenticated websocket requests through. userID resolves
// the caller from the request locals set by the auth middleware.
func Upgrade(userID func(c *fiber.Ctx) (uuid.UUID, bool)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		id, ok := userID(c)
		if !ok {
			return fiber.ErrUnauthorized
		}
		c.Locals("ws_user_id", id)
		return c.Next()
	}
}

// Handler keeps the connection registered until the client goes away. Clients
// only receive; anything they send is read and discarded.
func (h *Hub) Handler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals("ws_user_id").(uuid.UUID)
		client := &Client{UserID: userID, Conn: conn}

		h.register <- client
		defer func() {
			h.unregister <- client
			conn.Close()
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
}
