package http

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/model"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/service/notification"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/usecase"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/utils/logging"
)

const (
	wsWriteWait      = 10 * time.Second
	wsPongWait       = 60 * time.Second
	wsPingPeriod     = (wsPongWait * 9) / 10
	wsMaxMessageSize = 512
	wsSendBuffer     = 64
)

// wsMessage is one frame pushed to connected clients
type wsMessage struct {
	Type    string `json:"type"`
	Kind    string `json:"kind,omitempty"`
	Payload any    `json:"payload"`
}

type queueCounts struct {
	Pending int `json:"pending"`
	Failed  int `json:"failed"`
}

type wsClient struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID string
}

// Hub streams notification, queue and network changes to WebSocket clients
type Hub struct {
	uc       *usecase.UseCases
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*wsClient]struct{}

	unsubscribe []func()
}

// HubOption configures a Hub
type HubOption func(*Hub)

// WithCheckOrigin sets the origin policy for WebSocket upgrades
func WithCheckOrigin(fn func(r *http.Request) bool) HubOption {
	return func(h *Hub) {
		h.upgrader.CheckOrigin = fn
	}
}

func NewHub(uc *usecase.UseCases, opts ...HubOption) *Hub {
	h := &Hub{
		uc: uc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients: make(map[*wsClient]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}

	h.unsubscribe = append(h.unsubscribe,
		uc.Notifications().Subscribe(func(change notification.Change) {
			h.broadcast(wsMessage{
				Type:    "notification",
				Kind:    string(change.Kind),
				Payload: toNotificationResponse(change.Notification),
			})
		}),
		uc.Queue().Subscribe(func(pending, failed int) {
			h.broadcast(wsMessage{Type: "queue", Payload: queueCounts{Pending: pending, Failed: failed}})
		}),
		uc.Network().Subscribe(func(status model.NetworkStatus) {
			h.broadcast(wsMessage{Type: "network", Payload: toNetworkResponse(status)})
		}),
	)

	return h
}

// Close unsubscribes from every source and disconnects all clients
func (h *Hub) Close() {
	for _, fn := range h.unsubscribe {
		fn()
	}
	h.unsubscribe = nil

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) broadcast(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		logging.Default().Error("failed to marshal ws message", "type", msg.Type, "error", err.Error())
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// slow client; drop it rather than block the publisher
			logging.Default().Warn("ws client too slow, disconnecting", "user_id", c.userID)
			h.removeLocked(c)
		}
	}
}

func (h *Hub) add(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) remove(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *wsClient) {
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.From(r.Context()).Warn("ws upgrade failed", "error", err.Error())
		return
	}

	client := &wsClient{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, wsSendBuffer),
		userID: user.ID,
	}

	// snapshot first so the client starts from the current state
	for _, msg := range h.snapshot() {
		data, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		client.send <- data
	}
	h.add(client)
	logging.From(r.Context()).Info("ws client connected", "user_id", user.ID)

	go client.writePump()
	go client.readPump()
}

func (h *Hub) snapshot() []wsMessage {
	q := h.uc.Queue()
	return []wsMessage{
		{Type: "network", Payload: toNetworkResponse(h.uc.Network().Status())},
		{Type: "queue", Payload: queueCounts{Pending: len(q.Pending()), Failed: len(q.Failed())}},
		{Type: "notifications", Payload: toNotificationResponses(h.uc.Notifications().List())},
	}
}

func (c *wsClient) readPump() {
	defer func() {
		c.hub.remove(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(wsMaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
