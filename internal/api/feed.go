package api

import (
	"net/http"
	"sync"
	"time"

	"UD_loyalty_hook/internal/metrics"
	"UD_loyalty_hook/internal/model"
	"UD_loyalty_hook/pkg/logger"
	"go.uber.org/zap"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

const (
	MessageTypeEvent   = "event"
	MessageTypeWelcome = "welcome"

	clientBuffer = 32
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

type feedClient struct {
	user *common.Address
	send chan []byte
}

// FeedHub fans committed events out to websocket subscribers. Slow
// subscribers lose messages instead of blocking the publisher.
type FeedHub struct {
	mu      sync.RWMutex
	clients map[*feedClient]struct{}
}

func NewFeedHub() *FeedHub {
	return &FeedHub{clients: make(map[*feedClient]struct{})}
}

func (h *FeedHub) Publish(rec *model.EventRecord) {
	data, err := json.Marshal(Message{Type: MessageTypeEvent, Payload: rec.View()})
	if err != nil {
		logger.Logger().Error("failed to marshal feed message", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		if c.user != nil && *c.user != rec.Outcome.User {
			continue
		}
		select {
		case c.send <- data:
		default:
			logger.Logger().Debug("feed client lagging, message dropped")
		}
	}
}

func (h *FeedHub) subscribe(user *common.Address) *feedClient {
	c := &feedClient{user: user, send: make(chan []byte, clientBuffer)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	metrics.FeedSubscribers.Inc()
	return c
}

func (h *FeedHub) unsubscribe(c *feedClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		metrics.FeedSubscribers.Dec()
	}
	h.mu.Unlock()
}

func (h *FeedHub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

type feedRoutes struct {
	hub *FeedHub
}

func NewFeedRoutes(handler *gin.RouterGroup, hub *FeedHub) {
	r := &feedRoutes{hub: hub}
	h := handler.Group("/feed")

	h.GET("/ws", r.handleWebSocket)
}

// handleWebSocket streams events. An optional ?user= narrows the stream to
// one address.
func (r *feedRoutes) handleWebSocket(c *gin.Context) {
	log := logger.Logger()

	var user *common.Address
	if q := c.Query("user"); q != "" {
		if !common.IsHexAddress(q) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user address"})
			return
		}
		addr := common.HexToAddress(q)
		user = &addr
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	client := r.hub.subscribe(user)

	welcome, err := json.Marshal(Message{Type: MessageTypeWelcome, Payload: gin.H{"user": user}})
	if err == nil {
		client.send <- welcome
	}

	go r.writeLoop(conn, client)
	go r.readLoop(conn, client)
}

func (r *feedRoutes) readLoop(conn *websocket.Conn, client *feedClient) {
	defer func() {
		r.hub.unsubscribe(client)
		conn.Close()
	}()

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Logger().Info("websocket unexpected close", zap.Error(err))
			}
			return
		}
	}
}

func (r *feedRoutes) writeLoop(conn *websocket.Conn, client *feedClient) {
	log := logger.Logger()
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case data, ok := <-client.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Debug("failed to write feed message", zap.Error(err))
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
