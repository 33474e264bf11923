package api

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"UD_loyalty_hook/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type feedEnvelope struct {
	Type    string                `json:"type"`
	Payload model.EventRecordView `json:"payload"`
}

func dialFeed(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/feed/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) feedEnvelope {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg feedEnvelope
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestFeedHub_Stream(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewFeedHub()
	r := gin.New()
	NewFeedRoutes(r.Group("/api/v1"), hub)
	srv := httptest.NewServer(r)
	defer srv.Close()

	all := dialFeed(t, srv, "")
	defer all.Close()
	onlyBob := dialFeed(t, srv, "?user="+bob.Hex())
	defer onlyBob.Close()

	assert.Equal(t, MessageTypeWelcome, readMessage(t, all).Type)
	assert.Equal(t, MessageTypeWelcome, readMessage(t, onlyBob).Type)
	require.Eventually(t, func() bool { return hub.Len() == 2 }, time.Second, 10*time.Millisecond)

	forAlice := model.NewOutcome(model.EventSwap, 1)
	forAlice.User = alice
	forBob := model.NewOutcome(model.EventSwap, 2)
	forBob.User = bob

	hub.Publish(&model.EventRecord{EventID: uuid.New(), Outcome: forAlice})
	hub.Publish(&model.EventRecord{EventID: uuid.New(), Outcome: forBob})

	first := readMessage(t, all)
	assert.Equal(t, MessageTypeEvent, first.Type)
	assert.Equal(t, uint64(1), first.Payload.Block)
	assert.Equal(t, uint64(2), readMessage(t, all).Payload.Block)

	filtered := readMessage(t, onlyBob)
	assert.Equal(t, uint64(2), filtered.Payload.Block)
	assert.Equal(t, bob, *filtered.Payload.User)

	all.Close()
	require.Eventually(t, func() bool { return hub.Len() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestFeedRoutes_InvalidUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewFeedRoutes(r.Group("/api/v1"), NewFeedHub())

	w := get(r, "/api/v1/feed/ws?user=nope")
	assert.Equal(t, 400, w.Code)
}
