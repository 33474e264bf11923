package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedURL(t *testing.T) {
	tests := []struct {
		name    string
		user    string
		want    string
		wantErr bool
	}{
		{
			name: "all events",
			want: "ws://host/api/v1/feed/ws",
		},
		{
			name: "user filter checksummed",
			user: "0xabababababababababababababababababababab",
			want: "ws://host/api/v1/feed/ws?user=" + common.HexToAddress("0xabababababababababababababababababababab").Hex(),
		},
		{
			name:    "bad address",
			user:    "alice",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := feedURL("ws://host/api/v1/feed/ws", tt.user)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWatch(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"welcome"}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"event","payload":{"block":7}}`))
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
	}))
	defer srv.Close()

	var out bytes.Buffer
	err := watch(context.Background(), "ws"+strings.TrimPrefix(srv.URL, "http"), &out, false)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `{"type":"welcome"}`, lines[0])
	assert.Contains(t, lines[1], `"block":7`)
}

func TestPrintMessage(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printMessage(&out, []byte(`{"type":"event","payload":{"block":7}}`), true))
	assert.Contains(t, out.String(), "\n  \"type\": \"event\"")

	assert.Error(t, printMessage(&out, []byte(`not json`), false))
	assert.Error(t, printMessage(&out, []byte(`{"payload":{}}`), false))
}
