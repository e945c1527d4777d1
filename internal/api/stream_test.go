package api

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/snapboard/internal/dashboard"
	"github.com/wonny/snapboard/pkg/logger"
	"github.com/wonny/snapboard/pkg/metrics"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	hub := NewHub(metrics.New(), logger.Nop())
	go hub.Run(ctx)

	srv := httptest.NewServer(newTestRouter(t, &stubService{dash: sampleDashboard()}, RouterDeps{Stream: hub}))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/dashboard"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) streamMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg streamMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestHub_SendsLatestOnConnect(t *testing.T) {
	hub, srv := startHub(t)
	hub.Publish(&dashboard.Dashboard{ConfigHash: "first"})

	conn := dial(t, srv)

	msg := readMessage(t, conn)
	assert.Equal(t, "snapshot", msg.Type)
	require.NotNil(t, msg.Dashboard)
	assert.Equal(t, "first", msg.Dashboard.ConfigHash)
}

func TestHub_BroadcastsUpdates(t *testing.T) {
	hub, srv := startHub(t)
	hub.Publish(&dashboard.Dashboard{ConfigHash: "first"})

	conn := dial(t, srv)
	require.Equal(t, "snapshot", readMessage(t, conn).Type)

	hub.Publish(&dashboard.Dashboard{ConfigHash: "second"})

	// the first publish may also arrive as an update if it raced the registration
	for {
		msg := readMessage(t, conn)
		require.Equal(t, "update", msg.Type)
		if msg.Dashboard.ConfigHash == "second" {
			break
		}
	}
}

func TestHub_PublishKeepsNewestPending(t *testing.T) {
	hub := NewHub(nil, logger.Nop())

	// no Run loop: publishes must not block
	for _, hash := range []string{"a", "b", "c"} {
		hub.Publish(&dashboard.Dashboard{ConfigHash: hash})
	}

	pending := <-hub.broadcast
	assert.Equal(t, "c", pending.ConfigHash)
	assert.Equal(t, "c", hub.latest.ConfigHash)
}

func TestHub_NoLatestNoSnapshot(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv)

	hub.Publish(&dashboard.Dashboard{ConfigHash: "later"})

	msg := readMessage(t, conn)
	// published after connect: either the snapshot raced in or the update arrives
	assert.Equal(t, "later", msg.Dashboard.ConfigHash)
}
