package wsstream_test

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fib-lab/microtraffic/internal/wsstream"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHubBroadcastsToConnectedClient checks that a value given to
// Broadcast reaches a connected websocket client as JSON.
func TestHubBroadcastsToConnectedClient(t *testing.T) {
	hub := wsstream.NewHub(nil, nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Give the server a moment to register the connection before
	// broadcasting, since ServeHTTP registers it from its own goroutine.
	time.Sleep(20 * time.Millisecond)
	hub.Broadcast(map[string]int{"count": 7})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got map[string]int
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, 7, got["count"])
}

// TestHubDispatchesTriggerAccident checks that a trigger_accident
// control frame invokes the hub's registered callback.
func TestHubDispatchesTriggerAccident(t *testing.T) {
	var triggered atomic.Bool
	hub := wsstream.NewHub(func() { triggered.Store(true) }, nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(wsstream.ControlMessage{Type: "trigger_accident"}))

	require.Eventually(t, func() bool {
		return triggered.Load()
	}, 2*time.Second, 10*time.Millisecond)
}

// TestHubDispatchesConfigPatch checks that a config control frame is
// decoded and handed to the patch callback.
func TestHubDispatchesConfigPatch(t *testing.T) {
	patched := make(chan wsstream.Patch, 1)
	hub := wsstream.NewHub(nil, func(p wsstream.Patch) { patched <- p })
	srv := httptest.NewServer(hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	rate := 1500.0
	require.NoError(t, conn.WriteJSON(wsstream.ControlMessage{
		Type:        "config",
		ConfigPatch: &wsstream.Patch{InflowRate: &rate},
	}))

	select {
	case p := <-patched:
		require.NotNil(t, p.InflowRate)
		assert.Equal(t, rate, *p.InflowRate)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for config patch")
	}
}
