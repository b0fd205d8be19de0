package relay

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, serverURL string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(serverURL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestRelayBroadcastsToOtherPeersOnly(t *testing.T) {
	r := New(zerolog.New(io.Discard))
	srv := httptest.NewServer(r)
	defer srv.Close()

	a := dial(t, srv.URL)
	b := dial(t, srv.URL)

	require.Eventually(t, func() bool { return r.peerCount() == 2 }, time.Second, 10*time.Millisecond)

	require.NoError(t, a.WriteMessage(websocket.BinaryMessage, []byte("hello")))

	b.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := b.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, "hello", string(data))
}

func TestRelayTracksDisconnect(t *testing.T) {
	r := New(zerolog.New(io.Discard))
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn := dial(t, srv.URL)
	require.Eventually(t, func() bool { return r.peerCount() == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return r.peerCount() == 0 }, time.Second, 10*time.Millisecond)
}
