// Package relay implements the server side of the Broadcast transport
// variant (spec §4.5): a websocket endpoint that fans each received
// envelope out to every other connected client, verbatim, without
// inspecting or reordering its commands. Ordering and scheduling are
// entirely CommandQueue's job on the receiving end; the relay is a
// dumb pipe by design.
package relay

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Relay fans out binary messages between connected peers.
type Relay struct {
	logger zerolog.Logger

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// New constructs an empty Relay.
func New(logger zerolog.Logger) *Relay {
	return &Relay{logger: logger, conns: make(map[*websocket.Conn]struct{})}
}

// ServeHTTP upgrades the request to a websocket connection and pumps
// messages from it to every other currently-connected peer.
func (r *Relay) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.logger.Error().Err(err).Msg("relay: upgrade failed")
		return
	}
	defer conn.Close()

	r.mu.Lock()
	r.conns[conn] = struct{}{}
	r.mu.Unlock()
	r.logger.Info().Int("peers", r.peerCount()).Msg("relay: peer connected")

	defer func() {
		r.mu.Lock()
		delete(r.conns, conn)
		r.mu.Unlock()
		r.logger.Info().Int("peers", r.peerCount()).Msg("relay: peer disconnected")
	}()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		r.broadcast(conn, msgType, data)
	}
}

func (r *Relay) peerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

func (r *Relay) broadcast(from *websocket.Conn, msgType int, data []byte) {
	r.mu.Lock()
	peers := make([]*websocket.Conn, 0, len(r.conns))
	for c := range r.conns {
		if c != from {
			peers = append(peers, c)
		}
	}
	r.mu.Unlock()

	for _, c := range peers {
		if err := c.WriteMessage(msgType, data); err != nil {
			r.logger.Warn().Err(err).Msg("relay: write to peer failed")
		}
	}
}
