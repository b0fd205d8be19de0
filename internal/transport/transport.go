// Package transport implements the polymorphic send/receive relay
// described in spec §4.5: a Local (zero-latency, single-process) variant
// and a Broadcast (networked, throttled, reconnecting) variant sharing
// one contract.
package transport

import (
	"context"
	"time"

	"github.com/lox/sphereforge/internal/command"
)

// State is a transport's connection lifecycle state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateError
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// ReceiveFunc is the single sink a Transport delivers incoming commands
// to. The owning CommandQueue registers exactly one of these.
type ReceiveFunc func(command.Command)

// Transport is the shared contract both variants satisfy. The wire
// envelope wrapping one or more commands with routing metadata (spec
// §4.5, §6) is defined in internal/wire as wire.Envelope, encoded and
// decoded there rather than duplicated in this package.

type Transport interface {
	// Connect transitions Disconnected -> Connecting -> Connected (or
	// Error on exhausted retries). Broadcast buffers commands that arrive
	// while no OnReceive sink is registered and delivers them when one is
	// registered; Local does not buffer.
	Connect(ctx context.Context) error

	// Send accepts a command for delivery. Broadcast appends it to an
	// outbound batch and may write that batch to the network inline,
	// when its throttle allows (see Broadcast.Send).
	Send(ctx context.Context, cmd command.Command) error

	// OnReceive registers the single sink for incoming commands. Only
	// the owning CommandQueue should call this.
	OnReceive(fn ReceiveFunc)

	// State returns the current connection state.
	State() State

	// Flush forces immediate transmission of any batched outbound
	// commands, for tests (spec §4.5). Local is always a no-op.
	Flush(ctx context.Context) error

	// Close tears down the transport.
	Close() error
}

// Default timeouts per spec §5.
const (
	DefaultBroadcastSendTimeout = 10 * time.Second
	DefaultConnectTimeout       = 5 * time.Second
)
