package transport

import (
	"context"

	"github.com/lox/sphereforge/internal/command"
)

// Local is the zero-latency, loss-free, single-process Transport
// variant. Send immediately and synchronously invokes the registered
// ReceiveFunc (spec §4.5) — there is no batching, no throttle, and no
// reconnection state machine; Connect is instantaneous.
type Local struct {
	state   State
	onRecv  ReceiveFunc
	nextSeq uint64
}

// NewLocal constructs a disconnected Local transport.
func NewLocal() *Local {
	return &Local{state: StateDisconnected}
}

func (l *Local) Connect(ctx context.Context) error {
	l.state = StateConnected
	return nil
}

func (l *Local) OnReceive(fn ReceiveFunc) { l.onRecv = fn }

func (l *Local) State() State { return l.state }

// Send stamps the command with a local sequence number and invokes
// onReceive synchronously. If Connect has not been called the command is
// still delivered — Local has no real connection to wait for — matching
// the "zero-latency, loss-free" contract rather than buffering.
func (l *Local) Send(ctx context.Context, cmd command.Command) error {
	l.nextSeq++
	cmd.Seq = l.nextSeq
	if cmd.ClientID == "" {
		cmd.ClientID = "local"
	}
	if l.onRecv != nil {
		l.onRecv(cmd)
	}
	return nil
}

// Flush is a no-op: Local never batches.
func (l *Local) Flush(ctx context.Context) error { return nil }

func (l *Local) Close() error {
	l.state = StateDisconnected
	return nil
}
