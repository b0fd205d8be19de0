package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/lox/sphereforge/internal/command"
	"github.com/lox/sphereforge/internal/simerr"
	"github.com/lox/sphereforge/internal/wire"
)

// BroadcastConfig configures the networked transport variant. Defaults
// mirror spec §6's recognized configuration keys.
type BroadcastConfig struct {
	URL                  string
	ThrottleMs           int64
	MaxReconnectAttempts int
	ReconnectBaseMs      int64
	ReconnectFactor      float64
	SendTimeout          time.Duration
	ConnectTimeout       time.Duration
}

func (c *BroadcastConfig) withDefaults() {
	if c.ThrottleMs <= 0 {
		c.ThrottleMs = 100
	}
	if c.MaxReconnectAttempts <= 0 {
		c.MaxReconnectAttempts = 5
	}
	if c.ReconnectBaseMs <= 0 {
		c.ReconnectBaseMs = 2000
	}
	if c.ReconnectFactor <= 0 {
		c.ReconnectFactor = 1.5
	}
	if c.SendTimeout <= 0 {
		c.SendTimeout = DefaultBroadcastSendTimeout
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
}

// reconnectState is the explicit state machine for reconnection: a state
// plus a timer attribute, not a chain of scheduled callbacks (spec §9's
// "Coroutine-free design" note).
type reconnectState struct {
	attempt    int
	nextTry    time.Time
	exhausted  bool
}

// Broadcast is the networked Transport variant. Send appends to an
// outbound batch and flushes it inline when the rate limiter allows (at
// most once per throttle interval); otherwise the batch waits for a
// later allowed Send or an explicit Flush, and no timer flushes it. On
// flush the batch is written as one msgp-encoded Envelope to a gorilla
// websocket connection to a named relay channel.
type Broadcast struct {
	cfg      BroadcastConfig
	clientID string
	logger   zerolog.Logger

	mu      sync.Mutex
	state   State
	seq     uint64
	batch   []command.Command
	limiter *rate.Limiter
	flushAt time.Time

	conn   *websocket.Conn
	dialer *websocket.Dialer

	buffered []command.Command // received while no OnReceive sink is registered
	onRecv   ReceiveFunc

	reconnect reconnectState

	stopOnce sync.Once
	stopCh   chan struct{}
	readDone chan struct{}
}

// NewBroadcast constructs a Broadcast transport dialing cfg.URL. clientID
// is minted fresh per session via google/uuid, per spec §4.5/§6.
func NewBroadcast(cfg BroadcastConfig, logger zerolog.Logger) *Broadcast {
	cfg.withDefaults()
	clientID := uuid.NewString()
	return &Broadcast{
		cfg:      cfg,
		clientID: clientID,
		logger:   logger.With().Str("client_id", clientID).Logger(),
		state:    StateDisconnected,
		limiter:  rate.NewLimiter(rate.Every(time.Duration(cfg.ThrottleMs)*time.Millisecond), 1),
		dialer:   websocket.DefaultDialer,
		stopCh:   make(chan struct{}),
		readDone: make(chan struct{}),
	}
}

func (b *Broadcast) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Broadcast) OnReceive(fn ReceiveFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onRecv = fn
	if fn != nil && len(b.buffered) > 0 {
		buffered := b.buffered
		b.buffered = nil
		go func() {
			for _, c := range buffered {
				fn(c)
			}
		}()
	}
}

// Connect dials the relay once. On failure it counts the attempt,
// records the next retry time (base * factor^(attempt-1)) and leaves
// the state Disconnected; it neither waits nor dials again itself. Once
// the attempt count reaches MaxReconnectAttempts the state becomes Error.
func (b *Broadcast) Connect(ctx context.Context) error {
	b.mu.Lock()
	b.state = StateConnecting
	b.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, b.cfg.ConnectTimeout)
	defer cancel()

	conn, _, err := b.dialer.DialContext(ctx, b.cfg.URL, nil)
	if err != nil {
		return b.handleConnectFailure(ctx, err)
	}

	b.mu.Lock()
	b.conn = conn
	b.state = StateConnected
	b.reconnect = reconnectState{}
	b.mu.Unlock()

	go b.readPump()
	return nil
}

func (b *Broadcast) handleConnectFailure(ctx context.Context, cause error) error {
	b.mu.Lock()
	b.reconnect.attempt++
	attempt := b.reconnect.attempt
	b.mu.Unlock()

	if attempt >= b.cfg.MaxReconnectAttempts {
		b.mu.Lock()
		b.state = StateError
		b.reconnect.exhausted = true
		b.mu.Unlock()
		return fmt.Errorf("transport: reconnect attempts exhausted after %d tries: %w", attempt, cause)
	}

	delayMs := float64(b.cfg.ReconnectBaseMs)
	for i := 0; i < attempt-1; i++ {
		delayMs *= b.cfg.ReconnectFactor
	}
	next := time.Now().Add(time.Duration(delayMs) * time.Millisecond)

	b.mu.Lock()
	b.reconnect.nextTry = next
	b.state = StateDisconnected
	b.mu.Unlock()

	b.logger.Warn().Err(cause).Int("attempt", attempt).Time("next_try", next).
		Msg("broadcast transport reconnect scheduled")
	return cause
}

// Send appends cmd to the outbound batch. When the limiter allows, it
// calls Flush inline, so it can block on the network write; otherwise
// it returns at once and the batch waits for a later allowed Send or an
// explicit Flush. No timer flushes a waiting batch.
func (b *Broadcast) Send(ctx context.Context, cmd command.Command) error {
	b.mu.Lock()
	if b.state != StateConnected {
		b.mu.Unlock()
		return simerr.ErrTransportDisconnected
	}
	b.seq++
	cmd.Seq = b.seq
	cmd.ClientID = b.clientID
	b.batch = append(b.batch, cmd)
	shouldFlush := b.limiter.Allow()
	b.mu.Unlock()

	if shouldFlush {
		return b.Flush(ctx)
	}
	return nil
}

// Flush forces immediate transmission of the current batch. On a
// transient write error the batch is re-prepended so order is preserved
// for the next attempt (spec §4.5 failure semantics).
func (b *Broadcast) Flush(ctx context.Context) error {
	b.mu.Lock()
	if len(b.batch) == 0 {
		b.mu.Unlock()
		return nil
	}
	batch := b.batch
	b.batch = nil
	conn := b.conn
	b.mu.Unlock()

	if conn == nil {
		b.mu.Lock()
		b.batch = append(batch, b.batch...)
		b.mu.Unlock()
		return simerr.ErrTransportDisconnected
	}

	env := wire.Envelope{
		ClientID: b.clientID,
		Seq:      batch[len(batch)-1].Seq,
		TsMillis: time.Now().UnixMilli(),
		Commands: batch,
	}

	data, err := wire.EncodeEnvelopeBytes(env)
	if err != nil {
		return err
	}

	// gorilla/websocket has no context-aware write; a deadline plays the
	// same role ctx would for the caller-provided send timeout (spec §5).
	if err := conn.SetWriteDeadline(time.Now().Add(b.cfg.SendTimeout)); err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		b.mu.Lock()
		b.batch = append(batch, b.batch...)
		b.mu.Unlock()
		return fmt.Errorf("transport: flush failed, batch re-queued: %w", err)
	}
	return nil
}

// readPump reads incoming envelopes and delivers their commands to the
// registered sink, or buffers them if none is registered yet. Receive
// errors are logged and the offending envelope dropped — never
// propagated into the queue partially (spec §4.5).
func (b *Broadcast) readPump() {
	defer close(b.readDone)
	for {
		b.mu.Lock()
		conn := b.conn
		b.mu.Unlock()
		if conn == nil {
			return
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			if !errors.Is(err, websocket.ErrCloseSent) {
				b.logger.Error().Err(err).Msg("broadcast transport read failed")
			}
			b.mu.Lock()
			b.state = StateDisconnected
			b.mu.Unlock()
			return
		}

		env, err := wire.DecodeEnvelopeBytes(data)
		if err != nil {
			b.logger.Error().Err(err).Msg("broadcast transport dropped malformed envelope")
			continue
		}

		b.mu.Lock()
		fn := b.onRecv
		b.mu.Unlock()

		for _, cmd := range env.Commands {
			cmd.ClientID = env.ClientID
			if fn != nil {
				fn(cmd)
			} else {
				b.mu.Lock()
				b.buffered = append(b.buffered, cmd)
				b.mu.Unlock()
			}
		}
	}
}

func (b *Broadcast) Close() error {
	var err error
	b.stopOnce.Do(func() {
		close(b.stopCh)
		b.mu.Lock()
		conn := b.conn
		b.state = StateDisconnected
		b.mu.Unlock()
		if conn != nil {
			err = conn.Close()
		}
	})
	return err
}
