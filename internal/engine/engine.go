// Package engine wires the sim loop's collaborators together (spec
// §4.2, §4.7): Advance runs the Accumulator and, for each whole tick it
// yields, flushes CommandQueue into WorldModel.Step, and every tick's resulting
// StateSurface hash is handed to an observer for logging, persistence,
// or a dev-mode status view. This is the one place that owns the
// wiring order; none of its collaborators know about each other
// directly.
package engine

import (
	"github.com/rs/zerolog"

	"github.com/lox/sphereforge/internal/clock"
	"github.com/lox/sphereforge/internal/command"
	"github.com/lox/sphereforge/internal/state"
	"github.com/lox/sphereforge/internal/transport"
	"github.com/lox/sphereforge/internal/world"
)

// Observer receives a notification after every completed tick. It must
// not block — Engine.Advance runs on the caller's own goroutine, normally
// driven by a UI's render loop or a headless runner's own ticker.
type Observer func(event world.TickEvent, surface state.Surface, hash string)

// Engine bundles World with the collaborators that feed it each tick.
type Engine struct {
	world     *world.World
	queue     *command.Queue
	transport transport.Transport
	acc       *clock.Accumulator
	observer  Observer
	logger    zerolog.Logger
}

// Config bundles Engine's construction-time collaborators.
type Config struct {
	World     *world.World
	Queue     *command.Queue
	Transport transport.Transport
	DeltaMs   int64
	Observer  Observer
	Logger    zerolog.Logger
}

// New constructs an Engine. Transport's receive callback is wired to
// Queue.Enqueue here, against the World's tick at the moment each command
// is received —
// the one piece of cross-wiring a caller would otherwise have to
// remember to do itself.
func New(cfg Config) *Engine {
	e := &Engine{
		world:     cfg.World,
		queue:     cfg.Queue,
		transport: cfg.Transport,
		acc:       clock.New(cfg.DeltaMs, clock.DefaultMaxTicksPerStep),
		observer:  cfg.Observer,
		logger:    cfg.Logger,
	}
	cfg.Transport.OnReceive(func(cmd command.Command) {
		e.queue.Enqueue(cmd, e.world.Tick())
	})
	return e
}

// tick flushes cfg.Queue for the next tick, steps World, and notifies
// the observer. Advance calls it once per whole accumulated tick.
func (e *Engine) tick() error {
	nextTick := e.world.Tick() + 1
	cmds := e.queue.Flush(nextTick)

	event, err := e.world.Step(cmds)
	if err != nil {
		return err
	}

	if e.observer != nil {
		surface := state.Project(e.world)
		e.observer(event, surface, state.HashHex(surface))
	}
	return nil
}

// Advance runs the accumulator against nowMs and steps World the
// resulting number of whole ticks (spec §4.1/§4.2's fixed-timestep
// law). It returns the number of ticks run and the accumulator's
// leftover fractional alpha, for render interpolation.
func (e *Engine) Advance(nowMs int64) (ticks int, alpha float64, err error) {
	n, drop, err := e.acc.Step(nowMs)
	if err != nil {
		return 0, 0, err
	}
	if drop != nil {
		e.logger.Warn().Int64("discarded_ms", drop.DiscardedMs).Msg("engine: frame drop clamped ticks this step")
	}
	for i := 0; i < n; i++ {
		if err := e.tick(); err != nil {
			return i, e.acc.Alpha(), err
		}
	}
	return n, e.acc.Alpha(), nil
}

// World exposes the underlying World for read-only inspection (render
// projection, debug tooling).
func (e *Engine) World() *world.World { return e.world }
