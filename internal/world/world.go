// Package world implements WorldModel (spec §4.7): the single mutable
// aggregate holding all authoritative state, and the only place where
// commands change that state.
package world

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/lox/sphereforge/internal/command"
	"github.com/lox/sphereforge/internal/idgen"
	"github.com/lox/sphereforge/internal/pathplan"
	"github.com/lox/sphereforge/internal/rng"
	"github.com/lox/sphereforge/internal/simerr"
)

// TickEvent is emitted after each completed tick (spec §4.7 step 4).
type TickEvent struct {
	Tick    uint64
	Applied int // commands applied this tick
}

// World is WorldModel. It owns the RNG, IdGen, and entity table for a
// single simulation instance; two Worlds in the same process (e.g. the
// verify harness's dual runs) never share these (spec §9's "Global
// singletons" design note — made world-scoped here).
type World struct {
	tick uint64

	units      map[uint64]*Unit
	unitOrder  []uint64 // kept sorted by id; iteration order is I3/I4-relevant
	selectedID *uint64

	rng     *rng.RNG
	ids     *idgen.IdGen
	terrain *Terrain

	obstacles []pathplan.Obstacle
	deltaMs   int64

	logger zerolog.Logger
}

// Config bundles a World's construction-time parameters.
type Config struct {
	Seed      int64
	DeltaMs   int64
	Terrain   *Terrain
	Obstacles []pathplan.Obstacle
	Logger    zerolog.Logger
}

// New constructs a World at tick 0 with a fresh RNG and IdGen seeded per
// cfg. Tick 0 is the initial state before any step has executed (spec
// §3).
func New(cfg Config) *World {
	terrain := cfg.Terrain
	if terrain == nil {
		terrain = NewUniformTerrain(BaseRadius)
	}
	deltaMs := cfg.DeltaMs
	if deltaMs <= 0 {
		deltaMs = 50
	}
	return &World{
		units:     make(map[uint64]*Unit),
		rng:       rng.New(cfg.Seed),
		ids:       idgen.New(),
		terrain:   terrain,
		obstacles: cfg.Obstacles,
		deltaMs:   deltaMs,
		logger:    cfg.Logger,
	}
}

// Tick returns the current tick counter.
func (w *World) Tick() uint64 { return w.tick }

// SelectedUnitID returns the currently selected unit id, or (0, false)
// if none is selected.
func (w *World) SelectedUnitID() (uint64, bool) {
	if w.selectedID == nil {
		return 0, false
	}
	return *w.selectedID, true
}

// Units returns the entity table's units in strictly increasing id
// order, a read-only slice the renderer (or StateSurface) may iterate
// but must not mutate in place.
func (w *World) Units() []*Unit {
	out := make([]*Unit, 0, len(w.unitOrder))
	for _, id := range w.unitOrder {
		out = append(out, w.units[id])
	}
	return out
}

// Unit returns the unit with the given id, or (nil, false).
func (w *World) Unit(id uint64) (*Unit, bool) {
	u, ok := w.units[id]
	return u, ok
}

// RNGState and IDCounter expose the authoritative generator states that
// travel inside persistence payloads (spec §3).
func (w *World) RNGState() rng.State { return w.rng.GetState() }
func (w *World) IDCounter() uint64   { return w.ids.GetState() }

// Step runs exactly one tick: applies cmds in the order given (the
// caller, engine.tick or verify.Run via CommandQueue.Flush, is responsible for
// the deterministic ordering rule of spec §4.4/I3), then advances all
// units by Δ, then emits a TickEvent.
func (w *World) Step(cmds []command.Command) (TickEvent, error) {
	w.tick++
	if w.tick == 0 {
		// uint64 wraparound back to 0 would silently look like the
		// initial tick; this can never happen in a real run's lifetime
		// but is checked because it is the one way "tick" could go
		// non-monotonic.
		return TickEvent{}, w.invariantBreach("tick counter wrapped to zero")
	}

	for _, cmd := range cmds {
		w.apply(cmd)
	}

	if err := w.advanceUnits(); err != nil {
		return TickEvent{}, err
	}

	return TickEvent{Tick: w.tick, Applied: len(cmds)}, nil
}

func (w *World) insertUnit(u *Unit) error {
	if _, exists := w.units[u.ID]; exists {
		return w.invariantBreach(fmt.Sprintf("duplicate entity id %d", u.ID))
	}
	w.units[u.ID] = u
	idx := sort.Search(len(w.unitOrder), func(i int) bool { return w.unitOrder[i] >= u.ID })
	w.unitOrder = append(w.unitOrder, 0)
	copy(w.unitOrder[idx+1:], w.unitOrder[idx:])
	w.unitOrder[idx] = u.ID
	return nil
}

func (w *World) removeUnit(id uint64) {
	if _, ok := w.units[id]; !ok {
		return
	}
	delete(w.units, id)
	idx := sort.Search(len(w.unitOrder), func(i int) bool { return w.unitOrder[i] >= id })
	if idx < len(w.unitOrder) && w.unitOrder[idx] == id {
		w.unitOrder = append(w.unitOrder[:idx], w.unitOrder[idx+1:]...)
	}
	if w.selectedID != nil && *w.selectedID == id {
		w.selectedID = nil
	}
}

func (w *World) invariantBreach(reason string) error {
	snap := w.DebugSnapshot()
	w.logger.Error().Str("reason", reason).Msg("world invariant breach, aborting tick")
	return simerr.NewInvariantBreach(reason, snap)
}

// DebugSnapshot renders a minimal, non-canonical diagnostic dump for
// post-mortem inspection of an invariant breach. It is deliberately not
// the StateSurface canonical encoding (internal/state owns that, and
// importing it here would create a cycle); it exists only to give
// developers something to look at, never to be hashed or persisted.
func (w *World) DebugSnapshot() []byte {
	var sel any
	if w.selectedID != nil {
		sel = *w.selectedID
	}
	s := fmt.Sprintf("tick=%d units=%d selected=%v id_counter=%d rng=%v\n",
		w.tick, len(w.unitOrder), sel, w.ids.GetState(), w.rng.GetState())
	for _, id := range w.unitOrder {
		u := w.units[id]
		s += fmt.Sprintf("  unit %d pos=%+v vel=%+v waypoints=%d target=%d last=%d\n",
			u.ID, u.Position, u.Velocity, len(u.Waypoints), u.TargetWaypointID, u.LastWaypointID)
	}
	return []byte(s)
}
