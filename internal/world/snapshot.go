package world

import (
	"sort"

	"github.com/lox/sphereforge/internal/command"
	"github.com/lox/sphereforge/internal/rng"
	"github.com/lox/sphereforge/internal/sphere"
)

// UnitSnapshot is a single unit's full round-trippable state — a
// superset of state.UnitSurface, since persistence needs enough
// precision and detail to resume play, not just enough to prove
// determinism (spec §4.9 vs §4.8).
type UnitSnapshot struct {
	ID                  uint64
	Position            sphere.Vec3
	Orientation         sphere.Quaternion
	Velocity            sphere.Vec3
	SpeedCap            float64
	Health              float64
	Paused              bool
	Waypoints           []Waypoint
	PathClosed          bool
	TargetWaypointID    uint64
	LastWaypointID      uint64
	Commands            []command.Command
	PendingCommandIndex int
}

// Snapshot is WorldModel's full persistable state (spec §4.9): enough
// to reconstruct a World byte-for-byte including its RNG and IdGen
// sequencing, so play can resume from exactly where it left off.
type Snapshot struct {
	Tick           uint64
	RNGState       rng.State
	IDCounter      uint64
	SelectedUnitID uint64
	HasSelection   bool
	Units          []UnitSnapshot // sorted by id, ascending
}

// Snapshot captures w's complete state. The returned value shares no
// mutable state with w — callers (persistence backends) may hold onto
// it indefinitely.
func (w *World) Snapshot() Snapshot {
	units := make([]UnitSnapshot, 0, len(w.unitOrder))
	for _, id := range w.unitOrder {
		u := w.units[id]
		units = append(units, UnitSnapshot{
			ID:                  u.ID,
			Position:            u.Position,
			Orientation:         u.Orientation,
			Velocity:            u.Velocity,
			SpeedCap:            u.SpeedCap,
			Health:              u.Health,
			Paused:              u.Paused,
			Waypoints:           append([]Waypoint(nil), u.Waypoints...),
			PathClosed:          u.PathClosed,
			TargetWaypointID:    u.TargetWaypointID,
			LastWaypointID:      u.LastWaypointID,
			Commands:            append([]command.Command(nil), u.Commands...),
			PendingCommandIndex: u.PendingCommandIndex,
		})
	}

	sel, hasSel := w.SelectedUnitID()
	return Snapshot{
		Tick:           w.tick,
		RNGState:       w.rng.GetState(),
		IDCounter:      w.ids.GetState(),
		SelectedUnitID: sel,
		HasSelection:   hasSel,
		Units:          units,
	}
}

// Restore overwrites w's entire state with s, atomically from the
// caller's perspective: on any validation failure w is left untouched
// and an *simerr.InvariantBreach is returned, never a half-applied
// restore.
func (w *World) Restore(s Snapshot) error {
	units := make(map[uint64]*Unit, len(s.Units))
	order := make([]uint64, 0, len(s.Units))
	prev := uint64(0)
	for i, us := range s.Units {
		if i > 0 && us.ID <= prev {
			return w.invariantBreach("restored units not strictly increasing by id")
		}
		prev = us.ID
		units[us.ID] = &Unit{
			ID:                  us.ID,
			Position:            us.Position,
			Orientation:         us.Orientation,
			Velocity:            us.Velocity,
			SpeedCap:            us.SpeedCap,
			Health:              us.Health,
			Paused:              us.Paused,
			Waypoints:           append([]Waypoint(nil), us.Waypoints...),
			PathClosed:          us.PathClosed,
			TargetWaypointID:    us.TargetWaypointID,
			LastWaypointID:      us.LastWaypointID,
			Commands:            append([]command.Command(nil), us.Commands...),
			PendingCommandIndex: us.PendingCommandIndex,
		}
		order = append(order, us.ID)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	w.tick = s.Tick
	w.rng.SetState(s.RNGState)
	w.ids.SetState(s.IDCounter)
	w.units = units
	w.unitOrder = order
	if s.HasSelection {
		id := s.SelectedUnitID
		w.selectedID = &id
	} else {
		w.selectedID = nil
	}
	return nil
}
