package world

import (
	"github.com/lox/sphereforge/internal/command"
	"github.com/lox/sphereforge/internal/sphere"
)

// WaypointState is a waypoint's logical progress marker (spec §3).
type WaypointState int

const (
	WaypointNeutral WaypointState = iota
	WaypointApproaching
	WaypointLeft
)

func (s WaypointState) String() string {
	switch s {
	case WaypointApproaching:
		return "approaching"
	case WaypointLeft:
		return "left"
	default:
		return "neutral"
	}
}

// Waypoint is a single point in a unit's path. IDs are derived from the
// command that produced them (deriveWaypointID): one per Move, one per
// point of a SetPath (spec §3).
type Waypoint struct {
	ID       uint64
	Position sphere.Vec3
	State    WaypointState
}

// Unit is the authoritative entity record (spec §3). Render-only fields
// (meshes, materials, particle buffers, selection glow, dust, tire
// tracks) are strictly excluded — they live entirely in the renderer,
// which builds its own read-only projection each frame.
type Unit struct {
	ID          uint64
	Position    sphere.Vec3
	Orientation sphere.Quaternion
	Velocity    sphere.Vec3
	SpeedCap    float64
	Health      float64
	Paused      bool

	Waypoints        []Waypoint
	PathClosed       bool // cyclic flag; no doubly-linked structure (spec §9)
	TargetWaypointID uint64
	LastWaypointID   uint64

	// Commands is this unit's own command history, every command that
	// has ever successfully targeted it (append-only; spec §6's
	// persistence envelope "commands:[…]" per unit). Spawn never
	// appends here — it creates the unit, it does not target one.
	Commands []command.Command
	// PendingCommandIndex tracks how far into Commands the engine has
	// processed, mirroring the source's currentCommandIndex (spec §9,
	// open question (a); spec §3's "pending command index" field).
	// Commands are applied synchronously as they are dispatched, so
	// today PendingCommandIndex == len(Commands) always — it is kept
	// as its own field rather than derived because that equality is an
	// implementation fact of this apply loop, not a law the data model
	// should assume.
	PendingCommandIndex int
}

// recordCommand appends cmd to u's own history and advances
// PendingCommandIndex, called by apply() after a command has
// successfully found its target unit (unknown-entity drops never reach
// here, per spec §4.7's "logged and dropped, not fatal").
func (u *Unit) recordCommand(cmd command.Command) {
	u.Commands = append(u.Commands, cmd)
	u.PendingCommandIndex++
}

// waypointIndex returns the index of the waypoint with the given id, or
// -1 if absent.
func (u *Unit) waypointIndex(id uint64) int {
	for i, wp := range u.Waypoints {
		if wp.ID == id {
			return i
		}
	}
	return -1
}

// targetWaypoint returns the unit's current target waypoint, or nil if
// it has none (empty path, or target id stale after a SetPath reset).
func (u *Unit) targetWaypoint() *Waypoint {
	idx := u.waypointIndex(u.TargetWaypointID)
	if idx < 0 {
		return nil
	}
	return &u.Waypoints[idx]
}

// nextWaypointID returns the id of the waypoint following idx in the
// unit's path, honoring PathClosed wraparound. Returns (0, false) if
// there is no next waypoint (open path, at the end).
func (u *Unit) nextWaypointID(idx int) (uint64, bool) {
	if len(u.Waypoints) == 0 {
		return 0, false
	}
	next := idx + 1
	if next >= len(u.Waypoints) {
		if !u.PathClosed {
			return 0, false
		}
		next = 0
	}
	return u.Waypoints[next].ID, true
}
