package world

import (
	"github.com/lox/sphereforge/internal/sphere"
)

// arrivalEpsilon is the distance (world units) within which a unit is
// considered to have reached its target waypoint. A unit whose next
// step (SpeedCap × Δ) would reach or pass the waypoint also arrives on
// that tick and is placed on the waypoint.
const arrivalEpsilon = 0.05

// advanceUnits steps every unit by one tick's Δ (spec §4.7 step 3): it
// resolves velocity from the unit's active target (if any), integrates
// position along the sphere, reprojects onto terrain, detects waypoint
// arrival, and updates orientation to face the direction of travel. It
// never touches the RNG or IdGen — movement integration is otherwise
// pure arithmetic over the unit's own state.
func (w *World) advanceUnits() error {
	dt := float64(w.deltaMs) / 1000.0
	for _, id := range w.unitOrder {
		u := w.units[id]
		if u.Paused {
			continue
		}
		w.advanceUnit(u, dt)
	}
	return nil
}

func (w *World) advanceUnit(u *Unit, dt float64) {
	target := u.targetWaypoint()
	if target != nil {
		toTarget := target.Position.Sub(u.Position)
		dist := toTarget.Length()
		if dist <= arrivalEpsilon || dist <= u.SpeedCap*dt {
			u.Position = target.Position
			w.arriveAt(u, target.ID)
		} else {
			u.Velocity = toTarget.Normalize().Scale(u.SpeedCap)
		}
	}

	if u.Velocity.Length() > 0 {
		step := u.Velocity.Scale(dt)
		moved := u.Position.Add(step)
		radius := w.terrain.RadiusAt(moved)
		u.Position = sphere.ProjectToRadius(moved, radius)

		if facing := u.Velocity.Normalize(); facing.Length() > 0 {
			u.Orientation = sphere.FromToRotation(sphere.Vec3{X: 0, Y: 0, Z: 1}, facing)
		}
	}
}

// arriveAt marks waypointID reached and advances the unit to the next
// waypoint in its path, honoring PathClosed wraparound. A closed path's
// wraparound is detected purely by index arithmetic (idx+1 overflowing
// len(Waypoints)), never by a doubly-linked structure (spec §9).
func (w *World) arriveAt(u *Unit, waypointID uint64) {
	idx := u.waypointIndex(waypointID)
	if idx < 0 {
		return
	}
	u.Waypoints[idx].State = WaypointLeft
	u.LastWaypointID = waypointID

	nextID, ok := u.nextWaypointID(idx)
	if !ok {
		u.TargetWaypointID = 0
		u.Velocity = sphere.Vec3{}
		return
	}
	u.TargetWaypointID = nextID
	if nextIdx := u.waypointIndex(nextID); nextIdx >= 0 {
		u.Waypoints[nextIdx].State = WaypointApproaching
	}
}
