package world

import (
	"strconv"

	"github.com/lox/sphereforge/internal/command"
	"github.com/lox/sphereforge/internal/pathplan"
	"github.com/lox/sphereforge/internal/sphere"
)

// apply dispatches a single command, per-command semantics from spec
// §4.7. Commands targeting unknown entities are logged and dropped —
// not fatal (EntityNotFound). Unknown tags are logged and dropped
// (CommandUnknown) — WorldModel.apply never aborts a tick for either.
func (w *World) apply(cmd command.Command) {
	if !command.KnownTag(cmd.Type) {
		w.logger.Warn().Str("tag", string(cmd.Type)).Str("cmd_id", cmd.Id).
			Msg("dropping command with unknown tag")
		return
	}

	switch cmd.Type {
	case command.TagSpawn:
		w.applySpawn(cmd)
	case command.TagSelect:
		w.applySelect(cmd)
	case command.TagDeselect:
		w.selectedID = nil
	case command.TagMove:
		w.applyMove(cmd)
	case command.TagSetPath:
		w.applySetPath(cmd)
	case command.TagClosePath:
		w.applyClosePath(cmd)
	case command.TagStop:
		w.applyStop(cmd)
	case command.TagMoveDir:
		w.applyMoveDir(cmd)
	case command.TagDestroy:
		w.applyDestroy(cmd)
	}
}

func (w *World) logEntityNotFound(cmd command.Command, unitID uint64) {
	w.logger.Warn().Str("cmd_id", cmd.Id).Str("tag", string(cmd.Type)).
		Uint64("unit_id", unitID).Msg("command targeted unknown entity, dropped")
}

func (w *World) applySpawn(cmd command.Command) {
	p := cmd.Payload.(command.SpawnPayload)
	id := w.ids.Next()
	pos := toSphere(p.Position)
	pos = sphere.ProjectToRadius(pos, w.terrain.RadiusAt(pos))
	u := &Unit{
		ID:          id,
		Position:    pos,
		Orientation: sphere.IdentityQuaternion,
		SpeedCap:    defaultSpeedCap,
		Health:      defaultHealth,
	}
	if err := w.insertUnit(u); err != nil {
		// insertUnit only fails on a duplicate id, which cannot happen
		// with a monotonic IdGen. The failure is logged and the spawn is
		// skipped; the tick is not aborted and Step returns no error.
		w.logger.Error().Err(err).Msg("spawn failed invariant check")
	}
}

const (
	defaultSpeedCap = 5.0  // world units per second
	defaultHealth   = 100.0
)

func (w *World) applySelect(cmd command.Command) {
	p := cmd.Payload.(command.SelectPayload)
	u, ok := w.units[p.UnitID]
	if !ok {
		w.logEntityNotFound(cmd, p.UnitID)
		return
	}
	id := p.UnitID
	w.selectedID = &id
	u.recordCommand(cmd)
}

// deriveWaypointID turns the string command id (itself a decimal
// rendering of an IdGen counter value, per spec §3's "id derived from
// IdGen") back into a numeric waypoint id, optionally offset for the
// nth point a single command produces. This realizes "Waypoint IDs are
// borrowed from the command that produced them" for both the
// one-waypoint-per-Move case and SetPath's multi-point case.
func deriveWaypointID(cmdID string, index int) uint64 {
	base, err := strconv.ParseUint(cmdID, 10, 64)
	if err != nil {
		// Non-numeric command ids (e.g. hand-authored test fixtures)
		// still need a stable, collision-resistant derivation.
		base = fnv1a(cmdID)
	}
	return base*1024 + uint64(index)
}

func fnv1a(s string) uint64 {
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211
	h := uint64(offset64)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime64
	}
	return h
}

func toSphere(v command.Vec3) sphere.Vec3 { return sphere.Vec3{X: v.X, Y: v.Y, Z: v.Z} }

// applyMove replaces the target unit's active target with a single new
// waypoint at the given position (spec §4.7). The path planner is
// called, but its curve is discarded: advance() steers straight toward
// the destination, which is the only Waypoint stored (keeps
// "one-to-one with Move commands" literal).
func (w *World) applyMove(cmd command.Command) {
	p := cmd.Payload.(command.MovePayload)
	u, ok := w.units[p.UnitID]
	if !ok {
		w.logEntityNotFound(cmd, p.UnitID)
		return
	}

	target := toSphere(p.Position)
	target = sphere.ProjectToRadius(target, w.terrain.RadiusAt(target))

	// Consult the path planner so its random tie-breaks (if any) draw
	// from the authoritative RNG even though only the destination is
	// stored; this keeps the RNG call sequence identical to a future
	// implementation that does store the full curve (I4).
	_ = pathplan.Plan(u.Position, target, w.terrain.RadiusAt, w.obstacles, w.rng)

	wp := Waypoint{ID: deriveWaypointID(cmd.Id, 0), Position: target, State: WaypointApproaching}
	u.Waypoints = []Waypoint{wp}
	u.PathClosed = false
	u.TargetWaypointID = wp.ID
	u.recordCommand(cmd)
}

func (w *World) applySetPath(cmd command.Command) {
	p := cmd.Payload.(command.SetPathPayload)
	u, ok := w.units[p.UnitID]
	if !ok {
		w.logEntityNotFound(cmd, p.UnitID)
		return
	}

	waypoints := make([]Waypoint, 0, len(p.Points))
	for i, pt := range p.Points {
		pos := toSphere(pt)
		pos = sphere.ProjectToRadius(pos, w.terrain.RadiusAt(pos))
		state := WaypointNeutral
		if i == 0 {
			state = WaypointApproaching
		}
		waypoints = append(waypoints, Waypoint{
			ID:       deriveWaypointID(cmd.Id, i),
			Position: pos,
			State:    state,
		})
	}
	u.Waypoints = waypoints
	u.PathClosed = false
	if len(waypoints) > 0 {
		u.TargetWaypointID = waypoints[0].ID
	} else {
		u.TargetWaypointID = 0
	}
	u.recordCommand(cmd)
}

func (w *World) applyClosePath(cmd command.Command) {
	p := cmd.Payload.(command.ClosePathPayload)
	u, ok := w.units[p.UnitID]
	if !ok {
		w.logEntityNotFound(cmd, p.UnitID)
		return
	}
	if len(u.Waypoints) >= 3 {
		u.PathClosed = true
	}
	u.recordCommand(cmd)
}

func (w *World) applyStop(cmd command.Command) {
	p := cmd.Payload.(command.StopPayload)
	u, ok := w.units[p.UnitID]
	if !ok {
		w.logEntityNotFound(cmd, p.UnitID)
		return
	}
	u.Velocity = sphere.Vec3{}
	u.Waypoints = nil
	u.TargetWaypointID = 0
	u.PathClosed = false
	u.recordCommand(cmd)
}

func (w *World) applyMoveDir(cmd command.Command) {
	p := cmd.Payload.(command.MoveDirPayload)
	u, ok := w.units[p.UnitID]
	if !ok {
		w.logEntityNotFound(cmd, p.UnitID)
		return
	}
	dir := toSphere(p.Direction).Normalize()
	u.Velocity = dir.Scale(u.SpeedCap)
	// Manual velocity control overrides any active path (spec §4.7).
	u.Waypoints = nil
	u.TargetWaypointID = 0
	u.recordCommand(cmd)
}

func (w *World) applyDestroy(cmd command.Command) {
	p := cmd.Payload.(command.DestroyPayload)
	if _, ok := w.units[p.UnitID]; !ok {
		w.logEntityNotFound(cmd, p.UnitID)
		return
	}
	// No recordCommand here: the unit's whole record is removed in the
	// same step, so there is no history left to append to.
	w.removeUnit(p.UnitID)
}
