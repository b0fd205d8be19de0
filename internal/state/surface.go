// Package state implements StateSurface (spec §4.8): the canonical,
// byte-stable projection of a World that two independent peers can hash
// and compare to prove they reached the same place. It never imports
// internal/world's mutable types into its own surface — Surface is a
// flat value type built once per tick from whatever World exposes
// through its public accessors, so projection can never race a
// concurrent mutation.
package state

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lukechampine/blake3"

	"github.com/lox/sphereforge/internal/world"
)

// WaypointSurface is one waypoint's canonical fields, in declared
// order. Waypoints are an authoritative, ordered part of a Unit (spec
// §3's "current waypoint list (ordered)"), so they belong in the hash
// surface the same as any other field — a bare count would let two
// worlds with different waypoint ids/positions/states hash identically.
type WaypointSurface struct {
	ID               uint64
	PosX, PosY, PosZ float64
	State            int
}

// UnitSurface is one unit's canonical fields, in the fixed declared
// order encode() writes them. Render-only fields (meshes, selection
// glow, dust, tire tracks) never appear here — the renderer derives
// them independently from Surface plus its own local state.
type UnitSurface struct {
	ID               uint64
	PosX, PosY, PosZ float64
	OriX, OriY, OriZ, OriW float64
	VelX, VelY, VelZ float64
	Health           float64
	Paused           bool
	TargetWaypointID uint64
	LastWaypointID   uint64
	PathClosed       bool
	Waypoints        []WaypointSurface // ordered, per spec §3
	PendingCommandIndex int
}

// Surface is the canonical record StateSurface.project(world) produces
// (spec §4.8). Field order here is the declared, fixed order hash()
// encodes in — never alphabetical, never map iteration order.
type Surface struct {
	Tick           uint64
	RNGSeed        int64
	RNGCallCount   uint64
	IDCounter      uint64
	SelectedUnitID uint64
	HasSelection   bool
	Units          []UnitSurface // sorted by ID ascending
}

// Project builds the canonical Surface for w. Units are read through
// w.Units(), which already returns entries in strictly increasing id
// order (I3); Project still sorts them by ID before returning.
func Project(w *world.World) Surface {
	units := w.Units()
	out := make([]UnitSurface, len(units))
	for i, u := range units {
		wps := make([]WaypointSurface, len(u.Waypoints))
		for j, wp := range u.Waypoints {
			wps[j] = WaypointSurface{
				ID:    wp.ID,
				PosX:  wp.Position.X,
				PosY:  wp.Position.Y,
				PosZ:  wp.Position.Z,
				State: int(wp.State),
			}
		}
		out[i] = UnitSurface{
			ID:               u.ID,
			PosX:             u.Position.X,
			PosY:             u.Position.Y,
			PosZ:             u.Position.Z,
			OriX:             u.Orientation.X,
			OriY:             u.Orientation.Y,
			OriZ:             u.Orientation.Z,
			OriW:             u.Orientation.W,
			VelX:             u.Velocity.X,
			VelY:             u.Velocity.Y,
			VelZ:             u.Velocity.Z,
			Health:           u.Health,
			Paused:           u.Paused,
			TargetWaypointID: u.TargetWaypointID,
			LastWaypointID:   u.LastWaypointID,
			PathClosed:       u.PathClosed,
			Waypoints:        wps,
			PendingCommandIndex: u.PendingCommandIndex,
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	rngState := w.RNGState()
	sel, hasSel := w.SelectedUnitID()

	return Surface{
		Tick:           w.Tick(),
		RNGSeed:        rngState.Seed,
		RNGCallCount:   rngState.CallCount,
		IDCounter:      w.IDCounter(),
		SelectedUnitID: sel,
		HasSelection:   hasSel,
		Units:          out,
	}
}

// encode renders s as a canonical byte string: declared key order,
// floats rounded to six significant digits with negative zero
// normalized to positive, booleans as "0"/"1" (spec §4.8). This is the
// only byte representation Hash ever sees — it is never used as a wire
// or save format (those round-trip full precision through msgp).
func encode(s Surface) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "tick=%d\n", s.Tick)
	fmt.Fprintf(&b, "rng_seed=%d\n", s.RNGSeed)
	fmt.Fprintf(&b, "rng_calls=%d\n", s.RNGCallCount)
	fmt.Fprintf(&b, "id_counter=%d\n", s.IDCounter)
	fmt.Fprintf(&b, "selected=%d\n", encodeBool(s.HasSelection))
	if s.HasSelection {
		fmt.Fprintf(&b, "selected_id=%d\n", s.SelectedUnitID)
	}
	fmt.Fprintf(&b, "units=%d\n", len(s.Units))
	for _, u := range s.Units {
		fmt.Fprintf(&b, "unit %d pos=%s,%s,%s ori=%s,%s,%s,%s vel=%s,%s,%s health=%s paused=%d target=%d last=%d closed=%d pending=%d wps=%d\n",
			u.ID,
			sig6(u.PosX), sig6(u.PosY), sig6(u.PosZ),
			sig6(u.OriX), sig6(u.OriY), sig6(u.OriZ), sig6(u.OriW),
			sig6(u.VelX), sig6(u.VelY), sig6(u.VelZ),
			sig6(u.Health),
			encodeBool(u.Paused),
			u.TargetWaypointID, u.LastWaypointID,
			encodeBool(u.PathClosed),
			u.PendingCommandIndex,
			len(u.Waypoints),
		)
		for _, wp := range u.Waypoints {
			fmt.Fprintf(&b, "  wp %d pos=%s,%s,%s state=%d\n",
				wp.ID, sig6(wp.PosX), sig6(wp.PosY), sig6(wp.PosZ), wp.State)
		}
	}
	return []byte(b.String())
}

func encodeBool(v bool) int {
	if v {
		return 1
	}
	return 0
}

// sig6 formats f to six significant digits, normalizing negative zero
// to "0" so that two bit-distinct but numerically-equal floats (e.g.
// -0.0 and 0.0, an easy outcome of floating-point cancellation in
// advanceUnits) hash identically.
func sig6(f float64) string {
	if f == 0 {
		return "0"
	}
	s := strconv.FormatFloat(f, 'g', 6, 64)
	if s == "-0" {
		return "0"
	}
	return s
}

// Hash returns the canonical content hash of s, using blake3 (spec
// §4.8's chosen content hash — fast, fixed-width, no key needed since
// determinism checking never needs collision resistance against an
// adversary, only against floating-point drift).
func Hash(s Surface) [32]byte {
	return blake3.Sum256(encode(s))
}

// HashHex is Hash rendered as a lowercase hex string, the form
// persistence envelopes and the verify harness report compare and log.
func HashHex(s Surface) string {
	h := Hash(s)
	return fmt.Sprintf("%x", h)
}
