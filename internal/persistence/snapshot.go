package persistence

import (
	"github.com/tinylib/msgp/msgp"

	"github.com/lox/sphereforge/internal/command"
	"github.com/lox/sphereforge/internal/wire"
	"github.com/lox/sphereforge/internal/world"
)

func encodeSnapshot(w *msgp.Writer, s world.Snapshot) error {
	if err := w.WriteMapHeader(6); err != nil {
		return err
	}
	if err := w.WriteString("tick"); err != nil {
		return err
	}
	if err := w.WriteUint64(s.Tick); err != nil {
		return err
	}
	if err := w.WriteString("rng_seed"); err != nil {
		return err
	}
	if err := w.WriteInt64(s.RNGState.Seed); err != nil {
		return err
	}
	if err := w.WriteString("rng_calls"); err != nil {
		return err
	}
	if err := w.WriteUint64(s.RNGState.CallCount); err != nil {
		return err
	}
	if err := w.WriteString("id_counter"); err != nil {
		return err
	}
	if err := w.WriteUint64(s.IDCounter); err != nil {
		return err
	}
	if err := w.WriteString("selected"); err != nil {
		return err
	}
	if s.HasSelection {
		if err := w.WriteUint64(s.SelectedUnitID); err != nil {
			return err
		}
	} else {
		if err := w.WriteNil(); err != nil {
			return err
		}
	}
	if err := w.WriteString("units"); err != nil {
		return err
	}
	if err := w.WriteArrayHeader(uint32(len(s.Units))); err != nil {
		return err
	}
	for _, u := range s.Units {
		if err := encodeUnit(w, u); err != nil {
			return err
		}
	}
	return nil
}

func decodeSnapshot(r *msgp.Reader) (world.Snapshot, error) {
	n, err := r.ReadMapHeader()
	if err != nil {
		return world.Snapshot{}, err
	}
	var s world.Snapshot
	for i := uint32(0); i < n; i++ {
		key, err := r.ReadString()
		if err != nil {
			return world.Snapshot{}, err
		}
		switch key {
		case "tick":
			s.Tick, err = r.ReadUint64()
		case "rng_seed":
			s.RNGState.Seed, err = r.ReadInt64()
		case "rng_calls":
			s.RNGState.CallCount, err = r.ReadUint64()
		case "id_counter":
			s.IDCounter, err = r.ReadUint64()
		case "selected":
			if r.IsNil() {
				err = r.ReadNil()
				s.HasSelection = false
			} else {
				s.SelectedUnitID, err = r.ReadUint64()
				s.HasSelection = true
			}
		case "units":
			s.Units, err = decodeUnits(r)
		default:
			err = r.Skip()
		}
		if err != nil {
			return world.Snapshot{}, err
		}
	}
	return s, nil
}

func decodeUnits(r *msgp.Reader) ([]world.UnitSnapshot, error) {
	n, err := r.ReadArrayHeader()
	if err != nil {
		return nil, err
	}
	units := make([]world.UnitSnapshot, n)
	for i := uint32(0); i < n; i++ {
		u, err := decodeUnit(r)
		if err != nil {
			return nil, err
		}
		units[i] = u
	}
	return units, nil
}

func encodeUnit(w *msgp.Writer, u world.UnitSnapshot) error {
	if err := w.WriteMapHeader(13); err != nil {
		return err
	}
	fields := []struct {
		name string
		fn   func() error
	}{
		{"id", func() error { return w.WriteUint64(u.ID) }},
		{"position", func() error { return encodeVec3(w, u.Position) }},
		{"orientation", func() error { return encodeQuat(w, u.Orientation) }},
		{"velocity", func() error { return encodeVec3(w, u.Velocity) }},
		{"speed_cap", func() error { return w.WriteFloat64(u.SpeedCap) }},
		{"health", func() error { return w.WriteFloat64(u.Health) }},
		{"paused", func() error { return w.WriteBool(u.Paused) }},
		{"waypoints", func() error { return encodeWaypoints(w, u.Waypoints) }},
		{"path_closed", func() error { return w.WriteBool(u.PathClosed) }},
		{"target_waypoint_id", func() error { return w.WriteUint64(u.TargetWaypointID) }},
		{"last_waypoint_id", func() error { return w.WriteUint64(u.LastWaypointID) }},
		{"commands", func() error { return encodeCommands(w, u.Commands) }},
		{"current_command_index", func() error { return w.WriteInt(u.PendingCommandIndex) }},
	}
	for _, f := range fields {
		if err := w.WriteString(f.name); err != nil {
			return err
		}
		if err := f.fn(); err != nil {
			return err
		}
	}
	return nil
}

// encodeCommands writes a unit's own command history (spec §6's
// per-unit "commands:[…]"), reusing wire.EncodeCommand per entry rather
// than inventing a second command encoding.
func encodeCommands(w *msgp.Writer, cmds []command.Command) error {
	if err := w.WriteArrayHeader(uint32(len(cmds))); err != nil {
		return err
	}
	for _, c := range cmds {
		if err := wire.EncodeCommand(w, c); err != nil {
			return err
		}
	}
	return nil
}

func decodeCommands(r *msgp.Reader) ([]command.Command, error) {
	n, err := r.ReadArrayHeader()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	cmds := make([]command.Command, n)
	for i := uint32(0); i < n; i++ {
		cmds[i], err = wire.DecodeCommand(r)
		if err != nil {
			return nil, err
		}
	}
	return cmds, nil
}

func decodeUnit(r *msgp.Reader) (world.UnitSnapshot, error) {
	n, err := r.ReadMapHeader()
	if err != nil {
		return world.UnitSnapshot{}, err
	}
	var u world.UnitSnapshot
	for i := uint32(0); i < n; i++ {
		key, err := r.ReadString()
		if err != nil {
			return world.UnitSnapshot{}, err
		}
		switch key {
		case "id":
			u.ID, err = r.ReadUint64()
		case "position":
			u.Position, err = decodeVec3(r)
		case "orientation":
			u.Orientation, err = decodeQuat(r)
		case "velocity":
			u.Velocity, err = decodeVec3(r)
		case "speed_cap":
			u.SpeedCap, err = r.ReadFloat64()
		case "health":
			u.Health, err = r.ReadFloat64()
		case "paused":
			u.Paused, err = r.ReadBool()
		case "waypoints":
			u.Waypoints, err = decodeWaypoints(r)
		case "path_closed":
			u.PathClosed, err = r.ReadBool()
		case "target_waypoint_id":
			u.TargetWaypointID, err = r.ReadUint64()
		case "last_waypoint_id":
			u.LastWaypointID, err = r.ReadUint64()
		case "commands":
			u.Commands, err = decodeCommands(r)
		case "current_command_index":
			u.PendingCommandIndex, err = r.ReadInt()
		default:
			err = r.Skip()
		}
		if err != nil {
			return world.UnitSnapshot{}, err
		}
	}
	return u, nil
}

func encodeWaypoints(w *msgp.Writer, wps []world.Waypoint) error {
	if err := w.WriteArrayHeader(uint32(len(wps))); err != nil {
		return err
	}
	for _, wp := range wps {
		if err := w.WriteMapHeader(3); err != nil {
			return err
		}
		if err := w.WriteString("id"); err != nil {
			return err
		}
		if err := w.WriteUint64(wp.ID); err != nil {
			return err
		}
		if err := w.WriteString("position"); err != nil {
			return err
		}
		if err := encodeVec3(w, wp.Position); err != nil {
			return err
		}
		if err := w.WriteString("state"); err != nil {
			return err
		}
		if err := w.WriteInt(int(wp.State)); err != nil {
			return err
		}
	}
	return nil
}

func decodeWaypoints(r *msgp.Reader) ([]world.Waypoint, error) {
	n, err := r.ReadArrayHeader()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	wps := make([]world.Waypoint, n)
	for i := uint32(0); i < n; i++ {
		m, err := r.ReadMapHeader()
		if err != nil {
			return nil, err
		}
		var wp world.Waypoint
		for j := uint32(0); j < m; j++ {
			key, err := r.ReadString()
			if err != nil {
				return nil, err
			}
			switch key {
			case "id":
				wp.ID, err = r.ReadUint64()
			case "position":
				wp.Position, err = decodeVec3(r)
			case "state":
				var st int
				st, err = r.ReadInt()
				wp.State = world.WaypointState(st)
			default:
				err = r.Skip()
			}
			if err != nil {
				return nil, err
			}
		}
		wps[i] = wp
	}
	return wps, nil
}
