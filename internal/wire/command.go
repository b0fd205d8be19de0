// Package wire implements the msgp-based binary encoding for commands and
// broadcast envelopes (spec §6), hand-written as msgp maps keyed by field
// name. The snapshot envelope is encoded in internal/persistence.
package wire

import (
	"github.com/tinylib/msgp/msgp"

	"github.com/lox/sphereforge/internal/command"
)

// EncodeCommand writes cmd as a msgp map with keys id, type, issued_tick,
// target_tick, client_id, seq, issue_index, and a tag-specific payload
// map.
func EncodeCommand(w *msgp.Writer, cmd command.Command) error {
	if err := w.WriteMapHeader(8); err != nil {
		return err
	}
	fields := []struct {
		key string
		wr  func() error
	}{
		{"id", func() error { return w.WriteString(cmd.Id) }},
		{"type", func() error { return w.WriteString(string(cmd.Type)) }},
		{"issued_tick", func() error { return w.WriteUint64(cmd.IssuedTick) }},
		{"target_tick", func() error { return w.WriteUint64(cmd.TargetTick) }},
		{"client_id", func() error { return w.WriteString(cmd.ClientID) }},
		{"seq", func() error { return w.WriteUint64(cmd.Seq) }},
		{"issue_index", func() error { return w.WriteUint64(cmd.IssueIndex) }},
		{"payload", func() error { return encodePayload(w, cmd.Type, cmd.Payload) }},
	}
	for _, f := range fields {
		if err := w.WriteString(f.key); err != nil {
			return err
		}
		if err := f.wr(); err != nil {
			return err
		}
	}
	return nil
}

func encodeVec3(w *msgp.Writer, v command.Vec3) error {
	if err := w.WriteMapHeader(3); err != nil {
		return err
	}
	for _, kv := range []struct {
		k string
		v float64
	}{{"x", v.X}, {"y", v.Y}, {"z", v.Z}} {
		if err := w.WriteString(kv.k); err != nil {
			return err
		}
		if err := w.WriteFloat64(kv.v); err != nil {
			return err
		}
	}
	return nil
}

func encodePayload(w *msgp.Writer, tag command.Tag, payload any) error {
	switch tag {
	case command.TagSelect:
		p := payload.(command.SelectPayload)
		if err := w.WriteMapHeader(1); err != nil {
			return err
		}
		if err := w.WriteString("unit_id"); err != nil {
			return err
		}
		return w.WriteUint64(p.UnitID)
	case command.TagDeselect:
		return w.WriteMapHeader(0)
	case command.TagMove:
		p := payload.(command.MovePayload)
		if err := w.WriteMapHeader(2); err != nil {
			return err
		}
		if err := w.WriteString("unit_id"); err != nil {
			return err
		}
		if err := w.WriteUint64(p.UnitID); err != nil {
			return err
		}
		if err := w.WriteString("position"); err != nil {
			return err
		}
		return encodeVec3(w, p.Position)
	case command.TagSetPath:
		p := payload.(command.SetPathPayload)
		if err := w.WriteMapHeader(2); err != nil {
			return err
		}
		if err := w.WriteString("unit_id"); err != nil {
			return err
		}
		if err := w.WriteUint64(p.UnitID); err != nil {
			return err
		}
		if err := w.WriteString("points"); err != nil {
			return err
		}
		if err := w.WriteArrayHeader(uint32(len(p.Points))); err != nil {
			return err
		}
		for _, pt := range p.Points {
			if err := encodeVec3(w, pt); err != nil {
				return err
			}
		}
		return nil
	case command.TagClosePath:
		p := payload.(command.ClosePathPayload)
		if err := w.WriteMapHeader(1); err != nil {
			return err
		}
		if err := w.WriteString("unit_id"); err != nil {
			return err
		}
		return w.WriteUint64(p.UnitID)
	case command.TagSpawn:
		p := payload.(command.SpawnPayload)
		if err := w.WriteMapHeader(1); err != nil {
			return err
		}
		if err := w.WriteString("position"); err != nil {
			return err
		}
		return encodeVec3(w, p.Position)
	case command.TagStop:
		p := payload.(command.StopPayload)
		if err := w.WriteMapHeader(1); err != nil {
			return err
		}
		if err := w.WriteString("unit_id"); err != nil {
			return err
		}
		return w.WriteUint64(p.UnitID)
	case command.TagMoveDir:
		p := payload.(command.MoveDirPayload)
		if err := w.WriteMapHeader(2); err != nil {
			return err
		}
		if err := w.WriteString("unit_id"); err != nil {
			return err
		}
		if err := w.WriteUint64(p.UnitID); err != nil {
			return err
		}
		if err := w.WriteString("direction"); err != nil {
			return err
		}
		return encodeVec3(w, p.Direction)
	case command.TagDestroy:
		p := payload.(command.DestroyPayload)
		if err := w.WriteMapHeader(1); err != nil {
			return err
		}
		if err := w.WriteString("unit_id"); err != nil {
			return err
		}
		return w.WriteUint64(p.UnitID)
	default:
		// Unknown tag: encode an empty payload. WorldModel.apply is the
		// place that logs-and-drops; the wire format must still round
		// trip for mixed-version peers (spec §9).
		return w.WriteMapHeader(0)
	}
}

// DecodeCommand reads a command previously written by EncodeCommand.
// Unknown tags decode successfully with a nil Payload; WorldModel.apply
// is responsible for dropping them.
func DecodeCommand(r *msgp.Reader) (command.Command, error) {
	var cmd command.Command
	n, err := r.ReadMapHeader()
	if err != nil {
		return cmd, err
	}
	var rawTag string
	for i := uint32(0); i < n; i++ {
		key, err := r.ReadString()
		if err != nil {
			return cmd, err
		}
		switch key {
		case "id":
			cmd.Id, err = r.ReadString()
		case "type":
			rawTag, err = r.ReadString()
			cmd.Type = command.Tag(rawTag)
		case "issued_tick":
			cmd.IssuedTick, err = r.ReadUint64()
		case "target_tick":
			cmd.TargetTick, err = r.ReadUint64()
		case "client_id":
			cmd.ClientID, err = r.ReadString()
		case "seq":
			cmd.Seq, err = r.ReadUint64()
		case "issue_index":
			cmd.IssueIndex, err = r.ReadUint64()
		case "payload":
			// EncodeCommand always writes "type" before "payload", so
			// cmd.Type is already known by the time we get here.
			cmd.Payload, err = decodePayload(cmd.Type, r)
		default:
			err = r.Skip()
		}
		if err != nil {
			return cmd, err
		}
	}
	return cmd, nil
}

func decodeVec3(r *msgp.Reader) (command.Vec3, error) {
	var v command.Vec3
	n, err := r.ReadMapHeader()
	if err != nil {
		return v, err
	}
	for i := uint32(0); i < n; i++ {
		key, err := r.ReadString()
		if err != nil {
			return v, err
		}
		val, err := r.ReadFloat64()
		if err != nil {
			return v, err
		}
		switch key {
		case "x":
			v.X = val
		case "y":
			v.Y = val
		case "z":
			v.Z = val
		}
	}
	return v, nil
}

func decodePayload(tag command.Tag, r *msgp.Reader) (any, error) {
	switch tag {
	case command.TagSelect:
		n, err := r.ReadMapHeader()
		if err != nil {
			return nil, err
		}
		var p command.SelectPayload
		for i := uint32(0); i < n; i++ {
			if _, err := r.ReadString(); err != nil {
				return nil, err
			}
			if p.UnitID, err = r.ReadUint64(); err != nil {
				return nil, err
			}
		}
		return p, nil
	case command.TagDeselect:
		_, err := r.ReadMapHeader()
		return command.DeselectPayload{}, err
	case command.TagMove:
		n, err := r.ReadMapHeader()
		if err != nil {
			return nil, err
		}
		var p command.MovePayload
		for i := uint32(0); i < n; i++ {
			key, err := r.ReadString()
			if err != nil {
				return nil, err
			}
			switch key {
			case "unit_id":
				if p.UnitID, err = r.ReadUint64(); err != nil {
					return nil, err
				}
			case "position":
				if p.Position, err = decodeVec3(r); err != nil {
					return nil, err
				}
			}
		}
		return p, nil
	case command.TagSetPath:
		n, err := r.ReadMapHeader()
		if err != nil {
			return nil, err
		}
		var p command.SetPathPayload
		for i := uint32(0); i < n; i++ {
			key, err := r.ReadString()
			if err != nil {
				return nil, err
			}
			switch key {
			case "unit_id":
				if p.UnitID, err = r.ReadUint64(); err != nil {
					return nil, err
				}
			case "points":
				sz, err := r.ReadArrayHeader()
				if err != nil {
					return nil, err
				}
				p.Points = make([]command.Vec3, sz)
				for j := uint32(0); j < sz; j++ {
					if p.Points[j], err = decodeVec3(r); err != nil {
						return nil, err
					}
				}
			}
		}
		return p, nil
	case command.TagClosePath:
		n, err := r.ReadMapHeader()
		if err != nil {
			return nil, err
		}
		var p command.ClosePathPayload
		for i := uint32(0); i < n; i++ {
			if _, err := r.ReadString(); err != nil {
				return nil, err
			}
			if p.UnitID, err = r.ReadUint64(); err != nil {
				return nil, err
			}
		}
		return p, nil
	case command.TagSpawn:
		n, err := r.ReadMapHeader()
		if err != nil {
			return nil, err
		}
		var p command.SpawnPayload
		for i := uint32(0); i < n; i++ {
			key, err := r.ReadString()
			if err != nil {
				return nil, err
			}
			if key == "position" {
				if p.Position, err = decodeVec3(r); err != nil {
					return nil, err
				}
			}
		}
		return p, nil
	case command.TagStop:
		n, err := r.ReadMapHeader()
		if err != nil {
			return nil, err
		}
		var p command.StopPayload
		for i := uint32(0); i < n; i++ {
			if _, err := r.ReadString(); err != nil {
				return nil, err
			}
			if p.UnitID, err = r.ReadUint64(); err != nil {
				return nil, err
			}
		}
		return p, nil
	case command.TagMoveDir:
		n, err := r.ReadMapHeader()
		if err != nil {
			return nil, err
		}
		var p command.MoveDirPayload
		for i := uint32(0); i < n; i++ {
			key, err := r.ReadString()
			if err != nil {
				return nil, err
			}
			switch key {
			case "unit_id":
				if p.UnitID, err = r.ReadUint64(); err != nil {
					return nil, err
				}
			case "direction":
				if p.Direction, err = decodeVec3(r); err != nil {
					return nil, err
				}
			}
		}
		return p, nil
	case command.TagDestroy:
		n, err := r.ReadMapHeader()
		if err != nil {
			return nil, err
		}
		var p command.DestroyPayload
		for i := uint32(0); i < n; i++ {
			if _, err := r.ReadString(); err != nil {
				return nil, err
			}
			if p.UnitID, err = r.ReadUint64(); err != nil {
				return nil, err
			}
		}
		return p, nil
	default:
		// Unknown tag: consume whatever fields are present and return a
		// nil payload. WorldModel.apply logs and drops these; decoding
		// must not fail mixed-version peers (spec §9).
		n, err := r.ReadMapHeader()
		if err != nil {
			return nil, err
		}
		for i := uint32(0); i < n; i++ {
			if err := r.Skip(); err != nil {
				return nil, err
			}
			if err := r.Skip(); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}
}
