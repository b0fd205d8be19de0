// Package persistence implements Persistence (spec §4.10): saving and
// loading a World's Snapshot as an opaque, versioned, lz4-compressed
// blob, against either a local SQLite store or a remote HTTP store.
// Neither backend ever interprets the blob's contents — only this
// package's envelope code does, mirroring how the teacher's protocol
// package keeps wire encoding in one place and treats transports as
// dumb byte pipes.
package persistence

import (
	"bytes"

	"github.com/tinylib/msgp/msgp"

	"github.com/lox/sphereforge/internal/sphere"
	"github.com/lox/sphereforge/internal/world"
)

// EnvelopeVersion is the current save format version. Load rejects any
// envelope whose Version is greater than this (spec §4.10,
// simerr.ErrIncompatibleVersion) — older versions are accepted as they
// are, with no conversion step; newer ones are refused rather than
// guessed at.
const EnvelopeVersion = 1

// Envelope is the save payload's schema (spec §6): a version tag, a
// wall-clock save time, and the full WorldModel snapshot needed to
// resume play.
type Envelope struct {
	Version   int
	SavedAtMs int64
	Snapshot  world.Snapshot
	Metadata  map[string]string
}

// EncodeEnvelope renders env as msgp bytes, hand-written as maps with
// string keys in the same style as internal/wire.EncodeCommand since no
// //go:generate msgp codegen runs in this module.
func EncodeEnvelope(env Envelope) ([]byte, error) {
	var buf bytes.Buffer
	w := msgp.NewWriter(&buf)

	if err := w.WriteMapHeader(4); err != nil {
		return nil, err
	}
	if err := w.WriteString("version"); err != nil {
		return nil, err
	}
	if err := w.WriteInt(env.Version); err != nil {
		return nil, err
	}
	if err := w.WriteString("saved_at_ms"); err != nil {
		return nil, err
	}
	if err := w.WriteInt64(env.SavedAtMs); err != nil {
		return nil, err
	}
	if err := w.WriteString("snapshot"); err != nil {
		return nil, err
	}
	if err := encodeSnapshot(w, env.Snapshot); err != nil {
		return nil, err
	}
	if err := w.WriteString("metadata"); err != nil {
		return nil, err
	}
	if err := w.WriteMapHeader(uint32(len(env.Metadata))); err != nil {
		return nil, err
	}
	for k, v := range env.Metadata {
		if err := w.WriteString(k); err != nil {
			return nil, err
		}
		if err := w.WriteString(v); err != nil {
			return nil, err
		}
	}

	if err := w.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeEnvelope is EncodeEnvelope's inverse. Unknown top-level keys are
// skipped rather than rejected, the same forward-compatibility posture
// as internal/wire's command decoder.
func DecodeEnvelope(data []byte) (Envelope, error) {
	r := msgp.NewReader(bytes.NewReader(data))
	n, err := r.ReadMapHeader()
	if err != nil {
		return Envelope{}, err
	}

	var env Envelope
	for i := uint32(0); i < n; i++ {
		key, err := r.ReadString()
		if err != nil {
			return Envelope{}, err
		}
		switch key {
		case "version":
			env.Version, err = r.ReadInt()
		case "saved_at_ms":
			env.SavedAtMs, err = r.ReadInt64()
		case "snapshot":
			env.Snapshot, err = decodeSnapshot(r)
		case "metadata":
			env.Metadata, err = decodeStringMap(r)
		default:
			err = r.Skip()
		}
		if err != nil {
			return Envelope{}, err
		}
	}
	return env, nil
}

func decodeStringMap(r *msgp.Reader) (map[string]string, error) {
	n, err := r.ReadMapHeader()
	if err != nil {
		return nil, err
	}
	m := make(map[string]string, n)
	for i := uint32(0); i < n; i++ {
		k, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		v, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		m[k] = v
	}
	return m, nil
}

func encodeVec3(w *msgp.Writer, v sphere.Vec3) error {
	if err := w.WriteArrayHeader(3); err != nil {
		return err
	}
	if err := w.WriteFloat64(v.X); err != nil {
		return err
	}
	if err := w.WriteFloat64(v.Y); err != nil {
		return err
	}
	return w.WriteFloat64(v.Z)
}

func decodeVec3(r *msgp.Reader) (sphere.Vec3, error) {
	if _, err := r.ReadArrayHeader(); err != nil {
		return sphere.Vec3{}, err
	}
	x, err := r.ReadFloat64()
	if err != nil {
		return sphere.Vec3{}, err
	}
	y, err := r.ReadFloat64()
	if err != nil {
		return sphere.Vec3{}, err
	}
	z, err := r.ReadFloat64()
	if err != nil {
		return sphere.Vec3{}, err
	}
	return sphere.Vec3{X: x, Y: y, Z: z}, nil
}

func encodeQuat(w *msgp.Writer, q sphere.Quaternion) error {
	if err := w.WriteArrayHeader(4); err != nil {
		return err
	}
	for _, f := range [4]float64{q.X, q.Y, q.Z, q.W} {
		if err := w.WriteFloat64(f); err != nil {
			return err
		}
	}
	return nil
}

func decodeQuat(r *msgp.Reader) (sphere.Quaternion, error) {
	if _, err := r.ReadArrayHeader(); err != nil {
		return sphere.Quaternion{}, err
	}
	var f [4]float64
	for i := range f {
		v, err := r.ReadFloat64()
		if err != nil {
			return sphere.Quaternion{}, err
		}
		f[i] = v
	}
	return sphere.Quaternion{X: f[0], Y: f[1], Z: f[2], W: f[3]}, nil
}
