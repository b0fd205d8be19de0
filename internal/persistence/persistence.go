package persistence

import (
	"bytes"
	"context"

	"github.com/pierrec/lz4/v4"
	"github.com/rs/zerolog"

	"github.com/lox/sphereforge/internal/simerr"
	"github.com/lox/sphereforge/internal/world"
)

// Backend is the storage-agnostic byte store both persistence
// implementations sit behind (spec §4.10): local and remote backends
// never see a Snapshot, only opaque, already-compressed bytes under a
// string key.
type Backend interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// Persistence is the public surface spec §4.10 describes: Save
// produces an opaque blob from a World, Load restores a World from one.
// The lz4 compression step and envelope framing happen here, once, so
// neither backend duplicates it.
type Persistence struct {
	backend Backend
	logger  zerolog.Logger
}

// New wraps backend with the envelope/compression layer common to both
// the local and remote stores.
func New(backend Backend, logger zerolog.Logger) *Persistence {
	return &Persistence{backend: backend, logger: logger}
}

// Save snapshots w, frames it in a versioned Envelope, lz4-compresses
// the result, and writes it to the backend under key.
func (p *Persistence) Save(ctx context.Context, key string, w *world.World, savedAtMs int64, metadata map[string]string) error {
	env := Envelope{
		Version:   EnvelopeVersion,
		SavedAtMs: savedAtMs,
		Snapshot:  w.Snapshot(),
		Metadata:  metadata,
	}
	raw, err := EncodeEnvelope(env)
	if err != nil {
		return err
	}

	compressed, err := compress(raw)
	if err != nil {
		return err
	}

	if err := p.backend.Put(ctx, key, compressed); err != nil {
		p.logger.Error().Err(err).Str("key", key).Msg("persistence: save failed")
		return simerr.ErrStorageUnavailable
	}
	return nil
}

// Load reads key from the backend, decompresses and decodes its
// envelope, and restores w in place. Restore is atomic: on any
// validation error below the Envelope decode, w is left untouched.
func (p *Persistence) Load(ctx context.Context, key string, w *world.World) error {
	compressed, err := p.backend.Get(ctx, key)
	if err != nil {
		p.logger.Error().Err(err).Str("key", key).Msg("persistence: load failed")
		return simerr.ErrStorageUnavailable
	}

	raw, err := decompress(compressed)
	if err != nil {
		return simerr.ErrCorruptedSave
	}

	env, err := DecodeEnvelope(raw)
	if err != nil {
		return simerr.ErrCorruptedSave
	}
	if env.Version > EnvelopeVersion {
		return simerr.ErrIncompatibleVersion
	}

	return w.Restore(env.Snapshot)
}

func compress(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompress(compressed []byte) ([]byte, error) {
	zr := lz4.NewReader(bytes.NewReader(compressed))
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(zr); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
