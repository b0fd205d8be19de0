package persistence

import (
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/lox/sphereforge/internal/command"
	"github.com/lox/sphereforge/internal/world"
)

func newTestWorld(t *testing.T, seed int64) *world.World {
	t.Helper()
	w := world.New(world.Config{Seed: seed, DeltaMs: 50, Logger: zerolog.New(io.Discard)})
	_, err := w.Step([]command.Command{
		command.New("1", command.TagSpawn, 0, 1, command.SpawnPayload{Position: command.Vec3{X: 100, Y: 0, Z: 0}}),
	})
	require.NoError(t, err)
	return w
}

func TestSaveLoadRoundTrip(t *testing.T) {
	backend, err := OpenLocal(":memory:")
	require.NoError(t, err)
	defer backend.Close()

	p := New(backend, zerolog.New(io.Discard))
	ctx := context.Background()

	w := newTestWorld(t, 7)
	before := w.Snapshot()

	require.NoError(t, p.Save(ctx, "slot-1", w, 1700000000000, map[string]string{"mode": "lockstep"}))

	fresh := world.New(world.Config{Seed: 0, DeltaMs: 50, Logger: zerolog.New(io.Discard)})
	require.NoError(t, p.Load(ctx, "slot-1", fresh))

	after := fresh.Snapshot()
	require.Equal(t, before, after)
}

func TestLoadMissingKeyIsStorageUnavailable(t *testing.T) {
	backend, err := OpenLocal(":memory:")
	require.NoError(t, err)
	defer backend.Close()

	p := New(backend, zerolog.New(io.Discard))
	w := world.New(world.Config{Seed: 0, DeltaMs: 50, Logger: zerolog.New(io.Discard)})
	err = p.Load(context.Background(), "missing", w)
	require.Error(t, err)
}
