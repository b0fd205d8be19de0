package engine

import (
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/sphereforge/internal/command"
	"github.com/lox/sphereforge/internal/input"
	"github.com/lox/sphereforge/internal/idgen"
	"github.com/lox/sphereforge/internal/state"
	"github.com/lox/sphereforge/internal/transport"
	"github.com/lox/sphereforge/internal/world"
)

func TestAdvanceRunsWholeTicksAndNotifiesObserver(t *testing.T) {
	logger := zerolog.New(io.Discard)
	w := world.New(world.Config{Seed: 1, DeltaMs: 50, Logger: logger})
	local := transport.NewLocal()
	require.NoError(t, local.Connect(context.Background()))

	var events []world.TickEvent
	var hashes []string
	e := New(Config{
		World:     w,
		Queue:     command.NewQueue(command.ModeLockstep),
		Transport: local,
		DeltaMs:   50,
		Logger:    logger,
		Observer: func(ev world.TickEvent, s state.Surface, hash string) {
			events = append(events, ev)
			hashes = append(hashes, hash)
		},
	})

	f := input.New(idgen.New(), local)
	require.NoError(t, f.Spawn(context.Background(), w.Tick(), command.Vec3{X: 100}))

	_, _, err := e.Advance(0)
	require.NoError(t, err)

	ticks, _, err := e.Advance(275)
	require.NoError(t, err)
	assert.Equal(t, 5, ticks) // floor(275/50)
	assert.Len(t, events, 5)
	assert.Len(t, hashes, 5)
}
