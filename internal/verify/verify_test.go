package verify

import (
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/sphereforge/internal/command"
)

func TestRunCleanForIdenticalScript(t *testing.T) {
	script := map[uint64][]command.Command{
		1: {
			command.New("1", command.TagSpawn, 0, 1, command.SpawnPayload{Position: command.Vec3{X: 100}}),
			command.New("2", command.TagSpawn, 0, 1, command.SpawnPayload{Position: command.Vec3{X: -100}}),
		},
		3: {
			command.New("3", command.TagMove, 2, 3, command.MovePayload{UnitID: 1, Position: command.Vec3{Y: 100}}),
		},
	}

	report, err := Run(context.Background(), Config{
		Seed:    42,
		DeltaMs: 50,
		Ticks:   20,
		Script:  script,
		Logger:  zerolog.New(io.Discard),
	})
	require.NoError(t, err)
	assert.True(t, report.Clean())
	assert.Len(t, report.HashesA, 20)
	assert.Equal(t, report.HashesA, report.HashesB)
}

func TestRunDropsLateCommandsInLockstepModeOnBothPeers(t *testing.T) {
	// TargetTick 1 is already in the past by the time tick 5's loop
	// iteration sends it (currentTick=4), so CommandQueue must drop it
	// on both peers identically rather than World.Step ever seeing it.
	script := map[uint64][]command.Command{
		5: {command.New("1", command.TagSpawn, 4, 1, command.SpawnPayload{Position: command.Vec3{X: 1}})},
	}

	report, err := Run(context.Background(), Config{
		Seed:    1,
		DeltaMs: 50,
		Ticks:   10,
		Mode:    command.ModeLockstep,
		Script:  script,
		Logger:  zerolog.New(io.Discard),
	})
	require.NoError(t, err)
	assert.True(t, report.Clean())
}
