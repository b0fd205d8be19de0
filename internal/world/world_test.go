package world

import (
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/sphereforge/internal/command"
)

func newTestWorld(seed int64) *World {
	return New(Config{Seed: seed, DeltaMs: 50, Logger: zerolog.New(io.Discard)})
}

func spawnCmd(id string, x float64) command.Command {
	return command.New(id, command.TagSpawn, 0, 1, command.SpawnPayload{Position: command.Vec3{X: BaseRadius + x}})
}

func TestSpawnAllocatesMonotonicIDsAndProjectsToTerrain(t *testing.T) {
	w := newTestWorld(1)
	_, err := w.Step([]command.Command{spawnCmd("1", 0), spawnCmd("2", 0)})
	require.NoError(t, err)

	units := w.Units()
	require.Len(t, units, 2)
	assert.Less(t, units[0].ID, units[1].ID)
	for _, u := range units {
		assert.InDelta(t, BaseRadius, u.Position.Length(), 1e-9)
	}
}

func TestSelectAndDeselect(t *testing.T) {
	w := newTestWorld(1)
	_, err := w.Step([]command.Command{spawnCmd("1", 0)})
	require.NoError(t, err)
	id := w.Units()[0].ID

	selCmd := command.New("2", command.TagSelect, 1, 2, command.SelectPayload{UnitID: id})
	_, err = w.Step([]command.Command{selCmd})
	require.NoError(t, err)

	got, ok := w.SelectedUnitID()
	require.True(t, ok)
	assert.Equal(t, id, got)

	deselCmd := command.New("3", command.TagDeselect, 2, 3, command.DeselectPayload{})
	_, err = w.Step([]command.Command{deselCmd})
	require.NoError(t, err)
	_, ok = w.SelectedUnitID()
	assert.False(t, ok)
}

func TestUnknownEntityCommandIsDroppedNotFatal(t *testing.T) {
	w := newTestWorld(1)
	selCmd := command.New("1", command.TagSelect, 0, 1, command.SelectPayload{UnitID: 999})
	_, err := w.Step([]command.Command{selCmd})
	require.NoError(t, err)
	_, ok := w.SelectedUnitID()
	assert.False(t, ok)
}

func TestUnknownTagIsDroppedNotFatal(t *testing.T) {
	w := newTestWorld(1)
	cmd := command.New("1", command.Tag("not_a_real_tag"), 0, 1, nil)
	event, err := w.Step([]command.Command{cmd})
	require.NoError(t, err)
	assert.Equal(t, 1, event.Applied)
}

func TestMoveSetsSingleWaypointAndUnitEventuallyArrives(t *testing.T) {
	w := newTestWorld(1)
	_, err := w.Step([]command.Command{spawnCmd("1", 0)})
	require.NoError(t, err)
	id := w.Units()[0].ID

	moveCmd := command.New("2", command.TagMove, 1, 2, command.MovePayload{
		UnitID:   id,
		Position: command.Vec3{X: 0, Y: BaseRadius, Z: 0},
	})
	_, err = w.Step([]command.Command{moveCmd})
	require.NoError(t, err)

	u, ok := w.Unit(id)
	require.True(t, ok)
	require.Len(t, u.Waypoints, 1)
	assert.Equal(t, WaypointApproaching, u.Waypoints[0].State)

	for i := 0; i < 10000; i++ {
		if _, err := w.Step(nil); err != nil {
			t.Fatalf("step failed: %v", err)
		}
		u, _ = w.Unit(id)
		if len(u.Waypoints) == 0 || u.Waypoints[0].State == WaypointLeft {
			break
		}
	}
	require.Len(t, u.Waypoints, 1)
	assert.Equal(t, WaypointLeft, u.Waypoints[0].State, "unit never reached its Move waypoint")
}

func TestStopClearsVelocityAndPath(t *testing.T) {
	w := newTestWorld(1)
	_, err := w.Step([]command.Command{spawnCmd("1", 0)})
	require.NoError(t, err)
	id := w.Units()[0].ID

	dirCmd := command.New("2", command.TagMoveDir, 1, 2, command.MoveDirPayload{UnitID: id, Direction: command.Vec3{X: 0, Y: 1, Z: 0}})
	_, err = w.Step([]command.Command{dirCmd})
	require.NoError(t, err)
	u, _ := w.Unit(id)
	assert.NotZero(t, u.Velocity.Length())

	stopCmd := command.New("3", command.TagStop, 2, 3, command.StopPayload{UnitID: id})
	_, err = w.Step([]command.Command{stopCmd})
	require.NoError(t, err)
	u, _ = w.Unit(id)
	assert.Zero(t, u.Velocity.Length())
	assert.Empty(t, u.Waypoints)
}

func TestDestroyRemovesUnitAndClearsSelection(t *testing.T) {
	w := newTestWorld(1)
	_, err := w.Step([]command.Command{spawnCmd("1", 0)})
	require.NoError(t, err)
	id := w.Units()[0].ID

	selCmd := command.New("2", command.TagSelect, 1, 2, command.SelectPayload{UnitID: id})
	_, err = w.Step([]command.Command{selCmd})
	require.NoError(t, err)

	destroyCmd := command.New("3", command.TagDestroy, 2, 3, command.DestroyPayload{UnitID: id})
	_, err = w.Step([]command.Command{destroyCmd})
	require.NoError(t, err)

	_, ok := w.Unit(id)
	assert.False(t, ok)
	_, ok = w.SelectedUnitID()
	assert.False(t, ok)
}

func TestClosePathRequiresAtLeastThreeWaypoints(t *testing.T) {
	w := newTestWorld(1)
	_, err := w.Step([]command.Command{spawnCmd("1", 0)})
	require.NoError(t, err)
	id := w.Units()[0].ID

	setPath := command.New("2", command.TagSetPath, 1, 2, command.SetPathPayload{
		UnitID: id,
		Points: []command.Vec3{{X: BaseRadius}, {Y: BaseRadius}},
	})
	_, err = w.Step([]command.Command{setPath})
	require.NoError(t, err)

	closeCmd := command.New("3", command.TagClosePath, 2, 3, command.ClosePathPayload{UnitID: id})
	_, err = w.Step([]command.Command{closeCmd})
	require.NoError(t, err)

	u, _ := w.Unit(id)
	assert.False(t, u.PathClosed, "fewer than 3 waypoints must not close the path")
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	w := newTestWorld(5)
	_, err := w.Step([]command.Command{spawnCmd("1", 0), spawnCmd("2", 10)})
	require.NoError(t, err)
	_, err = w.Step(nil)
	require.NoError(t, err)

	before := w.Snapshot()

	w2 := newTestWorld(99)
	require.NoError(t, w2.Restore(before))
	after := w2.Snapshot()

	assert.Equal(t, before, after)
}

func TestRestoreRejectsNonIncreasingUnitIDs(t *testing.T) {
	w := newTestWorld(1)
	bad := Snapshot{
		Units: []UnitSnapshot{{ID: 2}, {ID: 1}},
	}
	err := w.Restore(bad)
	assert.Error(t, err)
}
