package script

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/sphereforge/internal/command"
)

func writeScript(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "script.txt")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadEmptyPathYieldsNilScript(t *testing.T) {
	script, err := Load("")
	require.NoError(t, err)
	assert.Nil(t, script)
}

func TestLoadParsesSpawnAndMoveAtDeclaredTicks(t *testing.T) {
	path := writeScript(t, `
# two units spawn at tick 1, one moves at tick 5
spawn@1 x=0,y=10,z=0
spawn@1 x=5,y=10,z=5
move@5 unit=3,x=10,y=0,z=0
`)

	script, err := Load(path)
	require.NoError(t, err)

	require.Len(t, script[1], 2)
	assert.Equal(t, command.TagSpawn, script[1][0].Type)
	assert.Equal(t, command.SpawnPayload{Position: command.Vec3{X: 0, Y: 10, Z: 0}}, script[1][0].Payload)

	require.Len(t, script[5], 1)
	assert.Equal(t, command.TagMove, script[5][0].Type)
	assert.Equal(t, command.MovePayload{UnitID: 3, Position: command.Vec3{X: 10, Y: 0, Z: 0}}, script[5][0].Payload)
	assert.Equal(t, uint64(5), script[5][0].TargetTick)
	assert.Equal(t, "script", script[5][0].ClientID)
}

func TestLoadParsesSetPathPoints(t *testing.T) {
	path := writeScript(t, `set_path@10 unit=7,points=(0,10,0);(1,10,1);(2,10,2)`)

	script, err := Load(path)
	require.NoError(t, err)

	require.Len(t, script[10], 1)
	payload := script[10][0].Payload.(command.SetPathPayload)
	assert.Equal(t, uint64(7), payload.UnitID)
	require.Len(t, payload.Points, 3)
	assert.Equal(t, command.Vec3{X: 2, Y: 10, Z: 2}, payload.Points[2])
}

func TestLoadRejectsMissingTick(t *testing.T) {
	path := writeScript(t, `spawn x=0,y=0,z=0`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsUnknownTag(t *testing.T) {
	path := writeScript(t, `levitate@1 unit=1`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load("/nonexistent/path/to/script.txt")
	assert.Error(t, err)
}
