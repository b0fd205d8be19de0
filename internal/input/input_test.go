package input

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/sphereforge/internal/command"
	"github.com/lox/sphereforge/internal/idgen"
	"github.com/lox/sphereforge/internal/transport"
)

func TestFactoryStampsMonotonicIDsAndLookahead(t *testing.T) {
	local := transport.NewLocal()
	require.NoError(t, local.Connect(context.Background()))

	var received []command.Command
	local.OnReceive(func(c command.Command) { received = append(received, c) })

	f := New(idgen.New(), local)
	ctx := context.Background()

	require.NoError(t, f.Spawn(ctx, 10, command.Vec3{X: 1}))
	require.NoError(t, f.SelectUnit(ctx, 10, 1))

	require.Len(t, received, 2)
	assert.Equal(t, command.TagSpawn, received[0].Type)
	assert.Equal(t, uint64(12), received[0].TargetTick)
	assert.Equal(t, command.TagSelect, received[1].Type)
	assert.NotEqual(t, received[0].Id, received[1].Id)
}
