package transport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/sphereforge/internal/command"
)

func TestLocalSendDeliversSynchronouslyWithStampedSeq(t *testing.T) {
	l := NewLocal()
	require.NoError(t, l.Connect(context.Background()))

	var received []command.Command
	l.OnReceive(func(cmd command.Command) {
		received = append(received, cmd)
	})

	cmd := command.New("1", command.TagStop, 0, 1, command.StopPayload{UnitID: 1})
	require.NoError(t, l.Send(context.Background(), cmd))
	require.NoError(t, l.Send(context.Background(), cmd))

	require.Len(t, received, 2)
	assert.Equal(t, uint64(1), received[0].Seq)
	assert.Equal(t, uint64(2), received[1].Seq)
	assert.Equal(t, "local", received[0].ClientID)
}

func TestLocalDeliversEvenWithoutConnect(t *testing.T) {
	l := NewLocal()
	delivered := false
	l.OnReceive(func(command.Command) { delivered = true })

	cmd := command.New("1", command.TagStop, 0, 1, command.StopPayload{UnitID: 1})
	require.NoError(t, l.Send(context.Background(), cmd))
	assert.True(t, delivered)
}

func TestLocalCloseResetsState(t *testing.T) {
	l := NewLocal()
	require.NoError(t, l.Connect(context.Background()))
	assert.Equal(t, StateConnected, l.State())
	require.NoError(t, l.Close())
	assert.Equal(t, StateDisconnected, l.State())
}
