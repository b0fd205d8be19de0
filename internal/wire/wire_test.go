package wire

import (
	"bytes"
	"testing"

	"github.com/tinylib/msgp/msgp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/sphereforge/internal/command"
)

func TestEncodeDecodeCommandRoundTrip(t *testing.T) {
	cmd := command.New("42", command.TagMove, 3, 5, command.MovePayload{
		UnitID:   7,
		Position: command.Vec3{X: 1, Y: 2, Z: 3},
	})
	cmd.ClientID = "alice"
	cmd.Seq = 9
	cmd.IssueIndex = 2

	var buf bytes.Buffer
	w := msgp.NewWriter(&buf)
	require.NoError(t, EncodeCommand(w, cmd))
	require.NoError(t, w.Flush())

	r := msgp.NewReader(bytes.NewReader(buf.Bytes()))
	decoded, err := DecodeCommand(r)
	require.NoError(t, err)

	assert.Equal(t, cmd.Id, decoded.Id)
	assert.Equal(t, cmd.Type, decoded.Type)
	assert.Equal(t, cmd.IssuedTick, decoded.IssuedTick)
	assert.Equal(t, cmd.TargetTick, decoded.TargetTick)
	assert.Equal(t, cmd.ClientID, decoded.ClientID)
	assert.Equal(t, cmd.Seq, decoded.Seq)
	assert.Equal(t, cmd.IssueIndex, decoded.IssueIndex)
	assert.Equal(t, cmd.Payload, decoded.Payload)
}

func TestEncodeDecodeEnvelopeRoundTrip(t *testing.T) {
	env := Envelope{
		ClientID: "bob",
		Seq:      4,
		TsMillis: 123456,
		Commands: []command.Command{
			command.New("1", command.TagStop, 0, 1, command.StopPayload{UnitID: 1}),
			command.New("2", command.TagDeselect, 1, 2, command.DeselectPayload{}),
		},
	}

	data, err := EncodeEnvelopeBytes(env)
	require.NoError(t, err)

	decoded, err := DecodeEnvelopeBytes(data)
	require.NoError(t, err)

	assert.Equal(t, env.ClientID, decoded.ClientID)
	assert.Equal(t, env.Seq, decoded.Seq)
	assert.Equal(t, env.TsMillis, decoded.TsMillis)
	require.Len(t, decoded.Commands, 2)
	assert.Equal(t, env.Commands[0].Id, decoded.Commands[0].Id)
	assert.Equal(t, env.Commands[1].Type, decoded.Commands[1].Type)
}
