package wire

import (
	"bytes"

	"github.com/tinylib/msgp/msgp"

	"github.com/lox/sphereforge/internal/command"
)

// Envelope is the broadcast wire envelope. It lives here rather than in
// the transport package (which imports wire for encoding), keeping the
// dependency direction one-way: transport depends on wire, not vice versa.
type Envelope struct {
	ClientID string
	Seq      uint64
	TsMillis int64
	Commands []command.Command
}

// EncodeEnvelopeBytes serializes a broadcast envelope to msgp bytes
// (spec §4.5, §6): {clientId, seq, tsMillis, commands[]}.
func EncodeEnvelopeBytes(env Envelope) ([]byte, error) {
	var buf bytes.Buffer
	w := msgp.NewWriter(&buf)
	if err := w.WriteMapHeader(4); err != nil {
		return nil, err
	}
	if err := w.WriteString("client_id"); err != nil {
		return nil, err
	}
	if err := w.WriteString(env.ClientID); err != nil {
		return nil, err
	}
	if err := w.WriteString("seq"); err != nil {
		return nil, err
	}
	if err := w.WriteUint64(env.Seq); err != nil {
		return nil, err
	}
	if err := w.WriteString("ts"); err != nil {
		return nil, err
	}
	if err := w.WriteInt64(env.TsMillis); err != nil {
		return nil, err
	}
	if err := w.WriteString("commands"); err != nil {
		return nil, err
	}
	if err := w.WriteArrayHeader(uint32(len(env.Commands))); err != nil {
		return nil, err
	}
	for _, cmd := range env.Commands {
		if err := EncodeCommand(w, cmd); err != nil {
			return nil, err
		}
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeEnvelopeBytes deserializes a broadcast envelope previously
// written by EncodeEnvelopeBytes. The per-command _meta (client_id, seq,
// issue_index) is carried on each command and is not stripped: the
// Broadcast read loop overwrites ClientID with the envelope's, Seq is
// kept as a sort key, and Queue.Enqueue overwrites IssueIndex.
func DecodeEnvelopeBytes(data []byte) (Envelope, error) {
	var env Envelope
	r := msgp.NewReader(bytes.NewReader(data))
	n, err := r.ReadMapHeader()
	if err != nil {
		return env, err
	}
	for i := uint32(0); i < n; i++ {
		key, err := r.ReadString()
		if err != nil {
			return env, err
		}
		switch key {
		case "client_id":
			env.ClientID, err = r.ReadString()
		case "seq":
			env.Seq, err = r.ReadUint64()
		case "ts":
			env.TsMillis, err = r.ReadInt64()
		case "commands":
			var sz uint32
			sz, err = r.ReadArrayHeader()
			if err == nil {
				env.Commands = make([]command.Command, sz)
				for j := uint32(0); j < sz; j++ {
					env.Commands[j], err = DecodeCommand(r)
					if err != nil {
						break
					}
				}
			}
		default:
			err = r.Skip()
		}
		if err != nil {
			return env, err
		}
	}
	return env, nil
}
