// Package input implements InputFactory (spec §4.6): the single
// sanctioned construction site for commands. Every command a player (or
// an AI controller, or a replay script) issues flows through one of
// these methods, which stamps an id from the shared IdGen and hands the
// finished Command to the configured Transport.
package input

import (
	"context"
	"strconv"

	"github.com/lox/sphereforge/internal/command"
	"github.com/lox/sphereforge/internal/idgen"
	"github.com/lox/sphereforge/internal/transport"
)

// DefaultLookahead is how many ticks ahead of currentTick a command is
// scheduled by default (spec §4.6's "a few ticks of lookahead" note),
// giving CommandQueue room to deliver it before TargetTick arrives.
const DefaultLookahead = 2

// Factory is InputFactory. It is not safe for concurrent use by
// multiple goroutines without external synchronization — commands from
// one client must themselves stay ordered, which an unsynchronized
// idgen would not guarantee.
type Factory struct {
	ids       *idgen.IdGen
	transport transport.Transport
	lookahead uint64
}

// New constructs a Factory issuing ids from ids and sending through t.
func New(ids *idgen.IdGen, t transport.Transport) *Factory {
	return &Factory{ids: ids, transport: t, lookahead: DefaultLookahead}
}

func (f *Factory) nextID() string {
	return strconv.FormatUint(f.ids.Next(), 10)
}

func (f *Factory) target(currentTick uint64) uint64 {
	return currentTick + f.lookahead
}

func (f *Factory) send(ctx context.Context, currentTick uint64, tag command.Tag, payload any) error {
	cmd := command.New(f.nextID(), tag, currentTick, f.target(currentTick), payload)
	return f.transport.Send(ctx, cmd)
}

// SelectUnit issues a Select command.
func (f *Factory) SelectUnit(ctx context.Context, currentTick, unitID uint64) error {
	return f.send(ctx, currentTick, command.TagSelect, command.SelectPayload{UnitID: unitID})
}

// DeselectUnit issues a Deselect command.
func (f *Factory) DeselectUnit(ctx context.Context, currentTick uint64) error {
	return f.send(ctx, currentTick, command.TagDeselect, command.DeselectPayload{})
}

// IssueMove issues a Move command targeting pos.
func (f *Factory) IssueMove(ctx context.Context, currentTick, unitID uint64, pos command.Vec3) error {
	return f.send(ctx, currentTick, command.TagMove, command.MovePayload{UnitID: unitID, Position: pos})
}

// SetPath issues a SetPath command, replacing a unit's whole waypoint
// list with points.
func (f *Factory) SetPath(ctx context.Context, currentTick, unitID uint64, points []command.Vec3) error {
	return f.send(ctx, currentTick, command.TagSetPath, command.SetPathPayload{UnitID: unitID, Points: points})
}

// ClosePath issues a ClosePath command, marking a unit's path cyclic.
func (f *Factory) ClosePath(ctx context.Context, currentTick, unitID uint64) error {
	return f.send(ctx, currentTick, command.TagClosePath, command.ClosePathPayload{UnitID: unitID})
}

// Spawn issues a Spawn command at pos.
func (f *Factory) Spawn(ctx context.Context, currentTick uint64, pos command.Vec3) error {
	return f.send(ctx, currentTick, command.TagSpawn, command.SpawnPayload{Position: pos})
}

// Stop issues a Stop command, halting a unit in place.
func (f *Factory) Stop(ctx context.Context, currentTick, unitID uint64) error {
	return f.send(ctx, currentTick, command.TagStop, command.StopPayload{UnitID: unitID})
}

// MoveDir issues a MoveDir command, setting direct velocity control.
func (f *Factory) MoveDir(ctx context.Context, currentTick, unitID uint64, dir command.Vec3) error {
	return f.send(ctx, currentTick, command.TagMoveDir, command.MoveDirPayload{UnitID: unitID, Direction: dir})
}

// Destroy issues a Destroy command.
func (f *Factory) Destroy(ctx context.Context, currentTick, unitID uint64) error {
	return f.send(ctx, currentTick, command.TagDestroy, command.DestroyPayload{UnitID: unitID})
}
