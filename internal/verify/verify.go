// Package verify implements the VerifyHarness (spec §4.11): run two
// independently-constructed Worlds through an identical command script
// and prove — by comparing StateSurface hashes after every tick — that
// they reached the same place. An empty Report.Mismatches is a
// determinism certificate for that seed and script.
package verify

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lox/sphereforge/internal/command"
	"github.com/lox/sphereforge/internal/simerr"
	"github.com/lox/sphereforge/internal/state"
	"github.com/lox/sphereforge/internal/transport"
	"github.com/lox/sphereforge/internal/world"
)

// Mismatch records one tick where the two peers' hashes disagreed.
type Mismatch struct {
	Tick  uint64
	HashA string
	HashB string
}

// Report is the harness's verdict: one hash per tick from each peer,
// and the (hopefully empty) set of ticks where they disagreed.
type Report struct {
	Ticks      uint64
	HashesA    []string
	HashesB    []string
	Mismatches []Mismatch
}

// Clean reports whether no mismatches were found.
func (r Report) Clean() bool { return len(r.Mismatches) == 0 }

// Config bundles the harness's run parameters.
type Config struct {
	Seed    int64
	DeltaMs int64
	Ticks   uint64
	// Mode is the CommandQueue scheduling mode (spec §4.4) each peer's
	// queue is constructed with.
	Mode command.Mode
	// Script maps a tick number to the commands that should be injected
	// immediately before that tick is stepped, identically on both
	// peers.
	Script map[uint64][]command.Command
	Logger zerolog.Logger
}

// Run constructs two independent Worlds from cfg, each fed cfg.Script
// through its own Transport.Local and command.Queue pair — not by
// calling World.Step directly with the raw script map — so the harness
// exercises the full data-flow path spec §4.10/§4.11 requires
// (Transport.send -> CommandQueue.enqueue -> flush -> WorldModel.apply),
// not just World.Step's purity in isolation. The two peers are stepped
// concurrently via errgroup — they share no state, so this is purely a
// wall-clock optimization, never a source of nondeterminism (spec §5,
// §8).
func Run(ctx context.Context, cfg Config) (Report, error) {
	wa := world.New(world.Config{Seed: cfg.Seed, DeltaMs: cfg.DeltaMs, Logger: cfg.Logger})
	wb := world.New(world.Config{Seed: cfg.Seed, DeltaMs: cfg.DeltaMs, Logger: cfg.Logger})

	queueA := command.NewQueue(cfg.Mode)
	queueB := command.NewQueue(cfg.Mode)

	var currentTick uint64
	transportA := transport.NewLocal()
	transportB := transport.NewLocal()
	transportA.OnReceive(func(cmd command.Command) { queueA.Enqueue(cmd, currentTick) })
	transportB.OnReceive(func(cmd command.Command) { queueB.Enqueue(cmd, currentTick) })
	if err := transportA.Connect(ctx); err != nil {
		return Report{}, err
	}
	if err := transportB.Connect(ctx); err != nil {
		return Report{}, err
	}

	report := Report{
		HashesA: make([]string, 0, cfg.Ticks),
		HashesB: make([]string, 0, cfg.Ticks),
	}

	for tick := uint64(1); tick <= cfg.Ticks; tick++ {
		currentTick = tick - 1
		for _, cmd := range cfg.Script[tick] {
			if err := transportA.Send(ctx, cmd); err != nil {
				return report, err
			}
			if err := transportB.Send(ctx, cmd); err != nil {
				return report, err
			}
		}

		cmdsA := queueA.Flush(tick)
		cmdsB := queueB.Flush(tick)

		var hashA, hashB string
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			if _, err := wa.Step(cmdsA); err != nil {
				return err
			}
			hashA = state.HashHex(state.Project(wa))
			return nil
		})
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			if _, err := wb.Step(cmdsB); err != nil {
				return err
			}
			hashB = state.HashHex(state.Project(wb))
			return nil
		})
		if err := g.Wait(); err != nil {
			return report, err
		}

		report.Ticks = tick
		report.HashesA = append(report.HashesA, hashA)
		report.HashesB = append(report.HashesB, hashB)
		if hashA != hashB {
			report.Mismatches = append(report.Mismatches, Mismatch{Tick: tick, HashA: hashA, HashB: hashB})
		}
	}

	if !report.Clean() {
		cfg.Logger.Error().Int("count", len(report.Mismatches)).Msg("verify: determinism violation")
		return report, simerr.ErrDeterminismViolation
	}
	return report, nil
}
