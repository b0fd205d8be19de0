package clock

import (
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"
)

// TickFunc advances the simulation by exactly one fixed tick.
type TickFunc func() error

// Source abstracts wall-clock time so tests can drive SimLoop with
// coder/quartz's mock clock instead of real time.Sleep. quartz.Clock
// (both quartz.NewReal() and quartz.NewMock(t)) satisfies this
// directly.
type Source interface {
	Now() time.Time
}

// SimLoop drives an Accumulator, flushing zero or more ticks per Step
// call and reporting frame drops. It never advances faster than the
// fixed tick rate, and never runs more than once per accumulated Δ.
type SimLoop struct {
	acc    *Accumulator
	tick   TickFunc
	source Source
	logger zerolog.Logger

	ticksRun int64
}

// NewSimLoop constructs a SimLoop. source may be nil, selecting quartz's
// real wall-clock.
func NewSimLoop(acc *Accumulator, tick TickFunc, source Source, logger zerolog.Logger) *SimLoop {
	if source == nil {
		source = quartz.NewReal()
	}
	return &SimLoop{acc: acc, tick: tick, source: source, logger: logger}
}

// Step consumes elapsed wall time against the current Source reading and
// invokes TickFunc exactly once per whole accumulated tick, synchronously,
// before returning. It returns the number of ticks executed.
func (s *SimLoop) Step() (int, error) {
	nowMs := s.source.Now().UnixMilli()
	return s.StepAt(nowMs)
}

// StepAt is Step with an explicit wall-clock timestamp, used directly by
// tests and by replay tooling that feeds a recorded timeline.
func (s *SimLoop) StepAt(nowMs int64) (int, error) {
	ticks, drop, err := s.acc.Step(nowMs)
	if err != nil {
		return 0, err
	}
	if drop != nil {
		s.logger.Warn().
			Int64("discarded_ms", drop.DiscardedMs).
			Msg("sim loop dropped frames after catch-up cap")
	}
	for i := 0; i < ticks; i++ {
		if err := s.tick(); err != nil {
			return i, err
		}
		s.ticksRun++
	}
	return ticks, nil
}

// Alpha returns the renderer-facing interpolation alpha. Never touch this
// from authoritative code.
func (s *SimLoop) Alpha() float64 { return s.acc.Alpha() }

// TicksRun returns the lifetime count of ticks this loop has executed.
func (s *SimLoop) TicksRun() int64 { return s.ticksRun }
