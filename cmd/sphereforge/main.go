package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/lox/sphereforge/internal/command"
	"github.com/lox/sphereforge/internal/config"
	"github.com/lox/sphereforge/internal/engine"
	"github.com/lox/sphereforge/internal/persistence"
	"github.com/lox/sphereforge/internal/relay"
	"github.com/lox/sphereforge/internal/script"
	"github.com/lox/sphereforge/internal/state"
	"github.com/lox/sphereforge/internal/statusview"
	"github.com/lox/sphereforge/internal/transport"
	"github.com/lox/sphereforge/internal/verify"
	"github.com/lox/sphereforge/internal/world"
)

type VerifyCmd struct {
	Seed   int64  `kong:"help='RNG seed shared by both verification peers (0 = use config rng_seed, or 1)'"`
	Ticks  uint64 `kong:"default='600',help='Number of ticks to run'"`
	Script string `kong:"help='Path to a command script file (tag@tick key=val,... lines); omitted means an empty script'"`
	Debug  bool   `kong:"help='Enable debug logging'"`
}

func (c *VerifyCmd) Run(logger zerolog.Logger, cfg config.Config) error {
	sc, err := script.Load(c.Script)
	if err != nil {
		return err
	}

	report, err := verify.Run(context.Background(), verify.Config{
		Seed:    fallbackSeed(c.Seed, cfg),
		DeltaMs: cfg.DeltaMs(),
		Ticks:   c.Ticks,
		Mode:    cfg.CommandMode(),
		Script:  sc,
		Logger:  logger,
	})
	if err == nil && report.Clean() {
		logger.Info().Uint64("ticks", report.Ticks).Msg("verify: clean, no determinism violation")
		fmt.Printf("OK: %d ticks, no mismatches\n", report.Ticks)
		return nil
	}
	for _, m := range report.Mismatches {
		fmt.Printf("MISMATCH tick=%d a=%s b=%s\n", m.Tick, m.HashA, m.HashB)
	}
	return err
}

// fallbackSeed lets an explicit --seed flag win over the config file's
// rng_seed, while a flag left at its zero value defers to it.
func fallbackSeed(flagSeed int64, cfg config.Config) int64 {
	if flagSeed != 0 {
		return flagSeed
	}
	return cfg.Seed(1)
}

type SaveCmd struct {
	Out   string `kong:"required,help='SQLite file to save into'"`
	Seed  int64  `kong:"help='RNG seed for the demo world being saved (0 = use config rng_seed, or 1)'"`
	Ticks uint64 `kong:"default='100',help='Ticks to run before saving'"`
	Key   string `kong:"default='default',help='Save slot key'"`
}

func (c *SaveCmd) Run(logger zerolog.Logger, cfg config.Config) error {
	seed := fallbackSeed(c.Seed, cfg)
	w := world.New(world.Config{Seed: seed, DeltaMs: cfg.DeltaMs(), Logger: logger})
	_, err := w.Step([]command.Command{
		command.New("1", command.TagSpawn, 0, 1, command.SpawnPayload{Position: command.Vec3{X: world.BaseRadius}}),
	})
	if err != nil {
		return err
	}
	for i := uint64(1); i < c.Ticks; i++ {
		if _, err := w.Step(nil); err != nil {
			return err
		}
	}

	backend, err := persistence.OpenLocal(c.Out)
	if err != nil {
		return err
	}
	defer backend.Close()

	p := persistence.New(backend, logger)
	if err := p.Save(context.Background(), c.Key, w, time.Now().UnixMilli(), nil); err != nil {
		return err
	}
	fmt.Printf("saved tick=%d hash=%s to %s#%s\n", w.Tick(), state.HashHex(state.Project(w)), c.Out, c.Key)
	return nil
}

type LoadCmd struct {
	In  string `kong:"required,help='SQLite file to load from'"`
	Key string `kong:"default='default',help='Save slot key'"`
}

func (c *LoadCmd) Run(logger zerolog.Logger, cfg config.Config) error {
	backend, err := persistence.OpenLocal(c.In)
	if err != nil {
		return err
	}
	defer backend.Close()

	p := persistence.New(backend, logger)
	w := world.New(world.Config{Seed: 0, DeltaMs: cfg.DeltaMs(), Logger: logger})
	if err := p.Load(context.Background(), c.Key, w); err != nil {
		return err
	}
	fmt.Printf("loaded tick=%d units=%d hash=%s\n", w.Tick(), len(w.Units()), state.HashHex(state.Project(w)))
	return nil
}

type DevCmd struct {
	Seed int64 `kong:"help='RNG seed for the dev-mode demo world (0 = use config rng_seed, or 1)'"`
	Hz   int   `kong:"help='Tick rate in Hz (0 = use config tick_rate_hz)'"`
}

// Run drives a local World through the Engine on a wall-clock ticker and
// renders its progress through the statusview bubbletea overlay: a
// headless way to watch determinism-relevant state (transport, tick,
// hash, save status) without reading raw log lines.
func (c *DevCmd) Run(logger zerolog.Logger, cfg config.Config) error {
	seed := fallbackSeed(c.Seed, cfg)
	hz := c.Hz
	if hz == 0 {
		hz = cfg.TickRateHz
	}
	deltaMs := int64(1000 / hz)
	w := world.New(world.Config{Seed: seed, DeltaMs: deltaMs, Logger: logger})
	local := transport.NewLocal()
	queue := command.NewQueue(cfg.CommandMode())

	program := tea.NewProgram(statusview.New(), tea.WithAltScreen())

	e := engine.New(engine.Config{
		World:     w,
		Queue:     queue,
		Transport: local,
		DeltaMs:   deltaMs,
		Logger:    logger,
		Observer: func(_ world.TickEvent, _ state.Surface, hash string) {
			program.Send(statusview.TickMsg{Tick: w.Tick(), Hash: hash})
			program.Send(statusview.LogMsg{Line: fmt.Sprintf("tick %d hash=%s", w.Tick(), hash)})
		},
	})
	program.Send(statusview.TransportMsg{State: local.State()})

	go func() {
		ticker := time.NewTicker(time.Duration(deltaMs) * time.Millisecond)
		defer ticker.Stop()
		for range ticker.C {
			if _, _, err := e.Advance(time.Now().UnixMilli()); err != nil {
				statusview.Logger.Error("engine advance failed", "err", err)
				program.Quit()
				return
			}
		}
	}()

	_, err := program.Run()
	return err
}

type ServeCmd struct {
	Addr string `kong:"default=':8080',help='Relay listen address'"`
}

func (c *ServeCmd) Run(logger zerolog.Logger) error {
	r := relay.New(logger)
	logger.Info().Str("addr", c.Addr).Msg("relay: listening")
	return http.ListenAndServe(c.Addr, r)
}

// CLI is the root command set: a headless determinism verifier, local
// save/load tooling, and the broadcast relay server, per spec §6's
// external interfaces.
type CLI struct {
	ConfigFile string `kong:"name='config',default='sphereforge.hcl',help='HCL configuration file'"`
	Debug      bool   `kong:"help='Enable debug logging'"`

	Verify VerifyCmd `kong:"cmd,help='Run two independent worlds and compare tick hashes'"`
	Save   SaveCmd   `kong:"cmd,help='Run a demo world and save a snapshot'"`
	Load   LoadCmd   `kong:"cmd,help='Load a saved snapshot and print its state'"`
	Serve  ServeCmd  `kong:"cmd,help='Host the broadcast relay'"`
	Dev    DevCmd    `kong:"cmd,help='Run a demo world with the dev-mode status overlay'"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("sphereforge"),
		kong.Description("Deterministic lockstep simulation kernel for a spherical-planet RTS"),
		kong.UsageOnError(),
	)

	level := zerolog.InfoLevel
	if cli.Debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()

	cfg, err := config.Load(cli.ConfigFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger.Debug().Interface("config", cfg).Msg("configuration loaded")

	err = ctx.Run(logger, cfg)
	ctx.FatalIfErrorf(err)
}
