// Package config loads sim configuration from HCL files (spec §6),
// in the same gohcl/hclparse style the teacher's server config uses.
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/sphereforge/internal/command"
	"github.com/lox/sphereforge/internal/simerr"
)

// Config is the recognized set of configuration keys (spec §6).
type Config struct {
	TickRateHz           int     `hcl:"tick_rate_hz,optional"`
	ThrottleMs           int     `hcl:"throttle_ms,optional"`
	MaxReconnectAttempts int     `hcl:"max_reconnect_attempts,optional"`
	ReconnectBaseMs      int     `hcl:"reconnect_base_ms,optional"`
	ReconnectFactor      float64 `hcl:"reconnect_factor,optional"`
	RNGSeed              *int64  `hcl:"rng_seed,optional"`
	Mode                 string  `hcl:"mode,optional"`
}

// Default returns the recognized defaults (spec §6): 20Hz tick rate,
// 100ms throttle, 5 reconnect attempts backing off from 2000ms at
// 1.5x, lockstep mode. RNGSeed has no default — multiplayer sessions
// must supply one explicitly.
func Default() Config {
	return Config{
		TickRateHz:           20,
		ThrottleMs:           100,
		MaxReconnectAttempts: 5,
		ReconnectBaseMs:      2000,
		ReconnectFactor:      1.5,
		Mode:                 "lockstep",
	}
}

// Load reads and decodes an HCL config file at path, applying Default's
// values for any field the file omits. A missing file is not an error —
// callers get Default() back, matching the teacher's
// LoadServerConfig/DefaultServerConfig fallback behavior.
func Load(path string) (Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("config: parse %s: %s", path, diags.Error())
	}

	if diags := gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
		return Config{}, fmt.Errorf("config: decode %s: %s", path, diags.Error())
	}

	return cfg, cfg.Validate()
}

// Validate enforces the constraints spec §6 names as rejected
// configuration (simerr.ErrConfigInvalid): a positive tick rate, a
// known mode, and (for multiplayer use) a supplied seed is the caller's
// responsibility to check via RNGSeed == nil, since single-player runs
// legitimately omit it and let the runtime pick one.
func (c Config) Validate() error {
	if c.TickRateHz <= 0 {
		return fmt.Errorf("%w: tick_rate_hz must be positive, got %d", simerr.ErrConfigInvalid, c.TickRateHz)
	}
	if c.Mode != "lockstep" && c.Mode != "relaxed" {
		return fmt.Errorf("%w: mode must be lockstep or relaxed, got %q", simerr.ErrConfigInvalid, c.Mode)
	}
	if c.MaxReconnectAttempts < 0 {
		return fmt.Errorf("%w: max_reconnect_attempts must be non-negative", simerr.ErrConfigInvalid)
	}
	if c.ReconnectFactor < 1 {
		return fmt.Errorf("%w: reconnect_factor must be >= 1", simerr.ErrConfigInvalid)
	}
	return nil
}

// DeltaMs returns the fixed simulation timestep in milliseconds implied
// by TickRateHz, the value internal/clock.Accumulator is constructed
// with.
func (c Config) DeltaMs() int64 {
	return int64(1000 / c.TickRateHz)
}

// CommandMode translates the recognized "mode" key into the
// command.Mode internal/command.Queue is constructed with.
func (c Config) CommandMode() command.Mode {
	if c.Mode == "relaxed" {
		return command.ModeRelaxed
	}
	return command.ModeLockstep
}

// Seed returns RNGSeed if the file supplied one, or fallback otherwise.
// Callers (cmd/sphereforge's subcommands) use this to let an explicit
// CLI --seed flag still win over the config file.
func (c Config) Seed(fallback int64) int64 {
	if c.RNGSeed != nil {
		return *c.RNGSeed
	}
	return fallback
}
