package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/meenmo/fisolve/solver"
)

// Config holds solver and pricing parameters shared by the bond, curve and
// portfolio packages.
type Config struct {
	// YieldTolerance is the Brent tolerance for yield-from-price solves.
	YieldTolerance float64 `mapstructure:"yield_tolerance"`

	// YieldLow and YieldHigh bracket the yield solve for bonds with more than
	// one remaining cashflow.
	YieldLow  float64 `mapstructure:"yield_low"`
	YieldHigh float64 `mapstructure:"yield_high"`

	// ZeroSpreadLow and ZeroSpreadHigh are the initial zero-spread bracket.
	ZeroSpreadLow  float64 `mapstructure:"zero_spread_low"`
	ZeroSpreadHigh float64 `mapstructure:"zero_spread_high"`

	// BracketGrowth and BracketAttempts control how the zero-spread bracket
	// is widened when it does not straddle a root.
	BracketGrowth   float64 `mapstructure:"bracket_growth"`
	BracketAttempts int     `mapstructure:"bracket_attempts"`

	// BootstrapLow, BootstrapHigh and BootstrapTolerance drive per-pillar
	// curve calibration.
	BootstrapLow       float64 `mapstructure:"bootstrap_low"`
	BootstrapHigh      float64 `mapstructure:"bootstrap_high"`
	BootstrapTolerance float64 `mapstructure:"bootstrap_tolerance"`

	// DiscoveryAccuracy is the absolute tolerance handed to DoSolve.
	DiscoveryAccuracy float64 `mapstructure:"discovery_accuracy"`

	// MaxIterations caps the classic solver.
	MaxIterations int `mapstructure:"max_iterations"`

	// Policy is "best-effort" (return the estimate after MaxIterations) or
	// "fail" (return an error).
	Policy string `mapstructure:"policy"`

	// BumpSize is the yield / spread / pillar bump for finite differences.
	BumpSize float64 `mapstructure:"bump_size"`

	// Workers bounds the number of concurrent solves in a batch.
	Workers int `mapstructure:"workers"`
}

// DefaultConfig provides production-ready default values.
var DefaultConfig = Config{
	YieldTolerance:     1e-12,
	YieldLow:           -0.9,
	YieldHigh:          10,
	ZeroSpreadLow:      -0.25,
	ZeroSpreadHigh:     10,
	BracketGrowth:      solver.DefaultGrowth,
	BracketAttempts:    5,
	BootstrapLow:       -0.5,
	BootstrapHigh:      1.0,
	BootstrapTolerance: 1e-14,
	DiscoveryAccuracy:  solver.DefaultAccuracy,
	MaxIterations:      solver.ClassicMaxIterations,
	Policy:             solver.ReturnBestEffort.String(),
	BumpSize:           1e-4,
	Workers:            8,
}

var (
	mu  sync.RWMutex
	cfg = DefaultConfig
)

// SetConfig replaces the active configuration.
func SetConfig(c Config) {
	mu.Lock()
	defer mu.Unlock()
	cfg = c
}

// GetConfig returns the active configuration.
func GetConfig() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// Validate rejects settings the solvers cannot run with.
func (c Config) Validate() error {
	if !(c.YieldTolerance > 0) || !(c.BootstrapTolerance > 0) || !(c.DiscoveryAccuracy > 0) {
		return fmt.Errorf("config: tolerances must be positive")
	}
	if !(c.YieldLow < c.YieldHigh) {
		return fmt.Errorf("config: yield_low (%g) must be below yield_high (%g)", c.YieldLow, c.YieldHigh)
	}
	if !(c.ZeroSpreadLow < c.ZeroSpreadHigh) {
		return fmt.Errorf("config: zero_spread_low (%g) must be below zero_spread_high (%g)", c.ZeroSpreadLow, c.ZeroSpreadHigh)
	}
	if !(c.BootstrapLow < c.BootstrapHigh) {
		return fmt.Errorf("config: bootstrap_low (%g) must be below bootstrap_high (%g)", c.BootstrapLow, c.BootstrapHigh)
	}
	if !(c.BumpSize > 0) {
		return fmt.Errorf("config: bump_size must be positive")
	}
	if c.Workers < 1 {
		return fmt.Errorf("config: workers must be at least 1")
	}
	if _, err := solver.ParsePolicy(c.Policy); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Solver returns the classic Brent solver configured by c. A Policy that
// does not parse falls back to best-effort, as for a Config that never went
// through Validate; Load and LoadWith reject it instead.
func (c Config) Solver(tolerance float64) solver.Brent {
	s := solver.NewClassic(tolerance)
	s.MaxIterations = c.MaxIterations
	if p, err := solver.ParsePolicy(c.Policy); err == nil {
		s.Policy = p
	}
	return s
}

// Load reads settings from path (YAML, JSON or TOML, by extension) on top of
// DefaultConfig. Environment variables prefixed FISOLVE_ override the file,
// e.g. FISOLVE_YIELD_TOLERANCE. An empty path reads the environment only.
func Load(path string) (Config, error) {
	return LoadWith(viper.New(), path)
}

// LoadWith is Load on a caller-supplied viper instance, so flags bound to v
// take precedence over the file and the environment.
func LoadWith(v *viper.Viper, path string) (Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix("FISOLVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// SetDefaults registers DefaultConfig on v so AutomaticEnv can see every key.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig
	v.SetDefault("yield_tolerance", d.YieldTolerance)
	v.SetDefault("yield_low", d.YieldLow)
	v.SetDefault("yield_high", d.YieldHigh)
	v.SetDefault("zero_spread_low", d.ZeroSpreadLow)
	v.SetDefault("zero_spread_high", d.ZeroSpreadHigh)
	v.SetDefault("bracket_growth", d.BracketGrowth)
	v.SetDefault("bracket_attempts", d.BracketAttempts)
	v.SetDefault("bootstrap_low", d.BootstrapLow)
	v.SetDefault("bootstrap_high", d.BootstrapHigh)
	v.SetDefault("bootstrap_tolerance", d.BootstrapTolerance)
	v.SetDefault("discovery_accuracy", d.DiscoveryAccuracy)
	v.SetDefault("max_iterations", d.MaxIterations)
	v.SetDefault("policy", d.Policy)
	v.SetDefault("bump_size", d.BumpSize)
	v.SetDefault("workers", d.Workers)
}
