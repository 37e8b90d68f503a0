package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/fisolve/config"
	"github.com/meenmo/fisolve/solver"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, config.DefaultConfig.Validate())

	s := config.DefaultConfig.Solver(1e-10)
	assert.Equal(t, solver.ClassicMaxIterations, s.MaxIterations)
	assert.Equal(t, solver.ReturnBestEffort, s.Policy)
	assert.Equal(t, 1e-10, s.AbsTolerance)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fisolve.yaml")
	body := []byte("yield_tolerance: 1.0e-10\nmax_iterations: 80\npolicy: fail\nworkers: 2\n")
	require.NoError(t, os.WriteFile(path, body, 0o600))

	t.Setenv("FISOLVE_BUMP_SIZE", "0.0005")

	c, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1e-10, c.YieldTolerance)
	assert.Equal(t, 80, c.MaxIterations)
	assert.Equal(t, 2, c.Workers)
	assert.Equal(t, 0.0005, c.BumpSize)
	assert.Equal(t, config.DefaultConfig.ZeroSpreadHigh, c.ZeroSpreadHigh)

	s := c.Solver(c.YieldTolerance)
	assert.Equal(t, solver.FailOnExceedingMaxIterations, s.Policy)
	assert.Equal(t, 80, s.MaxIterations)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("yield_low: 2\nyield_high: 1\n"), 0o600))

	_, err := config.Load(path)
	assert.Error(t, err)

	_, err = config.Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestSetConfig(t *testing.T) {
	orig := config.GetConfig()
	t.Cleanup(func() { config.SetConfig(orig) })

	c := orig
	c.Workers = 3
	config.SetConfig(c)
	assert.Equal(t, 3, config.GetConfig().Workers)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *config.Config){
		"tolerance": func(c *config.Config) { c.YieldTolerance = 0 },
		"spread":    func(c *config.Config) { c.ZeroSpreadLow = 20 },
		"bootstrap": func(c *config.Config) { c.BootstrapHigh = -1 },
		"bump":      func(c *config.Config) { c.BumpSize = -1e-4 },
		"workers":   func(c *config.Config) { c.Workers = 0 },
		"policy":    func(c *config.Config) { c.Policy = "maybe" },
	}
	for name, mutate := range cases {
		c := config.DefaultConfig
		mutate(&c)
		assert.Error(t, c.Validate(), name)
	}
}

func TestLoadWith_OverridesWin(t *testing.T) {
	t.Setenv("FISOLVE_WORKERS", "3")

	v := viper.New()
	v.Set("workers", 5)
	c, err := config.LoadWith(v, "")
	require.NoError(t, err)
	assert.Equal(t, 5, c.Workers)

	c, err = config.LoadWith(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, 3, c.Workers)
}

func TestSolver_PolicyFallback(t *testing.T) {
	c := config.DefaultConfig
	c.Policy = solver.FailOnExceedingMaxIterations.String()
	assert.Equal(t, solver.FailOnExceedingMaxIterations, c.Solver(1e-10).Policy)

	c.Policy = "maybe"
	assert.Equal(t, solver.ReturnBestEffort, c.Solver(1e-10).Policy)

	v := viper.New()
	v.Set("policy", "maybe")
	_, err := config.LoadWith(v, "")
	assert.Error(t, err)
}
