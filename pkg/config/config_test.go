package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustvector/adversary/pkg/attack"
	"github.com/trustvector/adversary/pkg/config"
	"github.com/trustvector/adversary/pkg/redteam"
)

func TestDefaults(t *testing.T) {
	defaults := config.Default()

	assert.Equal(t, "info", defaults.LogLevel)
	assert.Equal(t, 0.3, defaults.Attack.Intensity)
	assert.Equal(t, int64(42), defaults.Attack.Seed)
	assert.Equal(t, attack.SchemeMixed, defaults.Attack.Scheme)
	assert.Equal(t, redteam.EvasionModeAbsolute, defaults.Robustness.EvasionMode)
	assert.Equal(t, 0.5, defaults.Robustness.ConfidenceDropThreshold)
	assert.Equal(t, 5, defaults.Chain.MaxTurns)
	assert.Equal(t, 0.2, defaults.Pipeline.ConfidenceBand.Low)
	assert.Equal(t, 0.95, defaults.Pipeline.ConfidenceBand.High)
	assert.Equal(t, 16, defaults.Pipeline.Remediation.EventIDLength)
}

func TestLoadWithoutConfigFileUsesDefaults(t *testing.T) {
	require.NoError(t, config.Load(t.TempDir()))

	cfg := config.GetConfig()
	assert.Equal(t, 0.3, cfg.Attack.Intensity)
	assert.Equal(t, 5, cfg.Chain.MaxTurns)
}

func TestLoadReadsYAMLOverrides(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("attack:\n  intensity: 0.8\nchain:\n  max_turns: 9\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	require.NoError(t, config.Load(dir))

	cfg := config.GetConfig()
	assert.Equal(t, 0.8, cfg.Attack.Intensity)
	assert.Equal(t, 9, cfg.Chain.MaxTurns)
	// Untouched keys keep their defaults.
	assert.Equal(t, int64(42), cfg.Attack.Seed)
}
