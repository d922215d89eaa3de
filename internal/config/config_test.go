package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 180, cfg.History.WindowDays)
	assert.Equal(t, "output/td_hist.json", cfg.History.Output)
	assert.Equal(t, "America/Sao_Paulo", cfg.History.Timezone)
	assert.Equal(t, "America/Sao_Paulo", cfg.Ranking.Timezone)
	assert.Equal(t, "UTC", cfg.Redeem.Timezone)
	assert.Equal(t, 60*time.Second, cfg.History.Timeout())
	assert.NotEmpty(t, cfg.Redeem.PageURL)
	assert.NotEmpty(t, cfg.Redeem.URL)
}

func TestLoadFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
log_level: debug
history:
  window_days: 30
  output: /tmp/hist.json
ranking:
  timeout_seconds: 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 30, cfg.History.WindowDays)
	assert.Equal(t, "/tmp/hist.json", cfg.History.Output)
	assert.Equal(t, 5*time.Second, cfg.Ranking.Timeout())
	// Untouched keys keep their defaults.
	assert.NotEmpty(t, cfg.History.URL)
	assert.Equal(t, "output/td_realtime_resgatar.json", cfg.Ranking.Output)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 180, cfg.History.WindowDays)
}

func TestLoadRejectsBadTimezone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("redeem:\n  timezone: Mars/Olympus\n"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Mars/Olympus")
}

func TestLoadRejectsNegativeWindow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("history:\n  window_days: -1\n"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}

func TestLocation(t *testing.T) {
	j := Job{Timezone: "America/Sao_Paulo"}
	loc, err := j.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Sao_Paulo", loc.String())
}
