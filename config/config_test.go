package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsSurviveEmptyEnvironment(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 15*time.Second, cfg.InactivityTimeout())
	assert.Equal(t, 5*time.Second, cfg.GracePeriod())
	assert.Equal(t, 5*time.Second, cfg.PollInterval())
	assert.Equal(t, 5, cfg.Frontpanel.VolumeStep)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("VOLUMIO_URL", "http://volumio.local")
	t.Setenv("INACTIVITY_TIMEOUT_SECONDS", "30")
	t.Setenv("VOLUME_STEP", "10")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://volumio.local", cfg.Volumio.URL)
	assert.Equal(t, 30*time.Second, cfg.InactivityTimeout())
	assert.Equal(t, 10, cfg.Frontpanel.VolumeStep)
	assert.Equal(t, "http://volumio.local/api/v1/events", cfg.PushURL())
}

func TestGetLogLevel(t *testing.T) {
	cfg := Default()

	cfg.Frontpanel.LogLevel = "DEBUG"
	assert.Equal(t, slog.LevelDebug, cfg.GetLogLevel())

	cfg.Frontpanel.LogLevel = "warning"
	assert.Equal(t, slog.LevelWarn, cfg.GetLogLevel())

	cfg.Frontpanel.LogLevel = "nonsense"
	assert.Equal(t, slog.LevelInfo, cfg.GetLogLevel())
}
