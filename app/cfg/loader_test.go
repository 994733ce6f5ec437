package cfg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}

	version := GetVersion()
	if version != "dev" && version != "unknown" {
		t.Logf("Version: %s", version)
	}
}

func TestLoadArgsDefaults(t *testing.T) {
	cfg, err := LoadArgs([]string{})
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "./data/feed-norm.db", cfg.DBPath)
	assert.Equal(t, "./profiles", cfg.ProfilesDir)
	assert.Equal(t, int64(10485760), cfg.MaxBodyBytes)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.False(t, cfg.HTMLEntities)
	assert.False(t, cfg.StrictTimestamps)
	assert.Empty(t, cfg.APIAccessKey)
	assert.Equal(t, GetVersion(), cfg.Version)
	assert.Same(t, cfg, Get())
}

func TestLoadArgsFlags(t *testing.T) {
	cfg, err := LoadArgs([]string{
		"--port", "9090",
		"--db-path", "/tmp/feeds.db",
		"--api-key", "secret",
		"--html-entities",
		"--strict-timestamps",
		"--log-level", "debug",
		"--max-body-bytes", "2048",
	})
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "/tmp/feeds.db", cfg.DBPath)
	assert.Equal(t, "secret", cfg.APIAccessKey)
	assert.True(t, cfg.HTMLEntities)
	assert.True(t, cfg.StrictTimestamps)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, int64(2048), cfg.MaxBodyBytes)
}

func TestLoadArgsEnvironment(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("API_ACCESS_KEY", "env-key")
	t.Setenv("PROFILES_DIR", "/etc/feed-norm/profiles")

	cfg, err := LoadArgs(nil)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "env-key", cfg.APIAccessKey)
	assert.Equal(t, "/etc/feed-norm/profiles", cfg.ProfilesDir)
}

func TestLoadArgsInvalid(t *testing.T) {
	_, err := LoadArgs([]string{"--log-level", "loud"})
	assert.Error(t, err)

	_, err = LoadArgs([]string{"--max-body-bytes", "0"})
	assert.Error(t, err)
}

func TestApplyTimezone(t *testing.T) {
	previous := time.Local
	t.Cleanup(func() { time.Local = previous })

	require.NoError(t, applyTimezone("America/New_York"))
	assert.Equal(t, "America/New_York", time.Local.String())

	assert.Error(t, applyTimezone("Not/AZone"))
}
