package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, 30*time.Second, cfg.CacheTTL)
	require.Equal(t, 1024, cfg.NFTCacheSize)
	require.False(t, cfg.AllowEmptyOffered)
	require.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "offer-engine.yaml")
	body := "port: \"9090\"\ncache_ttl: 1m\nallow_empty_offered: true\nlog_level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	t.Setenv("PORT", "7070")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "7070", cfg.Port)
	require.Equal(t, time.Minute, cfg.CacheTTL)
	require.True(t, cfg.AllowEmptyOffered)
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Config{Port: "1", CacheTTL: time.Second, NFTCacheSize: 1, LogLevel: "info", ShutdownTimeout: time.Second}
	require.NoError(t, base.Validate())

	bad := base
	bad.NFTCacheSize = 0
	require.Error(t, bad.Validate())

	bad = base
	bad.LogLevel = "chatty"
	require.Error(t, bad.Validate())
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("warn")
	require.NoError(t, err)
	require.Equal(t, slog.LevelWarn, lvl)
}
