package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/parley/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "parley.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	cfg, err = config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_YAML(t *testing.T) {
	path := write(t, "parley.yaml", `
log:
  level: debug
locale:
  language: fr
layout:
  anchor: {x: 0, y: 0}
  spacing: 200
feedback:
  evaluated: 2s
sessions:
  backend: redis
  redis_db: 2
  ttl: 1h
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format, "unset keys keep defaults")
	assert.Equal(t, "fr", cfg.Locale.Language)
	assert.Equal(t, "en", cfg.Locale.Fallback)
	assert.Equal(t, 0.0, cfg.Layout.Anchor.X)
	assert.Equal(t, 200.0, cfg.Layout.Spacing)
	assert.Equal(t, 400.0, cfg.Layout.ColumnX)
	assert.Equal(t, 2*time.Second, cfg.Feedback.Evaluated)
	assert.Equal(t, 500*time.Millisecond, cfg.Feedback.Neutral)
	assert.Equal(t, config.BackendRedis, cfg.Sessions.Backend)
	assert.Equal(t, 2, cfg.Sessions.RedisDB)
	assert.Equal(t, time.Hour, cfg.Sessions.TTL)
}

func TestLoad_JSON(t *testing.T) {
	path := write(t, "parley.json", `{"server": {"addr": ":9000", "metrics": false}}`)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.False(t, cfg.Server.Metrics)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"bad yaml", "parley.yaml", "log: [unterminated"},
		{"bad json", "parley.json", "{"},
		{"unknown key", "parley.yaml", "log:\n  colour: red\n"},
		{"unknown backend", "parley.yaml", "sessions:\n  backend: etcd\n"},
		{"zero spacing", "parley.yaml", "layout:\n  spacing: 0\n"},
		{"bad duration", "parley.yaml", "feedback:\n  neutral: soon\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(write(t, tt.file, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := config.Default()
	err := cfg.ApplyEnv([]string{
		"HOME=/root",
		"PARLEY_LOG_LEVEL=warn",
		"PARLEY_SESSIONS_BACKEND=file",
		"PARLEY_SESSIONS_REDIS_DB=3",
		"PARLEY_SESSIONS_LOCK_TTL=5s",
		"PARLEY_SERVER_METRICS=false",
		"PARLEY_NOSECTION=x",
	})
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, config.BackendFile, cfg.Sessions.Backend)
	assert.Equal(t, 3, cfg.Sessions.RedisDB)
	assert.Equal(t, 5*time.Second, cfg.Sessions.LockTTL)
	assert.False(t, cfg.Server.Metrics)
}

func TestApplyEnv_Invalid(t *testing.T) {
	cfg := config.Default()
	assert.Error(t, cfg.ApplyEnv([]string{"PARLEY_SESSIONS_BACKEND=etcd"}))

	cfg = config.Default()
	assert.Error(t, cfg.ApplyEnv([]string{"PARLEY_SESSIONS_REDIS_DB=many"}))
}
