package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"log/slog"
)

var keys = []string{
	"ACCTA_ADDR", "LOG_LEVEL", "LOG_FORMAT", "DATABASE_URL", "SEED_FILE",
	"DEV_SEED", "CORS_ALLOWED_ORIGINS", "SESSION_IDLE_TTL", "EVENT_BUFFER",
}

// clearEnv blanks every key for the test; godotenv never overrides a set variable,
// so each key is unset and restored afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	wd, wdErr := os.Getwd()
	require.NoError(t, wdErr)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.True(t, cfg.DevSeed)
	assert.Nil(t, cfg.CORSAllowedOrigins)
	assert.Equal(t, 2*time.Hour, cfg.SessionIdleTTL)
	assert.Equal(t, 32, cfg.EventBuffer)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("ACCTA_ADDR", "127.0.0.1:9000")
	t.Setenv("LOG_FORMAT", "TEXT")
	t.Setenv("DATABASE_URL", "postgres://localhost/accta")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173, https://app.example.com ,")
	t.Setenv("SESSION_IDLE_TTL", "90m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.False(t, cfg.DevSeed)
	assert.Equal(t, []string{"http://localhost:5173", "https://app.example.com"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 90*time.Minute, cfg.SessionIdleTTL)

	t.Setenv("SESSION_IDLE_TTL", "600")
	t.Setenv("DEV_SEED", "yes")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, cfg.SessionIdleTTL)
	assert.True(t, cfg.DevSeed)
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("SEED_FILE=fixtures/demo.yaml\nLOG_LEVEL=debug\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "fixtures/demo.yaml", cfg.SeedFile)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.DevSeed)

	_, err = Load(filepath.Join(t.TempDir(), "nope.env"))
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_IDLE_TTL", "soon")
	_, err := Load()
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv("EVENT_BUFFER", "many")
	_, err = Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{Addr: ":8080", LogFormat: "yaml", DatabaseURL: "postgres://x", SeedFile: "f.yaml", SessionIdleTTL: -time.Second}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOG_FORMAT")
	assert.Contains(t, err.Error(), "mutually exclusive")
	assert.Contains(t, err.Error(), "SESSION_IDLE_TTL")
	assert.Contains(t, err.Error(), "EVENT_BUFFER")
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{LogLevel: "warn", LogFormat: "json"}
	l := cfg.Logger(&buf)
	l.Info("hidden")
	l.Warn("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	assert.Equal(t, slog.LevelDebug, ParseLogLevel("DEBUG"))
	assert.Equal(t, slog.LevelInfo, ParseLogLevel("bogus"))
}
