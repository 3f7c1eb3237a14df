package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"CONFIG", "API_BASE_URL", "STORE_BACKEND", "REDIS_ADDR", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestParseArgs_Defaults(t *testing.T) {
	clearEnv(t)
	opts, err := ParseArgs([]string{"-config", filepath.Join(t.TempDir(), "missing.json")})
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, opts.BaseURL)
	assert.Equal(t, DefaultRole, opts.Role)
	assert.Equal(t, DefaultBackend, opts.StoreBackend)
	assert.Equal(t, DefaultStorePath, opts.StorePath)
	assert.Equal(t, DefaultAuthDelay, opts.AuthDelay.Duration)
	assert.Equal(t, DefaultLogLevel, opts.LogLevel)
	assert.Zero(t, opts.RefreshInterval.Duration)
	assert.False(t, opts.Version)
}

func TestParseArgs_Flags(t *testing.T) {
	clearEnv(t)
	opts, err := ParseArgs([]string{
		"-c", filepath.Join(t.TempDir(), "missing.json"),
		"-url", "https://api.example.com/",
		"-role", "user",
		"-store", "redis",
		"-redis", "localhost:6379",
		"-auth-delay", "0s",
		"-refresh", "30s",
		"-version",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", opts.BaseURL)
	assert.Equal(t, "user", opts.Role)
	assert.Equal(t, "redis", opts.StoreBackend)
	assert.Equal(t, "localhost:6379", opts.RedisAddr)
	assert.Zero(t, opts.AuthDelay.Duration)
	assert.Equal(t, 30*time.Second, opts.RefreshInterval.Duration)
	assert.True(t, opts.Version)
}

func TestParseArgs_JSONFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "config.json", `{
		"base_url": "http://files:5000",
		"store_path": "/tmp/taskdock.json",
		"auth_delay": "250ms",
		"log_level": "debug"
	}`)

	opts, err := ParseArgs([]string{"-config", path})
	require.NoError(t, err)
	assert.Equal(t, "http://files:5000", opts.BaseURL)
	assert.Equal(t, "/tmp/taskdock.json", opts.StorePath)
	assert.Equal(t, 250*time.Millisecond, opts.AuthDelay.Duration)
	assert.Equal(t, "debug", opts.LogLevel)
}

func TestParseArgs_TOMLFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "taskdock.toml", `
base_url = "http://toml:5000"
store_backend = "redis"
redis_addr = "cache:6379"
auth_delay = "2s"
refresh_interval = "1m"
`)

	opts, err := ParseArgs([]string{"-config", path})
	require.NoError(t, err)
	assert.Equal(t, "http://toml:5000", opts.BaseURL)
	assert.Equal(t, "redis", opts.StoreBackend)
	assert.Equal(t, "cache:6379", opts.RedisAddr)
	assert.Equal(t, 2*time.Second, opts.AuthDelay.Duration)
	assert.Equal(t, time.Minute, opts.RefreshInterval.Duration)
}

func TestParseArgs_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "config.json", `{"base_url": "http://file:5000", "log_level": "warn"}`)
	t.Setenv("CONFIG", path)
	t.Setenv("API_BASE_URL", "http://env:5000")
	t.Setenv("LOG_LEVEL", "error")

	opts, err := ParseArgs(nil)
	require.NoError(t, err)
	assert.Equal(t, path, opts.Config)
	assert.Equal(t, "http://env:5000", opts.BaseURL)
	assert.Equal(t, "error", opts.LogLevel)
}

func TestParseArgs_Errors(t *testing.T) {
	clearEnv(t)
	missing := filepath.Join(t.TempDir(), "missing.json")

	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"-nope"}},
		{"bad backend", []string{"-config", missing, "-store", "sqlite"}},
		{"negative delay", []string{"-config", missing, "-auth-delay", "-1s"}},
		{"negative refresh", []string{"-config", missing, "-refresh", "-1s"}},
		{"bad json", []string{"-config", writeConfig(t, "bad.json", "{")}},
		{"bad toml", []string{"-config", writeConfig(t, "bad.toml", "base_url = ")}},
		{"bad duration", []string{"-config", writeConfig(t, "d.json", `{"auth_delay":"soon"}`)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseArgs(tt.args)
			assert.Error(t, err)
		})
	}
}
