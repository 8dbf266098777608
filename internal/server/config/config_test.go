package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetArgs(t *testing.T, args ...string) {
	t.Helper()
	old := os.Args
	os.Args = append([]string{"server"}, args...)
	t.Cleanup(func() { os.Args = old })
}

func TestLoadConfig_Defaults(t *testing.T) {
	resetArgs(t)

	cfg := LoadConfig()

	assert.Equal(t, ":8080", cfg.EndpointAddrHTTP)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenValidity)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenValidity)
	assert.False(t, cfg.RevokeSessionsOnReset)
}

func TestLoadConfig_FlagsWin(t *testing.T) {
	resetArgs(t, "-a", ":9999", "-t", "15")

	cfg := LoadConfig()

	assert.Equal(t, ":9999", cfg.EndpointAddrHTTP)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenValidity)
}

func TestLoadConfig_EnvOverlay(t *testing.T) {
	resetArgs(t)
	t.Setenv("FINSYNC_SECRET_KEY", "env-secret")
	t.Setenv("FINSYNC_REVOKE_SESSIONS_ON_RESET", "true")

	cfg := LoadConfig()

	assert.Equal(t, "env-secret", cfg.SecretKey)
	assert.True(t, cfg.RevokeSessionsOnReset)
}

func TestLoadConfig_JsonFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.json")
	body := `{
		"endpoint_addr_http": ":7070",
		"database_dsn": "postgres://x",
		"secret_key": "json-secret",
		"access_token_validity": "10m",
		"refresh_token_validity": "24h"
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	resetArgs(t, "-c", path)

	cfg := LoadConfig()

	assert.Equal(t, ":7070", cfg.EndpointAddrHTTP)
	assert.Equal(t, "json-secret", cfg.SecretKey)
	assert.Equal(t, 10*time.Minute, cfg.AccessTokenValidity)
	assert.Equal(t, 24*time.Hour, cfg.RefreshTokenValidity)
}
