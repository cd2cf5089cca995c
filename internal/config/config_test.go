package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// isolate points Load at an empty working directory so a developer's .env
// never leaks into assertions.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("APPLINKS_ENV_FILE", filepath.Join(dir, "missing.env"))
	for _, key := range []string{
		"APPLINKS_CONFIG_PATH", "APPLINKS_BASE_URL", "APPLINKS_API_KEY", "APPLINKS_HTTP_TIMEOUT",
		"APPLINKS_SCHEMES", "APPLINKS_DOMAINS", "APPLINKS_AUTO_HANDLE", "APPLINKS_DEFERRED_ENABLED",
		"APPLINKS_DEFERRED_MODE", "APPLINKS_DB_PATH", "APPLINKS_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "applinks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
registry:
  base_url: https://registry.example.com
  api_key: pk_from_file
  http_timeout: 5s
links:
  schemes: [myapp]
  domains: ["example.onapp.link", "*.example.com"]
  auto_handle: false
  deferred_mode: url
log:
  level: debug
`), 0o600))
	t.Setenv("APPLINKS_CONFIG_PATH", path)
	t.Setenv("APPLINKS_API_KEY", "pk_from_env")
	t.Setenv("APPLINKS_SCHEMES", "myapp, other ,")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://registry.example.com", cfg.Registry.BaseURL)
	require.Equal(t, "pk_from_env", cfg.Registry.APIKey)
	require.Equal(t, 5*time.Second, cfg.Registry.HTTPTimeout)
	require.Equal(t, []string{"myapp", "other"}, cfg.Links.Schemes)
	require.Equal(t, []string{"example.onapp.link", "*.example.com"}, cfg.Links.Domains)
	require.False(t, cfg.Links.AutoHandle)
	require.True(t, cfg.Links.DeferredEnabled)
	require.Equal(t, "url", cfg.Links.DeferredMode)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	envPath := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envPath, []byte("APPLINKS_DB_PATH=/tmp/from-dotenv.db\nAPPLINKS_DEFERRED_ENABLED=false\n"), 0o600))
	t.Setenv("APPLINKS_ENV_FILE", envPath)
	os.Unsetenv("APPLINKS_DB_PATH")
	os.Unsetenv("APPLINKS_DEFERRED_ENABLED")
	t.Cleanup(func() {
		os.Unsetenv("APPLINKS_DB_PATH")
		os.Unsetenv("APPLINKS_DEFERRED_ENABLED")
	})

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "/tmp/from-dotenv.db", cfg.DB.Path)
	require.False(t, cfg.Links.DeferredEnabled)
}

func TestLoad_InvalidValues(t *testing.T) {
	isolate(t)
	t.Setenv("APPLINKS_AUTO_HANDLE", "sometimes")
	_, err := Load()
	require.ErrorContains(t, err, "APPLINKS_AUTO_HANDLE")

	isolate(t)
	t.Setenv("APPLINKS_HTTP_TIMEOUT", "soon")
	_, err = Load()
	require.ErrorContains(t, err, "APPLINKS_HTTP_TIMEOUT")

	isolate(t)
	t.Setenv("APPLINKS_CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err = Load()
	require.ErrorContains(t, err, "read config file")
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	require.Equal(t, slog.LevelError, ParseLevel("error"))
	require.Equal(t, slog.LevelInfo, ParseLevel(""))
}
