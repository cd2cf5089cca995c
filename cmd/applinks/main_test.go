package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ganot/applinks/internal/domain/link"
	"github.com/ganot/applinks/internal/domain/resolution"
	"github.com/ganot/applinks/internal/testserver"
)

// setupEnv points the CLI at ts and a fresh state database.
func setupEnv(t *testing.T, ts *testserver.TestServer) string {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "state", "applinks.db")

	t.Setenv("APPLINKS_ENV_FILE", filepath.Join(dir, "missing.env"))
	t.Setenv("APPLINKS_CONFIG_PATH", "")
	t.Setenv("APPLINKS_LOG_PATH", "")
	t.Setenv("APPLINKS_BASE_URL", ts.URL())
	t.Setenv("APPLINKS_API_KEY", ts.APIKey)
	t.Setenv("APPLINKS_SCHEMES", "myapp")
	t.Setenv("APPLINKS_DOMAINS", "*.onapp.link")
	t.Setenv("APPLINKS_DB_PATH", dbPath)
	t.Setenv("APPLINKS_LOG_LEVEL", "error")
	return dbPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), err
}

func TestResolve_SchemeAndUniversalLinks(t *testing.T) {
	ts := testserver.New(t)
	setupEnv(t, ts)
	ts.Registry.AddLink(link.Link{
		ID:             "link-1",
		Domain:         "example.onapp.link",
		AliasPath:      "xK3d",
		DeepLinkPath:   "/promo/summer",
		DeepLinkParams: map[string]string{"code": "SAVE20"},
	})

	out, err := execute(t, "resolve",
		"myapp://product/123?ref=home",
		"https://example.onapp.link/xK3d",
		"https://elsewhere.example/x",
	)
	require.NoError(t, err)

	var results []resolution.Result
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 3)

	require.True(t, results[0].Handled)
	require.Equal(t, "/product/123", results[0].Path)
	require.Equal(t, map[string]string{"ref": "home"}, results[0].Params)

	require.True(t, results[1].Handled)
	require.Equal(t, "/promo/summer", results[1].Path)
	require.Equal(t, "SAVE20", results[1].Params["code"])
	require.NotEmpty(t, results[1].Metadata["visit_id"].String())

	require.Equal(t, "https://elsewhere.example/x", results[2].OriginalURL)
}

func TestResolve_FailUnhandled(t *testing.T) {
	ts := testserver.New(t)
	setupEnv(t, ts)

	_, err := execute(t, "resolve", "--fail-unhandled", "not a url")
	require.ErrorIs(t, err, errUnhandled)
}

func TestShortenAndGet(t *testing.T) {
	ts := testserver.New(t)
	setupEnv(t, ts)

	out, err := execute(t, "shorten",
		"--domain", "example.onapp.link",
		"--title", "Summer",
		"--deep-link", "myapp://promo/SUMMER2024",
		"--param", "code=SAVE20",
		"--short",
		"--expires", "72h",
	)
	require.NoError(t, err)

	var created link.Link
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	require.Len(t, created.AliasPath, 6)
	require.Equal(t, map[string]string{"code": "SAVE20"}, created.DeepLinkParams)
	require.NotNil(t, created.ExpiresAt)

	out, err = execute(t, "link", "get", created.ID)
	require.NoError(t, err)
	var got link.Link
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Equal(t, created.AliasPath, got.AliasPath)

	_, err = execute(t, "link", "get", "missing")
	require.ErrorIs(t, err, link.ErrNotFound)
}

func TestShorten_InvalidParam(t *testing.T) {
	ts := testserver.New(t)
	setupEnv(t, ts)

	_, err := execute(t, "shorten", "--domain", "d", "--title", "t", "--param", "novalue")
	require.ErrorContains(t, err, "key=value")
}

func TestRecover_ConsumesOnceUntilReset(t *testing.T) {
	ts := testserver.New(t)
	dbPath := setupEnv(t, ts)
	ts.SeedVisit("abc-123", link.Link{
		ID:           "link-1",
		Domain:       "example.onapp.link",
		DeepLinkPath: "myapp://promo/SUMMER2024",
	}, nil)

	args := []string{"recover", "--clipboard", "memory", "--content", "https://example.onapp.link/visit/abc-123"}

	out, err := execute(t, args...)
	require.NoError(t, err)
	var first recoverOutput
	require.NoError(t, json.Unmarshal([]byte(out), &first))
	require.True(t, first.Found)
	require.Equal(t, "/promo/SUMMER2024", first.Result.Path)

	_, err = os.Stat(dbPath)
	require.NoError(t, err)

	// The replay guard lives in the state database, so a new process refuses.
	_, err = execute(t, args...)
	require.Error(t, err)

	out, err = execute(t, "reset")
	require.NoError(t, err)
	require.Contains(t, out, "state reset")

	_, err = execute(t, args...)
	require.NoError(t, err)
}

func TestRecover_EmptyClipboard(t *testing.T) {
	ts := testserver.New(t)
	setupEnv(t, ts)

	out, err := execute(t, "recover", "--clipboard", "memory")
	require.NoError(t, err)
	require.JSONEq(t, `{"found":false}`, out)
}

func TestOpenClipboard_UnknownSource(t *testing.T) {
	_, err := openClipboard("carrier-pigeon", "")
	require.Error(t, err)
}

func TestParseExpiry(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	at, err := parseExpiry("2h", now)
	require.NoError(t, err)
	require.Equal(t, now.Add(2*time.Hour), at)

	at, err = parseExpiry("2026-12-31T23:59:59Z", now)
	require.NoError(t, err)
	require.Equal(t, 2026, at.Year())

	_, err = parseExpiry("-1h", now)
	require.Error(t, err)
	_, err = parseExpiry("soon", now)
	require.Error(t, err)
}

func TestLogFileWriter_Truncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "applinks.log")
	w, err := newLogFileWriter(path)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	w.maxSize = 64
	w.keep = 16

	_, err = w.Write(bytes.Repeat([]byte("a"), 60))
	require.NoError(t, err)
	_, err = w.Write([]byte("0123456789abcdef"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "0123456789abcdef", string(data))
}
