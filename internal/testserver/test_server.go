// Package testserver wires an in-memory registry and a SQLite preference
// store for tests that exercise the SDK end to end.
package testserver

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ganot/applinks/internal/domain/link"
	"github.com/ganot/applinks/internal/registry"
	"github.com/ganot/applinks/internal/registry/registrytest"
	"github.com/ganot/applinks/internal/sqlite"
)

// DefaultAPIKey is the publishable key accepted by the test registry.
const DefaultAPIKey = "pk_test_applinks"

// TestServer bundles a running registry and a preference database.
type TestServer struct {
	Server   *httptest.Server
	Registry *registrytest.Server
	DB       *sqlite.DB
	Store    *sqlite.PreferenceRepository
	APIKey   string
}

// New starts a registry accepting DefaultAPIKey and opens an in-memory database.
func New(t *testing.T, opts ...registrytest.Option) *TestServer {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	reg := registrytest.New(append([]registrytest.Option{registrytest.WithAPIKey(DefaultAPIKey, "test-account")}, opts...)...)
	server := httptest.NewServer(reg.Handler())

	ts := &TestServer{
		Server:   server,
		Registry: reg,
		DB:       db,
		Store:    sqlite.NewPreferenceRepository(db),
		APIKey:   DefaultAPIKey,
	}

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return ts
}

// URL returns the registry base URL.
func (ts *TestServer) URL() string {
	return ts.Server.URL
}

// Client returns a registry client authenticated with the test key.
func (ts *TestServer) Client(t *testing.T) *registry.Client {
	t.Helper()
	client, err := registry.New(ts.Server.URL, registry.WithAPIKey(ts.APIKey), registry.WithTimeout(5*time.Second))
	require.NoError(t, err)
	return client
}

// SeedVisit stores a link and a visit with the given ID pointing at it.
func (ts *TestServer) SeedVisit(visitID string, l link.Link, expiresAt *time.Time) *link.Visit {
	l.ExpiresAt = expiresAt
	stored := ts.Registry.AddLink(l)
	now := time.Now().UTC()
	v := link.Visit{
		ID:         visitID,
		CreatedAt:  now,
		UpdatedAt:  now,
		LastSeenAt: now,
		ExpiresAt:  now.Add(registrytest.DefaultVisitTTL),
		Link:       stored,
	}
	ts.Registry.AddVisit(v)
	return &v
}
