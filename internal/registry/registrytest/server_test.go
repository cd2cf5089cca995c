package registrytest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ganot/applinks/internal/domain/link"
)

func TestServer_RecordVisit(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	srv := New(WithClock(func() time.Time { return now }), WithVisitTTL(time.Hour))
	l := srv.AddLink(link.Link{Domain: "example.onapp.link", Title: "t", DeepLinkPath: "/x"})

	v, err := srv.RecordVisit(l.ID)
	require.NoError(t, err)
	require.Equal(t, now.Add(time.Hour), v.ExpiresAt)
	require.Equal(t, l.ID, v.Link.ID)

	_, err = srv.RecordVisit("missing")
	require.ErrorIs(t, err, link.ErrNotFound)
	require.Equal(t, 1, srv.Links())
}

func TestServer_RetrieveIsPublic(t *testing.T) {
	srv := New(WithAPIKey("pk_live", "acct"))
	srv.AddLink(link.Link{Domain: "example.onapp.link", AliasPath: "abc", Title: "t"})
	server := httptest.NewServer(srv.Handler())
	t.Cleanup(server.Close)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, server.URL+"/api/v1/public/links/retrieve", strings.NewReader(`{"url":"https://EXAMPLE.onapp.link/abc/"}`))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(server.URL + "/api/v1/links/any")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
