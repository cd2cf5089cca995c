package resolution_test

import (
	"net/url"
	"testing"

	"github.com/ganot/applinks/internal/domain/resolution"
	"github.com/stretchr/testify/require"
)

func TestDomainMatcher(t *testing.T) {
	tests := []struct {
		name    string
		domains []string
		raw     string
		want    bool
	}{
		{"wildcard subdomain", []string{"*.example.com"}, "https://sub.example.com/x", true},
		{"wildcard nested subdomain", []string{"*.example.com"}, "https://a.b.example.com", true},
		{"wildcard rejects base", []string{"*.example.com"}, "https://example.com", false},
		{"wildcard rejects label suffix", []string{"*.example.com"}, "https://badexample.com", false},
		{"exact", []string{"example.com"}, "https://example.com", true},
		{"exact case insensitive", []string{"Example.COM"}, "HTTPS://EXAMPLE.com/Path", true},
		{"port stripped", []string{"example.com"}, "http://example.com:8080/a", true},
		{"exact rejects subdomain", []string{"example.com"}, "https://www.example.com", false},
		{"custom scheme ignored", []string{"example.com"}, "myapp://example.com", false},
		{"missing host", []string{"example.com"}, "https:///path", false},
		{"no domains", nil, "https://example.com", false},
		{"unicode host matches punycode entry", []string{"xn--bcher-kva.example"}, "https://bücher.example/x", true},
		{"punycode host matches unicode entry", []string{"*.bücher.example"}, "https://go.xn--bcher-kva.example/x", true},
		{"trailing dot", []string{"example.com."}, "https://example.com/x", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := resolution.NewDomainMatcher(tt.domains)
			require.Equal(t, tt.want, resolution.MatchString(m, tt.raw))
		})
	}
}

func TestSchemeMatcher(t *testing.T) {
	m := resolution.NewSchemeMatcher([]string{"myapp", "Other://"})

	require.True(t, resolution.MatchString(m, "myapp://product/1"))
	require.True(t, resolution.MatchString(m, "MYAPP://product/1"))
	require.True(t, resolution.MatchString(m, "other://x"))
	require.False(t, resolution.MatchString(m, "https://myapp.com"))
	require.False(t, resolution.MatchString(m, "product/1"))
	require.False(t, resolution.MatchString(m, "::not a url"))
}

func TestMatchers_FailClosed(t *testing.T) {
	var u *url.URL
	require.False(t, resolution.NewSchemeMatcher([]string{"myapp"}).Matches(u))
	require.False(t, resolution.NewDomainMatcher([]string{"example.com"}).Matches(u))

	var nilScheme *resolution.SchemeMatcher
	require.False(t, nilScheme.Matches(&url.URL{Scheme: "myapp"}))
	require.True(t, nilScheme.Empty())
}
