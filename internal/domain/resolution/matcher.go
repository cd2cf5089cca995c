package resolution

import (
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// Matcher classifies a URL. Implementations are pure and fail closed.
type Matcher interface {
	Matches(u *url.URL) bool
}

// SchemeMatcher matches URLs whose scheme is one of a configured set.
type SchemeMatcher struct {
	schemes map[string]struct{}
}

// NewSchemeMatcher creates a matcher for the given custom schemes.
func NewSchemeMatcher(schemes []string) *SchemeMatcher {
	set := make(map[string]struct{}, len(schemes))
	for _, s := range schemes {
		s = strings.ToLower(strings.TrimSpace(strings.TrimSuffix(s, "://")))
		if s != "" {
			set[s] = struct{}{}
		}
	}
	return &SchemeMatcher{schemes: set}
}

// Matches reports whether u's scheme is configured.
func (m *SchemeMatcher) Matches(u *url.URL) bool {
	if m == nil || u == nil || u.Scheme == "" {
		return false
	}
	_, ok := m.schemes[strings.ToLower(u.Scheme)]
	return ok
}

// Empty reports whether no schemes are configured.
func (m *SchemeMatcher) Empty() bool {
	return m == nil || len(m.schemes) == 0
}

// DomainMatcher matches http(s) URLs on configured domains. A domain of the
// form "*.base" matches any subdomain of base but not base itself.
type DomainMatcher struct {
	exact     map[string]struct{}
	wildcards []string
}

// NewDomainMatcher creates a matcher for the given domains.
func NewDomainMatcher(domains []string) *DomainMatcher {
	m := &DomainMatcher{exact: make(map[string]struct{}, len(domains))}
	for _, d := range domains {
		d = strings.TrimSpace(d)
		switch {
		case d == "":
		case strings.HasPrefix(d, "*."):
			if base := normalizeHost(d[2:]); base != "" {
				m.wildcards = append(m.wildcards, base)
			}
		default:
			m.exact[normalizeHost(d)] = struct{}{}
		}
	}
	return m
}

// Matches reports whether u is an http(s) URL on a configured domain.
func (m *DomainMatcher) Matches(u *url.URL) bool {
	if m == nil || u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false
	}
	host := normalizeHost(u.Hostname())
	if host == "" {
		return false
	}
	if _, ok := m.exact[host]; ok {
		return true
	}
	for _, base := range m.wildcards {
		if len(host) > len(base) && strings.HasSuffix(host, "."+base) {
			return true
		}
	}
	return false
}

// normalizeHost lowercases host and converts internationalized labels to
// their ASCII form. Hosts idna rejects are compared lowercased as given.
func normalizeHost(host string) string {
	host = strings.TrimSuffix(strings.TrimSpace(host), ".")
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		return ascii
	}
	return strings.ToLower(host)
}

// Empty reports whether no domains are configured.
func (m *DomainMatcher) Empty() bool {
	return m == nil || (len(m.exact) == 0 && len(m.wildcards) == 0)
}

// MatchString parses raw and applies m, returning false for unparseable input.
func MatchString(m Matcher, raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return m.Matches(u)
}
