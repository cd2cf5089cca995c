package link

import (
	"time"

	"github.com/ganot/applinks/internal/metadata"
)

// PathType selects how the registry generates a link's alias path.
type PathType string

const (
	// PathUnguessable asks for a long random alias (32 characters).
	PathUnguessable PathType = "UNGUESSABLE"
	// PathShort asks for a 4-6 character alias.
	PathShort PathType = "SHORT"
)

// Valid reports whether t is a known path type.
func (t PathType) Valid() bool {
	return t == PathUnguessable || t == PathShort
}

// Link is a shortened link as stored by the registry. Clients never mutate it.
type Link struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	AliasPath      string            `json:"alias_path"`
	Domain         string            `json:"domain"`
	OriginalURL    string            `json:"original_url"`
	DeepLinkPath   string            `json:"deep_link_path"`
	DeepLinkParams map[string]string `json:"deep_link_params"`
	ExpiresAt      *time.Time        `json:"expires_at,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	FullURL        string            `json:"full_url"`
}

// Expired reports whether the link carries an expiry strictly before now.
func (l *Link) Expired(now time.Time) bool {
	if l == nil || l.ExpiresAt == nil {
		return false
	}
	return l.ExpiresAt.Before(now.UTC())
}

// Target returns the URL a client should open: the deep-link path when set,
// otherwise the web fallback.
func (l *Link) Target() string {
	if l == nil {
		return ""
	}
	if l.DeepLinkPath != "" {
		return l.DeepLinkPath
	}
	return l.OriginalURL
}

// Retrieval is the result of resolving a visited URL back to its link.
type Retrieval struct {
	Link    Link   `json:"link"`
	VisitID string `json:"visit_id"`
}

// Visit describes one referral event recorded by the registry.
type Visit struct {
	ID                 string         `json:"id"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	LastSeenAt         time.Time      `json:"last_seen_at"`
	ExpiresAt          time.Time      `json:"expires_at"`
	IPAddress          string         `json:"ip_address"`
	UserAgent          string         `json:"user_agent"`
	BrowserFingerprint metadata.Value `json:"browser_fingerprint"`
	Link               *Link          `json:"link,omitempty"`
}

// CreateRequest describes a link to register.
type CreateRequest struct {
	Domain         string
	Title          string
	DeepLinkPath   string
	OriginalURL    string
	DeepLinkParams map[string]string
	ExpiresAt      *time.Time
	PathType       PathType
}
