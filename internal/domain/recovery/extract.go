package recovery

import (
	"net/url"
	"strings"

	"github.com/google/uuid"
)

const visitSegment = "visit"

// ExtractIdentifier pulls a recovery identifier out of clipboard content.
// A URL whose first segment after the host is "visit" yields the next
// segment as the token; custom schemes may also use "visit" as the host. Otherwise the whole
// trimmed content is used when it is a UUID or an absolute URL.
func ExtractIdentifier(content string) (string, bool) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", false
	}

	if u, err := url.Parse(trimmed); err == nil && u.Scheme != "" {
		if token, ok := visitToken(u); ok {
			return token, true
		}
	}

	if _, err := uuid.Parse(trimmed); err == nil {
		return trimmed, true
	}
	if isAbsoluteURL(trimmed) {
		return trimmed, true
	}
	return "", false
}

func visitToken(u *url.URL) (string, bool) {
	var segments []string
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		segments = splitPath(u.Path)
	default:
		if u.Opaque != "" {
			segments = splitPath(u.Opaque)
		} else {
			segments = append(splitPath(u.Host), splitPath(u.Path)...)
		}
	}
	if len(segments) < 2 || segments[0] != visitSegment {
		return "", false
	}
	return segments[1], true
}

func splitPath(p string) []string {
	var out []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return false
	}
	return u.Host != "" || u.Opaque != ""
}
