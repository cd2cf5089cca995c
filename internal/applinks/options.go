package applinks

import (
	"log/slog"
	"strings"
	"time"

	"github.com/ganot/applinks/internal/domain/link"
	"github.com/ganot/applinks/internal/domain/recovery"
	"github.com/ganot/applinks/internal/domain/resolution"
	"github.com/ganot/applinks/internal/repository"
)

// DefaultBaseURL is the hosted registry.
const DefaultBaseURL = "https://applinks.com"

// Options configures an SDK instance.
type Options struct {
	BaseURL string
	APIKey  string

	Schemes []string
	Domains []string

	// AutoHandleLinks publishes every HandleLink result to subscribers.
	AutoHandleLinks bool
	// DeferredEnabled runs clipboard recovery on the first Start.
	DeferredEnabled bool
	DeferredMode    recovery.Mode

	// Middlewares run after the built-in stages, in order.
	Middlewares []resolution.Middleware

	// Store persists SDK state. When nil an in-memory SQLite store is used.
	Store repository.PreferenceStore
	// Clipboard is the clipboard capability. When nil recovery finds nothing.
	Clipboard recovery.Clipboard
	// Registry overrides the HTTP registry client.
	Registry link.Registry

	Clock       recovery.Clock
	Logger      *slog.Logger
	HTTPTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if strings.TrimSpace(o.BaseURL) == "" {
		o.BaseURL = DefaultBaseURL
	}
	if o.DeferredMode == "" {
		o.DeferredMode = recovery.ModeVisit
	}
	if o.Clock == nil {
		o.Clock = recovery.SystemClock()
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// validateKey rejects secret keys and warns about keys that aren't public.
func validateKey(key string, logger *slog.Logger) error {
	key = strings.TrimSpace(key)
	if strings.HasPrefix(key, "sk_") {
		return ErrPrivateKey
	}
	if key != "" && !strings.HasPrefix(key, "pk_") {
		prefix := key
		if len(prefix) > 3 {
			prefix = prefix[:3]
		}
		logger.Warn("api key should start with pk_ for public keys", "key_prefix", prefix+"...")
	}
	return nil
}
