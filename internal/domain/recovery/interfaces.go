package recovery

import (
	"context"
	"time"

	"github.com/ganot/applinks/internal/domain/link"
)

// Clipboard is the capability-gated system clipboard.
type Clipboard interface {
	// HasURLs reports whether the clipboard looks like it holds a URL without
	// reading its value.
	HasURLs() bool
	ReadString() (string, error)
	Clear() error
}

// VisitFetcher turns a recovery identifier into visit details.
type VisitFetcher interface {
	GetVisitDetails(ctx context.Context, visitID string) (*link.Visit, error)
}

// Clock supplies the current time for expiry checks.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock returns the wall clock.
func SystemClock() Clock { return ClockFunc(time.Now) }
