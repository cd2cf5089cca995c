package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// TimestampLayout is the canonical wire encoding: UTC with milliseconds.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Go's parser accepts an optional fractional second after the seconds field,
// so these two cover whole and fractional seconds, "Z", "+01:00" and "+0100".
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
}

// Timestamp is a time that decodes the registry's ISO-8601 variants and
// always encodes as TimestampLayout.
type Timestamp struct {
	time.Time
}

// ParseTimestamp parses any accepted ISO-8601 variant.
func ParseTimestamp(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, lastErr)
}

// FormatTimestamp renders t in the canonical wire form.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(FormatTimestamp(t.Time))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func timestampPtr(t *time.Time) *Timestamp {
	if t == nil {
		return nil
	}
	return &Timestamp{Time: *t}
}

func (t *Timestamp) timePtr() *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}
