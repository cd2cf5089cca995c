package registry

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseTimestamp_Variants(t *testing.T) {
	want := time.Date(2025, 7, 3, 10, 15, 30, 0, time.UTC)
	wantMillis := want.Add(250 * time.Millisecond)

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-07-03T10:15:30Z", want},
		{"2025-07-03T10:15:30.250Z", wantMillis},
		{"2025-07-03T12:15:30+02:00", want},
		{"2025-07-03T12:15:30.250+02:00", wantMillis},
		{"2025-07-03T12:15:30+0200", want},
		{"2025-07-03T12:15:30.250+0200", wantMillis},
		{"2025-07-03T10:15:30.250123Z", want.Add(250123 * time.Microsecond)},
	}
	for _, tt := range tests {
		got, err := ParseTimestamp(tt.in)
		require.NoError(t, err, tt.in)
		require.True(t, tt.want.Equal(got), "%s parsed as %s", tt.in, got)
	}

	_, err := ParseTimestamp("03/07/2025")
	require.Error(t, err)
}

func TestTimestamp_CanonicalEncoding(t *testing.T) {
	loc := time.FixedZone("CEST", 2*60*60)
	ts := Timestamp{Time: time.Date(2025, 7, 3, 12, 15, 30, 0, loc)}

	data, err := json.Marshal(ts)
	require.NoError(t, err)
	require.Equal(t, `"2025-07-03T10:15:30.000Z"`, string(data))

	var back Timestamp
	require.NoError(t, json.Unmarshal(data, &back))
	require.True(t, ts.Equal(back.Time))
}

func TestTimestamp_NullAndEmpty(t *testing.T) {
	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte(`null`), &ts))
	require.True(t, ts.IsZero())
	require.NoError(t, json.Unmarshal([]byte(`""`), &ts))
	require.True(t, ts.IsZero())
	require.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))

	data, err := json.Marshal(Timestamp{})
	require.NoError(t, err)
	require.Equal(t, "null", string(data))
}
