package clipboard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLooksLikeLink(t *testing.T) {
	require.True(t, LooksLikeLink("https://example.onapp.link/visit/abc-123"))
	require.True(t, LooksLikeLink("  myapp://promo/summer \n"))
	require.True(t, LooksLikeLink("6f1c2b1e-4f7a-4a43-9a53-3c1d0f0c8a11"))
	require.False(t, LooksLikeLink(""))
	require.False(t, LooksLikeLink("hello world"))
	require.False(t, LooksLikeLink("just-text"))
}

func TestMemory(t *testing.T) {
	m := NewMemory("https://example.com/visit/1")
	require.True(t, m.HasURLs())

	content, err := m.ReadString()
	require.NoError(t, err)
	require.Equal(t, "https://example.com/visit/1", content)

	m.FailClear(errors.New("locked"))
	require.Error(t, m.Clear())
	require.Equal(t, "https://example.com/visit/1", m.Content())

	m.FailClear(nil)
	require.NoError(t, m.Clear())
	require.Empty(t, m.Content())
	require.Equal(t, 1, m.Clears())
	require.False(t, m.HasURLs())

	m.ForceHasURLs(true)
	require.True(t, m.HasURLs())
}
