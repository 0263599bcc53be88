package browser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	assert.True(t, opts.Headless)
	assert.Equal(t, "es-PE", opts.Locale)
	assert.Equal(t, "America/Lima", opts.TimezoneID)
	assert.Equal(t, 1920, opts.ViewportWidth)
	assert.Equal(t, 1080, opts.ViewportHeight)
	assert.Contains(t, opts.AcceptLanguage, "es-PE")
	assert.Contains(t, opts.UserAgent, "Mozilla/5.0")
}

func TestBlockedResourceTypes(t *testing.T) {
	for _, kind := range []string{"image", "stylesheet", "font", "media"} {
		_, blocked := blockedResourceTypes[kind]
		assert.True(t, blocked, "%s should be blocked", kind)
	}
	for _, kind := range []string{"document", "script", "xhr", "fetch"} {
		_, blocked := blockedResourceTypes[kind]
		assert.False(t, blocked, "%s must not be blocked", kind)
	}
}

func TestManagerNilOptionsUsesDefaults(t *testing.T) {
	m := NewManager(nil)
	require.NotNil(t, m.opts)
	assert.Equal(t, "es-PE", m.opts.Locale)
}

func TestManagerCloseWithoutStartIsNoop(t *testing.T) {
	m := NewManager(DefaultOptions())
	assert.NoError(t, m.Close())
	assert.NoError(t, m.Close())
}

func TestManagerAcquireAfterClose(t *testing.T) {
	m := NewManager(DefaultOptions())
	require.NoError(t, m.Close())

	_, _, err := m.AcquirePage()
	assert.Error(t, err)
}

func TestNewRendererAppliesDefaults(t *testing.T) {
	r := NewRenderer(NewManager(nil), RendererConfig{})

	assert.Equal(t, 30*time.Second, r.navigateTimeout)
	assert.Equal(t, 500*time.Millisecond, r.pollInterval)
	assert.Equal(t, 20, r.pollAttempts)
}

func TestNewRendererKeepsExplicitConfig(t *testing.T) {
	r := NewRenderer(NewManager(nil), RendererConfig{
		NavigateTimeout: 5 * time.Second,
		PollInterval:    100 * time.Millisecond,
		PollAttempts:    3,
	})

	assert.Equal(t, 5*time.Second, r.navigateTimeout)
	assert.Equal(t, 100*time.Millisecond, r.pollInterval)
	assert.Equal(t, 3, r.pollAttempts)
}
