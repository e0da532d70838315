package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewEngineWindowDefaults(t *testing.T) {
	t.Parallel()

	w := newEngineWindow()

	assert.Equal(t, 1280, w.Width())
	assert.Equal(t, 720, w.Height())
	assert.True(t, w.resizable)
	assert.False(t, w.IsRunning(), "no platform window has been spawned")
	assert.Nil(t, w.SurfaceDescriptor())
	assert.Error(t, w.Close())
	assert.NotPanics(t, w.RequestClose)
}

func TestNewEngineWindowClampsSize(t *testing.T) {
	t.Parallel()

	w := newEngineWindow(
		WithTitle("demo"),
		WithSizeLimits(640, 480, 1024, 768),
		WithSize(4000, 100),
		WithResizable(false),
	)

	assert.Equal(t, "demo", w.title)
	assert.Equal(t, 1024, w.Width())
	assert.Equal(t, 480, w.Height())
	assert.False(t, w.resizable)
}

func TestNewEngineWindowUnboundedMax(t *testing.T) {
	t.Parallel()

	w := newEngineWindow(WithSizeLimits(0, 0, 0, 0), WithSize(5000, 3000))

	assert.Equal(t, 5000, w.Width())
	assert.Equal(t, 3000, w.Height())
}
