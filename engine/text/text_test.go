package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRasterizer(t *testing.T, options ...RasterizerBuilderOption) Rasterizer {
	t.Helper()
	r, err := NewRasterizer(options...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestRasterizeLine(t *testing.T) {
	t.Parallel()

	// Arrange
	r := newTestRasterizer(t, WithGlyphSize(2.2), WithPixelsPerUnit(32))

	// Act
	label, err := r.Rasterize("Not an")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Not an", label.Text)
	img := label.Image
	require.NotNil(t, img)
	require.Len(t, img.Pixels, int(img.Width*img.Height*4))
	assert.InDelta(t, float64(img.Width)/32, float64(label.Width), 1e-5)
	assert.InDelta(t, float64(img.Height)/32, float64(label.Height), 1e-5)
	assert.Greater(t, label.Baseline, float32(0))
	assert.Less(t, label.Baseline, label.Height/2)

	covered := 0
	for i := 0; i < len(img.Pixels); i += 4 {
		if img.Pixels[i+3] > 128 {
			covered++
			assert.GreaterOrEqual(t, img.Pixels[i], uint8(250))
		}
	}
	assert.Positive(t, covered)
	// the padding border stays transparent
	assert.Zero(t, img.Pixels[3])
}

func TestRasterizeWidthGrowsWithText(t *testing.T) {
	t.Parallel()

	r := newTestRasterizer(t)

	short, err := r.Rasterize("Not an")
	require.NoError(t, err)
	long, err := r.Rasterize("application")
	require.NoError(t, err)

	assert.Greater(t, long.Width, short.Width)
	assert.Equal(t, short.Height, long.Height)
}

func TestRasterizeEmptyLine(t *testing.T) {
	t.Parallel()

	r := newTestRasterizer(t)

	for _, line := range []string{"", "   ", "\t\n"} {
		_, err := r.Rasterize(line)
		require.ErrorIs(t, err, ErrEmptyLine)
	}
}

func TestRasterizeTooWide(t *testing.T) {
	t.Parallel()

	r := newTestRasterizer(t, WithGlyphSize(2.2), WithPixelsPerUnit(1000))

	_, err := r.Rasterize("application")

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmptyLine)
}

func TestNewRasterizerBadFont(t *testing.T) {
	t.Parallel()

	_, err := NewRasterizer(WithFontData([]byte("not a font")))

	require.Error(t, err)
}

func TestRasterizerOptionsIgnoreInvalid(t *testing.T) {
	t.Parallel()

	r := newTestRasterizer(t, WithGlyphSize(-1), WithPixelsPerUnit(0), WithPadding(-3), WithFontData(nil))

	assert.Equal(t, float32(defaultGlyphSize), r.GlyphSize())
	assert.Equal(t, float64(defaultPixelsPerUnit), r.PixelsPerUnit())
}
