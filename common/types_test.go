package common

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 255, G: uint8(x), B: uint8(y), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeImage(t *testing.T) {
	t.Parallel()

	data, err := DecodeImage(bytes.NewReader(encodePNG(t, 8, 4)), 0)
	require.NoError(t, err)

	assert.Equal(t, uint32(8), data.Width)
	assert.Equal(t, uint32(4), data.Height)
	assert.Len(t, data.Pixels, 8*4*4)
	assert.Equal(t, byte(255), data.Pixels[0])
	assert.InDelta(t, 2.0, data.Aspect(), 1e-6)
}

func TestDecodeImageDownscales(t *testing.T) {
	t.Parallel()

	data, err := DecodeImage(bytes.NewReader(encodePNG(t, 64, 32)), 16)
	require.NoError(t, err)

	assert.Equal(t, uint32(16), data.Width)
	assert.Equal(t, uint32(8), data.Height)
	assert.Len(t, data.Pixels, 16*8*4)
}

func TestDecodeImageFile(t *testing.T) {
	t.Parallel()

	// Arrange
	dir := t.TempDir()
	path := filepath.Join(dir, "background.png")
	require.NoError(t, os.WriteFile(path, encodePNG(t, 4, 4), 0o644))

	// Act
	data, err := DecodeImageFile(path, 0)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, uint32(4), data.Width)

	_, err = DecodeImageFile(filepath.Join(dir, "missing.png"), 0)
	assert.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))
	_, err = DecodeImageFile(path, 0)
	assert.Error(t, err)
}

func TestAspectNil(t *testing.T) {
	t.Parallel()

	var data *TextureStagingData
	assert.Zero(t, data.Aspect())
}
