package environment

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireMipChain(t *testing.T, m *Map) {
	t.Helper()
	require.NotEmpty(t, m.Levels)
	for i, l := range m.Levels {
		require.Len(t, l.Pixels, int(l.Width*l.Height*4), "level %d", i)
		if i == 0 {
			continue
		}
		prev := m.Levels[i-1]
		assert.Equal(t, max(prev.Width/2, 1), l.Width, "level %d width", i)
		assert.Equal(t, max(prev.Height/2, 1), l.Height, "level %d height", i)
	}
	last := m.Levels[len(m.Levels)-1]
	assert.Equal(t, uint32(1), last.Width)
	assert.Equal(t, uint32(1), last.Height)
}

func pixel(m *Map, level int, x, y uint32) [4]byte {
	l := m.Levels[level]
	i := (y*l.Width + x) * 4
	return [4]byte(l.Pixels[i : i+4])
}

func TestProcedural(t *testing.T) {
	t.Parallel()

	// Act
	m := Procedural(64)

	// Assert
	assert.Equal(t, SourceProcedural, m.Source)
	assert.Equal(t, uint32(64), m.Width())
	assert.Equal(t, uint32(32), m.Height())
	requireMipChain(t, m)
	assert.Len(t, m.Levels, 7)

	// ceiling brighter than floor, everything opaque
	top := pixel(m, 0, 0, 0)
	bottom := pixel(m, 0, 0, 31)
	assert.Greater(t, top[0], bottom[0])
	assert.Equal(t, byte(255), top[3])
	assert.Equal(t, byte(255), bottom[3])
}

func TestProceduralDefaultWidth(t *testing.T) {
	t.Parallel()

	for _, w := range []int{0, -5, 3} {
		m := Procedural(w)
		assert.Equal(t, uint32(defaultProceduralWidth), m.Width())
	}
}

func TestBuildMipsNonPowerOfTwo(t *testing.T) {
	t.Parallel()

	// Arrange
	img := image.NewRGBA(image.Rect(0, 0, 10, 3))
	for i := range img.Pix {
		img.Pix[i] = 200
	}

	// Act
	levels := BuildMips(img, 1)

	// Assert
	m := &Map{Levels: levels}
	requireMipChain(t, m)
	sizes := make([][2]uint32, len(levels))
	for i, l := range levels {
		sizes[i] = [2]uint32{l.Width, l.Height}
	}
	assert.Equal(t, [][2]uint32{{10, 3}, {5, 1}, {2, 1}, {1, 1}}, sizes)
	assert.Equal(t, byte(200), img.Pix[0], "input must not be modified")
}

func TestLoad(t *testing.T) {
	t.Parallel()

	// Arrange
	path := filepath.Join(t.TempDir(), "env.png")
	img := image.NewNRGBA(image.Rect(0, 0, 32, 16))
	for y := range 16 {
		for x := range 32 {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 128, A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	// Act
	m, err := Load(path, 16)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, path, m.Source)
	assert.Equal(t, uint32(16), m.Width())
	assert.Equal(t, uint32(8), m.Height())
	requireMipChain(t, m)
	p := pixel(m, 0, 4, 4)
	assert.InDelta(t, 255, int(p[0]), 2)
	assert.InDelta(t, 128, int(p[1]), 2)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.jpg"), 0)

	require.Error(t, err)
}

func TestNilMapSize(t *testing.T) {
	t.Parallel()

	var m *Map
	assert.Zero(t, m.Width())
	assert.Zero(t, m.Height())
}
