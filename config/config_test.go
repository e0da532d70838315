package config

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 24, cfg.Scene.Instances)
	assert.Equal(t, 1.5, cfg.Renderer.Exposure)
	assert.Equal(t, []string{"Not an", "application", "Just a demo"}, cfg.Scene.Title)
	require.Len(t, cfg.Lights, 3)
}

func TestParseHCL(t *testing.T) {
	t.Parallel()

	// Arrange
	src := `
window {
  width = 800
}

renderer {
  exposure    = 2
  clear_color = "#102030"
}

scene {
  seed  = 7
  title = ["Hello"]
}

light "rim" {
  position = [1, 2, 3]
  color    = "orange"
  angle    = pi / 6
}
`

	// Act
	cfg, err := Parse([]byte(src), "demo.hcl")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height, "unset fields keep their defaults")
	assert.Equal(t, 2.0, cfg.Renderer.Exposure)
	assert.Equal(t, "#102030", cfg.Renderer.ClearColor)
	assert.Equal(t, int64(7), cfg.Scene.Seed)
	assert.Equal(t, []string{"Hello"}, cfg.Scene.Title)
	assert.Equal(t, 24, cfg.Scene.Instances)

	require.Len(t, cfg.Lights, 1)
	l := cfg.Lights[0]
	assert.Equal(t, "rim", l.Name)
	assert.Equal(t, []float64{1, 2, 3}, l.Position)
	assert.Equal(t, []float64{0, 0, 0}, l.Target)
	assert.InDelta(t, math.Pi/6, l.Angle, 1e-12)
	assert.Equal(t, 1.0, l.Intensity)
}

func TestParseTOMLAndYAML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filename string
		src      string
	}{
		{
			name:     "toml",
			filename: "demo.toml",
			src: `
[renderer]
msaa = 8

[scene]
instances = 12
`,
		},
		{
			name:     "yaml",
			filename: "demo.yml",
			src: `
renderer:
  msaa: 8
scene:
  instances: 12
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := Parse([]byte(tt.src), tt.filename)

			require.NoError(t, err)
			assert.Equal(t, 8, cfg.Renderer.MSAA)
			assert.Equal(t, 12, cfg.Scene.Instances)
			assert.Equal(t, DefaultLights(), cfg.Lights, "files without lights keep the default rig")
		})
	}
}

func TestParseLightsReplaceDefaults(t *testing.T) {
	t.Parallel()

	src := `
[[light]]
name = "solo"
position = [0.0, 10.0, 0.0]
target = [0.0, 0.0, 0.0]
color = "white"
intensity = 2.0
angle = 0.5
`
	cfg, err := Parse([]byte(src), "demo.toml")

	require.NoError(t, err)
	require.Len(t, cfg.Lights, 1)
	assert.Equal(t, "solo", cfg.Lights[0].Name)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("[renderer]\nbloom = true\n"), "demo.toml")
	require.Error(t, err)

	_, err = Parse([]byte("window {\n  depth = 3\n}\n"), "demo.hcl")
	require.Error(t, err)
}

func TestParseUnsupportedFormat(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("{}"), "demo.json")

	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestValidateCollectsAllProblems(t *testing.T) {
	t.Parallel()

	// Arrange
	cfg := Default()
	cfg.Window.Width = 0
	cfg.Renderer.MSAA = 3
	cfg.Renderer.PresentMode = "mailbox"
	cfg.Camera.Near = 200
	cfg.Lights[1].Color = "not-a-color"

	// Act
	err := cfg.Validate()

	// Assert
	require.ErrorIs(t, err, ErrInvalid)
	msg := err.Error()
	for _, want := range []string{"window size", "msaa", "present_mode", "clip range", "not-a-color"} {
		assert.Contains(t, msg, want)
	}
}

func TestValidateLightLimits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Light)
	}{
		{name: "zero angle", modify: func(l *Light) { l.Angle = 0 }},
		{name: "wide angle", modify: func(l *Light) { l.Angle = math.Pi }},
		{name: "penumbra", modify: func(l *Light) { l.Penumbra = 2 }},
		{name: "intensity", modify: func(l *Light) { l.Intensity = -1 }},
		{name: "position", modify: func(l *Light) { l.Position = []float64{1, 2} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tt.modify(&cfg.Lights[0])

			require.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestValidateDuplicateLightNames(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Lights[2].Name = cfg.Lights[0].Name

	err := cfg.Validate()

	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "declared twice")
}

func TestParseColor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want [3]float32
	}{
		{in: "#fff", want: [3]float32{1, 1, 1}},
		{in: "#FF0000", want: [3]float32{1, 0, 0}},
		{in: "black", want: [3]float32{0, 0, 0}},
		{in: " Orange ", want: [3]float32{1, 165.0 / 255, 0}},
	}

	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		require.NoError(t, err, tt.in)
		assert.InDeltaSlice(t, tt.want[:], got[:], 1e-6, tt.in)
	}

	for _, bad := range []string{"", "#12", "#gggggg", "chartreusey"} {
		_, err := ParseColor(bad)
		assert.Error(t, err, bad)
	}
}

func TestSRGBToLinear(t *testing.T) {
	t.Parallel()

	got := SRGBToLinear([3]float32{0, 0.5, 1})

	assert.InDelta(t, 0, got[0], 1e-6)
	assert.InDelta(t, 0.21404, got[1], 1e-4)
	assert.InDelta(t, 1, got[2], 1e-6)
}

func TestSpotLights(t *testing.T) {
	t.Parallel()

	lights, err := Default().SpotLights()

	require.NoError(t, err)
	require.Len(t, lights, 3)
	assert.Equal(t, [3]float32{50, 30, -50}, lights[0].Position())
	assert.Equal(t, [3]float32{1, 1, 1}, lights[0].Color())
	assert.InDelta(t, math.Pi/3, lights[0].Angle(), 1e-6)
	assert.InDelta(t, math.Pi/4, lights[1].Angle(), 1e-6)
	assert.InDelta(t, 0.3763, lights[1].Color()[1], 1e-3)
	assert.Equal(t, float32(4), lights[2].Intensity())
}

func TestMarshalRoundTrip(t *testing.T) {
	t.Parallel()

	for _, format := range []Format{FormatHCL, FormatTOML, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			t.Parallel()

			// Arrange
			want := Default()
			want.Scene.Seed = 42
			want.Assets.Background = "bg.jpg"

			// Act
			data, err := want.Marshal(format)
			require.NoError(t, err)
			got, err := Parse(data, "out."+string(format))

			// Assert
			require.NoError(t, err, string(data))
			assert.Equal(t, want, got)
		})
	}
}

func TestMarshalUnknownFormat(t *testing.T) {
	t.Parallel()

	_, err := Default().Marshal("ini")

	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "demo.hcl")
	require.NoError(t, os.WriteFile(path, []byte("scene {\n  instances = 3\n}\n"), 0o644))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Scene.Instances)

	_, err = Load(filepath.Join(t.TempDir(), "missing.hcl"))
	require.Error(t, err)
}

func TestWatchReloadsValidEdits(t *testing.T) {
	t.Parallel()

	// Arrange
	path := filepath.Join(t.TempDir(), "demo.toml")
	require.NoError(t, os.WriteFile(path, []byte("[renderer]\nexposure = 1.0\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reloaded := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(c *Config) { reloaded <- c })
	}()
	time.Sleep(100 * time.Millisecond)

	// Act
	require.NoError(t, os.WriteFile(path, []byte("[renderer]\nexposure = -1.0\n"), 0o644))
	time.Sleep(2 * reloadDebounce)
	require.NoError(t, os.WriteFile(path, []byte("[renderer]\nexposure = 3.0\n"), 0o644))

	// Assert
	select {
	case cfg := <-reloaded:
		assert.Equal(t, 3.0, cfg.Renderer.Exposure, "the invalid edit is skipped")
	case <-time.After(5 * time.Second):
		t.Fatal("no reload observed")
	}

	cancel()
	require.NoError(t, <-done)
}

func TestWatchUnsupportedFormat(t *testing.T) {
	t.Parallel()

	err := Watch(context.Background(), "demo.ini", func(*Config) {})

	require.ErrorIs(t, err, ErrUnsupportedFormat)
}
