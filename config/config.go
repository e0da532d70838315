// Package config loads the demo configuration from HCL, TOML or YAML files. Every field has a default
// reproducing the original scene, so a file only needs to name what it changes.
package config

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Carmen-Shannon/oxy-refract/engine/light"
)

var (
	// ErrUnsupportedFormat is returned for files whose extension is not .hcl, .toml, .yaml or .yml.
	ErrUnsupportedFormat = errors.New("config: unsupported format")

	// ErrInvalid wraps every validation failure.
	ErrInvalid = errors.New("config: invalid")
)

// Config is the complete demo configuration.
type Config struct {
	Window   Window   `toml:"window" yaml:"window"`
	Renderer Renderer `toml:"renderer" yaml:"renderer"`
	Scene    Scene    `toml:"scene" yaml:"scene"`
	Camera   Camera   `toml:"camera" yaml:"camera"`
	Assets   Assets   `toml:"assets" yaml:"assets"`
	Lights   []Light  `toml:"light" yaml:"lights"`
}

// Window configures the native window.
type Window struct {
	Title  string `toml:"title" yaml:"title"`
	Width  int    `toml:"width" yaml:"width"`
	Height int    `toml:"height" yaml:"height"`
}

// Renderer configures the surface and output.
type Renderer struct {
	// PresentMode is "vsync" or "uncapped".
	PresentMode string `toml:"present_mode" yaml:"present_mode"`

	// MSAA is the surface sample count: 1, 4, 8 or 16.
	MSAA int `toml:"msaa" yaml:"msaa"`

	// ClearColor is a hex "#rrggbb" or named color.
	ClearColor string `toml:"clear_color" yaml:"clear_color"`

	// Exposure scales the color before ACES tone mapping.
	Exposure float64 `toml:"exposure" yaml:"exposure"`
}

// Scene configures the composition.
type Scene struct {
	// Instances is the number of spheres in each orbiting group.
	Instances int `toml:"instances" yaml:"instances"`

	// Seed seeds the per-instance parameters; 0 picks a time-based seed.
	Seed int64 `toml:"seed" yaml:"seed"`

	// Title holds the lines of the title, top to bottom.
	Title []string `toml:"title" yaml:"title"`

	// GlyphSize is the title em size in world units.
	GlyphSize float64 `toml:"glyph_size" yaml:"glyph_size"`

	// CopyRadius is the radius of the icosahedron whose vertices carry the title copies.
	CopyRadius float64 `toml:"copy_radius" yaml:"copy_radius"`

	// EnvIntensity scales image based lighting on physical materials.
	EnvIntensity float64 `toml:"env_intensity" yaml:"env_intensity"`

	// Workers bounds the goroutines preparing assets; 0 uses one per CPU.
	Workers int `toml:"workers" yaml:"workers"`
}

// Camera configures the main and capture cameras, which share one pose.
type Camera struct {
	Position []float64 `toml:"position" yaml:"position"`

	// Fov is the vertical field of view in degrees.
	Fov  float64 `toml:"fov" yaml:"fov"`
	Near float64 `toml:"near" yaml:"near"`
	Far  float64 `toml:"far" yaml:"far"`
}

// Assets names the files the scene loads. Empty paths fall back to built-in data.
type Assets struct {
	// Font is an OpenType or TrueType file for the title.
	Font string `toml:"font" yaml:"font"`

	// Environment is an equirectangular image lighting the physical materials.
	Environment string `toml:"environment" yaml:"environment"`

	// Background is the image on the plane behind the scene.
	Background string `toml:"background" yaml:"background"`

	// MaxTextureSize caps the width and height of decoded images.
	MaxTextureSize int `toml:"max_texture_size" yaml:"max_texture_size"`
}

// Light is one spot light aimed at Target.
type Light struct {
	Name      string    `toml:"name" yaml:"name"`
	Position  []float64 `toml:"position" yaml:"position"`
	Target    []float64 `toml:"target" yaml:"target"`
	Color     string    `toml:"color" yaml:"color"`
	Intensity float64   `toml:"intensity" yaml:"intensity"`

	// Angle is the cone half-angle in radians.
	Angle float64 `toml:"angle" yaml:"angle"`

	// Penumbra softens the cone edge, 0 is a hard edge.
	Penumbra float64 `toml:"penumbra" yaml:"penumbra"`
}

// Default returns the configuration of the original scene.
func Default() *Config {
	return &Config{
		Window: Window{
			Title:  "oxy-refract",
			Width:  1280,
			Height: 720,
		},
		Renderer: Renderer{
			PresentMode: "vsync",
			MSAA:        4,
			ClearColor:  "black",
			Exposure:    1.5,
		},
		Scene: Scene{
			Instances:    24,
			Title:        []string{"Not an", "application", "Just a demo"},
			GlyphSize:    2.2,
			CopyRadius:   20,
			EnvIntensity: 1,
		},
		Camera: Camera{
			Position: []float64{0, 0, 15},
			Fov:      75,
			Near:     0.1,
			Far:      100,
		},
		Assets: Assets{
			MaxTextureSize: 2048,
		},
		Lights: DefaultLights(),
	}
}

// DefaultLights returns the three spot lights of the original scene.
func DefaultLights() []Light {
	return []Light{
		{Name: "key", Position: []float64{50, 30, -50}, Target: []float64{0, 0, 0}, Color: "white", Intensity: 4, Angle: math.Pi / 3},
		{Name: "fill", Position: []float64{-30, 10, 30}, Target: []float64{0, 0, 0}, Color: "orange", Intensity: 4, Angle: math.Pi / 4},
		{Name: "top", Position: []float64{-5, 50, 30}, Target: []float64{0, 0, 0}, Color: "orange", Intensity: 4, Angle: math.Pi / 4},
	}
}

// Validate checks every field and reports all problems at once. Each problem wraps ErrInvalid.
//
// Returns:
//   - error: nil when the configuration is usable
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		fail("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}

	switch strings.ToLower(c.Renderer.PresentMode) {
	case "vsync", "uncapped":
	default:
		fail("renderer.present_mode must be vsync or uncapped, got %q", c.Renderer.PresentMode)
	}
	switch c.Renderer.MSAA {
	case 1, 4, 8, 16:
	default:
		fail("renderer.msaa must be 1, 4, 8 or 16, got %d", c.Renderer.MSAA)
	}
	if _, err := ParseColor(c.Renderer.ClearColor); err != nil {
		fail("renderer.clear_color: %v", err)
	}
	if !(c.Renderer.Exposure > 0) {
		fail("renderer.exposure must be positive, got %g", c.Renderer.Exposure)
	}

	if c.Scene.Instances < 0 {
		fail("scene.instances must not be negative, got %d", c.Scene.Instances)
	}
	if len(c.Scene.Title) == 0 {
		fail("scene.title needs at least one line")
	}
	for i, line := range c.Scene.Title {
		if strings.TrimSpace(line) == "" {
			fail("scene.title line %d is blank", i)
		}
	}
	if !(c.Scene.GlyphSize > 0) {
		fail("scene.glyph_size must be positive, got %g", c.Scene.GlyphSize)
	}
	if !(c.Scene.CopyRadius > 0) {
		fail("scene.copy_radius must be positive, got %g", c.Scene.CopyRadius)
	}
	if c.Scene.EnvIntensity < 0 {
		fail("scene.env_intensity must not be negative, got %g", c.Scene.EnvIntensity)
	}
	if c.Scene.Workers < 0 {
		fail("scene.workers must not be negative, got %d", c.Scene.Workers)
	}

	if len(c.Camera.Position) != 3 {
		fail("camera.position needs 3 components, got %d", len(c.Camera.Position))
	}
	if !(c.Camera.Fov > 0 && c.Camera.Fov < 180) {
		fail("camera.fov must be in (0, 180), got %g", c.Camera.Fov)
	}
	if !(c.Camera.Near > 0 && c.Camera.Near < c.Camera.Far) {
		fail("camera clip range must satisfy 0 < near < far, got %g..%g", c.Camera.Near, c.Camera.Far)
	}

	if c.Assets.MaxTextureSize < 0 {
		fail("assets.max_texture_size must not be negative, got %d", c.Assets.MaxTextureSize)
	}

	if len(c.Lights) > light.MaxGPULights {
		fail("at most %d lights are supported, got %d", light.MaxGPULights, len(c.Lights))
	}
	seen := make(map[string]bool, len(c.Lights))
	for i, l := range c.Lights {
		name := l.Name
		if name == "" {
			name = fmt.Sprintf("#%d", i)
		} else if seen[name] {
			fail("light %q is declared twice", name)
		}
		seen[l.Name] = true
		if len(l.Position) != 3 {
			fail("light %s: position needs 3 components, got %d", name, len(l.Position))
		}
		if l.Target != nil && len(l.Target) != 3 {
			fail("light %s: target needs 3 components, got %d", name, len(l.Target))
		}
		if _, err := ParseColor(l.Color); err != nil {
			fail("light %s: %v", name, err)
		}
		if l.Intensity < 0 {
			fail("light %s: intensity must not be negative, got %g", name, l.Intensity)
		}
		if !(l.Angle > 0 && l.Angle <= math.Pi/2) {
			fail("light %s: angle must be in (0, pi/2], got %g", name, l.Angle)
		}
		if l.Penumbra < 0 || l.Penumbra > 1 {
			fail("light %s: penumbra must be in [0, 1], got %g", name, l.Penumbra)
		}
	}

	return errors.Join(errs...)
}

// SpotLights converts the configured lights into scene lights with linear colors.
//
// Returns:
//   - []light.Light: one spot light per entry, in order
//   - error: an error if a color cannot be parsed
func (c *Config) SpotLights() ([]light.Light, error) {
	out := make([]light.Light, 0, len(c.Lights))
	for _, l := range c.Lights {
		rgb, err := ParseColor(l.Color)
		if err != nil {
			return nil, fmt.Errorf("light %q: %w", l.Name, err)
		}
		lin := SRGBToLinear(rgb)
		pos := vec3(l.Position)
		target := vec3(l.Target)
		out = append(out, light.NewSpotLight(
			light.WithPosition(pos[0], pos[1], pos[2]),
			light.WithTarget(target[0], target[1], target[2]),
			light.WithColor(lin[0], lin[1], lin[2]),
			light.WithIntensity(float32(l.Intensity)),
			light.WithAngle(float32(l.Angle)),
			light.WithPenumbra(float32(l.Penumbra)),
		))
	}
	return out, nil
}

// CameraPosition returns the camera position as float32, or the origin when malformed.
func (c *Config) CameraPosition() [3]float32 {
	return vec3(c.Camera.Position)
}

// ClearColorLinear returns the parsed clear color in linear space, black when unparseable.
func (c *Config) ClearColorLinear() [3]float32 {
	rgb, err := ParseColor(c.Renderer.ClearColor)
	if err != nil {
		return [3]float32{}
	}
	return SRGBToLinear(rgb)
}

func vec3(v []float64) [3]float32 {
	if len(v) != 3 {
		return [3]float32{}
	}
	return [3]float32{float32(v[0]), float32(v[1]), float32(v[2])}
}
