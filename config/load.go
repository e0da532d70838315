package config

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/pelletier/go-toml/v2"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

// Format identifies a configuration file syntax.
type Format string

const (
	FormatHCL  Format = "hcl"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatOf picks the format from a file extension.
//
// Parameters:
//   - path: the file name or path
//
// Returns:
//   - Format: the detected format
//   - error: ErrUnsupportedFormat for any other extension
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		return FormatHCL, nil
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
}

// Load reads, decodes and validates a configuration file.
//
// Parameters:
//   - path: the file to read; the extension selects the syntax
//
// Returns:
//   - *Config: the defaults overlaid with the file's values
//   - error: an error if the file cannot be read, decoded or validated
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data, path)
}

// Parse decodes and validates configuration bytes.
//
// Parameters:
//   - data: the file contents
//   - filename: the name used for format detection and diagnostics
//
// Returns:
//   - *Config: the defaults overlaid with the decoded values
//   - error: an error if decoding or validation fails
func Parse(data []byte, filename string) (*Config, error) {
	format, err := FormatOf(filename)
	if err != nil {
		return nil, err
	}

	var cfg *Config
	switch format {
	case FormatHCL:
		cfg, err = decodeHCL(data, filename)
	case FormatTOML:
		cfg, err = decodeWith(func(c *Config) error {
			dec := toml.NewDecoder(bytes.NewReader(data))
			dec.DisallowUnknownFields()
			return dec.Decode(c)
		})
	case FormatYAML:
		cfg, err = decodeWith(func(c *Config) error {
			if len(bytes.TrimSpace(data)) == 0 {
				return nil
			}
			dec := yaml.NewDecoder(bytes.NewReader(data))
			dec.KnownFields(true)
			return dec.Decode(c)
		})
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filename, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decodeWith decodes onto the defaults. A file that lists lights replaces the default lights
// rather than merging into them.
func decodeWith(decode func(*Config) error) (*Config, error) {
	cfg := Default()
	cfg.Lights = nil
	if err := decode(cfg); err != nil {
		return nil, err
	}
	if cfg.Lights == nil {
		cfg.Lights = DefaultLights()
	}
	return cfg, nil
}

type hclFile struct {
	Window   *hclWindow   `hcl:"window,block"`
	Renderer *hclRenderer `hcl:"renderer,block"`
	Scene    *hclScene    `hcl:"scene,block"`
	Camera   *hclCamera   `hcl:"camera,block"`
	Assets   *hclAssets   `hcl:"assets,block"`
	Lights   []*hclLight  `hcl:"light,block"`
}

type hclWindow struct {
	Title  *string `hcl:"title,optional"`
	Width  *int    `hcl:"width,optional"`
	Height *int    `hcl:"height,optional"`
}

type hclRenderer struct {
	PresentMode *string  `hcl:"present_mode,optional"`
	MSAA        *int     `hcl:"msaa,optional"`
	ClearColor  *string  `hcl:"clear_color,optional"`
	Exposure    *float64 `hcl:"exposure,optional"`
}

type hclScene struct {
	Instances    *int     `hcl:"instances,optional"`
	Seed         *int64   `hcl:"seed,optional"`
	Title        []string `hcl:"title,optional"`
	GlyphSize    *float64 `hcl:"glyph_size,optional"`
	CopyRadius   *float64 `hcl:"copy_radius,optional"`
	EnvIntensity *float64 `hcl:"env_intensity,optional"`
	Workers      *int     `hcl:"workers,optional"`
}

type hclCamera struct {
	Position []float64 `hcl:"position,optional"`
	Fov      *float64  `hcl:"fov,optional"`
	Near     *float64  `hcl:"near,optional"`
	Far      *float64  `hcl:"far,optional"`
}

type hclAssets struct {
	Font           *string `hcl:"font,optional"`
	Environment    *string `hcl:"environment,optional"`
	Background     *string `hcl:"background,optional"`
	MaxTextureSize *int    `hcl:"max_texture_size,optional"`
}

type hclLight struct {
	Name      string    `hcl:"name,label"`
	Position  []float64 `hcl:"position"`
	Target    []float64 `hcl:"target,optional"`
	Color     *string   `hcl:"color,optional"`
	Intensity *float64  `hcl:"intensity,optional"`
	Angle     *float64  `hcl:"angle,optional"`
	Penumbra  *float64  `hcl:"penumbra,optional"`
}

// hclEvalContext exposes pi so light angles can be written as fractions of it.
func hclEvalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"pi": cty.NumberFloatVal(math.Pi),
		},
	}
}

func decodeHCL(data []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, diags
	}

	var file hclFile
	if diags := gohcl.DecodeBody(f.Body, hclEvalContext(), &file); diags.HasErrors() {
		return nil, diags
	}

	cfg := Default()
	if w := file.Window; w != nil {
		set(&cfg.Window.Title, w.Title)
		set(&cfg.Window.Width, w.Width)
		set(&cfg.Window.Height, w.Height)
	}
	if r := file.Renderer; r != nil {
		set(&cfg.Renderer.PresentMode, r.PresentMode)
		set(&cfg.Renderer.MSAA, r.MSAA)
		set(&cfg.Renderer.ClearColor, r.ClearColor)
		set(&cfg.Renderer.Exposure, r.Exposure)
	}
	if s := file.Scene; s != nil {
		set(&cfg.Scene.Instances, s.Instances)
		set(&cfg.Scene.Seed, s.Seed)
		set(&cfg.Scene.GlyphSize, s.GlyphSize)
		set(&cfg.Scene.CopyRadius, s.CopyRadius)
		set(&cfg.Scene.EnvIntensity, s.EnvIntensity)
		set(&cfg.Scene.Workers, s.Workers)
		if s.Title != nil {
			cfg.Scene.Title = s.Title
		}
	}
	if c := file.Camera; c != nil {
		set(&cfg.Camera.Fov, c.Fov)
		set(&cfg.Camera.Near, c.Near)
		set(&cfg.Camera.Far, c.Far)
		if c.Position != nil {
			cfg.Camera.Position = c.Position
		}
	}
	if a := file.Assets; a != nil {
		set(&cfg.Assets.Font, a.Font)
		set(&cfg.Assets.Environment, a.Environment)
		set(&cfg.Assets.Background, a.Background)
		set(&cfg.Assets.MaxTextureSize, a.MaxTextureSize)
	}
	if len(file.Lights) > 0 {
		cfg.Lights = make([]Light, 0, len(file.Lights))
		for _, hl := range file.Lights {
			l := Light{
				Name:      hl.Name,
				Position:  hl.Position,
				Target:    []float64{0, 0, 0},
				Color:     "white",
				Intensity: 1,
				Angle:     math.Pi / 3,
			}
			if hl.Target != nil {
				l.Target = hl.Target
			}
			set(&l.Color, hl.Color)
			set(&l.Intensity, hl.Intensity)
			set(&l.Angle, hl.Angle)
			set(&l.Penumbra, hl.Penumbra)
			cfg.Lights = append(cfg.Lights, l)
		}
	}
	return cfg, nil
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
