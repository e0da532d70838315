package config

import (
	"bytes"
	"fmt"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/pelletier/go-toml/v2"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

// Marshal encodes the configuration in the given syntax. The output parses back to an equal Config.
//
// Parameters:
//   - format: the target syntax
//
// Returns:
//   - []byte: the encoded file
//   - error: ErrUnsupportedFormat for an unknown format, or an encoder error
func (c *Config) Marshal(format Format) ([]byte, error) {
	switch format {
	case FormatHCL:
		return c.marshalHCL(), nil
	case FormatTOML:
		var buf bytes.Buffer
		enc := toml.NewEncoder(&buf)
		enc.SetIndentTables(true)
		if err := enc.Encode(c); err != nil {
			return nil, fmt.Errorf("encode toml: %w", err)
		}
		return buf.Bytes(), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

func (c *Config) marshalHCL() []byte {
	f := hclwrite.NewEmptyFile()
	root := f.Body()

	w := root.AppendNewBlock("window", nil).Body()
	w.SetAttributeValue("title", cty.StringVal(c.Window.Title))
	w.SetAttributeValue("width", cty.NumberIntVal(int64(c.Window.Width)))
	w.SetAttributeValue("height", cty.NumberIntVal(int64(c.Window.Height)))
	root.AppendNewline()

	r := root.AppendNewBlock("renderer", nil).Body()
	r.SetAttributeValue("present_mode", cty.StringVal(c.Renderer.PresentMode))
	r.SetAttributeValue("msaa", cty.NumberIntVal(int64(c.Renderer.MSAA)))
	r.SetAttributeValue("clear_color", cty.StringVal(c.Renderer.ClearColor))
	r.SetAttributeValue("exposure", cty.NumberFloatVal(c.Renderer.Exposure))
	root.AppendNewline()

	s := root.AppendNewBlock("scene", nil).Body()
	s.SetAttributeValue("instances", cty.NumberIntVal(int64(c.Scene.Instances)))
	s.SetAttributeValue("seed", cty.NumberIntVal(c.Scene.Seed))
	s.SetAttributeValue("title", stringList(c.Scene.Title))
	s.SetAttributeValue("glyph_size", cty.NumberFloatVal(c.Scene.GlyphSize))
	s.SetAttributeValue("copy_radius", cty.NumberFloatVal(c.Scene.CopyRadius))
	s.SetAttributeValue("env_intensity", cty.NumberFloatVal(c.Scene.EnvIntensity))
	s.SetAttributeValue("workers", cty.NumberIntVal(int64(c.Scene.Workers)))
	root.AppendNewline()

	cam := root.AppendNewBlock("camera", nil).Body()
	cam.SetAttributeValue("position", numberList(c.Camera.Position))
	cam.SetAttributeValue("fov", cty.NumberFloatVal(c.Camera.Fov))
	cam.SetAttributeValue("near", cty.NumberFloatVal(c.Camera.Near))
	cam.SetAttributeValue("far", cty.NumberFloatVal(c.Camera.Far))
	root.AppendNewline()

	a := root.AppendNewBlock("assets", nil).Body()
	a.SetAttributeValue("font", cty.StringVal(c.Assets.Font))
	a.SetAttributeValue("environment", cty.StringVal(c.Assets.Environment))
	a.SetAttributeValue("background", cty.StringVal(c.Assets.Background))
	a.SetAttributeValue("max_texture_size", cty.NumberIntVal(int64(c.Assets.MaxTextureSize)))

	for _, l := range c.Lights {
		root.AppendNewline()
		b := root.AppendNewBlock("light", []string{l.Name}).Body()
		b.SetAttributeValue("position", numberList(l.Position))
		if l.Target != nil {
			b.SetAttributeValue("target", numberList(l.Target))
		}
		b.SetAttributeValue("color", cty.StringVal(l.Color))
		b.SetAttributeValue("intensity", cty.NumberFloatVal(l.Intensity))
		b.SetAttributeValue("angle", cty.NumberFloatVal(l.Angle))
		b.SetAttributeValue("penumbra", cty.NumberFloatVal(l.Penumbra))
	}

	return f.Bytes()
}

func numberList(v []float64) cty.Value {
	if len(v) == 0 {
		return cty.ListValEmpty(cty.Number)
	}
	vals := make([]cty.Value, len(v))
	for i, x := range v {
		vals[i] = cty.NumberFloatVal(x)
	}
	return cty.ListVal(vals)
}

func stringList(v []string) cty.Value {
	if len(v) == 0 {
		return cty.ListValEmpty(cty.String)
	}
	vals := make([]cty.Value, len(v))
	for i, x := range v {
		vals[i] = cty.StringVal(x)
	}
	return cty.ListVal(vals)
}
