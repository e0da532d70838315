package text

import "image/color"

// RasterizerBuilderOption is a functional option used to configure a Rasterizer during construction.
type RasterizerBuilderOption func(*rasterizer)

// WithFontData replaces the default face with an OpenType or TrueType font.
//
// Parameters:
//   - data: the raw font file bytes
//
// Returns:
//   - RasterizerBuilderOption: a function that applies the font option to a rasterizer
func WithFontData(data []byte) RasterizerBuilderOption {
	return func(r *rasterizer) {
		if len(data) > 0 {
			r.fontData = data
		}
	}
}

// WithGlyphSize sets the em size in world units. Non-positive values are ignored.
//
// Parameters:
//   - size: the glyph size, 2.2 for the demo titles
//
// Returns:
//   - RasterizerBuilderOption: a function that applies the glyph size option to a rasterizer
func WithGlyphSize(size float32) RasterizerBuilderOption {
	return func(r *rasterizer) {
		if size > 0 {
			r.glyphSize = size
		}
	}
}

// WithPixelsPerUnit sets the texture resolution per world unit. Non-positive values are ignored.
func WithPixelsPerUnit(ppu float64) RasterizerBuilderOption {
	return func(r *rasterizer) {
		if ppu > 0 {
			r.pixelsPerUnit = ppu
		}
	}
}

// WithPadding sets the transparent border in pixels around each line.
func WithPadding(px int) RasterizerBuilderOption {
	return func(r *rasterizer) {
		r.padding = max(px, 0)
	}
}

// WithColor sets the glyph color written into the texture.
func WithColor(c color.NRGBA) RasterizerBuilderOption {
	return func(r *rasterizer) {
		r.color = c
	}
}
