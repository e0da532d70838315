// Package text rasterises single lines of title text into textures that are drawn on quads.
package text

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/Carmen-Shannon/oxy-refract/common"
	"github.com/go-fonts/latin-modern/lmsans10bold"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// ErrEmptyLine is returned when a line has no visible characters.
var ErrEmptyLine = errors.New("text: empty line")

const (
	defaultPixelsPerUnit = 64
	defaultGlyphSize     = 1
	defaultPadding       = 4

	// maxTextureSide keeps a single line inside the default WebGPU texture limit.
	maxTextureSide = 8192
)

// Label is one rasterised line: white glyph coverage in the alpha channel and the quad size
// that shows it at the requested glyph size.
type Label struct {
	// Text is the line that was rasterised.
	Text string

	// Image holds non-premultiplied RGBA pixels.
	Image *common.TextureStagingData

	// Width and Height are the quad size in world units.
	Width, Height float32

	// Baseline is the distance from the bottom edge of the quad up to the text baseline in world units.
	Baseline float32
}

// rasterizer is the implementation of the Rasterizer interface.
type rasterizer struct {
	fontData      []byte
	glyphSize     float32
	pixelsPerUnit float64
	padding       int
	color         color.NRGBA

	face font.Face
}

// Rasterizer turns lines of text into textured quad data using an OpenType face.
type Rasterizer interface {
	// Rasterize draws one line of text.
	//
	// Parameters:
	//   - line: the text, surrounding whitespace is kept but a blank line is rejected
	//
	// Returns:
	//   - *Label: the pixels and world-space quad size
	//   - error: ErrEmptyLine for blank input, or an error if the line is too wide to fit a texture
	Rasterize(line string) (*Label, error)

	// GlyphSize returns the em size in world units.
	GlyphSize() float32

	// PixelsPerUnit returns the texture resolution per world unit.
	PixelsPerUnit() float64

	// Close releases the font face.
	Close() error
}

var _ Rasterizer = &rasterizer{}

// NewRasterizer parses the font and creates a face sized for the glyph size and resolution.
// The default font is Latin Modern Sans bold.
//
// Parameters:
//   - options: variadic list of RasterizerBuilderOption functions
//
// Returns:
//   - Rasterizer: the rasterizer
//   - error: an error if the font cannot be parsed or the face cannot be created
func NewRasterizer(options ...RasterizerBuilderOption) (Rasterizer, error) {
	r := &rasterizer{
		fontData:      lmsans10bold.TTF,
		glyphSize:     defaultGlyphSize,
		pixelsPerUnit: defaultPixelsPerUnit,
		padding:       defaultPadding,
		color:         color.NRGBA{R: 255, G: 255, B: 255, A: 255},
	}
	for _, opt := range options {
		opt(r)
	}

	f, err := opentype.Parse(r.fontData)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	r.face, err = opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(r.glyphSize) * r.pixelsPerUnit,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face: %w", err)
	}
	return r, nil
}

func (r *rasterizer) GlyphSize() float32 {
	return r.glyphSize
}

func (r *rasterizer) PixelsPerUnit() float64 {
	return r.pixelsPerUnit
}

func (r *rasterizer) Close() error {
	return r.face.Close()
}

func (r *rasterizer) Rasterize(line string) (*Label, error) {
	if strings.TrimSpace(line) == "" {
		return nil, ErrEmptyLine
	}

	metrics := r.face.Metrics()
	ascent := metrics.Ascent.Ceil()
	descent := metrics.Descent.Ceil()
	advance := font.MeasureString(r.face, line).Ceil()

	w := advance + 2*r.padding
	h := ascent + descent + 2*r.padding
	if w > maxTextureSide || h > maxTextureSide {
		return nil, fmt.Errorf("text: line %q needs %dx%d pixels, limit is %d", line, w, h, maxTextureSide)
	}

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(r.color),
		Face: r.face,
		Dot:  fixed.P(r.padding, r.padding+ascent),
	}
	d.DrawString(line)

	return &Label{
		Text: line,
		Image: &common.TextureStagingData{
			Pixels: img.Pix,
			Width:  uint32(w),
			Height: uint32(h),
		},
		Width:    float32(float64(w) / r.pixelsPerUnit),
		Height:   float32(float64(h) / r.pixelsPerUnit),
		Baseline: float32(float64(descent+r.padding) / r.pixelsPerUnit),
	}, nil
}
