// Package environment builds the equirectangular map that lights physical materials. The map is either
// decoded from an image file or generated as a soft studio gradient, and carries a blurred mip chain so
// rough surfaces can sample a wider lobe from a lower level.
package environment

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/Carmen-Shannon/oxy-refract/common"
	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/transform"
	"github.com/chewxy/math32"
)

const (
	// SourceProcedural is the Source of a generated map.
	SourceProcedural = "procedural"

	defaultProceduralWidth = 512
	defaultBlurRadius      = 1.5
	minProceduralWidth     = 4
)

// Map is an equirectangular environment with its mip chain. Levels[0] is full resolution and every
// further level halves the previous one, rounding down with a minimum of 1, down to 1x1.
type Map struct {
	// Source is the file the map was decoded from, or SourceProcedural.
	Source string

	// Levels holds the RGBA8 sRGB pixels of every mip level.
	Levels []common.TextureStagingData
}

// Width returns the width of the base level in pixels.
func (m *Map) Width() uint32 {
	if m == nil || len(m.Levels) == 0 {
		return 0
	}
	return m.Levels[0].Width
}

// Height returns the height of the base level in pixels.
func (m *Map) Height() uint32 {
	if m == nil || len(m.Levels) == 0 {
		return 0
	}
	return m.Levels[0].Height
}

// Load decodes an image file as an equirectangular map.
//
// Parameters:
//   - path: the image file, any format common.DecodeImage accepts
//   - maxDim: largest allowed width or height of the base level, 0 for no limit
//
// Returns:
//   - *Map: the map with its mip chain
//   - error: error if the file cannot be read or decoded
func Load(path string, maxDim int) (*Map, error) {
	base, err := common.DecodeImageFile(path, maxDim)
	if err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	img := &image.RGBA{
		Pix:    base.Pixels,
		Stride: int(base.Width) * 4,
		Rect:   image.Rect(0, 0, int(base.Width), int(base.Height)),
	}
	return &Map{Source: path, Levels: BuildMips(img, defaultBlurRadius)}, nil
}

// Procedural generates a studio-like map: a bright ceiling fading to a grey horizon and a dark floor,
// with two soft box lights in front of and above the scene for highlights on metals.
//
// Parameters:
//   - width: base level width in pixels, height is half of it; values below 4 use the default of 512
//
// Returns:
//   - *Map: the generated map with its mip chain
func Procedural(width int) *Map {
	if width < minProceduralWidth {
		width = defaultProceduralWidth
	}
	height := width / 2

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			u := (float32(x) + 0.5) / float32(width)
			v := (float32(y) + 0.5) / float32(height)
			img.SetRGBA(x, y, studioColor(u, v))
		}
	}
	return &Map{Source: SourceProcedural, Levels: BuildMips(img, defaultBlurRadius)}
}

// BuildMips downsamples img to 1x1, blurring every level after the base.
//
// Parameters:
//   - img: the base level, copied and never modified
//   - blurRadius: the gaussian radius applied to each downsampled level, 0 to skip blurring
//
// Returns:
//   - []common.TextureStagingData: the base level followed by its mips
func BuildMips(img image.Image, blurRadius float64) []common.TextureStagingData {
	level := clone.AsRGBA(img)
	levels := []common.TextureStagingData{toStaging(level)}

	w, h := level.Bounds().Dx(), level.Bounds().Dy()
	for w > 1 || h > 1 {
		w, h = max(w/2, 1), max(h/2, 1)
		level = transform.Resize(level, w, h, transform.Linear)
		if blurRadius > 0 {
			level = blur.Gaussian(level, blurRadius)
		}
		levels = append(levels, toStaging(level))
	}
	return levels
}

func toStaging(img *image.RGBA) common.TextureStagingData {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	pix := make([]byte, w*h*4)
	for y := range h {
		copy(pix[y*w*4:(y+1)*w*4], img.Pix[y*img.Stride:][:w*4])
	}
	return common.TextureStagingData{Pixels: pix, Width: uint32(w), Height: uint32(h)}
}

// studioColor returns the sRGB color at equirect coordinates u, v in [0, 1].
func studioColor(u, v float32) color.RGBA {
	// elevation: 1 straight up, -1 straight down
	elevation := math32.Cos(v * math32.Pi)

	var l float32
	if elevation >= 0 {
		l = lerp(0.35, 1.0, smoothstep(0, 1, elevation))
	} else {
		l = lerp(0.35, 0.04, smoothstep(0, 0.3, -elevation))
	}

	// azimuth 0.75 faces -z, matching atan2(z, x) in the shaders
	l += softbox(u, v, 0.75, 0.3, 0.08, 0.06) * 2.5
	l += softbox(u, v, 0.25, 0.15, 0.12, 0.05) * 1.5

	c := uint8(math.Round(float64(min(linearToSRGB(l), 1)) * 255))
	return color.RGBA{R: c, G: c, B: c, A: 255}
}

func softbox(u, v, cu, cv, hw, hh float32) float32 {
	du := math32.Abs(u - cu)
	du = min(du, 1-du)
	dv := math32.Abs(v - cv)
	return (1 - smoothstep(hw*0.6, hw, du)) * (1 - smoothstep(hh*0.6, hh, dv))
}

func linearToSRGB(l float32) float32 {
	if l <= 0.0031308 {
		return l * 12.92
	}
	return 1.055*math32.Pow(l, 1/2.4) - 0.055
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

func smoothstep(e0, e1, x float32) float32 {
	t := min(max((x-e0)/(e1-e0), 0), 1)
	return t * t * (3 - 2*t)
}
