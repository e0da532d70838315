// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/anthonynsimon/bild/transform"
	"github.com/cogentcore/webgpu/wgpu"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// TextureStagingData holds RGBA pixel data for a texture binding pending GPU upload.
// This is primarily used in the BindGroupProvider to stage texture data before creating the GPU texture and bind group.
type TextureStagingData struct {
	// Pixels is the pixel data in RGBA format, 4 bytes per pixel, row-major.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
}

// Aspect returns width / height, or 0 for an empty texture.
func (t *TextureStagingData) Aspect() float32 {
	if t == nil || t.Height == 0 {
		return 0
	}
	return float32(t.Width) / float32(t.Height)
}

// SamplerStagingData holds the configuration for a sampler binding pending GPU creation.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range.
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail.
	LodMinClamp, LodMaxClamp float32
	// Compare specifies the comparison function for comparison samplers.
	Compare wgpu.CompareFunction
	// MaxAnisotropy specifies the maximum anisotropy level.
	MaxAnisotropy uint16
}

// LinearClampSampler returns sampler staging data for bilinear filtering with clamped edges.
// Screen-space lookups (refraction offsets) rely on the clamp.
func LinearClampSampler() *SamplerStagingData {
	return &SamplerStagingData{
		AddressModeU: wgpu.AddressModeClampToEdge,
		AddressModeV: wgpu.AddressModeClampToEdge,
		AddressModeW: wgpu.AddressModeClampToEdge,
		MagFilter:    wgpu.FilterModeLinear,
		MinFilter:    wgpu.FilterModeLinear,
		MipmapFilter: wgpu.MipmapFilterModeLinear,
		LodMaxClamp:  32,
	}
}

// LinearRepeatSampler returns sampler staging data for bilinear filtering that wraps horizontally,
// which suits equirectangular environment maps.
func LinearRepeatSampler() *SamplerStagingData {
	s := LinearClampSampler()
	s.AddressModeU = wgpu.AddressModeRepeat
	return s
}

// DecodeImage decodes a PNG, JPEG, BMP or WebP stream into RGBA staging data. When maxDim is positive and
// either side of the image exceeds it, the image is downscaled to fit while keeping its aspect ratio.
//
// Parameters:
//   - r: the encoded image stream
//   - maxDim: largest allowed width or height, 0 for no limit
//
// Returns:
//   - *TextureStagingData: the decoded pixels
//   - error: error if decoding fails
func DecodeImage(r io.Reader, maxDim int) (*TextureStagingData, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return ImageToStaging(img, maxDim), nil
}

// DecodeImageFile opens path and decodes it with DecodeImage.
//
// Parameters:
//   - path: image file path
//   - maxDim: largest allowed width or height, 0 for no limit
//
// Returns:
//   - *TextureStagingData: the decoded pixels
//   - error: error if the file cannot be opened or decoded
func DecodeImageFile(path string, maxDim int) (*TextureStagingData, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file %s: %w", path, err)
	}
	defer file.Close()

	data, err := DecodeImage(file, maxDim)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}

// ImageToStaging converts any image to tightly packed RGBA staging data, downscaling it first when
// maxDim is positive and exceeded.
func ImageToStaging(img image.Image, maxDim int) *TextureStagingData {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if maxDim > 0 && (w > maxDim || h > maxDim) {
		if w >= h {
			h = max(1, h*maxDim/w)
			w = maxDim
		} else {
			w = max(1, w*maxDim/h)
			h = maxDim
		}
		img = transform.Resize(img, w, h, transform.Linear)
		bounds = img.Bounds()
	}

	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	return &TextureStagingData{
		Pixels: rgba.Pix,
		Width:  uint32(rgba.Bounds().Dx()),
		Height: uint32(rgba.Bounds().Dy()),
	}
}
