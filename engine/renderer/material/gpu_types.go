package material

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUPhysicalParamsSource is the canonical WGSL definition of the PhysicalParams struct.
// Matches GPUPhysicalParams layout exactly (48 bytes, std140 aligned).
//
//go:embed assets/physical_params.wgsl
var GPUPhysicalParamsSource string

// GPUPhysicalParams is the GPU-aligned uniform for the physical fragment shader.
// Size: 48 bytes.
type GPUPhysicalParams struct {
	BaseColor          [4]float32 // offset 0: linear RGB + opacity
	Metalness          float32    // offset 16
	Roughness          float32    // offset 20
	Clearcoat          float32    // offset 24
	ClearcoatRoughness float32    // offset 28
	Transmission       float32    // offset 32
	ToneMapped         float32    // offset 36: 1 when exposure and tone mapping apply
	EnvIntensity       float32    // offset 40
	_pad0              float32    // offset 44
}

// Size returns the size of the GPUPhysicalParams struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUPhysicalParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUPhysicalParams struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 48-byte buffer ready for GPU upload.
func (g *GPUPhysicalParams) Marshal() []byte {
	return putFloats(make([]byte, 48),
		g.BaseColor[0], g.BaseColor[1], g.BaseColor[2], g.BaseColor[3],
		g.Metalness, g.Roughness, g.Clearcoat, g.ClearcoatRoughness,
		g.Transmission, g.ToneMapped, g.EnvIntensity, 0,
	)
}

// GPURefractionParamsSource is the canonical WGSL definition of the RefractionParams struct.
// Matches GPURefractionParams layout exactly (16 bytes).
//
//go:embed assets/refraction_params.wgsl
var GPURefractionParamsSource string

// GPURefractionParams is the GPU-aligned uniform for the refraction shader.
// Size: 16 bytes.
type GPURefractionParams struct {
	Resolution [2]float32 // offset 0: surface size in pixels
	_pad0      float32    // offset 8
	_pad1      float32    // offset 12
}

// Size returns the size of the GPURefractionParams struct in bytes.
func (g *GPURefractionParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPURefractionParams struct into a byte buffer suitable for GPU upload.
func (g *GPURefractionParams) Marshal() []byte {
	return putFloats(make([]byte, 16), g.Resolution[0], g.Resolution[1], 0, 0)
}

// GPUUnlitParamsSource is the canonical WGSL definition of the UnlitParams struct.
// Matches GPUUnlitParams layout exactly (32 bytes).
//
//go:embed assets/unlit_params.wgsl
var GPUUnlitParamsSource string

// GPUUnlitParams is the GPU-aligned uniform for the unlit textured shader used by text and the background.
// Size: 32 bytes.
type GPUUnlitParams struct {
	Color      [4]float32 // offset 0: multiplied with the base texture
	ToneMapped float32    // offset 16
	AlphaTest  float32    // offset 20
	_pad0      float32    // offset 24
	_pad1      float32    // offset 28
}

// Size returns the size of the GPUUnlitParams struct in bytes.
func (g *GPUUnlitParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUUnlitParams struct into a byte buffer suitable for GPU upload.
func (g *GPUUnlitParams) Marshal() []byte {
	return putFloats(make([]byte, 32),
		g.Color[0], g.Color[1], g.Color[2], g.Color[3],
		g.ToneMapped, g.AlphaTest, 0, 0,
	)
}

func putFloats(buf []byte, values ...float32) []byte {
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func boolToFloat(b bool) float32 {
	if b {
		return 1
	}
	return 0
}
