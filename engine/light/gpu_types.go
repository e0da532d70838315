package light

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// MaxGPULights is the number of spot lights the lighting storage buffer holds.
// Lights beyond the cap, and disabled lights, are not uploaded.
const MaxGPULights = 16

// GPUSpotLightSource is the canonical WGSL definition of the SpotLight struct.
// Matches GPUSpotLight layout exactly (48 bytes).
//
//go:embed assets/spot_light.wgsl
var GPUSpotLightSource string

// GPUSpotLight is the GPU-aligned representation of a single spot light.
// Matches the WGSL SpotLight struct layout exactly (see GPUSpotLightSource).
// Size: 48 bytes.
type GPUSpotLight struct {
	Position  [3]float32 // offset  0: world-space position
	Intensity float32    // offset 12: scalar multiplier
	Direction [3]float32 // offset 16: normalized cone axis
	CosCutoff float32    // offset 28: cos(cone half-angle)
	Color     [3]float32 // offset 32: linear RGB color
	Penumbra  float32    // offset 44: soft edge fraction of the cone
}

// Size returns the size of the GPUSpotLight struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (48)
func (g *GPUSpotLight) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUSpotLight struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 48-byte buffer ready for GPU upload
func (g *GPUSpotLight) Marshal() []byte {
	return g.appendTo(make([]byte, 0, 48))
}

func (g *GPUSpotLight) appendTo(buf []byte) []byte {
	put := func(v float32) {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
	}
	for _, v := range g.Position {
		put(v)
	}
	put(g.Intensity)
	for _, v := range g.Direction {
		put(v)
	}
	put(g.CosCutoff)
	for _, v := range g.Color {
		put(v)
	}
	put(g.Penumbra)
	return buf
}

// GPULightHeaderSource is the canonical WGSL definition of the LightHeader struct.
// Matches GPULightHeader layout exactly (16 bytes).
//
//go:embed assets/light_header.wgsl
var GPULightHeaderSource string

// GPULightHeader is the uniform that tells the fragment shader how many entries of the
// spot light storage buffer are valid.
// Size: 16 bytes (u32 + padding).
type GPULightHeader struct {
	LightCount uint32    // offset 0: number of valid spot lights
	_pad       [3]uint32 // offset 4: padding to 16 bytes
}

// Size returns the size of the GPULightHeader struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (16)
func (h *GPULightHeader) Size() int {
	return int(unsafe.Sizeof(*h))
}

// Marshal serializes the GPULightHeader struct into a byte buffer suitable for
// GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload
func (h *GPULightHeader) Marshal() []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[0:4], h.LightCount)
	return buf
}

// MarshalLights converts the enabled lights, up to MaxGPULights, into the header uniform and the
// storage buffer body.
//
// Parameters:
//   - lights: the scene's lights in priority order
//
// Returns:
//   - GPULightHeader: the header with the uploaded light count
//   - []byte: 48 bytes per uploaded light
func MarshalLights(lights []Light) (GPULightHeader, []byte) {
	body := make([]byte, 0, MaxGPULights*48)
	var count uint32
	for _, l := range lights {
		if count == MaxGPULights {
			break
		}
		if l == nil || !l.Enabled() {
			continue
		}
		g := l.ToGPU()
		body = g.appendTo(body)
		count++
	}
	return GPULightHeader{LightCount: count}, body
}
