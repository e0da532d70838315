package material

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-refract/engine/renderer/bind_group_provider"
)

// ParamsBinding is the binding index of the material uniform within its bind group.
const ParamsBinding = 0

// material is the implementation of the Material interface.
type material struct {
	name string
	kind Kind
	side Side

	baseColor          [4]float32
	metalness          float32
	roughness          float32
	clearcoat          float32
	clearcoatRoughness float32
	transmission       float32
	envIntensity       float32
	toneMapped         bool
	transparent        bool
	alphaTest          float32
	resolution         [2]float32

	bindGroupProvider bind_group_provider.BindGroupProvider
	dirty             bool
}

// Material describes the surface a mesh is drawn with: the shader program, the uniform
// values it feeds that program, and the pipeline state it needs.
//
// Surface values are fixed at construction except for the base color and the refraction
// resolution, which track config reloads and window resizes. Any change marks the uniform
// dirty so the next StagedWrite uploads it.
type Material interface {
	// Name retrieves the material identifier.
	Name() string

	// Kind retrieves the shader program the material renders with.
	Kind() Kind

	// Side retrieves which faces are rasterised.
	Side() Side

	// BaseColor retrieves the linear RGBA base color. Alpha is the opacity.
	BaseColor() [4]float32

	Metalness() float32
	Roughness() float32
	Clearcoat() float32
	ClearcoatRoughness() float32
	Transmission() float32
	EnvIntensity() float32

	// ToneMapped reports whether exposure and ACES tone mapping apply to the output.
	ToneMapped() bool

	// AlphaTest retrieves the alpha below which unlit fragments are discarded.
	AlphaTest() float32

	// Transparent reports whether the material is alpha blended. Refraction is always
	// blended; other kinds blend when flagged, partially opaque, or transmissive.
	Transparent() bool

	// Resolution retrieves the surface size fed to the refraction program.
	Resolution() [2]float32

	// RenderState retrieves the cull and blend state the pipeline must use.
	RenderState() RenderState

	// PipelineKey retrieves the key of the pipeline that draws this material. Materials that
	// share a kind and render state share a pipeline.
	//
	// Returns:
	//   - string: the pipeline key, e.g. "physical_front_blend"
	PipelineKey() string

	// Uniform marshals the material's parameters for its program.
	//
	// Returns:
	//   - []byte: the uniform bytes, or nil for programs without a material uniform
	Uniform() []byte

	// SetBaseColor replaces the base color and marks the uniform dirty.
	//
	// Parameters:
	//   - color: linear RGBA
	SetBaseColor(color [4]float32)

	// SetResolution updates the surface size used by the refraction program.
	// Non-positive sizes are ignored.
	//
	// Parameters:
	//   - width: surface width in pixels
	//   - height: surface height in pixels
	SetResolution(width, height int)

	// BindGroupProvider retrieves the provider holding the material's uniform and textures.
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// SetBindGroupProvider sets the provider holding the material's uniform and textures.
	SetBindGroupProvider(provider bind_group_provider.BindGroupProvider)

	// Dirty reports whether the uniform changed since the last StagedWrite.
	Dirty() bool

	// StagedWrite returns the uniform upload and clears the dirty flag.
	//
	// Returns:
	//   - bind_group_provider.BufferWrite: a write of Uniform to ParamsBinding
	//   - bool: false when clean, when the kind has no uniform, or when no provider is set
	StagedWrite() (bind_group_provider.BufferWrite, bool)
}

var _ Material = &material{}

// NewMaterial creates a new Material for a program kind configured with the provided options.
// Defaults are an opaque white, dielectric, fully rough, tone-mapped surface drawn front side,
// except backface materials which default to the back side.
//
// Parameters:
//   - kind: the shader program
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(kind Kind, options ...MaterialBuilderOption) Material {
	m := &material{
		name:         kind.String(),
		kind:         kind,
		baseColor:    [4]float32{1, 1, 1, 1},
		roughness:    1,
		envIntensity: 1,
		toneMapped:   true,
		dirty:        true,
	}
	if kind == KindBackface {
		m.side = SideBack
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) Kind() Kind {
	return m.kind
}

func (m *material) Side() Side {
	return m.side
}

func (m *material) BaseColor() [4]float32 {
	return m.baseColor
}

func (m *material) Metalness() float32 {
	return m.metalness
}

func (m *material) Roughness() float32 {
	return m.roughness
}

func (m *material) Clearcoat() float32 {
	return m.clearcoat
}

func (m *material) ClearcoatRoughness() float32 {
	return m.clearcoatRoughness
}

func (m *material) Transmission() float32 {
	return m.transmission
}

func (m *material) EnvIntensity() float32 {
	return m.envIntensity
}

func (m *material) ToneMapped() bool {
	return m.toneMapped
}

func (m *material) AlphaTest() float32 {
	return m.alphaTest
}

func (m *material) Transparent() bool {
	switch m.kind {
	case KindRefraction:
		return true
	case KindBackface:
		return false
	}
	return m.transparent || m.baseColor[3] < 1 || m.transmission > 0
}

func (m *material) Resolution() [2]float32 {
	return m.resolution
}

func (m *material) RenderState() RenderState {
	return RenderState{
		Cull:  m.side.CullMode(),
		Blend: m.Transparent(),
	}
}

func (m *material) PipelineKey() string {
	key := fmt.Sprintf("%s_%s", m.kind, m.side)
	if m.Transparent() {
		key += "_blend"
	}
	return key
}

func (m *material) Uniform() []byte {
	switch m.kind {
	case KindPhysical:
		p := GPUPhysicalParams{
			BaseColor:          m.baseColor,
			Metalness:          m.metalness,
			Roughness:          m.roughness,
			Clearcoat:          m.clearcoat,
			ClearcoatRoughness: m.clearcoatRoughness,
			Transmission:       m.transmission,
			ToneMapped:         boolToFloat(m.toneMapped),
			EnvIntensity:       m.envIntensity,
		}
		return p.Marshal()
	case KindRefraction:
		p := GPURefractionParams{Resolution: m.resolution}
		return p.Marshal()
	case KindUnlit:
		p := GPUUnlitParams{
			Color:      m.baseColor,
			ToneMapped: boolToFloat(m.toneMapped),
			AlphaTest:  m.alphaTest,
		}
		return p.Marshal()
	default:
		return nil
	}
}

func (m *material) SetBaseColor(color [4]float32) {
	m.baseColor = color
	m.dirty = true
}

func (m *material) SetResolution(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	m.resolution = [2]float32{float32(width), float32(height)}
	m.dirty = true
}

func (m *material) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return m.bindGroupProvider
}

func (m *material) SetBindGroupProvider(provider bind_group_provider.BindGroupProvider) {
	m.bindGroupProvider = provider
	m.dirty = true
}

func (m *material) Dirty() bool {
	return m.dirty
}

func (m *material) StagedWrite() (bind_group_provider.BufferWrite, bool) {
	if !m.dirty || m.bindGroupProvider == nil {
		return bind_group_provider.BufferWrite{}, false
	}
	data := m.Uniform()
	if data == nil {
		m.dirty = false
		return bind_group_provider.BufferWrite{}, false
	}
	m.dirty = false
	return bind_group_provider.BufferWrite{
		Provider: m.bindGroupProvider,
		Binding:  ParamsBinding,
		Data:     data,
	}, true
}
