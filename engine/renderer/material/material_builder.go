package material

import (
	"github.com/Carmen-Shannon/oxy-refract/engine/renderer/bind_group_provider"
)

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithSide is an option builder that sets which faces are rasterised.
//
// Parameters:
//   - side: the side to draw
//
// Returns:
//   - MaterialBuilderOption: a function that applies the side option to a material
func WithSide(side Side) MaterialBuilderOption {
	return func(m *material) {
		m.side = side
	}
}

// WithBaseColor is an option builder that sets the linear RGBA base color. Alpha is the opacity.
//
// Parameters:
//   - color: the base color as RGBA float32 values
//
// Returns:
//   - MaterialBuilderOption: a function that applies the base color option to a material
func WithBaseColor(color [4]float32) MaterialBuilderOption {
	return func(m *material) {
		m.baseColor = color
	}
}

// WithOpacity is an option builder that sets the alpha of the base color.
//
// Parameters:
//   - opacity: the opacity in [0, 1]
//
// Returns:
//   - MaterialBuilderOption: a function that applies the opacity option to a material
func WithOpacity(opacity float32) MaterialBuilderOption {
	return func(m *material) {
		m.baseColor[3] = clamp01(opacity)
	}
}

// WithMetalness is an option builder that sets the metalness factor (0 = dielectric, 1 = metal).
//
// Parameters:
//   - metalness: the metalness factor
//
// Returns:
//   - MaterialBuilderOption: a function that applies the metalness option to a material
func WithMetalness(metalness float32) MaterialBuilderOption {
	return func(m *material) {
		m.metalness = clamp01(metalness)
	}
}

// WithRoughness is an option builder that sets the roughness factor (0 = smooth, 1 = rough).
//
// Parameters:
//   - roughness: the roughness factor
//
// Returns:
//   - MaterialBuilderOption: a function that applies the roughness option to a material
func WithRoughness(roughness float32) MaterialBuilderOption {
	return func(m *material) {
		m.roughness = clamp01(roughness)
	}
}

// WithClearcoat is an option builder that adds a clear lacquer layer over the base surface.
//
// Parameters:
//   - clearcoat: the clearcoat strength in [0, 1]
//   - roughness: the clearcoat roughness in [0, 1]
//
// Returns:
//   - MaterialBuilderOption: a function that applies the clearcoat option to a material
func WithClearcoat(clearcoat, roughness float32) MaterialBuilderOption {
	return func(m *material) {
		m.clearcoat = clamp01(clearcoat)
		m.clearcoatRoughness = clamp01(roughness)
	}
}

// WithTransmission is an option builder that sets how much of the environment shows through the surface.
//
// Parameters:
//   - transmission: the transmission factor in [0, 1]
//
// Returns:
//   - MaterialBuilderOption: a function that applies the transmission option to a material
func WithTransmission(transmission float32) MaterialBuilderOption {
	return func(m *material) {
		m.transmission = clamp01(transmission)
	}
}

// WithEnvIntensity scales the environment map contribution.
func WithEnvIntensity(intensity float32) MaterialBuilderOption {
	return func(m *material) {
		m.envIntensity = max(intensity, 0)
	}
}

// WithToneMapped is an option builder that toggles exposure and tone mapping of the output.
//
// Parameters:
//   - toneMapped: false to write the shaded color untouched
//
// Returns:
//   - MaterialBuilderOption: a function that applies the tone mapping option to a material
func WithToneMapped(toneMapped bool) MaterialBuilderOption {
	return func(m *material) {
		m.toneMapped = toneMapped
	}
}

// WithTransparent forces alpha blending even for opaque colors.
func WithTransparent(transparent bool) MaterialBuilderOption {
	return func(m *material) {
		m.transparent = transparent
	}
}

// WithAlphaTest is an option builder that sets the alpha below which unlit fragments are discarded.
//
// Parameters:
//   - threshold: the cutoff in [0, 1]
//
// Returns:
//   - MaterialBuilderOption: a function that applies the alpha test option to a material
func WithAlphaTest(threshold float32) MaterialBuilderOption {
	return func(m *material) {
		m.alphaTest = clamp01(threshold)
	}
}

// WithBindGroupProvider is an option builder that sets the bind group provider for the material.
//
// Parameters:
//   - provider: the bind group provider containing GPU resources for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the bind group provider option to a material
func WithBindGroupProvider(provider bind_group_provider.BindGroupProvider) MaterialBuilderOption {
	return func(m *material) {
		m.bindGroupProvider = provider
	}
}

func clamp01(v float32) float32 {
	return min(max(v, 0), 1)
}
