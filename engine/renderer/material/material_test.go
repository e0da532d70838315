package material

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-refract/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatAt(b []byte, i int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
}

func TestNewMaterialDefaults(t *testing.T) {
	t.Parallel()

	m := NewMaterial(KindPhysical)

	assert.Equal(t, "physical", m.Name())
	assert.Equal(t, [4]float32{1, 1, 1, 1}, m.BaseColor())
	assert.Equal(t, float32(1), m.Roughness())
	assert.Zero(t, m.Metalness())
	assert.True(t, m.ToneMapped())
	assert.False(t, m.Transparent())
	assert.Equal(t, SideFront, m.Side())
	assert.Equal(t, "physical_front", m.PipelineKey())
	assert.Equal(t, RenderState{Cull: wgpu.CullModeBack}, m.RenderState())
}

func TestBackfaceDefaultsToBackSide(t *testing.T) {
	t.Parallel()

	m := NewMaterial(KindBackface)

	assert.Equal(t, SideBack, m.Side())
	assert.Equal(t, wgpu.CullModeFront, m.RenderState().Cull)
	assert.False(t, m.Transparent())
	assert.Nil(t, m.Uniform())
	assert.Equal(t, "backface_back", m.PipelineKey())
}

func TestTransparent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		m    Material
		want bool
	}{
		{"opaque physical", NewMaterial(KindPhysical), false},
		{"partial opacity", NewMaterial(KindPhysical, WithOpacity(0.3)), true},
		{"transmission", NewMaterial(KindPhysical, WithTransmission(0.9)), true},
		{"forced", NewMaterial(KindUnlit, WithTransparent(true)), true},
		{"refraction", NewMaterial(KindRefraction), true},
		{"backface ignores opacity", NewMaterial(KindBackface, WithOpacity(0.5)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.m.Transparent())
			assert.Equal(t, tt.want, tt.m.RenderState().Blend)
		})
	}
}

func TestPipelineKeySharedByEqualState(t *testing.T) {
	t.Parallel()

	black := NewMaterial(KindPhysical, WithName("black"), WithMetalness(1), WithRoughness(0.2))
	gray := NewMaterial(KindPhysical, WithName("gray"), WithMetalness(0.2), WithRoughness(0.8))
	glass := NewMaterial(KindPhysical, WithName("glass"), WithOpacity(0.3))
	text := NewMaterial(KindUnlit, WithSide(SideDouble), WithTransparent(true))

	assert.Equal(t, black.PipelineKey(), gray.PipelineKey())
	assert.Equal(t, "physical_front_blend", glass.PipelineKey())
	assert.Equal(t, "unlit_double_blend", text.PipelineKey())
	assert.Equal(t, wgpu.CullModeNone, text.RenderState().Cull)
}

func TestPhysicalUniformLayout(t *testing.T) {
	t.Parallel()

	// Arrange
	m := NewMaterial(KindPhysical,
		WithBaseColor([4]float32{0.5, 0.4, 0.1, 1}),
		WithMetalness(0.4),
		WithRoughness(1),
		WithClearcoat(1, 0.25),
		WithTransmission(0.9),
		WithToneMapped(false),
		WithEnvIntensity(2),
	)

	// Act
	b := m.Uniform()

	// Assert
	require.Len(t, b, 48)
	assert.Equal(t, float32(0.5), floatAt(b, 0))
	assert.Equal(t, float32(1), floatAt(b, 3))
	assert.Equal(t, float32(0.4), floatAt(b, 4))
	assert.Equal(t, float32(1), floatAt(b, 5))
	assert.Equal(t, float32(1), floatAt(b, 6))
	assert.Equal(t, float32(0.25), floatAt(b, 7))
	assert.Equal(t, float32(0.9), floatAt(b, 8))
	assert.Equal(t, float32(0), floatAt(b, 9))
	assert.Equal(t, float32(2), floatAt(b, 10))
}

func TestUnlitUniformLayout(t *testing.T) {
	t.Parallel()

	m := NewMaterial(KindUnlit, WithBaseColor([4]float32{1, 0, 0, 1}), WithAlphaTest(0.5))

	b := m.Uniform()

	require.Len(t, b, 32)
	assert.Equal(t, float32(1), floatAt(b, 0))
	assert.Equal(t, float32(1), floatAt(b, 4))
	assert.Equal(t, float32(0.5), floatAt(b, 5))
}

func TestRefractionResolution(t *testing.T) {
	t.Parallel()

	// Arrange
	provider := bind_group_provider.NewBindGroupProvider("refraction")
	m := NewMaterial(KindRefraction, WithBindGroupProvider(provider))
	_, _ = m.StagedWrite()

	// Act
	m.SetResolution(0, 600)
	ignored := m.Dirty()
	m.SetResolution(800, 600)

	// Assert
	assert.False(t, ignored)
	assert.True(t, m.Dirty())
	assert.Equal(t, [2]float32{800, 600}, m.Resolution())
	w, ok := m.StagedWrite()
	require.True(t, ok)
	assert.Equal(t, ParamsBinding, w.Binding)
	assert.Same(t, provider, w.Provider)
	require.Len(t, w.Data, 16)
	assert.Equal(t, float32(800), floatAt(w.Data, 0))
	assert.Equal(t, float32(600), floatAt(w.Data, 1))
	assert.False(t, m.Dirty())
}

func TestStagedWrite(t *testing.T) {
	t.Parallel()

	// Arrange
	m := NewMaterial(KindUnlit)

	// Act: no provider yet
	_, ok := m.StagedWrite()

	// Assert
	assert.False(t, ok)
	assert.True(t, m.Dirty())

	m.SetBindGroupProvider(bind_group_provider.NewBindGroupProvider("text"))
	_, ok = m.StagedWrite()
	assert.True(t, ok)
	_, ok = m.StagedWrite()
	assert.False(t, ok)

	m.SetBaseColor([4]float32{1, 1, 1, 0.5})
	w, ok := m.StagedWrite()
	assert.True(t, ok)
	assert.Equal(t, float32(0.5), floatAt(w.Data, 3))

	back := NewMaterial(KindBackface, WithBindGroupProvider(bind_group_provider.NewBindGroupProvider("backface")))
	_, ok = back.StagedWrite()
	assert.False(t, ok)
	assert.False(t, back.Dirty())
}

func TestOptionsClamp(t *testing.T) {
	t.Parallel()

	m := NewMaterial(KindPhysical, WithMetalness(2), WithRoughness(-1), WithOpacity(3), WithEnvIntensity(-2))

	assert.Equal(t, float32(1), m.Metalness())
	assert.Zero(t, m.Roughness())
	assert.Equal(t, float32(1), m.BaseColor()[3])
	assert.Zero(t, m.EnvIntensity())
}

func TestGPUParamSizes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 48, (&GPUPhysicalParams{}).Size())
	assert.Equal(t, 16, (&GPURefractionParams{}).Size())
	assert.Equal(t, 32, (&GPUUnlitParams{}).Size())
}

func TestKindAndSideStrings(t *testing.T) {
	t.Parallel()

	for _, k := range Kinds {
		assert.NotEmpty(t, k.Source(), k.String())
	}
	assert.Equal(t, "Kind(9)", Kind(9).String())
	assert.Empty(t, Kind(9).Source())
	assert.Equal(t, "Side(7)", Side(7).String())
	assert.Equal(t, wgpu.CullModeNone, SideDouble.CullMode())
}
