package shader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeStructSizes(t *testing.T) {
	t.Parallel()

	// Arrange
	src := stripComments(`
struct Header { count: u32, _p0: u32, _p1: u32, _p2: u32 }
/* nested /* block */ comment */
struct Light {
    position: vec4<f32>, // xyz + intensity
    direction: vec4<f32>,
    color: vec4<f32>,
}
struct Params { resolution: vec2<f32>, ior: f32, tint: vec3<f32> }
struct Lights { header: Header, items: array<Light, 3> }
struct Dynamic { count: u32, items: array<Light> }
`)

	// Act
	sizes := computeStructSizes(parseStructBlocks(src))

	// Assert
	require.Contains(t, sizes, "Light")
	assert.Equal(t, uint64(16), sizes["Header"].size)
	assert.Equal(t, uint64(48), sizes["Light"].size)
	assert.Equal(t, uint64(32), sizes["Params"].size, "vec3 aligns to 16")
	assert.Equal(t, uint64(16+3*48), sizes["Lights"].size)
	assert.Equal(t, uint64(64), sizes["Dynamic"].size, "runtime array counts as one element")
}

func TestResolveTypeLayout(t *testing.T) {
	t.Parallel()

	known := map[string]wgslTypeLayout{"Light": {48, 16}}

	l, ok := resolveTypeLayout("mat4x4<f32>", known)
	require.True(t, ok)
	assert.Equal(t, uint64(64), l.size)

	l, ok = resolveTypeLayout("array<Light, 4>", known)
	require.True(t, ok)
	assert.Equal(t, uint64(192), l.size)

	l, ok = resolveTypeLayout("array<Light>", known)
	require.True(t, ok)
	assert.Equal(t, uint64(48), l.size)

	_, ok = resolveTypeLayout("array<Unknown, 2>", known)
	assert.False(t, ok)
	_, ok = resolveTypeLayout("array<Light, n>", known)
	assert.False(t, ok)
}

func TestSplitHelpers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"a: f32", " b: array<Light, 4>", " c: u32"}, splitAtTopLevelCommas("a: f32, b: array<Light, 4>, c: u32"))

	base, params := splitTypeParams("texture_2d<f32>")
	assert.Equal(t, "texture_2d", base)
	assert.Equal(t, "f32", params)

	base, params = splitTypeParams("sampler")
	assert.Equal(t, "sampler", base)
	assert.Empty(t, params)

	assert.Equal(t, 64, int(roundUpAlign(16, 49)))
	assert.Equal(t, 7, int(roundUpAlign(0, 7)))
}

func TestParseVertexLayoutsSkipsOutputs(t *testing.T) {
	t.Parallel()

	src := `
struct In { @location(0) position: vec3<f32>, @location(1) uv: vec2<f32> }
struct Out { @builtin(position) clip: vec4<f32>, @location(0) uv: vec2<f32> }
`
	layouts := parseVertexLayouts(src)

	require.Len(t, layouts, 1)
	assert.Equal(t, uint64(20), layouts[0][0].ArrayStride)
}
