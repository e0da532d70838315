package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-refract/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSource = `
//@oxy:include camera
//@oxy:include vertex
//@oxy:include object
//@oxy:include instance
//@oxy:include unlit_params

//@oxy:group 0 0 storage_uniform camera camera
//@oxy:group 1 0 storage_uniform params unlit_params
//@oxy:provider 1 1 material base_texture
@group(1) @binding(1) var baseTexture: texture_2d<f32>;
//@oxy:provider 1 2 material base_sampler
@group(1) @binding(2) var baseSampler: sampler;
//@oxy:group 2 0 storage_uniform object object
//@oxy:group 2 1 storage_read instances array<instance>

struct VertexOutput {
    @builtin(position) clip: vec4<f32>,
    @location(0) uv: vec2<f32>,
};

@vertex
fn vs_main(in: VertexInput, @builtin(instance_index) idx: u32) -> VertexOutput {
    var out: VertexOutput;
    out.clip = camera.projection * camera.view * object.model * instances[idx].transform * vec4<f32>(in.position, 1.0);
    out.uv = in.uv;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return textureSample(baseTexture, baseSampler, in.uv) * params.color;
}
`

func newTestShaders(t *testing.T, src string) (shader.Shader, shader.Shader) {
	t.Helper()
	vs, err := shader.NewShader("test_vs", shader.ShaderTypeVertex, src)
	require.NoError(t, err)
	fs, err := shader.NewShader("test_fs", shader.ShaderTypeFragment, src)
	require.NoError(t, err)
	return vs, fs
}

func TestNewPipelineDefaults(t *testing.T) {
	t.Parallel()

	p := NewPipeline("unlit")

	assert.Equal(t, "unlit", p.PipelineKey())
	assert.True(t, p.DepthTestEnabled())
	assert.True(t, p.DepthWriteEnabled())
	assert.False(t, p.BlendEnabled())
	assert.Equal(t, wgpu.CullModeNone, p.CullMode())
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, p.Topology())
	assert.Equal(t, wgpu.FrontFaceCCW, p.FrontFace())
	assert.Equal(t, wgpu.TextureFormatUndefined, p.ColorFormat())
	assert.Zero(t, p.SampleCount())
	require.NotNil(t, p.BlendState())
	assert.Equal(t, wgpu.BlendFactorSrcAlpha, p.BlendState().Color.SrcFactor)
	assert.Nil(t, p.Shader(shader.ShaderTypeVertex))
	assert.Nil(t, p.RenderPipeline())
}

func TestBindGroupLayoutsMergeVisibility(t *testing.T) {
	t.Parallel()

	// Arrange
	vs, fs := newTestShaders(t, testSource)
	p := NewPipeline("unlit", WithShaders(vs, fs))

	// Act
	layouts := p.BindGroupLayouts()

	// Assert
	require.Len(t, layouts, 3)
	assert.Equal(t, "unlit_group_1", layouts[1].Label)
	require.Len(t, layouts[1].Entries, 3)
	for _, desc := range layouts {
		for _, e := range desc.Entries {
			assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, e.Visibility)
		}
	}
	assert.Equal(t, wgpu.BufferBindingTypeReadOnlyStorage, layouts[2].Entries[1].Buffer.Type)
}

func TestMergeBindGroupLayoutsDisjoint(t *testing.T) {
	t.Parallel()

	vertex := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Entries: []wgpu.BindGroupLayoutEntry{{Binding: 1, Visibility: wgpu.ShaderStageVertex}}},
	}
	fragment := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Entries: []wgpu.BindGroupLayoutEntry{{Binding: 0, Visibility: wgpu.ShaderStageFragment}}},
		3: {Entries: []wgpu.BindGroupLayoutEntry{{Binding: 0, Visibility: wgpu.ShaderStageFragment}}},
	}

	merged := mergeBindGroupLayouts(vertex, fragment)

	require.Len(t, merged, 2)
	require.Len(t, merged[0].Entries, 2)
	assert.Equal(t, uint32(0), merged[0].Entries[0].Binding)
	assert.Equal(t, wgpu.ShaderStageFragment, merged[0].Entries[0].Visibility)
	assert.Equal(t, wgpu.ShaderStageVertex, merged[0].Entries[1].Visibility)
	assert.Len(t, merged[3].Entries, 1)
}

func TestGroupProviders(t *testing.T) {
	t.Parallel()

	vs, fs := newTestShaders(t, testSource)
	p := NewPipeline("unlit", WithShaders(vs, fs))

	providers, err := p.GroupProviders()

	require.NoError(t, err)
	assert.Equal(t, []shader.AnnotationArg{
		shader.AnnotationArgCamera,
		shader.AnnotationArgMaterial,
		shader.AnnotationArgObjectProvider,
	}, providers)
}

func TestGroupProvidersErrors(t *testing.T) {
	t.Parallel()

	gap := `
//@oxy:include camera
//@oxy:group 0 0 storage_uniform camera camera
//@oxy:provider 2 0 material base_texture
@group(2) @binding(0) var tex: texture_2d<f32>;
@vertex fn vs_main() -> @builtin(position) vec4<f32> { return camera.position; }
@fragment fn fs_main() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }
`
	vs, fs := newTestShaders(t, gap)
	_, err := NewPipeline("gap", WithShaders(vs, fs)).GroupProviders()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "group 1")

	conflict := `
//@oxy:include camera
//@oxy:group 0 0 storage_uniform camera camera
//@oxy:provider 0 1 material base_texture
@group(0) @binding(1) var tex: texture_2d<f32>;
@vertex fn vs_main() -> @builtin(position) vec4<f32> { return camera.position; }
@fragment fn fs_main() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }
`
	vs, fs = newTestShaders(t, conflict)
	_, err = NewPipeline("conflict", WithShaders(vs, fs)).GroupProviders()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "claimed")
}

func TestVariant(t *testing.T) {
	t.Parallel()

	vs, fs := newTestShaders(t, testSource)
	base := NewPipeline("text", WithShaders(vs, fs), WithBlendEnabled(true), WithCullMode(wgpu.CullModeBack))

	v := base.Variant("text@env", WithTarget(wgpu.TextureFormatRGBA16Float, 1))

	assert.Equal(t, "text@env", v.PipelineKey())
	assert.Equal(t, wgpu.TextureFormatRGBA16Float, v.ColorFormat())
	assert.Equal(t, uint32(1), v.SampleCount())
	assert.True(t, v.BlendEnabled())
	assert.Equal(t, wgpu.CullModeBack, v.CullMode())
	assert.Same(t, vs, v.Shader(shader.ShaderTypeVertex))
	assert.NotSame(t, base.BlendState(), v.BlendState())

	assert.Equal(t, "text", base.PipelineKey())
	assert.Equal(t, wgpu.TextureFormatUndefined, base.ColorFormat())
}
