package pipeline

import (
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/oxy-refract/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// pipeline is the implementation of the Pipeline interface.
// It holds the render pipeline object and the state used to create it.
type pipeline struct {
	// pipelineKey is the unique identifier for this pipeline, used for caching and lookups
	pipelineKey string

	vertexShader, fragmentShader shader.Shader

	renderPipeline *wgpu.RenderPipeline

	// colorFormat is the target format; TextureFormatUndefined means the surface format.
	colorFormat wgpu.TextureFormat
	// sampleCount is the target sample count; 0 means the renderer's MSAA setting.
	sampleCount uint32

	depthTestEnabled  bool
	depthWriteEnabled bool
	blendEnabled      bool
	cullMode          wgpu.CullMode
	topology          wgpu.PrimitiveTopology
	frontFace         wgpu.FrontFace
	writeMask         wgpu.ColorWriteMask
	blendState        *wgpu.BlendState
}

// Pipeline describes a render pipeline: a vertex and fragment shader pair, its color target,
// and the depth, blend, cull, and topology state used to create it.
type Pipeline interface {
	// PipelineKey returns the unique key associated with this pipeline.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// Shader retrieves the shader for a stage, or nil if not set.
	//
	// Parameters:
	//   - shaderType: the stage to retrieve
	//
	// Returns:
	//   - shader.Shader: the shader for the stage, or nil if not set
	Shader(shaderType shader.ShaderType) shader.Shader

	// RenderPipeline returns the GPU pipeline, or nil before registration.
	RenderPipeline() *wgpu.RenderPipeline

	// ColorFormat returns the color target format. TextureFormatUndefined selects the surface format.
	ColorFormat() wgpu.TextureFormat

	// SampleCount returns the color target sample count. 0 selects the renderer's MSAA sample count.
	SampleCount() uint32

	DepthTestEnabled() bool
	DepthWriteEnabled() bool
	BlendEnabled() bool
	CullMode() wgpu.CullMode
	Topology() wgpu.PrimitiveTopology
	FrontFace() wgpu.FrontFace
	WriteMask() wgpu.ColorWriteMask

	// BlendState returns the blend state, used only when BlendEnabled is true.
	BlendState() *wgpu.BlendState

	// BindGroupLayouts merges the reflected layouts of both stages into one descriptor per
	// group, ordered by group index with empty descriptors filling any gaps.
	//
	// Returns:
	//   - []wgpu.BindGroupLayoutDescriptor: descriptors indexed by group
	BindGroupLayouts() []wgpu.BindGroupLayoutDescriptor

	// GroupProviders resolves the provider identity that owns each bind group from the
	// declarations of both stages.
	//
	// Returns:
	//   - []shader.AnnotationArg: provider identities indexed by group
	//   - error: an error if a group has no identity or two conflicting identities
	GroupProviders() ([]shader.AnnotationArg, error)

	// Variant copies this pipeline's shaders and state under a new key with extra options applied.
	// The copy has no GPU pipeline until it is registered.
	//
	// Parameters:
	//   - key: the unique key of the variant
	//   - opts: options applied on top of the copied state
	//
	// Returns:
	//   - Pipeline: the variant
	Variant(key string, opts ...PipelineBuilderOption) Pipeline

	// SetRenderPipeline sets the GPU pipeline created by the renderer.
	SetRenderPipeline(p *wgpu.RenderPipeline)
}

var _ Pipeline = &pipeline{}

// DefaultBlendState is straight alpha blending, used by transparent materials.
var DefaultBlendState = wgpu.BlendState{
	Color: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorSrcAlpha,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
	Alpha: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
}

// NewPipeline is the entry point to create a new Pipeline.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline with the specified configuration
func NewPipeline(pipelineKey string, opts ...PipelineBuilderOption) Pipeline {
	blend := DefaultBlendState
	p := &pipeline{
		pipelineKey:       pipelineKey,
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		cullMode:          wgpu.CullModeNone,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
		writeMask:         wgpu.ColorWriteMaskAll,
		blendState:        &blend,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) ColorFormat() wgpu.TextureFormat {
	return p.colorFormat
}

func (p *pipeline) SampleCount() uint32 {
	return p.sampleCount
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	switch shaderType {
	case shader.ShaderTypeVertex:
		return p.vertexShader
	case shader.ShaderTypeFragment:
		return p.fragmentShader
	default:
		return nil
	}
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}

func (p *pipeline) BindGroupLayouts() []wgpu.BindGroupLayoutDescriptor {
	var vertex, fragment map[int]wgpu.BindGroupLayoutDescriptor
	if p.vertexShader != nil {
		vertex = p.vertexShader.BindGroupLayoutDescriptors()
	}
	if p.fragmentShader != nil {
		fragment = p.fragmentShader.BindGroupLayoutDescriptors()
	}
	merged := mergeBindGroupLayouts(vertex, fragment)

	maxGroup := -1
	for g := range merged {
		maxGroup = max(maxGroup, g)
	}
	out := make([]wgpu.BindGroupLayoutDescriptor, maxGroup+1)
	for g, desc := range merged {
		desc.Label = fmt.Sprintf("%s_group_%d", p.pipelineKey, g)
		out[g] = desc
	}
	return out
}

func (p *pipeline) GroupProviders() ([]shader.AnnotationArg, error) {
	var decls []shader.Annotation
	for _, s := range []shader.Shader{p.vertexShader, p.fragmentShader} {
		if s != nil {
			decls = append(decls, s.Declarations()...)
		}
	}

	identities := make(map[int]shader.AnnotationArg)
	maxGroup := -1
	for _, d := range decls {
		if d.Group == nil {
			continue
		}
		id, ok := shader.ProviderIdentity(d)
		if !ok {
			continue
		}
		g := *d.Group
		if existing, seen := identities[g]; seen && existing != id {
			return nil, fmt.Errorf("pipeline %q: group %d claimed by %q and %q (line %d)", p.pipelineKey, g, existing, id, d.Line)
		}
		identities[g] = id
		maxGroup = max(maxGroup, g)
	}

	out := make([]shader.AnnotationArg, maxGroup+1)
	for g := range out {
		id, ok := identities[g]
		if !ok {
			return nil, fmt.Errorf("pipeline %q: group %d has no provider declaration", p.pipelineKey, g)
		}
		out[g] = id
	}
	return out, nil
}

func (p *pipeline) Variant(key string, opts ...PipelineBuilderOption) Pipeline {
	cp := *p
	cp.pipelineKey = key
	cp.renderPipeline = nil
	if p.blendState != nil {
		blend := *p.blendState
		cp.blendState = &blend
	}
	for _, opt := range opts {
		opt(&cp)
	}
	return &cp
}

// mergeBindGroupLayouts merges the bind group layout descriptors from a vertex and fragment shader
// into a unified set of descriptors suitable for a render pipeline layout.
//
// For each group index present in either shader:
//   - Entries with the same binding number have their Visibility flags ORed together
//   - Entries unique to one shader are included with their original visibility
//
// Parameters:
//   - vertexLayouts: bind group layout descriptors from the vertex shader
//   - fragmentLayouts: bind group layout descriptors from the fragment shader
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: the merged descriptors keyed by group index
func mergeBindGroupLayouts(
	vertexLayouts, fragmentLayouts map[int]wgpu.BindGroupLayoutDescriptor,
) map[int]wgpu.BindGroupLayoutDescriptor {
	merged := make(map[int]wgpu.BindGroupLayoutDescriptor)

	groupIndices := make(map[int]bool)
	for g := range vertexLayouts {
		groupIndices[g] = true
	}
	for g := range fragmentLayouts {
		groupIndices[g] = true
	}

	for g := range groupIndices {
		entryMap := make(map[uint32]wgpu.BindGroupLayoutEntry)
		for _, e := range vertexLayouts[g].Entries {
			entryMap[e.Binding] = e
		}
		for _, e := range fragmentLayouts[g].Entries {
			if existing, ok := entryMap[e.Binding]; ok {
				existing.Visibility |= e.Visibility
				entryMap[e.Binding] = existing
			} else {
				entryMap[e.Binding] = e
			}
		}

		entries := make([]wgpu.BindGroupLayoutEntry, 0, len(entryMap))
		for _, e := range entryMap {
			entries = append(entries, e)
		}
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Binding < entries[j].Binding
		})

		merged[g] = wgpu.BindGroupLayoutDescriptor{Entries: entries}
	}

	return merged
}
