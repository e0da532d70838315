package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-refract/common"
	"github.com/Carmen-Shannon/oxy-refract/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-refract/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-refract/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
	pendingClearColor    *wgpu.Color
}

// Renderer defines the interface for the rendering system.
//
// A frame is recorded as BeginFrame, then one or more BeginPass/DrawCall/EndPass sequences
// (offscreen render targets first, the surface last), then EndFrame and Present. All passes of
// a frame share one command encoder and are submitted together.
type Renderer interface {
	// Pipeline retrieves the cached Pipeline associated with the given key, or nil.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// Pipelines retrieves the entire cache of Pipelines.
	Pipelines() map[string]pipeline.Pipeline

	// RegisterPipelines creates the GPU render pipeline for each Pipeline and caches it by key.
	// Keys that are already registered are skipped.
	//
	// Parameters:
	//   - pipelines: the Pipelines to register
	//
	// Returns:
	//   - error: an error if pipeline creation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// Resize reconfigures the surface and recreates every render target at the new size.
	// Bind groups that sample render targets must be rebuilt afterwards.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SurfaceSize returns the current surface size in pixels.
	SurfaceSize() (int, int)

	// SurfaceFormat returns the configured surface color format.
	SurfaceFormat() wgpu.TextureFormat

	// CreateRenderTarget creates an offscreen color target with its own depth buffer, sized to
	// the surface and recreated on Resize.
	//
	// Parameters:
	//   - key: the target's unique key, used by BeginPass and InitTargetView
	//   - format: the color format, e.g. wgpu.TextureFormatRGBA16Float
	//   - clear: the color the target clears to at the start of its pass
	//
	// Returns:
	//   - error: an error if the key is taken or texture creation fails
	CreateRenderTarget(key string, format wgpu.TextureFormat, clear wgpu.Color) error

	// InitMeshBuffers creates GPU vertex and index buffers from raw byte data and stores them
	// on the given BindGroupProvider for later use in draw calls.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created buffers on
	//   - vertexData: the raw vertex data bytes to upload to the GPU
	//   - indexData: the raw index data bytes (uint32 indices) to upload to the GPU
	//   - indexCount: the number of indices, used for draw calls
	//
	// Returns:
	//   - error: an error if buffer creation fails
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitBindGroup creates missing GPU buffers and a bind group from a layout descriptor and
	// stores them on the provider. Textures and samplers must already be set on the provider.
	// Buffer usage and size can be overridden per binding.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created bind group on
	//   - descriptor: the layout descriptor defining the bind group entries
	//   - bufferUsageOverrides: additional buffer usage flags keyed by binding index (nil safe)
	//   - bufferSizeOverrides: buffer sizes to use instead of MinBindingSize keyed by binding index (nil safe)
	//
	// Returns:
	//   - error: an error if bind group creation fails
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error

	// InitTextureView uploads an RGBA8 sRGB texture and stores its view on the provider.
	// Additional levels become the mip chain; each must halve the previous level's size.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created texture view on
	//   - bindingKey: the binding index for this texture
	//   - levels: the base level followed by optional mip levels
	//
	// Returns:
	//   - error: an error if the levels are invalid or texture creation fails
	InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, levels ...common.TextureStagingData) error

	// InitTargetView binds a render target's color view to the provider without transferring ownership.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to bind the view on
	//   - bindingKey: the binding index for the view
	//   - targetKey: the render target key
	//
	// Returns:
	//   - error: an error if the target does not exist
	InitTargetView(provider bind_group_provider.BindGroupProvider, bindingKey int, targetKey string) error

	// InitSampler creates a GPU sampler and stores it on the provider at the binding index.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created sampler on
	//   - bindingKey: the binding index for this sampler
	//   - samplerStagingData: the sampler configuration
	//
	// Returns:
	//   - error: an error if sampler creation fails
	InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error

	// WriteBuffers writes all staged buffer writes to the GPU queue.
	//
	// Parameters:
	//   - writes: the writes to submit
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame acquires the swapchain texture and creates the frame's command encoder.
	//
	// Returns:
	//   - error: an error if the swapchain texture could not be acquired
	BeginFrame() error

	// BeginPass begins a render pass on a render target, or on the surface when target is SurfaceTarget.
	//
	// Parameters:
	//   - target: the render target key or SurfaceTarget
	//
	// Returns:
	//   - error: an error if no frame is active, a pass is open, or the target is unknown
	BeginPass(target string) error

	// DrawCall encodes a single instanced draw command within the current pass.
	//
	// Parameters:
	//   - pipelineKey: the unique identifier for the cached render Pipeline to use
	//   - meshProvider: the BindGroupProvider holding vertex and index buffers
	//   - instanceCount: the number of instances to draw
	//   - bindGroups: providers whose bind groups are set at @group(i) in order
	//
	// Returns:
	//   - error: an error if the pipeline is not found or no pass is open
	DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error

	// EndPass ends the current render pass.
	EndPass()

	// EndFrame ends any open pass and submits the frame's command buffer.
	// Call Present afterwards to display the frame.
	EndFrame()

	// Present presents the surface to the display and releases the swapchain texture.
	Present()

	// SetPresentMode sets the surface present mode. Takes effect on the next Resize.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// SetClearColor sets the color the surface pass clears to.
	//
	// Parameters:
	//   - c: the clear color
	SetClearColor(c wgpu.Color)

	// Release frees render targets, surface attachments, and the device.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer for the window's surface. GPU adapter or device
// failures panic, since nothing can be drawn without them.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - window: the window whose surface descriptor and size configure the surface
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new Renderer configured with the specified backend and options
func NewRenderer(backendType RendererBackendType, window window.Window, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backendType:   backendType,
	}

	// Options first so forceFallbackAdapter is known before the adapter request.
	for _, opt := range options {
		opt(r)
	}

	msaa := MSAA4x
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend = newWGPURendererBackend(window.SurfaceDescriptor(), r.forceFallbackAdapter, msaa)
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	if r.pendingClearColor != nil {
		r.backend.SetClearColor(*r.pendingClearColor)
	}

	r.backend.ConfigureSurface(window.Width(), window.Height())
	return r
}

func (r *renderer) Resize(width, height int) {
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SurfaceSize() (int, int) {
	return r.backend.SurfaceSize()
}

func (r *renderer) SurfaceFormat() wgpu.TextureFormat {
	return r.backend.SurfaceFormat()
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) SetClearColor(c wgpu.Color) {
	r.backend.SetClearColor(c)
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) Pipelines() map[string]pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		key := p.PipelineKey()
		if existing, exists := r.pipelineCache[key]; exists && existing.RenderPipeline() != nil {
			continue
		}
		if err := r.backend.RegisterRenderPipeline(p); err != nil {
			return fmt.Errorf("register pipeline %q: %w", key, err)
		}
		r.pipelineCache[key] = p
	}
	return nil
}

func (r *renderer) CreateRenderTarget(key string, format wgpu.TextureFormat, clear wgpu.Color) error {
	return r.backend.CreateRenderTarget(key, format, clear)
}

func (r *renderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	return r.backend.InitMeshBuffers(provider, vertexData, indexData, indexCount)
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error {
	return r.backend.InitBindGroup(provider, descriptor, bufferUsageOverrides, bufferSizeOverrides)
}

func (r *renderer) InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, levels ...common.TextureStagingData) error {
	if err := validateMipChain(levels); err != nil {
		return fmt.Errorf("texture %s binding %d: %w", provider.Label(), bindingKey, err)
	}
	return r.backend.InitTextureView(provider, bindingKey, levels)
}

func (r *renderer) InitTargetView(provider bind_group_provider.BindGroupProvider, bindingKey int, targetKey string) error {
	view := r.backend.RenderTargetView(targetKey)
	if view == nil {
		return fmt.Errorf("render target %q not found", targetKey)
	}
	provider.SetSharedTextureView(bindingKey, view)
	return nil
}

func (r *renderer) InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error {
	return r.backend.InitSampler(provider, bindingKey, samplerStagingData)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.backend.WriteBuffers(writes)
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) BeginPass(target string) error {
	return r.backend.BeginPass(target)
}

func (r *renderer) DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error {
	r.mu.Lock()
	p, exists := r.pipelineCache[pipelineKey]
	r.mu.Unlock()

	if !exists || p.RenderPipeline() == nil {
		return fmt.Errorf("render pipeline %q not registered", pipelineKey)
	}

	return r.backend.DrawCall(p, meshProvider, instanceCount, bindGroups)
}

func (r *renderer) EndPass() {
	r.backend.EndPass()
}

func (r *renderer) EndFrame() {
	r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Release() {
	r.backend.Release()
}

// validateMipChain checks that a texture has a non-empty base level and that every further
// level halves the previous one (rounding down, minimum 1) with a matching pixel buffer.
func validateMipChain(levels []common.TextureStagingData) error {
	if len(levels) == 0 {
		return fmt.Errorf("no texture levels")
	}
	for i, l := range levels {
		if l.Width == 0 || l.Height == 0 {
			return fmt.Errorf("level %d has zero size", i)
		}
		if want := int(l.Width) * int(l.Height) * 4; len(l.Pixels) != want {
			return fmt.Errorf("level %d has %d bytes, want %d", i, len(l.Pixels), want)
		}
		if i == 0 {
			continue
		}
		prev := levels[i-1]
		if l.Width != max(prev.Width/2, 1) || l.Height != max(prev.Height/2, 1) {
			return fmt.Errorf("level %d is %dx%d, want %dx%d", i, l.Width, l.Height, max(prev.Width/2, 1), max(prev.Height/2, 1))
		}
	}
	return nil
}

// targetState resolves the color format and sample count a pipeline renders into.
func targetState(p pipeline.Pipeline, surfaceFormat wgpu.TextureFormat, msaa MSAASampleCount) (wgpu.TextureFormat, uint32) {
	format := p.ColorFormat()
	if format == wgpu.TextureFormatUndefined {
		format = surfaceFormat
	}
	samples := p.SampleCount()
	if samples == 0 {
		samples = uint32(msaa)
	}
	return format, samples
}
