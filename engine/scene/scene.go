package scene

import (
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/Carmen-Shannon/oxy-refract/common"
	"github.com/Carmen-Shannon/oxy-refract/engine/camera"
	"github.com/Carmen-Shannon/oxy-refract/engine/environment"
	"github.com/Carmen-Shannon/oxy-refract/engine/light"
	"github.com/Carmen-Shannon/oxy-refract/engine/renderer"
	"github.com/Carmen-Shannon/oxy-refract/engine/renderer/animator"
	"github.com/Carmen-Shannon/oxy-refract/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-refract/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-refract/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-refract/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// offscreenFormat is the color format of the environment and backface capture targets.
const offscreenFormat = wgpu.TextureFormatRGBA16Float

// drawEntry is a mesh node resolved for drawing: its pipeline and the bind groups it uses in each pass.
type drawEntry struct {
	node     *node
	drawable *Drawable

	// groups holds the providers bound at @group(i) per pass index, nil when the pass skips the entry.
	groups [][]bind_group_provider.BindGroupProvider
}

// targetBinding remembers a provider that samples render targets so it can be rebound after a resize.
type targetBinding struct {
	provider   bind_group_provider.BindGroupProvider
	descriptor wgpu.BindGroupLayoutDescriptor
	sizes      map[int]uint64
	views      map[int]string
}

// scene is the implementation of the Scene interface.
type scene struct {
	mu *sync.RWMutex

	name      string
	root      Node
	passes    []Pass
	lights    []light.Light
	exposure  float32
	env       *environment.Map
	animators []animator.OrbitAnimator
	onResize  []func(width, height int)

	r               renderer.Renderer
	built           bool
	width, height   int
	entries         []*drawEntry
	materials       []material.Material
	lighting        bind_group_provider.BindGroupProvider
	lightHeaderSlot int
	lightsSlot      int
	initialized     map[bind_group_provider.BindGroupProvider]bool
	targetBindings  []*targetBinding
	writes          bind_group_provider.WriteBatch
	lightsDirty     bool
	transformsDirty bool
}

// Scene is a graph of groups and meshes drawn by a fixed sequence of layered passes.
//
// The graph is built once at setup and then resolved by Build against a renderer: pipelines are
// created for every material and pass target, meshes are uploaded, and every bind group the
// shaders declare is matched to its provider. Per frame, Update advances the animators and
// uploads whatever changed, then Draw records each pass. All methods run on the render goroutine;
// the lock only guards configuration changes delivered from other goroutines.
type Scene interface {
	// Name retrieves the scene identifier.
	Name() string

	// Root retrieves the root node of the graph.
	Root() Node

	// Passes retrieves the passes in execution order.
	Passes() []Pass

	// Camera retrieves the camera of the last pass, which draws to the surface.
	Camera() camera.Camera

	// Lights retrieves the spot lights uploaded to physical materials.
	Lights() []light.Light

	// SetLights replaces the spot lights. They are uploaded on the next Update.
	//
	// Parameters:
	//   - lights: the new light set, truncated to light.MaxGPULights when uploaded
	SetLights(lights []light.Light)

	// Exposure retrieves the tone mapping exposure.
	Exposure() float32

	// SetExposure sets the tone mapping exposure. Non-positive values are ignored.
	SetExposure(exposure float32)

	// Environment retrieves the environment map lighting physical materials.
	Environment() *environment.Map

	// Animators retrieves the orbit animators advanced by Update.
	Animators() []animator.OrbitAnimator

	// AddAnimator registers an animator advanced by Update. Nil is ignored.
	AddAnimator(a animator.OrbitAnimator)

	// OnResize registers a hook called with the new surface size before bind groups are rebuilt.
	// Hooks may move nodes; object uniforms are re-uploaded afterwards.
	OnResize(fn func(width, height int))

	// MarkTransformsDirty schedules every object uniform for upload on the next Update.
	MarkTransformsDirty()

	// Meshes returns the mesh nodes drawn on a layer, in graph order.
	//
	// Parameters:
	//   - layer: the layer index
	//
	// Returns:
	//   - []Node: the mesh nodes whose mask includes the layer
	Meshes(layer int) []Node

	// Build resolves the graph against a renderer. It creates the offscreen targets, registers a
	// pipeline per material and target, uploads meshes and textures, and creates every bind group.
	//
	// Parameters:
	//   - r: the renderer
	//
	// Returns:
	//   - error: an error if called twice or if any GPU resource cannot be created
	Build(r renderer.Renderer) error

	// Update advances the animators to the elapsed time and uploads cameras, changed object
	// uniforms, materials, instance buffers and lights in one batch.
	//
	// Parameters:
	//   - elapsed: seconds since the animation started
	Update(elapsed float64)

	// Draw records one pass: begin on its target, draw each mesh on its layer, end.
	//
	// Parameters:
	//   - index: the pass index in Passes
	//
	// Returns:
	//   - error: an error if the scene is not built, the index is out of range, or a draw fails
	Draw(index int) error

	// Resize updates camera aspects and refraction resolutions, runs resize hooks and rebinds
	// providers that sample render targets. Call it after renderer.Resize.
	//
	// Parameters:
	//   - width, height: the new surface size in pixels
	//
	// Returns:
	//   - error: an error if a bind group cannot be rebuilt
	Resize(width, height int) error

	// Release frees every provider the scene created or initialised.
	Release()
}

var _ Scene = &scene{}

// NewScene creates a scene with an empty root group, the default three passes with fresh
// cameras, exposure 1 and the procedural environment unless options say otherwise.
//
// Parameters:
//   - name: the scene identifier, used in provider labels
//   - options: variadic list of SceneBuilderOption functions
//
// Returns:
//   - Scene: the new scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:              &sync.RWMutex{},
		name:            name,
		exposure:        1,
		initialized:     make(map[bind_group_provider.BindGroupProvider]bool),
		lighting:        bind_group_provider.NewBindGroupProvider(name + "_lighting"),
		lightsDirty:     true,
		transformsDirty: true,
	}
	for _, option := range options {
		option(s)
	}
	if s.root == nil {
		s.root = NewGroup(name + "_root")
	}
	if len(s.passes) == 0 {
		s.passes = DefaultPasses(
			camera.NewCamera(camera.WithLayers(camera.LayerMask(camera.LayerMain))),
			camera.NewCamera(camera.WithLayers(camera.LayerMask(camera.LayerEnvironment))),
			camera.NewCamera(camera.WithLayers(camera.LayerMask(camera.LayerBackface))),
			wgpu.Color{A: 1},
		)
	}
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Root() Node {
	return s.root
}

func (s *scene) Passes() []Pass {
	return s.passes
}

func (s *scene) Camera() camera.Camera {
	if len(s.passes) == 0 {
		return nil
	}
	return s.passes[len(s.passes)-1].Camera
}

func (s *scene) Lights() []light.Light {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lights
}

func (s *scene) SetLights(lights []light.Light) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lights = lights
	s.lightsDirty = true
}

func (s *scene) Exposure() float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exposure
}

func (s *scene) SetExposure(exposure float32) {
	if exposure <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exposure = exposure
}

func (s *scene) Environment() *environment.Map {
	return s.env
}

func (s *scene) Animators() []animator.OrbitAnimator {
	return s.animators
}

func (s *scene) AddAnimator(a animator.OrbitAnimator) {
	if a == nil {
		return
	}
	s.animators = append(s.animators, a)
}

func (s *scene) OnResize(fn func(width, height int)) {
	if fn != nil {
		s.onResize = append(s.onResize, fn)
	}
}

func (s *scene) MarkTransformsDirty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transformsDirty = true
}

func (s *scene) Meshes(layer int) []Node {
	var out []Node
	s.root.Walk(func(n Node) bool {
		if n.Kind() == NodeMesh && n.Drawable() != nil && n.Layers().Has(layer) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// collectEntries walks the graph and orders mesh nodes opaque first, then transparent, each in
// graph order. Transparent meshes are not depth sorted.
func (s *scene) collectEntries() []*drawEntry {
	var entries []*drawEntry
	s.root.Walk(func(n Node) bool {
		d := n.Drawable()
		if n.Kind() != NodeMesh || d == nil || d.Model == nil || d.Material == nil || d.InstanceCount() == 0 {
			return true
		}
		entries = append(entries, &drawEntry{node: n.(*node), drawable: d})
		return true
	})
	sort.SliceStable(entries, func(i, j int) bool {
		ti := entries[i].drawable.Material.Transparent()
		tj := entries[j].drawable.Material.Transparent()
		return !ti && tj
	})
	return entries
}

func (s *scene) Build(r renderer.Renderer) error {
	if r == nil {
		return fmt.Errorf("scene %q: build requires a renderer", s.name)
	}
	if s.built {
		return fmt.Errorf("scene %q: already built", s.name)
	}
	s.r = r
	if s.env == nil {
		s.env = environment.Procedural(0)
	}
	s.width, s.height = r.SurfaceSize()

	created := make(map[string]bool)
	for _, p := range s.passes {
		if !p.Offscreen() || created[p.Target] {
			continue
		}
		if err := r.CreateRenderTarget(p.Target, offscreenFormat, p.Clear); err != nil {
			return fmt.Errorf("scene %q: create target %q: %w", s.name, p.Target, err)
		}
		created[p.Target] = true
	}

	s.entries = s.collectEntries()

	pipelines, err := s.buildPipelines()
	if err != nil {
		return err
	}
	ordered := make([]pipeline.Pipeline, 0, len(pipelines))
	for _, p := range pipelines {
		ordered = append(ordered, p)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].PipelineKey() < ordered[j].PipelineKey() })
	if err := r.RegisterPipelines(ordered...); err != nil {
		return fmt.Errorf("scene %q: %w", s.name, err)
	}

	seenMaterial := make(map[material.Material]bool)
	uploaded := make(map[bind_group_provider.BindGroupProvider]bool)
	for _, e := range s.entries {
		mdl := e.drawable.Model
		if mesh := mdl.MeshProvider(); !mdl.Uploaded() && !uploaded[mesh] {
			uploaded[mesh] = true
			if err := r.InitMeshBuffers(mdl.MeshProvider(), mdl.VertexData(), mdl.IndexData(), mdl.IndexCount()); err != nil {
				return fmt.Errorf("scene %q: upload mesh %q: %w", s.name, mdl.Name(), err)
			}
		}
		if mat := e.drawable.Material; !seenMaterial[mat] {
			seenMaterial[mat] = true
			s.materials = append(s.materials, mat)
		}

		e.groups = make([][]bind_group_provider.BindGroupProvider, len(s.passes))
		for pi, pass := range s.passes {
			if !e.node.layers.Has(pass.Layer) {
				continue
			}
			p := pipelines[pass.PipelineKey(e.drawable.Material.PipelineKey())]
			groups, err := s.resolveGroups(p, pass, e.drawable)
			if err != nil {
				return fmt.Errorf("scene %q: mesh %q in pass %q: %w", s.name, e.node.name, pass.Name, err)
			}
			e.groups[pi] = groups
		}
	}

	for _, mat := range s.materials {
		if mat.Kind() == material.KindRefraction {
			mat.SetResolution(s.width, s.height)
		}
	}

	s.built = true
	s.transformsDirty = true
	s.lightsDirty = true
	log.Printf("[Scene] %q built: %d meshes, %d pipelines, %d passes", s.name, len(s.entries), len(ordered), len(s.passes))
	return nil
}

// buildPipelines creates one base pipeline per material key and one variant per offscreen target
// that draws it.
func (s *scene) buildPipelines() (map[string]pipeline.Pipeline, error) {
	bases := make(map[string]pipeline.Pipeline)
	out := make(map[string]pipeline.Pipeline)
	for _, e := range s.entries {
		mat := e.drawable.Material
		baseKey := mat.PipelineKey()
		base, ok := bases[baseKey]
		if !ok {
			var err error
			base, err = newMaterialPipeline(baseKey, mat)
			if err != nil {
				return nil, fmt.Errorf("scene %q: %w", s.name, err)
			}
			bases[baseKey] = base
		}
		for _, pass := range s.passes {
			if !e.node.layers.Has(pass.Layer) {
				continue
			}
			key := pass.PipelineKey(baseKey)
			if _, ok := out[key]; ok {
				continue
			}
			if pass.Offscreen() {
				out[key] = base.Variant(key, pipeline.WithTarget(offscreenFormat, 1))
			} else {
				out[key] = base
			}
		}
	}
	return out, nil
}

// newMaterialPipeline compiles the material's program for both stages and applies its render state.
// Blended materials keep depth testing but do not write depth.
func newMaterialPipeline(key string, mat material.Material) (pipeline.Pipeline, error) {
	src := mat.Kind().Source()
	vs, err := shader.NewShader(key+"_vs", shader.ShaderTypeVertex, src)
	if err != nil {
		return nil, fmt.Errorf("compile %s vertex shader: %w", key, err)
	}
	fs, err := shader.NewShader(key+"_fs", shader.ShaderTypeFragment, src)
	if err != nil {
		return nil, fmt.Errorf("compile %s fragment shader: %w", key, err)
	}
	state := mat.RenderState()
	return pipeline.NewPipeline(key,
		pipeline.WithShaders(vs, fs),
		pipeline.WithCullMode(state.Cull),
		pipeline.WithBlendEnabled(state.Blend),
		pipeline.WithDepthWriteEnabled(!state.Blend),
	), nil
}

// resolveGroups matches each group a pipeline declares with its provider and initialises the
// provider the first time it is seen.
func (s *scene) resolveGroups(p pipeline.Pipeline, pass Pass, d *Drawable) ([]bind_group_provider.BindGroupProvider, error) {
	identities, err := p.GroupProviders()
	if err != nil {
		return nil, err
	}
	layouts := p.BindGroupLayouts()
	decls := p.Shader(shader.ShaderTypeVertex).Declarations()

	groups := make([]bind_group_provider.BindGroupProvider, len(identities))
	for g, id := range identities {
		var provider bind_group_provider.BindGroupProvider
		switch id {
		case shader.AnnotationArgCamera:
			provider = pass.Camera.BindGroupProvider()
		case shader.AnnotationArgMaterial:
			provider = d.Material.BindGroupProvider()
			if provider == nil {
				provider = bind_group_provider.NewBindGroupProvider(fmt.Sprintf("%s_%s_material", s.name, d.Material.Name()))
				d.Material.SetBindGroupProvider(provider)
			}
		case shader.AnnotationArgObjectProvider:
			provider = d.object
		case shader.AnnotationArgLighting:
			provider = s.lighting
		default:
			return nil, fmt.Errorf("group %d: unknown provider %q", g, id)
		}
		if provider == nil {
			return nil, fmt.Errorf("group %d: no %s provider", g, id)
		}
		groups[g] = provider
		if s.initialized[provider] {
			continue
		}
		if err := s.initProvider(provider, id, g, layouts[g], decls, d); err != nil {
			return nil, fmt.Errorf("group %d (%s): %w", g, id, err)
		}
		s.initialized[provider] = true
	}
	return groups, nil
}

// initProvider binds the textures and samplers named by binding roles, sizes runtime-sized storage
// buffers, and creates the bind group.
func (s *scene) initProvider(
	provider bind_group_provider.BindGroupProvider,
	id shader.AnnotationArg,
	group int,
	descriptor wgpu.BindGroupLayoutDescriptor,
	decls []shader.Annotation,
	d *Drawable,
) error {
	sizes := make(map[int]uint64)
	views := make(map[int]string)
	for _, decl := range decls {
		if decl.Group == nil || *decl.Group != group || decl.Binding == nil {
			continue
		}
		binding := *decl.Binding

		if st, ok := shader.StructType(decl); ok {
			switch st {
			case shader.AnnotationArgInstance:
				sizes[binding] = d.Instances.ByteSize()
			case shader.AnnotationArgSpotLight:
				sizes[binding] = uint64(light.MaxGPULights * (&light.GPUSpotLight{}).Size())
				s.lightsSlot = binding
			case shader.AnnotationArgLightHeader:
				s.lightHeaderSlot = binding
			}
			continue
		}

		if decl.Type != shader.AnnotationTypeProvider || len(decl.Args) < 2 {
			continue
		}
		role := decl.Args[1]
		var err error
		switch role {
		case shader.AnnotationArgEnvMap:
			if id == shader.AnnotationArgLighting {
				err = s.r.InitTextureView(provider, binding, s.env.Levels...)
			} else {
				views[binding] = TargetEnvironment
				err = s.r.InitTargetView(provider, binding, TargetEnvironment)
			}
		case shader.AnnotationArgBackfaceMap:
			views[binding] = TargetBackface
			err = s.r.InitTargetView(provider, binding, TargetBackface)
		case shader.AnnotationArgBaseTexture:
			if d.Texture == nil {
				return fmt.Errorf("binding %d needs a base texture", binding)
			}
			err = s.r.InitTextureView(provider, binding, *d.Texture)
		case shader.AnnotationArgEnvSampler:
			err = s.r.InitSampler(provider, binding, *common.LinearRepeatSampler())
		case shader.AnnotationArgBaseSampler, shader.AnnotationArgScreenSampler:
			err = s.r.InitSampler(provider, binding, *common.LinearClampSampler())
		}
		if err != nil {
			return fmt.Errorf("binding %d (%s): %w", binding, role, err)
		}
	}

	if err := s.r.InitBindGroup(provider, descriptor, nil, sizes); err != nil {
		return err
	}
	if len(views) > 0 {
		s.targetBindings = append(s.targetBindings, &targetBinding{
			provider:   provider,
			descriptor: descriptor,
			sizes:      sizes,
			views:      views,
		})
	}
	return nil
}

func (s *scene) Update(elapsed float64) {
	if !s.built {
		return
	}
	for _, a := range s.animators {
		a.Update(elapsed)
	}

	s.mu.Lock()
	exposure := s.exposure
	transformsDirty := s.transformsDirty
	s.transformsDirty = false
	lightsDirty := s.lightsDirty
	s.lightsDirty = false
	lights := s.lights
	s.mu.Unlock()

	s.writes.Reset()
	seenCamera := make(map[camera.Camera]bool, len(s.passes))
	for _, pass := range s.passes {
		if pass.Camera == nil || seenCamera[pass.Camera] {
			continue
		}
		seenCamera[pass.Camera] = true
		u := pass.Camera.Uniform(exposure, float32(s.width), float32(s.height), float32(elapsed))
		s.writes.Add(pass.Camera.BindGroupProvider(), 0, u.Marshal())
	}

	for _, e := range s.entries {
		if transformsDirty {
			s.writes.Add(e.drawable.object, ObjectBinding, objectUniform(e.node.WorldMatrix()))
		}
		if w, ok := e.drawable.Instances.StagedWrite(); ok {
			s.writes = append(s.writes, w)
		}
	}
	for _, mat := range s.materials {
		if w, ok := mat.StagedWrite(); ok {
			s.writes = append(s.writes, w)
		}
	}

	if lightsDirty && s.initialized[s.lighting] {
		header, body := light.MarshalLights(lights)
		s.writes.Add(s.lighting, s.lightHeaderSlot, header.Marshal())
		s.writes.Add(s.lighting, s.lightsSlot, body)
	}

	if len(s.writes) > 0 {
		s.r.WriteBuffers(s.writes)
	}
}

func (s *scene) Draw(index int) error {
	if !s.built {
		return fmt.Errorf("scene %q: draw before build", s.name)
	}
	if index < 0 || index >= len(s.passes) {
		return fmt.Errorf("scene %q: pass %d out of range", s.name, index)
	}
	pass := s.passes[index]

	if err := s.r.BeginPass(pass.Target); err != nil {
		return fmt.Errorf("scene %q: begin pass %q: %w", s.name, pass.Name, err)
	}
	defer s.r.EndPass()

	for _, e := range s.entries {
		groups := e.groups[index]
		if groups == nil {
			continue
		}
		d := e.drawable
		key := pass.PipelineKey(d.Material.PipelineKey())
		if err := s.r.DrawCall(key, d.Model.MeshProvider(), uint32(d.InstanceCount()), groups); err != nil {
			return fmt.Errorf("scene %q: draw %q in pass %q: %w", s.name, e.node.name, pass.Name, err)
		}
	}
	return nil
}

func (s *scene) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	s.width, s.height = width, height

	aspect := float32(width) / float32(height)
	for _, pass := range s.passes {
		if pass.Camera != nil {
			pass.Camera.SetAspect(aspect)
		}
	}
	for _, mat := range s.materials {
		if mat.Kind() == material.KindRefraction {
			mat.SetResolution(width, height)
		}
	}
	for _, fn := range s.onResize {
		fn(width, height)
	}
	s.MarkTransformsDirty()

	if !s.built {
		return nil
	}
	for _, tb := range s.targetBindings {
		tb.provider.ReleaseBindGroup()
		for binding, target := range tb.views {
			if err := s.r.InitTargetView(tb.provider, binding, target); err != nil {
				return fmt.Errorf("scene %q: rebind %s: %w", s.name, tb.provider.Label(), err)
			}
		}
		if err := s.r.InitBindGroup(tb.provider, tb.descriptor, nil, tb.sizes); err != nil {
			return fmt.Errorf("scene %q: rebuild %s: %w", s.name, tb.provider.Label(), err)
		}
	}
	return nil
}

func (s *scene) Release() {
	for provider := range s.initialized {
		provider.Release()
	}
	released := make(map[bind_group_provider.BindGroupProvider]bool)
	for _, e := range s.entries {
		if p := e.drawable.Model.MeshProvider(); p != nil && !released[p] {
			released[p] = true
			p.Release()
		}
	}
	s.initialized = make(map[bind_group_provider.BindGroupProvider]bool)
	s.targetBindings = nil
	s.built = false
}
