package scene

import (
	"github.com/Carmen-Shannon/oxy-refract/engine/camera"
	"github.com/Carmen-Shannon/oxy-refract/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
)

const (
	// TargetEnvironment is the offscreen target holding layer 1, sampled by refraction.
	TargetEnvironment = "env"

	// TargetBackface is the offscreen target holding back-face normals of layer 2.
	TargetBackface = "backface"
)

// Pass renders the meshes of one layer with one camera into one target.
type Pass struct {
	Name string

	// Layer selects which meshes are drawn.
	Layer int

	// Target is a render target key, or renderer.SurfaceTarget for the window.
	Target string

	Camera camera.Camera

	// Clear is the color an offscreen target starts from. The surface clears to the renderer's color.
	Clear wgpu.Color
}

// Offscreen reports whether the pass renders into a render target instead of the surface.
func (p Pass) Offscreen() bool {
	return p.Target != renderer.SurfaceTarget
}

// PipelineKey returns the key of the pipeline variant the pass draws base with. Offscreen targets
// have their own color format and sample count, so they need their own variant.
//
// Parameters:
//   - base: the material's pipeline key
//
// Returns:
//   - string: base for the surface, base@target otherwise
func (p Pass) PipelineKey(base string) string {
	if !p.Offscreen() {
		return base
	}
	return base + "@" + p.Target
}

// DefaultPasses returns the three passes of a refraction frame in execution order: the
// environment capture, the backface capture, then the main pass on the surface.
//
// Parameters:
//   - main: the camera drawing layer 0
//   - env: the camera capturing layer 1
//   - backface: the camera capturing layer 2
//   - clear: the clear color of the environment target
//
// Returns:
//   - []Pass: the passes in order
func DefaultPasses(main, env, backface camera.Camera, clear wgpu.Color) []Pass {
	return []Pass{
		{Name: "environment", Layer: camera.LayerEnvironment, Target: TargetEnvironment, Camera: env, Clear: clear},
		{Name: "backface", Layer: camera.LayerBackface, Target: TargetBackface, Camera: backface, Clear: wgpu.Color{}},
		{Name: "main", Layer: camera.LayerMain, Target: renderer.SurfaceTarget, Camera: main},
	}
}
