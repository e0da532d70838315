package scene

import (
	"github.com/Carmen-Shannon/oxy-refract/engine/environment"
	"github.com/Carmen-Shannon/oxy-refract/engine/light"
	"github.com/Carmen-Shannon/oxy-refract/engine/renderer/animator"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithRoot sets the root node of the graph.
//
// Parameters:
//   - root: the root, nil keeps the default empty group
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithRoot(root Node) SceneBuilderOption {
	return func(s *scene) {
		if root != nil {
			s.root = root
		}
	}
}

// WithPasses replaces the default environment, backface and main passes. Passes run in the given
// order, so captures sampled by later passes must come first.
//
// Parameters:
//   - passes: the passes in execution order
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithPasses(passes ...Pass) SceneBuilderOption {
	return func(s *scene) {
		s.passes = append([]Pass(nil), passes...)
	}
}

// WithLights sets the spot lights uploaded to physical materials.
func WithLights(lights ...light.Light) SceneBuilderOption {
	return func(s *scene) {
		s.lights = lights
	}
}

// WithExposure sets the tone mapping exposure. Non-positive values are ignored.
func WithExposure(exposure float32) SceneBuilderOption {
	return func(s *scene) {
		if exposure > 0 {
			s.exposure = exposure
		}
	}
}

// WithEnvironment sets the environment map lighting physical materials.
func WithEnvironment(env *environment.Map) SceneBuilderOption {
	return func(s *scene) {
		s.env = env
	}
}

// WithAnimators registers orbit animators advanced by Update. Nil animators are skipped.
//
// Parameters:
//   - animators: the animators, each writing into its own instance buffers
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithAnimators(animators ...animator.OrbitAnimator) SceneBuilderOption {
	return func(s *scene) {
		for _, a := range animators {
			if a != nil {
				s.animators = append(s.animators, a)
			}
		}
	}
}
