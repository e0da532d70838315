package animator

// AnimatorBuilderOption is a functional option for configuring an OrbitAnimator during construction.
type AnimatorBuilderOption func(*orbitAnimator)

// WithTargets is an option builder that sets the buffers receiving instance transforms.
// The first buffer is the primary mesh; the rest mirror it for additional material passes.
// Nil buffers are skipped.
//
// Parameters:
//   - buffers: the instance buffers to write each frame
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the targets option to an animator
func WithTargets(buffers ...*InstanceBuffer) AnimatorBuilderOption {
	return func(a *orbitAnimator) {
		for _, b := range buffers {
			a.AddTarget(b)
		}
	}
}
