package animator

import (
	"github.com/Carmen-Shannon/oxy-refract/common"
)

// orbitAnimator is the implementation of the OrbitAnimator interface.
type orbitAnimator struct {
	params  []InstanceParams
	targets []*InstanceBuffer
}

// OrbitAnimator drives a fixed set of instances along their orbits. It owns the immutable
// per-instance parameters and writes the same transforms into every target buffer, so the
// primary mesh and its extra material passes stay in lockstep.
//
// Update runs on the render goroutine once per frame, before the buffers are staged for upload.
type OrbitAnimator interface {
	// Count returns the number of animated instances.
	Count() int

	// Params returns the parameters of instance i.
	//
	// Parameters:
	//   - i: the instance index
	//
	// Returns:
	//   - InstanceParams: the parameters, or the zero value when i is out of range
	Params(i int) InstanceParams

	// Targets returns the buffers receiving transforms, primary first.
	Targets() []*InstanceBuffer

	// AddTarget appends a buffer that receives the same transforms as the existing targets.
	//
	// Parameters:
	//   - buffer: the buffer to write, nil is ignored
	AddTarget(buffer *InstanceBuffer)

	// Update recomputes every instance transform for the elapsed time, writes it into slot i of
	// every target, and marks each target dirty. It is a no-op when there are no instances.
	//
	// Parameters:
	//   - elapsed: seconds since the animation started
	Update(elapsed float64)
}

var _ OrbitAnimator = &orbitAnimator{}

// NewOrbitAnimator creates an animator over a precomputed parameter set.
//
// Parameters:
//   - params: one record per instance, copied so later changes by the caller have no effect
//   - options: a variadic list of AnimatorBuilderOption functions
//
// Returns:
//   - OrbitAnimator: the new animator
func NewOrbitAnimator(params []InstanceParams, options ...AnimatorBuilderOption) OrbitAnimator {
	a := &orbitAnimator{
		params: append([]InstanceParams(nil), params...),
	}
	for _, opt := range options {
		opt(a)
	}
	return a
}

func (a *orbitAnimator) Count() int {
	return len(a.params)
}

func (a *orbitAnimator) Params(i int) InstanceParams {
	if i < 0 || i >= len(a.params) {
		return InstanceParams{}
	}
	return a.params[i]
}

func (a *orbitAnimator) Targets() []*InstanceBuffer {
	return a.targets
}

func (a *orbitAnimator) AddTarget(buffer *InstanceBuffer) {
	if buffer == nil {
		return
	}
	a.targets = append(a.targets, buffer)
}

func (a *orbitAnimator) Update(elapsed float64) {
	n := len(a.params)
	if n == 0 {
		return
	}
	for i, p := range a.params {
		pos, s := InstanceTransform(i, n, elapsed, p)
		m := common.TranslateScale(float32(pos[0]), float32(pos[1]), float32(pos[2]), float32(s))
		for _, t := range a.targets {
			t.SetMatrixAt(i, m)
		}
	}
	for _, t := range a.targets {
		t.MarkDirty()
	}
}
