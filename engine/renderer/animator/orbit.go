package animator

import (
	"math"
	"math/rand"
	"time"
)

// Orbit shape constants.
const (
	// DefaultInstanceCount is the number of instances in each orbiting group of the demo scene.
	DefaultInstanceCount = 24

	orbitRadiusX = 8.0
	orbitRadiusZ = 6.0

	maxScaleFactor = 1.2
	minTimeFactor  = 0.3
	timeFactorSpan = 0.2
)

// InstanceParams holds the immutable random parameters of one orbiting instance.
type InstanceParams struct {
	// ScaleFactor is the peak uniform scale, in [0, 1.2).
	ScaleFactor float64

	// TimeFactor multiplies elapsed time into the instance's orbit angle, in [0.3, 0.5).
	TimeFactor float64

	// Bias offsets the position by ±1 on each axis.
	Bias [3]float64
}

// NewInstanceParams draws the parameters for n instances once.
// Bias signs are -1 when the product of two uniform draws exceeds 0.5, so negative offsets are
// the less likely outcome.
//
// Parameters:
//   - n: the number of instances, negative values are treated as zero
//   - rng: the random source, or nil to seed one from the current time
//
// Returns:
//   - []InstanceParams: n parameter records
func NewInstanceParams(n int, rng *rand.Rand) []InstanceParams {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	params := make([]InstanceParams, max(n, 0))
	for i := range params {
		params[i] = InstanceParams{
			ScaleFactor: maxScaleFactor * rng.Float64(),
			TimeFactor:  minTimeFactor + timeFactorSpan*rng.Float64(),
			Bias:        [3]float64{randomSign(rng), randomSign(rng), randomSign(rng)},
		}
	}
	return params
}

func randomSign(rng *rand.Rand) float64 {
	if rng.Float64()*rng.Float64() > 0.5 {
		return -1
	}
	return 1
}

// EaseOutQuint remaps t with 1 - (1-t)^5. Inputs outside [0, 1] are not clamped.
func EaseOutQuint(t float64) float64 {
	u := 1 - t
	return 1 - u*u*u*u*u
}

// InstanceTransform computes the position and uniform scale of instance i at the given time.
// The orbit is an ellipse of radii 8 (x) and 6 (z); y climbs linearly with the wrapped angle,
// dropping back each revolution. The scale peaks where the instance swings toward the camera.
// Non-finite elapsed values propagate into the result.
//
// Parameters:
//   - i: the instance index in [0, n)
//   - n: the instance count, must be at least 1
//   - elapsed: seconds since the animation started
//   - p: the instance's parameters
//
// Returns:
//   - [3]float64: the position
//   - float64: the uniform scale
func InstanceTransform(i, n int, elapsed float64, p InstanceParams) ([3]float64, float64) {
	angle := 2*math.Pi*float64(i)/float64(n) + elapsed*p.TimeFactor
	sin, cos := math.Sincos(angle)

	pos := [3]float64{
		orbitRadiusX*cos + p.Bias[0],
		-2*math.Pi + 2*wrapAngle(angle+math.Pi/2) + p.Bias[1],
		orbitRadiusZ*sin + p.Bias[2],
	}
	scale := p.ScaleFactor * EaseOutQuint((0.1+(sin+1))/2)
	return pos, scale
}

// wrapAngle reduces a into [0, 2π). NaN stays NaN.
func wrapAngle(a float64) float64 {
	m := math.Mod(a, 2*math.Pi)
	if m < 0 {
		m += 2 * math.Pi
	}
	return m
}
