package light

import (
	"math"
	"sync"
)

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	mu *sync.Mutex

	position  [3]float32
	target    [3]float32
	color     [3]float32
	intensity float32
	angle     float32 // cone half-angle in radians
	penumbra  float32
	enabled   bool
}

// Light defines the interface for a spot light aimed at a target point.
//
// Lights are scene-level entities marshalled into the lighting storage buffer
// whenever they change. Their distance falloff is disabled so that the
// configured intensity reaches the scene unchanged.
type Light interface {
	// Position returns the world-space position of the light.
	//
	// Returns:
	//   - [3]float32: position as (x, y, z)
	Position() [3]float32

	// Target returns the point the cone axis passes through.
	Target() [3]float32

	// Direction returns the normalized cone axis from position to target.
	// A light sitting on its target points down -Y.
	//
	// Returns:
	//   - [3]float32: normalized direction as (x, y, z)
	Direction() [3]float32

	// Color returns the linear RGB color of the light.
	//
	// Returns:
	//   - [3]float32: color as (r, g, b)
	Color() [3]float32

	// Intensity returns the scalar intensity multiplier for the light.
	Intensity() float32

	// Angle returns the cone half-angle in radians.
	Angle() float32

	// Penumbra returns the fraction of the cone that fades out, in [0, 1].
	Penumbra() float32

	// Enabled returns whether this light is uploaded for rendering.
	Enabled() bool

	// ToGPU converts the light into its storage buffer representation.
	ToGPU() GPUSpotLight

	// SetPosition sets the world-space position of the light.
	//
	// Parameters:
	//   - x, y, z: position components
	SetPosition(x, y, z float32)

	// SetTarget sets the point the light aims at.
	//
	// Parameters:
	//   - x, y, z: target components
	SetTarget(x, y, z float32)

	// SetColor sets the RGB color of the light.
	//
	// Parameters:
	//   - r, g, b: color components
	SetColor(r, g, b float32)

	// SetIntensity sets the scalar intensity multiplier.
	SetIntensity(intensity float32)

	// SetAngle sets the cone half-angle in radians, clamped to (0, π/2].
	SetAngle(angle float32)

	// SetPenumbra sets the soft edge fraction, clamped to [0, 1].
	SetPenumbra(penumbra float32)

	// SetEnabled enables or disables the light for rendering.
	SetEnabled(enabled bool)
}

var _ Light = &lightImpl{}

// DefaultAngle is the cone half-angle of a new spot light.
const DefaultAngle = math.Pi / 3

// NewSpotLight creates a white spot light at the origin aimed at the origin, intensity 1,
// angle π/3 and no penumbra, with the provided options applied.
//
// Parameters:
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewSpotLight(opts ...LightBuilderOption) Light {
	l := &lightImpl{
		mu:        &sync.Mutex{},
		color:     [3]float32{1, 1, 1},
		intensity: 1.0,
		angle:     DefaultAngle,
		enabled:   true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Position() [3]float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.position
}

func (l *lightImpl) Target() [3]float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.target
}

func (l *lightImpl) Direction() [3]float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.direction()
}

func (l *lightImpl) direction() [3]float32 {
	d := normalize3(l.target[0]-l.position[0], l.target[1]-l.position[1], l.target[2]-l.position[2])
	if d == ([3]float32{}) {
		return [3]float32{0, -1, 0}
	}
	return d
}

func (l *lightImpl) Color() [3]float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.intensity
}

func (l *lightImpl) Angle() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.angle
}

func (l *lightImpl) Penumbra() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.penumbra
}

func (l *lightImpl) Enabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enabled
}

func (l *lightImpl) ToGPU() GPUSpotLight {
	l.mu.Lock()
	defer l.mu.Unlock()
	return GPUSpotLight{
		Position:  l.position,
		Intensity: l.intensity,
		Direction: l.direction(),
		CosCutoff: float32(math.Cos(float64(l.angle))),
		Color:     l.color,
		Penumbra:  l.penumbra,
	}
}

func (l *lightImpl) SetPosition(x, y, z float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.position = [3]float32{x, y, z}
}

func (l *lightImpl) SetTarget(x, y, z float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.target = [3]float32{x, y, z}
}

func (l *lightImpl) SetColor(r, g, b float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.color = [3]float32{r, g, b}
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.intensity = intensity
}

func (l *lightImpl) SetAngle(angle float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.angle = clampAngle(angle)
}

func (l *lightImpl) SetPenumbra(penumbra float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.penumbra = clamp01(penumbra)
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = enabled
}
