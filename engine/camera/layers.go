package camera

// Layers is a bit mask of render layers. A camera draws a node only when their masks intersect.
type Layers uint32

const (
	// LayerMain is the layer drawn to the surface.
	LayerMain = 0
	// LayerEnvironment is captured into the environment target sampled by refraction.
	LayerEnvironment = 1
	// LayerBackface is captured into the backface normal target.
	LayerBackface = 2
)

// LayerMask returns a mask with each listed layer enabled. Layers outside [0, 31] are ignored.
func LayerMask(layers ...int) Layers {
	var m Layers
	for _, l := range layers {
		m = m.Enable(l)
	}
	return m
}

// Enable returns the mask with layer set.
func (l Layers) Enable(layer int) Layers {
	if layer < 0 || layer > 31 {
		return l
	}
	return l | 1<<uint(layer)
}

// Disable returns the mask with layer cleared.
func (l Layers) Disable(layer int) Layers {
	if layer < 0 || layer > 31 {
		return l
	}
	return l &^ (1 << uint(layer))
}

// Has reports whether layer is enabled.
func (l Layers) Has(layer int) bool {
	return layer >= 0 && layer <= 31 && l&(1<<uint(layer)) != 0
}

// Test reports whether the masks share at least one layer.
func (l Layers) Test(other Layers) bool {
	return l&other != 0
}
