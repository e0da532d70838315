package scene

import (
	"github.com/Carmen-Shannon/oxy-refract/common"
	"github.com/Carmen-Shannon/oxy-refract/engine/camera"
	"github.com/go-gl/mathgl/mgl32"
)

// NodeBuilderOption is a functional option used to configure a Node during construction.
type NodeBuilderOption func(*node)

// WithPosition sets the node's local translation.
//
// Parameters:
//   - x, y, z: the translation
//
// Returns:
//   - NodeBuilderOption: a function that applies the position option to a node
func WithPosition(x, y, z float32) NodeBuilderOption {
	return func(n *node) {
		n.position = mgl32.Vec3{x, y, z}
	}
}

// WithRotation sets the node's local rotation from XYZ Euler angles in radians.
//
// Parameters:
//   - x, y, z: rotation about each axis
//
// Returns:
//   - NodeBuilderOption: a function that applies the rotation option to a node
func WithRotation(x, y, z float32) NodeBuilderOption {
	return func(n *node) {
		n.rotation = common.EulerXYZ(x, y, z)
	}
}

// WithScale sets the node's local per-axis scale.
func WithScale(x, y, z float32) NodeBuilderOption {
	return func(n *node) {
		n.scale = mgl32.Vec3{x, y, z}
	}
}

// WithLayers sets the layers the node is drawn on, replacing the default main layer.
//
// Parameters:
//   - layers: layer indices, see camera.LayerMain and friends
//
// Returns:
//   - NodeBuilderOption: a function that applies the layer option to a node
func WithLayers(layers ...int) NodeBuilderOption {
	return func(n *node) {
		n.layers = camera.LayerMask(layers...)
	}
}

// WithDrawable attaches what a mesh node draws.
func WithDrawable(d *Drawable) NodeBuilderOption {
	return func(n *node) {
		n.drawable = d
	}
}

// WithChildren attaches children in order.
func WithChildren(children ...Node) NodeBuilderOption {
	return func(n *node) {
		for _, c := range children {
			n.AddChild(c)
		}
	}
}
