package scene

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-refract/common"
	"github.com/Carmen-Shannon/oxy-refract/engine/camera"
	"github.com/go-gl/mathgl/mgl32"
)

// NodeKind describes what a node contributes to the frame.
type NodeKind int

const (
	// NodeGroup only transforms its children.
	NodeGroup NodeKind = iota

	// NodeMesh draws a Drawable, optionally instanced.
	NodeMesh
)

// String returns the lowercase kind name.
func (k NodeKind) String() string {
	switch k {
	case NodeGroup:
		return "group"
	case NodeMesh:
		return "mesh"
	default:
		return fmt.Sprintf("NodeKind(%d)", int(k))
	}
}

// node is the implementation of the Node interface.
type node struct {
	kind NodeKind
	name string

	parent   *node
	children []*node

	position mgl32.Vec3
	rotation mgl32.Mat4
	scale    mgl32.Vec3
	layers   camera.Layers

	drawable *Drawable
}

// Node is an element of the scene graph. Its local transform is T * R * S and its world transform
// is the product of every ancestor's local transform with its own. Layers are not inherited: a
// mesh is drawn by a pass only when its own mask includes the pass layer.
//
// Nodes are built once at setup. Transform changes after Build must be followed by
// Scene.MarkTransformsDirty so object uniforms are re-uploaded.
type Node interface {
	// Name retrieves the node identifier. Names are not required to be unique.
	Name() string

	// Kind retrieves whether the node is a group or a mesh.
	Kind() NodeKind

	// Parent retrieves the parent node, or nil for a root.
	Parent() Node

	// Children retrieves the direct children in insertion order.
	Children() []Node

	// AddChild attaches child to this node, detaching it from any previous parent.
	// Nil children and cycles are ignored.
	//
	// Parameters:
	//   - child: the node to attach
	AddChild(child Node)

	// Position retrieves the local translation.
	Position() mgl32.Vec3

	// SetPosition sets the local translation.
	SetPosition(x, y, z float32)

	// Rotation retrieves the local rotation matrix.
	Rotation() mgl32.Mat4

	// SetRotation sets the local rotation from XYZ Euler angles in radians.
	//
	// Parameters:
	//   - x, y, z: rotation about each axis, applied X first
	SetRotation(x, y, z float32)

	// LookAt rotates the node so its +Z axis points at a world-space target, accounting for the
	// rotation of its ancestors. Text quads face +Z, so this turns them towards the target.
	//
	// Parameters:
	//   - target: the world-space point to face
	LookAt(target mgl32.Vec3)

	// Scale retrieves the local per-axis scale.
	Scale() mgl32.Vec3

	// SetScale sets the local per-axis scale.
	SetScale(x, y, z float32)

	// Layers retrieves the node's layer mask.
	Layers() camera.Layers

	// SetLayers replaces the node's layer mask.
	//
	// Parameters:
	//   - mask: the layers the node is drawn on
	SetLayers(mask camera.Layers)

	// Drawable retrieves what a mesh node draws, or nil for groups.
	Drawable() *Drawable

	// LocalMatrix returns T * R * S.
	LocalMatrix() mgl32.Mat4

	// WorldMatrix returns the product of the ancestors' local matrices and this node's.
	WorldMatrix() mgl32.Mat4

	// Walk visits the node and its descendants depth first, parents before children.
	// Returning false from fn skips the visited node's children.
	//
	// Parameters:
	//   - fn: the visitor
	Walk(fn func(n Node) bool)
}

var _ Node = &node{}

// NewNode creates a detached node with an identity transform on the main layer.
//
// Parameters:
//   - kind: group or mesh
//   - name: the node identifier
//   - options: variadic list of NodeBuilderOption functions
//
// Returns:
//   - Node: the new node
func NewNode(kind NodeKind, name string, options ...NodeBuilderOption) Node {
	n := &node{
		kind:     kind,
		name:     name,
		rotation: mgl32.Ident4(),
		scale:    mgl32.Vec3{1, 1, 1},
		layers:   camera.LayerMask(camera.LayerMain),
	}
	for _, opt := range options {
		opt(n)
	}
	return n
}

// NewGroup creates a group node.
func NewGroup(name string, options ...NodeBuilderOption) Node {
	return NewNode(NodeGroup, name, options...)
}

// NewMesh creates a mesh node drawing d.
//
// Parameters:
//   - name: the node identifier
//   - d: what the node draws
//   - options: variadic list of NodeBuilderOption functions
//
// Returns:
//   - Node: the new mesh node
func NewMesh(name string, d *Drawable, options ...NodeBuilderOption) Node {
	return NewNode(NodeMesh, name, append([]NodeBuilderOption{WithDrawable(d)}, options...)...)
}

func (n *node) Name() string {
	return n.name
}

func (n *node) Kind() NodeKind {
	return n.kind
}

func (n *node) Parent() Node {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *node) Children() []Node {
	out := make([]Node, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

func (n *node) AddChild(child Node) {
	c, ok := child.(*node)
	if !ok || c == nil {
		return
	}
	for p := n; p != nil; p = p.parent {
		if p == c {
			return
		}
	}
	if c.parent != nil {
		c.parent.removeChild(c)
	}
	c.parent = n
	n.children = append(n.children, c)
}

func (n *node) removeChild(c *node) {
	for i, existing := range n.children {
		if existing == c {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return
		}
	}
}

func (n *node) Position() mgl32.Vec3 {
	return n.position
}

func (n *node) SetPosition(x, y, z float32) {
	n.position = mgl32.Vec3{x, y, z}
}

func (n *node) Rotation() mgl32.Mat4 {
	return n.rotation
}

func (n *node) SetRotation(x, y, z float32) {
	n.rotation = common.EulerXYZ(x, y, z)
}

func (n *node) LookAt(target mgl32.Vec3) {
	world := n.WorldMatrix()
	eye := mgl32.Vec3{world[12], world[13], world[14]}
	rot := common.FaceTowards(eye, target, mgl32.Vec3{0, 1, 0})
	if n.parent != nil {
		parentRot := n.parent.WorldMatrix().Mat3().Mat4()
		rot = parentRot.Inv().Mul4(rot)
	}
	n.rotation = rot
}

func (n *node) Scale() mgl32.Vec3 {
	return n.scale
}

func (n *node) SetScale(x, y, z float32) {
	n.scale = mgl32.Vec3{x, y, z}
}

func (n *node) Layers() camera.Layers {
	return n.layers
}

func (n *node) SetLayers(mask camera.Layers) {
	n.layers = mask
}

func (n *node) Drawable() *Drawable {
	return n.drawable
}

func (n *node) LocalMatrix() mgl32.Mat4 {
	return common.Compose(n.position, n.rotation, n.scale)
}

func (n *node) WorldMatrix() mgl32.Mat4 {
	m := n.LocalMatrix()
	for p := n.parent; p != nil; p = p.parent {
		m = p.LocalMatrix().Mul4(m)
	}
	return m
}

func (n *node) Walk(fn func(n Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}
