package scene

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-refract/engine/camera"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertVec3InDelta(t *testing.T, expected, actual mgl32.Vec3) {
	t.Helper()
	for i := range 3 {
		assert.InDelta(t, expected[i], actual[i], 1e-4, "component %d of %v", i, actual)
	}
}

func TestNewNodeDefaults(t *testing.T) {
	t.Parallel()

	n := NewGroup("group")

	assert.Equal(t, "group", n.Name())
	assert.Equal(t, NodeGroup, n.Kind())
	assert.Nil(t, n.Parent())
	assert.Empty(t, n.Children())
	assert.Equal(t, mgl32.Ident4(), n.LocalMatrix())
	assert.Equal(t, camera.LayerMask(camera.LayerMain), n.Layers())
	assert.Nil(t, n.Drawable())
}

func TestNodeKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "group", NodeGroup.String())
	assert.Equal(t, "mesh", NodeMesh.String())
	assert.Equal(t, "NodeKind(7)", NodeKind(7).String())
}

func TestWorldMatrixComposesAncestors(t *testing.T) {
	t.Parallel()

	// Arrange
	child := NewGroup("child", WithPosition(1, 0, 0))
	parent := NewGroup("parent",
		WithPosition(0, 2, 0),
		WithRotation(0, 0, math.Pi/2),
		WithScale(2, 2, 2),
		WithChildren(child),
	)
	root := NewGroup("root", WithPosition(0, 0, -3), WithChildren(parent))

	// Act
	world := child.WorldMatrix()

	// Assert
	require.Same(t, root, parent.Parent())
	// (1,0,0) scaled to (2,0,0), rotated a quarter turn about Z to (0,2,0), then translated
	assertVec3InDelta(t, mgl32.Vec3{0, 4, -3}, world.Col(3).Vec3())
}

func TestAddChildReparents(t *testing.T) {
	t.Parallel()

	a := NewGroup("a")
	b := NewGroup("b")
	c := NewGroup("c")

	a.AddChild(c)
	b.AddChild(c)

	assert.Empty(t, a.Children())
	require.Len(t, b.Children(), 1)
	assert.Same(t, c, b.Children()[0])
	assert.Same(t, b, c.Parent())
}

func TestAddChildIgnoresCyclesAndNil(t *testing.T) {
	t.Parallel()

	root := NewGroup("root")
	child := NewGroup("child")
	root.AddChild(child)

	child.AddChild(root)
	root.AddChild(root)
	root.AddChild(nil)

	assert.Nil(t, root.Parent())
	assert.Len(t, root.Children(), 1)
	assert.Empty(t, child.Children())
}

func TestLookAtFacesTarget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		parent   Node
		position mgl32.Vec3
		want     mgl32.Vec3
	}{
		{
			name:     "detached",
			position: mgl32.Vec3{0, 0, 10},
			want:     mgl32.Vec3{0, 0, -1},
		},
		{
			name:     "rotated parent",
			parent:   NewGroup("parent", WithRotation(0, math.Pi/2, 0)),
			position: mgl32.Vec3{0, 0, 5},
			want:     mgl32.Vec3{-1, 0, 0},
		},
		{
			name:     "above",
			position: mgl32.Vec3{0, 10, 0},
			want:     mgl32.Vec3{0, -1, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// Arrange
			n := NewGroup("quad")
			if tt.parent != nil {
				tt.parent.AddChild(n)
			}
			n.SetPosition(tt.position.X(), tt.position.Y(), tt.position.Z())

			// Act
			n.LookAt(mgl32.Vec3{})

			// Assert
			forward := n.WorldMatrix().Col(2).Vec3().Normalize()
			assert.InDelta(t, tt.want.X(), forward.X(), 1e-3)
			assert.InDelta(t, tt.want.Y(), forward.Y(), 1e-3)
			assert.InDelta(t, tt.want.Z(), forward.Z(), 1e-3)
		})
	}
}

func TestWalkOrderAndSkip(t *testing.T) {
	t.Parallel()

	// Arrange
	leaf := NewGroup("leaf")
	skipped := NewGroup("skipped", WithChildren(NewGroup("hidden")))
	root := NewGroup("root", WithChildren(NewGroup("first", WithChildren(leaf)), skipped))

	// Act
	var visited []string
	root.Walk(func(n Node) bool {
		visited = append(visited, n.Name())
		return n.Name() != "skipped"
	})

	// Assert
	assert.Equal(t, []string{"root", "first", "leaf", "skipped"}, visited)
}

func TestLayersAreNotInherited(t *testing.T) {
	t.Parallel()

	child := NewGroup("child")
	parent := NewGroup("parent", WithLayers(camera.LayerEnvironment), WithChildren(child))

	assert.True(t, parent.Layers().Has(camera.LayerEnvironment))
	assert.False(t, child.Layers().Has(camera.LayerEnvironment))
	assert.True(t, child.Layers().Has(camera.LayerMain))

	child.SetLayers(camera.LayerMask(camera.LayerMain, camera.LayerBackface))
	assert.True(t, child.Layers().Has(camera.LayerBackface))
}
