package geometry

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolyhedronCounts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		mesh      *Mesh
		vertices  int
		triangles int
	}{
		{name: "octahedron detail 0", mesh: Octahedron(1, 0), vertices: 6, triangles: 8},
		{name: "octahedron detail 8", mesh: Octahedron(1, 8), vertices: 4*9*9 + 2, triangles: 8 * 81},
		{name: "icosahedron detail 0", mesh: Icosahedron(20, 0), vertices: 12, triangles: 20},
		{name: "icosahedron detail 2", mesh: Icosahedron(1, 2), vertices: 10*3*3 + 2, triangles: 20 * 9},
		{name: "negative detail", mesh: Octahedron(1, -3), vertices: 6, triangles: 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Len(t, tt.mesh.Positions, tt.vertices)
			assert.Len(t, tt.mesh.Normals, tt.vertices)
			assert.Len(t, tt.mesh.UVs, tt.vertices)
			assert.Equal(t, tt.triangles, tt.mesh.TriangleCount())
		})
	}
}

func TestPolyhedronOnSphereAndOutward(t *testing.T) {
	t.Parallel()

	for _, m := range []*Mesh{Octahedron(1.001, 8), Icosahedron(20, 1)} {
		radius := m.Positions[0].Len()
		for i, p := range m.Positions {
			assert.InDelta(t, radius, p.Len(), 1e-3, "vertex %d", i)
			assert.InDelta(t, 1, m.Normals[i].Len(), 1e-5)
			uv := m.UVs[i]
			assert.True(t, uv.X() >= 0 && uv.X() <= 1 && uv.Y() >= 0 && uv.Y() <= 1, "uv %v", uv)
		}

		for f := 0; f < len(m.Indices); f += 3 {
			a, b, c := m.Positions[m.Indices[f]], m.Positions[m.Indices[f+1]], m.Positions[m.Indices[f+2]]
			centroid := a.Add(b).Add(c).Mul(1.0 / 3)
			normal := b.Sub(a).Cross(c.Sub(a))
			require.Greater(t, normal.Dot(centroid), float32(0), "triangle %d winds inward", f/3)
		}
	}
}

func TestIcosahedronVerticesAreTitleAnchors(t *testing.T) {
	t.Parallel()

	verts := Icosahedron(20, 0).Vertices()

	require.Len(t, verts, 12)
	seen := map[mgl32.Vec3]bool{}
	for _, v := range verts {
		assert.InDelta(t, 20, v.Len(), 1e-4)
		seen[v] = true
	}
	assert.Len(t, seen, 12)
}

func TestPlane(t *testing.T) {
	t.Parallel()

	m := Plane(4, 2)

	require.Len(t, m.Positions, 4)
	assert.Equal(t, mgl32.Vec3{-2, 1, 0}, m.Positions[0])
	assert.Equal(t, mgl32.Vec2{0, 0}, m.UVs[0])
	assert.Equal(t, mgl32.Vec2{1, 1}, m.UVs[3])
	assert.Equal(t, 2, m.TriangleCount())
	for f := 0; f < len(m.Indices); f += 3 {
		a, b, c := m.Positions[m.Indices[f]], m.Positions[m.Indices[f+1]], m.Positions[m.Indices[f+2]]
		assert.Greater(t, b.Sub(a).Cross(c.Sub(a)).Z(), float32(0), "faces +Z")
	}
}
