// Package geometry generates indexed triangle meshes for the demo's primitives: subdivided
// polyhedra projected onto a sphere and flat planes.
package geometry

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Mesh is an indexed triangle list with per-vertex normals and texture coordinates.
// Triangles are counter-clockwise when seen from outside.
type Mesh struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
	Indices   []uint32
}

// Vertices returns the mesh positions. For a polyhedron these are the unique corner points.
func (m *Mesh) Vertices() []mgl32.Vec3 {
	return m.Positions
}

// TriangleCount returns the number of triangles in the mesh.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

var octahedronVertices = []mgl32.Vec3{
	{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1},
}

var octahedronFaces = []uint32{
	0, 2, 4, 0, 4, 3, 0, 3, 5, 0, 5, 2,
	1, 2, 5, 1, 5, 3, 1, 3, 4, 1, 4, 2,
}

var icosahedronFaces = []uint32{
	0, 11, 5, 0, 5, 1, 0, 1, 7, 0, 7, 10, 0, 10, 11,
	1, 5, 9, 5, 11, 4, 11, 10, 2, 10, 7, 6, 7, 1, 8,
	3, 9, 4, 3, 4, 2, 3, 2, 6, 3, 6, 8, 3, 8, 9,
	4, 9, 5, 2, 4, 11, 6, 2, 10, 8, 6, 7, 9, 8, 1,
}

func icosahedronVertices() []mgl32.Vec3 {
	t := (1 + math32.Sqrt(5)) / 2
	return []mgl32.Vec3{
		{-1, t, 0}, {1, t, 0}, {-1, -t, 0}, {1, -t, 0},
		{0, -1, t}, {0, 1, t}, {0, -1, -t}, {0, 1, -t},
		{t, 0, -1}, {t, 0, 1}, {-t, 0, -1}, {-t, 0, 1},
	}
}

// Octahedron returns an octahedron of the given radius whose faces are subdivided so every edge
// is split into detail+1 segments, with all vertices pushed onto the sphere.
//
// Parameters:
//   - radius: sphere radius
//   - detail: subdivision level, negative values are treated as 0
//
// Returns:
//   - *Mesh: the indexed mesh
func Octahedron(radius float32, detail int) *Mesh {
	return polyhedron(octahedronVertices, octahedronFaces, radius, detail)
}

// Icosahedron returns an icosahedron of the given radius, subdivided like Octahedron.
// At detail 0 it has exactly the 12 corner vertices.
//
// Parameters:
//   - radius: sphere radius
//   - detail: subdivision level, negative values are treated as 0
//
// Returns:
//   - *Mesh: the indexed mesh
func Icosahedron(radius float32, detail int) *Mesh {
	return polyhedron(icosahedronVertices(), icosahedronFaces, radius, detail)
}

// polyhedron subdivides each base face into a triangular grid, projects every grid point onto
// the sphere and welds shared points so neighbouring faces share vertices.
func polyhedron(base []mgl32.Vec3, faces []uint32, radius float32, detail int) *Mesh {
	detail = max(detail, 0)
	cols := detail + 1
	w := newWelder(radius)

	for f := 0; f+2 < len(faces); f += 3 {
		ia, ib, ic := faces[f], faces[f+1], faces[f+2]
		a, b, c := base[ia], base[ib], base[ic]

		// grid[i][j]: row i walks from edge a-b towards c
		grid := make([][]uint32, cols+1)
		for i := 0; i <= cols; i++ {
			ai := lerp(a, c, float32(i)/float32(cols))
			bi := lerp(b, c, float32(i)/float32(cols))
			rows := cols - i
			grid[i] = make([]uint32, rows+1)
			for j := 0; j <= rows; j++ {
				key := gridKey(ia, ib, ic, cols-i-j, j, i)
				if j == 0 && i == cols {
					grid[i][j] = w.add(key, ai)
					continue
				}
				grid[i][j] = w.add(key, lerp(ai, bi, float32(j)/float32(rows)))
			}
		}

		for i := 0; i < cols; i++ {
			for j := 0; j < 2*(cols-i)-1; j++ {
				k := j / 2
				if j%2 == 0 {
					w.triangle(grid[i][k+1], grid[i+1][k], grid[i][k])
				} else {
					w.triangle(grid[i][k+1], grid[i+1][k+1], grid[i+1][k])
				}
			}
		}
	}
	return w.mesh
}

func lerp(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// pointKey identifies a grid point by the integer barycentric weights of the base vertices it
// lies between, sorted by vertex index. Points on a shared edge get the same key from both faces.
type pointKey [3][2]int32

func gridKey(ia, ib, ic uint32, wa, wb, wc int) pointKey {
	k := pointKey{{int32(ia), int32(wa)}, {int32(ib), int32(wb)}, {int32(ic), int32(wc)}}
	for i := range k {
		if k[i][1] == 0 {
			k[i] = [2]int32{-1, 0}
		}
	}
	for i := 1; i < len(k); i++ {
		for j := i; j > 0 && k[j][0] < k[j-1][0]; j-- {
			k[j], k[j-1] = k[j-1], k[j]
		}
	}
	return k
}

// welder deduplicates grid points and projects them onto the sphere.
type welder struct {
	radius float32
	seen   map[pointKey]uint32
	mesh   *Mesh
}

func newWelder(radius float32) *welder {
	return &welder{
		radius: radius,
		seen:   make(map[pointKey]uint32),
		mesh:   &Mesh{},
	}
}

func (w *welder) add(key pointKey, p mgl32.Vec3) uint32 {
	if idx, ok := w.seen[key]; ok {
		return idx
	}
	n := p.Normalize()
	idx := uint32(len(w.mesh.Positions))
	w.seen[key] = idx
	w.mesh.Positions = append(w.mesh.Positions, n.Mul(w.radius))
	w.mesh.Normals = append(w.mesh.Normals, n)
	w.mesh.UVs = append(w.mesh.UVs, sphereUV(n))
	return idx
}

func (w *welder) triangle(a, b, c uint32) {
	w.mesh.Indices = append(w.mesh.Indices, a, b, c)
}

// sphereUV maps a unit direction to equirectangular coordinates with v growing downward.
func sphereUV(n mgl32.Vec3) mgl32.Vec2 {
	u := math32.Atan2(n[2], -n[0])/(2*math32.Pi) + 0.5
	v := 0.5 - math32.Asin(mgl32.Clamp(n[1], -1, 1))/math32.Pi
	return mgl32.Vec2{u, v}
}

// Plane returns a width x height rectangle in the XY plane facing +Z, centred on the origin.
// UV (0, 0) is the top-left corner.
//
// Parameters:
//   - width: size along X
//   - height: size along Y
//
// Returns:
//   - *Mesh: a two-triangle mesh
func Plane(width, height float32) *Mesh {
	hw, hh := width/2, height/2
	up := mgl32.Vec3{0, 0, 1}
	return &Mesh{
		Positions: []mgl32.Vec3{{-hw, hh, 0}, {hw, hh, 0}, {-hw, -hh, 0}, {hw, -hh, 0}},
		Normals:   []mgl32.Vec3{up, up, up, up},
		UVs:       []mgl32.Vec2{{0, 0}, {1, 0}, {0, 1}, {1, 1}},
		Indices:   []uint32{0, 2, 1, 2, 3, 1},
	}
}
