package model

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-refract/engine/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGPUVertexLayout(t *testing.T) {
	t.Parallel()

	v := GPUVertex{Position: [3]float32{1, 2, 3}, Normal: [3]float32{0, 1, 0}, TexCoord: [2]float32{0.25, 0.75}}
	buf := v.Marshal()

	require.Equal(t, 32, v.Size())
	require.Len(t, buf, 32)
	assert.Equal(t, float32(3), math.Float32frombits(binary.LittleEndian.Uint32(buf[8:])))
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(buf[16:])))
	assert.Equal(t, float32(0.75), math.Float32frombits(binary.LittleEndian.Uint32(buf[28:])))
}

func TestGPUObjectUniformSize(t *testing.T) {
	t.Parallel()

	u := GPUObjectUniform{Model: [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 4, 5, 6, 1}}
	buf := u.Marshal()

	require.Equal(t, 64, u.Size())
	assert.Equal(t, float32(5), math.Float32frombits(binary.LittleEndian.Uint32(buf[52:])))
}

func TestFromMesh(t *testing.T) {
	t.Parallel()

	// Arrange
	mesh := geometry.Octahedron(2, 1)

	// Act
	m := FromMesh("sphere", mesh)

	// Assert
	assert.Equal(t, "sphere", m.Name())
	assert.Len(t, m.VertexData(), len(mesh.Positions)*32)
	assert.Len(t, m.IndexData(), len(mesh.Indices)*4)
	assert.Equal(t, len(mesh.Indices), m.IndexCount())
	assert.InDelta(t, 2, m.BoundingRadius(), 1e-5)
	require.NotNil(t, m.MeshProvider())
	assert.Equal(t, "sphere_mesh", m.MeshProvider().Label())
	assert.False(t, m.Uploaded())

	first := binary.LittleEndian.Uint32(m.IndexData())
	assert.Equal(t, mesh.Indices[0], first)
}

func TestComputeBoundingRadiusEmpty(t *testing.T) {
	t.Parallel()

	assert.Zero(t, ComputeBoundingRadius(nil))
	assert.Empty(t, MarshalVertices(nil))
}
