package model

import (
	"github.com/Carmen-Shannon/oxy-refract/engine/geometry"
	"github.com/Carmen-Shannon/oxy-refract/engine/renderer/bind_group_provider"
)

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
type ModelBuilderOption func(*model)

// WithName is an option builder that sets the name of the Model.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option to a model
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithMeshProvider is an option builder that sets the BindGroupProvider for GPU mesh resources.
//
// Parameters:
//   - provider: the mesh provider to set
//
// Returns:
//   - ModelBuilderOption: a function that applies the mesh provider option to a model
func WithMeshProvider(provider bind_group_provider.BindGroupProvider) ModelBuilderOption {
	return func(m *model) {
		m.meshProvider = provider
	}
}

// WithVertices is an option builder that marshals vertices into the model's vertex data
// and computes its bounding radius.
//
// Parameters:
//   - vertices: the mesh vertices
//
// Returns:
//   - ModelBuilderOption: a function that applies the vertex data to a model
func WithVertices(vertices []GPUVertex) ModelBuilderOption {
	return func(m *model) {
		m.vertexData = MarshalVertices(vertices)
		m.boundingRadius = ComputeBoundingRadius(vertices)
	}
}

// WithIndices is an option builder that marshals uint32 indices into the model's index data.
//
// Parameters:
//   - indices: the triangle indices
//
// Returns:
//   - ModelBuilderOption: a function that applies the index data to a model
func WithIndices(indices []uint32) ModelBuilderOption {
	return func(m *model) {
		m.indexData = MarshalIndices(indices)
		m.indexCount = len(indices)
	}
}

// WithMesh is an option builder that converts generated geometry into vertex and index data.
//
// Parameters:
//   - mesh: the generated geometry
//
// Returns:
//   - ModelBuilderOption: a function that applies the mesh to a model
func WithMesh(mesh *geometry.Mesh) ModelBuilderOption {
	return func(m *model) {
		vertices := make([]GPUVertex, len(mesh.Positions))
		for i := range vertices {
			vertices[i].Position = mesh.Positions[i]
			if i < len(mesh.Normals) {
				vertices[i].Normal = mesh.Normals[i]
			}
			if i < len(mesh.UVs) {
				vertices[i].TexCoord = mesh.UVs[i]
			}
		}
		WithVertices(vertices)(m)
		WithIndices(mesh.Indices)(m)
	}
}
