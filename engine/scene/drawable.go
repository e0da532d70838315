package scene

import (
	"github.com/Carmen-Shannon/oxy-refract/common"
	"github.com/Carmen-Shannon/oxy-refract/engine/model"
	"github.com/Carmen-Shannon/oxy-refract/engine/renderer/animator"
	"github.com/Carmen-Shannon/oxy-refract/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-refract/engine/renderer/material"
)

const (
	// ObjectBinding is the binding of the node's world matrix in the object group.
	ObjectBinding = 0

	// InstanceBinding is the binding of the instance storage buffer in the object group.
	InstanceBinding = 1
)

// Drawable pairs a mesh with the material it is drawn with and the per-instance transforms that
// place its copies. A Drawable with one instance and an identity transform draws a single mesh.
//
// Models and materials may be shared between drawables; the object provider is never shared
// because it holds the owning node's world matrix.
type Drawable struct {
	// Model is the mesh uploaded once and referenced by every draw.
	Model model.Model

	// Material selects the pipeline and feeds the material group.
	Material material.Material

	// Instances holds one transform per drawn copy. The orbit animator writes into it.
	Instances *animator.InstanceBuffer

	// Texture is bound to the material's base texture role, if its program declares one.
	Texture *common.TextureStagingData

	object bind_group_provider.BindGroupProvider
}

// NewDrawable creates a drawable with its own object provider and an instance buffer of the
// given size, every slot initialised to the identity.
//
// Parameters:
//   - name: label prefix for the object provider
//   - mdl: the mesh
//   - mat: the material
//   - instances: the number of copies, negative counts are treated as zero
//
// Returns:
//   - *Drawable: the drawable
func NewDrawable(name string, mdl model.Model, mat material.Material, instances int) *Drawable {
	object := bind_group_provider.NewBindGroupProvider(name + "_object")
	return &Drawable{
		Model:     mdl,
		Material:  mat,
		Instances: animator.NewInstanceBuffer(instances, object, InstanceBinding),
		object:    object,
	}
}

// ObjectProvider returns the provider holding the world matrix and instance buffer.
func (d *Drawable) ObjectProvider() bind_group_provider.BindGroupProvider {
	return d.object
}

// InstanceCount returns the number of copies drawn.
func (d *Drawable) InstanceCount() int {
	if d.Instances == nil {
		return 0
	}
	return d.Instances.Len()
}

// objectUniform marshals the world matrix for the object group.
func objectUniform(world [16]float32) []byte {
	u := model.GPUObjectUniform{Model: world}
	return u.Marshal()
}
