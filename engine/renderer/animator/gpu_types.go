package animator

import (
	_ "embed"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-refract/common"
	"github.com/Carmen-Shannon/oxy-refract/engine/renderer/bind_group_provider"
	"github.com/go-gl/mathgl/mgl32"
)

// GPUInstanceDataSource is the canonical WGSL definition of the InstanceData struct.
// Matches GPUInstanceData layout exactly (64 bytes, std430 aligned).
//
//go:embed assets/instance_data.wgsl
var GPUInstanceDataSource string

// GPUInstanceData is the GPU-aligned representation of one instance transform.
// Size: 64 bytes (std430 aligned).
type GPUInstanceData struct {
	Transform [16]float32 // offset 0, size 64 (mat4x4<f32>)
}

// Size returns the size of the GPUInstanceData struct in bytes.
//
// Returns:
//   - int: The size of the struct in bytes.
func (g *GPUInstanceData) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUInstanceData struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload.
func (g *GPUInstanceData) Marshal() []byte {
	return common.MarshalMat4s(nil, []mgl32.Mat4{mgl32.Mat4(g.Transform)})
}

// InstanceBuffer is a fixed-length array of instance transforms mirrored into one storage
// binding of a BindGroupProvider. The animator overwrites slots and marks the buffer dirty;
// the engine drains it with StagedWrite before drawing.
type InstanceBuffer struct {
	matrices []mgl32.Mat4
	provider bind_group_provider.BindGroupProvider
	binding  int
	dirty    bool

	// staging is reused by every StagedWrite call.
	staging []byte
}

// NewInstanceBuffer creates a buffer of n identity transforms targeting a provider binding.
// The buffer starts dirty so the first frame uploads it.
//
// Parameters:
//   - n: the number of instance slots, negative values are treated as zero
//   - provider: the provider owning the GPU storage buffer, may be nil in tests
//   - binding: the binding index of the storage buffer within the provider
//
// Returns:
//   - *InstanceBuffer: the new buffer
func NewInstanceBuffer(n int, provider bind_group_provider.BindGroupProvider, binding int) *InstanceBuffer {
	n = max(n, 0)
	b := &InstanceBuffer{
		matrices: make([]mgl32.Mat4, n),
		provider: provider,
		binding:  binding,
		dirty:    true,
		staging:  make([]byte, 0, n*64),
	}
	for i := range b.matrices {
		b.matrices[i] = mgl32.Ident4()
	}
	return b
}

// Len returns the number of instance slots.
func (b *InstanceBuffer) Len() int {
	return len(b.matrices)
}

// ByteSize returns the size in bytes of the GPU storage buffer backing this instance buffer.
func (b *InstanceBuffer) ByteSize() uint64 {
	return uint64(len(b.matrices)) * 64
}

// Provider returns the provider owning the GPU storage buffer.
func (b *InstanceBuffer) Provider() bind_group_provider.BindGroupProvider {
	return b.provider
}

// Binding returns the storage binding index within the provider.
func (b *InstanceBuffer) Binding() int {
	return b.binding
}

// MatrixAt returns the transform stored at slot i, or the identity when i is out of range.
func (b *InstanceBuffer) MatrixAt(i int) mgl32.Mat4 {
	if i < 0 || i >= len(b.matrices) {
		return mgl32.Ident4()
	}
	return b.matrices[i]
}

// SetMatrixAt overwrites the transform at slot i. Out of range indices are ignored.
//
// Parameters:
//   - i: the instance slot
//   - m: the column-major transform
func (b *InstanceBuffer) SetMatrixAt(i int, m mgl32.Mat4) {
	if i < 0 || i >= len(b.matrices) {
		return
	}
	b.matrices[i] = m
}

// MarkDirty flags the buffer for upload on the next StagedWrite.
func (b *InstanceBuffer) MarkDirty() {
	b.dirty = true
}

// Dirty reports whether the buffer changed since the last StagedWrite.
func (b *InstanceBuffer) Dirty() bool {
	return b.dirty
}

// StagedWrite marshals the transforms into a buffer write and clears the dirty flag.
// The returned Data aliases an internal slice that is overwritten by the next call,
// so the write must be submitted before the buffer is staged again.
//
// Returns:
//   - bind_group_provider.BufferWrite: the write covering every slot
//   - bool: false when the buffer is clean or empty
func (b *InstanceBuffer) StagedWrite() (bind_group_provider.BufferWrite, bool) {
	if !b.dirty || len(b.matrices) == 0 {
		return bind_group_provider.BufferWrite{}, false
	}
	b.staging = common.MarshalMat4s(b.staging, b.matrices)
	b.dirty = false
	return bind_group_provider.BufferWrite{
		Provider: b.provider,
		Binding:  b.binding,
		Data:     b.staging,
	}, true
}
