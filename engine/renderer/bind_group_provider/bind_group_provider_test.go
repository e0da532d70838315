package bind_group_provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBindGroupProviderKeepsLabel(t *testing.T) {
	t.Parallel()

	p := NewBindGroupProvider("camera_0")

	assert.Equal(t, "camera_0", p.Label())
	assert.Nil(t, p.BindGroup())
	assert.Nil(t, p.Buffer(0))
	assert.Nil(t, p.TextureView(1))
	assert.Nil(t, p.Sampler(2))
	assert.Zero(t, p.IndexCount())
}

func TestSharedTextureViewTracking(t *testing.T) {
	t.Parallel()

	p := NewBindGroupProvider("refraction", WithSharedTextureView(1, nil))
	assert.True(t, p.IsShared(1))

	p.SetTexture(1, nil, nil)
	assert.False(t, p.IsShared(1), "owning a texture clears the shared mark")

	p.SetSharedTextureView(2, nil)
	assert.True(t, p.IsShared(2))
}

func TestReleaseWithoutGPUObjects(t *testing.T) {
	t.Parallel()

	p := NewBindGroupProvider("empty")
	p.SetIndexCount(36)
	p.SetSharedTextureView(0, nil)
	p.SetBuffer(1, nil)

	require.NotPanics(t, p.Release)
	assert.Zero(t, p.IndexCount())
	assert.False(t, p.IsShared(0))
	require.NotPanics(t, p.ReleaseBindGroup)
}

func TestWriteBatch(t *testing.T) {
	t.Parallel()

	p := NewBindGroupProvider("object")
	var batch WriteBatch

	batch.Add(p, 1, []byte{1, 2, 3, 4})
	batch.Add(p, 0, nil)
	batch.Add(nil, 0, []byte{1})

	require.Len(t, batch, 1)
	assert.Equal(t, 1, batch[0].Binding)
	assert.Zero(t, batch[0].Offset)
	assert.Same(t, p, batch[0].Provider)

	batch.Reset()
	assert.Empty(t, batch)
}
