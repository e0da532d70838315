package renderer

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-refract/common"
	"github.com/Carmen-Shannon/oxy-refract/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func level(w, h uint32) common.TextureStagingData {
	return common.TextureStagingData{Width: w, Height: h, Pixels: make([]byte, w*h*4)}
}

func TestValidMSAA(t *testing.T) {
	t.Parallel()

	for _, n := range []uint32{1, 4, 8, 16} {
		assert.True(t, ValidMSAA(n), "count %d", n)
	}
	for _, n := range []uint32{0, 2, 3, 32} {
		assert.False(t, ValidMSAA(n), "count %d", n)
	}
}

func TestTargetStateFallsBackToSurface(t *testing.T) {
	t.Parallel()

	// Arrange
	surfacePipeline := pipeline.NewPipeline("physical")
	offscreen := surfacePipeline.Variant("physical@env", pipeline.WithTarget(wgpu.TextureFormatRGBA16Float, 1))

	// Act
	sf, ss := targetState(surfacePipeline, wgpu.TextureFormatBGRA8UnormSrgb, MSAA4x)
	of, os := targetState(offscreen, wgpu.TextureFormatBGRA8UnormSrgb, MSAA4x)

	// Assert
	assert.Equal(t, wgpu.TextureFormatBGRA8UnormSrgb, sf)
	assert.Equal(t, uint32(4), ss)
	assert.Equal(t, wgpu.TextureFormatRGBA16Float, of)
	assert.Equal(t, uint32(1), os)
}

func TestDepthCompare(t *testing.T) {
	t.Parallel()

	assert.Equal(t, wgpu.CompareFunctionLessEqual, depthCompare(pipeline.NewPipeline("a")))
	assert.Equal(t, wgpu.CompareFunctionAlways, depthCompare(pipeline.NewPipeline("b", pipeline.WithDepthTestEnabled(false))))
}

func TestBufferUsage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst, bufferUsage(wgpu.BufferBindingTypeUniform))
	assert.Equal(t, wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst, bufferUsage(wgpu.BufferBindingTypeReadOnlyStorage))
}

func TestValidateMipChain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		levels  []common.TextureStagingData
		wantErr string
	}{
		{name: "single level", levels: []common.TextureStagingData{level(7, 3)}},
		{name: "full chain", levels: []common.TextureStagingData{level(8, 4), level(4, 2), level(2, 1), level(1, 1)}},
		{name: "odd sizes round down", levels: []common.TextureStagingData{level(5, 3), level(2, 1), level(1, 1)}},
		{name: "empty", wantErr: "no texture levels"},
		{name: "zero size", levels: []common.TextureStagingData{{}}, wantErr: "zero size"},
		{name: "short pixels", levels: []common.TextureStagingData{{Width: 2, Height: 2, Pixels: make([]byte, 4)}}, wantErr: "has 4 bytes, want 16"},
		{name: "wrong level size", levels: []common.TextureStagingData{level(8, 8), level(3, 4)}, wantErr: "level 1 is 3x4, want 4x4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := validateMipChain(tt.levels)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRenderTargetRejectsZeroSize(t *testing.T) {
	t.Parallel()

	rt := &renderTarget{key: "env", format: wgpu.TextureFormatRGBA16Float}
	err := rt.setSize(nil, 0, 600)

	require.Error(t, err)
	assert.Contains(t, err.Error(), `render target "env"`)
	assert.Nil(t, rt.colorView)
}
