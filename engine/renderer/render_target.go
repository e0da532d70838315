package renderer

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// renderTarget is an offscreen, single-sampled color attachment with its own depth buffer.
// It follows the surface size and is rebuilt whenever the surface is reconfigured.
type renderTarget struct {
	key    string
	format wgpu.TextureFormat
	clear  wgpu.Color

	width, height uint32

	colorTexture *wgpu.Texture
	colorView    *wgpu.TextureView
	depthTexture *wgpu.Texture
	depthView    *wgpu.TextureView
}

// setSize (re)creates the target's textures. It is a no-op when the size is unchanged.
func (t *renderTarget) setSize(device *wgpu.Device, width, height uint32) error {
	if width == 0 || height == 0 {
		return fmt.Errorf("render target %q: zero size %dx%d", t.key, width, height)
	}
	if t.colorView != nil && t.width == width && t.height == height {
		return nil
	}
	t.release()

	var err error
	t.colorTexture, t.colorView, err = createAttachment(device, t.key+" Color", t.format, width, height, 1,
		wgpu.TextureUsageRenderAttachment|wgpu.TextureUsageTextureBinding)
	if err != nil {
		return fmt.Errorf("render target %q: %w", t.key, err)
	}
	t.depthTexture, t.depthView, err = createAttachment(device, t.key+" Depth", depthFormat, width, height, 1,
		wgpu.TextureUsageRenderAttachment)
	if err != nil {
		t.release()
		return fmt.Errorf("render target %q: %w", t.key, err)
	}
	t.width, t.height = width, height
	return nil
}

// passDescriptor describes a pass that clears and stores the target's color.
func (t *renderTarget) passDescriptor() *wgpu.RenderPassDescriptor {
	return &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       t.colorView,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: t.clear,
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            t.depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}
}

func (t *renderTarget) release() {
	for _, v := range []*wgpu.TextureView{t.colorView, t.depthView} {
		if v != nil {
			v.Release()
		}
	}
	for _, tex := range []*wgpu.Texture{t.colorTexture, t.depthTexture} {
		if tex != nil {
			tex.Release()
		}
	}
	t.colorView, t.depthView = nil, nil
	t.colorTexture, t.depthTexture = nil, nil
	t.width, t.height = 0, 0
}

// createAttachment creates a 2D single-mip texture and its default view.
func createAttachment(device *wgpu.Device, label string, format wgpu.TextureFormat, width, height, samples uint32, usage wgpu.TextureUsage) (*wgpu.Texture, *wgpu.TextureView, error) {
	tex, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   samples,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, nil, err
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, nil, err
	}
	return tex, view, nil
}
