package vulkan

import (
	vk "github.com/vulkan-go/vulkan"

	"hexthing/src/render"
)

type RenderPass struct {
	dev    vk.Device
	handle vk.RenderPass
}

// CreateRenderPass builds a single-subpass pass with one color attachment
// and one external dependency that holds the attachment write until
// desc.WaitStage.
func (d *Device) CreateRenderPass(desc render.RenderPassDesc) (render.RenderPass, error) {
	attachment := vk.AttachmentDescription{
		Format:         vk.Format(desc.Format),
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOp(desc.Load),
		StoreOp:        vk.AttachmentStoreOp(desc.Store),
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayout(desc.InitialLayout),
		FinalLayout:    vk.ImageLayout(desc.FinalLayout),
	}
	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: 1,
		PColorAttachments: []vk.AttachmentReference{{
			Attachment: 0,
			Layout:     vk.ImageLayout(desc.SubpassLayout),
		}},
	}
	dependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(desc.WaitStage),
		DstStageMask:  vk.PipelineStageFlags(desc.WaitStage),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
	}
	info := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: 1,
		PAttachments:    []vk.AttachmentDescription{attachment},
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}

	rp := &RenderPass{dev: d.handle}
	if ret := vk.CreateRenderPass(d.handle, &info, nil, &rp.handle); isError(ret) {
		return nil, newError(ret, "create render pass")
	}
	return rp, nil
}

func (rp *RenderPass) Destroy() {
	vk.DestroyRenderPass(rp.dev, rp.handle, nil)
}

type ImageView struct {
	dev    vk.Device
	handle vk.ImageView
}

func (d *Device) CreateImageView(img render.Image, format render.Format) (render.ImageView, error) {
	info := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    img.(*image).handle,
		ViewType: vk.ImageViewType2d,
		Format:   vk.Format(format),
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LevelCount: 1,
			LayerCount: 1,
		},
	}
	v := &ImageView{dev: d.handle}
	if ret := vk.CreateImageView(d.handle, &info, nil, &v.handle); isError(ret) {
		return nil, newError(ret, "create image view")
	}
	return v, nil
}

func (v *ImageView) Destroy() {
	vk.DestroyImageView(v.dev, v.handle, nil)
}

type Framebuffer struct {
	dev    vk.Device
	handle vk.Framebuffer
}

func (d *Device) CreateFramebuffer(rp render.RenderPass, view render.ImageView, extent render.Extent) (render.Framebuffer, error) {
	info := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      rp.(*RenderPass).handle,
		AttachmentCount: 1,
		PAttachments:    []vk.ImageView{view.(*ImageView).handle},
		Width:           extent.Width,
		Height:          extent.Height,
		Layers:          1,
	}
	fb := &Framebuffer{dev: d.handle}
	if ret := vk.CreateFramebuffer(d.handle, &info, nil, &fb.handle); isError(ret) {
		return nil, newError(ret, "create framebuffer")
	}
	return fb, nil
}

func (fb *Framebuffer) Destroy() {
	vk.DestroyFramebuffer(fb.dev, fb.handle, nil)
}
