package render

// RenderTargetPass is the single-subpass render pass that clears the
// swapchain image, renders into it, and leaves it ready for presentation.
type RenderTargetPass struct {
	pass   RenderPass
	format Format
	state  Lifecycle
}

func NewRenderTargetPass(dev Device, format Format) (*RenderTargetPass, error) {
	rp, err := dev.CreateRenderPass(RenderPassDesc{
		Format:        format,
		Load:          LoadOpClear,
		Store:         StoreOpStore,
		InitialLayout: ImageLayoutUndefined,
		FinalLayout:   ImageLayoutPresentSrc,
		SubpassLayout: ImageLayoutColorAttachmentOptimal,
		WaitStage:     PipelineStageColorAttachmentOutput,
	})
	if err != nil {
		return nil, fatal("create render pass", err)
	}
	return &RenderTargetPass{pass: rp, format: format, state: Ready}, nil
}

func (p *RenderTargetPass) Format() Format {
	return p.format
}

func (p *RenderTargetPass) Handle() RenderPass {
	p.state.mustBeReady("render pass")
	return p.pass
}

func (p *RenderTargetPass) Destroy() {
	if p == nil || p.state != Ready {
		return
	}
	p.pass.Destroy()
	p.state = Destroyed
}
