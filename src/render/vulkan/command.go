package vulkan

import (
	vk "github.com/vulkan-go/vulkan"

	"hexthing/src/render"
)

// CommandPool allocates primary command buffers on the device's queue
// family. Buffers are reset together through the pool.
type CommandPool struct {
	dev    vk.Device
	handle vk.CommandPool
}

func (d *Device) CreateCommandPool() (render.CommandPool, error) {
	info := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateTransientBit),
		QueueFamilyIndex: d.family,
	}
	p := &CommandPool{dev: d.handle}
	if ret := vk.CreateCommandPool(d.handle, &info, nil, &p.handle); isError(ret) {
		return nil, newError(ret, "create command pool")
	}
	return p, nil
}

func (p *CommandPool) Allocate() (render.CommandBuffer, error) {
	info := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        p.handle,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}
	buffers := make([]vk.CommandBuffer, 1)
	if ret := vk.AllocateCommandBuffers(p.dev, &info, buffers); isError(ret) {
		return nil, newError(ret, "allocate command buffer")
	}
	return &CommandBuffer{handle: buffers[0]}, nil
}

func (p *CommandPool) Reset() error {
	if ret := vk.ResetCommandPool(p.dev, p.handle, 0); isError(ret) {
		return newError(ret, "reset command pool")
	}
	return nil
}

// Destroy also frees every buffer allocated from the pool.
func (p *CommandPool) Destroy() {
	vk.DestroyCommandPool(p.dev, p.handle, nil)
}

type CommandBuffer struct {
	handle vk.CommandBuffer
}

func (c *CommandBuffer) Begin() error {
	info := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}
	if ret := vk.BeginCommandBuffer(c.handle, &info); isError(ret) {
		return newError(ret, "begin command buffer")
	}
	return nil
}

func (c *CommandBuffer) SetViewport(v render.Viewport) {
	vk.CmdSetViewport(c.handle, 0, 1, []vk.Viewport{{
		X:        v.X,
		Y:        v.Y,
		Width:    v.Width,
		Height:   v.Height,
		MinDepth: v.MinDepth,
		MaxDepth: v.MaxDepth,
	}})
}

func (c *CommandBuffer) SetScissor(r render.Rect) {
	vk.CmdSetScissor(c.handle, 0, 1, []vk.Rect2D{rectToVk(r)})
}

func (c *CommandBuffer) BindPipeline(p render.Pipeline) {
	vk.CmdBindPipeline(c.handle, vk.PipelineBindPointGraphics, p.(*Pipeline).handle)
}

func (c *CommandBuffer) BindVertexBuffer(binding uint32, b render.Buffer, offset uint64) {
	vk.CmdBindVertexBuffers(c.handle, binding, 1,
		[]vk.Buffer{b.(*Buffer).handle},
		[]vk.DeviceSize{vk.DeviceSize(offset)})
}

func (c *CommandBuffer) BindDescriptorSet(layout render.PipelineLayout, set render.DescriptorSet) {
	vk.CmdBindDescriptorSets(c.handle, vk.PipelineBindPointGraphics,
		layout.(*PipelineLayout).handle, 0, 1,
		[]vk.DescriptorSet{set.(*DescriptorSet).handle}, 0, nil)
}

func (c *CommandBuffer) BeginRenderPass(rp render.RenderPass, fb render.Framebuffer, area render.Rect, clear [4]float32) {
	info := vk.RenderPassBeginInfo{
		SType:           vk.StructureTypeRenderPassBeginInfo,
		RenderPass:      rp.(*RenderPass).handle,
		Framebuffer:     fb.(*Framebuffer).handle,
		RenderArea:      rectToVk(area),
		ClearValueCount: 1,
		PClearValues:    []vk.ClearValue{vk.NewClearValue(clear[:])},
	}
	vk.CmdBeginRenderPass(c.handle, &info, vk.SubpassContentsInline)
}

func (c *CommandBuffer) Draw(vertexCount, instanceCount uint32) {
	vk.CmdDraw(c.handle, vertexCount, instanceCount, 0, 0)
}

func (c *CommandBuffer) EndRenderPass() {
	vk.CmdEndRenderPass(c.handle)
}

func (c *CommandBuffer) End() error {
	if ret := vk.EndCommandBuffer(c.handle); isError(ret) {
		return newError(ret, "end command buffer")
	}
	return nil
}

func rectToVk(r render.Rect) vk.Rect2D {
	return vk.Rect2D{
		Offset: vk.Offset2D{X: r.X, Y: r.Y},
		Extent: vk.Extent2D{Width: r.Width, Height: r.Height},
	}
}
