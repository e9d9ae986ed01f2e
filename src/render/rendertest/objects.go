package rendertest

import (
	"fmt"
	"time"

	"hexthing/src/render"
)

// object is the bookkeeping shared by every fake GPU object. busy counts
// the incomplete submissions that reference it.
type object struct {
	dev       *Device
	kind      string
	id        int
	busy      int
	destroyed bool
}

func (o *object) ID() int {
	return o.id
}

func (o *object) Destroyed() bool {
	return o.destroyed
}

func (o *object) use() {
	if o.destroyed {
		o.dev.violate("%s %d used after destroy", o.kind, o.id)
	}
}

func (o *object) Destroy() {
	if o.destroyed {
		o.dev.violate("%s %d destroyed twice", o.kind, o.id)
		return
	}
	if o.busy > 0 {
		o.dev.violate("%s %d destroyed while in flight", o.kind, o.id)
	}
	o.destroyed = true
	o.dev.Destroyed[o.kind]++
	o.dev.logf("destroy %s %d", o.kind, o.id)
}

type Image struct {
	Index uint32
}

type Swapchain struct {
	object
	Config render.SwapchainConfig
	// Old is the swapchain this one replaced, if any.
	Old *Swapchain

	images      []render.Image
	framebuffer *Framebuffer
	next        uint32
}

type swapchainHandle interface {
	base() *Swapchain
}

func (s *Swapchain) base() *Swapchain {
	return s
}

func (s *Swapchain) Images() []render.Image {
	return s.images
}

func (s *Swapchain) AcquireImage(timeout time.Duration, wait render.Semaphore) (uint32, error) {
	d := s.dev
	d.AcquireCalls++
	d.AcquireTimeouts = append(d.AcquireTimeouts, timeout)
	s.use()
	wait.(*Semaphore).use()
	if err := d.FailAcquire[d.AcquireCalls]; err != nil {
		d.logf("acquire failed")
		return 0, err
	}
	n := uint32(len(s.images))
	if n == 0 {
		n = 1
	}
	idx := s.next % n
	s.next++
	d.logf("acquire %d", idx)
	return idx, nil
}

func (s *Swapchain) Destroy() {
	if s.framebuffer != nil {
		s.framebuffer.Destroy()
	}
	s.object.Destroy()
}

// PlatformSwapchain has no images and presents through its own framebuffer.
type PlatformSwapchain struct {
	*Swapchain
}

func (p *PlatformSwapchain) Framebuffer() render.Framebuffer {
	return p.framebuffer
}

type Fence struct {
	object
	signaled bool
	pending  *submission
}

func (f *Fence) Signaled() bool {
	return f.signaled
}

// Wait completes the fence's submission if it has one. Waiting on a fence
// that is neither signaled nor submitted would hang a real device, so it is
// reported as a violation and a timeout.
func (f *Fence) Wait(time.Duration) error {
	f.use()
	f.dev.logf("wait fence %d", f.id)
	if f.pending != nil {
		f.dev.complete(f.pending)
	}
	if !f.signaled {
		f.dev.violate("fence %d waited on without a submission", f.id)
		return render.ErrTimeout
	}
	return nil
}

func (f *Fence) Reset() error {
	f.use()
	if f.pending != nil {
		f.dev.violate("fence %d reset while in flight", f.id)
	}
	f.signaled = false
	f.dev.logf("reset fence %d", f.id)
	return nil
}

type Semaphore struct {
	object
}

type CommandPool struct {
	object
	Buffers []*CommandBuffer
}

func (p *CommandPool) Allocate() (render.CommandBuffer, error) {
	p.use()
	cb := &CommandBuffer{pool: p}
	p.Buffers = append(p.Buffers, cb)
	return cb, nil
}

func (p *CommandPool) Reset() error {
	p.use()
	if p.busy > 0 {
		p.dev.violate("command pool %d reset while in flight", p.id)
	}
	for _, cb := range p.Buffers {
		cb.reset()
	}
	p.dev.logf("reset pool %d", p.id)
	return nil
}

// CommandBuffer records commands as strings.
type CommandBuffer struct {
	pool      *CommandPool
	recording bool
	refs      []*object

	Commands []string
	Draws    []uint32
}

func (c *CommandBuffer) reset() {
	c.recording = false
	c.refs = nil
	c.Commands = nil
	c.Draws = nil
}

func (c *CommandBuffer) ref(o *object, cmd string) {
	o.use()
	c.refs = append(c.refs, o)
	c.Commands = append(c.Commands, cmd)
}

func (c *CommandBuffer) Begin() error {
	if c.recording {
		return fmt.Errorf("rendertest: command buffer already recording")
	}
	if len(c.Commands) > 0 {
		c.pool.dev.violate("command buffer of pool %d re-recorded without a pool reset", c.pool.id)
	}
	c.recording = true
	c.Commands = append(c.Commands, "begin")
	return nil
}

func (c *CommandBuffer) SetViewport(v render.Viewport) {
	c.Commands = append(c.Commands, fmt.Sprintf("viewport %vx%v", v.Width, v.Height))
}

func (c *CommandBuffer) SetScissor(r render.Rect) {
	c.Commands = append(c.Commands, fmt.Sprintf("scissor %dx%d", r.Width, r.Height))
}

func (c *CommandBuffer) BindPipeline(p render.Pipeline) {
	c.ref(&p.(*Pipeline).object, "bind pipeline")
}

func (c *CommandBuffer) BindVertexBuffer(binding uint32, b render.Buffer, offset uint64) {
	c.ref(&b.(*Buffer).object, fmt.Sprintf("bind vertex buffer %d", binding))
}

func (c *CommandBuffer) BindDescriptorSet(layout render.PipelineLayout, set render.DescriptorSet) {
	layout.(*PipelineLayout).use()
	c.ref(&set.(*DescriptorSet).pool.object, "bind descriptor set")
}

func (c *CommandBuffer) BeginRenderPass(rp render.RenderPass, fb render.Framebuffer, area render.Rect, clear [4]float32) {
	c.ref(&rp.(*RenderPass).object, "begin render pass")
	f := fb.(*Framebuffer)
	f.use()
	c.refs = append(c.refs, &f.object)
	if f.View != nil {
		c.refs = append(c.refs, &f.View.object)
	}
}

func (c *CommandBuffer) Draw(vertexCount, instanceCount uint32) {
	c.Draws = append(c.Draws, vertexCount)
	c.Commands = append(c.Commands, fmt.Sprintf("draw %d", vertexCount))
}

func (c *CommandBuffer) EndRenderPass() {
	c.Commands = append(c.Commands, "end render pass")
}

func (c *CommandBuffer) End() error {
	if !c.recording {
		return fmt.Errorf("rendertest: command buffer not recording")
	}
	c.recording = false
	d := c.pool.dev
	d.EndCalls++
	if err := d.FailEnd[d.EndCalls]; err != nil {
		return err
	}
	c.Commands = append(c.Commands, "end")
	return nil
}

type ImageView struct {
	object
	Image  *Image
	Format render.Format
}

type Framebuffer struct {
	object
	RenderPass *RenderPass
	View       *ImageView
	Extent     render.Extent
}

type RenderPass struct {
	object
	Desc render.RenderPassDesc
}

type ShaderModule struct {
	object
	Words []uint32
}

type DescriptorSetLayout struct {
	object
	Bindings []render.DescriptorBinding
}

type DescriptorPool struct {
	object
	MaxSets uint32
	Sizes   []render.DescriptorPoolSize
	Sets    []*DescriptorSet
}

func (p *DescriptorPool) Allocate(layout render.DescriptorSetLayout) (render.DescriptorSet, error) {
	p.use()
	if uint32(len(p.Sets)) >= p.MaxSets {
		return nil, fmt.Errorf("rendertest: descriptor pool %d exhausted", p.id)
	}
	s := &DescriptorSet{pool: p, Layout: layout.(*DescriptorSetLayout), Writes: map[uint32]*Buffer{}}
	p.Sets = append(p.Sets, s)
	return s, nil
}

type DescriptorSet struct {
	pool   *DescriptorPool
	Layout *DescriptorSetLayout
	Writes map[uint32]*Buffer
}

func (s *DescriptorSet) WriteBuffer(binding uint32, b render.Buffer) {
	s.pool.use()
	s.Writes[binding] = b.(*Buffer)
}

type PipelineLayout struct {
	object
	Sets []*DescriptorSetLayout
	Push []render.PushConstantRange
}

type Pipeline struct {
	object
	Desc render.GraphicsPipelineDesc
}

type Buffer struct {
	object
	Usage render.BufferUsage
	Data  []byte
}

func (b *Buffer) Size() uint64 {
	return uint64(len(b.Data))
}
