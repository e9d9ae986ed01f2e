// Package rendertest provides an in-memory implementation of the render
// device abstraction. It counts every object created and destroyed, lets
// tests script acquisition and presentation results, and completes GPU work
// only when a fence is waited on or the device is idled, recording a
// violation whenever an object is reset or destroyed while still in flight.
package rendertest

import (
	"errors"
	"fmt"
	"time"

	"hexthing/src/render"
)

// Object kinds used as keys of Device.Created and Device.Destroyed.
const (
	KindSwapchain           = "swapchain"
	KindFence               = "fence"
	KindSemaphore           = "semaphore"
	KindCommandPool         = "command-pool"
	KindImageView           = "image-view"
	KindFramebuffer         = "framebuffer"
	KindRenderPass          = "render-pass"
	KindShaderModule        = "shader-module"
	KindDescriptorSetLayout = "descriptor-set-layout"
	KindDescriptorPool      = "descriptor-pool"
	KindPipelineLayout      = "pipeline-layout"
	KindPipeline            = "pipeline"
	KindBuffer              = "buffer"
)

type Device struct {
	Info    render.AdapterInfo
	Caps    render.SurfaceCapabilities
	Formats []render.SurfaceFormat
	// UndefinedExtent makes the surface leave the extent to the swapchain
	// instead of reporting the window size as the current extent.
	UndefinedExtent bool
	// PlatformFramebuffer makes swapchains report no images and present
	// through a framebuffer of their own.
	PlatformFramebuffer bool

	// FailAcquire, FailPresent, FailSubmit and FailEnd script the result of
	// the n-th call, counting from 1. FailEnd counts CommandBuffer.End calls
	// across all buffers. A scripted ErrSuboptimal still presents the image.
	FailAcquire map[int]error
	FailPresent map[int]error
	FailSubmit  map[int]error
	FailEnd     map[int]error
	// Fail makes creation of the given object kind fail.
	Fail map[string]error

	Created    map[string]int
	Destroyed  map[string]int
	Violations []string
	// Log lists synchronization-relevant operations in call order.
	Log []string

	AcquireCalls    int
	AcquireTimeouts []time.Duration
	PresentCalls    int
	SubmitCalls     int
	EndCalls        int
	WaitIdleCalls   int
	Submissions     []render.Submission
	Presented       []uint32
	Swapchains      []*Swapchain

	nextID   int
	inflight []*submission
}

// NewDevice returns a device whose surfaces allow two to three images in
// the B8G8R8A8 sRGB format.
func NewDevice() *Device {
	return &Device{
		Info: render.AdapterInfo{
			Name:        "rendertest",
			QueueFamily: 0,
			MemoryTypes: []render.MemoryType{
				{HeapIndex: 0, DeviceLocal: true},
				{HeapIndex: 1, HostVisible: true, HostCoherent: true},
			},
		},
		Caps: render.SurfaceCapabilities{
			MinImageCount: 2,
			MaxImageCount: 3,
			MinExtent:     render.Extent{Width: 1, Height: 1},
			MaxExtent:     render.Extent{Width: 4096, Height: 4096},
		},
		Formats: []render.SurfaceFormat{
			{Format: render.FormatB8G8R8A8Unorm, ColorSpace: render.ColorSpaceSrgbNonlinear},
			{Format: render.FormatB8G8R8A8Srgb, ColorSpace: render.ColorSpaceSrgbNonlinear},
		},
		FailAcquire: map[int]error{},
		FailPresent: map[int]error{},
		FailSubmit:  map[int]error{},
		FailEnd:     map[int]error{},
		Fail:        map[string]error{},
		Created:     map[string]int{},
		Destroyed:   map[string]int{},
	}
}

// Live returns the kinds with objects that were created but not destroyed,
// with their counts.
func (d *Device) Live() map[string]int {
	live := map[string]int{}
	for kind, n := range d.Created {
		if left := n - d.Destroyed[kind]; left != 0 {
			live[kind] = left
		}
	}
	return live
}

// InFlight is the number of submissions the fake GPU has not completed.
func (d *Device) InFlight() int {
	return len(d.inflight)
}

func (d *Device) violate(format string, args ...interface{}) {
	d.Violations = append(d.Violations, fmt.Sprintf(format, args...))
}

func (d *Device) logf(format string, args ...interface{}) {
	d.Log = append(d.Log, fmt.Sprintf(format, args...))
}

func (d *Device) newObject(kind string) (object, error) {
	if err := d.Fail[kind]; err != nil {
		return object{}, err
	}
	d.nextID++
	d.Created[kind]++
	return object{dev: d, kind: kind, id: d.nextID}, nil
}

func (d *Device) Adapter() render.AdapterInfo {
	return d.Info
}

func (d *Device) SurfaceCapabilities(s render.Surface) (render.SurfaceCapabilities, error) {
	caps := d.Caps
	if d.UndefinedExtent {
		caps.CurrentExtent = render.UndefinedExtent
	} else {
		caps.CurrentExtent = s.Extent()
	}
	return caps, nil
}

func (d *Device) SurfaceFormats(render.Surface) ([]render.SurfaceFormat, error) {
	return d.Formats, nil
}

func (d *Device) Submit(sub render.Submission) error {
	d.SubmitCalls++
	if err := d.FailSubmit[d.SubmitCalls]; err != nil {
		d.logf("submit failed")
		return err
	}
	f, ok := sub.Fence.(*Fence)
	if !ok {
		return fmt.Errorf("rendertest: submit without a fence")
	}
	if f.signaled {
		d.violate("fence %d submitted while signaled", f.id)
	}
	if f.pending != nil {
		d.violate("fence %d submitted while in flight", f.id)
	}

	s := &submission{fence: f}
	for _, cb := range sub.CommandBuffers {
		c := cb.(*CommandBuffer)
		if c.recording {
			d.violate("command buffer of pool %d submitted while recording", c.pool.id)
		}
		s.refs = append(s.refs, &c.pool.object)
		s.refs = append(s.refs, c.refs...)
	}
	for _, w := range sub.Wait {
		s.refs = append(s.refs, &w.Semaphore.(*Semaphore).object)
	}
	for _, sem := range sub.Signal {
		s.refs = append(s.refs, &sem.(*Semaphore).object)
	}
	for _, o := range s.refs {
		o.use()
		o.busy++
	}
	f.pending = s
	d.inflight = append(d.inflight, s)
	d.Submissions = append(d.Submissions, sub)
	d.logf("submit fence %d", f.id)
	return nil
}

func (d *Device) Present(sc render.Swapchain, image uint32, wait []render.Semaphore) error {
	d.PresentCalls++
	s := sc.(swapchainHandle).base()
	s.use()
	err := d.FailPresent[d.PresentCalls]
	if err != nil && !errors.Is(err, render.ErrSuboptimal) {
		d.logf("present %d failed", image)
		return err
	}
	if n := len(s.images); n > 0 && int(image) >= n {
		return fmt.Errorf("rendertest: present image %d of %d", image, n)
	}
	d.Presented = append(d.Presented, image)
	d.logf("present %d", image)
	return err
}

// WaitIdle completes every outstanding submission.
func (d *Device) WaitIdle() error {
	d.WaitIdleCalls++
	for len(d.inflight) > 0 {
		d.complete(d.inflight[0])
	}
	d.logf("wait idle")
	return nil
}

func (d *Device) complete(s *submission) {
	for i, p := range d.inflight {
		if p == s {
			d.inflight = append(d.inflight[:i], d.inflight[i+1:]...)
			break
		}
	}
	for _, o := range s.refs {
		o.busy--
	}
	s.fence.pending = nil
	s.fence.signaled = true
}

func (d *Device) CreateSwapchain(s render.Surface, cfg render.SwapchainConfig, old render.Swapchain) (render.Swapchain, error) {
	o, err := d.newObject(KindSwapchain)
	if err != nil {
		return nil, err
	}
	sc := &Swapchain{object: o, Config: cfg}
	if old != nil {
		sc.Old = old.(swapchainHandle).base()
		sc.Old.use()
	}
	d.Swapchains = append(d.Swapchains, sc)

	if !d.PlatformFramebuffer {
		for i := uint32(0); i < cfg.ImageCount; i++ {
			sc.images = append(sc.images, &Image{Index: i})
		}
		return sc, nil
	}
	fb, err := d.CreateFramebuffer(nil, nil, cfg.Extent)
	if err != nil {
		return nil, err
	}
	sc.framebuffer = fb.(*Framebuffer)
	return &PlatformSwapchain{sc}, nil
}

func (d *Device) CreateFence(signaled bool) (render.Fence, error) {
	o, err := d.newObject(KindFence)
	if err != nil {
		return nil, err
	}
	return &Fence{object: o, signaled: signaled}, nil
}

func (d *Device) CreateSemaphore() (render.Semaphore, error) {
	o, err := d.newObject(KindSemaphore)
	if err != nil {
		return nil, err
	}
	return &Semaphore{object: o}, nil
}

func (d *Device) CreateCommandPool() (render.CommandPool, error) {
	o, err := d.newObject(KindCommandPool)
	if err != nil {
		return nil, err
	}
	return &CommandPool{object: o}, nil
}

func (d *Device) CreateImageView(img render.Image, format render.Format) (render.ImageView, error) {
	o, err := d.newObject(KindImageView)
	if err != nil {
		return nil, err
	}
	return &ImageView{object: o, Image: img.(*Image), Format: format}, nil
}

func (d *Device) CreateRenderPass(desc render.RenderPassDesc) (render.RenderPass, error) {
	o, err := d.newObject(KindRenderPass)
	if err != nil {
		return nil, err
	}
	return &RenderPass{object: o, Desc: desc}, nil
}

func (d *Device) CreateFramebuffer(rp render.RenderPass, view render.ImageView, extent render.Extent) (render.Framebuffer, error) {
	o, err := d.newObject(KindFramebuffer)
	if err != nil {
		return nil, err
	}
	fb := &Framebuffer{object: o, Extent: extent}
	if rp != nil {
		fb.RenderPass = rp.(*RenderPass)
		fb.RenderPass.use()
	}
	if view != nil {
		fb.View = view.(*ImageView)
		fb.View.use()
	}
	return fb, nil
}

func (d *Device) CreateShaderModule(spirv []uint32) (render.ShaderModule, error) {
	o, err := d.newObject(KindShaderModule)
	if err != nil {
		return nil, err
	}
	return &ShaderModule{object: o, Words: spirv}, nil
}

func (d *Device) CreateDescriptorSetLayout(bindings []render.DescriptorBinding) (render.DescriptorSetLayout, error) {
	o, err := d.newObject(KindDescriptorSetLayout)
	if err != nil {
		return nil, err
	}
	return &DescriptorSetLayout{object: o, Bindings: bindings}, nil
}

func (d *Device) CreateDescriptorPool(maxSets uint32, sizes []render.DescriptorPoolSize) (render.DescriptorPool, error) {
	o, err := d.newObject(KindDescriptorPool)
	if err != nil {
		return nil, err
	}
	return &DescriptorPool{object: o, MaxSets: maxSets, Sizes: sizes}, nil
}

func (d *Device) CreatePipelineLayout(sets []render.DescriptorSetLayout, push []render.PushConstantRange) (render.PipelineLayout, error) {
	o, err := d.newObject(KindPipelineLayout)
	if err != nil {
		return nil, err
	}
	l := &PipelineLayout{object: o, Push: push}
	for _, s := range sets {
		dsl := s.(*DescriptorSetLayout)
		dsl.use()
		l.Sets = append(l.Sets, dsl)
	}
	return l, nil
}

func (d *Device) CreateGraphicsPipeline(desc *render.GraphicsPipelineDesc) (render.Pipeline, error) {
	for _, m := range []render.ShaderModule{desc.Vertex.Module, desc.Fragment.Module} {
		m.(*ShaderModule).use()
	}
	desc.Layout.(*PipelineLayout).use()
	desc.RenderPass.(*RenderPass).use()
	o, err := d.newObject(KindPipeline)
	if err != nil {
		return nil, err
	}
	return &Pipeline{object: o, Desc: *desc}, nil
}

func (d *Device) CreateBuffer(usage render.BufferUsage, data []byte) (render.Buffer, error) {
	o, err := d.newObject(KindBuffer)
	if err != nil {
		return nil, err
	}
	return &Buffer{object: o, Usage: usage, Data: append([]byte(nil), data...)}, nil
}

type submission struct {
	fence *Fence
	refs  []*object
}
