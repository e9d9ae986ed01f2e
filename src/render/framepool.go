package render

import "errors"

// FrameSlot holds the resources tied to one swapchain image. Its command
// pool may only be reset once Fence has signaled.
type FrameSlot struct {
	Fence         Fence
	CommandPool   CommandPool
	CommandBuffer CommandBuffer
	Framebuffer   Framebuffer
	// View is nil when the framebuffer is owned by the platform.
	View ImageView

	ownsFramebuffer bool
	// armed is set while Fence is signaled or has work submitted against
	// it. Waiting on an unarmed fence never returns.
	armed bool
}

// Recycle waits for the slot's previous submission to retire and returns
// its fence and command pool to the initial state.
func (s *FrameSlot) Recycle() error {
	if err := s.wait(); err != nil {
		return err
	}
	if err := s.Fence.Reset(); err != nil {
		return fatal("reset frame fence", err)
	}
	s.armed = false
	if err := s.CommandPool.Reset(); err != nil {
		return fatal("reset command pool", err)
	}
	return nil
}

// Submit queues the slot's command buffer and arms its fence.
func (s *FrameSlot) Submit(dev Device, wait []SemaphoreWait, signal []Semaphore) error {
	err := dev.Submit(Submission{
		CommandBuffers: []CommandBuffer{s.CommandBuffer},
		Wait:           wait,
		Signal:         signal,
		Fence:          s.Fence,
	})
	if err != nil {
		return err
	}
	s.armed = true
	return nil
}

func (s *FrameSlot) wait() error {
	if !s.armed {
		return nil
	}
	if err := s.Fence.Wait(0); err != nil {
		return fatal("wait frame fence", err)
	}
	return nil
}

// SyncPair orders one frame on the GPU: Acquire is signaled when the image
// can be written and Present when rendering has finished.
type SyncPair struct {
	Acquire Semaphore
	Present Semaphore
}

// FramePool owns one FrameSlot per swapchain image and as many SyncPairs,
// cycled round-robin independently of the image index.
type FramePool struct {
	slots []FrameSlot
	sync  []SyncPair
	next  int
	state Lifecycle
}

// NewFramePool builds the per-image resources for sc. Fences start signaled
// so the first wait on each slot returns immediately. A swapchain without
// images gets a single slot, around its platform framebuffer if it has one.
func NewFramePool(dev Device, pass *RenderTargetPass, sc *SwapchainState) (*FramePool, error) {
	images := sc.Images()
	n := len(images)
	if n == 0 {
		n = 1
	}
	p := &FramePool{
		slots: make([]FrameSlot, 0, n),
		sync:  make([]SyncPair, 0, n),
	}

	for i := 0; i < n; i++ {
		slot, err := newFrameSlot(dev, pass, sc, i)
		if err != nil {
			p.release()
			return nil, err
		}
		p.slots = append(p.slots, slot)

		pair, err := newSyncPair(dev)
		if err != nil {
			p.release()
			return nil, err
		}
		p.sync = append(p.sync, pair)
	}
	invariant(len(p.sync) == len(p.slots),
		"%d sync pairs for %d frame slots", len(p.sync), len(p.slots))

	p.state = Ready
	Logger().Debug("frame pool created", "slots", n)
	return p, nil
}

func newFrameSlot(dev Device, pass *RenderTargetPass, sc *SwapchainState, i int) (slot FrameSlot, err error) {
	defer func() {
		if err != nil {
			slot.destroy()
		}
	}()

	if slot.Fence, err = dev.CreateFence(true); err != nil {
		return slot, fatal("create frame fence", err)
	}
	slot.armed = true
	if slot.CommandPool, err = dev.CreateCommandPool(); err != nil {
		return slot, fatal("create command pool", err)
	}
	if slot.CommandBuffer, err = slot.CommandPool.Allocate(); err != nil {
		return slot, fatal("allocate command buffer", err)
	}

	images := sc.Images()
	if len(images) == 0 {
		pf, ok := sc.swapchain.(PlatformFramebuffer)
		if !ok {
			return slot, fatal("create frame slot", errors.New("swapchain has no images and no platform framebuffer"))
		}
		slot.Framebuffer = pf.Framebuffer()
		return slot, nil
	}

	if slot.View, err = dev.CreateImageView(images[i], sc.Format()); err != nil {
		return slot, fatal("create image view", err)
	}
	if slot.Framebuffer, err = dev.CreateFramebuffer(pass.Handle(), slot.View, sc.Extent()); err != nil {
		return slot, fatal("create framebuffer", err)
	}
	slot.ownsFramebuffer = true
	return slot, nil
}

func newSyncPair(dev Device) (SyncPair, error) {
	acquire, err := dev.CreateSemaphore()
	if err != nil {
		return SyncPair{}, fatal("create acquire semaphore", err)
	}
	present, err := dev.CreateSemaphore()
	if err != nil {
		acquire.Destroy()
		return SyncPair{}, fatal("create present semaphore", err)
	}
	return SyncPair{Acquire: acquire, Present: present}, nil
}

// destroy releases a slot that never reached the pool. Its fence has not
// been submitted, so no wait is needed.
func (s *FrameSlot) destroy() {
	if s.Framebuffer != nil && s.ownsFramebuffer {
		s.Framebuffer.Destroy()
	}
	if s.View != nil {
		s.View.Destroy()
	}
	if s.CommandPool != nil {
		s.CommandPool.Destroy()
	}
	if s.Fence != nil {
		s.Fence.Destroy()
	}
}

// Len is the number of frame slots, which equals the number of sync pairs.
func (p *FramePool) Len() int {
	return len(p.slots)
}

// NextSyncIndex returns the sync pair to use for the next frame. Every call
// advances the counter by one, whether or not the frame is rendered.
func (p *FramePool) NextSyncIndex() int {
	p.state.mustBeReady("frame pool")
	i := p.next
	p.next = (p.next + 1) % len(p.sync)
	return i
}

func (p *FramePool) Sync(i int) *SyncPair {
	p.state.mustBeReady("frame pool")
	invariant(i >= 0 && i < len(p.sync), "sync index %d out of range [0,%d)", i, len(p.sync))
	return &p.sync[i]
}

// SlotFor returns the slot for an acquired image index.
func (p *FramePool) SlotFor(image uint32) *FrameSlot {
	p.state.mustBeReady("frame pool")
	invariant(int(image) < len(p.slots), "image index %d out of range [0,%d)", image, len(p.slots))
	return &p.slots[image]
}

// Destroy waits on every fence with outstanding work and then releases command pools, semaphores,
// framebuffers and image views in that order. Resources are released even
// if a fence wait fails; wait errors are returned joined.
func (p *FramePool) Destroy() error {
	if p == nil || p.state != Ready {
		return nil
	}
	var errs []error
	for i := range p.slots {
		if err := p.slots[i].wait(); err != nil {
			errs = append(errs, err)
		}
	}
	p.release()
	p.state = Destroyed
	return errors.Join(errs...)
}

func (p *FramePool) release() {
	for i := range p.slots {
		p.slots[i].CommandPool.Destroy()
	}
	for i := range p.sync {
		p.sync[i].Acquire.Destroy()
		p.sync[i].Present.Destroy()
	}
	for i := range p.slots {
		if p.slots[i].ownsFramebuffer {
			p.slots[i].Framebuffer.Destroy()
		}
	}
	for i := range p.slots {
		if p.slots[i].View != nil {
			p.slots[i].View.Destroy()
		}
	}
	for i := range p.slots {
		p.slots[i].Fence.Destroy()
	}
	p.slots = nil
	p.sync = nil
}
