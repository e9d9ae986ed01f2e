package render

import (
	"context"
	"errors"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

type Options struct {
	ClearColor mgl32.Vec4
	// FillColor is written to the uniform buffer read by the fragment stage.
	FillColor mgl32.Vec4
	// AcquireTimeout bounds each image acquisition; expiry is a retry.
	// Zero waits forever.
	AcquireTimeout time.Duration
	// MinimizedBackoff is how long the loop waits for events while the
	// surface has no drawable area.
	MinimizedBackoff time.Duration
}

// Stats counts what the frame loop has done so far.
type Stats struct {
	Frames     uint64 // presented
	Skipped    uint64 // iterations that did not present
	Swapchains uint64 // swapchains created, including the first
}

// Renderer drives the frame loop. It owns every GPU object it creates; the
// device and surface belong to the caller and must outlive Close.
type Renderer struct {
	dev        Device
	surface    Surface
	events     EventSource
	shaders    ShaderCompiler
	renderable Renderable
	opts       Options

	static    *StaticResources
	swapchain *SwapchainState
	pass      *RenderTargetPass
	pool      *FramePool
	pipeline  *PipelineBundle
	viewport  Viewport

	state   State
	pending bool
	exit    bool
	closed  bool
	stats   Stats
}

// New uploads the static resources and builds the first swapchain and its
// dependents. A surface with no drawable area is not an error; the frame
// graph is then built once the surface becomes usable.
func New(dev Device, surface Surface, events EventSource, shaders ShaderCompiler, r Renderable, opts Options) (*Renderer, error) {
	logAdapter(Logger(), dev.Adapter())

	static, err := NewStaticResources(dev, r, opts.FillColor)
	if err != nil {
		return nil, err
	}
	rd := &Renderer{
		dev:        dev,
		surface:    surface,
		events:     events,
		shaders:    shaders,
		renderable: r,
		opts:       opts,
		static:     static,
		pending:    true,
	}
	if err := rd.Recreate(); err != nil && !IsRetry(err) {
		rd.Close()
		return nil, err
	}
	rd.updateState()
	return rd, nil
}

func (r *Renderer) State() State {
	return r.state
}

func (r *Renderer) Stats() Stats {
	return r.stats
}

// Extent is the extent of the current swapchain, zero if there is none.
func (r *Renderer) Extent() Extent {
	if r.swapchain == nil {
		return Extent{}
	}
	return r.swapchain.Extent()
}

// Format is the format of the current swapchain, FormatUndefined if there
// is none.
func (r *Renderer) Format() Format {
	if r.swapchain == nil {
		return FormatUndefined
	}
	return r.swapchain.Format()
}

func (r *Renderer) Viewport() Viewport {
	return r.viewport
}

// Run drives the frame loop until the event source asks to close, ctx is
// cancelled, or a fatal error occurs. The caller still has to Close the
// renderer.
func (r *Renderer) Run(ctx context.Context) error {
	log := Logger()
	for r.state != Exiting {
		if ctx.Err() != nil {
			r.state = Exiting
			break
		}
		if err := r.step(); err != nil {
			r.state = Exiting
			log.Error("frame loop aborted", "err", err)
			return err
		}
	}
	log.Info("frame loop exited",
		"frames", r.stats.Frames,
		"skipped", r.stats.Skipped,
		"swapchains", r.stats.Swapchains)
	return nil
}

func (r *Renderer) step() error {
	r.poll()
	defer r.updateState()

	if r.pending {
		if err := r.Recreate(); err != nil {
			if !IsRetry(err) {
				return err
			}
			r.stats.Skipped++
			if errors.Is(err, ErrSurfaceUnavailable) && !r.exit {
				r.backoff()
			}
			return nil
		}
	}

	pair := r.pool.Sync(r.pool.NextSyncIndex())
	image, err := r.swapchain.Acquire(r.opts.AcquireTimeout, pair.Acquire)
	if err != nil {
		if IsRetry(err) {
			Logger().Warn("acquire image", "err", err)
			r.pending = true
			r.stats.Skipped++
			return nil
		}
		return err
	}

	slot := r.pool.SlotFor(image)
	if err := slot.Recycle(); err != nil {
		return err
	}
	if err := r.record(slot.CommandBuffer, slot.Framebuffer); err != nil {
		return fatal("record commands", err)
	}

	err = slot.Submit(r.dev,
		[]SemaphoreWait{{
			Semaphore: pair.Acquire,
			Stage:     PipelineStageColorAttachmentOutput,
		}},
		[]Semaphore{pair.Present})
	if err != nil {
		return fatal("submit", err)
	}

	if err := r.dev.Present(r.swapchain.Handle(), image, []Semaphore{pair.Present}); err != nil {
		if !IsRetry(err) {
			return fatal("present", err)
		}
		Logger().Warn("present image", "err", err)
		r.pending = true
		// A suboptimal swapchain still displayed the image.
		if !errors.Is(err, ErrSuboptimal) {
			r.stats.Skipped++
			return nil
		}
	}
	r.stats.Frames++
	return nil
}

func (r *Renderer) poll() {
	for _, ev := range r.events.Poll() {
		switch ev.Kind {
		case EventClose:
			r.exit = true
		case EventKey:
			if ev.Key == KeyEscape {
				r.exit = true
			}
		case EventResize:
			Logger().Debug("surface resized", "width", ev.Width, "height", ev.Height)
			r.pending = true
		}
	}
}

func (r *Renderer) updateState() {
	switch {
	case r.exit:
		r.state = Exiting
	case r.pending:
		r.state = AwaitingRecreate
	default:
		r.state = Running
	}
}

func (r *Renderer) backoff() {
	d := r.opts.MinimizedBackoff
	if d <= 0 {
		return
	}
	if w, ok := r.events.(EventWaiter); ok {
		w.WaitEvents(d)
		return
	}
	time.Sleep(d)
}

func (r *Renderer) record(cmd CommandBuffer, fb Framebuffer) error {
	if err := cmd.Begin(); err != nil {
		return err
	}
	area := r.viewport.Scissor()
	cmd.SetViewport(r.viewport)
	cmd.SetScissor(area)
	cmd.BindPipeline(r.pipeline.Pipeline())
	cmd.BindVertexBuffer(0, r.static.VertexBuffer(), 0)
	cmd.BindDescriptorSet(r.pipeline.Layout(), r.static.DescriptorSet())
	cmd.BeginRenderPass(r.pass.Handle(), fb, area, r.opts.ClearColor)
	cmd.Draw(r.static.VertexCount(), 1)
	cmd.EndRenderPass()
	return cmd.End()
}

// Recreate rebuilds the swapchain, render pass, frame pool, pipeline and
// viewport as one group after waiting for the device to go idle. It returns
// ErrSurfaceUnavailable while the surface has no drawable area, in which
// case recreation stays pending.
func (r *Renderer) Recreate() error {
	invariant(!r.closed, "recreate after close")
	if err := r.dev.WaitIdle(); err != nil {
		return fatal("wait idle", err)
	}
	r.pending = true
	if err := r.destroyDependents(); err != nil {
		return err
	}

	sc, err := NewSwapchain(r.dev, r.surface, r.swapchain)
	if err != nil {
		if IsRetry(err) {
			Logger().Debug("swapchain recreation deferred", "err", err)
		}
		return err
	}
	r.swapchain.Destroy()
	r.swapchain = sc
	r.stats.Swapchains++

	if r.pass, err = NewRenderTargetPass(r.dev, sc.Format()); err != nil {
		return err
	}
	if r.pool, err = NewFramePool(r.dev, r.pass, sc); err != nil {
		return err
	}
	r.pipeline, err = NewPipelineBundle(r.dev, r.shaders, r.renderable, r.static.SetLayouts(), r.pass)
	if err != nil {
		return err
	}
	r.viewport = ViewportFor(sc.Extent())
	r.pending = false
	return nil
}

func (r *Renderer) destroyDependents() error {
	err := r.pool.Destroy()
	r.pool = nil
	r.pipeline.Destroy()
	r.pipeline = nil
	r.pass.Destroy()
	r.pass = nil
	return err
}

// Close waits for the device to go idle and releases everything the
// renderer created: descriptor pool, frame pool, pipeline, render pass,
// swapchain, then the static buffers. It is safe to call more than once.
func (r *Renderer) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.state = Exiting

	var errs []error
	if err := r.dev.WaitIdle(); err != nil {
		errs = append(errs, fatal("wait idle", err))
	}
	r.static.ReleaseDescriptors()
	if err := r.destroyDependents(); err != nil {
		errs = append(errs, err)
	}
	r.swapchain.Destroy()
	r.swapchain = nil
	r.static.Destroy()
	return errors.Join(errs...)
}
