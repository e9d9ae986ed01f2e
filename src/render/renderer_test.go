package render_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hexthing/src/render"
	"hexthing/src/render/rendertest"
)

type fixture struct {
	dev     *rendertest.Device
	surface *rendertest.Surface
	events  *rendertest.Events
	shaders *rendertest.Shaders
	opts    render.Options
}

func newFixture(closeAt int) *fixture {
	return &fixture{
		dev:     rendertest.NewDevice(),
		surface: rendertest.NewSurface(768, 768),
		events:  rendertest.CloseAfter(closeAt),
		shaders: &rendertest.Shaders{},
		opts: render.Options{
			ClearColor: mgl32.Vec4{0, 0, 0, 1},
			FillColor:  mgl32.Vec4{1, 0, 0, 1},
		},
	}
}

func (f *fixture) renderer(t *testing.T) *render.Renderer {
	t.Helper()
	r, err := render.New(f.dev, f.surface, f.events, f.shaders, hex, f.opts)
	require.NoError(t, err)
	return r
}

// requireClean closes r and checks that every GPU object was released
// without being reused or destroyed while in flight.
func (f *fixture) requireClean(t *testing.T, r *render.Renderer) {
	t.Helper()
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	require.Zero(t, f.dev.InFlight())
	require.Empty(t, f.dev.Live())
	require.Empty(t, f.dev.Violations)
}

func TestRendererRunsUntilClose(t *testing.T) {
	f := newFixture(5)
	r := f.renderer(t)
	require.Equal(t, render.Running, r.State())

	require.NoError(t, r.Run(context.Background()))
	require.Equal(t, render.Exiting, r.State())
	require.Equal(t, render.Stats{Frames: 5, Swapchains: 1}, r.Stats())
	require.Equal(t, []uint32{0, 1, 2, 0, 1}, f.dev.Presented)

	for _, sub := range f.dev.Submissions {
		require.Len(t, sub.Wait, 1)
		require.Equal(t, render.PipelineStageColorAttachmentOutput, sub.Wait[0].Stage)
		require.Len(t, sub.Signal, 1)
		require.NotNil(t, sub.Fence)
	}
	f.requireClean(t, r)
}

func TestRendererRecordsOneDraw(t *testing.T) {
	f := newFixture(1)
	r := f.renderer(t)
	require.NoError(t, r.Run(context.Background()))

	require.Len(t, f.dev.Submissions, 1)
	cb := f.dev.Submissions[0].CommandBuffers[0].(*rendertest.CommandBuffer)
	require.Equal(t, []string{
		"begin",
		"viewport 768x768",
		"scissor 768x768",
		"bind pipeline",
		"bind vertex buffer 0",
		"bind descriptor set",
		"begin render pass",
		"draw 18",
		"end render pass",
		"end",
	}, cb.Commands)
	f.requireClean(t, r)
}

func TestRendererEscapeKeyExits(t *testing.T) {
	f := newFixture(0)
	f.events.Script[2] = []render.Event{render.KeyEvent(render.KeyEscape)}
	r := f.renderer(t)

	require.NoError(t, r.Run(context.Background()))
	require.Equal(t, uint64(2), r.Stats().Frames)
	f.requireClean(t, r)
}

func TestRendererContextCancel(t *testing.T) {
	f := newFixture(0)
	r := f.renderer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, r.Run(ctx))
	require.Equal(t, render.Exiting, r.State())
	require.Zero(t, r.Stats().Frames)
	f.requireClean(t, r)
}

func TestRendererRecoversFromOutOfDate(t *testing.T) {
	f := newFixture(8)
	f.dev.FailAcquire[5] = render.ErrOutOfDate
	r := f.renderer(t)

	require.NoError(t, r.Run(context.Background()))
	require.Equal(t, render.Stats{Frames: 7, Skipped: 1, Swapchains: 2}, r.Stats())
	require.Equal(t, 8, f.dev.AcquireCalls)
	require.Len(t, f.dev.Swapchains, 2)
	require.Same(t, f.dev.Swapchains[0], f.dev.Swapchains[1].Old)
	require.True(t, f.dev.Swapchains[0].Destroyed())

	// Frame 6 was rendered on the new swapchain.
	require.Len(t, f.dev.Presented, 7)
	f.requireClean(t, r)
	assert.Equal(t, f.dev.Created, f.dev.Destroyed)
}

func TestRendererRecoversFromPresentErrors(t *testing.T) {
	f := newFixture(6)
	f.dev.FailPresent[2] = render.ErrSuboptimal
	f.dev.FailPresent[4] = render.ErrOutOfDate
	r := f.renderer(t)

	require.NoError(t, r.Run(context.Background()))
	// The suboptimal present still displayed its image.
	require.Equal(t, render.Stats{Frames: 5, Skipped: 1, Swapchains: 3}, r.Stats())
	require.Len(t, f.dev.Submissions, 6)
	require.Len(t, f.dev.Presented, 5)
	f.requireClean(t, r)
}

func TestRendererAcquireTimeoutRetries(t *testing.T) {
	f := newFixture(3)
	f.opts.AcquireTimeout = 250 * time.Millisecond
	f.dev.FailAcquire[2] = render.ErrTimeout
	r := f.renderer(t)

	require.NoError(t, r.Run(context.Background()))
	require.Equal(t, render.Stats{Frames: 2, Skipped: 1, Swapchains: 2}, r.Stats())
	for _, d := range f.dev.AcquireTimeouts {
		require.Equal(t, 250*time.Millisecond, d)
	}
	f.requireClean(t, r)
}

func TestRendererMinimized(t *testing.T) {
	f := newFixture(10)
	f.opts.MinimizedBackoff = 10 * time.Millisecond

	var r *render.Renderer
	var states []render.State
	f.events.OnPoll = func(n int) []render.Event {
		states = append(states, r.State())
		switch n {
		case 3:
			f.surface.Size = render.Extent{}
			return []render.Event{render.ResizeEvent(0, 0)}
		case 7:
			f.surface.Size = render.Extent{Width: 768, Height: 768}
			return []render.Event{render.ResizeEvent(768, 768)}
		}
		return nil
	}
	r = f.renderer(t)

	require.NoError(t, r.Run(context.Background()))
	require.Equal(t, render.Stats{Frames: 6, Skipped: 4, Swapchains: 2}, r.Stats())
	require.Len(t, f.events.Waits, 4)
	require.Equal(t, []render.State{
		render.Running, render.Running, render.Running,
		render.AwaitingRecreate, render.AwaitingRecreate, render.AwaitingRecreate, render.AwaitingRecreate,
		render.Running, render.Running, render.Running,
	}, states)
	require.Equal(t, render.Extent{Width: 768, Height: 768}, r.Extent())
	f.requireClean(t, r)
}

func TestRendererStartsMinimized(t *testing.T) {
	f := newFixture(3)
	f.surface.Size = render.Extent{}
	r := f.renderer(t)
	require.Equal(t, render.AwaitingRecreate, r.State())
	require.Equal(t, render.Extent{}, r.Extent())
	require.Equal(t, render.FormatUndefined, r.Format())

	f.events.Script[2] = []render.Event{render.ResizeEvent(100, 50)}
	f.events.OnPoll = func(n int) []render.Event {
		if n == 2 {
			f.surface.Size = render.Extent{Width: 100, Height: 50}
		}
		return nil
	}
	require.NoError(t, r.Run(context.Background()))
	require.Equal(t, render.Stats{Frames: 2, Skipped: 1, Swapchains: 1}, r.Stats())
	require.Equal(t, render.Viewport{Width: 100, Height: 50, MaxDepth: 1}, r.Viewport())
	f.requireClean(t, r)
}

func TestRendererRecreateIsIdempotent(t *testing.T) {
	f := newFixture(1)
	r := f.renderer(t)

	require.NoError(t, r.Recreate())
	extent, format := r.Extent(), r.Format()
	require.NoError(t, r.Recreate())
	require.Equal(t, extent, r.Extent())
	require.Equal(t, format, r.Format())
	require.Equal(t, render.Extent{Width: 768, Height: 768}, extent)
	require.Equal(t, render.FormatB8G8R8A8Srgb, format)
	require.Equal(t, uint64(3), r.Stats().Swapchains)
	f.requireClean(t, r)
}

func TestRendererCloseWaitsForInFlightFrame(t *testing.T) {
	f := newFixture(1)
	r := f.renderer(t)
	require.NoError(t, r.Run(context.Background()))

	// The close arrived while the first frame was being produced; that frame
	// was still submitted and presented.
	require.Len(t, f.dev.Presented, 1)
	require.Equal(t, 1, f.dev.InFlight())

	f.dev.Log = nil
	f.requireClean(t, r)
	require.Equal(t, "wait idle", f.dev.Log[0])
	for _, entry := range f.dev.Log[1:] {
		require.True(t, strings.HasPrefix(entry, "destroy ") || strings.HasPrefix(entry, "wait fence"), entry)
	}
}

func TestRendererTeardownOrder(t *testing.T) {
	f := newFixture(1)
	r := f.renderer(t)
	require.NoError(t, r.Run(context.Background()))

	f.dev.Log = nil
	require.NoError(t, r.Close())

	var kinds []string
	for _, entry := range f.dev.Log {
		if fields := strings.Fields(entry); fields[0] == "destroy" {
			if len(kinds) == 0 || kinds[len(kinds)-1] != fields[1] {
				kinds = append(kinds, fields[1])
			}
		}
	}
	require.Equal(t, []string{
		rendertest.KindDescriptorPool,
		rendertest.KindCommandPool,
		rendertest.KindSemaphore,
		rendertest.KindFramebuffer,
		rendertest.KindImageView,
		rendertest.KindFence,
		rendertest.KindPipeline,
		rendertest.KindPipelineLayout,
		rendertest.KindRenderPass,
		rendertest.KindSwapchain,
		rendertest.KindDescriptorSetLayout,
		rendertest.KindBuffer,
	}, kinds)
}

func TestRendererPlatformFramebuffer(t *testing.T) {
	f := newFixture(4)
	f.dev.PlatformFramebuffer = true
	r := f.renderer(t)

	require.NoError(t, r.Run(context.Background()))
	require.Equal(t, uint64(4), r.Stats().Frames)
	require.Equal(t, []uint32{0, 0, 0, 0}, f.dev.Presented)
	require.Zero(t, f.dev.Created[rendertest.KindImageView])
	require.Equal(t, 1, f.dev.Created[rendertest.KindFramebuffer])
	f.requireClean(t, r)
}

func TestRendererFatalShaderAtStartup(t *testing.T) {
	f := newFixture(1)
	f.shaders.Fail = map[string]error{"hex.vert": errDeviceLost}

	_, err := render.New(f.dev, f.surface, f.events, f.shaders, hex, f.opts)
	var fe *render.FatalError
	require.ErrorAs(t, err, &fe)
	require.ErrorIs(t, err, errDeviceLost)
	require.Empty(t, f.dev.Live())
}

func TestRendererFatalShaderOnRecreate(t *testing.T) {
	f := newFixture(10)
	f.events.OnPoll = func(n int) []render.Event {
		if n == 3 {
			f.shaders.Fail = map[string]error{"hex.frag": errDeviceLost}
			return []render.Event{render.ResizeEvent(768, 768)}
		}
		return nil
	}
	r := f.renderer(t)

	err := r.Run(context.Background())
	var fe *render.FatalError
	require.ErrorAs(t, err, &fe)
	require.False(t, render.IsRetry(err))
	require.Equal(t, uint64(2), r.Stats().Frames)
	require.Equal(t, render.Exiting, r.State())
	f.requireClean(t, r)
}

func TestRendererFatalPresent(t *testing.T) {
	f := newFixture(10)
	f.dev.FailPresent[3] = errDeviceLost
	r := f.renderer(t)

	err := r.Run(context.Background())
	require.ErrorIs(t, err, errDeviceLost)
	require.Equal(t, uint64(2), r.Stats().Frames)
	f.requireClean(t, r)
}

func TestRendererFatalSubmitTearsDown(t *testing.T) {
	f := newFixture(10)
	f.dev.FailSubmit[2] = errDeviceLost
	r := f.renderer(t)

	err := r.Run(context.Background())
	require.ErrorIs(t, err, errDeviceLost)
	require.Equal(t, render.Exiting, r.State())
	require.Equal(t, uint64(1), r.Stats().Frames)
	f.requireClean(t, r)
}

func TestRendererFatalRecordTearsDown(t *testing.T) {
	f := newFixture(10)
	f.dev.FailEnd[2] = errDeviceLost
	r := f.renderer(t)

	err := r.Run(context.Background())
	require.ErrorIs(t, err, errDeviceLost)
	require.Equal(t, uint64(1), r.Stats().Frames)
	require.Len(t, f.dev.Submissions, 1)
	f.requireClean(t, r)
}
