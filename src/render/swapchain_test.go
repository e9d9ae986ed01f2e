package render_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"hexthing/src/render"
	"hexthing/src/render/rendertest"
)

func TestChooseFormat(t *testing.T) {
	srgb := render.SurfaceFormat{Format: render.FormatB8G8R8A8Srgb}
	unorm := render.SurfaceFormat{Format: render.FormatB8G8R8A8Unorm}
	rgbaUnorm := render.SurfaceFormat{Format: render.FormatR8G8B8A8Unorm}
	def := render.SurfaceFormat{Format: render.DefaultFormat, ColorSpace: render.ColorSpaceSrgbNonlinear}

	tests := []struct {
		name    string
		formats []render.SurfaceFormat
		want    render.SurfaceFormat
	}{
		{"none", nil, def},
		{"unconstrained", []render.SurfaceFormat{{Format: render.FormatUndefined}}, def},
		{"first srgb", []render.SurfaceFormat{unorm, srgb}, srgb},
		{"no srgb", []render.SurfaceFormat{rgbaUnorm, unorm}, rgbaUnorm},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, render.ChooseFormat(tt.formats))
		})
	}
}

func TestChooseExtent(t *testing.T) {
	caps := render.SurfaceCapabilities{
		CurrentExtent: render.Extent{Width: 640, Height: 480},
		MinExtent:     render.Extent{Width: 1, Height: 1},
		MaxExtent:     render.Extent{Width: 1024, Height: 1024},
	}
	require.Equal(t, render.Extent{Width: 640, Height: 480},
		render.ChooseExtent(caps, render.Extent{Width: 768, Height: 768}))

	caps.CurrentExtent = render.UndefinedExtent
	require.Equal(t, render.Extent{Width: 768, Height: 768},
		render.ChooseExtent(caps, render.Extent{Width: 768, Height: 768}))
	require.Equal(t, render.Extent{Width: 1024, Height: 1},
		render.ChooseExtent(caps, render.Extent{Width: 5000, Height: 0}))
}

func TestChooseImageCount(t *testing.T) {
	require.Equal(t, uint32(3), render.ChooseImageCount(render.SurfaceCapabilities{MinImageCount: 2}))
	require.Equal(t, uint32(2), render.ChooseImageCount(render.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 2}))
	require.Equal(t, uint32(1), render.ChooseImageCount(render.SurfaceCapabilities{}))
}

func TestNewSwapchain(t *testing.T) {
	dev := rendertest.NewDevice()
	surf := rendertest.NewSurface(768, 768)

	first, err := render.NewSwapchain(dev, surf, nil)
	require.NoError(t, err)
	require.Equal(t, render.FormatB8G8R8A8Srgb, first.Format())
	require.Equal(t, render.Extent{Width: 768, Height: 768}, first.Extent())
	require.Len(t, first.Images(), 3)

	second, err := render.NewSwapchain(dev, surf, first)
	require.NoError(t, err)
	require.Len(t, dev.Swapchains, 2)
	require.Same(t, dev.Swapchains[0], dev.Swapchains[1].Old)

	first.Destroy()
	first.Destroy()
	second.Destroy()
	require.Empty(t, dev.Live())
	require.Empty(t, dev.Violations)
}

func TestNewSwapchainMinimized(t *testing.T) {
	dev := rendertest.NewDevice()
	surf := rendertest.NewSurface(0, 0)

	_, err := render.NewSwapchain(dev, surf, nil)
	require.ErrorIs(t, err, render.ErrSurfaceUnavailable)
	require.True(t, render.IsRetry(err))
	require.Zero(t, dev.Created[rendertest.KindSwapchain])
}

func TestSwapchainAcquire(t *testing.T) {
	dev := rendertest.NewDevice()
	dev.FailAcquire[2] = render.ErrOutOfDate
	dev.FailAcquire[3] = errDeviceLost

	sc, err := render.NewSwapchain(dev, rendertest.NewSurface(64, 64), nil)
	require.NoError(t, err)
	sem, err := dev.CreateSemaphore()
	require.NoError(t, err)

	idx, err := sc.Acquire(0, sem)
	require.NoError(t, err)
	require.Equal(t, uint32(0), idx)

	_, err = sc.Acquire(0, sem)
	require.ErrorIs(t, err, render.ErrOutOfDate)

	_, err = sc.Acquire(0, sem)
	var fe *render.FatalError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, "acquire image", fe.Op)
	require.False(t, render.IsRetry(err))
}
