package render

import "time"

// SwapchainState is one swapchain instance together with the format and
// extent it was created with. Both are fixed for its lifetime; a surface
// change produces a new SwapchainState.
type SwapchainState struct {
	swapchain Swapchain
	images    []Image
	format    SurfaceFormat
	extent    Extent
	state     Lifecycle
}

// ChooseFormat picks the swapchain format: DefaultFormat when the surface
// reports no constraint, otherwise the first sRGB format, otherwise the first
// format reported.
func ChooseFormat(formats []SurfaceFormat) SurfaceFormat {
	if len(formats) == 0 || (len(formats) == 1 && formats[0].Format == FormatUndefined) {
		return SurfaceFormat{Format: DefaultFormat, ColorSpace: ColorSpaceSrgbNonlinear}
	}
	for _, f := range formats {
		if f.Format.IsSRGB() {
			return f
		}
	}
	return formats[0]
}

// ChooseExtent takes the surface's current extent, or clamps the window's
// requested size into the allowed range when the surface leaves it open.
func ChooseExtent(caps SurfaceCapabilities, requested Extent) Extent {
	if caps.CurrentExtent != UndefinedExtent {
		return caps.CurrentExtent
	}
	return Extent{
		Width:  clamp(requested.Width, caps.MinExtent.Width, caps.MaxExtent.Width),
		Height: clamp(requested.Height, caps.MinExtent.Height, caps.MaxExtent.Height),
	}
}

// ChooseImageCount asks for one image above the minimum so acquisition
// rarely waits on the presentation engine.
func ChooseImageCount(caps SurfaceCapabilities) uint32 {
	n := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && n > caps.MaxImageCount {
		n = caps.MaxImageCount
	}
	return n
}

func clamp(v, lo, hi uint32) uint32 {
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return v
}

// PlanSwapchain derives the swapchain configuration from the surface. It
// returns ErrSurfaceUnavailable when the surface has no drawable area, as
// happens while a window is minimized.
func PlanSwapchain(dev Device, surface Surface) (SwapchainConfig, error) {
	caps, err := dev.SurfaceCapabilities(surface)
	if err != nil {
		return SwapchainConfig{}, fatal("query surface capabilities", err)
	}
	formats, err := dev.SurfaceFormats(surface)
	if err != nil {
		return SwapchainConfig{}, fatal("query surface formats", err)
	}
	cfg := SwapchainConfig{
		Format:     ChooseFormat(formats),
		Extent:     ChooseExtent(caps, surface.Extent()),
		ImageCount: ChooseImageCount(caps),
	}
	if cfg.Extent.IsZero() {
		return cfg, ErrSurfaceUnavailable
	}
	return cfg, nil
}

// NewSwapchain creates a swapchain for surface. previous, when not nil, is
// handed to the backend as the swapchain being replaced; the caller still
// destroys it afterwards.
func NewSwapchain(dev Device, surface Surface, previous *SwapchainState) (*SwapchainState, error) {
	cfg, err := PlanSwapchain(dev, surface)
	if err != nil {
		return nil, err
	}

	var old Swapchain
	if previous != nil && previous.state == Ready {
		old = previous.swapchain
	}
	sc, err := dev.CreateSwapchain(surface, cfg, old)
	if err != nil {
		return nil, fatal("create swapchain", err)
	}

	s := &SwapchainState{
		swapchain: sc,
		images:    sc.Images(),
		format:    cfg.Format,
		extent:    cfg.Extent,
		state:     Ready,
	}
	Logger().Info("swapchain created",
		"format", cfg.Format.Format,
		"extent", cfg.Extent,
		"images", len(s.images))
	return s, nil
}

func (s *SwapchainState) Format() Format {
	return s.format.Format
}

func (s *SwapchainState) Extent() Extent {
	return s.extent
}

func (s *SwapchainState) Images() []Image {
	return s.images
}

func (s *SwapchainState) Handle() Swapchain {
	s.state.mustBeReady("swapchain")
	return s.swapchain
}

// Acquire returns the next presentable image index. Retry errors are passed
// through unchanged; anything else is fatal.
func (s *SwapchainState) Acquire(timeout time.Duration, wait Semaphore) (uint32, error) {
	s.state.mustBeReady("swapchain")
	idx, err := s.swapchain.AcquireImage(timeout, wait)
	if err != nil {
		if IsRetry(err) {
			return 0, err
		}
		return 0, fatal("acquire image", err)
	}
	return idx, nil
}

// Destroy releases the swapchain. Outstanding presents may still reference
// its images, so the device must be idle.
func (s *SwapchainState) Destroy() {
	if s == nil || s.state != Ready {
		return
	}
	s.swapchain.Destroy()
	s.images = nil
	s.state = Destroyed
}
