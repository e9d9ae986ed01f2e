package vulkan

import (
	"time"

	vk "github.com/vulkan-go/vulkan"

	"hexthing/src/render"
)

// Swapchain presents through FIFO mode, which every implementation
// supports.
type Swapchain struct {
	dev    vk.Device
	handle vk.Swapchain
	images []render.Image
}

type image struct {
	handle vk.Image
}

func (d *Device) CreateSwapchain(s render.Surface, cfg render.SwapchainConfig, old render.Swapchain) (render.Swapchain, error) {
	surface := s.(*Surface)
	caps, err := d.surfaceCapabilities(surface)
	if err != nil {
		return nil, err
	}

	info := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          surface.handle,
		MinImageCount:    cfg.ImageCount,
		ImageFormat:      vk.Format(cfg.Format.Format),
		ImageColorSpace:  vk.ColorSpace(cfg.Format.ColorSpace),
		ImageExtent:      extentToVk(cfg.Extent),
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      vk.PresentModeFifo,
		Clipped:          vk.True,
		OldSwapchain:     vk.NullSwapchain,
	}
	if old != nil {
		info.OldSwapchain = old.(*Swapchain).handle
	}

	sc := &Swapchain{dev: d.handle}
	if ret := vk.CreateSwapchain(d.handle, &info, nil, &sc.handle); isError(ret) {
		return nil, newError(ret, "create swapchain")
	}

	var count uint32
	if ret := vk.GetSwapchainImages(d.handle, sc.handle, &count, nil); isError(ret) {
		sc.Destroy()
		return nil, newError(ret, "get swapchain images")
	}
	handles := make([]vk.Image, count)
	if ret := vk.GetSwapchainImages(d.handle, sc.handle, &count, handles); isError(ret) {
		sc.Destroy()
		return nil, newError(ret, "get swapchain images")
	}
	for _, h := range handles {
		sc.images = append(sc.images, &image{handle: h})
	}
	return sc, nil
}

func (s *Swapchain) Images() []render.Image {
	return s.images
}

// AcquireImage treats a suboptimal acquisition as success: the image is
// acquired and wait will be signaled, and the following present reports the
// same condition.
func (s *Swapchain) AcquireImage(timeout time.Duration, wait render.Semaphore) (uint32, error) {
	var idx uint32
	ret := vk.AcquireNextImage(s.dev, s.handle, timeoutNanos(timeout), wait.(*Semaphore).handle, vk.NullFence, &idx)
	switch ret {
	case vk.Success:
		return idx, nil
	case vk.Suboptimal:
		render.Logger().Debug("acquired image from suboptimal swapchain", "image", idx)
		return idx, nil
	}
	return 0, newError(ret, "acquire next image")
}

func (s *Swapchain) Destroy() {
	vk.DestroySwapchain(s.dev, s.handle, nil)
	s.images = nil
}
