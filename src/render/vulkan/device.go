package vulkan

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"

	"hexthing/src/render"
)

var _ render.Device = (*Device)(nil)

var deviceExtensions = []string{vk.KhrSwapchainExtensionName + "\x00"}

// Device is a logical device with a single queue that supports both
// graphics and presentation to the surface it was opened for.
type Device struct {
	gpu    vk.PhysicalDevice
	handle vk.Device
	queue  vk.Queue
	family uint32
	info   render.AdapterInfo
	memory vk.PhysicalDeviceMemoryProperties
}

var errNoAdapter = errors.New("no adapter with a queue family that supports graphics and presentation")

// OpenDevice selects the first adapter with a queue family that supports
// graphics and presentation to surface, and opens one queue on it.
func OpenDevice(inst *Instance, surface *Surface) (*Device, error) {
	var count uint32
	if ret := vk.EnumeratePhysicalDevices(inst.handle, &count, nil); isError(ret) {
		return nil, newError(ret, "enumerate adapters")
	}
	if count == 0 {
		return nil, errNoAdapter
	}
	gpus := make([]vk.PhysicalDevice, count)
	if ret := vk.EnumeratePhysicalDevices(inst.handle, &count, gpus); isError(ret) {
		return nil, newError(ret, "enumerate adapters")
	}

	for _, gpu := range gpus {
		family, ok := presentQueueFamily(gpu, surface.handle)
		if !ok {
			continue
		}
		return newDevice(gpu, family)
	}
	return nil, errNoAdapter
}

func presentQueueFamily(gpu vk.PhysicalDevice, surface vk.Surface) (uint32, bool) {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, nil)
	families := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, families)

	for i, family := range families {
		family.Deref()
		if family.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) == 0 {
			continue
		}
		var supported vk.Bool32
		if ret := vk.GetPhysicalDeviceSurfaceSupport(gpu, uint32(i), surface, &supported); isError(ret) {
			render.Logger().Warn("query surface support", "family", i, "err", newError(ret, "surface support"))
			continue
		}
		if supported.B() {
			return uint32(i), true
		}
	}
	return 0, false
}

func newDevice(gpu vk.PhysicalDevice, family uint32) (*Device, error) {
	priorities := []float32{1.0}
	createInfo := vk.DeviceCreateInfo{
		SType:                vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount: 1,
		PQueueCreateInfos: []vk.DeviceQueueCreateInfo{{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: family,
			QueueCount:       uint32(len(priorities)),
			PQueuePriorities: priorities,
		}},
		EnabledExtensionCount:   uint32(len(deviceExtensions)),
		PpEnabledExtensionNames: deviceExtensions,
	}

	d := &Device{gpu: gpu, family: family}
	if ret := vk.CreateDevice(gpu, &createInfo, nil, &d.handle); isError(ret) {
		return nil, newError(ret, "create device")
	}
	vk.GetDeviceQueue(d.handle, family, 0, &d.queue)

	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(gpu, &props)
	props.Deref()

	vk.GetPhysicalDeviceMemoryProperties(gpu, &d.memory)
	d.memory.Deref()

	d.info = render.AdapterInfo{
		Name:        vk.ToString(props.DeviceName[:]),
		QueueFamily: family,
	}
	for i := uint32(0); i < d.memory.MemoryTypeCount; i++ {
		mt := d.memory.MemoryTypes[i]
		mt.Deref()
		flags := mt.PropertyFlags
		d.info.MemoryTypes = append(d.info.MemoryTypes, render.MemoryType{
			HeapIndex:    mt.HeapIndex,
			HostVisible:  flags&vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit) != 0,
			HostCoherent: flags&vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit) != 0,
			DeviceLocal:  flags&vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit) != 0,
		})
	}
	return d, nil
}

func (d *Device) Adapter() render.AdapterInfo {
	return d.info
}

func (d *Device) SurfaceCapabilities(s render.Surface) (render.SurfaceCapabilities, error) {
	caps, err := d.surfaceCapabilities(s.(*Surface))
	if err != nil {
		return render.SurfaceCapabilities{}, err
	}
	return render.SurfaceCapabilities{
		MinImageCount: caps.MinImageCount,
		MaxImageCount: caps.MaxImageCount,
		CurrentExtent: extentFromVk(caps.CurrentExtent),
		MinExtent:     extentFromVk(caps.MinImageExtent),
		MaxExtent:     extentFromVk(caps.MaxImageExtent),
	}, nil
}

func (d *Device) surfaceCapabilities(s *Surface) (vk.SurfaceCapabilities, error) {
	var caps vk.SurfaceCapabilities
	if ret := vk.GetPhysicalDeviceSurfaceCapabilities(d.gpu, s.handle, &caps); isError(ret) {
		return caps, newError(ret, "query surface capabilities")
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()
	return caps, nil
}

func (d *Device) SurfaceFormats(s render.Surface) ([]render.SurfaceFormat, error) {
	handle := s.(*Surface).handle
	var count uint32
	if ret := vk.GetPhysicalDeviceSurfaceFormats(d.gpu, handle, &count, nil); isError(ret) {
		return nil, newError(ret, "query surface formats")
	}
	formats := make([]vk.SurfaceFormat, count)
	if ret := vk.GetPhysicalDeviceSurfaceFormats(d.gpu, handle, &count, formats); isError(ret) {
		return nil, newError(ret, "query surface formats")
	}
	out := make([]render.SurfaceFormat, 0, count)
	for _, f := range formats {
		f.Deref()
		out = append(out, render.SurfaceFormat{
			Format:     render.Format(f.Format),
			ColorSpace: render.ColorSpace(f.ColorSpace),
		})
	}
	return out, nil
}

func (d *Device) Submit(sub render.Submission) error {
	info := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		CommandBufferCount:   uint32(len(sub.CommandBuffers)),
		PCommandBuffers:      make([]vk.CommandBuffer, 0, len(sub.CommandBuffers)),
		SignalSemaphoreCount: uint32(len(sub.Signal)),
		PSignalSemaphores:    semaphoreHandles(sub.Signal),
		WaitSemaphoreCount:   uint32(len(sub.Wait)),
	}
	for _, cb := range sub.CommandBuffers {
		info.PCommandBuffers = append(info.PCommandBuffers, cb.(*CommandBuffer).handle)
	}
	for _, w := range sub.Wait {
		info.PWaitSemaphores = append(info.PWaitSemaphores, w.Semaphore.(*Semaphore).handle)
		info.PWaitDstStageMask = append(info.PWaitDstStageMask, vk.PipelineStageFlags(w.Stage))
	}
	fence := vk.NullFence
	if sub.Fence != nil {
		fence = sub.Fence.(*Fence).handle
	}
	if ret := vk.QueueSubmit(d.queue, 1, []vk.SubmitInfo{info}, fence); isError(ret) {
		return newError(ret, "queue submit")
	}
	return nil
}

func (d *Device) Present(sc render.Swapchain, image uint32, wait []render.Semaphore) error {
	info := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: uint32(len(wait)),
		PWaitSemaphores:    semaphoreHandles(wait),
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{sc.(*Swapchain).handle},
		PImageIndices:      []uint32{image},
	}
	if ret := vk.QueuePresent(d.queue, &info); isError(ret) {
		return newError(ret, "queue present")
	}
	return nil
}

func (d *Device) WaitIdle() error {
	if ret := vk.DeviceWaitIdle(d.handle); isError(ret) {
		return newError(ret, "device wait idle")
	}
	return nil
}

// Destroy waits for the device to go idle and destroys it. Every object
// created from the device must already be destroyed.
func (d *Device) Destroy() {
	if err := d.WaitIdle(); err != nil {
		render.Logger().Warn("destroy device", "err", err)
	}
	vk.DestroyDevice(d.handle, nil)
}

func semaphoreHandles(sems []render.Semaphore) []vk.Semaphore {
	out := make([]vk.Semaphore, 0, len(sems))
	for _, s := range sems {
		out = append(out, s.(*Semaphore).handle)
	}
	return out
}

func extentFromVk(e vk.Extent2D) render.Extent {
	return render.Extent{Width: e.Width, Height: e.Height}
}

func extentToVk(e render.Extent) vk.Extent2D {
	return vk.Extent2D{Width: e.Width, Height: e.Height}
}
