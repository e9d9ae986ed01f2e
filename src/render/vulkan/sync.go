package vulkan

import (
	"time"

	vk "github.com/vulkan-go/vulkan"

	"hexthing/src/render"
)

type Fence struct {
	dev    vk.Device
	handle vk.Fence
}

func (d *Device) CreateFence(signaled bool) (render.Fence, error) {
	info := vk.FenceCreateInfo{SType: vk.StructureTypeFenceCreateInfo}
	if signaled {
		info.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}
	f := &Fence{dev: d.handle}
	if ret := vk.CreateFence(d.handle, &info, nil, &f.handle); isError(ret) {
		return nil, newError(ret, "create fence")
	}
	return f, nil
}

func (f *Fence) Wait(timeout time.Duration) error {
	ret := vk.WaitForFences(f.dev, 1, []vk.Fence{f.handle}, vk.True, timeoutNanos(timeout))
	if isError(ret) {
		return newError(ret, "wait for fence")
	}
	return nil
}

func (f *Fence) Reset() error {
	if ret := vk.ResetFences(f.dev, 1, []vk.Fence{f.handle}); isError(ret) {
		return newError(ret, "reset fence")
	}
	return nil
}

func (f *Fence) Destroy() {
	vk.DestroyFence(f.dev, f.handle, nil)
}

type Semaphore struct {
	dev    vk.Device
	handle vk.Semaphore
}

func (d *Device) CreateSemaphore() (render.Semaphore, error) {
	info := vk.SemaphoreCreateInfo{SType: vk.StructureTypeSemaphoreCreateInfo}
	s := &Semaphore{dev: d.handle}
	if ret := vk.CreateSemaphore(d.handle, &info, nil, &s.handle); isError(ret) {
		return nil, newError(ret, "create semaphore")
	}
	return s, nil
}

func (s *Semaphore) Destroy() {
	vk.DestroySemaphore(s.dev, s.handle, nil)
}

// timeoutNanos maps the zero duration to an unbounded wait.
func timeoutNanos(d time.Duration) uint64 {
	if d <= 0 {
		return vk.MaxUint64
	}
	return uint64(d.Nanoseconds())
}
