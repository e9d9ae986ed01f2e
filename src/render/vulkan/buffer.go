package vulkan

import (
	"unsafe"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"

	"hexthing/src/render"
)

// Buffer is a buffer in host-visible, coherent memory, filled once at
// creation.
type Buffer struct {
	dev    vk.Device
	handle vk.Buffer
	memory vk.DeviceMemory
	size   uint64
}

func (d *Device) CreateBuffer(usage render.BufferUsage, data []byte) (render.Buffer, error) {
	size := vk.DeviceSize(len(data))
	info := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       vk.BufferUsageFlags(usage),
		SharingMode: vk.SharingModeExclusive,
	}
	b := &Buffer{dev: d.handle, size: uint64(len(data))}
	if ret := vk.CreateBuffer(d.handle, &info, nil, &b.handle); isError(ret) {
		return nil, newError(ret, "create buffer")
	}

	var req vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(d.handle, b.handle, &req)
	req.Deref()

	typeIndex, ok := d.info.HostVisibleMemoryType(req.MemoryTypeBits)
	if !ok {
		vk.DestroyBuffer(d.handle, b.handle, nil)
		return nil, errors.New("create buffer: no host-visible coherent memory type")
	}
	alloc := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  req.Size,
		MemoryTypeIndex: typeIndex,
	}
	if ret := vk.AllocateMemory(d.handle, &alloc, nil, &b.memory); isError(ret) {
		vk.DestroyBuffer(d.handle, b.handle, nil)
		return nil, newError(ret, "allocate buffer memory")
	}
	if ret := vk.BindBufferMemory(d.handle, b.handle, b.memory, 0); isError(ret) {
		b.Destroy()
		return nil, newError(ret, "bind buffer memory")
	}
	if err := b.upload(data); err != nil {
		b.Destroy()
		return nil, err
	}
	return b, nil
}

func (b *Buffer) upload(data []byte) error {
	var mapped unsafe.Pointer
	if ret := vk.MapMemory(b.dev, b.memory, 0, vk.DeviceSize(len(data)), 0, &mapped); isError(ret) {
		return newError(ret, "map buffer memory")
	}
	defer vk.UnmapMemory(b.dev, b.memory)
	if n := vk.Memcopy(mapped, data); n != len(data) {
		return errors.Errorf("upload buffer: copied %d of %d bytes", n, len(data))
	}
	return nil
}

func (b *Buffer) Size() uint64 {
	return b.size
}

func (b *Buffer) Destroy() {
	vk.DestroyBuffer(b.dev, b.handle, nil)
	vk.FreeMemory(b.dev, b.memory, nil)
}
