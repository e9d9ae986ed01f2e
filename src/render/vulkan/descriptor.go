package vulkan

import (
	vk "github.com/vulkan-go/vulkan"

	"hexthing/src/render"
)

type DescriptorSetLayout struct {
	dev    vk.Device
	handle vk.DescriptorSetLayout
}

func (d *Device) CreateDescriptorSetLayout(bindings []render.DescriptorBinding) (render.DescriptorSetLayout, error) {
	vkBindings := make([]vk.DescriptorSetLayoutBinding, 0, len(bindings))
	for _, b := range bindings {
		vkBindings = append(vkBindings, vk.DescriptorSetLayoutBinding{
			Binding:         b.Binding,
			DescriptorType:  vk.DescriptorType(b.Type),
			DescriptorCount: b.Count,
			StageFlags:      vk.ShaderStageFlags(b.Stages),
		})
	}
	info := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(vkBindings)),
		PBindings:    vkBindings,
	}
	l := &DescriptorSetLayout{dev: d.handle}
	if ret := vk.CreateDescriptorSetLayout(d.handle, &info, nil, &l.handle); isError(ret) {
		return nil, newError(ret, "create descriptor set layout")
	}
	return l, nil
}

func (l *DescriptorSetLayout) Destroy() {
	vk.DestroyDescriptorSetLayout(l.dev, l.handle, nil)
}

type DescriptorPool struct {
	dev    vk.Device
	handle vk.DescriptorPool
}

func (d *Device) CreateDescriptorPool(maxSets uint32, sizes []render.DescriptorPoolSize) (render.DescriptorPool, error) {
	vkSizes := make([]vk.DescriptorPoolSize, 0, len(sizes))
	for _, s := range sizes {
		vkSizes = append(vkSizes, vk.DescriptorPoolSize{
			Type:            vk.DescriptorType(s.Type),
			DescriptorCount: s.Count,
		})
	}
	info := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       maxSets,
		PoolSizeCount: uint32(len(vkSizes)),
		PPoolSizes:    vkSizes,
	}
	p := &DescriptorPool{dev: d.handle}
	if ret := vk.CreateDescriptorPool(d.handle, &info, nil, &p.handle); isError(ret) {
		return nil, newError(ret, "create descriptor pool")
	}
	return p, nil
}

func (p *DescriptorPool) Allocate(layout render.DescriptorSetLayout) (render.DescriptorSet, error) {
	info := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     p.handle,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{layout.(*DescriptorSetLayout).handle},
	}
	s := &DescriptorSet{dev: p.dev}
	if ret := vk.AllocateDescriptorSets(p.dev, &info, &s.handle); isError(ret) {
		return nil, newError(ret, "allocate descriptor set")
	}
	return s, nil
}

func (p *DescriptorPool) Destroy() {
	vk.DestroyDescriptorPool(p.dev, p.handle, nil)
}

type DescriptorSet struct {
	dev    vk.Device
	handle vk.DescriptorSet
}

// WriteBuffer points binding at the whole of b as a uniform buffer.
func (s *DescriptorSet) WriteBuffer(binding uint32, b render.Buffer) {
	buf := b.(*Buffer)
	write := vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          s.handle,
		DstBinding:      binding,
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeUniformBuffer,
		PBufferInfo: []vk.DescriptorBufferInfo{{
			Buffer: buf.handle,
			Offset: 0,
			Range:  vk.DeviceSize(buf.size),
		}},
	}
	vk.UpdateDescriptorSets(s.dev, 1, []vk.WriteDescriptorSet{write}, 0, nil)
}
