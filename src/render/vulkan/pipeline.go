package vulkan

import (
	vk "github.com/vulkan-go/vulkan"

	"hexthing/src/render"
)

type ShaderModule struct {
	dev    vk.Device
	handle vk.ShaderModule
}

func (d *Device) CreateShaderModule(spirv []uint32) (render.ShaderModule, error) {
	info := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(spirv) * 4),
		PCode:    spirv,
	}
	m := &ShaderModule{dev: d.handle}
	if ret := vk.CreateShaderModule(d.handle, &info, nil, &m.handle); isError(ret) {
		return nil, newError(ret, "create shader module")
	}
	return m, nil
}

func (m *ShaderModule) Destroy() {
	vk.DestroyShaderModule(m.dev, m.handle, nil)
}

type PipelineLayout struct {
	dev    vk.Device
	handle vk.PipelineLayout
}

func (d *Device) CreatePipelineLayout(sets []render.DescriptorSetLayout, push []render.PushConstantRange) (render.PipelineLayout, error) {
	layouts := make([]vk.DescriptorSetLayout, 0, len(sets))
	for _, s := range sets {
		layouts = append(layouts, s.(*DescriptorSetLayout).handle)
	}
	ranges := make([]vk.PushConstantRange, 0, len(push))
	for _, r := range push {
		ranges = append(ranges, vk.PushConstantRange{
			StageFlags: vk.ShaderStageFlags(r.Stages),
			Offset:     r.Offset,
			Size:       r.Size,
		})
	}
	info := vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount:         uint32(len(layouts)),
		PSetLayouts:            layouts,
		PushConstantRangeCount: uint32(len(ranges)),
		PPushConstantRanges:    ranges,
	}
	l := &PipelineLayout{dev: d.handle}
	if ret := vk.CreatePipelineLayout(d.handle, &info, nil, &l.handle); isError(ret) {
		return nil, newError(ret, "create pipeline layout")
	}
	return l, nil
}

func (l *PipelineLayout) Destroy() {
	vk.DestroyPipelineLayout(l.dev, l.handle, nil)
}

type Pipeline struct {
	dev    vk.Device
	handle vk.Pipeline
}

const colorWriteAll = vk.ColorComponentRBit | vk.ColorComponentGBit | vk.ColorComponentBBit | vk.ColorComponentABit

func blendAttachment(b render.BlendState) vk.PipelineColorBlendAttachmentState {
	state := vk.PipelineColorBlendAttachmentState{
		ColorWriteMask:      vk.ColorComponentFlags(colorWriteAll),
		BlendEnable:         vk.False,
		SrcColorBlendFactor: vk.BlendFactorOne,
		DstColorBlendFactor: vk.BlendFactorZero,
		ColorBlendOp:        vk.BlendOpAdd,
		SrcAlphaBlendFactor: vk.BlendFactorOne,
		DstAlphaBlendFactor: vk.BlendFactorZero,
		AlphaBlendOp:        vk.BlendOpAdd,
	}
	if b == render.BlendAlpha {
		state.BlendEnable = vk.True
		state.SrcColorBlendFactor = vk.BlendFactorSrcAlpha
		state.DstColorBlendFactor = vk.BlendFactorOneMinusSrcAlpha
		state.DstAlphaBlendFactor = vk.BlendFactorOneMinusSrcAlpha
	}
	return state
}

// CreateGraphicsPipeline builds a pipeline with dynamic viewport and
// scissor, no culling, no depth test and single sampling.
func (d *Device) CreateGraphicsPipeline(desc *render.GraphicsPipelineDesc) (render.Pipeline, error) {
	stages := []vk.PipelineShaderStageCreateInfo{
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageVertexBit,
			Module: desc.Vertex.Module.(*ShaderModule).handle,
			PName:  safeString(desc.Vertex.Entry),
		},
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageFragmentBit,
			Module: desc.Fragment.Module.(*ShaderModule).handle,
			PName:  safeString(desc.Fragment.Entry),
		},
	}

	bindings := make([]vk.VertexInputBindingDescription, 0, len(desc.VertexBuffers))
	for _, b := range desc.VertexBuffers {
		bindings = append(bindings, vk.VertexInputBindingDescription{
			Binding:   b.Binding,
			Stride:    b.Stride,
			InputRate: vk.VertexInputRateVertex,
		})
	}
	attributes := make([]vk.VertexInputAttributeDescription, 0, len(desc.Attributes))
	for _, a := range desc.Attributes {
		attributes = append(attributes, vk.VertexInputAttributeDescription{
			Location: a.Location,
			Binding:  a.Binding,
			Format:   vk.Format(a.Format),
			Offset:   a.Offset,
		})
	}
	vertexInput := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(bindings)),
		PVertexBindingDescriptions:      bindings,
		VertexAttributeDescriptionCount: uint32(len(attributes)),
		PVertexAttributeDescriptions:    attributes,
	}
	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               vk.PrimitiveTopology(desc.Topology),
		PrimitiveRestartEnable: vk.False,
	}
	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}
	rasterizer := vk.PipelineRasterizationStateCreateInfo{
		SType:       vk.StructureTypePipelineRasterizationStateCreateInfo,
		PolygonMode: vk.PolygonMode(desc.Polygon),
		CullMode:    vk.CullModeFlags(vk.CullModeNone),
		FrontFace:   vk.FrontFaceCounterClockwise,
		LineWidth:   1,
	}
	multisample := vk.PipelineMultisampleStateCreateInfo{
		SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples: vk.SampleCount1Bit,
		MinSampleShading:     1,
	}
	blend := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: 1,
		PAttachments:    []vk.PipelineColorBlendAttachmentState{blendAttachment(desc.Blend)},
	}
	dynamicStates := []vk.DynamicState{vk.DynamicStateViewport, vk.DynamicStateScissor}
	dynamic := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(dynamicStates)),
		PDynamicStates:    dynamicStates,
	}

	info := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(stages)),
		PStages:             stages,
		PVertexInputState:   &vertexInput,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterizer,
		PMultisampleState:   &multisample,
		PColorBlendState:    &blend,
		PDynamicState:       &dynamic,
		Layout:              desc.Layout.(*PipelineLayout).handle,
		RenderPass:          desc.RenderPass.(*RenderPass).handle,
		Subpass:             desc.Subpass,
		BasePipelineHandle:  vk.Pipeline(vk.NullHandle),
		BasePipelineIndex:   -1,
	}
	pipelines := make([]vk.Pipeline, 1)
	ret := vk.CreateGraphicsPipelines(d.handle, vk.PipelineCache(vk.NullHandle), 1,
		[]vk.GraphicsPipelineCreateInfo{info}, nil, pipelines)
	if isError(ret) {
		return nil, newError(ret, "create graphics pipeline")
	}
	return &Pipeline{dev: d.handle, handle: pipelines[0]}, nil
}

func (p *Pipeline) Destroy() {
	vk.DestroyPipeline(p.dev, p.handle, nil)
}
