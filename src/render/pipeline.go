package render

import "hexthing/src/geometry"

// ShaderCompiler turns a logical shader name into SPIR-V words.
type ShaderCompiler interface {
	Compile(name string) ([]uint32, error)
}

// Entry point names the shaders must export.
const (
	VertexEntry   = "vs_main"
	FragmentEntry = "fs_main"
)

// pushConstantSize is reserved for the vertex stage: one vec2.
const pushConstantSize = 8

// PipelineBundle is the graphics pipeline for one Renderable together with
// its layout. The descriptor set layouts are borrowed; the bundle never
// destroys them.
type PipelineBundle struct {
	id         string
	pipeline   Pipeline
	layout     PipelineLayout
	setLayouts []DescriptorSetLayout
	state      Lifecycle
}

// NewPipelineBundle compiles r's shaders and builds its pipeline against
// pass. Shader modules live only until the pipeline exists.
func NewPipelineBundle(dev Device, shaders ShaderCompiler, r Renderable, setLayouts []DescriptorSetLayout, pass *RenderTargetPass) (*PipelineBundle, error) {
	vs, err := loadModule(dev, shaders, r.VertexShader)
	if err != nil {
		return nil, err
	}
	defer vs.Destroy()
	fs, err := loadModule(dev, shaders, r.FragmentShader)
	if err != nil {
		return nil, err
	}
	defer fs.Destroy()

	layout, err := dev.CreatePipelineLayout(setLayouts, []PushConstantRange{{
		Stages: ShaderStageVertex,
		Offset: 0,
		Size:   pushConstantSize,
	}})
	if err != nil {
		return nil, fatal("create pipeline layout", err)
	}

	pipeline, err := dev.CreateGraphicsPipeline(&GraphicsPipelineDesc{
		Vertex:   ShaderStageDesc{Module: vs, Entry: VertexEntry},
		Fragment: ShaderStageDesc{Module: fs, Entry: FragmentEntry},
		Topology: r.Topology,
		Polygon:  PolygonModeFill,
		Blend:    BlendAlpha,
		VertexBuffers: []VertexBufferLayout{{
			Binding: 0,
			Stride:  geometry.Stride,
		}},
		Attributes: []VertexAttribute{{
			Location: 0,
			Binding:  0,
			Format:   FormatR32G32Sfloat,
			Offset:   geometry.PositionOffset,
		}},
		Layout:     layout,
		RenderPass: pass.Handle(),
		Subpass:    0,
	})
	if err != nil {
		layout.Destroy()
		return nil, fatal("create pipeline "+r.ID, err)
	}

	return &PipelineBundle{
		id:         r.ID,
		pipeline:   pipeline,
		layout:     layout,
		setLayouts: setLayouts,
		state:      Ready,
	}, nil
}

func loadModule(dev Device, shaders ShaderCompiler, name string) (ShaderModule, error) {
	words, err := shaders.Compile(name)
	if err != nil {
		return nil, fatal("compile shader "+name, err)
	}
	m, err := dev.CreateShaderModule(words)
	if err != nil {
		return nil, fatal("create shader module "+name, err)
	}
	return m, nil
}

// ID is the key of the Renderable the pipeline was built for.
func (b *PipelineBundle) ID() string {
	return b.id
}

func (b *PipelineBundle) Pipeline() Pipeline {
	b.state.mustBeReady("pipeline " + b.id)
	return b.pipeline
}

func (b *PipelineBundle) Layout() PipelineLayout {
	b.state.mustBeReady("pipeline " + b.id)
	return b.layout
}

func (b *PipelineBundle) Destroy() {
	if b == nil || b.state != Ready {
		return
	}
	b.pipeline.Destroy()
	b.layout.Destroy()
	b.setLayouts = nil
	b.state = Destroyed
}
