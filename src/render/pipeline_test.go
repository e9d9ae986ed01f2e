package render_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hexthing/src/geometry"
	"hexthing/src/render"
	"hexthing/src/render/rendertest"
)

var hex = render.Hexagon("hex.vert", "hex.frag")

func TestPipelineBundle(t *testing.T) {
	dev := rendertest.NewDevice()
	static, err := render.NewStaticResources(dev, hex, mgl32.Vec4{1, 0, 0, 1})
	require.NoError(t, err)
	pass, err := render.NewRenderTargetPass(dev, render.FormatB8G8R8A8Srgb)
	require.NoError(t, err)

	shaders := &rendertest.Shaders{}
	b, err := render.NewPipelineBundle(dev, shaders, hex, static.SetLayouts(), pass)
	require.NoError(t, err)
	require.Equal(t, "hex", b.ID())
	require.Equal(t, []string{"hex.vert", "hex.frag"}, shaders.Compiled)

	// Shader modules do not outlive pipeline creation.
	require.Equal(t, 2, dev.Created[rendertest.KindShaderModule])
	require.Equal(t, 2, dev.Destroyed[rendertest.KindShaderModule])

	desc := b.Pipeline().(*rendertest.Pipeline).Desc
	assert.Equal(t, render.TopologyTriangleList, desc.Topology)
	assert.Equal(t, render.PolygonModeFill, desc.Polygon)
	assert.Equal(t, render.BlendAlpha, desc.Blend)
	assert.Equal(t, render.VertexEntry, desc.Vertex.Entry)
	assert.Equal(t, render.FragmentEntry, desc.Fragment.Entry)
	assert.Equal(t, []render.VertexBufferLayout{{Binding: 0, Stride: geometry.Stride}}, desc.VertexBuffers)
	assert.Equal(t, []render.VertexAttribute{{Location: 0, Binding: 0, Format: render.FormatR32G32Sfloat, Offset: 0}}, desc.Attributes)

	layout := b.Layout().(*rendertest.PipelineLayout)
	assert.Equal(t, []render.PushConstantRange{{Stages: render.ShaderStageVertex, Offset: 0, Size: 8}}, layout.Push)
	require.Len(t, layout.Sets, 1)

	rp := pass.Handle().(*rendertest.RenderPass).Desc
	assert.Equal(t, render.LoadOpClear, rp.Load)
	assert.Equal(t, render.StoreOpStore, rp.Store)
	assert.Equal(t, render.ImageLayoutUndefined, rp.InitialLayout)
	assert.Equal(t, render.ImageLayoutPresentSrc, rp.FinalLayout)

	b.Destroy()
	b.Destroy()
	pass.Destroy()
	static.Destroy()
	require.Empty(t, dev.Live())
	require.Empty(t, dev.Violations)
}

func TestPipelineBundleShaderFailure(t *testing.T) {
	dev := rendertest.NewDevice()
	pass, err := render.NewRenderTargetPass(dev, render.FormatB8G8R8A8Srgb)
	require.NoError(t, err)
	shaders := &rendertest.Shaders{Fail: map[string]error{"hex.frag": errDeviceLost}}

	_, err = render.NewPipelineBundle(dev, shaders, hex, nil, pass)
	var fe *render.FatalError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, "compile shader hex.frag", fe.Op)

	pass.Destroy()
	require.Empty(t, dev.Live())
}

func TestStaticResources(t *testing.T) {
	dev := rendertest.NewDevice()
	s, err := render.NewStaticResources(dev, hex, mgl32.Vec4{1, 0, 0, 1})
	require.NoError(t, err)
	require.Equal(t, uint32(geometry.HexagonVertices), s.VertexCount())

	vb := s.VertexBuffer().(*rendertest.Buffer)
	require.Equal(t, render.BufferUsageVertex, vb.Usage)
	require.Equal(t, geometry.Bytes(geometry.Hexagon()), vb.Data)

	set := s.DescriptorSet().(*rendertest.DescriptorSet)
	ub := set.Writes[0]
	require.NotNil(t, ub)
	require.Equal(t, render.BufferUsageUniform, ub.Usage)
	require.Equal(t, geometry.Float32Bytes(1, 0, 0, 1), ub.Data)
	require.Equal(t, []render.DescriptorBinding{{
		Binding: 0,
		Type:    render.DescriptorTypeUniformBuffer,
		Count:   1,
		Stages:  render.ShaderStageFragment,
	}}, set.Layout.Bindings)

	s.ReleaseDescriptors()
	require.Equal(t, 1, dev.Destroyed[rendertest.KindDescriptorPool])
	require.Zero(t, dev.Destroyed[rendertest.KindBuffer])
	s.Destroy()
	require.Empty(t, dev.Live())
}

func TestStaticResourcesFailureReleases(t *testing.T) {
	dev := rendertest.NewDevice()
	dev.Fail[rendertest.KindDescriptorPool] = errDeviceLost
	_, err := render.NewStaticResources(dev, hex, mgl32.Vec4{})
	require.ErrorIs(t, err, errDeviceLost)
	require.Empty(t, dev.Live())
}

func TestStaticResourcesNeedHostMemory(t *testing.T) {
	dev := rendertest.NewDevice()
	dev.Info.MemoryTypes = []render.MemoryType{{DeviceLocal: true}}
	_, err := render.NewStaticResources(dev, hex, mgl32.Vec4{})
	var fe *render.FatalError
	require.ErrorAs(t, err, &fe)
	require.Zero(t, dev.Created[rendertest.KindBuffer])
}

func TestHostVisibleMemoryType(t *testing.T) {
	info := render.AdapterInfo{MemoryTypes: []render.MemoryType{
		{DeviceLocal: true},
		{HostVisible: true},
		{HostVisible: true, HostCoherent: true},
		{HostVisible: true, HostCoherent: true, DeviceLocal: true},
	}}
	idx, ok := info.HostVisibleMemoryType(render.AnyMemoryType)
	require.True(t, ok)
	require.Equal(t, uint32(2), idx)

	idx, ok = info.HostVisibleMemoryType(1<<3 | 1<<0)
	require.True(t, ok)
	require.Equal(t, uint32(3), idx)

	_, ok = info.HostVisibleMemoryType(1<<0 | 1<<1)
	require.False(t, ok)
}

func TestViewportFor(t *testing.T) {
	v := render.ViewportFor(render.Extent{Width: 768, Height: 512})
	require.Equal(t, render.Viewport{Width: 768, Height: 512, MinDepth: 0, MaxDepth: 1}, v)
	require.Equal(t, render.Rect{Width: 768, Height: 512}, v.Scissor())
}
