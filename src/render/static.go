package render

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"

	"hexthing/src/geometry"
)

// StaticResources are uploaded once at startup and live until the renderer
// closes: the vertex buffer, the uniform color and the descriptor set that
// exposes it to the fragment stage at set 0, binding 0.
type StaticResources struct {
	vertices    Buffer
	vertexCount uint32
	uniform     Buffer
	setLayout   DescriptorSetLayout
	pool        DescriptorPool
	set         DescriptorSet
	state       Lifecycle
}

func NewStaticResources(dev Device, r Renderable, color mgl32.Vec4) (_ *StaticResources, err error) {
	invariant(uint32(len(r.Vertices)) == r.VertexCount,
		"renderable %s has %d vertices, declares %d", r.ID, len(r.Vertices), r.VertexCount)

	if _, ok := dev.Adapter().HostVisibleMemoryType(AnyMemoryType); !ok {
		return nil, fatal("create static buffers", errors.New("adapter has no host-visible coherent memory"))
	}

	s := &StaticResources{vertexCount: r.VertexCount}
	defer func() {
		if err != nil {
			s.ReleaseDescriptors()
			s.release()
		}
	}()

	if s.vertices, err = dev.CreateBuffer(BufferUsageVertex, geometry.Bytes(r.Vertices)); err != nil {
		return nil, fatal("create vertex buffer", err)
	}
	if s.uniform, err = dev.CreateBuffer(BufferUsageUniform, geometry.Float32Bytes(color[:]...)); err != nil {
		return nil, fatal("create uniform buffer", err)
	}
	s.setLayout, err = dev.CreateDescriptorSetLayout([]DescriptorBinding{{
		Binding: 0,
		Type:    DescriptorTypeUniformBuffer,
		Count:   1,
		Stages:  ShaderStageFragment,
	}})
	if err != nil {
		return nil, fatal("create descriptor set layout", err)
	}
	s.pool, err = dev.CreateDescriptorPool(1, []DescriptorPoolSize{{
		Type:  DescriptorTypeUniformBuffer,
		Count: 1,
	}})
	if err != nil {
		return nil, fatal("create descriptor pool", err)
	}
	if s.set, err = s.pool.Allocate(s.setLayout); err != nil {
		return nil, fatal("allocate descriptor set", err)
	}
	s.set.WriteBuffer(0, s.uniform)

	s.state = Ready
	return s, nil
}

func (s *StaticResources) VertexBuffer() Buffer {
	s.state.mustBeReady("static resources")
	return s.vertices
}

func (s *StaticResources) VertexCount() uint32 {
	return s.vertexCount
}

func (s *StaticResources) SetLayouts() []DescriptorSetLayout {
	s.state.mustBeReady("static resources")
	return []DescriptorSetLayout{s.setLayout}
}

func (s *StaticResources) DescriptorSet() DescriptorSet {
	s.state.mustBeReady("static resources")
	invariant(s.set != nil, "descriptor set used after its pool was released")
	return s.set
}

// ReleaseDescriptors destroys the descriptor pool and with it the set. It
// runs first during teardown, before the frame graph.
func (s *StaticResources) ReleaseDescriptors() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Destroy()
	s.pool = nil
	s.set = nil
}

// Destroy releases the buffers and the descriptor set layout.
func (s *StaticResources) Destroy() {
	if s == nil || s.state != Ready {
		return
	}
	s.ReleaseDescriptors()
	s.release()
	s.state = Destroyed
}

func (s *StaticResources) release() {
	if s.setLayout != nil {
		s.setLayout.Destroy()
		s.setLayout = nil
	}
	if s.uniform != nil {
		s.uniform.Destroy()
		s.uniform = nil
	}
	if s.vertices != nil {
		s.vertices.Destroy()
		s.vertices = nil
	}
}
