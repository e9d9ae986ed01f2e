package render

import "time"

// The enumerations below carry the numeric values of their Vulkan
// counterparts so a backend can convert them without lookup tables.

type Format uint32

const (
	FormatUndefined     Format = 0
	FormatR8G8B8A8Unorm Format = 37
	FormatR8G8B8A8Srgb  Format = 43
	FormatB8G8R8A8Unorm Format = 44
	FormatB8G8R8A8Srgb  Format = 50
	FormatR32G32Sfloat  Format = 103
)

// DefaultFormat is used when the surface does not constrain the format.
const DefaultFormat = FormatR8G8B8A8Srgb

// IsSRGB reports whether the format stores gamma-encoded color.
func (f Format) IsSRGB() bool {
	switch f {
	case FormatR8G8B8A8Srgb, FormatB8G8R8A8Srgb:
		return true
	}
	return false
}

type ColorSpace uint32

const ColorSpaceSrgbNonlinear ColorSpace = 0

type SurfaceFormat struct {
	Format     Format
	ColorSpace ColorSpace
}

type PipelineStage uint32

const (
	PipelineStageTopOfPipe             PipelineStage = 0x00000001
	PipelineStageColorAttachmentOutput PipelineStage = 0x00000400
	PipelineStageBottomOfPipe          PipelineStage = 0x00002000
)

type ShaderStage uint32

const (
	ShaderStageVertex   ShaderStage = 0x00000001
	ShaderStageFragment ShaderStage = 0x00000010
)

type ImageLayout uint32

const (
	ImageLayoutUndefined              ImageLayout = 0
	ImageLayoutColorAttachmentOptimal ImageLayout = 2
	ImageLayoutPresentSrc             ImageLayout = 1000001002
)

type LoadOp uint32

const (
	LoadOpLoad     LoadOp = 0
	LoadOpClear    LoadOp = 1
	LoadOpDontCare LoadOp = 2
)

type StoreOp uint32

const (
	StoreOpStore    StoreOp = 0
	StoreOpDontCare StoreOp = 1
)

type BufferUsage uint32

const (
	BufferUsageUniform BufferUsage = 0x00000010
	BufferUsageVertex  BufferUsage = 0x00000080
)

type DescriptorType uint32

const DescriptorTypeUniformBuffer DescriptorType = 6

type Topology uint32

const TopologyTriangleList Topology = 3

type PolygonMode uint32

const PolygonModeFill PolygonMode = 0

type Extent struct {
	Width, Height uint32
}

func (e Extent) IsZero() bool {
	return e.Width == 0 || e.Height == 0
}

type Rect struct {
	X, Y          int32
	Width, Height uint32
}

// MemoryType is one entry of an adapter's memory-type table.
type MemoryType struct {
	HeapIndex    uint32
	HostVisible  bool
	HostCoherent bool
	DeviceLocal  bool
}

type AdapterInfo struct {
	Name        string
	QueueFamily uint32
	MemoryTypes []MemoryType
}

// SurfaceCapabilities describes what a surface allows a swapchain to be.
// CurrentExtent is UndefinedExtent when the window system leaves the size to
// the swapchain.
type SurfaceCapabilities struct {
	MinImageCount uint32
	MaxImageCount uint32 // 0 means no limit
	CurrentExtent Extent
	MinExtent     Extent
	MaxExtent     Extent
}

const undefinedExtentDim = ^uint32(0)

// UndefinedExtent is reported as the current extent by surfaces whose size
// is determined by the swapchain.
var UndefinedExtent = Extent{Width: undefinedExtentDim, Height: undefinedExtentDim}

// Surface is a platform presentation target.
type Surface interface {
	// Extent is the drawable size the window system currently reports.
	Extent() Extent
}

// Device is a logical device with one graphics+present queue. It is the
// factory for every other GPU object; objects are released through their own
// Destroy methods and must be released before the device.
type Device interface {
	Adapter() AdapterInfo

	SurfaceCapabilities(s Surface) (SurfaceCapabilities, error)
	SurfaceFormats(s Surface) ([]SurfaceFormat, error)

	// Submit enqueues work on the queue. It does not wait for the GPU.
	Submit(sub Submission) error
	// Present queues image for display once the wait semaphores signal.
	Present(sc Swapchain, image uint32, wait []Semaphore) error
	// WaitIdle blocks until all submitted work has completed.
	WaitIdle() error

	CreateSwapchain(s Surface, cfg SwapchainConfig, old Swapchain) (Swapchain, error)
	CreateFence(signaled bool) (Fence, error)
	CreateSemaphore() (Semaphore, error)
	CreateCommandPool() (CommandPool, error)
	CreateImageView(img Image, format Format) (ImageView, error)
	CreateRenderPass(desc RenderPassDesc) (RenderPass, error)
	CreateFramebuffer(rp RenderPass, view ImageView, extent Extent) (Framebuffer, error)
	CreateShaderModule(spirv []uint32) (ShaderModule, error)
	CreateDescriptorSetLayout(bindings []DescriptorBinding) (DescriptorSetLayout, error)
	CreateDescriptorPool(maxSets uint32, sizes []DescriptorPoolSize) (DescriptorPool, error)
	CreatePipelineLayout(sets []DescriptorSetLayout, push []PushConstantRange) (PipelineLayout, error)
	CreateGraphicsPipeline(desc *GraphicsPipelineDesc) (Pipeline, error)
	CreateBuffer(usage BufferUsage, data []byte) (Buffer, error)
}

type SwapchainConfig struct {
	Format     SurfaceFormat
	Extent     Extent
	ImageCount uint32
}

type Swapchain interface {
	// Images lists the presentable images. It may be empty when the platform
	// presents through its own framebuffer (see PlatformFramebuffer).
	Images() []Image
	// AcquireImage returns the index of the next image; wait is signaled
	// when the image is ready to be written. A zero timeout waits forever.
	AcquireImage(timeout time.Duration, wait Semaphore) (uint32, error)
	Destroy()
}

// PlatformFramebuffer is implemented by swapchains that present through a
// single framebuffer they own instead of an image set.
type PlatformFramebuffer interface {
	Framebuffer() Framebuffer
}

type Image interface{}

type ImageView interface {
	Destroy()
}

type Fence interface {
	// Wait blocks until the fence is signaled. A zero timeout waits forever.
	Wait(timeout time.Duration) error
	Reset() error
	Destroy()
}

type Semaphore interface {
	Destroy()
}

type SemaphoreWait struct {
	Semaphore Semaphore
	Stage     PipelineStage
}

type Submission struct {
	CommandBuffers []CommandBuffer
	Wait           []SemaphoreWait
	Signal         []Semaphore
	Fence          Fence
}

type CommandPool interface {
	Allocate() (CommandBuffer, error)
	// Reset returns every buffer allocated from the pool to the initial state.
	Reset() error
	Destroy()
}

type CommandBuffer interface {
	Begin() error
	SetViewport(v Viewport)
	SetScissor(r Rect)
	BindPipeline(p Pipeline)
	BindVertexBuffer(binding uint32, b Buffer, offset uint64)
	BindDescriptorSet(layout PipelineLayout, set DescriptorSet)
	BeginRenderPass(rp RenderPass, fb Framebuffer, area Rect, clear [4]float32)
	Draw(vertexCount, instanceCount uint32)
	EndRenderPass()
	End() error
}

type RenderPassDesc struct {
	Format        Format
	Load          LoadOp
	Store         StoreOp
	InitialLayout ImageLayout
	FinalLayout   ImageLayout
	SubpassLayout ImageLayout
	// WaitStage is the stage the single external dependency waits on
	// before the subpass writes the attachment.
	WaitStage PipelineStage
}

type RenderPass interface {
	Destroy()
}

type Framebuffer interface {
	Destroy()
}

type ShaderModule interface {
	Destroy()
}

type DescriptorBinding struct {
	Binding uint32
	Type    DescriptorType
	Count   uint32
	Stages  ShaderStage
}

type DescriptorPoolSize struct {
	Type  DescriptorType
	Count uint32
}

type DescriptorSetLayout interface {
	Destroy()
}

type DescriptorPool interface {
	Allocate(layout DescriptorSetLayout) (DescriptorSet, error)
	// Destroy releases the pool and every set allocated from it.
	Destroy()
}

type DescriptorSet interface {
	WriteBuffer(binding uint32, b Buffer)
}

type PushConstantRange struct {
	Stages ShaderStage
	Offset uint32
	Size   uint32
}

type PipelineLayout interface {
	Destroy()
}

type ShaderStageDesc struct {
	Module ShaderModule
	Entry  string
}

type VertexBufferLayout struct {
	Binding uint32
	Stride  uint32
}

type VertexAttribute struct {
	Location uint32
	Binding  uint32
	Format   Format
	Offset   uint32
}

type BlendState uint32

const (
	BlendReplace BlendState = iota
	BlendAlpha
)

// GraphicsPipelineDesc describes a pipeline with dynamic viewport and
// scissor state and a single color target.
type GraphicsPipelineDesc struct {
	Vertex        ShaderStageDesc
	Fragment      ShaderStageDesc
	Topology      Topology
	Polygon       PolygonMode
	Blend         BlendState
	VertexBuffers []VertexBufferLayout
	Attributes    []VertexAttribute
	Layout        PipelineLayout
	RenderPass    RenderPass
	Subpass       uint32
}

type Pipeline interface {
	Destroy()
}

type Buffer interface {
	Size() uint64
	Destroy()
}
