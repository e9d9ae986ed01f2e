package vulkan

import (
	"unsafe"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"

	"hexthing/src/render"
)

// SurfaceProvider is a window that can host a Vulkan surface. *glfw.Window
// satisfies it.
type SurfaceProvider interface {
	GetRequiredInstanceExtensions() []string
	CreateWindowSurface(instance interface{}, allocCallbacks unsafe.Pointer) (uintptr, error)
}

// Window is a SurfaceProvider that also reports its drawable size.
type Window interface {
	SurfaceProvider
	render.Surface
}

// Init loads the Vulkan entry points through procAddr, the loader's
// vkGetInstanceProcAddr as returned by the window system.
func Init(procAddr unsafe.Pointer) error {
	vk.SetGetInstanceProcAddr(procAddr)
	if err := vk.Init(); err != nil {
		return errors.Wrap(err, "init vulkan")
	}
	return nil
}

const validationLayer = "VK_LAYER_KHRONOS_validation\x00"

type InstanceOptions struct {
	AppName string
	// Validation enables the Khronos validation layer.
	Validation bool
}

type Instance struct {
	handle vk.Instance
}

// NewInstance creates an instance with the extensions the window system
// needs. Init must have been called.
func NewInstance(p SurfaceProvider, opts InstanceOptions) (*Instance, error) {
	extensions := p.GetRequiredInstanceExtensions()
	for i, ext := range extensions {
		extensions[i] = safeString(ext)
	}

	appInfo := vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   safeString(opts.AppName),
		ApplicationVersion: vk.MakeVersion(1, 0, 0),
		PEngineName:        "hexthing\x00",
		EngineVersion:      vk.MakeVersion(1, 0, 0),
		ApiVersion:         vk.ApiVersion10,
	}
	createInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
	}
	if opts.Validation {
		createInfo.EnabledLayerCount = 1
		createInfo.PpEnabledLayerNames = []string{validationLayer}
	}

	var instance vk.Instance
	if ret := vk.CreateInstance(&createInfo, nil, &instance); isError(ret) {
		return nil, newError(ret, "create instance")
	}
	if err := vk.InitInstance(instance); err != nil {
		vk.DestroyInstance(instance, nil)
		return nil, errors.Wrap(err, "init instance")
	}
	render.Logger().Debug("vulkan instance created", "extensions", len(extensions), "validation", opts.Validation)
	return &Instance{handle: instance}, nil
}

// CreateSurface creates the presentation surface for w.
func (i *Instance) CreateSurface(w Window) (*Surface, error) {
	ptr, err := w.CreateWindowSurface(i.handle, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create window surface")
	}
	return &Surface{
		handle:   vk.SurfaceFromPointer(ptr),
		instance: i.handle,
		window:   w,
	}, nil
}

func (i *Instance) Destroy() {
	vk.DestroyInstance(i.handle, nil)
}

// Surface is a Vulkan surface. Its extent is the window's framebuffer size.
type Surface struct {
	handle   vk.Surface
	instance vk.Instance
	window   render.Surface
}

func (s *Surface) Extent() render.Extent {
	return s.window.Extent()
}

func (s *Surface) Destroy() {
	vk.DestroySurface(s.instance, s.handle, nil)
}

func safeString(s string) string {
	if len(s) == 0 || s[len(s)-1] != 0 {
		return s + "\x00"
	}
	return s
}
