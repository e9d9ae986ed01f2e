// Package platform provides the GLFW window that hosts the presentation
// surface and feeds window events to the frame loop. GLFW must be used from
// the main thread.
package platform

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"

	"hexthing/src/render"
)

// Init initializes GLFW. Terminate must be called after every window has
// been destroyed.
func Init() error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw init: %w", err)
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return fmt.Errorf("glfw: vulkan is not supported")
	}
	return nil
}

func Terminate() {
	glfw.Terminate()
}

// VulkanProcAddr returns the loader entry point to hand to vk.SetGetInstanceProcAddr.
func VulkanProcAddr() unsafe.Pointer {
	return glfw.GetVulkanGetInstanceProcAddress()
}

// Window is a resizable window without a client API. It implements
// render.Surface, render.EventSource and render.EventWaiter.
type Window struct {
	win    *glfw.Window
	events queue
}

func NewWindow(width, height int, title string) (*Window, error) {
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}
	w := &Window{win: win}
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.events.push(render.ResizeEvent(width, height))
	})
	win.SetCloseCallback(func(*glfw.Window) {
		w.events.push(render.CloseEvent())
	})
	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		if k := translateKey(key); k != render.KeyUnknown {
			w.events.push(render.KeyEvent(k))
		}
	})
	return w, nil
}

// Poll processes pending window system events and returns those queued
// since the last call.
func (w *Window) Poll() []render.Event {
	glfw.PollEvents()
	return w.events.drain()
}

// WaitEvents blocks until a window system event arrives or timeout elapses.
// Queued events are left for the next Poll.
func (w *Window) WaitEvents(timeout time.Duration) {
	glfw.WaitEventsTimeout(timeout.Seconds())
}

// Extent is the framebuffer size in pixels; zero while minimized.
func (w *Window) Extent() render.Extent {
	width, height := w.win.GetFramebufferSize()
	return render.Extent{Width: uint32(max(width, 0)), Height: uint32(max(height, 0))}
}

func (w *Window) GetRequiredInstanceExtensions() []string {
	return w.win.GetRequiredInstanceExtensions()
}

func (w *Window) CreateWindowSurface(instance interface{}, allocCallbacks unsafe.Pointer) (uintptr, error) {
	return w.win.CreateWindowSurface(instance, allocCallbacks)
}

func (w *Window) Destroy() {
	w.win.Destroy()
}

func translateKey(k glfw.Key) render.Key {
	switch k {
	case glfw.KeyEscape:
		return render.KeyEscape
	default:
		return render.KeyUnknown
	}
}

// queue collects events delivered by GLFW callbacks during PollEvents.
type queue struct {
	pending []render.Event
}

func (q *queue) push(e render.Event) {
	// Consecutive resizes collapse into the latest size.
	if n := len(q.pending); n > 0 && e.Kind == render.EventResize && q.pending[n-1].Kind == render.EventResize {
		q.pending[n-1] = e
		return
	}
	q.pending = append(q.pending, e)
}

func (q *queue) drain() []render.Event {
	out := q.pending
	q.pending = nil
	return out
}
