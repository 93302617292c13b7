// Package glfwwindow implements wsi.Window over github.com/go-gl/glfw,
// generalized from dieselvk.CoreDisplay's window/surface pairing.
package glfwwindow

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"

	"github.com/TAPZCREW/stormkit-go/gpu"
	"github.com/TAPZCREW/stormkit-go/gpu/vkbackend"
)

// Window wraps a single *glfw.Window. Open must be called from the OS
// thread that will later call PollEvents; callers typically
// runtime.LockOSThread() before constructing one.
type Window struct {
	handle *glfw.Window
}

// New returns an unopened Window. glfw.Init must already have been called
// by the process (once, globally) before Open.
func New() *Window {
	return &Window{}
}

func (w *Window) Open(title string, width, height uint32) error {
	runtime.LockOSThread()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.Visible, glfw.True)

	handle, err := glfw.CreateWindow(int(width), int(height), title, nil, nil)
	if err != nil {
		return fmt.Errorf("glfwwindow: create window: %w", err)
	}
	w.handle = handle
	return nil
}

func (w *Window) Extent() gpu.Extent3D {
	width, height := w.handle.GetFramebufferSize()
	return gpu.Extent3D{Width: uint32(width), Height: uint32(height), Depth: 1}
}

func (w *Window) ShouldClose() bool {
	return w.handle.ShouldClose()
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

// CreateSurface expects instance to be a vk.Instance (the handle exposed by
// vkbackend.Instance.Handle), keeping this package's contract independent of
// gpu/vkbackend's concrete type.
func (w *Window) CreateSurface(instance any) (gpu.Surface, error) {
	vkInstance, ok := instance.(vk.Instance)
	if !ok {
		return nil, fmt.Errorf("glfwwindow: CreateSurface expects a vk.Instance, got %T", instance)
	}

	surfacePtr, err := w.handle.CreateWindowSurface(vkInstance, nil)
	if err != nil {
		return nil, fmt.Errorf("glfwwindow: create surface: %w", err)
	}

	return &vkbackend.Surface{
		Instance: vkInstance,
		Handle:   vk.SurfaceFromPointer(surfacePtr),
	}, nil
}

func (w *Window) RequiredInstanceExtensions() []string {
	return glfw.GetRequiredInstanceExtensions()
}

func (w *Window) Close() {
	w.handle.Destroy()
}
