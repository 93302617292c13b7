// Package wsi defines the windowing contract the renderer and the
// application composition layer program against, independent of any
// particular window-system backend.
package wsi

import "github.com/TAPZCREW/stormkit-go/gpu"

// Window owns a native OS window and its event pump.
type Window interface {
	// Open creates the underlying native window. Title and extent are
	// hints; the backend may clamp them to platform limits.
	Open(title string, width, height uint32) error

	// Extent returns the current framebuffer size in pixels.
	Extent() gpu.Extent3D

	// ShouldClose reports whether the user has requested the window close.
	ShouldClose() bool

	// PollEvents pumps the platform event queue once. Must be called from
	// the thread Open was called from.
	PollEvents()

	// CreateSurface creates a gpu.Surface bound to this window, given a
	// backend-specific instance handle (an opaque any so this package does
	// not depend on gpu/vkbackend).
	CreateSurface(instance any) (gpu.Surface, error)

	// RequiredInstanceExtensions lists the instance extensions the backend
	// must enable for CreateSurface to succeed.
	RequiredInstanceExtensions() []string

	// Close destroys the native window.
	Close()
}
