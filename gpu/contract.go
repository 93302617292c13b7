package gpu

import "context"

// Instance is the entry point into the backend: it enumerates physical
// devices and owns the debug/validation layer, if any.
type Instance interface {
	EnumeratePhysicalDevices() ([]PhysicalDevice, error)
	// NativeHandle returns the backend's raw instance handle (a vk.Instance
	// for vkbackend), so a windowing backend can create a surface without
	// this package depending on any particular GPU backend.
	NativeHandle() any
	Destroy()
}

// PhysicalDevice is a candidate GPU. CreateDevice establishes a logical
// device bound to the given queue family.
type PhysicalDevice interface {
	Features() DeviceFeatureInfo
	GraphicsQueueFamily() (index uint32, ok bool)
	CreateDevice(graphicsQueueFamily uint32) (Device, error)
}

// Device is a logical device: the factory for every other GPU object.
type Device interface {
	GraphicsQueue() Queue
	CreateCommandPool() (CommandPool, error)
	CreateFence(signaled bool) (Fence, error)
	CreateSemaphore() (Semaphore, error)
	CreateImage(info ImageCreateInfo) (Image, error)
	CreateImageView(info ImageViewCreateInfo) (ImageView, error)
	CreateBuffer(info BufferCreateInfo) (Buffer, error)
	CreateRenderPass(attachments []AttachmentDescription, hasDepth bool) (RenderPass, error)
	CreateFramebuffer(pass RenderPass, views []ImageView, extent Extent3D) (Framebuffer, error)
	CreateSwapchain(surface Surface, bufferCount uint32, presentMode PresentMode) (Swapchain, error)
	WaitIdle() error
	Destroy()
}

// Queue is a single Vulkan queue capable of graphics submission and present.
type Queue interface {
	Submit(cmd CommandBuffer, waits []SemaphoreWait, signal []Semaphore, fence Fence) error
	Present(swapchain Swapchain, imageIndex uint32, wait Semaphore) error
}

// SemaphoreWait pairs a semaphore with the pipeline stage it is waited on.
type SemaphoreWait struct {
	Semaphore Semaphore
	Stage     PipelineStage
}

// CommandPool allocates command buffers of a given level.
type CommandPool interface {
	Allocate(level CommandBufferLevel) (CommandBuffer, error)
	Destroy()
}

// CommandBuffer records GPU work. Recording must happen between Begin and
// End; BeginRendering/EndRendering bracket a render pass's dynamic-rendering
// equivalent used by RASTER tasks.
type CommandBuffer interface {
	Begin() error
	End() error
	BeginRendering(pass RenderPass, fb Framebuffer, extent Extent3D, clears []ClearValue) error
	EndRendering() error
	TransitionImage(img Image, from, to ImageLayout, stage PipelineStage) error
	BlitImage(src, dst Image, srcExtent, dstExtent Extent3D) error
	Reset() error
}

// Fence is a host-waitable GPU/CPU sync point.
type Fence interface {
	Wait(ctx context.Context) error
	Reset() error
	Destroy()
}

// Semaphore is a GPU/GPU sync point.
type Semaphore interface {
	Destroy()
}

// Image is a physical image resource.
type Image interface {
	Info() ImageCreateInfo
	Destroy()
}

// ImageView is a view onto an Image.
type ImageView interface {
	Image() Image
	Destroy()
}

// Buffer is a physical buffer resource.
type Buffer interface {
	Info() BufferCreateInfo
	Destroy()
}

// RenderPass is an opaque compiled render pass object.
type RenderPass interface {
	Destroy()
}

// Framebuffer binds a RenderPass's attachments to concrete image views.
type Framebuffer interface {
	Destroy()
}

// Surface is a platform-owned presentable target (a window surface).
type Surface interface {
	Extent() Extent3D
	Destroy()
}

// Swapchain owns a ring of presentable images tied to a Surface.
type Swapchain interface {
	ImageCount() uint32
	Image(index uint32) Image
	AcquireNextImage(ctx context.Context, signal Semaphore) (index uint32, err error)
	Destroy()
}
