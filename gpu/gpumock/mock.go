// Package gpumock is an allocation-free, hardware-free double for the gpu
// contract. The framegraph compiler's unit tests drive it directly so that
// culling, scheduling, and physical-description invariants are checkable
// without a real GPU or display, mirroring the "mock backend" called for by
// the framegraph's testing strategy.
package gpumock

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/TAPZCREW/stormkit-go/gpu"
)

var idSeq atomic.Uint64

func nextID() uint64 { return idSeq.Add(1) }

// Instance is the mock entry point. It reports a single fixed set of
// physical devices configured at construction time.
type Instance struct {
	devices []gpu.PhysicalDevice
}

// New creates a mock instance exposing the given physical devices. If none
// are given a single discrete-GPU-like device is synthesized.
func New(devices ...gpu.PhysicalDevice) *Instance {
	if len(devices) == 0 {
		devices = []gpu.PhysicalDevice{NewPhysicalDevice(gpu.DeviceFeatureInfo{
			Name:                    "mock-discrete",
			IsDiscreteGPU:           true,
			MaxImageDimension2D:     16384,
			MaxUniformBufferRange:   65536,
			APIVersionMajor:         1,
			APIVersionMinor:         3,
			SupportedExtensionNames: []string{"VK_KHR_maintenance3", "VK_KHR_swapchain"},
		})}
	}
	return &Instance{devices: devices}
}

func (i *Instance) EnumeratePhysicalDevices() ([]gpu.PhysicalDevice, error) {
	return i.devices, nil
}

func (i *Instance) NativeHandle() any { return i }

func (i *Instance) Destroy() {}

// PhysicalDevice is a mock candidate GPU with a fixed feature report.
type PhysicalDevice struct {
	features gpu.DeviceFeatureInfo
}

func NewPhysicalDevice(features gpu.DeviceFeatureInfo) *PhysicalDevice {
	return &PhysicalDevice{features: features}
}

func (p *PhysicalDevice) Features() gpu.DeviceFeatureInfo { return p.features }

func (p *PhysicalDevice) GraphicsQueueFamily() (uint32, bool) { return 0, true }

func (p *PhysicalDevice) CreateDevice(graphicsQueueFamily uint32) (gpu.Device, error) {
	d := &Device{}
	d.queue = &Queue{device: d}
	return d, nil
}

// Device is the mock logical device. All allocation calls simply mint a
// fresh handle and record bookkeeping state; nothing touches real memory.
type Device struct {
	mu    sync.Mutex
	queue *Queue
	lost  bool
}

func (d *Device) GraphicsQueue() gpu.Queue { return d.queue }

func (d *Device) CreateCommandPool() (gpu.CommandPool, error) {
	return &CommandPool{device: d}, nil
}

func (d *Device) CreateFence(signaled bool) (gpu.Fence, error) {
	f := &Fence{}
	f.signaled.Store(signaled)
	return f, nil
}

func (d *Device) CreateSemaphore() (gpu.Semaphore, error) {
	return &Semaphore{id: nextID()}, nil
}

func (d *Device) CreateImage(info gpu.ImageCreateInfo) (gpu.Image, error) {
	return &Image{id: nextID(), info: info}, nil
}

func (d *Device) CreateImageView(info gpu.ImageViewCreateInfo) (gpu.ImageView, error) {
	return &ImageView{id: nextID(), image: info.Image}, nil
}

func (d *Device) CreateBuffer(info gpu.BufferCreateInfo) (gpu.Buffer, error) {
	return &Buffer{id: nextID(), info: info}, nil
}

func (d *Device) CreateRenderPass(attachments []gpu.AttachmentDescription, hasDepth bool) (gpu.RenderPass, error) {
	cp := make([]gpu.AttachmentDescription, len(attachments))
	copy(cp, attachments)
	return &RenderPass{id: nextID(), attachments: cp, hasDepth: hasDepth}, nil
}

func (d *Device) CreateFramebuffer(pass gpu.RenderPass, views []gpu.ImageView, extent gpu.Extent3D) (gpu.Framebuffer, error) {
	return &Framebuffer{id: nextID(), pass: pass, views: views, extent: extent}, nil
}

func (d *Device) CreateSwapchain(surface gpu.Surface, bufferCount uint32, presentMode gpu.PresentMode) (gpu.Swapchain, error) {
	sc := &Swapchain{extent: surface.Extent(), presentMode: presentMode}
	for i := uint32(0); i < bufferCount; i++ {
		sc.images = append(sc.images, &Image{
			id: nextID(),
			info: gpu.ImageCreateInfo{
				Name:   fmt.Sprintf("swapchain-image-%d", i),
				Extent: sc.extent,
				Format: gpu.FormatB8G8R8A8UNorm,
				Usage:  gpu.ImageUsageColorAttachment | gpu.ImageUsageTransferDst,
			},
		})
	}
	return sc, nil
}

func (d *Device) WaitIdle() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return nil
}

func (d *Device) Destroy() {}

// Queue is the mock graphics queue. Submit and Present record their call
// arguments so tests can assert on submission order without a real GPU.
type Queue struct {
	device *Device

	mu      sync.Mutex
	Submits []SubmitRecord
}

type SubmitRecord struct {
	Waits  []gpu.SemaphoreWait
	Signal []gpu.Semaphore
	Fence  gpu.Fence
}

func (q *Queue) Submit(cmd gpu.CommandBuffer, waits []gpu.SemaphoreWait, signal []gpu.Semaphore, fence gpu.Fence) error {
	q.mu.Lock()
	q.Submits = append(q.Submits, SubmitRecord{Waits: waits, Signal: signal, Fence: fence})
	q.mu.Unlock()
	if f, ok := fence.(*Fence); ok {
		f.signaled.Store(true)
	}
	return nil
}

func (q *Queue) Present(swapchain gpu.Swapchain, imageIndex uint32, wait gpu.Semaphore) error {
	return nil
}

// CommandPool allocates CommandBuffers that merely record calls in order.
type CommandPool struct {
	device *Device
}

func (p *CommandPool) Allocate(level gpu.CommandBufferLevel) (gpu.CommandBuffer, error) {
	return &CommandBuffer{level: level}, nil
}

func (p *CommandPool) Destroy() {}

// RecordedCall is one call made against a mock CommandBuffer, used by tests
// to assert on recording order (e.g. that BeginRendering precedes Execute).
type RecordedCall struct {
	Name   string
	Images []gpu.Image
}

type CommandBuffer struct {
	level gpu.CommandBufferLevel

	mu    sync.Mutex
	Calls []RecordedCall
}

func (c *CommandBuffer) record(name string, images ...gpu.Image) {
	c.mu.Lock()
	c.Calls = append(c.Calls, RecordedCall{Name: name, Images: images})
	c.mu.Unlock()
}

func (c *CommandBuffer) Begin() error { c.record("Begin"); return nil }
func (c *CommandBuffer) End() error   { c.record("End"); return nil }

func (c *CommandBuffer) BeginRendering(pass gpu.RenderPass, fb gpu.Framebuffer, extent gpu.Extent3D, clears []gpu.ClearValue) error {
	c.record("BeginRendering")
	return nil
}

func (c *CommandBuffer) EndRendering() error { c.record("EndRendering"); return nil }

func (c *CommandBuffer) TransitionImage(img gpu.Image, from, to gpu.ImageLayout, stage gpu.PipelineStage) error {
	c.record("TransitionImage", img)
	return nil
}

func (c *CommandBuffer) BlitImage(src, dst gpu.Image, srcExtent, dstExtent gpu.Extent3D) error {
	c.record("BlitImage", src, dst)
	return nil
}

func (c *CommandBuffer) Reset() error {
	c.mu.Lock()
	c.Calls = nil
	c.mu.Unlock()
	return nil
}

// Fence is a mock host-waitable sync point; Wait returns immediately since
// no real GPU work is in flight.
type Fence struct {
	signaled atomic.Bool
}

func (f *Fence) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	return nil
}

func (f *Fence) Reset() error {
	f.signaled.Store(false)
	return nil
}

func (f *Fence) Destroy() {}

type Semaphore struct{ id uint64 }

func (s *Semaphore) Destroy() {}

type Image struct {
	id   uint64
	info gpu.ImageCreateInfo
}

func (i *Image) Info() gpu.ImageCreateInfo { return i.info }
func (i *Image) Destroy()                  {}

type ImageView struct {
	id    uint64
	image gpu.Image
}

func (v *ImageView) Image() gpu.Image { return v.image }
func (v *ImageView) Destroy()         {}

type Buffer struct {
	id   uint64
	info gpu.BufferCreateInfo
}

func (b *Buffer) Info() gpu.BufferCreateInfo { return b.info }
func (b *Buffer) Destroy()                   {}

type RenderPass struct {
	id          uint64
	attachments []gpu.AttachmentDescription
	hasDepth    bool
}

func (r *RenderPass) Destroy() {}

// Attachments exposes the recorded attachment descriptions for assertions.
func (r *RenderPass) Attachments() []gpu.AttachmentDescription { return r.attachments }

type Framebuffer struct {
	id     uint64
	pass   gpu.RenderPass
	views  []gpu.ImageView
	extent gpu.Extent3D
}

func (f *Framebuffer) Destroy() {}

// Surface is a fixed-extent mock window surface.
type Surface struct {
	extent gpu.Extent3D
}

func NewSurface(extent gpu.Extent3D) *Surface { return &Surface{extent: extent} }

func (s *Surface) Extent() gpu.Extent3D { return s.extent }
func (s *Surface) Destroy()             {}

// Swapchain is a fixed ring of mock images; AcquireNextImage simply
// round-robins through them.
type Swapchain struct {
	extent      gpu.Extent3D
	presentMode gpu.PresentMode
	images      []*Image

	mu   sync.Mutex
	next uint32
}

func (s *Swapchain) ImageCount() uint32 { return uint32(len(s.images)) }

func (s *Swapchain) Image(index uint32) gpu.Image { return s.images[index] }

func (s *Swapchain) AcquireNextImage(ctx context.Context, signal gpu.Semaphore) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.next
	s.next = (s.next + 1) % uint32(len(s.images))
	return idx, nil
}

func (s *Swapchain) Destroy() {}
