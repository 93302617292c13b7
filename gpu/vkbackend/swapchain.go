package vkbackend

import (
	"context"
	"time"

	vk "github.com/vulkan-go/vulkan"

	"github.com/TAPZCREW/stormkit-go/gpu"
)

// Surface wraps a VkSurfaceKHR created by the windowing backend
// (wsi/glfwwindow). Extent is queried fresh from the surface capabilities
// each time a swapchain is (re)created.
type Surface struct {
	Instance vk.Instance
	Physical vk.PhysicalDevice
	Handle   vk.SurfaceKHR
}

// SetPhysicalDevice binds the physical device whose surface capabilities
// Extent and pickFormat query. Device.CreateSwapchain calls it with its own
// physical device before querying the surface.
func (s *Surface) SetPhysicalDevice(physical vk.PhysicalDevice) {
	s.Physical = physical
}

func (s *Surface) Extent() gpu.Extent3D {
	var caps vk.SurfaceCapabilities
	vk.GetPhysicalDeviceSurfaceCapabilities(s.Physical, s.Handle, &caps)
	caps.Deref()
	caps.CurrentExtent.Deref()
	return gpu.Extent3D{Width: caps.CurrentExtent.Width, Height: caps.CurrentExtent.Height, Depth: 1}
}

func (s *Surface) Destroy() {
	vk.DestroySurface(s.Instance, s.Handle, nil)
}

func (s *Surface) pickFormat() vk.SurfaceFormat {
	var count uint32
	vk.GetPhysicalDeviceSurfaceFormats(s.Physical, s.Handle, &count, nil)
	formats := make([]vk.SurfaceFormat, count)
	vk.GetPhysicalDeviceSurfaceFormats(s.Physical, s.Handle, &count, formats)
	for _, f := range formats {
		f.Deref()
		if f.Format == vk.FormatB8g8r8a8Unorm {
			return f
		}
	}
	if len(formats) > 0 {
		formats[0].Deref()
		return formats[0]
	}
	return vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Unorm}
}

// Swapchain wraps a VkSwapchainKHR plus its retrieved image handles.
type Swapchain struct {
	device  vk.Device
	surface *Surface
	handle  vk.SwapchainKHR
	images  []*Image
	format  vk.Format
}

func (d *Device) CreateSwapchain(surface gpu.Surface, bufferCount uint32, presentMode gpu.PresentMode) (gpu.Swapchain, error) {
	vkSurface := surface.(*Surface)
	vkSurface.SetPhysicalDevice(d.physical)
	format := vkSurface.pickFormat()
	extent := vkSurface.Extent()

	var handle vk.SwapchainKHR
	ret := vk.CreateSwapchain(d.handle, &vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          vkSurface.Handle,
		MinImageCount:    bufferCount,
		ImageFormat:      format.Format,
		ImageColorSpace:  format.ColorSpace,
		ImageExtent:      vk.Extent2D{Width: extent.Width, Height: extent.Height},
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit | vk.ImageUsageTransferDstBit),
		PreTransform:     vk.SurfaceTransformIdentityBit,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      toVkPresentMode(presentMode),
		Clipped:          vk.True,
	}, nil, &handle)
	if err := wrapResult("vk.CreateSwapchain", ret); err != nil {
		return nil, err
	}

	var count uint32
	vk.GetSwapchainImages(d.handle, handle, &count, nil)
	raw := make([]vk.Image, count)
	vk.GetSwapchainImages(d.handle, handle, &count, raw)

	sc := &Swapchain{device: d.handle, surface: vkSurface, handle: handle, format: format.Format}
	for _, img := range raw {
		sc.images = append(sc.images, &Image{
			device: d.handle,
			handle: img,
			info: gpu.ImageCreateInfo{
				Name:   "swapchain-image",
				Extent: extent,
				Usage:  gpu.ImageUsageColorAttachment | gpu.ImageUsageTransferDst,
			},
			owned: false,
		})
	}
	return sc, nil
}

func (s *Swapchain) Handle() vk.SwapchainKHR { return s.handle }

func (s *Swapchain) ImageCount() uint32 { return uint32(len(s.images)) }

func (s *Swapchain) Image(index uint32) gpu.Image { return s.images[index] }

func (s *Swapchain) AcquireNextImage(ctx context.Context, signal gpu.Semaphore) (uint32, error) {
	var vkSem vk.Semaphore
	if signal != nil {
		vkSem = signal.(*Semaphore).handle
	}

	timeout := uint64(vk.MaxUint64)
	if deadline, ok := ctx.Deadline(); ok {
		timeout = uint64(time.Until(deadline).Nanoseconds())
	}

	var index uint32
	ret := vk.AcquireNextImage(s.device, s.handle, timeout, vkSem, vk.NullFence, &index)
	if ret == vk.Timeout || ret == vk.NotReady {
		return 0, gpu.ErrTimeout
	}
	if err := wrapResult("vk.AcquireNextImage", ret); err != nil {
		return 0, err
	}
	return index, nil
}

func (s *Swapchain) Destroy() {
	vk.DestroySwapchain(s.device, s.handle, nil)
}
