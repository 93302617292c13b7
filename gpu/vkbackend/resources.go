package vkbackend

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/TAPZCREW/stormkit-go/gpu"
)

// Image wraps a VkImage plus its bound device memory.
type Image struct {
	device vk.Device
	handle vk.Image
	memory vk.DeviceMemory
	info   gpu.ImageCreateInfo

	// owned is false for swapchain images, whose memory and lifetime
	// belong to the swapchain rather than this wrapper.
	owned bool
}

func (i *Image) Handle() vk.Image { return i.handle }
func (i *Image) Info() gpu.ImageCreateInfo { return i.info }

func (i *Image) Destroy() {
	if !i.owned {
		return
	}
	vk.DestroyImage(i.device, i.handle, nil)
	if i.memory != vk.NullDeviceMemory {
		vk.FreeMemory(i.device, i.memory, nil)
	}
}

// ImageView wraps a VkImageView.
type ImageView struct {
	device vk.Device
	handle vk.ImageView
	image  *Image
}

func (v *ImageView) Handle() vk.ImageView { return v.handle }
func (v *ImageView) Image() gpu.Image     { return v.image }

func (v *ImageView) Destroy() {
	vk.DestroyImageView(v.device, v.handle, nil)
}

// Buffer wraps a VkBuffer plus its bound device memory.
type Buffer struct {
	device vk.Device
	handle vk.Buffer
	memory vk.DeviceMemory
	info   gpu.BufferCreateInfo
}

func (b *Buffer) Handle() vk.Buffer          { return b.handle }
func (b *Buffer) Info() gpu.BufferCreateInfo { return b.info }

func (b *Buffer) Destroy() {
	vk.DestroyBuffer(b.device, b.handle, nil)
	vk.FreeMemory(b.device, b.memory, nil)
}
