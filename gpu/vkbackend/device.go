package vkbackend

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/TAPZCREW/stormkit-go/gpu"
)

// Device wraps a VkDevice. It is the factory for every other GPU object,
// grounded on dieselvk.CoreDevice generalized behind the gpu.Device
// contract.
type Device struct {
	handle     vk.Device
	physical   vk.PhysicalDevice
	memory     vk.PhysicalDeviceMemoryProperties
	queueIndex uint32
	queue      *Queue
}

func (d *Device) Handle() vk.Device { return d.handle }

func (d *Device) GraphicsQueue() gpu.Queue { return d.queue }

func (d *Device) CreateCommandPool() (gpu.CommandPool, error) {
	var pool vk.CommandPool
	ret := vk.CreateCommandPool(d.handle, &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: d.queueIndex,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}, nil, &pool)
	if err := wrapResult("vk.CreateCommandPool", ret); err != nil {
		return nil, err
	}
	return &CommandPool{device: d, handle: pool}, nil
}

func (d *Device) CreateFence(signaled bool) (gpu.Fence, error) {
	var flags vk.FenceCreateFlagBits
	if signaled {
		flags = vk.FenceCreateSignaledBit
	}
	var fence vk.Fence
	ret := vk.CreateFence(d.handle, &vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
		Flags: vk.FenceCreateFlags(flags),
	}, nil, &fence)
	if err := wrapResult("vk.CreateFence", ret); err != nil {
		return nil, err
	}
	return &Fence{device: d.handle, handle: fence}, nil
}

func (d *Device) CreateSemaphore() (gpu.Semaphore, error) {
	var sem vk.Semaphore
	ret := vk.CreateSemaphore(d.handle, &vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}, nil, &sem)
	if err := wrapResult("vk.CreateSemaphore", ret); err != nil {
		return nil, err
	}
	return &Semaphore{device: d.handle, handle: sem}, nil
}

func (d *Device) CreateImage(info gpu.ImageCreateInfo) (gpu.Image, error) {
	usage := info.Usage
	if usage == 0 {
		if info.Format.IsDepthFormat() {
			usage = gpu.ImageUsageDepthStencilAttachment | gpu.ImageUsageTransferSrc
		} else {
			usage = gpu.ImageUsageColorAttachment | gpu.ImageUsageTransferSrc
		}
	}

	var handle vk.Image
	ret := vk.CreateImage(d.handle, &vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: toVkImageType(info.Type),
		Format:    toVkFormat(info.Format),
		Extent: vk.Extent3D{
			Width:  info.Extent.Width,
			Height: info.Extent.Height,
			Depth:  max1(info.Extent.Depth),
		},
		MipLevels:     1,
		ArrayLayers:   max1(info.Layers),
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         toVkImageUsage(usage),
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}, nil, &handle)
	if err := wrapResult("vk.CreateImage", ret); err != nil {
		return nil, err
	}

	var reqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(d.handle, handle, &reqs)
	reqs.Deref()

	memType, _ := findMemoryType(d.memory, reqs.MemoryTypeBits, vk.MemoryPropertyDeviceLocalBit)
	var memory vk.DeviceMemory
	ret = vk.AllocateMemory(d.handle, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  reqs.Size,
		MemoryTypeIndex: memType,
	}, nil, &memory)
	if err := wrapResult("vk.AllocateMemory", ret); err != nil {
		vk.DestroyImage(d.handle, handle, nil)
		return nil, err
	}
	vk.BindImageMemory(d.handle, handle, memory, 0)

	info.Usage = usage
	return &Image{device: d.handle, handle: handle, memory: memory, info: info, owned: true}, nil
}

func (d *Device) CreateImageView(info gpu.ImageViewCreateInfo) (gpu.ImageView, error) {
	img := info.Image.(*Image)
	format := info.Format
	if format == gpu.FormatUndefined {
		format = img.info.Format
	}

	aspect := vk.ImageAspectColorBit
	if format.IsDepthFormat() {
		aspect = vk.ImageAspectDepthBit
	}

	var view vk.ImageView
	ret := vk.CreateImageView(d.handle, &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    img.handle,
		ViewType: toVkImageViewType(info.ViewType),
		Format:   toVkFormat(format),
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     vk.ImageAspectFlags(aspect),
			LevelCount:     1,
			LayerCount:     1,
		},
	}, nil, &view)
	if err := wrapResult("vk.CreateImageView", ret); err != nil {
		return nil, err
	}
	return &ImageView{device: d.handle, handle: view, image: img}, nil
}

func (d *Device) CreateBuffer(info gpu.BufferCreateInfo) (gpu.Buffer, error) {
	usage := info.Usage
	if usage == 0 {
		usage = gpu.BufferUsageTransferSrc | gpu.BufferUsageStorage
	}

	var handle vk.Buffer
	ret := vk.CreateBuffer(d.handle, &vk.BufferCreateInfo{
		SType: vk.StructureTypeBufferCreateInfo,
		Size:  vk.DeviceSize(info.Size),
		Usage: toVkBufferUsage(usage),
	}, nil, &handle)
	if err := wrapResult("vk.CreateBuffer", ret); err != nil {
		return nil, err
	}

	var reqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(d.handle, handle, &reqs)
	reqs.Deref()

	memType, _ := findMemoryType(d.memory, reqs.MemoryTypeBits, vk.MemoryPropertyDeviceLocalBit)
	var memory vk.DeviceMemory
	ret = vk.AllocateMemory(d.handle, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  reqs.Size,
		MemoryTypeIndex: memType,
	}, nil, &memory)
	if err := wrapResult("vk.AllocateMemory", ret); err != nil {
		vk.DestroyBuffer(d.handle, handle, nil)
		return nil, err
	}
	vk.BindBufferMemory(d.handle, handle, memory, 0)

	info.Usage = usage
	return &Buffer{device: d.handle, handle: handle, memory: memory, info: info}, nil
}

func (d *Device) WaitIdle() error {
	return wrapResult("vk.DeviceWaitIdle", vk.DeviceWaitIdle(d.handle))
}

func (d *Device) Destroy() {
	vk.DestroyDevice(d.handle, nil)
}

func findMemoryType(props vk.PhysicalDeviceMemoryProperties, typeBits uint32, want vk.MemoryPropertyFlagBits) (uint32, bool) {
	for i := uint32(0); i < vk.MaxMemoryTypes; i++ {
		if typeBits&(1<<i) == 0 {
			continue
		}
		props.MemoryTypes[i].Deref()
		if props.MemoryTypes[i].PropertyFlags&vk.MemoryPropertyFlags(want) != 0 {
			return i, true
		}
	}
	return 0, false
}

func max1(v uint32) uint32 {
	if v == 0 {
		return 1
	}
	return v
}
