package vkbackend

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/TAPZCREW/stormkit-go/gpu"
)

// PhysicalDevice wraps a VkPhysicalDevice and caches the property/feature
// queries render.ScorePhysicalDevice reads.
type PhysicalDevice struct {
	handle     vk.PhysicalDevice
	properties vk.PhysicalDeviceProperties
	memory     vk.PhysicalDeviceMemoryProperties
	extensions []string
	families   []vk.QueueFamilyProperties
}

func newPhysicalDevice(handle vk.PhysicalDevice) *PhysicalDevice {
	p := &PhysicalDevice{handle: handle}

	vk.GetPhysicalDeviceProperties(handle, &p.properties)
	p.properties.Deref()
	p.properties.Limits.Deref()

	vk.GetPhysicalDeviceMemoryProperties(handle, &p.memory)
	p.memory.Deref()

	var count uint32
	vk.EnumerateDeviceExtensionProperties(handle, "", &count, nil)
	list := make([]vk.ExtensionProperties, count)
	vk.EnumerateDeviceExtensionProperties(handle, "", &count, list)
	for _, ext := range list {
		ext.Deref()
		p.extensions = append(p.extensions, vk.ToString(ext.ExtensionName[:]))
	}

	vk.GetPhysicalDeviceQueueFamilyProperties(handle, &count, nil)
	p.families = make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(handle, &count, p.families)

	return p
}

func (p *PhysicalDevice) hasExtension(name string) bool {
	for _, e := range p.extensions {
		if e == name {
			return true
		}
	}
	return false
}

func (p *PhysicalDevice) supportsAll(names []string) bool {
	for _, n := range names {
		if !p.hasExtension(n) {
			return false
		}
	}
	return true
}

func (p *PhysicalDevice) Features() gpu.DeviceFeatureInfo {
	major := vk.Version(p.properties.ApiVersion).Major()
	minor := vk.Version(p.properties.ApiVersion).Minor()
	return gpu.DeviceFeatureInfo{
		Name:                    vk.ToString(p.properties.DeviceName[:]),
		IsDiscreteGPU:           p.properties.DeviceType == vk.PhysicalDeviceTypeDiscreteGpu,
		IsIntegratedGPU:         p.properties.DeviceType == vk.PhysicalDeviceTypeIntegratedGpu,
		MaxImageDimension2D:     p.properties.Limits.MaxImageDimension2d,
		MaxUniformBufferRange:   p.properties.Limits.MaxUniformBufferRange,
		APIVersionMajor:         uint32(major),
		APIVersionMinor:         uint32(minor),
		SupportsRaytracing:      p.supportsAll(RaytracingExtensions),
		SupportedExtensionNames: p.extensions,
	}
}

func (p *PhysicalDevice) GraphicsQueueFamily() (uint32, bool) {
	for i, fam := range p.families {
		fam.Deref()
		if fam.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
			return uint32(i), true
		}
	}
	return 0, false
}

func (p *PhysicalDevice) CreateDevice(graphicsQueueFamily uint32) (gpu.Device, error) {
	extensions := append(append([]string{}, BaseExtensions...), SwapchainExtensions...)
	priority := float32(1.0)
	queueInfo := vk.DeviceQueueCreateInfo{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: graphicsQueueFamily,
		QueueCount:       1,
		PQueuePriorities: []float32{priority},
	}

	var handle vk.Device
	ret := vk.CreateDevice(p.handle, &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    1,
		PQueueCreateInfos:       []vk.DeviceQueueCreateInfo{queueInfo},
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
	}, nil, &handle)
	if err := wrapResult("vk.CreateDevice", ret); err != nil {
		return nil, err
	}

	var rawQueue vk.Queue
	vk.GetDeviceQueue(handle, graphicsQueueFamily, 0, &rawQueue)

	d := &Device{
		handle:     handle,
		physical:   p.handle,
		memory:     p.memory,
		queueIndex: graphicsQueueFamily,
	}
	d.queue = &Queue{device: d, handle: rawQueue}
	return d, nil
}
