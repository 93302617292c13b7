// Package vkbackend is the real GPU backend: a binding of the gpu contract
// over github.com/vulkan-go/vulkan, grounded on the instance/device/queue
// bootstrap flow of asche.Platform and dieselvk.CoreRenderInstance.
package vkbackend

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"

	"github.com/TAPZCREW/stormkit-go/gpu"
	"github.com/TAPZCREW/stormkit-go/internal/logging"
)

// BaseExtensions and SwapchainExtensions mirror renderer.cpp's
// BASE_EXTENSIONS/SWAPCHAIN_EXTENSIONS: every physical device must support
// them or it is rejected before scoring.
var (
	BaseExtensions      = []string{"VK_KHR_maintenance3"}
	SwapchainExtensions = []string{"VK_KHR_swapchain"}

	// RaytracingExtensions is the extension family whose complete presence
	// earns a device the raytracing scoring bonus.
	RaytracingExtensions = []string{
		"VK_KHR_ray_tracing_pipeline",
		"VK_KHR_acceleration_structure",
		"VK_KHR_buffer_device_address",
		"VK_KHR_deferred_host_operations",
		"VK_EXT_descriptor_indexing",
		"VK_KHR_spirv_1_4",
		"VK_KHR_shader_float_controls",
	}
)

// Instance wraps a VkInstance plus the debug messenger, if validation is
// enabled.
type Instance struct {
	handle     vk.Instance
	debugger   vk.DebugReportCallback
	validation bool
}

// CreateInfo configures instance creation.
type CreateInfo struct {
	AppName             string
	RequiredExtensions  []string
	EnableValidation    bool
}

// NewInstance creates a VkInstance with the requested extensions, enabling
// VK_LAYER_KHRONOS_validation and a debug report callback when
// EnableValidation is set, following asche.NewPlatform's init order.
func NewInstance(info CreateInfo) (*Instance, error) {
	exts := append([]string{}, info.RequiredExtensions...)
	var layers []string
	if info.EnableValidation {
		exts = append(exts, "VK_EXT_debug_report")
		layers = append(layers, "VK_LAYER_KHRONOS_validation")
	}

	appInfo := vk.ApplicationInfo{
		SType:         vk.StructureTypeApplicationInfo,
		PApplicationName: safeCString(info.AppName),
		ApiVersion:    vk.MakeVersion(1, 3, 0),
	}

	createInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &appInfo,
		EnabledExtensionCount:   uint32(len(exts)),
		PpEnabledExtensionNames: exts,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
	}

	var handle vk.Instance
	ret := vk.CreateInstance(&createInfo, nil, &handle)
	if err := wrapResult("vk.CreateInstance", ret); err != nil {
		return nil, err
	}
	vk.InitInstance(handle)

	inst := &Instance{handle: handle, validation: info.EnableValidation}
	if info.EnableValidation {
		inst.installDebugCallback()
	}
	return inst, nil
}

func (i *Instance) installDebugCallback() {
	ret := vk.CreateDebugReportCallback(i.handle, &vk.DebugReportCallbackCreateInfo{
		SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
		PfnCallback: debugReportCallback,
	}, nil, &i.debugger)
	if isError(ret) {
		logging.Logger().Warn("failed to install vulkan debug report callback", "result", ret)
	}
}

func debugReportCallback(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	log := logging.Logger()
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		log.Error("vulkan validation", "layer", pLayerPrefix, "message", pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		log.Warn("vulkan validation", "layer", pLayerPrefix, "message", pMessage)
	default:
		log.Debug("vulkan validation", "layer", pLayerPrefix, "message", pMessage)
	}
	return vk.Bool32(0)
}

func (i *Instance) Handle() vk.Instance { return i.handle }

func (i *Instance) NativeHandle() any { return i.handle }

func (i *Instance) EnumeratePhysicalDevices() ([]gpu.PhysicalDevice, error) {
	var count uint32
	ret := vk.EnumeratePhysicalDevices(i.handle, &count, nil)
	if err := wrapResult("vk.EnumeratePhysicalDevices", ret); err != nil {
		return nil, err
	}
	handles := make([]vk.PhysicalDevice, count)
	ret = vk.EnumeratePhysicalDevices(i.handle, &count, handles)
	if err := wrapResult("vk.EnumeratePhysicalDevices", ret); err != nil {
		return nil, err
	}

	out := make([]gpu.PhysicalDevice, 0, len(handles))
	for _, h := range handles {
		out = append(out, newPhysicalDevice(h))
	}
	return out, nil
}

func (i *Instance) Destroy() {
	if i.debugger != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(i.handle, i.debugger, nil)
	}
	vk.DestroyInstance(i.handle, nil)
}

func safeCString(s string) string {
	if s == "" {
		return "stormkit-go\x00"
	}
	return s + "\x00"
}
