package render_test

import (
	"testing"

	"github.com/TAPZCREW/stormkit-go/gpu"
	"github.com/TAPZCREW/stormkit-go/gpu/gpumock"
	"github.com/TAPZCREW/stormkit-go/render"
)

func TestPickPhysicalDevicePrefersDiscrete(t *testing.T) {
	integrated := gpumock.NewPhysicalDevice(gpu.DeviceFeatureInfo{
		Name: "integrated", IsIntegratedGPU: true,
		SupportedExtensionNames: []string{"VK_KHR_maintenance3", "VK_KHR_swapchain"},
	})
	discrete := gpumock.NewPhysicalDevice(gpu.DeviceFeatureInfo{
		Name: "discrete", IsDiscreteGPU: true,
		SupportedExtensionNames: []string{"VK_KHR_maintenance3", "VK_KHR_swapchain"},
	})

	chosen, ok := render.PickPhysicalDevice([]gpu.PhysicalDevice{integrated, discrete})
	if !ok {
		t.Fatalf("expected a device to be picked")
	}
	if chosen.Features().Name != "discrete" {
		t.Fatalf("expected discrete GPU to win scoring, got %q", chosen.Features().Name)
	}
}

func TestPickPhysicalDeviceRejectsMissingExtensions(t *testing.T) {
	noSwapchain := gpumock.NewPhysicalDevice(gpu.DeviceFeatureInfo{
		Name: "no-swapchain", IsDiscreteGPU: true,
		SupportedExtensionNames: []string{"VK_KHR_maintenance3"},
	})

	_, ok := render.PickPhysicalDevice([]gpu.PhysicalDevice{noSwapchain})
	if ok {
		t.Fatalf("expected device lacking swapchain support to be rejected")
	}
}
