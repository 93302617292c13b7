// Package render turns a baked framegraph.Plan into GPU work: it owns the
// swapchain-backed RenderSurface, the per-frame executor that walks a Plan's
// passes, and the render-thread loop that ties acquire/execute/blit/present
// together.
package render

import (
	"log/slog"

	"github.com/TAPZCREW/stormkit-go/gpu"
	"github.com/TAPZCREW/stormkit-go/internal/logging"
)

// BaseExtensions and SwapchainExtensions are the extensions every candidate
// physical device must support to be considered at all.
var (
	BaseExtensions      = []string{"VK_KHR_maintenance3"}
	SwapchainExtensions = []string{"VK_KHR_swapchain"}
)

func supportsAll(supported []string, required []string) bool {
	have := make(map[string]bool, len(supported))
	for _, ext := range supported {
		have[ext] = true
	}
	for _, ext := range required {
		if !have[ext] {
			return false
		}
	}
	return true
}

// ScorePhysicalDevice ranks a candidate GPU: discrete GPUs are strongly
// preferred over integrated ones, raytracing support and larger image/buffer
// limits add smaller bonuses. Higher is better.
func ScorePhysicalDevice(info gpu.DeviceFeatureInfo) uint64 {
	var score uint64
	if info.IsDiscreteGPU {
		score += 1000
	} else if info.IsIntegratedGPU {
		score += 100
	}
	if info.SupportsRaytracing {
		score += 50
	}
	score += uint64(info.MaxImageDimension2D) / 1024
	score += uint64(info.MaxUniformBufferRange) / 65536
	return score
}

// PickPhysicalDevice selects the highest-scoring device among those that
// support BaseExtensions and SwapchainExtensions, logging the score of every
// candidate considered. Returns false if none qualify.
func PickPhysicalDevice(devices []gpu.PhysicalDevice) (gpu.PhysicalDevice, bool) {
	var best gpu.PhysicalDevice
	var bestScore uint64
	found := false

	for _, d := range devices {
		info := d.Features()
		if !supportsAll(info.SupportedExtensionNames, BaseExtensions) {
			logging.Logger().Debug("physical device missing base extensions", slog.String("device", info.Name))
			continue
		}
		if !supportsAll(info.SupportedExtensionNames, SwapchainExtensions) {
			logging.Logger().Debug("physical device missing swapchain extensions", slog.String("device", info.Name))
			continue
		}

		score := ScorePhysicalDevice(info)
		logging.Logger().Debug("scored physical device", slog.String("device", info.Name), slog.Uint64("score", score))

		if !found || score > bestScore {
			best, bestScore, found = d, score, true
		}
	}

	return best, found
}
