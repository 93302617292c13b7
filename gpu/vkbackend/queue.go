package vkbackend

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/TAPZCREW/stormkit-go/gpu"
)

// Queue wraps a single VkQueue, generalized from dieselvk.CoreQueue's
// family-enumeration/binding logic down to the one graphics queue this
// backend's device creation selects.
type Queue struct {
	device *Device
	handle vk.Queue
}

func (q *Queue) Submit(cmd gpu.CommandBuffer, waits []gpu.SemaphoreWait, signal []gpu.Semaphore, fence gpu.Fence) error {
	vkCmd := cmd.(*CommandBuffer)

	waitSemaphores := make([]vk.Semaphore, len(waits))
	waitStages := make([]vk.PipelineStageFlags, len(waits))
	for i, w := range waits {
		waitSemaphores[i] = w.Semaphore.(*Semaphore).handle
		waitStages[i] = vk.PipelineStageFlags(toVkPipelineStage(w.Stage))
	}

	signalSemaphores := make([]vk.Semaphore, len(signal))
	for i, s := range signal {
		signalSemaphores[i] = s.(*Semaphore).handle
	}

	var vkFence vk.Fence
	if fence != nil {
		vkFence = fence.(*Fence).handle
	}

	submit := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   uint32(len(waitSemaphores)),
		PWaitSemaphores:      waitSemaphores,
		PWaitDstStageMask:    waitStages,
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{vkCmd.handle},
		SignalSemaphoreCount: uint32(len(signalSemaphores)),
		PSignalSemaphores:    signalSemaphores,
	}
	return wrapResult("vk.QueueSubmit", vk.QueueSubmit(q.handle, 1, []vk.SubmitInfo{submit}, vkFence))
}

func (q *Queue) Present(swapchain gpu.Swapchain, imageIndex uint32, wait gpu.Semaphore) error {
	sc := swapchain.(*Swapchain)
	var waitSemaphores []vk.Semaphore
	if wait != nil {
		waitSemaphores = []vk.Semaphore{wait.(*Semaphore).handle}
	}
	results := make([]vk.Result, 1)
	ret := vk.QueuePresent(q.handle, &vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: uint32(len(waitSemaphores)),
		PWaitSemaphores:    waitSemaphores,
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{sc.handle},
		PImageIndices:      []uint32{imageIndex},
		PResults:           results,
	})
	return wrapResult("vk.QueuePresent", ret)
}
