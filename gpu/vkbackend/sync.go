package vkbackend

import (
	"context"
	"time"

	vk "github.com/vulkan-go/vulkan"

	"github.com/TAPZCREW/stormkit-go/gpu"
)

// Fence wraps a VkFence. Wait makes a single blocking vk.WaitForFences call,
// using ctx's deadline (if any) as the timeout and waiting without limit
// otherwise; cancellation of ctx without a deadline does not end the wait.
type Fence struct {
	device vk.Device
	handle vk.Fence
}

func (f *Fence) Handle() vk.Fence { return f.handle }

func (f *Fence) Wait(ctx context.Context) error {
	if deadline, ok := ctx.Deadline(); ok {
		timeout := uint64(deadline.Sub(time.Now()).Nanoseconds())
		ret := vk.WaitForFences(f.device, 1, []vk.Fence{f.handle}, vk.True, timeout)
		if ret == vk.Timeout {
			return gpu.ErrTimeout
		}
		return wrapResult("vk.WaitForFences", ret)
	}
	ret := vk.WaitForFences(f.device, 1, []vk.Fence{f.handle}, vk.True, vk.MaxUint64)
	return wrapResult("vk.WaitForFences", ret)
}

func (f *Fence) Reset() error {
	return wrapResult("vk.ResetFences", vk.ResetFences(f.device, 1, []vk.Fence{f.handle}))
}

func (f *Fence) Destroy() {
	vk.DestroyFence(f.device, f.handle, nil)
}

// Semaphore wraps a VkSemaphore.
type Semaphore struct {
	device vk.Device
	handle vk.Semaphore
}

func (s *Semaphore) Handle() vk.Semaphore { return s.handle }

func (s *Semaphore) Destroy() {
	vk.DestroySemaphore(s.device, s.handle, nil)
}
