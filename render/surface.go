package render

import (
	"context"
	"fmt"
	"time"

	"github.com/TAPZCREW/stormkit-go/gpu"
)

// Frame is the set of synchronization primitives and image index handed
// back by RenderSurface.BeginFrame for a single in-flight frame slot.
type Frame struct {
	CurrentFrame   uint32
	ImageIndex     uint32
	ImageAvailable gpu.Semaphore
	RenderFinished gpu.Semaphore
	InFlight       gpu.Fence
}

// acquireTimeout bounds how long BeginFrame waits for a swapchain image
// before giving up, matching the 100ms budget the render thread polls at.
const acquireTimeout = 100 * time.Millisecond

// maxBufferingCount caps the number of in-flight frame slots regardless of
// how many images the swapchain actually returns: a driver is free to hand
// back more images than MinImageCount requested, but triple buffering is the
// most this engine ever tracks sync objects for.
const maxBufferingCount = 3

// RenderSurface owns a swapchain and the N-buffered synchronization
// primitives (one semaphore pair and fence per in-flight frame) needed to
// safely overlap CPU recording with GPU presentation.
type RenderSurface struct {
	device      gpu.Device
	surface     gpu.Surface
	swapchain   gpu.Swapchain
	bufferCount uint32

	imageAvailable []gpu.Semaphore
	renderFinished []gpu.Semaphore
	inFlight       []gpu.Fence

	currentFrame uint32
}

// NewRenderSurface creates a swapchain over surface with bufferCount images
// and the matching per-frame sync objects, then transitions every swapchain
// image to PRESENT_SRC so the first present call finds a consistent layout.
func NewRenderSurface(device gpu.Device, pool gpu.CommandPool, queue gpu.Queue, surface gpu.Surface, bufferCount uint32, presentMode gpu.PresentMode) (*RenderSurface, error) {
	swapchain, err := device.CreateSwapchain(surface, bufferCount, presentMode)
	if err != nil {
		return nil, fmt.Errorf("render: create swapchain: %w", err)
	}

	count := min(swapchain.ImageCount(), maxBufferingCount)
	rs := &RenderSurface{device: device, surface: surface, swapchain: swapchain, bufferCount: count}

	for i := uint32(0); i < count; i++ {
		avail, err := device.CreateSemaphore()
		if err != nil {
			return nil, fmt.Errorf("render: create image-available semaphore: %w", err)
		}
		finished, err := device.CreateSemaphore()
		if err != nil {
			return nil, fmt.Errorf("render: create render-finished semaphore: %w", err)
		}
		fence, err := device.CreateFence(true)
		if err != nil {
			return nil, fmt.Errorf("render: create in-flight fence: %w", err)
		}
		rs.imageAvailable = append(rs.imageAvailable, avail)
		rs.renderFinished = append(rs.renderFinished, finished)
		rs.inFlight = append(rs.inFlight, fence)
	}

	if err := rs.transitionImagesToPresent(pool, queue); err != nil {
		return nil, err
	}

	return rs, nil
}

// transitionImagesToPresent transitions every image the swapchain actually
// returned, not just the (possibly smaller, capped-at-3) in-flight slot
// count: the present image index AcquireNextImage hands back ranges over
// the swapchain's real image count, independent of how many frame slots'
// worth of sync objects this surface tracks.
func (rs *RenderSurface) transitionImagesToPresent(pool gpu.CommandPool, queue gpu.Queue) error {
	for i := uint32(0); i < rs.swapchain.ImageCount(); i++ {
		cmb, err := pool.Allocate(gpu.CommandBufferLevelPrimary)
		if err != nil {
			return fmt.Errorf("render: allocate transition command buffer: %w", err)
		}
		if err := cmb.Begin(); err != nil {
			return fmt.Errorf("render: begin transition command buffer: %w", err)
		}
		if err := cmb.TransitionImage(rs.swapchain.Image(i), gpu.ImageLayoutUndefined, gpu.ImageLayoutPresentSrc, gpu.PipelineStageTopOfPipe); err != nil {
			return fmt.Errorf("render: transition swapchain image %d: %w", i, err)
		}
		if err := cmb.End(); err != nil {
			return fmt.Errorf("render: end transition command buffer: %w", err)
		}

		fence, err := rs.device.CreateFence(false)
		if err != nil {
			return fmt.Errorf("render: create transition fence: %w", err)
		}
		if err := queue.Submit(cmb, nil, nil, fence); err != nil {
			return fmt.Errorf("render: submit transition command buffer: %w", err)
		}
		if err := fence.Wait(context.Background()); err != nil {
			return fmt.Errorf("render: wait transition fence: %w", err)
		}
		fence.Destroy()
	}
	return nil
}

// BufferingCount returns the number of in-flight frame slots: the
// swapchain's image count, capped at maxBufferingCount.
func (rs *RenderSurface) BufferingCount() uint32 { return rs.bufferCount }

// Image returns the present image at index.
func (rs *RenderSurface) Image(index uint32) gpu.Image { return rs.swapchain.Image(index) }

// Extent reports the surface's current pixel dimensions.
func (rs *RenderSurface) Extent() gpu.Extent3D { return rs.surface.Extent() }

// BeginFrame waits for the current frame slot's fence, resets it, and
// acquires the next swapchain image, returning the sync objects the caller
// must wait on and signal.
func (rs *RenderSurface) BeginFrame(ctx context.Context) (Frame, error) {
	slot := rs.currentFrame
	inFlight := rs.inFlight[slot]

	if err := inFlight.Wait(ctx); err != nil {
		return Frame{}, fmt.Errorf("render: wait in-flight fence: %w", err)
	}
	if err := inFlight.Reset(); err != nil {
		return Frame{}, fmt.Errorf("render: reset in-flight fence: %w", err)
	}

	acquireCtx, cancel := context.WithTimeout(ctx, acquireTimeout)
	defer cancel()

	index, err := rs.swapchain.AcquireNextImage(acquireCtx, rs.imageAvailable[slot])
	if err != nil {
		return Frame{}, fmt.Errorf("render: acquire next image: %w", err)
	}

	return Frame{
		CurrentFrame:   slot,
		ImageIndex:     index,
		ImageAvailable: rs.imageAvailable[slot],
		RenderFinished: rs.renderFinished[slot],
		InFlight:       inFlight,
	}, nil
}

// PresentFrame presents frame's acquired image on queue and advances the
// ring buffer to the next slot.
func (rs *RenderSurface) PresentFrame(queue gpu.Queue, frame Frame) error {
	if err := queue.Present(rs.swapchain, frame.ImageIndex, frame.RenderFinished); err != nil {
		return fmt.Errorf("render: present: %w", err)
	}
	rs.currentFrame++
	if rs.currentFrame >= rs.bufferCount {
		rs.currentFrame = 0
	}
	return nil
}

// Destroy releases the swapchain and every per-frame sync object.
func (rs *RenderSurface) Destroy() {
	for _, s := range rs.imageAvailable {
		s.Destroy()
	}
	for _, s := range rs.renderFinished {
		s.Destroy()
	}
	for _, f := range rs.inFlight {
		f.Destroy()
	}
	rs.swapchain.Destroy()
	rs.surface.Destroy()
}
