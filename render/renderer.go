package render

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/TAPZCREW/stormkit-go/framegraph"
	"github.com/TAPZCREW/stormkit-go/gpu"
	"github.com/TAPZCREW/stormkit-go/internal/logging"
	"github.com/TAPZCREW/stormkit-go/wsi"
)

// GraphBuilder is supplied by the owning application: it populates a fresh
// framegraph.Registry with the current frame's tasks and resources.
// RenderFrame invokes it once per application tick; the render thread only
// bakes (and re-records) the most recently populated registry, not every
// invocation.
type GraphBuilder func(*framegraph.Registry)

// Renderer owns the GPU instance/device, the render thread's command pools,
// and the baked framegraph slots it resubmits every frame. It is rebaked
// whenever RenderFrame has populated a new registry since the last bake (or
// RequestRebuild was called directly), which the render thread checks once
// per frame via rebuildGraph.
type Renderer struct {
	instance gpu.Instance
	device   gpu.Device
	queue    gpu.Queue
	cmdPool  gpu.CommandPool

	surface *RenderSurface
	pool    *framegraph.Pool

	graphMu      sync.Mutex
	rebuildGraph atomic.Bool
	buildGraph   GraphBuilder
	registry     *framegraph.Registry // last registry RenderFrame populated, awaiting bake
	frames       []*BakedFrameGraph

	blitCmbs []gpu.CommandBuffer
}

// InstanceFactory opens a backend instance. The caller supplies the constructor
// (gpu/vkbackend.NewInstance, or a gpumock.New) so this package stays
// backend-agnostic.
type InstanceFactory func() (gpu.Instance, error)

// New initializes a Renderer against window: it opens the instance via
// newInstance, scores and selects a physical device, opens the logical
// device and graphics queue, and creates the window's presentable surface.
func New(newInstance InstanceFactory, window wsi.Window, bufferCount uint32, presentMode gpu.PresentMode, build GraphBuilder) (*Renderer, error) {
	instance, err := newInstance()
	if err != nil {
		return nil, fmt.Errorf("render: create instance: %w", err)
	}

	physicalDevices, err := instance.EnumeratePhysicalDevices()
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("render: enumerate physical devices: %w", err)
	}
	physical, ok := PickPhysicalDevice(physicalDevices)
	if !ok {
		instance.Destroy()
		return nil, fmt.Errorf("render: no suitable physical device found")
	}
	logging.Logger().Info("selected physical device", slog.String("device", physical.Features().Name))

	family, ok := physical.GraphicsQueueFamily()
	if !ok {
		instance.Destroy()
		return nil, fmt.Errorf("render: physical device has no graphics queue family")
	}
	device, err := physical.CreateDevice(family)
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("render: create device: %w", err)
	}

	cmdPool, err := device.CreateCommandPool()
	if err != nil {
		return nil, fmt.Errorf("render: create command pool: %w", err)
	}

	surfaceHandle, err := window.CreateSurface(instance.NativeHandle())
	if err != nil {
		return nil, fmt.Errorf("render: create window surface: %w", err)
	}

	queue := device.GraphicsQueue()
	surface, err := NewRenderSurface(device, cmdPool, queue, surfaceHandle, bufferCount, presentMode)
	if err != nil {
		return nil, fmt.Errorf("render: create render surface: %w", err)
	}

	r := &Renderer{
		instance:   instance,
		device:     device,
		queue:      queue,
		cmdPool:    cmdPool,
		surface:    surface,
		pool:       framegraph.NewPool(device),
		buildGraph: build,
	}
	r.rebuildGraph.Store(true)
	return r, nil
}

// RequestRebuild marks the current baked plan stale without repopulating
// the registry; the next frame bakes the registry RenderFrame populated
// since the last bake, or builds one inline if there is none.
func (r *Renderer) RequestRebuild() {
	r.rebuildGraph.Store(true)
}

// RenderFrame repopulates the framegraph registry by invoking the stored
// GraphBuilder and marks the graph stale for the render thread's next
// frame. This is the per-tick handoff: the owning application's main/event
// thread calls RenderFrame once per loop iteration (after stepping the
// world), and the render thread picks up the freshly built registry the
// next time it checks rebuildGraph.
func (r *Renderer) RenderFrame() {
	registry := framegraph.NewRegistry()
	r.buildGraph(registry)

	r.graphMu.Lock()
	r.registry = registry
	r.graphMu.Unlock()

	r.rebuildGraph.Store(true)
}

// rebuildIfNeeded bakes the registry RenderFrame last populated and
// re-records every in-flight frame slot's command buffer when a rebuild has
// been requested. Guarded by graphMu so a concurrent RenderFrame doesn't
// race a bake in progress. A registry is consumed by the bake that uses it,
// so when no RenderFrame has populated one since the last bake (e.g. the
// renderer's first frame), a registry is built inline instead.
func (r *Renderer) rebuildIfNeeded() error {
	if !r.rebuildGraph.Load() {
		return nil
	}

	r.graphMu.Lock()
	registry := r.registry
	r.registry = nil
	r.graphMu.Unlock()

	if registry == nil {
		registry = framegraph.NewRegistry()
		r.buildGraph(registry)
	}

	plan, err := registry.Bake()
	if err != nil {
		return fmt.Errorf("render: bake framegraph: %w", err)
	}

	count := r.surface.BufferingCount()
	frames := make([]*BakedFrameGraph, count)
	for i := range frames {
		frame, err := MakeFrame(r.device, r.queue, r.cmdPool, r.pool, plan, r.surface.Extent())
		if err != nil {
			return fmt.Errorf("render: make frame %d: %w", i, err)
		}
		frames[i] = frame
	}

	blitCmbs := make([]gpu.CommandBuffer, count)
	for i := range blitCmbs {
		cmb, err := r.cmdPool.Allocate(gpu.CommandBufferLevelPrimary)
		if err != nil {
			return fmt.Errorf("render: allocate blit command buffer %d: %w", i, err)
		}
		blitCmbs[i] = cmb
	}

	for _, old := range r.frames {
		old.Destroy()
	}
	r.frames = frames
	r.blitCmbs = blitCmbs
	r.pool.Evict(plan.Hash)
	r.rebuildGraph.Store(false)
	return nil
}

// doRender executes the frame slot's baked graph, blits its backbuffer onto
// the acquired present image, and submits the combined work signaling
// frame.RenderFinished — the sequence the render thread loop waits on
// before presenting.
func (r *Renderer) doRender(ctx context.Context, frame Frame) error {
	if err := r.rebuildIfNeeded(); err != nil {
		return err
	}

	graph := r.frames[frame.CurrentFrame]
	presentImage := r.surface.Image(frame.ImageIndex)
	blitCmb := r.blitCmbs[frame.CurrentFrame]

	graphFinished, err := graph.Execute(ctx, r.queue)
	if err != nil {
		return fmt.Errorf("render: execute framegraph: %w", err)
	}

	backbuffer := graph.Backbuffer()
	extent := r.surface.Extent()

	if err := blitCmb.Reset(); err != nil {
		return fmt.Errorf("render: reset blit command buffer: %w", err)
	}
	if err := blitCmb.Begin(); err != nil {
		return fmt.Errorf("render: begin blit command buffer: %w", err)
	}
	if err := blitCmb.TransitionImage(backbuffer, gpu.ImageLayoutColorAttachmentOptimal, gpu.ImageLayoutTransferSrcOptimal, gpu.PipelineStageTransfer); err != nil {
		return fmt.Errorf("render: transition backbuffer to transfer-src: %w", err)
	}
	if err := blitCmb.TransitionImage(presentImage, gpu.ImageLayoutPresentSrc, gpu.ImageLayoutTransferDstOptimal, gpu.PipelineStageTransfer); err != nil {
		return fmt.Errorf("render: transition present image to transfer-dst: %w", err)
	}
	if err := blitCmb.BlitImage(backbuffer, presentImage, extent, extent); err != nil {
		return fmt.Errorf("render: blit backbuffer to present image: %w", err)
	}
	if err := blitCmb.TransitionImage(backbuffer, gpu.ImageLayoutTransferSrcOptimal, gpu.ImageLayoutColorAttachmentOptimal, gpu.PipelineStageColorAttachmentOutput); err != nil {
		return fmt.Errorf("render: transition backbuffer back to color-attachment: %w", err)
	}
	if err := blitCmb.TransitionImage(presentImage, gpu.ImageLayoutTransferDstOptimal, gpu.ImageLayoutPresentSrc, gpu.PipelineStageBottomOfPipe); err != nil {
		return fmt.Errorf("render: transition present image back to present-src: %w", err)
	}
	if err := blitCmb.End(); err != nil {
		return fmt.Errorf("render: end blit command buffer: %w", err)
	}

	waits := []gpu.SemaphoreWait{
		{Semaphore: graphFinished, Stage: gpu.PipelineStageColorAttachmentOutput},
		{Semaphore: frame.ImageAvailable, Stage: gpu.PipelineStageTransfer},
	}
	if err := r.queue.Submit(blitCmb, waits, []gpu.Semaphore{frame.RenderFinished}, frame.InFlight); err != nil {
		return fmt.Errorf("render: submit blit command buffer: %w", err)
	}
	return nil
}

// ThreadLoop drives acquire/render/present in a tight loop until ctx is
// canceled, matching the render thread's responsibility in the original
// engine: the caller runs this on a dedicated goroutine.
func (r *Renderer) ThreadLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return r.device.WaitIdle()
		default:
		}

		frame, err := r.surface.BeginFrame(ctx)
		if err != nil {
			logging.Logger().Error("begin frame failed", slog.Any("error", err))
			continue
		}
		if err := r.doRender(ctx, frame); err != nil {
			logging.Logger().Error("render frame failed", slog.Any("error", err))
			r.rebuildGraph.Store(true)
			continue
		}
		if err := r.surface.PresentFrame(r.queue, frame); err != nil {
			logging.Logger().Error("present frame failed", slog.Any("error", err))
		}
	}
}

// Device exposes the logical device for higher layers (resource upload,
// supplemental renderers) that need to allocate outside the framegraph.
func (r *Renderer) Device() gpu.Device { return r.device }

// Queue exposes the graphics queue.
func (r *Renderer) Queue() gpu.Queue { return r.queue }

// CommandPool exposes the render thread's shared command pool.
func (r *Renderer) CommandPool() gpu.CommandPool { return r.cmdPool }

// Destroy tears down every GPU object the Renderer owns, in dependency
// order: waits for the device to go idle, then frees baked frames, the
// surface, the command pool, device, and instance.
func (r *Renderer) Destroy() {
	_ = r.device.WaitIdle()
	for _, f := range r.frames {
		f.Destroy()
	}
	r.surface.Destroy()
	r.cmdPool.Destroy()
	r.device.Destroy()
	r.instance.Destroy()
}
