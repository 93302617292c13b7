package render

import (
	"context"
	"fmt"

	"github.com/TAPZCREW/stormkit-go/framegraph"
	"github.com/TAPZCREW/stormkit-go/gpu"
)

// BakedFrameGraph is one frame slot's recorded command buffer plus the sync
// objects needed to resubmit it every time that slot comes back around the
// ring buffer. It is rebuilt whenever the owning Renderer's graph is
// rebaked; until then, Execute just re-submits the same recording.
type BakedFrameGraph struct {
	cmb        gpu.CommandBuffer
	fence      gpu.Fence
	semaphore  gpu.Semaphore
	backbuffer gpu.Image
}

// Backbuffer returns the physical image this frame's passes rendered into,
// ready to be blitted onto a presentable swapchain image.
func (b *BakedFrameGraph) Backbuffer() gpu.Image { return b.backbuffer }

// Destroy releases this frame's sync objects. The command buffer is owned
// by the pool it was allocated from and is released when that pool is
// destroyed.
func (b *BakedFrameGraph) Destroy() {
	b.fence.Destroy()
	b.semaphore.Destroy()
}

// Execute waits for the previous use of this frame slot to finish, then
// resubmits its recorded command buffer, signaling and returning the
// semaphore the caller should wait on before presenting.
func (b *BakedFrameGraph) Execute(ctx context.Context, queue gpu.Queue) (gpu.Semaphore, error) {
	if err := b.fence.Wait(ctx); err != nil {
		return nil, fmt.Errorf("render: wait framegraph fence: %w", err)
	}
	if err := b.fence.Reset(); err != nil {
		return nil, fmt.Errorf("render: reset framegraph fence: %w", err)
	}
	if err := queue.Submit(b.cmb, nil, []gpu.Semaphore{b.semaphore}, b.fence); err != nil {
		return nil, fmt.Errorf("render: submit framegraph command buffer: %w", err)
	}
	return b.semaphore, nil
}

// MakeFrame records one frame slot's worth of command buffer from a baked
// Plan: every surviving resource is acquired from pool (allocating on first
// use per plan hash), transitioned into its attachment layout, and every
// RASTER pass is wrapped in a render pass bracketing its own recorded
// commands. Non-raster task kinds are accepted by the data model but have
// no execution behavior yet, matching the empty COMPUTE/TRANSFER/RAYTRACING
// cases this is grounded on.
func MakeFrame(device gpu.Device, queue gpu.Queue, cmdPool gpu.CommandPool, pool *framegraph.Pool, plan *framegraph.Plan, renderArea gpu.Extent3D) (*BakedFrameGraph, error) {
	images := make(map[framegraph.ID]gpu.Image, len(plan.Images))
	views := make(map[framegraph.ID]gpu.ImageView, len(plan.Images))
	for id, desc := range plan.Images {
		img, view, err := pool.AcquireImage(plan.Hash, desc)
		if err != nil {
			return nil, fmt.Errorf("render: acquire image %q: %w", desc.Name, err)
		}
		images[id] = img
		views[id] = view
	}
	for _, desc := range plan.Buffers {
		if _, err := pool.AcquireBuffer(plan.Hash, desc); err != nil {
			return nil, fmt.Errorf("render: acquire buffer %q: %w", desc.Name, err)
		}
	}

	cmb, err := cmdPool.Allocate(gpu.CommandBufferLevelPrimary)
	if err != nil {
		return nil, fmt.Errorf("render: allocate command buffer: %w", err)
	}
	transitionCmb, err := cmdPool.Allocate(gpu.CommandBufferLevelPrimary)
	if err != nil {
		return nil, fmt.Errorf("render: allocate transition command buffer: %w", err)
	}

	if err := cmb.Begin(); err != nil {
		return nil, fmt.Errorf("render: begin command buffer: %w", err)
	}
	if err := transitionCmb.Begin(); err != nil {
		return nil, fmt.Errorf("render: begin transition command buffer: %w", err)
	}

	for id, img := range images {
		desc := plan.Images[id]
		target := gpu.ImageLayoutColorAttachmentOptimal
		if desc.Format.IsDepthFormat() {
			target = gpu.ImageLayoutDepthStencilAttachmentOptimal
		}
		if err := transitionCmb.TransitionImage(img, gpu.ImageLayoutUndefined, target, gpu.PipelineStageColorAttachmentOutput); err != nil {
			return nil, fmt.Errorf("render: transition image %q: %w", desc.Name, err)
		}
	}

	var backbuffer gpu.Image
	for _, pass := range plan.Passes {
		if pass.Kind != framegraph.TaskRaster {
			continue
		}

		var attachments []gpu.AttachmentDescription
		var passViews []gpu.ImageView
		var clears []gpu.ClearValue
		hasDepth := false
		seen := make(map[framegraph.ID]bool, len(pass.Creates)+len(pass.Writes))
		addAttachment := func(rid framegraph.ID) {
			if seen[rid] {
				return
			}
			desc, ok := plan.Images[rid]
			if !ok {
				return
			}
			seen[rid] = true
			attachments = append(attachments, desc.Attachment)
			passViews = append(passViews, views[rid])
			clears = append(clears, desc.Attachment.ClearValue)
			if desc.Format.IsDepthFormat() {
				hasDepth = true
			}
			if rid == plan.Backbuffer {
				backbuffer = images[rid]
			}
		}
		// A pass's render-pass attachments come from both the resources it
		// creates (e.g. a backbuffer with no explicit WriteImage call, S1)
		// and the resources it writes; either can designate the backbuffer.
		for _, rid := range pass.Creates {
			addAttachment(rid)
		}
		for _, rid := range pass.Writes {
			addAttachment(rid)
		}

		if len(attachments) == 0 {
			continue
		}

		renderPass, err := device.CreateRenderPass(attachments, hasDepth)
		if err != nil {
			return nil, fmt.Errorf("render: create render pass for task %q: %w", pass.Name, err)
		}
		framebuffer, err := device.CreateFramebuffer(renderPass, passViews, renderArea)
		if err != nil {
			return nil, fmt.Errorf("render: create framebuffer for task %q: %w", pass.Name, err)
		}

		if err := cmb.BeginRendering(renderPass, framebuffer, renderArea, clears); err != nil {
			return nil, fmt.Errorf("render: begin rendering for task %q: %w", pass.Name, err)
		}
		if pass.OnExecute != nil {
			pass.OnExecute(cmb)
		}
		if err := cmb.EndRendering(); err != nil {
			return nil, fmt.Errorf("render: end rendering for task %q: %w", pass.Name, err)
		}
	}

	if backbuffer == nil {
		if img, ok := images[plan.Backbuffer]; ok {
			backbuffer = img
		}
	}

	if err := cmb.End(); err != nil {
		return nil, fmt.Errorf("render: end command buffer: %w", err)
	}
	if err := transitionCmb.End(); err != nil {
		return nil, fmt.Errorf("render: end transition command buffer: %w", err)
	}

	transitionFence, err := device.CreateFence(false)
	if err != nil {
		return nil, fmt.Errorf("render: create transition fence: %w", err)
	}
	defer transitionFence.Destroy()

	if err := queue.Submit(transitionCmb, nil, nil, transitionFence); err != nil {
		return nil, fmt.Errorf("render: submit transition command buffer: %w", err)
	}
	if err := transitionFence.Wait(context.Background()); err != nil {
		return nil, fmt.Errorf("render: wait transition fence: %w", err)
	}

	fence, err := device.CreateFence(true)
	if err != nil {
		return nil, fmt.Errorf("render: create framegraph fence: %w", err)
	}
	semaphore, err := device.CreateSemaphore()
	if err != nil {
		return nil, fmt.Errorf("render: create framegraph semaphore: %w", err)
	}

	return &BakedFrameGraph{cmb: cmb, fence: fence, semaphore: semaphore, backbuffer: backbuffer}, nil
}
