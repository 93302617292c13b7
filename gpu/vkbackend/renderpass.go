package vkbackend

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/TAPZCREW/stormkit-go/gpu"
)

// RenderPass wraps a VkRenderPass built from the attachment descriptions the
// framegraph builder derives for a RASTER task.
type RenderPass struct {
	device   vk.Device
	handle   vk.RenderPass
	hasDepth bool
}

func (d *Device) CreateRenderPass(attachments []gpu.AttachmentDescription, hasDepth bool) (gpu.RenderPass, error) {
	vkAttachments := make([]vk.AttachmentDescription, len(attachments))
	colorRefs := make([]vk.AttachmentReference, 0, len(attachments))
	var depthRef *vk.AttachmentReference

	for idx, a := range attachments {
		vkAttachments[idx] = vk.AttachmentDescription{
			Format:         toVkFormat(a.Format),
			Samples:        vk.SampleCount1Bit,
			LoadOp:         toVkLoadOp(a.LoadOp),
			StoreOp:        toVkStoreOp(a.StoreOp),
			StencilLoadOp:  toVkLoadOp(a.StencilLoadOp),
			StencilStoreOp: toVkStoreOp(a.StencilStoreOp),
			InitialLayout:  toVkImageLayout(a.InitialLayout),
			FinalLayout:    toVkImageLayout(a.FinalLayout),
		}

		if a.Format.IsDepthFormat() {
			depthRef = &vk.AttachmentReference{
				Attachment: uint32(idx),
				Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
			}
			continue
		}
		colorRefs = append(colorRefs, vk.AttachmentReference{
			Attachment: uint32(idx),
			Layout:     vk.ImageLayoutColorAttachmentOptimal,
		})
	}

	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: uint32(len(colorRefs)),
		PColorAttachments:    colorRefs,
	}
	if depthRef != nil {
		subpass.PDepthStencilAttachment = depthRef
	}

	var handle vk.RenderPass
	ret := vk.CreateRenderPass(d.handle, &vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(vkAttachments)),
		PAttachments:    vkAttachments,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
	}, nil, &handle)
	if err := wrapResult("vk.CreateRenderPass", ret); err != nil {
		return nil, err
	}
	return &RenderPass{device: d.handle, handle: handle, hasDepth: hasDepth}, nil
}

func (r *RenderPass) Handle() vk.RenderPass { return r.handle }

func (r *RenderPass) Destroy() {
	vk.DestroyRenderPass(r.device, r.handle, nil)
}

// Framebuffer wraps a VkFramebuffer bound to a fixed set of image views.
type Framebuffer struct {
	device vk.Device
	handle vk.Framebuffer
}

func (d *Device) CreateFramebuffer(pass gpu.RenderPass, views []gpu.ImageView, extent gpu.Extent3D) (gpu.Framebuffer, error) {
	vkPass := pass.(*RenderPass)
	vkViews := make([]vk.ImageView, len(views))
	for i, v := range views {
		vkViews[i] = v.(*ImageView).handle
	}

	var handle vk.Framebuffer
	ret := vk.CreateFramebuffer(d.handle, &vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      vkPass.handle,
		AttachmentCount: uint32(len(vkViews)),
		PAttachments:    vkViews,
		Width:           extent.Width,
		Height:          extent.Height,
		Layers:          1,
	}, nil, &handle)
	if err := wrapResult("vk.CreateFramebuffer", ret); err != nil {
		return nil, err
	}
	return &Framebuffer{device: d.handle, handle: handle}, nil
}

func (f *Framebuffer) Destroy() {
	vk.DestroyFramebuffer(f.device, f.handle, nil)
}
