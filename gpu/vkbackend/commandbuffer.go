package vkbackend

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/TAPZCREW/stormkit-go/gpu"
)

// CommandPool wraps a VkCommandPool, generalized from
// asche.CommandBufferManager's allocate/reset/recycle pattern down to a
// plain factory (the Frame Pool, not this type, owns the recycling policy).
type CommandPool struct {
	device *Device
	handle vk.CommandPool
}

func (p *CommandPool) Allocate(level gpu.CommandBufferLevel) (gpu.CommandBuffer, error) {
	vkLevel := vk.CommandBufferLevelPrimary
	if level == gpu.CommandBufferLevelSecondary {
		vkLevel = vk.CommandBufferLevelSecondary
	}

	buffers := make([]vk.CommandBuffer, 1)
	ret := vk.AllocateCommandBuffers(p.device.handle, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        p.handle,
		Level:              vkLevel,
		CommandBufferCount: 1,
	}, buffers)
	if err := wrapResult("vk.AllocateCommandBuffers", ret); err != nil {
		return nil, err
	}
	return &CommandBuffer{pool: p, handle: buffers[0]}, nil
}

func (p *CommandPool) Destroy() {
	vk.DestroyCommandPool(p.device.handle, p.handle, nil)
}

// CommandBuffer wraps a VkCommandBuffer. BeginRendering/EndRendering use a
// classic render-pass begin/end rather than VK_KHR_dynamic_rendering, since
// this backend targets the render-pass object CreateRenderPass builds.
type CommandBuffer struct {
	pool         *CommandPool
	handle       vk.CommandBuffer
	activePass   *RenderPass
	activeExtent gpu.Extent3D
}

func (c *CommandBuffer) Handle() vk.CommandBuffer { return c.handle }

func (c *CommandBuffer) Begin() error {
	return wrapResult("vk.BeginCommandBuffer", vk.BeginCommandBuffer(c.handle, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}))
}

func (c *CommandBuffer) End() error {
	return wrapResult("vk.EndCommandBuffer", vk.EndCommandBuffer(c.handle))
}

func (c *CommandBuffer) BeginRendering(pass gpu.RenderPass, fb gpu.Framebuffer, extent gpu.Extent3D, clears []gpu.ClearValue) error {
	vkPass := pass.(*RenderPass)
	vkFb := fb.(*Framebuffer)

	clearValues := make([]vk.ClearValue, len(clears))
	for i, cv := range clears {
		if cv.IsDepthClear {
			clearValues[i].SetDepthStencil(cv.Depth, cv.Stencil)
		} else {
			clearValues[i].SetColor(cv.Color[:])
		}
	}

	vk.CmdBeginRenderPass(c.handle, &vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  vkPass.handle,
		Framebuffer: vkFb.handle,
		RenderArea: vk.Rect2D{
			Extent: vk.Extent2D{Width: extent.Width, Height: extent.Height},
		},
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}, vk.SubpassContentsInline)

	c.activePass = vkPass
	c.activeExtent = extent
	return nil
}

func (c *CommandBuffer) EndRendering() error {
	vk.CmdEndRenderPass(c.handle)
	c.activePass = nil
	return nil
}

func (c *CommandBuffer) TransitionImage(img gpu.Image, from, to gpu.ImageLayout, stage gpu.PipelineStage) error {
	vkImg := img.(*Image)
	aspect := vk.ImageAspectColorBit
	if vkImg.info.Format.IsDepthFormat() {
		aspect = vk.ImageAspectDepthBit
	}

	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		OldLayout:           toVkImageLayout(from),
		NewLayout:           toVkImageLayout(to),
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               vkImg.handle,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(aspect),
			LevelCount: 1,
			LayerCount: 1,
		},
	}

	vk.CmdPipelineBarrier(c.handle,
		vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
		vk.PipelineStageFlags(toVkPipelineStage(stage)),
		0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
	return nil
}

func (c *CommandBuffer) BlitImage(src, dst gpu.Image, srcExtent, dstExtent gpu.Extent3D) error {
	vkSrc := src.(*Image)
	vkDst := dst.(*Image)

	region := vk.ImageBlit{}
	region.SrcSubresource = vk.ImageSubresourceLayers{AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit), LayerCount: 1}
	region.DstSubresource = vk.ImageSubresourceLayers{AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit), LayerCount: 1}
	region.SrcOffsets[1] = vk.Offset3D{X: int32(srcExtent.Width), Y: int32(srcExtent.Height), Z: 1}
	region.DstOffsets[1] = vk.Offset3D{X: int32(dstExtent.Width), Y: int32(dstExtent.Height), Z: 1}

	vk.CmdBlitImage(c.handle,
		vkSrc.handle, vk.ImageLayoutTransferSrcOptimal,
		vkDst.handle, vk.ImageLayoutTransferDstOptimal,
		1, []vk.ImageBlit{region}, vk.FilterLinear)
	return nil
}

func (c *CommandBuffer) Reset() error {
	return wrapResult("vk.ResetCommandBuffer", vk.ResetCommandBuffer(c.handle,
		vk.CommandBufferResetFlags(vk.CommandBufferResetReleaseResourcesBit)))
}
