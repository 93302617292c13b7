package vkbackend

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/TAPZCREW/stormkit-go/gpu"
)

func toVkFormat(f gpu.Format) vk.Format {
	switch f {
	case gpu.FormatR8G8B8A8UNorm:
		return vk.FormatR8g8b8a8Unorm
	case gpu.FormatB8G8R8A8UNorm:
		return vk.FormatB8g8r8a8Unorm
	case gpu.FormatR8G8B8A8SRGB:
		return vk.FormatR8g8b8a8Srgb
	case gpu.FormatD32Sfloat:
		return vk.FormatD32Sfloat
	case gpu.FormatD24UnormS8Uint:
		return vk.FormatD24UnormS8Uint
	default:
		return vk.FormatUndefined
	}
}

func toVkImageType(t gpu.ImageType) vk.ImageType {
	switch t {
	case gpu.ImageType3D:
		return vk.ImageType3d
	default:
		return vk.ImageType2d
	}
}

func toVkImageViewType(t gpu.ViewType) vk.ImageViewType {
	switch t {
	case gpu.ViewTypeCube:
		return vk.ImageViewTypeCube
	case gpu.ViewType2DArray:
		return vk.ImageViewType2dArray
	default:
		return vk.ImageViewType2d
	}
}

func toVkImageUsage(u gpu.ImageUsage) vk.ImageUsageFlags {
	var flags vk.ImageUsageFlagBits
	if u&gpu.ImageUsageTransferSrc != 0 {
		flags |= vk.ImageUsageTransferSrcBit
	}
	if u&gpu.ImageUsageTransferDst != 0 {
		flags |= vk.ImageUsageTransferDstBit
	}
	if u&gpu.ImageUsageSampled != 0 {
		flags |= vk.ImageUsageSampledBit
	}
	if u&gpu.ImageUsageStorage != 0 {
		flags |= vk.ImageUsageStorageBit
	}
	if u&gpu.ImageUsageColorAttachment != 0 {
		flags |= vk.ImageUsageColorAttachmentBit
	}
	if u&gpu.ImageUsageDepthStencilAttachment != 0 {
		flags |= vk.ImageUsageDepthStencilAttachmentBit
	}
	return vk.ImageUsageFlags(flags)
}

func toVkBufferUsage(u gpu.BufferUsage) vk.BufferUsageFlags {
	var flags vk.BufferUsageFlagBits
	if u&gpu.BufferUsageTransferSrc != 0 {
		flags |= vk.BufferUsageTransferSrcBit
	}
	if u&gpu.BufferUsageTransferDst != 0 {
		flags |= vk.BufferUsageTransferDstBit
	}
	if u&gpu.BufferUsageUniform != 0 {
		flags |= vk.BufferUsageUniformBufferBit
	}
	if u&gpu.BufferUsageStorage != 0 {
		flags |= vk.BufferUsageStorageBufferBit
	}
	if u&gpu.BufferUsageIndex != 0 {
		flags |= vk.BufferUsageIndexBufferBit
	}
	if u&gpu.BufferUsageVertex != 0 {
		flags |= vk.BufferUsageVertexBufferBit
	}
	return vk.BufferUsageFlags(flags)
}

func toVkImageLayout(l gpu.ImageLayout) vk.ImageLayout {
	switch l {
	case gpu.ImageLayoutGeneral:
		return vk.ImageLayoutGeneral
	case gpu.ImageLayoutColorAttachmentOptimal:
		return vk.ImageLayoutColorAttachmentOptimal
	case gpu.ImageLayoutDepthStencilAttachmentOptimal:
		return vk.ImageLayoutDepthStencilAttachmentOptimal
	case gpu.ImageLayoutTransferSrcOptimal:
		return vk.ImageLayoutTransferSrcOptimal
	case gpu.ImageLayoutTransferDstOptimal:
		return vk.ImageLayoutTransferDstOptimal
	case gpu.ImageLayoutPresentSrc:
		return vk.ImageLayoutPresentSrcKhr
	default:
		return vk.ImageLayoutUndefined
	}
}

func toVkLoadOp(op gpu.AttachmentLoadOp) vk.AttachmentLoadOp {
	switch op {
	case gpu.AttachmentLoadOpClear:
		return vk.AttachmentLoadOpClear
	case gpu.AttachmentLoadOpDontCare:
		return vk.AttachmentLoadOpDontCare
	default:
		return vk.AttachmentLoadOpLoad
	}
}

func toVkStoreOp(op gpu.AttachmentStoreOp) vk.AttachmentStoreOp {
	if op == gpu.AttachmentStoreOpDontCare {
		return vk.AttachmentStoreOpDontCare
	}
	return vk.AttachmentStoreOpStore
}

func toVkPresentMode(m gpu.PresentMode) vk.PresentMode {
	switch m {
	case gpu.PresentModeMailbox:
		return vk.PresentModeMailbox
	case gpu.PresentModeImmediate:
		return vk.PresentModeImmediate
	default:
		return vk.PresentModeFifo
	}
}

func toVkPipelineStage(s gpu.PipelineStage) vk.PipelineStageFlagBits {
	switch s {
	case gpu.PipelineStageTransfer:
		return vk.PipelineStageTransferBit
	case gpu.PipelineStageTopOfPipe:
		return vk.PipelineStageTopOfPipeBit
	case gpu.PipelineStageBottomOfPipe:
		return vk.PipelineStageBottomOfPipeBit
	default:
		return vk.PipelineStageColorAttachmentOutputBit
	}
}
