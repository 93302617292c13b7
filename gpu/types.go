// Package gpu defines the narrow, Vulkan-shaped contract that the framegraph
// compiler and renderer program against. Two implementations exist:
// gpu/vkbackend (a real binding over github.com/vulkan-go/vulkan) and
// gpu/gpumock (an in-memory double used by every unit test in this module).
package gpu

// Format mirrors the subset of VkFormat the framegraph cares about.
type Format uint32

const (
	FormatUndefined Format = iota
	FormatR8G8B8A8UNorm
	FormatB8G8R8A8UNorm
	FormatR8G8B8A8SRGB
	FormatD32Sfloat
	FormatD24UnormS8Uint
)

// IsDepthFormat reports whether a format carries depth (and possibly
// stencil) data rather than color data.
func (f Format) IsDepthFormat() bool {
	return f == FormatD32Sfloat || f == FormatD24UnormS8Uint
}

// ImageType mirrors VkImageType.
type ImageType uint32

const (
	ImageType2D ImageType = iota
	ImageType3D
	ImageTypeCube
)

// ImageUsage is a bitmask mirroring VkImageUsageFlags.
type ImageUsage uint32

const (
	ImageUsageTransferSrc ImageUsage = 1 << iota
	ImageUsageTransferDst
	ImageUsageSampled
	ImageUsageStorage
	ImageUsageColorAttachment
	ImageUsageDepthStencilAttachment
)

// BufferUsage is a bitmask mirroring VkBufferUsageFlags.
type BufferUsage uint32

const (
	BufferUsageTransferSrc BufferUsage = 1 << iota
	BufferUsageTransferDst
	BufferUsageUniform
	BufferUsageStorage
	BufferUsageIndex
	BufferUsageVertex
)

// ImageLayout mirrors VkImageLayout.
type ImageLayout uint32

const (
	ImageLayoutUndefined ImageLayout = iota
	ImageLayoutGeneral
	ImageLayoutColorAttachmentOptimal
	ImageLayoutDepthStencilAttachmentOptimal
	ImageLayoutTransferSrcOptimal
	ImageLayoutTransferDstOptimal
	ImageLayoutPresentSrc
)

// ViewType mirrors VkImageViewType.
type ViewType uint32

const (
	ViewType2D ViewType = iota
	ViewTypeCube
	ViewType2DArray
)

// AttachmentLoadOp mirrors VkAttachmentLoadOp.
type AttachmentLoadOp uint32

const (
	AttachmentLoadOpLoad AttachmentLoadOp = iota
	AttachmentLoadOpClear
	AttachmentLoadOpDontCare
)

// AttachmentStoreOp mirrors VkAttachmentStoreOp.
type AttachmentStoreOp uint32

const (
	AttachmentStoreOpStore AttachmentStoreOp = iota
	AttachmentStoreOpDontCare
)

// PipelineStage is a bitmask mirroring VkPipelineStageFlags, used to
// describe semaphore wait points at submission.
type PipelineStage uint32

const (
	PipelineStageColorAttachmentOutput PipelineStage = 1 << iota
	PipelineStageTransfer
	PipelineStageTopOfPipe
	PipelineStageBottomOfPipe
)

// Extent3D describes the dimensions of an image resource.
type Extent3D struct {
	Width, Height, Depth uint32
}

// ClearValue is a tagged union of a color or depth/stencil clear value.
type ClearValue struct {
	Color        [4]float32
	Depth        float32
	Stencil      uint32
	IsDepthClear bool
}

// ImageCreateInfo describes a physical image to allocate.
type ImageCreateInfo struct {
	Name   string
	Extent Extent3D
	Format Format
	Type   ImageType
	Layers uint32
	Usage  ImageUsage
}

// BufferCreateInfo describes a physical buffer to allocate.
type BufferCreateInfo struct {
	Name  string
	Size  uint64
	Usage BufferUsage
}

// ImageViewCreateInfo describes a view onto an existing image.
type ImageViewCreateInfo struct {
	Image    Image
	ViewType ViewType
	Format   Format
}

// AttachmentDescription describes one render-pass attachment slot, derived
// by the framegraph builder from the read/write edges of a RASTER task.
type AttachmentDescription struct {
	Format         Format
	LoadOp         AttachmentLoadOp
	StoreOp        AttachmentStoreOp
	StencilLoadOp  AttachmentLoadOp
	StencilStoreOp AttachmentStoreOp
	InitialLayout  ImageLayout
	FinalLayout    ImageLayout
	ClearValue     ClearValue
}

// CommandBufferLevel mirrors VkCommandBufferLevel.
type CommandBufferLevel uint32

const (
	CommandBufferLevelPrimary CommandBufferLevel = iota
	CommandBufferLevelSecondary
)

// PresentMode mirrors VkPresentModeKHR (the subset this module cares about).
type PresentMode uint32

const (
	PresentModeFIFO PresentMode = iota
	PresentModeMailbox
	PresentModeImmediate
)

// DeviceFeatureInfo is the subset of physical-device properties the
// device-scoring formula (render.ScorePhysicalDevice) reads.
type DeviceFeatureInfo struct {
	Name                     string
	IsDiscreteGPU            bool
	IsIntegratedGPU          bool
	MaxImageDimension2D      uint32
	MaxUniformBufferRange    uint32
	APIVersionMajor          uint32
	APIVersionMinor          uint32
	SupportsRaytracing       bool
	SupportedExtensionNames  []string
}
