package framegraph

import "github.com/TAPZCREW/stormkit-go/gpu"

// PhysicalImage is a surviving image resource's physical description, ready
// for a Pool to allocate or reuse. When Transient is false the resource was
// registered via TaskBuilder.ImportImage: ExternalImage/ExternalView are the
// caller-owned handles the Pool hands back verbatim instead of allocating.
type PhysicalImage struct {
	ID            ID
	Name          string
	Extent        gpu.Extent3D
	Format        gpu.Format
	Type          gpu.ImageType
	Layers        uint32
	Usage         gpu.ImageUsage
	Transient     bool
	Attachment    gpu.AttachmentDescription
	ExternalImage gpu.Image
	ExternalView  gpu.ImageView
}

// PhysicalBuffer is a surviving buffer resource's physical description. When
// Transient is false, ExternalBuffer is the caller-owned handle registered
// via TaskBuilder.ImportBuffer.
type PhysicalBuffer struct {
	ID             ID
	Name           string
	Size           uint64
	Usage          gpu.BufferUsage
	Transient      bool
	ExternalBuffer gpu.Buffer
}

// Pass is one surviving task, in execution order, together with the
// resources it touches and the callback that records its commands.
type Pass struct {
	ID        ID
	Name      string
	Kind      TaskType
	Creates   []ID
	Writes    []ID
	Reads     []ID
	OnExecute func(gpu.CommandBuffer)
}

// Plan is the immutable, baked output of Builder.Bake: a topologically
// ordered list of surviving passes plus the physical descriptions of every
// resource any surviving pass touches.
type Plan struct {
	Passes     []Pass
	Images     map[ID]PhysicalImage
	Buffers    map[ID]PhysicalBuffer
	Backbuffer ID
	Hash       uint64
}
