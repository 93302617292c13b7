package framegraph

import "github.com/TAPZCREW/stormkit-go/gpu"

// TaskType discriminates the kind of GPU work a task node performs. Only
// RASTER is executed by this implementation; the others exist as
// discriminator values so a graph can be built and baked against a future
// executor without redesigning the data model.
type TaskType uint32

const (
	TaskRaster TaskType = iota
	TaskCompute
	TaskTransfer
	TaskRaytracing
)

func (t TaskType) String() string {
	switch t {
	case TaskRaster:
		return "raster"
	case TaskCompute:
		return "compute"
	case TaskTransfer:
		return "transfer"
	case TaskRaytracing:
		return "raytracing"
	default:
		return "unknown"
	}
}

// nodeKind tags what a vertex in the registry's DAG actually is. Kept
// unexported: callers discriminate via the Resource/Task accessor types,
// not this tag directly.
type nodeKind uint8

const (
	kindImageCreate nodeKind = iota
	kindBufferCreate
	kindImageRead
	kindImageWrite
	kindBufferRead
	kindTask
)

// ImageCreateDescription describes a physical image to allocate (or, when
// Transient is false, an externally supplied image the registry merely
// references).
type ImageCreateDescription struct {
	Name       string
	Extent     gpu.Extent3D
	Format     gpu.Format
	Type       gpu.ImageType
	Layers     uint32
	Usage      gpu.ImageUsage // zero means "infer from read/write edges"
	ClearValue gpu.ClearValue
	CullImune  bool
	Transient  bool
}

// BufferCreateDescription describes a physical buffer to allocate.
type BufferCreateDescription struct {
	Name      string
	Size      uint64
	CullImune bool
	Transient bool
}

// ImageReadDescription is a dependency edge modelled as a node: it carries
// the id of the create node it reads back, per the two-level DAG chosen in
// the design notes.
type ImageReadDescription struct {
	Image    ID
	ViewType gpu.ViewType
}

// ImageWriteDescription is the write counterpart of ImageReadDescription.
type ImageWriteDescription struct {
	Image      ID
	ViewType   gpu.ViewType
	ClearValue gpu.ClearValue
}

// BufferReadDescription is the buffer analogue of ImageReadDescription.
type BufferReadDescription struct {
	Buffer ID
}

// TaskBuilder is the task-scoped view of the build-phase API: every
// resource created, read, or written through it is automatically edged
// from the owning task.
type TaskBuilder struct {
	reg    *Registry
	taskID ID
}

// CreateImage registers a new image resource, edged as a create of the
// owning task.
func (b *TaskBuilder) CreateImage(desc ImageCreateDescription) ID {
	id := b.reg.addNode(kindImageCreate, desc)
	b.reg.edgeTaskCreates(b.taskID, id)
	return id
}

// CreateBuffer registers a new buffer resource, edged as a create of the
// owning task.
func (b *TaskBuilder) CreateBuffer(desc BufferCreateDescription) ID {
	id := b.reg.addNode(kindBufferCreate, desc)
	b.reg.edgeTaskCreates(b.taskID, id)
	return id
}

// ImportImage registers an externally-owned image (a texture loaded once at
// startup, a resource handed in by another subsystem) that the pool must
// never allocate or destroy: Transient is forced to false regardless of
// desc.Transient, and Bake carries image/view through to the Plan verbatim.
func (b *TaskBuilder) ImportImage(desc ImageCreateDescription, image gpu.Image, view gpu.ImageView) ID {
	id := b.reg.addExternalImage(desc, image, view)
	b.reg.edgeTaskCreates(b.taskID, id)
	return id
}

// ImportBuffer is the buffer analogue of ImportImage.
func (b *TaskBuilder) ImportBuffer(desc BufferCreateDescription, buffer gpu.Buffer) ID {
	id := b.reg.addExternalBuffer(desc, buffer)
	b.reg.edgeTaskCreates(b.taskID, id)
	return id
}

// ReadImage registers a read dependency on an existing image, edged from
// the owning task.
func (b *TaskBuilder) ReadImage(image ID, viewType gpu.ViewType) (ID, error) {
	if !b.reg.isImageCreate(image) {
		return InvalidID, &UnknownResourceError{ID: image}
	}
	id := b.reg.addNode(kindImageRead, ImageReadDescription{Image: image, ViewType: viewType})
	b.reg.edgeTaskReads(b.taskID, id, image)
	return id, nil
}

// WriteImage registers a write dependency on an existing image, edged from
// the owning task.
func (b *TaskBuilder) WriteImage(image ID, viewType gpu.ViewType, clear gpu.ClearValue) (ID, error) {
	if !b.reg.isImageCreate(image) {
		return InvalidID, &UnknownResourceError{ID: image}
	}
	id := b.reg.addNode(kindImageWrite, ImageWriteDescription{Image: image, ViewType: viewType, ClearValue: clear})
	b.reg.edgeTaskWrites(b.taskID, id, image)
	return id, nil
}

// ReadBuffer registers a read dependency on an existing buffer.
func (b *TaskBuilder) ReadBuffer(buffer ID) (ID, error) {
	if !b.reg.isBufferCreate(buffer) {
		return InvalidID, &UnknownResourceError{ID: buffer}
	}
	id := b.reg.addNode(kindBufferRead, BufferReadDescription{Buffer: buffer})
	b.reg.edgeTaskReads(b.taskID, id, buffer)
	return id, nil
}

// SetBackbuffer designates image as the graph's final color resource.
func (b *TaskBuilder) SetBackbuffer(image ID) {
	b.reg.SetBackbuffer(image)
}
