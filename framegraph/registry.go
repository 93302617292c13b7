package framegraph

import "github.com/TAPZCREW/stormkit-go/gpu"

// task is the registry's internal record for a task node. Exported
// accessors on Registry copy out of it; user code never sees this type
// directly, only the TaskBuilder handed to OnSetup.
type task struct {
	id        ID
	name      string
	kind      TaskType
	cullImune bool
	onSetup   func(*TaskBuilder)
	onExecute func(gpu.CommandBuffer)
	userData  any

	creates []ID // resource ids this task created
	writes  []ID // resource ids (targets) this task writes
	reads   []ID // resource ids (targets) this task reads

	refCount int
}

// resource is the registry's internal record for a create-kind node
// (image or buffer). Read/write nodes are thin records that point back at
// one of these via their Image/Buffer field, per the two-level DAG.
type resource struct {
	id        ID
	kind      nodeKind // kindImageCreate or kindBufferCreate
	value     any      // ImageCreateDescription or BufferCreateDescription
	transient bool
	cullImune bool

	// external is set by ImportImage/ImportBuffer: the resource is
	// caller-owned, and the pool returns externalImage/externalImageView/
	// externalBuffer verbatim instead of allocating anything.
	external           bool
	externalImage      gpu.Image
	externalImageView  gpu.ImageView
	externalBuffer     gpu.Buffer

	creator     ID
	readerTasks []ID
	writerTasks []ID

	refCount int
}

// Registry owns the description-level graph for one frame: the typed
// resource and task nodes a BuildFrame callback populates, edged by
// create/read/write relationships. Bake freezes it into a Plan.
type Registry struct {
	gen idGenerator

	tasks     map[ID]*task
	resources map[ID]*resource
	// readNodes/writeNodes record the intermediate description nodes
	// ReadImage/WriteImage mint, per the two-level DAG: a read or write is
	// itself a graph node whose id is returned to the caller, distinct from
	// the image/buffer id it targets.
	readNodes  map[ID]any
	writeNodes map[ID]any

	taskOrder []ID

	backbuffer ID
	baked      bool
}

// NewRegistry returns an empty Registry ready for a build-phase callback to
// populate.
func NewRegistry() *Registry {
	return &Registry{
		tasks:      make(map[ID]*task),
		resources:  make(map[ID]*resource),
		readNodes:  make(map[ID]any),
		writeNodes: make(map[ID]any),
	}
}

// AddTask registers a new task node and returns a TaskBuilder scoped to it:
// every create/read/write call made through the returned builder is
// attributed to this task. onExecute is retained for the executor to invoke
// once the plan is baked and recorded.
func (r *Registry) AddTask(name string, kind TaskType, cullImune bool, onExecute func(gpu.CommandBuffer)) (*TaskBuilder, error) {
	if r.baked {
		return nil, ErrAlreadyBaked
	}
	id := r.gen.generate()
	t := &task{id: id, name: name, kind: kind, cullImune: cullImune, onExecute: onExecute}
	r.tasks[id] = t
	r.taskOrder = append(r.taskOrder, id)
	return &TaskBuilder{reg: r, taskID: id}, nil
}

func (r *Registry) addNode(kind nodeKind, value any) ID {
	invariant(!r.baked, "framegraph: addNode called after bake")
	id := r.gen.generate()
	switch kind {
	case kindImageCreate:
		desc := value.(ImageCreateDescription)
		r.resources[id] = &resource{id: id, kind: kind, value: desc, transient: desc.Transient, cullImune: desc.CullImune}
	case kindBufferCreate:
		desc := value.(BufferCreateDescription)
		r.resources[id] = &resource{id: id, kind: kind, value: desc, transient: desc.Transient, cullImune: desc.CullImune}
	case kindImageRead:
		r.readNodes[id] = value
	case kindImageWrite:
		r.writeNodes[id] = value
	case kindBufferRead:
		r.readNodes[id] = value
	default:
		invariant(false, "framegraph: addNode called with unexpected kind %d", kind)
	}
	return id
}

// addExternalImage registers a caller-owned image resource: Transient is
// always false, and the Pool returns image/view verbatim instead of
// allocating. Used by TaskBuilder.ImportImage.
func (r *Registry) addExternalImage(desc ImageCreateDescription, image gpu.Image, view gpu.ImageView) ID {
	invariant(!r.baked, "framegraph: addExternalImage called after bake")
	desc.Transient = false
	id := r.gen.generate()
	r.resources[id] = &resource{
		id: id, kind: kindImageCreate, value: desc, transient: false, cullImune: desc.CullImune,
		external: true, externalImage: image, externalImageView: view,
	}
	return id
}

// addExternalBuffer is the buffer analogue of addExternalImage, used by
// TaskBuilder.ImportBuffer.
func (r *Registry) addExternalBuffer(desc BufferCreateDescription, buffer gpu.Buffer) ID {
	invariant(!r.baked, "framegraph: addExternalBuffer called after bake")
	desc.Transient = false
	id := r.gen.generate()
	r.resources[id] = &resource{
		id: id, kind: kindBufferCreate, value: desc, transient: false, cullImune: desc.CullImune,
		external: true, externalBuffer: buffer,
	}
	return id
}

func (r *Registry) isImageCreate(id ID) bool {
	res, ok := r.resources[id]
	return ok && res.kind == kindImageCreate
}

func (r *Registry) isBufferCreate(id ID) bool {
	res, ok := r.resources[id]
	return ok && res.kind == kindBufferCreate
}

func (r *Registry) edgeTaskCreates(taskID, resourceID ID) {
	t := r.tasks[taskID]
	t.creates = append(t.creates, resourceID)
	r.resources[resourceID].creator = taskID
}

func (r *Registry) edgeTaskReads(taskID, _nodeID, targetID ID) {
	t := r.tasks[taskID]
	t.reads = append(t.reads, targetID)
	res := r.resources[targetID]
	res.readerTasks = append(res.readerTasks, taskID)
}

func (r *Registry) edgeTaskWrites(taskID, _nodeID, targetID ID) {
	t := r.tasks[taskID]
	t.writes = append(t.writes, targetID)
	res := r.resources[targetID]
	res.writerTasks = append(res.writerTasks, taskID)
}

// SetBackbuffer designates the resource that will be blitted to the
// swapchain's present image. Bake fails if this is never called.
func (r *Registry) SetBackbuffer(image ID) {
	r.backbuffer = image
}

// Backbuffer returns the currently designated backbuffer id, or InvalidID.
func (r *Registry) Backbuffer() ID {
	return r.backbuffer
}
