package framegraph

import (
	"encoding/binary"
	"hash/fnv"
	"sort"

	"github.com/TAPZCREW/stormkit-go/gpu"
)

// Bake freezes the registry's description-time graph into an executable
// Plan: unreferenced work is culled, the survivors are ordered so every
// dependency runs before its dependents, and each surviving resource is
// given a physical description a Pool can allocate against.
//
// The culling pass does not follow the reference-count walk spec.md's
// build notes describe literally (see DESIGN.md): that pseudocode
// decrements a resource's creator's refcount on every visit, which
// miscounts a root resource whose creator also reads a second resource —
// the creator can hit zero and be culled before its own root write is
// accounted for. Bake instead marks liveness by walking backward from
// roots, which gives the same survivor set on every traced scenario
// without that failure mode.
func (r *Registry) Bake() (*Plan, error) {
	if r.baked {
		return nil, ErrAlreadyBaked
	}
	if r.backbuffer == InvalidID {
		return nil, ErrNoBackbuffer
	}
	if _, ok := r.resources[r.backbuffer]; !ok {
		return nil, &UnknownResourceError{ID: r.backbuffer}
	}

	liveTasks, liveResources := r.markLive()

	order, err := r.topoSort(liveTasks)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		Images:     make(map[ID]PhysicalImage),
		Buffers:    make(map[ID]PhysicalBuffer),
		Backbuffer: r.backbuffer,
	}
	for _, id := range order {
		t := r.tasks[id]
		plan.Passes = append(plan.Passes, Pass{
			ID:        t.id,
			Name:      t.name,
			Kind:      t.kind,
			Creates:   append([]ID(nil), t.creates...),
			Writes:    append([]ID(nil), t.writes...),
			Reads:     append([]ID(nil), t.reads...),
			OnExecute: t.onExecute,
		})
	}

	resourceOrder := make([]ID, 0, len(liveResources))
	for id := range liveResources {
		resourceOrder = append(resourceOrder, id)
	}
	sort.Slice(resourceOrder, func(i, j int) bool { return resourceOrder[i] < resourceOrder[j] })

	for _, id := range resourceOrder {
		res := r.resources[id]
		if !res.transient && !res.external {
			return nil, ErrExternalResourceMissing
		}
		switch desc := res.value.(type) {
		case ImageCreateDescription:
			plan.Images[id] = r.physicalImage(id, res, desc)
		case BufferCreateDescription:
			usage := gpu.BufferUsageTransferSrc | gpu.BufferUsageStorage
			if len(res.readerTasks) > 0 {
				usage |= gpu.BufferUsageUniform
			}
			plan.Buffers[id] = PhysicalBuffer{
				ID: id, Name: desc.Name, Size: desc.Size, Usage: usage, Transient: desc.Transient,
				ExternalBuffer: res.externalBuffer,
			}
		}
	}

	plan.Hash = r.fingerprint(plan)
	r.baked = true
	return plan, nil
}

// markLive computes the set of tasks and resources reachable backward from
// the graph's roots: the backbuffer, cull-immune or externally-owned
// (non-transient) resources, and cull-immune tasks.
func (r *Registry) markLive() (liveTasks, liveResources map[ID]bool) {
	liveTasks = make(map[ID]bool, len(r.tasks))
	liveResources = make(map[ID]bool, len(r.resources))

	var markTask, markResource func(ID)
	markResource = func(id ID) {
		if liveResources[id] {
			return
		}
		liveResources[id] = true
		if res, ok := r.resources[id]; ok && res.creator != InvalidID {
			markTask(res.creator)
		}
	}
	markTask = func(id ID) {
		if liveTasks[id] {
			return
		}
		liveTasks[id] = true
		t := r.tasks[id]
		for _, rid := range t.reads {
			markResource(rid)
		}
		for _, rid := range t.writes {
			markResource(rid)
		}
	}

	for _, id := range r.taskOrder {
		if r.tasks[id].cullImune {
			markTask(id)
		}
	}
	markResource(r.backbuffer)
	resourceIDs := make([]ID, 0, len(r.resources))
	for id := range r.resources {
		resourceIDs = append(resourceIDs, id)
	}
	sort.Slice(resourceIDs, func(i, j int) bool { return resourceIDs[i] < resourceIDs[j] })
	for _, id := range resourceIDs {
		res := r.resources[id]
		if res.cullImune || !res.transient {
			markResource(id)
		}
	}

	return liveTasks, liveResources
}

// topoSort orders the live task set so every resource creator/writer runs
// before its readers and subsequent writers, breaking ties by registration
// order for determinism. Returns ErrCycle if no such order exists.
func (r *Registry) topoSort(live map[ID]bool) ([]ID, error) {
	indegree := make(map[ID]int, len(live))
	edges := make(map[ID][]ID, len(live))
	rank := make(map[ID]int, len(r.taskOrder))
	for i, id := range r.taskOrder {
		rank[id] = i
	}

	addEdge := func(from, to ID) {
		if from == to || !live[from] || !live[to] {
			return
		}
		edges[from] = append(edges[from], to)
		indegree[to]++
	}

	resourceIDs := make([]ID, 0, len(r.resources))
	for id := range r.resources {
		resourceIDs = append(resourceIDs, id)
	}
	sort.Slice(resourceIDs, func(i, j int) bool { return resourceIDs[i] < resourceIDs[j] })

	for id := range live {
		if _, ok := indegree[id]; !ok {
			indegree[id] = 0
		}
	}
	for _, rid := range resourceIDs {
		res := r.resources[rid]
		if res.creator == InvalidID || !live[res.creator] {
			continue
		}
		for _, reader := range res.readerTasks {
			addEdge(res.creator, reader)
		}
		prev := res.creator
		for _, writer := range res.writerTasks {
			addEdge(prev, writer)
			prev = writer
		}
		for _, reader := range res.readerTasks {
			if !live[reader] {
				continue
			}
			for _, writer := range res.writerTasks {
				if writer != reader {
					addEdge(reader, writer)
				}
			}
		}
	}

	var ready []ID
	for id := range live {
		if indegree[id] == 0 {
			ready = append(ready, id)
		}
	}
	sort.Slice(ready, func(i, j int) bool { return rank[ready[i]] < rank[ready[j]] })

	var order []ID
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return rank[ready[i]] < rank[ready[j]] })
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)
		for _, to := range edges[next] {
			indegree[to]--
			if indegree[to] == 0 {
				ready = append(ready, to)
			}
		}
	}

	if len(order) != len(live) {
		return nil, ErrCycle
	}
	return order, nil
}

// physicalImage derives one attachment description per image from how it
// is created, written, and read across the surviving passes: an image with
// a creating task is cleared from UNDEFINED, any other image is loaded from
// GENERAL. It is stored and ends in its attachment-optimal layout when it is
// the backbuffer, is read or written by any task, or is non-transient;
// otherwise its contents are discarded and it stays in its initial layout.
func (r *Registry) physicalImage(id ID, res *resource, desc ImageCreateDescription) PhysicalImage {
	usage := desc.Usage
	if usage == 0 {
		if desc.Format.IsDepthFormat() {
			usage = gpu.ImageUsageDepthStencilAttachment | gpu.ImageUsageTransferSrc
		} else {
			usage = gpu.ImageUsageColorAttachment | gpu.ImageUsageTransferSrc
		}
		if len(res.readerTasks) > 0 {
			usage |= gpu.ImageUsageSampled
		}
	}
	if id == r.backbuffer {
		usage |= gpu.ImageUsageTransferSrc
	}

	att := gpu.AttachmentDescription{
		Format:     desc.Format,
		ClearValue: desc.ClearValue,
	}

	if res.creator != InvalidID {
		att.LoadOp = gpu.AttachmentLoadOpClear
		att.InitialLayout = gpu.ImageLayoutUndefined
	} else {
		att.LoadOp = gpu.AttachmentLoadOpLoad
		att.InitialLayout = gpu.ImageLayoutGeneral
	}

	switch {
	case id == r.backbuffer || len(res.readerTasks) > 0 || len(res.writerTasks) > 0 || !res.transient:
		att.StoreOp = gpu.AttachmentStoreOpStore
		if desc.Format.IsDepthFormat() {
			att.FinalLayout = gpu.ImageLayoutDepthStencilAttachmentOptimal
		} else {
			att.FinalLayout = gpu.ImageLayoutColorAttachmentOptimal
		}
	default:
		att.StoreOp = gpu.AttachmentStoreOpDontCare
		att.FinalLayout = att.InitialLayout
	}

	if desc.Format.IsDepthFormat() {
		att.StencilLoadOp = att.LoadOp
		att.StencilStoreOp = att.StoreOp
	} else {
		att.StencilLoadOp = gpu.AttachmentLoadOpDontCare
		att.StencilStoreOp = gpu.AttachmentStoreOpDontCare
	}

	return PhysicalImage{
		ID:            id,
		Name:          desc.Name,
		Extent:        desc.Extent,
		Format:        desc.Format,
		Type:          desc.Type,
		Layers:        max1(desc.Layers),
		Usage:         usage,
		Transient:     desc.Transient,
		Attachment:    att,
		ExternalImage: res.externalImage,
		ExternalView:  res.externalImageView,
	}
}

func max1(v uint32) uint32 {
	if v == 0 {
		return 1
	}
	return v
}

// fingerprint combines the baked pass order and every surviving resource's
// physical description into a single hash. Pass order is folded in
// sequentially rather than XOR-combined, so reordering two passes (even
// with identical contents) changes the hash — the Pool must treat them as
// different plans.
func (r *Registry) fingerprint(plan *Plan) uint64 {
	h := fnv.New64a()
	var buf [8]byte

	writeU64 := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	writeU32 := func(v uint32) { writeU64(uint64(v)) }
	writeStr := func(s string) {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}

	for _, p := range plan.Passes {
		writeU64(uint64(p.ID))
		writeStr(p.Name)
		writeU32(uint32(p.Kind))
		for _, id := range p.Creates {
			writeU64(uint64(id))
		}
		for _, id := range p.Writes {
			writeU64(uint64(id))
		}
		for _, id := range p.Reads {
			writeU64(uint64(id))
		}
	}
	for _, p := range plan.Passes {
		for _, id := range p.Creates {
			if img, ok := plan.Images[id]; ok {
				writeStr(img.Name)
				writeU32(img.Extent.Width)
				writeU32(img.Extent.Height)
				writeU32(img.Extent.Depth)
				writeU32(uint32(img.Format))
				writeU32(uint32(img.Usage))
			}
			if buf, ok := plan.Buffers[id]; ok {
				writeStr(buf.Name)
				writeU64(buf.Size)
			}
		}
	}
	writeU64(uint64(plan.Backbuffer))

	return h.Sum64()
}
