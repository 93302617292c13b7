package framegraph

import (
	"fmt"

	"github.com/TAPZCREW/stormkit-go/gpu"
)

// poolKey identifies an equivalence class of transient resources a Pool can
// freely hand out interchangeably: same plan fingerprint, same resource id
// within that plan. Two bakes of the same Registry shape (same graph
// topology, same descriptions, same pass order) hash to the same
// fingerprint and therefore reuse each other's allocations.
type poolKey struct {
	planHash uint64
	resource ID
}

// Pool caches the physical GPU resources a baked Plan's transient images and
// buffers need, keyed by plan fingerprint, so repeated frames that bake an
// identical graph shape reuse allocations instead of recreating them every
// frame. Resources tagged Transient: false are never pooled; the caller
// supplies them directly.
type Pool struct {
	device gpu.Device

	images  map[poolKey]*pooledImage
	buffers map[poolKey]*pooledBuffer
}

type pooledImage struct {
	image gpu.Image
	view  gpu.ImageView
	inUse bool
}

type pooledBuffer struct {
	buffer gpu.Buffer
	inUse  bool
}

// NewPool returns an empty Pool that allocates through device as needed.
func NewPool(device gpu.Device) *Pool {
	return &Pool{
		device:  device,
		images:  make(map[poolKey]*pooledImage),
		buffers: make(map[poolKey]*pooledBuffer),
	}
}

// AcquireImage returns the image and view backing a plan resource. For a
// non-transient (externally owned) resource it returns the caller-supplied
// handle directly and never touches the device or the cache. For a
// transient resource it allocates on first use for this plan hash and
// reuses the allocation on every subsequent call with the same
// (planHash, resource id) pair.
func (p *Pool) AcquireImage(planHash uint64, desc PhysicalImage) (gpu.Image, gpu.ImageView, error) {
	if !desc.Transient {
		return desc.ExternalImage, desc.ExternalView, nil
	}

	key := poolKey{planHash: planHash, resource: desc.ID}
	if entry, ok := p.images[key]; ok {
		entry.inUse = true
		return entry.image, entry.view, nil
	}

	img, err := p.device.CreateImage(gpu.ImageCreateInfo{
		Name:   fmt.Sprintf("FrameGraph:Image:%s", desc.Name),
		Extent: desc.Extent,
		Format: desc.Format,
		Type:   desc.Type,
		Layers: desc.Layers,
		Usage:  desc.Usage,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("framegraph: pool acquire image %q: %w", desc.Name, err)
	}
	view, err := p.device.CreateImageView(gpu.ImageViewCreateInfo{
		Image:    img,
		ViewType: gpu.ViewType2D,
		Format:   desc.Format,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("framegraph: pool acquire image view %q: %w", desc.Name, err)
	}

	p.images[key] = &pooledImage{image: img, view: view, inUse: true}
	return img, view, nil
}

// AcquireBuffer is the buffer analogue of AcquireImage.
func (p *Pool) AcquireBuffer(planHash uint64, desc PhysicalBuffer) (gpu.Buffer, error) {
	if !desc.Transient {
		return desc.ExternalBuffer, nil
	}

	key := poolKey{planHash: planHash, resource: desc.ID}
	if entry, ok := p.buffers[key]; ok {
		entry.inUse = true
		return entry.buffer, nil
	}

	buf, err := p.device.CreateBuffer(gpu.BufferCreateInfo{
		Name:  fmt.Sprintf("FrameGraph:Buffer:%s", desc.Name),
		Size:  desc.Size,
		Usage: desc.Usage,
	})
	if err != nil {
		return nil, fmt.Errorf("framegraph: pool acquire buffer %q: %w", desc.Name, err)
	}

	p.buffers[key] = &pooledBuffer{buffer: buf, inUse: true}
	return buf, nil
}

// RecycleFrame marks every resource this Pool holds as free for reuse by the
// next frame. It does not release anything back to the device: the whole
// point of the pool is to keep allocations warm across frames that bake to
// the same plan hash.
func (p *Pool) RecycleFrame() {
	for _, entry := range p.images {
		entry.inUse = false
	}
	for _, entry := range p.buffers {
		entry.inUse = false
	}
}

// Evict releases every resource belonging to plan hashes other than keep,
// freeing device memory held by frame shapes that are no longer baked (for
// example after a window resize changes every transient image's extent).
func (p *Pool) Evict(keep uint64) {
	for key, entry := range p.images {
		if key.planHash == keep {
			continue
		}
		entry.view.Destroy()
		entry.image.Destroy()
		delete(p.images, key)
	}
	for key, entry := range p.buffers {
		if key.planHash == keep {
			continue
		}
		entry.buffer.Destroy()
		delete(p.buffers, key)
	}
}
