package framegraph_test

import (
	"testing"

	"github.com/TAPZCREW/stormkit-go/framegraph"
	"github.com/TAPZCREW/stormkit-go/gpu"
	"github.com/TAPZCREW/stormkit-go/gpu/gpumock"
)

// An imported (non-transient) image bakes with its caller-supplied handle
// carried through to the Plan, and the Pool hands that handle back verbatim
// instead of allocating a new one.
func TestImportImageSkipsPoolAllocation(t *testing.T) {
	physical := gpumock.NewPhysicalDevice(gpu.DeviceFeatureInfo{Name: "mock", IsDiscreteGPU: true})
	device, err := physical.CreateDevice(0)
	if err != nil {
		t.Fatalf("CreateDevice: %v", err)
	}
	extent := gpu.Extent3D{Width: 256, Height: 256, Depth: 1}

	externalImage, err := device.CreateImage(gpu.ImageCreateInfo{
		Name: "lightmap", Extent: extent, Format: gpu.FormatR8G8B8A8UNorm, Usage: gpu.ImageUsageSampled,
	})
	if err != nil {
		t.Fatalf("CreateImage: %v", err)
	}
	externalView, err := device.CreateImageView(gpu.ImageViewCreateInfo{Image: externalImage, ViewType: gpu.ViewType2D})
	if err != nil {
		t.Fatalf("CreateImageView: %v", err)
	}

	reg := framegraph.NewRegistry()
	render, err := reg.AddTask("render", framegraph.TaskRaster, false, nil)
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	lightmap := render.ImportImage(framegraph.ImageCreateDescription{
		Name: "lightmap", Extent: extent, Format: gpu.FormatR8G8B8A8UNorm, Type: gpu.ImageType2D, Layers: 1, CullImune: true,
	}, externalImage, externalView)
	if _, err := render.ReadImage(lightmap, gpu.ViewType2D); err != nil {
		t.Fatalf("ReadImage: %v", err)
	}
	backbuffer := render.CreateImage(framegraph.ImageCreateDescription{
		Name: "backbuffer", Extent: extent, Format: gpu.FormatR8G8B8A8UNorm, Type: gpu.ImageType2D, Layers: 1, Transient: true,
	})
	render.SetBackbuffer(backbuffer)

	plan, err := reg.Bake()
	if err != nil {
		t.Fatalf("Bake: %v", err)
	}
	desc, ok := plan.Images[lightmap]
	if !ok {
		t.Fatalf("expected imported lightmap to survive culling")
	}
	if desc.Transient {
		t.Fatalf("expected imported image to be non-transient")
	}

	pool := framegraph.NewPool(device)
	img, view, err := pool.AcquireImage(plan.Hash, desc)
	if err != nil {
		t.Fatalf("AcquireImage: %v", err)
	}
	if img != externalImage {
		t.Fatalf("expected AcquireImage to return the imported handle verbatim")
	}
	if view != externalView {
		t.Fatalf("expected AcquireImage to return the imported view verbatim")
	}
}

// A surviving resource marked non-transient but never registered through
// ImportImage/ImportBuffer has no caller-supplied handle for the Pool to
// return, so Bake must reject it rather than silently allocating one.
func TestBakeRejectsNonTransientWithoutImport(t *testing.T) {
	reg := framegraph.NewRegistry()
	extent := gpu.Extent3D{Width: 256, Height: 256, Depth: 1}

	render, err := reg.AddTask("render", framegraph.TaskRaster, false, nil)
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	backbuffer := render.CreateImage(framegraph.ImageCreateDescription{
		Name: "backbuffer", Extent: extent, Format: gpu.FormatR8G8B8A8UNorm, Type: gpu.ImageType2D, Layers: 1, Transient: false,
	})
	render.SetBackbuffer(backbuffer)

	if _, err := reg.Bake(); err != framegraph.ErrExternalResourceMissing {
		t.Fatalf("expected ErrExternalResourceMissing, got %v", err)
	}
}
