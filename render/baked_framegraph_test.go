package render_test

import (
	"context"
	"testing"

	"github.com/TAPZCREW/stormkit-go/framegraph"
	"github.com/TAPZCREW/stormkit-go/gpu"
	"github.com/TAPZCREW/stormkit-go/gpu/gpumock"
	"github.com/TAPZCREW/stormkit-go/render"
)

// S1, at the render package layer: a single RASTER task creating the
// backbuffer bakes and executes into one submitted primary command buffer,
// surfacing a present-ready backbuffer image.
func TestMakeFrameAndExecuteSingleTriangle(t *testing.T) {
	physical := gpumock.NewPhysicalDevice(gpu.DeviceFeatureInfo{Name: "mock", IsDiscreteGPU: true})
	device, err := physical.CreateDevice(0)
	if err != nil {
		t.Fatalf("CreateDevice: %v", err)
	}
	cmdPool, err := device.CreateCommandPool()
	if err != nil {
		t.Fatalf("CreateCommandPool: %v", err)
	}
	queue := device.GraphicsQueue().(*gpumock.Queue)

	reg := framegraph.NewRegistry()
	extent := gpu.Extent3D{Width: 800, Height: 600, Depth: 1}

	executed := false
	renderTask, err := reg.AddTask("render", framegraph.TaskRaster, false, func(gpu.CommandBuffer) { executed = true })
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	backbuffer := renderTask.CreateImage(framegraph.ImageCreateDescription{
		Name: "backbuffer", Extent: extent, Format: gpu.FormatR8G8B8A8UNorm, Type: gpu.ImageType2D, Layers: 1, Transient: true,
	})
	if _, err := renderTask.WriteImage(backbuffer, gpu.ViewType2D, gpu.ClearValue{}); err != nil {
		t.Fatalf("WriteImage: %v", err)
	}
	renderTask.SetBackbuffer(backbuffer)

	plan, err := reg.Bake()
	if err != nil {
		t.Fatalf("Bake: %v", err)
	}

	pool := framegraph.NewPool(device)
	frame, err := render.MakeFrame(device, queue, cmdPool, pool, plan, extent)
	if err != nil {
		t.Fatalf("MakeFrame: %v", err)
	}
	if !executed {
		t.Fatalf("expected OnExecute to be invoked while recording the frame")
	}
	if frame.Backbuffer() == nil {
		t.Fatalf("expected a non-nil backbuffer image")
	}
	if len(queue.Submits) != 1 {
		t.Fatalf("expected 1 submit from the transition command buffer during MakeFrame, got %d", len(queue.Submits))
	}

	semaphore, err := frame.Execute(context.Background(), queue)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if semaphore == nil {
		t.Fatalf("expected Execute to return a non-nil semaphore")
	}
	if len(queue.Submits) != 2 {
		t.Fatalf("expected 2 total submits after Execute, got %d", len(queue.Submits))
	}
}

// S1, literal form: a single RASTER task that creates and sets the backbuffer
// but never issues an explicit WriteImage call must still record a render
// pass and invoke OnExecute.
func TestMakeFrameCreateOnlyBackbuffer(t *testing.T) {
	physical := gpumock.NewPhysicalDevice(gpu.DeviceFeatureInfo{Name: "mock", IsDiscreteGPU: true})
	device, err := physical.CreateDevice(0)
	if err != nil {
		t.Fatalf("CreateDevice: %v", err)
	}
	cmdPool, err := device.CreateCommandPool()
	if err != nil {
		t.Fatalf("CreateCommandPool: %v", err)
	}
	queue := device.GraphicsQueue().(*gpumock.Queue)

	reg := framegraph.NewRegistry()
	extent := gpu.Extent3D{Width: 800, Height: 600, Depth: 1}

	executed := false
	renderTask, err := reg.AddTask("render", framegraph.TaskRaster, false, func(gpu.CommandBuffer) { executed = true })
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	backbuffer := renderTask.CreateImage(framegraph.ImageCreateDescription{
		Name: "backbuffer", Extent: extent, Format: gpu.FormatR8G8B8A8UNorm, Type: gpu.ImageType2D, Layers: 1, Transient: true,
	})
	renderTask.SetBackbuffer(backbuffer)

	plan, err := reg.Bake()
	if err != nil {
		t.Fatalf("Bake: %v", err)
	}

	pool := framegraph.NewPool(device)
	frame, err := render.MakeFrame(device, queue, cmdPool, pool, plan, extent)
	if err != nil {
		t.Fatalf("MakeFrame: %v", err)
	}
	if !executed {
		t.Fatalf("expected OnExecute to be invoked for a create-only backbuffer pass")
	}
	if frame.Backbuffer() == nil {
		t.Fatalf("expected a non-nil backbuffer image")
	}
}
