package render_test

import (
	"context"
	"testing"

	"github.com/TAPZCREW/stormkit-go/gpu"
	"github.com/TAPZCREW/stormkit-go/gpu/gpumock"
	"github.com/TAPZCREW/stormkit-go/render"
)

func newMockSurface(t *testing.T, bufferCount uint32) (*render.RenderSurface, gpu.Device, gpu.Queue) {
	t.Helper()

	physical := gpumock.NewPhysicalDevice(gpu.DeviceFeatureInfo{Name: "mock", IsDiscreteGPU: true})
	device, err := physical.CreateDevice(0)
	if err != nil {
		t.Fatalf("CreateDevice: %v", err)
	}
	pool, err := device.CreateCommandPool()
	if err != nil {
		t.Fatalf("CreateCommandPool: %v", err)
	}
	queue := device.GraphicsQueue()
	surface := gpumock.NewSurface(gpu.Extent3D{Width: 800, Height: 600, Depth: 1})

	rs, err := render.NewRenderSurface(device, pool, queue, surface, bufferCount, gpu.PresentModeFIFO)
	if err != nil {
		t.Fatalf("NewRenderSurface: %v", err)
	}
	return rs, device, queue
}

// S6: with M=3 buffering, 10 consecutive begin/present cycles must produce
// current_frame = [0,1,2,0,1,2,0,1,2,0].
func TestRenderSurfaceCyclesThroughBuffering(t *testing.T) {
	const bufferCount = 3
	rs, _, queue := newMockSurface(t, bufferCount)
	ctx := context.Background()

	want := []uint32{0, 1, 2, 0, 1, 2, 0, 1, 2, 0}
	got := make([]uint32, 0, len(want))

	for i := 0; i < len(want); i++ {
		frame, err := rs.BeginFrame(ctx)
		if err != nil {
			t.Fatalf("BeginFrame iteration %d: %v", i, err)
		}
		got = append(got, frame.CurrentFrame)

		if err := rs.PresentFrame(queue, frame); err != nil {
			t.Fatalf("PresentFrame iteration %d: %v", i, err)
		}
	}

	if len(got) != len(want) {
		t.Fatalf("expected %d frames, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("frame %d: expected current_frame %d, got %d (full sequence: %v)", i, want[i], got[i], got)
		}
	}
}

func TestRenderSurfaceBufferingCountMatchesSwapchain(t *testing.T) {
	rs, _, _ := newMockSurface(t, 2)
	if rs.BufferingCount() != 2 {
		t.Fatalf("expected buffering count 2, got %d", rs.BufferingCount())
	}
}

// A swapchain that returns more images than requested (a legal driver
// behavior) must still cap the in-flight slot count at 3.
func TestRenderSurfaceBufferingCountCapsAtThree(t *testing.T) {
	rs, _, queue := newMockSurface(t, 5)
	if rs.BufferingCount() != 3 {
		t.Fatalf("expected buffering count capped at 3, got %d", rs.BufferingCount())
	}

	ctx := context.Background()
	want := []uint32{0, 1, 2, 0}
	for i, w := range want {
		frame, err := rs.BeginFrame(ctx)
		if err != nil {
			t.Fatalf("BeginFrame iteration %d: %v", i, err)
		}
		if frame.CurrentFrame != w {
			t.Fatalf("iteration %d: expected current_frame %d, got %d", i, w, frame.CurrentFrame)
		}
		if err := rs.PresentFrame(queue, frame); err != nil {
			t.Fatalf("PresentFrame iteration %d: %v", i, err)
		}
	}
}
