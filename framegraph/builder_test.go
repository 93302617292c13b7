package framegraph_test

import (
	"errors"
	"testing"

	"github.com/TAPZCREW/stormkit-go/framegraph"
	"github.com/TAPZCREW/stormkit-go/gpu"
)

const (
	width800  = 800
	height600 = 600
)

func rgbaExtent() (gpu.Extent3D, gpu.Format) {
	return gpu.Extent3D{Width: width800, Height: height600, Depth: 1}, gpu.FormatR8G8B8A8UNorm
}

// S1: a single RASTER task creating the backbuffer survives with one pass
// and one color attachment.
func TestBakeSingleTriangle(t *testing.T) {
	reg := framegraph.NewRegistry()
	extent, format := rgbaExtent()

	render, err := reg.AddTask("render", framegraph.TaskRaster, false, nil)
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	backbuffer := render.CreateImage(framegraph.ImageCreateDescription{
		Name: "backbuffer", Extent: extent, Format: format, Type: gpu.ImageType2D, Layers: 1, Transient: true,
	})
	render.SetBackbuffer(backbuffer)

	plan, err := reg.Bake()
	if err != nil {
		t.Fatalf("Bake: %v", err)
	}
	if len(plan.Passes) != 1 {
		t.Fatalf("expected 1 pass, got %d", len(plan.Passes))
	}
	if plan.Passes[0].Name != "render" {
		t.Fatalf("expected pass %q, got %q", "render", plan.Passes[0].Name)
	}
	img, ok := plan.Images[backbuffer]
	if !ok {
		t.Fatalf("backbuffer image missing from plan")
	}
	if img.Attachment.LoadOp != gpu.AttachmentLoadOpClear {
		t.Errorf("expected Clear load op for a freshly created image, got %v", img.Attachment.LoadOp)
	}
	if img.Attachment.FinalLayout != gpu.ImageLayoutColorAttachmentOptimal {
		t.Errorf("expected backbuffer final layout ColorAttachmentOptimal, got %v", img.Attachment.FinalLayout)
	}
}

// S2: gen_gbuffer creates gbuffer; render reads gbuffer and creates+writes
// backbuffer. Both survive, in creation-before-use order.
func TestBakeGBufferRead(t *testing.T) {
	reg := framegraph.NewRegistry()
	extent, format := rgbaExtent()

	genGBuffer, err := reg.AddTask("gen_gbuffer", framegraph.TaskRaster, false, nil)
	if err != nil {
		t.Fatalf("AddTask gen_gbuffer: %v", err)
	}
	gbuffer := genGBuffer.CreateImage(framegraph.ImageCreateDescription{
		Name: "gbuffer", Extent: extent, Format: format, Type: gpu.ImageType2D, Layers: 1, Transient: true,
	})

	render, err := reg.AddTask("render", framegraph.TaskRaster, false, nil)
	if err != nil {
		t.Fatalf("AddTask render: %v", err)
	}
	if _, err := render.ReadImage(gbuffer, gpu.ViewType2D); err != nil {
		t.Fatalf("ReadImage: %v", err)
	}
	backbuffer := render.CreateImage(framegraph.ImageCreateDescription{
		Name: "backbuffer", Extent: extent, Format: format, Type: gpu.ImageType2D, Layers: 1, Transient: true,
	})
	if _, err := render.WriteImage(backbuffer, gpu.ViewType2D, gpu.ClearValue{}); err != nil {
		t.Fatalf("WriteImage: %v", err)
	}
	render.SetBackbuffer(backbuffer)

	plan, err := reg.Bake()
	if err != nil {
		t.Fatalf("Bake: %v", err)
	}
	if len(plan.Passes) != 2 {
		t.Fatalf("expected 2 passes, got %d", len(plan.Passes))
	}
	if plan.Passes[0].Name != "gen_gbuffer" || plan.Passes[1].Name != "render" {
		t.Fatalf("expected order [gen_gbuffer, render], got [%s, %s]", plan.Passes[0].Name, plan.Passes[1].Name)
	}
}

// S3: a task that only reads gbuffer and creates nothing cull-immune is
// dropped; gen_gbuffer still survives because render still reads gbuffer.
func TestBakeCullsUselessTask(t *testing.T) {
	reg := framegraph.NewRegistry()
	extent, format := rgbaExtent()

	genGBuffer, err := reg.AddTask("gen_gbuffer", framegraph.TaskRaster, false, nil)
	if err != nil {
		t.Fatalf("AddTask gen_gbuffer: %v", err)
	}
	gbuffer := genGBuffer.CreateImage(framegraph.ImageCreateDescription{
		Name: "gbuffer", Extent: extent, Format: format, Type: gpu.ImageType2D, Layers: 1, Transient: true,
	})

	useless, err := reg.AddTask("useless", framegraph.TaskRaster, false, nil)
	if err != nil {
		t.Fatalf("AddTask useless: %v", err)
	}
	if _, err := useless.ReadImage(gbuffer, gpu.ViewType2D); err != nil {
		t.Fatalf("ReadImage (useless): %v", err)
	}

	render, err := reg.AddTask("render", framegraph.TaskRaster, false, nil)
	if err != nil {
		t.Fatalf("AddTask render: %v", err)
	}
	if _, err := render.ReadImage(gbuffer, gpu.ViewType2D); err != nil {
		t.Fatalf("ReadImage (render): %v", err)
	}
	backbuffer := render.CreateImage(framegraph.ImageCreateDescription{
		Name: "backbuffer", Extent: extent, Format: format, Type: gpu.ImageType2D, Layers: 1, Transient: true,
	})
	render.SetBackbuffer(backbuffer)

	plan, err := reg.Bake()
	if err != nil {
		t.Fatalf("Bake: %v", err)
	}

	var names []string
	for _, p := range plan.Passes {
		names = append(names, p.Name)
	}
	for _, n := range names {
		if n == "useless" {
			t.Fatalf("expected 'useless' to be culled, passes: %v", names)
		}
	}
	found := false
	for _, n := range names {
		if n == "gen_gbuffer" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected 'gen_gbuffer' to survive, passes: %v", names)
	}
}

// S4: two tasks each reading what the other writes form a cycle; Bake must
// report it instead of returning a bogus order.
func TestBakeDetectsCycle(t *testing.T) {
	reg := framegraph.NewRegistry()
	extent, format := rgbaExtent()

	a, err := reg.AddTask("a", framegraph.TaskRaster, true, nil)
	if err != nil {
		t.Fatalf("AddTask a: %v", err)
	}
	b, err := reg.AddTask("b", framegraph.TaskRaster, true, nil)
	if err != nil {
		t.Fatalf("AddTask b: %v", err)
	}

	imgA := a.CreateImage(framegraph.ImageCreateDescription{Name: "a-out", Extent: extent, Format: format, Type: gpu.ImageType2D, Layers: 1, Transient: true, CullImune: true})
	imgB := b.CreateImage(framegraph.ImageCreateDescription{Name: "b-out", Extent: extent, Format: format, Type: gpu.ImageType2D, Layers: 1, Transient: true, CullImune: true})

	if _, err := a.ReadImage(imgB, gpu.ViewType2D); err != nil {
		t.Fatalf("ReadImage: %v", err)
	}
	if _, err := b.ReadImage(imgA, gpu.ViewType2D); err != nil {
		t.Fatalf("ReadImage: %v", err)
	}
	// WriteImage edges complete the mutual cycle: a writes b-out (after
	// reading it), b writes a-out (after reading it).
	if _, err := a.WriteImage(imgB, gpu.ViewType2D, gpu.ClearValue{}); err != nil {
		t.Fatalf("WriteImage: %v", err)
	}
	if _, err := b.WriteImage(imgA, gpu.ViewType2D, gpu.ClearValue{}); err != nil {
		t.Fatalf("WriteImage: %v", err)
	}
	a.SetBackbuffer(imgA)

	_, err = reg.Bake()
	if !errors.Is(err, framegraph.ErrCycle) {
		t.Fatalf("expected ErrCycle, got %v", err)
	}
}

// S5: Bake without ever calling SetBackbuffer fails its precondition.
func TestBakeRequiresBackbuffer(t *testing.T) {
	reg := framegraph.NewRegistry()
	extent, format := rgbaExtent()

	render, err := reg.AddTask("render", framegraph.TaskRaster, false, nil)
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	render.CreateImage(framegraph.ImageCreateDescription{
		Name: "backbuffer", Extent: extent, Format: format, Type: gpu.ImageType2D, Layers: 1, Transient: true,
	})

	_, err = reg.Bake()
	if !errors.Is(err, framegraph.ErrNoBackbuffer) {
		t.Fatalf("expected ErrNoBackbuffer, got %v", err)
	}
}

// Invariant 3: a resource created once never appears as more than one
// create node in the baked plan's image map.
func TestBakeOneCreatePerResource(t *testing.T) {
	reg := framegraph.NewRegistry()
	extent, format := rgbaExtent()

	render, err := reg.AddTask("render", framegraph.TaskRaster, false, nil)
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	backbuffer := render.CreateImage(framegraph.ImageCreateDescription{
		Name: "backbuffer", Extent: extent, Format: format, Type: gpu.ImageType2D, Layers: 1, Transient: true,
	})
	render.SetBackbuffer(backbuffer)

	plan, err := reg.Bake()
	if err != nil {
		t.Fatalf("Bake: %v", err)
	}

	creators := 0
	for _, p := range plan.Passes {
		for _, id := range p.Creates {
			if id == backbuffer {
				creators++
			}
		}
	}
	if creators != 1 {
		t.Fatalf("expected exactly 1 creator of backbuffer, got %d", creators)
	}
}

// Unknown resource ids are rejected at builder time, not deferred to bake.
func TestReadUnknownResourceFails(t *testing.T) {
	reg := framegraph.NewRegistry()
	render, err := reg.AddTask("render", framegraph.TaskRaster, false, nil)
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	_, err = render.ReadImage(framegraph.ID(9999), gpu.ViewType2D)
	var unknown *framegraph.UnknownResourceError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownResourceError, got %v", err)
	}
}

// Mutations after Bake are rejected.
func TestMutateAfterBakeFails(t *testing.T) {
	reg := framegraph.NewRegistry()
	extent, format := rgbaExtent()

	render, err := reg.AddTask("render", framegraph.TaskRaster, false, nil)
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	backbuffer := render.CreateImage(framegraph.ImageCreateDescription{
		Name: "backbuffer", Extent: extent, Format: format, Type: gpu.ImageType2D, Layers: 1, Transient: true,
	})
	render.SetBackbuffer(backbuffer)

	if _, err := reg.Bake(); err != nil {
		t.Fatalf("Bake: %v", err)
	}

	_, err = reg.AddTask("late", framegraph.TaskRaster, false, nil)
	if !errors.Is(err, framegraph.ErrAlreadyBaked) {
		t.Fatalf("expected ErrAlreadyBaked, got %v", err)
	}
}

// The plan hash is order-sensitive: baking two graphs whose only difference
// is pass order must not collide.
func TestFingerprintIsOrderSensitive(t *testing.T) {
	buildSwapped := func(firstName, secondName string) uint64 {
		reg := framegraph.NewRegistry()
		extent, format := rgbaExtent()

		first, _ := reg.AddTask(firstName, framegraph.TaskRaster, false, nil)
		firstImg := first.CreateImage(framegraph.ImageCreateDescription{Name: firstName + "-img", Extent: extent, Format: format, Type: gpu.ImageType2D, Layers: 1, Transient: true, CullImune: true})

		second, _ := reg.AddTask(secondName, framegraph.TaskRaster, false, nil)
		secondImg := second.CreateImage(framegraph.ImageCreateDescription{Name: secondName + "-img", Extent: extent, Format: format, Type: gpu.ImageType2D, Layers: 1, Transient: true})
		second.SetBackbuffer(secondImg)
		_ = firstImg

		plan, err := reg.Bake()
		if err != nil {
			t.Fatalf("Bake: %v", err)
		}
		return plan.Hash
	}

	h1 := buildSwapped("alpha", "beta")
	h2 := buildSwapped("beta", "alpha")
	if h1 == h2 {
		t.Fatalf("expected distinct hashes for reordered, differently named passes, got equal hash %d", h1)
	}
}
