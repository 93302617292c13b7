// Package spriterenderer is a worked example of a framegraph consumer: a
// quad-batching 2D renderer that drives the framegraph builder the way a
// real game subsystem would, exercising CreateImage/CreateBuffer/ReadBuffer/
// WriteImage/SetBackbuffer end to end.
package spriterenderer

import (
	"log/slog"

	lin "github.com/xlab/linmath"

	"github.com/TAPZCREW/stormkit-go/framegraph"
	"github.com/TAPZCREW/stormkit-go/gpu"
	"github.com/TAPZCREW/stormkit-go/internal/logging"
)

// vertexSize is sizeof(Vertex): two 2-float32 fields.
const vertexSize = 16

// Vertex is one quad corner: clip-space position and texture coordinate.
type Vertex struct {
	Position [2]float32
	UV       [2]float32
}

// Sprite is a single quad instance in viewport pixel space.
type Sprite struct {
	Position lin.Vec2
	Size     lin.Vec2
}

// SpriteRenderer batches every Sprite added since the last Clear into one
// vertex buffer and a single raster pass that writes the batch's color
// output, which it designates as the graph's backbuffer.
type SpriteRenderer struct {
	viewport   gpu.Extent3D
	projection lin.Mat4x4
	sprites    []Sprite
	dirty      bool
}

// New creates a SpriteRenderer targeting a viewport of the given pixel
// size, computing the Vulkan-corrected orthographic projection once.
func New(viewportWidth, viewportHeight uint32) *SpriteRenderer {
	return &SpriteRenderer{
		viewport:   gpu.Extent3D{Width: viewportWidth, Height: viewportHeight, Depth: 1},
		projection: orthoProjection(float32(viewportWidth), float32(viewportHeight)),
		dirty:      true,
	}
}

// Projection returns the current orthographic projection matrix.
func (r *SpriteRenderer) Projection() lin.Mat4x4 { return r.projection }

// AddSprite appends a sprite to the current batch and marks it dirty so the
// next BuildFrame re-derives the vertex buffer size from the new count.
func (r *SpriteRenderer) AddSprite(s Sprite) {
	r.sprites = append(r.sprites, s)
	r.dirty = true
}

// Clear empties the current batch.
func (r *SpriteRenderer) Clear() {
	r.sprites = r.sprites[:0]
	r.dirty = true
}

// Dirty reports whether the batch changed since the last BuildFrame call;
// the owning Renderer should call RequestRebuild when this is true.
func (r *SpriteRenderer) Dirty() bool { return r.dirty }

// vertices expands the current sprite batch into a flat quad-strip vertex
// list, four corners per sprite.
func (r *SpriteRenderer) vertices() []Vertex {
	out := make([]Vertex, 0, len(r.sprites)*4)
	for _, s := range r.sprites {
		x0, y0 := s.Position[0], s.Position[1]
		x1, y1 := x0+s.Size[0], y0+s.Size[1]
		out = append(out,
			Vertex{Position: [2]float32{x0, y0}, UV: [2]float32{0, 0}},
			Vertex{Position: [2]float32{x1, y0}, UV: [2]float32{1, 0}},
			Vertex{Position: [2]float32{x0, y1}, UV: [2]float32{0, 1}},
			Vertex{Position: [2]float32{x1, y1}, UV: [2]float32{1, 1}},
		)
	}
	return out
}

// BuildFrame populates reg with this frame's sprite batch: a transfer task
// that creates transient staging and vertex buffers sized for the batch (it
// has no OnExecute, so no upload is recorded), and a raster
// task that reads it and writes (and designates as backbuffer) the batch's
// color output. It is a render.GraphBuilder and is passed directly to
// render.New/engine.New.
func (r *SpriteRenderer) BuildFrame(reg *framegraph.Registry) {
	vertexCount := max(len(r.sprites)*4, 1)
	bufferSize := uint64(vertexCount) * vertexSize

	transfer, err := reg.AddTask("SpriteGeometryTransfer", framegraph.TaskTransfer, false, nil)
	if err != nil {
		logging.Logger().Error("spriterenderer: add transfer task", slog.Any("error", err))
		return
	}
	staging := transfer.CreateBuffer(framegraph.BufferCreateDescription{
		Name: "SpriteStagingBuffer", Size: bufferSize, Transient: true,
	})
	vertexBuffer := transfer.CreateBuffer(framegraph.BufferCreateDescription{
		Name: "SpriteVertexBuffer", Size: bufferSize, Transient: true,
	})
	_ = staging // the upload itself is recorded by transfer.onExecute in a full pipeline backend

	draw, err := reg.AddTask("SpriteDraw", framegraph.TaskRaster, true, r.onExecute)
	if err != nil {
		logging.Logger().Error("spriterenderer: add draw task", slog.Any("error", err))
		return
	}
	color := draw.CreateImage(framegraph.ImageCreateDescription{
		Name:       "SpriteColor",
		Extent:     r.viewport,
		Format:     gpu.FormatB8G8R8A8UNorm,
		Type:       gpu.ImageType2D,
		Layers:     1,
		ClearValue: gpu.ClearValue{Color: [4]float32{0, 0, 0, 1}},
		CullImune:  true,
		Transient:  true,
	})
	if _, err := draw.ReadBuffer(vertexBuffer); err != nil {
		logging.Logger().Error("spriterenderer: read vertex buffer", slog.Any("error", err))
		return
	}
	if _, err := draw.WriteImage(color, gpu.ViewType2D, gpu.ClearValue{Color: [4]float32{0, 0, 0, 1}}); err != nil {
		logging.Logger().Error("spriterenderer: write color target", slog.Any("error", err))
		return
	}
	draw.SetBackbuffer(color)

	r.dirty = false
}

// onExecute is the draw task's OnExecute callback. Pipeline and shader
// binding live outside this module's GPU contract (gpu.CommandBuffer
// exposes render-pass bracketing and layout transitions, not bind/draw
// commands): a concrete pipeline backend records its draw calls here.
func (r *SpriteRenderer) onExecute(cmb gpu.CommandBuffer) {
	logging.Logger().Debug("recording sprite draw", slog.Int("vertex_count", len(r.vertices())))
}
