// Package engine composes a window, a Renderer, and the user's per-frame
// world step into the two-thread event loop described by the render
// surface/renderer design: a main thread that pumps window events and steps
// the world, and a dedicated render thread that bakes and executes the
// framegraph.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/TAPZCREW/stormkit-go/gpu"
	"github.com/TAPZCREW/stormkit-go/internal/logging"
	"github.com/TAPZCREW/stormkit-go/render"
	"github.com/TAPZCREW/stormkit-go/wsi"
)

// WorldStepper is the out-of-scope entity/world seam: Application calls Step
// once per main-loop iteration. No scripting runtime or entity system is
// implemented here; a real one plugs in by satisfying this interface.
type WorldStepper interface {
	Step(dt time.Duration)
}

// Options configures Application construction.
type Options struct {
	AppName        string
	WindowTitle    string
	WindowWidth    uint32
	WindowHeight   uint32
	BufferingCount uint32
	PresentMode    gpu.PresentMode
}

func defaultOptions() Options {
	return Options{
		AppName:        "stormkit-go",
		WindowTitle:    "stormkit-go",
		WindowWidth:    1280,
		WindowHeight:   720,
		BufferingCount: 3,
		PresentMode:    gpu.PresentModeFIFO,
	}
}

// Option mutates Options; see With* constructors below.
type Option func(*Options)

func WithAppName(name string) Option { return func(o *Options) { o.AppName = name } }

func WithWindowTitle(title string) Option { return func(o *Options) { o.WindowTitle = title } }

func WithWindowExtent(width, height uint32) Option {
	return func(o *Options) { o.WindowWidth, o.WindowHeight = width, height }
}

func WithBufferingCount(n uint32) Option { return func(o *Options) { o.BufferingCount = n } }

func WithPresentMode(mode gpu.PresentMode) Option {
	return func(o *Options) { o.PresentMode = mode }
}

// Application owns the window and the Renderer and drives both threads'
// lifetimes: window/world on the calling goroutine, framegraph execution on
// a dedicated render-thread goroutine.
type Application struct {
	window   wsi.Window
	renderer *render.Renderer
	world    WorldStepper
}

// New opens window (with the title/extent from opts) and initializes a
// Renderer against it. build populates a fresh framegraph registry on every
// Run loop tick (and inline on the render thread when a rebake finds no new
// registry); world may be nil if the caller has no per-frame simulation step.
func New(window wsi.Window, newInstance render.InstanceFactory, build render.GraphBuilder, world WorldStepper, opts ...Option) (*Application, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if err := window.Open(o.WindowTitle, o.WindowWidth, o.WindowHeight); err != nil {
		return nil, fmt.Errorf("engine: open window: %w", err)
	}

	renderer, err := render.New(newInstance, window, o.BufferingCount, o.PresentMode, build)
	if err != nil {
		window.Close()
		return nil, fmt.Errorf("engine: initialize renderer: %w", err)
	}

	return &Application{window: window, renderer: renderer, world: world}, nil
}

// RequestRebuild marks the framegraph stale without waiting for the next
// Run loop tick; the render thread rebakes it (using the registry
// RenderFrame populated since the last bake, or by re-invoking the
// GraphBuilder inline if there is none) before the next frame executes.
func (a *Application) RequestRebuild() { a.renderer.RequestRebuild() }

// Renderer exposes the underlying Renderer for callers that need direct GPU
// access (e.g. uploading a supplemental renderer's vertex data).
func (a *Application) Renderer() *render.Renderer { return a.renderer }

// Run starts the render thread and pumps the window's event loop on the
// calling goroutine until the window is closed or ctx is canceled. Each
// iteration polls window events, steps the world, then calls
// Renderer.RenderFrame to repopulate the framegraph registry and flag it
// for rebake, matching the per-tick build_frame/rebuild_graph handoff.
// Run then joins the render thread and waits for the device to go idle.
func (a *Application) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	var renderErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		renderErr = a.renderer.ThreadLoop(ctx)
	}()

	lastTick := time.Now()
	for !a.window.ShouldClose() {
		select {
		case <-ctx.Done():
			goto stop
		default:
		}

		a.window.PollEvents()

		now := time.Now()
		dt := now.Sub(lastTick)
		lastTick = now
		if a.world != nil {
			a.world.Step(dt)
		}
		a.renderer.RenderFrame()
	}

stop:
	cancel()
	wg.Wait()
	if renderErr != nil {
		logging.Logger().Error("render thread exited with error", slog.Any("error", renderErr))
	}
	return renderErr
}

// Close tears down the renderer and the window, in that order.
func (a *Application) Close() {
	a.renderer.Destroy()
	a.window.Close()
}
