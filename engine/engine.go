package engine

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-refract/config"
	"github.com/Carmen-Shannon/oxy-refract/engine/profiler"
	"github.com/Carmen-Shannon/oxy-refract/engine/renderer"
	"github.com/Carmen-Shannon/oxy-refract/engine/scene"
	"github.com/Carmen-Shannon/oxy-refract/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// engine implements the Engine interface.
// Coordinates the render goroutine with the window thread.
type engine struct {
	mu *sync.Mutex

	wg sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window   window.Window
	renderer renderer.Renderer
	scene    scene.Scene

	profiler         *profiler.Profiler
	profilingEnabled bool

	renderCallback   func(deltaTime float32)
	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped

	now   func() time.Time
	start time.Time
	last  time.Time

	// pending state handed over from the window thread and the config watcher
	pendingResize *[2]int
	pendingConfig *config.Config
	minimized     bool

	err error
}

// Engine is the main entry point for the engine.
// It owns the frame loop: advance the clock, animate and upload, record the offscreen passes and the
// main pass, then present. Every GPU call happens on the render goroutine; resizes and configuration
// reloads from other goroutines are queued and applied at the start of the next frame.
type Engine interface {
	// Window returns the underlying window, or nil when running headless.
	Window() window.Window

	// Renderer returns the renderer frames are recorded with.
	Renderer() renderer.Renderer

	// Scene returns the scene drawn each frame.
	Scene() scene.Scene

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetRenderCallback registers the function called after each presented frame.
	//
	// Parameters:
	//   - callback: function to call each render frame, receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Resize queues a surface resize, applied before the next frame. A zero dimension pauses
	// drawing until a non-zero size arrives.
	//
	// Parameters:
	//   - width, height: the new framebuffer size in pixels
	Resize(width, height int)

	// Apply queues the live tunables of a reloaded configuration: exposure, clear colour and lights.
	// Structural settings such as the instance count only take effect on restart.
	//
	// Parameters:
	//   - cfg: the validated configuration
	Apply(cfg *config.Config)

	// Run builds the scene, starts the render goroutine and pumps the window until it closes or
	// Quit is called. It releases the scene and renderer before returning.
	//
	// Returns:
	//   - error: an error if the scene cannot be built or the render goroutine panicked
	Run() error

	// Quit signals all engine goroutines to stop and shuts down the engine.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options.
// Options are applied directly to the engine struct via the option-builder pattern.
//
// Parameters:
//   - options: functional options for engine configuration (window, renderer, scene, profiling)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:          &sync.Mutex{},
		quitChannel: make(chan struct{}),
		wg:          sync.WaitGroup{},
		now:         time.Now,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.profiler == nil {
		e.profiler = profiler.NewProfiler()
	}

	if e.window != nil {
		e.window.SetResizeCallback(e.Resize)
		e.window.SetUpdateCallback(func() {
			select {
			case <-e.quitChannel:
				e.window.RequestClose()
			default:
			}
		})
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) Run() error {
	if e.renderer == nil || e.scene == nil {
		return errors.New("engine: run requires a renderer and a scene")
	}
	if err := e.scene.Build(e.renderer); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	e.start = e.now()
	e.last = e.start
	log.Printf("[Engine] running scene %q with %d passes", e.scene.Name(), len(e.scene.Passes()))

	e.handle()
	if e.window != nil {
		e.window.ProcessMessages()
		e.signalQuit()
	}
	e.wg.Wait()

	e.scene.Release()
	e.renderer.Release()
	log.Printf("[Engine] stopped")

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// handle launches the render goroutine, tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.wg.Add(1)
	go e.handleRender()
}

// handleRender runs the uncapped (or frame-limited) render loop in its own goroutine.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Engine] render goroutine recovered from panic: %v", r)
			e.mu.Lock()
			e.err = fmt.Errorf("engine: render panic: %v", r)
			e.mu.Unlock()
			e.signalQuit()
		}
	}()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
			frameStart := e.now()
			if err := e.frame(frameStart); err != nil {
				log.Printf("[Engine] frame: %v", err)
			}

			// Frame rate limiting
			if e.renderFrameLimit > 0 {
				if remaining := e.renderFrameLimit - e.now().Sub(frameStart); remaining > 0 {
					time.Sleep(remaining)
				}
			} else if e.minimized {
				time.Sleep(50 * time.Millisecond)
			}
		}
	}
}

// frame records and presents one frame at the given time. Skipped frames while minimised, or when the
// surface is not ready, are not errors.
func (e *engine) frame(now time.Time) error {
	e.applyPending()
	if e.minimized {
		return nil
	}

	dt := float32(now.Sub(e.last).Seconds())
	e.last = now
	e.scene.Update(now.Sub(e.start).Seconds())

	if e.renderer.BeginFrame() != nil {
		return nil
	}
	var errs []error
	for i := range e.scene.Passes() {
		if err := e.scene.Draw(i); err != nil {
			errs = append(errs, err)
			break
		}
	}
	e.renderer.EndFrame()
	e.renderer.Present()

	if e.renderCallback != nil {
		e.renderCallback(dt)
	}
	if e.profilingEnabled && e.profiler != nil {
		e.profiler.Tick()
	}
	return errors.Join(errs...)
}

// applyPending applies the resize and configuration queued since the last frame.
func (e *engine) applyPending() {
	e.mu.Lock()
	size := e.pendingResize
	cfg := e.pendingConfig
	e.pendingResize = nil
	e.pendingConfig = nil
	e.mu.Unlock()

	if size != nil {
		w, h := size[0], size[1]
		e.minimized = w <= 0 || h <= 0
		if !e.minimized {
			e.renderer.Resize(w, h)
			if err := e.scene.Resize(w, h); err != nil {
				log.Printf("[Engine] resize to %dx%d: %v", w, h, err)
			}
		}
	}

	if cfg != nil {
		e.scene.SetExposure(float32(cfg.Renderer.Exposure))
		c := cfg.ClearColorLinear()
		e.renderer.SetClearColor(wgpu.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2]), A: 1})
		lights, err := cfg.SpotLights()
		if err != nil {
			log.Printf("[Engine] ignoring lights: %v", err)
		} else {
			e.scene.SetLights(lights)
		}
		log.Printf("[Engine] applied configuration: exposure %.2f, %d lights", cfg.Renderer.Exposure, len(lights))
	}
}

func (e *engine) Resize(width, height int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pendingResize = &[2]int{width, height}
}

func (e *engine) Apply(cfg *config.Config) {
	if cfg == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pendingConfig = cfg
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetRenderCallback registers the function called each render frame.
func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	e.renderFrameLimit = frameDuration(fps)
}

func frameDuration(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}
