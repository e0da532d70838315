// Command refract-demo opens a window and renders the refraction demo: orbiting instanced spheres,
// one group refracting a captured environment, behind a title and its twelve reflected copies.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/Carmen-Shannon/oxy-refract/config"
	"github.com/Carmen-Shannon/oxy-refract/engine"
	"github.com/Carmen-Shannon/oxy-refract/engine/renderer"
	"github.com/Carmen-Shannon/oxy-refract/engine/scene"
	"github.com/Carmen-Shannon/oxy-refract/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

func main() {
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Printf("[Main] %v", err)
		os.Exit(1)
	}
}

// options are the command line settings that are not part of the configuration file.
type options struct {
	configPath string
	profile    bool
	watch      bool
	software   bool
}

// run parses args, loads the configuration and either prints it or runs the demo until the window closes.
func run(out io.Writer, args []string) error {
	fs := flag.NewFlagSet("refract-demo", flag.ContinueOnError)
	fs.SetOutput(out)
	var opts options
	fs.StringVar(&opts.configPath, "config", "", "configuration file (.hcl, .toml, .yaml or .yml)")
	seed := fs.Int64("seed", 0, "seed for the orbit parameters, 0 keeps the configured seed")
	fs.BoolVar(&opts.profile, "profile", false, "log frame rate and memory statistics every second")
	fs.BoolVar(&opts.watch, "watch", false, "apply exposure, clear colour and light edits to the config file while running")
	fs.BoolVar(&opts.software, "software", false, "force the fallback software adapter")
	printConfig := fs.String("print-config", "", "print the effective configuration as hcl, toml or yaml and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return err
		}
	}
	if *seed != 0 {
		cfg.Scene.Seed = *seed
	}

	if *printConfig != "" {
		data, err := cfg.Marshal(config.Format(strings.ToLower(*printConfig)))
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	}

	if opts.watch && opts.configPath == "" {
		return errors.New("-watch needs -config")
	}
	return runDemo(cfg, opts)
}

// runDemo composes the scene, opens the window and renderer, and runs the engine. Assets are
// prepared before the window opens so a missing file fails fast.
func runDemo(cfg *config.Config, opts options) error {
	s, err := scene.ComposeDemo(cfg)
	if err != nil {
		return err
	}

	w := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
	)
	defer w.Close()

	r := renderer.NewRenderer(renderer.BackendTypeWGPU, w, rendererOptions(cfg, opts.software)...)
	if width, height := r.SurfaceSize(); width > 0 && height > 0 {
		// high-DPI framebuffers differ from the requested window size
		if err := s.Resize(width, height); err != nil {
			return err
		}
	}

	eng := engine.NewEngine(
		engine.WithWindow(w),
		engine.WithRenderer(r),
		engine.WithScene(s),
		engine.WithProfiling(opts.profile),
	)

	if opts.watch {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			if err := config.Watch(ctx, opts.configPath, eng.Apply); err != nil {
				log.Printf("[Config] watch stopped: %v", err)
			}
		}()
	}

	return eng.Run()
}

// rendererOptions maps the renderer block of the configuration onto renderer builder options.
func rendererOptions(cfg *config.Config, software bool) []renderer.RendererBuilderOption {
	c := cfg.ClearColorLinear()
	return []renderer.RendererBuilderOption{
		renderer.WithPresentMode(presentMode(cfg.Renderer.PresentMode)),
		renderer.WithMSAA(renderer.MSAASampleCount(cfg.Renderer.MSAA)),
		renderer.WithClearColor(wgpu.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2]), A: 1}),
		renderer.WithForceSoftwareRenderer(software),
	}
}

func presentMode(mode string) renderer.PresentMode {
	if strings.EqualFold(mode, "uncapped") {
		return renderer.PresentModeUncapped
	}
	return renderer.PresentModeVSync
}
