package scene

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-refract/common"
	"github.com/Carmen-Shannon/oxy-refract/config"
	"github.com/Carmen-Shannon/oxy-refract/engine/camera"
	"github.com/Carmen-Shannon/oxy-refract/engine/environment"
	"github.com/Carmen-Shannon/oxy-refract/engine/geometry"
	"github.com/Carmen-Shannon/oxy-refract/engine/model"
	"github.com/Carmen-Shannon/oxy-refract/engine/renderer/animator"
	"github.com/Carmen-Shannon/oxy-refract/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-refract/engine/text"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	sphereRadius = 1
	shellRadius  = 1.001
	sphereDetail = 8

	backgroundDepth       = -20
	backgroundCoverFactor = 2

	// titleLineSpacing is the vertical distance between title lines; the first line sits one spacing above the group origin.
	titleLineSpacing = 2.5
	titleIndent      = -4
)

// demoAssets holds everything prepared off the render goroutine before the graph is composed.
type demoAssets struct {
	sphere     *geometry.Mesh
	shell      *geometry.Mesh
	labels     []*text.Label
	env        *environment.Map
	background *common.TextureStagingData
}

// sphereGroup describes one orbiting group of instanced spheres.
type sphereGroup struct {
	name     string
	material material.Material
}

// ComposeDemo prepares the demo's assets and builds its scene graph: four orbiting sphere groups,
// one of them refractive, a three line title with twelve copies facing it from an icosahedron,
// the background plane, three spot lights and the three layered cameras. The result still has to
// be built against a renderer.
//
// Parameters:
//   - cfg: the validated configuration
//
// Returns:
//   - Scene: the composed scene
//   - error: an error if an asset cannot be loaded or prepared
func ComposeDemo(cfg *config.Config) (Scene, error) {
	assets, err := prepareDemoAssets(cfg)
	if err != nil {
		return nil, err
	}
	return composeDemo(cfg, assets)
}

// prepareDemoAssets generates meshes, rasterises the title and decodes images on a worker pool.
func prepareDemoAssets(cfg *config.Config) (*demoAssets, error) {
	workers := cfg.Scene.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	pool := worker.NewDynamicWorkerPool(workers, 8, time.Second)
	defer pool.Stop()

	var (
		assets demoAssets
		mu     sync.Mutex
		errs   []error
		wg     sync.WaitGroup
	)
	submit := func(id int, name string, do func() error) {
		wg.Add(1)
		pool.SubmitTask(worker.Task{
			ID:      id,
			Payload: name,
			Do: func() (any, error) {
				defer wg.Done()
				if err := do(); err != nil {
					mu.Lock()
					errs = append(errs, fmt.Errorf("%s: %w", name, err))
					mu.Unlock()
					return nil, err
				}
				return nil, nil
			},
		})
	}

	submit(0, "sphere mesh", func() error {
		assets.sphere = geometry.Octahedron(sphereRadius, sphereDetail)
		return nil
	})
	submit(1, "shell mesh", func() error {
		assets.shell = geometry.Octahedron(shellRadius, sphereDetail)
		return nil
	})
	submit(2, "title", func() error {
		labels, err := rasterizeTitle(cfg)
		assets.labels = labels
		return err
	})
	submit(3, "environment", func() error {
		if cfg.Assets.Environment == "" {
			assets.env = environment.Procedural(0)
			return nil
		}
		env, err := environment.Load(cfg.Assets.Environment, cfg.Assets.MaxTextureSize)
		assets.env = env
		return err
	})
	submit(4, "background", func() error {
		if cfg.Assets.Background == "" {
			return nil
		}
		img, err := common.DecodeImageFile(cfg.Assets.Background, cfg.Assets.MaxTextureSize)
		assets.background = img
		return err
	})
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("prepare demo assets: %w", err)
	}
	if assets.background == nil {
		base := assets.env.Levels[0]
		assets.background = &base
	}
	return &assets, nil
}

func rasterizeTitle(cfg *config.Config) ([]*text.Label, error) {
	opts := []text.RasterizerBuilderOption{text.WithGlyphSize(float32(cfg.Scene.GlyphSize))}
	if cfg.Assets.Font != "" {
		data, err := os.ReadFile(cfg.Assets.Font)
		if err != nil {
			return nil, fmt.Errorf("read font: %w", err)
		}
		opts = append(opts, text.WithFontData(data))
	}
	r, err := text.NewRasterizer(opts...)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	labels := make([]*text.Label, 0, len(cfg.Scene.Title))
	for _, line := range cfg.Scene.Title {
		label, err := r.Rasterize(line)
		if err != nil {
			return nil, err
		}
		labels = append(labels, label)
	}
	return labels, nil
}

func composeDemo(cfg *config.Config, assets *demoAssets) (Scene, error) {
	pos := cfg.CameraPosition()
	aspect := float32(cfg.Window.Width) / float32(cfg.Window.Height)
	fov := mgl32.DegToRad(float32(cfg.Camera.Fov))
	newCamera := func(layer int) camera.Camera {
		return camera.NewCamera(
			camera.WithPosition(pos[0], pos[1], pos[2]),
			camera.WithFov(fov),
			camera.WithAspect(aspect),
			camera.WithClip(float32(cfg.Camera.Near), float32(cfg.Camera.Far)),
			camera.WithLayers(camera.LayerMask(layer)),
		)
	}
	mainCam := newCamera(camera.LayerMain)
	clearColor := cfg.ClearColorLinear()
	passes := DefaultPasses(
		mainCam,
		newCamera(camera.LayerEnvironment),
		newCamera(camera.LayerBackface),
		wgpu.Color{R: float64(clearColor[0]), G: float64(clearColor[1]), B: float64(clearColor[2]), A: 1},
	)

	lights, err := cfg.SpotLights()
	if err != nil {
		return nil, err
	}

	seed := cfg.Scene.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	root := NewGroup("root", WithPosition(-3, -1, 0))
	spheres := NewGroup("spheres", WithPosition(2, 0, 0), WithRotation(2*math.Pi/8, math.Pi/8, -math.Pi/8))
	root.AddChild(spheres)

	animators, err := composeSpheres(spheres, cfg, assets, rng)
	if err != nil {
		return nil, err
	}

	title, err := composeTitle("title", assets.labels, nil, camera.LayerMain)
	if err != nil {
		return nil, err
	}
	root.AddChild(title)

	copies := NewGroup("title_copies")
	root.AddChild(copies)
	for i, v := range geometry.Icosahedron(float32(cfg.Scene.CopyRadius), 0).Vertices() {
		c, err := composeTitle(fmt.Sprintf("title_copy_%d", i), assets.labels, title, camera.LayerEnvironment)
		if err != nil {
			return nil, err
		}
		copies.AddChild(c)
		c.SetPosition(v.X(), v.Y(), v.Z())
		c.LookAt(mgl32.Vec3{})
	}

	bgModel := model.FromMesh("background", geometry.Plane(1, 1))
	bgMat := material.NewMaterial(material.KindUnlit, material.WithName("background"))
	bg := NewDrawable("background", bgModel, bgMat, 1)
	bg.Texture = assets.background
	background := NewMesh("background", bg, WithPosition(0, 0, backgroundDepth), WithLayers(camera.LayerEnvironment))

	top := NewGroup("demo", WithChildren(background, root))

	s := NewScene("demo",
		WithRoot(top),
		WithPasses(passes...),
		WithLights(lights...),
		WithExposure(float32(cfg.Renderer.Exposure)),
		WithEnvironment(assets.env),
		WithAnimators(animators...),
	)

	texW, texH := float32(assets.background.Width), float32(assets.background.Height)
	distance := mgl32.Vec3(pos).Len()
	coverBackground := func(width, height int) {
		vw, vh := common.ViewportAtDistance(fov, float32(width)/float32(height), distance)
		sx, sy := common.AspectCover(vw, vh, texW, texH, backgroundCoverFactor)
		background.SetScale(sx, sy, 1)
	}
	coverBackground(cfg.Window.Width, cfg.Window.Height)
	s.OnResize(coverBackground)

	return s, nil
}

// composeSpheres adds the four orbiting groups and returns their animators. The refraction group
// also draws its spheres into the backface capture and covers them with a translucent shell, all
// three buffers driven by one animator.
func composeSpheres(parent Node, cfg *config.Config, assets *demoAssets, rng *rand.Rand) ([]animator.OrbitAnimator, error) {
	n := cfg.Scene.Instances
	envIntensity := float32(cfg.Scene.EnvIntensity)
	color := func(name string, alpha float32) ([4]float32, error) {
		c, err := config.ParseColor(name)
		if err != nil {
			return [4]float32{}, err
		}
		lin := config.SRGBToLinear(c)
		return [4]float32{lin[0], lin[1], lin[2], alpha}, nil
	}
	black, err := color("black", 1)
	if err != nil {
		return nil, err
	}
	gold, err := color("gold", 1)
	if err != nil {
		return nil, err
	}
	gray, err := color("gray", 1)
	if err != nil {
		return nil, err
	}
	white, err := color("white", 0.3)
	if err != nil {
		return nil, err
	}

	groups := []sphereGroup{
		{name: "black", material: material.NewMaterial(material.KindPhysical,
			material.WithName("black"), material.WithBaseColor(black),
			material.WithMetalness(1), material.WithRoughness(0.2), material.WithClearcoat(1, 0),
			material.WithEnvIntensity(envIntensity))},
		{name: "gold", material: material.NewMaterial(material.KindPhysical,
			material.WithName("gold"), material.WithBaseColor(gold),
			material.WithMetalness(0.4), material.WithRoughness(1), material.WithTransmission(0.9),
			material.WithTransparent(true), material.WithToneMapped(false),
			material.WithEnvIntensity(envIntensity))},
		{name: "gray", material: material.NewMaterial(material.KindPhysical,
			material.WithName("gray"), material.WithBaseColor(gray),
			material.WithMetalness(0.2), material.WithRoughness(0.8),
			material.WithEnvIntensity(envIntensity))},
		{name: "refraction", material: material.NewMaterial(material.KindRefraction, material.WithName("refraction"))},
	}

	sphereModel := model.FromMesh("sphere", assets.sphere)
	animators := make([]animator.OrbitAnimator, 0, len(groups))
	for _, g := range groups {
		params := animator.NewInstanceParams(n, rng)
		primary := NewDrawable("spheres_"+g.name, sphereModel, g.material, n)
		parent.AddChild(NewMesh("spheres_"+g.name, primary))
		targets := []*animator.InstanceBuffer{primary.Instances}

		if g.material.Kind() == material.KindRefraction {
			backfaceMat := material.NewMaterial(material.KindBackface, material.WithName("backface"))
			backface := NewDrawable("spheres_backface", sphereModel, backfaceMat, n)
			parent.AddChild(NewMesh("spheres_backface", backface, WithLayers(camera.LayerBackface)))

			shellMat := material.NewMaterial(material.KindPhysical,
				material.WithName("shell"), material.WithBaseColor(white),
				material.WithMetalness(1), material.WithRoughness(0), material.WithClearcoat(1, 0),
				material.WithTransparent(true), material.WithEnvIntensity(envIntensity))
			shell := NewDrawable("spheres_shell", model.FromMesh("shell", assets.shell), shellMat, n)
			parent.AddChild(NewMesh("spheres_shell", shell))

			targets = append(targets, backface.Instances, shell.Instances)
		}

		animators = append(animators, animator.NewOrbitAnimator(params, animator.WithTargets(targets...)))
	}
	return animators, nil
}

// composeTitle builds a group with one textured quad per label, each quad placed so that its
// baseline starts at the line's anchor. A source title shares its models, materials and textures
// with the new group.
func composeTitle(name string, labels []*text.Label, source Node, layer int) (Node, error) {
	group := NewGroup(name)
	var sourceLines []Node
	if source != nil {
		sourceLines = source.Children()
		if len(sourceLines) != len(labels) {
			return nil, fmt.Errorf("title %q: source has %d lines, want %d", name, len(sourceLines), len(labels))
		}
	}

	for i, label := range labels {
		var d *Drawable
		lineName := fmt.Sprintf("%s_line_%d", name, i)
		if source != nil {
			sd := sourceLines[i].Drawable()
			d = NewDrawable(lineName, sd.Model, sd.Material, 1)
			d.Texture = sd.Texture
		} else {
			mdl := model.FromMesh(lineName, geometry.Plane(label.Width, label.Height))
			mat := material.NewMaterial(material.KindUnlit,
				material.WithName(lineName),
				material.WithToneMapped(false),
				material.WithTransparent(true),
				material.WithAlphaTest(0.02),
			)
			d = NewDrawable(lineName, mdl, mat, 1)
			d.Texture = label.Image
		}

		y := titleLineSpacing * float32(1-i)
		group.AddChild(NewMesh(lineName, d,
			WithPosition(titleIndent+label.Width/2, y+label.Height/2-label.Baseline, 0),
			WithLayers(layer),
		))
	}
	return group, nil
}
