package engine

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/qmuntal/gltf"
	"github.com/spaghettifunk/anima-buffers/engine/assets"
	"github.com/spaghettifunk/anima-buffers/engine/assets/loaders"
	"github.com/spaghettifunk/anima-buffers/engine/config"
	"github.com/spaghettifunk/anima-buffers/engine/core"
	"github.com/spaghettifunk/anima-buffers/engine/renderer"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/descriptor"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/instancing"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/mesh"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/metadata"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/null"
	"github.com/spaghettifunk/anima-buffers/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

/**
 * @brief The context object wiring the descriptor catalog, the renderer and
 * its backend, the procedural geometry creator, the configured instancing
 * setups and, optionally, the asset manager.
 */
type Engine struct {
	currentStage Stage
	config       *config.Config

	catalog      *descriptor.Catalog
	backend      renderer.RendererBackend
	renderer     *renderer.Renderer
	geometry     *systems.GeometryCreator
	instancing   map[string]*instancing.ShaderInstancing
	assetManager *assets.AssetManager
	modelLoader  *loaders.GLTFLoader
	jobs         *systems.JobSystem

	// mesh buffers re-validated after a layout reload
	tracked []*mesh.MeshBuffer

	clock   *core.Clock
	metrics *core.FrameMetrics
	stop    atomic.Bool
}

// NewBackend creates a renderer backend by name.
func NewBackend(name string, queueSize int) (renderer.RendererBackend, error) {
	switch name {
	case "null":
		return null.NewWithQueueSize(queueSize), nil
	}
	return nil, fmt.Errorf("%w: %q", core.ErrUnknownBackend, name)
}

func New(cfg *config.Config) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	level, _ := cfg.Level()
	core.SetLogLevel(level)

	backend, err := NewBackend(cfg.Renderer.Backend, cfg.Renderer.UploadQueueSize)
	if err != nil {
		return nil, err
	}

	catalog := descriptor.NewCatalog()
	catalog.RegisterDefaults()

	e := &Engine{
		currentStage: EngineStageUninitialized,
		config:       cfg,
		catalog:      catalog,
		backend:      backend,
		renderer:     renderer.New(backend),
		geometry:     systems.NewGeometryCreator(catalog),
		instancing:   make(map[string]*instancing.ShaderInstancing, len(cfg.Instancing)),
		modelLoader:  loaders.NewGLTFLoader(catalog),
		clock:        core.NewClock(),
		metrics:      core.NewFrameMetrics(),
	}
	return e, nil
}

// Initialize loads the configured layouts and the ones found in the asset
// directory, then creates the instancing setups and starts the backend.
func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageUninitialized {
		return fmt.Errorf("engine already initialized")
	}

	for _, path := range e.config.Assets.Layouts {
		ds, err := e.catalog.LoadLayoutFile(path)
		if err != nil {
			return err
		}
		core.LogDebug("layout %s defined %d descriptors", path, len(ds))
	}

	jobs, err := systems.NewJobSystem(e.config.Assets.ImportWorkers, e.config.Assets.ImportWorkers*4)
	if err != nil {
		return err
	}
	e.jobs = jobs

	if e.config.Assets.Dir != "" {
		am, err := assets.NewAssetManager()
		if err != nil {
			return err
		}
		am.RegisterLoader(metadata.ResourceTypeLayout, loaders.NewLayoutLoader(e.catalog))
		am.RegisterLoader(metadata.ResourceTypeModel, e.modelLoader)
		if err := am.Initialize(e.config.Assets.Dir); err != nil {
			am.Shutdown()
			return err
		}
		for _, path := range am.Assets(metadata.ResourceTypeLayout) {
			if _, err := am.LoadAsset(path); err != nil {
				am.Shutdown()
				return err
			}
		}
		e.assetManager = am
	}

	for _, ic := range e.config.Instancing {
		r, err := ic.Resolve()
		if err != nil {
			return err
		}
		si, err := instancing.New(e.catalog, r.Variant, r.BaseType)
		if err != nil {
			return err
		}
		si.SetupDescriptorForMesh()
		si.SetupDescriptorForRenderLighting("")
		e.instancing[ic.Name] = si
	}

	if err := e.renderer.Initialize(); err != nil {
		return err
	}
	e.currentStage = EngineStageInitialized
	core.LogInfo("%s initialized on the %s backend", e.config.Name, e.backend.Name())
	return nil
}

func (e *Engine) Config() *config.Config {
	return e.config
}

func (e *Engine) Catalog() *descriptor.Catalog {
	return e.catalog
}

func (e *Engine) Renderer() *renderer.Renderer {
	return e.renderer
}

func (e *Engine) Backend() renderer.RendererBackend {
	return e.backend
}

func (e *Engine) Geometry() *systems.GeometryCreator {
	return e.geometry
}

// Assets is nil when no asset directory is configured.
func (e *Engine) Assets() *assets.AssetManager {
	return e.assetManager
}

func (e *Engine) Metrics() *core.FrameMetrics {
	return e.metrics
}

// Instancing returns the setup configured under name, or nil.
func (e *Engine) Instancing(name string) *instancing.ShaderInstancing {
	return e.instancing[name]
}

// Track registers mesh buffers whose compatibility is re-evaluated after a
// layout reload.
func (e *Engine) Track(mbs ...*mesh.MeshBuffer) {
	for _, mb := range mbs {
		if mb != nil {
			e.tracked = append(e.tracked, mb)
		}
	}
}

// LoadModel imports a glTF file and tracks its mesh buffers.
func (e *Engine) LoadModel(path string) (*mesh.Mesh, error) {
	var (
		m   *mesh.Mesh
		err error
	)
	if e.assetManager != nil {
		var res *metadata.Resource
		if res, err = e.assetManager.LoadAsset(path); err == nil {
			m, _ = res.Data.(*mesh.Mesh)
		}
	}
	if e.assetManager == nil || errors.Is(err, assets.ErrAssetNotFound) {
		m, err = e.modelLoader.LoadFile(path)
	}
	if err != nil {
		return nil, err
	}
	e.Track(m.MeshBuffers()...)
	return m, nil
}

// LoadModelAsync parses path on a worker. The import into mesh buffers and
// done run on the frame thread during a later Frame or Update call.
func (e *Engine) LoadModelAsync(path string, done func(*mesh.Mesh, error)) error {
	if e.jobs == nil {
		return core.ErrBackendNotReady
	}
	return e.jobs.Submit(systems.JobTask{
		Name: "import " + filepath.Base(path),
		Run: func() (interface{}, error) {
			return loaders.ReadDocument(path)
		},
		OnSuccess: func(result interface{}) {
			m, err := e.modelLoader.LoadDocument(result.(*gltf.Document), filepath.Base(path))
			if err == nil {
				e.Track(m.MeshBuffers()...)
			}
			done(m, err)
		},
		OnFailure: func(err error) {
			done(nil, err)
		},
	})
}

// Update collects finished background jobs, then applies layout changes.
// Frame calls it; call it directly when driving frames by hand.
func (e *Engine) Update() error {
	if e.jobs != nil {
		e.jobs.Update()
	}
	_, err := e.PollLayoutChanges()
	return err
}

// PollLayoutChanges applies the layout files changed on disk since the last
// call and returns their paths. It runs on the caller's goroutine, between
// frames; the watcher itself never touches descriptors.
func (e *Engine) PollLayoutChanges() ([]string, error) {
	if e.assetManager == nil || !e.config.Assets.Watch {
		return nil, nil
	}
	var (
		applied []string
		errs    []error
	)
	for {
		select {
		case c, ok := <-e.assetManager.Changes():
			if !ok {
				return applied, errors.Join(errs...)
			}
			if c.Type != metadata.ResourceTypeLayout || c.Removed {
				continue
			}
			if _, err := e.assetManager.LoadAsset(c.Path); err != nil {
				core.LogError("reloading layout %s: %s", c.Path, err)
				errs = append(errs, err)
				continue
			}
			core.LogInfo("layout %s reloaded", c.Path)
			applied = append(applied, c.Path)
		default:
			if len(applied) > 0 {
				e.refreshCompatibility()
			}
			return applied, errors.Join(errs...)
		}
	}
}

func (e *Engine) refreshCompatibility() {
	for _, si := range e.instancing {
		si.Rebuild()
	}
	for _, mb := range e.tracked {
		before := mb.State()
		mb.UpdateCompatibility()
		if after := mb.State(); after != before {
			core.LogInfo("mesh buffer %s -> %s after layout reload", before, after)
		}
	}
}

// Frame runs one frame: layout reloads, then fn between BeginScene and
// EndScene. It returns the frame time in seconds.
func (e *Engine) Frame(fn func(r *renderer.Renderer) error) (float64, error) {
	if e.currentStage == EngineStageInitialized {
		e.clock.Start()
		e.currentStage = EngineStageRunning
	}
	if e.currentStage != EngineStageRunning {
		return 0, core.ErrBackendNotReady
	}
	if err := e.Update(); err != nil {
		core.LogWarn("some layout reloads failed: %s", err)
	}

	e.clock.Update()
	start := e.clock.Elapsed()
	if err := e.renderer.BeginScene(); err != nil {
		return 0, err
	}
	drawErr := fn(e.renderer)
	if err := e.renderer.EndScene(); err != nil {
		return 0, err
	}
	e.clock.Update()
	delta := e.clock.Elapsed() - start
	e.metrics.Update(delta)
	return delta, drawErr
}

// Run drives game until maxFrames frames were rendered, or until Stop is
// called when maxFrames is zero, then shuts the engine down.
func (e *Engine) Run(game *Game, maxFrames int) error {
	if game.FnInitialize != nil {
		if err := game.FnInitialize(e); err != nil {
			core.LogError("game failed to initialize: %s", err)
			return errors.Join(err, e.Shutdown())
		}
	}

	var last float64
	for frame := 0; !e.stop.Load() && (maxFrames == 0 || frame < maxFrames); frame++ {
		e.clock.Update()
		now := e.clock.Elapsed()
		delta := now - last
		last = now

		if game.FnUpdate != nil {
			if err := game.FnUpdate(delta); err != nil {
				core.LogError("game update failed, shutting down: %s", err)
				return errors.Join(err, e.Shutdown())
			}
		}
		if _, err := e.Frame(func(r *renderer.Renderer) error {
			if game.FnRender == nil {
				return nil
			}
			return game.FnRender(r, delta)
		}); err != nil {
			core.LogError("render failed, shutting down: %s", err)
			return errors.Join(err, e.Shutdown())
		}
	}

	core.LogInfo("rendered %d frames, %d draws skipped, average frame %.3fms",
		e.renderer.FrameNumber(), e.renderer.SkippedDraws(), e.metrics.FrameTime())
	if game.FnShutdown != nil {
		if err := game.FnShutdown(); err != nil {
			core.LogError("game shutdown failed: %s", err)
		}
	}
	return e.Shutdown()
}

// Stop asks Run to return after the current frame. Safe from any goroutine.
func (e *Engine) Stop() {
	e.stop.Store(true)
}

func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageShuttingDown {
		return nil
	}
	e.currentStage = EngineStageShuttingDown
	e.clock.Stop()
	if e.jobs != nil {
		_ = e.jobs.Shutdown()
	}
	if e.assetManager != nil {
		e.assetManager.Shutdown()
	}
	return e.renderer.Shutdown()
}
