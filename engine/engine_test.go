package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/spaghettifunk/anima-buffers/engine/config"
	"github.com/spaghettifunk/anima-buffers/engine/core"
	"github.com/spaghettifunk/anima-buffers/engine/renderer"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/mesh"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/null"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A standard descriptor reduced to positions only: 12 bytes per vertex.
const positionsOnlyStandard = `
[[descriptor]]
name = "standard"
vertex_type = "standard"

[[descriptor.attribute]]
name = "inPosition"
semantic = "position"
type = "float"
count = 3
`

const billboardLayout = `
[[descriptor]]
name = "billboard"

[[descriptor.attribute]]
name = "inPosition"
semantic = "position"
type = "float"
count = 2
`

func newEngine(t *testing.T, cfg *config.Config) *Engine {
	t.Helper()
	e, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	t.Cleanup(func() { _ = e.Shutdown() })
	return e
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Renderer.Backend = "metal"
	_, err := New(cfg)
	assert.ErrorIs(t, err, core.ErrUnknownBackend)

	cfg.Renderer.Backend = ""
	_, err = New(cfg)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestInitializeBuildsInstancing(t *testing.T) {
	e := newEngine(t, nil)
	assert.Nil(t, e.Assets())

	std := e.Instancing("standard")
	require.NotNil(t, std)
	require.NotNil(t, std.InstancedDescriptor())
	assert.Equal(t, uint32(32), std.InstancedDescriptor().VertexSize(1))
	assert.Equal(t, uint32(48), std.LightingDescriptor().VertexSize(1))

	tan := e.Instancing("tangent")
	require.NotNil(t, tan)
	assert.Equal(t, uint32(48), tan.InstancedDescriptor().VertexSize(1))
	assert.Nil(t, e.Instancing("missing"))

	assert.Error(t, e.Initialize(), "second initialize")
}

func TestFrameDrawsThroughBackend(t *testing.T) {
	e := newEngine(t, nil)
	cube := e.Geometry().CreateCube(1, 1, 1)

	for i := 0; i < 3; i++ {
		_, err := e.Frame(func(r *renderer.Renderer) error {
			return r.DrawMeshBuffer(cube)
		})
		require.NoError(t, err)
	}
	assert.Equal(t, uint64(3), e.Renderer().FrameNumber())

	nb := e.Backend().(*null.Backend)
	totals := nb.Totals()
	assert.Equal(t, uint64(3), totals.Draws)
	assert.Equal(t, 2, nb.LiveBuffers(), "one vertex and one index buffer")

	require.NoError(t, e.Shutdown())
	_, err := e.Frame(func(*renderer.Renderer) error { return nil })
	assert.ErrorIs(t, err, core.ErrBackendNotReady)
}

func TestRunCallsGameHooks(t *testing.T) {
	cfg := config.Default()
	e, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())

	var initialized, updates, renders, shutdowns int
	game := &Game{
		FnInitialize: func(*Engine) error { initialized++; return nil },
		FnUpdate:     func(float64) error { updates++; return nil },
		FnRender:     func(*renderer.Renderer, float64) error { renders++; return nil },
		FnShutdown:   func() error { shutdowns++; return nil },
	}
	require.NoError(t, e.Run(game, 5))
	assert.Equal(t, 1, initialized)
	assert.Equal(t, 5, updates)
	assert.Equal(t, 5, renders)
	assert.Equal(t, 1, shutdowns)
	assert.Equal(t, uint64(5), e.Renderer().FrameNumber())
}

func TestRunStops(t *testing.T) {
	e := newEngine(t, nil)
	game := &Game{
		FnUpdate: func(float64) error {
			if e.Renderer().FrameNumber() == 2 {
				e.Stop()
			}
			return nil
		},
	}
	require.NoError(t, e.Run(game, 0))
	assert.Equal(t, uint64(3), e.Renderer().FrameNumber())
}

func TestAssetDirLayoutsLoadAtStartup(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "billboard.layout.toml"), []byte(billboardLayout), 0o644))

	cfg := config.Default()
	cfg.Assets.Dir = dir
	e := newEngine(t, cfg)
	require.NotNil(t, e.Assets())
	require.NotNil(t, e.Catalog().Get("billboard"))
	assert.Equal(t, uint32(8), e.Catalog().Get("billboard").VertexSize(0))
}

func TestPollLayoutChangesRevalidatesTrackedBuffers(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Assets.Dir = dir
	cfg.Assets.Watch = true
	e := newEngine(t, cfg)

	cube := e.Geometry().CreateCube(1, 1, 1)
	std := e.Instancing("standard")
	instanced := e.Geometry().CreateCube(1, 1, 1)
	require.True(t, std.ApplyInstancing(instanced, std.CreateInstancingBuffer(), std.CreateTransformBuffer()))
	e.Track(cube, instanced)
	require.Equal(t, mesh.StateCompatible, cube.State())
	require.Equal(t, mesh.StateCompatible, instanced.State())

	applied, err := e.PollLayoutChanges()
	require.NoError(t, err)
	assert.Empty(t, applied)

	// Written aside and renamed so the watcher never sees a partial file.
	tmp := filepath.Join(dir, "standard.tmp")
	path := filepath.Join(dir, "standard.layout.toml")
	require.NoError(t, os.WriteFile(tmp, []byte(positionsOnlyStandard), 0o644))
	require.NoError(t, os.Rename(tmp, path))

	assert.Eventually(t, func() bool {
		applied, err := e.PollLayoutChanges()
		return err == nil && len(applied) > 0
	}, 5*time.Second, 20*time.Millisecond)

	assert.Equal(t, uint32(12), e.Catalog().Get("standard").VertexSize(0))
	assert.Equal(t, mesh.StateIncompatible, cube.State())
	assert.Equal(t, uint32(12), std.InstancedDescriptor().VertexSize(0))
	assert.Equal(t, mesh.StateIncompatible, instanced.State())

	_, err = e.Frame(func(r *renderer.Renderer) error { return r.DrawMeshBuffer(cube) })
	require.NoError(t, err)
	assert.Equal(t, uint64(1), e.Renderer().SkippedDraws())
}

func writeTriangle(t *testing.T, path string) {
	t.Helper()
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name: "triangle",
		Primitives: []*gltf.Primitive{{
			Attributes: gltf.PrimitiveAttributes{gltf.POSITION: pos},
			Mode:       gltf.PrimitiveTriangles,
		}},
	})
	require.NoError(t, gltf.SaveBinary(doc, path))
}

func TestLoadModelAsync(t *testing.T) {
	e := newEngine(t, nil)
	path := filepath.Join(t.TempDir(), "triangle.glb")
	writeTriangle(t, path)

	var (
		loaded *mesh.Mesh
		errs   []error
		calls  int
	)
	done := func(m *mesh.Mesh, err error) {
		calls++
		if err != nil {
			errs = append(errs, err)
			return
		}
		loaded = m
	}
	require.NoError(t, e.LoadModelAsync(path, done))
	require.NoError(t, e.LoadModelAsync(filepath.Join(t.TempDir(), "missing.glb"), done))

	require.Eventually(t, func() bool {
		return e.Update() == nil && calls == 2
	}, 5*time.Second, 10*time.Millisecond)

	require.Len(t, errs, 1)
	require.NotNil(t, loaded)
	assert.Equal(t, "triangle.glb", loaded.Name)
	require.Equal(t, 1, loaded.MeshBufferCount())
	assert.True(t, loaded.MeshBuffer(0).Drawable())

	require.NoError(t, e.Shutdown())
	assert.Error(t, e.LoadModelAsync(path, done))
}

func TestLoadModelFromAssetDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "triangle.glb")
	writeTriangle(t, path)

	cfg := config.Default()
	cfg.Assets.Dir = dir
	e := newEngine(t, cfg)

	m, err := e.LoadModel(path)
	require.NoError(t, err)
	assert.Equal(t, 1, m.MeshBufferCount())
	assert.Equal(t, 3, m.MeshBuffer(0).VertexCount())
}
