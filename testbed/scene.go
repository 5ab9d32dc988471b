package testbed

import (
	"fmt"
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/anima-buffers/engine"
	"github.com/spaghettifunk/anima-buffers/engine/core"
	"github.com/spaghettifunk/anima-buffers/engine/math"
	"github.com/spaghettifunk/anima-buffers/engine/renderer"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/buffer"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/instancing"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/mesh"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/metadata"
)

const gridSpacing = 2.5

// palette of the cube materials, cycled across the grid.
var palette = []mgl32.Vec4{
	{0.9, 0.2, 0.2, 1},
	{0.2, 0.9, 0.2, 1},
	{0.2, 0.2, 0.9, 1},
	{0.9, 0.9, 0.2, 1},
}

type TestScene struct {
	*engine.Game
}

type sceneState struct {
	gridSize int
	elapsed  float64

	instancing *instancing.ShaderInstancing
	// Parent of every object in the scene.
	root *math.Transform

	// A grid of cubes drawn with the variant descriptor.
	cube       *mesh.MeshBuffer
	cubeData   buffer.VertexBuffer
	cubeWorld  buffer.VertexBuffer
	cubes      []instancing.RenderEntity
	transforms []*math.Transform
	materials  []*metadata.Material
	cubeDrawn  uint64
	floor      *mesh.MeshBuffer
	floorSH    buffer.VertexBuffer
	floorWorld buffer.VertexBuffer
	tiles      []instancing.RenderEntity
}

func NewTestScene(gridSize int) *TestScene {
	if gridSize < 1 {
		gridSize = 1
	}
	ts := &TestScene{
		Game: &engine.Game{
			State: &sceneState{gridSize: gridSize},
		},
	}
	ts.FnInitialize = ts.Initialize
	ts.FnUpdate = ts.Update
	ts.FnRender = ts.Render
	ts.FnShutdown = ts.Shutdown
	return ts
}

func (s *TestScene) state() *sceneState {
	return s.State.(*sceneState)
}

// CubesDrawn counts the cube instances submitted so far.
func (s *TestScene) CubesDrawn() uint64 {
	return s.state().cubeDrawn
}

func (s *TestScene) Initialize(e *engine.Engine) error {
	core.LogDebug("TestScene Initialize fn....")
	state := s.state()

	si := e.Instancing("standard")
	if si == nil {
		return fmt.Errorf("testbed needs a \"standard\" instancing setup")
	}
	state.instancing = si

	state.cube = e.Geometry().CreateCube(1, 1, 1)
	state.cubeData = si.CreateInstancingBuffer()
	state.cubeWorld = si.CreateTransformBuffer()
	if !si.ApplyInstancing(state.cube, state.cubeData, state.cubeWorld) {
		return fmt.Errorf("cube does not support %s instancing", si.Variant().Name())
	}

	extent := float32(state.gridSize) * gridSpacing
	state.floor = e.Geometry().CreatePlane(extent, extent, 4, 4, 4, 4)
	state.floorSH = si.CreateIndirectLightingBuffer()
	state.floorWorld = si.CreateWorldTransformBuffer()
	if !si.ApplyInstancingForRenderLighting(state.floor, state.floorSH, state.floorWorld) {
		return fmt.Errorf("floor does not support render lighting instancing")
	}
	e.Track(state.cube, state.floor)

	materials := make([]*metadata.Material, len(palette))
	for i, c := range palette {
		m := metadata.NewMaterial(fmt.Sprintf("cube_%d", i), "standard_instancing")
		m.SetParam(instancing.ParamColor, c)
		m.SetParam(instancing.ParamUVTransform, mgl32.Vec4{1, 1, 0, 0})
		materials[i] = m
	}

	state.root = math.TransformCreate()
	n := state.gridSize * state.gridSize
	state.cubes = make([]instancing.RenderEntity, n)
	state.transforms = make([]*math.Transform, n)
	state.materials = make([]*metadata.Material, n)
	for i := range state.cubes {
		state.transforms[i] = math.TransformCreate()
		state.transforms[i].Parent = state.root
		state.materials[i] = materials[i%len(materials)]
		state.cubes[i].Lighting = instancing.IndirectLighting{
			Type:    instancing.IndirectLightingAmbient,
			Ambient: mgl32.Vec4{0.3, 0.3, 0.35, 1},
		}
	}

	// The floor lies in XZ, one unit under the grid.
	floor := math.TransformFromPositionRotation(
		mgl32.Vec3{0, -1, 0},
		mgl32.QuatRotate(-mgl32.DegToRad(90), mgl32.Vec3{1, 0, 0}),
	)
	floor.Parent = state.root
	state.tiles = []instancing.RenderEntity{{
		World: floor.GetWorld(),
		Lighting: instancing.IndirectLighting{
			Type: instancing.IndirectLightingSH4,
			SH:   [4]mgl32.Vec3{{0.4, 0.4, 0.45}, {0, 0.1, 0}, {0, 0, 0}, {0, 0, 0}},
		},
	}}
	s.Update(0)

	core.LogInfo("testbed scene with %d cubes ready", n)
	return nil
}

// Update bobs every cube on its own phase and spins it around Y.
func (s *TestScene) Update(deltaTime float64) error {
	state := s.state()
	state.elapsed += deltaTime

	half := float32(state.gridSize-1) * gridSpacing * 0.5
	for i, t := range state.transforms {
		x := float32(i%state.gridSize)*gridSpacing - half
		z := float32(i/state.gridSize)*gridSpacing - half
		phase := state.elapsed + float64(i)*0.25
		y := float32(gomath.Sin(phase)) * 0.5
		t.SetPosition(mgl32.Vec3{x, y, z})
		t.SetRotation(mgl32.QuatRotate(float32(phase), mgl32.Vec3{0, 1, 0}))
		state.cubes[i].World = t.GetWorld()
	}
	return nil
}

func (s *TestScene) Render(r *renderer.Renderer, deltaTime float64) error {
	state := s.state()
	n := len(state.cubes)
	if state.instancing.BatchInstancing(state.cubeData, state.materials, state.cubes, n) &&
		instancing.BatchTransformAndLighting(state.cubeWorld, state.cubes, n) {
		if err := r.DrawInstanced(state.cube, uint32(n)); err != nil {
			return err
		}
		state.cubeDrawn += uint64(n)
	}

	if instancing.BatchIndirectLighting(state.floorSH, state.tiles, len(state.tiles)) &&
		instancing.BatchTransform(state.floorWorld, state.tiles, len(state.tiles)) {
		return r.DrawInstanced(state.floor, uint32(len(state.tiles)))
	}
	return nil
}

func (s *TestScene) Shutdown() error {
	state := s.state()
	if state.instancing == nil {
		return nil
	}
	state.instancing.RemoveInstancing(state.cube)
	state.instancing.RemoveInstancing(state.floor)
	for _, b := range []buffer.VertexBuffer{state.cubeData, state.cubeWorld, state.floorSH, state.floorWorld} {
		b.Release()
	}
	for _, mb := range []*mesh.MeshBuffer{state.cube, state.floor} {
		for slot := 0; slot < mb.VertexBufferCount(); slot++ {
			mb.VertexBuffer(slot).Release()
		}
		mb.IndexBuffer().Release()
	}
	core.LogDebug("testbed scene released its hardware buffers")
	return nil
}
