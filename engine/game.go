package engine

import (
	"github.com/spaghettifunk/anima-buffers/engine/renderer"
)

// Game holds the hooks Run calls. Every hook is optional.
type Game struct {
	State        interface{}
	FnInitialize Initialize
	FnUpdate     Update
	FnRender     Render
	FnShutdown   Shutdown
}

type Initialize func(e *Engine) error
type Update func(deltaTime float64) error
type Render func(r *renderer.Renderer, deltaTime float64) error
type Shutdown func() error
