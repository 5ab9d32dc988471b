package core

import (
	"errors"
)

var (
	ErrSceneNotStarted     = errors.New("draw called outside of BeginScene/EndScene")
	ErrSceneAlreadyStarted = errors.New("BeginScene called twice without EndScene")
	ErrBackendNotReady     = errors.New("renderer backend not initialized")
	ErrUnknownBackend      = errors.New("unknown renderer backend")
)
