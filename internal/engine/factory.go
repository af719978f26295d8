package engine

import (
	"errors"
	"sync"
)

var (
	backendMu sync.Mutex
	backend   func() Engine
)

// RegisterBackend installs the engine constructor the binary links against.
// Backends register from an init function, typically behind a build tag
// selecting the bridge to the actual content-creation tool.
func RegisterBackend(f func() Engine) {
	backendMu.Lock()
	defer backendMu.Unlock()
	backend = f
}

// New returns the registered engine backend.
func New() (Engine, error) {
	backendMu.Lock()
	defer backendMu.Unlock()
	if backend == nil {
		return nil, errors.New("no engine backend linked into this build")
	}
	return backend(), nil
}
