package protocol

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

var (
	backendsMu sync.RWMutex
	backends   = make(map[string]Backend)
)

// Register makes a backend available by name. It panics on duplicates.
func Register(name string, b Backend) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	if b == nil {
		panic("protocol: Register backend is nil")
	}
	if _, dup := backends[name]; dup {
		panic("protocol: Register called twice for backend " + name)
	}
	backends[name] = b
}

// Open returns the backend registered under name.
func Open(name string) (Backend, error) {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	b, ok := backends[name]
	if !ok {
		return nil, errors.Errorf("unknown protocol backend %q (forgotten import?)", name)
	}
	return b, nil
}

// Backends returns the sorted names of the registered backends.
func Backends() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
