// Package xslt applies the DocUtils-to-DocBook stylesheet to parsed documents.
//
// Engines are registered by name, the way database/sql drivers are: the package
// itself provides "xsltproc", which shells out to the libxslt command line tool, and
// the libxslt subpackage registers the in-process cgo engine when imported.
package xslt

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownEngine is returned by Open for a name nothing registered.
var ErrUnknownEngine = errors.New("unknown xslt engine")

// Engine applies one compiled stylesheet to serialized XML documents.
type Engine interface {
	Transform(ctx context.Context, source []byte) ([]byte, error)
	Close() error
}

// Stylesheet is the stylesheet handed to an engine factory. Origin is either a file path
// or a descriptive name for an in-memory stylesheet.
type Stylesheet struct {
	Data   []byte
	Origin string
	// Path is set when the stylesheet exists on disk.
	Path string
}

// Factory compiles a stylesheet into an Engine.
type Factory func(sheet Stylesheet) (Engine, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register makes an engine available under name. It panics on duplicates.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if factory == nil {
		panic("xslt: Register factory is nil")
	}
	if _, dup := registry[name]; dup {
		panic("xslt: Register called twice for engine " + name)
	}
	registry[name] = factory
}

// Engines returns the registered engine names, sorted.
func Engines() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open compiles sheet with the engine registered under name.
func Open(name string, sheet Stylesheet) (Engine, error) {
	registryMu.RLock()
	factory, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownEngine, name, strings.Join(Engines(), ", "))
	}
	return factory(sheet)
}
