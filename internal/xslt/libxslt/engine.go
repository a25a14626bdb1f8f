// Package libxslt registers the in-process libxslt engine (cgo) under the name "libxslt".
//
// Import it for its side effect:
//
//	import _ "git.home.luguber.info/inful/dn2docbook/internal/xslt/libxslt"
package libxslt

import (
	"context"
	"errors"
	"fmt"
	"sync"

	goxslt "github.com/wamuir/go-xslt"

	"git.home.luguber.info/inful/dn2docbook/internal/xslt"
)

// EngineName is the registry name of this engine.
const EngineName = "libxslt"

func init() {
	xslt.Register(EngineName, func(sheet xslt.Stylesheet) (xslt.Engine, error) {
		return New(sheet)
	})
}

// Engine holds one compiled libxslt stylesheet.
type Engine struct {
	mu    sync.Mutex
	sheet *goxslt.Stylesheet
}

// New compiles sheet.
func New(sheet xslt.Stylesheet) (*Engine, error) {
	compiled, err := goxslt.NewStylesheet(sheet.Data)
	if err != nil {
		return nil, fmt.Errorf("compile stylesheet %s: %w", sheet.Origin, err)
	}
	return &Engine{sheet: compiled}, nil
}

// Transform applies the stylesheet. libxslt cannot be interrupted, so ctx is only
// checked before the call.
func (e *Engine) Transform(ctx context.Context, source []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sheet == nil {
		return nil, errors.New("libxslt: engine closed")
	}
	out, err := e.sheet.Transform(source)
	if err != nil {
		return nil, fmt.Errorf("libxslt: %w", err)
	}
	return out, nil
}

// Close frees the compiled stylesheet.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sheet != nil {
		e.sheet.Close()
		e.sheet = nil
	}
	return nil
}
