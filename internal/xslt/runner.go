package xslt

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/beevik/etree"
)

// ErrEmptyResult is returned when the stylesheet produced no root element.
var ErrEmptyResult = errors.New("stylesheet produced no root element")

// Runner applies a single engine to documents, one at a time.
type Runner struct {
	engine Engine
	name   string
}

// NewRunner wraps engine; name is used in error messages.
func NewRunner(name string, engine Engine) *Runner {
	return &Runner{engine: engine, name: name}
}

// Name returns the engine name.
func (r *Runner) Name() string { return r.name }

// Apply transforms src and parses the engine output into a new tree.
// The tree is serialized as UTF-8, so an XML declaration in src is relabelled to match.
func (r *Runner) Apply(ctx context.Context, src *etree.Document) (*etree.Document, error) {
	relabelUTF8(src)
	var buf bytes.Buffer
	if _, err := src.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("serialize source: %w", err)
	}

	out, err := r.engine.Transform(ctx, buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.name, err)
	}

	if len(bytes.TrimSpace(out)) == 0 {
		return nil, fmt.Errorf("%s: %w", r.name, ErrEmptyResult)
	}
	result := etree.NewDocument()
	if err := result.ReadFromBytes(out); err != nil {
		return nil, fmt.Errorf("%s: parse result: %w", r.name, err)
	}
	if result.Root() == nil {
		return nil, fmt.Errorf("%s: %w", r.name, ErrEmptyResult)
	}
	return result, nil
}

// Close releases the engine.
func (r *Runner) Close() error {
	return r.engine.Close()
}

// relabelUTF8 rewrites the encoding of the XML declaration, if any, to UTF-8.
func relabelUTF8(doc *etree.Document) {
	for i, tok := range doc.Child {
		if pi, ok := tok.(*etree.ProcInst); ok && pi.Target == "xml" {
			doc.Child[i] = etree.NewProcInst("xml", `version="1.0" encoding="UTF-8"`)
			return
		}
	}
}
