// Package convert turns DocUtils native XML into DocBook, one file at a time or a
// whole directory assembled into a book or chapter through XInclude.
package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"

	converrors "git.home.luguber.info/inful/dn2docbook/internal/convert/errors"
	"git.home.luguber.info/inful/dn2docbook/internal/docbook"
	ferrors "git.home.luguber.info/inful/dn2docbook/internal/foundation/errors"
	"git.home.luguber.info/inful/dn2docbook/internal/logfields"
	"git.home.luguber.info/inful/dn2docbook/internal/metrics"
)

// Transformer applies the DocUtils-to-DocBook stylesheet to a parsed document.
// *xslt.Runner implements it.
type Transformer interface {
	Apply(ctx context.Context, src *etree.Document) (*etree.Document, error)
}

// FileConverter converts single DN XML documents to DocBook.
type FileConverter struct {
	transformer Transformer
	recorder    metrics.Recorder
	logger      *slog.Logger
}

// Option configures a FileConverter.
type Option func(*FileConverter)

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(c *FileConverter) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *FileConverter) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewFileConverter creates a converter around t.
func NewFileConverter(t Transformer, opts ...Option) *FileConverter {
	c := &FileConverter{
		transformer: t,
		recorder:    metrics.NoopRecorder{},
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert transforms src and roots the result at tag. The output is UTF-8 with an XML
// declaration and indentation.
func (c *FileConverter) Convert(ctx context.Context, src []byte, tag docbook.Tag) ([]byte, error) {
	start := time.Now()
	out, err := c.convert(ctx, src, tag)
	c.recorder.ObserveFileDuration(tag.String(), time.Since(start))
	c.recorder.IncFileResult(metrics.Outcome(err, ctx.Err() != nil))
	return out, err
}

func (c *FileConverter) convert(ctx context.Context, src []byte, tag docbook.Tag) ([]byte, error) {
	doc := newDocument()
	if err := doc.ReadFromBytes(src); err != nil {
		return nil, ferrors.ParseError("source is not well-formed XML").
			WithCause(fmt.Errorf("%w: %w", converrors.ErrMalformedXML, err)).
			Build()
	}
	if doc.Root() == nil {
		return nil, ferrors.ParseError("source has no root element").
			WithCause(converrors.ErrMalformedXML).
			Build()
	}

	result, err := c.transformer.Apply(ctx, doc)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ferrors.CanceledError("conversion canceled").WithCause(ctxErr).Build()
		}
		return nil, ferrors.TransformError("stylesheet failed to apply").
			WithCause(fmt.Errorf("%w: %w", converrors.ErrTransformFailed, err)).
			Build()
	}

	docbook.Retag(result, tag)
	docbook.NormalizeIDs(result.Root())

	out, err := docbook.Marshal(result)
	if err != nil {
		return nil, ferrors.InternalError("serialize result").WithCause(err).Build()
	}
	return out, nil
}

// newDocument returns an empty document that decodes the encoding named in the XML
// declaration, so Latin-1 or UTF-16 sources parse like UTF-8 ones.
func newDocument() *etree.Document {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charset.NewReaderLabel
	return doc
}

// ConvertFile reads path and converts it.
func (c *FileConverter) ConvertFile(ctx context.Context, path string, tag docbook.Tag) ([]byte, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, ferrors.FileSystemError("cannot read source file").
			WithCause(fmt.Errorf("%w: %w", converrors.ErrReadSource, err)).
			WithContext("file", path).
			Build()
	}
	out, err := c.Convert(ctx, src, tag)
	if err != nil {
		return nil, withFile(err, path)
	}
	return out, nil
}

// WriteFile converts src and writes the result to dst. The parent directory of dst
// must exist.
func (c *FileConverter) WriteFile(ctx context.Context, src, dst string, tag docbook.Tag) error {
	start := time.Now()
	out, err := c.ConvertFile(ctx, src, tag)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, out, 0o644); err != nil {
		return ferrors.FileSystemError("cannot write output file").
			WithCause(fmt.Errorf("%w: %w", converrors.ErrWriteOutput, err)).
			WithContext("file", dst).
			Build()
	}
	c.logger.Debug("Converted file",
		logfields.Source(src),
		logfields.Output(dst),
		logfields.Tag(tag.String()),
		logfields.Since(start))
	return nil
}

// withFile attaches the source path to a classified error.
func withFile(err error, path string) error {
	var classified *ferrors.ClassifiedError
	if errors.As(err, &classified) {
		if _, ok := classified.Context().Get("file"); !ok {
			return classified.WithContext("file", path)
		}
	}
	return err
}
