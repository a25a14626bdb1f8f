package convert

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/beevik/etree"

	converrors "git.home.luguber.info/inful/dn2docbook/internal/convert/errors"
	"git.home.luguber.info/inful/dn2docbook/internal/docbook"
	ferrors "git.home.luguber.info/inful/dn2docbook/internal/foundation/errors"
	"git.home.luguber.info/inful/dn2docbook/internal/logfields"
)

// AssemblerFactory builds a FolderAssembler for one toplevel variant.
type AssemblerFactory func(source, output string, conv *FileConverter, opts ...AssemblerOption) (*FolderAssembler, error)

// Assemblers maps each toplevel to the assembler that produces it.
var Assemblers = map[docbook.Toplevel]AssemblerFactory{
	docbook.ToplevelBook:    NewBookAssembler,
	docbook.ToplevelChapter: NewChapterAssembler,
}

// AssemblerFor returns the factory registered for top.
func AssemblerFor(top docbook.Toplevel) (AssemblerFactory, error) {
	factory, ok := Assemblers[top]
	if !ok {
		return nil, ferrors.ValidationError("no assembler for toplevel").
			WithCause(fmt.Errorf("%w: %q", converrors.ErrUnknownToplevel, top)).
			WithContext("toplevel", string(top)).
			Build()
	}
	return factory, nil
}

// variant describes the shape of one assembled structure.
type variant struct {
	root    docbook.Tag // root of the synthesized index
	file    docbook.Tag // root of every converted file
	doctype bool        // emit an empty DOCTYPE before the index root
}

var (
	bookVariant    = variant{root: docbook.TagBook, file: docbook.TagChapter, doctype: true}
	chapterVariant = variant{root: docbook.TagChapter, file: docbook.TagSection}
)

// FolderAssembler converts every document of a source directory and writes an index that
// XIncludes them in the order the source index lists them.
type FolderAssembler struct {
	source    string
	output    string
	indexName string
	variant   variant
	conv      *FileConverter
	index     *Index
	logger    *slog.Logger
}

// AssemblerOption configures a FolderAssembler.
type AssemblerOption func(*FolderAssembler)

// WithIndexName sets the file name of the index inside the source directory.
func WithIndexName(name string) AssemblerOption {
	return func(a *FolderAssembler) {
		if name != "" {
			a.indexName = name
		}
	}
}

// Result summarizes an assembly run.
type Result struct {
	Files    []string // converted outputs in write order
	Index    string   // path of the synthesized index, empty in single-file mode
	Includes int
}

// NewBookAssembler assembles a book whose files are chapters.
func NewBookAssembler(source, output string, conv *FileConverter, opts ...AssemblerOption) (*FolderAssembler, error) {
	return newFolderAssembler(bookVariant, source, output, conv, opts...)
}

// NewChapterAssembler assembles a chapter whose files are sections.
func NewChapterAssembler(source, output string, conv *FileConverter, opts ...AssemblerOption) (*FolderAssembler, error) {
	return newFolderAssembler(chapterVariant, source, output, conv, opts...)
}

func newFolderAssembler(v variant, source, output string, conv *FileConverter, opts ...AssemblerOption) (*FolderAssembler, error) {
	a := &FolderAssembler{
		source:    source,
		output:    output,
		indexName: DefaultIndexName,
		variant:   v,
		conv:      conv,
		logger:    conv.logger,
	}
	for _, opt := range opts {
		opt(a)
	}

	idx, err := parseIndex(source, a.indexName, v.file, a.logger)
	if err != nil {
		return nil, err
	}
	a.index = idx

	if err := os.MkdirAll(output, 0o755); err != nil {
		return nil, ferrors.FileSystemError("cannot create output directory").
			WithCause(fmt.Errorf("%w: %w", converrors.ErrCreateOutputDir, err)).
			WithContext("path", output).
			Build()
	}
	return a, nil
}

// Index returns the parsed source index.
func (a *FolderAssembler) Index() *Index { return a.index }

// Assemble converts the source documents and then writes the synthesized index. The first
// failure aborts the run.
func (a *FolderAssembler) Assemble(ctx context.Context) (*Result, error) {
	start := time.Now()
	files, err := a.sourceFiles()
	if err != nil {
		return nil, err
	}

	a.logger.Info("Assembling documents",
		logfields.Source(a.source),
		logfields.Output(a.output),
		logfields.Toplevel(a.variant.root.String()),
		logfields.Title(a.index.Title),
		slog.Int("files", len(files)))

	result := &Result{}
	converted := make(map[string]struct{}, len(files))
	for _, src := range files {
		if err := ctx.Err(); err != nil {
			return nil, ferrors.CanceledError("assembly canceled").WithCause(err).Build()
		}
		name := includeName(a.variant.file, filepath.Base(src))
		dst := filepath.Join(a.output, name)
		if err := a.conv.WriteFile(ctx, src, dst, a.variant.file); err != nil {
			return nil, err
		}
		converted[name] = struct{}{}
		result.Files = append(result.Files, dst)
	}

	for _, inc := range a.index.Includes {
		if _, ok := converted[inc]; !ok {
			a.logger.Warn("Index references a document that was not converted", logfields.File(inc))
		}
	}

	indexPath, err := a.writeIndex()
	if err != nil {
		return nil, err
	}
	result.Index = indexPath
	result.Includes = len(a.index.Includes)
	a.conv.recorder.SetIncludes(result.Includes)

	a.logger.Info("Assembly complete",
		logfields.Path(indexPath),
		logfields.Includes(result.Includes),
		logfields.Since(start))
	return result, nil
}

// sourceFiles lists the *.xml files of the source directory, index excluded, by name.
func (a *FolderAssembler) sourceFiles() ([]string, error) {
	entries, err := os.ReadDir(a.source)
	if err != nil {
		return nil, ferrors.FileSystemError("cannot list source directory").
			WithCause(fmt.Errorf("%w: %w", converrors.ErrReadSource, err)).
			WithContext("path", a.source).
			Build()
	}
	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".xml") || name == a.indexName {
			continue
		}
		files = append(files, filepath.Join(a.source, name))
	}
	slices.Sort(files)
	return files, nil
}

// BuildIndex renders the synthesized index document.
func (a *FolderAssembler) BuildIndex() *etree.Document {
	doc := etree.NewDocument()
	if a.variant.doctype {
		doc.CreateDirective("DOCTYPE " + a.variant.root.String() + " [\n]")
	}
	root := doc.CreateElement(a.variant.root.String())
	root.CreateAttr("xmlns", docbook.NamespaceDocBook)
	root.CreateAttr("xmlns:xi", docbook.NamespaceXInclude)
	root.CreateAttr("xmlns:xlink", docbook.NamespaceXLink)
	root.CreateAttr("version", docbook.Version)
	root.CreateAttr("xml:id", a.index.ID())
	root.CreateComment(docbook.AutogeneratedWarning)
	root.CreateElement("title").SetText(a.index.Title)
	for _, inc := range a.index.Includes {
		root.CreateElement("xi:include").CreateAttr("href", inc)
	}
	return doc
}

func (a *FolderAssembler) writeIndex() (string, error) {
	data, err := docbook.Marshal(a.BuildIndex())
	if err != nil {
		return "", ferrors.InternalError("serialize index").WithCause(err).Build()
	}
	path := filepath.Join(a.output, DefaultIndexName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", ferrors.FileSystemError("cannot write index").
			WithCause(fmt.Errorf("%w: %w", converrors.ErrWriteOutput, err)).
			WithContext("file", path).
			Build()
	}
	return path, nil
}

// ConvertPath converts source to output: a directory is assembled with the assembler for
// top, a single file is converted with top as its root tag.
func ConvertPath(ctx context.Context, conv *FileConverter, source, output string, top docbook.Toplevel, opts ...AssemblerOption) (*Result, error) {
	info, err := os.Stat(source)
	if err != nil {
		return nil, ferrors.FileSystemError("cannot access source").
			WithCause(fmt.Errorf("%w: %w", converrors.ErrReadSource, err)).
			WithContext("path", source).
			Build()
	}

	if !info.IsDir() {
		if err := conv.WriteFile(ctx, source, output, top.Tag()); err != nil {
			return nil, err
		}
		return &Result{Files: []string{output}}, nil
	}

	factory, err := AssemblerFor(top)
	if err != nil {
		return nil, err
	}
	assembler, err := factory(source, output, conv, opts...)
	if err != nil {
		return nil, err
	}
	return assembler.Assemble(ctx)
}
