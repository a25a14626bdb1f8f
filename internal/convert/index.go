package convert

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	converrors "git.home.luguber.info/inful/dn2docbook/internal/convert/errors"
	"git.home.luguber.info/inful/dn2docbook/internal/docbook"
	ferrors "git.home.luguber.info/inful/dn2docbook/internal/foundation/errors"
	"git.home.luguber.info/inful/dn2docbook/internal/logfields"
)

// DefaultIndexName is the file name of the index document in a source directory and of
// the synthesized index in the output directory.
const DefaultIndexName = "index.xml"

// Index is the ordering and title information read from a source directory's index.
type Index struct {
	Title    string
	Includes []string
}

// ID derives the xml:id of the synthesized root from the title: lower-cased, every
// space replaced by a hyphen. Runs of spaces are kept, so "A  B" yields "a--b".
func (i *Index) ID() string {
	return strings.ReplaceAll(cases.Lower(language.Und).String(i.Title), " ", "-")
}

// ParseIndex reads dir/name and collects one include per external reference, in document
// order, named after the per-file output naming scheme for fileTag.
func ParseIndex(dir, name string, fileTag docbook.Tag) (*Index, error) {
	return parseIndex(dir, name, fileTag, slog.Default())
}

func parseIndex(dir, name string, fileTag docbook.Tag, logger *slog.Logger) (*Index, error) {
	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ferrors.FileSystemError("cannot read index").
			WithCause(fmt.Errorf("%w: %w", converrors.ErrReadSource, err)).
			WithContext("file", path).
			Build()
	}

	doc := newDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, ferrors.ParseError("index is not well-formed XML").
			WithCause(fmt.Errorf("%w: %w", converrors.ErrMalformedXML, err)).
			WithContext("file", path).
			Build()
	}
	root := doc.Root()
	if root == nil {
		return nil, ferrors.ParseError("index has no root element").
			WithCause(converrors.ErrMalformedXML).
			WithContext("file", path).
			Build()
	}

	idx := &Index{}
	if title := root.FindElement("section/title"); title != nil {
		idx.Title = strings.TrimSpace(textContent(title))
	}
	if idx.Title == "" {
		return nil, ferrors.IndexError("index is missing a title").
			WithCause(converrors.ErrMissingIndexTitle).
			WithContext("file", path).
			Build()
	}

	walk(root, func(e *etree.Element) {
		if e.Tag != "reference" {
			return
		}
		uri := e.SelectAttr("refuri")
		if uri == nil {
			logger.Debug("Skipping reference without refuri", logfields.File(path), slog.String("refid", e.SelectAttrValue("refid", "")))
			return
		}
		if strings.Contains(uri.Value, "#") {
			return
		}
		idx.Includes = append(idx.Includes, includeName(fileTag, uri.Value+".xml"))
	})
	return idx, nil
}

// includeName is the output name of a converted source file.
func includeName(tag docbook.Tag, base string) string {
	return tag.String() + "_" + base
}

func walk(e *etree.Element, fn func(*etree.Element)) {
	fn(e)
	for _, child := range e.ChildElements() {
		walk(child, fn)
	}
}

func textContent(e *etree.Element) string {
	var b strings.Builder
	var collect func(*etree.Element)
	collect = func(el *etree.Element) {
		for _, tok := range el.Child {
			switch t := tok.(type) {
			case *etree.CharData:
				b.WriteString(t.Data)
			case *etree.Element:
				collect(t)
			}
		}
	}
	collect(e)
	return b.String()
}
