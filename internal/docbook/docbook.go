// Package docbook holds the DocBook-side tree edits applied after the stylesheet has run:
// root retagging, xml:id disambiguation and serialization.
package docbook

import (
	"git.home.luguber.info/inful/dn2docbook/internal/foundation/normalization"
)

// Namespaces written into generated documents.
const (
	NamespaceDocBook  = "http://docbook.org/ns/docbook"
	NamespaceXInclude = "http://www.w3.org/2001/XInclude"
	NamespaceXLink    = "http://www.w3.org/1999/xlink"
	Version           = "5.0"
)

// AutogeneratedWarning is the text of the comment placed first in every generated root.
const AutogeneratedWarning = " WARNING: This file is automatically generated. Do not edit it. "

// Tag is a DocBook structural element a converted document can be rooted at.
type Tag string

const (
	TagBook    Tag = "book"
	TagChapter Tag = "chapter"
	TagSection Tag = "section"
)

func (t Tag) String() string { return string(t) }

// Toplevel is the closed set of structures the CLI can assemble: a book of chapters or a
// chapter of sections. In single-file mode it is also the root tag of the output.
type Toplevel string

const (
	ToplevelBook    Toplevel = "book"
	ToplevelChapter Toplevel = "chapter"
)

var toplevelNormalizer = normalization.NewNormalizer("toplevel", map[string]Toplevel{
	"book":    ToplevelBook,
	"chapter": ToplevelChapter,
}, ToplevelChapter)

// ParseToplevel validates a user supplied toplevel; empty input yields chapter.
func ParseToplevel(raw string) (Toplevel, error) {
	return toplevelNormalizer.NormalizeWithError(raw)
}

// Toplevels lists the accepted toplevel names.
func Toplevels() []string {
	return toplevelNormalizer.ValidKeys()
}

// Tag returns the root tag a toplevel stands for.
func (t Toplevel) Tag() Tag { return Tag(t) }
