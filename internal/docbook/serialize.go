package docbook

import (
	"bytes"
	"strings"

	"github.com/beevik/etree"
)

const indentUnit = "  "

// Elements whose whitespace is significant in DocBook.
var verbatim = map[string]bool{
	"programlisting": true,
	"screen":         true,
	"literallayout":  true,
	"synopsis":       true,
	"address":        true,
}

// Marshal serializes doc as UTF-8 with an XML declaration, indenting element-only content.
// Any declaration already present is replaced.
func Marshal(doc *etree.Document) ([]byte, error) {
	for i := len(doc.Child) - 1; i >= 0; i-- {
		switch t := doc.Child[i].(type) {
		case *etree.ProcInst:
			if t.Target == "xml" {
				doc.RemoveChildAt(i)
			}
		case *etree.CharData:
			if t.IsWhitespace() {
				doc.RemoveChildAt(i)
			}
		}
	}

	doc.InsertChildAt(0, etree.NewProcInst("xml", `version="1.0" encoding="UTF-8"`))
	for i := len(doc.Child) - 1; i > 0; i-- {
		doc.InsertChildAt(i, etree.NewText("\n"))
	}
	doc.CreateText("\n")

	if root := doc.Root(); root != nil {
		Indent(root, 0)
	}

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Indent re-indents e, which sits at the given depth, two spaces per level.
// Elements with text content, and verbatim elements, are left exactly as they are.
func Indent(e *etree.Element, depth int) {
	if verbatim[e.Tag] || !elementOnly(e) {
		return
	}
	for i := len(e.Child) - 1; i >= 0; i-- {
		if cd, ok := e.Child[i].(*etree.CharData); ok && cd.IsWhitespace() {
			e.RemoveChildAt(i)
		}
	}

	inner := "\n" + strings.Repeat(indentUnit, depth+1)
	for i := len(e.Child) - 1; i >= 0; i-- {
		e.InsertChildAt(i, etree.NewText(inner))
	}
	e.CreateText("\n" + strings.Repeat(indentUnit, depth))

	for _, child := range e.ChildElements() {
		Indent(child, depth+1)
	}
}

// elementOnly reports whether e has child elements and no text apart from whitespace.
func elementOnly(e *etree.Element) bool {
	hasElement := false
	for _, tok := range e.Child {
		switch t := tok.(type) {
		case *etree.Element:
			hasElement = true
		case *etree.CharData:
			if !t.IsWhitespace() {
				return false
			}
		}
	}
	return hasElement
}
