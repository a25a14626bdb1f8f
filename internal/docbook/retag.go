package docbook

import (
	"strconv"

	"github.com/beevik/etree"
)

// Retag renames the document root to tag in the DocBook namespace and inserts the
// autogenerated-file warning as its first child. A root whose prefix already maps to the
// DocBook namespace keeps that prefix. Otherwise the namespace becomes the default one,
// unless a descendant still resolves the root's default namespace; then only the root is
// moved, under a "db" prefix. The children are not checked against the new root's content
// model.
func Retag(doc *etree.Document, tag Tag) {
	root := doc.Root()
	if root == nil {
		return
	}
	if root.NamespaceURI() != NamespaceDocBook {
		if usesRootDefault(root) {
			prefix := freePrefix(root)
			root.Space = prefix
			root.CreateAttr("xmlns:"+prefix, NamespaceDocBook)
		} else {
			root.Space = ""
			root.CreateAttr("xmlns", NamespaceDocBook)
		}
	}
	root.Tag = string(tag)

	if hasWarning(root) {
		return
	}
	root.InsertChildAt(0, etree.NewComment(AutogeneratedWarning))
}

// hasWarning reports whether the first non-whitespace child is already the warning comment.
func hasWarning(root *etree.Element) bool {
	for _, tok := range root.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			if t.IsWhitespace() {
				continue
			}
			return false
		case *etree.Comment:
			return t.Data == AutogeneratedWarning
		default:
			return false
		}
	}
	return false
}

// usesRootDefault reports whether an unprefixed descendant inherits the root's default
// namespace, which declaring xmlns on the root would change.
func usesRootDefault(root *etree.Element) bool {
	var inherits func(*etree.Element) bool
	inherits = func(e *etree.Element) bool {
		if e.Space == "" {
			return e.SelectAttr("xmlns") == nil
		}
		for _, child := range e.ChildElements() {
			if inherits(child) {
				return true
			}
		}
		return false
	}
	for _, child := range root.ChildElements() {
		if inherits(child) {
			return true
		}
	}
	return false
}

// freePrefix returns "db", or "db1", "db2"... when the root already binds it.
func freePrefix(root *etree.Element) string {
	prefix := "db"
	for i := 1; root.SelectAttr("xmlns:"+prefix) != nil; i++ {
		prefix = "db" + strconv.Itoa(i)
	}
	return prefix
}
