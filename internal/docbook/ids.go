package docbook

import (
	"regexp"
	"strings"

	"github.com/beevik/etree"
)

// Generated ids look like "id3". The match is anchored at the start only.
var autoIDPattern = regexp.MustCompile(`^id[0-9]+`)

// ChooseID collapses a whitespace-separated id list to one id.
//
// When a section title and a reference target share a name, the upstream
// toolchain emits the readable id followed by a generated "idN" one. In that case
// the first id wins; in every other multi-id case the last one does.
func ChooseID(value string) string {
	ids := strings.Fields(value)
	switch {
	case len(ids) == 0:
		return value
	case len(ids) == 1:
		return ids[0]
	case autoIDPattern.MatchString(ids[len(ids)-1]):
		return ids[0]
	default:
		return ids[len(ids)-1]
	}
}

// NormalizeIDs rewrites every xml:id below and including root to a single id.
func NormalizeIDs(root *etree.Element) {
	if root == nil {
		return
	}
	if attr := root.SelectAttr("xml:id"); attr != nil {
		attr.Value = ChooseID(attr.Value)
	}
	for _, child := range root.ChildElements() {
		NormalizeIDs(child)
	}
}
