package convert

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/beevik/etree"

	"git.home.luguber.info/inful/dn2docbook/internal/docbook"
	"git.home.luguber.info/inful/dn2docbook/internal/xslt"
)

// fakeEngine maps a small subset of DocUtils XML to DocBook: the first section becomes
// the root, its ids become xml:id, its title is kept and every paragraph becomes a para.
type fakeEngine struct {
	calls int
	err   error
}

func (f *fakeEngine) Transform(ctx context.Context, source []byte) ([]byte, error) {
	f.calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}

	src := etree.NewDocument()
	if err := src.ReadFromBytes(source); err != nil {
		return nil, err
	}
	out := etree.NewDocument()
	sec := out.CreateElement("section")
	sec.CreateAttr("xmlns", docbook.NamespaceDocBook)
	sec.CreateAttr("version", docbook.Version)
	if first := src.Root().FindElement("section"); first != nil {
		if ids := first.SelectAttrValue("ids", ""); ids != "" {
			sec.CreateAttr("xml:id", ids)
		}
		if title := first.SelectElement("title"); title != nil {
			sec.CreateElement("title").SetText(title.Text())
		}
	}
	for _, p := range src.Root().FindElements("//paragraph") {
		sec.CreateElement("para").SetText(p.Text())
	}

	var buf bytes.Buffer
	if _, err := out.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (f *fakeEngine) Close() error { return nil }

func newTestConverter(t *testing.T, engine *fakeEngine) *FileConverter {
	t.Helper()
	return NewFileConverter(xslt.NewRunner("fake", engine))
}

var errEngine = errors.New("xsl:message terminate=yes")
