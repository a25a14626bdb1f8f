package xslt

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/dn2docbook/internal/resources"
)

func requireXsltproc(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("xsltproc"); err != nil {
		t.Skip("xsltproc not installed")
	}
}

func TestXsltproc_EmbeddedStylesheet(t *testing.T) {
	requireXsltproc(t)

	engine, err := Open(XsltprocEngineName, Stylesheet{Data: resources.Stylesheet(), Origin: "embedded"})
	require.NoError(t, err)
	x := engine.(*Xsltproc)
	require.FileExists(t, x.sheet)

	src := `<document source="intro.rst"><section ids="intro id1" names="intro"><title>Intro</title><paragraph>Hello <strong>world</strong></paragraph><bullet_list><list_item><paragraph>one</paragraph></list_item></bullet_list></section></document>`
	out, err := engine.Transform(context.Background(), []byte(src))
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out))
	root := doc.Root()
	require.Equal(t, "section", root.Tag)
	require.Equal(t, "http://docbook.org/ns/docbook", root.NamespaceURI())
	require.Equal(t, "intro id1", root.SelectAttrValue("xml:id", ""))
	require.Equal(t, "Intro", root.SelectElement("title").Text())
	require.NotNil(t, root.FindElement("para/emphasis[@role='bold']"))
	require.NotNil(t, root.FindElement("itemizedlist/listitem/para"))

	require.NoError(t, engine.Close())
	require.NoFileExists(t, x.sheet)
}

func TestXsltproc_StylesheetOnDisk(t *testing.T) {
	requireXsltproc(t)

	path := filepath.Join(t.TempDir(), "identity.xsl")
	require.NoError(t, os.WriteFile(path, []byte(`<xsl:stylesheet version="1.0" xmlns:xsl="http://www.w3.org/1999/XSL/Transform">
  <xsl:template match="/"><out><xsl:value-of select="name(/*)"/></out></xsl:template>
</xsl:stylesheet>`), 0o600))

	engine, err := NewXsltproc("", Stylesheet{Path: path, Origin: path})
	require.NoError(t, err)
	t.Cleanup(func() { _ = engine.Close() })
	require.Empty(t, engine.tempDir)

	out, err := engine.Transform(context.Background(), []byte("<document/>"))
	require.NoError(t, err)
	require.Contains(t, string(out), "<out>document</out>")
}

func TestXsltproc_MalformedInput(t *testing.T) {
	requireXsltproc(t)

	engine, err := NewXsltproc("", Stylesheet{Data: resources.Stylesheet()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = engine.Close() })

	_, err = engine.Transform(context.Background(), []byte("<document>"))
	require.ErrorContains(t, err, "xsltproc failed")
}

func TestXsltproc_MissingBinary(t *testing.T) {
	_, err := NewXsltproc("definitely-not-xsltproc-binary", Stylesheet{})
	require.Error(t, err)
}
