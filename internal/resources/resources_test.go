package resources

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/require"
)

func TestStylesheetIsWellFormedXSLT(t *testing.T) {
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(Stylesheet()))
	require.Equal(t, "stylesheet", doc.Root().Tag)
	require.Equal(t, "http://www.w3.org/1999/XSL/Transform", doc.Root().NamespaceURI())
}

func TestStylesheetReturnsCopy(t *testing.T) {
	a := Stylesheet()
	a[0] = 'X'
	require.NotEqual(t, a[0], Stylesheet()[0])
}

func TestLoadStylesheet(t *testing.T) {
	data, origin, err := LoadStylesheet("")
	require.NoError(t, err)
	require.Equal(t, "embedded:dn2osdbk.xsl", origin)
	require.Equal(t, Stylesheet(), data)

	path := filepath.Join(t.TempDir(), "custom.xsl")
	require.NoError(t, os.WriteFile(path, []byte("<xsl:stylesheet/>"), 0o600))
	data, origin, err = LoadStylesheet(path)
	require.NoError(t, err)
	require.Equal(t, path, origin)
	require.Equal(t, "<xsl:stylesheet/>", string(data))

	_, _, err = LoadStylesheet(filepath.Join(t.TempDir(), "missing.xsl"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
