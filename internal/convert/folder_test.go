package convert

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	converrors "git.home.luguber.info/inful/dn2docbook/internal/convert/errors"
	"git.home.luguber.info/inful/dn2docbook/internal/docbook"
	ferrors "git.home.luguber.info/inful/dn2docbook/internal/foundation/errors"
	"git.home.luguber.info/inful/dn2docbook/internal/xslt"
)

const releaseNotesIndex = `<?xml version="1.0" encoding="utf-8"?>
<document source="index.rst">
  <section ids="release-notes" names="release\ notes">
    <title>Release Notes</title>
    <compound classes="toctree-wrapper">
      <bullet_list>
        <list_item><paragraph><reference internal="True" refuri="foo">Foo</reference></paragraph></list_item>
        <list_item><paragraph><reference internal="True" refuri="bar">Bar</reference></paragraph></list_item>
        <list_item><paragraph><reference internal="True" refuri="foo#install">Installing</reference></paragraph></list_item>
        <list_item><paragraph><reference refid="release-notes">Top</reference></paragraph></list_item>
      </bullet_list>
    </compound>
  </section>
</document>
`

func writeSourceDir(t *testing.T, index string, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	if index != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultIndexName), []byte(index), 0o644))
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func sourceDoc(id, title, para string) string {
	return `<document><section ids="` + id + `"><title>` + title + `</title><paragraph>` + para + `</paragraph></section></document>`
}

func releaseNotesDir(t *testing.T) string {
	return writeSourceDir(t, releaseNotesIndex, map[string]string{
		"foo.xml": sourceDoc("foo", "Foo", "foo body"),
		"bar.xml": sourceDoc("bar id3", "Bar", "bar body"),
	})
}

func TestBookAssembler_Assemble(t *testing.T) {
	src := releaseNotesDir(t)
	out := filepath.Join(t.TempDir(), "out", "book")
	engine := &fakeEngine{}

	assembler, err := NewBookAssembler(src, out, newTestConverter(t, engine))
	require.NoError(t, err)
	require.DirExists(t, out)

	result, err := assembler.Assemble(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(out, "chapter_bar.xml"),
		filepath.Join(out, "chapter_foo.xml"),
	}, result.Files)
	require.Equal(t, filepath.Join(out, "index.xml"), result.Index)
	require.Equal(t, 2, result.Includes)
	require.Equal(t, 2, engine.calls)

	index, err := os.ReadFile(result.Index)
	require.NoError(t, err)
	want := `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE book [
]>
<book xmlns="http://docbook.org/ns/docbook" xmlns:xi="http://www.w3.org/2001/XInclude" xmlns:xlink="http://www.w3.org/1999/xlink" version="5.0" xml:id="release-notes">
  <!-- WARNING: This file is automatically generated. Do not edit it. -->
  <title>Release Notes</title>
  <xi:include href="chapter_foo.xml"/>
  <xi:include href="chapter_bar.xml"/>
</book>
`
	require.Equal(t, want, string(index))

	bar, err := os.ReadFile(filepath.Join(out, "chapter_bar.xml"))
	require.NoError(t, err)
	require.Contains(t, string(bar), `<chapter xmlns="http://docbook.org/ns/docbook" version="5.0" xml:id="bar">`)
	require.Equal(t, 1, strings.Count(string(bar), docbook.AutogeneratedWarning))

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	require.Len(t, entries, 3)
}

func TestChapterAssembler_Assemble(t *testing.T) {
	src := releaseNotesDir(t)
	out := t.TempDir()

	assembler, err := NewChapterAssembler(src, out, newTestConverter(t, &fakeEngine{}))
	require.NoError(t, err)
	require.Equal(t, []string{"section_foo.xml", "section_bar.xml"}, assembler.Index().Includes)

	result, err := assembler.Assemble(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Files, 2)

	index, err := os.ReadFile(result.Index)
	require.NoError(t, err)
	require.NotContains(t, string(index), "DOCTYPE")
	require.Contains(t, string(index), `<chapter xmlns="http://docbook.org/ns/docbook"`)
	require.Contains(t, string(index), `<xi:include href="section_foo.xml"/>`)

	foo, err := os.ReadFile(filepath.Join(out, "section_foo.xml"))
	require.NoError(t, err)
	require.Contains(t, string(foo), `<section xmlns="http://docbook.org/ns/docbook" version="5.0" xml:id="foo">`)
}

func TestAssemble_IgnoresOtherEntries(t *testing.T) {
	src := releaseNotesDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(src, "notes.txt"), []byte("not xml"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(src, "nested.xml"), 0o755))
	out := t.TempDir()
	engine := &fakeEngine{}

	assembler, err := NewChapterAssembler(src, out, newTestConverter(t, engine))
	require.NoError(t, err)
	_, err = assembler.Assemble(context.Background())
	require.NoError(t, err)

	require.Equal(t, 2, engine.calls)
	require.NoFileExists(t, filepath.Join(out, "section_index.xml"))
	require.NoFileExists(t, filepath.Join(out, "section_notes.txt"))
}

func TestAssemble_EscapesTitle(t *testing.T) {
	index := `<document><section ids="x"><title>Q&amp;A <literal>&lt;tips&gt;</literal></title></section></document>`
	src := writeSourceDir(t, index, nil)
	out := t.TempDir()

	assembler, err := NewBookAssembler(src, out, newTestConverter(t, &fakeEngine{}))
	require.NoError(t, err)
	require.Equal(t, "Q&A <tips>", assembler.Index().Title)

	result, err := assembler.Assemble(context.Background())
	require.NoError(t, err)
	require.Empty(t, result.Files)

	data, err := os.ReadFile(result.Index)
	require.NoError(t, err)
	require.Contains(t, string(data), `<title>Q&amp;A &lt;tips&gt;</title>`)
	require.Contains(t, string(data), `xml:id="q&amp;a-&lt;tips&gt;"`)
}

func TestAssemble_FailureAborts(t *testing.T) {
	src := writeSourceDir(t, releaseNotesIndex, map[string]string{
		"bar.xml": sourceDoc("bar", "Bar", "ok"),
		"foo.xml": "<document><section>",
	})
	out := t.TempDir()

	assembler, err := NewBookAssembler(src, out, newTestConverter(t, &fakeEngine{}))
	require.NoError(t, err)

	_, err = assembler.Assemble(context.Background())
	require.ErrorIs(t, err, converrors.ErrMalformedXML)
	require.FileExists(t, filepath.Join(out, "chapter_bar.xml"))
	require.NoFileExists(t, filepath.Join(out, "chapter_foo.xml"))
	require.NoFileExists(t, filepath.Join(out, "index.xml"))
}

func TestAssemble_Canceled(t *testing.T) {
	src := releaseNotesDir(t)
	engine := &fakeEngine{}
	assembler, err := NewBookAssembler(src, t.TempDir(), newTestConverter(t, engine))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = assembler.Assemble(ctx)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryCanceled))
	require.Zero(t, engine.calls)
}

func TestNewAssembler_Errors(t *testing.T) {
	t.Run("missing title", func(t *testing.T) {
		src := writeSourceDir(t, `<document><section ids="x"><paragraph>no title</paragraph></section></document>`, nil)
		out := filepath.Join(t.TempDir(), "out")

		_, err := NewBookAssembler(src, out, newTestConverter(t, &fakeEngine{}))
		require.ErrorIs(t, err, converrors.ErrMissingIndexTitle)
		require.True(t, ferrors.HasCategory(err, ferrors.CategoryIndex))
		require.NoDirExists(t, out)
	})

	t.Run("blank title", func(t *testing.T) {
		src := writeSourceDir(t, `<document><section><title>  </title></section></document>`, nil)

		_, err := NewChapterAssembler(src, t.TempDir(), newTestConverter(t, &fakeEngine{}))
		require.ErrorIs(t, err, converrors.ErrMissingIndexTitle)
	})

	t.Run("missing index", func(t *testing.T) {
		src := writeSourceDir(t, "", map[string]string{"foo.xml": sourceDoc("foo", "Foo", "x")})

		_, err := NewChapterAssembler(src, t.TempDir(), newTestConverter(t, &fakeEngine{}))
		require.ErrorIs(t, err, os.ErrNotExist)
		require.True(t, ferrors.HasCategory(err, ferrors.CategoryFileSystem))
	})

	t.Run("malformed index", func(t *testing.T) {
		src := writeSourceDir(t, "<document><section>", nil)

		_, err := NewChapterAssembler(src, t.TempDir(), newTestConverter(t, &fakeEngine{}))
		require.ErrorIs(t, err, converrors.ErrMalformedXML)
	})
}

func TestWithIndexName(t *testing.T) {
	src := writeSourceDir(t, "", map[string]string{
		"contents.xml": releaseNotesIndex,
		"foo.xml":      sourceDoc("foo", "Foo", "x"),
	})
	out := t.TempDir()
	engine := &fakeEngine{}

	assembler, err := NewChapterAssembler(src, out, newTestConverter(t, engine), WithIndexName("contents.xml"))
	require.NoError(t, err)
	result, err := assembler.Assemble(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, engine.calls)
	require.Equal(t, filepath.Join(out, "index.xml"), result.Index)
}

func TestAssemblerFor(t *testing.T) {
	for _, top := range []docbook.Toplevel{docbook.ToplevelBook, docbook.ToplevelChapter} {
		factory, err := AssemblerFor(top)
		require.NoError(t, err)
		require.NotNil(t, factory)
	}

	_, err := AssemblerFor(docbook.Toplevel("part"))
	require.ErrorIs(t, err, converrors.ErrUnknownToplevel)
}

func TestConvertPath(t *testing.T) {
	t.Run("file", func(t *testing.T) {
		src := filepath.Join(t.TempDir(), "intro.xml")
		require.NoError(t, os.WriteFile(src, []byte(introSource), 0o644))
		dst := filepath.Join(t.TempDir(), "intro.dbk")

		result, err := ConvertPath(context.Background(), newTestConverter(t, &fakeEngine{}), src, dst, docbook.ToplevelBook)
		require.NoError(t, err)
		require.Equal(t, []string{dst}, result.Files)
		require.Empty(t, result.Index)

		data, err := os.ReadFile(dst)
		require.NoError(t, err)
		require.Contains(t, string(data), "<book ")
	})

	t.Run("directory", func(t *testing.T) {
		rec := &recordingRecorder{}
		conv := NewFileConverter(xslt.NewRunner("fake", &fakeEngine{}), WithRecorder(rec))
		out := t.TempDir()

		result, err := ConvertPath(context.Background(), conv, releaseNotesDir(t), out, docbook.ToplevelChapter)
		require.NoError(t, err)
		require.Equal(t, filepath.Join(out, "index.xml"), result.Index)
		require.Equal(t, 2, rec.includes)
	})

	t.Run("missing source", func(t *testing.T) {
		_, err := ConvertPath(context.Background(), newTestConverter(t, &fakeEngine{}), filepath.Join(t.TempDir(), "nope"), t.TempDir(), docbook.ToplevelChapter)
		require.True(t, ferrors.HasCategory(err, ferrors.CategoryFileSystem))
	})
}
