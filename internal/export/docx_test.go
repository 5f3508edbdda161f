package export

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/storygen/internal/markdown"
)

func readZip(t *testing.T, data []byte) map[string]string {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	out := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		out[f.Name] = string(b)
	}
	return out
}

func TestDOCXEncoder_Package(t *testing.T) {
	data, err := NewDOCXEncoder().Encode(markdown.ClassifyText("# Title\nAs a **user** <I> want & more"))
	require.NoError(t, err)

	files := readZip(t, data)
	require.Contains(t, files, "[Content_Types].xml")
	require.Contains(t, files, "_rels/.rels")
	require.Contains(t, files, "word/document.xml")

	doc := files["word/document.xml"]
	assert.Contains(t, doc, `<w:b/><w:sz w:val="36"/>`)
	assert.Contains(t, doc, `>Title</w:t>`)
	assert.Contains(t, doc, `<w:b/><w:sz w:val="22"/><w:szCs w:val="22"/></w:rPr><w:t xml:space="preserve">user</w:t>`)
	assert.Contains(t, doc, `&lt;I&gt; want &amp; more`)
	assert.Equal(t, 2, bytes.Count([]byte(doc), []byte("<w:p>")))
}

func TestDOCXEncoder_Deterministic(t *testing.T) {
	lines := markdown.ClassifyText("## a\nb")

	a, err := NewDOCXEncoder().Encode(lines)
	require.NoError(t, err)
	b, err := NewDOCXEncoder().Encode(lines)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestDOCXEncoder_BlankLinesKeepParagraphs(t *testing.T) {
	data, err := NewDOCXEncoder().Encode(markdown.ClassifyText("a\n\nb"))
	require.NoError(t, err)

	doc := readZip(t, data)["word/document.xml"]
	assert.Equal(t, 3, bytes.Count([]byte(doc), []byte("<w:p>")))
}
