package export

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/storygen/internal/markdown"
)

// Sizes are in half-points.
const (
	docxBodySize = 22
	docxH3Size   = 26
	docxH2Size   = 30
	docxH1Size   = 36
)

// docxEpoch is stamped on every archive entry so identical input yields
// identical bytes.
var docxEpoch = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

const docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`</Types>`

const docxRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
	`</Relationships>`

// DOCXEncoder writes a minimal WordprocessingML package with one paragraph
// per line.
type DOCXEncoder struct{}

func NewDOCXEncoder() *DOCXEncoder {
	return &DOCXEncoder{}
}

func (e *DOCXEncoder) Format() Format { return FormatDOCX }

func (e *DOCXEncoder) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

func (e *DOCXEncoder) Encode(lines []markdown.ClassifiedLine) ([]byte, error) {
	if linesBlank(lines) {
		return nil, ErrEmptyContent
	}

	parts := []struct {
		name string
		body string
	}{
		{"[Content_Types].xml", docxContentTypes},
		{"_rels/.rels", docxRels},
		{"word/document.xml", documentXML(lines)},
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range parts {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     p.name,
			Method:   zip.Deflate,
			Modified: docxEpoch,
		})
		if err != nil {
			return nil, fmt.Errorf("docx: create %s: %w", p.name, err)
		}
		if _, err := w.Write([]byte(p.body)); err != nil {
			return nil, fmt.Errorf("docx: write %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("docx: close: %w", err)
	}

	return buf.Bytes(), nil
}

func docxSizeFor(level int) int {
	switch level {
	case markdown.LevelH1:
		return docxH1Size
	case markdown.LevelH2:
		return docxH2Size
	case markdown.LevelH3:
		return docxH3Size
	default:
		return docxBodySize
	}
}

func documentXML(lines []markdown.ClassifiedLine) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)

	for _, line := range lines {
		heading := line.Level != markdown.LevelBody
		size := docxSizeFor(line.Level)

		b.WriteString(`<w:p>`)
		if heading {
			b.WriteString(`<w:pPr><w:keepNext/></w:pPr>`)
		}
		for _, span := range line.Spans {
			b.WriteString(`<w:r><w:rPr>`)
			if heading || span.Bold {
				b.WriteString(`<w:b/>`)
			}
			fmt.Fprintf(&b, `<w:sz w:val="%d"/><w:szCs w:val="%d"/></w:rPr>`, size, size)
			b.WriteString(`<w:t xml:space="preserve">`)
			// strings.Builder never fails
			_ = xml.EscapeText(&b, []byte(span.Text))
			b.WriteString(`</w:t></w:r>`)
		}
		b.WriteString(`</w:p>`)
	}

	b.WriteString(`<w:sectPr><w:pgSz w:w="11906" w:h="16838"/>` +
		`<w:pgMar w:top="1134" w:right="1134" w:bottom="1134" w:left="1134" w:header="708" w:footer="708" w:gutter="0"/>` +
		`</w:sectPr></w:body></w:document>`)

	return b.String()
}
