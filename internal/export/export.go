// Package export turns generated story text into downloadable artifacts.
//
// Two encoders consume the same markdown.ClassifiedLine sequence: a
// paginated PDF (PDFEncoder) and a page-flow DOCX (DOCXEncoder). HTMLEncoder
// renders a browser preview of the full markdown. Encoders are pure: the same
// lines always produce byte-identical output and the input is never mutated.
//
// Artifacts are handed to a Sink: DirSink writes into a local directory,
// S3Sink uploads to an S3-compatible bucket.
package export

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/storygen/internal/markdown"
)

// ErrEmptyContent is returned when there is nothing but whitespace to export.
var ErrEmptyContent = errors.New("nothing to export")

// Format identifies an artifact type; its value doubles as the file extension.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatHTML Format = "html"
)

// baseName is shared by every artifact so names are deterministic.
const baseName = "user-stories"

// Encoder converts classified lines into a document.
type Encoder interface {
	Format() Format
	ContentType() string
	Encode(lines []markdown.ClassifiedLine) ([]byte, error)
}

// Artifact is an encoded document ready to be stored.
type Artifact struct {
	Name        string
	ContentType string
	Data        []byte
}

// FileName returns the deterministic artifact name for f.
func FileName(f Format) string {
	return baseName + "." + string(f)
}

// ParseFormat accepts "pdf", "docx" or "html" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPDF, FormatDOCX, FormatHTML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

// NewEncoder returns the default encoder for f.
func NewEncoder(f Format) (Encoder, error) {
	switch f {
	case FormatPDF:
		return NewPDFEncoder(), nil
	case FormatDOCX:
		return NewDOCXEncoder(), nil
	case FormatHTML:
		return NewHTMLEncoder(), nil
	default:
		return nil, fmt.Errorf("unknown export format %q", f)
	}
}

// Export classifies text and encodes it with enc. Blank text yields
// ErrEmptyContent and no artifact.
func Export(enc Encoder, text string) (*Artifact, error) {
	if markdown.IsBlank(text) {
		return nil, ErrEmptyContent
	}

	data, err := enc.Encode(markdown.ClassifyText(text))
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", enc.Format(), err)
	}

	return &Artifact{
		Name:        FileName(enc.Format()),
		ContentType: enc.ContentType(),
		Data:        data,
	}, nil
}

// linesBlank reports whether no line carries visible text.
func linesBlank(lines []markdown.ClassifiedLine) bool {
	for _, l := range lines {
		if !markdown.IsBlank(l.Text) {
			return false
		}
	}
	return true
}
