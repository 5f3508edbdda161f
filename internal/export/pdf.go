package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/dmitrijs2005/storygen/internal/markdown"
)

const fontFamily = "Helvetica"

// documentDate is stamped into every PDF so output does not depend on the
// clock.
var documentDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// PageLayout is the page geometry in PDF points plus the per-level font sizes.
type PageLayout struct {
	Width       float64
	Height      float64
	Margin      float64
	LineSpacing float64

	BodySize int
	H3Size   int
	H2Size   int
	H1Size   int
}

// A4 is the default portrait layout.
var A4 = PageLayout{
	Width:       595.28,
	Height:      841.89,
	Margin:      40,
	LineSpacing: 1.4,
	BodySize:    11,
	H3Size:      13,
	H2Size:      15,
	H1Size:      18,
}

func (l PageLayout) sizeFor(level int) int {
	switch level {
	case markdown.LevelH1:
		return l.H1Size
	case markdown.LevelH2:
		return l.H2Size
	case markdown.LevelH3:
		return l.H3Size
	default:
		return l.BodySize
	}
}

// PDFEncoder lays classified lines out top to bottom on fixed-size pages
// using the Helvetica core fonts.
type PDFEncoder struct {
	layout PageLayout
}

func NewPDFEncoder() *PDFEncoder {
	return NewPDFEncoderWithLayout(A4)
}

func NewPDFEncoderWithLayout(l PageLayout) *PDFEncoder {
	return &PDFEncoder{layout: l}
}

func (e *PDFEncoder) Format() Format      { return FormatPDF }
func (e *PDFEncoder) ContentType() string { return "application/pdf" }

// typesetter wraps one fpdf document. It measures and converts text with the
// core font metrics and later draws the placed runs. A typesetter is not safe
// for concurrent use.
type typesetter struct {
	pdf       *fpdf.Fpdf
	translate func(string) string
}

func newTypesetter(l PageLayout) *typesetter {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: l.Width, Ht: l.Height},
	})
	pdf.SetMargins(l.Margin, l.Margin, l.Margin)
	pdf.SetAutoPageBreak(false, l.Margin)
	pdf.SetCreationDate(documentDate)
	pdf.SetModificationDate(documentDate)
	pdf.SetCatalogSort(true)
	pdf.SetCreator("storygen", true)

	translate := pdf.UnicodeTranslatorFromDescriptor("")
	if translate == nil {
		// The failure is kept in pdf and surfaces from Output.
		translate = func(s string) string { return s }
	}
	return &typesetter{pdf: pdf, translate: translate}
}

func fontStyle(bold bool) string {
	if bold {
		return "B"
	}
	return ""
}

// width measures encoded text in points.
func (t *typesetter) width(text string, bold bool, size int) float64 {
	t.pdf.SetFont(fontFamily, fontStyle(bold), float64(size))
	return t.pdf.GetStringWidth(text)
}

// encode converts UTF-8 text to the cp1252 bytes of the core fonts. Tabs
// become spaces and other control characters are dropped. A rune cp1252
// cannot represent becomes one placeholder byte.
func (t *typesetter) encode(s string) string {
	clean := strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7F {
			return -1
		}
		return r
	}, strings.ReplaceAll(s, "\t", "    "))
	return t.translate(clean)
}

// Encode renders lines into a PDF document.
func (e *PDFEncoder) Encode(lines []markdown.ClassifiedLine) ([]byte, error) {
	if linesBlank(lines) {
		return nil, ErrEmptyContent
	}

	ts := newTypesetter(e.layout)
	for _, page := range e.paginate(ts, lines) {
		ts.pdf.AddPage()
		for _, r := range page {
			ts.pdf.SetFont(fontFamily, fontStyle(r.Bold), float64(r.Size))
			ts.pdf.Text(r.X, r.Y, r.Text)
		}
	}

	var buf bytes.Buffer
	if err := ts.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// PageCount reports how many pages Encode would produce for lines.
func (e *PDFEncoder) PageCount(lines []markdown.ClassifiedLine) int {
	return len(e.paginate(newTypesetter(e.layout), lines))
}

// placedRun is text positioned on a page. Y is the baseline measured from
// the top edge; Text is cp1252 encoded.
type placedRun struct {
	X    float64
	Y    float64
	Size int
	Bold bool
	Text string
}

// lineRun is a same-weight run within one wrapped visual line; X is the
// offset from the left margin.
type lineRun struct {
	X    float64
	Bold bool
	Text string
}

type token struct {
	text  string
	bold  bool
	space bool
}

// paginate places every visual line and breaks pages when the cursor would
// cross the bottom margin. There is always at least one page.
func (e *PDFEncoder) paginate(ts *typesetter, lines []markdown.ClassifiedLine) [][]placedRun {
	l := e.layout
	contentWidth := l.Width - 2*l.Margin
	bottom := l.Height - l.Margin

	var (
		pages   [][]placedRun
		current []placedRun
	)
	y := l.Margin

	for _, line := range lines {
		size := l.sizeFor(line.Level)
		lineHeight := float64(size) * l.LineSpacing

		for _, visual := range e.wrap(ts, line, size, contentWidth) {
			if y+lineHeight > bottom {
				pages = append(pages, current)
				current = nil
				y = l.Margin
			}
			baseline := y + (lineHeight+float64(size))/2 - 0.2*float64(size)
			y += lineHeight

			for _, r := range visual {
				if strings.TrimSpace(r.Text) == "" {
					continue
				}
				current = append(current, placedRun{
					X:    l.Margin + r.X,
					Y:    baseline,
					Size: size,
					Bold: r.Bold,
					Text: r.Text,
				})
			}
		}
	}

	return append(pages, current)
}

// wrap splits one classified line into visual lines no wider than width.
// Heading lines are set entirely in the bold face.
func (e *PDFEncoder) wrap(ts *typesetter, line markdown.ClassifiedLine, size int, width float64) [][]lineRun {
	var (
		out [][]lineRun
		cur []lineRun
		x   float64
	)

	newLine := func() {
		out = append(out, cur)
		cur = nil
		x = 0
	}

	place := func(t token, w float64) {
		if n := len(cur); n > 0 && cur[n-1].Bold == t.bold {
			cur[n-1].Text += t.text
		} else {
			cur = append(cur, lineRun{X: x, Bold: t.bold, Text: t.text})
		}
		x += w
	}

	for _, t := range tokenize(ts, line) {
		w := ts.width(t.text, t.bold, size)

		if t.space {
			if x == 0 && len(out) > 0 {
				continue
			}
			place(t, w)
			continue
		}

		if x > 0 && x+w > width {
			newLine()
		}

		if w <= width {
			place(t, w)
			continue
		}

		for _, piece := range splitToFit(ts, t, size, width) {
			pw := ts.width(piece, t.bold, size)
			if x > 0 && x+pw > width {
				newLine()
			}
			place(token{text: piece, bold: t.bold}, pw)
		}
	}

	return append(out, cur)
}

// splitToFit cuts a word wider than the content width into pieces that fit.
// Every piece has at least one character.
func splitToFit(ts *typesetter, t token, size int, width float64) []string {
	var pieces []string
	text := t.text
	for len(text) > 0 {
		n := 1
		for n < len(text) && ts.width(text[:n+1], t.bold, size) <= width {
			n++
		}
		pieces = append(pieces, text[:n])
		text = text[n:]
	}
	return pieces
}

// tokenize breaks the spans of a line into alternating word and whitespace
// tokens, already encoded for the core fonts.
func tokenize(ts *typesetter, line markdown.ClassifiedLine) []token {
	heading := line.Level != markdown.LevelBody

	var tokens []token
	for _, span := range line.Spans {
		bold := span.Bold || heading
		text := ts.encode(span.Text)

		start := 0
		for i := 1; i <= len(text); i++ {
			if i < len(text) && isSpace(text[i]) == isSpace(text[start]) {
				continue
			}
			tokens = append(tokens, token{text: text[start:i], bold: bold, space: isSpace(text[start])})
			start = i
		}
	}
	return tokens
}

func isSpace(b byte) bool {
	return b == ' '
}
