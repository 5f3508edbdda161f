package export

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/dmitrijs2005/storygen/internal/markdown"
)

// HTMLEncoder renders the markdown through goldmark into a standalone page.
type HTMLEncoder struct {
	md    goldmark.Markdown
	title string
}

func NewHTMLEncoder() *HTMLEncoder {
	return &HTMLEncoder{
		md:    goldmark.New(goldmark.WithExtensions(extension.GFM)),
		title: "User stories",
	}
}

func (e *HTMLEncoder) Format() Format      { return FormatHTML }
func (e *HTMLEncoder) ContentType() string { return "text/html; charset=utf-8" }

func (e *HTMLEncoder) Encode(lines []markdown.ClassifiedLine) ([]byte, error) {
	if linesBlank(lines) {
		return nil, ErrEmptyContent
	}

	raw := make([]string, len(lines))
	for i, l := range lines {
		raw[i] = l.Raw
	}

	var body bytes.Buffer
	if err := e.md.Convert([]byte(strings.Join(raw, "\n")), &body); err != nil {
		return nil, fmt.Errorf("html: convert: %w", err)
	}

	var out bytes.Buffer
	out.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&out, "<title>%s</title>\n</head>\n<body>\n", html.EscapeString(e.title))
	out.Write(body.Bytes())
	out.WriteString("</body>\n</html>\n")

	return out.Bytes(), nil
}
