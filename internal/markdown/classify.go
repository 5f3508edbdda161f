package markdown

import (
	"regexp"
	"strings"
)

// Heading levels. LevelBody is a plain paragraph line.
const (
	LevelBody = 0
	LevelH1   = 1
	LevelH2   = 2
	LevelH3   = 3
)

const boldDelimiter = "**"

// Span is a run of text sharing one weight.
type Span struct {
	Text string
	Bold bool
}

// ClassifiedLine is a single input line annotated with its heading level and
// bold spans. Raw keeps the untouched source line.
type ClassifiedLine struct {
	Level int
	Text  string
	Spans []Span
	Raw   string
}

var headingRe = regexp.MustCompile(`^\s*(#{1,3})(?:\s+|$)`)

// Classify maps one raw line to its heading level and stripped text.
// "#", "##" and "###" (optionally indented) followed by whitespace or the end
// of the line select levels 1 to 3; anything else, "####" included, is body.
func Classify(line string) ClassifiedLine {
	level := LevelBody
	text := line

	if m := headingRe.FindStringSubmatchIndex(line); m != nil {
		level = m[3] - m[2]
		text = line[m[1]:]
	}

	return ClassifiedLine{
		Level: level,
		Text:  text,
		Spans: SplitBold(text),
		Raw:   line,
	}
}

// ClassifyText normalizes line endings and classifies every line.
func ClassifyText(text string) []ClassifiedLine {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	raw := strings.Split(text, "\n")

	lines := make([]ClassifiedLine, 0, len(raw))
	for _, l := range raw {
		lines = append(lines, Classify(l))
	}
	return lines
}

// SplitBold splits text into plain and bold spans. Delimiters do not nest and
// are paired left to right; a "**" without a partner stays in the plain text.
// Empty text yields a single space span so a blank line keeps its height.
func SplitBold(text string) []Span {
	var (
		spans []Span
		plain strings.Builder
	)

	flushPlain := func() {
		if plain.Len() > 0 {
			spans = append(spans, Span{Text: plain.String()})
			plain.Reset()
		}
	}

	rest := text
	for {
		open := strings.Index(rest, boldDelimiter)
		if open < 0 {
			plain.WriteString(rest)
			break
		}

		body := rest[open+len(boldDelimiter):]
		closing := strings.Index(body, boldDelimiter)
		if closing < 0 {
			plain.WriteString(rest)
			break
		}

		plain.WriteString(rest[:open])
		if closing > 0 {
			flushPlain()
			spans = append(spans, Span{Text: body[:closing], Bold: true})
		}
		rest = body[closing+len(boldDelimiter):]
	}
	flushPlain()

	if len(spans) == 0 {
		return []Span{{Text: " "}}
	}
	return spans
}

// IsBlank reports whether text has nothing but whitespace. Blank results are
// neither exported nor copied.
func IsBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}
