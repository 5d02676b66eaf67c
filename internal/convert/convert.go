package convert

import (
	"errors"
	"fmt"
	"html"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/text/unicode/norm"
)

// ErrConversion is returned when the Markdown engine rejects a page's text.
// The crawler treats it as a page-level failure.
var ErrConversion = errors.New("markdown conversion failed")

// Converter converts rendered page text into Markdown.
type Converter interface {
	Convert(text string) (string, error)
}

// MarkdownConverter is the production Converter backed by html-to-markdown.
type MarkdownConverter struct{}

// NewMarkdownConverter creates a MarkdownConverter.
func NewMarkdownConverter() *MarkdownConverter {
	return &MarkdownConverter{}
}

// Convert converts text into Markdown.
// Each non-empty line becomes a paragraph; text that looks like markup is
// escaped first so it is rendered literally.
func (*MarkdownConverter) Convert(text string) (string, error) {
	text = norm.NFC.String(text)

	var sb strings.Builder
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		sb.WriteString("<p>")
		sb.WriteString(html.EscapeString(line))
		sb.WriteString("</p>\n")
	}
	if sb.Len() == 0 {
		return "", nil
	}

	md, err := htmltomarkdown.ConvertString(sb.String())
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrConversion, err)
	}

	return strings.TrimSpace(md), nil
}
