package convert

import (
	"strings"

	"golang.org/x/net/html"
)

// NoTitle is the heading used for pages without a usable <title>.
const NoTitle = "No Title"

// Renderer formats a page's content node as a Markdown section.
type Renderer struct {
	converter Converter
}

// NewRenderer creates a Renderer. A nil converter selects the default
// MarkdownConverter.
func NewRenderer(c Converter) *Renderer {
	if c == nil {
		c = NewMarkdownConverter()
	}
	return &Renderer{converter: c}
}

// Render converts the rendered text of node and wraps it in a section.
// Errors from the converter are returned unchanged.
func (r *Renderer) Render(title string, node *html.Node) (string, error) {
	md, err := r.converter.Convert(TextContent(node))
	if err != nil {
		return "", err
	}
	return FormatSection(title, md), nil
}

// FormatSection builds the section block for a title and converted body.
// Whitespace runs inside the title are collapsed so the heading stays on
// one line.
func FormatSection(title, body string) string {
	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		title = NoTitle
	}

	var sb strings.Builder
	sb.WriteString("# ")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(body)
	sb.WriteString("\n\n---\n\n")
	return sb.String()
}
