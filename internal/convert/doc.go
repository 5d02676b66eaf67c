// Package convert turns a page's selected content node into a Markdown
// section.
//
// Conversion is text based: the rendered text of the content node is
// collected (script and style bodies are skipped, block elements become
// line breaks) and each non-empty line is handed to the html-to-markdown
// engine as its own paragraph. The markup of the node itself is never
// converted, which keeps navigation widgets and inline scripts out of the
// document.
//
// # Section format
//
//	# {title or "No Title"}
//	{converted markdown}
//
//	---
package convert
