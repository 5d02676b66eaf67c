// Package report writes crawl output.
//
// WriteDocument persists the concatenated Markdown document. The summary
// writers describe how a crawl went:
//   - SimpleWriter: human-readable text for the terminal
//   - JSONWriter: structured JSON for tool integration
//   - MarkdownWriter: a Markdown summary with tables and a page chart
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
