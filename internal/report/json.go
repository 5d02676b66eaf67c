package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/sitescribe/internal/model"
)

// JSONWriter outputs crawl summaries in JSON format.
type JSONWriter struct {
	baseWriter

	// version is the sitescribe version recorded in the output.
	version string

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithVersion sets the version recorded in the output.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// JSONReport is the document written by JSONWriter.
// Section bodies are left out; they are in the Markdown document.
type JSONReport struct {
	// Version is the sitescribe version that produced the report.
	Version string `json:"version,omitempty"`

	// Summary holds the computed counters.
	Summary *Summary `json:"summary"`

	// Result is the full crawl result.
	Result *model.CrawlResult `json:"result"`
}

// Write outputs the crawl summary and result in JSON format.
func (w *JSONWriter) Write(result *model.CrawlResult) (int, error) {
	return w.writeJSON(&JSONReport{
		Version: w.version,
		Summary: NewSummary(result),
		Result:  result,
	})
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}
