package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/sitescribe/internal/model"
)

// ruleWidth is the width of the horizontal rules in text output.
const ruleWidth = 70

// SimpleWriter outputs human-readable text summaries.
// Plain ASCII is used so the output can be piped to files or other tools.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no entries are shown.
	showEmpty bool

	// verbose lists every attempted page.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables the per-page listing.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the crawl summary in human-readable format.
func (w *SimpleWriter) Write(result *model.CrawlResult) (int, error) {
	var sb strings.Builder
	summary := NewSummary(result)

	w.writeHeader(&sb, summary)
	w.writeCounts(&sb, summary)
	w.writePages(&sb, result)
	w.writeFailures(&sb, result)

	return w.output.Write([]byte(sb.String()))
}

// writeRule writes a titled section separator.
func writeRule(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n\n")
}

// writeHeader writes the crawl identity and status.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, s *Summary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("                      SITESCRIBE CRAWL SUMMARY\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Seed:       %s\n", s.Seed)
	fmt.Fprintf(sb, "Host:       %s\n", s.Host)
	fmt.Fprintf(sb, "Started:    %s\n", s.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Duration:   %s\n", s.Duration)
	fmt.Fprintf(sb, "Status:     %s\n", s.Status)
	sb.WriteString("\n")
}

// writeCounts writes the page counters.
func (w *SimpleWriter) writeCounts(sb *strings.Builder, s *Summary) {
	writeRule(sb, "PAGES")

	fmt.Fprintf(sb, "  Attempted:        %d\n", s.PagesAttempted)
	fmt.Fprintf(sb, "  With content:     %d\n", s.PagesWithContent)
	fmt.Fprintf(sb, "  Without content:  %d\n", s.PagesWithoutContent)
	fmt.Fprintf(sb, "  Failed:           %d\n", s.PagesFailed)
	fmt.Fprintf(sb, "  URLs discovered:  %d\n", s.URLsDiscovered)
	if s.Remaining > 0 {
		fmt.Fprintf(sb, "  Not crawled:      %d\n", s.Remaining)
	}
	fmt.Fprintf(sb, "  Markdown size:    %d bytes\n", s.MarkdownBytes)
	sb.WriteString("\n")
}

// writePages lists every attempted page in verbose mode.
func (w *SimpleWriter) writePages(sb *strings.Builder, result *model.CrawlResult) {
	if !w.verbose {
		return
	}
	if len(result.Pages) == 0 && !w.showEmpty {
		return
	}

	writeRule(sb, "PAGE LOG")

	if len(result.Pages) == 0 {
		sb.WriteString("  No pages crawled\n\n")
		return
	}

	for _, p := range result.Pages {
		fmt.Fprintf(sb, "  [%s] %s\n", pageIndicator(&p), p.URL)
		if p.Title != "" {
			fmt.Fprintf(sb, "        Title:  %s\n", p.Title)
		}
		if p.StatusCode != 0 {
			fmt.Fprintf(sb, "        Status: %d\n", p.StatusCode)
		}
		if p.Failed() {
			fmt.Fprintf(sb, "        Error:  %s\n", p.Error)
		}
	}
	sb.WriteString("\n")
}

// pageIndicator returns a short marker for a page record.
func pageIndicator(p *model.PageRecord) string {
	switch {
	case p.Failed():
		return "FAIL"
	case p.HasContent:
		return " OK "
	default:
		return "SKIP"
	}
}

// writeFailures lists per-page and per-link diagnostics.
func (w *SimpleWriter) writeFailures(sb *strings.Builder, result *model.CrawlResult) {
	if len(result.Failures) == 0 && !w.showEmpty {
		return
	}

	writeRule(sb, "FAILURES")

	if len(result.Failures) == 0 {
		sb.WriteString("  No failures\n\n")
		return
	}

	for _, f := range result.Failures {
		fmt.Fprintf(sb, "  [%s] %s\n", strings.ToUpper(string(f.Kind)), f.URL)
		fmt.Fprintf(sb, "        %s\n", f.Reason)
	}
	sb.WriteString("\n")
}
