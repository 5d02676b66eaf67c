package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/sitescribe/internal/model"
)

// MarkdownWriter outputs crawl summaries in Markdown format.
// This format is designed for documentation and sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the crawl summary in Markdown format.
func (w *MarkdownWriter) Write(result *model.CrawlResult) (int, error) {
	md := markdown.NewMarkdown(w.output)
	summary := NewSummary(result)

	w.writeHeader(md, summary)
	w.writeCounts(md, summary)
	w.writePages(md, result)
	w.writeFailures(md, result)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the crawl identity table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, s *Summary) {
	md.H1("Crawl Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Seed", "`" + s.Seed + "`"},
			{"Host", "`" + s.Host + "`"},
			{"Started", s.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", s.Duration},
			{"Status", statusText(s)},
		},
	})
	md.PlainText("")
}

// statusText decorates the status label.
func statusText(s *Summary) string {
	switch s.Status {
	case StatusCancelled:
		return "⚠️ " + s.Status
	case StatusLimited:
		return "⏸️ " + s.Status
	default:
		return "✅ " + s.Status
	}
}

// writeCounts writes the counters, a chart of page outcomes and an alert.
func (w *MarkdownWriter) writeCounts(md *markdown.Markdown, s *Summary) {
	md.H2("Pages")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Outcome", "Count"},
		Rows: [][]string{
			{"With content", strconv.Itoa(s.PagesWithContent)},
			{"Without content", strconv.Itoa(s.PagesWithoutContent)},
			{"Failed", strconv.Itoa(s.PagesFailed)},
			{"**Attempted**", "**" + strconv.Itoa(s.PagesAttempted) + "**"},
			{"URLs discovered", strconv.Itoa(s.URLsDiscovered)},
			{"Not crawled", strconv.Itoa(s.Remaining)},
			{"Markdown bytes", strconv.Itoa(s.MarkdownBytes)},
		},
	})
	md.PlainText("")

	if s.PagesAttempted > 0 {
		w.writePieChart(md, s)
	}

	w.writeAlert(md, s)
}

// writePieChart writes a mermaid pie chart of page outcomes.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, s *Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Page Outcomes"),
		piechart.WithShowData(true),
	)

	if s.PagesWithContent > 0 {
		chart.LabelAndIntValue("With content", uint64(s.PagesWithContent))
	}
	if s.PagesWithoutContent > 0 {
		chart.LabelAndIntValue("Without content", uint64(s.PagesWithoutContent))
	}
	if s.PagesFailed > 0 {
		chart.LabelAndIntValue("Failed", uint64(s.PagesFailed))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an alert describing the crawl's health.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, s *Summary) {
	switch {
	case s.Status == StatusCancelled:
		md.Cautionf("The crawl was cancelled. %d queued page(s) were not crawled.", s.Remaining)
	case s.PagesFailed > 0:
		md.Warningf("%d of %d page(s) could not be crawled.", s.PagesFailed, s.PagesAttempted)
	case s.Status == StatusLimited:
		md.Importantf("The page limit was reached. %d queued page(s) were not crawled.", s.Remaining)
	case s.PagesWithContent == 0:
		md.Note("No page produced a content section.")
	default:
		md.Tip("Every crawled page was converted.")
	}
	md.PlainText("")
}

// writePages writes a table of attempted pages.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, result *model.CrawlResult) {
	md.H2("Page Log")
	md.PlainText("")

	if len(result.Pages) == 0 {
		md.PlainText("No pages crawled.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(result.Pages))
	for i, p := range result.Pages {
		rows[i] = []string{
			truncateString(p.URL, 60),
			orDash(strconv.Itoa(p.StatusCode), p.StatusCode != 0),
			orDash(truncateString(p.Title, 40), p.Title != ""),
			outcomeText(&p),
			strconv.Itoa(p.LinksQueued),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Status", "Title", "Outcome", "Links Queued"},
		Rows:   rows,
	})
	md.PlainText("")
}

// outcomeText describes a page record in one word.
func outcomeText(p *model.PageRecord) string {
	switch {
	case p.Failed():
		return "❌ failed"
	case p.HasContent:
		return "✅ content"
	default:
		return "➖ no content"
	}
}

// writeFailures writes a table of failures and their reasons.
func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, result *model.CrawlResult) {
	md.H2("Failures")
	md.PlainText("")

	if len(result.Failures) == 0 {
		md.PlainText("No failures.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(result.Failures))
	for i, f := range result.Failures {
		rows[i] = []string{
			string(f.Kind),
			truncateString(f.URL, 60),
			truncateString(f.Reason, 80),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Kind", "URL", "Reason"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Summary generated by [sitescribe](https://github.com/nao1215/sitescribe)*")
}

// orDash returns s when ok is true and "-" otherwise.
func orDash(s string, ok bool) string {
	if !ok {
		return "-"
	}
	return s
}

// truncateString truncates a string to maxLen runes with an ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
