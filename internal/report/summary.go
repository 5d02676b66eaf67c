package report

import (
	"time"

	"github.com/nao1215/sitescribe/internal/model"
)

// Crawl status labels.
const (
	StatusComplete  = "Complete"
	StatusCancelled = "Cancelled (partial results)"
	StatusLimited   = "Stopped at page limit"
)

// Summary is the digest of a CrawlResult shown by every writer.
type Summary struct {
	Seed                string    `json:"seed"`
	Host                string    `json:"host"`
	Status              string    `json:"status"`
	StartedAt           time.Time `json:"started_at"`
	Duration            string    `json:"duration"`
	PagesAttempted      int       `json:"pages_attempted"`
	PagesWithContent    int       `json:"pages_with_content"`
	PagesWithoutContent int       `json:"pages_without_content"`
	PagesFailed         int       `json:"pages_failed"`
	URLsDiscovered      int       `json:"urls_discovered"`
	Remaining           int       `json:"remaining"`
	MarkdownBytes       int       `json:"markdown_bytes"`
	Failures            int       `json:"failures"`
}

// NewSummary computes the summary of a crawl.
func NewSummary(result *model.CrawlResult) *Summary {
	s := &Summary{
		Seed:           result.Seed,
		Host:           result.Host,
		Status:         status(result),
		StartedAt:      result.StartedAt,
		Duration:       result.Duration().Round(time.Millisecond).String(),
		PagesAttempted: len(result.Pages),
		PagesFailed:    result.PagesFailed(),
		URLsDiscovered: len(result.Visited),
		Remaining:      result.Remaining,
		Failures:       len(result.Failures),
	}

	for i := range result.Pages {
		p := &result.Pages[i]
		switch {
		case p.Failed():
		case p.HasContent:
			s.PagesWithContent++
		default:
			s.PagesWithoutContent++
		}
	}
	for _, sec := range result.Sections {
		s.MarkdownBytes += len(sec.Markdown)
	}

	return s
}

// status returns the label describing how the crawl ended.
func status(result *model.CrawlResult) string {
	switch {
	case result.Cancelled:
		return StatusCancelled
	case result.Remaining > 0:
		return StatusLimited
	default:
		return StatusComplete
	}
}
