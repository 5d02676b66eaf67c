package model

import (
	"strings"
	"time"
)

// Section is one page's contribution to the final document.
type Section struct {
	// URL is the page the section was extracted from.
	URL string `json:"url"`

	// Title is the heading used for the section.
	Title string `json:"title"`

	// Markdown is the full rendered block, heading and separator included.
	Markdown string `json:"-"`
}

// FailureKind classifies a per-page failure.
type FailureKind string

const (
	// FailureFetch is a transport error or a non-2xx response.
	FailureFetch FailureKind = "fetch"

	// FailureParse means the body could not be parsed as markup.
	FailureParse FailureKind = "parse"

	// FailureConversion means Markdown conversion failed for the page.
	FailureConversion FailureKind = "conversion"

	// FailureLink means a discovered href could not be resolved.
	FailureLink FailureKind = "link"
)

// Failure is a non-fatal diagnostic recorded during a crawl.
type Failure struct {
	// URL is the page being processed or the link that failed to resolve.
	URL string `json:"url"`

	// Kind classifies the failure.
	Kind FailureKind `json:"kind"`

	// Reason is the error message.
	Reason string `json:"reason"`
}

// CrawlResult is the accumulated output of one crawl.
// It is built incrementally by the crawler and must not be modified once
// the crawl has returned it.
type CrawlResult struct {
	// Seed is the URL the crawl started from.
	Seed string `json:"seed"`

	// Host is the only host the crawl was allowed to visit.
	Host string `json:"host"`

	// Sections holds per-page Markdown blocks in processing order.
	Sections []Section `json:"sections"`

	// Pages holds a record for every page that was attempted, in order.
	Pages []PageRecord `json:"pages"`

	// Failures holds per-page and per-link diagnostics.
	Failures []Failure `json:"failures,omitempty"`

	// Visited is the final set of normalized URLs known to the frontier, sorted.
	Visited []string `json:"visited"`

	// Remaining is the number of queued URLs left unprocessed when the
	// crawl stopped early (cancellation or page limit).
	Remaining int `json:"remaining,omitempty"`

	// Cancelled is true when the crawl was stopped by its context.
	Cancelled bool `json:"cancelled,omitempty"`

	// StartedAt is when the crawl started.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the crawl reached its terminal state.
	FinishedAt time.Time `json:"finished_at"`
}

// NewCrawlResult creates an empty result for the given seed and host.
func NewCrawlResult(seed, host string) *CrawlResult {
	return &CrawlResult{
		Seed:      seed,
		Host:      host,
		Sections:  make([]Section, 0),
		Pages:     make([]PageRecord, 0),
		Failures:  make([]Failure, 0),
		Visited:   make([]string, 0),
		StartedAt: time.Now(),
	}
}

// Markdown concatenates all sections into the final document.
func (r *CrawlResult) Markdown() string {
	var sb strings.Builder
	for _, s := range r.Sections {
		sb.WriteString(s.Markdown)
	}
	return sb.String()
}

// AddFailure records a non-fatal diagnostic.
func (r *CrawlResult) AddFailure(url string, kind FailureKind, err error) {
	r.Failures = append(r.Failures, Failure{
		URL:    url,
		Kind:   kind,
		Reason: err.Error(),
	})
}

// Duration returns how long the crawl took.
func (r *CrawlResult) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// PagesFailed returns the number of attempted pages that failed.
func (r *CrawlResult) PagesFailed() int {
	n := 0
	for i := range r.Pages {
		if r.Pages[i].Failed() {
			n++
		}
	}
	return n
}
