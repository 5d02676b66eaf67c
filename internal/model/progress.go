package model

// ProgressSnapshot is a point-in-time view of crawl progress.
// Snapshots are emitted and forgotten; consumers must not assume the
// percentage only ever grows.
type ProgressSnapshot struct {
	// Percent is in the range [0, 100].
	Percent int `json:"percent"`

	// Message is a human-readable status line.
	Message string `json:"message"`
}

// Percent computes scraped/discovered as a clamped integer percentage.
// It is 0 while nothing has been discovered yet.
func Percent(scraped, discovered int) int {
	if discovered <= 0 {
		return 0
	}
	p := int(float64(scraped) / float64(discovered) * 100)
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}

// PageOutcome is the typed result of fetching and extracting one page.
// Exactly one of Err or the success fields is meaningful.
type PageOutcome struct {
	// Record describes the attempt and is always populated.
	Record PageRecord

	// Section is the rendered block; nil when the page had no content node.
	Section *Section

	// Links are the raw href values found on the page.
	Links []string

	// FailureKind classifies Err.
	FailureKind FailureKind

	// Err is the reason the page failed. A failed page contributes no
	// section and no links.
	Err error
}

// Succeeded reports whether the page was fetched and parsed.
func (o *PageOutcome) Succeeded() bool {
	return o.Err == nil
}
