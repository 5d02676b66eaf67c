package database

import (
	"sort"

	"github.com/nao1215/sitescribe/internal/model"
)

// PageDiff describes how the pages of two runs of the same host differ.
// Pages are matched by normalized URL; content is compared by section hash.
type PageDiff struct {
	// Added are pages present only in the current run.
	Added []model.PageRecord `json:"added,omitempty"`

	// Removed are pages present only in the previous run.
	Removed []model.PageRecord `json:"removed,omitempty"`

	// Changed are current-run pages whose section hash differs.
	Changed []model.PageRecord `json:"changed,omitempty"`

	// Unchanged is the number of pages with identical content.
	Unchanged int `json:"unchanged"`
}

// HasChanges reports whether the two runs differ at all.
func (d *PageDiff) HasChanges() bool {
	return len(d.Added)+len(d.Removed)+len(d.Changed) > 0
}

// ComparePages compares the page records of two runs.
// Each result slice is sorted by normalized URL.
func ComparePages(previous, current []model.PageRecord) *PageDiff {
	diff := &PageDiff{}

	prev := indexPages(previous)
	curr := indexPages(current)

	for key, p := range curr {
		old, ok := prev[key]
		switch {
		case !ok:
			diff.Added = append(diff.Added, p)
		case old.Hash != p.Hash || old.Failed() != p.Failed():
			diff.Changed = append(diff.Changed, p)
		default:
			diff.Unchanged++
		}
	}
	for key, p := range prev {
		if _, ok := curr[key]; !ok {
			diff.Removed = append(diff.Removed, p)
		}
	}

	sortPages(diff.Added)
	sortPages(diff.Removed)
	sortPages(diff.Changed)

	return diff
}

func indexPages(pages []model.PageRecord) map[string]model.PageRecord {
	m := make(map[string]model.PageRecord, len(pages))
	for _, p := range pages {
		key := p.NormalizedURL
		if key == "" {
			key = p.URL
		}
		m[key] = p
	}
	return m
}

func sortPages(pages []model.PageRecord) {
	sort.Slice(pages, func(i, j int) bool {
		return pages[i].NormalizedURL < pages[j].NormalizedURL
	})
}
