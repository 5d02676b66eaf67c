package database

import (
	"testing"

	"github.com/nao1215/sitescribe/internal/model"
)

func page(url, hash string) model.PageRecord {
	return model.PageRecord{URL: url, NormalizedURL: url, Hash: hash}
}

// TestComparePages tests page-level comparison between runs.
func TestComparePages(t *testing.T) {
	t.Parallel()

	t.Run("classifies pages", func(t *testing.T) {
		t.Parallel()

		previous := []model.PageRecord{
			page("http://a.test/", "h1"),
			page("http://a.test/old/", "h2"),
			page("http://a.test/edit/", "h3"),
		}
		current := []model.PageRecord{
			page("http://a.test/", "h1"),
			page("http://a.test/edit/", "h3-changed"),
			page("http://a.test/new/", "h4"),
		}

		diff := ComparePages(previous, current)

		if len(diff.Added) != 1 || diff.Added[0].URL != "http://a.test/new/" {
			t.Errorf("unexpected added %+v", diff.Added)
		}
		if len(diff.Removed) != 1 || diff.Removed[0].URL != "http://a.test/old/" {
			t.Errorf("unexpected removed %+v", diff.Removed)
		}
		if len(diff.Changed) != 1 || diff.Changed[0].Hash != "h3-changed" {
			t.Errorf("unexpected changed %+v", diff.Changed)
		}
		if diff.Unchanged != 1 {
			t.Errorf("expected 1 unchanged, got %d", diff.Unchanged)
		}
		if !diff.HasChanges() {
			t.Error("expected changes")
		}
	})

	t.Run("page that started failing is changed", func(t *testing.T) {
		t.Parallel()

		previous := []model.PageRecord{page("http://a.test/x/", "")}
		failed := page("http://a.test/x/", "")
		failed.Error = "HTTP 500"

		diff := ComparePages(previous, []model.PageRecord{failed})
		if len(diff.Changed) != 1 {
			t.Errorf("expected 1 changed page, got %+v", diff)
		}
	})

	t.Run("identical runs have no changes", func(t *testing.T) {
		t.Parallel()

		pages := []model.PageRecord{page("http://a.test/", "h1"), page("http://a.test/b/", "h2")}
		diff := ComparePages(pages, pages)
		if diff.HasChanges() {
			t.Errorf("expected no changes, got %+v", diff)
		}
		if diff.Unchanged != 2 {
			t.Errorf("expected 2 unchanged, got %d", diff.Unchanged)
		}
	})

	t.Run("results are sorted", func(t *testing.T) {
		t.Parallel()

		current := []model.PageRecord{page("http://a.test/c/", "3"), page("http://a.test/a/", "1"), page("http://a.test/b/", "2")}
		diff := ComparePages(nil, current)
		for i := 1; i < len(diff.Added); i++ {
			if diff.Added[i-1].NormalizedURL > diff.Added[i].NormalizedURL {
				t.Fatalf("added pages not sorted: %+v", diff.Added)
			}
		}
	})
}
