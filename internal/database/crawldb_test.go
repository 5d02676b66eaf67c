package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/sitescribe/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) (*CrawlDB, func()) {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	cleanup := func() {
		_ = db.Close()
	}

	return db, cleanup
}

// newTestResult builds a finished crawl result with two pages.
func newTestResult(host string, started time.Time) *model.CrawlResult {
	r := model.NewCrawlResult("http://"+host+"/", host)
	r.StartedAt = started
	r.FinishedAt = started.Add(3 * time.Second)

	home := model.PageRecord{
		URL:           "http://" + host + "/",
		NormalizedURL: "http://" + host + "/",
		StatusCode:    200,
		ContentType:   "text/html",
		Title:         "Home",
		HasContent:    true,
		LinksFound:    2,
		LinksQueued:   1,
	}
	home.ComputeHash("# Home\nwelcome\n\n---\n\n")

	broken := model.PageRecord{
		URL:           "http://" + host + "/broken",
		NormalizedURL: "http://" + host + "/broken/",
		StatusCode:    404,
		Error:         "HTTP 404",
	}

	r.Pages = append(r.Pages, home, broken)
	r.Sections = append(r.Sections, model.Section{URL: home.URL, Title: "Home", Markdown: "# Home\nwelcome\n\n---\n\n"})
	r.Visited = append(r.Visited, home.NormalizedURL, broken.NormalizedURL)
	return r
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		dbPath := filepath.Join(dbDir, FileName)
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != dbPath {
			t.Errorf("expected path %s, got %s", dbPath, db.Path())
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "missing")
		_, err := Open(dbDir, Options{CreateIfNotExists: false})
		if err == nil {
			t.Fatal("expected error for missing database")
		}
		if _, statErr := os.Stat(filepath.Join(dbDir, FileName)); !os.IsNotExist(statErr) {
			t.Error("database file should not have been created")
		}
	})

	t.Run("CreateIfNotExists=false opens existing database", func(t *testing.T) {
		t.Parallel()

		dbDir := t.TempDir()
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		_ = db.Close()

		db, err = Open(dbDir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		_ = db.Close()
	})
}

// TestSaveCrawl tests storing and reading back crawl runs.
func TestSaveCrawl(t *testing.T) {
	t.Parallel()

	t.Run("round trips run and pages", func(t *testing.T) {
		t.Parallel()

		db, cleanup := setupTestDB(t)
		defer cleanup()
		ctx := context.Background()

		started := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
		result := newTestResult("example.com", started)
		result.Remaining = 4
		result.Cancelled = true

		id, err := db.SaveCrawl(ctx, result, "out/site.md")
		if err != nil {
			t.Fatalf("SaveCrawl failed: %v", err)
		}
		if id <= 0 {
			t.Fatalf("expected positive run id, got %d", id)
		}

		run, err := db.GetRun(ctx, id)
		if err != nil {
			t.Fatalf("GetRun failed: %v", err)
		}
		if run == nil {
			t.Fatal("expected run, got nil")
		}
		if run.Host != "example.com" || run.Seed != "http://example.com/" {
			t.Errorf("unexpected run identity %+v", run)
		}
		if run.PagesAttempted != 2 || run.PagesFailed != 1 || run.Sections != 1 {
			t.Errorf("unexpected counters %+v", run)
		}
		if run.Remaining != 4 || !run.Cancelled {
			t.Errorf("expected cancelled run with 4 remaining, got %+v", run)
		}
		if run.OutputPath != "out/site.md" {
			t.Errorf("unexpected output path %q", run.OutputPath)
		}
		if !run.StartedAt.Equal(started) {
			t.Errorf("expected start %v, got %v", started, run.StartedAt)
		}
		if run.Duration() != 3*time.Second {
			t.Errorf("expected 3s duration, got %v", run.Duration())
		}

		pages, err := db.GetRunPages(ctx, id)
		if err != nil {
			t.Fatalf("GetRunPages failed: %v", err)
		}
		if len(pages) != 2 {
			t.Fatalf("expected 2 pages, got %d", len(pages))
		}
		if pages[0] != result.Pages[0] {
			t.Errorf("first page mismatch:\n got %+v\nwant %+v", pages[0], result.Pages[0])
		}
		if pages[1].Error != "HTTP 404" || pages[1].StatusCode != 404 || pages[1].HasContent {
			t.Errorf("unexpected failed page %+v", pages[1])
		}
	})

	t.Run("nil result is rejected", func(t *testing.T) {
		t.Parallel()

		db, cleanup := setupTestDB(t)
		defer cleanup()

		if _, err := db.SaveCrawl(context.Background(), nil, ""); err == nil {
			t.Error("expected error for nil result")
		}
	})

	t.Run("empty crawl is stored", func(t *testing.T) {
		t.Parallel()

		db, cleanup := setupTestDB(t)
		defer cleanup()
		ctx := context.Background()

		result := model.NewCrawlResult("http://empty.test/", "empty.test")
		id, err := db.SaveCrawl(ctx, result, "")
		if err != nil {
			t.Fatalf("SaveCrawl failed: %v", err)
		}

		pages, err := db.GetRunPages(ctx, id)
		if err != nil {
			t.Fatalf("GetRunPages failed: %v", err)
		}
		if len(pages) != 0 {
			t.Errorf("expected no pages, got %d", len(pages))
		}
	})
}

// TestListRuns tests listing runs with and without a host filter.
func TestListRuns(t *testing.T) {
	t.Parallel()

	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	first, err := db.SaveCrawl(ctx, newTestResult("a.test", base), "")
	if err != nil {
		t.Fatalf("SaveCrawl failed: %v", err)
	}
	second, err := db.SaveCrawl(ctx, newTestResult("a.test", base.Add(time.Hour)), "")
	if err != nil {
		t.Fatalf("SaveCrawl failed: %v", err)
	}
	if _, err := db.SaveCrawl(ctx, newTestResult("b.test", base.Add(30*time.Minute)), ""); err != nil {
		t.Fatalf("SaveCrawl failed: %v", err)
	}

	t.Run("filters by host newest first", func(t *testing.T) {
		runs, err := db.ListRuns(ctx, "a.test")
		if err != nil {
			t.Fatalf("ListRuns failed: %v", err)
		}
		if len(runs) != 2 {
			t.Fatalf("expected 2 runs, got %d", len(runs))
		}
		if runs[0].ID != second || runs[1].ID != first {
			t.Errorf("expected newest first, got ids %d, %d", runs[0].ID, runs[1].ID)
		}
	})

	t.Run("empty host lists every run", func(t *testing.T) {
		runs, err := db.ListRuns(ctx, "")
		if err != nil {
			t.Fatalf("ListRuns failed: %v", err)
		}
		if len(runs) != 3 {
			t.Errorf("expected 3 runs, got %d", len(runs))
		}
	})

	t.Run("unknown host lists nothing", func(t *testing.T) {
		runs, err := db.ListRuns(ctx, "c.test")
		if err != nil {
			t.Fatalf("ListRuns failed: %v", err)
		}
		if len(runs) != 0 {
			t.Errorf("expected no runs, got %d", len(runs))
		}
	})

	t.Run("lists hosts", func(t *testing.T) {
		hosts, err := db.ListHosts(ctx)
		if err != nil {
			t.Fatalf("ListHosts failed: %v", err)
		}
		if len(hosts) != 2 || hosts[0] != "a.test" || hosts[1] != "b.test" {
			t.Errorf("unexpected hosts %v", hosts)
		}
	})
}

// TestGetRunMissing tests lookups of runs that do not exist.
func TestGetRunMissing(t *testing.T) {
	t.Parallel()

	db, cleanup := setupTestDB(t)
	defer cleanup()

	run, err := db.GetRun(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run != nil {
		t.Errorf("expected nil run, got %+v", run)
	}
}

// TestDeleteRun tests removing a run together with its pages.
func TestDeleteRun(t *testing.T) {
	t.Parallel()

	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	id, err := db.SaveCrawl(ctx, newTestResult("example.com", time.Now()), "")
	if err != nil {
		t.Fatalf("SaveCrawl failed: %v", err)
	}
	if err := db.DeleteRun(ctx, id); err != nil {
		t.Fatalf("DeleteRun failed: %v", err)
	}

	run, err := db.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run != nil {
		t.Error("expected run to be deleted")
	}

	pages, err := db.GetRunPages(ctx, id)
	if err != nil {
		t.Fatalf("GetRunPages failed: %v", err)
	}
	if len(pages) != 0 {
		t.Errorf("expected pages to be deleted, got %d", len(pages))
	}

	if err := db.DeleteRun(ctx, id); err != nil {
		t.Errorf("deleting a missing run should not fail: %v", err)
	}
}

// TestParseTimestamp tests parsing of the stored timestamp formats.
func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	want := time.Date(2025, 6, 15, 10, 30, 45, 0, time.UTC)

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"SQLite default format", "2025-06-15 10:30:45", want},
		{"ISO 8601 with Z", "2025-06-15T10:30:45Z", want},
		{"ISO 8601 without timezone", "2025-06-15T10:30:45", want},
		{"RFC3339Nano", "2025-06-15T10:30:45.5Z", want.Add(500 * time.Millisecond)},
		{"invalid format returns zero", "not-a-date", time.Time{}},
		{"empty string returns zero", "", time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := parseTimestamp(tt.input)
			if !got.Equal(tt.want) {
				t.Errorf("parseTimestamp(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}

	t.Run("format round trips", func(t *testing.T) {
		t.Parallel()

		ts := time.Date(2025, 6, 15, 10, 30, 45, 123456789, time.FixedZone("JST", 9*3600))
		if got := parseTimestamp(formatTimestamp(ts)); !got.Equal(ts) {
			t.Errorf("expected %v, got %v", ts, got)
		}
	})
}
