package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/sitescribe/internal/model"
)

// createTestResult creates a crawl result with sample data for testing.
func createTestResult() *model.CrawlResult {
	result := model.NewCrawlResult("http://example.com/", "example.com")
	result.StartedAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	result.FinishedAt = result.StartedAt.Add(1500 * time.Millisecond)

	home := model.PageRecord{
		URL:           "http://example.com/",
		NormalizedURL: "http://example.com/",
		StatusCode:    200,
		Title:         "Home",
		HasContent:    true,
		LinksFound:    3,
		LinksQueued:   2,
	}
	home.ComputeHash("# Home\nHello\n\n---\n\n")

	result.Pages = append(result.Pages,
		home,
		model.PageRecord{
			URL:           "http://example.com/index",
			NormalizedURL: "http://example.com/index/",
			StatusCode:    200,
			Title:         "Index",
		},
		model.PageRecord{
			URL:           "http://example.com/broken",
			NormalizedURL: "http://example.com/broken/",
			StatusCode:    500,
			Error:         "fetch http://example.com/broken: HTTP 500",
		},
	)
	result.Sections = append(result.Sections, model.Section{
		URL:      "http://example.com/",
		Title:    "Home",
		Markdown: "# Home\nHello\n\n---\n\n",
	})
	result.AddFailure("http://example.com/broken", model.FailureFetch, errors.New("fetch http://example.com/broken: HTTP 500"))
	result.Visited = []string{"http://example.com/", "http://example.com/broken/", "http://example.com/index/"}

	return result
}

func TestNewSummary(t *testing.T) {
	t.Parallel()

	t.Run("counts page outcomes", func(t *testing.T) {
		t.Parallel()

		s := NewSummary(createTestResult())
		if s.PagesAttempted != 3 || s.PagesWithContent != 1 || s.PagesWithoutContent != 1 || s.PagesFailed != 1 {
			t.Errorf("unexpected page counts %+v", s)
		}
		if s.URLsDiscovered != 3 {
			t.Errorf("expected 3 discovered URLs, got %d", s.URLsDiscovered)
		}
		if s.MarkdownBytes != len("# Home\nHello\n\n---\n\n") {
			t.Errorf("unexpected markdown bytes %d", s.MarkdownBytes)
		}
		if s.Duration != "1.5s" {
			t.Errorf("expected duration 1.5s, got %q", s.Duration)
		}
		if s.Status != StatusComplete {
			t.Errorf("expected complete status, got %q", s.Status)
		}
	})

	t.Run("status reflects how the crawl ended", func(t *testing.T) {
		t.Parallel()

		r := createTestResult()
		r.Remaining = 4
		if got := NewSummary(r).Status; got != StatusLimited {
			t.Errorf("expected %q, got %q", StatusLimited, got)
		}

		r.Cancelled = true
		if got := NewSummary(r).Status; got != StatusCancelled {
			t.Errorf("expected %q, got %q", StatusCancelled, got)
		}
	})
}

// TestSimpleWriter tests the human-readable summary writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header and counts", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"SITESCRIBE CRAWL SUMMARY", "http://example.com/", "Status:     Complete", "Attempted:        3", "FAILURES", "[FETCH]"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
		if strings.Contains(output, "PAGE LOG") {
			t.Error("page log must only be shown in verbose mode")
		}
	})

	t.Run("verbose mode lists pages", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithVerbose(true)).Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"PAGE LOG", "[ OK ] http://example.com/", "[SKIP] http://example.com/index", "[FAIL] http://example.com/broken", "Status: 500"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("empty sections hidden by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		r := model.NewCrawlResult("http://example.com/", "example.com")
		if _, err := NewSimpleWriter(&buf).Write(r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), "FAILURES") {
			t.Error("expected failures section to be hidden")
		}
	})

	t.Run("empty sections shown with showEmpty", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		r := model.NewCrawlResult("http://example.com/", "example.com")
		if _, err := NewSimpleWriter(&buf, WithShowEmpty(true), WithVerbose(true)).Write(r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "No failures") || !strings.Contains(buf.String(), "No pages crawled") {
			t.Errorf("expected empty sections, got %q", buf.String())
		}
	})

	t.Run("shows cancelled status", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		r := createTestResult()
		r.Cancelled = true
		r.Remaining = 2
		if _, err := NewSimpleWriter(&buf).Write(r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), StatusCancelled) || !strings.Contains(buf.String(), "Not crawled:      2") {
			t.Errorf("expected cancelled status, got %q", buf.String())
		}
	})
}

// TestJSONWriter tests the JSON summary writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("outputs valid JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithVersion("1.2.3")).Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded struct {
			Version string  `json:"version"`
			Summary Summary `json:"summary"`
			Result  struct {
				Seed     string              `json:"seed"`
				Sections []map[string]string `json:"sections"`
				Pages    []model.PageRecord  `json:"pages"`
			} `json:"result"`
		}
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded.Version != "1.2.3" {
			t.Errorf("expected version 1.2.3, got %q", decoded.Version)
		}
		if decoded.Summary.PagesFailed != 1 || decoded.Result.Seed != "http://example.com/" {
			t.Errorf("unexpected content %+v", decoded)
		}
		if len(decoded.Result.Pages) != 3 || decoded.Result.Pages[0].Hash == "" {
			t.Errorf("expected page records with hashes, got %+v", decoded.Result.Pages)
		}
		if _, ok := decoded.Result.Sections[0]["markdown"]; ok {
			t.Error("section bodies must not be serialized")
		}
	})

	t.Run("compact output by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Count(buf.String(), "\n") != 1 {
			t.Error("expected single-line JSON")
		}
	})

	t.Run("pretty print with indent", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"summary\"") {
			t.Error("expected indented JSON")
		}
	})

	t.Run("custom prefix and indent", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithIndent(">", "\t")).Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n>\t\"summary\"") {
			t.Errorf("expected prefixed tab indentation, got %q", buf.String()[:40])
		}
	})
}

// TestMarkdownWriter tests the Markdown summary writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header, tables and footer", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"# Crawl Summary",
			"`example.com`",
			"## Pages",
			"## Page Log",
			"## Failures",
			"```mermaid",
			"pie",
			"[!WARNING]",
			"HTTP 500",
			"sitescribe",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("cancelled crawl gets a caution", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		r := createTestResult()
		r.Cancelled = true
		if _, err := NewMarkdownWriter(&buf).Write(r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "[!CAUTION]") {
			t.Error("expected caution alert")
		}
	})

	t.Run("empty crawl", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		r := model.NewCrawlResult("http://example.com/", "example.com")
		if _, err := NewMarkdownWriter(&buf).Write(r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		if !strings.Contains(output, "No pages crawled.") || !strings.Contains(output, "No failures.") {
			t.Errorf("unexpected output %q", output)
		}
		if strings.Contains(output, "```mermaid") {
			t.Error("expected no chart for an empty crawl")
		}
	})
}

// TestMultiWriter tests writing to several writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var text, js bytes.Buffer
		mw := NewMultiWriter(NewSimpleWriter(&text), NewJSONWriter(&js))

		n, err := mw.Write(createTestResult())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if text.Len() == 0 || js.Len() == 0 {
			t.Error("expected both writers to produce output")
		}
		if n != text.Len()+js.Len() {
			t.Errorf("expected %d bytes, got %d", text.Len()+js.Len(), n)
		}
	})

	t.Run("handles empty writers list", func(t *testing.T) {
		t.Parallel()

		n, err := NewMultiWriter().Write(createTestResult())
		if err != nil || n != 0 {
			t.Errorf("expected no-op, got n=%d err=%v", n, err)
		}
	})
}

func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"abcdef", 3, "abc"},
		{"日本語のタイトルです", 6, "日本語..."},
	}

	for _, tt := range tests {
		if got := truncateString(tt.in, tt.max); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
