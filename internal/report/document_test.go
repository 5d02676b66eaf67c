package report

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteDocument(t *testing.T) {
	t.Parallel()

	t.Run("creates parent directories and writes text", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "out", "nested", "site.md")
		if err := WriteDocument(path, "# Home\nHéllo\n\n---\n\n"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got, err := os.ReadFile(path) //nolint:gosec // test path
		if err != nil {
			t.Fatalf("failed to read: %v", err)
		}
		if string(got) != "# Home\nHéllo\n\n---\n\n" {
			t.Errorf("unexpected content %q", got)
		}
	})

	t.Run("overwrites existing file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "site.md")
		if err := os.WriteFile(path, []byte("old content that is longer"), 0o600); err != nil {
			t.Fatal(err)
		}
		if err := WriteDocument(path, "new"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got, err := os.ReadFile(path) //nolint:gosec // test path
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != "new" {
			t.Errorf("expected file to be replaced, got %q", got)
		}
	})

	t.Run("empty document", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "empty.md")
		if err := WriteDocument(path, ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		info, err := os.Stat(path)
		if err != nil || info.Size() != 0 {
			t.Errorf("expected empty file, got %v %v", info, err)
		}
	})

	t.Run("path is a directory", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		err := WriteDocument(dir, "text")
		if !errors.Is(err, ErrPersistence) {
			t.Fatalf("expected ErrPersistence, got %v", err)
		}
		var pe *PersistenceError
		if !errors.As(err, &pe) || pe.Path != dir {
			t.Errorf("expected PersistenceError for %q, got %v", dir, err)
		}
	})

	t.Run("parent is a file", func(t *testing.T) {
		t.Parallel()

		file := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(file, nil, 0o600); err != nil {
			t.Fatal(err)
		}
		if err := WriteDocument(filepath.Join(file, "site.md"), "text"); !errors.Is(err, ErrPersistence) {
			t.Errorf("expected ErrPersistence, got %v", err)
		}
	})

	t.Run("empty path", func(t *testing.T) {
		t.Parallel()

		if err := WriteDocument("", "text"); !errors.Is(err, ErrPersistence) {
			t.Errorf("expected ErrPersistence, got %v", err)
		}
	})
}
