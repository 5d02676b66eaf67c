package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrPersistence is matched by every *PersistenceError.
var ErrPersistence = errors.New("failed to write document")

// PersistenceError is returned when the crawl output cannot be written.
// The crawl result itself is unaffected.
type PersistenceError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrPersistence, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrPersistence) true for every PersistenceError.
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// documentPermission is the mode of newly created output files.
const documentPermission = 0o644

// WriteDocument writes text to path as UTF-8, replacing any existing file.
// Missing parent directories are created.
func WriteDocument(path, text string) error {
	if path == "" {
		return &PersistenceError{Path: path, Err: errors.New("empty output path")}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return &PersistenceError{Path: path, Err: err}
		}
	}

	if err := os.WriteFile(path, []byte(text), documentPermission); err != nil {
		return &PersistenceError{Path: path, Err: err}
	}
	return nil
}
