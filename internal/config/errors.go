package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoSeedURL is returned when no seed URL was given.
	ErrNoSeedURL = errors.New("no seed URL specified")

	// ErrNoOutputPath is returned when no output file was given.
	ErrNoOutputPath = errors.New("no output path specified: use --output")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxPages is returned when the page limit is negative.
	// Use 0 for no limit.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is not positive.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrNoDBDir is returned when history is enabled without a database directory.
	ErrNoDBDir = errors.New("no database directory specified for crawl history")
)
