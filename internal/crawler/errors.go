package crawler

import (
	"errors"
	"fmt"
)

// ErrInvalidSeedURL is returned when the seed cannot be used to start a crawl.
// It is the only crawler error that aborts a crawl before it begins.
var ErrInvalidSeedURL = errors.New("invalid seed URL")

// ErrInvalidURL is returned when a URL cannot be parsed as an absolute
// http(s) URL.
var ErrInvalidURL = errors.New("invalid URL")

// ErrFetch is the sentinel matched by every *FetchError.
var ErrFetch = errors.New("fetch failed")

// ErrUnsupportedContentType is returned when a response is not markup or
// plain text.
var ErrUnsupportedContentType = errors.New("unsupported content type")

// FetchError describes a failed page fetch.
// StatusCode is zero when the request never produced a response.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.StatusCode != 0 && e.Err == nil {
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrFetch) true for every FetchError.
func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}

// ErrInvalidProxyAddress is returned when a SOCKS5 proxy address is not in
// "host:port" form.
var ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")
