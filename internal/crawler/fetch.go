package crawler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/nao1215/sitescribe/internal/model"
)

// acceptHeader prefers markup but does not refuse anything, so servers
// answer with a status code instead of 406.
const acceptHeader = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

// response is a successfully fetched page body.
type response struct {
	// url is the final URL after redirects.
	url         *url.URL
	statusCode  int
	contentType string
	body        []byte
}

// fetcher issues the GET for one page at a time.
type fetcher struct {
	client      *http.Client
	userAgent   string
	timeout     time.Duration
	maxBodySize int64
}

// fetch downloads pageURL and returns its body decoded to UTF-8.
// Any failure is returned as a *FetchError.
func (f *fetcher) fetch(ctx context.Context, pageURL string) (*response, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.CopyN(io.Discard, resp.Body, 4096) //nolint:errcheck // best effort
		return nil, &FetchError{URL: pageURL, StatusCode: resp.StatusCode}
	}

	contentType := resp.Header.Get("Content-Type")
	if !model.IsHTML(contentType) {
		return nil, &FetchError{
			URL:        pageURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: %s", ErrUnsupportedContentType, contentType),
		}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, &FetchError{URL: pageURL, StatusCode: resp.StatusCode, Err: err}
	}

	body, err := decodeBody(raw, contentType)
	if err != nil {
		return nil, &FetchError{URL: pageURL, StatusCode: resp.StatusCode, Err: err}
	}

	finalURL := req.URL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL
	}

	return &response{
		url:         finalURL,
		statusCode:  resp.StatusCode,
		contentType: contentType,
		body:        body,
	}, nil
}

// decodeBody converts raw to UTF-8 using the declared or sniffed charset.
func decodeBody(raw []byte, contentType string) ([]byte, error) {
	r, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to detect charset: %w", err)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode body: %w", err)
	}
	return body, nil
}
