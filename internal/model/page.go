package model

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"
)

// PageRecord describes what happened to one dequeued URL.
// A record is produced for every page the crawler attempted, whether the
// fetch succeeded or not, so the crawl summary and history can show both.
type PageRecord struct {
	// URL is the absolute URL that was fetched.
	URL string `json:"url"`

	// NormalizedURL is the identity key the frontier used for this page.
	NormalizedURL string `json:"normalized_url"`

	// StatusCode is the HTTP response status code.
	// Zero when the request never produced a response.
	StatusCode int `json:"status_code,omitempty"`

	// ContentType is the MIME type of the response.
	ContentType string `json:"content_type,omitempty"`

	// Title is the text of the page's <title> element, if any.
	Title string `json:"title,omitempty"`

	// HasContent reports whether the page contributed a Markdown section.
	HasContent bool `json:"has_content"`

	// LinksFound is the number of <a href> elements on the page.
	LinksFound int `json:"links_found"`

	// LinksQueued is the number of links newly added to the frontier.
	LinksQueued int `json:"links_queued"`

	// MarkdownLength is the length in bytes of the rendered section.
	MarkdownLength int `json:"markdown_length,omitempty"`

	// Hash is the SHA3-256 hash of the rendered section.
	// Used to detect content changes between crawls of the same site.
	Hash string `json:"hash,omitempty"`

	// Error is the failure reason when the page could not be processed.
	Error string `json:"error,omitempty"`
}

// ComputeHash calculates and sets the hash of the rendered section.
// An empty section produces an empty hash.
func (p *PageRecord) ComputeHash(section string) {
	if section == "" {
		p.Hash = ""
		p.MarkdownLength = 0
		return
	}

	sum := sha3.Sum256([]byte(section))
	p.Hash = hex.EncodeToString(sum[:])
	p.MarkdownLength = len(section)
}

// Failed reports whether the page ended in a failure.
func (p *PageRecord) Failed() bool {
	return p.Error != ""
}

// IsHTML reports whether a Content-Type header value describes markup
// the crawler can extract content from.
// An empty content type is accepted because many servers omit it.
func IsHTML(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if ct == "" {
		return true
	}
	return strings.HasPrefix(ct, "text/html") ||
		strings.HasPrefix(ct, "application/xhtml+xml") ||
		strings.HasPrefix(ct, "text/plain")
}
