package crawler

import (
	"net/url"
	"path"
	"strings"
)

// Scope filters discovered links by URL path.
// Ignore patterns win over follow patterns. When follow patterns are set,
// a path must match at least one of them.
type Scope struct {
	ignore []string
	follow []string
}

// NewScope creates a Scope from glob patterns such as "/admin/*" or "*.pdf".
func NewScope(ignore, follow []string) *Scope {
	return &Scope{ignore: ignore, follow: follow}
}

// Allows reports whether a link to rawURL may be followed.
func (s *Scope) Allows(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	p := u.Path
	if p == "" {
		p = "/"
	}

	for _, pattern := range s.ignore {
		if matchPattern(pattern, p) {
			return false
		}
	}

	if len(s.follow) == 0 {
		return true
	}
	for _, pattern := range s.follow {
		if matchPattern(pattern, p) {
			return true
		}
	}
	return false
}

// matchPattern checks if a URL path matches a glob pattern.
//
//   - "/docs/*" matches "/docs", "/docs/" and anything below "/docs/"
//   - "*.pdf" matches any path ending in ".pdf"
//   - "/v?" matches "/v1", "/v2"
//
// A pattern without "/" is also tried against the last path segment.
func matchPattern(pattern, p string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}

	if ext, ok := strings.CutPrefix(pattern, "*."); ok {
		if strings.HasSuffix(p, "."+ext) {
			return true
		}
	}

	if matched, err := path.Match(pattern, p); err == nil && matched {
		return true
	}

	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "/") {
		base := path.Base(strings.TrimSuffix(p, "/"))
		if matched, err := path.Match(pattern, base); err == nil && matched {
			return true
		}
	}

	return false
}
