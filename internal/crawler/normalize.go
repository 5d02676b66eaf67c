package crawler

import (
	"fmt"
	"net/url"
	"strings"
)

// defaultPorts maps schemes to the port that is implied when none is given.
var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

// NormalizeURL returns the identity key of an absolute URL.
//
// The key keeps scheme, host and path only. Scheme and host are lowercased,
// default ports and userinfo are dropped, and query and fragment are
// discarded. The path always ends in "/", so "/about" and "/about/" collapse
// to one key and a bare host becomes "scheme://host/".
//
// NormalizeURL is idempotent: NormalizeURL(NormalizeURL(u)) == NormalizeURL(u).
func NormalizeURL(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	return normalize(u)
}

// normalize is NormalizeURL for an already parsed URL.
func normalize(u *url.URL) (string, error) {
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q is not absolute", ErrInvalidURL, u.String())
	}

	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", fmt.Errorf("%w: %q has no host", ErrInvalidURL, u.String())
	}
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port := u.Port(); port != "" && port != defaultPorts[scheme] {
		host += ":" + port
	}

	path := u.EscapedPath()
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}

	return scheme + "://" + host + path, nil
}
