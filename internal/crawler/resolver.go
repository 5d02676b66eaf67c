package crawler

import (
	"fmt"
	"net/url"
	"strings"
)

// Rejection explains why Resolve did not accept a link.
type Rejection int

const (
	// RejectNone means the link was accepted.
	RejectNone Rejection = iota

	// RejectEmpty means the href was empty or whitespace only.
	RejectEmpty

	// RejectInvalid means the href could not be resolved to an absolute URL.
	RejectInvalid

	// RejectSamePageAnchor means the href only points at a fragment of the
	// page it was found on.
	RejectSamePageAnchor

	// RejectForeignHost means the href leaves the crawl's host.
	RejectForeignHost
)

// String returns a short name for the rejection.
func (r Rejection) String() string {
	switch r {
	case RejectNone:
		return "none"
	case RejectEmpty:
		return "empty"
	case RejectInvalid:
		return "invalid"
	case RejectSamePageAnchor:
		return "same-page-anchor"
	case RejectForeignHost:
		return "foreign-host"
	default:
		return "unknown"
	}
}

// ResolvedLink is an accepted link.
type ResolvedLink struct {
	// Absolute is the URL to fetch.
	Absolute string

	// Normalized is the identity key used by the Frontier.
	Normalized string
}

// Resolver turns href values into absolute same-host URLs.
type Resolver struct {
	// host is the lowercased hostname of the seed.
	host string
}

// NewResolver creates a Resolver scoped to the host of seed.
func NewResolver(seed string) (*Resolver, error) {
	u, err := url.Parse(strings.TrimSpace(seed))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Scheme == "" || u.Hostname() == "" {
		return nil, fmt.Errorf("%w: %q is not absolute", ErrInvalidURL, seed)
	}
	return &Resolver{host: strings.ToLower(u.Hostname())}, nil
}

// Host returns the host the resolver accepts.
func (r *Resolver) Host() string {
	return r.host
}

// InScope reports whether u is on the resolver's host.
// Only the hostname is compared; scheme and port are ignored.
func (r *Resolver) InScope(u *url.URL) bool {
	return u != nil && strings.EqualFold(u.Hostname(), r.host)
}

// Resolve resolves href relative to base, the URL of the page it was found
// on. Checks run in order: empty href, resolution, same-page anchor, host.
// The returned error is only set for RejectInvalid.
func (r *Resolver) Resolve(base *url.URL, href string) (ResolvedLink, Rejection, error) {
	href = strings.TrimSpace(href)
	if href == "" {
		return ResolvedLink{}, RejectEmpty, nil
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ResolvedLink{}, RejectInvalid, fmt.Errorf("%w: %q: %w", ErrInvalidURL, href, err)
	}
	abs := base.ResolveReference(ref)

	// mailto: and javascript: links have no host and are never in scope.
	if abs.Host == "" {
		if abs.Opaque != "" || abs.Scheme != "http" && abs.Scheme != "https" {
			return ResolvedLink{}, RejectForeignHost, nil
		}
		return ResolvedLink{}, RejectInvalid, fmt.Errorf("%w: %q resolves without a host", ErrInvalidURL, href)
	}

	normalized, err := normalize(abs)
	if err != nil {
		return ResolvedLink{}, RejectInvalid, err
	}

	if abs.Fragment != "" || abs.RawFragment != "" {
		if baseNormalized, err := normalize(base); err == nil && baseNormalized == normalized {
			return ResolvedLink{}, RejectSamePageAnchor, nil
		}
	}

	if !r.InScope(abs) {
		return ResolvedLink{}, RejectForeignHost, nil
	}

	return ResolvedLink{Absolute: abs.String(), Normalized: normalized}, RejectNone, nil
}
