package crawler

import (
	"fmt"
	"net/url"
	"sort"
	"sync"
)

// Frontier owns the crawl queue and the set of URLs ever discovered.
// Recording a URL as seen and enqueueing it happen under one lock, so a
// normalized URL is enqueued at most once for the life of the Frontier.
type Frontier struct {
	mu         sync.Mutex
	queue      []string
	seen       map[string]struct{}
	discovered int
	seeded     bool
}

// NewFrontier creates an empty Frontier.
func NewFrontier() *Frontier {
	return &Frontier{
		queue: make([]string, 0),
		seen:  make(map[string]struct{}),
	}
}

// Seed records and enqueues the crawl's starting URL.
// It may only be called once and does not count as a discovery.
func (f *Frontier) Seed(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSeedURL, err)
	}
	key, err := normalize(u)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSeedURL, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.seeded {
		return fmt.Errorf("%w: frontier already seeded", ErrInvalidSeedURL)
	}
	f.seeded = true
	f.seen[key] = struct{}{}
	f.queue = append(f.queue, u.String())
	return nil
}

// Offer enqueues link unless its normalized form was seen before.
// It reports whether the link was enqueued.
func (f *Frontier) Offer(link ResolvedLink) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.seen[link.Normalized]; ok {
		return false
	}
	f.seen[link.Normalized] = struct{}{}
	f.queue = append(f.queue, link.Absolute)
	f.discovered++
	return true
}

// Next dequeues the oldest URL. ok is false when the queue is empty.
func (f *Frontier) Next() (rawURL string, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queue) == 0 {
		return "", false
	}
	rawURL = f.queue[0]
	f.queue[0] = ""
	f.queue = f.queue[1:]
	return rawURL, true
}

// Len returns the number of queued URLs.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Discovered returns how many offered links were accepted.
func (f *Frontier) Discovered() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.discovered
}

// MarkVisited records normalized as seen without enqueueing it, for pages
// reached through a redirect. It reports whether the URL was new.
// A marked URL is not counted as discovered.
func (f *Frontier) MarkVisited(normalized string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.seen[normalized]; ok {
		return false
	}
	f.seen[normalized] = struct{}{}
	return true
}

// Visited returns every recorded normalized URL, sorted.
func (f *Frontier) Visited() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, 0, len(f.seen))
	for k := range f.seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
