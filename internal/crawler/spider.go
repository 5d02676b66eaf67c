package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nao1215/sitescribe/internal/convert"
	"github.com/nao1215/sitescribe/internal/model"
)

const (
	// DefaultUserAgent is sent when no User-Agent is configured.
	DefaultUserAgent = "sitescribe/1.0 (+https://github.com/nao1215/sitescribe)"

	// DefaultTimeout is the per-request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxBodySize is the largest response body read, in bytes.
	DefaultMaxBodySize int64 = 5 * 1024 * 1024
)

// ProgressFunc receives progress snapshots in processing order.
type ProgressFunc func(model.ProgressSnapshot)

// Spider crawls a single host breadth-first, starting from a seed URL.
// Pages are fetched one at a time; every page is fetched, rendered and
// scanned for links before the next URL is dequeued.
//
// A Spider holds configuration only. Crawl state lives in each call to
// Crawl, so one Spider can run several crawls.
type Spider struct {
	// client performs the GET requests.
	client *http.Client

	// logger receives per-page diagnostics.
	logger *slog.Logger

	// renderer turns content nodes into Markdown sections.
	renderer *convert.Renderer

	// maxPages limits how many pages are attempted. 0 means unlimited.
	maxPages int

	// timeout is the per-request timeout.
	timeout time.Duration

	// userAgent is the User-Agent header to use.
	userAgent string

	// maxBodySize limits the size of response bodies to read.
	maxBodySize int64

	// ignorePatterns are URL path patterns to skip during crawling.
	// Patterns use glob syntax (e.g., "/admin/*", "*.pdf").
	ignorePatterns []string

	// followPatterns are URL path patterns to follow during crawling.
	// Empty means all paths are allowed (subject to ignorePatterns).
	followPatterns []string
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithLogger sets the logger for diagnostics.
func WithLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		s.logger = logger
	}
}

// WithMaxPages sets the maximum number of pages to attempt.
// 0 means no limit.
func WithMaxPages(maxPages int) SpiderOption {
	return func(s *Spider) {
		s.maxPages = maxPages
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) SpiderOption {
	return func(s *Spider) {
		s.timeout = d
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) SpiderOption {
	return func(s *Spider) {
		s.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size.
func WithMaxBodySize(size int64) SpiderOption {
	return func(s *Spider) {
		s.maxBodySize = size
	}
}

// WithIgnorePatterns sets URL path patterns to skip.
// Patterns use glob syntax (e.g., "/admin/*", "*.pdf", "/logout*").
// They apply to discovered links, never to the seed.
func WithIgnorePatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.ignorePatterns = patterns
	}
}

// WithFollowPatterns sets URL path patterns to follow.
// If set, only discovered links matching at least one pattern are queued.
func WithFollowPatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.followPatterns = patterns
	}
}

// WithConverter sets the Markdown converter used to render sections.
func WithConverter(c convert.Converter) SpiderOption {
	return func(s *Spider) {
		s.renderer = convert.NewRenderer(c)
	}
}

// NewSpider creates a Spider that fetches with client.
// A nil client selects a direct client built by NewHTTPClient.
func NewSpider(client *http.Client, opts ...SpiderOption) *Spider {
	if client == nil {
		client, _ = NewHTTPClient("", 0) //nolint:errcheck // only fails for an invalid proxy address
	}

	s := &Spider{
		client:      client,
		logger:      slog.Default(),
		renderer:    convert.NewRenderer(nil),
		timeout:     DefaultTimeout,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Crawl crawls the host of seed and returns the accumulated result.
//
// Per-page failures never abort the crawl; they are recorded in the
// result's Pages and Failures. The only errors are ErrInvalidSeedURL,
// returned with a nil result, and the context's error when ctx is done
// before the frontier empties. In the latter case the partial result is
// returned with Cancelled set.
//
// onProgress may be nil. It is called synchronously from the crawl loop.
func (s *Spider) Crawl(ctx context.Context, seed string, onProgress ProgressFunc) (*model.CrawlResult, error) {
	seedURL, err := parseSeed(seed)
	if err != nil {
		return nil, err
	}

	resolver := &Resolver{host: strings.ToLower(seedURL.Hostname())}
	frontier := NewFrontier()
	if err := frontier.Seed(seedURL.String()); err != nil {
		return nil, err
	}

	c := &crawl{
		spider:   s,
		resolver: resolver,
		frontier: frontier,
		scope:    NewScope(s.ignorePatterns, s.followPatterns),
		result:   model.NewCrawlResult(seedURL.String(), resolver.Host()),
		fetcher: &fetcher{
			client:      scopedClient(s.client, resolver),
			userAgent:   s.userAgent,
			timeout:     s.timeout,
			maxBodySize: s.maxBodySize,
		},
		onProgress: onProgress,
	}

	s.logger.Debug("starting crawl", "seed", seedURL.String(), "host", resolver.Host())
	err = c.run(ctx)
	c.finish()
	s.logger.Debug("crawl finished",
		"pages", len(c.result.Pages),
		"sections", len(c.result.Sections),
		"failures", len(c.result.Failures),
		"remaining", c.result.Remaining,
	)

	return c.result, err
}

// parseSeed validates the seed as an absolute http(s) URL.
func parseSeed(seed string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(seed))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSeedURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: %q must use http or https", ErrInvalidSeedURL, seed)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("%w: %q has no host", ErrInvalidSeedURL, seed)
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u, nil
}

// scopedClient returns a copy of client whose redirects never leave the
// resolver's host. A redirect off the host returns the 3xx response, which
// the fetcher reports as a failure.
func scopedClient(client *http.Client, resolver *Resolver) *http.Client {
	scoped := *client
	next := client.CheckRedirect
	scoped.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if !resolver.InScope(req.URL) {
			return http.ErrUseLastResponse
		}
		if next != nil {
			return next(req, via)
		}
		if len(via) >= maxRedirects {
			return http.ErrUseLastResponse
		}
		return nil
	}
	return &scoped
}

// crawl is the state of one Crawl call.
// The counters are used for progress only.
type crawl struct {
	spider     *Spider
	resolver   *Resolver
	frontier   *Frontier
	scope      *Scope
	fetcher    *fetcher
	result     *model.CrawlResult
	onProgress ProgressFunc

	// scraped counts dequeued pages, failed ones included.
	scraped int
}

// run drives the fetch, extract, discover loop until the frontier is empty,
// the page limit is reached or ctx is done.
func (c *crawl) run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			c.result.Cancelled = true
			c.spider.logger.Debug("crawl cancelled", "remaining", c.frontier.Len())
			return err
		}

		if c.spider.maxPages > 0 && c.scraped >= c.spider.maxPages {
			c.spider.logger.Debug("page limit reached", "max_pages", c.spider.maxPages)
			return nil
		}

		pageURL, ok := c.frontier.Next()
		if !ok {
			return nil
		}

		c.scraped++
		c.emit("Scraping: " + pageURL)

		outcome, base := c.processPage(ctx, pageURL)
		c.record(&outcome, base)

		c.emit(fmt.Sprintf("Scraped %d of %d pages", c.scraped, c.frontier.Discovered()))
	}
}

// finish fills in the fields that are only known once the loop stops.
func (c *crawl) finish() {
	c.result.Visited = c.frontier.Visited()
	c.result.Remaining = c.frontier.Len()
	c.result.FinishedAt = time.Now()
}

// emit sends a progress snapshot.
func (c *crawl) emit(message string) {
	if c.onProgress == nil {
		return
	}
	c.onProgress(model.ProgressSnapshot{
		Percent: model.Percent(c.scraped, c.frontier.Discovered()),
		Message: message,
	})
}

// processPage fetches, parses and renders one page. It never fails; the
// outcome carries the failure instead. base is the URL links on the page
// resolve against and is nil for failed pages.
func (c *crawl) processPage(ctx context.Context, pageURL string) (model.PageOutcome, *url.URL) {
	outcome := model.PageOutcome{
		Record: model.PageRecord{URL: pageURL},
	}
	if normalized, err := NormalizeURL(pageURL); err == nil {
		outcome.Record.NormalizedURL = normalized
	}

	resp, err := c.fetcher.fetch(ctx, pageURL)
	if err != nil {
		var fe *FetchError
		if errors.As(err, &fe) {
			outcome.Record.StatusCode = fe.StatusCode
		}
		outcome.FailureKind = model.FailureFetch
		outcome.Err = err
		return outcome, nil
	}
	outcome.Record.StatusCode = resp.statusCode
	outcome.Record.ContentType = resp.contentType

	if final, err := normalize(resp.url); err == nil && final != outcome.Record.NormalizedURL {
		if !c.frontier.MarkVisited(final) {
			// The redirect target is queued or done on its own.
			c.spider.logger.Debug("redirect target already known", "url", pageURL, "target", resp.url.String())
			return outcome, nil
		}
		c.spider.logger.Debug("redirected", "url", pageURL, "target", resp.url.String())
	}

	page, err := ParsePage(resp.url, bytes.NewReader(resp.body))
	if err != nil {
		outcome.FailureKind = model.FailureParse
		outcome.Err = err
		return outcome, nil
	}
	outcome.Record.Title = page.Title
	outcome.Record.LinksFound = len(page.Links)

	node, strategy := SelectContent(page.Root)
	if node != nil {
		md, err := c.spider.renderer.Render(page.Title, node)
		if err != nil {
			outcome.FailureKind = model.FailureConversion
			outcome.Err = err
			return outcome, nil
		}
		outcome.Section = &model.Section{
			URL:      pageURL,
			Title:    page.Title,
			Markdown: md,
		}
		outcome.Record.HasContent = true
		outcome.Record.ComputeHash(md)
		c.spider.logger.Debug("content extracted",
			"url", pageURL,
			"strategy", string(strategy),
			"markdown_length", len(md),
		)
	} else {
		c.spider.logger.Debug("no content node found", "url", pageURL)
	}

	outcome.Links = page.Links
	return outcome, page.URL
}

// record applies a page outcome to the result and offers its links to the
// frontier. A failed page contributes neither a section nor links.
func (c *crawl) record(outcome *model.PageOutcome, base *url.URL) {
	if !outcome.Succeeded() {
		outcome.Record.Error = outcome.Err.Error()
		c.result.Pages = append(c.result.Pages, outcome.Record)
		c.result.AddFailure(outcome.Record.URL, outcome.FailureKind, outcome.Err)
		c.spider.logger.Warn("page failed",
			"url", outcome.Record.URL,
			"kind", string(outcome.FailureKind),
			"error", outcome.Err,
		)
		return
	}

	if outcome.Section != nil {
		c.result.Sections = append(c.result.Sections, *outcome.Section)
	}

	outcome.Record.LinksQueued = c.discover(base, outcome.Links)
	c.result.Pages = append(c.result.Pages, outcome.Record)
}

// discover resolves hrefs against base and offers the accepted ones.
// It returns the number of newly queued links.
func (c *crawl) discover(base *url.URL, hrefs []string) int {
	queued := 0
	for _, href := range hrefs {
		link, rejection, err := c.resolver.Resolve(base, href)
		switch rejection {
		case RejectNone:
		case RejectInvalid:
			c.result.AddFailure(href, model.FailureLink, err)
			c.spider.logger.Debug("invalid link", "page", base.String(), "href", href, "error", err)
			continue
		default:
			c.spider.logger.Debug("link skipped", "href", href, "reason", rejection.String())
			continue
		}

		if !c.scope.Allows(link.Absolute) {
			c.spider.logger.Debug("link filtered", "url", link.Absolute)
			continue
		}

		if c.frontier.Offer(link) {
			queued++
		}
	}
	return queued
}
