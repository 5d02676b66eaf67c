// Package crawler crawls a single website and renders each page's main
// content as a Markdown section.
//
// # Architecture
//
// The Spider drives a sequential loop over a Frontier: dequeue a URL, fetch
// it, parse it, select the content node, render it, then resolve and offer
// the page's links. The loop ends when the Frontier is empty, the page
// limit is reached or the context is done.
//
// # Components
//
//   - NormalizeURL: identity key of a URL (scheme, host and path, trailing "/")
//   - Resolver: resolves hrefs and rejects empty, invalid, same-page anchor
//     and foreign host links
//   - Frontier: FIFO queue plus the set of every URL ever queued
//   - SelectContent: <main>/<article>, then well-known ids, then well-known
//     classes, then the body <div> with the most text
//   - Spider: the crawl loop; Start runs it in the background as a Job
//
// # Scope
//
// Only the seed's hostname is crawled. Links to other hosts are never
// fetched and redirects that leave the host are not followed.
//
// # Usage
//
//	spider := crawler.NewSpider(nil, crawler.WithMaxPages(100))
//	result, err := spider.Crawl(ctx, "https://example.com/", nil)
//	if err != nil {
//		return err
//	}
//	fmt.Print(result.Markdown())
package crawler
