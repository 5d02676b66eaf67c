package crawler

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Page is a fetched document parsed into a node tree.
type Page struct {
	// URL is the address the page was fetched from.
	URL *url.URL

	// Root is the document node.
	Root *html.Node

	// Title is the text of the first <title> element with whitespace
	// collapsed. Empty when the page has none.
	Title string

	// Links holds the raw href of every <a href> element in document order.
	Links []string
}

// ParsePage parses markup read from r.
// html.Parse recovers from malformed markup, so errors are limited to read
// failures.
func ParsePage(pageURL *url.URL, r io.Reader) (*Page, error) {
	root, err := htmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", pageURL, err)
	}

	return &Page{
		URL:   pageURL,
		Root:  root,
		Title: pageTitle(root),
		Links: pageLinks(root),
	}, nil
}

// pageTitle returns the collapsed text of the first <title> element.
func pageTitle(root *html.Node) string {
	n := htmlquery.FindOne(root, "//title")
	if n == nil {
		return ""
	}
	return strings.Join(strings.Fields(htmlquery.InnerText(n)), " ")
}

// pageLinks returns the href of every anchor that has one.
func pageLinks(root *html.Node) []string {
	links := make([]string, 0)
	goquery.NewDocumentFromNode(root).Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			links = append(links, href)
		}
	})
	return links
}
