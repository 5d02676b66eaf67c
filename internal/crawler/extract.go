package crawler

import (
	"fmt"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/nao1215/sitescribe/internal/convert"
)

// Strategy names the step of the content selection chain that matched.
type Strategy string

const (
	// StrategyNone means no content node was found.
	StrategyNone Strategy = ""

	// StrategySemantic matched a <main> or <article> element.
	StrategySemantic Strategy = "semantic"

	// StrategyID matched a well-known id attribute.
	StrategyID Strategy = "id"

	// StrategyClass matched a well-known class attribute exactly.
	StrategyClass Strategy = "class"

	// StrategyLargestDiv picked the body <div> with the most text.
	StrategyLargestDiv Strategy = "largest-div"
)

// semanticQueries are tried first, in order.
var semanticQueries = []string{"//main", "//article"}

// contentIDs are tried in priority order against the id attribute.
var contentIDs = []string{"main-content", "content", "page-content", "wrapper", "container"}

// contentClasses are tried in priority order against the whole class
// attribute value.
var contentClasses = []string{"main-content", "content", "page-content", "wrapper", "container", "doc-content"}

// candidateDivs selects body divs that do not look like page chrome.
// contains() is case sensitive.
const candidateDivs = ".//div[" +
	"not(contains(@class, 'nav')) and not(contains(@class, 'header')) and " +
	"not(contains(@class, 'footer')) and not(contains(@class, 'sidebar')) and " +
	"not(contains(@id, 'nav')) and not(contains(@id, 'header')) and " +
	"not(contains(@id, 'footer')) and not(contains(@id, 'sidebar'))]"

// SelectContent returns the node most likely to hold the page's primary
// content and the strategy that found it. Each step is a first-match query;
// the first step with a match wins. It returns nil and StrategyNone when
// nothing qualifies.
func SelectContent(root *html.Node) (*html.Node, Strategy) {
	if root == nil {
		return nil, StrategyNone
	}

	for _, q := range semanticQueries {
		if n := htmlquery.FindOne(root, q); n != nil {
			return n, StrategySemantic
		}
	}

	for _, id := range contentIDs {
		if n := htmlquery.FindOne(root, fmt.Sprintf("//*[@id='%s']", id)); n != nil {
			return n, StrategyID
		}
	}

	for _, class := range contentClasses {
		if n := htmlquery.FindOne(root, fmt.Sprintf("//*[@class='%s']", class)); n != nil {
			return n, StrategyClass
		}
	}

	if n := largestDiv(root); n != nil {
		return n, StrategyLargestDiv
	}

	return nil, StrategyNone
}

// largestDiv returns the candidate div under <body> with the longest
// rendered text. On ties the earlier div in document order wins.
func largestDiv(root *html.Node) *html.Node {
	body := htmlquery.FindOne(root, "//body")
	if body == nil {
		return nil
	}

	var best *html.Node
	bestLen := -1
	for _, n := range htmlquery.Find(body, candidateDivs) {
		if l := convert.TextLength(n); l > bestLen {
			best, bestLen = n, l
		}
	}
	return best
}
