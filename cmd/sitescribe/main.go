// Package main provides the entry point for the sitescribe CLI.
//
// sitescribe crawls every page of a single website, starting from a seed
// URL, and writes the main content of each page as one Markdown document.
//
// Usage:
//
//	sitescribe crawl https://docs.example.com/ -o docs.md
//	sitescribe history docs.example.com
//
// See --help for all available options.
package main

func main() {
	Execute()
}
