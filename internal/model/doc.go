// Package model defines the data structures shared by the crawler, the
// report writers and the history database.
//
// This package contains the following main types:
//   - CrawlResult: the accumulated output of one crawl
//   - Section: one page's Markdown block
//   - PageRecord: what happened to one dequeued URL
//   - ProgressSnapshot: a progress value emitted while crawling
//   - PageOutcome: the typed result of processing one page
//
// Models live in their own package so crawler, report and database can
// share them without import cycles. They are JSON-serializable for
// summaries and history storage.
package model
