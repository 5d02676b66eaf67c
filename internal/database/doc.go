// Package database provides SQLite-based crawl history for sitescribe.
//
// Each crawl is stored as a run (seed, host, timing, counters and the path
// of the written document) plus one row per attempted page holding the
// normalized URL, title, status code, failure reason and the SHA3-256 hash
// of the page's Markdown section. Comparing the hashes of two runs shows
// which pages of a site changed between crawls.
//
// The database is a single file, sitescribe.db, opened through the CGO-free
// modernc.org/sqlite driver.
package database
