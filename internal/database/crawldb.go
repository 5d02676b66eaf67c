package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/sitescribe/internal/model"
)

// FileName is the name of the history database inside the data directory.
const FileName = "sitescribe.db"

// CrawlDB provides SQLite-based storage for crawl history.
// Every completed (or cancelled) crawl is stored as one run with one row per
// attempted page, so later crawls of the same host can be compared.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Path returns the database file path.
func (cdb *CrawlDB) Path() string {
	return cdb.dbPath
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- One row per crawl
	CREATE TABLE IF NOT EXISTS crawl_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seed TEXT NOT NULL,
		host TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		pages_attempted INTEGER NOT NULL DEFAULT 0,
		pages_failed INTEGER NOT NULL DEFAULT 0,
		sections INTEGER NOT NULL DEFAULT 0,
		remaining INTEGER NOT NULL DEFAULT 0,
		cancelled INTEGER NOT NULL DEFAULT 0,
		output_path TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_host ON crawl_runs(host);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON crawl_runs(started_at);

	-- One row per attempted page, in processing order
	CREATE TABLE IF NOT EXISTS crawl_pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES crawl_runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		url TEXT NOT NULL,
		normalized_url TEXT NOT NULL,
		status_code INTEGER,
		content_type TEXT,
		title TEXT,
		has_content INTEGER NOT NULL DEFAULT 0,
		links_found INTEGER NOT NULL DEFAULT 0,
		links_queued INTEGER NOT NULL DEFAULT 0,
		markdown_length INTEGER NOT NULL DEFAULT 0,
		hash TEXT,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_pages_run ON crawl_pages(run_id);
	CREATE INDEX IF NOT EXISTS idx_pages_url ON crawl_pages(normalized_url);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// RunRecord is the stored summary of one crawl.
type RunRecord struct {
	ID             int64     `json:"id"`
	Seed           string    `json:"seed"`
	Host           string    `json:"host"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
	PagesAttempted int       `json:"pages_attempted"`
	PagesFailed    int       `json:"pages_failed"`
	Sections       int       `json:"sections"`
	Remaining      int       `json:"remaining"`
	Cancelled      bool      `json:"cancelled"`
	OutputPath     string    `json:"output_path,omitempty"`
}

// Duration returns how long the recorded crawl took.
func (r *RunRecord) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// SaveCrawl stores a crawl result and its page records in one transaction
// and returns the ID of the new run.
func (cdb *CrawlDB) SaveCrawl(ctx context.Context, result *model.CrawlResult, outputPath string) (id int64, err error) {
	if result == nil {
		return 0, errors.New("nil crawl result")
	}

	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	finished := result.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}

	res, err := tx.ExecContext(ctx, `
	INSERT INTO crawl_runs (seed, host, started_at, finished_at, pages_attempted, pages_failed, sections, remaining, cancelled, output_path)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		result.Seed,
		result.Host,
		formatTimestamp(result.StartedAt),
		formatTimestamp(finished),
		len(result.Pages),
		result.PagesFailed(),
		len(result.Sections),
		result.Remaining,
		result.Cancelled,
		outputPath,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert crawl run: %w", err)
	}

	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO crawl_pages (run_id, position, url, normalized_url, status_code, content_type, title, has_content, links_found, links_queued, markdown_length, hash, error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare page insert: %w", err)
	}
	defer stmt.Close()

	for i := range result.Pages {
		p := &result.Pages[i]
		if _, err = stmt.ExecContext(ctx,
			id,
			i,
			p.URL,
			p.NormalizedURL,
			p.StatusCode,
			p.ContentType,
			p.Title,
			p.HasContent,
			p.LinksFound,
			p.LinksQueued,
			p.MarkdownLength,
			p.Hash,
			p.Error,
		); err != nil {
			return 0, fmt.Errorf("failed to insert page %s: %w", p.URL, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit crawl run: %w", err)
	}

	return id, nil
}

const runColumns = `id, seed, host, started_at, finished_at, pages_attempted, pages_failed, sections, remaining, cancelled, output_path`

// ListRuns returns recorded runs, newest first.
// An empty host lists runs for every host.
func (cdb *CrawlDB) ListRuns(ctx context.Context, host string) ([]RunRecord, error) {
	query := `SELECT ` + runColumns + ` FROM crawl_runs WHERE 1=1`
	args := make([]any, 0, 1)

	if host != "" {
		query += " AND host = ?"
		args = append(args, host)
	}
	query += " ORDER BY started_at DESC, id DESC"

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list crawl runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}

	return runs, rows.Err()
}

// GetRun retrieves a run by its ID. It returns nil, nil if there is no such run.
func (cdb *CrawlDB) GetRun(ctx context.Context, id int64) (*RunRecord, error) {
	row := cdb.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM crawl_runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListHosts returns every host with at least one recorded run.
func (cdb *CrawlDB) ListHosts(ctx context.Context) ([]string, error) {
	rows, err := cdb.db.QueryContext(ctx, `SELECT DISTINCT host FROM crawl_runs ORDER BY host`)
	if err != nil {
		return nil, fmt.Errorf("failed to list hosts: %w", err)
	}
	defer rows.Close()

	var hosts []string
	for rows.Next() {
		var host string
		if err := rows.Scan(&host); err != nil {
			return nil, fmt.Errorf("failed to scan host: %w", err)
		}
		hosts = append(hosts, host)
	}

	return hosts, rows.Err()
}

// GetRunPages returns the page records of a run in processing order.
func (cdb *CrawlDB) GetRunPages(ctx context.Context, runID int64) ([]model.PageRecord, error) {
	query := `
	SELECT url, normalized_url, status_code, content_type, title, has_content, links_found, links_queued, markdown_length, hash, error
	FROM crawl_pages
	WHERE run_id = ?
	ORDER BY position
	`

	rows, err := cdb.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run pages: %w", err)
	}
	defer rows.Close()

	pages := make([]model.PageRecord, 0)
	for rows.Next() {
		var p model.PageRecord
		var contentType, title, hash, errText sql.NullString
		var statusCode sql.NullInt64

		if err := rows.Scan(
			&p.URL,
			&p.NormalizedURL,
			&statusCode,
			&contentType,
			&title,
			&p.HasContent,
			&p.LinksFound,
			&p.LinksQueued,
			&p.MarkdownLength,
			&hash,
			&errText,
		); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}

		p.StatusCode = int(statusCode.Int64)
		p.ContentType = contentType.String
		p.Title = title.String
		p.Hash = hash.String
		p.Error = errText.String
		pages = append(pages, p)
	}

	return pages, rows.Err()
}

// DeleteRun removes a run and its pages. Deleting a missing run is not an error.
func (cdb *CrawlDB) DeleteRun(ctx context.Context, id int64) error {
	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM crawl_pages WHERE run_id = ?`, id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to delete run pages: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM crawl_runs WHERE id = ?`, id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to delete run: %w", err)
	}

	return tx.Commit()
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*RunRecord, error) {
	var run RunRecord
	var started, finished string
	var outputPath sql.NullString

	err := row.Scan(
		&run.ID,
		&run.Seed,
		&run.Host,
		&started,
		&finished,
		&run.PagesAttempted,
		&run.PagesFailed,
		&run.Sections,
		&run.Remaining,
		&run.Cancelled,
		&outputPath,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan crawl run: %w", err)
	}

	run.StartedAt = parseTimestamp(started)
	run.FinishedAt = parseTimestamp(finished)
	run.OutputPath = outputPath.String
	return &run, nil
}

// storedTimestampLayout is fixed width so stored values sort lexically.
const storedTimestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(storedTimestampLayout)
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,          // written by formatTimestamp
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
