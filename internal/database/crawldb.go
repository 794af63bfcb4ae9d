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

	"github.com/consolescan/consolescan/internal/model"
)

// CrawlDB provides SQLite-based storage for crawl run history.
// It manages the connection pool and the schema for run and per-URL
// outcome records.
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

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, "consolescan.db")

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

	// modernc.org/sqlite connection string: mode=rw prevents creating
	// new files, mode=rwc allows creation.
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

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
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

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- Runs store one row per completed crawl
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sitemap_url TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		elapsed_ms INTEGER NOT NULL,
		urls_discovered INTEGER NOT NULL,
		pages_crawled INTEGER NOT NULL,
		artifacts_written INTEGER NOT NULL,
		diagnostics_found INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_sitemap ON runs(sitemap_url);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- Page results store the per-URL outcome of each run
	CREATE TABLE IF NOT EXISTS page_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		url TEXT NOT NULL,
		diagnostic_count INTEGER NOT NULL,
		failure TEXT NOT NULL DEFAULT '',
		failure_message TEXT NOT NULL DEFAULT '',
		artifact_path TEXT NOT NULL DEFAULT '',
		UNIQUE(run_id, url)
	);

	CREATE INDEX IF NOT EXISTS idx_results_run ON page_results(run_id);
	CREATE INDEX IF NOT EXISTS idx_results_url ON page_results(url);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun stores a completed run summary and its per-URL outcomes.
// Returns the new run's database ID.
func (cdb *CrawlDB) SaveRun(ctx context.Context, summary *model.RunSummary) (int64, error) {
	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	result, err := tx.ExecContext(ctx, `
	INSERT INTO runs (sitemap_url, started_at, elapsed_ms, urls_discovered, pages_crawled, artifacts_written, diagnostics_found)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		summary.SitemapURL,
		summary.StartedAt.UTC().Format("2006-01-02 15:04:05"),
		summary.Elapsed.Milliseconds(),
		summary.URLsDiscovered,
		summary.PagesCrawled,
		summary.ArtifactsWritten,
		summary.DiagnosticsFound,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	for _, r := range summary.Results {
		_, err := tx.ExecContext(ctx, `
		INSERT INTO page_results (run_id, url, diagnostic_count, failure, failure_message, artifact_path)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, url) DO UPDATE SET
			diagnostic_count = excluded.diagnostic_count,
			failure = excluded.failure,
			failure_message = excluded.failure_message,
			artifact_path = excluded.artifact_path
		`,
			runID,
			r.URL,
			len(r.Lines),
			string(r.Failure),
			r.FailureMessage,
			r.ArtifactPath,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert page result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return runID, nil
}

// RunRecord summarizes one stored run without its per-URL rows.
type RunRecord struct {
	// ID is the run's database identifier.
	ID int64

	// SitemapURL is the seed sitemap the run started from.
	SitemapURL string

	// StartedAt is when the crawl began.
	StartedAt time.Time

	// Elapsed is the total crawl duration.
	Elapsed time.Duration

	// URLsDiscovered, PagesCrawled, ArtifactsWritten and
	// DiagnosticsFound mirror the run summary totals.
	URLsDiscovered   int
	PagesCrawled     int
	ArtifactsWritten int
	DiagnosticsFound int
}

// ListRuns returns stored runs for a sitemap URL, most recent first.
// An empty sitemapURL returns all runs.
func (cdb *CrawlDB) ListRuns(ctx context.Context, sitemapURL string) ([]RunRecord, error) {
	query := `
	SELECT id, sitemap_url, started_at, elapsed_ms, urls_discovered, pages_crawled, artifacts_written, diagnostics_found
	FROM runs
	`
	args := make([]any, 0, 1)
	if sitemapURL != "" {
		query += " WHERE sitemap_url = ?"
		args = append(args, sitemapURL)
	}
	query += " ORDER BY started_at DESC"

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var startedAt string
		var elapsedMillis int64
		if err := rows.Scan(
			&rec.ID,
			&rec.SitemapURL,
			&startedAt,
			&elapsedMillis,
			&rec.URLsDiscovered,
			&rec.PagesCrawled,
			&rec.ArtifactsWritten,
			&rec.DiagnosticsFound,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		rec.StartedAt = parseTimestamp(startedAt)
		rec.Elapsed = time.Duration(elapsedMillis) * time.Millisecond
		records = append(records, rec)
	}

	return records, rows.Err()
}

// GetPageResults returns the per-URL outcomes for a stored run, in
// insertion order.
func (cdb *CrawlDB) GetPageResults(ctx context.Context, runID int64) ([]model.CrawlResult, error) {
	rows, err := cdb.db.QueryContext(ctx, `
	SELECT url, diagnostic_count, failure, failure_message, artifact_path
	FROM page_results
	WHERE run_id = ?
	ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get page results: %w", err)
	}
	defer rows.Close()

	var results []model.CrawlResult
	for rows.Next() {
		var r model.CrawlResult
		var failure string
		var diagnosticCount int
		if err := rows.Scan(&r.URL, &diagnosticCount, &failure, &r.FailureMessage, &r.ArtifactPath); err != nil {
			return nil, fmt.Errorf("failed to scan page result: %w", err)
		}
		r.Failure = model.FailureKind(failure)
		// The formatted lines themselves live in the artifact file;
		// the database keeps only the count.
		if diagnosticCount > 0 {
			r.Lines = make([]string, diagnosticCount)
		}
		results = append(results, r)
	}

	return results, rows.Err()
}

// HasRecentRun reports whether the sitemap was crawled within the
// given duration.
func (cdb *CrawlDB) HasRecentRun(ctx context.Context, sitemapURL string, within time.Duration) (bool, error) {
	// SQLite datetime modifier format.
	modifier := fmt.Sprintf("-%d seconds", int(within.Seconds()))

	var count int
	err := cdb.db.QueryRowContext(ctx, `
	SELECT COUNT(*) FROM runs
	WHERE sitemap_url = ? AND started_at > datetime('now', ?)
	`, sitemapURL, modifier).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check recent runs: %w", err)
	}
	return count > 0, nil
}

// LatestRun returns the most recent stored run for a sitemap URL, or
// nil when none exists.
func (cdb *CrawlDB) LatestRun(ctx context.Context, sitemapURL string) (*RunRecord, error) {
	var rec RunRecord
	var startedAt string
	var elapsedMillis int64
	err := cdb.db.QueryRowContext(ctx, `
	SELECT id, sitemap_url, started_at, elapsed_ms, urls_discovered, pages_crawled, artifacts_written, diagnostics_found
	FROM runs
	WHERE sitemap_url = ?
	ORDER BY started_at DESC
	LIMIT 1
	`, sitemapURL).Scan(
		&rec.ID,
		&rec.SitemapURL,
		&startedAt,
		&elapsedMillis,
		&rec.URLsDiscovered,
		&rec.PagesCrawled,
		&rec.ArtifactsWritten,
		&rec.DiagnosticsFound,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	rec.StartedAt = parseTimestamp(startedAt)
	rec.Elapsed = time.Duration(elapsedMillis) * time.Millisecond
	return &rec, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
