package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"sitewalker/internal/models"
)

// SQLite persists crawl results to a single database file. The connection
// pool is capped at one open connection, so concurrent workers are
// serialized here rather than in the crawl core.
type SQLite struct {
	db     *sql.DB
	dbPath string
}

// Options configures how the database file is opened.
type Options struct {
	// CreateIfNotExists creates the file (and its directory) when missing.
	CreateIfNotExists bool

	// EnableWAL turns on Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the options used by the crawl command.
func DefaultOptions() Options {
	return Options{CreateIfNotExists: true, EnableWAL: true}
}

// Open opens or creates the results database at dbPath.
func Open(dbPath string, opts Options) (*SQLite, error) {
	if opts.CreateIfNotExists {
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	} else {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	}

	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports a single writer; funnel everything through one
	// connection so concurrent Store calls queue up instead of failing.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &SQLite{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *SQLite) Path() string {
	return s.dbPath
}

func (s *SQLite) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS crawl_results (
		url TEXT PRIMARY KEY,
		content TEXT,
		page_text TEXT,
		title TEXT,
		depth INTEGER NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_results_depth ON crawl_results(depth);
	CREATE INDEX IF NOT EXISTS idx_results_timestamp ON crawl_results(timestamp);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// Store upserts one crawl result, keyed by URL.
func (s *SQLite) Store(ctx context.Context, result models.CrawlResult) error {
	query := `
	INSERT INTO crawl_results (url, content, page_text, title, depth, timestamp)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(url) DO UPDATE SET
		content = excluded.content,
		page_text = excluded.page_text,
		title = excluded.title,
		depth = excluded.depth,
		timestamp = excluded.timestamp
	`

	_, err := s.db.ExecContext(ctx, query,
		result.URL,
		result.Content,
		result.Text,
		result.Title,
		result.Depth,
		result.FetchedAt.UTC().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return fmt.Errorf("failed to store crawl result: %w", err)
	}
	return nil
}

// Results returns every stored result ordered by depth, then URL.
func (s *SQLite) Results(ctx context.Context) ([]models.CrawlResult, error) {
	query := `
	SELECT url, content, page_text, title, depth, timestamp
	FROM crawl_results
	ORDER BY depth, url
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query crawl results: %w", err)
	}
	defer rows.Close()

	var results []models.CrawlResult
	for rows.Next() {
		var r models.CrawlResult
		var timestamp string
		if err := rows.Scan(&r.URL, &r.Content, &r.Text, &r.Title, &r.Depth, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan crawl result: %w", err)
		}
		r.FetchedAt = parseTimestamp(timestamp)
		results = append(results, r)
	}

	return results, rows.Err()
}

// Count returns the number of stored results.
func (s *SQLite) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM crawl_results").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count crawl results: %w", err)
	}
	return count, nil
}

// timestampFormats contains the timestamp formats SQLite may hand back,
// most specific first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999",
}

func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
