package pagecache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"gamecal/internal/config"
)

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Page is a cached response body.
type Page struct {
	URL       string
	Source    string
	Status    int
	Body      []byte
	FetchedAt time.Time
}

// Stats summarises the cache contents.
type Stats struct {
	Path   string    `json:"path"`
	Pages  int       `json:"pages"`
	Bytes  int64     `json:"bytes"`
	Oldest time.Time `json:"oldest,omitzero"`
	Newest time.Time `json:"newest,omitzero"`
}

// Cache is a SQLite-backed page store.
type Cache struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open opens the page cache at the configured cache path, creating it when
// missing.
func Open(cfg *config.Config) (*Cache, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.CachePath())
}

// OpenPath opens a page cache database at path.
func OpenPath(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	c := &Cache{db: db, path: path, now: time.Now}
	if err := c.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

// Remove deletes the database at path along with its WAL files. Missing
// files are ignored.
func Remove(path string) error {
	for _, name := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", name, err)
		}
	}
	return nil
}

// Path returns the database location.
func (c *Cache) Path() string { return c.path }

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Get returns the cached page for url when it is younger than maxAge. A
// non-positive maxAge accepts any age.
func (c *Cache) Get(ctx context.Context, url string, maxAge time.Duration) (Page, bool, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT url, COALESCE(source, ''), status, body, fetched_at FROM pages WHERE url = ?`, url)

	var (
		page    Page
		fetched string
	)
	err := row.Scan(&page.URL, &page.Source, &page.Status, &page.Body, &fetched)
	if errors.Is(err, sql.ErrNoRows) {
		return Page{}, false, nil
	}
	if err != nil {
		return Page{}, false, fmt.Errorf("get page: %w", err)
	}
	page.FetchedAt, err = time.Parse(time.RFC3339Nano, fetched)
	if err != nil {
		return Page{}, false, fmt.Errorf("parse fetched_at for %s: %w", url, err)
	}
	if maxAge > 0 && c.now().Sub(page.FetchedAt) > maxAge {
		return Page{}, false, nil
	}
	return page, true, nil
}

// Put stores or replaces a page. A zero FetchedAt is stamped with the current time.
func (c *Cache) Put(ctx context.Context, page Page) error {
	if strings.TrimSpace(page.URL) == "" {
		return errors.New("page url is required")
	}
	if page.FetchedAt.IsZero() {
		page.FetchedAt = c.now()
	}
	return c.execWithRetry(ctx,
		`INSERT INTO pages (url, source, status, body, fetched_at) VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(url) DO UPDATE SET
             source = excluded.source,
             status = excluded.status,
             body = excluded.body,
             fetched_at = excluded.fetched_at`,
		page.URL,
		nullableString(page.Source),
		page.Status,
		page.Body,
		page.FetchedAt.UTC().Format(time.RFC3339Nano),
	)
}

// Prune removes pages fetched more than olderThan ago and reports how many
// were removed.
func (c *Cache) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := c.now().Add(-olderThan).UTC().Format(time.RFC3339Nano)
	res, err := c.db.ExecContext(ctx, `DELETE FROM pages WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune pages: %w", err)
	}
	return res.RowsAffected()
}

// Clear removes every cached page.
func (c *Cache) Clear(ctx context.Context) (int64, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM pages`)
	if err != nil {
		return 0, fmt.Errorf("clear pages: %w", err)
	}
	return res.RowsAffected()
}

// Stats reports the number of pages, their total size and the fetch time range.
func (c *Cache) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{Path: c.path}
	var oldest, newest sql.NullString
	err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(1), COALESCE(SUM(LENGTH(body)), 0), MIN(fetched_at), MAX(fetched_at) FROM pages`,
	).Scan(&stats.Pages, &stats.Bytes, &oldest, &newest)
	if err != nil {
		return Stats{}, fmt.Errorf("cache stats: %w", err)
	}
	if oldest.Valid {
		stats.Oldest, _ = time.Parse(time.RFC3339Nano, oldest.String)
	}
	if newest.Valid {
		stats.Newest, _ = time.Parse(time.RFC3339Nano, newest.String)
	}
	return stats, nil
}

func (c *Cache) execWithRetry(ctx context.Context, query string, args ...any) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		_, lastErr = c.db.ExecContext(ctx, query, args...)
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return fmt.Errorf("write page: %w", lastErr)
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
