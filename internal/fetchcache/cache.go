// Package fetchcache persists raw provider responses in SQLite so repeated
// runs against unchanged provider data are fast, idempotent and kind to the
// upstream APIs. Keys are full request URLs; values are raw response bodies.
package fetchcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// schemaVersion is the current schema version. Bump this when the schema
// changes; mismatched databases are rejected rather than migrated.
const schemaVersion = 1

const schemaSQL = `
CREATE TABLE responses (
    key        TEXT PRIMARY KEY,
    body       BLOB NOT NULL,
    fetched_at TEXT NOT NULL
);
CREATE TABLE schema_version (
    version INTEGER NOT NULL
);
`

// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
var ErrSchemaMismatch = errors.New("fetch cache schema version mismatch")

// Cache is a SQLite-backed response cache. Get and Put satisfy the provider
// clients' ResponseCache interfaces: storage failures degrade to cache
// misses, never to request failures.
type Cache struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the cache database.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure cache directory: %w", err)
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

	cache := &Cache{db: db, path: path}
	if err := cache.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return cache, nil
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Path returns the database file path.
func (c *Cache) Path() string {
	return c.path
}

// Get returns the cached body for key, if present.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	var body []byte
	err := c.db.QueryRowContext(ctx, "SELECT body FROM responses WHERE key = ?", key).Scan(&body)
	if err != nil {
		return nil, false
	}
	return body, true
}

// Put stores body under key, replacing any previous entry. Failures are
// silent: a cache that cannot write must not break the fetch.
func (c *Cache) Put(ctx context.Context, key string, body []byte) {
	_, _ = c.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO responses (key, body, fetched_at) VALUES (?, ?, ?)",
		key, body, time.Now().UTC().Format(time.RFC3339Nano),
	)
}

// Purge removes every cached response.
func (c *Cache) Purge(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, "DELETE FROM responses"); err != nil {
		return fmt.Errorf("purge cache: %w", err)
	}
	return nil
}

// Count returns the number of cached responses.
func (c *Cache) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM responses").Scan(&n); err != nil {
		return 0, fmt.Errorf("count cache entries: %w", err)
	}
	return n, nil
}

func (c *Cache) initSchema(ctx context.Context) error {
	var tableExists int
	err := c.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return c.createSchema(ctx)
	}

	var version int
	err = c.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to rebuild)",
			ErrSchemaMismatch, version, schemaVersion, c.path)
	}
	return nil
}

func (c *Cache) createSchema(ctx context.Context) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}
