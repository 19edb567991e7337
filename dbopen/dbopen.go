// Package dbopen provides a single function to open an SQLite database with
// the production-safe pragmas applied via EXEC (driver-agnostic).
//
// Default pragmas:
//
//	foreign_keys = ON
//	journal_mode = WAL
//	busy_timeout = 10000
//	synchronous  = NORMAL
//
// Usage:
//
//	import _ "modernc.org/sqlite"
//	db, err := dbopen.Open("app.db")
//
// History snapshots are opened with ReadOnly (mode=ro URI plus
// PRAGMA query_only), optionally Immutable for files no other process
// will ever write:
//
//	db, err := dbopen.Open(snap, dbopen.WithReadOnly(), dbopen.WithImmutable())
//
// In tests:
//
//	db := dbopen.OpenMemory(t)
package dbopen

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"testing"
)

type config struct {
	driver      string
	busyTimeout int
	synchronous string
	foreignKeys bool
	readOnly    bool
	immutable   bool
	mkdirAll    bool
	schemas     []string
	ping        bool
}

func defaults() config {
	return config{
		driver:      "sqlite",
		busyTimeout: 10_000,
		synchronous: "NORMAL",
		foreignKeys: true,
		ping:        true,
	}
}

// Option customises Open behaviour.
type Option func(*config)

// WithDriver sets the database/sql driver name. Default: "sqlite".
func WithDriver(name string) Option { return func(c *config) { c.driver = name } }

// WithBusyTimeout sets PRAGMA busy_timeout in milliseconds. Default: 10000.
func WithBusyTimeout(ms int) Option { return func(c *config) { c.busyTimeout = ms } }

// WithSynchronous sets PRAGMA synchronous. Default: "NORMAL".
func WithSynchronous(mode string) Option { return func(c *config) { c.synchronous = mode } }

// WithMkdirAll creates parent directories of the database path before opening.
func WithMkdirAll() Option { return func(c *config) { c.mkdirAll = true } }

// WithSchema queues inline SQL to execute after pragmas are applied.
func WithSchema(s string) Option { return func(c *config) { c.schemas = append(c.schemas, s) } }

// WithoutPing skips the db.Ping() verification after opening.
func WithoutPing() Option { return func(c *config) { c.ping = false } }

// WithoutForeignKeys disables PRAGMA foreign_keys (rarely needed).
func WithoutForeignKeys() Option { return func(c *config) { c.foreignKeys = false } }

// WithReadOnly opens the database with mode=ro and PRAGMA query_only.
// Write pragmas (journal_mode, foreign_keys) are skipped since they cannot
// be applied to a read-only connection.
func WithReadOnly() Option { return func(c *config) { c.readOnly = true } }

// WithImmutable adds immutable=1 to the URI. Only safe when the file cannot
// be changed by any other process for the lifetime of the connection —
// exactly the guarantee a private snapshot copy provides. Implies read-only.
func WithImmutable() Option {
	return func(c *config) {
		c.readOnly = true
		c.immutable = true
	}
}

// Open opens an SQLite database at path with production-safe pragmas.
// The caller must blank-import the driver before calling Open:
//
//	import _ "modernc.org/sqlite"
func Open(path string, opts ...Option) (*sql.DB, error) {
	cfg := defaults()
	for _, o := range opts {
		o(&cfg)
	}

	if cfg.mkdirAll && path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("dbopen: mkdir: %w", err)
		}
	}

	dsn := path
	if cfg.readOnly && path != ":memory:" {
		q := url.Values{}
		q.Set("mode", "ro")
		if cfg.immutable {
			q.Set("immutable", "1")
		}
		dsn = "file:" + path + "?" + q.Encode()
	}

	db, err := sql.Open(cfg.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("dbopen: open: %w", err)
	}

	if err := applyPragmas(db, &cfg); err != nil {
		db.Close()
		return nil, err
	}

	for _, s := range cfg.schemas {
		if _, err := db.Exec(s); err != nil {
			db.Close()
			return nil, fmt.Errorf("dbopen: exec schema: %w", err)
		}
	}

	if cfg.ping {
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, fmt.Errorf("dbopen: ping: %w", err)
		}
	}

	return db, nil
}

// OpenMemory opens an in-memory SQLite database for testing.
// It sets MaxOpenConns(1) to ensure all queries hit the same in-memory
// database (each connection to ":memory:" creates a separate database).
// It registers t.Cleanup to close the database automatically.
func OpenMemory(t testing.TB, opts ...Option) *sql.DB {
	t.Helper()
	db, err := Open(":memory:", opts...)
	if err != nil {
		t.Fatalf("dbopen.OpenMemory: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func applyPragmas(db *sql.DB, cfg *config) error {
	var pragmas []string
	if cfg.readOnly {
		pragmas = []string{
			"PRAGMA query_only = ON",
			fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.busyTimeout),
			// Forces the header read; a file that is not a database fails
			// here instead of at the first query.
			"PRAGMA schema_version",
		}
	} else {
		fk := "ON"
		if !cfg.foreignKeys {
			fk = "OFF"
		}
		pragmas = []string{
			fmt.Sprintf("PRAGMA foreign_keys = %s", fk),
			"PRAGMA journal_mode = WAL",
			fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.busyTimeout),
			fmt.Sprintf("PRAGMA synchronous = %s", cfg.synchronous),
		}
	}

	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("dbopen: %s: %w", p, err)
		}
	}
	return nil
}
