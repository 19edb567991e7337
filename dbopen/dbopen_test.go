package dbopen_test

import (
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/sillage/dbopen"
)

func TestOpen(t *testing.T) {
	db := dbopen.OpenMemory(t)

	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatal(err)
	}
	// :memory: may report "memory" instead of "wal" for journal_mode,
	// but the PRAGMA was still executed successfully.
	if journalMode != "wal" && journalMode != "memory" {
		t.Fatalf("journal_mode = %q, want wal or memory", journalMode)
	}

	var fk int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatal(err)
	}
	if fk != 1 {
		t.Fatalf("foreign_keys = %d, want 1", fk)
	}

	var busyTimeout int
	if err := db.QueryRow("PRAGMA busy_timeout").Scan(&busyTimeout); err != nil {
		t.Fatal(err)
	}
	if busyTimeout != 10_000 {
		t.Fatalf("busy_timeout = %d, want 10000", busyTimeout)
	}
}

func TestWithSchema(t *testing.T) {
	db := dbopen.OpenMemory(t, dbopen.WithSchema(`CREATE TABLE t (id INTEGER PRIMARY KEY)`))
	if _, err := db.Exec(`INSERT INTO t (id) VALUES (1)`); err != nil {
		t.Fatal(err)
	}
}

func TestWithReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ro.db")

	// Create and populate with a writable connection first.
	w, err := dbopen.Open(path, dbopen.WithSchema(`CREATE TABLE urls (url TEXT)`))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Exec(`INSERT INTO urls (url) VALUES ('https://example.com')`); err != nil {
		t.Fatal(err)
	}
	w.Close()

	db, err := dbopen.Open(path, dbopen.WithReadOnly())
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var url string
	if err := db.QueryRow(`SELECT url FROM urls`).Scan(&url); err != nil {
		t.Fatalf("read: %v", err)
	}
	if url != "https://example.com" {
		t.Fatalf("url = %q", url)
	}

	if _, err := db.Exec(`INSERT INTO urls (url) VALUES ('x')`); err == nil {
		t.Fatal("write succeeded on read-only connection")
	}
}

func TestWithImmutable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "imm.db")
	w, err := dbopen.Open(path, dbopen.WithSchema(`CREATE TABLE t (n INTEGER)`))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Exec(`INSERT INTO t (n) VALUES (42)`); err != nil {
		t.Fatal(err)
	}
	w.Close()

	db, err := dbopen.Open(path, dbopen.WithImmutable())
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRow(`SELECT n FROM t`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 42 {
		t.Fatalf("n = %d", n)
	}
}

func TestOpenMissingReadOnly(t *testing.T) {
	_, err := dbopen.Open(filepath.Join(t.TempDir(), "absent.db"), dbopen.WithReadOnly())
	if err == nil {
		t.Fatal("expected error opening a missing database read-only")
	}
}
