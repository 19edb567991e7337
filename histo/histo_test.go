package histo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// scenarioService builds a Service whose locator resolves to a seeded store
// under a fake Linux home, with a fixed clock.
func scenarioService(t *testing.T, rows []historyRow, now time.Time) *Service {
	t.Helper()
	home := t.TempDir()
	profileDir := filepath.Join(home, ".config", "google-chrome", "Default")
	if err := os.MkdirAll(profileDir, 0o755); err != nil {
		t.Fatal(err)
	}
	seedHistory(t, profileDir, rows)

	locator := NewLocator(
		WithGOOS("linux"),
		WithHomeLookup(func() (string, error) { return home, nil }),
		WithProcVersion(func() ([]byte, error) { return []byte("Linux version 6.1.0"), nil }),
	)
	return New(
		WithLocator(locator),
		WithSnapshotDir(t.TempDir()),
		WithClock(func() time.Time { return now }),
	)
}

func TestRecent_TodayOnly(t *testing.T) {
	// Three visits today (T1 > T2 > T3) plus one yesterday; the yesterday
	// row falls below the start-of-day bound and is excluded.
	now := time.Date(2026, 8, 31, 15, 0, 0, 0, time.Local)
	rawAt := func(ts time.Time) int64 { return unixMSToChromeTime(ts.UnixMilli()) }

	t1 := rawAt(now.Add(-1 * time.Hour))
	t2 := rawAt(now.Add(-2 * time.Hour))
	t3 := rawAt(now.Add(-3 * time.Hour))
	yesterday := rawAt(now.Add(-24 * time.Hour))

	svc := scenarioService(t, []historyRow{
		{"Third", "https://c.example", t3},
		{"First", "https://a.example", t1},
		{"Yesterday", "https://old.example", yesterday},
		{"Second", "https://b.example", t2},
	}, now)

	entries, err := svc.Recent(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries: got %d, want 3", len(entries))
	}
	for i, want := range []int64{t1, t2, t3} {
		if entries[i].VisitTimeRaw != want {
			t.Fatalf("entry %d raw: got %d, want %d", i, entries[i].VisitTimeRaw, want)
		}
	}
}

func TestRecent_DefaultLimit(t *testing.T) {
	now := time.Date(2026, 8, 31, 18, 0, 0, 0, time.Local)
	rows := make([]historyRow, 15)
	for i := range rows {
		ts := now.Add(-time.Duration(i+1) * time.Minute)
		rows[i] = historyRow{"Page", "https://example.com", unixMSToChromeTime(ts.UnixMilli())}
	}
	svc := scenarioService(t, rows, now)

	entries, err := svc.Recent(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != DefaultLimit {
		t.Fatalf("entries: got %d, want %d", len(entries), DefaultLimit)
	}

	// Negative limits also mean the default.
	entries, err = svc.Recent(context.Background(), -4)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != DefaultLimit {
		t.Fatalf("negative limit: got %d, want %d", len(entries), DefaultLimit)
	}
}

func TestRecent_BoundedLimit(t *testing.T) {
	now := time.Date(2026, 8, 31, 18, 0, 0, 0, time.Local)
	rows := make([]historyRow, 6)
	for i := range rows {
		ts := now.Add(-time.Duration(i+1) * time.Minute)
		rows[i] = historyRow{"Page", "https://example.com", unixMSToChromeTime(ts.UnixMilli())}
	}
	svc := scenarioService(t, rows, now)

	entries, err := svc.Recent(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries: got %d, want 2", len(entries))
	}
	if entries[0].VisitTimeRaw < entries[1].VisitTimeRaw {
		t.Fatal("not in descending order")
	}
}

func TestRecent_SourceMissing(t *testing.T) {
	home := t.TempDir() // no profile dir created
	locator := NewLocator(
		WithGOOS("linux"),
		WithHomeLookup(func() (string, error) { return home, nil }),
		WithProcVersion(func() ([]byte, error) { return []byte("Linux version 6.1.0"), nil }),
	)
	snapDir := t.TempDir()
	svc := New(WithLocator(locator), WithSnapshotDir(snapDir))

	_, err := svc.Recent(context.Background(), 5)
	if !errors.Is(err, ErrSourceNotFound) {
		t.Fatalf("got %v, want ErrSourceNotFound", err)
	}
	left, readErr := os.ReadDir(snapDir)
	if readErr != nil {
		t.Fatal(readErr)
	}
	if len(left) != 0 {
		t.Fatalf("no temp file may exist after failure, found %d", len(left))
	}
}

func TestRecent_CleansUpAfterQuery(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.Local)
	raw := unixMSToChromeTime(now.Add(-time.Hour).UnixMilli())
	svc := scenarioService(t, []historyRow{{"P", "https://p.example", raw}}, now)

	if _, err := svc.Recent(context.Background(), 3); err != nil {
		t.Fatal(err)
	}
	left, err := os.ReadDir(svc.snapDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 0 {
		t.Fatalf("snapshot dir should be empty after the request, found %d", len(left))
	}
}

func TestRecent_UnsupportedPlatform(t *testing.T) {
	svc := New(WithLocator(NewLocator(WithGOOS("js"))), WithSnapshotDir(t.TempDir()))
	_, err := svc.Recent(context.Background(), 1)
	if !errors.Is(err, ErrUnsupportedPlatform) {
		t.Fatalf("got %v, want ErrUnsupportedPlatform", err)
	}
}
