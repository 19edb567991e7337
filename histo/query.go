package histo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hazyhaar/sillage/dbopen"
)

// Chrome stores visit times as microseconds since 1601-01-01T00:00:00Z (the
// WebKit epoch). This constant is the offset between that epoch and the Unix
// epoch, in milliseconds.
const chromeEpochOffsetMS int64 = 11_644_473_600_000

// DefaultTitle replaces absent or empty page titles.
const DefaultTitle = "No Title"

// Entry is one visited page from the history store.
type Entry struct {
	Title        string    `json:"title"`
	URL          string    `json:"url"`
	VisitTimeRaw int64     `json:"visit_time_raw"`
	VisitTime    time.Time `json:"visit_time"`
}

// chromeTimeToUnixMS converts a WebKit-epoch microsecond value to Unix
// milliseconds.
func chromeTimeToUnixMS(raw int64) int64 {
	return raw/1000 - chromeEpochOffsetMS
}

// unixMSToChromeTime is the inverse, used to build query lower bounds.
func unixMSToChromeTime(ms int64) int64 {
	return (ms + chromeEpochOffsetMS) * 1000
}

// queryRecent opens the snapshot strictly read-only and returns up to limit
// entries with last_visit_time strictly greater than sinceRaw, newest first.
// The snapshot is private to this request, so immutable mode is safe.
func queryRecent(ctx context.Context, snapshotPath string, sinceRaw int64, limit int) ([]Entry, error) {
	db, err := dbopen.Open(snapshotPath, dbopen.WithImmutable())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenFailed, err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `
		SELECT title, url, last_visit_time
		FROM urls
		WHERE last_visit_time > ?
		ORDER BY last_visit_time DESC
		LIMIT ?`, sinceRaw, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var title sql.NullString
		var url string
		var raw int64
		if err := rows.Scan(&title, &url, &raw); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", ErrQueryFailed, err)
		}
		e := Entry{
			Title:        DefaultTitle,
			URL:          url,
			VisitTimeRaw: raw,
			VisitTime:    time.UnixMilli(chromeTimeToUnixMS(raw)).Local(),
		}
		if title.Valid && title.String != "" {
			e.Title = title.String
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return entries, nil
}
