package websearch

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Schema creates the search cache table.
const Schema = `
CREATE TABLE IF NOT EXISTS search_cache (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	keywords TEXT NOT NULL,
	raw_content BLOB NOT NULL,
	created_at INTEGER NOT NULL,
	cache_hits INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_search_cache_keywords ON search_cache(keywords, created_at);
`

// cacheLookup returns the freshest cached results for query within the TTL,
// or nil when none qualifies. A hit increments the row's counter.
func (s *Service) cacheLookup(ctx context.Context, query string) ([]Result, error) {
	cutoff := s.now().Add(-s.ttl).UnixMilli()

	var (
		id  int64
		raw []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, raw_content FROM search_cache
		WHERE keywords = ? AND created_at > ?
		ORDER BY created_at DESC LIMIT 1`,
		query, cutoff,
	).Scan(&id, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache query: %w", err)
	}

	results, err := decodeResults(raw)
	if err != nil {
		// A corrupt row falls back to a fresh search.
		return nil, fmt.Errorf("cache decode: %w", err)
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE search_cache SET cache_hits = cache_hits + 1 WHERE id = ?`, id,
	); err != nil {
		s.logger.Warn("websearch: cache hit count update failed", "error", err)
	}
	return results, nil
}

// cacheStore saves results for query.
func (s *Service) cacheStore(ctx context.Context, query string, results []Result) error {
	raw, err := encodeResults(results)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO search_cache (keywords, raw_content, created_at, cache_hits)
		VALUES (?, ?, ?, 0)`,
		query, raw, s.now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("cache insert: %w", err)
	}
	return nil
}
