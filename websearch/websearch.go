// Package websearch answers web search queries through SerpApi, with a
// SQLite cache in front of the remote API. Identical queries within the
// cache TTL are served locally and counted as hits.
package websearch

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	serpapi "github.com/serpapi/google-search-results-golang"
)

// ErrNoAPIKey is returned when no SerpApi key is configured.
var ErrNoAPIKey = errors.New("websearch: no API key configured")

// ErrSearchFailed wraps remote search failures.
var ErrSearchFailed = errors.New("websearch: search failed")

// DefaultTTL is how long a cached result stays fresh.
const DefaultTTL = 24 * time.Hour

// DefaultMaxResults bounds returned results when the caller gives no limit.
const DefaultMaxResults = 10

// MaxResults is the hard ceiling for returned results.
const MaxResults = 50

// Result is one organic search result.
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// SearchFunc performs one remote search and returns the raw response
// document. The default implementation calls SerpApi.
type SearchFunc func(ctx context.Context, query string) (map[string]any, error)

// Service serves search queries, cache first.
type Service struct {
	db     *sql.DB
	search SearchFunc
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
	hasKey bool
}

// Option configures a Service.
type Option func(*Service)

// WithAPIKey installs the SerpApi-backed search function.
func WithAPIKey(key string) Option {
	return func(s *Service) {
		if key == "" {
			return
		}
		s.hasKey = true
		s.search = serpapiSearch(key)
	}
}

// WithSearchFunc replaces the remote search capability (tests).
func WithSearchFunc(fn SearchFunc) Option {
	return func(s *Service) {
		s.hasKey = fn != nil
		s.search = fn
	}
}

// WithTTL sets the cache freshness window.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock replaces the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New builds a Service over db. The cache table must exist (see Schema).
func New(db *sql.DB, opts ...Option) *Service {
	s := &Service{
		db:     db,
		ttl:    DefaultTTL,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search answers query, serving from cache when a fresh entry exists.
// The second return reports whether the cache was used.
func (s *Service) Search(ctx context.Context, query string, maxResults int) ([]Result, bool, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	if maxResults > MaxResults {
		maxResults = MaxResults
	}

	if cached, err := s.cacheLookup(ctx, query); err != nil {
		s.logger.Warn("websearch: cache lookup failed", "error", err)
	} else if cached != nil {
		s.logger.Debug("websearch: cache hit", "query", query)
		return clip(cached, maxResults), true, nil
	}

	if !s.hasKey {
		return nil, false, ErrNoAPIKey
	}

	raw, err := s.search(ctx, query)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	results := extractOrganic(raw)

	if err := s.cacheStore(ctx, query, results); err != nil {
		// Cache loss is not a search failure.
		s.logger.Warn("websearch: cache store failed", "error", err)
	}
	return clip(results, maxResults), false, nil
}

func clip(results []Result, max int) []Result {
	if len(results) > max {
		return results[:max]
	}
	return results
}

// serpapiSearch builds the SerpApi-backed SearchFunc.
func serpapiSearch(apiKey string) SearchFunc {
	return func(ctx context.Context, query string) (map[string]any, error) {
		params := map[string]string{
			"q":             query,
			"google_domain": "google.com",
			"start":         "0",
			"num":           "20",
		}
		type outcome struct {
			data map[string]any
			err  error
		}
		ch := make(chan outcome, 1)
		go func() {
			search := serpapi.NewGoogleSearch(params, apiKey)
			data, err := search.GetJSON()
			ch <- outcome{data, err}
		}()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case out := <-ch:
			return out.data, out.err
		}
	}
}

// extractOrganic pulls organic results out of a raw response document,
// skipping entries missing any of the three fields.
func extractOrganic(raw map[string]any) []Result {
	organic, ok := raw["organic_results"].([]any)
	if !ok {
		return nil
	}
	results := make([]Result, 0, len(organic))
	for _, entry := range organic {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		title, _ := m["title"].(string)
		link, _ := m["link"].(string)
		snippet, _ := m["snippet"].(string)
		if title == "" || link == "" || snippet == "" {
			continue
		}
		results = append(results, Result{Title: title, Link: link, Snippet: snippet})
	}
	return results
}

// rawResults is the cached payload format.
type rawResults struct {
	Results []Result `json:"results"`
}

func encodeResults(results []Result) ([]byte, error) {
	return json.Marshal(rawResults{Results: results})
}

func decodeResults(data []byte) ([]Result, error) {
	var raw rawResults
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw.Results, nil
}
