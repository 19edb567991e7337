// Package flux fetches and renders RSS 2.0 and Atom 1.0 feeds on demand.
//
// One tool call maps to one fetch: validate the URL, retrieve the document
// within size and time bounds, auto-detect the format, and render the
// entries as text.
package flux

import (
	"context"
	"fmt"
	"log/slog"
)

// DefaultMaxItems bounds the rendered entries when the caller gives no limit.
const DefaultMaxItems = 10

// MaxItems is the hard ceiling for rendered entries.
const MaxItems = 50

// Service wires the fetcher, parser, and renderer behind the feed tool.
type Service struct {
	fetcher  *Fetcher
	renderer *Renderer
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithFetcher replaces the default fetcher.
func WithFetcher(f *Fetcher) Option {
	return func(s *Service) { s.fetcher = f }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService builds a Service with default fetch limits.
func NewService(opts ...Option) *Service {
	s := &Service{
		fetcher:  NewFetcher(FetchConfig{}),
		renderer: NewRenderer(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchFeed retrieves and parses one feed URL.
func (s *Service) FetchFeed(ctx context.Context, url string) (*Feed, error) {
	result, err := s.fetcher.Fetch(ctx, url, Conditional{})
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	feed, err := ParseFeed(result.Body)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("flux: feed fetched",
		"url", url, "title", feed.Title, "items", len(feed.Items))
	return feed, nil
}

// Render formats a fetched feed, clamping maxItems to the service bounds.
func (s *Service) Render(feed *Feed, maxItems int) string {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	if maxItems > MaxItems {
		maxItems = MaxItems
	}
	return s.renderer.RenderFeed(feed, maxItems)
}
