// Package histo reads the local Chrome browsing history.
//
// The browser owns its SQLite History store and keeps it write-locked while
// running, so every query goes through a private temporary snapshot: resolve
// the per-OS store location, byte-copy it, query the copy read-only, delete
// the copy. Each request does the full cycle; nothing is cached or shared
// between requests.
package histo

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/hazyhaar/sillage/idgen"
)

// DefaultLimit applies when the caller supplies no limit or a non-positive
// one.
const DefaultLimit = 10

// MaxLimit caps caller-supplied limits; every call pays a full-file copy, so
// unbounded limits only amplify that cost without more useful output.
const MaxLimit = 200

// Service answers browser-history queries.
type Service struct {
	locator   *Locator
	snapDir   string
	newSnapID idgen.Generator
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLocator sets the platform locator. Default: NewLocator().
func WithLocator(l *Locator) Option {
	return func(s *Service) { s.locator = l }
}

// WithSnapshotDir sets the directory for temporary snapshot copies.
// Default: os.TempDir().
func WithSnapshotDir(dir string) Option {
	return func(s *Service) { s.snapDir = dir }
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithIDGenerator sets the snapshot-name generator. Default:
// idgen.Timestamped(idgen.NanoID(8)) — timestamp plus random discriminator,
// collision-free across concurrent requests.
func WithIDGenerator(gen idgen.Generator) Option {
	return func(s *Service) { s.newSnapID = gen }
}

// WithClock sets the time source used for the start-of-day bound (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a history Service.
func New(opts ...Option) *Service {
	s := &Service{
		locator:   NewLocator(),
		snapDir:   os.TempDir(),
		newSnapID: idgen.Timestamped(idgen.NanoID(8)),
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Recent returns pages visited since the start of the current local calendar
// day, newest first, at most limit entries. A non-positive limit means
// DefaultLimit; limits above MaxLimit are clamped.
func (s *Service) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	profile, err := s.locator.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	sinceRaw := unixMSToChromeTime(startOfDay(s.now()).UnixMilli())

	var entries []Entry
	err = s.withSnapshot(profile.HistoryPath, func(sn *Snapshot) error {
		var qerr error
		entries, qerr = queryRecent(ctx, sn.Path, sinceRaw, limit)
		return qerr
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("history query",
		"os", profile.OS, "limit", limit, "entries", len(entries))
	return entries, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
