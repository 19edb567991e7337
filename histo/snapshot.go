package histo

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const snapshotPrefix = "histo_"

// Snapshot is a private point-in-time copy of the history store. It exists
// only for the duration of one withSnapshot call and is owned exclusively by
// the request that created it.
type Snapshot struct {
	Path    string
	Created time.Time
}

// withSnapshot copies src to a unique temporary file, runs fn against the
// copy, and removes the copy afterwards whether or not fn succeeded. The
// browser holds an exclusive write lock on src; querying a copy sidesteps
// lock contention entirely, at the cost of a full-file copy per request.
//
// Cleanup is best-effort: a failed removal is logged, never escalated.
func (s *Service) withSnapshot(src string, fn func(sn *Snapshot) error) error {
	if _, err := os.Stat(src); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w at %s", ErrSourceNotFound, src)
		}
		return fmt.Errorf("%w at %s: %v", ErrSourceNotFound, src, err)
	}

	sn := &Snapshot{
		Path:    filepath.Join(s.snapDir, snapshotPrefix+s.newSnapID()+".db"),
		Created: time.Now(),
	}
	if err := copyFile(src, sn.Path); err != nil {
		return fmt.Errorf("%w: %v", ErrCopyFailed, err)
	}
	defer func() {
		if err := os.Remove(sn.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("snapshot cleanup failed", "path", sn.Path, "error", err)
		}
	}()

	return fn(sn)
}

// copyFile performs a full byte copy of src to dst. A partially written dst
// is removed before the error propagates, so no torn copy is ever queried.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}
	return nil
}

// SweepStale removes orphaned snapshot files older than maxAge from dir.
// Orphans appear when a host-level timeout abandons a request mid-query.
// Returns the number of files removed.
func SweepStale(dir string, maxAge time.Duration, logger *slog.Logger) int {
	if logger == nil {
		logger = slog.Default()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Warn("snapshot sweep: read dir failed", "dir", dir, "error", err)
		return 0
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, snapshotPrefix) || !strings.HasSuffix(name, ".db") {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(dir, name)
		if err := os.Remove(path); err != nil {
			logger.Warn("snapshot sweep: remove failed", "path", path, "error", err)
			continue
		}
		removed++
	}
	if removed > 0 {
		logger.Info("swept stale snapshots", "dir", dir, "count", removed)
	}
	return removed
}
