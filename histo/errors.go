package histo

import "errors"

// ErrUnsupportedPlatform is returned when the runtime OS family has no known
// browser profile location.
var ErrUnsupportedPlatform = errors.New("histo: unsupported platform")

// ErrIdentityResolution is returned when the Windows host username cannot be
// determined from inside a WSL guest. There is no fallback path guessing.
var ErrIdentityResolution = errors.New("histo: host identity resolution failed")

// ErrSourceNotFound is returned when the history store does not exist at the
// resolved path.
var ErrSourceNotFound = errors.New("histo: history store not found")

// ErrCopyFailed is returned when the snapshot copy cannot be completed.
var ErrCopyFailed = errors.New("histo: snapshot copy failed")

// ErrOpenFailed is returned when the snapshot cannot be opened read-only.
var ErrOpenFailed = errors.New("histo: snapshot open failed")

// ErrQueryFailed is returned when the history query cannot be executed.
var ErrQueryFailed = errors.New("histo: history query failed")
