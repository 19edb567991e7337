package histo

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// OSKind identifies the resolved operating environment.
type OSKind string

const (
	OSMacOS          OSKind = "macos"
	OSWindows        OSKind = "windows"
	OSLinux          OSKind = "linux"
	OSLinuxOnWindows OSKind = "wsl"
)

// Profile is the per-request result of environment inspection: which OS
// family the process runs on and where its default Chrome profile keeps the
// History store. Never cached across requests — the user may switch profiles
// between calls.
type Profile struct {
	OS          OSKind
	HistoryPath string
}

// Locator resolves the history store location. The narrow capabilities it
// depends on (home lookup, kernel version, host-username subprocess) are
// struct fields so tests can substitute them.
type Locator struct {
	goos        string
	home        func() (string, error)
	procVersion func() ([]byte, error)
	hostUser    func(ctx context.Context) (string, error)
}

// LocatorOption configures a Locator.
type LocatorOption func(*Locator)

// WithGOOS overrides the detected OS family (tests).
func WithGOOS(goos string) LocatorOption {
	return func(l *Locator) { l.goos = goos }
}

// WithHomeLookup overrides the home-directory lookup (tests).
func WithHomeLookup(fn func() (string, error)) LocatorOption {
	return func(l *Locator) { l.home = fn }
}

// WithProcVersion overrides the kernel version source (tests).
func WithProcVersion(fn func() ([]byte, error)) LocatorOption {
	return func(l *Locator) { l.procVersion = fn }
}

// WithHostUserResolver overrides the WSL host-username lookup (tests).
func WithHostUserResolver(fn func(ctx context.Context) (string, error)) LocatorOption {
	return func(l *Locator) { l.hostUser = fn }
}

// NewLocator creates a Locator bound to the real runtime environment.
func NewLocator(opts ...LocatorOption) *Locator {
	l := &Locator{
		goos:        runtime.GOOS,
		home:        os.UserHomeDir,
		procVersion: func() ([]byte, error) { return os.ReadFile("/proc/version") },
		hostUser:    resolveHostUsername,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Resolve inspects the environment and returns the history store location.
// Pure path computation except for the one subprocess call in the WSL case.
func (l *Locator) Resolve(ctx context.Context) (*Profile, error) {
	switch l.goos {
	case "darwin":
		home, err := l.home()
		if err != nil {
			return nil, fmt.Errorf("histo: home directory: %w", err)
		}
		return &Profile{
			OS:          OSMacOS,
			HistoryPath: filepath.Join(home, "Library", "Application Support", "Google", "Chrome", "Default", "History"),
		}, nil

	case "windows":
		home, err := l.home()
		if err != nil {
			return nil, fmt.Errorf("histo: home directory: %w", err)
		}
		return &Profile{
			OS:          OSWindows,
			HistoryPath: filepath.Join(home, "AppData", "Local", "Google", "Chrome", "User Data", "Default", "History"),
		}, nil

	case "linux":
		if l.isWSL() {
			// The guest's own home is irrelevant here: Chrome runs on the
			// Windows host, so the store lives under the host user's profile
			// seen through the /mnt/c mount.
			user, err := l.hostUser(ctx)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrIdentityResolution, err)
			}
			return &Profile{
				OS:          OSLinuxOnWindows,
				HistoryPath: filepath.Join("/mnt/c/Users", user, "AppData", "Local", "Google", "Chrome", "User Data", "Default", "History"),
			}, nil
		}
		home, err := l.home()
		if err != nil {
			return nil, fmt.Errorf("histo: home directory: %w", err)
		}
		return &Profile{
			OS:          OSLinux,
			HistoryPath: filepath.Join(home, ".config", "google-chrome", "Default", "History"),
		}, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, l.goos)
	}
}

// isWSL reports whether the Linux kernel carries the Microsoft build
// signature of a WSL guest.
func (l *Locator) isWSL() bool {
	data, err := l.procVersion()
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(data)), "microsoft")
}

// resolveHostUsername asks the Windows host for its %USERNAME% through the
// cmd.exe interop bridge available inside WSL.
func resolveHostUsername(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, "cmd.exe", "/c", "echo %USERNAME%").Output()
	if err != nil {
		return "", fmt.Errorf("cmd.exe: %w", err)
	}
	name := strings.TrimSpace(string(out))
	// An unexpanded %USERNAME% means cmd.exe ran outside a real host session.
	if name == "" || strings.Contains(name, "%") {
		return "", fmt.Errorf("unexpected cmd.exe output %q", name)
	}
	return name, nil
}
