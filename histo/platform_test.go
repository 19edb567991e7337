package histo

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func fakeHome(dir string) func() (string, error) {
	return func() (string, error) { return dir, nil }
}

func TestResolve_NativePaths(t *testing.T) {
	cases := []struct {
		goos string
		os   OSKind
		rel  []string
	}{
		{"darwin", OSMacOS, []string{"Library", "Application Support", "Google", "Chrome", "Default", "History"}},
		{"windows", OSWindows, []string{"AppData", "Local", "Google", "Chrome", "User Data", "Default", "History"}},
		{"linux", OSLinux, []string{".config", "google-chrome", "Default", "History"}},
	}
	for _, c := range cases {
		t.Run(c.goos, func(t *testing.T) {
			l := NewLocator(
				WithGOOS(c.goos),
				WithHomeLookup(fakeHome("/home/alice")),
				WithProcVersion(func() ([]byte, error) { return []byte("Linux version 6.1.0-generic"), nil }),
			)
			p, err := l.Resolve(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			if p.OS != c.os {
				t.Fatalf("os: got %s, want %s", p.OS, c.os)
			}
			want := filepath.Join(append([]string{"/home/alice"}, c.rel...)...)
			if p.HistoryPath != want {
				t.Fatalf("path: got %s, want %s", p.HistoryPath, want)
			}
		})
	}
}

func TestResolve_Unsupported(t *testing.T) {
	l := NewLocator(WithGOOS("plan9"))
	_, err := l.Resolve(context.Background())
	if !errors.Is(err, ErrUnsupportedPlatform) {
		t.Fatalf("got %v, want ErrUnsupportedPlatform", err)
	}
}

func TestResolve_WSL(t *testing.T) {
	l := NewLocator(
		WithGOOS("linux"),
		WithProcVersion(func() ([]byte, error) {
			return []byte("Linux version 5.15.90.1-microsoft-standard-WSL2"), nil
		}),
		WithHostUserResolver(func(context.Context) (string, error) { return "Alice", nil }),
		WithHomeLookup(func() (string, error) {
			t.Fatal("WSL resolution must not consult the guest home directory")
			return "", nil
		}),
	)
	p, err := l.Resolve(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if p.OS != OSLinuxOnWindows {
		t.Fatalf("os: got %s", p.OS)
	}
	want := filepath.Join("/mnt/c/Users", "Alice", "AppData", "Local", "Google", "Chrome", "User Data", "Default", "History")
	if p.HistoryPath != want {
		t.Fatalf("path: got %s, want %s", p.HistoryPath, want)
	}
}

func TestResolve_WSLIdentityFailure(t *testing.T) {
	// WHY: a guessed host path would silently query the wrong user's profile.
	l := NewLocator(
		WithGOOS("linux"),
		WithProcVersion(func() ([]byte, error) {
			return []byte("Linux version 5.15.90.1-Microsoft-standard"), nil
		}),
		WithHostUserResolver(func(context.Context) (string, error) {
			return "", errors.New("cmd.exe: executable file not found")
		}),
	)
	p, err := l.Resolve(context.Background())
	if !errors.Is(err, ErrIdentityResolution) {
		t.Fatalf("got %v, want ErrIdentityResolution", err)
	}
	if p != nil {
		t.Fatalf("profile must be nil on failure, got %+v", p)
	}
}

func TestResolve_LinuxNotWSL(t *testing.T) {
	l := NewLocator(
		WithGOOS("linux"),
		WithHomeLookup(fakeHome("/home/bob")),
		WithProcVersion(func() ([]byte, error) { return nil, errors.New("no /proc/version") }),
		WithHostUserResolver(func(context.Context) (string, error) {
			t.Fatal("host user must not be resolved on native Linux")
			return "", nil
		}),
	)
	p, err := l.Resolve(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if p.OS != OSLinux {
		t.Fatalf("os: got %s", p.OS)
	}
}
