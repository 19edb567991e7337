package flux

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net/http"
	"time"

	"github.com/hazyhaar/sillage/safeweb"
)

// FetchConfig configures the feed fetcher.
type FetchConfig struct {
	Timeout  time.Duration // HTTP timeout. Default: 15s.
	MaxBytes int64         // Max response body size. Default: 2 MiB.
	// UserAgent sent with requests.
	UserAgent string
	// URLValidator validates URLs before fetch and on every redirect
	// (SSRF prevention). Default: safeweb.ValidateURL.
	URLValidator func(string) error
}

func (c *FetchConfig) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = 2 << 20
	}
	if c.UserAgent == "" {
		c.UserAgent = "sillage-flux/1.0"
	}
	if c.URLValidator == nil {
		c.URLValidator = safeweb.ValidateURL
	}
}

// Conditional carries validators from a previous fetch of the same URL.
// The zero value means an unconditional GET.
type Conditional struct {
	ETag         string
	LastModified string
	PrevHash     string
}

// FetchResult is the outcome of one feed fetch.
type FetchResult struct {
	Body       []byte
	StatusCode int
	Hash       string // SHA-256 of body
	ETag       string
	LastMod    string
	Changed    bool // false on 304 or when the body hash matches PrevHash
}

// Fetcher retrieves feed documents with conditional GET and SSRF checks.
type Fetcher struct {
	client *http.Client
	config FetchConfig
}

// NewFetcher builds a Fetcher. Redirects re-run the URL validator so an
// open redirect cannot reach internal addresses.
func NewFetcher(cfg FetchConfig) *Fetcher {
	cfg.defaults()
	validate := cfg.URLValidator
	return &Fetcher{
		client: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("too many redirects (%d)", len(via))
				}
				if err := validate(req.URL.String()); err != nil {
					return fmt.Errorf("redirect blocked (SSRF): %w", err)
				}
				return nil
			},
		},
		config: cfg,
	}
}

// Fetch retrieves url. Conditional headers are sent when cond carries
// validators; a 304 response or a matching body hash yields Changed=false.
func (f *Fetcher) Fetch(ctx context.Context, url string, cond Conditional) (*FetchResult, error) {
	if err := f.config.URLValidator(url); err != nil {
		return nil, fmt.Errorf("URL blocked (SSRF): %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")

	if cond.ETag != "" {
		req.Header.Set("If-None-Match", cond.ETag)
	}
	if cond.LastModified != "" {
		req.Header.Set("If-Modified-Since", cond.LastModified)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		return &FetchResult{
			StatusCode: http.StatusNotModified,
			ETag:       resp.Header.Get("ETag"),
			LastMod:    resp.Header.Get("Last-Modified"),
		}, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return &FetchResult{StatusCode: resp.StatusCode}, fmt.Errorf("http %d", resp.StatusCode)
	}

	body, err := safeweb.LimitedReadAll(resp.Body, f.config.MaxBytes)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	h := sha256.Sum256(body)
	hash := fmt.Sprintf("%x", h)

	return &FetchResult{
		Body:       body,
		StatusCode: resp.StatusCode,
		Hash:       hash,
		ETag:       resp.Header.Get("ETag"),
		LastMod:    resp.Header.Get("Last-Modified"),
		Changed:    cond.PrevHash == "" || hash != cond.PrevHash,
	}, nil
}
