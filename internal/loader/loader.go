package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/eugenenazirov/cms-admin/internal/cmsconfig"
)

const (
	maxDocumentSize  = 4 << 20
	cacheBusterParam = "rand"
	cacheBusterChars = "abcdefghijklmnopqrstuvwxyz0123456789"
	cacheBusterLen   = 6
	defaultTimeout   = 10 * time.Second
)

// ErrDocumentTooLarge is returned when a document exceeds the size cap.
var ErrDocumentTooLarge = errors.New("config document exceeds 4 MiB")

// Loader reads configuration documents from files or over HTTP.
type Loader struct {
	http      *http.Client
	timeout   time.Duration
	cacheBust bool
	token     func() string
}

// Option configures a Loader.
type Option func(*Loader)

// WithHTTPClient overrides the client used for URL sources.
func WithHTTPClient(client *http.Client) Option {
	return func(l *Loader) {
		if client != nil {
			l.http = client
		}
	}
}

// WithTimeout bounds each fetch. Zero keeps the default.
func WithTimeout(timeout time.Duration) Option {
	return func(l *Loader) {
		if timeout > 0 {
			l.timeout = timeout
		}
	}
}

// WithCacheBusting appends a random "rand" query parameter to URL fetches so
// intermediate caches never serve a stale document.
func WithCacheBusting(enabled bool) Option {
	return func(l *Loader) {
		l.cacheBust = enabled
	}
}

// New constructs a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{
		http:    &http.Client{},
		timeout: defaultTimeout,
		token:   randomToken,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the raw bytes of the document behind src.
func (l *Loader) Load(ctx context.Context, src Source) ([]byte, error) {
	switch src.Kind() {
	case SourceKindFile:
		return loadFile(ctx, src.Location())
	case SourceKindURL:
		target := src.Location()
		if l.cacheBust {
			busted, err := addCacheBuster(target, l.token())
			if err != nil {
				return nil, err
			}
			target = busted
		}
		return l.loadHTTP(ctx, target)
	default:
		return nil, errors.New("config loader: unsupported source kind")
	}
}

// LoadConfig loads and parses the document behind src.
func (l *Loader) LoadConfig(ctx context.Context, src Source) (cmsconfig.CmsConfig, error) {
	data, err := l.Load(ctx, src)
	if err != nil {
		return cmsconfig.CmsConfig{}, err
	}
	cfg, err := cmsconfig.ParseYAML(data)
	if err != nil {
		return cmsconfig.CmsConfig{}, fmt.Errorf("parse %s: %w", src, err)
	}
	return cfg, nil
}

func loadFile(ctx context.Context, path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New("config loader: file path is required")
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	return readCapped(f)
}

func (l *Loader) loadHTTP(ctx context.Context, target string) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/yaml, text/yaml, application/json;q=0.9, */*;q=0.5")

	resp, err := l.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch config: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch config: unexpected status %s", resp.Status)
	}
	return readCapped(resp.Body)
}

func readCapped(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > maxDocumentSize {
		return nil, ErrDocumentTooLarge
	}
	return data, nil
}

func addCacheBuster(raw, token string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse config URL: %w", err)
	}
	q := u.Query()
	q.Set(cacheBusterParam, token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func randomToken() string {
	buf := make([]byte, cacheBusterLen)
	for i := range buf {
		buf[i] = cacheBusterChars[rand.IntN(len(cacheBusterChars))]
	}
	return string(buf)
}
