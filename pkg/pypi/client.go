// Package pypi provides access to the PyPI JSON API. It is the package
// index behind update checks: given a package name it reports the newest
// published version, with file-based caching and automatic retries.
package pypi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sortiz4/pipit/pkg/httputil"
	"github.com/sortiz4/pipit/pkg/pep440"
)

const (
	baseURL     = "https://pypi.org/pypi"
	httpTimeout = 10 * time.Second
)

var (
	// ErrNotFound is returned when a package doesn't exist on the index.
	ErrNotFound = errors.New("package not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors,
	// 5xx responses).
	ErrNetwork = errors.New("network error")
)

// PackageInfo holds the metadata pipit needs from a PyPI record. Names are
// normalized following PEP 503.
type PackageInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Summary string `json:"summary"`
}

// Client queries the PyPI registry. All methods are safe for concurrent
// use.
type Client struct {
	http    *http.Client
	cache   *httputil.Cache
	baseURL string
}

// NewClient creates a PyPI client. The cache may be nil to disable
// response caching; when given, entries are stored under a "pypi:"
// namespace so they never collide with other cached data.
func NewClient(cache *httputil.Cache) *Client {
	if cache != nil {
		cache = cache.Namespace("pypi:")
	}
	return &Client{
		http:    &http.Client{Timeout: httpTimeout},
		cache:   cache,
		baseURL: baseURL,
	}
}

// FetchPackage retrieves metadata for a package, consulting the cache
// first. Returns [ErrNotFound] if the index has no such package and
// [ErrNetwork] for transport failures.
func (c *Client) FetchPackage(ctx context.Context, name string) (*PackageInfo, error) {
	name = pep440.Normalize(name)

	var info PackageInfo
	if c.cache != nil {
		if ok, _ := c.cache.Get(name, &info); ok {
			return &info, nil
		}
	}

	err := httputil.RetryWithBackoff(ctx, func() error {
		return c.fetch(ctx, name, &info)
	})
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		_ = c.cache.Set(name, &info)
	}
	return &info, nil
}

// LatestVersion reports the newest published version of a package. Unknown
// packages yield ("", nil) so callers can skip packages that were never
// installed from the index.
func (c *Client) LatestVersion(ctx context.Context, name string) (string, error) {
	info, err := c.FetchPackage(ctx, name)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return info.Version, nil
}

func (c *Client) fetch(ctx context.Context, name string, info *PackageInfo) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s/json", c.baseURL, name), nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &httputil.RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode, name); err != nil {
		return err
	}

	var data struct {
		Info PackageInfo `json:"info"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return fmt.Errorf("decoding pypi response for %s: %w", name, err)
	}

	*info = data.Info
	info.Name = pep440.Normalize(info.Name)
	return nil
}

func checkStatus(code int, name string) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	case code >= 500:
		return &httputil.RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, code)}
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
