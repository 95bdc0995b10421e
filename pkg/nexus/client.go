package nexus

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nexport/nexport/pkg/buildinfo"
	"github.com/nexport/nexport/pkg/cache"
	"github.com/nexport/nexport/pkg/errors"
	"github.com/nexport/nexport/pkg/httputil"
	"github.com/nexport/nexport/pkg/observability"
)

const (
	// defaultTimeout bounds listing and status requests. Content downloads
	// are exempt; they only time out waiting for response headers.
	defaultTimeout = 60 * time.Second

	restPrefix = "/service/rest/v1"
)

// Config holds connection settings for a Nexus server.
type Config struct {
	// BaseURL is the server root, e.g. "https://nexus.example.com".
	BaseURL string

	// Username and Password are sent as HTTP basic auth on every request.
	// Leave both empty for anonymous access.
	Username string
	Password string

	// Timeout bounds each API request (default 60s).
	Timeout time.Duration
}

// Client talks to the Nexus REST API. It handles authentication, response
// caching for listing endpoints, and retry classification of failures.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	http     *http.Client
	stream   *http.Client
	cache    cache.Cache
	ttl      time.Duration
	baseURL  string
	username string
	password string
}

// NewClient creates a Client for the given server.
// Pass a cache backend for listing responses (use cache.NewNullCache() to
// disable caching) and the TTL applied to cached entries.
func NewClient(cfg Config, backend cache.Cache, cacheTTL time.Duration) *Client {
	if backend == nil {
		backend = cache.NewNullCache()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = timeout

	return &Client{
		http:     &http.Client{Timeout: timeout},
		stream:   &http.Client{Transport: transport},
		cache:    backend,
		ttl:      cacheTTL,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		username: cfg.Username,
		password: cfg.Password,
	}
}

// BaseURL returns the normalized server root.
func (c *Client) BaseURL() string { return c.baseURL }

// Cached retrieves a value from cache or executes fetch and caches the result.
// If refresh is true, the cache is bypassed and fetch is always called.
// The fetch function should populate v; on success, v is stored in the cache.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	if !refresh {
		if data, ok, err := c.cache.Get(ctx, key); err == nil && ok {
			if err := json.Unmarshal(data, v); err == nil {
				observability.Cache().OnCacheHit(ctx, keyType(key))
				return nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, keyType(key))
	}
	if err := httputil.RetryWithBackoff(ctx, fetch); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil {
		if c.cache.Set(ctx, key, data, c.ttl) == nil {
			observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
		}
	}
	return nil
}

// GetJSON performs an authenticated GET and decodes the JSON response into v.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	body, err := c.doRequest(ctx, c.http, url)
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "decode response from %s", url)
	}
	return nil
}

// Fetch opens the artifact content stream at url. The caller must close the
// returned reader. The stream has no overall deadline; cancel ctx to abort
// a long transfer.
func (c *Client) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	return c.doRequest(ctx, c.stream, url)
}

// Status checks that the server is reachable and responding.
func (c *Client) Status(ctx context.Context) error {
	body, err := c.doRequest(ctx, c.http, c.baseURL+restPrefix+"/status")
	if err != nil {
		return err
	}
	return body.Close()
}

func (c *Client) doRequest(ctx context.Context, client *http.Client, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build request for %s", url)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	host, path := req.URL.Host, req.URL.Path
	observability.HTTP().OnRequest(ctx, http.MethodGet, host, path)

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, http.MethodGet, host, path, err)
		return nil, httputil.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "request %s", url))
	}
	observability.HTTP().OnResponse(ctx, http.MethodGet, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

// checkStatus maps HTTP status codes to the error taxonomy. Authentication
// failures are never retryable (the next attempt would be rejected the same
// way); rate limits and server errors are.
func checkStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized:
		return errors.New(errors.ErrCodeUnauthorized, "authentication failed (status %d)", code)
	case code == http.StatusForbidden:
		return errors.New(errors.ErrCodeForbidden, "access denied (status %d)", code)
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "resource not found (status %d)", code)
	case code == http.StatusTooManyRequests:
		return httputil.Retryable(errors.New(errors.ErrCodeRateLimited, "rate limited (status %d)", code))
	case code >= 500:
		return httputil.Retryable(errors.New(errors.ErrCodeNetwork, "server error (status %d)", code))
	default:
		return errors.New(errors.ErrCodeNetwork, "unexpected status %d", code)
	}
}

// keyType reduces a cache key to its category for metrics, e.g.
// "components:releases:abc" -> "components".
func keyType(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
