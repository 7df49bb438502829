package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/imagehub/pkg/cache"
	"github.com/matzehuels/imagehub/pkg/httputil"
	"github.com/matzehuels/imagehub/pkg/observability"
)

// maxBodySize bounds every upstream response body.
const maxBodySize = 32 << 20

// Client provides shared HTTP functionality for the upstream clients: a
// timeout, retries for transient failures, response caching and default
// headers.
type Client struct {
	http    *http.Client
	cache   cache.Cache
	prefix  string
	ttl     time.Duration
	headers map[string]string
	retry   func(ctx context.Context, fn func() error) error
}

// NewClient creates a Client caching responses in c under keys starting with
// prefix. A nil cache disables caching. Headers are applied to all requests.
func NewClient(c cache.Cache, prefix string, ttl time.Duration, headers map[string]string) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Client{
		http:    NewHTTPClient(),
		cache:   c,
		prefix:  prefix,
		ttl:     ttl,
		headers: headers,
		retry:   httputil.RetryWithBackoff,
	}
}

// WithHTTPClient replaces the underlying HTTP client. Tests use it to talk to
// an httptest server.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

// WithRetry sets the number of attempts and the initial backoff delay.
func (c *Client) WithRetry(attempts int, delay time.Duration) *Client {
	c.retry = func(ctx context.Context, fn func() error) error {
		return httputil.Retry(ctx, attempts, delay, fn)
	}
	return c
}

// Cached retrieves a value from cache or executes fetch and caches the result.
// If refresh is true, the cache is bypassed and fetch is always called.
// The fetch function should populate v; on success, v is stored as JSON.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	full := c.prefix + key
	if !refresh {
		if data, ok, err := c.cache.Get(ctx, full); err == nil && ok {
			if json.Unmarshal(data, v) == nil {
				observability.Cache().OnCacheHit(ctx, c.prefix)
				return nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, c.prefix)
	}
	if err := c.retry(ctx, fetch); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil {
		if c.cache.Set(ctx, full, data, c.ttl) == nil {
			observability.Cache().OnCacheSet(ctx, c.prefix, len(data))
		}
	}
	return nil
}

// Retry runs fn with the client's retry policy without caching.
func (c *Client) Retry(ctx context.Context, fn func() error) error {
	return c.retry(ctx, fn)
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	body, err := c.doRequest(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", redact(url), err)
	}
	return nil
}

// GetBytes performs an HTTP GET request and returns the raw response body.
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, error) {
	body, err := c.doRequest(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return io.ReadAll(io.LimitReader(body, maxBodySize))
}

func (c *Client) doRequest(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	host, path := req.URL.Host, req.URL.Path
	observability.HTTP().OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, req.Method, host, path, err)
		return nil, &httputil.RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	observability.HTTP().OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests, code >= 500:
		return &httputil.RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, code)}
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
