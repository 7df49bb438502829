package integrations

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/imagehub/pkg/cache"
	"github.com/matzehuels/imagehub/pkg/httputil"
)

func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewClient(c, "test:", time.Hour, map[string]string{"User-Agent": "imagehub-test"}).
		WithHTTPClient(server.Client()).
		WithRetry(3, time.Millisecond)
}

func TestNewClient_NilCache(t *testing.T) {
	client := NewClient(nil, "test:", time.Hour, nil)
	if client.cache == nil {
		t.Fatal("nil cache should be replaced by a null cache")
	}
	if client.http == nil {
		t.Error("http client is nil")
	}
}

func TestClientGet(t *testing.T) {
	var agent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.Header.Get("User-Agent")
		w.Write([]byte(`{"width":640,"height":480}`))
	}))
	defer server.Close()

	var resp struct{ Width, Height int }
	if err := newTestClient(t, server).Get(context.Background(), server.URL, &resp); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if resp.Width != 640 || resp.Height != 480 {
		t.Errorf("Get() = %+v", resp)
	}
	if agent != "imagehub-test" {
		t.Errorf("User-Agent = %q", agent)
	}
}

func TestClientGet_DecodeErrorRedactsQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	var v map[string]any
	err := newTestClient(t, server).Get(context.Background(), server.URL+"/api/?sign=secret", &v)
	if err == nil {
		t.Fatal("Get() should fail on invalid JSON")
	}
	if strings.Contains(err.Error(), "secret") {
		t.Errorf("error leaks query string: %v", err)
	}
}

func TestClientGetBytes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<OAI-PMH/>"))
	}))
	defer server.Close()

	got, err := newTestClient(t, server).GetBytes(context.Background(), server.URL)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "<OAI-PMH/>" {
		t.Errorf("GetBytes() = %q", got)
	}
}

func TestClientGet404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	var resp map[string]string
	err := newTestClient(t, server).Get(context.Background(), server.URL, &resp)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestClientCached_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`"ok"`))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	var v string
	err := client.Cached(context.Background(), "k", false, &v, func() error {
		return client.Get(context.Background(), server.URL, &v)
	})
	if err != nil {
		t.Fatalf("Cached() error: %v", err)
	}
	if v != "ok" || calls.Load() != 3 {
		t.Errorf("v = %q after %d calls", v, calls.Load())
	}
}

func TestClientCached_HitSkipsFetch(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()
	client := newTestClient(t, server)
	ctx := context.Background()

	fetches := 0
	fetch := func(v *string) func() error {
		return func() error {
			fetches++
			*v = "fetched"
			return nil
		}
	}

	var first string
	if err := client.Cached(ctx, "key", false, &first, fetch(&first)); err != nil {
		t.Fatal(err)
	}
	var second string
	if err := client.Cached(ctx, "key", false, &second, fetch(&second)); err != nil {
		t.Fatal(err)
	}
	if fetches != 1 || second != "fetched" {
		t.Errorf("fetches = %d, second = %q; want 1 fetch and a cache hit", fetches, second)
	}

	var third string
	if err := client.Cached(ctx, "key", true, &third, fetch(&third)); err != nil {
		t.Fatal(err)
	}
	if fetches != 2 {
		t.Errorf("refresh should bypass the cache, fetches = %d", fetches)
	}
}

func TestClientCached_FetchErrorNotCached(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()
	client := newTestClient(t, server)

	var v string
	err := client.Cached(context.Background(), "k", false, &v, func() error { return ErrNotFound })
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Cached() error = %v", err)
	}
	if _, ok, _ := client.cache.Get(context.Background(), "test:k"); ok {
		t.Error("failed fetch should not be cached")
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		code      int
		wantErr   bool
		wantType  error
		retryable bool
	}{
		{200, false, nil, false},
		{404, true, ErrNotFound, false},
		{429, true, ErrNetwork, true},
		{500, true, ErrNetwork, true},
		{503, true, ErrNetwork, true},
		{400, true, ErrNetwork, false},
		{403, true, ErrNetwork, false},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			err := checkStatus(tt.code)
			if (err != nil) != tt.wantErr {
				t.Fatalf("checkStatus(%d) = %v", tt.code, err)
			}
			if tt.wantType != nil && !errors.Is(err, tt.wantType) {
				t.Errorf("checkStatus(%d) = %v, want %v", tt.code, err, tt.wantType)
			}
			var retryErr *httputil.RetryableError
			if got := errors.As(err, &retryErr); got != tt.retryable {
				t.Errorf("retryable = %v, want %v", got, tt.retryable)
			}
		})
	}
}

func TestRedact(t *testing.T) {
	if got := redact("https://rs.example.org/api/?user=a&sign=b"); got != "https://rs.example.org/api/" {
		t.Errorf("redact() = %s", got)
	}
}
