package cantaloupe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/imagehub/pkg/cache"
	"github.com/matzehuels/imagehub/pkg/integrations"
)

func testClient(t *testing.T, server *httptest.Server, backend cache.Cache) *Client {
	t.Helper()
	c := NewClient(server.URL+"/iiif/2/", backend, time.Hour)
	c.WithHTTPClient(server.Client()).WithRetry(2, time.Millisecond)
	return c
}

func TestDimensions(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/iiif/2/portret.jpg/info.json":
			w.Write([]byte(`{"@context":"http://iiif.io/api/image/2/context.json","width":4000,"height":3000,"tiles":[]}`))
		case "/iiif/2/met spatie.jpg/info.json":
			w.Write([]byte(`{"width":10,"height":20}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := testClient(t, server, fc)
	ctx := context.Background()

	info, err := c.Dimensions(ctx, "portret.jpg", false)
	if err != nil {
		t.Fatalf("Dimensions() error: %v", err)
	}
	if info != (Info{Width: 4000, Height: 3000}) {
		t.Errorf("Dimensions() = %+v", info)
	}

	if _, err := c.Dimensions(ctx, "portret.jpg", false); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 1 {
		t.Errorf("second lookup should be served from cache, server hits = %d", hits.Load())
	}

	info, err = c.Dimensions(ctx, "met spatie.jpg", false)
	if err != nil {
		t.Fatalf("escaped identifier: %v", err)
	}
	if info.Width != 10 || info.Height != 20 {
		t.Errorf("Dimensions() = %+v", info)
	}
}

func TestDimensions_Errors(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()
	c := testClient(t, server, nil)

	if _, err := c.Dimensions(context.Background(), "missing.jpg", false); !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
	if _, err := c.Dimensions(context.Background(), "", false); err == nil {
		t.Error("empty identifier should fail")
	}
}

func TestInfoURL(t *testing.T) {
	c := NewClient("https://images.example.org/iiif/2/", nil, 0)
	if got := c.InfoURL("a/b.jpg"); got != "https://images.example.org/iiif/2/a%2Fb.jpg/info.json" {
		t.Errorf("InfoURL() = %s", got)
	}
}
