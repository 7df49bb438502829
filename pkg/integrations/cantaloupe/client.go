// Package cantaloupe reads image dimensions from a IIIF Image API server
// such as Cantaloupe.
//
// The server describes each image at <base><identifier>/info.json; only the
// width and height fields are used. Responses are cached under the "iiif:"
// prefix since pixel sizes of an image never change.
package cantaloupe

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/matzehuels/imagehub/pkg/cache"
	"github.com/matzehuels/imagehub/pkg/integrations"
)

// Info holds the dimensions reported by info.json.
type Info struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Client fetches image information. It is safe for concurrent use.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a client for the server at baseURL, which is used
// verbatim as the prefix of every identifier.
func NewClient(baseURL string, backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "iiif:", cacheTTL, nil),
		baseURL: baseURL,
	}
}

// InfoURL returns the info.json URL of imageID.
func (c *Client) InfoURL(imageID string) string {
	return c.baseURL + url.PathEscape(imageID) + "/info.json"
}

// Dimensions returns the pixel size of imageID.
func (c *Client) Dimensions(ctx context.Context, imageID string, refresh bool) (Info, error) {
	if imageID == "" {
		return Info{}, fmt.Errorf("cantaloupe: empty image identifier")
	}
	var info Info
	err := c.Cached(ctx, imageID, refresh, &info, func() error {
		return c.Get(ctx, c.InfoURL(imageID), &info)
	})
	if err != nil {
		return Info{}, fmt.Errorf("cantaloupe %s: %w", imageID, err)
	}
	if info.Width < 0 || info.Height < 0 {
		return Info{}, fmt.Errorf("cantaloupe %s: negative dimensions %dx%d", imageID, info.Width, info.Height)
	}
	return info, nil
}
