package resourcespace

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/matzehuels/imagehub/pkg/integrations"
)

// Default field names holding the data identifier and the image identifier.
const (
	DefaultDataField  = "pidafbeelding"
	DefaultImageField = "originalfilename"
)

// Config configures a [Client].
type Config struct {
	// APIURL is the API endpoint. A trailing "?" is ignored.
	APIURL string
	User   string
	Key    string

	// DataField and ImageField name the resource fields read by
	// [Client.Resource]. They default to DefaultDataField and
	// DefaultImageField.
	DataField  string
	ImageField string
}

// Resource is one catalog resource with the fields a run needs.
type Resource struct {
	Ref     string
	DataID  string
	ImageID string
}

// Field is one name/value pair returned by get_resource_field_data.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Client talks to the ResourceSpace API. It is safe for concurrent use.
type Client struct {
	*integrations.Client
	cfg Config
}

// NewClient creates a client. The catalog is never cached, so only retries
// and timeouts of the shared client apply.
func NewClient(cfg Config) *Client {
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "?")
	if cfg.DataField == "" {
		cfg.DataField = DefaultDataField
	}
	if cfg.ImageField == "" {
		cfg.ImageField = DefaultImageField
	}
	return &Client{
		Client: integrations.NewClient(nil, "rs:", 0, nil),
		cfg:    cfg,
	}
}

// Sign returns the request signature for query.
func Sign(key, query string) string {
	sum := sha256.Sum256([]byte(key + query))
	return hex.EncodeToString(sum[:])
}

// URL returns the signed request URL for function with the given parameter.
func (c *Client) URL(function, param string) string {
	query := "user=" + url.QueryEscape(c.cfg.User) +
		"&function=" + url.QueryEscape(function) +
		"&param1=" + url.QueryEscape(param)
	return c.cfg.APIURL + "?" + query + "&sign=" + Sign(c.cfg.Key, query)
}

// Search lists the references of every resource in the catalog, in catalog
// order.
func (c *Client) Search(ctx context.Context) ([]string, error) {
	var results []struct {
		Ref ref `json:"ref"`
	}
	err := c.Retry(ctx, func() error {
		return c.Get(ctx, c.URL("do_search", ""), &results)
	})
	if err != nil {
		return nil, fmt.Errorf("resourcespace search: %w", err)
	}

	refs := make([]string, 0, len(results))
	for _, r := range results {
		if r.Ref != "" {
			refs = append(refs, string(r.Ref))
		}
	}
	return refs, nil
}

// Fields returns all fields of the resource with the given reference.
func (c *Client) Fields(ctx context.Context, resourceRef string) ([]Field, error) {
	var fields []Field
	err := c.Retry(ctx, func() error {
		return c.Get(ctx, c.URL("get_resource_field_data", resourceRef), &fields)
	})
	if err != nil {
		return nil, fmt.Errorf("resourcespace fields of %s: %w", resourceRef, err)
	}
	return fields, nil
}

// Resource fetches the fields of a resource and picks out its data and image
// identifiers. Either may be empty when the catalog lacks the field.
func (c *Client) Resource(ctx context.Context, resourceRef string) (Resource, error) {
	fields, err := c.Fields(ctx, resourceRef)
	if err != nil {
		return Resource{}, err
	}
	res := Resource{Ref: resourceRef}
	for _, f := range fields {
		switch f.Name {
		case c.cfg.DataField:
			res.DataID = strings.TrimSpace(f.Value)
		case c.cfg.ImageField:
			res.ImageID = strings.TrimSpace(f.Value)
		}
	}
	return res, nil
}

// ref accepts resource references encoded as JSON numbers or strings.
type ref string

func (r *ref) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*r = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = ref(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*r = ref(n.String())
	return nil
}
