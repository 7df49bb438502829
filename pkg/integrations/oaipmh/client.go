// Package oaipmh harvests single records from an OAI-PMH repository with
// the GetRecord verb.
//
// [Client.GetRecord] returns the content of the record's <metadata> element
// as raw XML, ready for [xmlpath.Parse]. Protocol errors reported in the
// response body (idDoesNotExist, cannotDisseminateFormat, ...) are returned
// as [*ProtocolError] and are never retried.
//
// [xmlpath.Parse]: github.com/matzehuels/imagehub/pkg/core/xmlpath.Parse
package oaipmh

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/imagehub/pkg/cache"
	"github.com/matzehuels/imagehub/pkg/integrations"
)

// ProtocolError is an OAI-PMH <error> element.
type ProtocolError struct {
	Code    string
	Message string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("oai-pmh %s: %s", e.Code, strings.TrimSpace(e.Message))
}

// Client harvests records from one repository. It is safe for concurrent use.
type Client struct {
	*integrations.Client
	baseURL string
	prefix  string
}

// NewClient creates a client for the repository at baseURL requesting
// records in the metadataPrefix format, e.g. "oai_lido".
func NewClient(baseURL, metadataPrefix string, backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "oai:", cacheTTL, nil),
		baseURL: strings.TrimRight(baseURL, "?"),
		prefix:  metadataPrefix,
	}
}

// RecordURL returns the GetRecord request URL for identifier.
func (c *Client) RecordURL(identifier string) string {
	q := url.Values{}
	q.Set("verb", "GetRecord")
	q.Set("identifier", identifier)
	q.Set("metadataPrefix", c.prefix)
	sep := "?"
	if strings.Contains(c.baseURL, "?") {
		sep = "&"
	}
	return c.baseURL + sep + q.Encode()
}

type envelope struct {
	XMLName xml.Name `xml:"OAI-PMH"`
	Errors  []struct {
		Code    string `xml:"code,attr"`
		Message string `xml:",chardata"`
	} `xml:"error"`
	Record *struct {
		Header struct {
			Identifier string `xml:"identifier"`
			Status     string `xml:"status,attr"`
		} `xml:"header"`
		Metadata struct {
			Inner []byte `xml:",innerxml"`
		} `xml:"metadata"`
	} `xml:"GetRecord>record"`
}

// GetRecord harvests identifier and returns its metadata payload.
func (c *Client) GetRecord(ctx context.Context, identifier string, refresh bool) ([]byte, error) {
	var payload []byte
	err := c.Cached(ctx, c.prefix+":"+identifier, refresh, &payload, func() error {
		body, err := c.GetBytes(ctx, c.RecordURL(identifier))
		if err != nil {
			return err
		}
		payload, err = ParseGetRecord(body)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("oai-pmh GetRecord %s: %w", identifier, err)
	}
	return payload, nil
}

// ParseGetRecord extracts the metadata payload from a GetRecord response.
func ParseGetRecord(body []byte) ([]byte, error) {
	var env envelope
	if err := xml.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(env.Errors) > 0 {
		e := env.Errors[0]
		return nil, &ProtocolError{Code: e.Code, Message: e.Message}
	}
	if env.Record == nil {
		return nil, fmt.Errorf("response holds no record")
	}
	if env.Record.Header.Status == "deleted" {
		return nil, &ProtocolError{Code: "deleted", Message: "record " + env.Record.Header.Identifier + " is deleted"}
	}
	payload := bytes.TrimSpace(env.Record.Metadata.Inner)
	if len(payload) == 0 {
		return nil, fmt.Errorf("record %s has no metadata", env.Record.Header.Identifier)
	}
	return payload, nil
}
