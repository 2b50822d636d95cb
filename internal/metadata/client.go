// Package metadata fetches project metadata records from the content-addressed
// store through a configured gateway.
package metadata

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

// Record is a project's off-ledger metadata. Every field is optional; absent
// fields decode to their empty defaults and must never fail the whole record.
type Record struct {
	Description string `json:"description"`
	ExternalURL string `json:"external_url"`
	Image       string `json:"image"`
	Twitter     string `json:"twitter"`
}

type Client struct {
	log     *logan.Entry
	http    *http.Client
	gateway *url.URL
}

func NewClient(log *logan.Entry, httpClient *http.Client, gateway *url.URL) *Client {
	return &Client{
		log:     log.WithField("who", "metadata-client"),
		http:    httpClient,
		gateway: gateway,
	}
}

// Fetch resolves a metadata reference and decodes it. ipfs:// references are
// rewritten onto the gateway; http(s) references are fetched as-is.
func (c *Client) Fetch(ctx context.Context, reference string) (Record, error) {
	target, err := c.resolve(reference)
	if err != nil {
		return Record{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Record{}, errors.Wrap(err, "failed to build metadata request")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return Record{}, errors.Wrap(err, "failed to fetch metadata")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Record{}, errors.From(errors.New("unexpected metadata response status"), logan.F{
			"status": resp.StatusCode,
			"ref":    reference,
		})
	}

	var rec Record
	if err = json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return Record{}, errors.Wrap(err, "failed to decode metadata record")
	}
	return rec, nil
}

func (c *Client) resolve(reference string) (string, error) {
	switch {
	case strings.HasPrefix(reference, "ipfs://"):
		u := *c.gateway
		u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimPrefix(reference, "ipfs://")
		return u.String(), nil
	case strings.HasPrefix(reference, "http://"), strings.HasPrefix(reference, "https://"):
		return reference, nil
	case reference == "":
		return "", errors.New("empty metadata reference")
	default:
		// bare CID
		u := *c.gateway
		u.Path = strings.TrimRight(u.Path, "/") + "/" + reference
		return u.String(), nil
	}
}
