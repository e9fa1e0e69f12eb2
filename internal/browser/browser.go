package browser

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/seqops/virsam/internal/errors"
)

// Client fetches public records from the archive browser API. Samples
// and checklists are served from the same endpoint, keyed by accession.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a browser client for the given endpoint.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// RecordURL returns the download URL for a single accession.
func (c *Client) RecordURL(accession string) string {
	return fmt.Sprintf("%s/%s?download=true&includeLinks=false", c.baseURL, accession)
}

// Fetch retrieves the XML record for an accession. A single attempt is
// made; a missing record surfaces as KindNotFound so callers can map it
// to their own taxonomy.
func (c *Client) Fetch(ctx context.Context, accession string) ([]byte, error) {
	const op errors.Op = "browser.Fetch"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.RecordURL(accession), nil)
	if err != nil {
		return nil, errors.E(op, errors.KindNetwork, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.E(op, errors.KindNetwork, fmt.Errorf("fetching %s: %w", accession, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.E(op, errors.KindNotFound, fmt.Errorf("record %s not found", accession))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.E(op, errors.KindNetwork, fmt.Errorf("HTTP %d fetching %s", resp.StatusCode, accession))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.E(op, errors.KindIO, err)
	}

	return body, nil
}
