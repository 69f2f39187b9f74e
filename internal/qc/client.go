// Package qc talks to the backend quality-control pipeline: batch
// re-evaluation requests and placement guidance. Rule evaluation itself
// runs server-side in the pipeline; this client only initiates work and
// relays advisory findings.
package qc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"dossier/internal/domain/models/organizer"
)

// DefaultTimeout bounds every pipeline request. Advisory calls are
// additionally time-boxed by the caller's context.
const DefaultTimeout = 15 * time.Second

// Client is an HTTP client for the QC pipeline API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a pipeline client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// NewClientWithHTTPClient creates a pipeline client with a custom
// underlying HTTP client, mainly for tests.
func NewClientWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

// BulkApprove submits one batch re-evaluation request for the given
// document ids. Any non-2xx response is total failure for the batch;
// there is no per-item outcome at this layer. The resulting verdicts
// arrive later through the status feed.
func (c *Client) BulkApprove(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return fmt.Errorf("bulk approve: empty id set")
	}

	payload, err := json.Marshal(map[string]any{"ids": ids})
	if err != nil {
		return fmt.Errorf("bulk approve: marshal request: %w", err)
	}

	body, status, err := c.post(ctx, "/bulk-approve", payload)
	if err != nil {
		return fmt.Errorf("bulk approve: %w", err)
	}
	if status < 200 || status > 299 {
		return fmt.Errorf("bulk approve: pipeline returned status %d: %s", status, body)
	}
	return nil
}

// Advise requests placement guidance for a committed move. The response
// is validated defensively: a payload missing its document or module id
// is malformed and reported as an error so the caller can discard it.
func (c *Client) Advise(ctx context.Context, req organizer.AdvisoryRequest) (*organizer.Advisory, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("advise: marshal request: %w", err)
	}

	body, status, err := c.post(ctx, "/advise", payload)
	if err != nil {
		return nil, fmt.Errorf("advise: %w", err)
	}
	if status < 200 || status > 299 {
		return nil, fmt.Errorf("advise: pipeline returned status %d: %s", status, body)
	}

	var advisory organizer.Advisory
	if err := json.Unmarshal(body, &advisory); err != nil {
		return nil, fmt.Errorf("advise: parse response: %w", err)
	}
	if advisory.DocumentID == "" || advisory.ModuleID == "" {
		return nil, fmt.Errorf("advise: malformed response, missing document or module id")
	}
	return &advisory, nil
}

func (c *Client) post(ctx context.Context, path string, payload []byte) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read response: %w", err)
	}
	return body, resp.StatusCode, nil
}
