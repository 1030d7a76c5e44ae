package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"metastore-scraper/models"
)

const maxImportResponse = 1 << 20

// ImportResult is the decoded reply of the import endpoint.
type ImportResult struct {
	StatusCode int
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Error      string `json:"error"`
	Body       string `json:"-"`
}

// ImportClient posts batches to the query service's import endpoint.
type ImportClient struct {
	endpoint string
	client   *http.Client
}

func NewImportClient(endpoint string, timeout time.Duration) *ImportClient {
	return &ImportClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Import sends records as a JSON array to the endpoint with ?clear=true|false.
// Any status other than 200 is returned as an error alongside the result.
func (c *ImportClient) Import(ctx context.Context, records []*models.Record, clear bool) (*ImportResult, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("import: parse endpoint %q: %w", c.endpoint, err)
	}
	q := u.Query()
	q.Set("clear", strconv.FormatBool(clear))
	u.RawQuery = q.Encode()

	if records == nil {
		records = []*models.Record{}
	}
	body, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("import: encode records: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("import: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("import: post %s: %w", u.Redacted(), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxImportResponse))
	if err != nil {
		return nil, fmt.Errorf("import: read response: %w", err)
	}

	result := &ImportResult{StatusCode: resp.StatusCode, Body: string(raw)}
	_ = json.Unmarshal(raw, result)

	if resp.StatusCode != http.StatusOK {
		return result, fmt.Errorf("import: endpoint returned %d: %s", resp.StatusCode, bytes.TrimSpace(raw))
	}
	return result, nil
}
