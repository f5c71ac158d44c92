// Package dashboard pushes aggregated rollups to the reporting service.
package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"PropScanner/internal/domain"
	"PropScanner/internal/ports"
)

// Client posts rollup batches to an HTTP dashboard endpoint.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

var _ ports.DashboardTarget = (*Client)(nil)

// NewClient builds a client from configuration.
func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

type rollupPayload struct {
	BetType string  `json:"bet_type"`
	Bucket  string  `json:"score_bucket"`
	Return  float64 `json:"return"`
	Volume  int     `json:"volume"`
	Through string  `json:"through"`
}

// PushRollups posts the batch as one JSON document. Any non-2xx status is
// an error so the caller keeps the consumed results unmarked.
func (c *Client) PushRollups(ctx context.Context, groups []domain.AggregatedGroup) error {
	if c.endpoint == "" {
		return fmt.Errorf("dashboard client misconfigured")
	}
	if len(groups) == 0 {
		return nil
	}

	payload := make([]rollupPayload, 0, len(groups))
	for _, group := range groups {
		payload = append(payload, rollupPayload{
			BetType: string(group.BetType),
			Bucket:  group.Bucket,
			Return:  group.Return,
			Volume:  group.Volume,
			Through: group.UpdatedTo.Format(domain.DateLayout),
		})
	}

	body, err := json.Marshal(map[string]any{"rollups": payload})
	if err != nil {
		return fmt.Errorf("marshal rollups: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("push rollups: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("dashboard error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}
	return nil
}
