// Package upstream implements domain.SampleSource against the environmental
// sample HTTP API, with an LRU cache decorator for repeat coordinates.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/observability"
)

// Client fetches raw samples for one signal near a coordinate.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a sample API client for the given base URL.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  logger,
		metrics: metrics,
	}
}

// FetchSamples requests the recent sample series for a signal at a location.
// A response with success=false carries the upstream's own error message.
func (c *Client) FetchSamples(ctx context.Context, signal domain.Signal, loc domain.Location) ([]domain.RawSample, error) {
	params := url.Values{
		"signal": {string(signal)},
		"lat":    {fmt.Sprintf("%.4f", loc.Latitude)},
		"lon":    {fmt.Sprintf("%.4f", loc.Longitude)},
	}
	fullURL := fmt.Sprintf("%s/v1/samples?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(string(signal), "error").Inc()
		return nil, fmt.Errorf("sample request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.UpstreamRequests.WithLabelValues(string(signal), "error").Inc()
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("sample API error: status %d: %s", resp.StatusCode, body)
	}

	var apiResp response
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(string(signal), "error").Inc()
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !apiResp.Success {
		c.metrics.UpstreamRequests.WithLabelValues(string(signal), "failed").Inc()
		return nil, fmt.Errorf("sample API failure: %s", apiResp.Error)
	}

	c.metrics.UpstreamRequests.WithLabelValues(string(signal), "ok").Inc()
	return apiResp.Data, nil
}

// response is the sample API envelope.
type response struct {
	Success bool               `json:"success"`
	Data    []domain.RawSample `json:"data"`
	Error   string             `json:"error,omitempty"`
}
