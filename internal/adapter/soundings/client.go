// Package soundings fetches parsed point soundings from the sounding
// collaborator service. Text-format parsing happens upstream; this client
// only speaks JSON.
package soundings

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/aloft-etl/internal/forecast"
	"github.com/couchcryptid/aloft-etl/internal/observability"
	"github.com/couchcryptid/aloft-etl/internal/windsaloft"
)

const sourceLabel = "sounding"

// Client implements windsaloft.SoundingFetcher over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a sounding client rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// FetchSoundings returns the records for q's point whose forecast hour falls
// in [q.Start, q.End]. Zero bounds are omitted so the service returns its
// full current run.
func (c *Client) FetchSoundings(ctx context.Context, q windsaloft.SoundingQuery) ([]forecast.SoundingRecord, error) {
	params := url.Values{
		"lat": {strconv.FormatFloat(q.Latitude, 'f', 4, 64)},
		"lon": {strconv.FormatFloat(q.Longitude, 'f', 4, 64)},
	}
	if !q.Start.IsZero() {
		params.Set("start", q.Start.UTC().Format(time.RFC3339))
	}
	if !q.End.IsZero() {
		params.Set("end", q.End.UTC().Format(time.RFC3339))
	}

	start := time.Now()
	records, err := c.doRequest(ctx, c.baseURL+"/soundings?"+params.Encode())
	c.metrics.SourceRequestLatency.WithLabelValues(sourceLabel).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.SourceRequests.WithLabelValues(sourceLabel, "error").Inc()
		return nil, err
	}

	outcome := "success"
	if len(records) == 0 {
		outcome = "empty"
	}
	c.metrics.SourceRequests.WithLabelValues(sourceLabel, outcome).Inc()
	c.logger.Debug("soundings fetched", "lat", q.Latitude, "lon", q.Longitude, "records", len(records))
	return records, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) ([]forecast.SoundingRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sounding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("sounding API error: status %d: %s", resp.StatusCode, body)
	}

	var records []forecast.SoundingRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return records, nil
}
