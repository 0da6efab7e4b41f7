package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/aloft-etl/internal/forecast"
	"github.com/couchcryptid/aloft-etl/internal/observability"
)

const sourceLabel = "gridded"

// Client fetches hourly gridded model forecasts from an Open-Meteo style
// endpoint. It implements windsaloft.GriddedFetcher.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a gridded forecast client for baseURL.
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

// FetchGridded requests every hourly variable the profile needs at one point.
// Wind speeds come back in km/h and times as unix seconds.
func (c *Client) FetchGridded(ctx context.Context, lat, lon float64, p forecast.Profile) (forecast.GriddedResponse, error) {
	params := url.Values{
		"latitude":        {strconv.FormatFloat(lat, 'f', 4, 64)},
		"longitude":       {strconv.FormatFloat(lon, 'f', 4, 64)},
		"hourly":          {strings.Join(p.HourlyVariables(), ",")},
		"models":          {p.Model},
		"forecast_days":   {strconv.Itoa(p.ForecastDays)},
		"wind_speed_unit": {"kmh"},
		"timeformat":      {"unixtime"},
		"timezone":        {"GMT"},
	}

	start := time.Now()
	resp, err := c.doRequest(ctx, c.baseURL+"?"+params.Encode())
	c.metrics.SourceRequestLatency.WithLabelValues(sourceLabel).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.SourceRequests.WithLabelValues(sourceLabel, "error").Inc()
		c.logger.Warn("gridded forecast request failed", "lat", lat, "lon", lon, "model", p.Model, "error", err)
		return forecast.GriddedResponse{}, err
	}

	outcome := "success"
	if len(resp.Hourly.Time) == 0 {
		outcome = "empty"
	}
	c.metrics.SourceRequests.WithLabelValues(sourceLabel, outcome).Inc()
	return resp, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (forecast.GriddedResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return forecast.GriddedResponse{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return forecast.GriddedResponse{}, fmt.Errorf("gridded forecast request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		body, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Reason != "" {
			return forecast.GriddedResponse{}, fmt.Errorf("open-meteo API error: status %d: %s", resp.StatusCode, apiErr.Reason)
		}
		return forecast.GriddedResponse{}, fmt.Errorf("open-meteo API error: status %d: %s", resp.StatusCode, body)
	}

	var out forecast.GriddedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return forecast.GriddedResponse{}, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}

type errorResponse struct {
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}
