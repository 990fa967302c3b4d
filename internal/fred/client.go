// Package fred retrieves mortgage rate observations from the St. Louis
// Fed FRED API for the rate overlay on sales trend charts.
package fred

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

	"github.com/mtorres1190/MATT-Report/internal/config"
	"github.com/mtorres1190/MATT-Report/pkg/contracts/domain"
)

// SeriesMortgage30US is the FRED series for the 30-year fixed mortgage
// average, published weekly.
const SeriesMortgage30US = "MORTGAGE30US"

const observationsPath = "/fred/series/observations"

// Client fetches observation series from the FRED API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a FRED client from configuration.
func NewClient(cfg config.FredConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With(slog.String("component", "fred_client")),
	}
}

type observationsResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

// MortgageRates fetches the MORTGAGE30US series bounded by the given
// dates. Either bound may be zero to leave that side open.
func (c *Client) MortgageRates(ctx context.Context, from, to time.Time) ([]domain.RatePoint, error) {
	return c.Observations(ctx, SeriesMortgage30US, from, to)
}

// Observations fetches one series from the FRED observations endpoint.
// Missing observations, published as ".", are skipped.
func (c *Client) Observations(ctx context.Context, series string, from, to time.Time) ([]domain.RatePoint, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("fred api key is not configured")
	}

	params := url.Values{}
	params.Set("series_id", series)
	params.Set("api_key", c.apiKey)
	params.Set("file_type", "json")
	if !from.IsZero() {
		params.Set("observation_start", from.Format("2006-01-02"))
	}
	if !to.IsZero() {
		params.Set("observation_end", to.Format("2006-01-02"))
	}

	endpoint := c.baseURL + observationsPath + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build fred request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fred request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fred returned status %d: %s", resp.StatusCode, string(body))
	}

	var decoded observationsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode fred response: %w", err)
	}

	points := make([]domain.RatePoint, 0, len(decoded.Observations))
	for _, obs := range decoded.Observations {
		if obs.Value == "" || obs.Value == "." {
			continue
		}
		date, err := time.Parse("2006-01-02", obs.Date)
		if err != nil {
			c.logger.Warn("skipping observation with bad date",
				slog.String("series", series),
				slog.String("date", obs.Date))
			continue
		}
		value, err := strconv.ParseFloat(obs.Value, 64)
		if err != nil {
			c.logger.Warn("skipping observation with bad value",
				slog.String("series", series),
				slog.String("value", obs.Value))
			continue
		}
		points = append(points, domain.RatePoint{Date: date, Value: value})
	}

	c.logger.InfoContext(ctx, "fetched fred series",
		slog.String("series", series),
		slog.Int("observations", len(points)),
		slog.Duration("duration", time.Since(start)))

	return points, nil
}

// FilterRange returns the points whose dates fall inside [from, to],
// inclusive. Zero bounds leave that side open.
func FilterRange(points []domain.RatePoint, from, to time.Time) []domain.RatePoint {
	out := make([]domain.RatePoint, 0, len(points))
	for _, p := range points {
		if !from.IsZero() && p.Date.Before(from) {
			continue
		}
		if !to.IsZero() && p.Date.After(to) {
			continue
		}
		out = append(out, p)
	}
	return out
}
