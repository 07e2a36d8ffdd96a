// Package fred is a client for the FRED time-series API and chart renderer.
package fred

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/fredgpt/server/internal/agent/model"
	errx "github.com/fredgpt/server/internal/core/error"
	logx "github.com/fredgpt/server/pkg/logger"
)

const (
	serviceName  = "fred"
	maxBodyBytes = 16 << 20

	// DefaultSnapshotLimit is the number of most recent observations fetched per snapshot.
	DefaultSnapshotLimit = 180
)

// Client is safe for concurrent use; it holds no per-request data.
type Client struct {
	httpClient  *http.Client
	limiter     *rate.Limiter
	apiKey      string
	baseURL     string
	chartURL    string
	chartWidth  int
	chartHeight int
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient fails when the API key is missing.
func NewClient(cfg model.FredConfig, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errx.Config("FRED_API_KEY is required to call FRED tools but is not set")
	}

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}

	c := &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		limiter:     rate.NewLimiter(limit, 1),
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		chartURL:    cfg.ChartURL,
		chartWidth:  cfg.ChartWidth,
		chartHeight: cfg.ChartHeight,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SeriesInfo returns metadata for one series.
func (c *Client) SeriesInfo(ctx context.Context, seriesID string) (*SeriesInfo, error) {
	var resp seriesResponse
	if err := c.get(ctx, "series", url.Values{"series_id": {seriesID}}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Seriess) == 0 {
		return nil, fmt.Errorf("series %q not found", seriesID)
	}
	return &resp.Seriess[0], nil
}

// Observations returns the series ascending by date with missing values
// dropped. A positive limit keeps only the most recent limit observations.
func (c *Client) Observations(ctx context.Context, seriesID string, limit int) ([]model.Point, error) {
	params := url.Values{"series_id": {seriesID}}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
		params.Set("sort_order", "desc")
	}

	var resp observationsResponse
	if err := c.get(ctx, "series/observations", params, &resp); err != nil {
		return nil, err
	}

	points := make([]model.Point, 0, len(resp.Observations))
	for _, o := range resp.Observations {
		v, err := strconv.ParseFloat(strings.TrimSpace(o.Value), 64)
		if err != nil || math.IsNaN(v) {
			continue
		}
		points = append(points, model.Point{Date: o.Date, Value: v})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points, nil
}

// Snapshot fetches metadata and, when limit is non-zero, the latest observations.
func (c *Client) Snapshot(ctx context.Context, seriesID string, limit int) (*Snapshot, error) {
	info, err := c.SeriesInfo(ctx, seriesID)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		SeriesID:  seriesID,
		Title:     info.Title,
		Units:     info.Units,
		Frequency: info.Frequency,
		Notes:     info.Notes,
	}
	if snap.Title == "" {
		snap.Title = seriesID
	}
	if limit != 0 {
		if snap.Observations, err = c.Observations(ctx, seriesID, limit); err != nil {
			return nil, err
		}
	}
	return snap, nil
}

// ChartURL builds the rendered chart address for a series.
func (c *Client) ChartURL(seriesID string) string {
	q := url.Values{
		"id":     {seriesID},
		"width":  {strconv.Itoa(c.chartWidth)},
		"height": {strconv.Itoa(c.chartHeight)},
	}
	return c.chartURL + "?" + q.Encode()
}

// Chart downloads the rendered PNG for a series.
func (c *Client) Chart(ctx context.Context, seriesID string) (string, []byte, error) {
	chartURL := c.ChartURL(seriesID)
	body, err := c.do(ctx, chartURL)
	if err != nil {
		return chartURL, nil, err
	}
	return chartURL, body, nil
}

// SeriesReleases resolves the releases a series belongs to.
func (c *Client) SeriesReleases(ctx context.Context, seriesID string) ([]Release, error) {
	var resp releasesResponse
	if err := c.get(ctx, "series/release", url.Values{"series_id": {seriesID}}, &resp); err != nil {
		return nil, err
	}
	return resp.Releases, nil
}

// ReleaseDates lists publication dates of a release, including scheduled ones.
func (c *Client) ReleaseDates(ctx context.Context, releaseID int) ([]ReleaseDate, error) {
	params := url.Values{
		"release_id":                         {strconv.Itoa(releaseID)},
		"include_release_dates_with_no_data": {"true"},
	}
	var resp releaseDatesResponse
	if err := c.get(ctx, "release/dates", params, &resp); err != nil {
		return nil, err
	}
	return resp.ReleaseDates, nil
}

// Releases lists all releases up to limit.
func (c *Client) Releases(ctx context.Context, limit int) ([]Release, error) {
	var resp releasesResponse
	if err := c.get(ctx, "releases", url.Values{"limit": {strconv.Itoa(limit)}}, &resp); err != nil {
		return nil, err
	}
	return resp.Releases, nil
}

// ReleaseSeries returns the raw series listing of a release.
func (c *Client) ReleaseSeries(ctx context.Context, releaseID, limit int) (map[string]any, error) {
	params := url.Values{
		"release_id": {strconv.Itoa(releaseID)},
		"limit":      {strconv.Itoa(limit)},
	}
	var resp map[string]any
	if err := c.get(ctx, "release/series", params, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// ReleaseTables returns the raw table structure of a release.
func (c *Client) ReleaseTables(ctx context.Context, releaseID int) (map[string]any, error) {
	var resp map[string]any
	if err := c.get(ctx, "release/tables", url.Values{"release_id": {strconv.Itoa(releaseID)}}, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// SearchSeries runs a full-text search over series metadata.
func (c *Client) SearchSeries(ctx context.Context, query string, limit int) ([]SeriesInfo, error) {
	params := url.Values{
		"search_text": {query},
		"limit":       {strconv.Itoa(limit)},
	}
	var resp seriesResponse
	if err := c.get(ctx, "series/search", params, &resp); err != nil {
		return nil, err
	}
	return resp.Seriess, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("api_key", c.apiKey)
	params.Set("file_type", "json")

	body, err := c.do(ctx, c.baseURL+"/"+path+"?"+params.Encode())
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, rawURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// url.Error embeds the full URL, which carries the API key
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		logx.Warn().Err(err).Str("service", serviceName).Msg("request failed")
		return nil, errx.WrapUpstream(fmt.Errorf("%s request: %w", serviceName, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, errx.WrapUpstream(fmt.Errorf("read %s response: %w", serviceName, err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(body))
		var er errorResponse
		if json.Unmarshal(body, &er) == nil && er.ErrorMessage != "" {
			msg = er.ErrorMessage
		}
		return nil, errx.WrapUpstream(&errx.UpstreamError{Service: serviceName, StatusCode: resp.StatusCode, Body: msg})
	}
	return body, nil
}
