package fred

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredgpt/server/internal/agent/model"
	errx "github.com/fredgpt/server/internal/core/error"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(model.FredConfig{
		APIKey:      "secret-key",
		BaseURL:     srv.URL + "/fred",
		ChartURL:    srv.URL + "/graph/fredgraph.png",
		ChartWidth:  670,
		ChartHeight: 445,
		Timeout:     5 * time.Second,
	})
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(model.FredConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FRED_API_KEY")
}

func TestClient_Snapshot(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "json", r.URL.Query().Get("file_type"))
		switch r.URL.Path {
		case "/fred/series":
			_, _ = w.Write([]byte(`{"seriess":[{"id":"UNRATE","title":"Unemployment Rate","units":"Percent","frequency":"Monthly"}]}`))
		case "/fred/series/observations":
			assert.Equal(t, "desc", r.URL.Query().Get("sort_order"))
			assert.Equal(t, "180", r.URL.Query().Get("limit"))
			_, _ = w.Write([]byte(`{"observations":[
				{"date":"2024-03-01","value":"3.9"},
				{"date":"2024-02-01","value":"."},
				{"date":"2024-01-01","value":"3.7"}]}`))
		default:
			http.NotFound(w, r)
		}
	})

	snap, err := c.Snapshot(context.Background(), "UNRATE", DefaultSnapshotLimit)
	require.NoError(t, err)
	assert.Equal(t, "Unemployment Rate", snap.Title)
	assert.Equal(t, "Monthly", snap.Frequency)
	assert.Equal(t, []model.Point{
		{Date: "2024-01-01", Value: 3.7},
		{Date: "2024-03-01", Value: 3.9},
	}, snap.Observations)

	block := snap.Block(1)
	require.Len(t, block.Points, 1)
	assert.Equal(t, "2024-03-01", block.Points[0].Date)
}

func TestClient_UnknownSeries(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error_code":400,"error_message":"Bad Request.  The series does not exist."}`))
	})

	_, err := c.SeriesInfo(context.Background(), "NOPE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "The series does not exist")
	assert.Equal(t, http.StatusBadGateway, errx.StatusOf(err))

	var up *errx.UpstreamError
	require.ErrorAs(t, err, &up)
	assert.Equal(t, http.StatusBadRequest, up.StatusCode)
}

func TestClient_TransportErrorHidesKey(t *testing.T) {
	c, err := NewClient(model.FredConfig{APIKey: "secret-key", BaseURL: "http://127.0.0.1:1/fred", Timeout: time.Second})
	require.NoError(t, err)

	_, err = c.SeriesInfo(context.Background(), "CPIAUCSL")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret-key")
}

func TestClient_Chart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/graph/fredgraph.png", r.URL.Path)
		assert.Equal(t, "CPIAUCSL", r.URL.Query().Get("id"))
		assert.Equal(t, "670", r.URL.Query().Get("width"))
		assert.Equal(t, "445", r.URL.Query().Get("height"))
		_, _ = w.Write([]byte("\x89PNG"))
	})

	chartURL, body, err := c.Chart(context.Background(), "CPIAUCSL")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(chartURL, "fredgraph.png?height=445&id=CPIAUCSL&width=670"))
	assert.Equal(t, []byte("\x89PNG"), body)
}

func TestClient_ReleaseEndpoints(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/fred/series/release":
			_, _ = w.Write([]byte(`{"releases":[{"id":50,"name":"Employment Situation"}]}`))
		case "/fred/release/dates":
			assert.Equal(t, "50", r.URL.Query().Get("release_id"))
			assert.Equal(t, "true", r.URL.Query().Get("include_release_dates_with_no_data"))
			_, _ = w.Write([]byte(`{"release_dates":[{"release_id":50,"date":"2024-12-06"},{"release_id":50,"date":"2025-01-10"}]}`))
		case "/fred/releases":
			_, _ = w.Write([]byte(`{"releases":[{"id":20,"name":"H.4.1 Factors Affecting Reserve Balances"}]}`))
		case "/fred/release/series":
			_, _ = w.Write([]byte(`{"count":900,"seriess":[]}`))
		case "/fred/release/tables":
			_, _ = w.Write([]byte(`{"name":"H.4.1","elements":{}}`))
		case "/fred/series/search":
			assert.Equal(t, "consumer price", r.URL.Query().Get("search_text"))
			_, _ = w.Write([]byte(`{"seriess":[{"id":"CPIAUCSL","title":"CPI"}]}`))
		}
	})
	ctx := context.Background()

	releases, err := c.SeriesReleases(ctx, "UNRATE")
	require.NoError(t, err)
	require.Len(t, releases, 1)
	assert.Equal(t, 50, releases[0].ID)

	dates, err := c.ReleaseDates(ctx, 50)
	require.NoError(t, err)
	assert.Len(t, dates, 2)

	all, err := c.Releases(ctx, 1000)
	require.NoError(t, err)
	match, ok := MatchRelease(all, "h.4.1")
	require.True(t, ok)
	assert.Equal(t, 20, match.ID)

	series, err := c.ReleaseSeries(ctx, 20, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 900, series["count"])

	tables, err := c.ReleaseTables(ctx, 20)
	require.NoError(t, err)
	assert.Equal(t, "H.4.1", tables["name"])

	found, err := c.SearchSeries(ctx, "consumer price", 5)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "CPIAUCSL", found[0].ID)
}

func TestLatestYear(t *testing.T) {
	dates := []ReleaseDate{
		{Date: "2024-11-01"},
		{Date: "2025-01-10"},
		{Date: "bad"},
		{Date: "2025-02-07"},
	}
	year, filtered, ok := LatestYear(dates)
	require.True(t, ok)
	assert.Equal(t, 2025, year)
	assert.Equal(t, []ReleaseDate{{Date: "2025-01-10"}, {Date: "2025-02-07"}}, filtered)

	_, all, ok := LatestYear([]ReleaseDate{{Date: "n/a"}})
	assert.False(t, ok)
	assert.Len(t, all, 1)
}

func TestSeriesInfo_IsMonthly(t *testing.T) {
	assert.True(t, SeriesInfo{Frequency: "Monthly"}.IsMonthly())
	assert.True(t, SeriesInfo{FrequencyShort: "M"}.IsMonthly())
	assert.False(t, SeriesInfo{Frequency: "Quarterly", FrequencyShort: "Q"}.IsMonthly())
}
