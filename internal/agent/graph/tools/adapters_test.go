package tools

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/schema"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fredgpt/server/internal/agent/model"
	"github.com/fredgpt/server/internal/fomc"
	"github.com/fredgpt/server/internal/fred"
	"github.com/fredgpt/server/internal/search"
	"github.com/fredgpt/server/internal/stats"
)

func monthly(start time.Time, n int, f func(i int) float64) []model.Point {
	out := make([]model.Point, n)
	for i := range out {
		out[i] = model.Point{Date: start.AddDate(0, i, 0).Format("2006-01-02"), Value: f(i)}
	}
	return out
}

func TestAdapters_RecentDataDefaultsToTwelve(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	a := &Adapters{Fred: &stubFred{obs: map[string][]model.Point{
		"UNRATE": monthly(start, 30, func(i int) float64 { return float64(i) }),
	}}}

	res := a.RecentData(context.Background(), "UNRATE", 0)

	require.Empty(t, res.Error)
	require.Len(t, res.SeriesData, 1)
	assert.Len(t, res.SeriesData[0].Points, 12)
	assert.Equal(t, 29.0, res.SeriesData[0].Points[11].Value)
	assert.Equal(t, "Retrieved 12 recent data points for Title UNRATE (UNRATE).", res.Message)
}

func TestAdapters_ReleaseSchedule(t *testing.T) {
	a := &Adapters{
		Fred: &stubFred{},
		Now:  func() time.Time { return time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC) },
	}

	res := a.ReleaseSchedule(context.Background(), "UNRATE")

	require.Empty(t, res.Error)
	assert.Equal(t,
		"Series UNRATE belongs to release Employment Situation (50). Retrieved 2 release dates for release 50 2025. Today: 2025-01-15.",
		res.Message)
	payload := res.Payload.(map[string]any)
	assert.Equal(t, 2025, *payload["release_year"].(*int))
	assert.Len(t, payload["release_schedule"], 2)
}

func TestAdapters_ReleaseStructure_NoMatch(t *testing.T) {
	a := &Adapters{Fred: &stubFred{}}

	res := a.ReleaseStructure(context.Background(), "Beige Book")

	assert.Equal(t, "No release found matching 'Beige Book'.", res.Message)
	assert.Equal(t, "No FRED release matched 'Beige Book'.", res.Error)
}

func TestAdapters_ReleaseStructure(t *testing.T) {
	a := &Adapters{Fred: &stubFred{}}

	res := a.ReleaseStructure(context.Background(), "h.4.1")

	require.Empty(t, res.Error)
	assert.Equal(t,
		"Resolved release 'h.4.1' to 'H.4.1 Factors Affecting Reserve Balances' (release_id=20). Retrieved series metadata and table structure.",
		res.Message)
}

func TestAdapters_CorrelationRejectsNonMonthly(t *testing.T) {
	a := &Adapters{Fred: &stubFred{info: map[string]fred.SeriesInfo{
		"GDP": {ID: "GDP", Frequency: "Quarterly"},
	}}}

	res := a.Correlation(context.Background(), CorrelationArgs{LeadingSeriesID: "GDP"})

	assert.Equal(t, "non_monthly_series", res.Error)
	assert.Contains(t, res.Message, `Leading series 'GDP' frequency: "Quarterly"`)
	assert.Equal(t, map[string]any{"analysis": map[string]any{}}, res.Payload)
}

func TestAdapters_CorrelationFailureShowsCause(t *testing.T) {
	a := &Adapters{}

	res := a.Correlation(context.Background(), CorrelationArgs{})

	require.NotEmpty(t, res.Error)
	content := res.Content()
	assert.Contains(t, content, "Failed to compute series correlation.")
	assert.Contains(t, content, "Error: "+errFredUnavailable.Error())
	assert.Contains(t, content, `"analysis"`)
}

func TestAdapters_CorrelationDefaults(t *testing.T) {
	start := time.Date(1968, 1, 1, 0, 0, 0, 0, time.UTC)
	lead := monthly(start, 150, func(i int) float64 { return 100 + float64(i) + float64(i%7) })
	lag := monthly(start, 150, func(i int) float64 { return 50 + float64(i)*0.5 + float64((i+3)%7) })
	a := &Adapters{Fred: &stubFred{obs: map[string][]model.Point{"M2SL": lead, "CPIAUCSL": lag}}}

	res := a.Correlation(context.Background(), CorrelationArgs{})

	require.Empty(t, res.Error)
	assert.Equal(t, "Computed correlations between M2SL (leading) and CPIAUCSL (lagging) from 1970-01-01 to 1979-12-31.", res.Message)
	assert.Equal(t, correlationGuidance, res.Guidance)
	analysis := res.Payload.(map[string]any)["analysis"].(stats.Analysis)
	require.NotNil(t, analysis.BestPositiveLag)
	assert.LessOrEqual(t, analysis.BestPositiveLag.LagMonths, 48)
	assert.Contains(t, res.Content(), "Interpretation hints:")
}

func TestAdapters_CorrelationNoOverlap(t *testing.T) {
	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	pts := monthly(start, 36, func(i int) float64 { return float64(i + 1) })
	a := &Adapters{Fred: &stubFred{obs: map[string][]model.Point{"M2SL": pts, "CPIAUCSL": pts}}}

	res := a.Correlation(context.Background(), CorrelationArgs{})

	assert.Empty(t, res.Error)
	assert.Contains(t, res.Message, "Insufficient overlapping data")
	assert.Equal(t, map[string]any{"analysis": map[string]any{}}, res.Payload)
}

type stubSearcher struct {
	results []search.Result
	err     error
}

func (s stubSearcher) Search(context.Context, string) ([]search.Result, error) {
	return s.results, s.err
}

func TestAdapters_HybridSearch(t *testing.T) {
	a := &Adapters{Search: stubSearcher{results: []search.Result{{"id": "a"}, {"id": "b"}}}}
	res := a.HybridSearch(context.Background(), "March 2020 meeting")
	assert.Equal(t, "Hybrid search returned 2 result(s).", res.Message)

	a = &Adapters{Search: stubSearcher{err: search.ErrNotConfigured}}
	res = a.HybridSearch(context.Background(), "anything")
	assert.Equal(t, search.ErrNotConfigured.Error(), res.Error)

	a = &Adapters{Search: stubSearcher{err: errors.New("timeout")}}
	res = a.HybridSearch(context.Background(), "anything")
	assert.Equal(t, "Hybrid search failed: timeout", res.Message)
}

type stubRetriever struct {
	docs []*schema.Document
}

func (s stubRetriever) Retrieve(context.Context, string, ...retriever.Option) ([]*schema.Document, error) {
	return s.docs, nil
}

func TestAdapters_RetrieveDocuments(t *testing.T) {
	docs := []*schema.Document{
		(&schema.Document{ID: "1", Content: "one"}).WithScore(0.9),
		{ID: "2", Content: "two"},
		{ID: "3", Content: "three"},
		{ID: "4", Content: "four"},
	}
	a := &Adapters{Retriever: stubRetriever{docs: docs}}

	res := a.RetrieveDocuments(context.Background(), "inflation")

	assert.Len(t, res.Docs, 4)
	assert.Equal(t, 0.9, res.Docs[0].Score)
	assert.Equal(t, []string{"inflation"}, res.Queries)
	assert.Contains(t, res.Message, `<document id="3">`)
	assert.NotContains(t, res.Message, `<document id="4">`)

	empty := (&Adapters{Retriever: stubRetriever{}}).RetrieveDocuments(context.Background(), "x")
	assert.Equal(t, "No documents were retrieved.", empty.Message)
}

func setupStore(t *testing.T) *fomc.Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "fomc.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	s := fomc.NewStore(db)
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestAdapters_LatestDecision(t *testing.T) {
	s := setupStore(t)
	a := &Adapters{Meetings: s}

	res := a.LatestDecision(context.Background())
	assert.Equal(t, "No FOMC meetings are stored yet.", res.Message)
	assert.NotEmpty(t, res.Error)

	low, high := 5.25, 5.5
	require.NoError(t, s.Upsert(context.Background(), &fomc.Meeting{
		MeetingID:       "2023-07",
		MeetingDate:     time.Date(2023, 7, 26, 0, 0, 0, 0, time.UTC),
		TargetRangeLow:  &low,
		TargetRangeHigh: &high,
	}))

	res = a.LatestDecision(context.Background())
	require.Empty(t, res.Error)
	assert.Equal(t, "Fetched latest FOMC decision card.", res.Message)
	payload := res.Payload.(*fomc.Payload)
	assert.Equal(t, "Federal funds target range: 5.25%–5.50%", payload.Card.Headline)
}

func TestAdapters_NilCollaborators(t *testing.T) {
	a := &Adapters{}
	ctx := context.Background()

	for _, res := range []Result{
		a.Chart(ctx, "UNRATE"),
		a.RecentData(ctx, "UNRATE", 5),
		a.SearchSeries(ctx, "jobs"),
		a.Correlation(ctx, CorrelationArgs{}),
		a.LatestDecision(ctx),
		a.FomcTitles(ctx, "Meeting"),
		a.HybridSearch(ctx, "Meeting"),
		a.RetrieveDocuments(ctx, "Meeting"),
	} {
		assert.NotEmpty(t, res.Error)
		assert.NotEmpty(t, res.Message)
	}
}
