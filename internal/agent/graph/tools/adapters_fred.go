package tools

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/fredgpt/server/internal/agent/model"
	"github.com/fredgpt/server/internal/fred"
	"github.com/fredgpt/server/internal/stats"
)

const (
	defaultRecentPoints  = 12
	seriesSearchLimit    = 5
	releaseListLimit     = 1000
	releaseSeriesLimit   = 1
	defaultLeadingSeries = "M2SL"
	defaultLaggingSeries = "CPIAUCSL"
	defaultStartDate     = "1970-01-01"
	defaultEndDate       = "1979-12-31"
	defaultMaxLagMonths  = 48
)

const correlationGuidance = `Interpretation hints:
- If both series are growth rates and the YoY correlation is negative, consider policy reactions or timing differences (e.g., central bank tightening).
- A high log-level correlation with a low or opposite short-run correlation suggests strong long-run co-movement but differing cycle dynamics.
- Remember that raw levels can be non-stationary; highlight possible spurious correlations if trends aren't removed.
- Avoid causal language; describe results as associations (e.g., 'tends to move with').`

func (a *Adapters) Chart(ctx context.Context, seriesID string) Result {
	if a.Fred == nil {
		return failed(fmt.Sprintf("Failed to generate chart for '%s': %v", seriesID, errFredUnavailable), errFredUnavailable)
	}
	snap, err := a.Fred.Snapshot(ctx, seriesID, 0)
	if err != nil {
		return failed(fmt.Sprintf("Failed to generate chart for '%s': %v", seriesID, err), err)
	}
	chartURL, png, err := a.Fred.Chart(ctx, seriesID)
	if err != nil {
		return failed(fmt.Sprintf("Failed to generate chart for '%s': %v", seriesID, err), err)
	}

	att := model.Attachment{
		Type:     "image",
		Source:   "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
		Title:    snap.Title,
		SeriesID: seriesID,
		Units:    snap.Units,
		ChartURL: chartURL,
	}
	return Result{
		Message:     fmt.Sprintf("Generated chart for %s (%s).", snap.Title, seriesID),
		Attachments: []model.Attachment{att},
		Source:      map[string]any{"series_id": seriesID, "attachments": []model.Attachment{att}},
	}
}

func (a *Adapters) RecentData(ctx context.Context, seriesID string, limit int) Result {
	if limit <= 0 {
		limit = defaultRecentPoints
	}
	if a.Fred == nil {
		return failed(fmt.Sprintf("Failed to fetch recent data for '%s': %v", seriesID, errFredUnavailable), errFredUnavailable)
	}

	fetch := fred.DefaultSnapshotLimit
	if limit > fetch {
		fetch = limit
	}
	snap, err := a.Fred.Snapshot(ctx, seriesID, fetch)
	if err != nil {
		return failed(fmt.Sprintf("Failed to fetch recent data for '%s': %v", seriesID, err), err)
	}

	block := snap.Block(limit)
	return Result{
		Message:    fmt.Sprintf("Retrieved %d recent data points for %s (%s).", len(block.Points), snap.Title, seriesID),
		Payload:    []model.SeriesBlock{block},
		SeriesData: []model.SeriesBlock{block},
	}
}

// ReleaseSchedule resolves the series' release and keeps the latest year of its dates.
func (a *Adapters) ReleaseSchedule(ctx context.Context, seriesID string) Result {
	if a.Fred == nil {
		return failed(fmt.Sprintf("Failed to resolve release for '%s': %v", seriesID, errFredUnavailable), errFredUnavailable)
	}
	releases, err := a.Fred.SeriesReleases(ctx, seriesID)
	if err != nil {
		return failed(fmt.Sprintf("Failed to resolve release for '%s': %v", seriesID, err), err)
	}
	if len(releases) == 0 {
		return Result{
			Message: fmt.Sprintf("No release found for series '%s'.", seriesID),
			Error:   fmt.Sprintf("No release metadata for %s", seriesID),
		}
	}
	release := releases[0]
	name := release.Name
	if name == "" {
		name = "Unknown release"
	}

	dates, err := a.Fred.ReleaseDates(ctx, release.ID)
	if err != nil {
		return failed(fmt.Sprintf("Failed to resolve release for '%s': %v", seriesID, err), err)
	}
	year, filtered, ok := fred.LatestYear(dates)

	yearText := ""
	var releaseYear *int
	if ok {
		yearText = fmt.Sprintf(" %d", year)
		releaseYear = &year
	}
	if filtered == nil {
		filtered = []fred.ReleaseDate{}
	}

	return Result{
		Message: fmt.Sprintf(
			"Series %s belongs to release %s (%d). Retrieved %d release dates for release %d%s. Today: %s.",
			seriesID, name, release.ID, len(filtered), release.ID, yearText, a.now().UTC().Format("2006-01-02"),
		),
		Payload: map[string]any{
			"release_schedule": filtered,
			"release_year":     releaseYear,
			"release_info":     map[string]any{"id": release.ID, "name": name},
			"series_id":        seriesID,
		},
	}
}

// ReleaseStructure finds a release by name and returns its series count and table layout.
func (a *Adapters) ReleaseStructure(ctx context.Context, releaseName string) Result {
	if a.Fred == nil {
		return failed(fmt.Sprintf("Failed to fetch release structure for '%s': %v", releaseName, errFredUnavailable), errFredUnavailable)
	}
	releases, err := a.Fred.Releases(ctx, releaseListLimit)
	if err != nil {
		return failed(fmt.Sprintf("Failed to fetch release structure for '%s': %v", releaseName, err), err)
	}
	release, ok := fred.MatchRelease(releases, releaseName)
	if !ok {
		return Result{
			Message: fmt.Sprintf("No release found matching '%s'.", releaseName),
			Error:   fmt.Sprintf("No FRED release matched '%s'.", releaseName),
		}
	}

	series, err := a.Fred.ReleaseSeries(ctx, release.ID, releaseSeriesLimit)
	if err != nil {
		return failed(fmt.Sprintf("Failed to fetch release structure for '%s': %v", releaseName, err), err)
	}
	tables, err := a.Fred.ReleaseTables(ctx, release.ID)
	if err != nil {
		return failed(fmt.Sprintf("Failed to fetch release structure for '%s': %v", releaseName, err), err)
	}

	return Result{
		Message: fmt.Sprintf(
			"Resolved release '%s' to '%s' (release_id=%d). Retrieved series metadata and table structure.",
			releaseName, release.Name, release.ID,
		),
		Payload: map[string]any{
			"release":         release,
			"series_metadata": series,
			"tables":          tables,
		},
	}
}

func (a *Adapters) SearchSeries(ctx context.Context, query string) Result {
	if a.Fred == nil {
		return failed(fmt.Sprintf("Failed to search series for '%s': %v", query, errFredUnavailable), errFredUnavailable)
	}
	found, err := a.Fred.SearchSeries(ctx, query, seriesSearchLimit)
	if err != nil {
		return failed(fmt.Sprintf("Failed to search series for '%s': %v", query, err), err)
	}
	if found == nil {
		found = []fred.SeriesInfo{}
	}
	return Result{
		Message: fmt.Sprintf("Found %d series for query '%s'.", len(found), query),
		Payload: map[string]any{"results": found},
	}
}

// CorrelationArgs are the resolved arguments of a correlation run.
type CorrelationArgs struct {
	LeadingSeriesID string
	LaggingSeriesID string
	StartDate       string
	EndDate         string
	MaxLagMonths    *int
}

func (c *CorrelationArgs) applyDefaults() {
	if strings.TrimSpace(c.LeadingSeriesID) == "" {
		c.LeadingSeriesID = defaultLeadingSeries
	}
	if strings.TrimSpace(c.LaggingSeriesID) == "" {
		c.LaggingSeriesID = defaultLaggingSeries
	}
	if strings.TrimSpace(c.StartDate) == "" {
		c.StartDate = defaultStartDate
	}
	if strings.TrimSpace(c.EndDate) == "" {
		c.EndDate = defaultEndDate
	}
	lag := defaultMaxLagMonths
	if c.MaxLagMonths != nil {
		lag = max(*c.MaxLagMonths, 0)
	}
	c.MaxLagMonths = &lag
}

func (a *Adapters) Correlation(ctx context.Context, args CorrelationArgs) Result {
	args.applyDefaults()
	emptyAnalysis := map[string]any{"analysis": map[string]any{}}
	source := map[string]any{
		"leading_series_id": args.LeadingSeriesID,
		"lagging_series_id": args.LaggingSeriesID,
		"window":            stats.Window{Start: args.StartDate, End: args.EndDate},
	}

	fail := func(err error) Result {
		return Result{
			Message: "Failed to compute series correlation.",
			Payload: emptyAnalysis,
			Error:   err.Error(),
			Source:  source,
		}
	}
	if a.Fred == nil {
		return fail(errFredUnavailable)
	}

	leadingInfo, err := a.Fred.SeriesInfo(ctx, args.LeadingSeriesID)
	if err != nil {
		return fail(err)
	}
	laggingInfo, err := a.Fred.SeriesInfo(ctx, args.LaggingSeriesID)
	if err != nil {
		return fail(err)
	}
	if !leadingInfo.IsMonthly() || !laggingInfo.IsMonthly() {
		return Result{
			Message: fmt.Sprintf(
				"Correlation helper currently supports monthly series only. Leading series '%s' frequency: %q; Lagging series '%s' frequency: %q.",
				args.LeadingSeriesID, leadingInfo.Frequency, args.LaggingSeriesID, laggingInfo.Frequency,
			),
			Payload: emptyAnalysis,
			Error:   "non_monthly_series",
			Source:  source,
		}
	}

	leading, err := a.Fred.Observations(ctx, args.LeadingSeriesID, 0)
	if err != nil {
		return fail(err)
	}
	lagging, err := a.Fred.Observations(ctx, args.LaggingSeriesID, 0)
	if err != nil {
		return fail(err)
	}

	analysis := stats.Correlate(stats.Request{
		LeadingID:    args.LeadingSeriesID,
		LaggingID:    args.LaggingSeriesID,
		Leading:      toObservations(leading),
		Lagging:      toObservations(lagging),
		Start:        args.StartDate,
		End:          args.EndDate,
		MaxLagMonths: *args.MaxLagMonths,
	})
	if analysis.Empty() {
		source["results"] = map[string]any{}
		return Result{
			Message: fmt.Sprintf(
				"Insufficient overlapping data to compute year-over-year correlation between %s and %s for %s to %s.",
				args.LeadingSeriesID, args.LaggingSeriesID, args.StartDate, args.EndDate,
			),
			Payload: emptyAnalysis,
			Source:  source,
		}
	}

	source["results"] = analysis
	source["guidance"] = correlationGuidance
	return Result{
		Message: fmt.Sprintf(
			"Computed correlations between %s (leading) and %s (lagging) from %s to %s.",
			args.LeadingSeriesID, args.LaggingSeriesID, args.StartDate, args.EndDate,
		),
		Payload:  map[string]any{"analysis": analysis},
		Guidance: correlationGuidance,
		Source:   source,
	}
}

func toObservations(points []model.Point) []stats.Observation {
	out := make([]stats.Observation, len(points))
	for i, p := range points {
		out[i] = stats.Observation{Date: p.Date, Value: p.Value}
	}
	return out
}
