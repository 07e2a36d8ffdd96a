package fred

import (
	"strings"

	"github.com/fredgpt/server/internal/agent/model"
)

// SeriesInfo is the metadata FRED returns for a series.
type SeriesInfo struct {
	ID                 string  `json:"id"`
	Title              string  `json:"title"`
	ObservationStart   string  `json:"observation_start,omitempty"`
	ObservationEnd     string  `json:"observation_end,omitempty"`
	Frequency          string  `json:"frequency"`
	FrequencyShort     string  `json:"frequency_short,omitempty"`
	Units              string  `json:"units"`
	SeasonalAdjustment string  `json:"seasonal_adjustment,omitempty"`
	LastUpdated        string  `json:"last_updated,omitempty"`
	Popularity         int     `json:"popularity,omitempty"`
	Notes              *string `json:"notes,omitempty"`
}

// IsMonthly reports whether the series is published monthly.
func (s SeriesInfo) IsMonthly() bool {
	f := strings.ToLower(s.Frequency)
	if f == "" {
		f = strings.ToLower(s.FrequencyShort)
	}
	return strings.Contains(f, "monthly") || f == "m"
}

type seriesResponse struct {
	Seriess []SeriesInfo `json:"seriess"`
}

type observation struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

type observationsResponse struct {
	Observations []observation `json:"observations"`
}

// Release is a FRED release, the publication a series belongs to.
type Release struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	PressRelease bool   `json:"press_release,omitempty"`
	Link         string `json:"link,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

type releasesResponse struct {
	Releases []Release `json:"releases"`
}

// ReleaseDate is one publication date of a release.
type ReleaseDate struct {
	ReleaseID   int    `json:"release_id"`
	ReleaseName string `json:"release_name,omitempty"`
	Date        string `json:"date"`
}

type releaseDatesResponse struct {
	ReleaseDates []ReleaseDate `json:"release_dates"`
}

type errorResponse struct {
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

// Snapshot is a series' metadata with its observations ascending by date.
type Snapshot struct {
	SeriesID     string
	Title        string
	Units        string
	Frequency    string
	Notes        *string
	Observations []model.Point
}

// Latest returns the last n observations in chronological order.
func (s Snapshot) Latest(n int) []model.Point {
	if n <= 0 || n >= len(s.Observations) {
		return s.Observations
	}
	return s.Observations[len(s.Observations)-n:]
}

// Block builds the caller-facing data block with the latest n points.
func (s Snapshot) Block(n int) model.SeriesBlock {
	points := s.Latest(n)
	if points == nil {
		points = []model.Point{}
	}
	return model.SeriesBlock{
		SeriesID:  s.SeriesID,
		Title:     s.Title,
		Units:     s.Units,
		Frequency: s.Frequency,
		Notes:     s.Notes,
		Points:    points,
	}
}
