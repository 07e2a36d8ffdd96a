// Package stats computes the lead/lag association between two monthly series.
package stats

import (
	"math"
	"sort"
)

// Observation is one dated value; dates are ISO yyyy-mm-dd strings.
type Observation struct {
	Date  string
	Value float64
}

// LagCorrelation is the Pearson correlation at a given lead in months.
type LagCorrelation struct {
	LagMonths   int     `json:"lag_months"`
	Correlation float64 `json:"correlation"`
}

// Window bounds the analysed period, inclusive on both ends.
type Window struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// SeriesIDs names the leading and lagging series.
type SeriesIDs struct {
	Leading string `json:"leading"`
	Lagging string `json:"lagging"`
}

// Analysis is the full correlation report. A zero Analysis (Empty reports
// true) means the window produced no overlapping year-over-year changes.
type Analysis struct {
	Window              Window          `json:"window"`
	SeriesIDs           SeriesIDs       `json:"series_ids"`
	YoYCorrelation      *float64        `json:"yoy_correlation"`
	BestPositiveLag     *LagCorrelation `json:"best_positive_lag"`
	MostNegativeLag     *LagCorrelation `json:"most_negative_lag"`
	LogLevelCorrelation *float64        `json:"log_level_correlation"`
	Observations        int             `json:"observations"`
}

func (a Analysis) Empty() bool {
	return a.Observations == 0
}

// Request describes one correlation run over full series histories.
type Request struct {
	LeadingID    string
	LaggingID    string
	Leading      []Observation
	Lagging      []Observation
	Start        string
	End          string
	MaxLagMonths int
}

// Correlate clips both series to the window, takes 12-period percent changes,
// inner-joins them on date and scans lags 0..MaxLagMonths by shifting the
// leading series forward.
func Correlate(req Request) Analysis {
	leading := clip(req.Leading, req.Start, req.End)
	lagging := clip(req.Lagging, req.Start, req.End)

	lead, lag := align(PctChange(leading, 12), PctChange(lagging, 12))
	if len(lead) == 0 {
		return Analysis{}
	}

	out := Analysis{
		Window:       Window{Start: req.Start, End: req.End},
		SeriesIDs:    SeriesIDs{Leading: req.LeadingID, Lagging: req.LaggingID},
		Observations: len(lead),
	}
	if r, ok := Pearson(lead, lag); ok {
		out.YoYCorrelation = &r
	}

	results := LagScan(lead, lag, req.MaxLagMonths)
	if len(results) > 0 {
		best, worst := results[0], results[0]
		for _, r := range results[1:] {
			if r.Correlation > best.Correlation {
				best = r
			}
			if r.Correlation < worst.Correlation {
				worst = r
			}
		}
		out.BestPositiveLag = &best
		out.MostNegativeLag = &worst
	}

	logLead, logLag := align(logPositive(leading), logPositive(lagging))
	if r, ok := Pearson(logLead, logLag); ok {
		out.LogLevelCorrelation = &r
	}
	return out
}

// LagScan returns the correlation of lead shifted forward by each lag against
// lag, skipping lags that leave fewer than two pairs or an undefined value.
func LagScan(lead, lag []float64, maxLag int) []LagCorrelation {
	if maxLag < 0 {
		maxLag = 0
	}
	var out []LagCorrelation
	for k := 0; k <= maxLag && k < len(lead); k++ {
		r, ok := Pearson(lead[:len(lead)-k], lag[k:])
		if !ok {
			continue
		}
		out = append(out, LagCorrelation{LagMonths: k, Correlation: r})
	}
	return out
}

// Pearson returns the sample correlation of x and y. ok is false when the
// inputs differ in length, have fewer than two points, or either is constant.
func Pearson(x, y []float64) (float64, bool) {
	n := len(x)
	if n != len(y) || n < 2 {
		return 0, false
	}
	var mx, my float64
	for i := range x {
		mx += x[i]
		my += y[i]
	}
	mx /= float64(n)
	my /= float64(n)

	var sxy, sxx, syy float64
	for i := range x {
		dx, dy := x[i]-mx, y[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0, false
	}
	r := sxy / math.Sqrt(sxx*syy)
	if math.IsNaN(r) {
		return 0, false
	}
	return r, true
}

// PctChange returns (v[i]/v[i-periods]-1)*100 for every position that has a
// predecessor periods entries earlier. Division by zero drops the point.
func PctChange(obs []Observation, periods int) []Observation {
	if periods <= 0 || len(obs) <= periods {
		return nil
	}
	out := make([]Observation, 0, len(obs)-periods)
	for i := periods; i < len(obs); i++ {
		base := obs[i-periods].Value
		if base == 0 {
			continue
		}
		v := (obs[i].Value/base - 1) * 100
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, Observation{Date: obs[i].Date, Value: v})
	}
	return out
}

func clip(obs []Observation, start, end string) []Observation {
	sorted := make([]Observation, len(obs))
	copy(sorted, obs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	out := sorted[:0:0]
	for _, o := range sorted {
		if start != "" && o.Date < start {
			continue
		}
		if end != "" && o.Date > end {
			continue
		}
		if math.IsNaN(o.Value) {
			continue
		}
		out = append(out, o)
	}
	return out
}

func logPositive(obs []Observation) []Observation {
	out := make([]Observation, 0, len(obs))
	for _, o := range obs {
		if o.Value > 0 {
			out = append(out, Observation{Date: o.Date, Value: math.Log(o.Value)})
		}
	}
	return out
}

// align inner-joins two date-ordered series and returns the paired values.
func align(a, b []Observation) ([]float64, []float64) {
	byDate := make(map[string]float64, len(b))
	for _, o := range b {
		byDate[o.Date] = o.Value
	}
	var xs, ys []float64
	for _, o := range a {
		if v, ok := byDate[o.Date]; ok {
			xs = append(xs, o.Value)
			ys = append(ys, v)
		}
	}
	return xs, ys
}
