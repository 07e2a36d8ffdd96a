package stats

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func monthly(fromYear, toYear int, f func(i int) float64) []Observation {
	var out []Observation
	i := 0
	for y := fromYear; y <= toYear; y++ {
		for m := 1; m <= 12; m++ {
			out = append(out, Observation{Date: fmt.Sprintf("%04d-%02d-01", y, m), Value: f(i)})
			i++
		}
	}
	return out
}

func TestPearson(t *testing.T) {
	r, ok := Pearson([]float64{1, 2, 3, 4}, []float64{2, 4, 6, 8})
	require.True(t, ok)
	assert.InDelta(t, 1.0, r, 1e-12)

	r, ok = Pearson([]float64{1, 2, 3, 4}, []float64{8, 6, 4, 2})
	require.True(t, ok)
	assert.InDelta(t, -1.0, r, 1e-12)

	_, ok = Pearson([]float64{1, 1, 1}, []float64{1, 2, 3})
	assert.False(t, ok, "constant input has no correlation")

	_, ok = Pearson([]float64{1}, []float64{1})
	assert.False(t, ok)
}

func TestPctChange(t *testing.T) {
	obs := monthly(2000, 2001, func(i int) float64 { return float64(100 + i) })
	yoy := PctChange(obs, 12)
	require.Len(t, yoy, 12)
	assert.Equal(t, "2001-01-01", yoy[0].Date)
	assert.InDelta(t, 12.0, yoy[0].Value, 1e-9)
}

func TestCorrelate_Seventies(t *testing.T) {
	leading := monthly(1965, 1985, func(i int) float64 {
		return 100 * math.Exp(0.006*float64(i)+0.03*math.Sin(float64(i)/9))
	})
	lagging := monthly(1965, 1985, func(i int) float64 {
		return 40 * math.Exp(0.005*float64(i)+0.02*math.Sin(float64(i-18)/9))
	})

	a := Correlate(Request{
		LeadingID:    "M2SL",
		LaggingID:    "CPIAUCSL",
		Leading:      leading,
		Lagging:      lagging,
		Start:        "1970-01-01",
		End:          "1979-12-31",
		MaxLagMonths: 48,
	})

	require.False(t, a.Empty())
	require.NotNil(t, a.YoYCorrelation)
	require.NotNil(t, a.BestPositiveLag)
	require.NotNil(t, a.MostNegativeLag)
	require.NotNil(t, a.LogLevelCorrelation)

	assert.GreaterOrEqual(t, a.BestPositiveLag.LagMonths, 0)
	assert.LessOrEqual(t, a.BestPositiveLag.LagMonths, 48)
	assert.GreaterOrEqual(t, a.MostNegativeLag.LagMonths, 0)
	assert.LessOrEqual(t, a.MostNegativeLag.LagMonths, 48)
	assert.GreaterOrEqual(t, a.BestPositiveLag.Correlation, a.MostNegativeLag.Correlation)

	assert.Equal(t, Window{Start: "1970-01-01", End: "1979-12-31"}, a.Window)
	assert.Equal(t, "M2SL", a.SeriesIDs.Leading)
	// 1970..1979 clipped, minus the first 12 months lost to differencing
	assert.Equal(t, 108, a.Observations)
}

func TestLagScan_ZeroLagMatchesUnlagged(t *testing.T) {
	lead := []float64{1.2, 3.4, 2.2, 5.1, 4.4, 6.0, 5.5}
	lag := []float64{0.9, 2.1, 2.8, 3.9, 4.1, 5.7, 6.2}

	direct, ok := Pearson(lead, lag)
	require.True(t, ok)

	results := LagScan(lead, lag, 3)
	require.NotEmpty(t, results)
	assert.Equal(t, 0, results[0].LagMonths)
	assert.Equal(t, direct, results[0].Correlation)
}

func TestLagScan_ShiftsLeadingForward(t *testing.T) {
	base := []float64{1, 5, 2, 8, 3, 9, 4, 7, 6, 10}
	lead := base
	lag := append([]float64{0, 0}, base[:len(base)-2]...)

	results := LagScan(lead, lag, 4)
	best := results[0]
	for _, r := range results {
		if r.Correlation > best.Correlation {
			best = r
		}
	}
	assert.Equal(t, 2, best.LagMonths)
	assert.InDelta(t, 1.0, best.Correlation, 1e-12)
}

func TestCorrelate_NoOverlapIsEmpty(t *testing.T) {
	a := Correlate(Request{
		LeadingID:    "A",
		LaggingID:    "B",
		Leading:      monthly(1970, 1972, func(i int) float64 { return float64(100 + i) }),
		Lagging:      monthly(1990, 1992, func(i int) float64 { return float64(100 + i) }),
		Start:        "1960-01-01",
		End:          "2000-12-31",
		MaxLagMonths: 12,
	})
	assert.True(t, a.Empty())
	assert.Nil(t, a.YoYCorrelation)
	assert.Nil(t, a.BestPositiveLag)
}

func TestCorrelate_WindowShorterThanAYear(t *testing.T) {
	obs := monthly(1970, 1971, func(i int) float64 { return float64(100 + i) })
	a := Correlate(Request{Leading: obs, Lagging: obs, Start: "1970-01-01", End: "1970-06-30", MaxLagMonths: 48})
	assert.True(t, a.Empty())
}
