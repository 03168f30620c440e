package statement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-vn/finsight/internal/period"
)

func TestFiveYearSeriesOldestFirstMissingAsZero(t *testing.T) {
	lookup := lookupOf(map[int64]map[time.Time]float64{
		1: {
			period.QuarterStart(2021, period.Q2): 110,
			period.QuarterStart(2024, period.Q2): 140,
			period.QuarterStart(2025, period.Q2): 150,
		},
	})

	points := FiveYearSeries(lookup, []int64{1}, 2025, period.Q2)
	require.Len(t, points, 5)

	assert.Equal(t, YearPoint{Name: "2021", Value: 110}, points[0])
	assert.Equal(t, YearPoint{Name: "2022", Value: 0}, points[1])
	assert.Equal(t, YearPoint{Name: "2023", Value: 0}, points[2])
	assert.Equal(t, YearPoint{Name: "2024", Value: 140}, points[3])
	assert.Equal(t, YearPoint{Name: "2025", Value: 150}, points[4])
}

func TestQuarterlySeriesBalanceSheetKeepsRawValues(t *testing.T) {
	lookup := lookupOf(map[int64]map[time.Time]float64{
		1: {
			period.QuarterStart(2025, period.Q1): 100,
			period.QuarterStart(2025, period.Q2): 130,
			period.QuarterStart(2024, period.Q1): 90,
		},
	})

	points := QuarterlySeries(lookup, []int64{1}, period.StatementBalanceSheet, 2025)
	require.Len(t, points, 4)

	assert.Equal(t, "Quý I", points[0].Name)
	require.NotNil(t, points[0].Current)
	assert.Equal(t, 100.0, *points[0].Current)
	require.NotNil(t, points[0].Previous)
	assert.Equal(t, 90.0, *points[0].Previous)

	require.NotNil(t, points[1].Current)
	assert.Equal(t, 130.0, *points[1].Current)
	assert.Nil(t, points[1].Previous)

	// Quarters with no stored values stay missing, not zero.
	assert.Nil(t, points[2].Current)
	assert.Nil(t, points[3].Current)
}

func TestQuarterlySeriesIncomeIsolatesQuarters(t *testing.T) {
	lookup := lookupOf(map[int64]map[time.Time]float64{
		1: {
			period.BeginningOfYear(2025):         400,
			period.QuarterStart(2025, period.Q1): 120,
			period.QuarterStart(2025, period.Q2): 250,
			period.QuarterStart(2025, period.Q3): 390,
		},
	})

	points := QuarterlySeries(lookup, []int64{1}, period.StatementIncome, 2025)
	require.Len(t, points, 4)

	// Q1 subtracts the prior year-end cumulative.
	require.NotNil(t, points[0].Current)
	assert.Equal(t, -280.0, *points[0].Current)

	require.NotNil(t, points[1].Current)
	assert.Equal(t, 130.0, *points[1].Current)

	require.NotNil(t, points[2].Current)
	assert.Equal(t, 140.0, *points[2].Current)

	// Q4 has no cumulative figure yet.
	assert.Nil(t, points[3].Current)
}

func TestSubtractCumulative(t *testing.T) {
	assert.Nil(t, subtractCumulative(nil, f64ptr(10)))

	got := subtractCumulative(f64ptr(250), nil)
	require.NotNil(t, got)
	assert.Equal(t, 250.0, *got)

	got = subtractCumulative(f64ptr(250), f64ptr(120))
	require.NotNil(t, got)
	assert.Equal(t, 130.0, *got)
}

func TestChartDatesIncludeYearEndsForIncome(t *testing.T) {
	bs := ChartDates(period.StatementBalanceSheet, 2025)
	assert.Len(t, bs, 8)

	pl := ChartDates(period.StatementIncome, 2025)
	require.Len(t, pl, 10)
	assert.Contains(t, pl, period.BeginningOfYear(2025))
	assert.Contains(t, pl, period.BeginningOfYear(2024))
}

func TestFiveYearDates(t *testing.T) {
	dates := FiveYearDates(2025, period.Q3)
	require.Len(t, dates, 5)
	assert.Equal(t, period.QuarterStart(2021, period.Q3), dates[0])
	assert.Equal(t, period.QuarterStart(2025, period.Q3), dates[4])
}

func f64ptr(v float64) *float64 { return &v }
