package statement

import (
	"strconv"
	"time"

	"github.com/finsight-vn/finsight/internal/facts"
	"github.com/finsight-vn/finsight/internal/period"
)

// YearPoint is one bar of the five-year same-quarter comparison.
type YearPoint struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// QuarterPoint pairs one quarter's value with the same quarter a year
// earlier.
type QuarterPoint struct {
	Name     string   `json:"name"`
	Current  *float64 `json:"currentPeriod"`
	Previous *float64 `json:"previousPeriod"`
}

var quarterLabels = map[period.Quarter]string{
	period.Q1: "Quý I",
	period.Q2: "Quý II",
	period.Q3: "Quý III",
	period.Q4: "Quý IV",
}

// FiveYearSeries projects the indicator's value on the selected quarter
// across the five years ending at year, oldest first. Missing data plots
// as zero.
func FiveYearSeries(lookup facts.Lookup, accountIDs []int64, year int, quarter period.Quarter) []YearPoint {
	points := make([]YearPoint, 0, 5)
	for y := year - 4; y <= year; y++ {
		date := period.QuarterStart(y, quarter)
		points = append(points, YearPoint{
			Name:  strconv.Itoa(y),
			Value: orZero(lookup.Sum(accountIDs, date)),
		})
	}
	return points
}

// QuarterlySeries projects the indicator quarter by quarter for the
// selected year against the year before. Income-statement values are
// quarter-isolated by subtracting the prior quarter's cumulative figure
// (the prior year-end for Q1); balance-sheet and cash-flow values are
// taken as stored.
func QuarterlySeries(lookup facts.Lookup, accountIDs []int64, stmt period.Statement, year int) []QuarterPoint {
	points := make([]QuarterPoint, 0, 4)
	for q := period.Q1; q <= period.Q4; q++ {
		current := quarterValue(lookup, accountIDs, stmt, year, q)
		previous := quarterValue(lookup, accountIDs, stmt, year-1, q)
		points = append(points, QuarterPoint{Name: quarterLabels[q], Current: current, Previous: previous})
	}
	return points
}

func quarterValue(lookup facts.Lookup, accountIDs []int64, stmt period.Statement, year int, q period.Quarter) *float64 {
	date := period.QuarterStart(year, q)
	cumulative := lookup.Sum(accountIDs, date)
	if stmt != period.StatementIncome {
		return cumulative
	}
	var prevDate time.Time
	if q == period.Q1 {
		prevDate = period.BeginningOfYear(year)
	} else {
		prevDate = period.QuarterStart(year, q-1)
	}
	return subtractCumulative(cumulative, lookup.Sum(accountIDs, prevDate))
}

// subtractCumulative isolates one quarter's flow: a missing prior quarter
// leaves the cumulative figure, a missing current figure stays missing.
func subtractCumulative(cumulative, previous *float64) *float64 {
	if cumulative == nil {
		return nil
	}
	if previous == nil {
		v := *cumulative
		return &v
	}
	v := *cumulative - *previous
	return &v
}

// ChartDates lists every date the quarterly series needs for a year pair,
// including the two prior year-ends for income quarter isolation.
func ChartDates(stmt period.Statement, year int) []time.Time {
	var dates []time.Time
	for _, y := range []int{year, year - 1} {
		for q := period.Q1; q <= period.Q4; q++ {
			dates = append(dates, period.QuarterStart(y, q))
		}
		if stmt == period.StatementIncome {
			dates = append(dates, period.BeginningOfYear(y))
		}
	}
	return dates
}

// FiveYearDates lists the five same-quarter dates for the comparison
// series.
func FiveYearDates(year int, quarter period.Quarter) []time.Time {
	dates := make([]time.Time, 0, 5)
	for y := year - 4; y <= year; y++ {
		dates = append(dates, period.QuarterStart(y, quarter))
	}
	return dates
}
