package period

import (
	"fmt"
	"time"
)

// MonthStart truncates a date to the first day of its month in UTC.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// QuarterStart returns the canonical reporting date for a quarter: the first
// day of its end month.
func QuarterStart(year int, q Quarter) time.Time {
	return time.Date(year, q.StartMonth(), 1, 0, 0, 0, 0, time.UTC)
}

// PreviousQuarterEnd shifts a reporting date back one quarter.
func PreviousQuarterEnd(t time.Time) time.Time {
	return MonthStart(t.AddDate(0, -3, 0))
}

// SamePeriodLastYear shifts a reporting date back a full year.
func SamePeriodLastYear(t time.Time) time.Time {
	return MonthStart(t.AddDate(-1, 0, 0))
}

// BeginningOfYear returns the prior fiscal year-end, represented as
// December 1 of the preceding year.
func BeginningOfYear(year int) time.Time {
	return time.Date(year-1, time.December, 1, 0, 0, 0, 0, time.UTC)
}

// Label formats a reporting date as the display label, e.g. "Quý 2/2025".
func Label(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return fmt.Sprintf("Quý %d/%d", QuarterOf(t), t.Year())
}
