package ratio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/finsight-vn/finsight/internal/facts"
	"github.com/finsight-vn/finsight/internal/period"
	"github.com/finsight-vn/finsight/internal/refdata"
)

// ErrNotReady signals that reference data has not loaded yet.
var ErrNotReady = errors.New("ratio: reference data not ready")

// ErrNoUnits signals that the unit selection expands to no reporting
// entities.
var ErrNoUnits = errors.New("ratio: no reporting entities selected")

// ErrUnknownIndicator signals a chart request for a key outside the catalog.
var ErrUnknownIndicator = errors.New("ratio: unknown indicator")

const defaultUnitGroupName = "PVFCCo"

const dateKeyLayout = "2006-01-02"

// ReferenceData is the refdata surface the service consumes.
type ReferenceData interface {
	Catalog(ctx context.Context) (period.Catalog, error)
	UnitHierarchy(ctx context.Context) ([]refdata.UnitGroup, error)
	ResolveIndicator(ctx context.Context, stmt period.Statement, label string) ([]int64, error)
}

// FactSource runs the concurrent per-version fetch.
type FactSource interface {
	Fetch(ctx context.Context, queries []facts.Query) (facts.Lookup, error)
}

// TableRow is one indicator row of the analysis table. Values holds the
// quarterly figure first and the cumulative figure second.
type TableRow struct {
	Key    string      `json:"key"`
	Name   string      `json:"name"`
	Values [2]*float64 `json:"values"`
}

// Table is the analysis table for the selected period.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    []TableRow `json:"rows"`
}

// Analysis is the full ratio view: the cumulative set for the selected
// period, the per-indicator table, and the five-year cumulative history
// keyed by ISO period date.
type Analysis struct {
	Latest  Values            `json:"latestRatios"`
	Table   Table             `json:"tableData"`
	History map[string]Values `json:"fullRatioHistory"`
}

// Service computes the financial-analysis ratio sets.
type Service struct {
	refdata ReferenceData
	facts   FactSource
	rule    period.HistoricalRule
	logger  *slog.Logger
}

// NewService wires the ratio service.
func NewService(ref ReferenceData, factSource FactSource, rule period.HistoricalRule, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{refdata: ref, facts: factSource, rule: rule, logger: logger}
}

// BuildAnalysis fetches the five-year input window and computes every ratio
// set. The history spans all quarters of the window except its earliest
// date, which exists only to provide opening balances.
func (s *Service) BuildAnalysis(ctx context.Context, cfg period.FilterConfig) (*Analysis, error) {
	cat, err := s.refdata.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	if !cat.Ready() {
		return nil, ErrNotReady
	}
	cfg = period.Settle(cfg, cat)

	sets, err := ResolveAccountSets(ctx, s.refdata)
	if err != nil {
		return nil, err
	}

	entityIDs, err := s.entityIDs(ctx, cfg)
	if err != nil {
		return nil, err
	}

	dates := period.RatioDates(cfg.Year)
	grouped := period.GroupDatesByVersion(cfg, cat, s.rule, dates)
	lookup, err := s.facts.Fetch(ctx, facts.QueriesFor(grouped, sets.AccountIDs(), entityIDs))
	if err != nil {
		return nil, fmt.Errorf("ratio: fetch facts: %w", err)
	}

	table := Tabulate(lookup, sets, dates)
	selected := period.QuarterStart(cfg.Year, cfg.Quarter)

	analysis := &Analysis{
		Table:   Table{Headers: []string{"Giá trị kỳ này", "Giá trị lũy kế đến kỳ này"}},
		History: make(map[string]Values),
	}
	for _, date := range historyDates(dates) {
		periodData := table[date]
		if periodData == nil {
			continue
		}
		q := period.QuarterOf(date)
		yearStart := table[period.BeginningOfYear(date.Year())]

		cumulative := Compute(periodData, yearStart, true, float64(q)*quarterDays)
		analysis.History[date.Format(dateKeyLayout)] = cumulative

		if !date.Equal(selected) {
			continue
		}
		quarterly := Compute(periodData, table[prevQuarterDate(date)], false, quarterDays)
		analysis.Latest = cumulative
		for _, m := range Indicators() {
			analysis.Table.Rows = append(analysis.Table.Rows, TableRow{
				Key:    m.Key,
				Name:   m.Name,
				Values: [2]*float64{quarterly[m.Key], cumulative[m.Key]},
			})
		}
	}
	return analysis, nil
}

// HistoryPoint is one bar of an indicator's five-year comparison.
type HistoryPoint struct {
	Name  string   `json:"name"`
	Value *float64 `json:"value"`
}

// QuarterPoint pairs one quarter's ratio with the same quarter a year
// earlier.
type QuarterPoint struct {
	Name     string   `json:"name"`
	Current  *float64 `json:"currentPeriod"`
	Previous *float64 `json:"previousPeriod"`
}

// IndicatorSeries bundles the comparison series for one indicator.
type IndicatorSeries struct {
	Indicator Metadata       `json:"indicator"`
	FiveYear  []HistoryPoint `json:"fiveYear"`
	Quarterly []QuarterPoint `json:"quarterly"`
}

var quarterLabels = map[period.Quarter]string{
	period.Q1: "Quý I",
	period.Q2: "Quý II",
	period.Q3: "Quý III",
	period.Q4: "Quý IV",
}

// BuildCharts projects one indicator out of the cumulative history: the
// same-quarter value across five years and the quarter-by-quarter pairing
// of the selected year with the one before. Missing periods stay nil.
func (s *Service) BuildCharts(ctx context.Context, cfg period.FilterConfig, key string) (*IndicatorSeries, error) {
	meta, ok := IndicatorByKey(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownIndicator, key)
	}
	analysis, err := s.BuildAnalysis(ctx, cfg)
	if err != nil {
		return nil, err
	}

	at := func(year int, q period.Quarter) *float64 {
		values, ok := analysis.History[period.QuarterStart(year, q).Format(dateKeyLayout)]
		if !ok {
			return nil
		}
		return values[key]
	}

	series := &IndicatorSeries{Indicator: meta}
	for y := cfg.Year - 4; y <= cfg.Year; y++ {
		series.FiveYear = append(series.FiveYear, HistoryPoint{
			Name:  fmt.Sprintf("%d", y),
			Value: at(y, cfg.Quarter),
		})
	}
	for q := period.Q1; q <= period.Q4; q++ {
		series.Quarterly = append(series.Quarterly, QuarterPoint{
			Name:     quarterLabels[q],
			Current:  at(cfg.Year, q),
			Previous: at(cfg.Year-1, q),
		})
	}
	return series, nil
}

// historyDates sorts the window ascending and drops its earliest date; that
// date only feeds opening balances and never gets a ratio set of its own.
func historyDates(dates []time.Time) []time.Time {
	sorted := make([]time.Time, len(dates))
	copy(sorted, dates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })
	if len(sorted) > 0 {
		sorted = sorted[1:]
	}
	return sorted
}

// prevQuarterDate is the opening-balance date for a quarterly set: the
// preceding quarter, or the prior year-end for a first quarter.
func prevQuarterDate(date time.Time) time.Time {
	q := period.QuarterOf(date)
	if q > period.Q1 {
		return period.QuarterStart(date.Year(), q-1)
	}
	return period.BeginningOfYear(date.Year())
}

func (s *Service) entityIDs(ctx context.Context, cfg period.FilterConfig) ([]string, error) {
	groups, err := s.refdata.UnitHierarchy(ctx)
	if err != nil {
		return nil, err
	}
	selected := cfg.UnitGroupIDs
	if len(selected) == 0 {
		selected = refdata.DefaultUnitSelection(groups, defaultUnitGroupName)
	}
	entityIDs := refdata.ExpandUnitSelection(groups, selected)
	if len(entityIDs) == 0 {
		return nil, ErrNoUnits
	}
	return entityIDs, nil
}
