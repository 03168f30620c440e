package statement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/finsight-vn/finsight/internal/facts"
	"github.com/finsight-vn/finsight/internal/period"
	"github.com/finsight-vn/finsight/internal/refdata"
)

// ErrNotReady signals that reference data has not loaded yet; callers
// surface it as "loading", never as a failure.
var ErrNotReady = errors.New("statement: reference data not ready")

// ErrNoUnits signals that the unit selection expands to no reporting
// entities.
var ErrNoUnits = errors.New("statement: no reporting entities selected")

// ErrSuperseded signals that a newer refresh for the same statement was
// issued while this one was fetching; the result has been discarded.
var ErrSuperseded = errors.New("statement: refresh superseded by a newer request")

// DefaultUnitGroupName is the group pre-selected when the user has not
// chosen one.
const DefaultUnitGroupName = "PVFCCo"

// ReferenceData is the refdata surface the service consumes.
type ReferenceData interface {
	Accounts(ctx context.Context, stmt period.Statement) ([]refdata.Account, error)
	Catalog(ctx context.Context) (period.Catalog, error)
	UnitHierarchy(ctx context.Context) ([]refdata.UnitGroup, error)
	ResolveIndicator(ctx context.Context, stmt period.Statement, label string) ([]int64, error)
}

// FactSource runs the concurrent per-version fetch.
type FactSource interface {
	Fetch(ctx context.Context, queries []facts.Query) (facts.Lookup, error)
}

// Report is one fully built statement view.
type Report struct {
	Statement    period.Statement   `json:"statement"`
	PeriodLabel  string             `json:"periodLabel"`
	Tree         []*Node            `json:"tree"`
	BalanceSheet *BalanceSheetCards `json:"balanceSheetCards,omitempty"`
	Income       *IncomeCards       `json:"incomeCards,omitempty"`
	CashFlow     *CashFlowCards     `json:"cashFlowCards,omitempty"`
}

// Service orchestrates one statement view: reference data, period
// planning, fact fetching, aggregation, tree building, card projection.
type Service struct {
	refdata ReferenceData
	facts   FactSource
	rule    period.HistoricalRule
	logger  *slog.Logger
	views   map[period.Statement]*View
}

// NewService wires the statement service.
func NewService(ref ReferenceData, factSource FactSource, rule period.HistoricalRule, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	views := map[period.Statement]*View{
		period.StatementBalanceSheet: NewView(logger),
		period.StatementIncome:       NewView(logger),
		period.StatementCashFlow:     NewView(logger),
	}
	return &Service{refdata: ref, facts: factSource, rule: rule, logger: logger, views: views}
}

// Settle validates a filter configuration against the loaded versions.
func (s *Service) Settle(ctx context.Context, cfg period.FilterConfig) (period.FilterConfig, error) {
	cat, err := s.refdata.Catalog(ctx)
	if err != nil {
		return cfg, err
	}
	return period.Settle(cfg, cat), nil
}

// BuildReport builds the full statement view for the filter. Any store
// error aborts the cycle: no partial tree is ever returned and the
// installed view for the statement is dropped. A refresh that loses the
// epoch race to a newer one discards its result and reports ErrSuperseded.
func (s *Service) BuildReport(ctx context.Context, cfg period.FilterConfig, stmt period.Statement) (*Report, error) {
	view := s.views[stmt]
	var epoch uint64
	if view != nil {
		epoch = view.Begin()
	}

	report, err := s.buildReport(ctx, cfg, stmt)
	if err != nil {
		if view != nil {
			view.Invalidate(epoch)
		}
		return nil, err
	}
	if view != nil && !view.Install(epoch, report) {
		return nil, ErrSuperseded
	}
	return report, nil
}

// Current returns the most recently installed report for the statement,
// nil when none has completed yet.
func (s *Service) Current(stmt period.Statement) *Report {
	view := s.views[stmt]
	if view == nil {
		return nil
	}
	return view.Current()
}

func (s *Service) buildReport(ctx context.Context, cfg period.FilterConfig, stmt period.Statement) (*Report, error) {
	cat, err := s.refdata.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	if !cat.Ready() {
		return nil, ErrNotReady
	}
	cfg = period.Settle(cfg, cat)

	accounts, err := s.refdata.Accounts(ctx, stmt)
	if err != nil {
		return nil, err
	}

	entityIDs, err := s.entityIDs(ctx, cfg)
	if err != nil {
		return nil, err
	}

	plan := period.BuildPlan(stmt, cfg.Year, cfg.Quarter)
	grouped := period.GroupDatesByVersion(cfg, cat, s.rule, plan.Dates())
	lookup, err := s.facts.Fetch(ctx, facts.QueriesFor(grouped, nil, entityIDs))
	if err != nil {
		return nil, fmt.Errorf("statement: fetch facts: %w", err)
	}

	tree := Build(stmt, accounts, lookup, plan)
	report := &Report{
		Statement:   stmt,
		PeriodLabel: period.Label(plan.End),
		Tree:        tree,
	}
	switch stmt {
	case period.StatementBalanceSheet:
		cards := BalanceSheetMetrics(tree)
		report.BalanceSheet = &cards
	case period.StatementIncome:
		cards := IncomeMetrics(tree)
		report.Income = &cards
	case period.StatementCashFlow:
		cards := CashFlowMetrics(tree)
		report.CashFlow = &cards
	}
	return report, nil
}

// IndicatorCharts bundles the two comparison series for one indicator.
type IndicatorCharts struct {
	Indicator string         `json:"indicator"`
	FiveYear  []YearPoint    `json:"fiveYear"`
	Quarterly []QuarterPoint `json:"quarterly"`
}

// BuildCharts resolves the indicator and produces its five-year and
// quarterly comparison series. An unknown indicator yields empty series.
func (s *Service) BuildCharts(ctx context.Context, cfg period.FilterConfig, stmt period.Statement, indicator string) (*IndicatorCharts, error) {
	cat, err := s.refdata.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	if !cat.Ready() {
		return nil, ErrNotReady
	}
	cfg = period.Settle(cfg, cat)

	accountIDs, err := s.refdata.ResolveIndicator(ctx, stmt, indicator)
	if err != nil {
		return nil, err
	}
	if len(accountIDs) == 0 {
		return &IndicatorCharts{Indicator: indicator}, nil
	}

	entityIDs, err := s.entityIDs(ctx, cfg)
	if err != nil {
		return nil, err
	}

	dates := append(ChartDates(stmt, cfg.Year), FiveYearDates(cfg.Year, cfg.Quarter)...)
	grouped := period.GroupDatesByVersion(cfg, cat, s.rule, dates)
	lookup, err := s.facts.Fetch(ctx, facts.QueriesFor(grouped, accountIDs, entityIDs))
	if err != nil {
		return nil, fmt.Errorf("statement: fetch chart facts: %w", err)
	}

	return &IndicatorCharts{
		Indicator: indicator,
		FiveYear:  FiveYearSeries(lookup, accountIDs, cfg.Year, cfg.Quarter),
		Quarterly: QuarterlySeries(lookup, accountIDs, stmt, cfg.Year),
	}, nil
}

// BuildWaterfall decomposes the movement of a selected aggregate row.
func (s *Service) BuildWaterfall(ctx context.Context, cfg period.FilterConfig, stmt period.Statement, sequenceID int64, mode WaterfallMode) ([]WaterfallEntry, error) {
	report, err := s.BuildReport(ctx, cfg, stmt)
	if err != nil {
		return nil, err
	}
	node := FindBySequenceID(report.Tree, sequenceID)
	if node == nil {
		return nil, nil
	}
	return Waterfall(stmt, node, mode), nil
}

func (s *Service) entityIDs(ctx context.Context, cfg period.FilterConfig) ([]string, error) {
	groups, err := s.refdata.UnitHierarchy(ctx)
	if err != nil {
		return nil, err
	}
	selected := cfg.UnitGroupIDs
	if len(selected) == 0 {
		selected = refdata.DefaultUnitSelection(groups, DefaultUnitGroupName)
	}
	entityIDs := refdata.ExpandUnitSelection(groups, selected)
	if len(entityIDs) == 0 {
		return nil, ErrNoUnits
	}
	return entityIDs, nil
}
