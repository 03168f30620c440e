package narrative

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-vn/finsight/internal/period"
	"github.com/finsight-vn/finsight/internal/statement"
)

type fakeReports struct {
	report *statement.Report
	err    error
	calls  int
}

func (f *fakeReports) BuildReport(ctx context.Context, cfg period.FilterConfig, stmt period.Statement) (*statement.Report, error) {
	f.calls++
	return f.report, f.err
}

type fakeGenerator struct {
	result *Result
	err    error

	stmt        period.Statement
	rows        []FlatRow
	startPeriod string
	endPeriod   string
}

func (f *fakeGenerator) Generate(ctx context.Context, stmt period.Statement, rows []FlatRow, startPeriod, endPeriod string) (*Result, error) {
	f.stmt = stmt
	f.rows = rows
	f.startPeriod = startPeriod
	f.endPeriod = endPeriod
	return f.result, f.err
}

func testConfig() period.FilterConfig {
	return period.FilterConfig{Scope: period.ScopeConsolidated, Year: 2025, Quarter: period.Q2}
}

func TestAnalyzeFlattensReportAndPassesPlanDates(t *testing.T) {
	reports := &fakeReports{report: &statement.Report{
		Statement: period.StatementBalanceSheet,
		Tree: []*statement.Node{
			{Name: "TÀI SẢN", End: f64(1200), Start: f64(1000)},
		},
	}}
	gen := &fakeGenerator{result: &Result{Comments: []string{"ổn định"}}}
	svc := NewService(reports, gen, nil)

	result, err := svc.Analyze(context.Background(), testConfig(), period.StatementBalanceSheet)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, []string{"ổn định"}, result.Comments)

	assert.Equal(t, period.StatementBalanceSheet, gen.stmt)
	require.Len(t, gen.rows, 1)
	assert.Equal(t, "TÀI SẢN", gen.rows[0].Name)
	// Balance sheet compares against the previous quarter end.
	assert.Equal(t, "2025-03-01", gen.startPeriod)
	assert.Equal(t, "2025-06-01", gen.endPeriod)
}

func TestAnalyzeIncomeUsesSamePeriodLastYearStart(t *testing.T) {
	reports := &fakeReports{report: &statement.Report{Statement: period.StatementIncome}}
	gen := &fakeGenerator{result: &Result{}}
	svc := NewService(reports, gen, nil)

	_, err := svc.Analyze(context.Background(), testConfig(), period.StatementIncome)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", gen.startPeriod)
	assert.Equal(t, "2025-06-01", gen.endPeriod)
}

func TestAnalyzeRejectsUncoveredStatements(t *testing.T) {
	reports := &fakeReports{}
	svc := NewService(reports, &fakeGenerator{}, nil)

	for _, stmt := range []period.Statement{period.StatementCashFlow, period.StatementRatios} {
		_, err := svc.Analyze(context.Background(), testConfig(), stmt)
		require.ErrorIs(t, err, ErrUnsupportedStatement)
	}
	assert.Zero(t, reports.calls, "no report is built for an uncovered statement")
}

func TestAnalyzePropagatesReportErrors(t *testing.T) {
	reports := &fakeReports{err: statement.ErrNotReady}
	svc := NewService(reports, &fakeGenerator{}, nil)

	_, err := svc.Analyze(context.Background(), testConfig(), period.StatementBalanceSheet)
	require.ErrorIs(t, err, statement.ErrNotReady)
}

func TestAnalyzePropagatesGeneratorErrors(t *testing.T) {
	reports := &fakeReports{report: &statement.Report{}}
	gen := &fakeGenerator{err: errors.New("model unavailable")}
	svc := NewService(reports, gen, nil)

	_, err := svc.Analyze(context.Background(), testConfig(), period.StatementBalanceSheet)
	require.Error(t, err)
}
