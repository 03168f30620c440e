package narrative

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/finsight-vn/finsight/internal/period"
	"github.com/finsight-vn/finsight/internal/statement"
)

// ErrUnsupportedStatement signals a commentary request for a statement type
// the analysis prompts do not cover.
var ErrUnsupportedStatement = errors.New("narrative: statement has no analysis prompt")

// ReportBuilder is the statement surface the service consumes.
type ReportBuilder interface {
	BuildReport(ctx context.Context, cfg period.FilterConfig, stmt period.Statement) (*statement.Report, error)
}

// Service builds a statement report, flattens it and asks the model for
// commentary. Commentary is strictly read-only: a model failure never
// affects the report itself.
type Service struct {
	reports   ReportBuilder
	generator Generator
	logger    *slog.Logger
}

// NewService wires the narrative service.
func NewService(reports ReportBuilder, generator Generator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{reports: reports, generator: generator, logger: logger}
}

// Analyze produces commentary for a balance sheet or income statement.
func (s *Service) Analyze(ctx context.Context, cfg period.FilterConfig, stmt period.Statement) (*Result, error) {
	if stmt != period.StatementBalanceSheet && stmt != period.StatementIncome {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedStatement, stmt)
	}

	report, err := s.reports.BuildReport(ctx, cfg, stmt)
	if err != nil {
		return nil, err
	}

	plan := period.BuildPlan(stmt, cfg.Year, cfg.Quarter)
	started := time.Now()
	result, err := s.generator.Generate(ctx, stmt, Flatten(report.Tree), isoDate(plan.Start), isoDate(plan.End))
	if err != nil {
		return nil, err
	}
	s.logger.Debug("narrative generated",
		slog.String("statement", string(stmt)),
		slog.Duration("elapsed", time.Since(started)))
	return result, nil
}

func isoDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
