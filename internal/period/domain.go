package period

import (
	"fmt"
	"time"
)

// Statement identifies which report a query plan is built for.
type Statement string

const (
	StatementBalanceSheet Statement = "BS"
	StatementIncome       Statement = "P&L"
	StatementCashFlow     Statement = "CF"
	StatementRatios       Statement = "FA"
)

// ParseStatement maps the URL/report token to a Statement.
func ParseStatement(v string) (Statement, error) {
	switch Statement(v) {
	case StatementBalanceSheet, StatementIncome, StatementCashFlow, StatementRatios:
		return Statement(v), nil
	}
	return "", fmt.Errorf("period: unknown statement %q", v)
}

// Quarter is the 1-based fiscal quarter.
type Quarter int

const (
	Q1 Quarter = 1
	Q2 Quarter = 2
	Q3 Quarter = 3
	Q4 Quarter = 4
)

// Valid reports whether the quarter is within 1..4.
func (q Quarter) Valid() bool { return q >= Q1 && q <= Q4 }

// StartMonth returns the quarter-end month used as the canonical period
// month (03, 06, 09, 12).
func (q Quarter) StartMonth() time.Month {
	return time.Month(int(q) * 3)
}

// QuarterOf returns the quarter a date falls in.
func QuarterOf(t time.Time) Quarter {
	return Quarter((int(t.Month())-1)/3 + 1)
}

// Scope selects which analysis-version pair is legal.
type Scope string

const (
	ScopeConsolidated Scope = "Hợp nhất"
	ScopeParent       Scope = "Công ty Mẹ"
)

// AnalysisVersion is a named variant of a period's figures (scope x audit
// status).
type AnalysisVersion struct {
	Code        string
	DisplayName string
}

// ScopeVersions pairs the pre- and post-audit version codes for one scope.
type ScopeVersions struct {
	PreAudit  string
	PostAudit string
}

// DefaultScopeVersions returns the standard code partition.
func DefaultScopeVersions() map[Scope]ScopeVersions {
	return map[Scope]ScopeVersions{
		ScopeConsolidated: {PreAudit: "PVN-P01", PostAudit: "PVN-P02"},
		ScopeParent:       {PreAudit: "PVN-P03", PostAudit: "PVN-P04"},
	}
}

// Catalog holds the loaded analysis versions plus the scope partition.
// An empty Versions slice means reference data has not loaded yet; the
// resolver treats that as not-ready, never as an error.
type Catalog struct {
	Versions []AnalysisVersion
	Scopes   map[Scope]ScopeVersions
}

// NewCatalog builds a catalog with the default scope partition.
func NewCatalog(versions []AnalysisVersion) Catalog {
	return Catalog{Versions: versions, Scopes: DefaultScopeVersions()}
}

// Ready reports whether any versions have been loaded.
func (c Catalog) Ready() bool { return len(c.Versions) > 0 }

// Legal returns the versions usable under the given scope, in load order.
func (c Catalog) Legal(scope Scope) []AnalysisVersion {
	sv, ok := c.Scopes[scope]
	if !ok {
		return nil
	}
	legal := make([]AnalysisVersion, 0, 2)
	for _, v := range c.Versions {
		if v.Code == sv.PreAudit || v.Code == sv.PostAudit {
			legal = append(legal, v)
		}
	}
	return legal
}

func (c Catalog) isLegal(scope Scope, code string) bool {
	if code == "" {
		return false
	}
	for _, v := range c.Legal(scope) {
		if v.Code == code {
			return true
		}
	}
	return false
}

// HistoricalRule decides the audit stage queried for years other than the
// selected one. The boundary is a business convention, so it is carried as
// data rather than hard-coded.
type HistoricalRule struct {
	PreAuditQuarters []Quarter
}

// DefaultHistoricalRule maps Q1/Q3 to pre-audit and Q2/Q4 to post-audit.
func DefaultHistoricalRule() HistoricalRule {
	return HistoricalRule{PreAuditQuarters: []Quarter{Q1, Q3}}
}

// CodeFor returns the version code for a historical quarter under one scope.
func (r HistoricalRule) CodeFor(q Quarter, sv ScopeVersions) string {
	for _, pre := range r.PreAuditQuarters {
		if q == pre {
			return sv.PreAudit
		}
	}
	return sv.PostAudit
}

// FilterConfig is the immutable snapshot of every user selection that
// influences period and version resolution. Settle returns an adjusted
// copy; callers never mutate a config in place.
type FilterConfig struct {
	Scope        Scope
	Year         int
	Quarter      Quarter
	UnitGroupIDs []string
	// Versions holds the per-quarter version selection; a missing key
	// means the user has not chosen one yet.
	Versions map[Quarter]string
}

// VersionSelection returns the selection for a quarter, if any.
func (c FilterConfig) VersionSelection(q Quarter) (string, bool) {
	code, ok := c.Versions[q]
	if !ok || code == "" {
		return "", false
	}
	return code, true
}

func (c FilterConfig) withVersions(v map[Quarter]string) FilterConfig {
	c.Versions = v
	return c
}
