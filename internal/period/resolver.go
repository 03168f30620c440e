package period

import "time"

// Settle validates the per-quarter version selections against the scope and
// returns the adjusted configuration. It is pure and idempotent: one pass
// reaches the fixpoint, so re-running it after any filter change cannot
// oscillate.
//
// When no quarter has a selection yet and the scope is consolidated, the
// selections are seeded with the default convention: Q1-Q3 from the
// pre-audit code and Q4 from the post-audit code. In every other case an
// invalid or missing selection falls back to the first legal version for
// the scope.
func Settle(cfg FilterConfig, cat Catalog) FilterConfig {
	legal := cat.Legal(cfg.Scope)
	if len(legal) == 0 {
		// Reference data not loaded, nothing to settle against.
		return cfg
	}

	if len(cfg.Versions) == 0 && cfg.Scope == ScopeConsolidated {
		sv := cat.Scopes[ScopeConsolidated]
		seeded := map[Quarter]string{Q1: sv.PreAudit, Q2: sv.PreAudit, Q3: sv.PreAudit, Q4: sv.PostAudit}
		return cfg.withVersions(seeded)
	}

	settled := make(map[Quarter]string, 4)
	for _, q := range []Quarter{Q1, Q2, Q3, Q4} {
		if code, ok := cfg.VersionSelection(q); ok && cat.isLegal(cfg.Scope, code) {
			settled[q] = code
			continue
		}
		settled[q] = legal[0].Code
	}
	return cfg.withVersions(settled)
}

// VersionFor resolves the analysis-version code whose facts must be read
// for the given date. Dates outside the selected year follow the fixed
// historical rule; dates within it use the user's per-quarter selection
// when it is legal under the scope, otherwise the scope's first legal
// version. ok is false only when no versions are loaded at all.
func VersionFor(cfg FilterConfig, cat Catalog, rule HistoricalRule, date time.Time) (string, bool) {
	legal := cat.Legal(cfg.Scope)
	if len(legal) == 0 {
		return "", false
	}
	q := QuarterOf(date)
	if date.Year() != cfg.Year {
		sv := cat.Scopes[cfg.Scope]
		return rule.CodeFor(q, sv), true
	}
	if code, ok := cfg.VersionSelection(q); ok && cat.isLegal(cfg.Scope, code) {
		return code, true
	}
	return legal[0].Code, true
}

// GroupDatesByVersion batches the dates that must be fetched by the
// version code resolved for each, so every distinct code turns into one
// fact-store query. Dates without a resolvable version are skipped, which
// surfaces downstream as no-data rather than an error. Duplicate dates
// within one group are collapsed.
func GroupDatesByVersion(cfg FilterConfig, cat Catalog, rule HistoricalRule, dates []time.Time) map[string][]time.Time {
	grouped := make(map[string][]time.Time)
	seen := make(map[string]map[time.Time]struct{})
	for _, d := range dates {
		if d.IsZero() {
			continue
		}
		d = MonthStart(d)
		code, ok := VersionFor(cfg, cat, rule, d)
		if !ok || code == "" {
			continue
		}
		if seen[code] == nil {
			seen[code] = make(map[time.Time]struct{})
		}
		if _, dup := seen[code][d]; dup {
			continue
		}
		seen[code][d] = struct{}{}
		grouped[code] = append(grouped[code], d)
	}
	return grouped
}

// Plan lists the canonical dates one statement view needs. Zero times mark
// axes the statement does not use.
type Plan struct {
	End              time.Time
	Start            time.Time
	PrevQuarter      time.Time
	SamePeriodLastYr time.Time
	BeginningOfYear  time.Time
}

// BuildPlan derives the comparison dates for a statement at the selected
// year/quarter. The balance sheet compares against the previous quarter,
// the same quarter last year, and the prior year-end. Flow statements are
// cumulative: their start axis is the same period last year, and the
// previous quarter (absent in Q1) isolates the current quarter's flow.
func BuildPlan(stmt Statement, year int, q Quarter) Plan {
	end := QuarterStart(year, q)
	switch stmt {
	case StatementBalanceSheet:
		return Plan{
			End:              end,
			Start:            PreviousQuarterEnd(end),
			SamePeriodLastYr: SamePeriodLastYear(end),
			BeginningOfYear:  BeginningOfYear(year),
		}
	default:
		p := Plan{
			End:   end,
			Start: SamePeriodLastYear(end),
		}
		if q != Q1 {
			p.PrevQuarter = PreviousQuarterEnd(end)
		}
		return p
	}
}

// Dates returns the plan's non-zero dates, deduplicated, in axis order.
func (p Plan) Dates() []time.Time {
	candidates := []time.Time{p.End, p.Start, p.PrevQuarter, p.SamePeriodLastYr, p.BeginningOfYear}
	out := make([]time.Time, 0, len(candidates))
	seen := make(map[time.Time]struct{}, len(candidates))
	for _, d := range candidates {
		if d.IsZero() {
			continue
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out
}

// RatioDates lists every quarter of the selected year and the four years
// before it, plus each preceding year-end needed for beginning-of-period
// balances. This is the full ratio-history window.
func RatioDates(year int) []time.Time {
	seen := make(map[time.Time]struct{})
	var out []time.Time
	add := func(d time.Time) {
		if _, dup := seen[d]; dup {
			return
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	for y := year; y > year-5; y-- {
		for _, q := range []Quarter{Q1, Q2, Q3, Q4} {
			add(QuarterStart(y, q))
		}
		add(BeginningOfYear(y))
	}
	return out
}
