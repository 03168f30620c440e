package statement

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/finsight-vn/finsight/internal/facts"
	"github.com/finsight-vn/finsight/internal/period"
	"github.com/finsight-vn/finsight/internal/refdata"
)

// netRevenueSequenceID is the net-revenue line of the income statement,
// the percentage base for flow statements.
const netRevenueSequenceID = 3

var assetsRootPattern = regexp.MustCompile(`(?i)tài\s*sản`)

type axis int

const (
	axisEnd axis = iota
	axisStart
	axisPrevQuarter
	axisSamePeriodLastYear
	axisBeginningOfYear
	axisCount
)

// axes carries one value per comparison axis; a nil entry means nothing
// contributed on that axis.
type axes [axisCount]*float64

func (a *axes) add(other axes) {
	for i, v := range other {
		if v == nil {
			continue
		}
		if a[i] == nil {
			val := *v
			a[i] = &val
			continue
		}
		*a[i] += *v
	}
}

// arenaNode is the builder's working representation: tree structure lives
// in arena indices, never in pointers, until the final projection.
type arenaNode struct {
	node     *Node
	children []int
	childIdx map[string]int
	direct   axes
	total    axes
}

type seqEntry struct {
	sequenceID int64
	rawDepth   int
}

// buildSequenceIndex maps each normalized path to its authoritative
// sequence id. When several accounts normalize to the same path, the one
// with the fewest raw levels wins; among equals the first wins.
func buildSequenceIndex(accounts []refdata.Account) map[string]seqEntry {
	index := make(map[string]seqEntry, len(accounts))
	for _, acc := range accounts {
		if acc.SequenceID == nil {
			continue
		}
		path := acc.Path()
		if len(path) == 0 {
			continue
		}
		depth := acc.RawDepth()
		key := pathKey(path)
		if existing, ok := index[key]; ok && existing.rawDepth <= depth {
			continue
		}
		index[key] = seqEntry{sequenceID: *acc.SequenceID, rawDepth: depth}
	}
	return index
}

func pathKey(path []string) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = refdata.Normalize(p)
	}
	return strings.Join(parts, "|")
}

type treeBuilder struct {
	arena    []*arenaNode
	roots    []int
	rootIdx  map[string]int
	seqIndex map[string]seqEntry
}

// Build constructs the statement forest from scratch: accounts are walked
// in input order, direct facts accumulate at each account's terminal node,
// then one post-order pass aggregates, backfills sequence ids, and
// finalizes derived fields. The arena is fresh per call; a prior tree is
// never mutated.
func Build(stmt period.Statement, accounts []refdata.Account, lookup facts.Lookup, plan period.Plan) []*Node {
	b := &treeBuilder{
		arena:    make([]*arenaNode, 0, len(accounts)),
		rootIdx:  make(map[string]int),
		seqIndex: buildSequenceIndex(accounts),
	}

	axisDates := [axisCount]time.Time{
		axisEnd:                plan.End,
		axisStart:              plan.Start,
		axisPrevQuarter:        plan.PrevQuarter,
		axisSamePeriodLastYear: plan.SamePeriodLastYr,
		axisBeginningOfYear:    plan.BeginningOfYear,
	}

	for _, acc := range accounts {
		path := acc.Path()
		if len(path) == 0 {
			continue
		}
		idx := b.insertPath(path)
		if acc.SequenceID == nil {
			continue
		}
		var vals axes
		for ax, d := range axisDates {
			if d.IsZero() {
				continue
			}
			vals[ax] = lookup.Value(*acc.SequenceID, d)
		}
		b.arena[idx].direct.add(vals)
	}

	b.aggregate()
	b.backfillSequenceIDs()
	b.finalize(b.percentageBase(stmt))
	return b.forest()
}

// insertPath descends the normalized path, creating nodes on first sight.
// Sibling order is creation order and is never re-sorted.
func (b *treeBuilder) insertPath(path []string) int {
	var normalizedSoFar []string
	cur := -1
	for depth, label := range path {
		normalized := refdata.Normalize(label)
		siblings := b.rootIdx
		if cur >= 0 {
			siblings = b.arena[cur].childIdx
		}
		idx, ok := siblings[normalized]
		if !ok {
			idx = b.newNode(label, normalized, depth+1, append(normalizedSoFar, normalized), len(siblings))
			siblings[normalized] = idx
			if cur < 0 {
				b.roots = append(b.roots, idx)
			} else {
				parent := b.arena[cur]
				parent.children = append(parent.children, idx)
				parent.node.HasChildren = true
			}
		}
		normalizedSoFar = append(normalizedSoFar, normalized)
		cur = idx
	}
	return cur
}

func (b *treeBuilder) newNode(label, normalized string, level int, normalizedPath []string, siblingCount int) int {
	var sequenceID *int64
	if entry, ok := b.seqIndex[strings.Join(normalizedPath, "|")]; ok {
		id := entry.sequenceID
		sequenceID = &id
	}
	n := &Node{
		ID:         fmt.Sprintf("lv%d-%s-%d", level, normalized, siblingCount),
		Name:       strings.TrimSpace(label),
		Level:      level,
		SequenceID: sequenceID,
		IsTotal:    grandTotalPattern.MatchString(label),
	}
	b.arena = append(b.arena, &arenaNode{node: n, childIdx: make(map[string]int)})
	return len(b.arena) - 1
}

// aggregate resolves each node's per-axis total as direct contributions
// plus children's totals. Children always sit at higher arena indices than
// their parent, so one reverse pass is a post-order traversal.
func (b *treeBuilder) aggregate() {
	for i := len(b.arena) - 1; i >= 0; i-- {
		an := b.arena[i]
		an.total.add(an.direct)
		for _, c := range an.children {
			an.total.add(b.arena[c].total)
		}
		an.node.End = an.total[axisEnd]
		an.node.Start = an.total[axisStart]
		an.node.PrevQuarter = an.total[axisPrevQuarter]
		an.node.SamePeriodLastYear = an.total[axisSamePeriodLastYear]
		an.node.BeginningOfYear = an.total[axisBeginningOfYear]
	}
}

// backfillSequenceIDs lets parents without a sequence id inherit the first
// child's, deepest nodes first, so row selection works on aggregates.
func (b *treeBuilder) backfillSequenceIDs() {
	for i := len(b.arena) - 1; i >= 0; i-- {
		an := b.arena[i]
		if an.node.SequenceID != nil || len(an.children) == 0 {
			continue
		}
		if first := b.arena[an.children[0]].node; first.SequenceID != nil {
			id := *first.SequenceID
			an.node.SequenceID = &id
		}
	}
}

// percentageBase picks the 100% reference: the assets root for a balance
// sheet (first root as fallback), the net-revenue line otherwise. Zero
// means no base and every pct stays nil.
func (b *treeBuilder) percentageBase(stmt period.Statement) float64 {
	roots := b.forest()
	if len(roots) == 0 {
		return 0
	}
	if stmt == period.StatementBalanceSheet {
		base := roots[0]
		for _, r := range roots {
			if assetsRootPattern.MatchString(r.Name) {
				base = r
				break
			}
		}
		if base.End != nil {
			return *base.End
		}
		return 0
	}
	if n := FindBySequenceID(roots, netRevenueSequenceID); n != nil && n.End != nil {
		return *n.End
	}
	return 0
}

func (b *treeBuilder) finalize(base float64) {
	for _, an := range b.arena {
		n := an.node
		n.Diff = sub(n.End, n.Start)
		n.DiffPct = diffPct(n.Diff, n.Start)
		n.DiffVsSamePeriod = sub(n.End, n.SamePeriodLastYear)
		n.DiffPctVsSamePeriod = diffPct(n.DiffVsSamePeriod, n.SamePeriodLastYear)
		n.DiffVsBeginningOfYear = sub(n.End, n.BeginningOfYear)
		n.DiffPctVsBeginningOfYear = diffPct(n.DiffVsBeginningOfYear, n.BeginningOfYear)
		if base != 0 && n.End != nil {
			pct := *n.End / base * 100
			n.Pct = &pct
		}
		n.CurrentQuarterValue = currentQuarter(n.End, n.PrevQuarter)
	}
}

func (b *treeBuilder) forest() []*Node {
	out := make([]*Node, len(b.roots))
	for i, idx := range b.roots {
		out[i] = b.project(idx)
	}
	return out
}

func (b *treeBuilder) project(idx int) *Node {
	an := b.arena[idx]
	if an.node.Children == nil && len(an.children) > 0 {
		an.node.Children = make([]*Node, len(an.children))
		for i, c := range an.children {
			an.node.Children[i] = b.project(c)
		}
	}
	return an.node
}

func sub(end, start *float64) *float64 {
	if end == nil || start == nil {
		return nil
	}
	d := *end - *start
	return &d
}

// diffPct divides the delta by the start's magnitude; a zero or missing
// start yields nil, never NaN or Inf.
func diffPct(diff, start *float64) *float64 {
	if diff == nil || start == nil || *start == 0 {
		return nil
	}
	p := *diff / math.Abs(*start) * 100
	return &p
}

// currentQuarter isolates a single quarter's flow from a cumulative
// figure. Without a previous-quarter figure the cumulative value stands.
func currentQuarter(end, prevQuarter *float64) *float64 {
	if end == nil {
		return nil
	}
	if prevQuarter == nil {
		v := *end
		return &v
	}
	v := *end - *prevQuarter
	return &v
}
