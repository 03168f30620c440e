package statement

import (
	"math"

	"github.com/finsight-vn/finsight/internal/period"
)

// WaterfallMode selects the comparison axis a waterfall decomposes
// against.
type WaterfallMode string

const (
	WaterfallVsPreviousQuarter    WaterfallMode = "vsPreviousQuarter"
	WaterfallVsSamePeriodLastYear WaterfallMode = "vsSamePeriodLastYear"
	WaterfallVsBeginningOfYear    WaterfallMode = "vsBeginningOfYear"
)

// WaterfallEntryTotal and WaterfallEntryChange tag the two bar kinds.
const (
	WaterfallEntryTotal  = "total"
	WaterfallEntryChange = "change"
)

// WaterfallEntry is one bar of a waterfall chart.
type WaterfallEntry struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Type  string  `json:"type"`
}

// waterfallThreshold hides leaf movements of at most one unit; they fold
// into the remainder bucket instead.
const waterfallThreshold = 1.0

// Waterfall decomposes an aggregate node's movement into its leaf
// descendants' deltas: a start total, one change bar per leaf whose delta
// exceeds the threshold, a remainder bar for everything else, and the end
// total. A node without children decomposes to nothing.
func Waterfall(stmt period.Statement, node *Node, mode WaterfallMode) []WaterfallEntry {
	if node == nil || !node.HasChildren {
		return nil
	}

	startOf := startAxis(stmt, mode)
	startValue := startOf(node)
	endValue := node.End

	var totalDiff float64
	if startValue != nil && endValue != nil {
		totalDiff = *endValue - *startValue
	}

	entries := []WaterfallEntry{{
		Name:  startLabel(stmt, mode),
		Value: orZero(startValue),
		Type:  WaterfallEntryTotal,
	}}

	var leafDiffSum float64
	for _, leaf := range LeafDescendants(node) {
		diff := orZero(leaf.End) - orZero(startOf(leaf))
		if math.Abs(diff) > waterfallThreshold {
			entries = append(entries, WaterfallEntry{Name: leaf.Name, Value: diff, Type: WaterfallEntryChange})
			leafDiffSum += diff
		}
	}

	if other := totalDiff - leafDiffSum; math.Abs(other) > waterfallThreshold {
		entries = append(entries, WaterfallEntry{Name: "Khác", Value: other, Type: WaterfallEntryChange})
	}

	entries = append(entries, WaterfallEntry{
		Name:  endLabel(stmt),
		Value: orZero(endValue),
		Type:  WaterfallEntryTotal,
	})
	return entries
}

// startAxis maps the comparison mode onto the tree's value axes. The
// balance sheet loads the previous quarter into Start; flow statements
// load the prior year there and carry the previous quarter separately.
func startAxis(stmt period.Statement, mode WaterfallMode) func(*Node) *float64 {
	if stmt == period.StatementBalanceSheet {
		switch mode {
		case WaterfallVsSamePeriodLastYear:
			return func(n *Node) *float64 { return n.SamePeriodLastYear }
		case WaterfallVsBeginningOfYear:
			return func(n *Node) *float64 { return n.BeginningOfYear }
		default:
			return func(n *Node) *float64 { return n.Start }
		}
	}
	if mode == WaterfallVsPreviousQuarter {
		return func(n *Node) *float64 { return n.PrevQuarter }
	}
	return func(n *Node) *float64 { return n.Start }
}

func startLabel(stmt period.Statement, mode WaterfallMode) string {
	if stmt == period.StatementBalanceSheet {
		switch mode {
		case WaterfallVsSamePeriodLastYear:
			return "Cùng kỳ năm trước"
		case WaterfallVsBeginningOfYear:
			return "Đầu năm"
		default:
			return "Đầu kỳ"
		}
	}
	if mode == WaterfallVsPreviousQuarter {
		return "Lũy kế quý trước"
	}
	return "Lũy kế cùng kỳ"
}

func endLabel(stmt period.Statement) string {
	if stmt == period.StatementBalanceSheet {
		return "Cuối kỳ"
	}
	return "Lũy kế kỳ này"
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
