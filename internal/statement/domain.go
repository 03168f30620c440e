package statement

import (
	"regexp"
)

// Node is one line of a rendered statement tree. Value fields are nil when
// no fact contributed, which renders as "no data" and is never the same as
// zero. All derived fields are filled by the builder's finalize pass.
type Node struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Level      int    `json:"level"`
	SequenceID *int64 `json:"stt"`
	IsTotal    bool   `json:"isTotal"`

	End                *float64 `json:"end"`
	Start              *float64 `json:"start"`
	PrevQuarter        *float64 `json:"prevQuarter"`
	SamePeriodLastYear *float64 `json:"samePeriodLastYear"`
	BeginningOfYear    *float64 `json:"beginningOfYear"`

	CurrentQuarterValue      *float64 `json:"currentQuarterValue"`
	Diff                     *float64 `json:"diff"`
	DiffPct                  *float64 `json:"diffPct"`
	DiffVsSamePeriod         *float64 `json:"diffVsSamePeriod"`
	DiffPctVsSamePeriod      *float64 `json:"diffPctVsSamePeriod"`
	DiffVsBeginningOfYear    *float64 `json:"diffVsBeginningOfYear"`
	DiffPctVsBeginningOfYear *float64 `json:"diffPctVsBeginningOfYear"`
	Pct                      *float64 `json:"pct"`

	HasChildren bool    `json:"hasChildren"`
	Children    []*Node `json:"children"`
}

var grandTotalPattern = regexp.MustCompile(`(?i)tổng\s*cộng`)

// FindBySequenceID walks the forest depth-first and returns the first node
// carrying the sequence id.
func FindBySequenceID(nodes []*Node, sequenceID int64) *Node {
	for _, n := range nodes {
		if n.SequenceID != nil && *n.SequenceID == sequenceID {
			return n
		}
		if found := FindBySequenceID(n.Children, sequenceID); found != nil {
			return found
		}
	}
	return nil
}

// FindByName returns the first node whose name matches the pattern,
// depth-first.
func FindByName(nodes []*Node, pattern *regexp.Regexp) *Node {
	for _, n := range nodes {
		if pattern.MatchString(n.Name) {
			return n
		}
		if found := FindByName(n.Children, pattern); found != nil {
			return found
		}
	}
	return nil
}

// LeafDescendants collects every childless node under n, in display order.
// n itself is never included.
func LeafDescendants(n *Node) []*Node {
	var leaves []*Node
	var walk func(*Node)
	walk = func(cur *Node) {
		if !cur.HasChildren {
			leaves = append(leaves, cur)
			return
		}
		for _, c := range cur.Children {
			walk(c)
		}
	}
	for _, c := range n.Children {
		walk(c)
	}
	return leaves
}
