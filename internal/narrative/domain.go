package narrative

import (
	"github.com/finsight-vn/finsight/internal/statement"
)

// FlatRow is the reduced tree row sent to the analysis model: the display
// name, the two compared balances and the child rows, nothing else.
type FlatRow struct {
	Name     string    `json:"name"`
	End      *float64  `json:"endPeriod"`
	Start    *float64  `json:"startPeriod"`
	Children []FlatRow `json:"children"`
}

// Flatten projects a statement tree into analysis rows.
func Flatten(nodes []*statement.Node) []FlatRow {
	rows := make([]FlatRow, 0, len(nodes))
	for _, n := range nodes {
		if n == nil {
			continue
		}
		rows = append(rows, FlatRow{
			Name:     n.Name,
			End:      n.End,
			Start:    n.Start,
			Children: Flatten(n.Children),
		})
	}
	return rows
}

// Result is the structured commentary returned by the model.
type Result struct {
	Comments    []string `json:"comments"`
	Risks       []string `json:"risks"`
	Suggestions []string `json:"suggestions"`
}
