package narrative

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-vn/finsight/internal/period"
	"github.com/finsight-vn/finsight/internal/statement"
)

func f64(v float64) *float64 { return &v }

func TestFlattenKeepsNamesBalancesAndNesting(t *testing.T) {
	tree := []*statement.Node{
		{
			Name:  "TÀI SẢN",
			End:   f64(1200),
			Start: f64(1000),
			Children: []*statement.Node{
				{Name: "Tiền", End: f64(300)},
				nil,
			},
		},
		{Name: "NGUỒN VỐN"},
	}

	rows := Flatten(tree)
	require.Len(t, rows, 2)

	assert.Equal(t, "TÀI SẢN", rows[0].Name)
	require.NotNil(t, rows[0].End)
	assert.Equal(t, 1200.0, *rows[0].End)
	require.NotNil(t, rows[0].Start)
	assert.Equal(t, 1000.0, *rows[0].Start)

	require.Len(t, rows[0].Children, 1, "nil children are dropped")
	assert.Equal(t, "Tiền", rows[0].Children[0].Name)
	assert.Nil(t, rows[0].Children[0].Start)

	assert.Nil(t, rows[1].End)
	assert.Empty(t, rows[1].Children)
}

func TestBuildPromptSelectsStatementVariant(t *testing.T) {
	rows := []FlatRow{{Name: "Doanh thu", End: f64(1234567)}}

	system, prompt := buildPrompt(period.StatementIncome, rows, "2024-06-01", "2025-06-01")
	assert.Contains(t, system, "Income Statement")
	assert.Contains(t, prompt, "2025-06-01 (Kỳ này)")
	assert.Contains(t, prompt, "2024-06-01 (Cùng kỳ năm trước)")

	system, prompt = buildPrompt(period.StatementBalanceSheet, rows, "2025-03-01", "2025-06-01")
	assert.Contains(t, system, "Balance Sheet")
	assert.Contains(t, prompt, "2025-06-01 (End Period)")
	assert.Contains(t, prompt, "2025-03-01 (Start Period)")
}

func TestFormatRowsIndentsAndFormatsNumbers(t *testing.T) {
	rows := []FlatRow{
		{
			Name: "TÀI SẢN",
			End:  f64(1234567),
			Children: []FlatRow{
				{Name: "Tiền", End: f64(300)},
			},
		},
	}

	var b strings.Builder
	formatRows(&b, rows, 0)
	got := b.String()

	assert.Contains(t, got, "- TÀI SẢN:\n")
	assert.Contains(t, got, "Cuối kỳ: 1.234.567\n", "vi-VN digit grouping")
	assert.Contains(t, got, "Đầu kỳ: N/A\n")
	assert.Contains(t, got, "  - Tiền:\n", "children indent one level")
}
