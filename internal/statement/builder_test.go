package statement

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-vn/finsight/internal/facts"
	"github.com/finsight-vn/finsight/internal/period"
	"github.com/finsight-vn/finsight/internal/refdata"
)

var (
	endDate   = period.QuarterStart(2025, period.Q2)
	startDate = period.QuarterStart(2025, period.Q1)
)

func bsPlan() period.Plan {
	return period.Plan{End: endDate, Start: startDate}
}

func strp(s string) *string { return &s }
func i64p(v int64) *int64   { return &v }

func account(stt *int64, levels ...string) refdata.Account {
	acc := refdata.Account{Statement: period.StatementBalanceSheet, SequenceID: stt}
	ptrs := []**string{&acc.Level1, &acc.Level2, &acc.Level3, &acc.Level4}
	for i, lv := range levels {
		if lv != "" {
			*ptrs[i] = strp(lv)
		}
	}
	return acc
}

func lookupOf(cells map[int64]map[time.Time]float64) facts.Lookup {
	l := facts.Lookup{}
	for id, byDate := range cells {
		for d, v := range byDate {
			l[facts.Key{AccountID: id, Date: d}] = v
		}
	}
	return l
}

func TestBuildAggregatesDirectAndChildValues(t *testing.T) {
	accounts := []refdata.Account{
		account(i64p(1), "TÀI SẢN"),
		account(i64p(2), "TÀI SẢN", "Tiền"),
	}
	lookup := lookupOf(map[int64]map[time.Time]float64{
		1: {endDate: 100},
		2: {endDate: 40},
	})

	tree := Build(period.StatementBalanceSheet, accounts, lookup, bsPlan())
	require.Len(t, tree, 1)

	root := tree[0]
	assert.Equal(t, "TÀI SẢN", root.Name)
	require.NotNil(t, root.End)
	assert.Equal(t, 140.0, *root.End)
	assert.Nil(t, root.Start)
	assert.Nil(t, root.Diff)
	assert.Nil(t, root.DiffPct)
	require.NotNil(t, root.Pct)
	assert.Equal(t, 100.0, *root.Pct)

	require.Len(t, root.Children, 1)
	child := root.Children[0]
	assert.Equal(t, "Tiền", child.Name)
	require.NotNil(t, child.End)
	assert.Equal(t, 40.0, *child.End)
	require.NotNil(t, child.Pct)
	assert.InDelta(t, 28.57, *child.Pct, 0.01)
}

func TestBuildIsIdempotent(t *testing.T) {
	accounts := []refdata.Account{
		account(i64p(1), "TÀI SẢN"),
		account(i64p(2), "TÀI SẢN", "Tiền"),
		account(i64p(3), "TÀI SẢN", "Hàng tồn kho"),
		account(i64p(4), "NGUỒN VỐN"),
	}
	lookup := lookupOf(map[int64]map[time.Time]float64{
		1: {endDate: 10, startDate: 8},
		2: {endDate: 4},
		3: {startDate: 2},
	})

	first := Build(period.StatementBalanceSheet, accounts, lookup, bsPlan())
	second := Build(period.StatementBalanceSheet, accounts, lookup, bsPlan())
	assert.True(t, reflect.DeepEqual(first, second), "two builds from the same inputs must be identical")
}

func TestBuildConservation(t *testing.T) {
	accounts := []refdata.Account{
		account(i64p(1), "TÀI SẢN"),
		account(i64p(2), "TÀI SẢN", "Tiền"),
		account(i64p(3), "TÀI SẢN", "Tiền", "Tiền mặt"),
		account(i64p(4), "TÀI SẢN", "Hàng tồn kho"),
	}
	lookup := lookupOf(map[int64]map[time.Time]float64{
		1: {endDate: 5},
		2: {endDate: 10},
		3: {endDate: 20},
		4: {endDate: 40},
	})

	tree := Build(period.StatementBalanceSheet, accounts, lookup, bsPlan())
	require.Len(t, tree, 1)
	root := tree[0]

	// Direct contribution plus both subtrees.
	require.NotNil(t, root.End)
	assert.Equal(t, 75.0, *root.End)

	cash := root.Children[0]
	require.NotNil(t, cash.End)
	assert.Equal(t, 30.0, *cash.End, "direct 10 plus leaf 20")
}

func TestBuildCollapsesDuplicatePathLevels(t *testing.T) {
	accounts := []refdata.Account{
		account(i64p(1), "A", "A", "B"),
	}
	lookup := lookupOf(map[int64]map[time.Time]float64{1: {endDate: 7}})

	tree := Build(period.StatementBalanceSheet, accounts, lookup, bsPlan())
	require.Len(t, tree, 1)
	root := tree[0]
	assert.Equal(t, "A", root.Name)
	assert.Equal(t, 1, root.Level)
	require.Len(t, root.Children, 1)
	assert.Equal(t, "B", root.Children[0].Name)
	assert.Equal(t, 2, root.Children[0].Level)
	assert.False(t, root.Children[0].HasChildren)
}

func TestBuildSkipsAccountsWithEmptyPath(t *testing.T) {
	accounts := []refdata.Account{
		account(i64p(1), " "),
		account(i64p(2), "TÀI SẢN"),
	}
	lookup := lookupOf(map[int64]map[time.Time]float64{2: {endDate: 1}})

	tree := Build(period.StatementBalanceSheet, accounts, lookup, bsPlan())
	require.Len(t, tree, 1)
	assert.Equal(t, "TÀI SẢN", tree[0].Name)
}

func TestBuildNullVsZero(t *testing.T) {
	accounts := []refdata.Account{
		account(i64p(1), "TÀI SẢN", "Tiền"),
		account(i64p(2), "TÀI SẢN", "Hàng tồn kho"),
	}
	lookup := lookupOf(map[int64]map[time.Time]float64{1: {endDate: 0}})

	tree := Build(period.StatementBalanceSheet, accounts, lookup, bsPlan())
	root := tree[0]

	zero := root.Children[0]
	require.NotNil(t, zero.End, "an explicit zero fact must not read as missing")
	assert.Equal(t, 0.0, *zero.End)

	missing := root.Children[1]
	assert.Nil(t, missing.End)
	assert.Nil(t, missing.Diff)
	assert.Nil(t, missing.Pct)
}

func TestBuildShallowestRawDepthWinsSequenceID(t *testing.T) {
	// Both normalize to the path A/B; the two-level account is the
	// authoritative id source even though it appears second.
	accounts := []refdata.Account{
		account(i64p(9), "A", "A", "B"),
		account(i64p(5), "A", "B"),
	}
	lookup := facts.Lookup{}

	tree := Build(period.StatementBalanceSheet, accounts, lookup, bsPlan())
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Children, 1)
	b := tree[0].Children[0]
	require.NotNil(t, b.SequenceID)
	assert.Equal(t, int64(5), *b.SequenceID)
}

func TestBuildBackfillsParentSequenceIDFromFirstChild(t *testing.T) {
	accounts := []refdata.Account{
		account(nil, "NGUỒN VỐN"),
		account(i64p(70), "NGUỒN VỐN", "Nợ phải trả"),
		account(i64p(95), "NGUỒN VỐN", "Vốn chủ sở hữu"),
	}
	tree := Build(period.StatementBalanceSheet, accounts, facts.Lookup{}, bsPlan())
	require.Len(t, tree, 1)
	require.NotNil(t, tree[0].SequenceID)
	assert.Equal(t, int64(70), *tree[0].SequenceID)
}

func TestBuildMarksGrandTotalRows(t *testing.T) {
	accounts := []refdata.Account{
		account(i64p(1), "TỔNG CỘNG TÀI SẢN (270 = 100 + 200)"),
		account(i64p(2), "TÀI SẢN"),
	}
	tree := Build(period.StatementBalanceSheet, accounts, facts.Lookup{}, bsPlan())
	require.Len(t, tree, 2)
	assert.True(t, tree[0].IsTotal)
	assert.False(t, tree[1].IsTotal)
}

func TestBuildKeepsFirstSeenSiblingOrder(t *testing.T) {
	accounts := []refdata.Account{
		account(i64p(1), "TÀI SẢN", "Zzz"),
		account(i64p(2), "TÀI SẢN", "Aaa"),
		account(i64p(3), "TÀI SẢN", "Zzz", "Chi tiết"),
	}
	tree := Build(period.StatementBalanceSheet, accounts, facts.Lookup{}, bsPlan())
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Children, 2)
	assert.Equal(t, "Zzz", tree[0].Children[0].Name)
	assert.Equal(t, "Aaa", tree[0].Children[1].Name)
}

func TestBuildDiffPctUsesStartMagnitude(t *testing.T) {
	accounts := []refdata.Account{account(i64p(1), "TÀI SẢN")}
	lookup := lookupOf(map[int64]map[time.Time]float64{
		1: {endDate: 50, startDate: -100},
	})
	tree := Build(period.StatementBalanceSheet, accounts, lookup, bsPlan())
	root := tree[0]
	require.NotNil(t, root.Diff)
	assert.Equal(t, 150.0, *root.Diff)
	require.NotNil(t, root.DiffPct)
	assert.Equal(t, 150.0, *root.DiffPct, "denominator is the start's absolute value")
}

func TestBuildDiffPctNilOnZeroStart(t *testing.T) {
	accounts := []refdata.Account{account(i64p(1), "TÀI SẢN")}
	lookup := lookupOf(map[int64]map[time.Time]float64{
		1: {endDate: 50, startDate: 0},
	})
	tree := Build(period.StatementBalanceSheet, accounts, lookup, bsPlan())
	require.NotNil(t, tree[0].Diff)
	assert.Nil(t, tree[0].DiffPct, "zero start must never produce Inf")
}

func TestBuildIncomeStatementBaseIsNetRevenue(t *testing.T) {
	plan := period.Plan{End: endDate, Start: period.QuarterStart(2024, period.Q2), PrevQuarter: startDate}
	accounts := []refdata.Account{
		account(i64p(1), "Doanh thu bán hàng"),
		account(i64p(3), "Doanh thu thuần"),
		account(i64p(4), "Giá vốn hàng bán"),
	}
	lookup := lookupOf(map[int64]map[time.Time]float64{
		1: {endDate: 500},
		3: {endDate: 400},
		4: {endDate: 300},
	})

	tree := Build(period.StatementIncome, accounts, lookup, plan)
	netRevenue := FindBySequenceID(tree, 3)
	require.NotNil(t, netRevenue)
	require.NotNil(t, netRevenue.Pct)
	assert.Equal(t, 100.0, *netRevenue.Pct)

	cogs := FindBySequenceID(tree, 4)
	require.NotNil(t, cogs.Pct)
	assert.Equal(t, 75.0, *cogs.Pct)
}

func TestBuildNoBaseMeansNoPercentages(t *testing.T) {
	accounts := []refdata.Account{account(i64p(7), "NGUỒN VỐN")}
	lookup := lookupOf(map[int64]map[time.Time]float64{7: {endDate: 10}})

	// No root matches the assets pattern, so the first root is the base;
	// it has a value, so pct resolves against it.
	tree := Build(period.StatementBalanceSheet, accounts, lookup, bsPlan())
	require.NotNil(t, tree[0].Pct)
	assert.Equal(t, 100.0, *tree[0].Pct)

	// An income tree without a net-revenue line has no base at all.
	tree = Build(period.StatementIncome, accounts, lookup, bsPlan())
	assert.Nil(t, tree[0].Pct)
}

func TestBuildCurrentQuarterValue(t *testing.T) {
	plan := period.Plan{End: endDate, PrevQuarter: startDate}
	accounts := []refdata.Account{
		account(i64p(1), "Doanh thu thuần"),
		account(i64p(2), "Chi phí khác"),
	}
	lookup := lookupOf(map[int64]map[time.Time]float64{
		1: {endDate: 900, startDate: 600},
		2: {endDate: 50},
	})

	tree := Build(period.StatementIncome, accounts, lookup, plan)
	withPrev := tree[0]
	require.NotNil(t, withPrev.CurrentQuarterValue)
	assert.Equal(t, 300.0, *withPrev.CurrentQuarterValue)

	withoutPrev := tree[1]
	require.NotNil(t, withoutPrev.CurrentQuarterValue)
	assert.Equal(t, 50.0, *withoutPrev.CurrentQuarterValue, "missing previous quarter keeps the cumulative figure")
}

func TestBuildMergesAccountsSharingAPath(t *testing.T) {
	accounts := []refdata.Account{
		account(i64p(1), "TÀI SẢN", "Tiền"),
		account(i64p(2), "tài sản", "TIỀN"),
	}
	lookup := lookupOf(map[int64]map[time.Time]float64{
		1: {endDate: 3},
		2: {endDate: 4},
	})

	tree := Build(period.StatementBalanceSheet, accounts, lookup, bsPlan())
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Children, 1)
	require.NotNil(t, tree[0].Children[0].End)
	assert.Equal(t, 7.0, *tree[0].Children[0].End)
}
