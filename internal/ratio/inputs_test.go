package ratio

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-vn/finsight/internal/facts"
	"github.com/finsight-vn/finsight/internal/period"
)

type fakeResolver struct {
	labels map[string][]int64
	err    error
}

func (f *fakeResolver) ResolveIndicator(ctx context.Context, stmt period.Statement, label string) ([]int64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.labels[label], nil
}

func TestResolveAccountSetsMergesResolvedAndFixedRows(t *testing.T) {
	resolver := &fakeResolver{labels: map[string][]int64{
		balanceSheetIndicators[InputTotalAssets]: {270, 271},
		balanceSheetIndicators[InputInventory]:   {140},
	}}

	sets, err := ResolveAccountSets(context.Background(), resolver)
	require.NoError(t, err)

	assert.Equal(t, []int64{270, 271}, sets[InputTotalAssets])
	assert.Equal(t, []int64{140}, sets[InputInventory])
	// Unresolvable labels stay present with no accounts.
	assert.Empty(t, sets[InputEquity])
	// Fixed income-statement rows are carried as-is.
	assert.Equal(t, []int64{19}, sets[InputProfitAfterTax])
	assert.Equal(t, []int64{3}, sets[InputNetRevenue])
}

func TestResolveAccountSetsPropagatesResolverError(t *testing.T) {
	resolver := &fakeResolver{err: errors.New("catalog offline")}

	_, err := ResolveAccountSets(context.Background(), resolver)
	require.Error(t, err)
}

func TestAccountSetsAccountIDsDeduplicatesAndSorts(t *testing.T) {
	sets := AccountSets{
		InputTotalAssets:    {270, 140},
		InputInventory:      {140},
		InputProfitAfterTax: {19},
	}

	assert.Equal(t, []int64{19, 140, 270}, sets.AccountIDs())
}

func TestTabulateSumsPerDateAndKeepsAbsencesDistinct(t *testing.T) {
	d1 := period.QuarterStart(2025, period.Q1)
	d2 := period.QuarterStart(2025, period.Q2)

	lookup := facts.Lookup{
		{AccountID: 270, Date: d1}: 700,
		{AccountID: 271, Date: d1}: 300,
		{AccountID: 19, Date: d1}:  50,
		{AccountID: 270, Date: d2}: 1200,
	}
	sets := AccountSets{
		InputTotalAssets:    {270, 271},
		InputProfitAfterTax: {19},
		InputInventory:      {140},
	}

	table := Tabulate(lookup, sets, []time.Time{d1, d2})

	require.Contains(t, table, d1)
	assert.Equal(t, 1000.0, table[d1][InputTotalAssets])
	assert.Equal(t, 50.0, table[d1][InputProfitAfterTax])
	// No inventory facts at all: the input is absent, not zero.
	_, ok := table[d1][InputInventory]
	assert.False(t, ok)

	require.Contains(t, table, d2)
	assert.Equal(t, 1200.0, table[d2][InputTotalAssets])
	_, ok = table[d2][InputProfitAfterTax]
	assert.False(t, ok)
}

func TestTabulateSkipsDatesWithoutFacts(t *testing.T) {
	table := Tabulate(facts.Lookup{}, AccountSets{InputTotalAssets: {270}}, []time.Time{period.QuarterStart(2025, period.Q1)})
	assert.Empty(t, table)
}
