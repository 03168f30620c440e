package statement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-vn/finsight/internal/period"
)

func TestViewInstallsCurrentEpoch(t *testing.T) {
	v := NewView(nil)
	epoch := v.Begin()

	report := &Report{Statement: period.StatementBalanceSheet}
	require.True(t, v.Install(epoch, report))
	assert.Same(t, report, v.Current())
}

func TestViewRejectsStaleInstall(t *testing.T) {
	v := NewView(nil)

	stale := v.Begin()
	current := v.Begin()

	superseded := &Report{Statement: period.StatementBalanceSheet}
	assert.False(t, v.Install(stale, superseded))
	assert.Nil(t, v.Current())

	fresh := &Report{Statement: period.StatementIncome}
	require.True(t, v.Install(current, fresh))
	assert.Same(t, fresh, v.Current())
}

func TestViewLateInstallCannotOverwriteNewerReport(t *testing.T) {
	v := NewView(nil)

	first := v.Begin()
	second := v.Begin()

	newer := &Report{Statement: period.StatementCashFlow}
	require.True(t, v.Install(second, newer))

	// The slow first cycle finishes after the second already installed.
	assert.False(t, v.Install(first, &Report{Statement: period.StatementBalanceSheet}))
	assert.Same(t, newer, v.Current())
}

func TestViewInvalidateOnlyClearsCurrentEpoch(t *testing.T) {
	v := NewView(nil)

	epoch := v.Begin()
	report := &Report{Statement: period.StatementBalanceSheet}
	require.True(t, v.Install(epoch, report))

	// A stale invalidation is ignored.
	v.Invalidate(epoch - 1)
	assert.Same(t, report, v.Current())

	v.Invalidate(epoch)
	assert.Nil(t, v.Current())
}
