package refdata

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-vn/finsight/internal/period"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute), mr
}

func TestCacheFetchJSONPopulatesAndReuses(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	calls := 0
	loader := func(context.Context) (interface{}, error) {
		calls++
		return []int{2024, 2023}, nil
	}

	key, err := cache.BuildKey(ctx, keyYears())
	require.NoError(t, err)

	var years []int
	require.NoError(t, cache.FetchJSON(ctx, key, &years, loader))
	assert.Equal(t, []int{2024, 2023}, years)
	assert.Equal(t, 1, calls)

	years = nil
	require.NoError(t, cache.FetchJSON(ctx, key, &years, loader))
	assert.Equal(t, []int{2024, 2023}, years)
	assert.Equal(t, 1, calls, "second fetch must hit the cache")
}

func TestCacheBumpInvalidatesKeys(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	before, err := cache.BuildKey(ctx, keyUnits())
	require.NoError(t, err)

	require.NoError(t, cache.Bump(ctx))

	after, err := cache.BuildKey(ctx, keyUnits())
	require.NoError(t, err)
	assert.NotEqual(t, before, after, "bump must rotate the key version")
}

func TestCacheNilClientFallsThroughToLoader(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	calls := 0
	loader := func(context.Context) (interface{}, error) {
		calls++
		return []period.AnalysisVersion{{Code: "PVN-P01", DisplayName: "Hợp nhất trước kiểm toán"}}, nil
	}

	key, err := cache.BuildKey(ctx, keyVersions())
	require.NoError(t, err)

	var versions []period.AnalysisVersion
	require.NoError(t, cache.FetchJSON(ctx, key, &versions, loader))
	require.NoError(t, cache.FetchJSON(ctx, key, &versions, loader))
	assert.Equal(t, 2, calls, "without redis every fetch loads")
	require.Len(t, versions, 1)
	assert.Equal(t, "PVN-P01", versions[0].Code)
}

type fakeStore struct {
	accounts []Account
	versions []period.AnalysisVersion
	groups   []UnitGroup
	years    []int

	accountCalls int
}

func (f *fakeStore) Accounts(_ context.Context, _ period.Statement) ([]Account, error) {
	f.accountCalls++
	return f.accounts, nil
}

func (f *fakeStore) AnalysisVersions(context.Context) ([]period.AnalysisVersion, error) {
	return f.versions, nil
}

func (f *fakeStore) UnitHierarchy(context.Context) ([]UnitGroup, error) {
	return f.groups, nil
}

func (f *fakeStore) AvailableYears(context.Context) ([]int, error) {
	return f.years, nil
}

func TestServiceAccountsCachesAcrossCalls(t *testing.T) {
	cache, _ := newTestCache(t)
	store := &fakeStore{accounts: []Account{acct(i64p(3), "TÀI SẢN", "Tiền")}}
	svc := NewService(store, cache, nil)
	ctx := context.Background()

	first, err := svc.Accounts(ctx, period.StatementBalanceSheet)
	require.NoError(t, err)
	second, err := svc.Accounts(ctx, period.StatementBalanceSheet)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.accountCalls)
}

func TestServiceResolveIndicator(t *testing.T) {
	store := &fakeStore{accounts: []Account{
		acct(i64p(1), "TÀI SẢN", "Tiền và các khoản tương đương tiền"),
		acct(i64p(2), "TÀI SẢN", "Hàng tồn kho"),
	}}
	svc := NewService(store, nil, nil)

	ids, err := svc.ResolveIndicator(context.Background(), period.StatementBalanceSheet, "tiền và các khoản tương đương tiền")
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids)

	ids, err = svc.ResolveIndicator(context.Background(), period.StatementBalanceSheet, "Không tồn tại")
	require.NoError(t, err)
	assert.Empty(t, ids)
}
