package memory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tranxledger/internal/core"
	"tranxledger/internal/query"
	"tranxledger/internal/storage"
)

func sample() []core.Tranx {
	mk := func(tid string, value, millis int64, d core.Direction, p core.Purpose) core.Tranx {
		return core.Tranx{
			TID:       tid,
			Moment:    core.MomentFromEpochMillis(millis),
			Amount:    core.Amount{Currency: "EUR", Value: value},
			Direction: d,
			Purpose:   p,
		}
	}
	return []core.Tranx{
		mk("a", 10, 3000, core.Incoming, core.PurposeWithdrawal),
		mk("b", 2, 1000, core.Outgoing, core.PurposePayment),
		mk("c", 7, 1000, core.Outgoing, core.PurposeNone),
		mk("d", 7, 2000, core.Incoming, core.PurposeRefund),
	}
}

func TestStoreInsertAndExtrema(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, ok, err := s.ScanExtrema(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	for i, tx := range sample() {
		id, err := s.Insert(ctx, tx)
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), id)
	}

	e, ok, err := s.ScanExtrema(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(1000), e.MinMoment.EpochMillis())
	assert.Equal(t, int64(3000), e.MaxMoment.EpochMillis())
	assert.Equal(t, int64(2), e.MinAmount.Value)
	assert.Equal(t, int64(10), e.MaxAmount.Value)
}

func TestStoreRejectsInvalidTranx(t *testing.T) {
	_, err := New().Insert(context.Background(), core.Tranx{TID: "x"})
	var storeErr *core.StoreError
	assert.ErrorAs(t, err, &storeErr)
}

func TestStoreClosed(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Close())

	var storeErr *core.StoreError
	_, err := s.QueryFiltered(ctx, query.Predicate{})
	assert.ErrorAs(t, err, &storeErr)

	_, err = s.Insert(ctx, core.Tranx{TID: "late"})
	assert.ErrorAs(t, err, &storeErr)

	_, _, err = s.ScanExtrema(ctx)
	assert.ErrorAs(t, err, &storeErr)

	_, err = s.Count(ctx)
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "count", storeErr.Op)
}

// The in-memory store and SQLite must agree on every predicate.
func TestStoreAgreesWithSQLite(t *testing.T) {
	ctx := context.Background()
	mem := New()
	sqlite, err := storage.NewSQLiteRepository(ctx, filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	defer sqlite.Close()

	for _, tx := range sample() {
		_, err := mem.Insert(ctx, tx)
		require.NoError(t, err)
		_, err = sqlite.Insert(ctx, tx)
		require.NoError(t, err)
	}

	filters := []core.TranxFilter{
		{},
		{Descending: true},
		{Direction: core.Ptr(core.Outgoing)},
		{Purpose: core.Ptr(core.PurposeNone)},
		{Purpose: core.Ptr(core.PurposeRefund)},
		{From: core.Ptr(core.MomentFromEpochMillis(1500))},
		{To: core.Ptr(core.MomentFromEpochMillis(2000)), Descending: true},
		{MinAmount: &core.Amount{Currency: "EUR", Value: 7}},
		{MinAmount: &core.Amount{Value: 3}, MaxAmount: &core.Amount{Value: 9}},
		{MaxAmount: &core.Amount{Currency: "USD", Value: 100}},
	}
	compiler := query.NewCompiler()
	for _, f := range filters {
		t.Run(f.Key(), func(t *testing.T) {
			p, err := compiler.Compile(f)
			require.NoError(t, err)

			want, err := sqlite.QueryFiltered(ctx, p)
			require.NoError(t, err)
			got, err := mem.QueryFiltered(ctx, p)
			require.NoError(t, err)

			assert.Equal(t, want, got)
		})
	}

	wantExtrema, _, err := sqlite.ScanExtrema(ctx)
	require.NoError(t, err)
	gotExtrema, _, err := mem.ScanExtrema(ctx)
	require.NoError(t, err)
	assert.Equal(t, wantExtrema, gotExtrema)
}
