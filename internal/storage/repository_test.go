package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tranxledger/internal/core"
	"tranxledger/internal/query"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(context.Background(), filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func tranx(tid string, value int64, millis int64, d core.Direction) core.Tranx {
	return core.Tranx{
		TID:       tid,
		Moment:    core.MomentFromEpochMillis(millis),
		Amount:    core.Amount{Currency: "EUR", Value: value},
		Direction: d,
	}
}

func compile(t *testing.T, f core.TranxFilter) query.Predicate {
	t.Helper()
	p, err := query.NewCompiler().Compile(f)
	require.NoError(t, err)
	return p
}

func TestInsertAssignsIncreasingIDs(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	var last int64
	for i := 0; i < 5; i++ {
		id, err := repo.Insert(ctx, tranx("dup", 1, int64(i), core.Incoming))
		require.NoError(t, err)
		assert.Greater(t, id, last)
		last = id
	}

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n, "duplicate tids are accepted")
}

func TestScanExtremaEmpty(t *testing.T) {
	repo := newTestRepo(t)

	_, ok, err := repo.ScanExtrema(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestScanExtrema(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Insert(ctx, tranx("a", 100, 1000, core.Incoming))
	require.NoError(t, err)
	_, err = repo.Insert(ctx, tranx("b", 500, 5000, core.Outgoing))
	require.NoError(t, err)

	e, ok, err := repo.ScanExtrema(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, int64(1000), e.MinMoment.EpochMillis())
	assert.Equal(t, int64(5000), e.MaxMoment.EpochMillis())
	assert.Equal(t, core.Amount{Currency: "EUR", Value: 100}.Scalar(), e.MinAmount.Scalar())
	assert.Equal(t, core.Amount{Currency: "EUR", Value: 500}.Scalar(), e.MaxAmount.Scalar())
}

func TestQueryFilteredRoundTripsRows(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	in := core.Tranx{
		TID:       "T-42",
		Moment:    core.MomentFromEpochMillis(1_700_000_000_000),
		Purpose:   core.PurposeRefund,
		Amount:    core.Amount{Currency: "KUDOS", Value: 3, Fraction: 14_000_000, Spec: `{"alt_unit_names":{"0":"K"}}`},
		Direction: core.Incoming,
	}
	id, err := repo.Insert(ctx, in)
	require.NoError(t, err)

	got, err := repo.QueryFiltered(ctx, compile(t, core.TranxFilter{}))
	require.NoError(t, err)
	require.Len(t, got, 1)

	in.ID = id
	assert.Equal(t, in, got[0])
}

func TestQueryFilteredOrderingAndConstraints(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rows := []core.Tranx{
		tranx("late", 5, 3000, core.Incoming),
		tranx("early", 1, 1000, core.Outgoing),
		tranx("mid", 3, 2000, core.Incoming),
	}
	rows[2].Purpose = core.PurposeTip
	for _, r := range rows {
		_, err := repo.Insert(ctx, r)
		require.NoError(t, err)
	}

	tids := func(ts []core.Tranx) []string {
		out := make([]string, len(ts))
		for i, t := range ts {
			out[i] = t.TID
		}
		return out
	}

	all, err := repo.QueryFiltered(ctx, compile(t, core.TranxFilter{}))
	require.NoError(t, err)
	assert.Equal(t, []string{"early", "mid", "late"}, tids(all))

	desc, err := repo.QueryFiltered(ctx, compile(t, core.TranxFilter{Descending: true}))
	require.NoError(t, err)
	assert.Equal(t, []string{"late", "mid", "early"}, tids(desc))

	incoming, err := repo.QueryFiltered(ctx, compile(t, core.TranxFilter{Direction: core.Ptr(core.Incoming)}))
	require.NoError(t, err)
	assert.Equal(t, []string{"mid", "late"}, tids(incoming))

	tagged, err := repo.QueryFiltered(ctx, compile(t, core.TranxFilter{Purpose: core.Ptr(core.PurposeTip)}))
	require.NoError(t, err)
	assert.Equal(t, []string{"mid"}, tids(tagged))

	untagged, err := repo.QueryFiltered(ctx, compile(t, core.TranxFilter{Purpose: core.Ptr(core.PurposeNone)}))
	require.NoError(t, err)
	assert.Equal(t, []string{"early", "late"}, tids(untagged))

	window, err := repo.QueryFiltered(ctx, compile(t, core.TranxFilter{
		From: core.Ptr(core.MomentFromEpochMillis(1000)),
		To:   core.Ptr(core.MomentFromEpochMillis(2000)),
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"early", "mid"}, tids(window), "time bounds are inclusive")

	amounts, err := repo.QueryFiltered(ctx, compile(t, core.TranxFilter{
		MinAmount: &core.Amount{Currency: "EUR", Value: 3},
		MaxAmount: &core.Amount{Currency: "EUR", Value: 5},
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"mid", "late"}, tids(amounts), "amount bounds are inclusive")

	none, err := repo.QueryFiltered(ctx, compile(t, core.TranxFilter{MinAmount: &core.Amount{Currency: "USD"}}))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStoreErrorsAreTyped(t *testing.T) {
	repo := newTestRepo(t)
	require.NoError(t, repo.Close())

	_, err := repo.Insert(context.Background(), tranx("x", 1, 1, core.Incoming))
	var storeErr *core.StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, "insert", storeErr.Op)
}

func TestInsertRejectsConstraintViolation(t *testing.T) {
	repo := newTestRepo(t)

	bad := tranx("x", 1, 1, core.Incoming)
	bad.Amount.Currency = ""
	_, err := repo.Insert(context.Background(), bad)

	var storeErr *core.StoreError
	assert.ErrorAs(t, err, &storeErr)
}

func TestCopyImageSeedsStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "fixture.db")

	seed, err := NewSQLiteRepository(ctx, imagePath)
	require.NoError(t, err)
	_, err = seed.Insert(ctx, tranx("seeded", 7, 7000, core.Incoming))
	require.NoError(t, err)
	require.NoError(t, seed.Close())

	dbPath := filepath.Join(dir, "live", "ledger.db")
	require.NoError(t, CopyImage(imagePath, dbPath))

	repo, err := NewSQLiteRepository(ctx, dbPath)
	require.NoError(t, err)
	defer repo.Close()

	got, err := repo.QueryFiltered(ctx, compile(t, core.TranxFilter{}))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "seeded", got[0].TID)

	err = CopyImage(filepath.Join(dir, "missing.db"), dbPath)
	var storeErr *core.StoreError
	assert.ErrorAs(t, err, &storeErr)
}

func TestSeedImageKeepsExistingLedger(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "fixture.db")

	seed, err := NewSQLiteRepository(ctx, imagePath)
	require.NoError(t, err)
	_, err = seed.Insert(ctx, tranx("seeded", 7, 7000, core.Incoming))
	require.NoError(t, err)
	require.NoError(t, seed.Close())

	dbPath := filepath.Join(dir, "live", "ledger.db")
	copied, err := SeedImage(imagePath, dbPath)
	require.NoError(t, err)
	assert.True(t, copied)

	repo, err := NewSQLiteRepository(ctx, dbPath)
	require.NoError(t, err)
	_, err = repo.Insert(ctx, tranx("live", 9, 9000, core.Outgoing))
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	copied, err = SeedImage(imagePath, dbPath)
	require.NoError(t, err)
	assert.False(t, copied, "existing database is left alone")

	repo, err = NewSQLiteRepository(ctx, dbPath)
	require.NoError(t, err)
	defer repo.Close()
	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
