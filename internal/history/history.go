// Package history is the single entry point to the transaction ledger.
//
// A TranxHistory owns the store handle, the active filter, the extrema and
// the results for that filter guarded by a staleness flag. Results for
// filters seen earlier are kept in a bounded cache that every write purges. Every public method holds one
// mutex for its whole duration, so operations never interleave. Build one
// per process and share it.
package history

import (
	"context"
	"fmt"
	"sync"

	"tranxledger/internal/cache"
	"tranxledger/internal/core"
	"tranxledger/internal/query"
	"tranxledger/internal/storage"
)

// Store is the backing ledger store.
type Store interface {
	Insert(ctx context.Context, t core.Tranx) (int64, error)
	QueryFiltered(ctx context.Context, p query.Predicate) ([]core.Tranx, error)
	ScanExtrema(ctx context.Context) (core.Extrema, bool, error)
	Count(ctx context.Context) (int64, error)
	Close() error
}

// StoreFactory opens the store on first initialization.
type StoreFactory func(ctx context.Context) (Store, error)

var _ Store = (*storage.SQLiteRepository)(nil)

const defaultCachedResults = 16

type TranxHistory struct {
	mu sync.Mutex

	compiler *query.Compiler
	store    Store
	seen     cache.Cache[[]core.Tranx]

	filter  core.TranxFilter
	stale   bool
	results []core.Tranx

	extrema    core.Extrema
	hasExtrema bool
}

type Option func(*TranxHistory)

// WithResultCache replaces the cache of results for earlier filters. A nil
// cache disables it.
func WithResultCache(c cache.Cache[[]core.Tranx]) Option {
	return func(h *TranxHistory) {
		h.seen = c
	}
}

func New(opts ...Option) *TranxHistory {
	h := &TranxHistory{
		compiler: query.NewCompiler(),
		seen:     cache.NewLRU[[]core.Tranx](defaultCachedResults, 0),
		stale:    true,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Init opens the store and seeds the extrema with one full scan. Later
// calls return nil without touching the store. If the scan fails the store
// is closed and the history stays uninitialized.
func (h *TranxHistory) Init(ctx context.Context, open StoreFactory) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.store != nil {
		return nil
	}

	store, err := open(ctx)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	extrema, ok, err := store.ScanExtrema(ctx)
	if err != nil {
		store.Close()
		return fmt.Errorf("scan extrema: %w", err)
	}

	h.store = store
	h.extrema, h.hasExtrema = extrema, ok
	h.stale = true
	return nil
}

// InitFromImage is Init on a SQLite store seeded from a pre-built database
// image when dbPath does not exist yet. Like Init it only acts on the first
// call.
func (h *TranxHistory) InitFromImage(ctx context.Context, imagePath, dbPath string) error {
	return h.Init(ctx, func(ctx context.Context) (Store, error) {
		if _, err := storage.SeedImage(imagePath, dbPath); err != nil {
			return nil, err
		}
		return storage.NewSQLiteRepository(ctx, dbPath)
	})
}

// SetFilter replaces the active filter with a copy of f, time bounds
// truncated to milliseconds. An equal filter is a no-op and keeps the
// current results.
func (h *TranxHistory) SetFilter(f core.TranxFilter) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.store == nil {
		return core.ErrNotInitialized
	}
	f = f.Normalize()
	if err := f.Validate(); err != nil {
		return err
	}
	if f.Equal(h.filter) {
		return nil
	}
	h.filter = f
	h.stale = true
	return nil
}

// Filter returns a copy of the active filter.
func (h *TranxHistory) Filter() (core.TranxFilter, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.store == nil {
		return core.TranxFilter{}, core.ErrNotInitialized
	}
	return h.filter.Clone(), nil
}

// NewTransaction records one ledger entry. The extrema are widened by
// direct comparison; they and the cache only change once the insert has
// succeeded.
func (h *TranxHistory) NewTransaction(
	ctx context.Context,
	tid string,
	purpose core.Purpose,
	amount core.Amount,
	direction core.Direction,
	moment core.Moment,
) (core.Tranx, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.store == nil {
		return core.Tranx{}, core.ErrNotInitialized
	}

	t := core.Tranx{
		TID:       tid,
		Moment:    moment,
		Purpose:   purpose,
		Amount:    amount,
		Direction: direction,
	}
	if err := t.Validate(); err != nil {
		return core.Tranx{}, err
	}

	next := h.extrema.Include(t, h.hasExtrema)

	id, err := h.store.Insert(ctx, t)
	if err != nil {
		return core.Tranx{}, fmt.Errorf("insert transaction: %w", err)
	}
	t.ID = id

	h.extrema, h.hasExtrema = next, true
	h.stale = true
	if h.seen != nil {
		h.seen.Purge()
	}
	return t, nil
}

// GetHistory returns the entries matching the active filter. Fresh results,
// and results cached for the same filter since the last write, are returned
// without touching the store. The slice is
// shared between calls and must not be modified.
func (h *TranxHistory) GetHistory(ctx context.Context) ([]core.Tranx, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.store == nil {
		return nil, core.ErrNotInitialized
	}
	if !h.stale {
		return h.results, nil
	}

	key := h.filter.Key()
	if h.seen != nil {
		if results, ok := h.seen.Get(key); ok {
			h.results = results
			h.stale = false
			return h.results, nil
		}
	}

	p, err := h.compiler.Compile(h.filter)
	if err != nil {
		return nil, err
	}
	results, err := h.store.QueryFiltered(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	if results == nil {
		results = []core.Tranx{}
	}

	if h.seen != nil {
		h.seen.Set(key, results)
	}
	h.results = results
	h.stale = false
	return h.results, nil
}

// ClearHistory resets the filter to match everything. Extrema are kept.
func (h *TranxHistory) ClearHistory() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.store == nil {
		return core.ErrNotInitialized
	}
	h.filter = core.TranxFilter{}
	h.stale = true
	return nil
}

// Extrema returns the moment and amount bounds over the whole ledger. ok is
// false while the ledger is empty.
func (h *TranxHistory) Extrema() (e core.Extrema, ok bool, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.store == nil {
		return core.Extrema{}, false, core.ErrNotInitialized
	}
	return h.extrema, h.hasExtrema, nil
}

// Count returns the number of entries in the whole ledger, ignoring the
// active filter.
func (h *TranxHistory) Count(ctx context.Context) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.store == nil {
		return 0, core.ErrNotInitialized
	}
	n, err := h.store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

// Close releases the store. The history cannot be initialized again.
func (h *TranxHistory) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.store == nil {
		return nil
	}
	return h.store.Close()
}
