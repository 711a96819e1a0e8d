// Package memory is a volatile ledger store. It evaluates compiled
// predicates directly instead of rendering them to SQL.
package memory

import (
	"context"
	"sort"
	"sync"

	"tranxledger/internal/core"
	"tranxledger/internal/query"
)

type Store struct {
	mu     sync.Mutex
	items  []core.Tranx
	nextID int64
	closed bool
}

func New() *Store {
	return &Store{nextID: 1}
}

// Insert stores t and returns its new id. Moments are kept in UTC at
// millisecond precision, as the SQLite store does.
func (s *Store) Insert(_ context.Context, t core.Tranx) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, &core.StoreError{Op: "insert", Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, &core.StoreError{Op: "insert", Err: errClosed}
	}
	t.ID = s.nextID
	t.Moment = t.Moment.UTC()
	s.nextID++
	s.items = append(s.items, t)
	return t.ID, nil
}

// QueryFiltered returns a copy of the entries matching p in p's order.
func (s *Store) QueryFiltered(_ context.Context, p query.Predicate) ([]core.Tranx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, &core.StoreError{Op: "query", Err: errClosed}
	}

	var out []core.Tranx
	for _, t := range s.items {
		if p.Match(t) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if p.Descending {
			a, b = b, a
		}
		if a.Moment.EpochMillis() != b.Moment.EpochMillis() {
			return a.Moment.EpochMillis() < b.Moment.EpochMillis()
		}
		return a.ID < b.ID
	})
	return out, nil
}

// ScanExtrema walks every entry in insertion order.
func (s *Store) ScanExtrema(_ context.Context) (core.Extrema, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return core.Extrema{}, false, &core.StoreError{Op: "scan extrema", Err: errClosed}
	}

	var (
		e  core.Extrema
		ok bool
	)
	for _, t := range s.items {
		e = e.Include(t, ok)
		ok = true
	}
	return e, ok, nil
}

// Count returns the number of stored entries.
func (s *Store) Count(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, &core.StoreError{Op: "count", Err: errClosed}
	}
	return int64(len(s.items)), nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
