// Package cache holds bounded in-process caches. The ledger keeps recent
// query results in one, keyed by filter, and purges it on every write.
package cache

// Cache is a keyed store of values that may drop entries at any time.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	// Purge drops every entry.
	Purge()
	Len() int
}

var _ Cache[int] = (*LRU[int])(nil)
