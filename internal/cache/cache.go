// Package cache defines the store interface the feature-info handler
// memoizes upstream responses behind.
package cache

type Interface interface {
	// Get returns a copy of the stored value, or false on miss. Expired
	// entries are misses even before the sweep physically removes them.
	Get(key string) ([]byte, bool)

	// Put stores a copy of val under key, overwriting any previous entry.
	Put(key string, val []byte)
}
