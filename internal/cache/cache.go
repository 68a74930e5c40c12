// Package cache provides an LRU cache for decoded descriptor columns.
//
// The out-of-core matrix decodes columns from its backing file on
// demand; the cache keeps hot columns resident so repeated fitness
// evaluations do not re-read and re-decode the same data.
package cache

// Key identifies a cached column. Path is the backing file, Col the
// zero-based column index within it.
type Key struct {
	Path string
	Col  uint64
}

// ColumnCache is a cache for immutable decoded columns.
// Returned slices must be treated as read-only.
type ColumnCache interface {
	// Get returns a cached column. ok=false if missing.
	Get(key Key) (col []float64, ok bool)
	// Set caches a column. The caller must treat col as immutable afterwards.
	Set(key Key, col []float64)
	// Invalidate removes entries matching the predicate.
	Invalidate(predicate func(key Key) bool)
	// Stats returns hit/miss counters.
	Stats() (hits, misses int64)
}
