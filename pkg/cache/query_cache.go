// pkg/cache/query_cache.go
package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"sync"
	"time"

	"pivotsql/pkg/sqlvalue"
)

// DefaultQueryCacheCapacity is the default number of query results to cache
const DefaultQueryCacheCapacity = 1000

// CachedResult holds the cached result of a query
type CachedResult struct {
	Columns   []string
	Rows      [][]sqlvalue.Scalar
	Tables    []string // Tables this result depends on (for invalidation)
	CreatedAt time.Time
	Size      int64 // Estimated size in bytes
}

// QueryCacheStats holds statistics about the query cache
type QueryCacheStats struct {
	Hits     int64
	Misses   int64
	Entries  int
	Capacity int
	HitRate  float64
}

// queryCacheEntry holds a cached result and its LRU element
type queryCacheEntry struct {
	key     string
	result  *CachedResult
	element *list.Element
}

// QueryCache is an LRU cache for query results
type QueryCache struct {
	mu           sync.RWMutex
	capacity     int
	cache        map[string]*queryCacheEntry
	lru          *list.List
	tableIndex   map[string]map[string]struct{} // table -> set of cache keys
	hits         int64
	misses       int64
	ttl          time.Duration
	memoryBudget *MemoryBudget
}

// NewQueryCache creates a new query cache with the specified capacity.
// If capacity is 0 or negative, DefaultQueryCacheCapacity is used.
func NewQueryCache(capacity int) *QueryCache {
	return NewQueryCacheWithBudget(capacity, nil)
}

// NewQueryCacheWithBudget creates a new query cache with memory budget tracking.
func NewQueryCacheWithBudget(capacity int, budget *MemoryBudget) *QueryCache {
	if capacity <= 0 {
		capacity = DefaultQueryCacheCapacity
	}

	qc := &QueryCache{
		capacity:     capacity,
		cache:        make(map[string]*queryCacheEntry),
		lru:          list.New(),
		tableIndex:   make(map[string]map[string]struct{}),
		memoryBudget: budget,
	}

	if budget != nil {
		budget.RegisterComponent("query_cache")
	}

	return qc
}

// GenerateCacheKey creates a unique cache key from SQL and bind parameters.
func GenerateCacheKey(sql string, params []sqlvalue.Scalar) string {
	h := sha256.New()

	h.Write([]byte(sql))
	h.Write([]byte{0})

	for _, param := range params {
		h.Write([]byte{byte(param.Kind())})

		switch param.Kind() {
		case sqlvalue.KindNull:
			// Nothing to write
		case sqlvalue.KindBoolean:
			if param.Bool() {
				h.Write([]byte{1})
			} else {
				h.Write([]byte{0})
			}
		case sqlvalue.KindInt64:
			buf := make([]byte, 8)
			binary.LittleEndian.PutUint64(buf, uint64(param.Int()))
			h.Write(buf)
		case sqlvalue.KindFloat64:
			buf := make([]byte, 8)
			binary.LittleEndian.PutUint64(buf, math.Float64bits(param.Float()))
			h.Write(buf)
		case sqlvalue.KindUtf8:
			h.Write([]byte(param.Text()))
		case sqlvalue.KindDate, sqlvalue.KindTimestamp, sqlvalue.KindTime:
			buf := make([]byte, 8)
			binary.LittleEndian.PutUint64(buf, uint64(param.Days()))
			h.Write(buf)
			binary.LittleEndian.PutUint64(buf, uint64(param.Micros()))
			h.Write(buf)
		case sqlvalue.KindInterval:
			h.Write([]byte(param.String()))
		}
	}

	return hex.EncodeToString(h.Sum(nil))
}

// Capacity returns the cache capacity
func (qc *QueryCache) Capacity() int {
	qc.mu.RLock()
	defer qc.mu.RUnlock()
	return qc.capacity
}

// SetCapacity changes the cache capacity, evicting entries if necessary
func (qc *QueryCache) SetCapacity(capacity int) {
	qc.mu.Lock()
	defer qc.mu.Unlock()

	qc.capacity = capacity
	qc.evictIfNeeded()
}

// SetTTL sets the time-to-live for cache entries.
// Entries older than TTL are considered expired.
func (qc *QueryCache) SetTTL(ttl time.Duration) {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	qc.ttl = ttl
}

// Put adds or updates a cached result
func (qc *QueryCache) Put(key string, columns []string, rows [][]sqlvalue.Scalar, tables []string) {
	qc.mu.Lock()
	defer qc.mu.Unlock()

	size := qc.estimateSize(columns, rows)

	result := &CachedResult{
		Columns:   columns,
		Rows:      rows,
		Tables:    tables,
		CreatedAt: time.Now(),
		Size:      size,
	}

	if entry, ok := qc.cache[key]; ok {
		qc.releaseMemory(entry.result.Size)
		entry.result = result
		qc.lru.MoveToFront(entry.element)
		qc.trackMemory(key, size)
		return
	}

	elem := qc.lru.PushFront(key)
	qc.cache[key] = &queryCacheEntry{
		key:     key,
		result:  result,
		element: elem,
	}

	for _, table := range tables {
		if qc.tableIndex[table] == nil {
			qc.tableIndex[table] = make(map[string]struct{})
		}
		qc.tableIndex[table][key] = struct{}{}
	}

	qc.trackMemory(key, size)
	qc.evictIfNeeded()
}

// Get retrieves a cached result
func (qc *QueryCache) Get(key string) (*CachedResult, bool) {
	qc.mu.Lock()
	defer qc.mu.Unlock()

	entry, ok := qc.cache[key]
	if !ok {
		qc.misses++
		return nil, false
	}

	if qc.ttl > 0 && time.Since(entry.result.CreatedAt) > qc.ttl {
		qc.removeEntry(key)
		qc.misses++
		return nil, false
	}

	qc.lru.MoveToFront(entry.element)
	qc.hits++

	return entry.result, true
}

// InvalidateTable removes all cached results that depend on the specified
// table. sqlexec's INSERT/UPDATE/DELETE/DROP TABLE paths call this after a
// successful mutation so a stale cached SELECT is never served.
func (qc *QueryCache) InvalidateTable(table string) {
	qc.mu.Lock()
	defer qc.mu.Unlock()

	keys, ok := qc.tableIndex[table]
	if !ok {
		return
	}

	for key := range keys {
		qc.removeEntry(key)
	}

	delete(qc.tableIndex, table)
}

// InvalidateAll clears the entire cache
func (qc *QueryCache) InvalidateAll() {
	qc.mu.Lock()
	defer qc.mu.Unlock()

	for _, entry := range qc.cache {
		qc.releaseMemory(entry.result.Size)
	}

	qc.cache = make(map[string]*queryCacheEntry)
	qc.lru = list.New()
	qc.tableIndex = make(map[string]map[string]struct{})
}

// Stats returns cache statistics
func (qc *QueryCache) Stats() QueryCacheStats {
	qc.mu.RLock()
	defer qc.mu.RUnlock()

	total := qc.hits + qc.misses
	hitRate := float64(0)
	if total > 0 {
		hitRate = float64(qc.hits) / float64(total)
	}

	return QueryCacheStats{
		Hits:     qc.hits,
		Misses:   qc.misses,
		Entries:  len(qc.cache),
		Capacity: qc.capacity,
		HitRate:  hitRate,
	}
}

// removeEntry removes an entry from the cache (called while holding lock)
func (qc *QueryCache) removeEntry(key string) {
	entry, ok := qc.cache[key]
	if !ok {
		return
	}

	qc.releaseMemory(entry.result.Size)

	for _, table := range entry.result.Tables {
		if keys, ok := qc.tableIndex[table]; ok {
			delete(keys, key)
			if len(keys) == 0 {
				delete(qc.tableIndex, table)
			}
		}
	}

	qc.lru.Remove(entry.element)
	delete(qc.cache, key)
}

// evictIfNeeded removes entries until within capacity (called while holding lock)
func (qc *QueryCache) evictIfNeeded() {
	for qc.lru.Len() > qc.capacity {
		elem := qc.lru.Back()
		if elem == nil {
			break
		}

		key := elem.Value.(string)
		qc.removeEntry(key)
	}
}

// estimateSize estimates the memory size of a cached result
func (qc *QueryCache) estimateSize(columns []string, rows [][]sqlvalue.Scalar) int64 {
	var size int64

	for _, col := range columns {
		size += int64(len(col))
	}

	for _, row := range rows {
		for _, val := range row {
			switch val.Kind() {
			case sqlvalue.KindNull:
				size += 8
			case sqlvalue.KindBoolean:
				size += 9
			case sqlvalue.KindInt64:
				size += 16
			case sqlvalue.KindFloat64:
				size += 16
			case sqlvalue.KindUtf8:
				size += int64(8 + len(val.Text()))
			case sqlvalue.KindDate, sqlvalue.KindTimestamp, sqlvalue.KindTime:
				size += 16
			case sqlvalue.KindInterval:
				size += 32
			default:
				size += 8
			}
		}
	}

	size += int64(len(rows) * 24) // Row slice overhead
	size += 64                    // Base overhead

	return size
}

// trackMemory tracks memory usage in the budget
func (qc *QueryCache) trackMemory(key string, bytes int64) {
	if qc.memoryBudget == nil {
		return
	}
	qc.memoryBudget.TrackWithPriority("query_cache", key, bytes, PriorityWarm)
}

// releaseMemory releases memory tracking
func (qc *QueryCache) releaseMemory(bytes int64) {
	if qc.memoryBudget == nil {
		return
	}
	qc.memoryBudget.Release("query_cache", bytes)
}
