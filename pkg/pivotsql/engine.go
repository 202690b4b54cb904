// Package pivotsql is the top-level embeddable entry point: Engine wraps
// a catalog, the statement executor, and an optional result cache behind
// a two-method surface (New, Execute), mirroring a DB.Open/DB.Exec
// embedding API.
package pivotsql

import (
	"context"
	"fmt"
	"sync"

	"pivotsql/pkg/cache"
	"pivotsql/pkg/catalog"
	"pivotsql/pkg/sqlexec"
	"pivotsql/pkg/sqlvalue"
)

// Result mirrors sqlexec.QueryResult at the package boundary so callers
// never need to import pkg/sqlexec directly.
type Result struct {
	Columns      []string
	Rows         [][]sqlvalue.Scalar
	RowsAffected int64
	Message      string
}

// Engine is a single in-memory database: a catalog plus the executor
// that runs statements against it. Execute and ExecuteContext serialize
// through the Engine's own mutex, so concurrent callers may share one
// Engine; direct use of the catalog returned by Catalog bypasses that
// lock.
type Engine struct {
	mu    sync.Mutex
	cat   *catalog.Catalog
	exec  *sqlexec.Executor
	cache *cache.QueryCache
}

// New returns an empty Engine with a query cache of the default capacity
// attached. Execute invalidates the cache on writes but does not store
// results in it; entries come only from direct QueryCache.Put calls.
func New() *Engine {
	return NewWithCacheCapacity(cache.DefaultQueryCacheCapacity)
}

// NewWithCacheCapacity returns an empty Engine whose query cache holds at
// most capacity entries; capacity <= 0 disables caching entirely.
func NewWithCacheCapacity(capacity int) *Engine {
	cat := catalog.NewCatalog()
	exec := sqlexec.New(cat)
	e := &Engine{cat: cat, exec: exec}
	if capacity > 0 {
		qc := cache.NewQueryCache(capacity)
		e.cache = qc
		exec.SetCache(qc)
	}
	return e
}

// Catalog returns the underlying table catalog for inspection.
func (e *Engine) Catalog() *catalog.Catalog { return e.cat }

// Execute parses and runs sql (which may hold several ;-separated
// statements), returning the last statement's result.
func (e *Engine) Execute(sql string) (Result, error) {
	return e.ExecuteContext(context.Background(), sql)
}

// ExecuteContext is Execute with cancellation support: ctx is checked
// before the run starts and is not threaded further in, since the
// executor's tree-walk has no natural cancellation points of its own.
func (e *Engine) ExecuteContext(ctx context.Context, sql string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	qr, err := e.exec.Execute(sql)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Columns:      qr.Columns,
		Rows:         qr.Rows,
		RowsAffected: qr.RowsAffected,
		Message:      qr.Message,
	}, nil
}

// Cache returns the engine's result cache, or nil when caching is disabled.
func (e *Engine) Cache() *cache.QueryCache { return e.cache }

func (e *Engine) String() string {
	return fmt.Sprintf("pivotsql.Engine{tables=%d}", len(e.cat.TableNames()))
}
