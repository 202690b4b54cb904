// Package sqlexec walks parsed statements against a catalog.Catalog: the
// SELECT pipeline (FROM/JOIN, WHERE, GROUP BY/HAVING, window functions,
// ORDER BY, DISTINCT, LIMIT/OFFSET), DML (INSERT/UPDATE/DELETE), DDL
// (CREATE/DROP TABLE), set operations, CTEs, and the scalar/aggregate/
// window expression evaluator that backs all of them.
package sqlexec

import (
	"fmt"

	"pivotsql/pkg/catalog"
	"pivotsql/pkg/sqlast"
	"pivotsql/pkg/sqlerr"
	"pivotsql/pkg/sqlparser"
	"pivotsql/pkg/sqlvalue"
)

// QueryResult is the outcome of executing one statement: a projected row
// set for queries, or an affected-row count and status message for DDL/DML.
type QueryResult struct {
	Columns      []string
	Rows         [][]sqlvalue.Scalar
	RowsAffected int64
	Message      string
}

// columnMeta names one rowSet column: its display name and the table
// alias it was projected from, if any. Both are consulted by column
// resolution: an unqualified reference matches on name alone, a
// qualified one matches name and table together.
type columnMeta struct {
	name  string
	table string
}

// rowSet is the executor's internal intermediate representation: every
// pipeline stage (FROM, JOIN, WHERE, projection, set operations) consumes
// one and produces another.
type rowSet struct {
	cols []columnMeta
	rows [][]sqlvalue.Scalar
}

func (rs *rowSet) columnNames() []string {
	names := make([]string, len(rs.cols))
	for i, c := range rs.cols {
		names[i] = c.name
	}
	return names
}

// CacheInvalidator is implemented by a query result cache that needs to
// be told when a table's contents change underneath it. pkg/cache's
// QueryCache satisfies this without sqlexec importing that package.
type CacheInvalidator interface {
	InvalidateTable(table string)
}

// Executor runs statements against a single catalog. It is not safe for
// concurrent use by multiple goroutines at once, matching the catalog's
// own single-threaded contract.
type Executor struct {
	cat      *catalog.Catalog
	ctes     map[string]*rowSet             // active CTE snapshots, name uppercased
	defaults map[string]map[int]sqlast.Expr // table (uppercased) -> col idx -> DEFAULT expr
	cache    CacheInvalidator
}

// New returns an Executor backed by cat.
func New(cat *catalog.Catalog) *Executor {
	return &Executor{
		cat:      cat,
		ctes:     make(map[string]*rowSet),
		defaults: make(map[string]map[int]sqlast.Expr),
	}
}

// Catalog returns the catalog this executor runs against.
func (e *Executor) Catalog() *catalog.Catalog { return e.cat }

// SetCache attaches a result cache to be invalidated whenever a table
// this executor mutates (INSERT/UPDATE/DELETE/DROP TABLE) changes.
func (e *Executor) SetCache(c CacheInvalidator) { e.cache = c }

func (e *Executor) invalidateCache(table string) {
	if e.cache != nil {
		e.cache.InvalidateTable(upper(table))
	}
}

// Execute parses sql (which may hold several ;-separated statements) and
// runs each in turn, returning the last statement's result.
func (e *Executor) Execute(sql string) (QueryResult, error) {
	stmts, err := sqlparser.Parse(sql)
	if err != nil {
		return QueryResult{}, fmt.Errorf("parse error: %w", err)
	}
	if len(stmts) == 0 {
		return QueryResult{Message: "OK"}, nil
	}
	var last QueryResult
	for _, stmt := range stmts {
		r, err := e.executeStatement(stmt)
		if err != nil {
			return QueryResult{}, err
		}
		last = r
	}
	return last, nil
}

func (e *Executor) executeStatement(stmt sqlast.Statement) (QueryResult, error) {
	switch s := stmt.(type) {
	case *sqlast.SelectStatement:
		rs, err := e.execSelect(s)
		if err != nil {
			return QueryResult{}, err
		}
		return QueryResult{Columns: rs.columnNames(), Rows: rs.rows}, nil
	case *sqlast.SetOpStatement:
		rs, err := e.execSetOp(s)
		if err != nil {
			return QueryResult{}, err
		}
		return QueryResult{Columns: rs.columnNames(), Rows: rs.rows}, nil
	case *sqlast.WithStatement:
		rs, err := e.execWith(s)
		if err != nil {
			return QueryResult{}, err
		}
		return QueryResult{Columns: rs.columnNames(), Rows: rs.rows}, nil
	case *sqlast.InsertStatement:
		return e.execInsert(s)
	case *sqlast.UpdateStatement:
		return e.execUpdate(s)
	case *sqlast.DeleteStatement:
		return e.execDelete(s)
	case *sqlast.CreateTableStatement:
		return e.execCreateTable(s)
	case *sqlast.DropTableStatement:
		return e.execDropTable(s)
	case *sqlast.TransactionStatement:
		return QueryResult{Message: "OK"}, nil
	case *sqlast.ExplainStatement:
		return e.execExplain(s)
	default:
		return QueryResult{}, sqlerr.New(sqlerr.SQL, "unsupported statement type %T", stmt)
	}
}

// evalQuery runs any statement that can appear where a row set is needed
// (a subquery, a CTE body, a set-operation operand) and returns its rows.
func (e *Executor) evalQuery(stmt sqlast.Statement) (*rowSet, error) {
	switch s := stmt.(type) {
	case *sqlast.SelectStatement:
		return e.execSelect(s)
	case *sqlast.SetOpStatement:
		return e.execSetOp(s)
	case *sqlast.WithStatement:
		return e.execWith(s)
	default:
		return nil, sqlerr.New(sqlerr.SQL, "expected a query, got %T", stmt)
	}
}

// execWith evaluates every CTE in order into an immutable snapshot, then
// evaluates the body with those snapshots visible. CTEs are plain
// snapshots, not recursive views: WITH RECURSIVE is accepted by the
// parser but carries no recursive-evaluation semantics.
func (e *Executor) execWith(s *sqlast.WithStatement) (*rowSet, error) {
	saved := e.ctes
	e.ctes = make(map[string]*rowSet, len(saved)+len(s.Ctes))
	for k, v := range saved {
		e.ctes[k] = v
	}
	defer func() { e.ctes = saved }()

	for _, cte := range s.Ctes {
		rs, err := e.evalQuery(cte.Query)
		if err != nil {
			return nil, err
		}
		e.ctes[cteKey(cte.Name)] = rs
	}
	return e.evalQuery(s.Body)
}

func cteKey(name string) string { return upper(name) }
