package sqlexec

import (
	"fmt"

	"pivotsql/pkg/sqlast"
	"pivotsql/pkg/sqlerr"
	"pivotsql/pkg/sqlvalue"
)

// execInsert handles both VALUES rows and INSERT ... SELECT, filling any
// column omitted from s.Columns with its recorded DEFAULT expression
// (evaluated fresh per row) or NULL. Type coercion and NOT NULL
// enforcement are left to catalog.Table.AppendRow.
func (e *Executor) execInsert(s *sqlast.InsertStatement) (QueryResult, error) {
	t, ok := e.cat.Get(s.Table)
	if !ok {
		return QueryResult{}, sqlerr.New(sqlerr.SQL, "table %q does not exist", s.Table)
	}

	targetCols := s.Columns
	if targetCols == nil {
		targetCols = make([]string, len(t.Schema.Columns))
		for i, c := range t.Schema.Columns {
			targetCols[i] = c.Name
		}
	}
	colIdx := make([]int, len(targetCols))
	targeted := make(map[int]bool, len(targetCols))
	for i, name := range targetCols {
		idx, ok := t.Schema.FindColumnIndex(name)
		if !ok {
			return QueryResult{}, sqlerr.New(sqlerr.ColumnNotFound, "column %q not found in table %q", name, s.Table)
		}
		colIdx[i] = idx
		targeted[idx] = true
	}

	var srcRows [][]sqlvalue.Scalar
	if s.Select != nil {
		rs, err := e.evalQuery(s.Select)
		if err != nil {
			return QueryResult{}, err
		}
		srcRows = rs.rows
	} else {
		for _, valueExprs := range s.Values {
			if len(valueExprs) != len(targetCols) {
				return QueryResult{}, sqlerr.New(sqlerr.SQL, "INSERT has %d columns but %d values", len(targetCols), len(valueExprs))
			}
			row := make([]sqlvalue.Scalar, len(valueExprs))
			for i, ve := range valueExprs {
				v, err := noRowCtx(e).evalExpr(ve)
				if err != nil {
					return QueryResult{}, err
				}
				row[i] = v
			}
			srcRows = append(srcRows, row)
		}
	}

	defaults := e.defaults[tableKey(s.Table)]
	n := 0
	for _, src := range srcRows {
		full := nullRow(len(t.Schema.Columns))
		for i, ci := range colIdx {
			full[ci] = src[i]
		}
		for ci := range full {
			if targeted[ci] {
				continue
			}
			if defExpr, ok := defaults[ci]; ok {
				v, err := noRowCtx(e).evalExpr(defExpr)
				if err != nil {
					return QueryResult{}, err
				}
				full[ci] = v
			}
		}
		if err := t.AppendRow(full); err != nil {
			return QueryResult{}, err
		}
		n++
	}
	e.invalidateCache(s.Table)
	return QueryResult{RowsAffected: int64(n), Message: fmt.Sprintf("%d row(s) inserted", n)}, nil
}

// execUpdate evaluates WHERE and every assignment's RHS against a
// snapshot of the table taken before any write, so a self-referencing
// assignment (SET balance = balance + 1) and a multi-column UPDATE see
// consistent pre-statement values, then writes through catalog.Table.SetValue.
func (e *Executor) execUpdate(s *sqlast.UpdateStatement) (QueryResult, error) {
	t, ok := e.cat.Get(s.Table)
	if !ok {
		return QueryResult{}, sqlerr.New(sqlerr.SQL, "table %q does not exist", s.Table)
	}
	alias := s.Alias
	if alias == "" {
		alias = s.Table
	}
	rs, err := rowSetFromTable(alias, t)
	if err != nil {
		return QueryResult{}, err
	}

	assignIdx := make([]int, len(s.Assignments))
	for i, a := range s.Assignments {
		idx, ok := t.Schema.FindColumnIndex(a.Column)
		if !ok {
			return QueryResult{}, sqlerr.New(sqlerr.ColumnNotFound, "column %q not found in table %q", a.Column, s.Table)
		}
		assignIdx[i] = idx
	}

	matchedRows := 0
	pairs := 0
	for r := range rs.rows {
		if s.Where != nil {
			ctx := evalCtx{e: e, rs: rs, row: r}
			wv, err := ctx.evalExpr(s.Where)
			if err != nil {
				return QueryResult{}, err
			}
			if wv.IsNull() || !isTruthy(wv) {
				continue
			}
		}
		for i, a := range s.Assignments {
			ctx := evalCtx{e: e, rs: rs, row: r}
			v, err := ctx.evalExpr(a.Value)
			if err != nil {
				return QueryResult{}, err
			}
			if err := t.SetValue(r, assignIdx[i], v); err != nil {
				return QueryResult{}, err
			}
			pairs++
		}
		matchedRows++
	}
	e.invalidateCache(s.Table)
	return QueryResult{RowsAffected: int64(pairs), Message: fmt.Sprintf("%d row(s) updated", matchedRows)}, nil
}

// execDelete evaluates WHERE against a pre-delete snapshot (DeleteRows
// rebuilds the table in place, so row indices must be decided before any
// mutation starts) then rebuilds the table keeping only non-matching rows.
func (e *Executor) execDelete(s *sqlast.DeleteStatement) (QueryResult, error) {
	t, ok := e.cat.Get(s.Table)
	if !ok {
		return QueryResult{}, sqlerr.New(sqlerr.SQL, "table %q does not exist", s.Table)
	}
	if s.Where == nil {
		n := t.RowCount()
		t.DeleteRows(func(int) bool { return false })
		e.invalidateCache(s.Table)
		return QueryResult{RowsAffected: int64(n), Message: fmt.Sprintf("%d row(s) deleted", n)}, nil
	}

	rs, err := rowSetFromTable(s.Table, t)
	if err != nil {
		return QueryResult{}, err
	}
	matches := make([]bool, len(rs.rows))
	for r := range rs.rows {
		ctx := evalCtx{e: e, rs: rs, row: r}
		v, err := ctx.evalExpr(s.Where)
		if err != nil {
			return QueryResult{}, err
		}
		matches[r] = !v.IsNull() && isTruthy(v)
	}
	removed := t.DeleteRows(func(r int) bool { return !matches[r] })
	e.invalidateCache(s.Table)
	return QueryResult{RowsAffected: int64(removed), Message: fmt.Sprintf("%d row(s) deleted", removed)}, nil
}
