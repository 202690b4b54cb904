package sqlexec

import (
	"pivotsql/pkg/catalog"
	"pivotsql/pkg/sqlast"
	"pivotsql/pkg/sqlerr"
	"pivotsql/pkg/sqlvalue"
)

// buildFrom evaluates s.From and chains every s.Joins entry onto it,
// producing the combined row set WHERE and the projection stages run
// against. A SELECT with no FROM clause yields a single empty-column,
// single-row set so constant expressions (SELECT 1+1) still produce one
// output row.
func (e *Executor) buildFrom(s *sqlast.SelectStatement) (*rowSet, error) {
	var cur *rowSet
	if s.From == nil {
		cur = &rowSet{rows: [][]sqlvalue.Scalar{{}}}
	} else {
		rs, err := e.resolveTableRef(s.From)
		if err != nil {
			return nil, err
		}
		cur = rs
	}
	for _, j := range s.Joins {
		next, err := e.applyJoin(cur, j)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

func (e *Executor) resolveTableRef(ref *sqlast.TableRef) (*rowSet, error) {
	if ref.Subquery != nil {
		rs, err := e.evalQuery(ref.Subquery)
		if err != nil {
			return nil, err
		}
		alias := ref.Alias
		if alias == "" {
			alias = "subq"
		}
		return tagTable(rs, alias), nil
	}

	if cte, ok := e.ctes[cteKey(ref.TableName)]; ok {
		alias := ref.Alias
		if alias == "" {
			alias = ref.TableName
		}
		return tagTable(cte, alias), nil
	}

	t, ok := e.cat.Get(ref.TableName)
	if !ok {
		return nil, sqlerr.New(sqlerr.SQL, "table %q does not exist", ref.TableName)
	}
	alias := ref.Alias
	if alias == "" {
		alias = ref.TableName
	}
	return rowSetFromTable(alias, t)
}

// tagTable returns a copy of rs with every column's table tag overwritten
// to alias, leaving the underlying rows untouched (they are not copied).
func tagTable(rs *rowSet, alias string) *rowSet {
	cols := make([]columnMeta, len(rs.cols))
	for i, c := range rs.cols {
		cols[i] = columnMeta{name: c.name, table: alias}
	}
	return &rowSet{cols: cols, rows: rs.rows}
}

func rowSetFromTable(alias string, t *catalog.Table) (*rowSet, error) {
	cols := make([]columnMeta, len(t.Schema.Columns))
	for i, c := range t.Schema.Columns {
		cols[i] = columnMeta{name: c.Name, table: alias}
	}
	n := t.RowCount()
	rows := make([][]sqlvalue.Scalar, n)
	for r := 0; r < n; r++ {
		row, err := t.GetRow(r)
		if err != nil {
			return nil, err
		}
		rows[r] = row
	}
	return &rowSet{cols: cols, rows: rows}, nil
}

func concatRow(a, b []sqlvalue.Scalar) []sqlvalue.Scalar {
	out := make([]sqlvalue.Scalar, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

func nullRow(n int) []sqlvalue.Scalar {
	out := make([]sqlvalue.Scalar, n)
	for i := range out {
		out[i] = sqlvalue.Null()
	}
	return out
}

// applyJoin evaluates j's table and combines it with left according to
// j.Type, padding unmatched outer rows with NULLs on the side that has no
// match.
func (e *Executor) applyJoin(left *rowSet, j sqlast.Join) (*rowSet, error) {
	right, err := e.resolveTableRef(&j.Table)
	if err != nil {
		return nil, err
	}
	cols := append(append([]columnMeta{}, left.cols...), right.cols...)
	combined := &rowSet{cols: cols}

	matches := func(lrow, rrow []sqlvalue.Scalar) (bool, error) {
		if j.Condition.None {
			return true, nil
		}
		merged := concatRow(lrow, rrow)
		ctx := evalCtx{e: e, rs: &rowSet{cols: cols, rows: [][]sqlvalue.Scalar{merged}}, row: 0}
		if len(j.Condition.Using) > 0 {
			for _, colName := range j.Condition.Using {
				li, err := resolveColumn(left, &sqlast.ColumnRef{Name: colName})
				if err != nil {
					return false, err
				}
				ri, err := resolveColumn(right, &sqlast.ColumnRef{Name: colName})
				if err != nil {
					return false, err
				}
				if !scalarEq(lrow[li], rrow[ri]) {
					return false, nil
				}
			}
			return true, nil
		}
		v, err := ctx.evalExpr(j.Condition.On)
		if err != nil {
			return false, err
		}
		return !v.IsNull() && isTruthy(v), nil
	}

	leftMatched := make([]bool, len(left.rows))
	rightMatched := make([]bool, len(right.rows))

	for li, lrow := range left.rows {
		for ri, rrow := range right.rows {
			if j.Type == sqlast.CrossJoin {
				combined.rows = append(combined.rows, concatRow(lrow, rrow))
				continue
			}
			ok, err := matches(lrow, rrow)
			if err != nil {
				return nil, err
			}
			if ok {
				combined.rows = append(combined.rows, concatRow(lrow, rrow))
				leftMatched[li] = true
				rightMatched[ri] = true
			}
		}
	}

	switch j.Type {
	case sqlast.LeftJoin:
		for li, lrow := range left.rows {
			if !leftMatched[li] {
				combined.rows = append(combined.rows, concatRow(lrow, nullRow(len(right.cols))))
			}
		}
	case sqlast.RightJoin:
		for ri, rrow := range right.rows {
			if !rightMatched[ri] {
				combined.rows = append(combined.rows, concatRow(nullRow(len(left.cols)), rrow))
			}
		}
	case sqlast.FullJoin:
		for li, lrow := range left.rows {
			if !leftMatched[li] {
				combined.rows = append(combined.rows, concatRow(lrow, nullRow(len(right.cols))))
			}
		}
		for ri, rrow := range right.rows {
			if !rightMatched[ri] {
				combined.rows = append(combined.rows, concatRow(nullRow(len(left.cols)), rrow))
			}
		}
	}

	return combined, nil
}

// filterRows keeps only the rows of rs for which where evaluates truthy.
func (e *Executor) filterRows(rs *rowSet, where sqlast.Expr) (*rowSet, error) {
	out := &rowSet{cols: rs.cols}
	for i, row := range rs.rows {
		ctx := evalCtx{e: e, rs: rs, row: i}
		v, err := ctx.evalExpr(where)
		if err != nil {
			return nil, err
		}
		if !v.IsNull() && isTruthy(v) {
			out.rows = append(out.rows, row)
		}
	}
	return out, nil
}
