package sqlexec

import (
	"strings"

	"pivotsql/pkg/sqlast"
	"pivotsql/pkg/sqlerr"
	"pivotsql/pkg/sqlvalue"
)

// execSelect runs the full SELECT pipeline: FROM/JOIN resolution, WHERE
// filtering, GROUP BY aggregation (or a flat per-row projection when
// there is none), DISTINCT dedup, ORDER BY, then LIMIT/OFFSET.
func (e *Executor) execSelect(s *sqlast.SelectStatement) (*rowSet, error) {
	base, err := e.buildFrom(s)
	if err != nil {
		return nil, err
	}

	if s.Where != nil {
		base, err = e.filterRows(base, s.Where)
		if err != nil {
			return nil, err
		}
	}

	grouped := len(s.GroupBy) > 0 || selectItemsHaveAggregate(s.Columns) || exprHasAggregate(s.Having)

	var projected *rowSet
	if grouped {
		projected, err = e.execGroupBy(base, s)
	} else {
		projected, err = e.execProjectionWithWindows(base, s.Columns)
	}
	if err != nil {
		return nil, err
	}

	if s.Distinct {
		projected = dedupRows(projected)
	}

	if len(s.OrderBy) > 0 {
		projected = orderRowSet(e, projected, s.OrderBy)
	}

	return applyLimitOffset(e, projected, s.Limit, s.Offset)
}

// execGroupBy partitions base's rows by s.GroupBy (a single implicit
// group covering every row when GroupBy is empty but an aggregate is
// present, i.e. whole-table aggregation), evaluates s.Having per group,
// and projects s.Columns once per surviving group using a representative
// row for non-aggregated expressions and evalCtx.aggResults for
// aggregate calls. A whole-table aggregation still projects its one
// group when the input holds zero rows (SELECT COUNT(*) FROM t on an
// empty t yields one row with COUNT 0, not zero rows); an empty group
// produced by a real GROUP BY, which groupRows never does, is the only
// case skipped.
func (e *Executor) execGroupBy(base *rowSet, s *sqlast.SelectStatement) (*rowSet, error) {
	groupIdxs := groupRows(e, base, s.GroupBy)

	var cols []columnMeta
	rows := make([][]sqlvalue.Scalar, 0, len(groupIdxs))

	for _, idxs := range groupIdxs {
		if len(idxs) == 0 && len(s.GroupBy) > 0 {
			continue
		}
		rep := -1
		if len(idxs) > 0 {
			rep = idxs[0]
		}

		var aggCalls []*sqlast.FuncCall
		for _, it := range s.Columns {
			if it.Expr != nil {
				collectAggregateCalls(it.Expr, &aggCalls)
			}
		}
		if s.Having != nil {
			collectAggregateCalls(s.Having, &aggCalls)
		}
		aggResults := make(map[*sqlast.FuncCall]sqlvalue.Scalar, len(aggCalls))
		for _, fc := range aggCalls {
			v, err := e.evalAggregate(base, idxs, fc)
			if err != nil {
				return nil, err
			}
			aggResults[fc] = v
		}

		if s.Having != nil {
			ctx := evalCtx{e: e, rs: base, row: rep, aggResults: aggResults}
			hv, err := ctx.evalExpr(s.Having)
			if err != nil {
				return nil, err
			}
			if hv.IsNull() || !isTruthy(hv) {
				continue
			}
		}

		row := make([]sqlvalue.Scalar, 0, len(s.Columns))
		rowCols := cols[:0:0]
		for _, it := range s.Columns {
			if it.Wildcard || it.TableWildcard != "" {
				return nil, sqlerr.New(sqlerr.SQL, "wildcard select items are not supported with GROUP BY")
			}
			name := it.Alias
			if name == "" {
				name = autoColumnName(it.Expr)
			}
			rowCols = append(rowCols, columnMeta{name: name})
			ctx := evalCtx{e: e, rs: base, row: rep, aggResults: aggResults}
			v, err := ctx.evalExpr(it.Expr)
			if err != nil {
				return nil, err
			}
			row = append(row, v)
		}
		if cols == nil {
			cols = rowCols
		}
		rows = append(rows, row)
	}

	return &rowSet{cols: cols, rows: rows}, nil
}

// groupRows partitions base's row indices by groupBy's evaluated key,
// preserving first-seen order; an empty groupBy yields one group holding
// every row (whole-table aggregation).
func groupRows(e *Executor, base *rowSet, groupBy []sqlast.Expr) [][]int {
	if len(groupBy) == 0 {
		all := make([]int, len(base.rows))
		for i := range all {
			all[i] = i
		}
		return [][]int{all}
	}
	var order []string
	groups := make(map[string][]int)
	for i := range base.rows {
		ctx := evalCtx{e: e, rs: base, row: i}
		key := ""
		for _, g := range groupBy {
			v, _ := ctx.evalExpr(g)
			key += scalarToKey(v) + "\x1f"
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}
	out := make([][]int, len(order))
	for i, k := range order {
		out[i] = groups[k]
	}
	return out
}

type projector struct {
	srcIdx   int // >= 0: copy directly from this base column index (wildcard expansion)
	expr     sqlast.Expr
	isWindow bool
}

// execProjectionWithWindows expands wildcards, evaluates every non-window
// select expression per row, then computes window function values in a
// second pass against base's full row set (so PARTITION BY/ORDER BY see
// every row, not just the ones that happen to be in the output) and
// backfills them into the projected rows.
func (e *Executor) execProjectionWithWindows(base *rowSet, items []sqlast.SelectItem) (*rowSet, error) {
	var cols []columnMeta
	var projs []projector

	for _, it := range items {
		switch {
		case it.Wildcard:
			for i, c := range base.cols {
				cols = append(cols, c)
				projs = append(projs, projector{srcIdx: i})
			}
		case it.TableWildcard != "":
			for i, c := range base.cols {
				if strings.EqualFold(c.table, it.TableWildcard) {
					cols = append(cols, c)
					projs = append(projs, projector{srcIdx: i})
				}
			}
		default:
			name := it.Alias
			if name == "" {
				name = autoColumnName(it.Expr)
			}
			cols = append(cols, columnMeta{name: name})
			projs = append(projs, projector{srcIdx: -1, expr: it.Expr, isWindow: exprHasWindow(it.Expr)})
		}
	}

	var winCalls []*sqlast.FuncCall
	for _, p := range projs {
		if p.isWindow {
			collectWindowCalls(p.expr, &winCalls)
		}
	}
	windowResults := make(map[*sqlast.FuncCall]map[int]sqlvalue.Scalar, len(winCalls))
	for _, fc := range winCalls {
		res, err := e.computeWindow(base, fc)
		if err != nil {
			return nil, err
		}
		windowResults[fc] = res
	}

	rows := make([][]sqlvalue.Scalar, len(base.rows))
	for r := range base.rows {
		row := make([]sqlvalue.Scalar, len(projs))
		for ci, p := range projs {
			if p.srcIdx >= 0 {
				row[ci] = base.rows[r][p.srcIdx]
				continue
			}
			ctx := evalCtx{e: e, rs: base, row: r, windowResults: windowResults}
			v, err := ctx.evalExpr(p.expr)
			if err != nil {
				return nil, err
			}
			row[ci] = v
		}
		rows[r] = row
	}

	return &rowSet{cols: cols, rows: rows}, nil
}

// autoColumnName mirrors Postgres' fallback for an unaliased projection
// item: a bare column reference or function call keeps a readable name,
// anything else (arithmetic, CASE, literals) gets the generic placeholder.
func autoColumnName(expr sqlast.Expr) string {
	switch ex := expr.(type) {
	case *sqlast.ColumnRef:
		return ex.Name
	case *sqlast.FuncCall:
		return ex.Name
	default:
		return "?column?"
	}
}

func dedupRows(rs *rowSet) *rowSet {
	seen := make(map[string]bool, len(rs.rows))
	out := &rowSet{cols: rs.cols}
	for _, row := range rs.rows {
		k := rowKey(row)
		if seen[k] {
			continue
		}
		seen[k] = true
		out.rows = append(out.rows, row)
	}
	return out
}

func orderRowSet(e *Executor, rs *rowSet, orderBy []sqlast.OrderByItem) *rowSet {
	idxs := make([]int, len(rs.rows))
	for i := range idxs {
		idxs[i] = i
	}
	sorted := sortPartition(e, rs, idxs, orderBy)
	rows := make([][]sqlvalue.Scalar, len(sorted))
	for i, ri := range sorted {
		rows[i] = rs.rows[ri]
	}
	return &rowSet{cols: rs.cols, rows: rows}
}

func applyLimitOffset(e *Executor, rs *rowSet, limit, offset sqlast.Expr) (*rowSet, error) {
	start := 0
	if offset != nil {
		v, err := noRowCtx(e).evalExpr(offset)
		if err != nil {
			return nil, err
		}
		if v.Kind() == sqlvalue.KindInt64 && v.Int() > 0 {
			start = int(v.Int())
		}
	}
	if start > len(rs.rows) {
		start = len(rs.rows)
	}
	end := len(rs.rows)
	if limit != nil {
		v, err := noRowCtx(e).evalExpr(limit)
		if err != nil {
			return nil, err
		}
		if v.Kind() == sqlvalue.KindInt64 {
			n := start + int(v.Int())
			if n < end {
				end = n
			}
			if v.Int() < 0 {
				end = start
			}
		}
	}
	if end < start {
		end = start
	}
	return &rowSet{cols: rs.cols, rows: rs.rows[start:end]}, nil
}
