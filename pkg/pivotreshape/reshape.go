// Package pivotreshape implements spreadsheet-style pivot/unpivot over an
// already-materialized query result: a thin shell over the core engine,
// not a catalog-aware relational operator. Pivot turns distinct values of
// one column into new result columns, aggregating colliding cells with
// agg; Unpivot is its inverse, melting a set of value columns back into
// name/value row pairs.
package pivotreshape

import (
	"pivotsql/pkg/sqlerr"
	"pivotsql/pkg/sqlexec"
	"pivotsql/pkg/sqlvalue"
)

// Agg names the collision-aggregation applied when more than one source
// row maps to the same (row key, pivot value) cell.
type Agg string

const (
	AggFirst Agg = "FIRST"
	AggLast  Agg = "LAST"
	AggSum   Agg = "SUM"
	AggAvg   Agg = "AVG"
	AggMin   Agg = "MIN"
	AggMax   Agg = "MAX"
	AggCount Agg = "COUNT"
)

// Pivot reshapes result: one output row per distinct combination of
// rowKeyCols, one output column per distinct value seen in pivotCol,
// each cell holding agg applied to every valueCol value that shares that
// (row key, pivot value) pair.
func Pivot(result sqlexec.QueryResult, rowKeyCols []string, pivotCol, valueCol string, agg Agg) (sqlexec.QueryResult, error) {
	rowKeyIdx, err := colIndices(result.Columns, rowKeyCols)
	if err != nil {
		return sqlexec.QueryResult{}, err
	}
	pivotIdx, err := colIndex(result.Columns, pivotCol)
	if err != nil {
		return sqlexec.QueryResult{}, err
	}
	valueIdx, err := colIndex(result.Columns, valueCol)
	if err != nil {
		return sqlexec.QueryResult{}, err
	}

	var pivotVals []string
	seenPivot := map[string]bool{}
	type cellKey struct {
		rowKey   string
		pivotVal string
	}
	cells := map[cellKey][]sqlvalue.Scalar{}
	var keyOrder []string
	keyRows := map[string][]sqlvalue.Scalar{}

	for _, row := range result.Rows {
		rk := rowKeyValues(row, rowKeyIdx)
		rkStr := keyString(rk)
		if _, ok := keyRows[rkStr]; !ok {
			keyRows[rkStr] = rk
			keyOrder = append(keyOrder, rkStr)
		}

		pv := cellString(row[pivotIdx])
		if !seenPivot[pv] {
			seenPivot[pv] = true
			pivotVals = append(pivotVals, pv)
		}

		ck := cellKey{rowKey: rkStr, pivotVal: pv}
		cells[ck] = append(cells[ck], row[valueIdx])
	}

	columns := append(append([]string{}, rowKeyCols...), pivotVals...)
	rows := make([][]sqlvalue.Scalar, 0, len(keyOrder))
	for _, rkStr := range keyOrder {
		row := append([]sqlvalue.Scalar{}, keyRows[rkStr]...)
		for _, pv := range pivotVals {
			ck := cellKey{rowKey: rkStr, pivotVal: pv}
			row = append(row, aggregate(cells[ck], agg))
		}
		rows = append(rows, row)
	}

	return sqlexec.QueryResult{Columns: columns, Rows: rows}, nil
}

// Unpivot melts valueCols into name/value row pairs, one output row per
// (source row, value column) with a non-NULL value; idCols are carried
// through unchanged on every melted row.
func Unpivot(result sqlexec.QueryResult, idCols, valueCols []string, nameCol, valueColName string) (sqlexec.QueryResult, error) {
	idIdx, err := colIndices(result.Columns, idCols)
	if err != nil {
		return sqlexec.QueryResult{}, err
	}
	valueIdx, err := colIndices(result.Columns, valueCols)
	if err != nil {
		return sqlexec.QueryResult{}, err
	}

	columns := append(append([]string{}, idCols...), nameCol, valueColName)
	var rows [][]sqlvalue.Scalar
	for _, row := range result.Rows {
		for i, vc := range valueCols {
			v := row[valueIdx[i]]
			if v.IsNull() {
				continue
			}
			out := rowKeyValues(row, idIdx)
			out = append(out, sqlvalue.Text(vc), v)
			rows = append(rows, out)
		}
	}

	return sqlexec.QueryResult{Columns: columns, Rows: rows}, nil
}

func colIndex(columns []string, name string) (int, error) {
	for i, c := range columns {
		if c == name {
			return i, nil
		}
	}
	return -1, sqlerr.New(sqlerr.ColumnNotFound, "column %q not found in result", name)
}

func colIndices(columns, names []string) ([]int, error) {
	idx := make([]int, len(names))
	for i, n := range names {
		ci, err := colIndex(columns, n)
		if err != nil {
			return nil, err
		}
		idx[i] = ci
	}
	return idx, nil
}

func rowKeyValues(row []sqlvalue.Scalar, idx []int) []sqlvalue.Scalar {
	out := make([]sqlvalue.Scalar, len(idx))
	for i, ci := range idx {
		out[i] = row[ci]
	}
	return out
}

func keyString(vals []sqlvalue.Scalar) string {
	s := ""
	for i, v := range vals {
		if i > 0 {
			s += "\x00"
		}
		s += cellString(v)
	}
	return s
}

func cellString(v sqlvalue.Scalar) string {
	if v.IsNull() {
		return "\x01NULL"
	}
	return v.String()
}

func aggregate(vals []sqlvalue.Scalar, agg Agg) sqlvalue.Scalar {
	nonNull := make([]sqlvalue.Scalar, 0, len(vals))
	for _, v := range vals {
		if !v.IsNull() {
			nonNull = append(nonNull, v)
		}
	}
	switch agg {
	case AggFirst:
		if len(vals) == 0 {
			return sqlvalue.Null()
		}
		return vals[0]
	case AggLast:
		if len(vals) == 0 {
			return sqlvalue.Null()
		}
		return vals[len(vals)-1]
	case AggCount:
		return sqlvalue.Int(int64(len(nonNull)))
	case AggSum, AggAvg, AggMin, AggMax:
		if len(nonNull) == 0 {
			return sqlvalue.Null()
		}
		return numericAggregate(nonNull, agg)
	default:
		if len(vals) == 0 {
			return sqlvalue.Null()
		}
		return vals[len(vals)-1]
	}
}

func numericAggregate(vals []sqlvalue.Scalar, agg Agg) sqlvalue.Scalar {
	floats := make([]float64, 0, len(vals))
	for _, v := range vals {
		switch v.Kind() {
		case sqlvalue.KindInt64:
			floats = append(floats, float64(v.Int()))
		case sqlvalue.KindFloat64:
			floats = append(floats, v.Float())
		}
	}
	if len(floats) == 0 {
		return sqlvalue.Null()
	}
	switch agg {
	case AggSum:
		var sum float64
		for _, f := range floats {
			sum += f
		}
		return sqlvalue.Float(sum)
	case AggAvg:
		var sum float64
		for _, f := range floats {
			sum += f
		}
		return sqlvalue.Float(sum / float64(len(floats)))
	case AggMin:
		m := floats[0]
		for _, f := range floats[1:] {
			if f < m {
				m = f
			}
		}
		return sqlvalue.Float(m)
	case AggMax:
		m := floats[0]
		for _, f := range floats[1:] {
			if f > m {
				m = f
			}
		}
		return sqlvalue.Float(m)
	default:
		return sqlvalue.Null()
	}
}
