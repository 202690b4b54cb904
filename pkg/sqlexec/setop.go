package sqlexec

import (
	"pivotsql/pkg/sqlast"
	"pivotsql/pkg/sqlerr"
	"pivotsql/pkg/sqlvalue"
)

// execSetOp evaluates a binary UNION/INTERSECT/EXCEPT. UNION/INTERSECT
// follow standard SQL: the ALL variant is a multiset operation, the
// plain variant additionally dedups its result. EXCEPT dedups its result
// whenever ALL is absent too — a deliberate completion of set semantics:
// a left row matching a right row, or a duplicate of an already-excluded
// or already-kept left row, is never emitted twice.
func (e *Executor) execSetOp(s *sqlast.SetOpStatement) (*rowSet, error) {
	left, err := e.evalQuery(s.Left)
	if err != nil {
		return nil, err
	}
	right, err := e.evalQuery(s.Right)
	if err != nil {
		return nil, err
	}

	switch s.Op {
	case sqlast.Union:
		rows := make([][]sqlvalue.Scalar, 0, len(left.rows)+len(right.rows))
		rows = append(rows, left.rows...)
		rows = append(rows, right.rows...)
		if !s.All {
			rows = dedupRowSlice(rows)
		}
		return &rowSet{cols: left.cols, rows: rows}, nil

	case sqlast.Intersect:
		rightCounts := countRows(right.rows)
		seen := make(map[string]bool, len(left.rows))
		var rows [][]sqlvalue.Scalar
		for _, row := range left.rows {
			k := rowKey(row)
			if rightCounts[k] <= 0 {
				continue
			}
			if s.All {
				rightCounts[k]--
			} else if seen[k] {
				continue
			} else {
				seen[k] = true
			}
			rows = append(rows, row)
		}
		return &rowSet{cols: left.cols, rows: rows}, nil

	case sqlast.Except:
		rightCounts := countRows(right.rows)
		consumed := make(map[string]int, len(right.rows))
		seen := make(map[string]bool, len(left.rows))
		var rows [][]sqlvalue.Scalar
		for _, row := range left.rows {
			k := rowKey(row)
			if s.All {
				if consumed[k] < rightCounts[k] {
					consumed[k]++
					continue
				}
				rows = append(rows, row)
				continue
			}
			if seen[k] {
				continue
			}
			seen[k] = true
			if rightCounts[k] > 0 {
				continue
			}
			rows = append(rows, row)
		}
		return &rowSet{cols: left.cols, rows: rows}, nil

	default:
		return nil, sqlerr.New(sqlerr.SQL, "unknown set operation")
	}
}

func countRows(rows [][]sqlvalue.Scalar) map[string]int {
	m := make(map[string]int, len(rows))
	for _, r := range rows {
		m[rowKey(r)]++
	}
	return m
}

func dedupRowSlice(rows [][]sqlvalue.Scalar) [][]sqlvalue.Scalar {
	seen := make(map[string]bool, len(rows))
	out := make([][]sqlvalue.Scalar, 0, len(rows))
	for _, r := range rows {
		k := rowKey(r)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}
