package sqlexec

import (
	"sort"
	"strings"

	"pivotsql/pkg/sqlast"
	"pivotsql/pkg/sqlerr"
	"pivotsql/pkg/sqlvalue"
)

// collectWindowCalls gathers every OVER-bearing FuncCall reachable from
// expr, the window-function counterpart of collectAggregateCalls: a
// window call's own argument list is not walked further, since those
// arguments are evaluated by computeWindow against individual partition
// rows, not by the generic per-row evaluator.
func collectWindowCalls(expr sqlast.Expr, out *[]*sqlast.FuncCall) {
	if expr == nil {
		return
	}
	if fc, ok := expr.(*sqlast.FuncCall); ok && fc.Over != nil {
		*out = append(*out, fc)
		return
	}
	walkChildren(expr, func(child sqlast.Expr) { collectWindowCalls(child, out) })
}

// partitionRows groups base's row indices by partitionBy's evaluated
// key, preserving the order in which each distinct key was first seen.
func partitionRows(e *Executor, base *rowSet, partitionBy []sqlast.Expr) [][]int {
	if len(partitionBy) == 0 {
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
		var sb strings.Builder
		for _, p := range partitionBy {
			v, _ := ctx.evalExpr(p)
			sb.WriteString(scalarToKey(v))
			sb.WriteByte('\x1f')
		}
		k := sb.String()
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], i)
	}
	out := make([][]int, len(order))
	for i, k := range order {
		out[i] = groups[k]
	}
	return out
}

// sortPartition orders idxs by orderBy, stably preserving input order
// among ties (including when orderBy is empty, which leaves idxs as-is).
func sortPartition(e *Executor, base *rowSet, idxs []int, orderBy []sqlast.OrderByItem) []int {
	if len(orderBy) == 0 {
		return idxs
	}
	type keyed struct {
		rowIdx int
		keys   []sqlvalue.Scalar
	}
	items := make([]keyed, len(idxs))
	for i, ri := range idxs {
		ctx := evalCtx{e: e, rs: base, row: ri}
		keys := make([]sqlvalue.Scalar, len(orderBy))
		for j, ob := range orderBy {
			v, _ := ctx.evalExpr(ob.Expr)
			keys[j] = v
		}
		items[i] = keyed{rowIdx: ri, keys: keys}
	}
	sort.SliceStable(items, func(a, b int) bool {
		for j, ob := range orderBy {
			c := compareForOrderBy(items[a].keys[j], items[b].keys[j], ob)
			if c != 0 {
				return c < 0
			}
		}
		return false
	})
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.rowIdx
	}
	return out
}

// compareForOrderBy compares a and b per ob's direction and NULL
// placement. The default policy, absent an explicit NULLS FIRST/LAST,
// follows the common convention of NULLs sorting last in ascending
// order and first in descending order.
func compareForOrderBy(a, b sqlvalue.Scalar, ob sqlast.OrderByItem) int {
	aNull, bNull := a.IsNull(), b.IsNull()
	if aNull && bNull {
		return 0
	}
	nullsFirst := !ob.Ascending
	if ob.NullsFirst != nil {
		nullsFirst = *ob.NullsFirst
	}
	if aNull {
		if nullsFirst {
			return -1
		}
		return 1
	}
	if bNull {
		if nullsFirst {
			return 1
		}
		return -1
	}
	c := scalarCmp(a, b)
	if !ob.Ascending {
		c = -c
	}
	return c
}

func sameOrderKey(e *Executor, base *rowSet, a, b int, orderBy []sqlast.OrderByItem) bool {
	if len(orderBy) == 0 {
		return true
	}
	ctxA := evalCtx{e: e, rs: base, row: a}
	ctxB := evalCtx{e: e, rs: base, row: b}
	for _, ob := range orderBy {
		va, _ := ctxA.evalExpr(ob.Expr)
		vb, _ := ctxB.evalExpr(ob.Expr)
		if va.IsNull() && vb.IsNull() {
			continue
		}
		if va.IsNull() != vb.IsNull() {
			return false
		}
		if scalarCmp(va, vb) != 0 {
			return false
		}
	}
	return true
}

// computeRanks returns RANK (or DENSE_RANK when dense) for each position
// in sorted: tied rows (equal ORDER BY key) share a rank; RANK leaves a
// gap for the tied group's size, DENSE_RANK does not.
func computeRanks(e *Executor, base *rowSet, sorted []int, orderBy []sqlast.OrderByItem, dense bool) []int {
	n := len(sorted)
	ranks := make([]int, n)
	if n == 0 {
		return ranks
	}
	ranks[0] = 1
	dr := 1
	for i := 1; i < n; i++ {
		if sameOrderKey(e, base, sorted[i-1], sorted[i], orderBy) {
			ranks[i] = ranks[i-1]
			continue
		}
		if dense {
			dr++
			ranks[i] = dr
		} else {
			ranks[i] = i + 1
		}
	}
	return ranks
}

// cumeDistCounts returns, for each position in sorted, the 1-based index
// of the last row sharing its ORDER BY key (the numerator CUME_DIST
// divides by partition size).
func cumeDistCounts(e *Executor, base *rowSet, sorted []int, orderBy []sqlast.OrderByItem) []int {
	n := len(sorted)
	counts := make([]int, n)
	i := 0
	for i < n {
		j := i
		for j+1 < n && sameOrderKey(e, base, sorted[j], sorted[j+1], orderBy) {
			j++
		}
		for k := i; k <= j; k++ {
			counts[k] = j + 1
		}
		i = j + 1
	}
	return counts
}

// computeWindow evaluates fc (an OVER-bearing function call) against
// every row of base, partitioning and ordering per fc.Over. SUM/AVG/
// COUNT/MIN/MAX behave as whole-partition aggregates — every row in a
// partition gets the same value — because no frame clause is applied;
// a ROWS|RANGE frame is parsed but does not narrow these to a running
// aggregate.
func (e *Executor) computeWindow(base *rowSet, fc *sqlast.FuncCall) (map[int]sqlvalue.Scalar, error) {
	if !isValidWindowFuncName(fc.Name) {
		return nil, sqlerr.New(sqlerr.SQL, "%s cannot be used as a window function", fc.Name)
	}
	partitions := partitionRows(e, base, fc.Over.PartitionBy)
	result := make(map[int]sqlvalue.Scalar, len(base.rows))
	name := upper(fc.Name)

	for _, idxs := range partitions {
		sorted := sortPartition(e, base, idxs, fc.Over.OrderBy)
		n := len(sorted)
		if n == 0 {
			continue
		}
		switch name {
		case "ROW_NUMBER":
			for i, ri := range sorted {
				result[ri] = sqlvalue.Int(int64(i + 1))
			}
		case "RANK", "DENSE_RANK":
			ranks := computeRanks(e, base, sorted, fc.Over.OrderBy, name == "DENSE_RANK")
			for i, ri := range sorted {
				result[ri] = sqlvalue.Int(int64(ranks[i]))
			}
		case "NTILE":
			buckets := 1
			if len(fc.Args) > 0 {
				ctx := evalCtx{e: e, rs: base, row: sorted[0]}
				v, err := ctx.evalExpr(fc.Args[0])
				if err != nil {
					return nil, err
				}
				if v.Kind() == sqlvalue.KindInt64 && v.Int() > 0 {
					buckets = int(v.Int())
				}
			}
			for i, ri := range sorted {
				b := i*buckets/n + 1
				if b > buckets {
					b = buckets
				}
				result[ri] = sqlvalue.Int(int64(b))
			}
		case "PERCENT_RANK":
			ranks := computeRanks(e, base, sorted, fc.Over.OrderBy, false)
			for i, ri := range sorted {
				if n <= 1 {
					result[ri] = sqlvalue.Float(0)
					continue
				}
				result[ri] = sqlvalue.Float(float64(ranks[i]-1) / float64(n-1))
			}
		case "CUME_DIST":
			counts := cumeDistCounts(e, base, sorted, fc.Over.OrderBy)
			for i, ri := range sorted {
				result[ri] = sqlvalue.Float(float64(counts[i]) / float64(n))
			}
		case "LAG", "LEAD":
			if err := computeLagLead(e, base, sorted, fc, name == "LAG", result); err != nil {
				return nil, err
			}
		case "FIRST_VALUE":
			v, err := (evalCtx{e: e, rs: base, row: sorted[0]}).evalExpr(fc.Args[0])
			if err != nil {
				return nil, err
			}
			for _, ri := range sorted {
				result[ri] = v
			}
		case "LAST_VALUE":
			v, err := (evalCtx{e: e, rs: base, row: sorted[n-1]}).evalExpr(fc.Args[0])
			if err != nil {
				return nil, err
			}
			for _, ri := range sorted {
				result[ri] = v
			}
		case "NTH_VALUE":
			if err := computeNthValue(e, base, sorted, fc, result); err != nil {
				return nil, err
			}
		case "SUM", "AVG", "COUNT", "MIN", "MAX":
			v, err := e.evalAggregate(base, sorted, fc)
			if err != nil {
				return nil, err
			}
			for _, ri := range sorted {
				result[ri] = v
			}
		default:
			for _, ri := range sorted {
				result[ri] = sqlvalue.Null()
			}
		}
	}
	return result, nil
}

func computeLagLead(e *Executor, base *rowSet, sorted []int, fc *sqlast.FuncCall, isLag bool, result map[int]sqlvalue.Scalar) error {
	n := len(sorted)
	offset := int64(1)
	var defaultExpr sqlast.Expr
	if len(fc.Args) > 1 {
		v, err := (evalCtx{e: e, rs: base, row: sorted[0]}).evalExpr(fc.Args[1])
		if err != nil {
			return err
		}
		if v.Kind() == sqlvalue.KindInt64 {
			offset = v.Int()
		}
	}
	if len(fc.Args) > 2 {
		defaultExpr = fc.Args[2]
	}
	dir := int64(1)
	if isLag {
		dir = -1
	}
	for i, ri := range sorted {
		srcPos := i + int(dir*offset)
		if srcPos >= 0 && srcPos < n {
			v, err := (evalCtx{e: e, rs: base, row: sorted[srcPos]}).evalExpr(fc.Args[0])
			if err != nil {
				return err
			}
			result[ri] = v
			continue
		}
		if defaultExpr != nil {
			v, err := (evalCtx{e: e, rs: base, row: ri}).evalExpr(defaultExpr)
			if err != nil {
				return err
			}
			result[ri] = v
			continue
		}
		result[ri] = sqlvalue.Null()
	}
	return nil
}

func computeNthValue(e *Executor, base *rowSet, sorted []int, fc *sqlast.FuncCall, result map[int]sqlvalue.Scalar) error {
	if len(fc.Args) < 2 {
		for _, ri := range sorted {
			result[ri] = sqlvalue.Null()
		}
		return nil
	}
	nv, err := (evalCtx{e: e, rs: base, row: sorted[0]}).evalExpr(fc.Args[1])
	if err != nil {
		return err
	}
	if nv.Kind() != sqlvalue.KindInt64 || nv.Int() < 1 || int(nv.Int()) > len(sorted) {
		for _, ri := range sorted {
			result[ri] = sqlvalue.Null()
		}
		return nil
	}
	v, err := (evalCtx{e: e, rs: base, row: sorted[nv.Int()-1]}).evalExpr(fc.Args[0])
	if err != nil {
		return err
	}
	for _, ri := range sorted {
		result[ri] = v
	}
	return nil
}
