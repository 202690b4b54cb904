package sqlexec

import (
	"math"
	"strings"

	"pivotsql/pkg/sqlast"
	"pivotsql/pkg/sqlerr"
	"pivotsql/pkg/sqlvalue"
)

// evalAggregate computes fc over the rows of base named by rowIdxs (one
// group). COUNT(DISTINCT expr) performs a real dedup by key, unlike a
// stub that just counts every row; the sample-variance family (STDDEV,
// STDDEV_SAMP, VARIANCE, VAR_SAMP) returns NULL rather than a number for
// a sample of fewer than two values, since a sample variance is
// undefined, not zero, at n<2.
func (e *Executor) evalAggregate(base *rowSet, rowIdxs []int, fc *sqlast.FuncCall) (sqlvalue.Scalar, error) {
	name := upper(fc.Name)

	if name == "COUNT" {
		return evalCount(e, base, rowIdxs, fc)
	}

	vals, err := aggregateArgValues(e, base, rowIdxs, fc)
	if err != nil {
		return sqlvalue.Null(), err
	}
	nonNull := make([]sqlvalue.Scalar, 0, len(vals))
	for _, v := range vals {
		if !v.IsNull() {
			nonNull = append(nonNull, v)
		}
	}

	switch name {
	case "SUM":
		if len(nonNull) == 0 {
			return sqlvalue.Null(), nil
		}
		return sumScalars(nonNull), nil
	case "AVG":
		if len(nonNull) == 0 {
			return sqlvalue.Null(), nil
		}
		sum := sumScalars(nonNull)
		f, _ := toFloatOperand(sum)
		return sqlvalue.Float(f / float64(len(nonNull))), nil
	case "MIN":
		if len(nonNull) == 0 {
			return sqlvalue.Null(), nil
		}
		best := nonNull[0]
		for _, v := range nonNull[1:] {
			if scalarCmp(v, best) < 0 {
				best = v
			}
		}
		return best, nil
	case "MAX":
		if len(nonNull) == 0 {
			return sqlvalue.Null(), nil
		}
		best := nonNull[0]
		for _, v := range nonNull[1:] {
			if scalarCmp(v, best) > 0 {
				best = v
			}
		}
		return best, nil
	case "STRING_AGG", "GROUP_CONCAT", "LISTAGG":
		sep := ","
		if len(fc.Args) > 1 {
			sv, err := noRowCtx(e).evalExpr(fc.Args[1])
			if err == nil && sv.Kind() == sqlvalue.KindUtf8 {
				sep = sv.Text()
			}
		}
		parts := make([]string, len(nonNull))
		for i, v := range nonNull {
			parts[i] = scalarToDisplay(v)
		}
		return sqlvalue.Text(strings.Join(parts, sep)), nil
	case "ARRAY_AGG":
		parts := make([]string, len(nonNull))
		for i, v := range nonNull {
			parts[i] = scalarToDisplay(v)
		}
		return sqlvalue.Text("[" + strings.Join(parts, ",") + "]"), nil
	case "STDDEV", "STDDEV_SAMP":
		if len(nonNull) < 2 {
			return sqlvalue.Null(), nil
		}
		return sqlvalue.Float(math.Sqrt(sampleVariance(nonNull))), nil
	case "STDDEV_POP":
		if len(nonNull) == 0 {
			return sqlvalue.Null(), nil
		}
		return sqlvalue.Float(math.Sqrt(populationVariance(nonNull))), nil
	case "VARIANCE", "VAR_SAMP":
		if len(nonNull) < 2 {
			return sqlvalue.Null(), nil
		}
		return sqlvalue.Float(sampleVariance(nonNull)), nil
	case "VAR_POP":
		if len(nonNull) == 0 {
			return sqlvalue.Null(), nil
		}
		return sqlvalue.Float(populationVariance(nonNull)), nil
	default:
		return sqlvalue.Null(), sqlerr.New(sqlerr.SQL, "unknown aggregate function %s", fc.Name)
	}
}

func aggregateArgValues(e *Executor, base *rowSet, rowIdxs []int, fc *sqlast.FuncCall) ([]sqlvalue.Scalar, error) {
	if len(fc.Args) == 0 {
		return nil, nil
	}
	out := make([]sqlvalue.Scalar, 0, len(rowIdxs))
	for _, ri := range rowIdxs {
		ctx := evalCtx{e: e, rs: base, row: ri}
		v, err := ctx.evalExpr(fc.Args[0])
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if fc.Distinct {
		seen := make(map[string]bool, len(out))
		deduped := out[:0:0]
		for _, v := range out {
			k := scalarToKey(v)
			if seen[k] {
				continue
			}
			seen[k] = true
			deduped = append(deduped, v)
		}
		return deduped, nil
	}
	return out, nil
}

func evalCount(e *Executor, base *rowSet, rowIdxs []int, fc *sqlast.FuncCall) (sqlvalue.Scalar, error) {
	if len(fc.Args) == 1 {
		if _, ok := fc.Args[0].(*sqlast.WildcardExpr); ok {
			return sqlvalue.Int(int64(len(rowIdxs))), nil
		}
	}
	vals, err := aggregateArgValues(e, base, rowIdxs, fc)
	if err != nil {
		return sqlvalue.Null(), err
	}
	n := 0
	for _, v := range vals {
		if !v.IsNull() {
			n++
		}
	}
	return sqlvalue.Int(int64(n)), nil
}

func sumScalars(vals []sqlvalue.Scalar) sqlvalue.Scalar {
	allInt := true
	for _, v := range vals {
		if v.Kind() != sqlvalue.KindInt64 {
			allInt = false
			break
		}
	}
	if allInt {
		var total int64
		for _, v := range vals {
			total += v.Int()
		}
		return sqlvalue.Int(total)
	}
	var total float64
	for _, v := range vals {
		f, _ := toFloatOperand(v)
		total += f
	}
	return sqlvalue.Float(total)
}

func meanOf(vals []sqlvalue.Scalar) float64 {
	var total float64
	for _, v := range vals {
		f, _ := toFloatOperand(v)
		total += f
	}
	return total / float64(len(vals))
}

func sumSquaredDiffs(vals []sqlvalue.Scalar, mean float64) float64 {
	var ss float64
	for _, v := range vals {
		f, _ := toFloatOperand(v)
		d := f - mean
		ss += d * d
	}
	return ss
}

func sampleVariance(vals []sqlvalue.Scalar) float64 {
	mean := meanOf(vals)
	return sumSquaredDiffs(vals, mean) / float64(len(vals)-1)
}

func populationVariance(vals []sqlvalue.Scalar) float64 {
	mean := meanOf(vals)
	return sumSquaredDiffs(vals, mean) / float64(len(vals))
}
