package sqlexec

import (
	"pivotsql/pkg/sqlast"
	"pivotsql/pkg/sqlerr"
	"pivotsql/pkg/sqlvalue"
)

var aggregateFuncNames = map[string]bool{
	"COUNT": true, "SUM": true, "AVG": true, "MIN": true, "MAX": true,
	"STRING_AGG": true, "GROUP_CONCAT": true, "LISTAGG": true, "ARRAY_AGG": true,
	"STDDEV": true, "STDDEV_SAMP": true, "STDDEV_POP": true,
	"VARIANCE": true, "VAR_SAMP": true, "VAR_POP": true,
}

func isAggregateFuncName(name string) bool { return aggregateFuncNames[upper(name)] }

// isValidWindowFuncName reports whether name can legally carry an OVER
// clause: either one of the window-only functions (ROW_NUMBER, RANK, ...)
// or one of the aggregate functions usable as a window aggregate.
func isValidWindowFuncName(name string) bool {
	n := upper(name)
	return windowOnlyFuncNames[n] || isAggregateFuncName(n)
}

var windowOnlyFuncNames = map[string]bool{
	"ROW_NUMBER": true, "RANK": true, "DENSE_RANK": true, "NTILE": true,
	"PERCENT_RANK": true, "CUME_DIST": true, "LAG": true, "LEAD": true,
	"FIRST_VALUE": true, "LAST_VALUE": true, "NTH_VALUE": true,
}

// exprHasAggregate reports whether expr contains an aggregate function
// call anywhere in its tree, including nested inside another function's
// arguments (ROUND(SUM(x), 2) counts) — a deliberate broadening versus a
// shallower check that only looks at an expression's direct top level.
func exprHasAggregate(expr sqlast.Expr) bool {
	found := false
	walkExpr(expr, func(e sqlast.Expr) {
		if fc, ok := e.(*sqlast.FuncCall); ok && isAggregateFuncName(fc.Name) {
			found = true
		}
	})
	return found
}

// exprHasWindow reports whether expr contains a function call carrying an
// OVER clause anywhere in its tree, with the same full-recursion policy
// as exprHasAggregate.
func exprHasWindow(expr sqlast.Expr) bool {
	found := false
	walkExpr(expr, func(e sqlast.Expr) {
		if fc, ok := e.(*sqlast.FuncCall); ok && fc.Over != nil {
			found = true
		}
	})
	return found
}

func selectItemsHaveAggregate(items []sqlast.SelectItem) bool {
	for _, it := range items {
		if it.Expr != nil && exprHasAggregate(it.Expr) {
			return true
		}
	}
	return false
}

// collectAggregateCalls gathers every aggregate FuncCall node reachable
// from expr. A FuncCall that is itself an aggregate stops the walk at its
// own argument list: those arguments are evaluated against group member
// rows by evalAggregate, not by the generic per-row evaluator.
func collectAggregateCalls(expr sqlast.Expr, out *[]*sqlast.FuncCall) {
	if expr == nil {
		return
	}
	if fc, ok := expr.(*sqlast.FuncCall); ok && isAggregateFuncName(fc.Name) {
		*out = append(*out, fc)
		return
	}
	walkChildren(expr, func(child sqlast.Expr) { collectAggregateCalls(child, out) })
}

// walkExpr visits expr and every descendant expression node, invoking fn
// on each (expr itself included).
func walkExpr(expr sqlast.Expr, fn func(sqlast.Expr)) {
	if expr == nil {
		return
	}
	fn(expr)
	walkChildren(expr, func(child sqlast.Expr) { walkExpr(child, fn) })
}

func walkChildren(expr sqlast.Expr, visit func(sqlast.Expr)) {
	switch ex := expr.(type) {
	case *sqlast.UnaryExpr:
		visit(ex.Expr)
	case *sqlast.BinaryExpr:
		visit(ex.Left)
		visit(ex.Right)
	case *sqlast.CastExpr:
		visit(ex.Expr)
	case *sqlast.IsNullExpr:
		visit(ex.Expr)
	case *sqlast.InListExpr:
		visit(ex.Expr)
		for _, it := range ex.List {
			visit(it)
		}
	case *sqlast.InSubqueryExpr:
		visit(ex.Expr)
	case *sqlast.BetweenExpr:
		visit(ex.Expr)
		visit(ex.Low)
		visit(ex.High)
	case *sqlast.LikeExpr:
		visit(ex.Expr)
		visit(ex.Pattern)
	case *sqlast.CaseExpr:
		if ex.Operand != nil {
			visit(ex.Operand)
		}
		for _, w := range ex.Whens {
			visit(w.When)
			visit(w.Then)
		}
		if ex.Else != nil {
			visit(ex.Else)
		}
	case *sqlast.FuncCall:
		for _, a := range ex.Args {
			visit(a)
		}
		if ex.Over != nil {
			for _, p := range ex.Over.PartitionBy {
				visit(p)
			}
			for _, o := range ex.Over.OrderBy {
				visit(o.Expr)
			}
		}
	}
}

// evalFuncCall dispatches a function call encountered during normal
// per-row expression evaluation. Aggregate calls are resolved by the
// GROUP BY stage ahead of time and consulted here through ctx.aggResults;
// window calls are resolved by the projection stage's post-processing
// pass and never reach this path, since a bare OVER-bearing call would
// have no partition/order context to evaluate against mid-expression.
func (ctx evalCtx) evalFuncCall(fc *sqlast.FuncCall) (sqlvalue.Scalar, error) {
	if ctx.windowResults != nil {
		if perRow, ok := ctx.windowResults[fc]; ok {
			if v, ok2 := perRow[ctx.row]; ok2 {
				return v, nil
			}
		}
	}
	if ctx.aggResults != nil {
		if v, ok := ctx.aggResults[fc]; ok {
			return v, nil
		}
	}
	if fc.Over != nil {
		return sqlvalue.Null(), sqlerr.New(sqlerr.SQL, "window function %s used outside a result column", fc.Name)
	}
	if isAggregateFuncName(fc.Name) {
		return sqlvalue.Null(), sqlerr.New(sqlerr.SQL, "aggregate function %s used outside GROUP BY context", fc.Name)
	}

	args := make([]sqlvalue.Scalar, len(fc.Args))
	for i, a := range fc.Args {
		v, err := ctx.evalExpr(a)
		if err != nil {
			return sqlvalue.Null(), err
		}
		args[i] = v
	}

	if v, ok, err := evalSpecialFunc(fc.Name, fc.Args, args, ctx); ok {
		return v, err
	}
	if v, ok := callScalarFunction(fc.Name, args); ok {
		return v, nil
	}
	if v, ok := callDatetimeFunction(fc.Name, args); ok {
		return v, nil
	}
	return sqlvalue.Null(), nil
}

// evalSpecialFunc handles the handful of functions whose semantics need
// the unevaluated argument expressions (short-circuiting COALESCE/IFNULL)
// or variable arity comparisons (GREATEST/LEAST) rather than a plain
// values-in-values-out table.
func evalSpecialFunc(name string, argExprs []sqlast.Expr, args []sqlvalue.Scalar, ctx evalCtx) (sqlvalue.Scalar, bool, error) {
	switch upper(name) {
	case "COALESCE":
		for _, a := range argExprs {
			v, err := ctx.evalExpr(a)
			if err != nil {
				return sqlvalue.Null(), true, err
			}
			if !v.IsNull() {
				return v, true, nil
			}
		}
		return sqlvalue.Null(), true, nil
	case "IFNULL", "NVL":
		if len(argExprs) < 2 {
			return sqlvalue.Null(), true, nil
		}
		v, err := ctx.evalExpr(argExprs[0])
		if err != nil {
			return sqlvalue.Null(), true, err
		}
		if !v.IsNull() {
			return v, true, nil
		}
		v2, err := ctx.evalExpr(argExprs[1])
		return v2, true, err
	case "NULLIF":
		if len(args) < 2 {
			return sqlvalue.Null(), true, nil
		}
		if scalarEq(args[0], args[1]) {
			return sqlvalue.Null(), true, nil
		}
		return args[0], true, nil
	case "IF", "IIF":
		if len(argExprs) < 3 {
			return sqlvalue.Null(), true, nil
		}
		cond, err := ctx.evalExpr(argExprs[0])
		if err != nil {
			return sqlvalue.Null(), true, err
		}
		if !cond.IsNull() && isTruthy(cond) {
			v, err := ctx.evalExpr(argExprs[1])
			return v, true, err
		}
		v, err := ctx.evalExpr(argExprs[2])
		return v, true, err
	case "GREATEST":
		return extremeOf(args, true), true, nil
	case "LEAST":
		return extremeOf(args, false), true, nil
	default:
		return sqlvalue.Null(), false, nil
	}
}

func extremeOf(args []sqlvalue.Scalar, greatest bool) sqlvalue.Scalar {
	var best sqlvalue.Scalar
	has := false
	for _, a := range args {
		if a.IsNull() {
			continue
		}
		if !has {
			best, has = a, true
			continue
		}
		cmp := scalarCmp(a, best)
		if (greatest && cmp > 0) || (!greatest && cmp < 0) {
			best = a
		}
	}
	if !has {
		return sqlvalue.Null()
	}
	return best
}
