package sqlexec

import (
	"fmt"
	"strings"

	"pivotsql/pkg/sqlast"
	"pivotsql/pkg/sqlerr"
	"pivotsql/pkg/sqlvalue"
)

func upper(s string) string { return strings.ToUpper(s) }

// evalCtx carries what evalExpr needs to resolve a column reference and
// to run a nested query (subquery, scalar subquery, EXISTS): the
// executor (for catalog/CTE access) and the current row, if any. row is
// -1 when there is no row context, e.g. an INSERT ... VALUES literal or
// a LIMIT/OFFSET expression.
type evalCtx struct {
	e             *Executor
	rs            *rowSet
	row           int
	aggResults    map[*sqlast.FuncCall]sqlvalue.Scalar
	windowResults map[*sqlast.FuncCall]map[int]sqlvalue.Scalar
}

func noRowCtx(e *Executor) evalCtx { return evalCtx{e: e, row: -1} }

// resolveColumn finds ref's column index in rs. A qualified reference
// first tries an exact (table, name) match, then falls back to a column
// literally named "table.name" (columns carrying a dotted display name,
// e.g. from an expanded table wildcard); an unqualified reference matches
// on name alone, first occurrence. This single algorithm replaces what
// would otherwise be two near-identical lookup paths.
func resolveColumn(rs *rowSet, ref *sqlast.ColumnRef) (int, error) {
	if rs == nil {
		return -1, sqlerr.New(sqlerr.ColumnNotFound, "no row context for column %q", ref.Name)
	}
	if ref.Table != "" {
		for i, c := range rs.cols {
			if strings.EqualFold(c.table, ref.Table) && strings.EqualFold(c.name, ref.Name) {
				return i, nil
			}
		}
		dotted := ref.Table + "." + ref.Name
		for i, c := range rs.cols {
			if strings.EqualFold(c.name, dotted) {
				return i, nil
			}
		}
	}
	for i, c := range rs.cols {
		if strings.EqualFold(c.name, ref.Name) {
			return i, nil
		}
	}
	if ref.Table != "" {
		return -1, sqlerr.New(sqlerr.ColumnNotFound, "column %q.%q not found", ref.Table, ref.Name)
	}
	return -1, sqlerr.New(sqlerr.ColumnNotFound, "column %q not found", ref.Name)
}

func (c evalCtx) currentRow() []sqlvalue.Scalar {
	if c.rs == nil || c.row < 0 || c.row >= len(c.rs.rows) {
		return nil
	}
	return c.rs.rows[c.row]
}

// evalExpr evaluates expr against the row (if any) in ctx.
func (ctx evalCtx) evalExpr(expr sqlast.Expr) (sqlvalue.Scalar, error) {
	switch ex := expr.(type) {
	case *sqlast.Literal:
		return ex.Value, nil

	case *sqlast.ColumnRef:
		idx, err := resolveColumn(ctx.rs, ex)
		if err != nil {
			return sqlvalue.Null(), err
		}
		row := ctx.currentRow()
		if row == nil {
			return sqlvalue.Null(), sqlerr.New(sqlerr.ColumnNotFound, "no current row for column %q", ex.Name)
		}
		return row[idx], nil

	case *sqlast.WildcardExpr:
		return sqlvalue.Null(), nil

	case *sqlast.UnaryExpr:
		return ctx.evalUnary(ex)

	case *sqlast.BinaryExpr:
		return ctx.evalBinary(ex)

	case *sqlast.CastExpr:
		v, err := ctx.evalExpr(ex.Expr)
		if err != nil {
			return sqlvalue.Null(), err
		}
		return sqlvalue.Cast(v, ex.Type), nil

	case *sqlast.IsNullExpr:
		v, err := ctx.evalExpr(ex.Expr)
		if err != nil {
			return sqlvalue.Null(), err
		}
		res := v.IsNull()
		if ex.Negated {
			res = !res
		}
		return sqlvalue.Bool(res), nil

	case *sqlast.InListExpr:
		return ctx.evalInList(ex)

	case *sqlast.InSubqueryExpr:
		return ctx.evalInSubquery(ex)

	case *sqlast.BetweenExpr:
		return ctx.evalBetween(ex)

	case *sqlast.LikeExpr:
		return ctx.evalLike(ex)

	case *sqlast.CaseExpr:
		return ctx.evalCase(ex)

	case *sqlast.SubqueryExpr:
		return ctx.evalScalarSubquery(ex)

	case *sqlast.ExistsExpr:
		return ctx.evalExists(ex)

	case *sqlast.FuncCall:
		return ctx.evalFuncCall(ex)

	default:
		return sqlvalue.Null(), sqlerr.New(sqlerr.SQL, "cannot evaluate expression of type %T", expr)
	}
}

func (ctx evalCtx) evalUnary(ex *sqlast.UnaryExpr) (sqlvalue.Scalar, error) {
	v, err := ctx.evalExpr(ex.Expr)
	if err != nil {
		return sqlvalue.Null(), err
	}
	switch ex.Op {
	case sqlast.Neg:
		if v.IsNull() {
			return sqlvalue.Null(), nil
		}
		switch v.Kind() {
		case sqlvalue.KindInt64:
			return sqlvalue.Int(-v.Int()), nil
		case sqlvalue.KindFloat64:
			return sqlvalue.Float(-v.Float()), nil
		default:
			return sqlvalue.Null(), nil
		}
	case sqlast.Not:
		if v.IsNull() {
			return sqlvalue.Null(), nil
		}
		return sqlvalue.Bool(!isTruthy(v)), nil
	default:
		return sqlvalue.Null(), sqlerr.New(sqlerr.SQL, "unknown unary operator")
	}
}

// evalBinary implements three-valued logic: AND/OR short-circuit on a
// deciding operand even when the other side is NULL, every other
// operator propagates NULL generically except Concat, which stringifies
// NULL operands to "" instead of propagating — a deliberate departure
// from strict NULL propagation so string-building expressions don't
// collapse to NULL because one part is unknown.
func (ctx evalCtx) evalBinary(ex *sqlast.BinaryExpr) (sqlvalue.Scalar, error) {
	if ex.Op == sqlast.And || ex.Op == sqlast.Or {
		l, err := ctx.evalExpr(ex.Left)
		if err != nil {
			return sqlvalue.Null(), err
		}
		if ex.Op == sqlast.And && !l.IsNull() && !isTruthy(l) {
			return sqlvalue.Bool(false), nil
		}
		if ex.Op == sqlast.Or && !l.IsNull() && isTruthy(l) {
			return sqlvalue.Bool(true), nil
		}
		r, err := ctx.evalExpr(ex.Right)
		if err != nil {
			return sqlvalue.Null(), err
		}
		if l.IsNull() || r.IsNull() {
			if ex.Op == sqlast.And && (!r.IsNull() && !isTruthy(r) || !l.IsNull() && !isTruthy(l)) {
				return sqlvalue.Bool(false), nil
			}
			if ex.Op == sqlast.Or && (!r.IsNull() && isTruthy(r) || !l.IsNull() && isTruthy(l)) {
				return sqlvalue.Bool(true), nil
			}
			return sqlvalue.Null(), nil
		}
		if ex.Op == sqlast.And {
			return sqlvalue.Bool(isTruthy(l) && isTruthy(r)), nil
		}
		return sqlvalue.Bool(isTruthy(l) || isTruthy(r)), nil
	}

	l, err := ctx.evalExpr(ex.Left)
	if err != nil {
		return sqlvalue.Null(), err
	}
	r, err := ctx.evalExpr(ex.Right)
	if err != nil {
		return sqlvalue.Null(), err
	}

	if ex.Op == sqlast.Concat {
		return sqlvalue.Text(scalarToDisplay(l) + scalarToDisplay(r)), nil
	}

	if l.IsNull() || r.IsNull() {
		return sqlvalue.Null(), nil
	}

	switch ex.Op {
	case sqlast.Eq:
		return sqlvalue.Bool(scalarEq(l, r)), nil
	case sqlast.NotEq:
		return sqlvalue.Bool(!scalarEq(l, r)), nil
	case sqlast.Lt:
		return sqlvalue.Bool(scalarCmp(l, r) < 0), nil
	case sqlast.LtEq:
		return sqlvalue.Bool(scalarCmp(l, r) <= 0), nil
	case sqlast.Gt:
		return sqlvalue.Bool(scalarCmp(l, r) > 0), nil
	case sqlast.GtEq:
		return sqlvalue.Bool(scalarCmp(l, r) >= 0), nil
	case sqlast.Add, sqlast.Sub, sqlast.Mul, sqlast.Div, sqlast.Mod:
		return numericOp(ex.Op, l, r)
	default:
		return sqlvalue.Null(), sqlerr.New(sqlerr.SQL, "unknown binary operator")
	}
}

// numericOp guards division by zero with a hard error. Modulo by zero is
// guarded the same way even though this is a deliberate strengthening:
// leaving it unguarded like division's sibling would surface as a Go
// panic instead of a catchable SQL error.
func numericOp(op sqlast.BinOp, l, r sqlvalue.Scalar) (sqlvalue.Scalar, error) {
	bothInt := l.Kind() == sqlvalue.KindInt64 && r.Kind() == sqlvalue.KindInt64
	if bothInt {
		a, b := l.Int(), r.Int()
		switch op {
		case sqlast.Add:
			return sqlvalue.Int(a + b), nil
		case sqlast.Sub:
			return sqlvalue.Int(a - b), nil
		case sqlast.Mul:
			return sqlvalue.Int(a * b), nil
		case sqlast.Div:
			if b == 0 {
				return sqlvalue.Null(), sqlerr.New(sqlerr.SQL, "division by zero")
			}
			return sqlvalue.Int(a / b), nil
		case sqlast.Mod:
			if b == 0 {
				return sqlvalue.Null(), sqlerr.New(sqlerr.SQL, "modulo by zero")
			}
			return sqlvalue.Int(a % b), nil
		}
	}
	af, aok := toFloatOperand(l)
	bf, bok := toFloatOperand(r)
	if !aok || !bok {
		return sqlvalue.Null(), nil
	}
	switch op {
	case sqlast.Add:
		return sqlvalue.Float(af + bf), nil
	case sqlast.Sub:
		return sqlvalue.Float(af - bf), nil
	case sqlast.Mul:
		return sqlvalue.Float(af * bf), nil
	case sqlast.Div:
		if bf == 0 {
			return sqlvalue.Null(), sqlerr.New(sqlerr.SQL, "division by zero")
		}
		return sqlvalue.Float(af / bf), nil
	case sqlast.Mod:
		if bf == 0 {
			return sqlvalue.Null(), sqlerr.New(sqlerr.SQL, "modulo by zero")
		}
		return sqlvalue.Float(floatMod(af, bf)), nil
	}
	return sqlvalue.Null(), nil
}

func floatMod(a, b float64) float64 {
	for a >= b {
		a -= b
	}
	for a < 0 {
		a += b
	}
	return a
}

func toFloatOperand(v sqlvalue.Scalar) (float64, bool) {
	switch v.Kind() {
	case sqlvalue.KindInt64:
		return float64(v.Int()), true
	case sqlvalue.KindFloat64:
		return v.Float(), true
	default:
		return 0, false
	}
}

// evalInList evaluates x [NOT] IN (list). A NULL x yields NULL, matching
// standard SQL; a non-NULL x that matches no list element yields
// false/true regardless of whether a NULL also appears in the list,
// a simplified three-valued-logic rule rather than full NULL propagation.
func (ctx evalCtx) evalInList(ex *sqlast.InListExpr) (sqlvalue.Scalar, error) {
	v, err := ctx.evalExpr(ex.Expr)
	if err != nil {
		return sqlvalue.Null(), err
	}
	if v.IsNull() {
		return sqlvalue.Null(), nil
	}
	for _, item := range ex.List {
		iv, err := ctx.evalExpr(item)
		if err != nil {
			return sqlvalue.Null(), err
		}
		if iv.IsNull() {
			continue
		}
		if scalarEq(v, iv) {
			return sqlvalue.Bool(!ex.Negated), nil
		}
	}
	return sqlvalue.Bool(ex.Negated), nil
}

func (ctx evalCtx) evalInSubquery(ex *sqlast.InSubqueryExpr) (sqlvalue.Scalar, error) {
	v, err := ctx.evalExpr(ex.Expr)
	if err != nil {
		return sqlvalue.Null(), err
	}
	if v.IsNull() {
		return sqlvalue.Null(), nil
	}
	rs, err := ctx.e.evalQuery(ex.Query)
	if err != nil {
		return sqlvalue.Null(), err
	}
	sawNull := false
	for _, row := range rs.rows {
		if len(row) == 0 {
			continue
		}
		if row[0].IsNull() {
			sawNull = true
			continue
		}
		if scalarEq(v, row[0]) {
			return sqlvalue.Bool(!ex.Negated), nil
		}
	}
	if sawNull {
		return sqlvalue.Null(), nil
	}
	return sqlvalue.Bool(ex.Negated), nil
}

func (ctx evalCtx) evalBetween(ex *sqlast.BetweenExpr) (sqlvalue.Scalar, error) {
	v, err := ctx.evalExpr(ex.Expr)
	if err != nil {
		return sqlvalue.Null(), err
	}
	lo, err := ctx.evalExpr(ex.Low)
	if err != nil {
		return sqlvalue.Null(), err
	}
	hi, err := ctx.evalExpr(ex.High)
	if err != nil {
		return sqlvalue.Null(), err
	}
	if v.IsNull() || lo.IsNull() || hi.IsNull() {
		return sqlvalue.Null(), nil
	}
	res := scalarCmp(v, lo) >= 0 && scalarCmp(v, hi) <= 0
	if ex.Negated {
		res = !res
	}
	return sqlvalue.Bool(res), nil
}

func (ctx evalCtx) evalLike(ex *sqlast.LikeExpr) (sqlvalue.Scalar, error) {
	v, err := ctx.evalExpr(ex.Expr)
	if err != nil {
		return sqlvalue.Null(), err
	}
	p, err := ctx.evalExpr(ex.Pattern)
	if err != nil {
		return sqlvalue.Null(), err
	}
	if v.IsNull() || p.IsNull() {
		return sqlvalue.Null(), nil
	}
	s, pat := v.String(), p.String()
	if v.Kind() != sqlvalue.KindUtf8 {
		s = v.String()
	}
	if ex.CaseInsensitive {
		s, pat = strings.ToLower(s), strings.ToLower(pat)
	}
	res := likeMatch(s, pat)
	if ex.Negated {
		res = !res
	}
	return sqlvalue.Bool(res), nil
}

// likeMatch implements SQL LIKE's two wildcards: % (any run, including
// empty) and _ (exactly one character), by recursive backtracking.
func likeMatch(s, pat string) bool {
	sr, pr := []rune(s), []rune(pat)
	return likeMatchRunes(sr, pr)
}

func likeMatchRunes(s, p []rune) bool {
	if len(p) == 0 {
		return len(s) == 0
	}
	switch p[0] {
	case '%':
		if likeMatchRunes(s, p[1:]) {
			return true
		}
		for i := 0; i < len(s); i++ {
			if likeMatchRunes(s[i+1:], p[1:]) {
				return true
			}
		}
		return false
	case '_':
		if len(s) == 0 {
			return false
		}
		return likeMatchRunes(s[1:], p[1:])
	default:
		if len(s) == 0 || s[0] != p[0] {
			return false
		}
		return likeMatchRunes(s[1:], p[1:])
	}
}

func (ctx evalCtx) evalCase(ex *sqlast.CaseExpr) (sqlvalue.Scalar, error) {
	var operand sqlvalue.Scalar
	hasOperand := ex.Operand != nil
	if hasOperand {
		v, err := ctx.evalExpr(ex.Operand)
		if err != nil {
			return sqlvalue.Null(), err
		}
		operand = v
	}
	for _, w := range ex.Whens {
		if hasOperand {
			wv, err := ctx.evalExpr(w.When)
			if err != nil {
				return sqlvalue.Null(), err
			}
			if !operand.IsNull() && !wv.IsNull() && scalarEq(operand, wv) {
				return ctx.evalExpr(w.Then)
			}
			continue
		}
		cond, err := ctx.evalExpr(w.When)
		if err != nil {
			return sqlvalue.Null(), err
		}
		if !cond.IsNull() && isTruthy(cond) {
			return ctx.evalExpr(w.Then)
		}
	}
	if ex.Else != nil {
		return ctx.evalExpr(ex.Else)
	}
	return sqlvalue.Null(), nil
}

// evalScalarSubquery actually runs the nested query against the catalog
// and returns its first row's first column (NULL if it has no rows).
func (ctx evalCtx) evalScalarSubquery(ex *sqlast.SubqueryExpr) (sqlvalue.Scalar, error) {
	rs, err := ctx.e.evalQuery(ex.Query)
	if err != nil {
		return sqlvalue.Null(), err
	}
	if len(rs.rows) == 0 || len(rs.cols) == 0 {
		return sqlvalue.Null(), nil
	}
	return rs.rows[0][0], nil
}

func (ctx evalCtx) evalExists(ex *sqlast.ExistsExpr) (sqlvalue.Scalar, error) {
	rs, err := ctx.e.evalQuery(ex.Query)
	if err != nil {
		return sqlvalue.Null(), err
	}
	res := len(rs.rows) > 0
	if ex.Negated {
		res = !res
	}
	return sqlvalue.Bool(res), nil
}

// isTruthy treats any non-Boolean, non-NULL value as true, mirroring the
// permissive coercion CASE/WHEN and WHERE apply to non-boolean operands.
func isTruthy(v sqlvalue.Scalar) bool {
	switch v.Kind() {
	case sqlvalue.KindBoolean:
		return v.Bool()
	case sqlvalue.KindNull:
		return false
	default:
		return true
	}
}

// scalarEq treats NULL as never equal to anything, including itself.
func scalarEq(a, b sqlvalue.Scalar) bool {
	if a.IsNull() || b.IsNull() {
		return false
	}
	af, aok := toFloatOperand(a)
	bf, bok := toFloatOperand(b)
	if aok && bok {
		return af == bf
	}
	if a.Kind() != b.Kind() {
		return scalarToDisplay(a) == scalarToDisplay(b)
	}
	switch a.Kind() {
	case sqlvalue.KindBoolean:
		return a.Bool() == b.Bool()
	case sqlvalue.KindUtf8:
		return a.Text() == b.Text()
	case sqlvalue.KindDate, sqlvalue.KindTimestamp, sqlvalue.KindTime:
		return a.Int() == b.Int()
	default:
		return a.String() == b.String()
	}
}

// scalarCmp orders values for comparison operators and ORDER BY. Numeric
// kinds compare numerically across Int64/Float64; everything else falls
// back to lexical comparison of its display form.
func scalarCmp(a, b sqlvalue.Scalar) int {
	af, aok := toFloatOperand(a)
	bf, bok := toFloatOperand(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	if a.Kind() == b.Kind() {
		switch a.Kind() {
		case sqlvalue.KindDate, sqlvalue.KindTimestamp, sqlvalue.KindTime:
			return cmpInt64(a.Int(), b.Int())
		case sqlvalue.KindBoolean:
			return cmpInt64(boolToInt(a.Bool()), boolToInt(b.Bool()))
		}
	}
	sa, sb := scalarToDisplay(a), scalarToDisplay(b)
	return strings.Compare(sa, sb)
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// scalarToDisplay renders v for Concat and heterogeneous-type equality,
// rendering NULL as the empty string rather than a literal "NULL".
func scalarToDisplay(v sqlvalue.Scalar) string {
	if v.IsNull() {
		return ""
	}
	return v.String()
}

// scalarToKey renders v into a string usable as a map/dedup key, distinct
// from scalarToDisplay because NULL must be distinguishable from "" for
// GROUP BY and DISTINCT, where NULLs must all land in the same bucket
// without colliding with an empty string value.
func scalarToKey(v sqlvalue.Scalar) string {
	if v.IsNull() {
		return "\x00NULL"
	}
	return fmt.Sprintf("%d:%s", v.Kind(), v.String())
}

func rowKey(row []sqlvalue.Scalar) string {
	var sb strings.Builder
	for i, v := range row {
		if i > 0 {
			sb.WriteByte('\x1f')
		}
		sb.WriteString(scalarToKey(v))
	}
	return sb.String()
}

