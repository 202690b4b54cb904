package sqlexec

import (
	"fmt"
	"strings"

	"pivotsql/pkg/sqlast"
)

// execExplain renders the wrapped statement's plan as a human-readable
// string rather than executing it.
func (e *Executor) execExplain(s *sqlast.ExplainStatement) (QueryResult, error) {
	return QueryResult{Message: "Plan: " + renderStatement(s.Stmt)}, nil
}

// renderStatement produces a compact, readable textual plan for stmt,
// close enough to its SQL surface form to be useful as EXPLAIN output
// without re-deriving a full, reversible unparse.
func renderStatement(stmt sqlast.Statement) string {
	switch s := stmt.(type) {
	case *sqlast.SelectStatement:
		var b strings.Builder
		b.WriteString("SELECT ")
		if s.Distinct {
			b.WriteString("DISTINCT ")
		}
		b.WriteString(renderSelectItems(s.Columns))
		if s.From != nil {
			b.WriteString(" FROM ")
			b.WriteString(renderTableRef(*s.From))
		}
		for _, j := range s.Joins {
			b.WriteString(" " + joinKeyword(j.Type) + " " + renderTableRef(j.Table))
			if j.Condition.On != nil {
				b.WriteString(" ON " + renderExpr(j.Condition.On))
			} else if len(j.Condition.Using) > 0 {
				b.WriteString(" USING (" + strings.Join(j.Condition.Using, ", ") + ")")
			}
		}
		if s.Where != nil {
			b.WriteString(" WHERE " + renderExpr(s.Where))
		}
		if len(s.GroupBy) > 0 {
			b.WriteString(" GROUP BY " + renderExprList(s.GroupBy))
		}
		if s.Having != nil {
			b.WriteString(" HAVING " + renderExpr(s.Having))
		}
		if len(s.OrderBy) > 0 {
			items := make([]string, len(s.OrderBy))
			for i, ob := range s.OrderBy {
				dir := "ASC"
				if !ob.Ascending {
					dir = "DESC"
				}
				items[i] = renderExpr(ob.Expr) + " " + dir
			}
			b.WriteString(" ORDER BY " + strings.Join(items, ", "))
		}
		if s.Limit != nil {
			b.WriteString(" LIMIT " + renderExpr(s.Limit))
		}
		if s.Offset != nil {
			b.WriteString(" OFFSET " + renderExpr(s.Offset))
		}
		return b.String()

	case *sqlast.InsertStatement:
		target := "VALUES (...)"
		if s.Select != nil {
			target = renderStatement(s.Select)
		}
		return fmt.Sprintf("INSERT INTO %s %s", s.Table, target)

	case *sqlast.UpdateStatement:
		sets := make([]string, len(s.Assignments))
		for i, a := range s.Assignments {
			sets[i] = a.Column + " = " + renderExpr(a.Value)
		}
		out := fmt.Sprintf("UPDATE %s SET %s", s.Table, strings.Join(sets, ", "))
		if s.Where != nil {
			out += " WHERE " + renderExpr(s.Where)
		}
		return out

	case *sqlast.DeleteStatement:
		out := "DELETE FROM " + s.Table
		if s.Where != nil {
			out += " WHERE " + renderExpr(s.Where)
		}
		return out

	case *sqlast.CreateTableStatement:
		cols := make([]string, len(s.Columns))
		for i, c := range s.Columns {
			cols[i] = c.Name + " " + c.Type.String()
		}
		return fmt.Sprintf("CREATE TABLE %s (%s)", s.Name, strings.Join(cols, ", "))

	case *sqlast.DropTableStatement:
		return "DROP TABLE " + s.Name

	case *sqlast.WithStatement:
		names := make([]string, len(s.Ctes))
		for i, c := range s.Ctes {
			names[i] = c.Name
		}
		return fmt.Sprintf("WITH %s AS (...) %s", strings.Join(names, ", "), renderStatement(s.Body))

	case *sqlast.SetOpStatement:
		op := map[sqlast.SetOpKind]string{sqlast.Union: "UNION", sqlast.Intersect: "INTERSECT", sqlast.Except: "EXCEPT"}[s.Op]
		if s.All {
			op += " ALL"
		}
		return fmt.Sprintf("(%s) %s (%s)", renderStatement(s.Left), op, renderStatement(s.Right))

	case *sqlast.TransactionStatement:
		return map[sqlast.TxnKind]string{sqlast.Begin: "BEGIN", sqlast.Commit: "COMMIT", sqlast.Rollback: "ROLLBACK"}[s.Kind]

	case *sqlast.ExplainStatement:
		return "EXPLAIN " + renderStatement(s.Stmt)

	default:
		return fmt.Sprintf("<%T>", stmt)
	}
}

func renderSelectItems(items []sqlast.SelectItem) string {
	parts := make([]string, len(items))
	for i, it := range items {
		switch {
		case it.Wildcard:
			parts[i] = "*"
		case it.TableWildcard != "":
			parts[i] = it.TableWildcard + ".*"
		default:
			parts[i] = renderExpr(it.Expr)
			if it.Alias != "" {
				parts[i] += " AS " + it.Alias
			}
		}
	}
	return strings.Join(parts, ", ")
}

func renderTableRef(t sqlast.TableRef) string {
	var base string
	if t.Subquery != nil {
		base = "(" + renderStatement(t.Subquery) + ")"
	} else {
		base = t.TableName
	}
	if t.Alias != "" {
		base += " AS " + t.Alias
	}
	return base
}

func joinKeyword(jt sqlast.JoinType) string {
	switch jt {
	case sqlast.LeftJoin:
		return "LEFT JOIN"
	case sqlast.RightJoin:
		return "RIGHT JOIN"
	case sqlast.FullJoin:
		return "FULL JOIN"
	case sqlast.CrossJoin:
		return "CROSS JOIN"
	default:
		return "JOIN"
	}
}

func renderExprList(exprs []sqlast.Expr) string {
	parts := make([]string, len(exprs))
	for i, ex := range exprs {
		parts[i] = renderExpr(ex)
	}
	return strings.Join(parts, ", ")
}

var binOpText = map[sqlast.BinOp]string{
	sqlast.Add: "+", sqlast.Sub: "-", sqlast.Mul: "*", sqlast.Div: "/", sqlast.Mod: "%",
	sqlast.Eq: "=", sqlast.NotEq: "<>", sqlast.Lt: "<", sqlast.LtEq: "<=",
	sqlast.Gt: ">", sqlast.GtEq: ">=", sqlast.And: "AND", sqlast.Or: "OR", sqlast.Concat: "||",
}

// renderExpr produces a readable, not necessarily round-trippable,
// rendering of ex for use in EXPLAIN output and similar diagnostics.
func renderExpr(ex sqlast.Expr) string {
	switch e := ex.(type) {
	case nil:
		return ""
	case *sqlast.ColumnRef:
		if e.Table != "" {
			return e.Table + "." + e.Name
		}
		return e.Name
	case *sqlast.Literal:
		return e.Value.String()
	case *sqlast.BinaryExpr:
		return renderExpr(e.Left) + " " + binOpText[e.Op] + " " + renderExpr(e.Right)
	case *sqlast.UnaryExpr:
		if e.Op == sqlast.Not {
			return "NOT " + renderExpr(e.Expr)
		}
		return "-" + renderExpr(e.Expr)
	case *sqlast.FuncCall:
		args := renderExprList(e.Args)
		if e.Distinct {
			args = "DISTINCT " + args
		}
		out := e.Name + "(" + args + ")"
		if e.Over != nil {
			out += " OVER (...)"
		}
		return out
	case *sqlast.CastExpr:
		name := "CAST"
		if e.Try {
			name = "TRY_CAST"
		}
		return fmt.Sprintf("%s(%s AS %s)", name, renderExpr(e.Expr), e.Type.String())
	case *sqlast.CaseExpr:
		var b strings.Builder
		b.WriteString("CASE")
		if e.Operand != nil {
			b.WriteString(" " + renderExpr(e.Operand))
		}
		for _, w := range e.Whens {
			b.WriteString(" WHEN " + renderExpr(w.When) + " THEN " + renderExpr(w.Then))
		}
		if e.Else != nil {
			b.WriteString(" ELSE " + renderExpr(e.Else))
		}
		b.WriteString(" END")
		return b.String()
	case *sqlast.IsNullExpr:
		if e.Negated {
			return renderExpr(e.Expr) + " IS NOT NULL"
		}
		return renderExpr(e.Expr) + " IS NULL"
	case *sqlast.InListExpr:
		not := ""
		if e.Negated {
			not = "NOT "
		}
		return fmt.Sprintf("%s %sIN (%s)", renderExpr(e.Expr), not, renderExprList(e.List))
	case *sqlast.InSubqueryExpr:
		not := ""
		if e.Negated {
			not = "NOT "
		}
		return fmt.Sprintf("%s %sIN (%s)", renderExpr(e.Expr), not, renderStatement(e.Query))
	case *sqlast.BetweenExpr:
		not := ""
		if e.Negated {
			not = "NOT "
		}
		return fmt.Sprintf("%s %sBETWEEN %s AND %s", renderExpr(e.Expr), not, renderExpr(e.Low), renderExpr(e.High))
	case *sqlast.LikeExpr:
		op := "LIKE"
		if e.CaseInsensitive {
			op = "ILIKE"
		}
		if e.Negated {
			op = "NOT " + op
		}
		return fmt.Sprintf("%s %s %s", renderExpr(e.Expr), op, renderExpr(e.Pattern))
	case *sqlast.SubqueryExpr:
		return "(" + renderStatement(e.Query) + ")"
	case *sqlast.ExistsExpr:
		not := ""
		if e.Negated {
			not = "NOT "
		}
		return fmt.Sprintf("%sEXISTS (%s)", not, renderStatement(e.Query))
	case *sqlast.WildcardExpr:
		return "*"
	default:
		return fmt.Sprintf("<%T>", ex)
	}
}
