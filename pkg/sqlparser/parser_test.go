package sqlparser

import (
	"testing"

	"pivotsql/pkg/sqlast"
	"pivotsql/pkg/sqlvalue"
)

func parseOneT(t *testing.T, sql string) sqlast.Statement {
	t.Helper()
	stmt, err := ParseOne(sql)
	if err != nil {
		t.Fatalf("ParseOne(%q): %v", sql, err)
	}
	return stmt
}

func TestParseCreateTable(t *testing.T) {
	stmt := parseOneT(t, `CREATE TABLE IF NOT EXISTS widgets (
		id INT NOT NULL,
		name TEXT,
		price DECIMAL(10,2)
	)`)
	ct, ok := stmt.(*sqlast.CreateTableStatement)
	if !ok {
		t.Fatalf("got %T, want *CreateTableStatement", stmt)
	}
	if ct.Name != "widgets" || !ct.IfNotExists {
		t.Errorf("Name=%q IfNotExists=%v", ct.Name, ct.IfNotExists)
	}
	if len(ct.Columns) != 3 {
		t.Fatalf("expected 3 columns, got %d", len(ct.Columns))
	}
	if ct.Columns[0].Name != "id" || ct.Columns[0].Nullable {
		t.Errorf("id column = %+v", ct.Columns[0])
	}
	if ct.Columns[0].Type.Base != sqlvalue.Int64 {
		t.Errorf("id type = %v, want Int64", ct.Columns[0].Type.Base)
	}
	if !ct.Columns[1].Nullable {
		t.Error("name column should default nullable")
	}
	if ct.Columns[2].Type.Base != sqlvalue.Decimal || ct.Columns[2].Type.Precision != 10 || ct.Columns[2].Type.Scale != 2 {
		t.Errorf("price type = %+v", ct.Columns[2].Type)
	}
}

func TestParseDropTable(t *testing.T) {
	stmt := parseOneT(t, "DROP TABLE IF EXISTS widgets")
	dt, ok := stmt.(*sqlast.DropTableStatement)
	if !ok {
		t.Fatalf("got %T, want *DropTableStatement", stmt)
	}
	if dt.Name != "widgets" || !dt.IfExists {
		t.Errorf("Name=%q IfExists=%v", dt.Name, dt.IfExists)
	}
}

func TestParseInsertValues(t *testing.T) {
	stmt := parseOneT(t, "INSERT INTO widgets (id, name) VALUES (1, 'a'), (2, 'b')")
	ins, ok := stmt.(*sqlast.InsertStatement)
	if !ok {
		t.Fatalf("got %T, want *InsertStatement", stmt)
	}
	if ins.Table != "widgets" {
		t.Errorf("Table = %q", ins.Table)
	}
	if len(ins.Columns) != 2 || ins.Columns[0] != "id" || ins.Columns[1] != "name" {
		t.Errorf("Columns = %v", ins.Columns)
	}
	if len(ins.Values) != 2 || len(ins.Values[0]) != 2 {
		t.Fatalf("Values = %+v", ins.Values)
	}
}

func TestParseInsertSelect(t *testing.T) {
	stmt := parseOneT(t, "INSERT INTO copies SELECT * FROM widgets")
	ins, ok := stmt.(*sqlast.InsertStatement)
	if !ok {
		t.Fatalf("got %T, want *InsertStatement", stmt)
	}
	if ins.Select == nil {
		t.Fatal("expected Select to be populated")
	}
	if _, ok := ins.Select.(*sqlast.SelectStatement); !ok {
		t.Errorf("Select = %T, want *SelectStatement", ins.Select)
	}
}

func TestParseSelectWhereGroupByOrderByLimit(t *testing.T) {
	stmt := parseOneT(t, `SELECT region, SUM(amount) AS total
		FROM sales
		WHERE amount > 0
		GROUP BY region
		HAVING SUM(amount) > 100
		ORDER BY total DESC
		LIMIT 10 OFFSET 5`)
	sel, ok := stmt.(*sqlast.SelectStatement)
	if !ok {
		t.Fatalf("got %T, want *SelectStatement", stmt)
	}
	if len(sel.Columns) != 2 {
		t.Fatalf("expected 2 projection items, got %d", len(sel.Columns))
	}
	if sel.Columns[1].Alias != "total" {
		t.Errorf("alias = %q", sel.Columns[1].Alias)
	}
	if sel.From == nil || sel.From.TableName != "sales" {
		t.Fatalf("From = %+v", sel.From)
	}
	if sel.Where == nil {
		t.Error("expected WHERE clause")
	}
	if len(sel.GroupBy) != 1 {
		t.Errorf("GroupBy = %v", sel.GroupBy)
	}
	if sel.Having == nil {
		t.Error("expected HAVING clause")
	}
	if len(sel.OrderBy) != 1 || sel.OrderBy[0].Ascending {
		t.Errorf("OrderBy = %+v", sel.OrderBy)
	}
	if sel.Limit == nil || sel.Offset == nil {
		t.Error("expected LIMIT and OFFSET")
	}
}

func TestParseSelectJoin(t *testing.T) {
	stmt := parseOneT(t, `SELECT a.id FROM a INNER JOIN b ON a.id = b.id LEFT JOIN c USING (id)`)
	sel, ok := stmt.(*sqlast.SelectStatement)
	if !ok {
		t.Fatalf("got %T", stmt)
	}
	if len(sel.Joins) != 2 {
		t.Fatalf("expected 2 joins, got %d", len(sel.Joins))
	}
	if sel.Joins[0].Type != sqlast.InnerJoin || sel.Joins[0].Condition.On == nil {
		t.Errorf("join 0 = %+v", sel.Joins[0])
	}
	if sel.Joins[1].Type != sqlast.LeftJoin || len(sel.Joins[1].Condition.Using) != 1 {
		t.Errorf("join 1 = %+v", sel.Joins[1])
	}
}

func TestParseSelectDistinctAndWildcard(t *testing.T) {
	stmt := parseOneT(t, "SELECT DISTINCT * FROM widgets")
	sel := stmt.(*sqlast.SelectStatement)
	if !sel.Distinct {
		t.Error("expected Distinct = true")
	}
	if len(sel.Columns) != 1 || !sel.Columns[0].Wildcard {
		t.Errorf("Columns = %+v", sel.Columns)
	}
}

func TestParseUpdate(t *testing.T) {
	stmt := parseOneT(t, "UPDATE widgets SET name = 'x', price = price + 1 WHERE id = 1")
	upd, ok := stmt.(*sqlast.UpdateStatement)
	if !ok {
		t.Fatalf("got %T, want *UpdateStatement", stmt)
	}
	if upd.Table != "widgets" || len(upd.Assignments) != 2 {
		t.Fatalf("Table=%q Assignments=%+v", upd.Table, upd.Assignments)
	}
	if upd.Where == nil {
		t.Error("expected WHERE clause")
	}
}

func TestParseDelete(t *testing.T) {
	stmt := parseOneT(t, "DELETE FROM widgets WHERE id = 1")
	del, ok := stmt.(*sqlast.DeleteStatement)
	if !ok {
		t.Fatalf("got %T, want *DeleteStatement", stmt)
	}
	if del.Table != "widgets" || del.Where == nil {
		t.Errorf("Table=%q Where=%v", del.Table, del.Where)
	}
}

func TestParseExprPrecedence(t *testing.T) {
	stmt := parseOneT(t, "SELECT 1 + 2 * 3")
	sel := stmt.(*sqlast.SelectStatement)
	be, ok := sel.Columns[0].Expr.(*sqlast.BinaryExpr)
	if !ok {
		t.Fatalf("got %T, want *BinaryExpr", sel.Columns[0].Expr)
	}
	if be.Op != sqlast.Add {
		t.Errorf("top-level op = %v, want Add", be.Op)
	}
	rhs, ok := be.Right.(*sqlast.BinaryExpr)
	if !ok || rhs.Op != sqlast.Mul {
		t.Errorf("right side = %+v, want a multiplication", be.Right)
	}
}

func TestParseCaseExpr(t *testing.T) {
	stmt := parseOneT(t, `SELECT CASE WHEN x > 0 THEN 'pos' WHEN x < 0 THEN 'neg' ELSE 'zero' END FROM t`)
	sel := stmt.(*sqlast.SelectStatement)
	ce, ok := sel.Columns[0].Expr.(*sqlast.CaseExpr)
	if !ok {
		t.Fatalf("got %T, want *CaseExpr", sel.Columns[0].Expr)
	}
	if len(ce.Whens) != 2 || ce.Else == nil {
		t.Errorf("Whens=%d Else=%v", len(ce.Whens), ce.Else)
	}
}

func TestParseCastExpr(t *testing.T) {
	stmt := parseOneT(t, "SELECT CAST(x AS FLOAT) FROM t")
	sel := stmt.(*sqlast.SelectStatement)
	cx, ok := sel.Columns[0].Expr.(*sqlast.CastExpr)
	if !ok {
		t.Fatalf("got %T, want *CastExpr", sel.Columns[0].Expr)
	}
	if cx.Type.Base != sqlvalue.Float64 {
		t.Errorf("cast target = %v, want Float64", cx.Type.Base)
	}
}

func TestParseBetweenAndInAndLike(t *testing.T) {
	stmt := parseOneT(t, "SELECT * FROM t WHERE a BETWEEN 1 AND 10 AND b IN (1,2,3) AND c LIKE 'a%'")
	sel := stmt.(*sqlast.SelectStatement)
	if sel.Where == nil {
		t.Fatal("expected WHERE clause")
	}
}

func TestParseWindowFunction(t *testing.T) {
	stmt := parseOneT(t, `SELECT ROW_NUMBER() OVER (PARTITION BY dept ORDER BY salary DESC) FROM emp`)
	sel := stmt.(*sqlast.SelectStatement)
	fc, ok := sel.Columns[0].Expr.(*sqlast.FuncCall)
	if !ok {
		t.Fatalf("got %T, want *FuncCall", sel.Columns[0].Expr)
	}
	if fc.Over == nil {
		t.Fatal("expected OVER window spec")
	}
	if len(fc.Over.PartitionBy) != 1 || len(fc.Over.OrderBy) != 1 {
		t.Errorf("Over = %+v", fc.Over)
	}
}

func TestParseSetOperation(t *testing.T) {
	stmt := parseOneT(t, "SELECT id FROM a UNION SELECT id FROM b")
	so, ok := stmt.(*sqlast.SetOpStatement)
	if !ok {
		t.Fatalf("got %T, want *SetOpStatement", stmt)
	}
	if so.Op != sqlast.Union {
		t.Errorf("Op = %v, want Union", so.Op)
	}
}

func TestParseMultipleStatements(t *testing.T) {
	stmts, err := Parse("CREATE TABLE t (id INT); INSERT INTO t VALUES (1); SELECT * FROM t;")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(stmts) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(stmts))
	}
}

func TestParseErrorOnGarbage(t *testing.T) {
	if _, err := Parse("SELECT FROM WHERE"); err == nil {
		t.Error("expected parse error for malformed input")
	}
}

func TestParseOneFailsOnMultipleStatements(t *testing.T) {
	if _, err := ParseOne("SELECT 1; SELECT 2;"); err == nil {
		t.Error("expected ParseOne to reject more than one statement")
	}
}
