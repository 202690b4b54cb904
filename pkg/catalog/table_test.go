package catalog

import (
	"errors"
	"testing"

	"pivotsql/pkg/sqlerr"
	"pivotsql/pkg/sqlvalue"
)

func widgetsSchema() Schema {
	return Schema{Columns: []ColumnDef{
		{Name: "id", Type: sqlvalue.DataType{Base: sqlvalue.Int64}},
		{Name: "name", Type: sqlvalue.DataType{Base: sqlvalue.Utf8}, Nullable: true},
	}}
}

func TestTableAppendAndGetRow(t *testing.T) {
	tbl := NewTable(widgetsSchema())
	if err := tbl.AppendRow([]sqlvalue.Scalar{sqlvalue.Int(1), sqlvalue.Text("alice")}); err != nil {
		t.Fatalf("AppendRow: %v", err)
	}
	if err := tbl.AppendRow([]sqlvalue.Scalar{sqlvalue.Int(2), sqlvalue.Null()}); err != nil {
		t.Fatalf("AppendRow with NULL on nullable column: %v", err)
	}
	if tbl.RowCount() != 2 {
		t.Fatalf("RowCount = %d, want 2", tbl.RowCount())
	}
	row, err := tbl.GetRow(1)
	if err != nil {
		t.Fatalf("GetRow: %v", err)
	}
	if !row[1].IsNull() {
		t.Error("expected row 1's name to be NULL")
	}
	if row[0].Int() != 2 {
		t.Errorf("row[0] = %v, want 2", row[0])
	}
}

func TestTableAppendRowArityMismatch(t *testing.T) {
	tbl := NewTable(widgetsSchema())
	if err := tbl.AppendRow([]sqlvalue.Scalar{sqlvalue.Int(1)}); err == nil {
		t.Error("expected arity mismatch to fail")
	}
}

func TestTableAppendRowRejectsNullOnNotNull(t *testing.T) {
	tbl := NewTable(widgetsSchema())
	if err := tbl.AppendRow([]sqlvalue.Scalar{sqlvalue.Null(), sqlvalue.Text("x")}); err == nil {
		t.Error("expected NULL on NOT NULL id column to fail")
	}
}

func TestTableAppendRowCoercesValues(t *testing.T) {
	tbl := NewTable(widgetsSchema())
	// id is Int64; pass a float-bearing scalar and expect coercion.
	if err := tbl.AppendRow([]sqlvalue.Scalar{sqlvalue.Float(5.0), sqlvalue.Text("x")}); err != nil {
		t.Fatalf("AppendRow: %v", err)
	}
	v, _ := tbl.GetValue(0, 0)
	if v.Kind() != sqlvalue.KindInt64 || v.Int() != 5 {
		t.Errorf("expected coerced int64 5, got %v", v)
	}
}

func dateSchema() Schema {
	return Schema{Columns: []ColumnDef{
		{Name: "d", Type: sqlvalue.DataType{Base: sqlvalue.DateType}, Nullable: true},
	}}
}

func TestTableAppendRowUnparseableDateRaisesTypeError(t *testing.T) {
	tbl := NewTable(dateSchema())
	err := tbl.AppendRow([]sqlvalue.Scalar{sqlvalue.Text("not-a-date")})
	if err == nil {
		t.Fatal("expected an error appending an unparseable date string")
	}
	var se *sqlerr.Error
	if !errors.As(err, &se) || se.Kind != sqlerr.Type {
		t.Errorf("expected sqlerr.Type, got %v", err)
	}
}

func TestTableAppendRowNullDateStaysNull(t *testing.T) {
	tbl := NewTable(dateSchema())
	if err := tbl.AppendRow([]sqlvalue.Scalar{sqlvalue.Null()}); err != nil {
		t.Fatalf("AppendRow with NULL on nullable date column: %v", err)
	}
	v, _ := tbl.GetValue(0, 0)
	if !v.IsNull() {
		t.Errorf("expected NULL date to stay NULL, got %v", v)
	}
}

func TestTableSetValueUnparseableDateRaisesTypeError(t *testing.T) {
	tbl := NewTable(dateSchema())
	_ = tbl.AppendRow([]sqlvalue.Scalar{sqlvalue.Null()})
	err := tbl.SetValue(0, 0, sqlvalue.Text("also-not-a-date"))
	if err == nil {
		t.Fatal("expected an error setting an unparseable date string")
	}
	var se *sqlerr.Error
	if !errors.As(err, &se) || se.Kind != sqlerr.Type {
		t.Errorf("expected sqlerr.Type, got %v", err)
	}
}

func TestTableSetValue(t *testing.T) {
	tbl := NewTable(widgetsSchema())
	_ = tbl.AppendRow([]sqlvalue.Scalar{sqlvalue.Int(1), sqlvalue.Text("alice")})
	if err := tbl.SetValue(0, 1, sqlvalue.Text("bob")); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	v, _ := tbl.GetValue(0, 1)
	if v.Text() != "bob" {
		t.Errorf("after SetValue, got %q, want %q", v.Text(), "bob")
	}
	if err := tbl.SetValue(0, 0, sqlvalue.Null()); err == nil {
		t.Error("expected SetValue(NULL) on NOT NULL column to fail")
	}
}

func TestTableGetValueOutOfBounds(t *testing.T) {
	tbl := NewTable(widgetsSchema())
	_ = tbl.AppendRow([]sqlvalue.Scalar{sqlvalue.Int(1), sqlvalue.Text("alice")})
	if _, err := tbl.GetValue(5, 0); err == nil {
		t.Error("expected out-of-range row to fail")
	}
	if _, err := tbl.GetValue(0, 5); err == nil {
		t.Error("expected out-of-range column to fail")
	}
}

func TestTableAddColumnBackfillsNull(t *testing.T) {
	tbl := NewTable(widgetsSchema())
	_ = tbl.AppendRow([]sqlvalue.Scalar{sqlvalue.Int(1), sqlvalue.Text("alice")})
	if err := tbl.AddColumn(ColumnDef{Name: "age", Type: sqlvalue.DataType{Base: sqlvalue.Int64}, Nullable: true}); err != nil {
		t.Fatalf("AddColumn: %v", err)
	}
	v, err := tbl.GetValue(0, 2)
	if err != nil {
		t.Fatalf("GetValue: %v", err)
	}
	if !v.IsNull() {
		t.Error("expected backfilled column value to be NULL")
	}
}

func TestTableAddColumnDuplicateFails(t *testing.T) {
	tbl := NewTable(widgetsSchema())
	if err := tbl.AddColumn(ColumnDef{Name: "id", Type: sqlvalue.DataType{Base: sqlvalue.Int64}}); err == nil {
		t.Error("expected duplicate column name to fail")
	}
}

func TestTableDropColumn(t *testing.T) {
	tbl := NewTable(widgetsSchema())
	_ = tbl.AppendRow([]sqlvalue.Scalar{sqlvalue.Int(1), sqlvalue.Text("alice")})
	if err := tbl.DropColumn(1); err != nil {
		t.Fatalf("DropColumn: %v", err)
	}
	if len(tbl.Schema.Columns) != 1 {
		t.Errorf("expected 1 column remaining, got %d", len(tbl.Schema.Columns))
	}
	row, _ := tbl.GetRow(0)
	if len(row) != 1 || row[0].Int() != 1 {
		t.Errorf("unexpected row after drop: %v", row)
	}
}

func TestTableRenameColumn(t *testing.T) {
	tbl := NewTable(widgetsSchema())
	if err := tbl.RenameColumn(1, "full_name"); err != nil {
		t.Fatalf("RenameColumn: %v", err)
	}
	if tbl.Schema.Columns[1].Name != "full_name" {
		t.Errorf("column name = %q, want %q", tbl.Schema.Columns[1].Name, "full_name")
	}
}

func TestTableDeleteRows(t *testing.T) {
	tbl := NewTable(widgetsSchema())
	_ = tbl.AppendRow([]sqlvalue.Scalar{sqlvalue.Int(1), sqlvalue.Text("a")})
	_ = tbl.AppendRow([]sqlvalue.Scalar{sqlvalue.Int(2), sqlvalue.Text("b")})
	_ = tbl.AppendRow([]sqlvalue.Scalar{sqlvalue.Int(3), sqlvalue.Text("c")})
	removed := tbl.DeleteRows(func(row int) bool {
		v, _ := tbl.GetValue(row, 0)
		return v.Int() != 2
	})
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if tbl.RowCount() != 2 {
		t.Fatalf("RowCount = %d, want 2", tbl.RowCount())
	}
	row0, _ := tbl.GetRow(0)
	row1, _ := tbl.GetRow(1)
	if row0[0].Int() != 1 || row1[0].Int() != 3 {
		t.Errorf("unexpected remaining rows: %v %v", row0, row1)
	}
}
