package pivotcsv

import (
	"bytes"
	"strings"
	"testing"

	"pivotsql/pkg/catalog"
	"pivotsql/pkg/sqlvalue"
)

func TestLoadIntoTableInfersSchema(t *testing.T) {
	cat := catalog.NewCatalog()
	csvData := "id,name\n1,alice\n2,\n3,carol\n"

	if err := LoadIntoTable(cat, "people", strings.NewReader(csvData), nil, DefaultOptions()); err != nil {
		t.Fatalf("load: %v", err)
	}

	tbl, ok := cat.Get("people")
	if !ok {
		t.Fatal("expected table people to exist")
	}
	if tbl.RowCount() != 3 {
		t.Fatalf("expected 3 rows, got %d", tbl.RowCount())
	}
	row1, err := tbl.GetRow(1)
	if err != nil {
		t.Fatalf("get row 1: %v", err)
	}
	if !row1[1].IsNull() {
		t.Errorf("expected empty CSV field to become NULL, got %v", row1[1])
	}
}

func TestLoadIntoTableWithExplicitSchema(t *testing.T) {
	cat := catalog.NewCatalog()
	schema := catalog.Schema{Columns: []catalog.ColumnDef{
		{Name: "id", Type: sqlvalue.DataType{Base: sqlvalue.Int64}, Nullable: false},
		{Name: "score", Type: sqlvalue.DataType{Base: sqlvalue.Float64}, Nullable: true},
	}}
	csvData := "1,2.5\n2,3.75\n"

	if err := LoadIntoTable(cat, "scores", strings.NewReader(csvData), &schema, Options{Delimiter: ',', HasHeader: false}); err != nil {
		t.Fatalf("load: %v", err)
	}

	tbl, _ := cat.Get("scores")
	row0, err := tbl.GetRow(0)
	if err != nil {
		t.Fatalf("get row 0: %v", err)
	}
	if row0[0].Int() != 1 {
		t.Errorf("expected id cast to int64 1, got %v", row0[0])
	}
	if row0[1].Float() != 2.5 {
		t.Errorf("expected score cast to float64 2.5, got %v", row0[1])
	}
}

func TestWriteTableRoundTrip(t *testing.T) {
	cat := catalog.NewCatalog()
	schema := catalog.Schema{Columns: []catalog.ColumnDef{
		{Name: "id", Type: sqlvalue.DataType{Base: sqlvalue.Int64}, Nullable: false},
		{Name: "name", Type: sqlvalue.DataType{Base: sqlvalue.Utf8}, Nullable: true},
	}}
	if err := cat.Create("t", schema); err != nil {
		t.Fatalf("create: %v", err)
	}
	tbl, _ := cat.Get("t")
	if err := tbl.AppendRow([]sqlvalue.Scalar{sqlvalue.Int(1), sqlvalue.Text("alice")}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := tbl.AppendRow([]sqlvalue.Scalar{sqlvalue.Int(2), sqlvalue.Null()}); err != nil {
		t.Fatalf("append: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteTable(cat, "t", &buf, DefaultOptions()); err != nil {
		t.Fatalf("write: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "id,name\n") {
		t.Errorf("expected header row, got: %q", out)
	}
	if !strings.Contains(out, "1,alice\n") {
		t.Errorf("expected row 1, got: %q", out)
	}
	if !strings.Contains(out, "2,\n") {
		t.Errorf("expected NULL to round-trip as an empty field, got: %q", out)
	}
}
