package catalog

import (
	"testing"

	"pivotsql/pkg/sqlvalue"
)

func idSchema() Schema {
	return Schema{Columns: []ColumnDef{
		{Name: "id", Type: sqlvalue.DataType{Base: sqlvalue.Int64}},
		{Name: "name", Type: sqlvalue.DataType{Base: sqlvalue.Utf8}, Nullable: true},
	}}
}

func TestCatalogCreateAndGet(t *testing.T) {
	c := NewCatalog()
	if err := c.Create("widgets", idSchema()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	tbl, ok := c.Get("WIDGETS")
	if !ok {
		t.Fatal("expected to find table via differently-cased name lookup")
	}
	if len(tbl.Schema.Columns) != 2 {
		t.Errorf("expected 2 columns, got %d", len(tbl.Schema.Columns))
	}
}

func TestCatalogCreateDuplicateFails(t *testing.T) {
	c := NewCatalog()
	if err := c.Create("widgets", idSchema()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := c.Create("Widgets", idSchema()); err == nil {
		t.Error("expected duplicate create to fail case-insensitively")
	}
}

func TestCatalogCreateIfNotExistsIsIdempotent(t *testing.T) {
	c := NewCatalog()
	c.CreateIfNotExists("widgets", idSchema())
	tbl1, _ := c.Get("widgets")
	_ = tbl1.AppendRow([]sqlvalue.Scalar{sqlvalue.Int(1), sqlvalue.Text("a")})
	c.CreateIfNotExists("widgets", idSchema())
	tbl2, _ := c.Get("widgets")
	if tbl2.RowCount() != 1 {
		t.Error("CreateIfNotExists should not replace an existing table")
	}
}

func TestCatalogDrop(t *testing.T) {
	c := NewCatalog()
	_ = c.Create("widgets", idSchema())
	if err := c.Drop("WIDGETS"); err != nil {
		t.Fatalf("Drop: %v", err)
	}
	if c.TableExists("widgets") {
		t.Error("expected table to be gone after Drop")
	}
	if err := c.Drop("widgets"); err == nil {
		t.Error("expected dropping a missing table to fail")
	}
}

func TestCatalogTableNamesSorted(t *testing.T) {
	c := NewCatalog()
	_ = c.Create("zebra", idSchema())
	_ = c.Create("apple", idSchema())
	names := c.TableNames()
	if len(names) != 2 || names[0] != "APPLE" || names[1] != "ZEBRA" {
		t.Errorf("TableNames() = %v, want sorted uppercased [APPLE ZEBRA]", names)
	}
}

func TestSchemaFindColumn(t *testing.T) {
	s := idSchema()
	idx, ok := s.FindColumnIndex("NAME")
	if !ok || idx != 1 {
		t.Errorf("FindColumnIndex(NAME) = %d, %v, want 1, true", idx, ok)
	}
	if _, ok := s.FindColumnIndex("missing"); ok {
		t.Error("expected FindColumnIndex to fail for missing column")
	}
	if !s.HasColumn("id") {
		t.Error("expected HasColumn(id) to be true")
	}
}
