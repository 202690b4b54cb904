package pivotffi

import "testing"

func TestRegistryLifecycle(t *testing.T) {
	eh := NewEngine()
	defer FreeEngine(eh)

	if rh := Execute(eh, "CREATE TABLE t (id INT NOT NULL, name TEXT)"); rh == 0 {
		t.Fatal("expected create table to succeed")
	} else {
		FreeResult(rh)
	}
	if rh := Execute(eh, "INSERT INTO t (id, name) VALUES (1, 'a')"); rh == 0 {
		t.Fatal("expected insert to succeed")
	} else {
		FreeResult(rh)
	}

	rh := Execute(eh, "SELECT id, name FROM t")
	if rh == 0 {
		t.Fatal("expected select to succeed")
	}
	defer FreeResult(rh)

	if got := RowCount(rh); got != 1 {
		t.Fatalf("expected 1 row, got %d", got)
	}
	if got := ColumnCount(rh); got != 2 {
		t.Fatalf("expected 2 columns, got %d", got)
	}
	if name, ok := ColumnName(rh, 1); !ok || name != "name" {
		t.Fatalf("expected column 1 name %q, got %q (ok=%v)", "name", name, ok)
	}
	if val, ok, isNull := Value(rh, 0, 1); !ok || isNull || val != "a" {
		t.Fatalf("expected cell (0,1) = %q, got %q (ok=%v isNull=%v)", "a", val, ok, isNull)
	}
}

func TestRegistryInvalidHandles(t *testing.T) {
	if Execute(0, "SELECT 1") != 0 {
		t.Error("expected Execute on handle 0 to fail")
	}
	if RowCount(0) != 0 {
		t.Error("expected RowCount on handle 0 to be 0")
	}
	if _, ok := ColumnName(0, 0); ok {
		t.Error("expected ColumnName on handle 0 to fail")
	}
}
