package pivotsql

import "testing"

func TestEngineCreateInsertSelect(t *testing.T) {
	e := New()

	if _, err := e.Execute("CREATE TABLE t (id INT NOT NULL, name TEXT)"); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := e.Execute("INSERT INTO t (id, name) VALUES (1, 'a'), (2, 'b')"); err != nil {
		t.Fatalf("insert: %v", err)
	}

	res, err := e.Execute("SELECT id, name FROM t ORDER BY id")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(res.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(res.Rows))
	}
	if res.Rows[0][1].Text() != "a" || res.Rows[1][1].Text() != "b" {
		t.Fatalf("unexpected row contents: %v", res.Rows)
	}
}

func TestEngineCacheInvalidationOnWrite(t *testing.T) {
	e := New()
	if _, err := e.Execute("CREATE TABLE t (id INT NOT NULL)"); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := e.Execute("INSERT INTO t (id) VALUES (1)"); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if _, err := e.Execute("SELECT COUNT(*) FROM t"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, err := e.Execute("INSERT INTO t (id) VALUES (2)"); err != nil {
		t.Fatalf("insert 2: %v", err)
	}

	res, err := e.Execute("SELECT COUNT(*) FROM t")
	if err != nil {
		t.Fatalf("select 2: %v", err)
	}
	if res.Rows[0][0].Int() != 2 {
		t.Fatalf("expected count 2 after a cache-invalidating write, got %v", res.Rows[0][0])
	}
}

func TestNewWithCacheCapacityZeroDisablesCache(t *testing.T) {
	e := NewWithCacheCapacity(0)
	if e.Cache() != nil {
		t.Fatalf("expected nil cache when capacity is 0")
	}
	if _, err := e.Execute("CREATE TABLE t (id INT NOT NULL)"); err != nil {
		t.Fatalf("create table: %v", err)
	}
}
