package pivotcli

import (
	"bytes"
	"strings"
	"testing"
)

func newTestREPL() (*REPL, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	r := NewREPLWithInput(strings.NewReader(""), &out, &errOut)
	return r, &out, &errOut
}

func TestExecuteStatementDDLAndQuery(t *testing.T) {
	r, out, errOut := newTestREPL()

	if err := r.ExecuteStatement("CREATE TABLE t (id INT NOT NULL, name TEXT)"); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if err := r.ExecuteStatement("INSERT INTO t (id, name) VALUES (1, 'alice')"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	out.Reset()

	if err := r.ExecuteStatement("SELECT id, name FROM t"); err != nil {
		t.Fatalf("select: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "alice") {
		t.Errorf("expected table output to contain row data, got:\n%s", got)
	}
	if !strings.Contains(got, "1 row(s)") {
		t.Errorf("expected row count footer, got:\n%s", got)
	}
	if errOut.Len() != 0 {
		t.Errorf("expected no error output, got: %s", errOut.String())
	}
}

func TestExecuteStatementError(t *testing.T) {
	r, _, _ := newTestREPL()
	if err := r.ExecuteStatement("SELECT * FROM nope"); err == nil {
		t.Fatal("expected an error for a nonexistent table")
	}
}

func TestDotCommands(t *testing.T) {
	r, out, _ := newTestREPL()
	if err := r.ExecuteStatement("CREATE TABLE widgets (id INT NOT NULL)"); err != nil {
		t.Fatalf("create table: %v", err)
	}
	out.Reset()

	r.handleDotCommand(".tables")
	if !strings.Contains(out.String(), "WIDGETS") && !strings.Contains(strings.ToUpper(out.String()), "WIDGETS") {
		t.Errorf("expected .tables to list widgets, got: %s", out.String())
	}

	out.Reset()
	r.handleDotCommand(".schema widgets")
	if !strings.Contains(out.String(), "CREATE TABLE") {
		t.Errorf("expected .schema to emit a CREATE TABLE statement, got: %s", out.String())
	}

	r.handleDotCommand(".exit")
	if !r.exitRequested {
		t.Error("expected .exit to set exitRequested")
	}
}
