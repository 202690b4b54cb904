package pivotcli

import "testing"

func TestIsComplete(t *testing.T) {
	s := NewShell(nil, nil, nil)

	cases := []struct {
		sql  string
		want bool
	}{
		{"", false},
		{"SELECT 1", false},
		{"SELECT 1;", true},
		{"SELECT ';';", true},
		{"SELECT 'unterminated", false},
		{"SELECT 1; -- trailing comment", true},
		{"-- SELECT 1;\nSELECT 2;", true},
		{"SELECT \"quoted;name\" FROM t;", true},
	}
	for _, c := range cases {
		if got := s.IsComplete(c.sql); got != c.want {
			t.Errorf("IsComplete(%q) = %v, want %v", c.sql, got, c.want)
		}
	}
}

func TestReadStatementMultiLine(t *testing.T) {
	s := NewShell(nil, nil, nil)
	s.output = nil

	// Directly exercise the assembly logic IsComplete backs, since
	// ReadStatement needs a real io.Reader to drive ReadLine.
	lines := []string{"SELECT *", "FROM t", "WHERE x = 1;"}
	combined := ""
	for i, l := range lines {
		if i > 0 {
			combined += "\n"
		}
		combined += l
		if i < len(lines)-1 && s.IsComplete(combined) {
			t.Fatalf("statement should not be complete before the final line: %q", combined)
		}
	}
	if !s.IsComplete(combined) {
		t.Fatalf("expected statement to be complete: %q", combined)
	}
}

func TestAddHistoryDedupesConsecutive(t *testing.T) {
	s := NewShell(nil, nil, nil)
	s.AddHistory("SELECT 1;")
	s.AddHistory("SELECT 1;")
	s.AddHistory("SELECT 2;")

	got := s.History()
	if len(got) != 2 {
		t.Fatalf("expected 2 history entries, got %d: %v", len(got), got)
	}
}
