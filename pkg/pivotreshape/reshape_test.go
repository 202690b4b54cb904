package pivotreshape

import (
	"testing"

	"pivotsql/pkg/sqlexec"
	"pivotsql/pkg/sqlvalue"
)

func sampleResult() sqlexec.QueryResult {
	return sqlexec.QueryResult{
		Columns: []string{"region", "quarter", "revenue"},
		Rows: [][]sqlvalue.Scalar{
			{sqlvalue.Text("east"), sqlvalue.Text("q1"), sqlvalue.Float(100)},
			{sqlvalue.Text("east"), sqlvalue.Text("q2"), sqlvalue.Float(150)},
			{sqlvalue.Text("west"), sqlvalue.Text("q1"), sqlvalue.Float(200)},
			{sqlvalue.Text("west"), sqlvalue.Text("q1"), sqlvalue.Float(50)},
		},
	}
}

func TestPivotSum(t *testing.T) {
	out, err := Pivot(sampleResult(), []string{"region"}, "quarter", "revenue", AggSum)
	if err != nil {
		t.Fatalf("pivot: %v", err)
	}
	wantCols := []string{"region", "q1", "q2"}
	for i, c := range wantCols {
		if out.Columns[i] != c {
			t.Fatalf("expected columns %v, got %v", wantCols, out.Columns)
		}
	}
	if len(out.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(out.Rows))
	}
	for _, row := range out.Rows {
		if row[0].Text() == "west" {
			if row[1].Float() != 250 {
				t.Errorf("expected west q1 sum 250, got %v", row[1])
			}
			if !row[2].IsNull() {
				t.Errorf("expected west q2 to be NULL, got %v", row[2])
			}
		}
		if row[0].Text() == "east" {
			if row[1].Float() != 100 || row[2].Float() != 150 {
				t.Errorf("unexpected east row: %v", row)
			}
		}
	}
}

func TestUnpivot(t *testing.T) {
	result := sqlexec.QueryResult{
		Columns: []string{"id", "jan", "feb"},
		Rows: [][]sqlvalue.Scalar{
			{sqlvalue.Int(1), sqlvalue.Float(10), sqlvalue.Null()},
			{sqlvalue.Int(2), sqlvalue.Float(20), sqlvalue.Float(30)},
		},
	}
	out, err := Unpivot(result, []string{"id"}, []string{"jan", "feb"}, "month", "amount")
	if err != nil {
		t.Fatalf("unpivot: %v", err)
	}
	// row 1 has jan only (feb is NULL and skipped); row 2 has both.
	if len(out.Rows) != 3 {
		t.Fatalf("expected 3 melted rows, got %d: %v", len(out.Rows), out.Rows)
	}
}
