package sqlvalue

import "testing"

func TestCastNullIsAlwaysNull(t *testing.T) {
	if !Cast(Null(), DataType{Base: Int64}).IsNull() {
		t.Error("casting NULL should produce NULL regardless of target")
	}
}

func TestCastToInt64(t *testing.T) {
	tests := []struct {
		name string
		in   Scalar
		want int64
		null bool
	}{
		{"from float", Float(3.9), 3, false},
		{"from true", Bool(true), 1, false},
		{"from false", Bool(false), 0, false},
		{"from int text", Text("42"), 42, false},
		{"from float text", Text("3.5"), 3, false},
		{"from garbage text", Text("nope"), 0, true},
		{"from date", Date(5), 5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cast(tt.in, DataType{Base: Int64})
			if tt.null {
				if !got.IsNull() {
					t.Errorf("expected NULL, got %v", got)
				}
				return
			}
			if got.IsNull() || got.Int() != tt.want {
				t.Errorf("Cast(%v, Int64) = %v, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestCastToFloat64(t *testing.T) {
	got := Cast(Text("2.5"), DataType{Base: Float64})
	if got.IsNull() || got.Float() != 2.5 {
		t.Errorf("Cast(\"2.5\", Float64) = %v", got)
	}
	if !Cast(Text("nope"), DataType{Base: Float64}).IsNull() {
		t.Error("expected NULL casting garbage text to float")
	}
}

func TestCastToUtf8(t *testing.T) {
	got := Cast(Int(42), DataType{Base: Utf8})
	if got.Kind() != KindUtf8 || got.Text() != "42" {
		t.Errorf("Cast(42, Utf8) = %v", got)
	}
}

func TestCastToBoolean(t *testing.T) {
	tests := []struct {
		in   Scalar
		want bool
		null bool
	}{
		{Text("true"), true, false},
		{Text("YES"), true, false},
		{Text("0"), false, false},
		{Text("off"), false, false},
		{Text("maybe"), false, true},
		{Int(5), true, false},
		{Int(0), false, false},
		{Float(0.0), false, false},
	}
	for _, tt := range tests {
		got := Cast(tt.in, DataType{Base: Boolean})
		if tt.null {
			if !got.IsNull() {
				t.Errorf("Cast(%v, Boolean) = %v, want NULL", tt.in, got)
			}
			continue
		}
		if got.IsNull() || got.Bool() != tt.want {
			t.Errorf("Cast(%v, Boolean) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCastToDate(t *testing.T) {
	got := Cast(Text("2024-03-15"), DataType{Base: DateType})
	if got.IsNull() {
		t.Fatal("expected successful date cast")
	}
	if got.Days() != YMDToEpochDays(2024, 3, 15) {
		t.Errorf("Cast date days = %d", got.Days())
	}
	if !Cast(Text("not-a-date"), DataType{Base: DateType}).IsNull() {
		t.Error("expected NULL for invalid date string")
	}
	ts := Timestamp(YMDToEpochDays(2024, 3, 15) * 86_400_000_000)
	if d := Cast(ts, DataType{Base: DateType}); d.Days() != YMDToEpochDays(2024, 3, 15) {
		t.Errorf("timestamp->date truncation = %d", d.Days())
	}
}

func TestCastToTimestamp(t *testing.T) {
	got := Cast(Text("2024-03-15 12:30:00"), DataType{Base: TimestampType})
	if got.IsNull() {
		t.Fatal("expected successful timestamp cast")
	}
	back := Cast(got, DataType{Base: DateType})
	if back.Days() != YMDToEpochDays(2024, 3, 15) {
		t.Errorf("timestamp->date = %d", back.Days())
	}
}

func TestCastToTime(t *testing.T) {
	got := Cast(Text("01:02:03"), DataType{Base: TimeType})
	if got.IsNull() {
		t.Fatal("expected successful time cast")
	}
	want := int64((1*3600 + 2*60 + 3) * 1_000_000)
	if got.Micros() != want {
		t.Errorf("Cast time micros = %d, want %d", got.Micros(), want)
	}
}

func TestCastIntervalTargetAlwaysNull(t *testing.T) {
	if !Cast(Text("1:2:3:4"), DataType{Base: IntervalType}).IsNull() {
		t.Error("casting to IntervalType should always yield NULL (no text->interval coercion)")
	}
}
