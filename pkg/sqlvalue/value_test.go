package sqlvalue

import "testing"

func TestScalarString(t *testing.T) {
	tests := []struct {
		name string
		v    Scalar
		want string
	}{
		{"null", Null(), "NULL"},
		{"true", Bool(true), "true"},
		{"false", Bool(false), "false"},
		{"int", Int(42), "42"},
		{"negative int", Int(-7), "-7"},
		{"whole float", Float(3.0), "3.0"},
		{"fractional float", Float(3.25), "3.25"},
		{"text", Text("hi"), "hi"},
		{"date", Date(0), "1970-01-01"},
		{"timestamp", Timestamp(0), "1970-01-01 00:00:00"},
		{"time", Time(3661_000_000), "01:01:01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScalarIsNull(t *testing.T) {
	if !Null().IsNull() {
		t.Error("Null() should report IsNull")
	}
	if Int(0).IsNull() {
		t.Error("Int(0) should not report IsNull")
	}
	if Text("").IsNull() {
		t.Error("Text(\"\") should not report IsNull")
	}
}

func TestIntervalStorageRoundTrip(t *testing.T) {
	iv := Interval{Years: 1, Months: 2, Days: 3, Micros: 4}
	s := IntervalToStorageString(iv)
	got, ok := IntervalFromStorageString(s)
	if !ok {
		t.Fatalf("IntervalFromStorageString(%q) failed", s)
	}
	if got != iv {
		t.Errorf("round trip = %+v, want %+v", got, iv)
	}
}

func TestIntervalFromStorageStringInvalid(t *testing.T) {
	if _, ok := IntervalFromStorageString("not an interval"); ok {
		t.Error("expected failure parsing garbage interval string")
	}
}

func TestDataTypeBuffer(t *testing.T) {
	tests := []struct {
		t    DataType
		want BufferKind
	}{
		{DataType{Base: Boolean}, BufferBool},
		{DataType{Base: Int64}, BufferInt64},
		{DataType{Base: DateType}, BufferInt64},
		{DataType{Base: TimestampType}, BufferInt64},
		{DataType{Base: TimeType}, BufferInt64},
		{DataType{Base: Float64}, BufferFloat64},
		{DataType{Base: Decimal, Precision: 10, Scale: 2}, BufferFloat64},
		{DataType{Base: Utf8}, BufferUtf8},
		{DataType{Base: IntervalType}, BufferUtf8},
	}
	for _, tt := range tests {
		if got := tt.t.Buffer(); got != tt.want {
			t.Errorf("%v.Buffer() = %v, want %v", tt.t, got, tt.want)
		}
	}
}

func TestDataTypeString(t *testing.T) {
	if got := (DataType{Base: Decimal, Precision: 10, Scale: 2}).String(); got != "DECIMAL(10,2)" {
		t.Errorf("Decimal.String() = %q", got)
	}
	if got := (DataType{Base: Int64}).String(); got != "INT64" {
		t.Errorf("Int64.String() = %q", got)
	}
}
