package sqlvalue

import "testing"

func TestIsLeapYear(t *testing.T) {
	tests := []struct {
		year int
		want bool
	}{
		{2000, true}, {1900, false}, {2024, true}, {2023, false}, {2004, true},
	}
	for _, tt := range tests {
		if got := IsLeapYear(tt.year); got != tt.want {
			t.Errorf("IsLeapYear(%d) = %v, want %v", tt.year, got, tt.want)
		}
	}
}

func TestEpochDaysYMDRoundTrip(t *testing.T) {
	cases := []struct{ y, m, d int }{
		{1970, 1, 1},
		{1969, 12, 31},
		{2024, 2, 29},
		{2000, 1, 1},
		{1900, 3, 1},
		{2100, 12, 31},
	}
	for _, c := range cases {
		days := YMDToEpochDays(c.y, c.m, c.d)
		gy, gm, gd := EpochDaysToYMD(days)
		if gy != c.y || gm != c.m || gd != c.d {
			t.Errorf("round trip %04d-%02d-%02d -> %d -> %04d-%02d-%02d", c.y, c.m, c.d, days, gy, gm, gd)
		}
	}
}

func TestEpochDaysToDateString(t *testing.T) {
	if got := EpochDaysToDateString(0); got != "1970-01-01" {
		t.Errorf("EpochDaysToDateString(0) = %q", got)
	}
	days := YMDToEpochDays(2024, 3, 15)
	if got := EpochDaysToDateString(days); got != "2024-03-15" {
		t.Errorf("EpochDaysToDateString(%d) = %q", days, got)
	}
}

func TestTimestampStringRoundTrip(t *testing.T) {
	micros, ok := TimestampStringToEpochMicros("2024-03-15 12:30:45")
	if !ok {
		t.Fatal("expected successful parse")
	}
	if got := EpochMicrosToTimestampString(micros); got != "2024-03-15 12:30:45" {
		t.Errorf("round trip = %q", got)
	}
}

func TestTimestampStringWithFraction(t *testing.T) {
	micros, ok := TimestampStringToEpochMicros("2024-03-15T12:30:45.123456")
	if !ok {
		t.Fatal("expected successful parse of T-separated timestamp with fraction")
	}
	if got := EpochMicrosToTimestampString(micros); got != "2024-03-15 12:30:45.123456" {
		t.Errorf("round trip = %q", got)
	}
}

func TestTimestampStringBareDateDefaultsMidnight(t *testing.T) {
	micros, ok := TimestampStringToEpochMicros("2024-03-15")
	if !ok {
		t.Fatal("expected bare date to parse")
	}
	if got := EpochMicrosToTimestampString(micros); got != "2024-03-15 00:00:00" {
		t.Errorf("bare date timestamp = %q", got)
	}
}

func TestTimeStringToMicros(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"01:02:03", (1*3600 + 2*60 + 3) * 1_000_000, true},
		{"01:02", (1*3600 + 2*60) * 1_000_000, true},
		{"00:00:00.5", 500_000, true},
		{"bad", 0, false},
	}
	for _, tt := range tests {
		got, ok := TimeStringToMicros(tt.in)
		if ok != tt.ok {
			t.Errorf("TimeStringToMicros(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("TimeStringToMicros(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestDateStringToEpochDaysInvalid(t *testing.T) {
	tests := []string{"2024-13-01", "2024-00-01", "2024-01-32", "not-a-date", "2024-01"}
	for _, in := range tests {
		if _, ok := DateStringToEpochDays(in); ok {
			t.Errorf("DateStringToEpochDays(%q) should fail", in)
		}
	}
}

func TestEpochMicrosToTimestampStringNegative(t *testing.T) {
	// A timestamp just before epoch should still resolve to a valid prior day/time.
	micros := int64(-1) // one microsecond before epoch
	got := EpochMicrosToTimestampString(micros)
	if got != "1969-12-31 23:59:59.999999" {
		t.Errorf("EpochMicrosToTimestampString(-1) = %q", got)
	}
}

func TestMicrosToTimeString(t *testing.T) {
	if got := MicrosToTimeString(0); got != "00:00:00" {
		t.Errorf("MicrosToTimeString(0) = %q", got)
	}
	if got := MicrosToTimeString(1_500_000); got != "00:00:01.500000" {
		t.Errorf("MicrosToTimeString(1_500_000) = %q", got)
	}
}
