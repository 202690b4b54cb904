// Package sqlvalue defines the tagged scalar value domain the engine
// computes over, the closed data-type set tables are declared with, and
// the proleptic-Gregorian temporal codec (see temporal.go) those values
// rely on for date/timestamp/time display and parsing.
package sqlvalue

import (
	"fmt"
	"math"
	"strconv"
)

// Kind discriminates the variants of Scalar.
type Kind int

const (
	KindNull Kind = iota
	KindBoolean
	KindInt64
	KindFloat64
	KindUtf8
	KindDate
	KindTimestamp
	KindTime
	KindInterval
)

// Interval is a four-field calendar interval: years, months, days, and a
// sub-day microsecond remainder, each independently signed.
type Interval struct {
	Years  int64
	Months int64
	Days   int64
	Micros int64
}

// Scalar is a tagged union over the value domain a table column, a
// literal, or an expression result may hold.
type Scalar struct {
	kind Kind
	b    bool
	i    int64 // also backs Date/Timestamp/Time
	f    float64
	s    string
	iv   Interval
}

func Null() Scalar              { return Scalar{kind: KindNull} }
func Bool(b bool) Scalar        { return Scalar{kind: KindBoolean, b: b} }
func Int(i int64) Scalar        { return Scalar{kind: KindInt64, i: i} }
func Float(f float64) Scalar    { return Scalar{kind: KindFloat64, f: f} }
func Text(s string) Scalar      { return Scalar{kind: KindUtf8, s: s} }
func Date(days int64) Scalar    { return Scalar{kind: KindDate, i: days} }
func Timestamp(us int64) Scalar { return Scalar{kind: KindTimestamp, i: us} }
func Time(us int64) Scalar      { return Scalar{kind: KindTime, i: us} }
func IntervalVal(iv Interval) Scalar {
	return Scalar{kind: KindInterval, iv: iv}
}

func (v Scalar) Kind() Kind     { return v.kind }
func (v Scalar) IsNull() bool   { return v.kind == KindNull }
func (v Scalar) Bool() bool     { return v.b }
func (v Scalar) Int() int64     { return v.i }
func (v Scalar) Float() float64 { return v.f }
func (v Scalar) Text() string   { return v.s }

// Days returns the Date variant's day count; valid only when Kind() == KindDate.
func (v Scalar) Days() int64 { return v.i }

// Micros returns the Timestamp/Time variant's microsecond count.
func (v Scalar) Micros() int64 { return v.i }

func (v Scalar) Interval() Interval { return v.iv }

// String renders v using the engine's deterministic display rules.
func (v Scalar) String() string {
	switch v.kind {
	case KindBoolean:
		if v.b {
			return "true"
		}
		return "false"
	case KindInt64:
		return strconv.FormatInt(v.i, 10)
	case KindFloat64:
		if math.Trunc(v.f) == v.f && math.Abs(v.f) < 1e15 {
			return strconv.FormatFloat(v.f, 'f', 1, 64)
		}
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindUtf8:
		return v.s
	case KindDate:
		return EpochDaysToDateString(v.i)
	case KindTimestamp:
		return EpochMicrosToTimestampString(v.i)
	case KindTime:
		return MicrosToTimeString(v.i)
	case KindInterval:
		return fmt.Sprintf("%d years %d months %d days %d micros",
			v.iv.Years, v.iv.Months, v.iv.Days, v.iv.Micros)
	default:
		return "NULL"
	}
}

// IntervalToStorageString encodes iv the way the utf8 column buffer
// stores an interval: four colon-joined fields, so that writing and
// reading an interval column round-trips through a string.
func IntervalToStorageString(iv Interval) string {
	return fmt.Sprintf("%d:%d:%d:%d", iv.Years, iv.Months, iv.Days, iv.Micros)
}

// IntervalFromStorageString decodes the colon-joined form written by
// IntervalToStorageString.
func IntervalFromStorageString(s string) (Interval, bool) {
	var iv Interval
	n, err := fmt.Sscanf(s, "%d:%d:%d:%d", &iv.Years, &iv.Months, &iv.Days, &iv.Micros)
	if err != nil || n != 4 {
		return Interval{}, false
	}
	return iv, true
}

// BaseType is the closed set of logical column types.
type BaseType int

const (
	Boolean BaseType = iota
	Int64
	Float64
	Utf8
	DateType
	TimestampType
	TimeType
	IntervalType
	Decimal
)

func (b BaseType) String() string {
	switch b {
	case Boolean:
		return "BOOLEAN"
	case Int64:
		return "INT64"
	case Float64:
		return "FLOAT64"
	case Utf8:
		return "UTF8"
	case DateType:
		return "DATE"
	case TimestampType:
		return "TIMESTAMP"
	case TimeType:
		return "TIME"
	case IntervalType:
		return "INTERVAL"
	case Decimal:
		return "DECIMAL"
	default:
		return "UNKNOWN"
	}
}

// DataType is a column's declared type: a BaseType plus precision/scale,
// meaningful only when Base == Decimal.
type DataType struct {
	Base      BaseType
	Precision int
	Scale     int
}

func (t DataType) String() string {
	if t.Base == Decimal {
		return fmt.Sprintf("DECIMAL(%d,%d)", t.Precision, t.Scale)
	}
	return t.Base.String()
}

// BufferKind identifies which of the four typed column buffers a data
// type is stored in.
type BufferKind int

const (
	BufferBool BufferKind = iota
	BufferInt64
	BufferFloat64
	BufferUtf8
)

// Buffer returns which typed buffer backs values of type t.
func (t DataType) Buffer() BufferKind {
	switch t.Base {
	case Boolean:
		return BufferBool
	case Int64, DateType, TimestampType, TimeType:
		return BufferInt64
	case Float64, Decimal:
		return BufferFloat64
	case Utf8, IntervalType:
		return BufferUtf8
	default:
		return BufferUtf8
	}
}
