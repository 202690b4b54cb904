package sqlvalue

import (
	"strconv"
	"strings"
)

// Cast converts v to target, returning Null when the conversion is not
// possible. CAST and TRY_CAST in the SQL surface both reduce to this
// single coercion table — there is no distinct error path for casts,
// and the column store uses it to coerce values on INSERT/UPDATE too.
func Cast(v Scalar, target DataType) Scalar {
	if v.IsNull() {
		return Null()
	}
	switch target.Base {
	case Int64:
		return toInt64(v)
	case Float64, Decimal:
		return toFloat64(v)
	case Utf8:
		return Text(v.String())
	case Boolean:
		return toBoolean(v)
	case DateType:
		return toDate(v)
	case TimestampType:
		return toTimestamp(v)
	case TimeType:
		return toTime(v)
	case IntervalType:
		return Null()
	default:
		return Null()
	}
}

func toInt64(v Scalar) Scalar {
	switch v.Kind() {
	case KindInt64:
		return v
	case KindFloat64:
		return Int(int64(v.Float()))
	case KindBoolean:
		if v.Bool() {
			return Int(1)
		}
		return Int(0)
	case KindUtf8:
		s := strings.TrimSpace(v.Text())
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Int(i)
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return Int(int64(f))
		}
		return Null()
	case KindDate, KindTimestamp, KindTime:
		return Int(v.Int())
	default:
		return Null()
	}
}

func toFloat64(v Scalar) Scalar {
	switch v.Kind() {
	case KindInt64:
		return Float(float64(v.Int()))
	case KindFloat64:
		return v
	case KindBoolean:
		if v.Bool() {
			return Float(1.0)
		}
		return Float(0.0)
	case KindUtf8:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v.Text()), 64); err == nil {
			return Float(f)
		}
		return Null()
	default:
		return Null()
	}
}

func toBoolean(v Scalar) Scalar {
	switch v.Kind() {
	case KindBoolean:
		return v
	case KindInt64:
		return Bool(v.Int() != 0)
	case KindFloat64:
		return Bool(v.Float() != 0.0)
	case KindUtf8:
		switch strings.ToLower(v.Text()) {
		case "true", "1", "yes", "t", "on":
			return Bool(true)
		case "false", "0", "no", "f", "off":
			return Bool(false)
		default:
			return Null()
		}
	default:
		return Null()
	}
}

func toDate(v Scalar) Scalar {
	switch v.Kind() {
	case KindDate:
		return v
	case KindTimestamp:
		return Date(v.Micros() / 86_400_000_000)
	case KindInt64:
		return Date(v.Int())
	case KindUtf8:
		if d, ok := DateStringToEpochDays(v.Text()); ok {
			return Date(d)
		}
		return Null()
	default:
		return Null()
	}
}

func toTimestamp(v Scalar) Scalar {
	switch v.Kind() {
	case KindTimestamp:
		return v
	case KindDate:
		return Timestamp(v.Days() * 86_400_000_000)
	case KindInt64:
		return Timestamp(v.Int())
	case KindUtf8:
		if us, ok := TimestampStringToEpochMicros(v.Text()); ok {
			return Timestamp(us)
		}
		return Null()
	default:
		return Null()
	}
}

func toTime(v Scalar) Scalar {
	switch v.Kind() {
	case KindTime:
		return v
	case KindInt64:
		return Time(v.Int())
	case KindUtf8:
		if us, ok := TimeStringToMicros(v.Text()); ok {
			return Time(us)
		}
		return Null()
	default:
		return Null()
	}
}
