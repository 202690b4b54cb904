package sqlexec

import (
	"strings"

	"pivotsql/pkg/sqlvalue"
)

const microsPerDay = 86_400_000_000

// callDatetimeFunction dispatches date/time functions. CURRENT_DATE and
// kin return the fixed epoch (1970-01-01) rather than the wall clock: the
// engine has no notion of "now" independent of its caller, and a fixed
// reference keeps query results reproducible.
func callDatetimeFunction(name string, args []sqlvalue.Scalar) (sqlvalue.Scalar, bool) {
	arg := func(i int) sqlvalue.Scalar {
		if i < len(args) {
			return args[i]
		}
		return sqlvalue.Null()
	}

	switch upper(name) {
	case "CURRENT_DATE", "TODAY", "GETDATE":
		return sqlvalue.Date(0), true
	case "CURRENT_TIMESTAMP", "NOW":
		return sqlvalue.Timestamp(0), true
	case "CURRENT_TIME":
		return sqlvalue.Time(0), true

	case "DATE":
		a := arg(0)
		switch a.Kind() {
		case sqlvalue.KindUtf8:
			if d, ok := sqlvalue.DateStringToEpochDays(a.Text()); ok {
				return sqlvalue.Date(d), true
			}
			return sqlvalue.Null(), true
		case sqlvalue.KindTimestamp:
			return sqlvalue.Date(a.Micros() / microsPerDay), true
		case sqlvalue.KindDate:
			return a, true
		}
		return sqlvalue.Null(), true

	case "TIMESTAMP":
		a := arg(0)
		switch a.Kind() {
		case sqlvalue.KindUtf8:
			if us, ok := sqlvalue.TimestampStringToEpochMicros(a.Text()); ok {
				return sqlvalue.Timestamp(us), true
			}
			return sqlvalue.Null(), true
		case sqlvalue.KindDate:
			return sqlvalue.Timestamp(a.Days() * microsPerDay), true
		case sqlvalue.KindTimestamp:
			return a, true
		}
		return sqlvalue.Null(), true

	case "YEAR":
		if days, ok := asDays(arg(0)); ok {
			y, _, _ := sqlvalue.EpochDaysToYMD(days)
			return sqlvalue.Int(int64(y)), true
		}
		return sqlvalue.Null(), true
	case "MONTH":
		if days, ok := asDays(arg(0)); ok {
			_, m, _ := sqlvalue.EpochDaysToYMD(days)
			return sqlvalue.Int(int64(m)), true
		}
		return sqlvalue.Null(), true
	case "DAY", "DAYOFMONTH":
		a := arg(0)
		if a.Kind() != sqlvalue.KindDate && a.Kind() != sqlvalue.KindTimestamp {
			return sqlvalue.Null(), true
		}
		if days, ok := asDays(a); ok {
			_, _, d := sqlvalue.EpochDaysToYMD(days)
			return sqlvalue.Int(int64(d)), true
		}
		return sqlvalue.Null(), true

	case "HOUR":
		a := arg(0)
		switch a.Kind() {
		case sqlvalue.KindTime:
			return sqlvalue.Int(a.Micros() / 3_600_000_000), true
		case sqlvalue.KindTimestamp:
			secsOfDay := remEuclidPublic(a.Micros()/1_000_000, 86400)
			return sqlvalue.Int(secsOfDay / 3600), true
		}
		return sqlvalue.Null(), true
	case "MINUTE":
		a := arg(0)
		switch a.Kind() {
		case sqlvalue.KindTime:
			return sqlvalue.Int((a.Micros() / 60_000_000) % 60), true
		case sqlvalue.KindTimestamp:
			secsOfDay := remEuclidPublic(a.Micros()/1_000_000, 86400)
			return sqlvalue.Int((secsOfDay % 3600) / 60), true
		}
		return sqlvalue.Null(), true
	case "SECOND":
		a := arg(0)
		switch a.Kind() {
		case sqlvalue.KindTime:
			return sqlvalue.Int((a.Micros() / 1_000_000) % 60), true
		case sqlvalue.KindTimestamp:
			return sqlvalue.Int((a.Micros() / 1_000_000) % 60), true
		}
		return sqlvalue.Null(), true

	case "DATE_TRUNC":
		unit, uok := textArg(arg(0))
		a := arg(1)
		if !uok {
			return sqlvalue.Null(), true
		}
		switch a.Kind() {
		case sqlvalue.KindDate:
			return dateTruncDate(unit, a.Days()), true
		case sqlvalue.KindTimestamp:
			return dateTruncTs(unit, a.Micros()), true
		}
		return sqlvalue.Null(), true

	case "DATE_PART", "EXTRACT":
		field, fok := textArg(arg(0))
		if !fok || len(args) < 2 {
			return sqlvalue.Null(), true
		}
		return extractField(field, arg(1)), true

	case "DATEDIFF", "DATE_DIFF":
		if len(args) >= 3 {
			unit, uok := textArg(arg(0))
			if !uok {
				return sqlvalue.Null(), true
			}
			da, db := coerceToDays(arg(1)), coerceToDays(arg(2))
			switch strings.ToLower(unit) {
			case "day", "days":
				return sqlvalue.Int(db - da), true
			case "week", "weeks":
				return sqlvalue.Int((db - da) / 7), true
			case "month", "months":
				return sqlvalue.Int((db - da) / 30), true
			case "year", "years":
				return sqlvalue.Int((db - da) / 365), true
			default:
				return sqlvalue.Int(db - da), true
			}
		}
		if len(args) == 2 {
			da, db := coerceToDays(arg(0)), coerceToDays(arg(1))
			return sqlvalue.Int(da - db), true
		}
		return sqlvalue.Null(), true

	case "DATE_ADD", "DATEADD":
		unit, uok := textArg(arg(0))
		n, nok := intArg(arg(1))
		if !uok || !nok || len(args) < 3 {
			return sqlvalue.Null(), true
		}
		days := coerceToDays(arg(2))
		var result int64
		switch strings.ToLower(unit) {
		case "day", "days":
			result = days + n
		case "week", "weeks":
			result = days + n*7
		case "month", "months":
			result = days + n*30
		case "year", "years":
			result = days + n*365
		default:
			result = days + n
		}
		return sqlvalue.Date(result), true

	case "STRFTIME", "FORMAT_DATE", "TO_DATE":
		fmtStr, fok := textArg(arg(0))
		if fok && len(args) >= 2 {
			a := arg(1)
			switch a.Kind() {
			case sqlvalue.KindDate:
				_ = fmtStr
				return sqlvalue.Text(sqlvalue.EpochDaysToDateString(a.Days())), true
			case sqlvalue.KindTimestamp:
				return sqlvalue.Text(sqlvalue.EpochMicrosToTimestampString(a.Micros())), true
			}
			return sqlvalue.Null(), true
		}
		if fok {
			if d, ok := sqlvalue.DateStringToEpochDays(fmtStr); ok {
				return sqlvalue.Date(d), true
			}
			return sqlvalue.Null(), true
		}
		return sqlvalue.Null(), true

	case "EPOCH", "EPOCH_MS":
		a := arg(0)
		switch a.Kind() {
		case sqlvalue.KindTimestamp:
			if upper(name) == "EPOCH" {
				return sqlvalue.Int(a.Micros() / 1_000_000), true
			}
			return sqlvalue.Int(a.Micros() / 1_000), true
		case sqlvalue.KindDate:
			return sqlvalue.Int(a.Days() * 86400), true
		}
		return sqlvalue.Null(), true

	case "MAKE_DATE":
		y, yok := intArg(arg(0))
		m, mok := intArg(arg(1))
		d, dok := intArg(arg(2))
		if yok && mok && dok {
			return sqlvalue.Date(sqlvalue.YMDToEpochDays(int(y), int(m), int(d))), true
		}
		return sqlvalue.Null(), true

	case "AGE":
		return sqlvalue.Null(), true

	default:
		return sqlvalue.Null(), false
	}
}

func asDays(v sqlvalue.Scalar) (int64, bool) {
	switch v.Kind() {
	case sqlvalue.KindDate:
		return v.Days(), true
	case sqlvalue.KindTimestamp:
		return v.Micros() / microsPerDay, true
	case sqlvalue.KindUtf8:
		return sqlvalue.DateStringToEpochDays(v.Text())
	}
	return 0, false
}

func coerceToDays(v sqlvalue.Scalar) int64 {
	switch v.Kind() {
	case sqlvalue.KindDate:
		return v.Days()
	case sqlvalue.KindTimestamp:
		return v.Micros() / microsPerDay
	case sqlvalue.KindInt64:
		return v.Int()
	default:
		return 0
	}
}

func remEuclidPublic(a, b int64) int64 {
	r := a % b
	if r < 0 {
		if b > 0 {
			r += b
		} else {
			r -= b
		}
	}
	return r
}

func dateTruncDate(unit string, days int64) sqlvalue.Scalar {
	y, m, _ := sqlvalue.EpochDaysToYMD(days)
	var result int64
	switch strings.ToLower(unit) {
	case "year", "years":
		result = sqlvalue.YMDToEpochDays(y, 1, 1)
	case "month", "months":
		result = sqlvalue.YMDToEpochDays(y, m, 1)
	case "day", "days":
		result = days
	case "quarter":
		qMonth := ((m-1)/3)*3 + 1
		result = sqlvalue.YMDToEpochDays(y, qMonth, 1)
	case "week", "weeks":
		dow := remEuclidPublic(days+3, 7)
		result = days - dow
	default:
		result = days
	}
	return sqlvalue.Date(result)
}

func dateTruncTs(unit string, micros int64) sqlvalue.Scalar {
	days := micros / microsPerDay
	y, m, _ := sqlvalue.EpochDaysToYMD(days)
	secsOfDay := remEuclidPublic(micros/1_000_000, 86400)
	h := secsOfDay / 3600
	mi := (secsOfDay % 3600) / 60

	var result int64
	switch strings.ToLower(unit) {
	case "year", "years":
		result = sqlvalue.YMDToEpochDays(y, 1, 1) * microsPerDay
	case "month", "months":
		result = sqlvalue.YMDToEpochDays(y, m, 1) * microsPerDay
	case "day", "days":
		result = days * microsPerDay
	case "hour", "hours":
		result = days*microsPerDay + h*3_600_000_000
	case "minute", "minutes":
		result = days*microsPerDay + h*3_600_000_000 + mi*60_000_000
	case "second", "seconds":
		result = (micros / 1_000_000) * 1_000_000
	default:
		result = micros
	}
	return sqlvalue.Timestamp(result)
}

func extractField(field string, val sqlvalue.Scalar) sqlvalue.Scalar {
	days := coerceToDays(val)
	y, m, d := sqlvalue.EpochDaysToYMD(days)
	var micros int64
	if val.Kind() == sqlvalue.KindTimestamp {
		micros = val.Micros()
	} else {
		micros = days * microsPerDay
	}
	secsOfDay := remEuclidPublic(micros/1_000_000, 86400)

	switch strings.ToLower(field) {
	case "year", "years":
		return sqlvalue.Int(int64(y))
	case "month", "months":
		return sqlvalue.Int(int64(m))
	case "day", "days":
		return sqlvalue.Int(int64(d))
	case "hour", "hours":
		return sqlvalue.Int(secsOfDay / 3600)
	case "minute", "minutes":
		return sqlvalue.Int((secsOfDay % 3600) / 60)
	case "second", "seconds":
		return sqlvalue.Int(secsOfDay % 60)
	case "epoch":
		return sqlvalue.Int(micros / 1_000_000)
	case "quarter":
		return sqlvalue.Int(int64((m-1)/3 + 1))
	case "dow", "dayofweek":
		return sqlvalue.Int(remEuclidPublic(days+4, 7))
	case "doy", "dayofyear":
		yearStart := sqlvalue.YMDToEpochDays(y, 1, 1)
		return sqlvalue.Int(days - yearStart + 1)
	case "week", "weekofyear":
		yearStart := sqlvalue.YMDToEpochDays(y, 1, 1)
		return sqlvalue.Int((days-yearStart)/7 + 1)
	default:
		return sqlvalue.Null()
	}
}
