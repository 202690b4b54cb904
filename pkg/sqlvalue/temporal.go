package sqlvalue

import (
	"fmt"
	"strconv"
	"strings"
)

// IsLeapYear reports whether year is a leap year in the proleptic
// Gregorian calendar.
func IsLeapYear(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

// DaysInMonth returns the number of days in the given 1-based month of year.
func DaysInMonth(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	case 2:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	default:
		return 30
	}
}

// EpochDaysToYMD converts a day count since 1970-01-01 to (year, month, day).
func EpochDaysToYMD(days int64) (year, month, day int) {
	remaining := days
	year = 1970
	for {
		daysInYear := int64(365)
		if IsLeapYear(year) {
			daysInYear = 366
		}
		if remaining >= 0 && remaining < daysInYear {
			break
		}
		if remaining < 0 {
			year--
			if IsLeapYear(year) {
				remaining += 366
			} else {
				remaining += 365
			}
		} else {
			remaining -= daysInYear
			year++
		}
	}
	month = 1
	for {
		dim := int64(DaysInMonth(year, month))
		if remaining < dim {
			break
		}
		remaining -= dim
		month++
	}
	day = int(remaining) + 1
	return year, month, day
}

// YMDToEpochDays converts (year, month, day) to a day count since 1970-01-01.
func YMDToEpochDays(year, month, day int) int64 {
	var days int64
	if year >= 1970 {
		for y := 1970; y < year; y++ {
			if IsLeapYear(y) {
				days += 366
			} else {
				days += 365
			}
		}
	} else {
		for y := year; y < 1970; y++ {
			if IsLeapYear(y) {
				days -= 366
			} else {
				days -= 365
			}
		}
	}
	for m := 1; m < month; m++ {
		days += int64(DaysInMonth(year, m))
	}
	days += int64(day) - 1
	return days
}

// EpochDaysToDateString renders days as YYYY-MM-DD.
func EpochDaysToDateString(days int64) string {
	y, m, d := EpochDaysToYMD(days)
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d)
}

// divEuclid and remEuclid mirror Rust's div_euclid/rem_euclid: the
// remainder is always non-negative, which keeps negative timestamps from
// producing a negative day-of-week time-of-day split.
func divEuclid(a, b int64) int64 {
	q := a / b
	if a%b < 0 {
		if b > 0 {
			q--
		} else {
			q++
		}
	}
	return q
}

func remEuclid(a, b int64) int64 {
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

// EpochMicrosToTimestampString renders micros since epoch as
// "YYYY-MM-DD HH:MM:SS[.ffffff]".
func EpochMicrosToTimestampString(micros int64) string {
	totalSecs := divEuclid(micros, 1_000_000)
	us := remEuclid(micros, 1_000_000)
	days := divEuclid(totalSecs, 86400)
	secsOfDay := remEuclid(totalSecs, 86400)
	y, m, d := EpochDaysToYMD(days)
	h := secsOfDay / 3600
	mi := (secsOfDay % 3600) / 60
	s := secsOfDay % 60
	if us == 0 {
		return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", y, m, d, h, mi, s)
	}
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d.%06d", y, m, d, h, mi, s, us)
}

// MicrosToTimeString renders micros since midnight as "HH:MM:SS[.ffffff]".
func MicrosToTimeString(micros int64) string {
	totalSecs := micros / 1_000_000
	us := micros % 1_000_000
	if us < 0 {
		us = -us
	}
	h := totalSecs / 3600
	mi := (totalSecs % 3600) / 60
	s := totalSecs % 60
	if us == 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, mi, s)
	}
	return fmt.Sprintf("%02d:%02d:%02d.%06d", h, mi, s, us)
}

// DateStringToEpochDays parses "YYYY-MM-DD". Month/day ranges are
// validated (1..=12, 1..=31) but day/month combinations are not
// (e.g. 2024-02-30 parses), matching the source this codec is ported from.
func DateStringToEpochDays(s string) (int64, bool) {
	parts := strings.SplitN(s, "-", 3)
	if len(parts) < 3 {
		return 0, false
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0, false
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return 0, false
	}
	return YMDToEpochDays(year, month, day), true
}

// TimestampStringToEpochMicros parses "YYYY-MM-DD HH:MM:SS[.ffffff]" or
// "YYYY-MM-DDTHH:MM:SS[.ffffff]"; a bare date defaults the time to midnight.
func TimestampStringToEpochMicros(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	var datePart, timePart string
	if pos := strings.IndexByte(s, ' '); pos >= 0 {
		datePart, timePart = s[:pos], s[pos+1:]
	} else if pos := strings.IndexByte(s, 'T'); pos >= 0 {
		datePart, timePart = s[:pos], s[pos+1:]
	} else {
		datePart, timePart = s, "00:00:00"
	}
	days, ok := DateStringToEpochDays(datePart)
	if !ok {
		return 0, false
	}
	micros, ok := TimeStringToMicros(timePart)
	if !ok {
		return 0, false
	}
	return days*86_400_000_000 + micros, true
}

// TimeStringToMicros parses "HH:MM[:SS[.ffffff]]".
func TimeStringToMicros(s string) (int64, bool) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) < 2 {
		return 0, false
	}
	h, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, false
	}
	m, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, false
	}
	var secs, micros int64
	if len(parts) == 3 {
		sp := strings.SplitN(parts[2], ".", 2)
		secs, err = strconv.ParseInt(sp[0], 10, 64)
		if err != nil {
			return 0, false
		}
		if len(sp) == 2 {
			frac := sp[1]
			if len(frac) > 6 {
				frac = frac[:6]
			}
			for len(frac) < 6 {
				frac += "0"
			}
			micros, err = strconv.ParseInt(frac, 10, 64)
			if err != nil {
				return 0, false
			}
		}
	}
	return (h*3600+m*60+secs)*1_000_000 + micros, true
}
