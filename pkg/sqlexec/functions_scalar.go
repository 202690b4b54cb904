package sqlexec

import (
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"pivotsql/pkg/sqlvalue"
)

// callScalarFunction dispatches the non-aggregate, non-datetime function
// table. It returns ok=false when name is not one of these functions, so
// the caller can fall through to the datetime table and finally to NULL.
func callScalarFunction(name string, args []sqlvalue.Scalar) (sqlvalue.Scalar, bool) {
	arg := func(i int) sqlvalue.Scalar {
		if i < len(args) {
			return args[i]
		}
		return sqlvalue.Null()
	}

	switch upper(name) {
	case "UPPER":
		if s, ok := textArg(arg(0)); ok {
			return sqlvalue.Text(strings.ToUpper(s)), true
		}
		return sqlvalue.Null(), true
	case "LOWER":
		if s, ok := textArg(arg(0)); ok {
			return sqlvalue.Text(strings.ToLower(s)), true
		}
		return sqlvalue.Null(), true
	case "LENGTH", "LEN", "CHAR_LENGTH", "CHARACTER_LENGTH":
		if s, ok := textArg(arg(0)); ok {
			return sqlvalue.Int(int64(len([]rune(s)))), true
		}
		return sqlvalue.Null(), true
	case "OCTET_LENGTH", "BYTE_LENGTH":
		if s, ok := textArg(arg(0)); ok {
			return sqlvalue.Int(int64(len(s))), true
		}
		return sqlvalue.Null(), true
	case "TRIM":
		if s, ok := textArg(arg(0)); ok {
			return sqlvalue.Text(strings.TrimSpace(s)), true
		}
		return sqlvalue.Null(), true
	case "LTRIM":
		if s, ok := textArg(arg(0)); ok {
			return sqlvalue.Text(strings.TrimLeft(s, " \t\n\r")), true
		}
		return sqlvalue.Null(), true
	case "RTRIM":
		if s, ok := textArg(arg(0)); ok {
			return sqlvalue.Text(strings.TrimRight(s, " \t\n\r")), true
		}
		return sqlvalue.Null(), true
	case "REVERSE":
		if s, ok := textArg(arg(0)); ok {
			return sqlvalue.Text(reverseString(s)), true
		}
		return sqlvalue.Null(), true
	case "SUBSTR", "SUBSTRING":
		return fnSubstr(arg(0), arg(1), args), true
	case "LEFT":
		return fnLeft(arg(0), arg(1)), true
	case "RIGHT":
		return fnRight(arg(0), arg(1)), true
	case "REPEAT":
		s, sok := textArg(arg(0))
		n, nok := intArg(arg(1))
		if sok && nok && n >= 0 {
			return sqlvalue.Text(strings.Repeat(s, int(n))), true
		}
		return sqlvalue.Null(), true
	case "REPLACE":
		s, sok := textArg(arg(0))
		from, fok := textArg(arg(1))
		to, tok := textArg(arg(2))
		if sok && fok && tok {
			return sqlvalue.Text(strings.ReplaceAll(s, from, to)), true
		}
		return sqlvalue.Null(), true
	case "CONCAT":
		var sb strings.Builder
		for _, a := range args {
			if a.IsNull() {
				continue
			}
			if a.Kind() == sqlvalue.KindUtf8 {
				sb.WriteString(a.Text())
			} else {
				sb.WriteString(a.String())
			}
		}
		return sqlvalue.Text(sb.String()), true
	case "CONCAT_WS":
		sep := ","
		if s, ok := textArg(arg(0)); ok {
			sep = s
		}
		var parts []string
		for _, a := range args[minInt(1, len(args)):] {
			if a.IsNull() {
				continue
			}
			if a.Kind() == sqlvalue.KindUtf8 {
				parts = append(parts, a.Text())
			} else {
				parts = append(parts, a.String())
			}
		}
		return sqlvalue.Text(strings.Join(parts, sep)), true
	case "SPLIT_PART":
		s, sok := textArg(arg(0))
		delim, dok := textArg(arg(1))
		n, nok := intArg(arg(2))
		if sok && dok && nok {
			parts := strings.Split(s, delim)
			idx := n - 1
			if idx < 0 {
				idx = 0
			}
			if int(idx) < len(parts) {
				return sqlvalue.Text(parts[idx]), true
			}
			return sqlvalue.Text(""), true
		}
		return sqlvalue.Null(), true
	case "STARTS_WITH":
		s, sok := textArg(arg(0))
		p, pok := textArg(arg(1))
		if sok && pok {
			return sqlvalue.Bool(strings.HasPrefix(s, p)), true
		}
		return sqlvalue.Null(), true
	case "ENDS_WITH":
		s, sok := textArg(arg(0))
		p, pok := textArg(arg(1))
		if sok && pok {
			return sqlvalue.Bool(strings.HasSuffix(s, p)), true
		}
		return sqlvalue.Null(), true
	case "CONTAINS":
		s, sok := textArg(arg(0))
		n, nok := textArg(arg(1))
		if sok && nok {
			return sqlvalue.Bool(strings.Contains(s, n)), true
		}
		return sqlvalue.Null(), true
	case "POSITION":
		needle, nok := textArg(arg(0))
		hay, hok := textArg(arg(1))
		if nok && hok {
			i := strings.Index(hay, needle)
			if i < 0 {
				return sqlvalue.Int(0), true
			}
			return sqlvalue.Int(int64(i) + 1), true
		}
		return sqlvalue.Null(), true
	case "LPAD":
		return fnPad(arg(0), arg(1), arg(2), true), true
	case "RPAD":
		return fnPad(arg(0), arg(1), arg(2), false), true
	case "ASCII":
		if s, ok := textArg(arg(0)); ok {
			r := []rune(s)
			if len(r) == 0 {
				return sqlvalue.Int(0), true
			}
			return sqlvalue.Int(int64(r[0])), true
		}
		return sqlvalue.Null(), true
	case "CHR", "CHAR":
		if n, ok := intArg(arg(0)); ok && n >= 0 && n <= 0x10FFFF {
			return sqlvalue.Text(string(rune(n))), true
		}
		return sqlvalue.Null(), true

	case "ABS":
		a := arg(0)
		switch a.Kind() {
		case sqlvalue.KindInt64:
			return sqlvalue.Int(absInt64(a.Int())), true
		case sqlvalue.KindFloat64:
			return sqlvalue.Float(math.Abs(a.Float())), true
		}
		return sqlvalue.Null(), true
	case "CEIL", "CEILING":
		return roundLike(arg(0), math.Ceil), true
	case "FLOOR":
		return roundLike(arg(0), math.Floor), true
	case "ROUND":
		return fnRound(arg(0), args), true
	case "TRUNC", "TRUNCATE":
		return roundLike(arg(0), math.Trunc), true
	case "SQRT":
		if f, ok := floatArgAny(arg(0)); ok {
			return sqlvalue.Float(math.Sqrt(f)), true
		}
		return sqlvalue.Null(), true
	case "POWER", "POW":
		a, aok := floatArgAny(arg(0))
		b, bok := floatArgAny(arg(1))
		if aok && bok {
			return sqlvalue.Float(math.Pow(a, b)), true
		}
		return sqlvalue.Null(), true
	case "LOG", "LOG10":
		if f, ok := floatArgAny(arg(0)); ok {
			return sqlvalue.Float(math.Log10(f)), true
		}
		return sqlvalue.Null(), true
	case "LOG2":
		if f, ok := floatArgAny(arg(0)); ok {
			return sqlvalue.Float(math.Log2(f)), true
		}
		return sqlvalue.Null(), true
	case "LN":
		if f, ok := floatArgAny(arg(0)); ok {
			return sqlvalue.Float(math.Log(f)), true
		}
		return sqlvalue.Null(), true
	case "EXP":
		if f, ok := floatArgAny(arg(0)); ok {
			return sqlvalue.Float(math.Exp(f)), true
		}
		return sqlvalue.Null(), true
	case "MOD":
		a, b := arg(0), arg(1)
		if a.Kind() == sqlvalue.KindInt64 && b.Kind() == sqlvalue.KindInt64 {
			if b.Int() == 0 {
				return sqlvalue.Null(), true
			}
			return sqlvalue.Int(a.Int() % b.Int()), true
		}
		if af, aok := floatArgAny(a); aok {
			if bf, bok := floatArgAny(b); bok {
				return sqlvalue.Float(floatMod(af, bf)), true
			}
		}
		return sqlvalue.Null(), true
	case "SIGN":
		a := arg(0)
		switch a.Kind() {
		case sqlvalue.KindInt64:
			return sqlvalue.Int(signInt64(a.Int())), true
		case sqlvalue.KindFloat64:
			return sqlvalue.Float(signFloat64(a.Float())), true
		}
		return sqlvalue.Null(), true
	case "PI":
		return sqlvalue.Float(math.Pi), true
	case "E":
		return sqlvalue.Float(math.E), true
	case "SIN":
		if f, ok := floatArgAny(arg(0)); ok {
			return sqlvalue.Float(math.Sin(f)), true
		}
		return sqlvalue.Null(), true
	case "COS":
		if f, ok := floatArgAny(arg(0)); ok {
			return sqlvalue.Float(math.Cos(f)), true
		}
		return sqlvalue.Null(), true
	case "TAN":
		if f, ok := floatArgAny(arg(0)); ok {
			return sqlvalue.Float(math.Tan(f)), true
		}
		return sqlvalue.Null(), true

	case "TO_VARCHAR", "TO_STRING":
		a := arg(0)
		if a.IsNull() {
			return sqlvalue.Null(), true
		}
		return sqlvalue.Text(a.String()), true
	case "TO_NUMBER", "TO_NUMERIC", "TO_DOUBLE":
		a := arg(0)
		switch a.Kind() {
		case sqlvalue.KindInt64:
			return sqlvalue.Float(float64(a.Int())), true
		case sqlvalue.KindFloat64:
			return a, true
		case sqlvalue.KindUtf8:
			if f, err := strconv.ParseFloat(a.Text(), 64); err == nil {
				return sqlvalue.Float(f), true
			}
			return sqlvalue.Null(), true
		}
		return sqlvalue.Null(), true
	case "TO_INTEGER", "TO_INT":
		a := arg(0)
		switch a.Kind() {
		case sqlvalue.KindInt64:
			return a, true
		case sqlvalue.KindFloat64:
			return sqlvalue.Int(int64(a.Float())), true
		case sqlvalue.KindBoolean:
			return sqlvalue.Int(boolToInt(a.Bool())), true
		case sqlvalue.KindUtf8:
			if i, err := strconv.ParseInt(a.Text(), 10, 64); err == nil {
				return sqlvalue.Int(i), true
			}
			return sqlvalue.Null(), true
		}
		return sqlvalue.Null(), true

	case "ISNULL", "IS_NULL":
		return sqlvalue.Bool(arg(0).IsNull()), true
	case "ISNAN":
		a := arg(0)
		if a.Kind() == sqlvalue.KindFloat64 {
			return sqlvalue.Bool(math.IsNaN(a.Float())), true
		}
		return sqlvalue.Bool(false), true

	case "ARRAY_LENGTH", "ARRAY_SIZE":
		if s, ok := textArg(arg(0)); ok {
			return sqlvalue.Int(int64(len(strings.Split(s, ",")))), true
		}
		return sqlvalue.Null(), true

	case "UUID", "GEN_RANDOM_UUID", "UUID_GENERATE_V4":
		return sqlvalue.Text(uuid.New().String()), true
	case "IS_UUID":
		if s, ok := textArg(arg(0)); ok {
			_, err := uuid.Parse(s)
			return sqlvalue.Bool(err == nil), true
		}
		return sqlvalue.Bool(false), true
	case "UUID_NIL":
		return sqlvalue.Text(uuid.Nil.String()), true

	default:
		return sqlvalue.Null(), false
	}
}

func textArg(v sqlvalue.Scalar) (string, bool) {
	if v.Kind() == sqlvalue.KindUtf8 {
		return v.Text(), true
	}
	return "", false
}

func intArg(v sqlvalue.Scalar) (int64, bool) {
	if v.Kind() == sqlvalue.KindInt64 {
		return v.Int(), true
	}
	return 0, false
}

func floatArgAny(v sqlvalue.Scalar) (float64, bool) {
	switch v.Kind() {
	case sqlvalue.KindFloat64:
		return v.Float(), true
	case sqlvalue.KindInt64:
		return float64(v.Int()), true
	}
	return 0, false
}

func reverseString(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func absInt64(i int64) int64 {
	if i < 0 {
		return -i
	}
	return i
}

func signInt64(i int64) int64 {
	switch {
	case i > 0:
		return 1
	case i < 0:
		return -1
	default:
		return 0
	}
}

func signFloat64(f float64) float64 {
	switch {
	case f > 0:
		return 1
	case f < 0:
		return -1
	default:
		return 0
	}
}

func roundLike(v sqlvalue.Scalar, fn func(float64) float64) sqlvalue.Scalar {
	switch v.Kind() {
	case sqlvalue.KindFloat64:
		return sqlvalue.Float(fn(v.Float()))
	case sqlvalue.KindInt64:
		return v
	default:
		return sqlvalue.Null()
	}
}

func fnRound(v sqlvalue.Scalar, args []sqlvalue.Scalar) sqlvalue.Scalar {
	if v.Kind() == sqlvalue.KindInt64 {
		return v
	}
	if v.Kind() != sqlvalue.KindFloat64 {
		return sqlvalue.Null()
	}
	if len(args) > 1 && args[1].Kind() == sqlvalue.KindInt64 {
		factor := math.Pow(10, float64(args[1].Int()))
		return sqlvalue.Float(math.Round(v.Float()*factor) / factor)
	}
	return sqlvalue.Float(math.Round(v.Float()))
}

func fnSubstr(s, start sqlvalue.Scalar, args []sqlvalue.Scalar) sqlvalue.Scalar {
	str, sok := textArg(s)
	startN, nok := intArg(start)
	if !sok || !nok {
		return sqlvalue.Null()
	}
	chars := []rune(str)
	idx := startN - 1
	if idx < 0 {
		idx = 0
	}
	length := int64(len(chars))
	if len(args) > 2 && args[2].Kind() == sqlvalue.KindInt64 {
		length = args[2].Int()
	}
	if idx > int64(len(chars)) {
		idx = int64(len(chars))
	}
	end := idx + length
	if end > int64(len(chars)) {
		end = int64(len(chars))
	}
	if end < idx {
		end = idx
	}
	return sqlvalue.Text(string(chars[idx:end]))
}

func fnLeft(s, n sqlvalue.Scalar) sqlvalue.Scalar {
	str, sok := textArg(s)
	count, nok := intArg(n)
	if !sok || !nok {
		return sqlvalue.Null()
	}
	if count < 0 {
		count = 0
	}
	chars := []rune(str)
	if count > int64(len(chars)) {
		count = int64(len(chars))
	}
	return sqlvalue.Text(string(chars[:count]))
}

func fnRight(s, n sqlvalue.Scalar) sqlvalue.Scalar {
	str, sok := textArg(s)
	count, nok := intArg(n)
	if !sok || !nok {
		return sqlvalue.Null()
	}
	if count < 0 {
		count = 0
	}
	chars := []rune(str)
	start := int64(len(chars)) - count
	if start < 0 {
		start = 0
	}
	return sqlvalue.Text(string(chars[start:]))
}

func fnPad(s, n, padArg sqlvalue.Scalar, left bool) sqlvalue.Scalar {
	str, sok := textArg(s)
	count, nok := intArg(n)
	if !sok || !nok {
		return sqlvalue.Null()
	}
	padChar := ' '
	if p, ok := textArg(padArg); ok {
		r := []rune(p)
		if len(r) > 0 {
			padChar = r[0]
		}
	}
	chars := []rune(str)
	if count < 0 {
		count = 0
	}
	if int64(len(chars)) >= count {
		return sqlvalue.Text(string(chars[:count]))
	}
	pad := strings.Repeat(string(padChar), int(count-int64(len(chars))))
	if left {
		return sqlvalue.Text(pad + str)
	}
	return sqlvalue.Text(str + pad)
}
