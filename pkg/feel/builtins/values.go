package builtins

import (
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// ToNumber coerces a value to float64. It accepts every Go numeric type so
// inputs survive both JSON decoding (float64) and direct Go callers (int).
// Strings are not coerced; that is what the number() builtin is for.
func ToNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// ParseNumber parses a string as a number after trimming whitespace.
func ParseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f, err == nil
}

// ValuesEqual compares two FEEL values: numerics compare by value across Go
// types, everything else falls back to deep equality.
func ValuesEqual(a, b any) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if na, ok := ToNumber(a); ok {
		if nb, ok := ToNumber(b); ok {
			return na == nb
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

// CompareValues orders two values: numeric when both coerce to numbers,
// time-aware for time.Time pairs, lexicographic for strings. The boolean is
// false when the pair is not comparable.
func CompareValues(a, b any) (int, bool) {
	if na, ok := ToNumber(a); ok {
		if nb, ok := ToNumber(b); ok {
			switch {
			case na < nb:
				return -1, true
			case na > nb:
				return 1, true
			}
			return 0, true
		}
		return 0, false
	}
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			switch {
			case ta.Before(tb):
				return -1, true
			case ta.After(tb):
				return 1, true
			}
			return 0, true
		}
		return 0, false
	}
	if sa, ok := a.(string); ok {
		if sb, ok := b.(string); ok {
			switch {
			case sa < sb:
				return -1, true
			case sa > sb:
				return 1, true
			}
			return 0, true
		}
	}
	return 0, false
}

// FormatNumber renders a float the FEEL way: no exponent, no trailing
// fraction zeros, "-0" normalized to "0".
func FormatNumber(f float64) string {
	if f == 0 {
		return "0"
	}
	if math.IsInf(f, 1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// AsList returns v as a []any when it is a list.
func AsList(v any) ([]any, bool) {
	list, ok := v.([]any)
	return list, ok
}

// numericArgsToList supports the FEEL calling convention where aggregate
// functions accept either one list argument or the values variadically:
// sum([1,2,3]) and sum(1,2,3) are equivalent.
func numericArgsToList(args []any) []any {
	if len(args) == 1 {
		if list, ok := AsList(args[0]); ok {
			return list
		}
	}
	return args
}
