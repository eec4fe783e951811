package builtins

import (
	"fmt"
	"strings"
	"time"
)

func registerConversion(r *Registry) {
	r.Register(&Function{Name: "string", MinArgs: 1, MaxArgs: 1, Impl: builtinString})
	r.Register(&Function{Name: "boolean", MinArgs: 1, MaxArgs: 1, Impl: builtinBoolean})
}

func builtinString(_ *Env, args []any) (any, error) {
	return Stringify(args[0]), nil
}

// Stringify renders any FEEL value as a string: null becomes "null", dates
// render as ISO-8601, numbers without trailing zeros. It backs the string()
// builtin and string concatenation.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format("2006-01-02")
		}
		return val.Format(time.RFC3339)
	case *Duration:
		return val.String()
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = Stringify(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		if n, ok := ToNumber(v); ok {
			return FormatNumber(n)
		}
		return fmt.Sprintf("%v", v)
	}
}

// builtinBoolean coerces per the engine contract: null, 0 and "" are false;
// the strings "true", "yes" and "1" are true case-insensitively; other
// strings are false; non-empty collections are true.
func builtinBoolean(_ *Env, args []any) (any, error) {
	switch val := args[0].(type) {
	case nil:
		return false, nil
	case bool:
		return val, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "yes", "1":
			return true, nil
		}
		return false, nil
	case []any:
		return len(val) > 0, nil
	case map[string]any:
		return len(val) > 0, nil
	default:
		if n, ok := ToNumber(val); ok {
			return n != 0, nil
		}
		return true, nil
	}
}
