package engine

import (
	"log/slog"
	"regexp"
	"strings"

	"tabular-hq/verdict/pkg/feel/builtins"
)

// Matcher evaluates a single rule condition against a resolved input value.
// Operators never raise: anything unresolvable evaluates to false, and an
// unknown operator degrades to equality with a warning.
type Matcher struct {
	logger *slog.Logger
}

// NewMatcher creates a condition matcher.
func NewMatcher(logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{logger: logger}
}

// Matches evaluates one condition. A nil input value can only satisfy the
// presence operators ("is null", "is empty").
func (m *Matcher) Matches(inputValue any, operator string, conditionValue any) bool {
	op := normalizeOperator(operator)

	if inputValue == nil {
		switch op {
		case opIsNull, opIsEmpty:
			return true
		default:
			return false
		}
	}

	switch op {
	case opEqual:
		return valueEqual(inputValue, conditionValue)
	case opNotEqual:
		return !valueEqual(inputValue, conditionValue)
	case opGreater:
		return valueCompare(inputValue, conditionValue) > 0
	case opGreaterEqual:
		return valueCompare(inputValue, conditionValue) >= 0
	case opLess:
		return valueCompare(inputValue, conditionValue) < 0
	case opLessEqual:
		return valueCompare(inputValue, conditionValue) <= 0
	case opIn:
		return valueIn(inputValue, conditionValue)
	case opNotIn:
		return !valueIn(inputValue, conditionValue)
	case opBetween:
		return valueBetween(inputValue, conditionValue)
	case opContains:
		return valueContains(inputValue, conditionValue)
	case opNotContains:
		return !valueContains(inputValue, conditionValue)
	case opStartsWith:
		return strings.HasPrefix(builtins.Stringify(inputValue), builtins.Stringify(conditionValue))
	case opEndsWith:
		return strings.HasSuffix(builtins.Stringify(inputValue), builtins.Stringify(conditionValue))
	case opMatches:
		return valueMatches(inputValue, conditionValue)
	case opIsNull:
		return false // input is non-nil here
	case opIsNotNull:
		return true
	case opIsEmpty:
		return valueEmpty(inputValue)
	case opIsNotEmpty:
		return !valueEmpty(inputValue)
	default:
		m.logger.Warn("unknown condition operator, falling back to equality",
			"operator", operator,
		)
		return valueEqual(inputValue, conditionValue)
	}
}

// Canonical operator tokens after normalization.
const (
	opEqual        = "=="
	opNotEqual     = "!="
	opGreater      = ">"
	opGreaterEqual = ">="
	opLess         = "<"
	opLessEqual    = "<="
	opIn           = "in"
	opNotIn        = "not in"
	opBetween      = "between"
	opContains     = "contains"
	opNotContains  = "not contains"
	opStartsWith   = "starts with"
	opEndsWith     = "ends with"
	opMatches      = "matches"
	opIsNull       = "is null"
	opIsNotNull    = "is not null"
	opIsEmpty      = "is empty"
	opIsNotEmpty   = "is not empty"
)

var operatorAliases = map[string]string{
	"=":           opEqual,
	"equals":      opEqual,
	"equal":       opEqual,
	"notequals":   opNotEqual,
	"not equals":  opNotEqual,
	"notin":       opNotIn,
	"notcontains": opNotContains,
	"startswith":  opStartsWith,
	"endswith":    opEndsWith,
	"isnull":      opIsNull,
	"isnotnull":   opIsNotNull,
	"isempty":     opIsEmpty,
	"isnotempty":  opIsNotEmpty,
}

// normalizeOperator lowercases, strips underscores and collapses runs of
// spaces, then resolves aliases ("equals", "notIn", "starts_with") to the
// canonical token.
func normalizeOperator(op string) string {
	normalized := strings.ToLower(strings.TrimSpace(op))
	normalized = strings.ReplaceAll(normalized, "_", " ")
	normalized = strings.Join(strings.Fields(normalized), " ")
	if canonical, ok := operatorAliases[normalized]; ok {
		return canonical
	}
	return normalized
}

// valueEqual is the equality contract shared by ==, != and membership:
// numbers compare by value across Go types, a numeric string compares
// numerically against a number, and string comparison is case-insensitive.
func valueEqual(input, condition any) bool {
	if in, ok := builtins.ToNumber(input); ok {
		if cn, ok := conditionNumber(condition); ok {
			return in == cn
		}
	}
	if is, ok := input.(string); ok {
		if cs, ok := condition.(string); ok {
			return strings.EqualFold(is, cs)
		}
		if cn, ok := builtins.ToNumber(condition); ok {
			if in, ok := builtins.ParseNumber(is); ok {
				return in == cn
			}
		}
	}
	return builtins.ValuesEqual(input, condition)
}

// valueCompare orders two values: numeric when both sides coerce (numeric
// strings included), lexicographic on the rendered strings otherwise.
func valueCompare(input, condition any) int {
	if in, ok := conditionNumber(input); ok {
		if cn, ok := conditionNumber(condition); ok {
			switch {
			case in < cn:
				return -1
			case in > cn:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(builtins.Stringify(input), builtins.Stringify(condition))
}

// conditionNumber coerces numbers and numeric strings.
func conditionNumber(v any) (float64, bool) {
	if n, ok := builtins.ToNumber(v); ok {
		return n, true
	}
	if s, ok := v.(string); ok {
		return builtins.ParseNumber(s)
	}
	return 0, false
}

// valueIn tests list membership with the shared equality contract. A
// non-list condition degrades to a plain equality check.
func valueIn(input, condition any) bool {
	list, ok := builtins.AsList(condition)
	if !ok {
		return valueEqual(input, condition)
	}
	for _, item := range list {
		if valueEqual(input, item) {
			return true
		}
	}
	return false
}

// valueBetween expects a two-element [low, high] condition and tests the
// inclusive range.
func valueBetween(input, condition any) bool {
	bounds, ok := builtins.AsList(condition)
	if !ok || len(bounds) != 2 {
		return false
	}
	return valueCompare(input, bounds[0]) >= 0 && valueCompare(input, bounds[1]) <= 0
}

// valueContains tests substring on strings and element membership on lists.
func valueContains(input, condition any) bool {
	if list, ok := builtins.AsList(input); ok {
		for _, item := range list {
			if valueEqual(item, condition) {
				return true
			}
		}
		return false
	}
	return strings.Contains(builtins.Stringify(input), builtins.Stringify(condition))
}

// valueMatches treats the condition as a regular expression. A pattern that
// does not compile matches nothing.
func valueMatches(input, condition any) bool {
	pattern, ok := condition.(string)
	if !ok {
		return false
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(builtins.Stringify(input))
}

// valueEmpty reports whether a value is empty: empty or blank strings,
// zero-length lists and maps. Numbers and booleans are never empty.
func valueEmpty(v any) bool {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val) == ""
	case []any:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	}
	return false
}
