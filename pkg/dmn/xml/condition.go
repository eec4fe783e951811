package xml

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"tabular-hq/verdict/pkg/feel/builtins"
)

// Symbol operators ordered so two-character forms match before their
// one-character prefixes.
var symbolOperators = []string{">=", "<=", "==", "!=", ">", "<"}

// Word operators the emitter can produce for conditions that have no DMN
// unary-test form. Each requires a trailing space and a literal.
var wordOperators = []string{
	"not contains", "contains", "starts with", "ends with", "matches",
}

// Valueless operators match the whole entry text.
var valuelessOperators = []string{
	"is not null", "is null", "is not empty", "is empty",
}

// ParseConditionText decodes one inputEntry text into an operator and a
// condition value. The boolean is false for unconstrained entries (empty
// text or the dash "-"), which produce no condition at all.
//
//	> 18            -> ">", 18
//	in (1, 2, 3)    -> "in", [1 2 3]
//	not("x")        -> "!=", "x"
//	not(1, 2)       -> "not in", [1 2]
//	[18..65]        -> "between", [18 65]
//	18 .. 65        -> "between", [18 65]
//	"a", "b"        -> "in", ["a" "b"]
//	"gold"          -> "==", "gold"
func ParseConditionText(text, typeRef string) (operator string, value any, ok bool) {
	text = strings.TrimSpace(text)
	if text == "" || text == "-" {
		return "", nil, false
	}

	if inner, found := unwrapCall(text, "not"); found {
		parts := splitTopLevel(inner, ',')
		if len(parts) > 1 {
			return "not in", parseValueList(parts, typeRef), true
		}
		return "!=", parseValue(inner, typeRef), true
	}

	if inner, found := unwrapCall(text, "in"); found {
		parts := splitTopLevel(inner, ',')
		return "in", parseValueList(parts, typeRef), true
	}

	for _, op := range symbolOperators {
		if strings.HasPrefix(text, op) {
			rest := strings.TrimSpace(text[len(op):])
			return op, parseValue(rest, typeRef), true
		}
	}

	lowered := strings.ToLower(text)
	for _, op := range valuelessOperators {
		if lowered == op {
			return op, nil, true
		}
	}
	for _, op := range wordOperators {
		if strings.HasPrefix(lowered, op+" ") {
			rest := strings.TrimSpace(text[len(op)+1:])
			return op, parseValue(rest, typeRef), true
		}
	}

	if lo, hi, found := splitRange(text); found {
		return "between", []any{parseValue(lo, typeRef), parseValue(hi, typeRef)}, true
	}

	if parts := splitTopLevel(text, ','); len(parts) > 1 {
		return "in", parseValueList(parts, typeRef), true
	}

	return "==", parseValue(text, typeRef), true
}

// FormatConditionText renders a condition back to inputEntry text, inverting
// ParseConditionText. Strings are double-quoted; "!=" renders as not(...),
// "between" as an inclusive bracket range and "in" as a bare literal list.
func FormatConditionText(operator string, value any) string {
	switch normalizeConditionOperator(operator) {
	case "==", "=", "":
		return formatLiteral(value)
	case "!=":
		return "not(" + formatLiteral(value) + ")"
	case ">", ">=", "<", "<=":
		return normalizeConditionOperator(operator) + " " + formatLiteral(value)
	case "in":
		return formatLiteralList(value)
	case "not in":
		return "not(" + formatLiteralList(value) + ")"
	case "between":
		if bounds, ok := builtins.AsList(value); ok && len(bounds) == 2 {
			return "[" + formatLiteral(bounds[0]) + ".." + formatLiteral(bounds[1]) + "]"
		}
		return formatLiteral(value)
	case "is null", "is not null", "is empty", "is not empty":
		return normalizeConditionOperator(operator)
	default:
		return normalizeConditionOperator(operator) + " " + formatLiteral(value)
	}
}

// normalizeConditionOperator mirrors the engine's operator normalization so
// conditions stored via the API ("NOT_IN", "Equals") emit canonical text.
func normalizeConditionOperator(op string) string {
	normalized := strings.ToLower(strings.TrimSpace(op))
	normalized = strings.ReplaceAll(normalized, "_", " ")
	normalized = strings.Join(strings.Fields(normalized), " ")
	switch normalized {
	case "=", "equals", "equal":
		return "=="
	case "notequals", "not equals":
		return "!="
	case "notin":
		return "not in"
	case "notcontains":
		return "not contains"
	case "startswith":
		return "starts with"
	case "endswith":
		return "ends with"
	case "isnull":
		return "is null"
	case "isnotnull":
		return "is not null"
	case "isempty":
		return "is empty"
	case "isnotempty":
		return "is not empty"
	}
	return normalized
}

// unwrapCall returns the argument text of name(...) when the entire entry is
// one call to name, e.g. unwrapCall(`not("x")`, "not") -> `"x"`.
func unwrapCall(text, name string) (string, bool) {
	lowered := strings.ToLower(text)
	if !strings.HasPrefix(lowered, name) {
		return "", false
	}
	rest := strings.TrimSpace(text[len(name):])
	if !strings.HasPrefix(rest, "(") || !strings.HasSuffix(rest, ")") {
		return "", false
	}
	return strings.TrimSpace(rest[1 : len(rest)-1]), true
}

// splitRange detects an inclusive range: bracketed "[lo..hi]" (either bracket
// style) or a bare "lo .. hi". The ".." separator is only honored outside
// quotes.
func splitRange(text string) (lo, hi string, ok bool) {
	inner := text
	first, last := text[0], text[len(text)-1]
	bracketed := (first == '[' || first == '(' || first == ']') &&
		(last == ']' || last == ')' || last == '[')
	if bracketed {
		inner = text[1 : len(text)-1]
	}
	idx := indexOutsideQuotes(inner, "..")
	if idx < 0 {
		return "", "", false
	}
	lo = strings.TrimSpace(inner[:idx])
	hi = strings.TrimSpace(inner[idx+2:])
	if lo == "" || hi == "" {
		return "", "", false
	}
	return lo, hi, true
}

// indexOutsideQuotes returns the index of the first occurrence of sub that is
// not inside a single- or double-quoted segment, or -1. Backslash escapes
// inside double quotes are honored.
func indexOutsideQuotes(s, sub string) int {
	var quote byte
	for i := 0; i+len(sub) <= len(s); i++ {
		c := s[i]
		if quote != 0 {
			if quote == '"' && c == '\\' {
				i++
				continue
			}
			if c == quote {
				quote = 0
			}
			continue
		}
		if c == '"' || c == '\'' {
			quote = c
			continue
		}
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

// splitTopLevel splits on sep outside quotes and parentheses, trimming each
// part. A single part (no separator) comes back as a one-element slice.
// Backslash escapes inside double quotes are honored.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	var quote byte
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if quote == '"' && c == '\\' {
				i++
				continue
			}
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	parts = append(parts, strings.TrimSpace(s[start:]))
	return parts
}

func parseValueList(parts []string, typeRef string) []any {
	values := make([]any, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		values = append(values, parseValue(p, typeRef))
	}
	return values
}

// parseValue decodes one literal. Matching quotes are stripped first; the
// remainder coerces by typeRef when one is declared. Without a typeRef a
// quoted literal stays a string and a bare literal goes through the FEEL
// auto rules: true/false/null, then number, then string.
func parseValue(text, typeRef string) any {
	text = strings.TrimSpace(text)
	unquoted, wasQuoted := stripQuotes(text)

	switch normalizeTypeRef(typeRef) {
	case typeInteger:
		if n, err := strconv.ParseInt(unquoted, 10, 64); err == nil {
			return n
		}
		if f, ok := builtins.ParseNumber(unquoted); ok {
			return int64(f)
		}
		return unquoted
	case typeFloat:
		if f, ok := builtins.ParseNumber(unquoted); ok {
			return f
		}
		return unquoted
	case typeBoolean:
		switch strings.ToLower(unquoted) {
		case "true":
			return true
		case "false":
			return false
		}
		return unquoted
	case typeString:
		return unquoted
	}

	if wasQuoted {
		return unquoted
	}
	switch strings.ToLower(unquoted) {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	if f, ok := builtins.ParseNumber(unquoted); ok {
		return f
	}
	return unquoted
}

// stripQuotes removes one pair of matching single or double quotes. Double
// quoted text goes through strconv.Unquote so escaped quotes survive the
// round trip.
func stripQuotes(s string) (string, bool) {
	if len(s) < 2 {
		return s, false
	}
	first, last := s[0], s[len(s)-1]
	if first == '"' && last == '"' {
		if unquoted, err := strconv.Unquote(s); err == nil {
			return unquoted, true
		}
		return s[1 : len(s)-1], true
	}
	if first == '\'' && last == '\'' {
		return s[1 : len(s)-1], true
	}
	return s, false
}

// typeRef families. Anything unrecognized coerces with the auto rules.
const (
	typeString  = "string"
	typeInteger = "integer"
	typeFloat   = "float"
	typeBoolean = "boolean"
	typeAuto    = ""
)

func normalizeTypeRef(typeRef string) string {
	switch strings.ToLower(strings.TrimSpace(typeRef)) {
	case "string":
		return typeString
	case "integer", "int", "long", "short":
		return typeInteger
	case "number", "double", "float", "decimal":
		return typeFloat
	case "boolean", "bool":
		return typeBoolean
	}
	return typeAuto
}

// formatLiteral renders one value as entry text: strings double-quoted,
// numbers in canonical FEEL form, nil as null.
func formatLiteral(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(val)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return strconv.Quote(val.Format(time.RFC3339))
	}
	if n, ok := builtins.ToNumber(v); ok {
		return builtins.FormatNumber(n)
	}
	return fmt.Sprintf("%v", v)
}

func formatLiteralList(v any) string {
	list, ok := builtins.AsList(v)
	if !ok {
		return formatLiteral(v)
	}
	parts := make([]string, len(list))
	for i, item := range list {
		parts[i] = formatLiteral(item)
	}
	return strings.Join(parts, ", ")
}
