package eval

import (
	"regexp"
	"strconv"
	"strings"

	"tabular-hq/verdict/pkg/feel/ast"
	"tabular-hq/verdict/pkg/feel/builtins"
	"tabular-hq/verdict/pkg/feel/errors"
	"tabular-hq/verdict/pkg/feel/lexer"
	"tabular-hq/verdict/pkg/feel/parser"
)

// EvaluateString evaluates FEEL source text. The decision-table idioms that
// dominate rule conditions (bare literals, variable paths, a single
// comparison, between, in-list membership, and uniform and/or joins of
// those) are answered without running the parser. Everything else takes the
// full parse-and-evaluate path. Both paths agree on every input the fast
// path accepts.
func EvaluateString(input string, ctx *Context) (any, error) {
	if ctx == nil {
		ctx = NewContext(nil)
	}
	if v, handled, err := tryDirect(strings.TrimSpace(input), ctx); handled {
		return v, err
	}

	tree, errs := parser.Parse(input)
	if errs.HasErrors() {
		return nil, errs.First()
	}
	return Evaluate(tree, ctx)
}

var (
	numberLitRe  = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	identRe      = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	comparisonRe = regexp.MustCompile(`^(.+?)\s*(<=|>=|!=|==|=|<|>)\s*(.+)$`)
	betweenRe    = regexp.MustCompile(`^(.+?)\s+between\s+(.+?)\s+and\s+(.+)$`)
	membershipRe = regexp.MustCompile(`^(.+?)\s+(not\s+in|in)\s+\[(.*)\]$`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

func tryDirect(s string, ctx *Context) (any, bool, error) {
	if v, handled, err := evalSimpleClause(s, ctx); handled {
		return v, true, err
	}
	if v, handled, err := tryBetween(s, ctx); handled {
		return v, true, err
	}
	return tryConjunction(s, ctx)
}

// evalSimpleClause handles a literal, a variable path, one comparison, or
// one in-list membership.
func evalSimpleClause(s string, ctx *Context) (any, bool, error) {
	s = strings.TrimSpace(s)
	if v, ok := parseLiteralToken(s); ok {
		return v, true, nil
	}
	if isPathExpr(s) {
		v, err := lookupPath(s, ctx)
		return v, true, err
	}
	if v, handled, err := tryComparison(s, ctx); handled {
		return v, true, err
	}
	return tryMembership(s, ctx)
}

// parseLiteralToken recognizes exactly the literals the lexer would produce
// as a single token: plain numbers, escape-free quoted strings, booleans and
// null. Anything fancier falls through to the parser.
func parseLiteralToken(s string) (any, bool) {
	switch s {
	case "true":
		return true, true
	case "false":
		return false, true
	case "null":
		return nil, true
	}
	if numberLitRe.MatchString(s) {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, false
		}
		return f, true
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		inner := s[1 : len(s)-1]
		if !strings.ContainsAny(inner, `"\`) {
			return inner, true
		}
	}
	return nil, false
}

func isPathExpr(s string) bool {
	if s == "" {
		return false
	}
	for _, part := range strings.Split(s, ".") {
		if !identRe.MatchString(part) || lexer.IsWordOperator(part) {
			return false
		}
	}
	return true
}

func lookupPath(expr string, ctx *Context) (any, error) {
	parts := strings.Split(expr, ".")
	loc := ast.Location{Line: 1, Column: 1}

	v, ok := ctx.Lookup(parts[0])
	if !ok {
		return nil, errors.Newf(errors.KindVariableNotFound, loc,
			"variable %q is not defined", parts[0])
	}
	for _, property := range parts[1:] {
		var err error
		if v, err = accessProperty(v, property, loc); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func isOperandExpr(s string) bool {
	s = strings.TrimSpace(s)
	if _, ok := parseLiteralToken(s); ok {
		return true
	}
	return isPathExpr(s)
}

// directOperand evaluates a literal-or-path operand.
func directOperand(s string, ctx *Context) (any, bool, error) {
	s = strings.TrimSpace(s)
	if v, ok := parseLiteralToken(s); ok {
		return v, true, nil
	}
	if isPathExpr(s) {
		v, err := lookupPath(s, ctx)
		return v, true, err
	}
	return nil, false, nil
}

func tryComparison(s string, ctx *Context) (any, bool, error) {
	m := comparisonRe.FindStringSubmatch(s)
	if m == nil || !isOperandExpr(m[1]) || !isOperandExpr(m[3]) {
		return nil, false, nil
	}

	left, _, err := directOperand(m[1], ctx)
	if err != nil {
		return nil, true, err
	}
	right, _, err := directOperand(m[3], ctx)
	if err != nil {
		return nil, true, err
	}

	switch m[2] {
	case "=", "==":
		return builtins.ValuesEqual(left, right), true, nil
	case "!=":
		return !builtins.ValuesEqual(left, right), true, nil
	}

	cmp, ok := builtins.CompareValues(left, right)
	if !ok {
		return nil, true, errors.Newf(errors.KindTypeError, ast.Location{Line: 1, Column: 1},
			"cannot compare %s and %s", kindOf(left), kindOf(right))
	}
	switch m[2] {
	case "<":
		return cmp < 0, true, nil
	case "<=":
		return cmp <= 0, true, nil
	case ">":
		return cmp > 0, true, nil
	default:
		return cmp >= 0, true, nil
	}
}

func tryBetween(s string, ctx *Context) (any, bool, error) {
	m := betweenRe.FindStringSubmatch(s)
	if m == nil || !isOperandExpr(m[1]) || !isOperandExpr(m[2]) || !isOperandExpr(m[3]) {
		return nil, false, nil
	}

	value, _, err := directOperand(m[1], ctx)
	if err != nil {
		return nil, true, err
	}
	lo, _, err := directOperand(m[2], ctx)
	if err != nil {
		return nil, true, err
	}
	hi, _, err := directOperand(m[3], ctx)
	if err != nil {
		return nil, true, err
	}

	loc := ast.Location{Line: 1, Column: 1}
	cmpLo, ok := builtins.CompareValues(value, lo)
	if !ok {
		return nil, true, errors.Newf(errors.KindTypeError, loc,
			"cannot compare %s and %s", kindOf(value), kindOf(lo))
	}
	cmpHi, ok := builtins.CompareValues(value, hi)
	if !ok {
		return nil, true, errors.Newf(errors.KindTypeError, loc,
			"cannot compare %s and %s", kindOf(value), kindOf(hi))
	}
	return cmpLo >= 0 && cmpHi <= 0, true, nil
}

func tryMembership(s string, ctx *Context) (any, bool, error) {
	m := membershipRe.FindStringSubmatch(s)
	if m == nil || !isOperandExpr(m[1]) {
		return nil, false, nil
	}
	items, ok := splitListItems(m[3])
	if !ok {
		return nil, false, nil
	}
	for _, item := range items {
		if !isOperandExpr(item) {
			return nil, false, nil
		}
	}

	subject, _, err := directOperand(m[1], ctx)
	if err != nil {
		return nil, true, err
	}

	found := false
	for _, item := range items {
		v, _, err := directOperand(item, ctx)
		if err != nil {
			return nil, true, err
		}
		if !found && builtins.ValuesEqual(subject, v) {
			found = true
		}
	}

	if whitespaceRe.ReplaceAllString(m[2], " ") == "not in" {
		return !found, true, nil
	}
	return found, true, nil
}

// splitListItems splits on commas outside string literals. An empty body
// yields no items.
func splitListItems(body string) ([]string, bool) {
	if strings.TrimSpace(body) == "" {
		return nil, true
	}
	var items []string
	start := 0
	inStr := false
	for i := 0; i < len(body); i++ {
		switch {
		case inStr:
			if body[i] == '\\' {
				i++
				continue
			}
			if body[i] == '"' {
				inStr = false
			}
		case body[i] == '"':
			inStr = true
		case body[i] == ',':
			items = append(items, body[start:i])
			start = i + 1
		case body[i] == '[' || body[i] == ']':
			// Nested lists are beyond the fast path.
			return nil, false
		}
	}
	if inStr {
		return nil, false
	}
	items = append(items, body[start:])
	return items, true
}

// tryConjunction handles uniform and/or chains of simple clauses. Mixed
// connectors, or any appearance of between (whose "and" would collide with
// the split), defer to the parser.
func tryConjunction(s string, ctx *Context) (any, bool, error) {
	if strings.Contains(s, " between ") {
		return nil, false, nil
	}
	clauses, op, ok := splitConnectors(s)
	if !ok {
		return nil, false, nil
	}
	for _, clause := range clauses {
		if !isSimpleClause(clause) {
			return nil, false, nil
		}
	}

	// Both paths evaluate every operand; the first error wins, in clause
	// order.
	result := op == "and"
	for _, clause := range clauses {
		v, _, err := evalSimpleClause(clause, ctx)
		if err != nil {
			return nil, true, err
		}
		if op == "and" {
			result = result && Truthy(v)
		} else {
			result = result || Truthy(v)
		}
	}
	return result, true, nil
}

func isSimpleClause(s string) bool {
	s = strings.TrimSpace(s)
	if isOperandExpr(s) {
		return true
	}
	if m := comparisonRe.FindStringSubmatch(s); m != nil && isOperandExpr(m[1]) && isOperandExpr(m[3]) {
		return true
	}
	if m := membershipRe.FindStringSubmatch(s); m != nil && isOperandExpr(m[1]) {
		items, ok := splitListItems(m[3])
		if !ok {
			return false
		}
		for _, item := range items {
			if !isOperandExpr(item) {
				return false
			}
		}
		return true
	}
	return false
}

// splitConnectors splits a top-level chain joined by a single connector word
// ("and" or "or") outside strings and brackets.
func splitConnectors(s string) ([]string, string, bool) {
	var clauses []string
	var op string
	depth := 0
	inStr := false
	start := 0

	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case inStr:
			if c == '\\' {
				i += 2
				continue
			}
			if c == '"' {
				inStr = false
			}
		case c == '"':
			inStr = true
		case c == '[' || c == '(' || c == '{':
			depth++
		case c == ']' || c == ')' || c == '}':
			depth--
		case depth == 0 && (c == 'a' || c == 'o'):
			word := ""
			if strings.HasPrefix(s[i:], "and") {
				word = "and"
			} else if strings.HasPrefix(s[i:], "or") {
				word = "or"
			}
			if word != "" && connectorBoundary(s, i, len(word)) {
				if op == "" {
					op = word
				}
				if op != word {
					return nil, "", false
				}
				clauses = append(clauses, s[start:i])
				i += len(word)
				start = i
				continue
			}
		}
		i++
	}

	if inStr || depth != 0 || op == "" {
		return nil, "", false
	}
	clauses = append(clauses, s[start:])
	return clauses, op, true
}

// connectorBoundary requires whitespace on both sides of the connector word.
func connectorBoundary(s string, i, n int) bool {
	if i == 0 || !isSpaceByte(s[i-1]) {
		return false
	}
	end := i + n
	return end < len(s) && isSpaceByte(s[end])
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
