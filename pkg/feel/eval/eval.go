package eval

import (
	"fmt"
	"math"
	"time"

	"tabular-hq/verdict/pkg/feel/ast"
	"tabular-hq/verdict/pkg/feel/builtins"
	"tabular-hq/verdict/pkg/feel/errors"
)

// Evaluate interprets a parsed expression tree against the context.
func Evaluate(node *ast.Node, ctx *Context) (any, error) {
	if node == nil {
		return nil, nil
	}
	if ctx == nil {
		ctx = NewContext(nil)
	}
	e := &evaluator{env: &builtins.Env{Now: ctx.Now}}
	return e.eval(node, ctx)
}

// Truthy reports the FEEL truthiness of a value: null, false, 0, "" and
// empty collections are false; everything else is true.
func Truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		if n, ok := builtins.ToNumber(v); ok {
			return n != 0
		}
		return true
	}
}

type evaluator struct {
	env *builtins.Env
}

func (e *evaluator) eval(n *ast.Node, ctx *Context) (any, error) {
	switch n.Kind {
	case ast.KindNumber:
		return n.Number, nil
	case ast.KindString:
		return n.Text, nil
	case ast.KindBoolean:
		return n.Boolean, nil
	case ast.KindNull:
		return nil, nil
	case ast.KindIdentifier:
		v, ok := ctx.Lookup(n.Text)
		if !ok {
			return nil, errors.Newf(errors.KindVariableNotFound, n.Location,
				"variable %q is not defined", n.Text)
		}
		return v, nil
	case ast.KindUnary:
		return e.evalUnary(n, ctx)
	case ast.KindBinary:
		return e.evalBinary(n, ctx)
	case ast.KindBetween:
		return e.evalBetween(n, ctx)
	case ast.KindIf:
		return e.evalIf(n, ctx)
	case ast.KindFor:
		return e.evalFor(n, ctx)
	case ast.KindQuantified:
		return e.evalQuantified(n, ctx)
	case ast.KindList:
		return e.evalList(n, ctx)
	case ast.KindContext:
		return e.evalContext(n, ctx)
	case ast.KindRange:
		return e.evalRange(n, ctx)
	case ast.KindCall:
		return e.evalCall(n, ctx)
	case ast.KindPath:
		return e.evalPath(n, ctx)
	case ast.KindFilter:
		return e.evalFilter(n, ctx)
	case ast.KindFunction:
		return &lambda{params: n.Params, body: n.Body, ctx: ctx, eval: e}, nil
	}
	return nil, errors.Newf(errors.KindRuntimeError, n.Location,
		"cannot evaluate node kind %q", n.Kind)
}

func (e *evaluator) evalUnary(n *ast.Node, ctx *Context) (any, error) {
	operand, err := e.eval(n.Left, ctx)
	if err != nil {
		return nil, err
	}

	switch n.Operator {
	case "-":
		num, ok := builtins.ToNumber(operand)
		if !ok {
			return nil, errors.Newf(errors.KindTypeError, n.Location,
				"cannot negate %s", kindOf(operand))
		}
		return -num, nil
	case "not":
		return !Truthy(operand), nil
	}
	return nil, errors.Newf(errors.KindRuntimeError, n.Location,
		"unsupported unary operator %q", n.Operator)
}

func (e *evaluator) evalBinary(n *ast.Node, ctx *Context) (any, error) {
	left, err := e.eval(n.Left, ctx)
	if err != nil {
		return nil, err
	}
	right, err := e.eval(n.Right, ctx)
	if err != nil {
		return nil, err
	}

	switch n.Operator {
	case "+", "-", "*", "/", "**":
		return e.arithmetic(n, left, right)
	case "=":
		return builtins.ValuesEqual(left, right), nil
	case "!=":
		return !builtins.ValuesEqual(left, right), nil
	case "<", "<=", ">", ">=":
		return e.ordering(n, left, right)
	case "and":
		return Truthy(left) && Truthy(right), nil
	case "or":
		return Truthy(left) || Truthy(right), nil
	case "in":
		return e.membership(n, left, right)
	case "not in":
		in, err := e.membership(n, left, right)
		if err != nil {
			return nil, err
		}
		return !in.(bool), nil
	}
	return nil, errors.Newf(errors.KindRuntimeError, n.Location,
		"unsupported operator %q", n.Operator)
}

// arithmetic applies the numeric operators; + concatenates when either side
// is a string.
func (e *evaluator) arithmetic(n *ast.Node, left, right any) (any, error) {
	if n.Operator == "+" {
		if s, ok := left.(string); ok {
			return s + builtins.Stringify(right), nil
		}
		if s, ok := right.(string); ok {
			return builtins.Stringify(left) + s, nil
		}
	}

	ln, lok := builtins.ToNumber(left)
	rn, rok := builtins.ToNumber(right)
	if !lok || !rok {
		return nil, errors.Newf(errors.KindTypeError, n.Location,
			"cannot apply %q to %s and %s", n.Operator, kindOf(left), kindOf(right))
	}

	switch n.Operator {
	case "+":
		return ln + rn, nil
	case "-":
		return ln - rn, nil
	case "*":
		return ln * rn, nil
	case "/":
		if rn == 0 {
			return nil, errors.New(errors.KindDivisionByZero, "division by zero", n.Location)
		}
		return ln / rn, nil
	case "**":
		return math.Pow(ln, rn), nil
	}
	return nil, errors.Newf(errors.KindRuntimeError, n.Location,
		"unsupported arithmetic operator %q", n.Operator)
}

func (e *evaluator) ordering(n *ast.Node, left, right any) (any, error) {
	cmp, ok := builtins.CompareValues(left, right)
	if !ok {
		return nil, errors.Newf(errors.KindTypeError, n.Location,
			"cannot compare %s and %s", kindOf(left), kindOf(right))
	}
	switch n.Operator {
	case "<":
		return cmp < 0, nil
	case "<=":
		return cmp <= 0, nil
	case ">":
		return cmp > 0, nil
	case ">=":
		return cmp >= 0, nil
	}
	return nil, errors.Newf(errors.KindRuntimeError, n.Location,
		"unsupported comparison operator %q", n.Operator)
}

func (e *evaluator) membership(n *ast.Node, left, right any) (any, error) {
	switch coll := right.(type) {
	case []any:
		for _, item := range coll {
			if builtins.ValuesEqual(left, item) {
				return true, nil
			}
		}
		return false, nil
	case *builtins.Range:
		return coll.Contains(left)
	default:
		return nil, errors.Newf(errors.KindTypeError, n.Location,
			"right side of %q must be a list or range, got %s", n.Operator, kindOf(right))
	}
}

// evalBetween is inclusive on both bounds.
func (e *evaluator) evalBetween(n *ast.Node, ctx *Context) (any, error) {
	value, err := e.eval(n.Left, ctx)
	if err != nil {
		return nil, err
	}
	lo, err := e.eval(n.Lo, ctx)
	if err != nil {
		return nil, err
	}
	hi, err := e.eval(n.Hi, ctx)
	if err != nil {
		return nil, err
	}

	cmpLo, ok := builtins.CompareValues(value, lo)
	if !ok {
		return nil, errors.Newf(errors.KindTypeError, n.Location,
			"cannot compare %s and %s", kindOf(value), kindOf(lo))
	}
	cmpHi, ok := builtins.CompareValues(value, hi)
	if !ok {
		return nil, errors.Newf(errors.KindTypeError, n.Location,
			"cannot compare %s and %s", kindOf(value), kindOf(hi))
	}
	return cmpLo >= 0 && cmpHi <= 0, nil
}

func (e *evaluator) evalIf(n *ast.Node, ctx *Context) (any, error) {
	cond, err := e.eval(n.Condition, ctx)
	if err != nil {
		return nil, err
	}
	if Truthy(cond) {
		return e.eval(n.Then, ctx)
	}
	return e.eval(n.Else, ctx)
}

func (e *evaluator) evalFor(n *ast.Node, ctx *Context) (any, error) {
	source, err := e.eval(n.Source, ctx)
	if err != nil {
		return nil, err
	}
	list, ok := builtins.AsList(source)
	if !ok {
		return nil, errors.Newf(errors.KindTypeError, n.Location,
			"for expects a list, got %s", kindOf(source))
	}

	out := make([]any, 0, len(list))
	for _, item := range list {
		v, err := e.eval(n.Body, ctx.bind(map[string]any{n.Var: item}))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (e *evaluator) evalQuantified(n *ast.Node, ctx *Context) (any, error) {
	source, err := e.eval(n.Source, ctx)
	if err != nil {
		return nil, err
	}
	list, ok := builtins.AsList(source)
	if !ok {
		return nil, errors.Newf(errors.KindTypeError, n.Location,
			"%s expects a list, got %s", n.Quantifier, kindOf(source))
	}

	for _, item := range list {
		v, err := e.eval(n.Body, ctx.bind(map[string]any{n.Var: item}))
		if err != nil {
			return nil, err
		}
		holds := Truthy(v)
		if n.Quantifier == "some" && holds {
			return true, nil
		}
		if n.Quantifier == "every" && !holds {
			return false, nil
		}
	}
	return n.Quantifier == "every", nil
}

func (e *evaluator) evalList(n *ast.Node, ctx *Context) (any, error) {
	out := make([]any, len(n.Children))
	for i, child := range n.Children {
		v, err := e.eval(child, ctx)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// evalContext builds entries in declaration order; later entries can
// reference earlier keys ({a: 1, b: a + 1}).
func (e *evaluator) evalContext(n *ast.Node, ctx *Context) (any, error) {
	out := make(map[string]any, len(n.Entries))
	scope := ctx.bind(out)
	for _, entry := range n.Entries {
		v, err := e.eval(entry.Value, scope)
		if err != nil {
			return nil, err
		}
		out[entry.Key] = v
	}
	return out, nil
}

func (e *evaluator) evalRange(n *ast.Node, ctx *Context) (any, error) {
	lo, err := e.eval(n.Lo, ctx)
	if err != nil {
		return nil, err
	}
	hi, err := e.eval(n.Hi, ctx)
	if err != nil {
		return nil, err
	}
	return builtins.NewRange(lo, hi, n.LoInclusive, n.HiInclusive), nil
}

func (e *evaluator) evalCall(n *ast.Node, ctx *Context) (any, error) {
	args := make([]any, len(n.Children))
	for i, arg := range n.Children {
		v, err := e.eval(arg, ctx)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	// A bare name resolves against variables first (user-defined functions
	// shadow builtins), then against the registry.
	if n.Target.Kind == ast.KindIdentifier {
		name := n.Target.Text
		if v, found := ctx.Lookup(name); found {
			if fn, ok := v.(builtins.Callable); ok {
				out, err := fn.Call(args)
				return withLocation(n.Location, out, err)
			}
		}
		if _, ok := ctx.registry().Lookup(name); ok {
			out, err := ctx.registry().Call(e.env, name, args)
			return withLocation(n.Location, out, err)
		}
		if _, found := ctx.Lookup(name); found {
			return nil, errors.Newf(errors.KindTypeError, n.Location,
				"%s is not a function", name)
		}
		return nil, errors.Newf(errors.KindFunctionNotFound, n.Location,
			"unknown function %q", name)
	}

	target, err := e.eval(n.Target, ctx)
	if err != nil {
		return nil, err
	}
	fn, ok := target.(builtins.Callable)
	if !ok {
		return nil, errors.Newf(errors.KindTypeError, n.Location,
			"%s is not callable", kindOf(target))
	}
	out, err := fn.Call(args)
	return withLocation(n.Location, out, err)
}

func (e *evaluator) evalPath(n *ast.Node, ctx *Context) (any, error) {
	target, err := e.eval(n.Target, ctx)
	if err != nil {
		return nil, err
	}
	return accessProperty(target, n.Property, n.Location)
}

// accessProperty resolves one path step. Missing context keys yield null;
// access on null itself is an error.
func accessProperty(target any, property string, loc ast.Location) (any, error) {
	switch t := target.(type) {
	case nil:
		return nil, errors.Newf(errors.KindNullValue, loc,
			"cannot access property %q of null", property)
	case map[string]any:
		return t[property], nil
	case time.Time:
		return dateProperty(t, property, loc)
	case *builtins.Duration:
		return durationProperty(t, property, loc)
	default:
		return nil, errors.Newf(errors.KindTypeError, loc,
			"cannot access property %q of %s", property, kindOf(target))
	}
}

func dateProperty(t time.Time, property string, loc ast.Location) (any, error) {
	switch property {
	case "year":
		return float64(t.Year()), nil
	case "month":
		return float64(int(t.Month())), nil
	case "day":
		return float64(t.Day()), nil
	case "hour":
		return float64(t.Hour()), nil
	case "minute":
		return float64(t.Minute()), nil
	case "second":
		return float64(t.Second()), nil
	case "weekday":
		// ISO 8601 numbering: Monday is 1, Sunday is 7.
		wd := int(t.Weekday())
		if wd == 0 {
			wd = 7
		}
		return float64(wd), nil
	}
	return nil, errors.Newf(errors.KindTypeError, loc,
		"unknown date property %q", property)
}

func durationProperty(d *builtins.Duration, property string, loc ast.Location) (any, error) {
	switch property {
	case "years":
		return float64(d.Years), nil
	case "months":
		return float64(d.Months), nil
	case "days":
		return float64(d.Days), nil
	case "hours":
		return float64(d.Hours), nil
	case "minutes":
		return float64(d.Minutes), nil
	case "seconds":
		return d.Seconds, nil
	}
	return nil, errors.Newf(errors.KindTypeError, loc,
		"unknown duration property %q", property)
}

// evalFilter applies either 1-based indexing (numeric literal filters, with
// negative literals counting from the end) or a per-element predicate with
// the element bound to "item".
func (e *evaluator) evalFilter(n *ast.Node, ctx *Context) (any, error) {
	target, err := e.eval(n.Target, ctx)
	if err != nil {
		return nil, err
	}
	list, ok := target.([]any)
	if !ok {
		return nil, errors.Newf(errors.KindTypeError, n.Location,
			"cannot filter %s", kindOf(target))
	}

	if f, isNumber := literalNumber(n.FilterExpr); isNumber {
		idx := int(f)
		if float64(idx) != f {
			return nil, nil
		}
		if idx < 0 {
			idx = len(list) + idx + 1
		}
		if idx < 1 || idx > len(list) {
			return nil, nil
		}
		return list[idx-1], nil
	}

	out := []any{}
	for _, item := range list {
		v, err := e.eval(n.FilterExpr, ctx.bind(map[string]any{"item": item}))
		if err != nil {
			return nil, err
		}
		if Truthy(v) {
			out = append(out, item)
		}
	}
	return out, nil
}

// literalNumber recognizes numeric literal filters, including a leading
// minus.
func literalNumber(n *ast.Node) (float64, bool) {
	if n.Kind == ast.KindNumber {
		return n.Number, true
	}
	if n.Kind == ast.KindUnary && n.Operator == "-" && n.Left.Kind == ast.KindNumber {
		return -n.Left.Number, true
	}
	return 0, false
}

// lambda is a user-defined function value. It closes over the scope where it
// was defined; parameters shadow enclosing bindings.
type lambda struct {
	params []string
	body   *ast.Node
	ctx    *Context
	eval   *evaluator
}

func (l *lambda) Call(args []any) (any, error) {
	if len(args) != len(l.params) {
		return nil, errors.Newf(errors.KindInvalidArguments, l.body.Location,
			"function expects %d argument(s), got %d", len(l.params), len(args))
	}
	vars := make(map[string]any, len(l.params))
	for i, p := range l.params {
		vars[p] = args[i]
	}
	return l.eval.eval(l.body, l.ctx.bind(vars))
}

// withLocation stamps the call-site location onto registry errors, which
// carry none of their own.
func withLocation(loc ast.Location, v any, err error) (any, error) {
	if ferr, ok := err.(*errors.Error); ok && !ferr.Location.IsValid() {
		ferr.Location = loc
	}
	return v, err
}

// kindOf names a value's FEEL type for error messages.
func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case []any:
		return "list"
	case map[string]any:
		return "context"
	case *builtins.Range:
		return "range"
	case *builtins.Duration:
		return "duration"
	case time.Time:
		return "date"
	case builtins.Callable:
		return "function"
	}
	if _, ok := builtins.ToNumber(v); ok {
		return "number"
	}
	return fmt.Sprintf("%T", v)
}
