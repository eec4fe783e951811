package builtins

import (
	"math"

	"tabular-hq/verdict/pkg/feel/ast"
	"tabular-hq/verdict/pkg/feel/errors"
)

func registerNumeric(r *Registry) {
	r.Register(&Function{Name: "abs", MinArgs: 1, MaxArgs: 1, Impl: unaryNumeric("abs", math.Abs)})
	r.Register(&Function{Name: "ceiling", MinArgs: 1, MaxArgs: 1, Impl: unaryNumeric("ceiling", math.Ceil)})
	r.Register(&Function{Name: "floor", MinArgs: 1, MaxArgs: 1, Impl: unaryNumeric("floor", math.Floor)})
	r.Register(&Function{Name: "integer", MinArgs: 1, MaxArgs: 1, Impl: unaryNumeric("integer", math.Trunc)})
	r.Register(&Function{Name: "modulo", MinArgs: 2, MaxArgs: 2, Impl: builtinModulo})
	r.Register(&Function{Name: "power", MinArgs: 2, MaxArgs: 2, Impl: builtinPower})
	r.Register(&Function{Name: "round", MinArgs: 1, MaxArgs: 2, Impl: builtinRound})
	r.Register(&Function{Name: "sqrt", MinArgs: 1, MaxArgs: 1, Impl: builtinSqrt})
	r.Register(&Function{Name: "number", MinArgs: 1, MaxArgs: 1, Impl: builtinNumber})
	r.Register(&Function{Name: "decimal", MinArgs: 2, MaxArgs: 2, Impl: builtinDecimal})
}

func unaryNumeric(name string, f func(float64) float64) Impl {
	return func(_ *Env, args []any) (any, error) {
		n, ok := ToNumber(args[0])
		if !ok {
			return nil, invalidArgs(name, "expected a number, got %s", describeValue(args[0]))
		}
		return f(n), nil
	}
}

// builtinModulo follows the FEEL contract: the result takes the sign of the
// divisor. modulo(-12, 5) is 3; modulo(12, -5) is -3.
func builtinModulo(_ *Env, args []any) (any, error) {
	dividend, ok := ToNumber(args[0])
	if !ok {
		return nil, invalidArgs("modulo", "expected a number, got %s", describeValue(args[0]))
	}
	divisor, ok := ToNumber(args[1])
	if !ok {
		return nil, invalidArgs("modulo", "expected a number, got %s", describeValue(args[1]))
	}
	if divisor == 0 {
		return nil, errors.New(errors.KindDivisionByZero, "modulo: divisor is zero", ast.Location{})
	}
	return dividend - divisor*math.Floor(dividend/divisor), nil
}

func builtinPower(_ *Env, args []any) (any, error) {
	base, ok := ToNumber(args[0])
	if !ok {
		return nil, invalidArgs("power", "expected a number, got %s", describeValue(args[0]))
	}
	exp, ok := ToNumber(args[1])
	if !ok {
		return nil, invalidArgs("power", "expected a number, got %s", describeValue(args[1]))
	}
	return math.Pow(base, exp), nil
}

// builtinRound rounds half away from zero, optionally to a decimal scale.
func builtinRound(_ *Env, args []any) (any, error) {
	n, ok := ToNumber(args[0])
	if !ok {
		return nil, invalidArgs("round", "expected a number, got %s", describeValue(args[0]))
	}
	scale := 0.0
	if len(args) == 2 {
		scale, ok = ToNumber(args[1])
		if !ok {
			return nil, invalidArgs("round", "expected a numeric scale, got %s", describeValue(args[1]))
		}
	}
	shift := math.Pow(10, math.Trunc(scale))
	return math.Round(n*shift) / shift, nil
}

func builtinSqrt(_ *Env, args []any) (any, error) {
	n, ok := ToNumber(args[0])
	if !ok {
		return nil, invalidArgs("sqrt", "expected a number, got %s", describeValue(args[0]))
	}
	if n < 0 {
		return nil, invalidArgs("sqrt", "negative argument %v", n)
	}
	return math.Sqrt(n), nil
}

func builtinNumber(_ *Env, args []any) (any, error) {
	switch v := args[0].(type) {
	case string:
		f, ok := ParseNumber(v)
		if !ok {
			return nil, invalidArgs("number", "cannot parse %q as a number", v)
		}
		return f, nil
	default:
		if f, ok := ToNumber(v); ok {
			return f, nil
		}
		return nil, invalidArgs("number", "expected a string or number, got %s", describeValue(v))
	}
}

// builtinDecimal truncates toward zero at the given scale.
func builtinDecimal(_ *Env, args []any) (any, error) {
	n, ok := ToNumber(args[0])
	if !ok {
		return nil, invalidArgs("decimal", "expected a number, got %s", describeValue(args[0]))
	}
	scale, ok := ToNumber(args[1])
	if !ok {
		return nil, invalidArgs("decimal", "expected a numeric scale, got %s", describeValue(args[1]))
	}
	shift := math.Pow(10, math.Trunc(scale))
	return math.Trunc(n*shift) / shift, nil
}
