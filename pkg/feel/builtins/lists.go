package builtins

import (
	"math"
	"sort"
	"strings"
)

func registerLists(r *Registry) {
	r.Register(&Function{Name: "list contains", MinArgs: 2, MaxArgs: 2, Impl: builtinListContains})
	r.Register(&Function{Name: "count", MinArgs: 0, MaxArgs: -1, Impl: builtinCount})
	r.Register(&Function{Name: "min", MinArgs: 1, MaxArgs: -1, Impl: builtinMin})
	r.Register(&Function{Name: "max", MinArgs: 1, MaxArgs: -1, Impl: builtinMax})
	r.Register(&Function{Name: "sum", MinArgs: 1, MaxArgs: -1, Impl: builtinSum})
	r.Register(&Function{Name: "product", MinArgs: 1, MaxArgs: -1, Impl: builtinProduct})
	r.Register(&Function{Name: "mean", MinArgs: 1, MaxArgs: -1, Impl: builtinMean})
	r.Register(&Function{Name: "median", MinArgs: 1, MaxArgs: -1, Impl: builtinMedian})
	r.Register(&Function{Name: "stddev", MinArgs: 1, MaxArgs: -1, Impl: builtinStddev})
	r.Register(&Function{Name: "mode", MinArgs: 1, MaxArgs: -1, Impl: builtinMode})
	r.Register(&Function{Name: "and", MinArgs: 1, MaxArgs: -1, Impl: builtinAll})
	r.Register(&Function{Name: "or", MinArgs: 1, MaxArgs: -1, Impl: builtinAny})
	r.Register(&Function{Name: "all", MinArgs: 1, MaxArgs: -1, Impl: builtinAll})
	r.Register(&Function{Name: "any", MinArgs: 1, MaxArgs: -1, Impl: builtinAny})
	r.Register(&Function{Name: "sublist", MinArgs: 2, MaxArgs: 3, Impl: builtinSublist})
	r.Register(&Function{Name: "append", MinArgs: 1, MaxArgs: -1, Impl: builtinAppend})
	r.Register(&Function{Name: "concatenate", MinArgs: 1, MaxArgs: -1, Impl: builtinConcatenate})
	r.Register(&Function{Name: "insert before", MinArgs: 3, MaxArgs: 3, Impl: builtinInsertBefore})
	r.Register(&Function{Name: "remove", MinArgs: 2, MaxArgs: 2, Impl: builtinRemove})
	r.Register(&Function{Name: "reverse", MinArgs: 1, MaxArgs: 1, Impl: builtinReverse})
	r.Register(&Function{Name: "index of", MinArgs: 2, MaxArgs: 2, Impl: builtinIndexOf})
	r.Register(&Function{Name: "union", MinArgs: 1, MaxArgs: -1, Impl: builtinUnion})
	r.Register(&Function{Name: "distinct values", MinArgs: 1, MaxArgs: 1, Impl: builtinDistinctValues})
	r.Register(&Function{Name: "flatten", MinArgs: 1, MaxArgs: 1, Impl: builtinFlatten})
	r.Register(&Function{Name: "sort", MinArgs: 1, MaxArgs: 2, Impl: builtinSort})
	r.Register(&Function{Name: "join", MinArgs: 1, MaxArgs: 2, Impl: builtinJoin})
}

func argList(fn string, v any) ([]any, error) {
	list, ok := AsList(v)
	if !ok {
		return nil, invalidArgs(fn, "expected a list, got %s", describeValue(v))
	}
	return list, nil
}

// numbersOf extracts the numeric members of a list, reporting an error if a
// non-numeric, non-null member is present.
func numbersOf(fn string, list []any) ([]float64, error) {
	out := make([]float64, 0, len(list))
	for _, v := range list {
		if v == nil {
			continue
		}
		n, ok := ToNumber(v)
		if !ok {
			return nil, invalidArgs(fn, "expected numbers, got %s", describeValue(v))
		}
		out = append(out, n)
	}
	return out, nil
}

func builtinListContains(_ *Env, args []any) (any, error) {
	list, err := argList("list contains", args[0])
	if err != nil {
		return nil, err
	}
	for _, v := range list {
		if ValuesEqual(v, args[1]) {
			return true, nil
		}
	}
	return false, nil
}

func builtinCount(_ *Env, args []any) (any, error) {
	return float64(len(numericArgsToList(args))), nil
}

func builtinMin(_ *Env, args []any) (any, error) {
	return extremum("min", numericArgsToList(args), -1)
}

func builtinMax(_ *Env, args []any) (any, error) {
	return extremum("max", numericArgsToList(args), 1)
}

// extremum picks the minimum (direction -1) or maximum (direction 1) of a
// list of mutually comparable values.
func extremum(fn string, list []any, direction int) (any, error) {
	var best any
	for _, v := range list {
		if v == nil {
			continue
		}
		if n, ok := ToNumber(v); ok && math.IsNaN(n) {
			continue
		}
		if best == nil {
			best = v
			continue
		}
		cmp, ok := CompareValues(v, best)
		if !ok {
			return nil, invalidArgs(fn, "values are not comparable: %s and %s",
				describeValue(v), describeValue(best))
		}
		if cmp*direction > 0 {
			best = v
		}
	}
	return best, nil
}

func builtinSum(_ *Env, args []any) (any, error) {
	nums, err := numbersOf("sum", numericArgsToList(args))
	if err != nil {
		return nil, err
	}
	if len(nums) == 0 {
		return nil, nil
	}
	total := 0.0
	for _, n := range nums {
		total += n
	}
	return total, nil
}

func builtinProduct(_ *Env, args []any) (any, error) {
	nums, err := numbersOf("product", numericArgsToList(args))
	if err != nil {
		return nil, err
	}
	if len(nums) == 0 {
		return nil, nil
	}
	total := 1.0
	for _, n := range nums {
		total *= n
	}
	return total, nil
}

func builtinMean(_ *Env, args []any) (any, error) {
	nums, err := numbersOf("mean", numericArgsToList(args))
	if err != nil {
		return nil, err
	}
	if len(nums) == 0 {
		return nil, nil
	}
	total := 0.0
	for _, n := range nums {
		total += n
	}
	return total / float64(len(nums)), nil
}

func builtinMedian(_ *Env, args []any) (any, error) {
	nums, err := numbersOf("median", numericArgsToList(args))
	if err != nil {
		return nil, err
	}
	if len(nums) == 0 {
		return nil, nil
	}
	sort.Float64s(nums)
	mid := len(nums) / 2
	if len(nums)%2 == 1 {
		return nums[mid], nil
	}
	return (nums[mid-1] + nums[mid]) / 2, nil
}

// builtinStddev computes the population standard deviation.
func builtinStddev(_ *Env, args []any) (any, error) {
	nums, err := numbersOf("stddev", numericArgsToList(args))
	if err != nil {
		return nil, err
	}
	if len(nums) == 0 {
		return nil, nil
	}
	mean := 0.0
	for _, n := range nums {
		mean += n
	}
	mean /= float64(len(nums))

	variance := 0.0
	for _, n := range nums {
		variance += (n - mean) * (n - mean)
	}
	variance /= float64(len(nums))
	return math.Sqrt(variance), nil
}

// builtinMode returns the most frequent values; ties produce multiple
// entries, sorted ascending.
func builtinMode(_ *Env, args []any) (any, error) {
	nums, err := numbersOf("mode", numericArgsToList(args))
	if err != nil {
		return nil, err
	}
	if len(nums) == 0 {
		return []any{}, nil
	}

	counts := make(map[float64]int)
	best := 0
	for _, n := range nums {
		counts[n]++
		if counts[n] > best {
			best = counts[n]
		}
	}

	var modes []float64
	for n, c := range counts {
		if c == best {
			modes = append(modes, n)
		}
	}
	sort.Float64s(modes)

	out := make([]any, len(modes))
	for i, n := range modes {
		out[i] = n
	}
	return out, nil
}

func boolListOf(fn string, args []any) ([]bool, error) {
	list := numericArgsToList(args)
	out := make([]bool, 0, len(list))
	for _, v := range list {
		b, ok := v.(bool)
		if !ok {
			return nil, invalidArgs(fn, "expected booleans, got %s", describeValue(v))
		}
		out = append(out, b)
	}
	return out, nil
}

func builtinAll(_ *Env, args []any) (any, error) {
	bools, err := boolListOf("and", args)
	if err != nil {
		return nil, err
	}
	for _, b := range bools {
		if !b {
			return false, nil
		}
	}
	return true, nil
}

func builtinAny(_ *Env, args []any) (any, error) {
	bools, err := boolListOf("or", args)
	if err != nil {
		return nil, err
	}
	for _, b := range bools {
		if b {
			return true, nil
		}
	}
	return false, nil
}

// builtinSublist is 1-based; negative start counts from the end.
func builtinSublist(_ *Env, args []any) (any, error) {
	list, err := argList("sublist", args[0])
	if err != nil {
		return nil, err
	}
	startF, ok := ToNumber(args[1])
	if !ok {
		return nil, invalidArgs("sublist", "expected a numeric start, got %s", describeValue(args[1]))
	}

	start := int(startF)
	switch {
	case start > 0:
		start--
	case start < 0:
		start = len(list) + start
	default:
		return nil, invalidArgs("sublist", "start position is 1-based, got 0")
	}
	if start < 0 || start >= len(list) {
		return []any{}, nil
	}

	end := len(list)
	if len(args) == 3 {
		lengthF, ok := ToNumber(args[2])
		if !ok {
			return nil, invalidArgs("sublist", "expected a numeric length, got %s", describeValue(args[2]))
		}
		if lengthF < 0 {
			return []any{}, nil
		}
		if e := start + int(lengthF); e < end {
			end = e
		}
	}

	out := make([]any, end-start)
	copy(out, list[start:end])
	return out, nil
}

func builtinAppend(_ *Env, args []any) (any, error) {
	list, err := argList("append", args[0])
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, len(list)+len(args)-1)
	out = append(out, list...)
	out = append(out, args[1:]...)
	return out, nil
}

func builtinConcatenate(_ *Env, args []any) (any, error) {
	var out []any
	for _, arg := range args {
		list, err := argList("concatenate", arg)
		if err != nil {
			return nil, err
		}
		out = append(out, list...)
	}
	if out == nil {
		out = []any{}
	}
	return out, nil
}

func builtinInsertBefore(_ *Env, args []any) (any, error) {
	list, err := argList("insert before", args[0])
	if err != nil {
		return nil, err
	}
	posF, ok := ToNumber(args[1])
	if !ok {
		return nil, invalidArgs("insert before", "expected a numeric position, got %s", describeValue(args[1]))
	}
	pos := int(posF)
	if pos < 1 || pos > len(list)+1 {
		return nil, invalidArgs("insert before", "position %d out of range 1..%d", pos, len(list)+1)
	}

	out := make([]any, 0, len(list)+1)
	out = append(out, list[:pos-1]...)
	out = append(out, args[2])
	out = append(out, list[pos-1:]...)
	return out, nil
}

func builtinRemove(_ *Env, args []any) (any, error) {
	list, err := argList("remove", args[0])
	if err != nil {
		return nil, err
	}
	posF, ok := ToNumber(args[1])
	if !ok {
		return nil, invalidArgs("remove", "expected a numeric position, got %s", describeValue(args[1]))
	}
	pos := int(posF)
	if pos < 1 || pos > len(list) {
		return nil, invalidArgs("remove", "position %d out of range 1..%d", pos, len(list))
	}

	out := make([]any, 0, len(list)-1)
	out = append(out, list[:pos-1]...)
	out = append(out, list[pos:]...)
	return out, nil
}

func builtinReverse(_ *Env, args []any) (any, error) {
	list, err := argList("reverse", args[0])
	if err != nil {
		return nil, err
	}
	out := make([]any, len(list))
	for i, v := range list {
		out[len(list)-1-i] = v
	}
	return out, nil
}

// builtinIndexOf returns every 1-based position at which the match occurs.
func builtinIndexOf(_ *Env, args []any) (any, error) {
	list, err := argList("index of", args[0])
	if err != nil {
		return nil, err
	}
	positions := []any{}
	for i, v := range list {
		if ValuesEqual(v, args[1]) {
			positions = append(positions, float64(i+1))
		}
	}
	return positions, nil
}

func builtinUnion(_ *Env, args []any) (any, error) {
	out := []any{}
	for _, arg := range args {
		list, err := argList("union", arg)
		if err != nil {
			return nil, err
		}
		for _, v := range list {
			if !containsValue(out, v) {
				out = append(out, v)
			}
		}
	}
	return out, nil
}

func builtinDistinctValues(_ *Env, args []any) (any, error) {
	list, err := argList("distinct values", args[0])
	if err != nil {
		return nil, err
	}
	out := []any{}
	for _, v := range list {
		if !containsValue(out, v) {
			out = append(out, v)
		}
	}
	return out, nil
}

func containsValue(list []any, v any) bool {
	for _, member := range list {
		if ValuesEqual(member, v) {
			return true
		}
	}
	return false
}

func builtinFlatten(_ *Env, args []any) (any, error) {
	list, err := argList("flatten", args[0])
	if err != nil {
		return nil, err
	}
	out := []any{}
	var walk func([]any)
	walk = func(items []any) {
		for _, v := range items {
			if nested, ok := AsList(v); ok {
				walk(nested)
				continue
			}
			out = append(out, v)
		}
	}
	walk(list)
	return out, nil
}

// builtinSort sorts a copy of the list. With a comparator lambda the lambda
// decides precedence (precedes(a, b) true means a sorts first); without one,
// numbers order numerically before everything else, then strings
// lexicographically.
func builtinSort(_ *Env, args []any) (any, error) {
	list, err := argList("sort", args[0])
	if err != nil {
		return nil, err
	}
	out := make([]any, len(list))
	copy(out, list)

	if len(args) == 2 {
		precedes, ok := args[1].(Callable)
		if !ok {
			return nil, invalidArgs("sort", "expected a comparator function, got %s", describeValue(args[1]))
		}
		var callErr error
		sort.SliceStable(out, func(i, j int) bool {
			if callErr != nil {
				return false
			}
			res, err := precedes.Call([]any{out[i], out[j]})
			if err != nil {
				callErr = err
				return false
			}
			b, _ := res.(bool)
			return b
		})
		if callErr != nil {
			return nil, callErr
		}
		return out, nil
	}

	sort.SliceStable(out, func(i, j int) bool {
		return defaultLess(out[i], out[j])
	})
	return out, nil
}

func defaultLess(a, b any) bool {
	if cmp, ok := CompareValues(a, b); ok {
		return cmp < 0
	}
	na, aNum := ToNumber(a)
	nb, bNum := ToNumber(b)
	switch {
	case aNum && !bNum:
		return true
	case !aNum && bNum:
		return false
	case aNum && bNum:
		return na < nb
	}
	return Stringify(a) < Stringify(b)
}

func builtinJoin(_ *Env, args []any) (any, error) {
	list, err := argList("join", args[0])
	if err != nil {
		return nil, err
	}
	delimiter := ""
	if len(args) == 2 {
		if delimiter, err = argString("join", args[1]); err != nil {
			return nil, err
		}
	}

	parts := make([]string, 0, len(list))
	for _, v := range list {
		if v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return nil, invalidArgs("join", "expected strings, got %s", describeValue(v))
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, delimiter), nil
}
