package builtins

import "fmt"

// Range is a FEEL interval value with per-endpoint inclusivity, produced by
// range literals such as [1..10) and consumed by the range builtins.
type Range struct {
	Lo          any
	Hi          any
	LoInclusive bool
	HiInclusive bool
}

// NewRange builds a range value.
func NewRange(lo, hi any, loInclusive, hiInclusive bool) *Range {
	return &Range{Lo: lo, Hi: hi, LoInclusive: loInclusive, HiInclusive: hiInclusive}
}

// String renders the range in FEEL notation.
func (r *Range) String() string {
	open, closed := "(", ")"
	if r.LoInclusive {
		open = "["
	}
	if r.HiInclusive {
		closed = "]"
	}
	return fmt.Sprintf("%s%s..%s%s", open, Stringify(r.Lo), Stringify(r.Hi), closed)
}

// Contains reports whether a point lies within the range.
func (r *Range) Contains(v any) (bool, error) {
	lo, err := rangeCmp("range", v, r.Lo)
	if err != nil {
		return false, err
	}
	if lo < 0 || (lo == 0 && !r.LoInclusive) {
		return false, nil
	}
	hi, err := rangeCmp("range", v, r.Hi)
	if err != nil {
		return false, err
	}
	if hi > 0 || (hi == 0 && !r.HiInclusive) {
		return false, nil
	}
	return true, nil
}

func registerRanges(r *Registry) {
	relations := map[string]func(a, b any) (bool, error){
		"before":        relBefore,
		"after":         func(a, b any) (bool, error) { return relBefore(b, a) },
		"meets":         relMeets,
		"met by":        func(a, b any) (bool, error) { return relMeets(b, a) },
		"overlaps":      relOverlaps,
		"overlapped by": func(a, b any) (bool, error) { return relOverlaps(b, a) },
		"finishes":      relFinishes,
		"finished by":   func(a, b any) (bool, error) { return relFinishes(b, a) },
		"includes":      relIncludes,
		"during":        func(a, b any) (bool, error) { return relIncludes(b, a) },
		"starts":        relStarts,
		"started by":    func(a, b any) (bool, error) { return relStarts(b, a) },
		"coincides":     relCoincides,
	}

	for name, rel := range relations {
		rel := rel
		r.Register(&Function{
			Name:    name,
			MinArgs: 2,
			MaxArgs: 2,
			Impl: func(_ *Env, args []any) (any, error) {
				return rel(args[0], args[1])
			},
		})
	}
}

func asRange(v any) (*Range, bool) {
	r, ok := v.(*Range)
	return r, ok
}

func rangeCmp(fn string, a, b any) (int, error) {
	c, ok := CompareValues(a, b)
	if !ok {
		return 0, invalidArgs(fn, "cannot compare %s and %s", describeValue(a), describeValue(b))
	}
	return c, nil
}

func relBefore(a, b any) (bool, error) {
	ra, aIsRange := asRange(a)
	rb, bIsRange := asRange(b)

	switch {
	case !aIsRange && !bIsRange:
		c, err := rangeCmp("before", a, b)
		return c < 0, err
	case !aIsRange && bIsRange:
		c, err := rangeCmp("before", a, rb.Lo)
		if err != nil {
			return false, err
		}
		return c < 0 || (c == 0 && !rb.LoInclusive), nil
	case aIsRange && !bIsRange:
		c, err := rangeCmp("before", ra.Hi, b)
		if err != nil {
			return false, err
		}
		return c < 0 || (c == 0 && !ra.HiInclusive), nil
	default:
		c, err := rangeCmp("before", ra.Hi, rb.Lo)
		if err != nil {
			return false, err
		}
		return c < 0 || (c == 0 && (!ra.HiInclusive || !rb.LoInclusive)), nil
	}
}

func relMeets(a, b any) (bool, error) {
	ra, aOK := asRange(a)
	rb, bOK := asRange(b)
	if !aOK || !bOK {
		return false, invalidArgs("meets", "expected two ranges")
	}
	if !ra.HiInclusive || !rb.LoInclusive {
		return false, nil
	}
	c, err := rangeCmp("meets", ra.Hi, rb.Lo)
	return c == 0, err
}

func relOverlaps(a, b any) (bool, error) {
	ra, aOK := asRange(a)
	rb, bOK := asRange(b)
	if !aOK || !bOK {
		return false, invalidArgs("overlaps", "expected two ranges")
	}

	hiLo, err := rangeCmp("overlaps", ra.Hi, rb.Lo)
	if err != nil {
		return false, err
	}
	if hiLo < 0 || (hiLo == 0 && !(ra.HiInclusive && rb.LoInclusive)) {
		return false, nil
	}
	loHi, err := rangeCmp("overlaps", ra.Lo, rb.Hi)
	if err != nil {
		return false, err
	}
	if loHi > 0 || (loHi == 0 && !(ra.LoInclusive && rb.HiInclusive)) {
		return false, nil
	}
	return true, nil
}

func relFinishes(a, b any) (bool, error) {
	rb, bOK := asRange(b)
	if !bOK {
		return false, invalidArgs("finishes", "second argument must be a range")
	}

	if ra, aOK := asRange(a); aOK {
		hi, err := rangeCmp("finishes", ra.Hi, rb.Hi)
		if err != nil {
			return false, err
		}
		if hi != 0 || ra.HiInclusive != rb.HiInclusive {
			return false, nil
		}
		lo, err := rangeCmp("finishes", ra.Lo, rb.Lo)
		if err != nil {
			return false, err
		}
		return lo > 0 || (lo == 0 && (!ra.LoInclusive || rb.LoInclusive)), nil
	}

	if !rb.HiInclusive {
		return false, nil
	}
	c, err := rangeCmp("finishes", a, rb.Hi)
	return c == 0, err
}

func relIncludes(a, b any) (bool, error) {
	ra, aOK := asRange(a)
	if !aOK {
		return false, invalidArgs("includes", "first argument must be a range")
	}

	if rb, bOK := asRange(b); bOK {
		lo, err := rangeCmp("includes", rb.Lo, ra.Lo)
		if err != nil {
			return false, err
		}
		if lo < 0 || (lo == 0 && rb.LoInclusive && !ra.LoInclusive) {
			return false, nil
		}
		hi, err := rangeCmp("includes", rb.Hi, ra.Hi)
		if err != nil {
			return false, err
		}
		if hi > 0 || (hi == 0 && rb.HiInclusive && !ra.HiInclusive) {
			return false, nil
		}
		return true, nil
	}

	return ra.Contains(b)
}

func relStarts(a, b any) (bool, error) {
	rb, bOK := asRange(b)
	if !bOK {
		return false, invalidArgs("starts", "second argument must be a range")
	}

	if ra, aOK := asRange(a); aOK {
		lo, err := rangeCmp("starts", ra.Lo, rb.Lo)
		if err != nil {
			return false, err
		}
		if lo != 0 || ra.LoInclusive != rb.LoInclusive {
			return false, nil
		}
		hi, err := rangeCmp("starts", ra.Hi, rb.Hi)
		if err != nil {
			return false, err
		}
		return hi < 0 || (hi == 0 && (!ra.HiInclusive || rb.HiInclusive)), nil
	}

	if !rb.LoInclusive {
		return false, nil
	}
	c, err := rangeCmp("starts", a, rb.Lo)
	return c == 0, err
}

func relCoincides(a, b any) (bool, error) {
	ra, aIsRange := asRange(a)
	rb, bIsRange := asRange(b)

	switch {
	case !aIsRange && !bIsRange:
		c, err := rangeCmp("coincides", a, b)
		return c == 0, err
	case aIsRange && bIsRange:
		lo, err := rangeCmp("coincides", ra.Lo, rb.Lo)
		if err != nil {
			return false, err
		}
		hi, err := rangeCmp("coincides", ra.Hi, rb.Hi)
		if err != nil {
			return false, err
		}
		return lo == 0 && hi == 0 &&
			ra.LoInclusive == rb.LoInclusive && ra.HiInclusive == rb.HiInclusive, nil
	default:
		return false, invalidArgs("coincides", "arguments must both be points or both be ranges")
	}
}
