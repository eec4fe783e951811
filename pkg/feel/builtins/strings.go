package builtins

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

func registerStrings(r *Registry) {
	r.Register(&Function{Name: "substring", MinArgs: 2, MaxArgs: 3, Impl: builtinSubstring})
	r.Register(&Function{Name: "string length", MinArgs: 1, MaxArgs: 1, Impl: builtinStringLength})
	r.Register(&Function{Name: "upper case", MinArgs: 1, MaxArgs: 1, Impl: unaryString("upper case", strings.ToUpper)})
	r.Register(&Function{Name: "lower case", MinArgs: 1, MaxArgs: 1, Impl: unaryString("lower case", strings.ToLower)})
	r.Register(&Function{Name: "substring before", MinArgs: 2, MaxArgs: 2, Impl: builtinSubstringBefore})
	r.Register(&Function{Name: "substring after", MinArgs: 2, MaxArgs: 2, Impl: builtinSubstringAfter})
	r.Register(&Function{Name: "replace", MinArgs: 3, MaxArgs: 4, Impl: builtinReplace})
	r.Register(&Function{Name: "contains", MinArgs: 2, MaxArgs: 2, Impl: binaryString("contains", strings.Contains)})
	r.Register(&Function{Name: "starts with", MinArgs: 2, MaxArgs: 2, Impl: binaryString("starts with", strings.HasPrefix)})
	r.Register(&Function{Name: "ends with", MinArgs: 2, MaxArgs: 2, Impl: binaryString("ends with", strings.HasSuffix)})
	r.Register(&Function{Name: "matches", MinArgs: 2, MaxArgs: 3, Impl: builtinMatches})
	r.Register(&Function{Name: "split", MinArgs: 2, MaxArgs: 2, Impl: builtinSplit})
	r.Register(&Function{Name: "concat", MinArgs: 1, MaxArgs: -1, Impl: builtinConcat})
}

func argString(fn string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", invalidArgs(fn, "expected a string, got %s", describeValue(v))
	}
	return s, nil
}

func unaryString(name string, f func(string) string) Impl {
	return func(_ *Env, args []any) (any, error) {
		s, err := argString(name, args[0])
		if err != nil {
			return nil, err
		}
		return f(s), nil
	}
}

func binaryString(name string, f func(string, string) bool) Impl {
	return func(_ *Env, args []any) (any, error) {
		s, err := argString(name, args[0])
		if err != nil {
			return nil, err
		}
		sub, err := argString(name, args[1])
		if err != nil {
			return nil, err
		}
		return f(s, sub), nil
	}
}

// builtinSubstring is 1-based; a negative start counts from the end of the
// string. Positions are rune positions, not byte positions.
func builtinSubstring(_ *Env, args []any) (any, error) {
	s, err := argString("substring", args[0])
	if err != nil {
		return nil, err
	}
	startF, ok := ToNumber(args[1])
	if !ok {
		return nil, invalidArgs("substring", "expected a numeric start, got %s", describeValue(args[1]))
	}

	runes := []rune(s)
	start := int(startF)
	switch {
	case start > 0:
		start-- // 1-based to 0-based
	case start < 0:
		start = len(runes) + start
	default:
		return nil, invalidArgs("substring", "start position is 1-based, got 0")
	}
	if start < 0 || start >= len(runes) {
		return "", nil
	}

	end := len(runes)
	if len(args) == 3 {
		lengthF, ok := ToNumber(args[2])
		if !ok {
			return nil, invalidArgs("substring", "expected a numeric length, got %s", describeValue(args[2]))
		}
		if lengthF < 0 {
			return "", nil
		}
		if e := start + int(lengthF); e < end {
			end = e
		}
	}
	return string(runes[start:end]), nil
}

func builtinStringLength(_ *Env, args []any) (any, error) {
	s, err := argString("string length", args[0])
	if err != nil {
		return nil, err
	}
	return float64(utf8.RuneCountInString(s)), nil
}

func builtinSubstringBefore(_ *Env, args []any) (any, error) {
	s, err := argString("substring before", args[0])
	if err != nil {
		return nil, err
	}
	match, err := argString("substring before", args[1])
	if err != nil {
		return nil, err
	}
	idx := strings.Index(s, match)
	if idx < 0 {
		return "", nil
	}
	return s[:idx], nil
}

func builtinSubstringAfter(_ *Env, args []any) (any, error) {
	s, err := argString("substring after", args[0])
	if err != nil {
		return nil, err
	}
	match, err := argString("substring after", args[1])
	if err != nil {
		return nil, err
	}
	idx := strings.Index(s, match)
	if idx < 0 {
		return "", nil
	}
	return s[idx+len(match):], nil
}

// builtinReplace is regex-based per FEEL; the optional fourth argument holds
// flags ("i" case-insensitive, "s" dot-matches-newline, "m" multiline).
func builtinReplace(_ *Env, args []any) (any, error) {
	input, err := argString("replace", args[0])
	if err != nil {
		return nil, err
	}
	pattern, err := argString("replace", args[1])
	if err != nil {
		return nil, err
	}
	replacement, err := argString("replace", args[2])
	if err != nil {
		return nil, err
	}
	flags := ""
	if len(args) == 4 {
		if flags, err = argString("replace", args[3]); err != nil {
			return nil, err
		}
	}

	re, err := compileWithFlags(pattern, flags)
	if err != nil {
		return nil, invalidArgs("replace", "invalid pattern %q: %v", pattern, err)
	}
	return re.ReplaceAllString(input, replacement), nil
}

func builtinMatches(_ *Env, args []any) (any, error) {
	input, err := argString("matches", args[0])
	if err != nil {
		return nil, err
	}
	pattern, err := argString("matches", args[1])
	if err != nil {
		return nil, err
	}
	flags := ""
	if len(args) == 3 {
		if flags, err = argString("matches", args[2]); err != nil {
			return nil, err
		}
	}

	re, err := compileWithFlags(pattern, flags)
	if err != nil {
		return nil, invalidArgs("matches", "invalid pattern %q: %v", pattern, err)
	}
	return re.MatchString(input), nil
}

func compileWithFlags(pattern, flags string) (*regexp.Regexp, error) {
	if flags != "" {
		pattern = "(?" + flags + ")" + pattern
	}
	return regexp.Compile(pattern)
}

// builtinSplit uses a regex delimiter per FEEL.
func builtinSplit(_ *Env, args []any) (any, error) {
	s, err := argString("split", args[0])
	if err != nil {
		return nil, err
	}
	delimiter, err := argString("split", args[1])
	if err != nil {
		return nil, err
	}

	re, err := regexp.Compile(delimiter)
	if err != nil {
		return nil, invalidArgs("split", "invalid delimiter pattern %q: %v", delimiter, err)
	}
	parts := re.Split(s, -1)
	out := make([]any, len(parts))
	for i, p := range parts {
		out[i] = p
	}
	return out, nil
}

// builtinConcat joins its arguments as strings; nulls are skipped.
func builtinConcat(_ *Env, args []any) (any, error) {
	var sb strings.Builder
	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			continue
		case string:
			sb.WriteString(v)
		default:
			if n, ok := ToNumber(v); ok {
				sb.WriteString(FormatNumber(n))
				continue
			}
			return nil, invalidArgs("concat", "expected strings, got %s", describeValue(arg))
		}
	}
	return sb.String(), nil
}
