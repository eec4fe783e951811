package builtins

import "sort"

func registerContexts(r *Registry) {
	r.Register(&Function{Name: "get entries", MinArgs: 1, MaxArgs: 1, Impl: builtinGetEntries})
	r.Register(&Function{Name: "get value", MinArgs: 2, MaxArgs: 2, Impl: builtinGetValue})
	r.Register(&Function{Name: "context put", MinArgs: 3, MaxArgs: 3, Impl: builtinContextPut})
	r.Register(&Function{Name: "context merge", MinArgs: 1, MaxArgs: -1, Impl: builtinContextMerge})
}

func argContext(fn string, v any) (map[string]any, error) {
	ctx, ok := v.(map[string]any)
	if !ok {
		return nil, invalidArgs(fn, "expected a context, got %s", describeValue(v))
	}
	return ctx, nil
}

// builtinGetEntries returns the context as a list of {key, value} contexts,
// sorted by key for deterministic order.
func builtinGetEntries(_ *Env, args []any) (any, error) {
	ctx, err := argContext("get entries", args[0])
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]any, len(keys))
	for i, k := range keys {
		entries[i] = map[string]any{"key": k, "value": ctx[k]}
	}
	return entries, nil
}

func builtinGetValue(_ *Env, args []any) (any, error) {
	ctx, err := argContext("get value", args[0])
	if err != nil {
		return nil, err
	}
	key, err := argString("get value", args[1])
	if err != nil {
		return nil, err
	}
	return ctx[key], nil
}

// builtinContextPut returns a copy with one entry added or replaced; the
// original context is never mutated.
func builtinContextPut(_ *Env, args []any) (any, error) {
	ctx, err := argContext("context put", args[0])
	if err != nil {
		return nil, err
	}
	key, err := argString("context put", args[1])
	if err != nil {
		return nil, err
	}

	out := make(map[string]any, len(ctx)+1)
	for k, v := range ctx {
		out[k] = v
	}
	out[key] = args[2]
	return out, nil
}

// builtinContextMerge merges contexts left to right, later entries winning.
// It accepts either a single list of contexts or the contexts variadically.
func builtinContextMerge(_ *Env, args []any) (any, error) {
	items := args
	if len(args) == 1 {
		if list, ok := AsList(args[0]); ok {
			items = list
		}
	}

	out := make(map[string]any)
	for _, item := range items {
		ctx, err := argContext("context merge", item)
		if err != nil {
			return nil, err
		}
		for k, v := range ctx {
			out[k] = v
		}
	}
	return out, nil
}
