package eval

import (
	"time"

	"tabular-hq/verdict/pkg/feel/builtins"
)

// Context carries everything an evaluation can see: variables, the builtin
// function registry, and an optional pinned clock. Nested scopes (for loops,
// quantifiers, lambda parameters) chain to their parent; inner bindings
// shadow outer ones.
type Context struct {
	Variables map[string]any
	Functions *builtins.Registry

	// Now overrides the evaluation clock for now() and today(); nil means
	// wall-clock time.
	Now func() time.Time

	parent *Context
}

// NewContext builds a root evaluation context over the given variables,
// wired to the default builtin registry. A nil map is allowed.
func NewContext(vars map[string]any) *Context {
	if vars == nil {
		vars = make(map[string]any)
	}
	return &Context{
		Variables: vars,
		Functions: builtins.Default(),
	}
}

// Lookup resolves a variable, walking from the innermost scope outward.
func (c *Context) Lookup(name string) (any, bool) {
	for scope := c; scope != nil; scope = scope.parent {
		if v, ok := scope.Variables[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// bind creates a child scope holding the given bindings. The parent is never
// mutated, so closures keep seeing their captured values.
func (c *Context) bind(vars map[string]any) *Context {
	return &Context{
		Variables: vars,
		Functions: c.Functions,
		Now:       c.Now,
		parent:    c,
	}
}

func (c *Context) registry() *builtins.Registry {
	if c.Functions != nil {
		return c.Functions
	}
	return builtins.Default()
}
