package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind discriminates the variants of a Node. The evaluator dispatches on it
// with a single switch; no polymorphic node hierarchy exists.
type Kind string

const (
	KindNumber     Kind = "number"     // Numeric literal
	KindString     Kind = "string"     // String literal
	KindBoolean    Kind = "boolean"    // true / false
	KindNull       Kind = "null"       // null literal (also error placeholder)
	KindIdentifier Kind = "identifier" // Variable reference
	KindUnary      Kind = "unary"      // -x, not x
	KindBinary     Kind = "binary"     // Arithmetic, comparison, and/or, in
	KindBetween    Kind = "between"    // x between lo and hi
	KindIf         Kind = "if"         // if c then a else b
	KindFor        Kind = "for"        // for x in list return expr
	KindQuantified Kind = "quantified" // some/every x in list satisfies expr
	KindList       Kind = "list"       // [a, b, c]
	KindContext    Kind = "context"    // {k: v, ...}
	KindRange      Kind = "range"      // [lo..hi], (lo..hi), ...
	KindCall       Kind = "call"       // f(args...)
	KindPath       Kind = "path"       // target.property
	KindFilter     Kind = "filter"     // list[expr]
	KindFunction   Kind = "function"   // function(params) body
)

// Node is the single tagged-sum AST node. Which payload fields are meaningful
// depends on Kind; everything else is zero. Nodes are immutable after the
// parser returns them.
type Node struct {
	Kind     Kind
	Location Location

	// Literal payloads
	Number  float64 // KindNumber
	Text    string  // KindString value, KindIdentifier name
	Boolean bool    // KindBoolean

	Operator   string   // KindBinary / KindUnary operator lexeme
	Quantifier string   // KindQuantified: "some" or "every"
	Var        string   // KindFor / KindQuantified bound variable name
	Params     []string // KindFunction parameter names
	Property   string   // KindPath property name

	Left  *Node // KindBinary left, KindUnary operand, KindBetween subject
	Right *Node // KindBinary right
	Lo    *Node // KindBetween / KindRange lower bound
	Hi    *Node // KindBetween / KindRange upper bound

	Condition *Node // KindIf condition
	Then      *Node // KindIf then-branch
	Else      *Node // KindIf else-branch

	Source *Node // KindFor / KindQuantified iterable
	Body   *Node // KindFor return, KindQuantified satisfies, KindFunction body

	Target     *Node // KindCall callee, KindPath subject, KindFilter subject
	FilterExpr *Node // KindFilter predicate or index expression

	Children []*Node         // KindList elements, KindCall arguments
	Entries  []*ContextEntry // KindContext entries (declaration order)

	LoInclusive bool // KindRange lower bound closed
	HiInclusive bool // KindRange upper bound closed
}

// ContextEntry is one key-value pair of a context literal. Entry order is
// the declaration order.
type ContextEntry struct {
	Key      string
	Value    *Node
	Location Location
}

// IsLiteral returns true for the four literal variants.
func (n *Node) IsLiteral() bool {
	switch n.Kind {
	case KindNumber, KindString, KindBoolean, KindNull:
		return true
	}
	return false
}

// NewNull returns a null literal at the given location. The parser also uses
// it as the placeholder for fragments it could not parse.
func NewNull(loc Location) *Node {
	return &Node{Kind: KindNull, Location: loc}
}

// String renders the node as approximate FEEL source, for diagnostics.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	switch n.Kind {
	case KindNumber:
		return strconv.FormatFloat(n.Number, 'f', -1, 64)
	case KindString:
		return strconv.Quote(n.Text)
	case KindBoolean:
		return strconv.FormatBool(n.Boolean)
	case KindNull:
		return "null"
	case KindIdentifier:
		return n.Text
	case KindUnary:
		if n.Operator == "not" {
			return "not " + n.Left.String()
		}
		return n.Operator + n.Left.String()
	case KindBinary:
		return fmt.Sprintf("(%s %s %s)", n.Left, n.Operator, n.Right)
	case KindBetween:
		return fmt.Sprintf("(%s between %s and %s)", n.Left, n.Lo, n.Hi)
	case KindIf:
		return fmt.Sprintf("if %s then %s else %s", n.Condition, n.Then, n.Else)
	case KindFor:
		return fmt.Sprintf("for %s in %s return %s", n.Var, n.Source, n.Body)
	case KindQuantified:
		return fmt.Sprintf("%s %s in %s satisfies %s", n.Quantifier, n.Var, n.Source, n.Body)
	case KindList:
		parts := make([]string, len(n.Children))
		for i, c := range n.Children {
			parts[i] = c.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindContext:
		parts := make([]string, len(n.Entries))
		for i, e := range n.Entries {
			parts[i] = e.Key + ": " + e.Value.String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindRange:
		lo, hi := "(", ")"
		if n.LoInclusive {
			lo = "["
		}
		if n.HiInclusive {
			hi = "]"
		}
		return fmt.Sprintf("%s%s..%s%s", lo, n.Lo, n.Hi, hi)
	case KindCall:
		parts := make([]string, len(n.Children))
		for i, c := range n.Children {
			parts[i] = c.String()
		}
		return fmt.Sprintf("%s(%s)", n.Target, strings.Join(parts, ", "))
	case KindPath:
		return n.Target.String() + "." + n.Property
	case KindFilter:
		return fmt.Sprintf("%s[%s]", n.Target, n.FilterExpr)
	case KindFunction:
		return fmt.Sprintf("function(%s) %s", strings.Join(n.Params, ", "), n.Body)
	}
	return string(n.Kind)
}
