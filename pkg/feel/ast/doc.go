// Package ast defines the syntax tree for FEEL expressions.
//
// The tree is a tagged sum: every node is the same Node struct, and the Kind
// field says which of its payload fields carry meaning. A number literal uses
// Number, a binary expression uses Operator/Left/Right, a context literal
// uses Entries, and so on. The evaluator dispatches on Kind with one switch
// instead of a type switch over an interface hierarchy.
//
// # Node Kinds
//
// Literals: KindNumber, KindString, KindBoolean, KindNull
//
// References: KindIdentifier (variable), KindPath (target.property)
//
// Operators: KindUnary, KindBinary, KindBetween, KindRange
//
// Control: KindIf, KindFor, KindQuantified (some/every), KindFilter
//
// Composites: KindList, KindContext (with ContextEntry pairs), KindCall,
// KindFunction
//
// # Source Locations
//
// Every node records a Location (byte offset plus 1-based line and column)
// so diagnostics can point at the offending fragment:
//
//	return fmt.Errorf("%s: cannot compare %s", node.Location, node)
//
// # Immutability
//
// Nodes are immutable once the parser returns them. The parser substitutes
// NewNull placeholders for fragments it could not parse, so a tree always
// exists even when the error list is non-empty.
package ast
