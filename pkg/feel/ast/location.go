package ast

import "fmt"

// Location is the source position of a token or AST node within a FEEL
// expression. Offsets are 0-based byte positions, line and column are
// 1-based.
type Location struct {
	Offset int // Byte offset into the source (0-based)
	Line   int // Line number (1-based)
	Column int // Column number (1-based)
}

// String returns a human-readable representation of the location.
// Format: "line:column".
func (l Location) String() string {
	if l.Line == 0 {
		return "<unknown>"
	}
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// IsValid returns true if the location carries line information.
func (l Location) IsValid() bool {
	return l.Line > 0
}
