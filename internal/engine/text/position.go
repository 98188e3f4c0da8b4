package text

import (
	"cmp"
	"fmt"
)

// Position is a 0-based line and a byte column within that line.
type Position struct {
	Line   int
	Column int
}

// Pos returns Position{Line: line, Column: col}.
func Pos(line, col int) Position {
	return Position{Line: line, Column: col}
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line+1, p.Column+1)
}

// Compare orders positions by line, then column.
func (p Position) Compare(other Position) int {
	if c := cmp.Compare(p.Line, other.Line); c != 0 {
		return c
	}
	return cmp.Compare(p.Column, other.Column)
}

func (p Position) Before(other Position) bool { return p.Compare(other) < 0 }
func (p Position) After(other Position) bool  { return p.Compare(other) > 0 }

// Max returns the later of a and b.
func Max(a, b Position) Position {
	if a.Before(b) {
		return b
	}
	return a
}
