// Package layout maps document lines onto visual cell columns.
//
// A line is expanded into cells: tabs become runs of spaces up to the next
// tab stop, wide runes take two cells, and zero-width runes take none. Each
// cell remembers the byte column it came from so renderers can look up the
// syntax token and selection state of a cell.
package layout

import (
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// Cell is one visual column of a laid-out line.
type Cell struct {
	// Rune is the character drawn in the cell. Tab cells hold a space and
	// the right half of a wide rune holds 0.
	Rune rune

	// Width is 1 or 2 for the cell that starts a rune, 0 for the right
	// half of a wide rune.
	Width int

	// Byte is the byte column of the source rune.
	Byte int
}

// IsContinuation returns true for the right half of a wide rune.
func (c Cell) IsContinuation() bool {
	return c.Width == 0
}

// Line is the visual layout of a single document line.
type Line struct {
	Cells []Cell

	// Width is the total width in cells.
	Width int

	HasTabs bool
	HasWide bool

	// cols maps each byte offset in [0, len(text)] to a visual column.
	cols []int
}

// VisualColumn converts a byte column to a visual column. Columns past the
// end of the line extrapolate one cell per byte.
func (l *Line) VisualColumn(byteCol int) int {
	if byteCol <= 0 || len(l.cols) == 0 {
		return max(byteCol, 0)
	}
	if byteCol >= len(l.cols) {
		return l.Width + byteCol - (len(l.cols) - 1)
	}
	return l.cols[byteCol]
}

// ByteColumn converts a visual column to the byte column of the rune that
// occupies it. Columns past the end extrapolate one byte per cell.
func (l *Line) ByteColumn(visCol int) int {
	if visCol <= 0 {
		return 0
	}
	if visCol >= len(l.Cells) {
		return len(l.cols) - 1 + visCol - l.Width
	}
	return l.Cells[visCol].Byte
}

// Engine computes line layouts. It is immutable and safe for concurrent use.
type Engine struct {
	tabs TabStops
}

// NewEngine creates a layout engine with the given tab width.
func NewEngine(tabWidth int) *Engine {
	return &Engine{tabs: NewTabStops(tabWidth)}
}

// TabWidth returns the tab width.
func (e *Engine) TabWidth() int {
	return e.tabs.Width()
}

// Layout computes the visual layout of text, which must not contain a line
// terminator.
func (e *Engine) Layout(text string) *Line {
	l := &Line{
		Cells: make([]Cell, 0, len(text)),
		cols:  make([]int, len(text)+1),
	}

	col := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		for b := i; b < i+size; b++ {
			l.cols[b] = col
		}

		switch w := runewidth.RuneWidth(r); {
		case r == '\t':
			l.HasTabs = true
			for range e.tabs.Offset(col) {
				l.Cells = append(l.Cells, Cell{Rune: ' ', Width: 1, Byte: i})
				col++
			}
		case r == utf8.RuneError && size == 1:
			l.Cells = append(l.Cells, Cell{Rune: utf8.RuneError, Width: 1, Byte: i})
			col++
		case w == 0:
			// Zero-width runes are tracked but not drawn.
		case w == 2:
			l.HasWide = true
			l.Cells = append(l.Cells, Cell{Rune: r, Width: 2, Byte: i}, Cell{Width: 0, Byte: i})
			col += 2
		default:
			l.Cells = append(l.Cells, Cell{Rune: r, Width: 1, Byte: i})
			col++
		}
		i += size
	}
	l.cols[len(text)] = col
	l.Width = col
	return l
}
