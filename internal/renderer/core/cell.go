package core

import (
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
	"golang.org/x/text/unicode/norm"
)

// Cell is one position of a character grid. Width is the number of
// columns the cell covers. Combining holds the runes drawn over Rune when
// a grapheme cluster has no single-rune form.
type Cell struct {
	Rune      rune
	Combining string
	Width     int
	Style     Style
}

// EmptyCell is the blank a cleared grid is filled with.
func EmptyCell() Cell {
	return Cell{Rune: ' ', Width: 1}
}

// NewStyledCell returns a cell showing the single rune r in style.
func NewStyledCell(r rune, style Style) Cell {
	return Cell{Rune: r, Width: RuneWidth(r), Style: style}
}

// String returns the text the cell shows.
func (c Cell) String() string {
	return string(c.Rune) + c.Combining
}

// RuneWidth is the number of columns r covers. Control runes cover none.
func RuneWidth(r rune) int {
	return runewidth.RuneWidth(r)
}

// StringWidth is the number of columns s covers, measured per grapheme
// cluster so combining sequences and emoji count once.
func StringWidth(s string) int {
	return uniseg.StringWidth(s)
}

// GraphemeCells splits s into one cell per grapheme cluster. Each cluster
// is composed to NFC first, so a decomposed "é" becomes the single
// rune 'é'; runes that do not compose stay in Combining. Clusters that
// take no columns, such as control characters, are dropped.
func GraphemeCells(s string, style Style) []Cell {
	var cells []Cell
	state := -1
	for s != "" {
		var cluster string
		var width int
		cluster, s, width, state = uniseg.FirstGraphemeClusterInString(s, state)
		if width == 0 {
			continue
		}
		composed := []rune(norm.NFC.String(cluster))
		cells = append(cells, Cell{
			Rune:      composed[0],
			Combining: string(composed[1:]),
			Width:     width,
			Style:     style,
		})
	}
	return cells
}
