// Package viewport describes the visible part of a document.
//
// A Viewport is a plain value. The caller computes one per frame, derives a
// new one with the scrolling methods when the cursor moves, and hands it to
// the renderer, which never changes it.
package viewport

import (
	"math"

	"github.com/dshills/glyphcore/internal/renderer/core"
	"github.com/dshills/glyphcore/internal/renderer/gutter"
)

// Viewport is the visible window onto a document, in pixels and lines.
type Viewport struct {
	// FirstLine is the first visible line.
	FirstLine int

	// LeftColumn is the first visible cell column of every line.
	LeftColumn int

	// Width and Height are the drawable size in pixels.
	Width, Height float32

	// LineHeight is the height of one line in pixels.
	LineHeight float32

	// CellWidth is the advance of one monospaced cell in pixels.
	CellWidth float32

	// GutterWidth is the width reserved for line numbers on the left.
	GutterWidth float32
}

// New creates a viewport at the top of the document.
// Non-positive metrics are replaced by 1.
func New(size core.Size, lineHeight, cellWidth float32) Viewport {
	if lineHeight <= 0 {
		lineHeight = 1
	}
	if cellWidth <= 0 {
		cellWidth = 1
	}
	return Viewport{
		Width:      float32(max(size.Width, 0)),
		Height:     float32(max(size.Height, 0)),
		LineHeight: lineHeight,
		CellWidth:  cellWidth,
	}
}

// Rows returns the number of lines that fit, counting a partial last line.
func (v Viewport) Rows() int {
	if v.LineHeight <= 0 || v.Height <= 0 {
		return 0
	}
	return int(math.Ceil(float64(v.Height / v.LineHeight)))
}

// Columns returns the number of whole cells right of the gutter.
func (v Viewport) Columns() int {
	if v.CellWidth <= 0 {
		return 0
	}
	return max(0, int((v.Width-v.GutterWidth)/v.CellWidth))
}

// VisibleRange returns the visible lines [start, end) of a document with
// lineCount lines.
func (v Viewport) VisibleRange(lineCount int) (start, end int) {
	start = min(max(v.FirstLine, 0), lineCount)
	end = min(start+v.Rows(), lineCount)
	return start, end
}

// IsLineVisible returns true if line is within the visible rows.
func (v Viewport) IsLineVisible(line int) bool {
	return line >= v.FirstLine && line < v.FirstLine+v.Rows()
}

// LineY returns the y coordinate of the top of line.
func (v Viewport) LineY(line int) float32 {
	return float32(line-v.FirstLine) * v.LineHeight
}

// TextX returns the x coordinate where column 0 would be drawn.
func (v Viewport) TextX() float32 {
	return v.GutterWidth - float32(v.LeftColumn)*v.CellWidth
}

// ColumnX returns the x coordinate of a cell column.
func (v Viewport) ColumnX(col int) float32 {
	return v.TextX() + float32(col)*v.CellWidth
}

// LineAt returns the line under pixel row y.
func (v Viewport) LineAt(y float32) int {
	if v.LineHeight <= 0 {
		return v.FirstLine
	}
	return v.FirstLine + int(math.Floor(float64(y/v.LineHeight)))
}

// Resize returns v with a new pixel size.
func (v Viewport) Resize(size core.Size) Viewport {
	v.Width = float32(max(size.Width, 0))
	v.Height = float32(max(size.Height, 0))
	return v
}

// ScrollTo returns v with line at the top, clamped to the document.
func (v Viewport) ScrollTo(line, lineCount int) Viewport {
	v.FirstLine = clampTop(line, lineCount)
	return v
}

// ScrollBy returns v scrolled by delta lines.
func (v Viewport) ScrollBy(delta, lineCount int) Viewport {
	return v.ScrollTo(v.FirstLine+delta, lineCount)
}

// PageDown returns v scrolled down by one page, keeping one line of overlap.
func (v Viewport) PageDown(lineCount int) Viewport {
	return v.ScrollBy(max(1, v.Rows()-1), lineCount)
}

// PageUp returns v scrolled up by one page, keeping one line of overlap.
func (v Viewport) PageUp(lineCount int) Viewport {
	return v.ScrollBy(-max(1, v.Rows()-1), lineCount)
}

// CenterOn returns v scrolled so line sits in the middle.
func (v Viewport) CenterOn(line, lineCount int) Viewport {
	return v.ScrollTo(line-v.Rows()/2, lineCount)
}

// Reveal returns v scrolled minimally so that (line, col) lies inside the
// margins. Only whole rows count as visible for this purpose.
func (v Viewport) Reveal(line, col, lineCount int, m Margins) Viewport {
	rows := max(1, int(v.Height/v.LineHeight))
	cols := v.Columns()
	m = m.clamp(rows, cols)

	switch {
	case line < v.FirstLine+m.Top:
		v.FirstLine = line - m.Top
	case line >= v.FirstLine+rows-m.Bottom:
		v.FirstLine = line - rows + m.Bottom + 1
	}
	v.FirstLine = clampTop(v.FirstLine, lineCount)

	if cols > 0 {
		switch {
		case col < v.LeftColumn+m.Left:
			v.LeftColumn = col - m.Left
		case col >= v.LeftColumn+cols-m.Right:
			v.LeftColumn = col - cols + m.Right + 1
		}
	}
	v.LeftColumn = max(0, v.LeftColumn)
	return v
}

// WithGutter returns v with a gutter wide enough for the line numbers of a
// document with lineCount lines, using at least minDigits digits.
func (v Viewport) WithGutter(lineCount, minDigits int) Viewport {
	v.GutterWidth = GutterWidth(lineCount, minDigits, v.CellWidth)
	return v
}

// GutterWidth returns the pixel width of a line-number gutter: the digits
// of the largest line number plus one cell of padding on each side.
func GutterWidth(lineCount, minDigits int, cellWidth float32) float32 {
	return float32(gutter.Cells(lineCount, minDigits)) * cellWidth
}

// GutterCells returns the gutter width in whole cells.
func (v Viewport) GutterCells() int {
	if v.CellWidth <= 0 {
		return 0
	}
	return int(v.GutterWidth/v.CellWidth + 0.5)
}

func clampTop(line, lineCount int) int {
	return max(0, min(line, lineCount-1))
}
