package viewport

// Margins is the context kept around the cursor when scrolling to reveal
// it, in lines and columns.
type Margins struct {
	Top    int
	Bottom int
	Left   int
	Right  int
}

// DefaultMargins returns sensible default margins.
func DefaultMargins() Margins {
	return Margins{Top: 3, Bottom: 3, Left: 8, Right: 8}
}

// NoMargins returns zero margins (cursor can go to edge).
func NoMargins() Margins {
	return Margins{}
}

// maxMarginRatio limits margins to 1/3 of viewport dimension to ensure
// there's always usable space in the center.
const maxMarginRatio = 3

// clamp applies viewport size constraints to margins.
func (m Margins) clamp(rows, cols int) Margins {
	maxVertical := rows / maxMarginRatio
	maxHorizontal := cols / maxMarginRatio

	m.Top = min(max(m.Top, 0), maxVertical)
	m.Bottom = min(max(m.Bottom, 0), maxVertical)
	m.Left = min(max(m.Left, 0), maxHorizontal)
	m.Right = min(max(m.Right, 0), maxHorizontal)
	return m
}
