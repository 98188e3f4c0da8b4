package layout

// DefaultTabWidth is used when a non-positive tab width is given.
const DefaultTabWidth = 4

// TabStops computes tab stop positions for a fixed tab width.
type TabStops struct {
	width int
}

// NewTabStops creates tab stops every width columns.
func NewTabStops(width int) TabStops {
	if width < 1 {
		width = DefaultTabWidth
	}
	return TabStops{width: width}
}

// Width returns the tab width.
func (t TabStops) Width() int {
	return t.width
}

// Next returns the next tab stop column after col.
func (t TabStops) Next(col int) int {
	return col + t.Offset(col)
}

// Offset returns how many cells a tab at col expands to.
func (t TabStops) Offset(col int) int {
	return t.width - (col % t.width)
}

// Prev returns the previous tab stop before col, or 0.
func (t TabStops) Prev(col int) int {
	if col <= 0 {
		return 0
	}
	if col%t.width == 0 {
		return col - t.width
	}
	return (col / t.width) * t.width
}

// IsStop returns true if col is a tab stop.
func (t TabStops) IsStop(col int) bool {
	return col%t.width == 0
}
