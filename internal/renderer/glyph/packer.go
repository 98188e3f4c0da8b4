package glyph

import "image"

// shelfPacker places rectangles left to right in rows.
type shelfPacker struct {
	size      int
	x, y      int
	rowHeight int
}

func newShelfPacker(size int) shelfPacker {
	return shelfPacker{size: size}
}

// pack reserves a w×h rectangle and returns its top-left corner.
// It returns false when the rectangle does not fit below the current row.
func (p *shelfPacker) pack(w, h int) (image.Point, bool) {
	if w > p.size || h > p.size {
		return image.Point{}, false
	}

	x, y, rowHeight := p.x, p.y, p.rowHeight
	if x+w > p.size {
		y += rowHeight
		x = 0
		rowHeight = 0
	}
	if y+h > p.size {
		return image.Point{}, false
	}

	p.x = x + w
	p.y = y
	p.rowHeight = max(rowHeight, h)
	return image.Pt(x, y), true
}

// resize changes the square dimension. Existing placements stay put.
func (p *shelfPacker) resize(size int) {
	p.size = size
}

// reset forgets every placement.
func (p *shelfPacker) reset() {
	p.x, p.y, p.rowHeight = 0, 0, 0
}

// empty returns true if nothing has been placed since the last reset.
func (p *shelfPacker) empty() bool {
	return p.x == 0 && p.y == 0 && p.rowHeight == 0
}
