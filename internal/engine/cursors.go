package engine

import (
	"unicode/utf8"

	"github.com/dshills/glyphcore/internal/engine/cursor"
	"github.com/dshills/glyphcore/internal/engine/text"
)

// Cursor returns the primary cursor position.
func (s *TextStore) Cursor() text.Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.primaryPositionLocked()
}

// Cursors returns every cursor position in document order.
func (s *TextStore) Cursors() []text.Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	heads := s.cursors.Heads()
	out := make([]text.Position, len(heads))
	for i, h := range heads {
		out[i] = s.lines.OffsetToPosition(h)
	}
	return out
}

// Selections returns the non-empty selections as ranges in document order.
func (s *TextStore) Selections() []text.Range {
	s.mu.Lock()
	defer s.mu.Unlock()
	spans := s.cursors.Spans()
	out := make([]text.Range, len(spans))
	for i, sp := range spans {
		out[i] = text.NewRange(s.lines.OffsetToPosition(sp.Start), s.lines.OffsetToPosition(sp.End))
	}
	return out
}

// SetCursor collapses all cursors into a single cursor at p.
func (s *TextStore) SetCursor(p text.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursors.Reset(cursor.Caret(s.lines.PositionToOffset(p)))
}

// AddCursor adds a cursor at p. Cursors at the same offset merge.
func (s *TextStore) AddCursor(p text.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursors.Add(cursor.Caret(s.lines.PositionToOffset(p)))
}

// SetSelections replaces all cursors with one selection per range.
// The cursor of each selection sits at the range end.
func (s *TextStore) SetSelections(ranges []text.Range) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sels := make([]cursor.Selection, len(ranges))
	for i, r := range ranges {
		sels[i] = cursor.NewSelection(s.lines.PositionToOffset(r.Start), s.lines.PositionToOffset(r.End))
	}
	s.cursors.Replace(sels)
}

// SelectAll selects the whole document.
func (s *TextStore) SelectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursors.Reset(cursor.NewSelection(0, s.buf.Len()))
}

// ClearSelections collapses every selection to its cursor.
func (s *TextStore) ClearSelections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursors.CollapseAll()
}

// MoveCursor moves the primary cursor by dLine lines and dCol scalars and
// drops any other cursors. Vertical moves keep the column where the target
// line is long enough; horizontal moves wrap across line ends.
func (s *TextStore) MoveCursor(dLine, dCol int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	off := s.cursors.PrimaryHead()
	if dLine != 0 {
		p := s.lines.OffsetToPosition(off)
		line := min(max(p.Line+dLine, 0), s.lines.LineCount()-1)
		col := min(p.Column, s.lines.LineLen(line))
		off = s.lines.LineStart(line) + col
	}
	for ; dCol > 0 && off < s.buf.Len(); dCol-- {
		_, size := utf8.DecodeRune(s.buf.Slice(off, off+utf8.UTFMax))
		off += max(size, 1)
	}
	for ; dCol < 0 && off > 0; dCol++ {
		_, size := utf8.DecodeLastRune(s.buf.Slice(max(0, off-utf8.UTFMax), off))
		off -= max(size, 1)
	}
	s.cursors.Reset(cursor.Caret(off))
}
