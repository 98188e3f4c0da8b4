// Package lineindex maintains the byte offsets at which each line begins.
//
// The index is rebuilt from scratch after every mutation. A full scan is
// linear in the document length, which stays cheap while documents remain
// under the engine's file size ceiling.
package lineindex

import (
	"sort"

	"github.com/dshills/glyphcore/internal/engine/text"
)

// Index is an ordered table of line-start offsets.
// The first entry is always 0 and entries are strictly increasing.
type Index struct {
	starts []int
	total  int
}

// New returns an index for empty content.
func New() *Index {
	return &Index{starts: []int{0}}
}

// Build returns an index over the concatenation of segments.
func Build(segments ...[]byte) *Index {
	idx := New()
	idx.Rebuild(segments...)
	return idx
}

// BuildString returns an index over s.
func BuildString(s string) *Index {
	return Build([]byte(s))
}

// Rebuild rescans the concatenation of segments.
// Segments let a gap buffer be indexed without materializing its content.
func (idx *Index) Rebuild(segments ...[]byte) {
	idx.starts = idx.starts[:0]
	idx.starts = append(idx.starts, 0)
	off := 0
	for _, seg := range segments {
		for i, b := range seg {
			if b == '\n' {
				idx.starts = append(idx.starts, off+i+1)
			}
		}
		off += len(seg)
	}
	idx.total = off
}

// Len returns the total content length the index was built over.
func (idx *Index) Len() int {
	return idx.total
}

// LineCount returns the number of lines. Empty content has one line.
func (idx *Index) LineCount() int {
	return len(idx.starts)
}

// LineStart returns the offset of the first byte of line.
// Lines outside the document are clamped.
func (idx *Index) LineStart(line int) int {
	return idx.starts[idx.clampLine(line)]
}

// LineEnd returns the offset just past the last byte of line,
// excluding its terminator.
func (idx *Index) LineEnd(line int) int {
	line = idx.clampLine(line)
	if line+1 < len(idx.starts) {
		return idx.starts[line+1] - 1
	}
	return idx.total
}

// LineLen returns the byte length of line without its terminator.
func (idx *Index) LineLen(line int) int {
	return idx.LineEnd(line) - idx.LineStart(line)
}

// PositionToOffset converts a position to a byte offset,
// clamped to the content length.
func (idx *Index) PositionToOffset(p text.Position) int {
	col := p.Column
	if col < 0 {
		col = 0
	}
	off := idx.LineStart(p.Line) + col
	if off > idx.total {
		off = idx.total
	}
	return off
}

// OffsetToPosition converts a byte offset to a position by binary search
// for the greatest line start not after offset.
func (idx *Index) OffsetToPosition(offset int) text.Position {
	if offset < 0 {
		offset = 0
	}
	if offset > idx.total {
		offset = idx.total
	}
	line := sort.Search(len(idx.starts), func(i int) bool {
		return idx.starts[i] > offset
	}) - 1
	return text.Position{Line: line, Column: offset - idx.starts[line]}
}

// Starts returns a copy of the line-start table.
func (idx *Index) Starts() []int {
	out := make([]int, len(idx.starts))
	copy(out, idx.starts)
	return out
}

// Clone returns an independent copy of the index.
func (idx *Index) Clone() *Index {
	return &Index{starts: idx.Starts(), total: idx.total}
}

func (idx *Index) clampLine(line int) int {
	if line < 0 {
		return 0
	}
	if line >= len(idx.starts) {
		return len(idx.starts) - 1
	}
	return line
}
