package engine

import (
	"github.com/dshills/glyphcore/internal/engine/lineindex"
	"github.com/dshills/glyphcore/internal/engine/text"
)

// Snapshot is an immutable copy of the document at one revision.
// It is safe for concurrent use and is what the renderer reads each frame.
type Snapshot struct {
	revision uint64
	data     []byte
	lines    *lineindex.Index
}

// NewSnapshot builds a snapshot over content that is not backed by a store.
func NewSnapshot(content string) *Snapshot {
	return &Snapshot{
		data:  []byte(content),
		lines: lineindex.BuildString(content),
	}
}

// Revision returns the store revision the snapshot was taken at.
func (s *Snapshot) Revision() uint64 {
	return s.revision
}

// Len returns the content length in bytes.
func (s *Snapshot) Len() int {
	return len(s.data)
}

// Text returns the full content.
func (s *Snapshot) Text() string {
	return string(s.data)
}

// Bytes returns the full content. Callers must not modify the result.
func (s *Snapshot) Bytes() []byte {
	return s.data
}

// LineCount returns the number of lines.
func (s *Snapshot) LineCount() int {
	return s.lines.LineCount()
}

// LineBytes returns line i without its terminator. Callers must not modify
// the result. Out of range lines return nil.
func (s *Snapshot) LineBytes(i int) []byte {
	if i < 0 || i >= s.lines.LineCount() {
		return nil
	}
	return s.data[s.lines.LineStart(i):s.lines.LineEnd(i)]
}

// LineText returns line i without its terminator.
func (s *Snapshot) LineText(i int) string {
	return string(s.LineBytes(i))
}

// PositionToOffset converts a position to a byte offset.
func (s *Snapshot) PositionToOffset(p text.Position) int {
	return s.lines.PositionToOffset(p)
}

// OffsetToPosition converts a byte offset to a position.
func (s *Snapshot) OffsetToPosition(offset int) text.Position {
	return s.lines.OffsetToPosition(offset)
}
