package history

import (
	"time"

	"github.com/dshills/glyphcore/internal/engine/text"
)

// Entry records one edit at Offset: Deleted was replaced by Inserted.
// Undo applies the reverse replacement and restores CursorBefore; redo
// applies it forward and restores CursorAfter.
type Entry struct {
	Offset       int
	DeletedText  string
	InsertedText string

	CursorBefore text.Position
	CursorAfter  text.Position

	// Group ties together the entries of one multi-cursor edit. Zero is no
	// group.
	Group uint64

	Timestamp time.Time
}

// BytesDelta returns how much the edit grew the document.
func (e Entry) BytesDelta() int {
	return len(e.InsertedText) - len(e.DeletedText)
}

// sameStep reports whether next is undone or redone in the same step as e.
func (e Entry) sameStep(next Entry) bool {
	return e.Group != 0 && next.Group == e.Group
}
