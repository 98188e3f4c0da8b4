package engine

import "github.com/dshills/glyphcore/internal/engine/text"

// ChangeKind categorizes a Change.
type ChangeKind uint8

const (
	// ChangeNone is returned by calls that did not modify the document.
	ChangeNone ChangeKind = iota
	// ChangeInsert is an insertion at one or more cursors.
	ChangeInsert
	// ChangeDelete is a deletion.
	ChangeDelete
	// ChangeUndo is an undo of the previous edit.
	ChangeUndo
	// ChangeRedo is a redo of the previously undone edit.
	ChangeRedo
	// ChangeLoad is a full content replacement.
	ChangeLoad
)

// String returns the kind name.
func (k ChangeKind) String() string {
	switch k {
	case ChangeNone:
		return "none"
	case ChangeInsert:
		return "insert"
	case ChangeDelete:
		return "delete"
	case ChangeUndo:
		return "undo"
	case ChangeRedo:
		return "redo"
	case ChangeLoad:
		return "load"
	default:
		return "unknown"
	}
}

// Edit is one byte-level modification applied to the document.
// Offset is valid in the document as it was just before this edit.
type Edit struct {
	Offset   int
	Deleted  string
	Inserted string
}

// Change describes the result of a mutating call.
type Change struct {
	Kind     ChangeKind
	Revision uint64
	Edits    []Edit
	Cursor   text.Position
	Lines    int
}

// IsNoop returns true if the call did not modify the document.
func (c Change) IsNoop() bool {
	return c.Kind == ChangeNone
}

// BytesDelta returns the change in document length.
func (c Change) BytesDelta() int {
	n := 0
	for _, e := range c.Edits {
		n += len(e.Inserted) - len(e.Deleted)
	}
	return n
}

// ChangeListener receives changes after they are applied.
type ChangeListener func(Change)

type listener struct {
	id int
	fn ChangeListener
}
