// Package engine provides TextStore, the mutable document at the heart of
// the editor.
//
// # Architecture
//
// TextStore is a facade over several sub-packages:
//
//   - gap: byte gap buffer; edits at the cursor are O(1) amortized
//   - lineindex: line-start offsets, rebuilt after every mutation
//   - cursor: multi-cursor and selection management
//   - history: bounded undo/redo stacks
//   - text: Position and Range value types
//
// # Thread Safety
//
// All TextStore operations are serialized by a single mutex. The lock is
// never re-entered; change listeners run after it is released and may call
// back into the store.
//
// # Basic Usage
//
//	s := engine.New(engine.WithContent("Helo"))
//	s.Insert("l", text.Pos(0, 2)) // "Hello"
//
//	s.Delete(text.NewRange(text.Pos(0, 0), text.Pos(0, 1)))
//	s.Undo()
//	s.Redo()
//
// # Size Limits
//
// A single insert larger than the paste limit (10 MiB by default) fails with
// a *SizeLimitError matching ErrPasteTooLarge. Load rejects input larger than
// the file limit (100 MiB by default) before reading it, matching
// ErrFileTooLarge. In both cases the store is unchanged.
//
// # Change Notification
//
// Every mutating call returns a Change describing the applied edits. The same
// value is delivered to listeners registered with OnChange.
package engine
