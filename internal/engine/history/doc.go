// Package history provides the bounded undo and redo stacks of a TextStore.
//
// An Entry is one replacement at a byte offset together with the cursor
// before and after it. Entries recorded by a multi-cursor edit share a
// Group and are undone and redone as a single step:
//
//	h := history.New(500)
//	h.Record(history.Entry{Offset: 2, InsertedText: "l"})
//	for _, e := range h.Undo() {
//		// apply the reverse of e
//	}
//
// Recording past the limit drops the oldest entry. Recording a new edit
// clears the redo stack. History is not safe for concurrent use.
package history
