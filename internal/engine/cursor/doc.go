// Package cursor tracks the carets and selections of a TextStore.
//
// Positions are byte offsets into the document. A Selection has an anchor,
// where it was started, and a head, where typing happens; a Selection whose
// anchor equals its head is a caret. A Set holds every selection of the
// document sorted by start and merged where they touch. The first one is
// the primary selection.
//
//	set := cursor.NewSet(10)
//	set.Add(cursor.Caret(50))
//	set.Apply(cursor.Insertion(0, "abc"))
//	// heads are now 13 and 53
//
// Selection is a value type. Set is not safe for concurrent use; the
// TextStore guards it with its own mutex.
package cursor
