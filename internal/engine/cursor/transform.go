package cursor

// Edit replaces the byte span [Start, End) with NewText. An insertion has
// Start == End; a deletion has no NewText.
type Edit struct {
	Start   int
	End     int
	NewText string
}

// Insertion returns an edit inserting text at offset.
func Insertion(offset int, text string) Edit {
	return Edit{Start: offset, End: offset, NewText: text}
}

// Deletion returns an edit removing span.
func Deletion(span Span) Edit {
	return Edit{Start: span.Start, End: span.End}
}

// Delta returns the change in document length.
func (e Edit) Delta() int {
	return len(e.NewText) - (e.End - e.Start)
}

// TransformOffset maps an offset from before edit to after it. Offsets
// before the edit stay put, offsets after it shift by the delta, and
// offsets inside the replaced span land at the end of the new text. An
// insertion at the offset itself pushes it forward, which is what a caret
// typing at that offset needs.
func TransformOffset(offset int, edit Edit) int {
	switch {
	case offset < edit.Start:
		return offset
	case offset >= edit.End:
		return offset + edit.Delta()
	default:
		return edit.Start + len(edit.NewText)
	}
}
