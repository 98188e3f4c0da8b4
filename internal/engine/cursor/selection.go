package cursor

import "fmt"

// Span is a half-open byte range [Start, End) with Start <= End.
type Span struct {
	Start, End int
}

// Len returns the number of bytes in the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Selection is a range of the document with a direction. Head is the
// offset that moves when the selection is extended.
type Selection struct {
	Anchor int
	Head   int
}

// NewSelection creates a selection from anchor to head.
func NewSelection(anchor, head int) Selection {
	return Selection{Anchor: anchor, Head: head}
}

// Caret creates an empty selection at offset.
func Caret(offset int) Selection {
	return Selection{Anchor: offset, Head: offset}
}

// IsEmpty reports whether the selection is a caret.
func (s Selection) IsEmpty() bool {
	return s.Anchor == s.Head
}

// Start returns the lower bound of the selection.
func (s Selection) Start() int {
	return min(s.Anchor, s.Head)
}

// End returns the upper bound of the selection.
func (s Selection) End() int {
	return max(s.Anchor, s.Head)
}

// Len returns the length of the selection in bytes.
func (s Selection) Len() int {
	return s.End() - s.Start()
}

// Span returns the selected bytes.
func (s Selection) Span() Span {
	return Span{Start: s.Start(), End: s.End()}
}

// IsBackward reports whether the head lies before the anchor.
func (s Selection) IsBackward() bool {
	return s.Head < s.Anchor
}

// Contains reports whether offset is selected. A caret contains nothing.
func (s Selection) Contains(offset int) bool {
	return offset >= s.Start() && offset < s.End()
}

// Collapse returns a caret at the head.
func (s Selection) Collapse() Selection {
	return Caret(s.Head)
}

// Clamp limits anchor and head to [0, size].
func (s Selection) Clamp(size int) Selection {
	return Selection{
		Anchor: min(max(s.Anchor, 0), size),
		Head:   min(max(s.Head, 0), size),
	}
}

// union returns a forward selection covering s and other.
func (s Selection) union(other Selection) Selection {
	return Selection{Anchor: min(s.Start(), other.Start()), Head: max(s.End(), other.End())}
}

// String returns a compact form for logs and test failures.
func (s Selection) String() string {
	if s.IsEmpty() {
		return fmt.Sprintf("caret@%d", s.Head)
	}
	return fmt.Sprintf("sel[%d->%d]", s.Anchor, s.Head)
}
