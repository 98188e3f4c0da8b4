package cursor

import "slices"

// Set holds the selections of one document, sorted by start and never
// overlapping. It always holds at least one selection.
type Set struct {
	sels []Selection
}

// NewSet creates a set with one caret at offset.
func NewSet(offset int) *Set {
	return &Set{sels: []Selection{Caret(offset)}}
}

// NewSetFrom creates a set from sels, sorting and merging them. An empty
// slice yields a caret at 0.
func NewSetFrom(sels []Selection) *Set {
	s := &Set{}
	s.Replace(sels)
	return s
}

// Primary returns the first selection.
func (s *Set) Primary() Selection {
	return s.sels[0]
}

// PrimaryHead returns the head of the primary selection.
func (s *Set) PrimaryHead() int {
	return s.sels[0].Head
}

// Len returns the number of selections.
func (s *Set) Len() int {
	return len(s.sels)
}

// IsMulti reports whether there is more than one selection.
func (s *Set) IsMulti() bool {
	return len(s.sels) > 1
}

// All returns a copy of the selections.
func (s *Set) All() []Selection {
	return slices.Clone(s.sels)
}

// Heads returns the head of every selection in document order.
func (s *Set) Heads() []int {
	heads := make([]int, len(s.sels))
	for i, sel := range s.sels {
		heads[i] = sel.Head
	}
	return heads
}

// Spans returns the spans of the non-empty selections.
func (s *Set) Spans() []Span {
	var spans []Span
	for _, sel := range s.sels {
		if !sel.IsEmpty() {
			spans = append(spans, sel.Span())
		}
	}
	return spans
}

// HasSelection reports whether any selection is non-empty.
func (s *Set) HasSelection() bool {
	return slices.ContainsFunc(s.sels, func(sel Selection) bool { return !sel.IsEmpty() })
}

// Add adds sel, merging it with selections it touches.
func (s *Set) Add(sel Selection) {
	s.sels = append(s.sels, sel)
	s.normalize()
}

// Reset replaces every selection with sel.
func (s *Set) Reset(sel Selection) {
	s.sels = []Selection{sel}
}

// Replace replaces every selection with sels. An empty slice leaves a
// caret at 0.
func (s *Set) Replace(sels []Selection) {
	if len(sels) == 0 {
		s.sels = []Selection{Caret(0)}
		return
	}
	s.sels = slices.Clone(sels)
	s.normalize()
}

// KeepPrimary drops every selection but the primary.
func (s *Set) KeepPrimary() {
	s.sels = s.sels[:1]
}

// CollapseAll turns every selection into a caret at its head.
func (s *Set) CollapseAll() {
	for i, sel := range s.sels {
		s.sels[i] = sel.Collapse()
	}
	s.normalize()
}

// Clamp limits every selection to a document of size bytes.
func (s *Set) Clamp(size int) {
	for i, sel := range s.sels {
		s.sels[i] = sel.Clamp(size)
	}
	s.normalize()
}

// Apply moves every selection through edit.
func (s *Set) Apply(edit Edit) {
	for i, sel := range s.sels {
		s.sels[i] = Selection{
			Anchor: TransformOffset(sel.Anchor, edit),
			Head:   TransformOffset(sel.Head, edit),
		}
	}
	s.normalize()
}

// Clone returns an independent copy.
func (s *Set) Clone() *Set {
	return &Set{sels: slices.Clone(s.sels)}
}

// Equal reports whether both sets hold the same selections.
func (s *Set) Equal(other *Set) bool {
	return other != nil && slices.Equal(s.sels, other.sels)
}

// normalize sorts by start, longer selections first on ties, and merges
// selections that overlap or touch.
func (s *Set) normalize() {
	if len(s.sels) <= 1 {
		return
	}
	slices.SortFunc(s.sels, func(a, b Selection) int {
		if a.Start() != b.Start() {
			return a.Start() - b.Start()
		}
		return b.End() - a.End()
	})

	out := s.sels[:1]
	for _, sel := range s.sels[1:] {
		last := &out[len(out)-1]
		if sel.Start() <= last.End() {
			*last = last.union(sel)
			continue
		}
		out = append(out, sel)
	}
	s.sels = out
}
