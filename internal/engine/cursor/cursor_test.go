package cursor

import (
	"slices"
	"testing"
)

func TestSelectionBounds(t *testing.T) {
	sel := NewSelection(10, 4)

	if sel.IsEmpty() {
		t.Error("expected non-empty selection")
	}
	if !sel.IsBackward() {
		t.Error("expected backward selection")
	}
	if sel.Start() != 4 || sel.End() != 10 || sel.Len() != 6 {
		t.Errorf("start=%d end=%d len=%d", sel.Start(), sel.End(), sel.Len())
	}
	if got := sel.Span(); got != (Span{Start: 4, End: 10}) {
		t.Errorf("Span() = %+v", got)
	}
	if got := sel.Collapse(); got != Caret(4) {
		t.Errorf("Collapse() = %v", got)
	}
	if !sel.Contains(4) || sel.Contains(10) {
		t.Error("Contains should be half-open")
	}
	if Caret(3).Contains(3) {
		t.Error("a caret selects nothing")
	}
	if got := NewSelection(-3, 40).Clamp(20); got != NewSelection(0, 20) {
		t.Errorf("Clamp() = %v", got)
	}
}

func TestSetMergesTouchingSelections(t *testing.T) {
	tests := []struct {
		name string
		in   []Selection
		want []Selection
	}{
		{"empty", nil, []Selection{Caret(0)}},
		{"sorted", []Selection{Caret(9), Caret(2)}, []Selection{Caret(2), Caret(9)}},
		{"duplicate carets", []Selection{Caret(4), Caret(4)}, []Selection{Caret(4)}},
		{"overlap", []Selection{NewSelection(0, 5), NewSelection(3, 8)}, []Selection{NewSelection(0, 8)}},
		{"adjacent", []Selection{NewSelection(0, 5), Caret(5)}, []Selection{NewSelection(0, 5)}},
		{"apart", []Selection{NewSelection(0, 2), NewSelection(4, 6)}, []Selection{NewSelection(0, 2), NewSelection(4, 6)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewSetFrom(tt.in).All()
			if !slices.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSetOperations(t *testing.T) {
	s := NewSet(10)
	s.Add(Caret(2))
	s.Add(NewSelection(20, 15))

	if s.Len() != 3 || !s.IsMulti() {
		t.Fatalf("Len() = %d", s.Len())
	}
	if s.PrimaryHead() != 2 {
		t.Errorf("PrimaryHead() = %d, want 2", s.PrimaryHead())
	}
	if got := s.Heads(); !slices.Equal(got, []int{2, 10, 15}) {
		t.Errorf("Heads() = %v", got)
	}
	if got := s.Spans(); !slices.Equal(got, []Span{{Start: 15, End: 20}}) {
		t.Errorf("Spans() = %v", got)
	}
	if !s.HasSelection() {
		t.Error("expected a selection")
	}

	c := s.Clone()
	s.CollapseAll()
	if s.HasSelection() {
		t.Error("CollapseAll left a selection")
	}
	if c.Equal(s) {
		t.Error("clone should be independent")
	}

	s.Clamp(12)
	if got := s.Heads(); !slices.Equal(got, []int{2, 10, 12}) {
		t.Errorf("Heads() after Clamp = %v", got)
	}

	s.KeepPrimary()
	if s.Len() != 1 || s.PrimaryHead() != 2 {
		t.Errorf("KeepPrimary() left %v", s.All())
	}

	s.Reset(NewSelection(0, 7))
	if s.Primary() != NewSelection(0, 7) {
		t.Errorf("Reset() left %v", s.All())
	}
}

func TestTransformOffset(t *testing.T) {
	tests := []struct {
		name   string
		offset int
		edit   Edit
		want   int
	}{
		{"before insert", 3, Insertion(5, "xy"), 3},
		{"at insert", 5, Insertion(5, "xy"), 7},
		{"after insert", 9, Insertion(5, "xy"), 11},
		{"before delete", 3, Deletion(Span{Start: 5, End: 8}), 3},
		{"inside delete", 6, Deletion(Span{Start: 5, End: 8}), 5},
		{"at delete end", 8, Deletion(Span{Start: 5, End: 8}), 5},
		{"after delete", 12, Deletion(Span{Start: 5, End: 8}), 9},
		{"inside replace", 6, Edit{Start: 5, End: 8, NewText: "abcd"}, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TransformOffset(tt.offset, tt.edit); got != tt.want {
				t.Errorf("TransformOffset(%d) = %d, want %d", tt.offset, got, tt.want)
			}
		})
	}
}

func TestSetApply(t *testing.T) {
	t.Run("descending inserts", func(t *testing.T) {
		s := NewSetFrom([]Selection{Caret(2), Caret(5)})
		s.Apply(Insertion(5, "x"))
		s.Apply(Insertion(2, "x"))
		if got := s.Heads(); !slices.Equal(got, []int{3, 7}) {
			t.Errorf("Heads() = %v, want [3 7]", got)
		}
	})

	t.Run("deletion merges carets", func(t *testing.T) {
		s := NewSetFrom([]Selection{Caret(4), Caret(6)})
		s.Apply(Deletion(Span{Start: 3, End: 7}))
		if got := s.All(); !slices.Equal(got, []Selection{Caret(3)}) {
			t.Errorf("All() = %v", got)
		}
	})

	t.Run("selection grows", func(t *testing.T) {
		s := NewSetFrom([]Selection{NewSelection(2, 6)})
		s.Apply(Insertion(4, "abc"))
		if got := s.Primary(); got != NewSelection(2, 9) {
			t.Errorf("Primary() = %v", got)
		}
	})
}
