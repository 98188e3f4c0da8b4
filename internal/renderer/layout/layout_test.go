package layout

import "testing"

func TestLayoutColumns(t *testing.T) {
	e := NewEngine(4)

	tests := []struct {
		name    string
		text    string
		width   int
		visual  map[int]int
		hasTabs bool
		hasWide bool
	}{
		{"ascii", "hello", 5, map[int]int{0: 0, 3: 3, 5: 5, 7: 7}, false, false},
		{"tab at start", "\tx", 5, map[int]int{0: 0, 1: 4, 2: 5}, true, false},
		{"tab mid stop", "ab\tc", 5, map[int]int{2: 2, 3: 4, 4: 5}, true, false},
		{"wide", "a世b", 4, map[int]int{1: 1, 2: 1, 4: 3, 5: 4}, false, true},
		{"multibyte narrow", "é!", 2, map[int]int{0: 0, 1: 0, 2: 1, 3: 2}, false, false},
		{"empty", "", 0, map[int]int{0: 0, 2: 2}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := e.Layout(tt.text)
			if l.Width != tt.width {
				t.Errorf("Width = %d, want %d", l.Width, tt.width)
			}
			if len(l.Cells) != tt.width {
				t.Errorf("len(Cells) = %d, want %d", len(l.Cells), tt.width)
			}
			if l.HasTabs != tt.hasTabs || l.HasWide != tt.hasWide {
				t.Errorf("HasTabs=%v HasWide=%v", l.HasTabs, l.HasWide)
			}
			for b, want := range tt.visual {
				if got := l.VisualColumn(b); got != want {
					t.Errorf("VisualColumn(%d) = %d, want %d", b, got, want)
				}
			}
		})
	}
}

func TestLayoutByteColumn(t *testing.T) {
	l := NewEngine(4).Layout("a\tb世")
	// cells: a | tab tab tab | b | 世 cont
	tests := []struct {
		vis  int
		want int
	}{
		{-1, 0},
		{0, 0},
		{1, 1},
		{3, 1},
		{4, 2},
		{5, 3},
		{6, 3},
		{7, 6},
		{9, 8},
	}
	for _, tt := range tests {
		if got := l.ByteColumn(tt.vis); got != tt.want {
			t.Errorf("ByteColumn(%d) = %d, want %d", tt.vis, got, tt.want)
		}
	}
	if !l.Cells[6].IsContinuation() || l.Cells[5].IsContinuation() {
		t.Error("wide rune continuation misplaced")
	}
}

func TestLayoutZeroWidthAndInvalid(t *testing.T) {
	l := NewEngine(4).Layout("é\xff")
	if l.Width != 2 {
		t.Fatalf("Width = %d, want 2", l.Width)
	}
	if l.Cells[1].Byte != 3 || l.Cells[1].Rune != '�' {
		t.Errorf("invalid byte cell = %+v", l.Cells[1])
	}
	if got := l.VisualColumn(1); got != 1 {
		t.Errorf("combining mark column = %d, want 1", got)
	}
}

func TestTabStops(t *testing.T) {
	ts := NewTabStops(0)
	if ts.Width() != DefaultTabWidth {
		t.Fatalf("Width = %d", ts.Width())
	}
	tests := []struct {
		col, next, offset, prev int
		stop                    bool
	}{
		{0, 4, 4, 0, true},
		{1, 4, 3, 0, false},
		{4, 8, 4, 0, true},
		{6, 8, 2, 4, false},
		{8, 12, 4, 4, true},
	}
	for _, tt := range tests {
		if got := ts.Next(tt.col); got != tt.next {
			t.Errorf("Next(%d) = %d, want %d", tt.col, got, tt.next)
		}
		if got := ts.Offset(tt.col); got != tt.offset {
			t.Errorf("Offset(%d) = %d, want %d", tt.col, got, tt.offset)
		}
		if got := ts.Prev(tt.col); got != tt.prev {
			t.Errorf("Prev(%d) = %d, want %d", tt.col, got, tt.prev)
		}
		if got := ts.IsStop(tt.col); got != tt.stop {
			t.Errorf("IsStop(%d) = %v", tt.col, got)
		}
	}
}

func TestCacheHitsAndValidation(t *testing.T) {
	c := NewCache(NewEngine(4), 10)

	a := c.Get(0, "abc")
	if b := c.Get(0, "abc"); b != a {
		t.Error("identical text should hit")
	}
	if b := c.Get(0, "abcd"); b == a || b.Width != 4 {
		t.Error("changed text must be laid out again")
	}

	s := c.Stats()
	if s.Hits != 1 || s.Misses != 2 || s.Size != 1 {
		t.Errorf("stats = %+v", s)
	}
}

func TestCacheEviction(t *testing.T) {
	c := NewCache(NewEngine(4), 3)
	c.Get(0, "a")
	c.Get(1, "b")
	c.Get(2, "c")
	c.Get(0, "a") // line 1 is now least recently used
	c.Get(3, "d")

	if c.Len() != 3 {
		t.Fatalf("Len = %d, want 3", c.Len())
	}
	before := c.Stats().Misses
	c.Get(1, "b")
	if c.Stats().Misses != before+1 {
		t.Error("line 1 should have been evicted")
	}
	if c.Stats().Evictions != 2 {
		t.Errorf("Evictions = %d, want 2", c.Stats().Evictions)
	}
}

func TestCacheSetEngine(t *testing.T) {
	c := NewCache(NewEngine(4), 0)
	if c.Get(0, "\t").Width != 4 {
		t.Fatal("tab width 4 expected")
	}
	c.SetEngine(NewEngine(8))
	if c.Len() != 0 {
		t.Error("SetEngine should clear the cache")
	}
	if c.Get(0, "\t").Width != 8 {
		t.Error("new engine not used")
	}
	c.InvalidateAll()
	if c.Len() != 0 {
		t.Error("InvalidateAll should clear the cache")
	}
}
