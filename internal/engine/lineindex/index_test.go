package lineindex

import (
	"testing"

	"github.com/dshills/glyphcore/internal/engine/text"
)

func TestBuildEmpty(t *testing.T) {
	idx := New()
	if idx.LineCount() != 1 {
		t.Errorf("expected 1 line, got %d", idx.LineCount())
	}
	if idx.LineStart(0) != 0 || idx.LineEnd(0) != 0 {
		t.Errorf("unexpected bounds for empty line: %d-%d", idx.LineStart(0), idx.LineEnd(0))
	}
}

func TestBuildSegments(t *testing.T) {
	// "abc\ndef\n\nghi" split across a gap.
	idx := Build([]byte("abc\nd"), []byte("ef\n\nghi"))

	want := []int{0, 4, 8, 9}
	got := idx.Starts()
	if len(got) != len(want) {
		t.Fatalf("starts = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("starts = %v, want %v", got, want)
		}
	}
	if idx.Len() != 12 {
		t.Errorf("expected total 12, got %d", idx.Len())
	}
	if idx.LineLen(1) != 3 || idx.LineLen(2) != 0 || idx.LineLen(3) != 3 {
		t.Errorf("line lengths = %d %d %d", idx.LineLen(1), idx.LineLen(2), idx.LineLen(3))
	}
}

func TestTrailingNewline(t *testing.T) {
	idx := BuildString("a\n")
	if idx.LineCount() != 2 {
		t.Fatalf("expected 2 lines, got %d", idx.LineCount())
	}
	if idx.LineStart(1) != 2 || idx.LineEnd(1) != 2 {
		t.Errorf("last line bounds = %d-%d", idx.LineStart(1), idx.LineEnd(1))
	}
}

func TestPositionToOffset(t *testing.T) {
	idx := BuildString("line 1\nline 2\nend")

	tests := []struct {
		name string
		pos  text.Position
		want int
	}{
		{"origin", text.Pos(0, 0), 0},
		{"second line", text.Pos(1, 0), 7},
		{"mid line", text.Pos(1, 3), 10},
		{"column overflow clamps to total", text.Pos(2, 50), 17},
		{"line overflow clamps to last line", text.Pos(9, 1), 15},
		{"negative column", text.Pos(1, -4), 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := idx.PositionToOffset(tt.pos); got != tt.want {
				t.Errorf("PositionToOffset(%v) = %d, want %d", tt.pos, got, tt.want)
			}
		})
	}
}

func TestOffsetToPosition(t *testing.T) {
	idx := BuildString("line 1\nline 2\nend")

	tests := []struct {
		offset int
		want   text.Position
	}{
		{0, text.Pos(0, 0)},
		{6, text.Pos(0, 6)},
		{7, text.Pos(1, 0)},
		{13, text.Pos(1, 6)},
		{14, text.Pos(2, 0)},
		{17, text.Pos(2, 3)},
		{100, text.Pos(2, 3)},
		{-1, text.Pos(0, 0)},
	}

	for _, tt := range tests {
		if got := idx.OffsetToPosition(tt.offset); got != tt.want {
			t.Errorf("OffsetToPosition(%d) = %v, want %v", tt.offset, got, tt.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	s := "alpha\n\nbeta gamma\ndelta\n"
	idx := BuildString(s)
	for off := 0; off <= len(s); off++ {
		p := idx.OffsetToPosition(off)
		if back := idx.PositionToOffset(p); back != off {
			t.Errorf("offset %d -> %v -> %d", off, p, back)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	idx := BuildString("a\nb")
	c := idx.Clone()
	idx.Rebuild([]byte("no newlines"))
	if c.LineCount() != 2 {
		t.Errorf("clone changed after rebuild: %d lines", c.LineCount())
	}
}
