package gap

import (
	"bytes"
	"testing"
)

func checkInvariants(t *testing.T, g *Buffer) {
	t.Helper()
	if g.GapStart() > g.GapEnd() || g.GapEnd() > g.Cap() {
		t.Fatalf("gap invariant broken: start=%d end=%d cap=%d", g.GapStart(), g.GapEnd(), g.Cap())
	}
	if g.Len() != g.Cap()-g.GapSize() {
		t.Fatalf("Len() = %d, want %d", g.Len(), g.Cap()-g.GapSize())
	}
}

func TestNewBuffer(t *testing.T) {
	g := New(0)
	if g.Len() != 0 {
		t.Errorf("expected length 0, got %d", g.Len())
	}
	if g.GapSize() != MinCapacity {
		t.Errorf("expected gap %d, got %d", MinCapacity, g.GapSize())
	}
	checkInvariants(t, g)
}

func TestFromBytes(t *testing.T) {
	g := FromBytes([]byte("Hello"))
	if g.String() != "Hello" {
		t.Errorf("expected Hello, got %q", g.String())
	}
	if g.GapStart() != 5 {
		t.Errorf("expected gap at end (5), got %d", g.GapStart())
	}
	checkInvariants(t, g)
}

func TestInsert(t *testing.T) {
	tests := []struct {
		name    string
		initial string
		pos     int
		text    string
		want    string
	}{
		{"middle", "Helo", 2, "l", "Hello"},
		{"start", "World", 0, "Hello ", "Hello World"},
		{"end", "Hello", 5, " World", "Hello World"},
		{"empty", "", 0, "abc", "abc"},
		{"clamped past end", "ab", 99, "c", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := FromBytes([]byte(tt.initial))
			g.Insert(tt.pos, []byte(tt.text))
			if got := g.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			checkInvariants(t, g)
		})
	}
}

func TestInsertGrowsGap(t *testing.T) {
	g := New(MinCapacity)
	big := bytes.Repeat([]byte("x"), 1000)
	g.Insert(0, big)
	if g.Len() != 1000 {
		t.Fatalf("expected length 1000, got %d", g.Len())
	}
	checkInvariants(t, g)

	// Growth is at least a quarter of the current capacity.
	before := g.Cap()
	gapBefore := g.GapSize()
	g.Insert(500, bytes.Repeat([]byte("y"), gapBefore+1))
	if grown := g.Cap() - before; grown < before/4 {
		t.Errorf("expected growth >= %d, got %d", before/4, grown)
	}
	checkInvariants(t, g)
}

func TestDelete(t *testing.T) {
	g := FromBytes([]byte("Hello World"))
	g.Delete(5, 11)
	if g.String() != "Hello" {
		t.Errorf("expected Hello, got %q", g.String())
	}
	checkInvariants(t, g)

	g.Delete(3, 3)
	if g.String() != "Hello" {
		t.Errorf("empty delete changed content: %q", g.String())
	}

	g.Delete(-5, 2)
	if g.String() != "llo" {
		t.Errorf("expected llo, got %q", g.String())
	}
}

func TestMoveGapPreservesContent(t *testing.T) {
	g := FromBytes([]byte("abcdefghij"))
	for _, pos := range []int{0, 10, 3, 7, 5, 5, -1, 42} {
		g.MoveGap(pos)
		if g.String() != "abcdefghij" {
			t.Fatalf("after MoveGap(%d) got %q", pos, g.String())
		}
		checkInvariants(t, g)
	}
}

func TestByteAtAndSlice(t *testing.T) {
	g := FromBytes([]byte("0123456789"))
	g.MoveGap(4)

	for i := 0; i < 10; i++ {
		b, ok := g.ByteAt(i)
		if !ok || b != byte('0'+i) {
			t.Errorf("ByteAt(%d) = %q, %v", i, b, ok)
		}
	}
	if _, ok := g.ByteAt(10); ok {
		t.Error("ByteAt past end should fail")
	}

	tests := []struct {
		a, b int
		want string
	}{
		{0, 4, "0123"},
		{2, 7, "23456"},
		{4, 10, "456789"},
		{6, 6, ""},
		{-3, 100, "0123456789"},
	}
	for _, tt := range tests {
		if got := string(g.Slice(tt.a, tt.b)); got != tt.want {
			t.Errorf("Slice(%d,%d) = %q, want %q", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSegments(t *testing.T) {
	g := FromBytes([]byte("abcdef"))
	g.MoveGap(2)
	prefix, suffix := g.Segments()
	if string(prefix) != "ab" || string(suffix) != "cdef" {
		t.Errorf("segments = %q, %q", prefix, suffix)
	}
}

func BenchmarkTypingAtCursor(b *testing.B) {
	g := FromBytes(bytes.Repeat([]byte("line of text\n"), 10000))
	g.MoveGap(g.Len() / 2)
	ch := []byte("x")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g.Insert(g.GapStart(), ch)
	}
}
