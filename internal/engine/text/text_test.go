package text

import "testing"

func TestPositionCompare(t *testing.T) {
	tests := []struct {
		a, b Position
		want int
	}{
		{Pos(0, 0), Pos(0, 0), 0},
		{Pos(0, 9), Pos(1, 0), -1},
		{Pos(2, 1), Pos(2, 0), 1},
	}
	for _, tt := range tests {
		if got := tt.a.Compare(tt.b); got != tt.want {
			t.Errorf("%v.Compare(%v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
	if got := Max(Pos(3, 1), Pos(3, 4)); got != Pos(3, 4) {
		t.Errorf("Max = %v", got)
	}
	if got := Pos(0, 4).String(); got != "1:5" {
		t.Errorf("String() = %q", got)
	}
}

func TestRangeNormalize(t *testing.T) {
	r := NewRange(Pos(4, 2), Pos(1, 0)).Normalize()
	if r.Start != Pos(1, 0) || r.End != Pos(4, 2) {
		t.Errorf("Normalize() = %v", r)
	}
	if !NewRange(Pos(2, 2), Pos(2, 2)).IsEmpty() {
		t.Error("expected empty range")
	}
}
