package gutter

import "testing"

func TestCells(t *testing.T) {
	tests := []struct {
		name      string
		lineCount int
		minDigits int
		want      int
	}{
		{"disabled", 100, 0, 0},
		{"empty document", 0, 3, 5},
		{"minimum wins", 10, 3, 5},
		{"grows with lines", 12345, 3, 7},
		{"exact power of ten", 1000, 1, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cells(tt.lineCount, tt.minDigits); got != tt.want {
				t.Errorf("Cells(%d, %d) = %d, want %d", tt.lineCount, tt.minDigits, got, tt.want)
			}
		})
	}
}

func TestDigits(t *testing.T) {
	tests := []struct {
		lines, min, want int
	}{
		{0, 1, 1},
		{9, 1, 1},
		{10, 1, 2},
		{1000000, 2, 7},
		{42, 4, 4},
	}
	for _, tt := range tests {
		if got := Digits(tt.lines, tt.min); got != tt.want {
			t.Errorf("Digits(%d, %d) = %d, want %d", tt.lines, tt.min, got, tt.want)
		}
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", Absolute, false},
		{"absolute", Absolute, false},
		{"relative", Relative, false},
		{"hybrid", Hybrid, false},
		{"roman", Absolute, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatterLabel(t *testing.T) {
	tests := []struct {
		name string
		mode Mode
		line int
		want string
	}{
		{"absolute", Absolute, 0, "   1"},
		{"absolute current", Absolute, 4, "   5"},
		{"relative above", Relative, 2, "   2"},
		{"relative current", Relative, 4, "   0"},
		{"relative below", Relative, 7, "   3"},
		{"hybrid current", Hybrid, 4, "   5"},
		{"hybrid other", Hybrid, 1, "   3"},
		{"filler", Hybrid, -1, "   ~"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFormatter(tt.mode, 5, 4)
			if got := f.Label(tt.line); got != tt.want {
				t.Errorf("Label(%d) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestFormatterWithoutCursor(t *testing.T) {
	f := NewFormatter(Relative, 5, -1)
	if got := f.Number(9); got != 10 {
		t.Errorf("Number without cursor = %d, want absolute 10", got)
	}
	if f.IsCurrent(0) {
		t.Error("no line should be current")
	}
}

func TestFormatterEnabled(t *testing.T) {
	if NewFormatter(Absolute, 0, 0).Enabled() {
		t.Error("zero-width gutter should be disabled")
	}
	if !NewFormatter(Absolute, 3, 0).Enabled() {
		t.Error("three-cell gutter should be enabled")
	}
}
