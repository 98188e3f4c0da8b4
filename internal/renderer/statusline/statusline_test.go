package statusline

import (
	"strings"
	"testing"

	"github.com/dshills/glyphcore/internal/renderer/backend"
	"github.com/dshills/glyphcore/internal/renderer/core"
)

func newGrid(t *testing.T, w, h int) *backend.Grid {
	t.Helper()
	b := backend.NewGrid(w, h)
	if err := b.Init(); err != nil {
		t.Fatal(err)
	}
	return b
}

func rowText(b *backend.Grid, row, width int) string {
	var sb strings.Builder
	for x := 0; x < width; x++ {
		sb.WriteString(b.GetCell(x, row).String())
	}
	return sb.String()
}

func TestRender(t *testing.T) {
	styles := Styles{
		Bar:   core.NewStyle(core.ColorWhite),
		Mode:  core.NewStyle(core.ColorBlack).WithAttributes(core.AttrBold),
		Error: core.NewStyle(core.RGB(255, 0, 0)),
	}

	tests := []struct {
		name string
		st   Status
		want []string
	}{
		{
			name: "no name",
			st:   Status{Mode: "TEXT"},
			want: []string{" TEXT ", "[No Name]", "Ln 1, Col 1"},
		},
		{
			name: "modified file",
			st:   Status{Mode: "TEXT", File: "main.go", Modified: true, Line: 9, Column: 4, Lines: 100},
			want: []string{"main.go [+]", "Ln 10, Col 5 | Top"},
		},
		{
			name: "scrolled",
			st:   Status{Line: 50, Lines: 200, FirstLine: 50},
			want: []string{"Ln 51, Col 1 | 25%"},
		},
		{
			name: "last line",
			st:   Status{Line: 199, Lines: 200, FirstLine: 180},
			want: []string{"Ln 200, Col 1 | Bot"},
		},
		{
			name: "error message",
			st:   Status{File: "main.go", Message: "save failed", Severity: Error},
			want: []string{"save failed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newGrid(t, 60, 2)
			Render(b, 1, 60, tt.st, styles)

			got := rowText(b, 1, 60)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("row %q missing %q", got, w)
				}
			}
		})
	}
}

func TestRenderMessageStyle(t *testing.T) {
	red := core.NewStyle(core.RGB(255, 0, 0))
	b := newGrid(t, 40, 1)
	Render(b, 0, 40, Status{Mode: "TEXT", Message: "bad", Severity: Error}, Styles{Error: red})

	// " TEXT " and one separator cell precede the message.
	if got := b.GetCell(7, 0); got.Rune != 'b' || got.Style != red {
		t.Errorf("message cell = %+v", got)
	}

	Render(b, 0, 40, Status{Mode: "TEXT"}, Styles{Error: red})
	if got := rowText(b, 0, 40); strings.Contains(got, "bad") {
		t.Errorf("cleared message still shown: %q", got)
	}
}

func TestRenderNarrow(t *testing.T) {
	b := newGrid(t, 8, 1)
	Render(b, 0, 8, Status{Mode: "TEXT", File: "a-very-long-file-name.go"}, Styles{})
	if got := rowText(b, 0, 8); !strings.HasPrefix(got, " TEXT ") {
		t.Errorf("row = %q", got)
	}
}

func TestRenderCombiningMarks(t *testing.T) {
	tests := []struct {
		name  string
		file  string
		start int
		cells []core.Cell
		want  string
	}{
		{
			name:  "decomposed accent composes",
			file:  "cafe\u0301.go",
			start: 9,
			cells: []core.Cell{{Rune: 'f', Width: 1}, {Rune: 'é', Width: 1}, {Rune: '.', Width: 1}},
			want:  "café.go",
		},
		{
			name:  "mark without precomposed form",
			file:  "q\u0307x",
			start: 7,
			cells: []core.Cell{{Rune: 'q', Combining: "\u0307", Width: 1}, {Rune: 'x', Width: 1}},
			want:  "q\u0307x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newGrid(t, 40, 1)
			Render(b, 0, 40, Status{Mode: "TEXT", File: tt.file}, Styles{})

			got := rowText(b, 0, 40)
			if !strings.Contains(got, tt.want) {
				t.Errorf("row %q missing %q", got, tt.want)
			}
			if !strings.HasSuffix(got, "Ln 1, Col 1 ") {
				t.Errorf("position moved: %q", got)
			}

			for i, want := range tt.cells {
				if c := b.GetCell(tt.start+i, 0); c != want {
					t.Errorf("cell %d = %+v, want %+v", tt.start+i, c, want)
				}
			}
		})
	}
}
