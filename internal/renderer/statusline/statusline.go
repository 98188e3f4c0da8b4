// Package statusline draws the status row of the software rendering path.
package statusline

import (
	"fmt"

	"github.com/dshills/glyphcore/internal/renderer/backend"
	"github.com/dshills/glyphcore/internal/renderer/core"
)

// Severity selects how a message is styled.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

// Styles are the colors of the status row.
type Styles struct {
	Bar     core.Style
	Mode    core.Style
	Warning core.Style
	Error   core.Style
}

func (s Styles) message(sev Severity) core.Style {
	switch sev {
	case Warning:
		return s.Warning
	case Error:
		return s.Error
	}
	return s.Bar
}

// Status is the content of one status row. Line and Column are 0-based and
// shown 1-based. A non-empty Message replaces the file name.
type Status struct {
	Mode     string
	File     string
	Modified bool

	Line, Column int
	Lines        int
	FirstLine    int

	Message  string
	Severity Severity
}

// Render draws st across row of b, width cells wide: the mode badge, the
// file name or message, and the cursor position right-aligned. The
// position is dropped when the row is too narrow for it.
func Render(b backend.Backend, row, width int, st Status, styles Styles) {
	blank := core.Cell{Rune: ' ', Width: 1, Style: styles.Bar}
	for x := range width {
		b.SetCell(x, row, blank)
	}

	x := put(b, 0, row, width, " "+st.Mode+" ", styles.Mode) + 1

	pos := position(st)
	posStart := width - core.StringWidth(pos) - 1

	label, style := fileLabel(st), styles.Bar
	if st.Message != "" {
		label, style = st.Message, styles.message(st.Severity)
	}
	put(b, x, row, max(x, posStart-1), label, style)

	if posStart > x {
		put(b, posStart, row, width, pos, styles.Bar)
	}
}

func fileLabel(st Status) string {
	name := st.File
	if name == "" {
		name = "[No Name]"
	}
	if st.Modified {
		name += " [+]"
	}
	return name
}

// position formats "Ln 12, Col 5 | 40%".
func position(st Status) string {
	s := fmt.Sprintf("Ln %d, Col %d", st.Line+1, st.Column+1)
	switch {
	case st.Lines <= 0:
		return s
	case st.FirstLine <= 0:
		return s + " | Top"
	case st.Line >= st.Lines-1:
		return s + " | Bot"
	}
	return fmt.Sprintf("%s | %d%%", s, st.FirstLine*100/st.Lines)
}

// put draws str from column x, one cell per grapheme cluster, stopping
// before limit, and returns the column after the last cell drawn.
func put(b backend.Backend, x, row, limit int, str string, style core.Style) int {
	for _, c := range core.GraphemeCells(str, style) {
		if x+c.Width > limit {
			break
		}
		b.SetCell(x, row, c)
		x += c.Width
	}
	return x
}
