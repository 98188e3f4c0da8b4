package gutter

import (
	"fmt"
	"strconv"
)

// Mode defines how line numbers are displayed.
type Mode uint8

const (
	// Absolute shows absolute line numbers (1, 2, 3, ...).
	Absolute Mode = iota

	// Relative shows the distance from the cursor line, 0 on the cursor line.
	Relative

	// Hybrid shows the absolute number on the cursor line and relative
	// numbers elsewhere.
	Hybrid
)

// Modes lists the accepted mode names in Mode order.
var Modes = []string{"absolute", "relative", "hybrid"}

// String returns the mode name.
func (m Mode) String() string {
	if int(m) < len(Modes) {
		return Modes[m]
	}
	return "unknown"
}

// ParseMode parses a mode name. The empty string selects Absolute.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return Absolute, nil
	}
	for i, name := range Modes {
		if name == s {
			return Mode(i), nil
		}
	}
	return Absolute, fmt.Errorf("gutter: unknown line number mode %q", s)
}

// Filler is the label of rows past the end of the document.
const Filler = "~"

// Formatter formats the line numbers of one frame.
type Formatter struct {
	mode    Mode
	cells   int
	current int
}

// NewFormatter creates a formatter for a gutter cells wide. current is the
// 0-based cursor line, or -1 when there is none.
func NewFormatter(mode Mode, cells, current int) Formatter {
	return Formatter{mode: mode, cells: max(cells, 0), current: current}
}

// Cells returns the gutter width in cells.
func (f Formatter) Cells() int {
	return f.cells
}

// Enabled reports whether the gutter has room for a label.
func (f Formatter) Enabled() bool {
	return f.cells > 1
}

// Label returns the number of the 0-based line right-aligned in all but
// the last gutter cell. A negative line yields the filler label.
func (f Formatter) Label(line int) string {
	s := Filler
	if line >= 0 {
		s = strconv.Itoa(f.Number(line))
	}
	return fmt.Sprintf("%*s", max(f.cells-1, 0), s)
}

// Number returns the number displayed for a 0-based line.
func (f Formatter) Number(line int) int {
	if f.current < 0 {
		return line + 1
	}
	switch f.mode {
	case Relative:
		return absDiff(line, f.current)
	case Hybrid:
		if line == f.current {
			return line + 1
		}
		return absDiff(line, f.current)
	default:
		return line + 1
	}
}

// IsCurrent reports whether line holds the primary cursor.
func (f Formatter) IsCurrent(line int) bool {
	return line == f.current
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
