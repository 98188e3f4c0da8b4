package backend

import (
	"strings"
	"sync"

	"github.com/dshills/glyphcore/internal/renderer/core"
)

// Grid is an in-memory Backend. Tests read back what a renderer drew with
// LineString and CursorPosition.
type Grid struct {
	width, height int
	cells         []core.Cell

	cursorX, cursorY int
	cursorShown      bool
	shows            int

	events   chan Event
	done     chan struct{}
	shutdown sync.Once
}

// NewGrid creates a width x height grid. It holds no cells until Init.
func NewGrid(width, height int) *Grid {
	return &Grid{
		width:  width,
		height: height,
		events: make(chan Event, 100),
		done:   make(chan struct{}),
	}
}

func (g *Grid) Init() error {
	g.cells = make([]core.Cell, g.width*g.height)
	g.Clear()
	return nil
}

func (g *Grid) Shutdown() {
	g.shutdown.Do(func() { close(g.done) })
}

func (g *Grid) Size() (int, int) {
	return g.width, g.height
}

func (g *Grid) index(x, y int) (int, bool) {
	if x < 0 || x >= g.width || y < 0 || y >= g.height || g.cells == nil {
		return 0, false
	}
	return y*g.width + x, true
}

func (g *Grid) SetCell(x, y int, cell core.Cell) {
	if i, ok := g.index(x, y); ok {
		g.cells[i] = cell
	}
}

func (g *Grid) GetCell(x, y int) core.Cell {
	if i, ok := g.index(x, y); ok {
		return g.cells[i]
	}
	return core.EmptyCell()
}

func (g *Grid) Clear() {
	empty := core.EmptyCell()
	for i := range g.cells {
		g.cells[i] = empty
	}
}

func (g *Grid) Show() { g.shows++ }

func (g *Grid) ShowCursor(x, y int) {
	g.cursorX, g.cursorY, g.cursorShown = x, y, true
}

func (g *Grid) HideCursor() { g.cursorShown = false }

func (g *Grid) PollEvent() Event {
	select {
	case ev := <-g.events:
		return ev
	case <-g.done:
		return Event{Type: EventNone}
	}
}

func (g *Grid) PostEvent(ev Event) {
	select {
	case g.events <- ev:
	default:
	}
}

// CursorPosition returns where the cursor was last shown and whether it is
// visible.
func (g *Grid) CursorPosition() (x, y int, visible bool) {
	return g.cursorX, g.cursorY, g.cursorShown
}

// Shows returns how many times Show was called.
func (g *Grid) Shows() int {
	return g.shows
}

// LineString returns row y with trailing blanks trimmed. Continuation
// cells of wide runes are skipped.
func (g *Grid) LineString(y int) string {
	start, ok := g.index(0, y)
	if !ok {
		return ""
	}
	var sb strings.Builder
	for _, c := range g.cells[start : start+g.width] {
		if c.Width == 0 && c.Rune == 0 {
			continue
		}
		sb.WriteString(c.String())
	}
	return strings.TrimRight(sb.String(), " ")
}
