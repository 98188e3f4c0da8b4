// Package backend provides the character-grid surface used by the software
// rendering path, and the terminal events that drive editing.
package backend

import "github.com/dshills/glyphcore/internal/renderer/core"

// Backend is a character-grid display surface that also delivers input.
// Cell coordinates outside the surface are ignored by SetCell and read as
// empty cells by GetCell.
type Backend interface {
	// Init must be called before any other method.
	Init() error
	// Shutdown restores the terminal and makes PollEvent return EventNone.
	Shutdown()

	Size() (width, height int)
	SetCell(x, y int, cell core.Cell)
	GetCell(x, y int) core.Cell
	Clear()

	// Show presents everything drawn since the last Show.
	Show()
	ShowCursor(x, y int)
	HideCursor()

	// PollEvent blocks until the next event.
	PollEvent() Event
	// PostEvent queues a synthetic event. It never blocks; events that do
	// not fit are dropped.
	PostEvent(ev Event)
}
