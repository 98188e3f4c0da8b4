package app

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/dshills/glyphcore/internal/engine"
	"github.com/dshills/glyphcore/internal/engine/text"
	"github.com/dshills/glyphcore/internal/renderer"
	"github.com/dshills/glyphcore/internal/renderer/backend"
	"github.com/dshills/glyphcore/internal/renderer/core"
	"github.com/dshills/glyphcore/internal/renderer/gpu/offscreen"
	"github.com/dshills/glyphcore/internal/renderer/highlight"
	"github.com/dshills/glyphcore/internal/renderer/viewport"
	"github.com/dshills/glyphcore/internal/syntax"
)

// Run drives the display loop until ctx is done, Stop is called or a quit
// key is pressed. Input is read from the backend on a separate goroutine
// and applied between ticks.
func (a *Application) Run(ctx context.Context) error {
	if !a.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer a.running.Store(false)

	if a.backend != nil {
		a.inputWg.Add(1)
		go a.pollInput(a.backend)
	}

	ticker := time.NewTicker(a.producer.Stats().Budget)
	defer ticker.Stop()

	a.Frame()
	for {
		select {
		case <-ctx.Done():
			return nil

		case <-a.quit:
			return nil

		case ev := <-a.events:
			start := time.Now()
			err := a.HandleEvent(ev)
			a.metrics.RecordInput(time.Since(start))
			if errors.Is(err, ErrQuit) {
				return nil
			}

		case <-ticker.C:
			a.Frame()
		}
	}
}

// pollInput forwards backend events to the loop until the backend is shut
// down or the application stops.
func (a *Application) pollInput(b backend.Backend) {
	defer a.inputWg.Done()
	for {
		ev := b.PollEvent()
		switch ev.Type {
		case backend.EventNone:
			return
		case backend.EventOther:
			continue
		}
		select {
		case a.events <- ev:
		case <-a.quit:
			return
		default:
			a.metrics.RecordInputDropped()
		}
	}
}

// RunHeadless renders frames ticks back to back without input. When out is
// non-nil the last frame is written to it as a PNG, which requires the
// offscreen device.
func (a *Application) RunHeadless(ctx context.Context, frames int, out io.Writer) error {
	for i := 0; i < frames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		a.Frame()
	}
	if out == nil {
		return nil
	}

	ar, ok := a.producer.(*renderer.AtlasRenderer)
	if !ok {
		return ErrNoSnapshot
	}
	dev, ok := ar.Device().(*offscreen.Device)
	if !ok {
		return ErrNoSnapshot
	}
	dev.Wait()
	return dev.WritePNG(out)
}

// Frame produces one frame from the current document state and reports
// whether it was presented.
func (a *Application) Frame() bool {
	start := time.Now()
	in := a.frameInput()
	ok := a.producer.Render(in)
	a.metrics.RecordFrame(time.Since(start), ok)
	return ok
}

// frameInput snapshots the document and derives everything the producer
// needs for one frame.
func (a *Application) frameInput() renderer.FrameInput {
	store := a.doc.Store
	snap := store.Snapshot()
	cursors := store.Cursors()
	selections := store.Selections()

	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.tokensValid || snap.Revision() != a.tokenRev {
		a.refreshTokensLocked(snap)
	}
	a.vp = a.viewportLocked(snap, cursors)

	return renderer.FrameInput{
		Viewport:   a.vp,
		Snapshot:   snap,
		Tokens:     a.tokens,
		Cursors:    cursors,
		Selections: selections,
		Status: renderer.Status{
			File:     a.doc.Name,
			Modified: a.doc.IsModified(),
			Message:  a.message,
		},
	}
}

func (a *Application) refreshTokensLocked(snap *engine.Snapshot) {
	start := time.Now()
	tokens, err := a.supplier.Tokens(snap.Text(), a.doc.Language)
	a.metrics.RecordHighlight(time.Since(start), err)

	switch {
	case err == nil:
	case errors.Is(err, syntax.ErrUnsupportedLanguage):
		a.logger.Debug("no highlighting for %q", a.doc.Language)
	default:
		a.logger.Warn("highlighting revision %d: %v", snap.Revision(), err)
	}
	a.tokens = highlight.NewIndex(tokens)
	a.tokenRev = snap.Revision()
	a.tokensValid = true
}

// viewportLocked builds the viewport for the current surface, keeps the
// previous scroll position and scrolls just enough to show the primary
// cursor.
func (a *Application) viewportLocked(snap *engine.Snapshot, cursors []text.Position) viewport.Viewport {
	cw, lh := a.producer.CellSize()
	vp := viewport.New(a.surfaceSizeLocked(), lh, cw).
		WithGutter(snap.LineCount(), a.cfg.Renderer.GutterDigits)
	vp.FirstLine, vp.LeftColumn = a.vp.FirstLine, a.vp.LeftColumn

	if len(cursors) > 0 {
		c := cursors[0]
		col := a.layouts.Layout(snap.LineText(c.Line)).VisualColumn(c.Column)
		vp = vp.Reveal(c.Line, col, snap.LineCount(), viewport.DefaultMargins())
	}
	return vp
}

// surfaceSizeLocked returns the drawable size in the producer's units: cells
// without the status row for the text path, pixels otherwise.
func (a *Application) surfaceSizeLocked() core.Size {
	if a.producer.Mode() == renderer.ModeText && a.backend != nil {
		w, h := a.backend.Size()
		return core.Size{Width: w, Height: max(h-1, 0)}
	}
	return a.pixelSize
}

// HandleEvent applies one input event. It returns ErrQuit when the event
// asks the application to exit.
func (a *Application) HandleEvent(ev backend.Event) error {
	switch ev.Type {
	case backend.EventResize:
		a.resize(ev.Width, ev.Height)
	case backend.EventKey:
		return a.handleKey(ev)
	}
	return nil
}

// resize handles a terminal resize given in cells.
func (a *Application) resize(width, height int) {
	size := core.Size{Width: width, Height: height}
	if a.producer.Mode() == renderer.ModeAtlas {
		cw, lh := a.producer.CellSize()
		size = core.Size{Width: int(float32(width) * cw), Height: int(float32(height) * lh)}
		a.mu.Lock()
		a.pixelSize = size
		a.mu.Unlock()
	}
	a.producer.Resize(size)
}

// handleKey maps a key press onto a TextStore operation.
func (a *Application) handleKey(ev backend.Event) error {
	store := a.doc.Store

	switch ev.Key {
	case backend.KeyCtrlQ, backend.KeyCtrlC:
		return ErrQuit
	case backend.KeyCtrlS:
		a.save()
		return nil
	}

	a.mu.Lock()
	a.message = ""
	rows := max(1, a.vp.Rows()-1)
	a.mu.Unlock()

	switch ev.Key {
	case backend.KeyRune:
		a.insert(string(ev.Rune))
	case backend.KeyEnter:
		a.insert("\n")
	case backend.KeyTab:
		a.insert("\t")
	case backend.KeyBackspace:
		store.DeleteBackward()
	case backend.KeyDelete:
		store.DeleteForward()
	case backend.KeyUp:
		store.MoveCursor(-1, 0)
	case backend.KeyDown:
		store.MoveCursor(1, 0)
	case backend.KeyLeft:
		store.MoveCursor(0, -1)
	case backend.KeyRight:
		store.MoveCursor(0, 1)
	case backend.KeyPageUp:
		store.MoveCursor(-rows, 0)
	case backend.KeyPageDown:
		store.MoveCursor(rows, 0)
	case backend.KeyHome:
		c := store.Cursor()
		store.SetCursor(text.Pos(c.Line, 0))
	case backend.KeyEnd:
		c := store.Cursor()
		store.SetCursor(text.Pos(c.Line, len(store.LineText(c.Line))))
	case backend.KeyCtrlZ:
		if _, ok := store.Undo(); !ok {
			a.setMessage("nothing to undo")
		}
	case backend.KeyCtrlY:
		if _, ok := store.Redo(); !ok {
			a.setMessage("nothing to redo")
		}
	case backend.KeyCtrlA:
		store.SelectAll()
	case backend.KeyEscape:
		store.ClearSelections()
	}
	return nil
}

func (a *Application) insert(s string) {
	if _, err := a.doc.Store.InsertAtCursor(s); err != nil {
		a.logger.Warn("insert rejected: %v", err)
		a.setMessage("%v", err)
	}
}

func (a *Application) save() {
	err := a.doc.Save()
	switch {
	case err == nil:
		a.setMessage("wrote %s", a.doc.Name)
	case errors.Is(err, ErrNoFilePath):
		a.setMessage("no file name")
	default:
		a.logger.Error("save failed: %v", err)
		a.setMessage("save failed: %v", err)
	}
}
