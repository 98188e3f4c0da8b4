package backend

import (
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/glyphcore/internal/renderer/core"
)

// Terminal is a Backend drawing to a tcell screen. Drawing calls are
// serialized; PollEvent runs without the lock so input never stalls a frame.
type Terminal struct {
	mu     sync.Mutex
	screen tcell.Screen
}

// NewTerminal opens the controlling terminal.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return &Terminal{screen: screen}, nil
}

// NewTerminalWithScreen wraps a screen that has not been initialized, such
// as a tcell.SimulationScreen.
func NewTerminalWithScreen(screen tcell.Screen) *Terminal {
	return &Terminal{screen: screen}
}

func (t *Terminal) locked(fn func(s tcell.Screen)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(t.screen)
}

func (t *Terminal) Init() error {
	var err error
	t.locked(func(s tcell.Screen) {
		if err = s.Init(); err == nil {
			s.EnablePaste()
		}
	})
	return err
}

func (t *Terminal) Shutdown() { t.locked(tcell.Screen.Fini) }
func (t *Terminal) Clear()    { t.locked(tcell.Screen.Clear) }
func (t *Terminal) Show()     { t.locked(tcell.Screen.Show) }

func (t *Terminal) HideCursor() { t.locked(tcell.Screen.HideCursor) }

func (t *Terminal) ShowCursor(x, y int) {
	t.locked(func(s tcell.Screen) { s.ShowCursor(x, y) })
}

func (t *Terminal) Size() (w, h int) {
	t.locked(func(s tcell.Screen) { w, h = s.Size() })
	return w, h
}

func (t *Terminal) SetCell(x, y int, cell core.Cell) {
	var comb []rune
	if cell.Combining != "" {
		comb = []rune(cell.Combining)
	}
	t.locked(func(s tcell.Screen) { s.SetContent(x, y, cell.Rune, comb, toTcellStyle(cell.Style)) })
}

func (t *Terminal) GetCell(x, y int) (cell core.Cell) {
	t.locked(func(s tcell.Screen) {
		r, comb, style, width := s.GetContent(x, y) //nolint:staticcheck // GetContent is the correct API
		cell = core.Cell{Rune: r, Combining: string(comb), Width: width, Style: fromTcellStyle(style)}
	})
	return cell
}

func (t *Terminal) PollEvent() Event {
	return fromTcellEvent(t.screen.PollEvent())
}

func (t *Terminal) PostEvent(ev Event) {
	var te tcell.Event
	switch ev.Type {
	case EventKey:
		te = tcell.NewEventKey(toTcellKey(ev.Key), ev.Rune, toTcellMod(ev.Mod))
	case EventInterrupt:
		te = tcell.NewEventInterrupt(nil)
	default:
		return
	}
	_ = t.screen.PostEvent(te) // full queue drops the event
}

var attrTable = []struct {
	ours  core.Attribute
	tcell tcell.AttrMask
}{
	{core.AttrBold, tcell.AttrBold},
	{core.AttrDim, tcell.AttrDim},
	{core.AttrItalic, tcell.AttrItalic},
	{core.AttrUnderline, tcell.AttrUnderline},
}

var modTable = []struct {
	ours  ModMask
	tcell tcell.ModMask
}{
	{ModShift, tcell.ModShift},
	{ModCtrl, tcell.ModCtrl},
	{ModAlt, tcell.ModAlt},
	{ModMeta, tcell.ModMeta},
}

// keyTable lists each editing key once with its primary tcell key; aliases
// only map inward.
var keyTable = []struct {
	ours  Key
	tcell tcell.Key
}{
	{KeyRune, tcell.KeyRune},
	{KeyEscape, tcell.KeyEscape},
	{KeyEnter, tcell.KeyEnter},
	{KeyTab, tcell.KeyTab},
	{KeyBackspace, tcell.KeyBackspace2},
	{KeyDelete, tcell.KeyDelete},
	{KeyHome, tcell.KeyHome},
	{KeyEnd, tcell.KeyEnd},
	{KeyPageUp, tcell.KeyPgUp},
	{KeyPageDown, tcell.KeyPgDn},
	{KeyUp, tcell.KeyUp},
	{KeyDown, tcell.KeyDown},
	{KeyLeft, tcell.KeyLeft},
	{KeyRight, tcell.KeyRight},
	{KeyCtrlA, tcell.KeyCtrlA},
	{KeyCtrlC, tcell.KeyCtrlC},
	{KeyCtrlQ, tcell.KeyCtrlQ},
	{KeyCtrlS, tcell.KeyCtrlS},
	{KeyCtrlY, tcell.KeyCtrlY},
	{KeyCtrlZ, tcell.KeyCtrlZ},
}

var keyAliases = map[tcell.Key]Key{
	tcell.KeyBackspace: KeyBackspace,
}

// toTcellStyle maps a cell style onto tcell. Transparent colors become the
// terminal default.
func toTcellStyle(s core.Style) tcell.Style {
	style := tcell.StyleDefault
	if c := s.Foreground; c.A != 0 {
		style = style.Foreground(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)))
	}
	if c := s.Background; c.A != 0 {
		style = style.Background(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)))
	}
	var attrs tcell.AttrMask
	for _, a := range attrTable {
		if s.Attributes.Has(a.ours) {
			attrs |= a.tcell
		}
	}
	style = style.Attributes(attrs)
	if s.Attributes.Has(core.AttrUnderline) {
		style = style.Underline(true)
	}
	return style
}

func fromTcellStyle(ts tcell.Style) core.Style {
	fg, bg, attrs := ts.Decompose()
	s := core.Style{Foreground: fromTcellColor(fg), Background: fromTcellColor(bg)}
	for _, a := range attrTable {
		if attrs&a.tcell != 0 {
			s.Attributes |= a.ours
		}
	}
	return s
}

func fromTcellColor(c tcell.Color) core.Color {
	if c == tcell.ColorDefault {
		return core.ColorTransparent
	}
	r, g, b := c.RGB()
	return core.RGB(uint8(r), uint8(g), uint8(b))
}

func fromTcellEvent(ev tcell.Event) Event {
	switch e := ev.(type) {
	case *tcell.EventKey:
		return Event{Type: EventKey, Key: fromTcellKey(e.Key()), Rune: e.Rune(), Mod: fromTcellMod(e.Modifiers())}
	case *tcell.EventResize:
		w, h := e.Size()
		return Event{Type: EventResize, Width: w, Height: h}
	case *tcell.EventInterrupt:
		return Event{Type: EventInterrupt}
	case nil:
		// Fini was called.
		return Event{Type: EventNone}
	default:
		return Event{Type: EventOther}
	}
}

func fromTcellKey(k tcell.Key) Key {
	if key, ok := keyAliases[k]; ok {
		return key
	}
	for _, e := range keyTable {
		if e.tcell == k {
			return e.ours
		}
	}
	return KeyNone
}

func toTcellKey(k Key) tcell.Key {
	for _, e := range keyTable {
		if e.ours == k {
			return e.tcell
		}
	}
	return tcell.KeyRune
}

func fromTcellMod(m tcell.ModMask) ModMask {
	var out ModMask
	for _, e := range modTable {
		if m&e.tcell != 0 {
			out |= e.ours
		}
	}
	return out
}

func toTcellMod(m ModMask) tcell.ModMask {
	var out tcell.ModMask
	for _, e := range modTable {
		if m.Has(e.ours) {
			out |= e.tcell
		}
	}
	return out
}
