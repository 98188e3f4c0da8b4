package renderer

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/glyphcore/internal/engine/text"
	"github.com/dshills/glyphcore/internal/logging"
	"github.com/dshills/glyphcore/internal/renderer/backend"
	"github.com/dshills/glyphcore/internal/renderer/core"
	"github.com/dshills/glyphcore/internal/renderer/gutter"
	"github.com/dshills/glyphcore/internal/renderer/highlight"
	"github.com/dshills/glyphcore/internal/renderer/layout"
	"github.com/dshills/glyphcore/internal/renderer/selection"
	"github.com/dshills/glyphcore/internal/renderer/statusline"
)

// TextRenderer draws frames as cells on a backend.Backend. Viewports passed
// to it are measured in cells: CellSize is always 1x1.
//
// The backend is not owned; Close does not shut it down.
type TextRenderer struct {
	mu sync.Mutex

	backend backend.Backend
	cfg     Config
	lines   *layout.Cache
	theme   *highlight.Theme
	styles  statusline.Styles
	logger  *logging.Logger
	now     func() time.Time
	tick    time.Duration

	stats               Stats
	hardwareUnavailable bool
	closed              bool
}

// NewTextRenderer creates a software renderer over b. The last row of b
// is used for the status line.
func NewTextRenderer(b backend.Backend, cfg Config, deps Deps) *TextRenderer {
	deps.fill()
	t := &TextRenderer{
		backend: b,
		cfg:     cfg,
		lines:   layout.NewCache(layout.NewEngine(cfg.TabWidth), lineCacheSize),
		theme:   deps.Theme,
		logger:  deps.Logger.WithComponent("text-renderer"),
		now:     deps.Now,
		tick:    cfg.Budget(),
		styles:  statusStyles(deps.Theme),
	}
	t.stats = Stats{Session: uuid.New(), Mode: ModeText, Budget: cfg.Budget()}
	return t
}

func statusStyles(theme *highlight.Theme) statusline.Styles {
	bar := core.Style{Foreground: theme.Foreground, Background: theme.Gutter}
	return statusline.Styles{
		Bar:     bar,
		Mode:    core.Style{Foreground: theme.Background, Background: theme.Cursor, Attributes: core.AttrBold},
		Warning: bar.WithAttributes(core.AttrBold),
		Error:   core.Style{Foreground: theme.Color(highlight.KindInvalid), Background: theme.Gutter, Attributes: core.AttrBold},
	}
}

// Render implements FrameProducer. The software path never skips a frame.
func (t *TextRenderer) Render(in FrameInput) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return false
	}
	start := t.now()
	t.stats.Elapsed += t.tick
	t.stats.BlinkPhase += t.cfg.BlinkStep

	width, height := t.backend.Size()
	rows := max(height-1, 0)
	vp := in.Viewport

	if in.Snapshot == nil {
		t.backend.Clear()
		t.backend.HideCursor()
	} else {
		lineCount := in.Snapshot.LineCount()
		current := -1
		if len(in.Cursors) > 0 {
			current = in.Cursors[0].Line
		}
		numbers := gutter.NewFormatter(t.cfg.LineNumbers, vp.GutterCells(), current)
		sels := selection.Merge(in.Selections)
		for row := 0; row < rows; row++ {
			line := vp.FirstLine + row
			if line < lineCount {
				t.drawLineLocked(in, sels, numbers, line, row, width)
			} else {
				t.drawFillerLocked(numbers, row, width)
			}
		}
		t.placeCursorLocked(in, rows, width, numbers.Cells())
	}

	if rows < height {
		t.drawStatusLocked(in, height-1, width)
	}
	t.backend.Show()

	t.stats.Frames++
	t.stats.LastFrame = t.now().Sub(start)
	if t.stats.LastFrame > t.stats.Budget {
		t.stats.Overruns++
	}
	return true
}

func (t *TextRenderer) drawLineLocked(in FrameInput, sels []text.Range, numbers gutter.Formatter, line, row, width int) {
	left := numbers.Cells()
	if left > 0 {
		fg := t.theme.LineNumber
		if numbers.IsCurrent(line) {
			fg = t.theme.Foreground
		}
		t.drawGutterLocked(row, left, numbers.Label(line), core.Style{Foreground: fg, Background: t.theme.Gutter})
	}

	ll := t.lines.Get(line, in.Snapshot.LineText(line))
	spans := selection.OnLine(sels, line, ll)
	base := core.Style{Foreground: t.theme.Foreground, Background: t.theme.Background}

	for x := left; x < width; x++ {
		vis := in.Viewport.LeftColumn + x - left
		cell := core.Cell{Rune: ' ', Width: 1, Style: base}

		if vis < len(ll.Cells) {
			lc := ll.Cells[vis]
			if lc.IsContinuation() {
				// The wide rune to the left covers this cell.
				if x > left {
					continue
				}
			} else {
				kind, _ := in.Tokens.At(text.Pos(line, lc.Byte))
				cell.Rune, cell.Width = lc.Rune, lc.Width
				cell.Style.Foreground = t.theme.Color(kind)
			}
		}
		if selection.Selected(spans, vis) {
			cell.Style.Background = t.theme.Selection
		}
		t.backend.SetCell(x, row, cell)
	}
}

func (t *TextRenderer) drawFillerLocked(numbers gutter.Formatter, row, width int) {
	left := numbers.Cells()
	if left > 0 {
		t.drawGutterLocked(row, left, numbers.Label(-1), core.Style{Foreground: t.theme.LineNumber, Background: t.theme.Gutter})
	}
	empty := core.Cell{Rune: ' ', Width: 1, Style: core.Style{Background: t.theme.Background}}
	for x := left; x < width; x++ {
		t.backend.SetCell(x, row, empty)
	}
}

func (t *TextRenderer) drawGutterLocked(row, cells int, label string, style core.Style) {
	for x := 0; x < cells; x++ {
		r := ' '
		if x < len(label) {
			r = rune(label[x])
		}
		t.backend.SetCell(x, row, core.Cell{Rune: r, Width: 1, Style: style})
	}
}

func (t *TextRenderer) placeCursorLocked(in FrameInput, rows, width, left int) {
	if len(in.Cursors) == 0 {
		t.backend.HideCursor()
		return
	}
	c := in.Cursors[0]
	row := c.Line - in.Viewport.FirstLine
	if row < 0 || row >= rows || c.Line >= in.Snapshot.LineCount() {
		t.backend.HideCursor()
		return
	}
	ll := t.lines.Get(c.Line, in.Snapshot.LineText(c.Line))
	x := ll.VisualColumn(c.Column) - in.Viewport.LeftColumn + left
	if x < left || x >= width {
		t.backend.HideCursor()
		return
	}
	t.backend.ShowCursor(x, row)
}

func (t *TextRenderer) drawStatusLocked(in FrameInput, row, width int) {
	st := statusline.Status{
		Mode:     strings.ToUpper(ModeText.String()),
		File:     in.Status.File,
		Modified: in.Status.Modified,
		Message:  in.Status.Message,
	}
	if st.Message == "" && t.hardwareUnavailable {
		st.Message, st.Severity = "hardware rendering unavailable", statusline.Warning
	}
	if len(in.Cursors) > 0 {
		st.Line, st.Column = in.Cursors[0].Line, in.Cursors[0].Column
	}
	if in.Snapshot != nil {
		st.Lines, st.FirstLine = in.Snapshot.LineCount(), in.Viewport.FirstLine
	}
	statusline.Render(t.backend, row, width, st, t.styles)
}

// Resize implements FrameProducer. The backend tracks its own size, so
// this only invalidates cached layouts.
func (t *TextRenderer) Resize(size core.Size) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cfg.Size = size
	t.lines.InvalidateAll()
}

// InvalidateGlyphCache implements FrameProducer. The text path has no
// atlas; it drops cached layouts.
func (t *TextRenderer) InvalidateGlyphCache(string) {
	t.lines.InvalidateAll()
}

// SetTheme implements FrameProducer.
func (t *TextRenderer) SetTheme(theme *highlight.Theme) {
	if theme == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.theme = theme
	t.styles = statusStyles(theme)
}

// CellSize implements FrameProducer.
func (t *TextRenderer) CellSize() (width, height float32) {
	return 1, 1
}

// Mode implements FrameProducer.
func (t *TextRenderer) Mode() Mode {
	return ModeText
}

// Stats implements FrameProducer.
func (t *TextRenderer) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.stats
	s.HardwareUnavailable = t.hardwareUnavailable
	return s
}

// Close implements FrameProducer.
func (t *TextRenderer) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}
