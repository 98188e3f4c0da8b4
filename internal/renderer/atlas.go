package renderer

import (
	"errors"
	"io"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/glyphcore/internal/engine/text"
	"github.com/dshills/glyphcore/internal/logging"
	"github.com/dshills/glyphcore/internal/renderer/core"
	"github.com/dshills/glyphcore/internal/renderer/glyph"
	"github.com/dshills/glyphcore/internal/renderer/gpu"
	"github.com/dshills/glyphcore/internal/renderer/gutter"
	"github.com/dshills/glyphcore/internal/renderer/highlight"
	"github.com/dshills/glyphcore/internal/renderer/layout"
	"github.com/dshills/glyphcore/internal/renderer/selection"
	"github.com/dshills/glyphcore/internal/renderer/viewport"
)

const (
	// GlyphPipeline is the name of the pipeline every frame is drawn with.
	GlyphPipeline = "glyph"

	// CursorWidth is the width of the cursor bar in pixels.
	CursorWidth = 2

	lineCacheSize = 4096
)

// MetricsSource is implemented by rasterizers that know their font metrics.
type MetricsSource interface {
	Metrics(font string, size float32) (glyph.Metrics, error)
}

// BlinkOpacity returns the cursor opacity in [0, 1] at a blink phase.
func BlinkOpacity(phase float64) float64 {
	return 0.5 + 0.5*math.Sin(phase)
}

// AtlasRenderer draws frames on a gpu.Device using a glyph atlas.
type AtlasRenderer struct {
	mu sync.Mutex

	cfg      Config
	device   gpu.Device
	pipeline gpu.Pipeline
	cache    *glyph.Cache
	raster   glyph.Rasterizer
	closer   io.Closer
	lines    *layout.Cache
	theme    *highlight.Theme
	logger   *logging.Logger
	now      func() time.Time

	metrics  glyph.Metrics
	baseline float32
	tick     time.Duration
	timeout  time.Duration

	cmd *gpu.CommandBuffer
	// xs holds the x position of each visual column of the line being drawn.
	xs []float32

	stats  Stats
	closed bool
}

// NewAtlasRenderer builds the glyph pipeline and atlas on dev. On success
// the renderer owns dev and closes it in Close.
func NewAtlasRenderer(dev gpu.Device, cfg Config, deps Deps) (*AtlasRenderer, error) {
	deps.fill()
	logger := deps.Logger.WithComponent("atlas-renderer")

	pipeline, err := dev.NewPipeline(gpu.PipelineDesc{Name: GlyphPipeline, Blend: gpu.BlendOver, Sampled: true})
	if err != nil {
		var perr *gpu.PipelineError
		if !errors.As(err, &perr) {
			err = &gpu.PipelineError{Pipeline: GlyphPipeline, Stage: "create", Err: err}
		}
		return nil, err
	}

	if cfg.FontSize <= 0 {
		cfg.FontSize = 14
	}
	if cfg.Font == "" {
		cfg.Font = glyph.FontGoMono
	}

	r := &AtlasRenderer{
		cfg:      cfg,
		device:   dev,
		pipeline: pipeline,
		raster:   deps.Rasterizer,
		lines:    layout.NewCache(layout.NewEngine(cfg.TabWidth), lineCacheSize),
		theme:    deps.Theme,
		logger:   logger,
		now:      deps.Now,
		tick:     cfg.Budget(),
		timeout:  cfg.DrawableTimeout,
		cmd:      gpu.NewCommandBuffer(),
	}
	if r.timeout <= 0 {
		r.timeout = cfg.Budget() / 4
	}
	if r.raster == nil {
		fr := glyph.NewFaceRasterizer(cfg.DPI)
		r.raster, r.closer = fr, fr
	}
	r.metrics = resolveMetrics(r.raster, cfg)
	r.baseline = (r.metrics.LineHeight-(r.metrics.Ascent+r.metrics.Descent))/2 + r.metrics.Ascent

	opts := []glyph.Option{glyph.WithLogger(deps.Logger)}
	if cfg.AtlasInitialSize > 0 {
		opts = append(opts, glyph.WithAtlasSize(cfg.AtlasInitialSize, max(cfg.AtlasMaxSize, cfg.AtlasInitialSize)))
	}
	if cfg.Prewarm {
		opts = append(opts, glyph.WithPrewarm(cfg.Font, cfg.FontSize))
	}
	r.cache, err = glyph.New(dev, r.raster, opts...)
	if err != nil {
		r.closeRaster()
		return nil, err
	}

	r.stats = Stats{Session: uuid.New(), Mode: ModeAtlas, Budget: cfg.Budget()}
	logger.Debug("session %s: cell %.1fx%.1f, atlas %d", r.stats.Session, r.metrics.Advance, r.metrics.LineHeight, r.cache.Size())
	return r, nil
}

// resolveMetrics asks the rasterizer for font metrics and falls back to
// proportions of the font size.
func resolveMetrics(raster glyph.Rasterizer, cfg Config) glyph.Metrics {
	size := cfg.FontSize
	m := glyph.Metrics{Ascent: size * 0.8, Descent: size * 0.2, LineHeight: size, Advance: size * 0.6}
	if src, ok := raster.(MetricsSource); ok {
		if got, err := src.Metrics(cfg.Font, size); err == nil {
			m = got
		}
	}
	if m.Advance <= 0 {
		m.Advance = size * 0.6
	}
	factor := max(cfg.LineHeight, 1)
	m.LineHeight = float32(math.Ceil(float64(m.LineHeight) * factor))
	return m
}

// Render implements FrameProducer.
func (r *AtlasRenderer) Render(in FrameInput) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return false
	}
	start := r.now()
	r.stats.Elapsed += r.tick
	r.stats.BlinkPhase += r.cfg.BlinkStep

	// Growth or eviction moves glyphs already placed in this frame, so
	// the frame is built once more against the settled atlas.
	for attempt := 0; ; attempt++ {
		gen := r.atlasGeneration()
		r.buildLocked(in)
		if r.atlasGeneration() == gen {
			break
		}
		if attempt == 1 {
			r.logger.Debug("atlas still changing after rebuild, submitting anyway")
			break
		}
	}
	r.cmd.Texture = r.cache.Texture()

	d, err := r.device.NextDrawable(r.timeout)
	if err != nil {
		if errors.Is(err, gpu.ErrDrawableTimeout) {
			r.stats.DrawableTimeouts++
		}
		r.skipLocked(start, err)
		return false
	}
	if err := r.device.Submit(d, r.pipeline, r.cmd); err != nil {
		r.stats.SubmitErrors++
		r.skipLocked(start, err)
		return false
	}

	r.stats.Frames++
	r.finishLocked(start)
	return true
}

func (r *AtlasRenderer) skipLocked(start time.Time, err error) {
	r.stats.Skipped++
	r.stats.LastError = err
	r.logger.Debug("frame skipped: %v", err)
	r.finishLocked(start)
}

func (r *AtlasRenderer) finishLocked(start time.Time) {
	r.stats.LastFrame = r.now().Sub(start)
	if r.stats.LastFrame > r.stats.Budget {
		r.stats.Overruns++
	}
}

func (r *AtlasRenderer) atlasGeneration() int {
	s := r.cache.Stats()
	return s.Grows + s.Rebuilds
}

// buildLocked fills the command buffer for one frame.
func (r *AtlasRenderer) buildLocked(in FrameInput) {
	r.cmd.Reset()
	r.cmd.ClearColor = r.theme.Background

	snap := in.Snapshot
	if snap == nil {
		return
	}
	vp := in.Viewport
	if vp.GutterWidth > 0 {
		r.cmd.Add(gpu.Quad{
			Layer: gpu.LayerSelection,
			Dst:   core.Rect{W: vp.GutterWidth, H: vp.Height},
			Color: r.theme.Gutter,
		})
	}

	current := -1
	if len(in.Cursors) > 0 {
		current = in.Cursors[0].Line
	}
	numbers := gutter.NewFormatter(r.cfg.LineNumbers, vp.GutterCells(), current)
	sels := selection.Merge(in.Selections)
	opacity := BlinkOpacity(r.stats.BlinkPhase)

	first, last := vp.VisibleRange(snap.LineCount())
	for line := first; line < last; line++ {
		y := vp.LineY(line)
		ll := r.lines.Get(line, snap.LineText(line))

		r.drawTextLocked(in, ll, line, y)
		r.drawSelectionsLocked(vp, selection.OnLine(sels, line, ll), y)
		r.drawCursorsLocked(in, ll, line, y, opacity)
		if numbers.Enabled() {
			r.drawLineNumberLocked(numbers, line, y)
		}
	}
}

// drawTextLocked emits one textured quad per visible glyph of line and
// records the x position of every visual column.
func (r *AtlasRenderer) drawTextLocked(in FrameInput, ll *layout.Line, line int, y float32) {
	vp := in.Viewport
	cw := r.metrics.Advance
	baseline := y + r.baseline

	xs := r.xs[:0]
	x := vp.TextX()
	for _, cell := range ll.Cells {
		xs = append(xs, x)
		if cell.IsContinuation() {
			continue
		}

		w := cw * float32(cell.Width)
		if cell.Rune == ' ' || x < vp.GutterWidth {
			x += w
			continue
		}

		info, ok := r.cache.Lookup(r.key(cell.Rune))
		if ok {
			kind, _ := in.Tokens.At(text.Pos(line, cell.Byte))
			r.cmd.Add(gpu.Quad{
				Layer: gpu.LayerText,
				Dst: core.Rect{
					X: x + float32(info.BearingX),
					Y: baseline - float32(info.BearingY),
					W: float32(info.Width),
					H: float32(info.Height),
				},
				UV:       info.UV,
				Color:    r.theme.Color(kind),
				Textured: true,
			})
		}
		if info.Advance > 0 {
			w = info.Advance
		}
		x += w
		if x > vp.Width {
			break
		}
	}
	r.xs = append(xs, x)
}

// xAt returns the x position of a visual column of the last drawn line.
func (r *AtlasRenderer) xAt(col int) float32 {
	n := len(r.xs)
	if col < n {
		return r.xs[max(col, 0)]
	}
	return r.xs[n-1] + float32(col-(n-1))*r.metrics.Advance
}

func (r *AtlasRenderer) drawSelectionsLocked(vp viewport.Viewport, spans []selection.Span, y float32) {
	for _, sp := range spans {
		x0 := max(r.xAt(sp.Start), vp.GutterWidth)
		x1 := min(r.xAt(sp.End), vp.Width)
		if x1 <= x0 {
			continue
		}
		r.cmd.Add(gpu.Quad{
			Layer: gpu.LayerSelection,
			Dst:   core.Rect{X: x0, Y: y, W: x1 - x0, H: r.metrics.LineHeight},
			Color: r.theme.Selection,
		})
	}
}

func (r *AtlasRenderer) drawCursorsLocked(in FrameInput, ll *layout.Line, line int, y float32, opacity float64) {
	for _, c := range in.Cursors {
		if c.Line != line {
			continue
		}
		x := r.xAt(ll.VisualColumn(c.Column))
		if x < in.Viewport.GutterWidth || x >= in.Viewport.Width {
			continue
		}
		r.cmd.Add(gpu.Quad{
			Layer: gpu.LayerCursor,
			Dst:   core.Rect{X: x, Y: y, W: CursorWidth, H: r.metrics.LineHeight},
			Color: r.theme.Cursor.WithAlpha(opacity),
		})
	}
}

// drawLineNumberLocked draws the label of line in the gutter. The label
// already carries the alignment padding.
func (r *AtlasRenderer) drawLineNumberLocked(numbers gutter.Formatter, line int, y float32) {
	color := r.theme.LineNumber
	if numbers.IsCurrent(line) {
		color = r.theme.Foreground
	}
	cw := r.metrics.Advance
	baseline := y + r.baseline
	x := float32(0)
	for _, d := range numbers.Label(line) {
		if info, ok := r.cache.Lookup(r.key(d)); ok && d != ' ' {
			r.cmd.Add(gpu.Quad{
				Layer:    gpu.LayerText,
				Dst:      core.Rect{X: x + float32(info.BearingX), Y: baseline - float32(info.BearingY), W: float32(info.Width), H: float32(info.Height)},
				UV:       info.UV,
				Color:    color,
				Textured: true,
			})
		}
		x += cw
	}
}

func (r *AtlasRenderer) key(ch rune) glyph.Key {
	return glyph.Key{Char: ch, Font: r.cfg.Font, Size: r.cfg.FontSize}
}

// Resize implements FrameProducer. size is in pixels.
func (r *AtlasRenderer) Resize(size core.Size) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.cfg.Size = size
	r.device.Resize(size)
}

// InvalidateGlyphCache implements FrameProducer. Invalidating the font in
// use prewarms it again when prewarming is enabled.
func (r *AtlasRenderer) InvalidateGlyphCache(font string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.cache.Invalidate(font)
	if font == r.cfg.Font && r.cfg.Prewarm {
		r.cache.Prewarm(font, r.cfg.FontSize)
	}
}

// SetTheme implements FrameProducer.
func (r *AtlasRenderer) SetTheme(theme *highlight.Theme) {
	if theme == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.theme = theme
}

// CellSize implements FrameProducer.
func (r *AtlasRenderer) CellSize() (width, height float32) {
	return r.metrics.Advance, r.metrics.LineHeight
}

// Mode implements FrameProducer.
func (r *AtlasRenderer) Mode() Mode {
	return ModeAtlas
}

// Stats implements FrameProducer.
func (r *AtlasRenderer) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.stats
	s.Glyphs = r.cache.Stats()
	return s
}

// Device returns the device frames are submitted to.
func (r *AtlasRenderer) Device() gpu.Device {
	return r.device
}

// Close releases the atlas, the rasterizer it created and the device.
func (r *AtlasRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	r.cache.Close()
	r.closeRaster()
	return r.device.Close()
}

func (r *AtlasRenderer) closeRaster() {
	if r.closer != nil {
		if err := r.closer.Close(); err != nil {
			r.logger.Warn("closing rasterizer: %v", err)
		}
		r.closer = nil
	}
}
