package renderer

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/glyphcore/internal/config"
	"github.com/dshills/glyphcore/internal/engine"
	"github.com/dshills/glyphcore/internal/engine/text"
	"github.com/dshills/glyphcore/internal/logging"
	"github.com/dshills/glyphcore/internal/renderer/backend"
	"github.com/dshills/glyphcore/internal/renderer/core"
	"github.com/dshills/glyphcore/internal/renderer/glyph"
	"github.com/dshills/glyphcore/internal/renderer/gpu"
	"github.com/dshills/glyphcore/internal/renderer/gutter"
	"github.com/dshills/glyphcore/internal/renderer/highlight"
	"github.com/dshills/glyphcore/internal/renderer/viewport"
)

// ErrNoSurface indicates that neither a device nor a software backend is
// available.
var ErrNoSurface = errors.New("renderer: no device and no software backend")

// Mode identifies a FrameProducer implementation.
type Mode int

const (
	ModeAtlas Mode = iota
	ModeText
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeAtlas:
		return "atlas"
	case ModeText:
		return "text"
	default:
		return "unknown"
	}
}

// FrameInput is everything one frame reads.
type FrameInput struct {
	Viewport viewport.Viewport
	Snapshot *engine.Snapshot

	// Tokens colors the text. A nil index draws everything in the
	// theme's foreground color.
	Tokens *highlight.Index

	// Cursors lists every cursor; the first is the primary.
	Cursors    []text.Position
	Selections []text.Range

	// Status feeds the software path's status line.
	Status Status
}

// Status is the document state shown in the status line.
type Status struct {
	File     string
	Modified bool
	Message  string
}

// FrameProducer renders frames.
type FrameProducer interface {
	// Render produces and submits one frame. It returns false when the
	// frame was skipped.
	Render(in FrameInput) bool

	// Resize changes the output size, in pixels for the atlas path and in
	// cells for the text path.
	Resize(size core.Size)

	// InvalidateGlyphCache drops cached glyphs of font.
	InvalidateGlyphCache(font string)

	// SetTheme replaces the color theme from the next frame on.
	SetTheme(theme *highlight.Theme)

	// CellSize returns the width of one cell and the height of one line,
	// the metrics a caller needs to build a Viewport.
	CellSize() (width, height float32)

	Mode() Mode
	Stats() Stats
	Close() error
}

// Stats describes rendering so far.
type Stats struct {
	Session uuid.UUID
	Mode    Mode

	// HardwareUnavailable is set when no device could be opened and the
	// producer fell back to the text path for the rest of the session.
	HardwareUnavailable bool

	Frames           uint64
	Skipped          uint64
	DrawableTimeouts uint64
	SubmitErrors     uint64

	// Overruns counts frames that took longer than Budget.
	Overruns  uint64
	Budget    time.Duration
	LastFrame time.Duration

	// Elapsed is the accumulated tick time and BlinkPhase the cursor blink
	// phase in radians. Both advance once per Render call.
	Elapsed    time.Duration
	BlinkPhase float64

	LastError error

	Glyphs glyph.Stats
}

// Config configures Open.
type Config struct {
	// Device is the gpu driver name. gpu.NoneDriver forces the text path.
	Device string

	// Size is the initial output size in pixels.
	Size core.Size

	// FrameRate sets the frame budget and the tick duration.
	FrameRate int

	// BlinkStep is the blink phase advance per frame, in radians.
	BlinkStep float64

	Font       string
	FontSize   float32
	DPI        float64
	LineHeight float64
	TabWidth   int

	AtlasInitialSize int
	AtlasMaxSize     int
	Prewarm          bool

	// LineNumbers selects how the gutter numbers lines.
	LineNumbers gutter.Mode

	// DrawableTimeout bounds the wait for a drawable. Zero uses a quarter
	// of the frame budget.
	DrawableTimeout time.Duration
}

// DefaultConfig returns the renderer defaults.
func DefaultConfig() Config {
	return ConfigFrom(config.Default())
}

// ConfigFrom extracts the renderer settings from an application config.
// An invalid line number mode falls back to absolute numbers; Validate
// reports it.
func ConfigFrom(c *config.Config) Config {
	mode, _ := gutter.ParseMode(c.Renderer.LineNumbers)
	return Config{
		Device:           c.Renderer.Device,
		Size:             core.Size{Width: c.Renderer.Width, Height: c.Renderer.Height},
		FrameRate:        c.Renderer.FrameRate,
		BlinkStep:        c.Renderer.BlinkStep,
		Font:             c.Font.Family,
		FontSize:         float32(c.Font.Size),
		DPI:              c.Font.DPI,
		LineHeight:       c.Font.LineHeight,
		TabWidth:         c.Editor.TabWidth,
		AtlasInitialSize: c.Renderer.AtlasInitialSize,
		AtlasMaxSize:     c.Renderer.AtlasMaxSize,
		Prewarm:          c.Renderer.Prewarm,
		LineNumbers:      mode,
	}
}

// Budget returns the time allowed for one frame.
func (c Config) Budget() time.Duration {
	if c.FrameRate <= 0 {
		return time.Second / 120
	}
	return time.Second / time.Duration(c.FrameRate)
}

// Deps are the collaborators of a FrameProducer.
type Deps struct {
	// Device is used instead of opening Config.Device when set.
	Device gpu.Device

	// Backend is the software surface used by the text path.
	Backend backend.Backend

	// Rasterizer produces glyph bitmaps. Nil uses a FaceRasterizer.
	Rasterizer glyph.Rasterizer

	Theme  *highlight.Theme
	Logger *logging.Logger

	// Now is the clock used for frame timing. Nil uses time.Now.
	Now func() time.Time
}

func (d *Deps) fill() {
	if d.Theme == nil {
		d.Theme = highlight.DarkTheme()
	}
	if d.Logger == nil {
		d.Logger = logging.Null()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
}

// Open selects and builds a FrameProducer.
//
// When no device can be opened the text path is returned and stays in use
// for the whole session. A device whose pipeline cannot be built yields a
// nil producer and the error.
func Open(cfg Config, deps Deps) (FrameProducer, error) {
	deps.fill()
	logger := deps.Logger.WithComponent("renderer")

	dev := deps.Device
	owned := dev == nil
	if owned {
		var err error
		dev, err = gpu.Open(cfg.Device, gpu.Options{Size: cfg.Size})
		if err != nil {
			if deps.Backend == nil {
				return nil, fmt.Errorf("%w: %w", ErrNoSurface, err)
			}
			logger.Warn("hardware path unavailable, using text renderer: %v", err)
			t := NewTextRenderer(deps.Backend, cfg, deps)
			t.hardwareUnavailable = true
			return t, nil
		}
	}

	a, err := NewAtlasRenderer(dev, cfg, deps)
	if err != nil {
		if owned {
			dev.Close()
		}
		return nil, err
	}
	logger.Info("atlas renderer on %s device", dev.Name())
	return a, nil
}
