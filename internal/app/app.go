// Package app wires the glyphcore components together and runs the display
// loop.
//
// An Application owns one document, the token supplier that highlights it
// and the frame producer that draws it. Input events mutate the document's
// TextStore; once per display tick the loop snapshots the store, refreshes
// tokens when the revision moved, recomputes the viewport around the
// primary cursor and asks the producer for a frame.
package app

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/dshills/glyphcore/internal/config"
	"github.com/dshills/glyphcore/internal/logging"
	"github.com/dshills/glyphcore/internal/renderer"
	"github.com/dshills/glyphcore/internal/renderer/backend"
	"github.com/dshills/glyphcore/internal/renderer/core"
	"github.com/dshills/glyphcore/internal/renderer/glyph"
	"github.com/dshills/glyphcore/internal/renderer/highlight"
	"github.com/dshills/glyphcore/internal/renderer/layout"
	"github.com/dshills/glyphcore/internal/renderer/viewport"
	"github.com/dshills/glyphcore/internal/syntax"

	// Registers the offscreen gpu driver.
	_ "github.com/dshills/glyphcore/internal/renderer/gpu/offscreen"
)

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the configuration file. When set, the file
	// is watched and changes are applied while running.
	ConfigPath string

	// File is the document to open. Empty opens a scratch buffer.
	File string

	// LogLevel, Device and Language override the configuration when set.
	LogLevel string
	Device   string
	Language string

	// Backend is the terminal surface. It supplies input events and is
	// drawn on by the software renderer. Nil runs without input.
	Backend backend.Backend

	// Logger is used instead of one built from the configuration.
	Logger *logging.Logger

	// LogOutput receives log output when no log file is configured.
	// Nil writes to stderr.
	LogOutput io.Writer

	// Rasterizer replaces the font rasterizer of the atlas renderer.
	Rasterizer glyph.Rasterizer
}

// Application is the central coordinator for all glyphcore components.
type Application struct {
	mu sync.Mutex

	opts    Options
	cfg     *config.Config
	watcher *config.Watcher
	logger  *logging.Logger
	logFile *os.File
	metrics *Metrics

	doc      *Document
	supplier highlight.Supplier
	producer renderer.FrameProducer
	backend  backend.Backend
	layouts  *layout.Engine

	backendUp bool

	// Display state, guarded by mu.
	vp          viewport.Viewport
	pixelSize   core.Size
	tokens      *highlight.Index
	tokenRev    uint64
	tokensValid bool
	message     string

	running  atomic.Bool
	events   chan backend.Event
	quit     chan struct{}
	quitOnce sync.Once
	inputWg  sync.WaitGroup
}

// New creates an Application and all of its components. The backend, if
// any, is initialized here and shut down by Close.
func New(opts Options) (*Application, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, &InitError{Component: "config", Err: err}
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	if opts.Device != "" {
		cfg.Renderer.Device = opts.Device
	}
	if err := cfg.Validate(); err != nil {
		return nil, &InitError{Component: "config", Err: err}
	}

	a := &Application{
		opts:      opts,
		cfg:       cfg,
		metrics:   NewMetrics(),
		backend:   opts.Backend,
		layouts:   layout.NewEngine(cfg.Editor.TabWidth),
		pixelSize: core.Size{Width: cfg.Renderer.Width, Height: cfg.Renderer.Height},
		events:    make(chan backend.Event, 64),
		quit:      make(chan struct{}),
	}

	if err := a.bootstrap(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// bootstrap initializes all components in dependency order.
func (a *Application) bootstrap() error {
	cfg := a.cfg

	// 1. Logger
	a.logger = a.opts.Logger
	if a.logger == nil {
		logCfg := logging.DefaultConfig()
		logCfg.Level = logging.ParseLevel(cfg.Logging.Level)
		if a.opts.LogOutput != nil {
			logCfg.Output = a.opts.LogOutput
		}
		if cfg.Logging.File != "" {
			f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return &InitError{Component: "logging", Err: err}
			}
			a.logFile = f
			logCfg.Output = f
		}
		a.logger = logging.New(logCfg)
		logging.Set(a.logger)
	}
	logger := a.logger.WithComponent("app")

	// 2. Theme
	theme, err := loadTheme(cfg.Theme)
	if err != nil {
		return &InitError{Component: "theme", Err: err}
	}

	// 3. Document
	if a.opts.File != "" {
		a.doc, err = OpenDocument(a.opts.File, cfg.Editor, a.logger)
		if err != nil {
			return &InitError{Component: "document", Err: err}
		}
	} else {
		a.doc = NewScratchDocument(cfg.Editor, a.logger)
	}
	switch {
	case a.opts.Language != "":
		a.doc.Language = a.opts.Language
	case cfg.Syntax.Language != "":
		a.doc.Language = cfg.Syntax.Language
	}

	// 4. Token supplier
	a.supplier, err = syntax.New(cfg.Syntax, a.logger)
	if err != nil {
		return &InitError{Component: "syntax", Err: err}
	}

	// 5. Backend
	if a.backend != nil {
		if err := a.backend.Init(); err != nil {
			a.backend = nil
			return &InitError{Component: "backend", Err: err}
		}
		a.backendUp = true
	}

	// 6. Frame producer. Pre-warming happens here, before the first tick.
	a.producer, err = renderer.Open(renderer.ConfigFrom(cfg), renderer.Deps{
		Backend:    a.backend,
		Rasterizer: a.opts.Rasterizer,
		Theme:      theme,
		Logger:     a.logger,
	})
	if err != nil {
		return &InitError{Component: "renderer", Err: err}
	}

	// 7. Config watcher. A missing watcher only disables live reload.
	if a.opts.ConfigPath != "" {
		a.watcher, err = config.NewWatcher(a.opts.ConfigPath, cfg, a.applyConfig, a.logger)
		if err != nil {
			logger.Warn("config reload disabled: %v", err)
		}
	}

	logger.Info("ready: %s renderer, document %s (%s)", a.producer.Mode(), a.doc.Name, a.doc.Language)
	return nil
}

// loadTheme resolves the theme selected by cfg. A theme file takes
// precedence over the built-in name.
func loadTheme(cfg config.ThemeConfig) (*highlight.Theme, error) {
	if cfg.Path != "" {
		return highlight.LoadTheme(cfg.Path)
	}
	return highlight.ThemeByName(cfg.Name)
}

// applyConfig reacts to a reloaded configuration.
func (a *Application) applyConfig(old, cfg *config.Config) {
	logger := a.logger.WithComponent("app")

	if old.Font != cfg.Font {
		logger.Info("font changed, invalidating glyphs of %s", old.Font.Family)
		a.producer.InvalidateGlyphCache(old.Font.Family)
	}
	if old.Theme != cfg.Theme {
		theme, err := loadTheme(cfg.Theme)
		if err != nil {
			logger.Warn("keeping current theme: %v", err)
		} else {
			a.producer.SetTheme(theme)
		}
	}
	if old.Logging.Level != cfg.Logging.Level {
		a.logger.SetLevel(logging.ParseLevel(cfg.Logging.Level))
	}

	var stale highlight.Supplier
	if old.Syntax != cfg.Syntax {
		supplier, err := syntax.New(cfg.Syntax, a.logger)
		if err != nil {
			logger.Warn("keeping current syntax supplier: %v", err)
		} else {
			a.mu.Lock()
			stale, a.supplier = a.supplier, supplier
			if cfg.Syntax.Language != "" {
				a.doc.Language = cfg.Syntax.Language
			}
			a.tokensValid = false
			a.mu.Unlock()
		}
	}

	a.mu.Lock()
	a.cfg = cfg
	a.mu.Unlock()
	closeSupplier(stale, logger)
}

func closeSupplier(s highlight.Supplier, logger *logging.Logger) {
	if c, ok := s.(io.Closer); ok {
		if err := c.Close(); err != nil {
			logger.Warn("closing syntax supplier: %v", err)
		}
	}
}

// Stop asks a running loop to return.
func (a *Application) Stop() {
	a.quitOnce.Do(func() { close(a.quit) })
}

// Close releases every component. It is safe to call more than once.
func (a *Application) Close() error {
	a.Stop()

	var errs []error
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			errs = append(errs, err)
		}
		a.watcher = nil
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			errs = append(errs, err)
		}
		a.producer = nil
	}
	if a.supplier != nil {
		closeSupplier(a.supplier, logging.Null())
		a.supplier = nil
	}
	if a.doc != nil {
		a.doc.Close()
	}
	if a.backend != nil && a.backendUp {
		a.backend.Shutdown()
		a.inputWg.Wait()
		a.backendUp = false
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if a.logFile != nil {
		a.logFile.Close()
		a.logFile = nil
	}
	if len(errs) > 0 {
		return fmt.Errorf("closing application: %v", errs)
	}
	return nil
}

// IsRunning returns true while Run is executing.
func (a *Application) IsRunning() bool {
	return a.running.Load()
}

// Config returns the configuration currently in effect.
func (a *Application) Config() *config.Config {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg
}

// Document returns the open document.
func (a *Application) Document() *Document {
	return a.doc
}

// Producer returns the frame producer.
func (a *Application) Producer() renderer.FrameProducer {
	return a.producer
}

// Metrics returns the loop metrics.
func (a *Application) Metrics() *Metrics {
	return a.metrics
}

// Viewport returns the viewport of the last frame.
func (a *Application) Viewport() viewport.Viewport {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.vp
}

// Message returns the status message shown with the next frame.
func (a *Application) Message() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.message
}

func (a *Application) setMessage(format string, args ...any) {
	a.mu.Lock()
	a.message = fmt.Sprintf(format, args...)
	a.mu.Unlock()
}
