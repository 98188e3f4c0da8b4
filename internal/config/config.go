package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/dshills/glyphcore/internal/logging"
	"github.com/dshills/glyphcore/internal/renderer/gutter"
)

// Config is the complete glyphcore configuration.
type Config struct {
	Editor   EditorConfig   `toml:"editor"`
	Renderer RendererConfig `toml:"renderer"`
	Font     FontConfig     `toml:"font"`
	Theme    ThemeConfig    `toml:"theme"`
	Syntax   SyntaxConfig   `toml:"syntax"`
	Logging  LoggingConfig  `toml:"logging"`
}

// EditorConfig configures the text store.
type EditorConfig struct {
	MaxPasteBytes int64 `toml:"max_paste_bytes"`
	MaxFileBytes  int64 `toml:"max_file_bytes"`
	UndoLimit     int   `toml:"undo_limit"`
	TabWidth      int   `toml:"tab_width"`
}

// RendererConfig configures frame production.
type RendererConfig struct {
	// Device names the gpu driver to open. "none" forces the software path.
	Device string `toml:"device"`

	Width     int `toml:"width"`
	Height    int `toml:"height"`
	FrameRate int `toml:"frame_rate"`

	// BlinkStep is the blink phase advance per frame, in radians.
	BlinkStep float64 `toml:"blink_step"`

	AtlasInitialSize int  `toml:"atlas_initial_size"`
	AtlasMaxSize     int  `toml:"atlas_max_size"`
	Prewarm          bool `toml:"prewarm"`
	GutterDigits     int  `toml:"gutter_digits"`

	// LineNumbers is "absolute", "relative" or "hybrid".
	LineNumbers string `toml:"line_numbers"`
}

// FontConfig selects the glyph source.
type FontConfig struct {
	// Family is "gomono", "basic", or a path to a TrueType/OpenType file.
	Family     string  `toml:"family"`
	Size       float64 `toml:"size"`
	DPI        float64 `toml:"dpi"`
	LineHeight float64 `toml:"line_height"`
}

// ThemeConfig selects the token color table.
type ThemeConfig struct {
	Name string `toml:"name"`
	// Path is an optional YAML theme file overriding Name.
	Path string `toml:"path"`
}

// SyntaxConfig selects the token supplier.
type SyntaxConfig struct {
	// Supplier is "chroma", "treesitter", "lua" or "none".
	Supplier string `toml:"supplier"`
	Language string `toml:"language"`
	// Script is the Lua tokenizer used by the "lua" supplier.
	Script string `toml:"script"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Suppliers lists the accepted syntax.supplier values.
var Suppliers = []string{"chroma", "treesitter", "lua", "none"}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Editor: EditorConfig{
			MaxPasteBytes: 10 << 20,
			MaxFileBytes:  100 << 20,
			UndoLimit:     500,
			TabWidth:      4,
		},
		Renderer: RendererConfig{
			Device:           "offscreen",
			Width:            1280,
			Height:           800,
			FrameRate:        120,
			BlinkStep:        0.1,
			AtlasInitialSize: 2048,
			AtlasMaxSize:     4096,
			Prewarm:          true,
			GutterDigits:     4,
			LineNumbers:      "absolute",
		},
		Font: FontConfig{
			Family:     "gomono",
			Size:       14,
			DPI:        72,
			LineHeight: 1.25,
		},
		Theme: ThemeConfig{
			Name: "dark",
		},
		Syntax: SyntaxConfig{
			Supplier: "chroma",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks the configuration and returns every problem found.
func (c *Config) Validate() error {
	var errs []error
	fail := func(path string, value any, msg string) {
		errs = append(errs, &FieldError{Key: path, Value: value, Reason: msg})
	}

	if c.Editor.MaxPasteBytes <= 0 {
		fail("editor.max_paste_bytes", c.Editor.MaxPasteBytes, "must be positive")
	}
	if c.Editor.MaxFileBytes <= 0 {
		fail("editor.max_file_bytes", c.Editor.MaxFileBytes, "must be positive")
	}
	if c.Editor.UndoLimit <= 0 {
		fail("editor.undo_limit", c.Editor.UndoLimit, "must be positive")
	}
	if c.Renderer.Width <= 0 || c.Renderer.Height <= 0 {
		fail("renderer.width", fmt.Sprintf("%dx%d", c.Renderer.Width, c.Renderer.Height), "size must be positive")
	}
	if c.Renderer.FrameRate <= 0 || c.Renderer.FrameRate > 1000 {
		fail("renderer.frame_rate", c.Renderer.FrameRate, "must be between 1 and 1000")
	}
	if c.Renderer.AtlasInitialSize <= 0 {
		fail("renderer.atlas_initial_size", c.Renderer.AtlasInitialSize, "must be positive")
	}
	if c.Renderer.AtlasMaxSize < c.Renderer.AtlasInitialSize {
		fail("renderer.atlas_max_size", c.Renderer.AtlasMaxSize, "must not be below atlas_initial_size")
	}
	if _, err := gutter.ParseMode(c.Renderer.LineNumbers); err != nil {
		fail("renderer.line_numbers", c.Renderer.LineNumbers, fmt.Sprintf("must be one of %v", gutter.Modes))
	}
	if c.Font.Family == "" {
		fail("font.family", c.Font.Family, "must not be empty")
	}
	if c.Font.Size <= 0 {
		fail("font.size", c.Font.Size, "must be positive")
	}
	if c.Font.DPI <= 0 {
		fail("font.dpi", c.Font.DPI, "must be positive")
	}
	if c.Font.LineHeight < 1 {
		fail("font.line_height", c.Font.LineHeight, "must be at least 1")
	}
	if !slices.Contains(Suppliers, c.Syntax.Supplier) {
		fail("syntax.supplier", c.Syntax.Supplier, fmt.Sprintf("must be one of %v", Suppliers))
	}
	if c.Syntax.Supplier == "lua" && c.Syntax.Script == "" {
		fail("syntax.script", c.Syntax.Script, "required by the lua supplier")
	}
	if !logging.ValidLevel(c.Logging.Level) {
		fail("logging.level", c.Logging.Level, "must be debug, info, warn or error")
	}

	return errors.Join(errs...)
}
