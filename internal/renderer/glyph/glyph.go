package glyph

import (
	"errors"
	"image"

	"github.com/dshills/glyphcore/internal/renderer/core"
)

// ErrNoGlyph indicates the font has no glyph for a character.
var ErrNoGlyph = errors.New("glyph: no glyph for character")

// Key identifies a rasterized glyph.
type Key struct {
	Char rune
	Font string
	Size float32
}

// Info describes a glyph placed in the atlas.
type Info struct {
	// UV is the glyph's rectangle in the atlas, normalized to [0, 1].
	UV core.Rect

	// Width and Height are the bitmap size in pixels.
	Width, Height int

	// BearingX is the offset from the pen position to the bitmap's left
	// edge. BearingY is the distance from the baseline up to its top edge.
	BearingX, BearingY int

	// Advance is the horizontal pen advance in pixels.
	Advance float32
}

// IsZeroArea returns true if the glyph has no bitmap.
func (i Info) IsZeroArea() bool {
	return i.Width == 0 || i.Height == 0
}

// Bitmap is the output of a Rasterizer.
type Bitmap struct {
	// Mask holds coverage values. It is nil for glyphs with no pixels.
	Mask *image.Alpha

	BearingX, BearingY int
	Advance            float32
}

// Empty returns true if the bitmap has no pixels.
func (b Bitmap) Empty() bool {
	return b.Mask == nil || b.Mask.Bounds().Empty()
}

// Rasterizer renders glyph bitmaps.
type Rasterizer interface {
	Rasterize(key Key) (Bitmap, error)
}

// RasterizerFunc adapts a function to the Rasterizer interface.
type RasterizerFunc func(key Key) (Bitmap, error)

// Rasterize calls f(key).
func (f RasterizerFunc) Rasterize(key Key) (Bitmap, error) {
	return f(key)
}

// PrintableASCII is the range of characters warmed at construction.
const (
	PrintableFirst rune = 0x20
	PrintableLast  rune = 0x7e
)
