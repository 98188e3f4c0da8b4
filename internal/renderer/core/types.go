// Package core provides shared types for the renderer subsystem.
// This package breaks import cycles between renderer, gpu and backend.
package core

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Attribute represents text attributes (bold, italic, etc.).
type Attribute uint8

// Text attribute flags.
const (
	AttrNone      Attribute = 0
	AttrBold      Attribute = 1 << iota
	AttrDim                 // Faint/dim text
	AttrItalic              // Italic text
	AttrUnderline           // Underlined text
)

// Has returns true if the attribute set contains the given attribute.
func (a Attribute) Has(attr Attribute) bool {
	return a&attr != 0
}

// Color is a non-premultiplied 8-bit RGBA color.
type Color struct {
	R, G, B, A uint8
}

// Common colors.
var (
	ColorTransparent = Color{}
	ColorBlack       = Color{R: 0, G: 0, B: 0, A: 255}
	ColorWhite       = Color{R: 255, G: 255, B: 255, A: 255}
)

// RGB creates an opaque color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 255}
}

// ColorFromHex parses "#rgb", "#rrggbb" or "#rrggbbaa".
func ColorFromHex(hex string) (Color, error) {
	var alpha uint8 = 255
	if len(hex) == 9 && hex[0] == '#' {
		var a uint8
		if _, err := fmt.Sscanf(hex[7:], "%02x", &a); err != nil {
			return Color{}, fmt.Errorf("invalid hex color: %s", hex)
		}
		alpha = a
		hex = hex[:7]
	}
	if len(hex) == 4 && hex[0] == '#' {
		hex = string([]byte{'#', hex[1], hex[1], hex[2], hex[2], hex[3], hex[3]})
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color: %s", hex)
	}
	r, g, b := c.RGB255()
	return Color{R: r, G: g, B: b, A: alpha}, nil
}

// MustHex is ColorFromHex for constant tables; it panics on bad input.
func MustHex(hex string) Color {
	c, err := ColorFromHex(hex)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func fromColorful(cc colorful.Color, a uint8) Color {
	r, g, b := cc.Clamped().RGB255()
	return Color{R: r, G: g, B: b, A: a}
}

// Hex returns "#rrggbb", ignoring alpha.
func (c Color) Hex() string {
	return c.colorful().Hex()
}

// String returns a string representation of the color.
func (c Color) String() string {
	if c.A == 255 {
		return c.Hex()
	}
	return fmt.Sprintf("%s/%d", c.Hex(), c.A)
}

// WithAlpha returns the color with its alpha scaled by f in [0, 1].
func (c Color) WithAlpha(f float64) Color {
	f = min(max(f, 0), 1)
	c.A = uint8(float64(c.A)*f + 0.5)
	return c
}

// Blend mixes c toward other by t in [0, 1] in Lab space.
// Alpha is interpolated linearly.
func (c Color) Blend(other Color, t float64) Color {
	switch {
	case t <= 0:
		return c
	case t >= 1:
		return other
	}
	a := float64(c.A)*(1-t) + float64(other.A)*t
	return fromColorful(c.colorful().BlendLab(other.colorful(), t), uint8(a+0.5))
}

// Lighten returns a lighter version of the color.
func (c Color) Lighten(amount float64) Color {
	h, s, l := c.colorful().Hsl()
	return fromColorful(colorful.Hsl(h, s, min(1, l+amount)), c.A)
}

// Darken returns a darker version of the color.
func (c Color) Darken(amount float64) Color {
	h, s, l := c.colorful().Hsl()
	return fromColorful(colorful.Hsl(h, s, max(0, l-amount)), c.A)
}

// NRGBA converts to the standard library color type.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// Style is the visual style of a run of text.
type Style struct {
	Foreground Color
	Background Color
	Attributes Attribute
}

// NewStyle creates a style with the given foreground color.
func NewStyle(fg Color) Style {
	return Style{Foreground: fg}
}

// WithBackground returns a new style with the given background color.
func (s Style) WithBackground(bg Color) Style {
	s.Background = bg
	return s
}

// WithAttributes returns a new style with attrs added.
func (s Style) WithAttributes(attrs Attribute) Style {
	s.Attributes |= attrs
	return s
}

// Size is a width and height in pixels or cells.
type Size struct {
	Width, Height int
}

// IsEmpty returns true if either dimension is not positive.
func (s Size) IsEmpty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Rect is an axis-aligned rectangle in pixels.
type Rect struct {
	X, Y, W, H float32
}

// IsEmpty returns true if the rectangle has no area.
func (r Rect) IsEmpty() bool {
	return r.W <= 0 || r.H <= 0
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float32 {
	return r.X + r.W
}

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float32 {
	return r.Y + r.H
}
