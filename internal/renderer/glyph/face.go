package glyph

import (
	"fmt"
	"image"
	"os"
	"sync"
	"unicode"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Built-in font names accepted by FaceRasterizer.
const (
	FontGoMono = "gomono"
	FontBasic  = "basic"
)

// Metrics are the vertical and horizontal metrics of a face, in pixels.
type Metrics struct {
	Ascent     float32
	Descent    float32
	LineHeight float32
	// Advance is the advance of 'M', used as the fallback cell width.
	Advance float32
}

type faceKey struct {
	font string
	size float32
}

// FaceRasterizer rasterizes glyphs with golang.org/x/image/font faces.
//
// Font names are FontGoMono, FontBasic (a fixed 7x13 bitmap face that
// ignores size), or a path to a TrueType or OpenType file.
type FaceRasterizer struct {
	mu    sync.Mutex
	dpi   float64
	fonts map[string]*opentype.Font
	faces map[faceKey]font.Face
}

// NewFaceRasterizer creates a rasterizer rendering at dpi.
func NewFaceRasterizer(dpi float64) *FaceRasterizer {
	if dpi <= 0 {
		dpi = 72
	}
	return &FaceRasterizer{
		dpi:   dpi,
		fonts: make(map[string]*opentype.Font),
		faces: make(map[faceKey]font.Face),
	}
}

// Rasterize renders key.Char. Characters missing from the font are drawn
// as U+FFFD, or '?' when that is missing too.
func (r *FaceRasterizer) Rasterize(key Key) (Bitmap, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	face, err := r.faceLocked(key.Font, key.Size)
	if err != nil {
		return Bitmap{}, err
	}

	ch := key.Char
	dr, mask, maskp, advance, ok := face.Glyph(fixed.Point26_6{}, ch)
	for _, fb := range []rune{unicode.ReplacementChar, '?'} {
		if ok {
			break
		}
		dr, mask, maskp, advance, ok = face.Glyph(fixed.Point26_6{}, fb)
	}
	if !ok {
		return Bitmap{}, fmt.Errorf("%w %U in %s", ErrNoGlyph, ch, key.Font)
	}

	bm := Bitmap{
		BearingX: dr.Min.X,
		BearingY: -dr.Min.Y,
		Advance:  fixedToFloat(advance),
	}
	if dr.Empty() || mask == nil {
		return bm, nil
	}

	out := image.NewAlpha(image.Rect(0, 0, dr.Dx(), dr.Dy()))
	draw.Draw(out, out.Bounds(), mask, maskp, draw.Src)
	if isBlank(out) {
		return bm, nil
	}
	bm.Mask = out
	return bm, nil
}

// Metrics returns the metrics of font at size.
func (r *FaceRasterizer) Metrics(fontName string, size float32) (Metrics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	face, err := r.faceLocked(fontName, size)
	if err != nil {
		return Metrics{}, err
	}
	m := face.Metrics()
	adv, ok := face.GlyphAdvance('M')
	if !ok {
		adv = m.Height / 2
	}
	return Metrics{
		Ascent:     fixedToFloat(m.Ascent),
		Descent:    fixedToFloat(m.Descent),
		LineHeight: fixedToFloat(m.Height),
		Advance:    fixedToFloat(adv),
	}, nil
}

// Close releases every face.
func (r *FaceRasterizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var first error
	for k, f := range r.faces {
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
		delete(r.faces, k)
	}
	return first
}

func (r *FaceRasterizer) faceLocked(name string, size float32) (font.Face, error) {
	if name == FontBasic {
		return basicfont.Face7x13, nil
	}
	if size <= 0 {
		return nil, fmt.Errorf("glyph: invalid font size %v", size)
	}

	k := faceKey{name, size}
	if f, ok := r.faces[k]; ok {
		return f, nil
	}

	parsed, err := r.fontLocked(name)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     r.dpi,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("glyph: creating face %s %.1f: %w", name, size, err)
	}
	r.faces[k] = face
	return face, nil
}

func (r *FaceRasterizer) fontLocked(name string) (*opentype.Font, error) {
	if f, ok := r.fonts[name]; ok {
		return f, nil
	}

	var data []byte
	if name == FontGoMono {
		data = gomono.TTF
	} else {
		b, err := os.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("glyph: loading font %s: %w", name, err)
		}
		data = b
	}

	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("glyph: parsing font %s: %w", name, err)
	}
	r.fonts[name] = f
	return f, nil
}

func fixedToFloat(v fixed.Int26_6) float32 {
	return float32(v) / 64
}

func isBlank(img *image.Alpha) bool {
	for _, a := range img.Pix {
		if a != 0 {
			return false
		}
	}
	return true
}
