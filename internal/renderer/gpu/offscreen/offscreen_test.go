package offscreen

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"testing"
	"time"

	"github.com/dshills/glyphcore/internal/renderer/core"
	"github.com/dshills/glyphcore/internal/renderer/gpu"
)

func newDevice(t *testing.T, w, h int, options ...Option) *Device {
	t.Helper()
	d := New(gpu.Options{Size: core.Size{Width: w, Height: h}}, options...)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func newPipeline(t *testing.T, d *Device) gpu.Pipeline {
	t.Helper()
	p, err := d.NewPipeline(gpu.PipelineDesc{Name: "quads", Sampled: true})
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}
	return p
}

func TestSubmitDrawsLayers(t *testing.T) {
	d := newDevice(t, 16, 16)
	p := newPipeline(t, d)

	tex, err := d.NewTexture(8, 8)
	if err != nil {
		t.Fatal(err)
	}
	glyph := image.NewAlpha(image.Rect(0, 0, 2, 2))
	for i := range glyph.Pix {
		glyph.Pix[i] = 255
	}
	if err := tex.Upload(image.Pt(4, 4), glyph); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	cb := gpu.NewCommandBuffer()
	cb.ClearColor = core.ColorBlack
	cb.Texture = tex
	red := core.RGB(255, 0, 0)
	green := core.RGB(0, 255, 0)
	blue := core.RGB(0, 0, 255)
	// Added out of order; the cursor must still end on top.
	cb.Add(gpu.Quad{Layer: gpu.LayerCursor, Dst: core.Rect{X: 0, Y: 0, W: 1, H: 16}, Color: blue})
	cb.Add(gpu.Quad{Layer: gpu.LayerSelection, Dst: core.Rect{X: 0, Y: 0, W: 16, H: 2}, Color: red})
	cb.Add(gpu.Quad{
		Layer:    gpu.LayerText,
		Dst:      core.Rect{X: 10, Y: 10, W: 2, H: 2},
		UV:       core.Rect{X: 0.5, Y: 0.5, W: 0.25, H: 0.25},
		Color:    green,
		Textured: true,
	})

	dr, err := d.NextDrawable(time.Second)
	if err != nil {
		t.Fatalf("NextDrawable failed: %v", err)
	}
	if err := d.Submit(dr, p, cb); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	cb.Reset()

	img := d.Snapshot()
	tests := []struct {
		name string
		x, y int
		want core.Color
	}{
		{"cursor over selection", 0, 0, blue},
		{"selection", 5, 1, red},
		{"glyph", 11, 11, green},
		{"background", 5, 8, core.ColorBlack},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := img.RGBAAt(tt.x, tt.y)
			if c.R != tt.want.R || c.G != tt.want.G || c.B != tt.want.B {
				t.Errorf("pixel (%d,%d) = %v, want %v", tt.x, tt.y, c, tt.want)
			}
		})
	}
	if d.Presented() != 1 {
		t.Errorf("Presented() = %d", d.Presented())
	}
}

func TestDrawableTimeout(t *testing.T) {
	d := New(gpu.Options{Size: core.Size{Width: 4, Height: 4}, Drawables: 1})
	defer d.Close()

	if _, err := d.NextDrawable(time.Second); err != nil {
		t.Fatal(err)
	}
	start := time.Now()
	_, err := d.NextDrawable(10 * time.Millisecond)
	if !errors.Is(err, gpu.ErrDrawableTimeout) {
		t.Fatalf("expected ErrDrawableTimeout, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("timeout took too long")
	}
}

func TestInjectedFaults(t *testing.T) {
	d := newDevice(t, 4, 4)

	d.InjectFaults(Faults{Drawables: 1, Submits: 1, Pipelines: 1})

	var perr *gpu.PipelineError
	if _, err := d.NewPipeline(gpu.PipelineDesc{Name: "quads"}); !errors.As(err, &perr) {
		t.Errorf("expected *PipelineError, got %v", err)
	}
	p := newPipeline(t, d)

	if _, err := d.NextDrawable(time.Second); !errors.Is(err, gpu.ErrDrawableTimeout) {
		t.Errorf("expected injected ErrDrawableTimeout, got %v", err)
	}

	dr, err := d.NextDrawable(time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Submit(dr, p, gpu.NewCommandBuffer()); !errors.Is(err, gpu.ErrSubmit) {
		t.Errorf("expected ErrSubmit, got %v", err)
	}

	// The failed submission returned its drawable to the pool.
	for range 3 {
		dr, err := d.NextDrawable(time.Second)
		if err != nil {
			t.Fatalf("drawable leaked after failed submit: %v", err)
		}
		if err := d.Submit(dr, p, gpu.NewCommandBuffer()); err != nil {
			t.Fatal(err)
		}
	}
	d.Wait()
	if d.Presented() != 3 {
		t.Errorf("Presented() = %d, want 3", d.Presented())
	}
}

func TestNewPipelineValidation(t *testing.T) {
	d := newDevice(t, 4, 4)
	var perr *gpu.PipelineError
	if _, err := d.NewPipeline(gpu.PipelineDesc{}); !errors.As(err, &perr) {
		t.Errorf("empty name: got %v", err)
	}
	if _, err := d.NewPipeline(gpu.PipelineDesc{Name: "x", Blend: gpu.BlendMode(42)}); !errors.As(err, &perr) || perr.Stage != "blend" {
		t.Errorf("bad blend: got %v", err)
	}
}

func TestTextureOps(t *testing.T) {
	d := newDevice(t, 4, 4, WithMaxTextureSize(64))

	if _, err := d.NewTexture(128, 8); !errors.Is(err, gpu.ErrTextureSize) {
		t.Errorf("expected ErrTextureSize, got %v", err)
	}

	small, _ := d.NewTexture(4, 4)
	big, _ := d.NewTexture(8, 8)

	px := image.NewAlpha(image.Rect(0, 0, 1, 1))
	px.Pix[0] = 200
	if err := small.Upload(image.Pt(3, 3), px); err != nil {
		t.Fatal(err)
	}
	if err := small.Upload(image.Pt(4, 4), px); err == nil {
		t.Error("upload outside the texture should fail")
	}

	if err := big.CopyFrom(small); err != nil {
		t.Fatal(err)
	}
	if got := big.(*Texture).AlphaAt(3, 3); got != 200 {
		t.Errorf("copied pixel = %d, want 200", got)
	}

	big.Clear()
	if got := big.(*Texture).AlphaAt(3, 3); got != 0 {
		t.Errorf("pixel after Clear = %d", got)
	}

	small.Release()
	if err := small.Upload(image.Point{}, px); err == nil {
		t.Error("upload to released texture should fail")
	}
}

func TestResizeAndPNG(t *testing.T) {
	d := newDevice(t, 4, 4)
	p := newPipeline(t, d)

	d.Resize(core.Size{Width: 10, Height: 6})
	dr, err := d.NextDrawable(time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if dr.Size() != (core.Size{Width: 10, Height: 6}) {
		t.Errorf("drawable size = %v", dr.Size())
	}
	cb := gpu.NewCommandBuffer()
	cb.ClearColor = core.ColorWhite
	if err := d.Submit(dr, p, cb); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := d.WritePNG(&buf); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decoding snapshot: %v", err)
	}
	if img.Bounds().Dx() != 10 || img.Bounds().Dy() != 6 {
		t.Errorf("snapshot bounds = %v", img.Bounds())
	}
}

func TestClose(t *testing.T) {
	d := New(gpu.Options{Size: core.Size{Width: 2, Height: 2}})
	p, _ := d.NewPipeline(gpu.PipelineDesc{Name: "quads"})
	dr, _ := d.NextDrawable(time.Second)

	if err := d.Close(); err != nil {
		t.Fatal(err)
	}
	if err := d.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := d.NextDrawable(time.Millisecond); !errors.Is(err, gpu.ErrClosed) {
		t.Errorf("NextDrawable after Close: %v", err)
	}
	if err := d.Submit(dr, p, gpu.NewCommandBuffer()); !errors.Is(err, gpu.ErrSubmit) {
		t.Errorf("Submit after Close: %v", err)
	}
	if _, err := d.NewTexture(2, 2); !errors.Is(err, gpu.ErrClosed) {
		t.Errorf("NewTexture after Close: %v", err)
	}
}
