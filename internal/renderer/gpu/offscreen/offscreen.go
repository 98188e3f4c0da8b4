// Package offscreen is a CPU gpu driver that draws frames into memory.
//
// Importing the package registers the driver under the name "offscreen".
// Frames are drawn on a worker goroutine; Snapshot waits for queued frames
// and returns the most recently presented image.
package offscreen

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"sync"
	"time"

	"golang.org/x/image/draw"

	"github.com/dshills/glyphcore/internal/renderer/core"
	"github.com/dshills/glyphcore/internal/renderer/gpu"
)

// DriverName is the registry name of this driver.
const DriverName = "offscreen"

// DefaultMaxTextureSize is the texture dimension limit unless overridden.
const DefaultMaxTextureSize = 8192

func init() {
	gpu.Register(DriverName, func(opts gpu.Options) (gpu.Device, error) {
		return New(opts), nil
	})
}

// Faults makes the next calls of a kind fail. Counts are decremented as
// faults fire.
type Faults struct {
	Drawables int
	Submits   int
	Pipelines int
}

// Option configures a Device.
type Option func(*Device)

// WithMaxTextureSize sets the largest texture dimension.
func WithMaxTextureSize(n int) Option {
	return func(d *Device) {
		d.maxTexture = n
	}
}

type job struct {
	target *drawable
	quads  []gpu.Quad
	tex    *Texture
	clear  core.Color
	blend  gpu.BlendMode
}

// Device is an in-memory gpu.Device.
type Device struct {
	mu         sync.Mutex
	size       core.Size
	maxTexture int
	faults     Faults
	closed     bool

	free    chan *drawable
	jobs    chan job
	pending sync.WaitGroup
	worker  sync.WaitGroup

	front     *image.RGBA
	presented uint64
	submitted uint64

	closeOnce sync.Once
}

// New creates a device. It cannot fail.
func New(opts gpu.Options, options ...Option) *Device {
	n := opts.Drawables
	if n <= 0 {
		n = 3
	}
	size := opts.Size
	if size.IsEmpty() {
		size = core.Size{Width: 1, Height: 1}
	}

	d := &Device{
		size:       size,
		maxTexture: DefaultMaxTextureSize,
		free:       make(chan *drawable, n),
		jobs:       make(chan job, n),
		front:      image.NewRGBA(image.Rect(0, 0, size.Width, size.Height)),
	}
	for _, opt := range options {
		opt(d)
	}
	for range n {
		d.free <- &drawable{owner: d, img: image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))}
	}

	d.worker.Add(1)
	go d.drawLoop()
	return d
}

// Name returns DriverName.
func (d *Device) Name() string {
	return DriverName
}

// MaxTextureSize returns the texture dimension limit.
func (d *Device) MaxTextureSize() int {
	return d.maxTexture
}

// InjectFaults replaces the pending fault counts.
func (d *Device) InjectFaults(f Faults) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.faults = f
}

// NewTexture allocates a zeroed coverage texture.
func (d *Device) NewTexture(width, height int) (gpu.Texture, error) {
	if width <= 0 || height <= 0 || width > d.maxTexture || height > d.maxTexture {
		return nil, fmt.Errorf("%w: %dx%d (max %d)", gpu.ErrTextureSize, width, height, d.maxTexture)
	}
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return nil, gpu.ErrClosed
	}
	return &Texture{img: image.NewAlpha(image.Rect(0, 0, width, height))}, nil
}

type pipeline struct {
	name  string
	blend gpu.BlendMode
}

func (p *pipeline) Name() string { return p.name }

// NewPipeline builds a pipeline.
func (d *Device) NewPipeline(desc gpu.PipelineDesc) (gpu.Pipeline, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.faults.Pipelines > 0 {
		d.faults.Pipelines--
		return nil, &gpu.PipelineError{Pipeline: desc.Name, Stage: "link", Err: errors.New("injected fault")}
	}
	if desc.Name == "" {
		return nil, &gpu.PipelineError{Stage: "describe", Err: errors.New("pipeline name is empty")}
	}
	switch desc.Blend {
	case gpu.BlendOver, gpu.BlendReplace:
	default:
		return nil, &gpu.PipelineError{Pipeline: desc.Name, Stage: "blend", Err: fmt.Errorf("unsupported blend mode %d", desc.Blend)}
	}
	return &pipeline{name: desc.Name, blend: desc.Blend}, nil
}

type drawable struct {
	owner *Device
	img   *image.RGBA
}

func (dr *drawable) Size() core.Size {
	b := dr.img.Bounds()
	return core.Size{Width: b.Dx(), Height: b.Dy()}
}

// NextDrawable returns a free drawable sized to the current device size.
func (d *Device) NextDrawable(timeout time.Duration) (gpu.Drawable, error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, gpu.ErrClosed
	}
	if d.faults.Drawables > 0 {
		d.faults.Drawables--
		d.mu.Unlock()
		return nil, gpu.ErrDrawableTimeout
	}
	size := d.size
	d.mu.Unlock()

	var dr *drawable
	select {
	case dr = <-d.free:
	default:
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		select {
		case dr = <-d.free:
		case <-timer.C:
			return nil, gpu.ErrDrawableTimeout
		}
	}

	if dr.Size() != size {
		dr.img = image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))
	}
	return dr, nil
}

// Submit queues cmd for drawing and returns immediately.
func (d *Device) Submit(target gpu.Drawable, p gpu.Pipeline, cmd *gpu.CommandBuffer) error {
	dr, ok := target.(*drawable)
	if !ok || dr.owner != d {
		return fmt.Errorf("%w: drawable does not belong to this device", gpu.ErrSubmit)
	}
	pl, ok := p.(*pipeline)
	if !ok {
		d.free <- dr
		return fmt.Errorf("%w: foreign pipeline", gpu.ErrSubmit)
	}

	var tex *Texture
	if cmd.Texture != nil {
		if tex, ok = cmd.Texture.(*Texture); !ok {
			d.free <- dr
			return fmt.Errorf("%w: foreign texture", gpu.ErrSubmit)
		}
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return fmt.Errorf("%w: %w", gpu.ErrSubmit, gpu.ErrClosed)
	}
	if d.faults.Submits > 0 {
		d.faults.Submits--
		d.mu.Unlock()
		d.free <- dr
		return fmt.Errorf("%w: injected fault", gpu.ErrSubmit)
	}
	d.pending.Add(1)
	d.submitted++
	d.mu.Unlock()

	d.jobs <- job{
		target: dr,
		quads:  cmd.Quads(),
		tex:    tex,
		clear:  cmd.ClearColor,
		blend:  pl.blend,
	}
	return nil
}

// Resize changes the size of subsequent drawables.
func (d *Device) Resize(size core.Size) {
	if size.IsEmpty() {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.size = size
}

// Wait blocks until every submitted frame has been presented.
func (d *Device) Wait() {
	d.pending.Wait()
}

// Presented returns the number of frames presented so far.
func (d *Device) Presented() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.presented
}

// Snapshot waits for queued frames and returns a copy of the last one.
func (d *Device) Snapshot() *image.RGBA {
	d.Wait()

	d.mu.Lock()
	defer d.mu.Unlock()

	out := image.NewRGBA(d.front.Bounds())
	draw.Copy(out, image.Point{}, d.front, d.front.Bounds(), draw.Src, nil)
	return out
}

// WritePNG encodes Snapshot as PNG.
func (d *Device) WritePNG(w io.Writer) error {
	return png.Encode(w, d.Snapshot())
}

// Close waits for queued frames and stops the worker.
func (d *Device) Close() error {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		d.mu.Unlock()

		d.pending.Wait()
		close(d.jobs)
		d.worker.Wait()
	})
	return nil
}

func (d *Device) drawLoop() {
	defer d.worker.Done()

	for j := range d.jobs {
		d.drawFrame(j)

		d.mu.Lock()
		if d.front.Bounds() != j.target.img.Bounds() {
			d.front = image.NewRGBA(j.target.img.Bounds())
		}
		draw.Copy(d.front, image.Point{}, j.target.img, j.target.img.Bounds(), draw.Src, nil)
		d.presented++
		d.mu.Unlock()

		d.free <- j.target
		d.pending.Done()
	}
}

func (d *Device) drawFrame(j job) {
	img := j.target.img
	draw.Draw(img, img.Bounds(), image.NewUniform(j.clear.NRGBA()), image.Point{}, draw.Src)

	op := draw.Over
	if j.blend == gpu.BlendReplace {
		op = draw.Src
	}

	if j.tex != nil {
		j.tex.mu.RLock()
		defer j.tex.mu.RUnlock()
	}

	for _, q := range j.quads {
		dr := pixelRect(q.Dst).Intersect(img.Bounds())
		if dr.Empty() {
			continue
		}
		src := image.NewUniform(q.Color.NRGBA())

		if !q.Textured || j.tex == nil {
			draw.Draw(img, dr, src, image.Point{}, op)
			continue
		}

		full := pixelRect(q.Dst)
		sr := j.tex.uvRect(q.UV)
		if sr.Empty() {
			continue
		}
		mask := image.Image(j.tex.img)
		mp := sr.Min
		if sr.Dx() != full.Dx() || sr.Dy() != full.Dy() {
			scaled := image.NewAlpha(image.Rect(0, 0, full.Dx(), full.Dy()))
			draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), j.tex.img, sr, draw.Src, nil)
			mask = scaled
			mp = image.Point{}
		}
		mp = mp.Add(dr.Min.Sub(full.Min))
		draw.DrawMask(img, dr, src, image.Point{}, mask, mp, op)
	}
}

// pixelRect converts a float rectangle to the covering pixel rectangle.
func pixelRect(r core.Rect) image.Rectangle {
	return image.Rect(
		int(math.Floor(float64(r.X))),
		int(math.Floor(float64(r.Y))),
		int(math.Ceil(float64(r.Right()))),
		int(math.Ceil(float64(r.Bottom()))),
	)
}

// Texture is an in-memory coverage texture.
type Texture struct {
	mu       sync.RWMutex
	img      *image.Alpha
	released bool
}

var errReleased = errors.New("offscreen: texture released")

// Size returns the texture dimensions.
func (t *Texture) Size() (int, int) {
	b := t.img.Bounds()
	return b.Dx(), b.Dy()
}

// Upload copies src into the texture at dst.
func (t *Texture) Upload(dst image.Point, src *image.Alpha) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.released {
		return errReleased
	}
	sb := src.Bounds()
	r := image.Rectangle{Min: dst, Max: dst.Add(sb.Size())}
	if !r.In(t.img.Bounds()) {
		return fmt.Errorf("offscreen: upload %v outside texture %v", r, t.img.Bounds())
	}
	draw.Draw(t.img, r, src, sb.Min, draw.Src)
	return nil
}

// CopyFrom copies src into the top-left corner, clipped to this texture.
func (t *Texture) CopyFrom(src gpu.Texture) error {
	s, ok := src.(*Texture)
	if !ok {
		return errors.New("offscreen: foreign texture")
	}
	if s == t {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	s.mu.RLock()
	defer s.mu.RUnlock()

	if t.released || s.released {
		return errReleased
	}
	draw.Draw(t.img, s.img.Bounds(), s.img, image.Point{}, draw.Src)
	return nil
}

// Clear zeroes every pixel.
func (t *Texture) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.img.Pix)
}

// Release marks the texture unusable. Frames already queued may still
// sample it.
func (t *Texture) Release() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.released = true
}

// AlphaAt returns the coverage at (x, y).
func (t *Texture) AlphaAt(x, y int) uint8 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.img.AlphaAt(x, y).A
}

// uvRect converts normalized UVs to pixels. The caller holds t.mu.
func (t *Texture) uvRect(uv core.Rect) image.Rectangle {
	w, h := t.Size()
	x0 := int(math.Round(float64(uv.X) * float64(w)))
	y0 := int(math.Round(float64(uv.Y) * float64(h)))
	x1 := int(math.Round(float64(uv.Right()) * float64(w)))
	y1 := int(math.Round(float64(uv.Bottom()) * float64(h)))
	return image.Rect(x0, y0, x1, y1).Intersect(t.img.Bounds())
}
