package gpu

import (
	"image"
	"time"

	"github.com/dshills/glyphcore/internal/renderer/core"
)

// Device is a rendering device.
type Device interface {
	// Name returns the driver name the device was opened with.
	Name() string

	// MaxTextureSize returns the largest supported texture dimension.
	MaxTextureSize() int

	// NewTexture allocates a single-channel (coverage) texture.
	NewTexture(width, height int) (Texture, error)

	// NewPipeline builds a render pipeline.
	NewPipeline(desc PipelineDesc) (Pipeline, error)

	// NextDrawable waits up to timeout for a free drawable.
	// It returns ErrDrawableTimeout when none becomes free.
	NextDrawable(timeout time.Duration) (Drawable, error)

	// Submit queues cmd for drawing into d and presents d when done.
	// It does not wait for the device to finish. The device copies what
	// it needs from cmd, which may be reused as soon as Submit returns.
	Submit(d Drawable, p Pipeline, cmd *CommandBuffer) error

	// Resize changes the size of drawables handed out from now on.
	Resize(size core.Size)

	// Close waits for queued work and releases the device.
	Close() error
}

// Texture is a device texture holding 8-bit coverage values.
type Texture interface {
	// Size returns the texture dimensions in pixels.
	Size() (width, height int)

	// Upload copies src into the texture with its top-left corner at dst.
	Upload(dst image.Point, src *image.Alpha) error

	// CopyFrom copies the whole of src into the top-left of the texture.
	CopyFrom(src Texture) error

	// Clear zeroes every pixel.
	Clear()

	// Release frees the texture. It must not be used afterwards.
	Release()
}

// Drawable is a presentable surface obtained from NextDrawable.
type Drawable interface {
	// Size returns the drawable dimensions in pixels.
	Size() core.Size
}

// Pipeline is an opaque compiled pipeline state.
type Pipeline interface {
	Name() string
}

// BlendMode selects how quads combine with the destination.
type BlendMode int

const (
	// BlendOver is source-over alpha blending.
	BlendOver BlendMode = iota
	// BlendReplace writes source pixels directly.
	BlendReplace
)

// PipelineDesc describes a pipeline to build.
type PipelineDesc struct {
	Name  string
	Blend BlendMode
	// Sampled reports whether quads may sample the bound texture.
	Sampled bool
}

// Options configures a device at open time.
type Options struct {
	// Size is the initial drawable size.
	Size core.Size

	// Drawables is the number of drawables in flight. Zero means 3.
	Drawables int
}

// Layer orders quads within a frame. Later layers draw on top.
type Layer uint8

const (
	LayerSelection Layer = iota
	LayerText
	LayerCursor
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerSelection:
		return "selection"
	case LayerText:
		return "text"
	case LayerCursor:
		return "cursor"
	default:
		return "unknown"
	}
}

// Quad is one rectangle of a frame.
type Quad struct {
	Layer Layer

	// Dst is the destination rectangle in drawable pixels.
	Dst core.Rect

	// UV is the normalized source rectangle in the bound texture.
	// It is ignored unless Textured is set.
	UV core.Rect

	// Color is the fill color, or the tint applied to texture coverage.
	Color core.Color

	Textured bool
}
