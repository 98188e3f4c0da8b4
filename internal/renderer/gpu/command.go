package gpu

import (
	"slices"

	"github.com/dshills/glyphcore/internal/renderer/core"
)

// CommandBuffer collects the quads of one frame.
type CommandBuffer struct {
	// ClearColor fills the drawable before any quad is drawn.
	ClearColor core.Color

	// Texture is bound for textured quads. It may be nil.
	Texture Texture

	quads []Quad
}

// NewCommandBuffer creates an empty command buffer.
func NewCommandBuffer() *CommandBuffer {
	return &CommandBuffer{quads: make([]Quad, 0, 1024)}
}

// Reset empties the buffer, keeping its allocation.
func (c *CommandBuffer) Reset() {
	c.quads = c.quads[:0]
	c.Texture = nil
}

// Add appends a quad. Quads with an empty destination are dropped.
func (c *CommandBuffer) Add(q Quad) {
	if q.Dst.IsEmpty() {
		return
	}
	c.quads = append(c.quads, q)
}

// Len returns the number of quads.
func (c *CommandBuffer) Len() int {
	return len(c.quads)
}

// Count returns the number of quads on layer l.
func (c *CommandBuffer) Count(l Layer) int {
	n := 0
	for _, q := range c.quads {
		if q.Layer == l {
			n++
		}
	}
	return n
}

// Quads returns a copy of the quads in draw order: by layer, then in the
// order they were added.
func (c *CommandBuffer) Quads() []Quad {
	out := slices.Clone(c.quads)
	slices.SortStableFunc(out, func(a, b Quad) int {
		return int(a.Layer) - int(b.Layer)
	})
	return out
}
