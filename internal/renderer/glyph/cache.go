package glyph

import (
	"fmt"
	"image"
	"slices"
	"sync"

	"github.com/dshills/glyphcore/internal/logging"
	"github.com/dshills/glyphcore/internal/renderer/core"
	"github.com/dshills/glyphcore/internal/renderer/gpu"
)

// Atlas bounds.
const (
	DefaultInitialSize = 2048
	DefaultMaxSize     = 4096
)

// padding separates neighboring glyphs so filtering never bleeds.
const padding = 1

// Option configures a Cache.
type Option func(*Cache)

// WithAtlasSize sets the initial and maximum atlas dimension.
func WithAtlasSize(initial, maxSize int) Option {
	return func(c *Cache) {
		c.size = initial
		c.maxSize = maxSize
	}
}

// WithPrewarm rasterizes printable ASCII for font at size during New.
func WithPrewarm(font string, size float32) Option {
	return func(c *Cache) {
		c.prewarm = &Key{Font: font, Size: size}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Cache) {
		c.logger = l
	}
}

type entry struct {
	info    Info
	rect    image.Rectangle
	lastUse uint64
	stale   bool
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Entries    int
	AtlasSize  int
	Hits       uint64
	Misses     uint64
	Rasterized uint64
	Grows      int
	Evicted    int
	Rebuilds   int
	Failures   uint64
}

// Cache is a glyph atlas bound to one device.
type Cache struct {
	mu sync.Mutex

	device gpu.Device
	raster Rasterizer
	tex    gpu.Texture
	packer shelfPacker

	size    int
	maxSize int

	entries map[Key]*entry
	// blank holds zero-area glyphs; they never occupy atlas space.
	blank map[Key]Info
	clock uint64

	stats   Stats
	prewarm *Key
	logger  *logging.Logger
}

// New creates a cache and allocates its atlas texture.
func New(device gpu.Device, raster Rasterizer, opts ...Option) (*Cache, error) {
	c := &Cache{
		device:  device,
		raster:  raster,
		size:    DefaultInitialSize,
		maxSize: DefaultMaxSize,
		entries: make(map[Key]*entry),
		blank:   make(map[Key]Info),
		logger:  logging.Null(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithComponent("glyph")

	if c.size <= 0 || c.maxSize < c.size {
		return nil, fmt.Errorf("glyph: invalid atlas bounds %d/%d", c.size, c.maxSize)
	}
	if limit := device.MaxTextureSize(); c.maxSize > limit {
		c.logger.Warn("device limits atlas to %d (requested %d)", limit, c.maxSize)
		c.maxSize = limit
		c.size = min(c.size, limit)
	}

	tex, err := device.NewTexture(c.size, c.size)
	if err != nil {
		return nil, fmt.Errorf("glyph: allocating %dx%d atlas: %w", c.size, c.size, err)
	}
	c.tex = tex
	c.packer = newShelfPacker(c.size)

	if c.prewarm != nil {
		c.Prewarm(c.prewarm.Font, c.prewarm.Size)
	}
	return c, nil
}

// Lookup returns the atlas placement for key, rasterizing it on a miss.
// ok is false for zero-area glyphs and for glyphs that could not be
// produced; info then carries at most an advance.
func (c *Cache) Lookup(key Key) (info Info, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lookupLocked(key)
}

// Prewarm rasterizes the printable ASCII range for font at size.
func (c *Cache) Prewarm(font string, size float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for r := PrintableFirst; r <= PrintableLast; r++ {
		c.lookupLocked(Key{Char: r, Font: font, Size: size})
	}
	c.logger.Debug("prewarmed %s %.1f: %d glyphs, atlas %d", font, size, len(c.entries), c.size)
}

// Invalidate drops every glyph of font and rebuilds the atlas. Glyphs of
// other fonts are kept as stale entries and rasterized again on demand.
func (c *Cache) Invalidate(font string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k := range c.entries {
		if k.Font == font {
			delete(c.entries, k)
		}
	}
	for k := range c.blank {
		if k.Font == font {
			delete(c.blank, k)
		}
	}
	if c.tex == nil {
		return
	}
	c.rebuildLocked()
	c.logger.Info("invalidated font %q", font)
}

// Texture returns the current atlas texture. It changes when the atlas
// grows, so callers fetch it after their lookups for a frame.
func (c *Cache) Texture() gpu.Texture {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tex
}

// Size returns the atlas dimension in pixels.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// MaxSize returns the largest dimension the atlas may reach.
func (c *Cache) MaxSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxSize
}

// Len returns the number of cached bitmap glyphs, stale ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats
	s.Entries = len(c.entries)
	s.AtlasSize = c.size
	return s
}

// Close releases the atlas texture.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tex != nil {
		c.tex.Release()
		c.tex = nil
	}
	clear(c.entries)
	clear(c.blank)
}

func (c *Cache) lookupLocked(key Key) (Info, bool) {
	if c.tex == nil {
		return Info{}, false
	}
	c.clock++

	if info, ok := c.blank[key]; ok {
		c.stats.Hits++
		return info, false
	}
	e, cached := c.entries[key]
	if cached && !e.stale {
		e.lastUse = c.clock
		c.stats.Hits++
		return e.info, true
	}
	c.stats.Misses++

	bm, err := c.raster.Rasterize(key)
	if err != nil {
		c.stats.Failures++
		c.logger.Debug("rasterize %q (%s %.1f): %v", key.Char, key.Font, key.Size, err)
		return Info{}, false
	}
	c.stats.Rasterized++

	info := Info{
		BearingX: bm.BearingX,
		BearingY: bm.BearingY,
		Advance:  bm.Advance,
	}
	if bm.Empty() {
		delete(c.entries, key)
		c.blank[key] = info
		return info, false
	}

	b := bm.Mask.Bounds()
	w, h := b.Dx(), b.Dy()
	if w+padding > c.maxSize || h+padding > c.maxSize {
		c.stats.Failures++
		c.logger.Warn("glyph %q is %dx%d, larger than the atlas", key.Char, w, h)
		return info, false
	}

	pt, placed := c.placeLocked(w+padding, h+padding)
	if !placed {
		c.stats.Failures++
		c.logger.Warn("no atlas room for %q (%dx%d, atlas %d)", key.Char, w, h, c.size)
		return info, false
	}
	if err := c.tex.Upload(pt, bm.Mask); err != nil {
		c.stats.Failures++
		c.logger.Warn("upload %q: %v", key.Char, err)
		return info, false
	}

	rect := image.Rectangle{Min: pt, Max: pt.Add(image.Pt(w, h))}
	info.Width = w
	info.Height = h
	info.UV = c.uvLocked(rect)

	// Placement may have evicted this key's stale entry.
	if e, cached = c.entries[key]; !cached {
		e = &entry{}
		c.entries[key] = e
	}
	e.info = info
	e.rect = rect
	e.lastUse = c.clock
	e.stale = false
	return info, true
}

// placeLocked reserves a w×h slot, growing or rebuilding the atlas as
// needed. It reports false when no slot can be found, which happens when a
// failed growth capped the atlas below w or h.
func (c *Cache) placeLocked(w, h int) (image.Point, bool) {
	for c.size < c.maxSize {
		if pt, ok := c.packer.pack(w, h); ok {
			return pt, true
		}
		if err := c.growLocked(); err != nil {
			c.logger.Warn("atlas growth failed, capping at %d: %v", c.size, err)
			c.maxSize = c.size
		}
	}
	if w > c.maxSize || h > c.maxSize {
		return image.Point{}, false
	}
	if pt, ok := c.packer.pack(w, h); ok {
		return pt, true
	}

	c.evictLocked()
	return c.packer.pack(w, h)
}

// growLocked doubles the atlas, capped at maxSize, and rescales every UV.
func (c *Cache) growLocked() error {
	newSize := min(c.size*2, c.maxSize)
	tex, err := c.device.NewTexture(newSize, newSize)
	if err != nil {
		return err
	}
	if err := tex.CopyFrom(c.tex); err != nil {
		tex.Release()
		return err
	}
	c.tex.Release()

	old := c.size
	c.tex = tex
	c.size = newSize
	c.packer.resize(newSize)
	for _, e := range c.entries {
		if !e.stale {
			e.info.UV = c.uvLocked(e.rect)
		}
	}

	c.stats.Grows++
	c.logger.Debug("atlas grew %d -> %d (%d glyphs)", old, newSize, len(c.entries))
	return nil
}

// evictLocked drops the least recently used quarter of the glyphs and
// rebuilds the atlas.
func (c *Cache) evictLocked() {
	type aged struct {
		key     Key
		lastUse uint64
	}
	all := make([]aged, 0, len(c.entries))
	for k, e := range c.entries {
		all = append(all, aged{k, e.lastUse})
	}
	slices.SortFunc(all, func(a, b aged) int {
		switch {
		case a.lastUse < b.lastUse:
			return -1
		case a.lastUse > b.lastUse:
			return 1
		}
		return 0
	})

	n := max(1, len(all)/4)
	n = min(n, len(all))
	for _, a := range all[:n] {
		delete(c.entries, a.key)
	}

	c.stats.Evicted += n
	c.rebuildLocked()
	c.logger.Debug("evicted %d glyphs, %d stale survivors", n, len(c.entries))
}

// rebuildLocked clears the atlas and marks every entry stale.
func (c *Cache) rebuildLocked() {
	c.tex.Clear()
	c.packer.reset()
	for _, e := range c.entries {
		e.stale = true
	}
	c.stats.Rebuilds++
}

func (c *Cache) uvLocked(r image.Rectangle) core.Rect {
	s := float32(c.size)
	return core.Rect{
		X: float32(r.Min.X) / s,
		Y: float32(r.Min.Y) / s,
		W: float32(r.Dx()) / s,
		H: float32(r.Dy()) / s,
	}
}
